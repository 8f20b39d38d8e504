package ws

import "context"

// Session bundles the three pieces application code needs once a
// connection has completed the upgrade handshake: the demultiplexed
// inbound stream, the outbound writer, and the close dance guarding a
// single close handshake.
type Session struct {
	Inbound  *Inbound
	Outbound *Outbound
	Close    *CloseDance

	// Subprotocol is the negotiated Sec-WebSocket-Protocol value, empty if
	// none was negotiated.
	Subprotocol string
}

// Handler is bound to a route at the routing layer and run by the
// exchange engine once it hands a connection off after a successful
// upgrade. It owns the connection until it returns; the engine closes
// the underlying net.Conn afterward.
type Handler func(ctx context.Context, sess *Session) error
