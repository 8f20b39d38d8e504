package ws

import (
	"encoding/binary"
	"sync"

	"github.com/inverno-io/gohttpcore/internal/wsframe"
)

// Standard close codes used by the engine itself; application code may use
// any RFC 6455 §7.4 code.
const (
	CloseNormal         uint16 = 1000
	CloseGoingAway      uint16 = 1001
	CloseProtocolError  uint16 = 1002
	CloseUnsupportedData uint16 = 1003
	CloseInvalidPayload uint16 = 1007
	ClosePolicyViolation uint16 = 1008
	CloseMessageTooBig  uint16 = 1009
)

// maxReasonBytes leaves room for the 2-byte code within the 125-byte
// control-frame payload limit.
const maxReasonBytes = wsframe.MaxControlPayload - 2

// EncodeClosePayload builds the CLOSE frame payload: the 2-byte big-endian
// code followed by the UTF-8 reason, truncated so the total never exceeds
// 125 bytes.
func EncodeClosePayload(code uint16, reason string) []byte {
	r := []byte(reason)
	if len(r) > maxReasonBytes {
		r = r[:maxReasonBytes]
	}
	buf := make([]byte, 2+len(r))
	binary.BigEndian.PutUint16(buf[:2], code)
	copy(buf[2:], r)
	return buf
}

// DecodeClosePayload parses a CLOSE frame payload back into its code and
// reason. An empty payload decodes to (0, "").
func DecodeClosePayload(payload []byte) (code uint16, reason string) {
	if len(payload) < 2 {
		return 0, ""
	}
	return binary.BigEndian.Uint16(payload[:2]), string(payload[2:])
}

// closeState tracks which side initiated the close dance.
type closeState int

const (
	closeIdle closeState = iota
	closeLocalSent
	closeDone
)

// CloseDance guarantees the close handshake runs exactly once: a second
// application Close call is a no-op, and a peer-initiated CLOSE is
// answered automatically by echoing and marking the dance done.
type CloseDance struct {
	mu    sync.Mutex
	state closeState
	send  func(code uint16, reason string) error
	onClosed func()
}

// NewCloseDance wires send (the function that actually writes a CLOSE
// frame) and onClosed (invoked exactly once when the dance completes and
// the TCP connection should be torn down).
func NewCloseDance(send func(code uint16, reason string) error, onClosed func()) *CloseDance {
	return &CloseDance{send: send, onClosed: onClosed}
}

// InitiateClose is called by application code. A second call, or a call
// after the peer's CLOSE was already echoed, is a no-op.
func (c *CloseDance) InitiateClose(code uint16, reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != closeIdle {
		return nil
	}
	c.state = closeLocalSent
	return c.send(code, reason)
}

// OnPeerClose is called by the inbound read loop when a CLOSE frame
// arrives. If the local side had not already initiated a close, it echoes
// the peer's code/reason; either way the TCP connection is then closed.
func (c *CloseDance) OnPeerClose(payload []byte) error {
	c.mu.Lock()
	already := c.state != closeIdle
	wasDone := c.state == closeDone
	c.state = closeDone
	c.mu.Unlock()

	if wasDone {
		return nil
	}

	if !already {
		code, reason := DecodeClosePayload(payload)
		if code == 0 {
			code = CloseNormal
		}
		if err := c.send(code, reason); err != nil {
			return err
		}
	}
	if c.onClosed != nil {
		c.onClosed()
	}
	return nil
}

// Done reports whether the close dance has completed (peer CLOSE seen).
func (c *CloseDance) Done() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == closeDone
}
