package ws

import (
	"errors"

	"github.com/inverno-io/gohttpcore/internal/wsframe"
)

// ErrOutboundAlreadyBound is returned when a caller mixes frame-level and
// message-level sends on the same Outbound — exactly one producing mode is
// allowed for the lifetime of a connection's outbound side.
var ErrOutboundAlreadyBound = errors.New("ws: outbound already bound to the other publisher kind")

type outboundMode int

const (
	modeUnbound outboundMode = iota
	modeFrames
	modeMessages
)

// Outbound writes frames to the peer, accepting either raw frame sends or
// whole-message sends (which it fragments per maxFrameSize) but never a
// mix of both once one mode has been used.
type Outbound struct {
	w            *wsframe.Writer
	maxFrameSize int
	mode         outboundMode
}

// NewOutbound wraps w. maxFrameSize is the outbound fragmentation
// threshold (0 disables fragmentation).
func NewOutbound(w *wsframe.Writer, maxFrameSize int) *Outbound {
	return &Outbound{w: w, maxFrameSize: maxFrameSize}
}

// SendFrame writes a single raw frame, binding this Outbound to
// frame-level mode.
func (o *Outbound) SendFrame(f wsframe.Frame, maskKey [4]byte) error {
	if o.mode == modeMessages {
		return ErrOutboundAlreadyBound
	}
	o.mode = modeFrames
	return o.w.WriteFrame(f, maskKey)
}

// SendMessage fragments payload per maxFrameSize and writes the resulting
// frame sequence, binding this Outbound to message-level mode.
func (o *Outbound) SendMessage(kind MessageKind, payload []byte, maskKey [4]byte) error {
	if o.mode == modeFrames {
		return ErrOutboundAlreadyBound
	}
	o.mode = modeMessages

	op := wsframe.OpText
	if kind == KindBinary {
		op = wsframe.OpBinary
	}
	frames := wsframe.Split(op, payload, o.maxFrameSize)
	for _, f := range frames {
		if err := o.w.WriteFrame(f, maskKey); err != nil {
			return err
		}
	}
	// If fragmentation produced a non-final last frame (shouldn't happen
	// given Split's contract, but defensive against a future max-size of
	// zero edge case), close out with an empty FIN continuation.
	if len(frames) > 0 && !frames[len(frames)-1].Fin {
		return o.w.WriteFrame(wsframe.FinalContinuation(), maskKey)
	}
	return nil
}

// SendPing writes an unsolicited PING frame with the given payload
// (<= 125 bytes; callers must respect wsframe.MaxControlPayload).
func (o *Outbound) SendPing(payload []byte, maskKey [4]byte) error {
	return o.w.WriteFrame(wsframe.Frame{Fin: true, Opcode: wsframe.OpPing, Payload: payload}, maskKey)
}

// SendPong writes a PONG frame, used both for auto-replies to PING and for
// unsolicited pongs.
func (o *Outbound) SendPong(payload []byte, maskKey [4]byte) error {
	return o.w.WriteFrame(wsframe.Frame{Fin: true, Opcode: wsframe.OpPong, Payload: payload}, maskKey)
}
