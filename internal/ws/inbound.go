package ws

import (
	"errors"
	"unicode/utf8"

	"github.com/inverno-io/gohttpcore/internal/wsframe"
)

// ViewKind selects which narrowing of the inbound stream a single
// subscriber consumes.
type ViewKind int

const (
	ViewFrames ViewKind = iota
	ViewMessages
	ViewText
	ViewBinary
)

// ErrInboundAlreadySubscribed is returned by Subscribe when a view has
// already been chosen for this Inbound — at most one of frames, messages,
// text-only, or binary-only may be active at a time.
var ErrInboundAlreadySubscribed = errors.New("ws: inbound already has an active view")

// EventKind classifies what Inbound.Next produced.
type EventKind int

const (
	EventMessage EventKind = iota
	EventPing
	EventPong
	EventClose
)

// InboundEvent is one demultiplexed occurrence on the inbound stream.
type InboundEvent struct {
	Kind    EventKind
	Message Message
	Payload []byte // raw payload for Ping/Pong/Close
}

// Inbound demultiplexes raw frames from a wsframe.Reader into reassembled
// messages and control events, running synchronously on the owning
// connection's event loop (see internal/exchange) — one Next() call reads
// exactly as many frames as needed to produce one event.
type Inbound struct {
	r          *wsframe.Reader
	pongWriter func(payload []byte) error
	view       ViewKind
	viewSet    bool
}

// NewInbound wraps r. pongWriter is invoked to auto-reply to PING frames
// with a PONG carrying the same payload.
func NewInbound(r *wsframe.Reader, pongWriter func([]byte) error) *Inbound {
	return &Inbound{r: r, pongWriter: pongWriter}
}

// Subscribe selects the view this Inbound will deliver through Next. A
// second call fails with ErrInboundAlreadySubscribed.
func (in *Inbound) Subscribe(kind ViewKind) error {
	if in.viewSet {
		return ErrInboundAlreadySubscribed
	}
	in.viewSet = true
	in.view = kind
	return nil
}

// Next reads frames until it can produce one event matching the
// subscribed view, auto-replying to PING frames along the way. Messages
// not matching a narrower view (ViewText/ViewBinary) are silently skipped,
// since a narrow subscriber declared no interest in the other kind.
func (in *Inbound) Next() (InboundEvent, error) {
	for {
		ev, err := in.next()
		if err != nil {
			return InboundEvent{}, err
		}
		if ev.Kind != EventMessage {
			return ev, nil
		}
		switch in.view {
		case ViewText:
			if ev.Message.Kind != KindText {
				continue
			}
		case ViewBinary:
			if ev.Message.Kind != KindBinary {
				continue
			}
		}
		return ev, nil
	}
}

func (in *Inbound) next() (InboundEvent, error) {
	f, err := in.r.ReadFrame()
	if err != nil {
		return InboundEvent{}, err
	}
	switch f.Opcode {
	case wsframe.OpPing:
		if in.pongWriter != nil {
			if err := in.pongWriter(f.Payload); err != nil {
				return InboundEvent{}, err
			}
		}
		return InboundEvent{Kind: EventPing, Payload: f.Payload}, nil
	case wsframe.OpPong:
		return InboundEvent{Kind: EventPong, Payload: f.Payload}, nil
	case wsframe.OpClose:
		return InboundEvent{Kind: EventClose, Payload: f.Payload}, nil
	case wsframe.OpText, wsframe.OpBinary:
		msg, err := in.reassemble(f)
		if err != nil {
			return InboundEvent{}, err
		}
		return InboundEvent{Kind: EventMessage, Message: msg}, nil
	default:
		return InboundEvent{}, errors.New("ws: unexpected continuation frame outside a fragmented message")
	}
}

// reassemble collects CONTINUATION frames following first until FIN,
// tolerating interleaved control frames (PING/PONG may appear between
// fragments of a data message per RFC 6455 §5.4).
func (in *Inbound) reassemble(first wsframe.Frame) (Message, error) {
	kind := KindText
	if first.Opcode == wsframe.OpBinary {
		kind = KindBinary
	}

	frames := []wsframe.Frame{first}
	for !frames[len(frames)-1].Fin {
		f, err := in.r.ReadFrame()
		if err != nil {
			return Message{}, err
		}
		switch f.Opcode {
		case wsframe.OpContinuation:
			frames = append(frames, f)
		case wsframe.OpPing:
			if in.pongWriter != nil {
				if err := in.pongWriter(f.Payload); err != nil {
					return Message{}, err
				}
			}
		case wsframe.OpPong:
			// unsolicited pong during fragmentation; surfaced nowhere but
			// doesn't interrupt reassembly.
		default:
			return Message{}, errors.New("ws: data frame interleaved within fragmented message")
		}
	}

	if kind == KindText {
		var total int
		for _, f := range frames {
			total += len(f.Payload)
		}
		buf := make([]byte, 0, total)
		for _, f := range frames {
			buf = append(buf, f.Payload...)
		}
		if !utf8.Valid(buf) {
			return Message{}, wsframe.ErrBadUTF8
		}
	}

	return Message{Kind: kind, frames: frames}, nil
}
