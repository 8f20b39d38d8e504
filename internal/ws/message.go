package ws

import (
	"errors"

	"github.com/inverno-io/gohttpcore/internal/wsframe"
)

// MessageKind distinguishes a reassembled WebSocket message's payload
// interpretation.
type MessageKind int

const (
	KindText MessageKind = iota
	KindBinary
)

// ErrAlreadyConsumed is returned by a Message accessor once any of
// Frames, Bytes, or Text has already been called — a message may be
// consumed exactly once, as frames, raw bytes, or decoded text, never more
// than one way.
var ErrAlreadyConsumed = errors.New("ws: message already consumed")

// Message is one reassembled TEXT or BINARY message: an initial frame plus
// zero or more CONTINUATION frames.
type Message struct {
	Kind     MessageKind
	frames   []wsframe.Frame
	consumed bool
}

// Frames returns the message's constituent frames (initial + continuations).
func (m *Message) Frames() ([]wsframe.Frame, error) {
	if m.consumed {
		return nil, ErrAlreadyConsumed
	}
	m.consumed = true
	return m.frames, nil
}

// Bytes concatenates the message's frame payloads.
func (m *Message) Bytes() ([]byte, error) {
	if m.consumed {
		return nil, ErrAlreadyConsumed
	}
	m.consumed = true
	var buf []byte
	for _, f := range m.frames {
		buf = append(buf, f.Payload...)
	}
	return buf, nil
}

// Text decodes the message as UTF-8 text (valid for any Kind; callers
// typically only call it for KindText messages, whose UTF-8 validity was
// already checked at reassembly time).
func (m *Message) Text() (string, error) {
	b, err := m.Bytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}
