package body

import (
	"regexp"
	"strings"
)

// Event is one server-sent event. Neither this package nor the exchange
// engine sets a Content-Type for SSE responses.
type Event struct {
	ID      string
	Event   string
	Comment string
	Data    string
}

var lineSplit = regexp.MustCompile(`\r\n|\r|\n`)

// Encode renders e in the wire form described by the SSE encoding rules:
// id/event/comment lines terminated by "\n", the data field's internal
// line breaks rewritten as "\r\ndata:" so continuation lines are
// correctly attributed, and a single "\r\n\r\n" terminator closing the
// event regardless of which fields were present.
func Encode(e Event) string {
	var b strings.Builder
	if e.ID != "" {
		b.WriteString("id:")
		b.WriteString(e.ID)
		b.WriteByte('\n')
	}
	if e.Event != "" {
		b.WriteString("event:")
		b.WriteString(e.Event)
		b.WriteByte('\n')
	}
	if e.Comment != "" {
		for _, line := range lineSplit.Split(e.Comment, -1) {
			b.WriteByte(':')
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	if e.Data != "" {
		lines := lineSplit.Split(e.Data, -1)
		b.WriteString("data:")
		b.WriteString(strings.Join(lines, "\r\ndata:"))
	}
	b.WriteString("\r\n\r\n")
	return b.String()
}

// DecodeEvents parses a stream of wire-encoded events back into Events.
// Data lines are rejoined with "\n" (CRLF-normalized), matching the
// testable property that decoding is bit-exact modulo CRLF normalization.
func DecodeEvents(wire string) []Event {
	var events []Event
	blocks := strings.Split(wire, "\r\n\r\n")
	for _, blk := range blocks {
		if strings.TrimSpace(blk) == "" {
			continue
		}
		events = append(events, decodeOne(blk))
	}
	return events
}

func decodeOne(block string) Event {
	var e Event
	var dataLines []string
	for _, line := range lineSplit.Split(block, -1) {
		switch {
		case strings.HasPrefix(line, "id:"):
			e.ID = strings.TrimPrefix(line, "id:")
		case strings.HasPrefix(line, "event:"):
			e.Event = strings.TrimPrefix(line, "event:")
		case strings.HasPrefix(line, "data:"):
			dataLines = append(dataLines, strings.TrimPrefix(line, "data:"))
		case strings.HasPrefix(line, ":"):
			if e.Comment != "" {
				e.Comment += "\n"
			}
			e.Comment += strings.TrimPrefix(line, ":")
		}
	}
	e.Data = strings.Join(dataLines, "\n")
	return e
}

// EventPublisher adapts a fixed slice of events into a demand-driven
// Publisher[Event], matching the single-subscriber/backpressure contract
// shared with byte bodies.
type EventPublisher struct {
	events     []Event
	subscribed bool
	cancelled  bool
	pos        int
}

// NewEventPublisher returns a Publisher over events, delivered in order.
func NewEventPublisher(events []Event) *EventPublisher {
	return &EventPublisher{events: events}
}

func (p *EventPublisher) Subscribe(s Subscriber[Event]) error {
	if p.subscribed {
		return ErrAlreadySubscribed
	}
	p.subscribed = true
	s.OnSubscribe(&eventDemand{pub: p, sub: s})
	return nil
}

type eventDemand struct {
	pub *EventPublisher
	sub Subscriber[Event]
}

func (d *eventDemand) Request(n int64) {
	p := d.pub
	for i := int64(0); i < n && !p.cancelled; i++ {
		if p.pos >= len(p.events) {
			d.sub.OnComplete()
			return
		}
		ev := p.events[p.pos]
		p.pos++
		d.sub.OnNext(ev)
	}
}

func (d *eventDemand) Cancel() {
	d.pub.cancelled = true
}
