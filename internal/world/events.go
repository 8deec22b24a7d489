package world

// Event is one discrete notification produced during a tick. Type is the
// wire message type; Data is the marshalable payload.
type Event struct {
	Type string
	Data any
}

// EventBuffer collects events produced during a tick for the broadcaster.
// Double-buffered so draining never aliases the slice being appended to.
type EventBuffer struct {
	events []Event
	spare  []Event
}

// Emit appends one event.
func (b *EventBuffer) Emit(eventType string, data any) {
	b.events = append(b.events, Event{Type: eventType, Data: data})
}

// Drain returns the buffered events and resets the buffer. The returned
// slice is valid until the next Drain.
func (b *EventBuffer) Drain() []Event {
	out := b.events
	b.events = b.spare[:0]
	b.spare = out
	return out
}

// Len returns the number of buffered events.
func (b *EventBuffer) Len() int {
	return len(b.events)
}
