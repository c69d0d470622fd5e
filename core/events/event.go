package events

import "github.com/google/uuid"

// Event represents a structured state change emitted by a ledger module. The
// identifier lets downstream indexers deduplicate replayed streams.
type Event struct {
	ID         string
	Type       string
	Attributes map[string]string
}

// New builds an event with a fresh identifier.
func New(eventType string, attributes map[string]string) Event {
	if attributes == nil {
		attributes = map[string]string{}
	}
	return Event{ID: uuid.NewString(), Type: eventType, Attributes: attributes}
}

// Emitter broadcasts events to downstream subscribers (e.g. indexers).
type Emitter interface {
	Emit(Event)
}

// NoopEmitter satisfies the Emitter interface while discarding all events. It
// is the default for engines that do not wire an emitter.
type NoopEmitter struct{}

// Emit implements the Emitter interface.
func (NoopEmitter) Emit(Event) {}

// MemoryEmitter records emitted events in order. Primarily used by tests to
// assert on the event stream of an operation.
type MemoryEmitter struct {
	Events []Event
}

// Emit implements the Emitter interface.
func (m *MemoryEmitter) Emit(evt Event) {
	m.Events = append(m.Events, evt)
}

// ByType returns the recorded events matching the given type.
func (m *MemoryEmitter) ByType(eventType string) []Event {
	var out []Event
	for _, evt := range m.Events {
		if evt.Type == eventType {
			out = append(out, evt)
		}
	}
	return out
}
