// Package telemetry defines the engine's analytics events and the emitters
// that carry them. Emission is always fire-and-forget from the caller's
// point of view: a slow or absent collector must never stall the editor
// loop.
package telemetry

import (
	"time"

	"github.com/google/uuid"
)

// Event is one analytics record. Tutorial transition events use the exited
// state's id as Name and are marked passive, since no user gesture aimed
// at the tutorial produced them.
type Event struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Passive    bool              `json:"passive"`
	Time       time.Time         `json:"time"`
	InstanceID string            `json:"instance_id,omitempty"`
	SessionID  string            `json:"session_id,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// NewEvent creates an event with a fresh id and the current time.
func NewEvent(name string, passive bool) Event {
	return Event{
		ID:      uuid.NewString(),
		Name:    name,
		Passive: passive,
		Time:    time.Now().UTC(),
	}
}

// WithAttr returns a copy of the event with an attribute set.
func (e Event) WithAttr(key, value string) Event {
	attrs := make(map[string]string, len(e.Attributes)+1)
	for k, v := range e.Attributes {
		attrs[k] = v
	}
	attrs[key] = value
	e.Attributes = attrs
	return e
}

// Emitter delivers events. Implementations must be safe for concurrent
// use and should return quickly; callers treat errors as advisory.
type Emitter interface {
	Emit(Event) error
}
