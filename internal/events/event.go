// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"cep_lookup/platform/events"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// PostalCodeSavedEvent is the name of PostalCodeSaved.
const PostalCodeSavedEvent = "postalcode.saved"

// PostalCodeSaved is published after a user-supplied postal code has been
// accepted by the store.
type PostalCodeSaved struct {
	BaseEvent
	City      string `json:"city"`
	Region    string `json:"region"`
	Code      string `json:"code"`
	Persisted bool   `json:"persisted"`
}

func (e PostalCodeSaved) EventName() string { return PostalCodeSavedEvent }
