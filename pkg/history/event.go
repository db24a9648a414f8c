package history

import (
	"fmt"
	"strings"
	"time"
)

// Event is one recorded bridge action.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// Action is what happened.
	Action Action `cbor:"2,keyasint"`

	// Value is the glucose value in mg/dL, zero when no reading was obtained.
	Value int `cbor:"3,keyasint,omitempty"`

	// Trend is the canonical trend name ("Flat", "SingleUp", ...).
	Trend string `cbor:"4,keyasint,omitempty"`

	// Glyph is the arrow shown to the user.
	Glyph string `cbor:"5,keyasint,omitempty"`

	// Message is the chatbox text that was (or would have been) sent.
	Message string `cbor:"6,keyasint,omitempty"`

	// Endpoint is the OSC destination as "ip:port".
	Endpoint string `cbor:"7,keyasint,omitempty"`

	// Error describes a failed cycle.
	Error string `cbor:"8,keyasint,omitempty"`

	// Duration is how long the cycle took.
	Duration time.Duration `cbor:"9,keyasint,omitempty"`
}

// Action classifies an event.
type Action uint8

const (
	// ActionSent means a message was delivered.
	ActionSent Action = 0
	// ActionSuppressed means the change was below the minimum delta.
	ActionSuppressed Action = 1
	// ActionFailed means the cycle ended with an error.
	ActionFailed Action = 2
	// ActionStarted marks the loop starting.
	ActionStarted Action = 3
	// ActionStopped marks the loop stopping.
	ActionStopped Action = 4
)

// Actions lists every action in display order.
var Actions = []Action{ActionSent, ActionSuppressed, ActionFailed, ActionStarted, ActionStopped}

// String returns the action name.
func (a Action) String() string {
	switch a {
	case ActionSent:
		return "SENT"
	case ActionSuppressed:
		return "SUPPRESSED"
	case ActionFailed:
		return "FAILED"
	case ActionStarted:
		return "STARTED"
	case ActionStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// ParseAction parses an action name case-insensitively.
func ParseAction(s string) (Action, error) {
	for _, a := range Actions {
		if strings.EqualFold(s, a.String()) {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown action: %q (valid: sent, suppressed, failed, started, stopped)", s)
}
