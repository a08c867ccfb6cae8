package history

import (
	"context"
	"time"
)

// EventType defines the kind of restart lifecycle event.
type EventType string

const (
	EventResolved     EventType = "resolved"
	EventStop         EventType = "stop"
	EventKill         EventType = "kill"
	EventStopFailed   EventType = "stop_failed"
	EventLaunch       EventType = "launch"
	EventLaunchFailed EventType = "launch_failed"
)

// Event is one audit record of a restart run.
type Event struct {
	Type       EventType `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Name       string    `json:"name"`   // service name
	PID        int       `json:"pid"`    // pid acted upon (0 when none)
	Detail     string    `json:"detail"` // winning strategy, error text, etc.
}

// Sink is a destination for restart audit events.
// Implementations must be safe for concurrent use.
type Sink interface {
	Send(ctx context.Context, e Event) error
	Close() error
}
