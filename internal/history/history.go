// Package history exports launch lifecycle events to external analytics
// stores. Sinks are append-only diagnostics: the in-memory registry is
// never restored from them.
package history

import (
	"context"
	"time"
)

// EventType defines the kind of lifecycle event.
type EventType string

const (
	EventLaunch        EventType = "launch"
	EventLaunchFailure EventType = "launch_failure"
)

// Record identifies the simulator instance an event concerns.
type Record struct {
	Slug       string    `json:"slug"`
	ProjectDir string    `json:"project_dir"`
	PID        int       `json:"pid"`
	StartedAt  time.Time `json:"started_at"`
	Error      string    `json:"error,omitempty"`
}

// Event is a lifecycle event to be exported.
type Event struct {
	Type       EventType `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Record     Record    `json:"record"`
}

// Sink is a destination for history events. Implementations must be safe
// for concurrent use; sends are fire-and-forget from the controller's
// perspective.
type Sink interface {
	Send(ctx context.Context, e Event) error
	Close() error
}
