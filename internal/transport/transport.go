// Package transport moves one file to a remote destination and reports the
// attempt as a stream of events.
//
// Every Send returns a channel that yields zero or more progress events,
// then exactly one terminal event (success or error), and is then closed.
// Callers must drain the channel.
package transport

import (
	"context"

	"github.com/dmitrijs2005/imgdrop/internal/models"
)

type EventKind int

const (
	EventProgress EventKind = iota
	EventSuccess
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventProgress:
		return "progress"
	case EventSuccess:
		return "success"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is one step of an upload attempt. Progress is set for progress
// events, PublicURL for success and Err for error.
type Event struct {
	Kind      EventKind
	Progress  int
	PublicURL string
	Err       error
}

func (e Event) Terminal() bool {
	return e.Kind == EventSuccess || e.Kind == EventError
}

// Target carries per-dispatch parameters. Each transport reads the fields
// it understands.
type Target struct {
	ProjectID  *string
	WebhookURL string
}

type Transport interface {
	// Name identifies the transport in logs and metrics.
	Name() string
	// Validate reports ErrConfigurationMissing before anything is dispatched.
	Validate(target Target) error
	Send(ctx context.Context, file models.File, target Target) <-chan Event
}
