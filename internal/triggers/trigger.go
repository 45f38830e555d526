package triggers

import (
	"context"
	"errors"
	"time"
)

// Common trigger errors
var (
	ErrAlreadyRunning = errors.New("trigger is already running")
	ErrNotRunning     = errors.New("trigger is not running")
)

// Item is one change observed by a source: a created event, a new file, a
// received mail or a modified sheet. The ID must be stable for the same
// underlying change so repeated observations can be deduplicated.
type Item struct {
	// ID identifies the change, not just the object. A re-modified file
	// carries a different ID than its earlier modification.
	ID string

	// Timestamp is when the change happened according to the API, not
	// when it was observed. Watermarks advance along this time.
	Timestamp time.Time

	// Variables is the payload handed to the workflow execution.
	Variables map[string]any
}

// Source polls an external API for changes after a cutoff. Implementations
// must return items ordered by timestamp ascending and only items strictly
// newer than the cutoff.
type Source interface {
	// Type is the trigger type name, e.g. "calendar.event_created".
	Type() string

	// Poll returns changes that happened after since.
	Poll(ctx context.Context, since time.Time) ([]Item, error)
}

// Event is delivered to the handler for every new item.
type Event struct {
	// Trigger is the configured trigger name
	Trigger string

	// Type is the source type
	Type string

	// Account is the Google account the source polls with
	Account string

	// Item is the observed change
	Item Item

	// FiredAt is when the poller observed the change
	FiredAt time.Time
}

// Handler processes one event. A returned error stops delivery of the
// remaining items from the same poll; the watermark is not advanced past
// the failed item, so it is delivered again. Delivery is at least once.
type Handler func(ctx context.Context, event *Event) error
