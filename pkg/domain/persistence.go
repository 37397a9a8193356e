package domain

import (
	"context"
	"time"
)

// EventRecord is one persisted event product, keyed by run id and event
// number within the run.
type EventRecord struct {
	RunID      string       `json:"run_id"`
	EventID    int          `json:"event_id"`
	RecordedAt time.Time    `json:"recorded_at"`
	Product    EventProduct `json:"product"`
}

// EventStore is a minimal abstraction over durable event-product backends.
// SaveEvent evaluates any configured rules; blocking violations reject the
// save with RuleViolationError.
type EventStore interface {
	SaveEvent(ctx context.Context, rec EventRecord) (Result, error)
	GetEvent(ctx context.Context, runID string, eventID int) (EventRecord, bool)
	ListEvents(ctx context.Context, runID string) []EventRecord
	ListRuns(ctx context.Context) []string
}
