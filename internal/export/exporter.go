// Package export writes finalized event records to blob storage as JSON
// documents, one object per event.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"trackcore/internal/infra/blob"
	"trackcore/pkg/domain"
)

// Exporter serializes event records and uploads them through a blob store.
type Exporter struct {
	store blob.Store
}

// NewExporter wraps the blob store.
func NewExporter(store blob.Store) *Exporter {
	return &Exporter{store: store}
}

// Key returns the object key for a run/event pair. Events are zero-padded so
// lexicographic listing matches numeric order.
func Key(runID string, eventID int) string {
	return fmt.Sprintf("runs/%s/events/%06d.json", runID, eventID)
}

// ExportEvent uploads one record. The blob layer enforces create-only
// semantics, so re-exporting an already-written event fails.
func (e *Exporter) ExportEvent(ctx context.Context, rec domain.EventRecord) (blob.Info, error) {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return blob.Info{}, fmt.Errorf("encode event %s/%d: %w", rec.RunID, rec.EventID, err)
	}
	info, err := e.store.Put(ctx, Key(rec.RunID, rec.EventID), bytes.NewReader(data), blob.PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"run_id": rec.RunID},
	})
	if err != nil {
		return blob.Info{}, fmt.Errorf("upload event %s/%d: %w", rec.RunID, rec.EventID, err)
	}
	return info, nil
}

// ExportRun uploads every event of a run already present in the store,
// returning the uploaded object infos in event order.
func (e *Exporter) ExportRun(ctx context.Context, store domain.EventStore, runID string) ([]blob.Info, error) {
	recs := store.ListEvents(ctx, runID)
	infos := make([]blob.Info, 0, len(recs))
	for _, rec := range recs {
		info, err := e.ExportEvent(ctx, rec)
		if err != nil {
			return infos, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}
