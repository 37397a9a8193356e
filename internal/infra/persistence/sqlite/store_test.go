package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"trackcore/pkg/domain"
)

func sampleRecord(eventID int) domain.EventRecord {
	return domain.EventRecord{
		RunID:   "run1",
		EventID: eventID,
		Product: domain.EventProduct{
			Particles: []domain.Particle{
				{TrackID: 1, PDGCode: 13, Process: "primary", Weight: 1},
			},
		},
	}
}

func TestSaveEventPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trackcore.db")
	ctx := context.Background()

	store, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := store.SaveEvent(ctx, sampleRecord(i)); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	events := reopened.ListEvents(ctx, "run1")
	if len(events) != 2 {
		t.Fatalf("events after reopen = %d, want 2", len(events))
	}
	rec, ok := reopened.GetEvent(ctx, "run1", 1)
	if !ok {
		t.Fatalf("event 1 lost on reopen")
	}
	if rec.Product.Particles[0].PDGCode != 13 {
		t.Fatalf("particle payload corrupted: %+v", rec.Product.Particles[0])
	}
	// Duplicate protection survives the reload.
	if _, err := reopened.SaveEvent(ctx, sampleRecord(0)); err == nil {
		t.Fatalf("duplicate save accepted after reopen")
	}
}

func TestNewStoreDefaultsAccessors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "trackcore.db")
	store, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("open with nested path: %v", err)
	}
	defer func() { _ = store.Close() }()
	if store.Path() != path {
		t.Fatalf("Path() = %q", store.Path())
	}
	if store.DB() == nil {
		t.Fatalf("DB() returned nil")
	}
	var n int
	if err := store.DB().QueryRow(`SELECT COUNT(*) FROM state`).Scan(&n); err != nil {
		t.Fatalf("state table missing: %v", err)
	}
}
