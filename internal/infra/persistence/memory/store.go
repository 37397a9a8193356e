// Package memory implements the event store in process memory, for tests and
// ephemeral runs.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"trackcore/pkg/domain"
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.EventStore = (*Store)(nil)

type eventKey struct {
	runID   string
	eventID int
}

// Store keeps event records in memory and evaluates the configured rules
// engine before accepting a save.
type Store struct {
	mu     sync.RWMutex
	events map[eventKey]domain.EventRecord
	engine *domain.RulesEngine
	nowFn  func() time.Time
}

// NewStore constructs an in-memory store backed by the provided rules engine.
// A nil engine skips validation.
func NewStore(engine *domain.RulesEngine) *Store {
	return &Store{
		events: make(map[eventKey]domain.EventRecord),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

// SaveEvent validates and stores one event record. Blocking rule violations
// reject the save with RuleViolationError; an already-recorded (run, event)
// pair is an error since event products are immutable.
func (s *Store) SaveEvent(ctx context.Context, rec domain.EventRecord) (domain.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := eventKey{runID: rec.RunID, eventID: rec.EventID}
	if _, exists := s.events[key]; exists {
		return domain.Result{}, fmt.Errorf("event %d already recorded for run %q", rec.EventID, rec.RunID)
	}

	var result domain.Result
	if s.engine != nil {
		res, err := s.engine.Evaluate(ctx, rec.Product)
		if err != nil {
			return domain.Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = s.nowFn()
	}
	s.events[key] = cloneRecord(rec)
	return result, nil
}

// GetEvent retrieves one event record.
func (s *Store) GetEvent(_ context.Context, runID string, eventID int) (domain.EventRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.events[eventKey{runID: runID, eventID: eventID}]
	if !ok {
		return domain.EventRecord{}, false
	}
	return cloneRecord(rec), true
}

// ListEvents returns a run's records in ascending event order.
func (s *Store) ListEvents(_ context.Context, runID string) []domain.EventRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.EventRecord
	for key, rec := range s.events {
		if key.runID == runID {
			out = append(out, cloneRecord(rec))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EventID < out[j].EventID })
	return out
}

// ListRuns returns the distinct run ids, sorted.
func (s *Store) ListRuns(_ context.Context) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	for key := range s.events {
		seen[key.runID] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for runID := range seen {
		out = append(out, runID)
	}
	sort.Strings(out)
	return out
}

// Snapshot is the exportable full state, used by durable wrappers.
type Snapshot struct {
	Events []domain.EventRecord `json:"events"`
}

// ExportState returns a deterministic snapshot of all records, ordered by run
// then event id.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.EventRecord, 0, len(s.events))
	for _, rec := range s.events {
		out = append(out, cloneRecord(rec))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RunID != out[j].RunID {
			return out[i].RunID < out[j].RunID
		}
		return out[i].EventID < out[j].EventID
	})
	return Snapshot{Events: out}
}

// ImportState replaces the store contents with the snapshot, bypassing rules:
// persisted records were validated when first saved.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[eventKey]domain.EventRecord, len(snapshot.Events))
	for _, rec := range snapshot.Events {
		s.events[eventKey{runID: rec.RunID, eventID: rec.EventID}] = cloneRecord(rec)
	}
}

func cloneRecord(rec domain.EventRecord) domain.EventRecord {
	cp := rec
	cp.Product = cloneProduct(rec.Product)
	return cp
}

func cloneProduct(p domain.EventProduct) domain.EventProduct {
	cp := p
	cp.Truths = append([]domain.TruthRecord(nil), p.Truths...)
	cp.Associations = append([]domain.TruthAssociation(nil), p.Associations...)
	if p.Particles != nil {
		cp.Particles = make([]domain.Particle, len(p.Particles))
		for i, particle := range p.Particles {
			cp.Particles[i] = cloneParticle(particle)
		}
	}
	return cp
}

func cloneParticle(p domain.Particle) domain.Particle {
	cp := p
	cp.Trajectory = append([]domain.TrajectoryPoint(nil), p.Trajectory...)
	cp.Daughters = append([]int(nil), p.Daughters...)
	return cp
}
