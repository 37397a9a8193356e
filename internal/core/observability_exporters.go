package core

import (
	"context"
	"encoding/json"
	"expvar"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

var expvarSeq uint64

// ExpvarMetricsRecorder publishes the recorder's counters via expvar, for
// deployments that prefer process-local metrics without external scrapers.
type ExpvarMetricsRecorder struct {
	name string

	mu         sync.Mutex
	tracks     map[TrackOutcome]int64
	warnings   map[string]int64
	events     int64
	particles  int64
	points     int64
	durationMS float64
}

// ExpvarMetricsSnapshot captures a read-only view of the recorded metrics.
type ExpvarMetricsSnapshot struct {
	Tracks           map[TrackOutcome]int64 `json:"tracks_total"`
	Warnings         map[string]int64       `json:"warnings_total"`
	Events           int64                  `json:"events_total"`
	Particles        int64                  `json:"particles_emitted_total"`
	TrajectoryPoints int64                  `json:"trajectory_points_total"`
	FinalizeMS       float64                `json:"finalize_ms_total"`
	RecordedAt       time.Time              `json:"recorded_at"`
}

// NewExpvarMetricsRecorder constructs an expvar-backed recorder published
// under the supplied name. When name is empty a unique one is generated.
func NewExpvarMetricsRecorder(name string) *ExpvarMetricsRecorder {
	if name == "" {
		id := atomic.AddUint64(&expvarSeq, 1)
		name = fmt.Sprintf("trackcore_recorder_metrics_%d", id)
	}
	rec := &ExpvarMetricsRecorder{
		name:     name,
		tracks:   make(map[TrackOutcome]int64),
		warnings: make(map[string]int64),
	}
	expvar.Publish(name, expvar.Func(func() any {
		return rec.Snapshot()
	}))
	return rec
}

// Name returns the expvar export name associated with the recorder.
func (r *ExpvarMetricsRecorder) Name() string { return r.name }

// Snapshot returns an immutable copy of the aggregated metrics.
func (r *ExpvarMetricsRecorder) Snapshot() ExpvarMetricsSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	tracks := make(map[TrackOutcome]int64, len(r.tracks))
	for outcome, count := range r.tracks {
		tracks[outcome] = count
	}
	warnings := make(map[string]int64, len(r.warnings))
	for kind, count := range r.warnings {
		warnings[kind] = count
	}

	return ExpvarMetricsSnapshot{
		Tracks:           tracks,
		Warnings:         warnings,
		Events:           r.events,
		Particles:        r.particles,
		TrajectoryPoints: r.points,
		FinalizeMS:       r.durationMS,
		RecordedAt:       time.Now().UTC(),
	}
}

// ObserveTrack counts a track outcome.
func (r *ExpvarMetricsRecorder) ObserveTrack(outcome TrackOutcome) {
	r.mu.Lock()
	r.tracks[outcome]++
	r.mu.Unlock()
}

// ObserveEvent accumulates per-event totals.
func (r *ExpvarMetricsRecorder) ObserveEvent(particles, trajectoryPoints int, duration time.Duration) {
	r.mu.Lock()
	r.events++
	r.particles += int64(particles)
	r.points += int64(trajectoryPoints)
	r.durationMS += float64(duration) / float64(time.Millisecond)
	r.mu.Unlock()
}

// ObserveWarning counts a diagnostic warning by kind.
func (r *ExpvarMetricsRecorder) ObserveWarning(kind string) {
	if kind == "" {
		return
	}
	r.mu.Lock()
	r.warnings[kind]++
	r.mu.Unlock()
}

// JSONTraceEntry represents a serialized span emitted by JSONTraceTracer.
type JSONTraceEntry struct {
	Operation  string    `json:"operation"`
	DurationMS float64   `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	EndedAt    time.Time `json:"ended_at"`
}

// JSONTraceTracer serializes spans to a writer and retains them for
// inspection.
type JSONTraceTracer struct {
	mu      sync.Mutex
	entries []JSONTraceEntry
	enc     *json.Encoder
}

// NewJSONTracer constructs a tracer that writes spans as JSON lines to the
// writer. A nil writer retains spans without emitting them.
func NewJSONTracer(w io.Writer) *JSONTraceTracer {
	var enc *json.Encoder
	if w != nil {
		enc = json.NewEncoder(w)
	}
	return &JSONTraceTracer{enc: enc}
}

// Entries returns a copy of all recorded spans.
func (t *JSONTraceTracer) Entries() []JSONTraceEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]JSONTraceEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Start implements the Tracer interface.
func (t *JSONTraceTracer) Start(ctx context.Context, operation string) (context.Context, TraceSpan) {
	return ctx, &jsonTraceSpan{
		tracer:    t,
		operation: operation,
		started:   time.Now().UTC(),
	}
}

type jsonTraceSpan struct {
	tracer    *JSONTraceTracer
	operation string
	started   time.Time
}

func (s *jsonTraceSpan) End(err error) {
	var errMsg string
	if err != nil {
		errMsg = err.Error()
	}
	ended := time.Now().UTC()
	entry := JSONTraceEntry{
		Operation:  s.operation,
		DurationMS: float64(ended.Sub(s.started)) / float64(time.Millisecond),
		Error:      errMsg,
		StartedAt:  s.started,
		EndedAt:    ended,
	}

	s.tracer.mu.Lock()
	s.tracer.entries = append(s.tracer.entries, entry)
	if s.tracer.enc != nil {
		_ = s.tracer.enc.Encode(entry)
	}
	s.tracer.mu.Unlock()
}
