package core

import (
	"context"
	"time"
)

// TrackOutcome labels what became of a track the admission filter saw.
type TrackOutcome string

// Track outcomes reported to the metrics recorder.
const (
	TrackAdmitted      TrackOutcome = "admitted"
	TrackDroppedShower TrackOutcome = "dropped_em_shower"
	TrackDroppedEnergy TrackOutcome = "dropped_energy_cut"
	TrackArchived      TrackOutcome = "archived"
)

// Warning kinds reported to the metrics recorder.
const (
	WarnOrphanedParent = "orphaned_parent"
	WarnParentageCycle = "parentage_cycle"
)

// MetricsRecorder receives the recorder's bookkeeping outcomes. All methods
// are called from the engine's callback thread and must not block.
type MetricsRecorder interface {
	ObserveTrack(outcome TrackOutcome)
	ObserveEvent(particles, trajectoryPoints int, duration time.Duration)
	ObserveWarning(kind string)
}

// NoopMetrics discards every observation.
type NoopMetrics struct{}

func (NoopMetrics) ObserveTrack(TrackOutcome)            {}
func (NoopMetrics) ObserveEvent(int, int, time.Duration) {}
func (NoopMetrics) ObserveWarning(string)                {}

// Tracer opens spans around recorder operations.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

// TraceSpan ends a span, recording the operation's error if any.
type TraceSpan interface {
	End(err error)
}
