package core

import (
	"go.uber.org/zap"

	"trackcore/pkg/domain"
)

// TrackRefKind tags what the engine is currently stepping from the recorder's
// point of view.
type TrackRefKind int

const (
	// TrackRefNone means no recorded particle and no resolvable ancestor.
	TrackRefNone TrackRefKind = iota
	// TrackRefActive means the current track is registered and accumulating.
	TrackRefActive
	// TrackRefDropped means the current track was not admitted; ID names its
	// nearest kept ancestor for detector-response attribution.
	TrackRefDropped
)

// TrackRef identifies the current track, replacing the legacy convention of
// negating a dropped track's ancestor id.
type TrackRef struct {
	Kind TrackRefKind
	ID   int
}

// currentTrack is the transient slot bridging the enter/step/exit sequence
// for the track being stepped. Undefined between tracks.
type currentTrack struct {
	particle   *domain.Particle
	keep       bool
	ref        TrackRef
	timeOffset float64 // ns, accumulated by photon re-timing
}

func (c *currentTrack) clear() {
	*c = currentTrack{ref: TrackRef{Kind: TrackRefNone}}
}

// KeepFilter decides whether a particle must be kept based on a trajectory
// point's position. Consulted after every appended point until it answers
// true; the decision never reverts.
type KeepFilter interface {
	MustKeep(pos domain.FourVector) bool
}

// Recorder maintains the genealogy and trajectories of the particles a
// transport engine simulates, one event at a time. It is driven strictly
// sequentially through BeginEvent, EnterTrack, Step, ExitTrack and EndEvent;
// no locking is done and none is needed under that contract.
type Recorder struct {
	cfg     Config
	log     *zap.Logger
	metrics MetricsRecorder
	tracer  Tracer
	keep    KeepFilter

	registry *TrackRegistry
	parents  parentageMap
	current  currentTrack

	// offset keeps track ids globally unique across the run; it advances to
	// the highest emitted id + 1 after every event that produced particles.
	offset int

	eventPoints int
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithLogger sets the diagnostics logger. Defaults to a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(r *Recorder) {
		if log != nil {
			r.log = log
		}
	}
}

// WithMetrics sets the metrics recorder. Defaults to a no-op recorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(r *Recorder) {
		if m != nil {
			r.metrics = m
		}
	}
}

// WithTracer sets a tracer spanning event finalization.
func WithTracer(t Tracer) Option {
	return func(r *Recorder) { r.tracer = t }
}

// WithKeepFilter installs the external keep predicate. Without one, every
// admitted particle is kept unconditionally.
func WithKeepFilter(f KeepFilter) Option {
	return func(r *Recorder) { r.keep = f }
}

// NewRecorder constructs a recorder with the given policy.
func NewRecorder(cfg Config, opts ...Option) *Recorder {
	if cfg.IgnoredStepProcesses == nil {
		cfg.IgnoredStepProcesses = defaultIgnoredStepProcesses
	}
	r := &Recorder{
		cfg:      cfg,
		log:      zap.NewNop(),
		metrics:  NoopMetrics{},
		registry: NewTrackRegistry(),
		parents:  newParentageMap(),
	}
	r.current.clear()
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// BeginEvent clears all per-event state. An aborted event that never reached
// EndEvent is discarded here.
func (r *Recorder) BeginEvent() {
	r.current.clear()
	r.registry.Clear()
	r.parents.Clear()
	r.eventPoints = 0
}

// ExitTrack finalizes the current record with its exit weight and terminating
// process, or archives it when no reason to keep it was found. A missing
// current particle is tolerated: the track was dropped at admission.
func (r *Recorder) ExitTrack(ts TrackSnapshot) {
	cur := &r.current
	if cur.particle == nil {
		cur.clear()
		return
	}
	if !cur.keep {
		// Parentage stays available through the registry tombstone.
		r.registry.Archive(cur.particle.TrackID)
		r.metrics.ObserveTrack(TrackArchived)
		cur.clear()
		return
	}
	cur.particle.Weight = ts.Weight
	cur.particle.EndProcess = ts.FinalProcess
	cur.clear()
}

// CurrentTrack exposes the tagged reference for the track being stepped, so
// detector-response code can attribute energy deposits to the recorded
// particle or to a dropped track's nearest kept ancestor.
func (r *Recorder) CurrentTrack() TrackRef { return r.current.ref }

// TrackIDOffset returns the id offset that will be applied to the next
// event's raw track ids.
func (r *Recorder) TrackIDOffset() int { return r.offset }

// Registry exposes the per-event registry for inspection between EnterTrack
// and EndEvent.
func (r *Recorder) Registry() *TrackRegistry { return r.registry }

// resolveKnownAncestor walks the parent map from trackID and returns the
// nearest ancestor that is live in the registry, or NoTrackID. A capped-out
// walk means a parentage cycle, which the engine contract forbids.
func (r *Recorder) resolveKnownAncestor(trackID int) int {
	ancestor, cycled := r.parents.Resolve(trackID)
	if cycled {
		r.log.Warn("parentage chain exceeded event track count, assuming cycle",
			zap.Int("track_id", trackID))
		r.metrics.ObserveWarning(WarnParentageCycle)
		return domain.NoTrackID
	}
	if ancestor == domain.NoTrackID || !r.registry.KnownParticle(ancestor) {
		return domain.NoTrackID
	}
	return ancestor
}
