package core

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetricsRecorder exposes the recorder's counters through a
// Prometheus registry for scraped deployments.
type PrometheusMetricsRecorder struct {
	tracks   *prometheus.CounterVec
	warnings *prometheus.CounterVec
	events   prometheus.Counter
	emitted  prometheus.Counter
	points   prometheus.Counter
	finalize prometheus.Histogram
}

// NewPrometheusMetricsRecorder registers the recorder's metrics with reg.
// Passing nil registers against the default registerer.
func NewPrometheusMetricsRecorder(reg prometheus.Registerer) *PrometheusMetricsRecorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &PrometheusMetricsRecorder{
		tracks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "trackcore_tracks_total",
			Help: "Tracks seen by the admission filter, by outcome.",
		}, []string{"outcome"}),
		warnings: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "trackcore_warnings_total",
			Help: "Non-fatal bookkeeping diagnostics, by kind.",
		}, []string{"kind"}),
		events: factory.NewCounter(prometheus.CounterOpts{
			Name: "trackcore_events_total",
			Help: "Events finalized.",
		}),
		emitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "trackcore_particles_emitted_total",
			Help: "Particles emitted into event products.",
		}),
		points: factory.NewCounter(prometheus.CounterOpts{
			Name: "trackcore_trajectory_points_total",
			Help: "Trajectory points recorded.",
		}),
		finalize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "trackcore_event_finalize_seconds",
			Help:    "Wall time of event finalization.",
			Buckets: prometheus.ExponentialBuckets(1e-5, 4, 10),
		}),
	}
}

// ObserveTrack counts a track outcome.
func (r *PrometheusMetricsRecorder) ObserveTrack(outcome TrackOutcome) {
	r.tracks.WithLabelValues(string(outcome)).Inc()
}

// ObserveEvent accumulates per-event totals.
func (r *PrometheusMetricsRecorder) ObserveEvent(particles, trajectoryPoints int, duration time.Duration) {
	r.events.Inc()
	r.emitted.Add(float64(particles))
	r.points.Add(float64(trajectoryPoints))
	r.finalize.Observe(duration.Seconds())
}

// ObserveWarning counts a diagnostic warning by kind.
func (r *PrometheusMetricsRecorder) ObserveWarning(kind string) {
	r.warnings.WithLabelValues(kind).Inc()
}
