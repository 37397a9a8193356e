package core

import (
	"context"
	"time"

	"trackcore/pkg/domain"
)

// EndEvent completes the event: daughter lists are back-filled, the run-level
// track-id offset advances past the highest emitted id, and the registry is
// drained into the event product in ascending track-id order.
//
// Every emitted particle is associated with every supplied truth record. The
// source bookkeeping never attributed particles to individual generator
// records and downstream consumers rely on that fan-out; do not narrow it to
// a per-particle mapping without confirming with the data owners.
func (r *Recorder) EndEvent(truths []domain.TruthRecord) domain.EventProduct {
	started := time.Now()
	var span TraceSpan
	if r.tracer != nil {
		_, span = r.tracer.Start(context.Background(), "finalize_event")
	}

	r.linkDaughters()

	live := r.registry.drainLive()
	if len(live) > 0 {
		r.offset = live[len(live)-1].TrackID + 1
	}

	particles := make([]domain.Particle, 0, len(live))
	for _, p := range live {
		particles = append(particles, *p)
	}

	var associations []domain.TruthAssociation
	if len(truths) > 0 && len(particles) > 0 {
		associations = make([]domain.TruthAssociation, 0, len(truths)*len(particles))
		for t := range truths {
			for i := range particles {
				associations = append(associations, domain.TruthAssociation{TruthIndex: t, ParticleIndex: i})
			}
		}
	}

	r.metrics.ObserveEvent(len(particles), r.eventPoints, time.Since(started))
	if span != nil {
		span.End(nil)
	}

	return domain.EventProduct{
		Truths:       append([]domain.TruthRecord(nil), truths...),
		Particles:    particles,
		Associations: associations,
	}
}
