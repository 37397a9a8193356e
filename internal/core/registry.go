package core

import (
	"fmt"
	"sort"

	"trackcore/pkg/domain"
)

// trackEntry holds a registered particle, or just the residual parent id once
// the payload has been archived or drained.
type trackEntry struct {
	particle *domain.Particle
	parentID int
}

// TrackRegistry is the per-event collection of particle records, keyed by
// track id. Archiving releases a record's payload while keeping the parent id
// resolvable for descendants.
type TrackRegistry struct {
	entries map[int]*trackEntry
}

// NewTrackRegistry returns an empty registry.
func NewTrackRegistry() *TrackRegistry {
	return &TrackRegistry{entries: make(map[int]*trackEntry)}
}

// ErrDuplicateTrack signals an engine contract violation: track ids must be
// unique within an event.
type ErrDuplicateTrack struct {
	TrackID int
}

func (e ErrDuplicateTrack) Error() string {
	return fmt.Sprintf("track %d already registered in this event", e.TrackID)
}

// Add registers a particle under its track id.
func (r *TrackRegistry) Add(p *domain.Particle) error {
	if _, exists := r.entries[p.TrackID]; exists {
		return ErrDuplicateTrack{TrackID: p.TrackID}
	}
	r.entries[p.TrackID] = &trackEntry{particle: p, parentID: p.ParentID}
	return nil
}

// Archive tombstones the entry: the payload is released but the parent id
// stays answerable through MotherOf. Archiving an unknown id is a no-op.
func (r *TrackRegistry) Archive(trackID int) {
	if e, ok := r.entries[trackID]; ok {
		e.particle = nil
	}
}

// KnownParticle reports whether a live (non-archived) record exists for the
// id. Archived entries are excluded: only kept ancestors are useful parents.
func (r *TrackRegistry) KnownParticle(trackID int) bool {
	e, ok := r.entries[trackID]
	return ok && e.particle != nil
}

// Find returns the live record for the id.
func (r *TrackRegistry) Find(trackID int) (*domain.Particle, bool) {
	e, ok := r.entries[trackID]
	if !ok || e.particle == nil {
		return nil, false
	}
	return e.particle, true
}

// MotherOf returns the parent id recorded for the entry. It answers for
// archived entries too, which lets daughter linking traverse pruned nodes.
func (r *TrackRegistry) MotherOf(trackID int) (int, bool) {
	e, ok := r.entries[trackID]
	if !ok {
		return domain.NoTrackID, false
	}
	return e.parentID, true
}

// Clear empties the registry.
func (r *TrackRegistry) Clear() {
	r.entries = make(map[int]*trackEntry)
}

// Len counts all entries, archived included.
func (r *TrackRegistry) Len() int { return len(r.entries) }

// ids returns every registered id, archived included, in ascending order.
func (r *TrackRegistry) ids() []int {
	out := make([]int, 0, len(r.entries))
	for id := range r.entries {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// drainLive transfers ownership of every live record to the caller in
// ascending track-id order, leaving tombstones behind.
func (r *TrackRegistry) drainLive() []*domain.Particle {
	var out []*domain.Particle
	for _, id := range r.ids() {
		e := r.entries[id]
		if e.particle == nil {
			continue
		}
		out = append(out, e.particle)
		e.particle = nil
	}
	return out
}
