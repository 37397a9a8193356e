package core

import (
	"strings"

	"go.uber.org/zap"

	"trackcore/pkg/domain"
)

// Creation processes that mark a secondary as EM shower detail: pair
// production, Compton/incoherent scattering, the photoelectric effect,
// bremsstrahlung, annihilation, and every ionization variant. Matched by
// substring against the engine's process name.
var emShowerProcesses = []string{
	"conv",
	"LowEnConversion",
	"Pair",
	"compt",
	"Compt",
	"Brem",
	"phot",
	"Photo",
	"Ion",
	"annihil",
}

func isEMShowerProcess(name string) bool {
	for _, marker := range emShowerProcesses {
		if strings.Contains(name, marker) {
			return true
		}
	}
	return false
}

// EnterTrack decides whether the newly entered track is recorded at all, and
// under which parent. It must be called before any Step for the track. The
// only error is a duplicate track id, which indicates the engine violated the
// per-event uniqueness contract.
func (r *Recorder) EnterTrack(ts TrackSnapshot) error {
	r.current.clear()

	trackID := ts.TrackID + r.offset
	parentID := ts.ParentID + r.offset

	process := "unknown"
	if ts.Origin.Primary() {
		// Primaries trace to a generator truth record: no creator process,
		// and parent id forced to zero even when several truth records share
		// the event. They bypass both the shower test and the energy cut.
		process = "primary"
		parentID = 0
	} else {
		if p := ts.Origin.Process(); p != "" {
			process = p
		}

		if !r.cfg.KeepEMShowerDaughters && isEMShowerProcess(process) {
			r.dropTrack(trackID, parentID)
			r.metrics.ObserveTrack(TrackDroppedShower)
			return nil
		}

		if toGeV(ts.KineticEnergy) < r.cfg.EnergyCutGeV {
			r.dropTrack(trackID, parentID)
			r.metrics.ObserveTrack(TrackDroppedEnergy)
			return nil
		}

		if !r.registry.KnownParticle(parentID) {
			// The raw parent was never admitted. Remember this track's own
			// parentage in case it produces daughters we do keep, then try to
			// substitute the nearest kept ancestor.
			r.parents.Record(trackID, parentID)
			if ancestor := r.resolveKnownAncestor(parentID); ancestor != domain.NoTrackID {
				parentID = ancestor
			} else {
				r.log.Warn("parent not found in registry or parent map, keeping raw id to aid debugging",
					zap.Int("parent_id", parentID),
					zap.Int("track_id", trackID))
				r.metrics.ObserveWarning(WarnOrphanedParent)
			}
		}
	}

	p := domain.NewParticle(trackID, ts.PDGCode, process, parentID, toGeV(ts.Mass))
	p.Polarization = ts.Polarization
	if err := r.registry.Add(p); err != nil {
		r.current.clear()
		return err
	}

	r.current.particle = p
	// Without an external keep filter the decision is already made.
	r.current.keep = r.keep == nil
	r.current.ref = TrackRef{Kind: TrackRefActive, ID: trackID}
	r.metrics.ObserveTrack(TrackAdmitted)
	return nil
}

// dropTrack records the parentage of a track that is not admitted and leaves
// a reference to its nearest kept ancestor in the current slot, so steps for
// this track short-circuit while deposits can still be attributed.
func (r *Recorder) dropTrack(trackID, parentID int) {
	r.parents.Record(trackID, parentID)
	ancestor := r.resolveKnownAncestor(trackID)
	if ancestor == domain.NoTrackID {
		r.current.ref = TrackRef{Kind: TrackRefNone}
		return
	}
	r.current.ref = TrackRef{Kind: TrackRefDropped, ID: ancestor}
}
