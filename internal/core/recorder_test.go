package core

import (
	"testing"

	"trackcore/pkg/domain"
)

// runSimpleEvent drives one event with a primary muon that decays into an
// electron, returning the finalized product.
func runSimpleEvent(t *testing.T, r *Recorder, truths []domain.TruthRecord) domain.EventProduct {
	t.Helper()
	r.BeginEvent()

	enter(t, r, TrackSnapshot{TrackID: 1, PDGCode: 13, Origin: PrimaryOrigin(0), KineticEnergy: 1000, Mass: 105.66})
	r.Step(StepSnapshot{PostPosition: domain.Vector3{Z: 50}, PostTime: 1, Process: "Transportation"})
	r.ExitTrack(TrackSnapshot{TrackID: 1, Weight: 1, FinalProcess: "Decay"})

	enter(t, r, TrackSnapshot{TrackID: 2, ParentID: 1, PDGCode: 11, Origin: SecondaryOrigin("Decay"), KineticEnergy: 50, Mass: 0.511})
	r.Step(StepSnapshot{PrePosition: domain.Vector3{Z: 50}, PostPosition: domain.Vector3{Z: 80}, PreTime: 1, PostTime: 2, Process: "eIoni"})
	r.ExitTrack(TrackSnapshot{TrackID: 2, Weight: 1, FinalProcess: "eIoni"})

	return r.EndEvent(truths)
}

func TestEndEventEmitsGenealogy(t *testing.T) {
	r := NewRecorder(DefaultConfig())
	truths := []domain.TruthRecord{{Label: "single_muon"}}
	product := runSimpleEvent(t, r, truths)

	if len(product.Particles) != 2 {
		t.Fatalf("emitted %d particles, want 2", len(product.Particles))
	}
	muon, electron := product.Particles[0], product.Particles[1]
	if muon.TrackID != 1 || electron.TrackID != 2 {
		t.Fatalf("emission order = [%d %d], want ascending track ids", muon.TrackID, electron.TrackID)
	}
	if electron.ParentID != 1 {
		t.Fatalf("electron parent = %d", electron.ParentID)
	}
	if len(muon.Daughters) != 1 || muon.Daughters[0] != 2 {
		t.Fatalf("muon daughters = %v, want [2]", muon.Daughters)
	}
	if muon.EndProcess != "Decay" {
		t.Fatalf("muon end process = %q", muon.EndProcess)
	}
	if len(product.Truths) != 1 || product.Truths[0].Label != "single_muon" {
		t.Fatalf("truths = %v", product.Truths)
	}
}

func TestEndEventTruthFanOut(t *testing.T) {
	r := NewRecorder(DefaultConfig())
	truths := []domain.TruthRecord{{Label: "gen_a"}, {Label: "gen_b"}}
	product := runSimpleEvent(t, r, truths)

	// Every particle is associated with every truth record.
	want := len(truths) * len(product.Particles)
	if len(product.Associations) != want {
		t.Fatalf("associations = %d, want %d", len(product.Associations), want)
	}
	seen := make(map[[2]int]bool)
	for _, a := range product.Associations {
		seen[[2]int{a.TruthIndex, a.ParticleIndex}] = true
	}
	for ti := range truths {
		for pi := range product.Particles {
			if !seen[[2]int{ti, pi}] {
				t.Fatalf("missing association truth=%d particle=%d", ti, pi)
			}
		}
	}
}

func TestTrackIDOffsetAdvancesAcrossEvents(t *testing.T) {
	r := NewRecorder(DefaultConfig())

	runSimpleEvent(t, r, nil)
	if r.TrackIDOffset() != 3 {
		t.Fatalf("offset after event 1 = %d, want 3", r.TrackIDOffset())
	}

	product := runSimpleEvent(t, r, nil)
	if product.Particles[0].TrackID != 4 || product.Particles[1].TrackID != 5 {
		t.Fatalf("event 2 ids = [%d %d], want offset-shifted [4 5]",
			product.Particles[0].TrackID, product.Particles[1].TrackID)
	}
	if product.Particles[1].ParentID != 4 {
		t.Fatalf("event 2 electron parent = %d, want 4", product.Particles[1].ParentID)
	}
	if r.TrackIDOffset() != 6 {
		t.Fatalf("offset after event 2 = %d, want 6", r.TrackIDOffset())
	}
}

func TestOffsetUnchangedWhenNothingEmitted(t *testing.T) {
	r := NewRecorder(DefaultConfig(), WithKeepFilter(regionKeepFilter{minX: 1e9}))

	r.BeginEvent()
	enter(t, r, TrackSnapshot{TrackID: 1, Origin: PrimaryOrigin(0), KineticEnergy: 1000})
	r.Step(StepSnapshot{PostTime: 1, Process: "Transportation"})
	r.ExitTrack(TrackSnapshot{TrackID: 1})
	product := r.EndEvent(nil)

	if len(product.Particles) != 0 {
		t.Fatalf("unexpected emission")
	}
	if r.TrackIDOffset() != 0 {
		t.Fatalf("offset advanced despite empty event: %d", r.TrackIDOffset())
	}
}

func TestArchivedDaughterLinkedToMother(t *testing.T) {
	r := NewRecorder(DefaultConfig(), WithKeepFilter(regionKeepFilter{minX: 0}))
	r.BeginEvent()

	// Mother satisfies the filter immediately.
	enter(t, r, TrackSnapshot{TrackID: 1, Origin: PrimaryOrigin(0), KineticEnergy: 1000})
	r.Step(StepSnapshot{PostPosition: domain.Vector3{X: 10}, PostTime: 1, Process: "Transportation"})
	r.ExitTrack(TrackSnapshot{TrackID: 1, Weight: 1, FinalProcess: "Decay"})

	// Daughter never does and is archived at exit.
	enter(t, r, TrackSnapshot{TrackID: 2, ParentID: 1, Origin: SecondaryOrigin("Decay"), KineticEnergy: 10})
	r.Step(StepSnapshot{PrePosition: domain.Vector3{X: -50}, PostPosition: domain.Vector3{X: -90}, PostTime: 2, Process: "Transportation"})
	r.ExitTrack(TrackSnapshot{TrackID: 2})

	product := r.EndEvent(nil)
	if len(product.Particles) != 1 {
		t.Fatalf("emitted %d particles, want only the mother", len(product.Particles))
	}
	// The archived daughter still shows up in the mother's daughter list.
	if got := product.Particles[0].Daughters; len(got) != 1 || got[0] != 2 {
		t.Fatalf("mother daughters = %v, want [2]", got)
	}
}

func TestExitTrackWithoutCurrentParticle(t *testing.T) {
	cfg := DefaultConfig()
	cfg.KeepEMShowerDaughters = false
	r := NewRecorder(cfg)
	r.BeginEvent()

	enter(t, r, TrackSnapshot{TrackID: 1, Origin: PrimaryOrigin(0), KineticEnergy: 1000})
	enter(t, r, TrackSnapshot{TrackID: 2, ParentID: 1, Origin: SecondaryOrigin("eBrem"), KineticEnergy: 10})
	// Track 2 was dropped at admission; its exit must be a no-op.
	r.ExitTrack(TrackSnapshot{TrackID: 2})

	if ref := r.CurrentTrack(); ref.Kind != TrackRefNone {
		t.Fatalf("current ref after exit = %+v, want none", ref)
	}
}

func TestBeginEventDiscardsAbortedEvent(t *testing.T) {
	r := NewRecorder(DefaultConfig())
	r.BeginEvent()
	enter(t, r, TrackSnapshot{TrackID: 1, Origin: PrimaryOrigin(0), KineticEnergy: 1000})
	r.Step(StepSnapshot{PostTime: 1, Process: "Transportation"})
	// Event aborted: no ExitTrack, no EndEvent.

	product := runSimpleEvent(t, r, nil)
	if len(product.Particles) != 2 {
		t.Fatalf("aborted event leaked into the next one: %d particles", len(product.Particles))
	}
	if product.Particles[0].NumTrajectoryPoints() != 2 {
		t.Fatalf("stale trajectory points leaked: %d", product.Particles[0].NumTrajectoryPoints())
	}
}
