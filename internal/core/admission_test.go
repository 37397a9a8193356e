package core

import (
	"errors"
	"testing"

	"trackcore/pkg/domain"
)

func enter(t *testing.T, r *Recorder, ts TrackSnapshot) {
	t.Helper()
	if err := r.EnterTrack(ts); err != nil {
		t.Fatalf("EnterTrack(%d): %v", ts.TrackID, err)
	}
}

func TestEnterTrackPrimary(t *testing.T) {
	r := NewRecorder(DefaultConfig())
	r.BeginEvent()

	enter(t, r, TrackSnapshot{
		TrackID:       1,
		ParentID:      -1, // engine convention for generator particles
		PDGCode:       13,
		Origin:        PrimaryOrigin(0),
		KineticEnergy: 1000,
		Mass:          105.66,
		Polarization:  domain.Vector3{Z: 1},
	})

	p, ok := r.Registry().Find(1)
	if !ok {
		t.Fatalf("primary not registered")
	}
	if p.Process != "primary" {
		t.Fatalf("process = %q, want primary", p.Process)
	}
	if p.ParentID != 0 {
		t.Fatalf("primary parent = %d, want 0", p.ParentID)
	}
	if p.Mass != 0.10566 {
		t.Fatalf("mass = %v GeV, want 0.10566", p.Mass)
	}
	if p.Polarization.Z != 1 {
		t.Fatalf("polarization not carried over")
	}
	if ref := r.CurrentTrack(); ref.Kind != TrackRefActive || ref.ID != 1 {
		t.Fatalf("current ref = %+v, want active 1", ref)
	}
}

func TestEnterTrackPrimaryBypassesEnergyCut(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EnergyCutGeV = 10 // absurdly high
	r := NewRecorder(cfg)
	r.BeginEvent()

	enter(t, r, TrackSnapshot{TrackID: 1, Origin: PrimaryOrigin(0), KineticEnergy: 1})
	if !r.Registry().KnownParticle(1) {
		t.Fatalf("primary below the cut must still be recorded")
	}
}

func TestEnterTrackEMShowerDrop(t *testing.T) {
	cfg := DefaultConfig()
	cfg.KeepEMShowerDaughters = false
	r := NewRecorder(cfg)
	r.BeginEvent()

	enter(t, r, TrackSnapshot{TrackID: 1, Origin: PrimaryOrigin(0), KineticEnergy: 1000})
	enter(t, r, TrackSnapshot{TrackID: 2, ParentID: 1, Origin: SecondaryOrigin("compt"), KineticEnergy: 50})

	if r.Registry().KnownParticle(2) {
		t.Fatalf("compt secondary should be dropped")
	}
	if ref := r.CurrentTrack(); ref.Kind != TrackRefDropped || ref.ID != 1 {
		t.Fatalf("dropped ref = %+v, want dropped ancestor 1", ref)
	}

	// Grandchild of the dropped track resolves through the parent map to the
	// primary and is recorded under it.
	enter(t, r, TrackSnapshot{TrackID: 3, ParentID: 2, Origin: SecondaryOrigin("Decay"), KineticEnergy: 20})
	p, ok := r.Registry().Find(3)
	if !ok {
		t.Fatalf("grandchild not recorded")
	}
	if p.ParentID != 1 {
		t.Fatalf("grandchild parent = %d, want substituted ancestor 1", p.ParentID)
	}
}

func TestEnterTrackEnergyCut(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EnergyCutGeV = 0.001
	r := NewRecorder(cfg)
	r.BeginEvent()

	enter(t, r, TrackSnapshot{TrackID: 1, Origin: PrimaryOrigin(0), KineticEnergy: 1000})
	// 0.5 MeV = 0.0005 GeV, below the 0.001 GeV cut.
	enter(t, r, TrackSnapshot{TrackID: 2, ParentID: 1, Origin: SecondaryOrigin("Decay"), KineticEnergy: 0.5})
	if r.Registry().KnownParticle(2) {
		t.Fatalf("sub-cut secondary should be dropped")
	}

	// 2 MeV passes the cut.
	enter(t, r, TrackSnapshot{TrackID: 3, ParentID: 1, Origin: SecondaryOrigin("Decay"), KineticEnergy: 2})
	if !r.Registry().KnownParticle(3) {
		t.Fatalf("above-cut secondary should be recorded")
	}
}

func TestEnterTrackOrphanKeepsRawParent(t *testing.T) {
	metrics := NewExpvarMetricsRecorder("")
	r := NewRecorder(DefaultConfig(), WithMetrics(metrics))
	r.BeginEvent()

	// Parent 9 was never seen by the filter at all.
	enter(t, r, TrackSnapshot{TrackID: 2, ParentID: 9, Origin: SecondaryOrigin("Decay"), KineticEnergy: 10})
	p, ok := r.Registry().Find(2)
	if !ok {
		t.Fatalf("orphan not recorded")
	}
	if p.ParentID != 9 {
		t.Fatalf("orphan parent = %d, want raw 9", p.ParentID)
	}
	if got := metrics.Snapshot().Warnings[WarnOrphanedParent]; got != 1 {
		t.Fatalf("orphaned_parent warnings = %d, want 1", got)
	}
}

func TestEnterTrackUnknownProcessDefaults(t *testing.T) {
	r := NewRecorder(DefaultConfig())
	r.BeginEvent()

	enter(t, r, TrackSnapshot{TrackID: 1, Origin: PrimaryOrigin(0)})
	enter(t, r, TrackSnapshot{TrackID: 2, ParentID: 1, Origin: SecondaryOrigin(""), KineticEnergy: 10})
	p, _ := r.Registry().Find(2)
	if p.Process != "unknown" {
		t.Fatalf("process = %q, want unknown", p.Process)
	}
}

func TestEnterTrackDuplicateID(t *testing.T) {
	r := NewRecorder(DefaultConfig())
	r.BeginEvent()

	enter(t, r, TrackSnapshot{TrackID: 1, Origin: PrimaryOrigin(0)})
	err := r.EnterTrack(TrackSnapshot{TrackID: 1, Origin: PrimaryOrigin(1)})
	var dup ErrDuplicateTrack
	if !errors.As(err, &dup) {
		t.Fatalf("expected duplicate track error, got %v", err)
	}
	if ref := r.CurrentTrack(); ref.Kind != TrackRefNone {
		t.Fatalf("current ref after duplicate = %+v, want none", ref)
	}
}

func TestIsEMShowerProcess(t *testing.T) {
	for _, name := range []string{"conv", "compt", "eBrem", "phot", "eIoni", "annihil", "muPairProd", "LowEnConversion"} {
		if !isEMShowerProcess(name) {
			t.Fatalf("%q should be an EM shower process", name)
		}
	}
	for _, name := range []string{"Decay", "muMinusCaptureAtRest", "neutronInelastic", "primary"} {
		if isEMShowerProcess(name) {
			t.Fatalf("%q should not be an EM shower process", name)
		}
	}
}
