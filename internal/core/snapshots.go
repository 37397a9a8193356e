package core

import "trackcore/pkg/domain"

// TrackOrigin says whether a track came straight from a generator truth
// record (primary) or was created during transport (secondary). It is decided
// once by the collaborator that builds the snapshot, so the recorder never
// inspects engine internals.
type TrackOrigin struct {
	primary    bool
	truthIndex int
	process    string
}

// PrimaryOrigin marks a track that traces to the truth record at truthIndex.
func PrimaryOrigin(truthIndex int) TrackOrigin {
	return TrackOrigin{primary: true, truthIndex: truthIndex}
}

// SecondaryOrigin marks a transport-created track with its creator process.
func SecondaryOrigin(process string) TrackOrigin {
	return TrackOrigin{process: process}
}

// Primary reports whether the track originates from a truth record.
func (o TrackOrigin) Primary() bool { return o.primary }

// TruthIndex returns the originating truth record index for primaries.
func (o TrackOrigin) TruthIndex() int { return o.truthIndex }

// Process returns the creator process name for secondaries.
func (o TrackOrigin) Process() string { return o.process }

// TrackSnapshot is the engine's view of a track at enter or exit. Values are
// valid only for the duration of the callback. Ids are the engine's raw,
// per-event ids; the recorder applies the cross-event offset. Energies and
// masses are in native MeV.
type TrackSnapshot struct {
	TrackID       int
	ParentID      int
	PDGCode       int
	Origin        TrackOrigin
	KineticEnergy float64
	Mass          float64
	Polarization  domain.Vector3

	// Exit-only fields.
	Weight       float64
	FinalProcess string
}

// StepSnapshot is the engine's view of one simulation step. Positions are in
// mm, momenta and energies in MeV, times in ns, velocity in mm/ns.
type StepSnapshot struct {
	PrePosition  domain.Vector3
	PostPosition domain.Vector3
	PreMomentum  domain.Vector3
	PostMomentum domain.Vector3

	PreTime  float64
	PostTime float64

	PreTotalEnergy  float64
	PostTotalEnergy float64

	Process       string
	StepLength    float64
	TrackVelocity float64
	ZeroRestMass  bool
}
