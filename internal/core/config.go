package core

// Config fixes the recorder's admission and trajectory policy at
// construction time.
type Config struct {
	// EnergyCutGeV drops secondaries created below this kinetic energy.
	EnergyCutGeV float64
	// StoreTrajectories controls whether intermediate step points are kept.
	// The synthesized start point is recorded regardless.
	StoreTrajectories bool
	// KeepEMShowerDaughters retains secondaries created by electromagnetic
	// shower processes. When false they are dropped but stay resolvable as
	// ancestors through the parent-id map.
	KeepEMShowerDaughters bool
	// CorrectPhotonTiming re-times steps of zero-rest-mass particles whose
	// reported step duration disagrees with the track velocity.
	CorrectPhotonTiming bool
	// IgnoredStepProcesses names step-terminating processes that are engine
	// bookkeeping rather than physics; such steps never become trajectory
	// points. Matched by substring.
	IgnoredStepProcesses []string
}

// Step-terminating processes injected by voxelization and optical readout
// accounting; they subdivide transport without physical meaning.
var defaultIgnoredStepProcesses = []string{"LArVoxel", "OpDetReadout"}

// DefaultConfig keeps everything: no energy cut, trajectories stored, EM
// shower daughters retained.
func DefaultConfig() Config {
	return Config{
		StoreTrajectories:     true,
		KeepEMShowerDaughters: true,
		CorrectPhotonTiming:   true,
		IgnoredStepProcesses:  defaultIgnoredStepProcesses,
	}
}
