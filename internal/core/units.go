package core

// Engine snapshots arrive in the transport's native units (mm, ns, MeV).
// Recorded trajectories and cuts use cm, ns, GeV.
const (
	mmPerCm   = 10.0
	mevPerGeV = 1000.0
)

func toCm(mm float64) float64 { return mm / mmPerCm }

func toGeV(mev float64) float64 { return mev / mevPerGeV }
