package core

import (
	"math"
	"strings"

	"trackcore/pkg/domain"
)

// Process name given to the synthesized first trajectory point.
const startPointProcess = "Start"

// Absolute disagreement (native mm/ns) between the reported track velocity
// and stepLength/deltaT beyond which a zero-rest-mass step is re-timed.
const photonVelocityTolerance = 1e-4

// Step accumulates the current particle's trajectory. Steps that arrive with
// no current particle belong to tracks the admission filter dropped and are
// ignored. The first recorded step synthesizes the start point from the
// pre-step side, because vertex information is unreliable until the first
// step completes.
func (r *Recorder) Step(ss StepSnapshot) {
	cur := &r.current
	if cur.particle == nil {
		return
	}

	preTime := ss.PreTime + cur.timeOffset
	postTime := ss.PostTime + cur.timeOffset

	if cur.particle.NumTrajectoryPoints() == 0 {
		pos := domain.FourVector{
			X: toCm(ss.PrePosition.X),
			Y: toCm(ss.PrePosition.Y),
			Z: toCm(ss.PrePosition.Z),
			T: preTime,
		}
		mom := domain.FourVector{
			X: toGeV(ss.PreMomentum.X),
			Y: toGeV(ss.PreMomentum.Y),
			Z: toGeV(ss.PreMomentum.Z),
			T: toGeV(ss.PreTotalEnergy),
		}
		r.addTrajectoryPoint(pos, mom, startPointProcess)
	}

	if r.cfg.StoreTrajectories && !r.ignoredStepProcess(ss.Process) {
		pos := domain.FourVector{
			X: toCm(ss.PostPosition.X),
			Y: toCm(ss.PostPosition.Y),
			Z: toCm(ss.PostPosition.Z),
			T: postTime,
		}
		mom := domain.FourVector{
			X: toGeV(ss.PostMomentum.X),
			Y: toGeV(ss.PostMomentum.Y),
			Z: toGeV(ss.PostMomentum.Z),
			T: toGeV(ss.PostTotalEnergy),
		}
		r.addTrajectoryPoint(pos, mom, ss.Process)
	}

	// The engine mis-reports the step duration of optical photon transport.
	// When the reported velocity disagrees with length/deltaT, back-compute
	// the step time from the velocity and shift the observed global time of
	// every subsequent step; the point recorded above keeps the engine time.
	if r.cfg.CorrectPhotonTiming && ss.ZeroRestMass && ss.TrackVelocity > 0 {
		if dt := ss.PostTime - ss.PreTime; dt > 0 {
			stepVelocity := ss.StepLength / dt
			if math.Abs(ss.TrackVelocity-stepVelocity) > photonVelocityTolerance {
				cur.timeOffset += ss.StepLength/ss.TrackVelocity - dt
			}
		}
	}
}

// addTrajectoryPoint appends a point and, while the keep decision is still
// pending, consults the keep filter with the new position. Once the filter
// answers true the particle stays kept for the rest of the track.
func (r *Recorder) addTrajectoryPoint(pos, mom domain.FourVector, process string) {
	cur := &r.current
	cur.particle.AddTrajectoryPoint(pos, mom, process)
	r.eventPoints++
	if !cur.keep && r.keep != nil {
		cur.keep = r.keep.MustKeep(pos)
	}
}

func (r *Recorder) ignoredStepProcess(process string) bool {
	for _, marker := range r.cfg.IgnoredStepProcesses {
		if strings.Contains(process, marker) {
			return true
		}
	}
	return false
}
