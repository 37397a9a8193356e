// Package domain defines the particle records, event products, and rule
// evaluation primitives shared by trackcore's recorder and storage layers.
package domain

import "math"

// NoTrackID is the sentinel returned when a parentage lookup resolves to no
// recorded particle at all.
const NoTrackID = math.MinInt32

// Vector3 is a spatial or momentum 3-vector.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// FourVector carries a 3-vector plus its fourth component: global time (ns)
// for positions, total energy (GeV) for momenta.
type FourVector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	T float64 `json:"t"`
}

// TrajectoryPoint is one recorded sample of a particle's path. Positions are
// stored in cm, momenta in GeV; Process names the step's terminating process.
type TrajectoryPoint struct {
	Position FourVector `json:"position"`
	Momentum FourVector `json:"momentum"`
	Process  string     `json:"process"`
}

// Particle is one simulated track retained for output. Daughters is filled
// only during event finalization, in ascending track-id order.
type Particle struct {
	TrackID      int               `json:"track_id"`
	ParentID     int               `json:"parent_id"`
	PDGCode      int               `json:"pdg_code"`
	Process      string            `json:"process"`
	EndProcess   string            `json:"end_process,omitempty"`
	Mass         float64           `json:"mass"`
	Weight       float64           `json:"weight"`
	Polarization Vector3           `json:"polarization"`
	Trajectory   []TrajectoryPoint `json:"trajectory"`
	Daughters    []int             `json:"daughters,omitempty"`
}

// NewParticle constructs a particle record. Mass is the engine-supplied
// dynamic mass in GeV, not a table lookup, so exotic and ion species carry
// whatever the transport actually simulated.
func NewParticle(trackID, pdgCode int, process string, parentID int, mass float64) *Particle {
	return &Particle{
		TrackID:  trackID,
		ParentID: parentID,
		PDGCode:  pdgCode,
		Process:  process,
		Mass:     mass,
		Weight:   1,
	}
}

// AddTrajectoryPoint appends a point; order is simulation time order.
func (p *Particle) AddTrajectoryPoint(pos, mom FourVector, process string) {
	p.Trajectory = append(p.Trajectory, TrajectoryPoint{Position: pos, Momentum: mom, Process: process})
}

// NumTrajectoryPoints reports how many points have been recorded so far.
func (p *Particle) NumTrajectoryPoints() int { return len(p.Trajectory) }

// AddDaughter appends a daughter track id.
func (p *Particle) AddDaughter(trackID int) {
	p.Daughters = append(p.Daughters, trackID)
}

// TruthRecord is an opaque handle to a generator-level truth record supplied
// by the framework at end of event.
type TruthRecord struct {
	Label string `json:"label"`
}

// TruthAssociation links an emitted particle (by position in the event
// product) to a truth record (by position in the supplied truth sequence).
type TruthAssociation struct {
	TruthIndex    int `json:"truth_index"`
	ParticleIndex int `json:"particle_index"`
}

// EventProduct is the finalized output of one event: the surviving particles
// in ascending track-id order and their truth associations.
type EventProduct struct {
	Truths       []TruthRecord      `json:"truths,omitempty"`
	Particles    []Particle         `json:"particles"`
	Associations []TruthAssociation `json:"associations,omitempty"`
}
