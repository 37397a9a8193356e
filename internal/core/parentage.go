package core

import "trackcore/pkg/domain"

// parentageMap records the raw parent id of every track the admission filter
// saw, admitted or not, so the ultimate known ancestor of a dropped track can
// be reconstructed later. Transport creates parents before daughters, so the
// chains cannot cycle under a correct engine.
type parentageMap struct {
	parents map[int]int
}

func newParentageMap() parentageMap {
	return parentageMap{parents: make(map[int]int)}
}

// Record remembers trackID's raw parent.
func (m parentageMap) Record(trackID, parentID int) {
	m.parents[trackID] = parentID
}

// Resolve walks the parent chain until an id is absent from the map and
// returns the last parent found, or NoTrackID when trackID itself was never
// entered. The walk is capped at the map size; exceeding the cap means the
// engine violated the creation-order contract, reported via cycled.
func (m parentageMap) Resolve(trackID int) (ancestor int, cycled bool) {
	ancestor = domain.NoTrackID
	id := trackID
	for i := 0; i <= len(m.parents); i++ {
		parent, ok := m.parents[id]
		if !ok {
			return ancestor, false
		}
		ancestor = parent
		id = parent
	}
	return ancestor, true
}

func (m *parentageMap) Clear() {
	m.parents = make(map[int]int)
}

func (m parentageMap) Len() int { return len(m.parents) }
