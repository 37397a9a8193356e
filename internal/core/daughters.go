package core

// linkDaughters back-fills every surviving particle's daughter list from the
// registry's parent pointers. Every entry is visited, archived ones included,
// since an archived track is still its mother's daughter. Non-positive
// mothers are primaries; missing or archived mothers are expected (a parent
// can fail a cut while its daughter passes) and skipped silently. The pass
// runs to completion before emission because drain order does not guarantee
// parents are visited before children.
func (r *Recorder) linkDaughters() {
	for _, id := range r.registry.ids() {
		parentID, ok := r.registry.MotherOf(id)
		if !ok || parentID <= 0 {
			continue
		}
		parent, ok := r.registry.Find(parentID)
		if !ok {
			continue
		}
		parent.AddDaughter(id)
	}
}
