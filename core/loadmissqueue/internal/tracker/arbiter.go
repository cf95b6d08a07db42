package tracker

// An arbiter picks one entry among the issuable ones with a rotating
// priority. The entry after the last granted one has the highest priority,
// and the priority pointer only advances when a grant actually happens, so
// no pending entry can be starved.
type arbiter struct {
	numEntries int
	priority   int
}

func newArbiter(numEntries int) *arbiter {
	return &arbiter{numEntries: numEntries}
}

// pick returns the first issuable entry at or after the priority pointer,
// or -1 if no entry is issuable.
func (a *arbiter) pick(issuable func(idx int) bool) int {
	for i := 0; i < a.numEntries; i++ {
		idx := (a.priority + i) % a.numEntries
		if issuable(idx) {
			return idx
		}
	}

	return -1
}

// granted moves the priority pointer past the granted entry.
func (a *arbiter) granted(idx int) {
	a.priority = (idx + 1) % a.numEntries
}
