package tracker

import (
	"log"

	"github.com/raulbehl/nyuzisim/mem"
)

// auditInvariants re-derives the cross-entry invariants after a commit. Any
// violation is a design bug, not a runtime condition, so the audit halts
// instead of recovering.
func (t *Tracker) auditInvariants() {
	t.strandsMustWaitOnce()
	t.acknowledgedMustBeEnqueued()
	t.linesMustHaveOneWay()
}

// strandsMustWaitOnce checks that no strand appears in the waiting set of
// more than one enqueued entry.
func (t *Tracker) strandsMustWaitOnce() {
	seen := mem.StrandSet(0)

	for idx, e := range t.entries {
		if !e.Enqueued {
			continue
		}

		if seen.Intersects(e.Waiting) {
			dup := seen & e.Waiting
			log.Panicf(
				"strands %s wait on entry %d and on an earlier entry",
				dup, idx)
		}

		seen = seen.Union(e.Waiting)
	}
}

func (t *Tracker) acknowledgedMustBeEnqueued() {
	for idx, e := range t.entries {
		if e.Acknowledged && !e.Enqueued {
			log.Panicf("entry %d is acknowledged but not enqueued", idx)
		}
	}
}

// linesMustHaveOneWay checks that no cache line is being fetched into two
// different ways at the same time.
func (t *Tracker) linesMustHaveOneWay() {
	ways := make(map[uint64]int)

	for idx, e := range t.entries {
		if !e.Enqueued {
			continue
		}

		if way, found := ways[e.Address]; found && way != e.Way {
			log.Panicf(
				"entry %d fetches line 0x%x into way %d, "+
					"another entry fetches it into way %d",
				idx, e.Address, e.Way, way)
		}

		ways[e.Address] = e.Way
	}
}
