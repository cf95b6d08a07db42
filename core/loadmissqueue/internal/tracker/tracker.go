// Package tracker implements the miss-tracking state machine of the load-miss
// queue. The whole unit advances one synchronous cycle at a time: Step reads
// the previous cycle's committed state, decides on the cycle's allocation or
// merge, grant, and retirement, and commits all of them atomically.
package tracker

import (
	"fmt"
	"log"

	"github.com/raulbehl/nyuzisim/mem"
)

// An Entry is one miss-tracking slot. The slot index is the ID of the strand
// that originally allocated it.
type Entry struct {
	Waiting      mem.StrandSet
	Address      uint64
	Way          int
	Enqueued     bool
	Acknowledged bool
	Synchronized bool
}

// A Request is an incoming load miss from the first-level cache pipeline.
type Request struct {
	Valid        bool
	Strand       int
	Address      uint64
	Way          int
	Synchronized bool
}

// A Response is an inbound answer from the second-level cache. The strand tag
// identifies the entry that issued the request.
type Response struct {
	Valid  bool
	Strand int
}

// CycleInput bundles everything the tracker can observe in one cycle.
// IssueReady reflects whether the second-level cache can accept a request.
type CycleInput struct {
	Request    Request
	IssueReady bool
	Response   Response
}

// An Issue describes the single request granted to the second-level cache in
// one cycle.
type Issue struct {
	Valid        bool
	Entry        int
	Address      uint64
	Way          int
	Synchronized bool
}

// A Wakeup carries the strands released by a matched response. It is only
// valid for the cycle it is produced.
type Wakeup struct {
	Valid   bool
	Strands mem.StrandSet
}

// CycleOutput bundles the one-cycle-valid outputs of a step.
type CycleOutput struct {
	Issue  Issue
	Wakeup Wakeup
}

// A Tracker holds one miss-tracking slot per hardware strand and arbitrates
// the pending misses toward the second-level cache.
type Tracker struct {
	entries []Entry
	arbiter *arbiter
	audit   bool
}

// New creates a Tracker with one entry per strand.
func New(numStrands int) *Tracker {
	if numStrands <= 0 || numStrands > mem.MaxNumStrands {
		panic(fmt.Sprintf("invalid strand count %d", numStrands))
	}

	return &Tracker{
		entries: make([]Entry, numStrands),
		arbiter: newArbiter(numStrands),
	}
}

// EnableAudit turns on the per-cycle invariant audit. The audit is meant for
// verification runs; a violation halts the simulation.
func (t *Tracker) EnableAudit() {
	t.audit = true
}

// NumEntries returns the number of miss-tracking slots.
func (t *Tracker) NumEntries() int {
	return len(t.entries)
}

// EntryAt returns a copy of the entry at the given slot.
func (t *Tracker) EntryAt(idx int) Entry {
	return t.entries[idx]
}

// Step advances the tracker by one cycle. All decisions are made against the
// state committed by the previous cycle; the retirement, the grant, and the
// allocation or merge are then committed together.
//
// The grant decision observes the pre-retirement snapshot, so a grant and a
// response that target the same entry in the same cycle are detected and
// reported as a protocol violation. The request-side lookup observes the
// post-retirement view, so a miss arriving in the cycle its line retires
// allocates a fresh entry instead of merging into a dead one, and a strand's
// slot freed by the retirement can be reused in the same cycle.
func (t *Tracker) Step(in CycleInput) CycleOutput {
	var out CycleOutput

	retire := t.matchResponse(in.Response, &out)
	t.grant(in, retire, &out)

	if retire >= 0 {
		t.entries[retire].Enqueued = false
		t.entries[retire].Acknowledged = false
		t.entries[retire].Waiting = 0
	}

	if in.Request.Valid {
		t.acceptRequest(in.Request)
	}

	if out.Issue.Valid {
		t.entries[out.Issue.Entry].Acknowledged = true
		t.arbiter.granted(out.Issue.Entry)
	}

	if t.audit {
		t.auditInvariants()
	}

	return out
}

// matchResponse validates an inbound response against its entry and produces
// the wakeup set. It returns the index of the entry to retire, or -1.
func (t *Tracker) matchResponse(rsp Response, out *CycleOutput) int {
	if !rsp.Valid {
		return -1
	}

	idx := rsp.Strand
	if idx < 0 || idx >= len(t.entries) {
		log.Panicf("response tag %d does not name a miss-queue entry", idx)
	}

	e := t.entries[idx]
	if !e.Enqueued {
		log.Panicf(
			"response for entry %d, but the entry is not enqueued", idx)
	}
	if !e.Acknowledged {
		log.Panicf(
			"response for entry %d, but no request was issued for it", idx)
	}

	out.Wakeup = Wakeup{Valid: true, Strands: e.Waiting}

	return idx
}

// grant selects at most one enqueued, not-yet-acknowledged entry to issue to
// the second-level cache.
func (t *Tracker) grant(in CycleInput, retire int, out *CycleOutput) {
	if !in.IssueReady {
		return
	}

	chosen := t.arbiter.pick(func(idx int) bool {
		e := t.entries[idx]
		return e.Enqueued && !e.Acknowledged
	})
	if chosen < 0 {
		return
	}

	if chosen == retire {
		log.Panicf(
			"grant and response both target entry %d in the same cycle",
			chosen)
	}

	e := t.entries[chosen]
	out.Issue = Issue{
		Valid:        true,
		Entry:        chosen,
		Address:      e.Address,
		Way:          e.Way,
		Synchronized: e.Synchronized,
	}
}

// acceptRequest merges the miss into a pending same-line entry or allocates
// the requesting strand's slot.
func (t *Tracker) acceptRequest(req Request) {
	if req.Strand < 0 || req.Strand >= len(t.entries) {
		log.Panicf("request strand %d does not name a miss-queue entry",
			req.Strand)
	}

	hit := t.lookup(req.Address)

	if hit >= 0 && !req.Synchronized {
		t.entries[hit].Waiting = t.entries[hit].Waiting.Add(req.Strand)
		return
	}

	if t.entries[req.Strand].Enqueued {
		log.Panicf(
			"strand %d registered a second miss while entry %d is pending",
			req.Strand, req.Strand)
	}

	way := req.Way
	if hit >= 0 {
		// A synchronized miss never coalesces, but the line must not be
		// mapped to two different ways at the same time.
		way = t.entries[hit].Way
	}

	t.entries[req.Strand] = Entry{
		Waiting:      mem.MakeStrandSet(req.Strand),
		Address:      req.Address,
		Way:          way,
		Enqueued:     true,
		Acknowledged: false,
		Synchronized: req.Synchronized,
	}
}

// lookup scans all enqueued entries for the given line address and returns
// the lowest-indexed hit, or -1. The lowest-index tie-break is arbitrary but
// must stay deterministic; way reuse depends on it.
func (t *Tracker) lookup(address uint64) int {
	for idx, e := range t.entries {
		if e.Enqueued && e.Address == address {
			return idx
		}
	}

	return -1
}
