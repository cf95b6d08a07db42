// Package loadmissqueue implements the per-core load-miss queue that sits
// between the first-level data cache and the shared second-level cache. It
// records load misses, deduplicates same-line requests, arbitrates one
// second-level request per cycle, and wakes the stalled strands when the
// matching response returns.
package loadmissqueue

import (
	"fmt"
	"reflect"

	"github.com/raulbehl/nyuzisim/core/loadmissqueue/internal/tracker"
	"github.com/raulbehl/nyuzisim/mem"
	"github.com/raulbehl/nyuzisim/sim"
)

// HookPosIssue marks when the queue issues a request to the second-level
// cache.
var HookPosIssue = &sim.HookPos{Name: "MissQueue Issue"}

// HookPosWakeup marks when the queue wakes a set of strands.
var HookPosWakeup = &sim.HookPos{Name: "MissQueue Wakeup"}

// A Comp is the load-miss queue component. The Top port faces the first-level
// cache pipeline; the Bottom port faces the second-level cache. The component
// handles at most one incoming miss, one grant, and one matched response per
// cycle.
type Comp struct {
	*sim.TickingComponent
	sim.MiddlewareHolder

	topPort    sim.Port
	bottomPort sim.Port

	tracker *tracker.Tracker

	core           mem.CoreID
	unit           mem.UnitID
	wakeupDst      sim.RemotePort
	secondLevelDst sim.RemotePort
}

// Tick updates the state of the queue.
func (c *Comp) Tick() bool {
	return c.MiddlewareHolder.Tick()
}

type middleware struct {
	*Comp
}

// Tick gathers the cycle's inputs from the ports, runs one tracker step, and
// emits the step's one-cycle-valid outputs.
func (m *middleware) Tick() bool {
	in := tracker.CycleInput{}

	rsp := m.peekResponse(&in)
	miss := m.peekMiss(&in)
	in.IssueReady = m.bottomPort.CanSend()

	out := m.tracker.Step(in)

	madeProgress := false
	madeProgress = m.emitIssue(out) || madeProgress
	madeProgress = m.emitWakeup(out, rsp) || madeProgress

	if miss != nil {
		m.topPort.RetrieveIncoming()
		madeProgress = true
	}

	return madeProgress
}

// peekResponse samples the inbound second-level response. The response is
// only consumed when the wakeup can go out on the same cycle, because the
// wakeup set is not buffered anywhere.
func (m *middleware) peekResponse(in *tracker.CycleInput) *mem.DataReadyRsp {
	item := m.bottomPort.PeekIncoming()
	if item == nil {
		return nil
	}

	rsp, ok := item.(*mem.DataReadyRsp)
	if !ok {
		panic(fmt.Sprintf(
			"cannot handle message of type %s", reflect.TypeOf(item)))
	}

	if !m.topPort.CanSend() {
		return nil
	}

	in.Response = tracker.Response{Valid: true, Strand: rsp.Strand}

	return rsp
}

func (m *middleware) peekMiss(in *tracker.CycleInput) *mem.MissReq {
	item := m.topPort.PeekIncoming()
	if item == nil {
		return nil
	}

	miss, ok := item.(*mem.MissReq)
	if !ok {
		panic(fmt.Sprintf(
			"cannot handle message of type %s", reflect.TypeOf(item)))
	}

	in.Request = tracker.Request{
		Valid:        true,
		Strand:       miss.Strand,
		Address:      miss.Address,
		Way:          miss.Way,
		Synchronized: miss.Synchronized,
	}

	return miss
}

func (m *middleware) emitIssue(out tracker.CycleOutput) bool {
	if !out.Issue.Valid {
		return false
	}

	builder := mem.LoadReqBuilder{}.
		WithSrc(m.bottomPort.AsRemote()).
		WithDst(m.secondLevelDst).
		WithAddress(out.Issue.Address).
		WithWay(out.Issue.Way).
		WithStrand(out.Issue.Entry).
		WithCore(m.core).
		WithUnit(m.unit)
	if out.Issue.Synchronized {
		builder = builder.Synchronized()
	}
	req := builder.Build()

	err := m.bottomPort.Send(req)
	if err != nil {
		panic("granted an entry while the second-level port is busy")
	}

	m.InvokeHook(sim.HookCtx{
		Domain: m.Comp,
		Pos:    HookPosIssue,
		Item:   req,
	})

	return true
}

func (m *middleware) emitWakeup(
	out tracker.CycleOutput,
	rsp *mem.DataReadyRsp,
) bool {
	if !out.Wakeup.Valid {
		return false
	}

	wakeup := mem.WakeupRspBuilder{}.
		WithSrc(m.topPort.AsRemote()).
		WithDst(m.wakeupDst).
		WithStrands(out.Wakeup.Strands).
		Build()

	err := m.topPort.Send(wakeup)
	if err != nil {
		panic("matched a response while the pipeline port is busy")
	}

	m.bottomPort.RetrieveIncoming()

	m.InvokeHook(sim.HookCtx{
		Domain: m.Comp,
		Pos:    HookPosWakeup,
		Item:   wakeup,
		Detail: rsp,
	})

	return true
}
