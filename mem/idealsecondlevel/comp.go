// Package idealsecondlevel provides a second-level cache model that always
// answers a load request after a fixed number of cycles. It keeps no tags and
// has no capacity limit, so it is only useful as the bottom of a miss-queue
// test bench.
package idealsecondlevel

import (
	"log"
	"reflect"

	"github.com/raulbehl/nyuzisim/mem"
	"github.com/raulbehl/nyuzisim/sim"
)

type loadRespondEvent struct {
	*sim.EventBase
	req *mem.LoadReq
}

func newLoadRespondEvent(
	time sim.VTimeInSec,
	handler sim.Handler,
	req *mem.LoadReq,
) *loadRespondEvent {
	return &loadRespondEvent{sim.NewEventBase(time, handler), req}
}

// A Comp is an ideal second-level cache. It responds to every load request
// in a fixed number of cycles.
type Comp struct {
	*sim.TickingComponent

	topPort sim.Port

	Latency int
}

// Handle defines how the Comp handles events.
func (c *Comp) Handle(e sim.Event) error {
	switch e := e.(type) {
	case *loadRespondEvent:
		return c.handleLoadRespondEvent(e)
	case sim.TickEvent:
		return c.TickingComponent.Handle(e)
	default:
		log.Panicf("cannot handle event of type %s", reflect.TypeOf(e))
	}

	return nil
}

// Tick accepts incoming load requests and schedules their responses.
func (c *Comp) Tick() bool {
	item := c.topPort.PeekIncoming()
	if item == nil {
		return false
	}

	req, ok := item.(*mem.LoadReq)
	if !ok {
		log.Panicf("cannot handle message of type %s", reflect.TypeOf(item))
	}

	now := c.CurrentTime()
	respondTime := c.Freq.NCyclesLater(c.Latency, now)
	c.Engine.Schedule(newLoadRespondEvent(respondTime, c, req))

	c.topPort.RetrieveIncoming()

	return true
}

func (c *Comp) handleLoadRespondEvent(e *loadRespondEvent) error {
	if !c.topPort.CanSend() {
		// Retry one cycle later.
		retryTime := c.Freq.NCyclesLater(1, e.Time())
		c.Engine.Schedule(newLoadRespondEvent(retryTime, c, e.req))
		return nil
	}

	rsp := mem.DataReadyRspBuilder{}.
		WithSrc(c.topPort.AsRemote()).
		WithDst(e.req.Src).
		WithRspTo(e.req.ID).
		WithStrand(e.req.Strand).
		Build()

	err := c.topPort.Send(rsp)
	if err != nil {
		panic("send must succeed after CanSend")
	}

	return nil
}
