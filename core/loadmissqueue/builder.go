package loadmissqueue

import (
	"github.com/raulbehl/nyuzisim/core/loadmissqueue/internal/tracker"
	"github.com/raulbehl/nyuzisim/mem"
	"github.com/raulbehl/nyuzisim/sim"
)

// Builder can build load-miss queues.
type Builder struct {
	engine sim.Engine
	freq   sim.Freq

	numStrands     int
	core           mem.CoreID
	unit           mem.UnitID
	wakeupDst      sim.RemotePort
	secondLevelDst sim.RemotePort
	invariantAudit bool
}

// MakeBuilder creates a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		freq:       1 * sim.GHz,
		numStrands: 4,
		unit:       mem.UnitDataCache,
	}
}

// WithEngine sets the engine that drives the queue.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the queue.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithNumStrands sets the number of hardware strands, which is also the
// number of miss-tracking slots.
func (b Builder) WithNumStrands(numStrands int) Builder {
	b.numStrands = numStrands
	return b
}

// WithCore sets the core ID carried by outbound second-level requests.
func (b Builder) WithCore(core mem.CoreID) Builder {
	b.core = core
	return b
}

// WithUnit sets the unit ID carried by outbound second-level requests.
func (b Builder) WithUnit(unit mem.UnitID) Builder {
	b.unit = unit
	return b
}

// WithWakeupDst sets the port that receives the wakeup responses.
func (b Builder) WithWakeupDst(dst sim.RemotePort) Builder {
	b.wakeupDst = dst
	return b
}

// WithSecondLevelDst sets the port that receives the load requests.
func (b Builder) WithSecondLevelDst(dst sim.RemotePort) Builder {
	b.secondLevelDst = dst
	return b
}

// WithInvariantAudit enables the per-cycle invariant audit. Verification
// runs should enable it; it has no place in a performance run.
func (b Builder) WithInvariantAudit() Builder {
	b.invariantAudit = true
	return b
}

// Build creates a load-miss queue.
func (b Builder) Build(name string) *Comp {
	c := new(Comp)
	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)

	c.tracker = tracker.New(b.numStrands)
	if b.invariantAudit {
		c.tracker.EnableAudit()
	}

	c.core = b.core
	c.unit = b.unit
	c.wakeupDst = b.wakeupDst
	c.secondLevelDst = b.secondLevelDst

	c.topPort = sim.NewPort(c, 1, 1, name+".Top")
	c.AddPort("Top", c.topPort)
	c.bottomPort = sim.NewPort(c, 1, 1, name+".Bottom")
	c.AddPort("Bottom", c.bottomPort)

	m := &middleware{Comp: c}
	c.AddMiddleware(m)

	return c
}
