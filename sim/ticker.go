package sim

import (
	"sync"
)

// A TickEvent triggers one cycle of a component.
type TickEvent struct {
	EventBase
}

// MakeTickEvent creates a TickEvent for the given handler and time.
func MakeTickEvent(handler Handler, time VTimeInSec) TickEvent {
	evt := TickEvent{}
	evt.ID = GetIDGenerator().Generate()
	evt.handler = handler
	evt.time = time

	return evt
}

// A Ticker updates its state one cycle at a time.
type Ticker interface {
	Tick() bool
}

// A TickScheduler schedules tick events so that a component ticks at most
// once per cycle.
type TickScheduler struct {
	lock      sync.Mutex
	handler   Handler
	Freq      Freq
	Engine    Engine
	secondary bool

	nextTickTime VTimeInSec
}

// NewTickScheduler creates a scheduler for primary tick events.
func NewTickScheduler(
	handler Handler,
	engine Engine,
	freq Freq,
) *TickScheduler {
	return &TickScheduler{
		handler: handler,
		Engine:  engine,
		Freq:    freq,
		// Guarantees that the first tick is scheduled.
		nextTickTime: -1,
	}
}

// NewSecondaryTickScheduler creates a scheduler whose ticks are secondary
// events. Connections tick with secondary events so that they always observe
// the cycle's component state.
func NewSecondaryTickScheduler(
	handler Handler,
	engine Engine,
	freq Freq,
) *TickScheduler {
	s := NewTickScheduler(handler, engine, freq)
	s.secondary = true

	return s
}

// TickNow schedules a tick in the current cycle.
func (t *TickScheduler) TickNow() {
	t.scheduleTick(t.Freq.ThisTick(t.CurrentTime()))
}

// TickLater schedules a tick in the cycle after the current time.
func (t *TickScheduler) TickLater() {
	t.scheduleTick(t.Freq.NextTick(t.CurrentTime()))
}

func (t *TickScheduler) scheduleTick(time VTimeInSec) {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.nextTickTime >= time {
		return
	}

	t.nextTickTime = time
	tick := MakeTickEvent(t.handler, time)
	tick.secondary = t.secondary

	t.Engine.Schedule(tick)
}

// CurrentTime returns the time that the attached engine is at.
func (t *TickScheduler) CurrentTime() VTimeInSec {
	return t.Engine.CurrentTime()
}

// A TickingComponent is a component that does all its work in a tick
// function. The embedded scheduler keeps it ticking for as long as the tick
// function reports progress.
type TickingComponent struct {
	*ComponentBase
	*TickScheduler

	ticker Ticker
}

// NewTickingComponent creates a TickingComponent that ticks with primary
// events.
func NewTickingComponent(
	name string,
	engine Engine,
	freq Freq,
	ticker Ticker,
) *TickingComponent {
	tc := new(TickingComponent)
	tc.ComponentBase = NewComponentBase(name)
	tc.TickScheduler = NewTickScheduler(tc, engine, freq)
	tc.ticker = ticker

	return tc
}

// NewSecondaryTickingComponent creates a TickingComponent that ticks with
// secondary events.
func NewSecondaryTickingComponent(
	name string,
	engine Engine,
	freq Freq,
	ticker Ticker,
) *TickingComponent {
	tc := new(TickingComponent)
	tc.ComponentBase = NewComponentBase(name)
	tc.TickScheduler = NewSecondaryTickScheduler(tc, engine, freq)
	tc.ticker = ticker

	return tc
}

// Handle runs one tick and keeps ticking while progress is made.
func (c *TickingComponent) Handle(_ Event) error {
	if c.ticker.Tick() {
		c.TickLater()
	}

	return nil
}

// NotifyRecv starts the component ticking again when a message arrives.
func (c *TickingComponent) NotifyRecv(_ Port) {
	c.TickLater()
}

// NotifyPortFree starts the component ticking again when an outgoing buffer
// drains.
func (c *TickingComponent) NotifyPortFree(_ Port) {
	c.TickLater()
}
