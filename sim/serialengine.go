package sim

import (
	"log"
	"reflect"
	"sync"
)

// A SerialEngine triggers events one after another on a single goroutine.
type SerialEngine struct {
	HookableBase

	timeLock sync.RWMutex
	now      VTimeInSec

	primaryQueue   EventQueue
	secondaryQueue EventQueue

	isPaused     bool
	isPausedLock sync.Mutex
	pauseLock    sync.Mutex

	singleRunLock sync.Mutex

	simulationEndHandlers []SimulationEndHandler
}

// NewSerialEngine creates a SerialEngine.
func NewSerialEngine() *SerialEngine {
	e := new(SerialEngine)

	e.primaryQueue = NewEventQueue()
	e.secondaryQueue = NewEventQueue()

	return e
}

// Schedule registers an event to happen in the future. Scheduling an event
// earlier than the current time is a programming error.
func (e *SerialEngine) Schedule(evt Event) {
	if evt.Time() < e.readNow() {
		log.Panic("scheduling an event earlier than current time")
	}

	if evt.IsSecondary() {
		e.secondaryQueue.Push(evt)
		return
	}

	e.primaryQueue.Push(evt)
}

func (e *SerialEngine) readNow() VTimeInSec {
	e.timeLock.RLock()
	defer e.timeLock.RUnlock()

	return e.now
}

func (e *SerialEngine) writeNow(t VTimeInSec) {
	e.timeLock.Lock()
	e.now = t
	e.timeLock.Unlock()
}

// Run triggers all the scheduled events, including the ones scheduled while
// running, until both queues drain.
func (e *SerialEngine) Run() error {
	e.singleRunLock.Lock()
	defer e.singleRunLock.Unlock()

	for e.eventsPending() {
		e.pauseLock.Lock()
		e.runNextEvent()
		e.pauseLock.Unlock()
	}

	return nil
}

func (e *SerialEngine) eventsPending() bool {
	return e.primaryQueue.Len() > 0 || e.secondaryQueue.Len() > 0
}

func (e *SerialEngine) runNextEvent() {
	evt := e.nextEvent()

	if evt.Time() < e.readNow() {
		log.Panicf(
			"cannot run event in the past, evt %s @ %.10f, now %.10f",
			reflect.TypeOf(evt), evt.Time(), e.readNow(),
		)
	}
	e.writeNow(evt.Time())

	hookCtx := HookCtx{
		Domain: e,
		Pos:    HookPosBeforeEvent,
		Item:   evt,
	}
	e.InvokeHook(hookCtx)

	_ = evt.Handler().Handle(evt)

	hookCtx.Pos = HookPosAfterEvent
	e.InvokeHook(hookCtx)
}

// nextEvent picks the earliest event over the two queues. On a time tie the
// primary event wins, so that secondary events see a settled cycle.
func (e *SerialEngine) nextEvent() Event {
	if e.primaryQueue.Len() == 0 {
		return e.secondaryQueue.Pop()
	}

	if e.secondaryQueue.Len() == 0 {
		return e.primaryQueue.Pop()
	}

	if e.primaryQueue.Peek().Time() <= e.secondaryQueue.Peek().Time() {
		return e.primaryQueue.Pop()
	}

	return e.secondaryQueue.Pop()
}

// Pause prevents the engine from triggering more events.
func (e *SerialEngine) Pause() {
	e.isPausedLock.Lock()
	defer e.isPausedLock.Unlock()

	if e.isPaused {
		return
	}

	e.pauseLock.Lock()
	e.isPaused = true
}

// Continue lets a paused engine trigger events again.
func (e *SerialEngine) Continue() {
	e.isPausedLock.Lock()
	defer e.isPausedLock.Unlock()

	if !e.isPaused {
		return
	}

	e.pauseLock.Unlock()
	e.isPaused = false
}

// CurrentTime returns the time of the event currently being triggered.
func (e *SerialEngine) CurrentTime() VTimeInSec {
	return e.readNow()
}

// RegisterSimulationEndHandler registers a handler to be called after the
// simulation ends.
func (e *SerialEngine) RegisterSimulationEndHandler(
	handler SimulationEndHandler,
) {
	e.simulationEndHandlers = append(e.simulationEndHandlers, handler)
}

// Finished calls all the registered SimulationEndHandlers. It should be
// called once, after Run returns for the last time.
func (e *SerialEngine) Finished() {
	now := e.readNow()
	for _, h := range e.simulationEndHandlers {
		h.Handle(now)
	}
}
