package sim

// A TimeTeller reports the current simulated time.
type TimeTeller interface {
	CurrentTime() VTimeInSec
}

// An EventScheduler accepts events to be triggered in the future.
type EventScheduler interface {
	Schedule(e Event)
}

// A SimulationEndHandler runs some action after the simulation ends, such as
// flushing buffered records to disk.
type SimulationEndHandler interface {
	Handle(now VTimeInSec)
}

// An Engine drives a discrete-event simulation. It keeps the scheduled
// events and triggers them in time order.
type Engine interface {
	Hookable
	TimeTeller
	EventScheduler

	// Run processes all the scheduled events until no event is left.
	Run() error

	// Pause stops the engine from triggering more events until Continue is
	// called.
	Pause()

	// Continue resumes a paused engine.
	Continue()

	// RegisterSimulationEndHandler registers a handler to run after the
	// simulation finishes.
	RegisterSimulationEndHandler(handler SimulationEndHandler)

	// Finished invokes all the registered SimulationEndHandlers.
	Finished()
}
