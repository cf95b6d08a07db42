package sim

// VTimeInSec is a simulated time in the unit of second.
type VTimeInSec float64

// An Event is something that will happen at a future simulated time.
type Event interface {
	// Time returns the time when the event should be triggered.
	Time() VTimeInSec

	// Handler returns the handler that handles the event.
	Handler() Handler

	// IsSecondary tells if the event is a secondary event. Secondary events
	// are triggered after all the same-time primary events.
	IsSecondary() bool
}

// A Handler handles events. An event can only be scheduled by its handler
// and can only directly modify that handler.
type Handler interface {
	Handle(e Event) error
}

// EventBase provides the basic fields and getters for other events.
type EventBase struct {
	ID        string
	time      VTimeInSec
	handler   Handler
	secondary bool
}

// NewEventBase creates an EventBase with the given time and handler.
func NewEventBase(t VTimeInSec, handler Handler) *EventBase {
	return &EventBase{
		ID:      GetIDGenerator().Generate(),
		time:    t,
		handler: handler,
	}
}

// Time returns the time when the event will be triggered.
func (e EventBase) Time() VTimeInSec {
	return e.time
}

// Handler returns the handler that handles the event.
func (e EventBase) Handler() Handler {
	return e.handler
}

// IsSecondary returns true if the event is a secondary event.
func (e EventBase) IsSecondary() bool {
	return e.secondary
}
