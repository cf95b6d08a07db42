package sim

// A Middleware implements one slice of a component's per-cycle behavior.
type Middleware interface {
	// Tick runs the middleware for one cycle and returns true if it made
	// progress.
	Tick() bool
}

// A MiddlewareHolder keeps the ordered middleware list of a component.
type MiddlewareHolder struct {
	middlewares []Middleware
}

// AddMiddleware appends a middleware to the holder.
func (h *MiddlewareHolder) AddMiddleware(m Middleware) {
	h.middlewares = append(h.middlewares, m)
}

// Middlewares returns the middleware in the order they were added.
func (h *MiddlewareHolder) Middlewares() []Middleware {
	return h.middlewares
}

// Tick runs all the middleware for one cycle. It returns true if any of them
// made progress.
func (h *MiddlewareHolder) Tick() bool {
	progress := false
	for _, m := range h.middlewares {
		if m.Tick() {
			progress = true
		}
	}

	return progress
}
