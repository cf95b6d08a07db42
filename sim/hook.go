package sim

// A HookPos names a position in the simulation where hooks can be invoked.
type HookPos struct {
	Name string
}

// HookPosBeforeEvent triggers before an event is handled.
var HookPosBeforeEvent = &HookPos{Name: "BeforeEvent"}

// HookPosAfterEvent triggers after an event is handled.
var HookPosAfterEvent = &HookPos{Name: "AfterEvent"}

// A HookCtx describes the site where a hook is invoked.
type HookCtx struct {
	Domain Hookable
	Pos    *HookPos
	Item   any
	Detail any
}

// A Hook is a piece of program invoked by a hookable object. Tracers and
// recorders observe the simulation through hooks.
type Hook interface {
	Func(ctx HookCtx)
}

// A Hookable object can accept hooks.
type Hookable interface {
	AcceptHook(hook Hook)
}

// HookableBase implements the Hookable interface for embedding.
type HookableBase struct {
	Hooks []Hook
}

// NewHookableBase creates a HookableBase.
func NewHookableBase() *HookableBase {
	return new(HookableBase)
}

// AcceptHook registers a hook.
func (h *HookableBase) AcceptHook(hook Hook) {
	h.Hooks = append(h.Hooks, hook)
}

// NumHooks returns the number of registered hooks.
func (h *HookableBase) NumHooks() int {
	return len(h.Hooks)
}

// InvokeHook calls all the registered hooks with the given context.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.Hooks {
		hook.Func(ctx)
	}
}
