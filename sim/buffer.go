package sim

import "log"

// HookPosBufPush marks when an element is pushed into the buffer.
var HookPosBufPush = &HookPos{Name: "Buffer Push"}

// HookPosBufPop marks when an element is popped from the buffer.
var HookPosBufPop = &HookPos{Name: "Buffer Pop"}

// A Buffer is a bounded FIFO queue.
type Buffer interface {
	Named
	Hookable

	CanPush() bool
	Push(e any)
	Pop() any
	Peek() any
	Capacity() int
	Size() int

	// Clear removes all the elements in the buffer.
	Clear()
}

// NewBuffer creates a buffer with the given capacity.
func NewBuffer(name string, capacity int) Buffer {
	NameMustBeValid(name)

	return &bufferImpl{
		name:     name,
		capacity: capacity,
	}
}

type bufferImpl struct {
	HookableBase

	name     string
	capacity int
	elements []any
}

func (b *bufferImpl) Name() string {
	return b.name
}

func (b *bufferImpl) CanPush() bool {
	return len(b.elements) < b.capacity
}

func (b *bufferImpl) Push(e any) {
	if len(b.elements) >= b.capacity {
		log.Panic("buffer overflow")
	}

	b.elements = append(b.elements, e)

	b.invoke(HookPosBufPush, e)
}

func (b *bufferImpl) Pop() any {
	if len(b.elements) == 0 {
		return nil
	}

	e := b.elements[0]
	b.elements = b.elements[1:]

	b.invoke(HookPosBufPop, e)

	return e
}

func (b *bufferImpl) Peek() any {
	if len(b.elements) == 0 {
		return nil
	}

	return b.elements[0]
}

func (b *bufferImpl) Capacity() int {
	return b.capacity
}

func (b *bufferImpl) Size() int {
	return len(b.elements)
}

func (b *bufferImpl) Clear() {
	b.elements = nil
}

func (b *bufferImpl) invoke(pos *HookPos, e any) {
	if b.NumHooks() == 0 {
		return
	}

	b.InvokeHook(HookCtx{
		Domain: b,
		Pos:    pos,
		Item:   e,
	})
}
