package sim

import (
	"fmt"
	"sync"
)

// HookPosPortMsgSend marks when a message is sent out from the port.
var HookPosPortMsgSend = &HookPos{Name: "Port Msg Send"}

// HookPosPortMsgRecvd marks when an inbound message arrives at the port.
var HookPosPortMsgRecvd = &HookPos{Name: "Port Msg Recv"}

// HookPosPortMsgRetrieveIncoming marks when an inbound message is retrieved
// from the incoming buffer.
var HookPosPortMsgRetrieveIncoming = &HookPos{
	Name: "Port Msg Retrieve Incoming",
}

// HookPosPortMsgRetrieveOutgoing marks when an outbound message is retrieved
// from the outgoing buffer.
var HookPosPortMsgRetrieveOutgoing = &HookPos{
	Name: "Port Msg Retrieve Outgoing",
}

// A RemotePort is the name of a port on another component. Components address
// messages with remote ports so that they never hold a reference into one
// another.
type RemotePort string

// A Port is owned by a component and hands messages over to a connection.
type Port interface {
	Named
	Hookable

	AsRemote() RemotePort

	SetConnection(conn Connection)
	Component() Component

	// For the connection.
	Deliver(msg Msg) *SendError
	NotifyAvailable()
	RetrieveOutgoing() Msg
	PeekOutgoing() Msg

	// For the owning component.
	CanSend() bool
	Send(msg Msg) *SendError
	RetrieveIncoming() Msg
	PeekIncoming() Msg
}

// defaultPort is a port with one incoming and one outgoing buffer.
type defaultPort struct {
	HookableBase

	lock sync.Mutex
	name string
	comp Component
	conn Connection

	incomingBuf Buffer
	outgoingBuf Buffer
}

// NewPort creates a port with the given buffer capacities.
func NewPort(
	comp Component,
	incomingBufCap, outgoingBufCap int,
	name string,
) Port {
	NameMustBeValid(name)

	return &defaultPort{
		name:        name,
		comp:        comp,
		incomingBuf: NewBuffer(name+".IncomingBuf", incomingBufCap),
		outgoingBuf: NewBuffer(name+".OutgoingBuf", outgoingBufCap),
	}
}

// Name returns the name of the port.
func (p *defaultPort) Name() string {
	return p.name
}

// AsRemote returns the name of the port as seen by other components.
func (p *defaultPort) AsRemote() RemotePort {
	return RemotePort(p.name)
}

// SetConnection records the connection plugged into this port. A port can
// only ever be plugged into one connection.
func (p *defaultPort) SetConnection(conn Connection) {
	if p.conn != nil {
		panic(fmt.Sprintf("connection already set to %s, now connecting to %s",
			p.conn.Name(), conn.Name()))
	}

	p.conn = conn
}

// Component returns the owner of the port.
func (p *defaultPort) Component() Component {
	return p.comp
}

// CanSend returns true if the outgoing buffer can take one more message.
func (p *defaultPort) CanSend() bool {
	p.lock.Lock()
	defer p.lock.Unlock()

	return p.outgoingBuf.CanPush()
}

// Send queues a message for the connection to forward. It returns a SendError
// when the outgoing buffer is full.
func (p *defaultPort) Send(msg Msg) *SendError {
	p.lock.Lock()

	p.msgMustBeValid(msg)

	if !p.outgoingBuf.CanPush() {
		p.lock.Unlock()
		return NewSendError()
	}

	wasEmpty := p.outgoingBuf.Size() == 0
	p.outgoingBuf.Push(msg)

	p.InvokeHook(HookCtx{
		Domain: p,
		Pos:    HookPosPortMsgSend,
		Item:   msg,
	})
	p.lock.Unlock()

	// Waking the connection on every push would schedule redundant ticks.
	if wasEmpty {
		p.conn.NotifySend()
	}

	return nil
}

// Deliver places an inbound message into the incoming buffer. It returns a
// SendError when the buffer is full.
func (p *defaultPort) Deliver(msg Msg) *SendError {
	p.lock.Lock()

	if !p.incomingBuf.CanPush() {
		p.lock.Unlock()
		return NewSendError()
	}

	wasEmpty := p.incomingBuf.Size() == 0

	p.InvokeHook(HookCtx{
		Domain: p,
		Pos:    HookPosPortMsgRecvd,
		Item:   msg,
	})
	p.incomingBuf.Push(msg)
	p.lock.Unlock()

	if p.comp != nil && wasEmpty {
		p.comp.NotifyRecv(p)
	}

	return nil
}

// RetrieveIncoming takes the first message out of the incoming buffer.
func (p *defaultPort) RetrieveIncoming() Msg {
	p.lock.Lock()

	item := p.incomingBuf.Pop()
	if item == nil {
		p.lock.Unlock()
		return nil
	}

	if p.incomingBuf.Size() == p.incomingBuf.Capacity()-1 {
		p.conn.NotifyAvailable(p)
	}

	p.lock.Unlock()

	msg := item.(Msg)
	p.InvokeHook(HookCtx{
		Domain: p,
		Pos:    HookPosPortMsgRetrieveIncoming,
		Item:   msg,
	})

	return msg
}

// RetrieveOutgoing takes the first message out of the outgoing buffer. It is
// used by the connection.
func (p *defaultPort) RetrieveOutgoing() Msg {
	p.lock.Lock()

	item := p.outgoingBuf.Pop()
	if item == nil {
		p.lock.Unlock()
		return nil
	}

	if p.outgoingBuf.Size() == p.outgoingBuf.Capacity()-1 {
		p.comp.NotifyPortFree(p)
	}

	p.lock.Unlock()

	msg := item.(Msg)
	p.InvokeHook(HookCtx{
		Domain: p,
		Pos:    HookPosPortMsgRetrieveOutgoing,
		Item:   msg,
	})

	return msg
}

// PeekIncoming returns the first inbound message without removing it.
func (p *defaultPort) PeekIncoming() Msg {
	p.lock.Lock()
	defer p.lock.Unlock()

	item := p.incomingBuf.Peek()
	if item == nil {
		return nil
	}

	return item.(Msg)
}

// PeekOutgoing returns the first outbound message without removing it.
func (p *defaultPort) PeekOutgoing() Msg {
	p.lock.Lock()
	defer p.lock.Unlock()

	item := p.outgoingBuf.Peek()
	if item == nil {
		return nil
	}

	return item.(Msg)
}

// NotifyAvailable is called by the connection when it can forward messages
// again.
func (p *defaultPort) NotifyAvailable() {
	if p.comp != nil {
		p.comp.NotifyPortFree(p)
	}
}

func (p *defaultPort) msgMustBeValid(msg Msg) {
	if string(msg.Meta().Src) != p.name {
		panic("sending port is not msg src")
	}

	if msg.Meta().Dst == "" {
		panic("dst is not given")
	}

	if msg.Meta().Src == msg.Meta().Dst {
		panic("sending back to src")
	}
}
