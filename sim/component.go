package sim

import (
	"fmt"
	"os"
	"sync"
)

// A Named object has a name. Names are hierarchical, dot-separated, and
// unique within one simulation.
type Named interface {
	Name() string
}

// A Component is a hardware unit being simulated. It communicates with other
// components only through the messages on its ports.
type Component interface {
	Named
	Handler
	Hookable

	AddPort(name string, port Port)
	GetPortByName(name string) Port

	// NotifyRecv is called when a message arrives at one of the component's
	// ports.
	NotifyRecv(port Port)

	// NotifyPortFree is called when an outgoing buffer of one of the
	// component's ports drains.
	NotifyPortFree(port Port)
}

// ComponentBase provides the port bookkeeping that all components share.
type ComponentBase struct {
	HookableBase
	sync.Mutex

	name  string
	ports map[string]Port
}

// NewComponentBase creates a new ComponentBase.
func NewComponentBase(name string) *ComponentBase {
	NameMustBeValid(name)

	return &ComponentBase{
		name:  name,
		ports: make(map[string]Port),
	}
}

// Name returns the name of the component.
func (c *ComponentBase) Name() string {
	return c.name
}

// AddPort registers a port on the component.
func (c *ComponentBase) AddPort(name string, port Port) {
	if _, found := c.ports[name]; found {
		panic("port " + name + " already exists")
	}

	c.ports[name] = port
}

// GetPortByName returns the port registered under the given name.
func (c *ComponentBase) GetPortByName(name string) Port {
	port, found := c.ports[name]
	if !found {
		errMsg := fmt.Sprintf(
			"Port %s is not available on component %s.\n", name, c.name)
		errMsg += "Available ports include:\n"
		for n := range c.ports {
			errMsg += fmt.Sprintf("\t%s\n", n)
		}
		fmt.Fprint(os.Stderr, errMsg)

		panic("port not found")
	}

	return port
}
