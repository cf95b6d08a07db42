package idealsecondlevel

import "github.com/raulbehl/nyuzisim/sim"

// Builder can build ideal second-level caches.
type Builder struct {
	engine  sim.Engine
	freq    sim.Freq
	latency int
}

// MakeBuilder creates a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		freq:    1 * sim.GHz,
		latency: 20,
	}
}

// WithEngine sets the engine that drives the cache.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the cache.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithLatency sets the number of cycles between accepting a request and
// sending its response.
func (b Builder) WithLatency(latency int) Builder {
	b.latency = latency
	return b
}

// Build creates an ideal second-level cache.
func (b Builder) Build(name string) *Comp {
	c := new(Comp)
	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)
	c.Latency = b.latency

	c.topPort = sim.NewPort(c, 4, 4, name+".Top")
	c.AddPort("Top", c.topPort)

	return c
}
