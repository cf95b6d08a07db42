// Package acceptance provides a test bench for the load-miss queue. A
// Pipeline component stands in for the first-level data-cache pipeline: it
// issues load misses for a set of strands, keeps each strand asleep while its
// load is outstanding, and checks every wakeup against the strands that were
// actually stalled.
package acceptance

import (
	"fmt"
	"log"
	"math/rand"
	"reflect"

	"github.com/raulbehl/nyuzisim/mem"
	"github.com/raulbehl/nyuzisim/sim"
)

// A Miss is one load miss that the pipeline will report to the miss queue.
type Miss struct {
	Strand       int
	Address      uint64
	Way          int
	Synchronized bool
}

// A Pipeline drives miss traffic into the load-miss queue and consumes the
// wakeups coming back.
type Pipeline struct {
	*sim.TickingComponent

	MemPort sim.Port

	missQueueDst sim.RemotePort
	numStrands   int

	pending []Miss
	asleep  map[int]uint64

	missesSent     int
	missesComplete int
	wakeupsSeen    int
}

// NewPipeline creates a pipeline agent for the given number of strands.
func NewPipeline(
	engine sim.Engine,
	freq sim.Freq,
	name string,
	numStrands int,
) *Pipeline {
	p := new(Pipeline)
	p.TickingComponent = sim.NewTickingComponent(name, engine, freq, p)
	p.MemPort = sim.NewPort(p, 1, 1, name+".MemPort")
	p.AddPort("MemPort", p.MemPort)

	p.numStrands = numStrands
	p.asleep = make(map[int]uint64)

	return p
}

// SetMissQueueDst sets the miss-queue port that receives the miss requests.
func (p *Pipeline) SetMissQueueDst(dst sim.RemotePort) {
	p.missQueueDst = dst
}

// AddMiss appends one miss to the traffic to generate.
func (p *Pipeline) AddMiss(m Miss) {
	if m.Strand < 0 || m.Strand >= p.numStrands {
		panic(fmt.Sprintf("strand %d out of range", m.Strand))
	}

	p.pending = append(p.pending, m)
}

// GenerateMisses appends n random misses drawn from a small pool of lines so
// that same-line misses, and therefore merges, are common.
func (p *Pipeline) GenerateMisses(n, numLines, numWays int, r *rand.Rand) {
	for i := 0; i < n; i++ {
		p.AddMiss(Miss{
			Strand:       r.Intn(p.numStrands),
			Address:      0x1000 + uint64(r.Intn(numLines))*64,
			Way:          r.Intn(numWays),
			Synchronized: r.Intn(4) == 0,
		})
	}
}

// Tick consumes one wakeup and issues at most one pending miss.
func (p *Pipeline) Tick() bool {
	madeProgress := p.consumeWakeup()
	madeProgress = p.issueMiss() || madeProgress

	return madeProgress
}

func (p *Pipeline) consumeWakeup() bool {
	item := p.MemPort.PeekIncoming()
	if item == nil {
		return false
	}

	wakeup, ok := item.(*mem.WakeupRsp)
	if !ok {
		log.Panicf("cannot handle message of type %s", reflect.TypeOf(item))
	}

	for _, strand := range wakeup.Strands.Strands() {
		if _, stalled := p.asleep[strand]; !stalled {
			log.Panicf("strand %d woken while not stalled", strand)
		}

		delete(p.asleep, strand)
		p.missesComplete++
	}

	p.wakeupsSeen++
	p.MemPort.RetrieveIncoming()

	return true
}

// issueMiss sends the first pending miss whose strand is awake. A stalled
// strand cannot report another miss; that is the one-miss-per-strand contract
// the miss queue relies on.
func (p *Pipeline) issueMiss() bool {
	if !p.MemPort.CanSend() {
		return false
	}

	for i, m := range p.pending {
		if _, stalled := p.asleep[m.Strand]; stalled {
			continue
		}

		builder := mem.MissReqBuilder{}.
			WithSrc(p.MemPort.AsRemote()).
			WithDst(p.missQueueDst).
			WithAddress(m.Address).
			WithWay(m.Way).
			WithStrand(m.Strand)
		if m.Synchronized {
			builder = builder.Synchronized()
		}

		err := p.MemPort.Send(builder.Build())
		if err != nil {
			return false
		}

		p.asleep[m.Strand] = m.Address
		p.missesSent++
		p.pending = append(p.pending[:i], p.pending[i+1:]...)

		return true
	}

	return false
}

// MissesSent returns the number of misses reported to the miss queue so far.
func (p *Pipeline) MissesSent() int {
	return p.missesSent
}

// MissesComplete returns the number of misses that have been woken up.
func (p *Pipeline) MissesComplete() int {
	return p.missesComplete
}

// WakeupsSeen returns the number of wakeup messages received.
func (p *Pipeline) WakeupsSeen() int {
	return p.wakeupsSeen
}

// MustHaveCompletedAllMisses panics if any generated miss never completed.
func (p *Pipeline) MustHaveCompletedAllMisses() {
	if len(p.pending) > 0 {
		log.Panicf("%d misses were never issued", len(p.pending))
	}

	if len(p.asleep) > 0 {
		log.Panicf("%d strands are still stalled", len(p.asleep))
	}

	if p.missesComplete != p.missesSent {
		log.Panicf("sent %d misses but %d completed",
			p.missesSent, p.missesComplete)
	}
}
