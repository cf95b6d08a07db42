package sim

import (
	"log"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/rs/xid"
)

// An IDGenerator assigns IDs to messages and events.
type IDGenerator interface {
	Generate() string
}

var (
	idGeneratorOnce sync.Once
	idGenerator     IDGenerator
)

// UseSequentialIDGenerator makes the simulation use small sequential IDs.
// Sequential IDs are deterministic across runs, which keeps traces
// comparable. This is the default.
func UseSequentialIDGenerator() {
	selectIDGenerator(&sequentialIDGenerator{})
}

// UseParallelIDGenerator makes the simulation use xid-based IDs, which can be
// generated from multiple goroutines without contention. The IDs are no
// longer deterministic.
func UseParallelIDGenerator() {
	selectIDGenerator(parallelIDGenerator{})
}

func selectIDGenerator(g IDGenerator) {
	selected := false
	idGeneratorOnce.Do(func() {
		idGenerator = g
		selected = true
	})

	if !selected {
		log.Panic("cannot change id generator type after using it")
	}
}

// GetIDGenerator returns the ID generator used in the current simulation.
func GetIDGenerator() IDGenerator {
	idGeneratorOnce.Do(func() {
		idGenerator = &sequentialIDGenerator{}
	})

	return idGenerator
}

type sequentialIDGenerator struct {
	nextID uint64
}

func (g *sequentialIDGenerator) Generate() string {
	return strconv.FormatUint(atomic.AddUint64(&g.nextID, 1), 10)
}

type parallelIDGenerator struct{}

func (g parallelIDGenerator) Generate() string {
	return xid.New().String()
}
