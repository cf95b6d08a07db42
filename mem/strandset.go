package mem

import (
	"fmt"
	"math/bits"
	"strings"
)

// MaxNumStrands is the largest number of hardware strands that a StrandSet
// can represent.
const MaxNumStrands = 64

// A StrandSet is a bitset over the hardware-strand IDs of one core.
type StrandSet uint64

// MakeStrandSet creates a StrandSet that contains the given strands.
func MakeStrandSet(strands ...int) StrandSet {
	s := StrandSet(0)
	for _, strand := range strands {
		s = s.Add(strand)
	}
	return s
}

// Add returns a set that additionally contains the given strand.
func (s StrandSet) Add(strand int) StrandSet {
	strandMustBeValid(strand)
	return s | 1<<strand
}

// Remove returns a set without the given strand.
func (s StrandSet) Remove(strand int) StrandSet {
	strandMustBeValid(strand)
	return s &^ (1 << strand)
}

// Contains returns true if the strand is in the set.
func (s StrandSet) Contains(strand int) bool {
	strandMustBeValid(strand)
	return s&(1<<strand) != 0
}

// Union returns the union of the two sets.
func (s StrandSet) Union(other StrandSet) StrandSet {
	return s | other
}

// Intersects returns true if the two sets share at least one strand.
func (s StrandSet) Intersects(other StrandSet) bool {
	return s&other != 0
}

// Any returns true if the set is not empty.
func (s StrandSet) Any() bool {
	return s != 0
}

// Count returns the number of strands in the set.
func (s StrandSet) Count() int {
	return bits.OnesCount64(uint64(s))
}

// Strands returns the strand IDs in the set in ascending order.
func (s StrandSet) Strands() []int {
	strands := make([]int, 0, s.Count())
	for s != 0 {
		strand := bits.TrailingZeros64(uint64(s))
		strands = append(strands, strand)
		s = s.Remove(strand)
	}
	return strands
}

func (s StrandSet) String() string {
	elems := make([]string, 0, s.Count())
	for _, strand := range s.Strands() {
		elems = append(elems, fmt.Sprintf("%d", strand))
	}
	return "{" + strings.Join(elems, ",") + "}"
}

func strandMustBeValid(strand int) {
	if strand < 0 || strand >= MaxNumStrands {
		panic(fmt.Sprintf("strand %d out of range", strand))
	}
}
