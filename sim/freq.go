package sim

import (
	"log"
	"math"
)

// Freq is the frequency of a simulated clock domain.
type Freq float64

// Frequency units.
const (
	Hz  Freq = 1
	KHz Freq = 1e3
	MHz Freq = 1e6
	GHz Freq = 1e9
)

// Period returns the time between two consecutive ticks.
func (f Freq) Period() VTimeInSec {
	if f == 0 {
		log.Panic("frequency cannot be 0")
	}

	return VTimeInSec(1.0 / f)
}

// ThisTick returns the current tick time. A time that falls between two
// ticks belongs to the later one.
//
//	           Input
//	           (          ]
//	|----------|----------|----------|----->
//	                      |
//	                      Output
func (f Freq) ThisTick(now VTimeInSec) VTimeInSec {
	timeMustBeANumber(now)

	count := math.Ceil(math.Round(float64(now)*10*float64(f)) / 10)

	return VTimeInSec(count / float64(f))
}

// NextTick returns the next tick time.
//
//	           Input
//	           [          )
//	|----------|----------|----------|----->
//	                      |
//	                      Output
func (f Freq) NextTick(now VTimeInSec) VTimeInSec {
	timeMustBeANumber(now)

	count := math.Floor(math.Round(float64(now)*10*float64(f)) / 10)

	return VTimeInSec((count + 1) / float64(f))
}

// NCyclesLater returns the tick time n cycles after now.
func (f Freq) NCyclesLater(n int, now VTimeInSec) VTimeInSec {
	timeMustBeANumber(now)

	return f.ThisTick(now + VTimeInSec(Freq(n)/f))
}

// NoEarlierThan returns the tick time at or right after the given time.
func (f Freq) NoEarlierThan(t VTimeInSec) VTimeInSec {
	timeMustBeANumber(t)

	count := t / f.Period()

	return VTimeInSec(math.Ceil(float64(count))) * f.Period()
}

func timeMustBeANumber(t VTimeInSec) {
	if math.IsNaN(float64(t)) {
		log.Panic("invalid time")
	}
}
