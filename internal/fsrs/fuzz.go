package fsrs

import (
	"math"
	"math/rand"
)

// Interval fuzz spreads review dates so cards graded together do not all
// come due on the same day. The amount of spread widens with the interval.
type fuzzBand struct {
	start, end float64
	factor     float64
}

var fuzzBands = []fuzzBand{
	{2.5, 7.0, 0.15},
	{7.0, 20.0, 0.10},
	{20.0, math.Inf(1), 0.05},
}

// fuzzDelta = 1.0 + sum(factor * max(min(interval, end) - start, 0)).
func fuzzDelta(interval float64) float64 {
	delta := 1.0
	for _, b := range fuzzBands {
		delta += b.factor * math.Max(math.Min(interval, b.end)-b.start, 0)
	}
	return delta
}

// fuzzInterval randomizes a whole-day interval within its fuzz band.
// Intervals under 2.5 days are returned unchanged.
func fuzzInterval(interval, maxIvl int, rng *rand.Rand) int {
	if float64(interval) < 2.5 {
		return interval
	}

	ivl := float64(interval)
	delta := fuzzDelta(ivl)

	lo := max(2, int(math.Round(ivl-delta)))
	hi := min(int(math.Round(ivl+delta)), maxIvl)
	lo = min(lo, hi)

	fuzzed := int(math.Round(rng.Float64()*float64(hi-lo+1))) + lo
	return min(fuzzed, maxIvl)
}
