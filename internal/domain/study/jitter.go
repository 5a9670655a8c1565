package study

import (
	"math/rand"
	"time"
)

const (
	// jitterSpread is the fraction of the remaining interval a due
	// date may shift in either direction.
	jitterSpread = 0.15

	// minJitterLead keeps a jittered due date from collapsing into
	// the present: it never lands closer than this to now.
	minJitterLead = time.Hour
)

// JitterPolicy spreads due dates so cards created or reviewed together
// don't stay clustered forever.
type JitterPolicy struct {
	rng *rand.Rand
}

// NewJitterPolicy builds a policy around rng. A nil rng gets a
// wall-clock seeded source.
func NewJitterPolicy(rng *rand.Rand) *JitterPolicy {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &JitterPolicy{rng: rng}
}

// Apply shifts due by a uniform factor in ±jitterSpread of the interval
// from now. Due dates at or before now pass through untouched, and the
// result never lands before now+minJitterLead.
func (p *JitterPolicy) Apply(due, now time.Time) time.Time {
	if !due.After(now) {
		return due
	}
	interval := due.Sub(now)
	factor := (p.rng.Float64()*2 - 1) * jitterSpread
	jittered := due.Add(time.Duration(factor * float64(interval)))
	if floor := now.Add(minJitterLead); jittered.Before(floor) {
		return floor
	}
	return jittered
}
