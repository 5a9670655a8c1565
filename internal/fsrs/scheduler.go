package fsrs

import (
	"fmt"
	"math/rand"
	"time"
)

const dayHours = 24.0

// Config configures a Scheduler. The zero value gives the published FSRS v6
// defaults with interval fuzz on and short-term learning steps off, which is
// the fixed production configuration: changing weights or step lists makes
// previously scheduled intervals incomparable.
type Config struct {
	Weights          Weights         // zero vector: DefaultWeights
	DesiredRetention float64         // zero: 0.9
	MaximumInterval  int             // zero: 36500 days
	EnableShortTerm  bool            // false: empty step lists, cards graduate immediately
	LearningSteps    []time.Duration // nil + EnableShortTerm: [1m, 10m]
	RelearningSteps  []time.Duration // nil + EnableShortTerm: [10m]
	DisableFuzzing   bool
	Rand             *rand.Rand // nil: seeded from the wall clock
}

// Scheduler computes review outcomes with the FSRS v6 equations.
// It is safe for concurrent use only when callers serialize access to the
// configured random source; with per-request schedulers or the default
// source that is the caller's concern.
type Scheduler struct {
	model            model
	desiredRetention float64
	maximumInterval  int
	learningSteps    []time.Duration
	relearningSteps  []time.Duration
	disableFuzzing   bool
	rng              *rand.Rand
}

// NewScheduler builds a Scheduler, filling zero config fields with defaults.
func NewScheduler(cfg Config) (*Scheduler, error) {
	w := cfg.Weights
	if w == (Weights{}) {
		w = DefaultWeights
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}

	retention := cfg.DesiredRetention
	if retention == 0 {
		retention = 0.9
	}
	if retention < 0 || retention > 1 {
		return nil, fmt.Errorf("fsrs: desired retention %f out of range (0, 1]", retention)
	}

	maxIvl := cfg.MaximumInterval
	if maxIvl == 0 {
		maxIvl = 36500
	}
	if maxIvl < 0 {
		return nil, fmt.Errorf("fsrs: maximum interval %d must be positive", maxIvl)
	}

	learning := cfg.LearningSteps
	relearning := cfg.RelearningSteps
	if cfg.EnableShortTerm {
		if learning == nil {
			learning = []time.Duration{time.Minute, 10 * time.Minute}
		}
		if relearning == nil {
			relearning = []time.Duration{10 * time.Minute}
		}
	}

	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &Scheduler{
		model:            newModel(w),
		desiredRetention: retention,
		maximumInterval:  maxIvl,
		learningSteps:    learning,
		relearningSteps:  relearning,
		disableFuzzing:   cfg.DisableFuzzing,
		rng:              rng,
	}, nil
}

// Schedule grades the card and returns its next memory state plus a snapshot
// of the computation. The input state is not mutated. now is an explicit
// argument so callers can replay or backdate reviews.
func (s *Scheduler) Schedule(state MemoryState, rating Rating, now time.Time) (MemoryState, ReviewSnapshot, error) {
	if !rating.IsValid() {
		return MemoryState{}, ReviewSnapshot{}, fmt.Errorf("%w: %d", ErrInvalidRating, int(rating))
	}
	if err := state.validate(); err != nil {
		return MemoryState{}, ReviewSnapshot{}, err
	}

	next := state

	var elapsed float64
	if state.Reps > 0 {
		elapsed = now.Sub(state.LastReview).Hours() / dayHours
		if elapsed < 0 {
			elapsed = 0
		}
	}

	s.reviseMemory(&next, rating, elapsed)
	interval := s.advancePhase(&next, rating)

	if !s.disableFuzzing && next.State == Review {
		days := int(interval.Hours() / dayHours)
		if days > 0 {
			interval = time.Duration(fuzzInterval(days, s.maximumInterval, s.rng)) * 24 * time.Hour
		}
	}

	next.Due = now.Add(interval)
	next.ElapsedDays = elapsed
	next.ScheduledDays = interval.Hours() / dayHours
	next.Reps = state.Reps + 1
	if rating == Again && (state.State == Review || state.State == Relearning) {
		next.Lapses = state.Lapses + 1
	}
	next.LastReview = now

	snap := ReviewSnapshot{
		Rating:        rating,
		State:         next.State,
		Due:           next.Due,
		Stability:     next.Stability,
		Difficulty:    next.Difficulty,
		ElapsedDays:   next.ElapsedDays,
		ScheduledDays: next.ScheduledDays,
		Review:        now,
	}
	return next, snap, nil
}

// Preview returns the outcome of each possible grade at the given time.
func (s *Scheduler) Preview(state MemoryState, now time.Time) (map[Rating]MemoryState, error) {
	out := make(map[Rating]MemoryState, 4)
	for _, r := range []Rating{Again, Hard, Good, Easy} {
		next, _, err := s.Schedule(state, r, now)
		if err != nil {
			return nil, err
		}
		out[r] = next
	}
	return out, nil
}

// Retrievability returns the current recall probability, or 0 for a card
// that has never been graded.
func (s *Scheduler) Retrievability(state MemoryState, now time.Time) float64 {
	if state.Reps == 0 || state.Stability < minStability {
		return 0
	}
	elapsed := now.Sub(state.LastReview).Hours() / dayHours
	if elapsed < 0 {
		elapsed = 0
	}
	return s.model.retrievability(elapsed, state.Stability)
}

// reviseMemory updates stability and difficulty for the grade.
func (s *Scheduler) reviseMemory(ms *MemoryState, rating Rating, elapsed float64) {
	if ms.Reps == 0 {
		ms.Stability = s.model.initialStability(rating)
		ms.Difficulty = s.model.initialDifficulty(rating, true)
		return
	}

	if elapsed < 1 {
		ms.Stability = s.model.sameDayStability(ms.Stability, rating)
	} else {
		retr := s.model.retrievability(elapsed, ms.Stability)
		ms.Stability = s.model.nextStability(ms.Difficulty, ms.Stability, retr, rating)
	}
	ms.Difficulty = s.model.nextDifficulty(ms.Difficulty, rating)
}

// advancePhase runs the phase state machine and returns the raw interval.
func (s *Scheduler) advancePhase(ms *MemoryState, rating Rating) time.Duration {
	switch ms.State {
	case New, Learning:
		return s.advanceSteps(ms, rating, s.learningSteps)
	case Relearning:
		return s.advanceSteps(ms, rating, s.relearningSteps)
	default:
		return s.advanceReview(ms, rating)
	}
}

// advanceSteps walks the configured step list for Learning/Relearning
// phases. With no steps configured the card graduates immediately.
func (s *Scheduler) advanceSteps(ms *MemoryState, rating Rating, steps []time.Duration) time.Duration {
	step := ms.LearningStep
	if ms.State == New {
		ms.State = Learning
		step = 0
	}

	if len(steps) == 0 || (step >= len(steps) && rating != Again) {
		return s.graduate(ms)
	}

	switch rating {
	case Again:
		ms.LearningStep = 0
		return steps[0]

	case Hard:
		if step == 0 && len(steps) == 1 {
			return time.Duration(float64(steps[0]) * 1.5)
		}
		if step == 0 && len(steps) >= 2 {
			return (steps[0] + steps[1]) / 2
		}
		return steps[step]

	case Good:
		nextStep := step + 1
		if nextStep >= len(steps) {
			return s.graduate(ms)
		}
		ms.LearningStep = nextStep
		return steps[nextStep]

	default: // Easy
		return s.graduate(ms)
	}
}

// advanceReview handles grades in the Review phase. A lapse re-enters
// Relearning only when relearning steps are configured.
func (s *Scheduler) advanceReview(ms *MemoryState, rating Rating) time.Duration {
	if rating == Again && len(s.relearningSteps) > 0 {
		ms.State = Relearning
		ms.LearningStep = 0
		return s.relearningSteps[0]
	}

	ms.LearningStep = 0
	days := s.model.intervalDays(ms.Stability, s.desiredRetention, s.maximumInterval)
	return time.Duration(days) * 24 * time.Hour
}

// graduate moves the card into the long-term Review cycle.
func (s *Scheduler) graduate(ms *MemoryState) time.Duration {
	ms.State = Review
	ms.LearningStep = 0
	days := s.model.intervalDays(ms.Stability, s.desiredRetention, s.maximumInterval)
	return time.Duration(days) * 24 * time.Hour
}
