package fsrs

import "time"

// MemoryState is the scheduling-relevant memory state of one card.
// It is a plain value: the scheduler never mutates its input.
type MemoryState struct {
	Due           time.Time `json:"due"`
	Stability     float64   `json:"stability"`
	Difficulty    float64   `json:"difficulty"`
	ElapsedDays   float64   `json:"elapsed_days"`
	ScheduledDays float64   `json:"scheduled_days"`
	LearningStep  int       `json:"learning_step"`
	Reps          int       `json:"reps"`
	Lapses        int       `json:"lapses"`
	State         State     `json:"state"`
	LastReview    time.Time `json:"last_review"`
}

// NewMemoryState returns the state of a brand-new card as of now: phase New,
// immediately due, with LastReview anchored to the creation time.
func NewMemoryState(now time.Time) MemoryState {
	return MemoryState{
		Due:        now,
		State:      New,
		LastReview: now,
	}
}

// validate rejects states that never went through initialization.
func (ms MemoryState) validate() error {
	if ms.LastReview.IsZero() || ms.Due.IsZero() {
		return ErrUninitializedState
	}
	if ms.State != New && ms.Stability < minStability {
		return ErrUninitializedState
	}
	return nil
}

// ReviewSnapshot captures the full outcome of one graded review. It is the
// source of the append-only review log entry and is never recomputed.
type ReviewSnapshot struct {
	Rating        Rating    `json:"rating"`
	State         State     `json:"state"`
	Due           time.Time `json:"due"`
	Stability     float64   `json:"stability"`
	Difficulty    float64   `json:"difficulty"`
	ElapsedDays   float64   `json:"elapsed_days"`
	ScheduledDays float64   `json:"scheduled_days"`
	Review        time.Time `json:"review"`
}
