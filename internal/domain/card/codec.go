package card

import (
	"time"

	"github.com/avesk/recollect/internal/fsrs"
)

// initRampDays pushes freshly created cards out so a batch import
// doesn't land in today's queue all at once.
const initRampDays = 2

// ToMemoryState maps a stored card onto scheduler memory state. Missing
// timestamps fall back to the card's creation time, so legacy rows that
// were never scheduled still produce a usable state.
func ToMemoryState(c *Card) fsrs.MemoryState {
	ms := fsrs.MemoryState{
		Due:           c.CreatedAt,
		Stability:     c.Stability,
		Difficulty:    c.Difficulty,
		ElapsedDays:   c.ElapsedDays,
		ScheduledDays: c.ScheduledDays,
		LearningStep:  c.LearningStep,
		Reps:          c.Reps,
		Lapses:        c.Lapses,
		State:         fsrs.ParseStateCode(c.State),
		LastReview:    c.CreatedAt,
	}
	if c.Due != nil {
		ms.Due = *c.Due
	}
	if c.LastReviewed != nil {
		ms.LastReview = *c.LastReviewed
	}
	return ms
}

// FromMemoryState maps scheduler memory state back onto the card fields
// a scheduling operation owns.
func FromMemoryState(ms fsrs.MemoryState) ScheduleUpdate {
	return ScheduleUpdate{
		Due:           ms.Due,
		Stability:     ms.Stability,
		Difficulty:    ms.Difficulty,
		ElapsedDays:   ms.ElapsedDays,
		ScheduledDays: ms.ScheduledDays,
		LearningStep:  ms.LearningStep,
		Reps:          ms.Reps,
		Lapses:        ms.Lapses,
		State:         ms.State.Code(),
		LastReviewed:  ms.LastReview,
	}
}

// InitialSchedule builds the scheduling fields for a brand-new card:
// a fresh New-state memory as of createdAt, with the first due date
// pushed initRampDays out.
func InitialSchedule(createdAt time.Time) ScheduleUpdate {
	ms := fsrs.NewMemoryState(createdAt)
	ms.Due = createdAt.AddDate(0, 0, initRampDays)
	if ms.ScheduledDays < initRampDays {
		ms.ScheduledDays = initRampDays
	}
	return FromMemoryState(ms)
}
