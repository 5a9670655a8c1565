// Package card holds the flashcard domain: the persisted card model, the
// codec between storage fields and scheduler memory state, and the CRUD
// service.
package card

import (
	"encoding/json"
	"time"
)

// Card is a single question/answer flashcard plus its scheduling state.
// Scheduling fields mirror fsrs.MemoryState; State holds the numeric
// state code ("0".."3") as persisted.
type Card struct {
	ID       string
	UserID   string
	Question string
	Answer   string
	Context  string

	// ContentHash deduplicates cards imported from sources. Empty for
	// manually created cards.
	ContentHash string
	SourceID    string

	Due           *time.Time
	Stability     float64
	Difficulty    float64
	ElapsedDays   float64
	ScheduledDays float64
	LearningStep  int
	Reps          int
	Lapses        int
	State         string
	LastReviewed  *time.Time

	CreatedAt  time.Time
	ModifiedAt time.Time

	// Revision increments on every write and backs optimistic
	// concurrency checks.
	Revision int64
}

// ScheduleUpdate is the set of card fields a scheduling operation is
// allowed to write. Content fields are never touched by scheduling.
type ScheduleUpdate struct {
	Due           time.Time
	Stability     float64
	Difficulty    float64
	ElapsedDays   float64
	ScheduledDays float64
	LearningStep  int
	Reps          int
	Lapses        int
	State         string
	LastReviewed  time.Time
}

// ApplyTo writes the update onto c, bumping ModifiedAt and Revision the
// same way the persistence layer does.
func (u ScheduleUpdate) ApplyTo(c *Card, now time.Time) {
	due := u.Due
	c.Due = &due
	c.Stability = u.Stability
	c.Difficulty = u.Difficulty
	c.ElapsedDays = u.ElapsedDays
	c.ScheduledDays = u.ScheduledDays
	c.LearningStep = u.LearningStep
	c.Reps = u.Reps
	c.Lapses = u.Lapses
	c.State = u.State
	if u.Reps > 0 {
		last := u.LastReviewed
		c.LastReviewed = &last
	}
	c.ModifiedAt = now
	c.Revision++
}

// ReviewLog is the append-only record of a single graded review.
type ReviewLog struct {
	ID            string
	UserID        string
	CardID        string
	Rating        int
	ScheduledDays float64
	ElapsedDays   float64
	State         string
	ReviewedAt    time.Time

	// Snapshot is the full scheduler snapshot for the review, kept as
	// JSON for diagnostics and future re-optimization.
	Snapshot json.RawMessage
}
