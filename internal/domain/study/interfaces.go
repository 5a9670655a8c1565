package study

import (
	"context"
	"time"

	"github.com/avesk/recollect/internal/domain/card"
)

// DueQuery selects review candidates: cards due at or before Cutoff,
// plus cards that were never scheduled (null due). Results are ordered
// unscheduled first, then due ascending, with creation time breaking
// ties.
type DueQuery struct {
	Cutoff     time.Time
	PlaylistID string
	// Limit caps the result set; zero means no cap. The queue builder
	// reads all candidates so it can defer the overflow.
	Limit int
}

// OverdueCursor is a keyset position in the (due, id) ordering used by
// overdue scans.
type OverdueCursor struct {
	Due time.Time
	ID  string
}

// CardCounts summarizes a user's collection for the stats surface.
type CardCounts struct {
	Total   int
	Due     int
	ByState map[string]int
}

// CardRepository is the persistence surface the study flows need.
type CardRepository interface {
	Get(ctx context.Context, userID, id string) (*card.Card, error)

	// CommitReview atomically writes the schedule update and appends
	// the review log. The write is guarded by expectedRevision and
	// fails with repository.ErrConflict on a stale read.
	CommitReview(ctx context.Context, userID, cardID string, upd card.ScheduleUpdate, expectedRevision int64, log *card.ReviewLog) error

	ListDue(ctx context.Context, userID string, q DueQuery) ([]*card.Card, error)

	// DeferDue pushes the given cards' due to newDue, but only rows
	// still due at or before observedCutoff (or never scheduled). A
	// card reviewed since the read is left alone. Returns the number
	// of rows updated.
	DeferDue(ctx context.Context, userID string, ids []string, newDue, observedCutoff time.Time) (int, error)

	// ListOverdue returns cards with due strictly before the given
	// time, ordered by (due, id), starting after cursor.
	ListOverdue(ctx context.Context, userID string, before time.Time, cursor OverdueCursor, limit int) ([]*card.Card, error)

	// RebaseDue rewrites a card's due and scheduled interval without
	// touching the rest of the memory state.
	RebaseDue(ctx context.Context, userID, id string, due time.Time, scheduledDays float64) error

	// UpdateDue rewrites due and scheduled interval under an
	// optimistic revision guard.
	UpdateDue(ctx context.Context, userID, id string, due time.Time, scheduledDays float64, expectedRevision int64) error

	Counts(ctx context.Context, userID string, dueCutoff time.Time) (CardCounts, error)

	// ListUserIDs returns every user with at least one card. Used by
	// the maintenance job.
	ListUserIDs(ctx context.Context) ([]string, error)
}

// ReviewLogRepository reads the append-only review history.
type ReviewLogRepository interface {
	CountSince(ctx context.Context, userID string, since time.Time) (int, error)
	ListForCard(ctx context.Context, userID, cardID string, limit int) ([]*card.ReviewLog, error)
}
