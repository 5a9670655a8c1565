package sqlite

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/avesk/recollect/internal/domain/card"
)

func commitTestReview(t *testing.T, cards *CardRepository, userID, cardID, logID string, revision int64, reviewedAt time.Time) {
	t.Helper()
	upd := card.ScheduleUpdate{
		Due:           reviewedAt.Add(48 * time.Hour),
		ScheduledDays: 2,
		Reps:          int(revision),
		State:         "1",
		LastReviewed:  reviewedAt,
	}
	log := &card.ReviewLog{
		ID:         logID,
		UserID:     userID,
		CardID:     cardID,
		Rating:     3,
		State:      "1",
		ReviewedAt: reviewedAt,
		Snapshot:   json.RawMessage(`{"reps":` + logID[len(logID)-1:] + `}`),
	}
	require.NoError(t, cards.CommitReview(context.Background(), userID, cardID, upd, revision, log))
}

func TestReviewLogRepository_CountSince(t *testing.T) {
	db := NewTestDB(t)
	cards := NewCardRepository(db)
	logs := NewReviewLogRepository(db)
	ctx := context.Background()

	require.NoError(t, cards.Create(ctx, testCard("c1", "user1", nil)))

	base := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	commitTestReview(t, cards, "user1", "c1", "rl1", 1, base)
	commitTestReview(t, cards, "user1", "c1", "rl2", 2, base.Add(24*time.Hour))
	commitTestReview(t, cards, "user1", "c1", "rl3", 3, base.Add(48*time.Hour))

	count, err := logs.CountSince(ctx, "user1", base.Add(24*time.Hour))
	require.NoError(t, err)
	require.Equal(t, 2, count)

	count, err = logs.CountSince(ctx, "user1", base.Add(72*time.Hour))
	require.NoError(t, err)
	require.Zero(t, count)

	count, err = logs.CountSince(ctx, "user2", base)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestReviewLogRepository_ListForCard(t *testing.T) {
	db := NewTestDB(t)
	cards := NewCardRepository(db)
	logs := NewReviewLogRepository(db)
	ctx := context.Background()

	require.NoError(t, cards.Create(ctx, testCard("c1", "user1", nil)))
	require.NoError(t, cards.Create(ctx, testCard("c2", "user1", nil)))

	base := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	commitTestReview(t, cards, "user1", "c1", "rl1", 1, base)
	commitTestReview(t, cards, "user1", "c1", "rl2", 2, base.Add(24*time.Hour))
	commitTestReview(t, cards, "user1", "c2", "rl3", 1, base)

	got, err := logs.ListForCard(ctx, "user1", "c1", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Newest first.
	require.Equal(t, "rl2", got[0].ID)
	require.Equal(t, "rl1", got[1].ID)
	require.Equal(t, 3, got[0].Rating)
	require.JSONEq(t, `{"reps":2}`, string(got[0].Snapshot))

	got, err = logs.ListForCard(ctx, "user1", "c1", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "rl2", got[0].ID)

	got, err = logs.ListForCard(ctx, "user2", "c1", 10)
	require.NoError(t, err)
	require.Empty(t, got)
}
