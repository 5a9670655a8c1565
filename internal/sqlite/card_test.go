package sqlite

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/avesk/recollect/internal/domain/card"
	"github.com/avesk/recollect/internal/domain/playlist"
	"github.com/avesk/recollect/internal/domain/study"
	"github.com/avesk/recollect/internal/repository"
)

func testCard(id, userID string, due *time.Time) *card.Card {
	now := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	return &card.Card{
		ID:            id,
		UserID:        userID,
		Question:      "question " + id,
		Answer:        "answer " + id,
		Due:           due,
		ScheduledDays: 2,
		State:         "0",
		CreatedAt:     now,
		ModifiedAt:    now,
		Revision:      1,
	}
}

func timePtr(t time.Time) *time.Time { return &t }

func TestCardRepository_CreateAndGet(t *testing.T) {
	db := NewTestDB(t)
	repo := NewCardRepository(db)
	ctx := context.Background()

	due := time.Date(2026, 1, 12, 9, 0, 0, 0, time.UTC)
	c := testCard("c1", "user1", &due)
	c.Context = "from the concurrency chapter"
	c.ContentHash = "abc123"
	require.NoError(t, repo.Create(ctx, c))

	got, err := repo.Get(ctx, "user1", "c1")
	require.NoError(t, err)
	require.Equal(t, c.Question, got.Question)
	require.Equal(t, c.Answer, got.Answer)
	require.Equal(t, "from the concurrency chapter", got.Context)
	require.Equal(t, "abc123", got.ContentHash)
	require.NotNil(t, got.Due)
	require.WithinDuration(t, due, *got.Due, time.Second)
	require.Equal(t, int64(1), got.Revision)
	require.Nil(t, got.LastReviewed)
}

func TestCardRepository_Get_UserIsolation(t *testing.T) {
	db := NewTestDB(t)
	repo := NewCardRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testCard("c1", "user1", nil)))

	_, err := repo.Get(ctx, "user2", "c1")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCardRepository_FindByContentHash(t *testing.T) {
	db := NewTestDB(t)
	repo := NewCardRepository(db)
	ctx := context.Background()

	c := testCard("c1", "user1", nil)
	c.ContentHash = "hash-a"
	require.NoError(t, repo.Create(ctx, c))

	got, err := repo.FindByContentHash(ctx, "user1", "hash-a")
	require.NoError(t, err)
	require.Equal(t, "c1", got.ID)

	_, err = repo.FindByContentHash(ctx, "user1", "hash-b")
	require.ErrorIs(t, err, repository.ErrNotFound)

	// Another user's identical content is not a duplicate.
	_, err = repo.FindByContentHash(ctx, "user2", "hash-a")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCardRepository_List_Pagination(t *testing.T) {
	db := NewTestDB(t)
	repo := NewCardRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		c := testCard(id, "user1", nil)
		c.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		c.ModifiedAt = c.CreatedAt
		require.NoError(t, repo.Create(ctx, c))
	}

	cards, total, err := repo.List(ctx, "user1", card.ListOptions{Limit: 2})
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Len(t, cards, 2)
	// Newest first.
	require.Equal(t, "c", cards[0].ID)
	require.Equal(t, "b", cards[1].ID)

	cards, total, err = repo.List(ctx, "user1", card.ListOptions{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Len(t, cards, 1)
	require.Equal(t, "a", cards[0].ID)
}

func TestCardRepository_List_PlaylistFilter(t *testing.T) {
	db := NewTestDB(t)
	cards := NewCardRepository(db)
	playlists := NewPlaylistRepository(db)
	ctx := context.Background()

	require.NoError(t, cards.Create(ctx, testCard("in", "user1", nil)))
	require.NoError(t, cards.Create(ctx, testCard("out", "user1", nil)))
	require.NoError(t, playlists.Create(ctx, &playlist.Playlist{ID: "pl1", UserID: "user1", Name: "algorithms", CreatedAt: time.Now()}))
	require.NoError(t, playlists.AddCard(ctx, "user1", "pl1", "in"))

	got, total, err := cards.List(ctx, "user1", card.ListOptions{PlaylistID: "pl1"})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, got, 1)
	require.Equal(t, "in", got[0].ID)
}

func TestCardRepository_Delete_CascadesHistory(t *testing.T) {
	db := NewTestDB(t)
	cards := NewCardRepository(db)
	playlists := NewPlaylistRepository(db)
	ctx := context.Background()

	c := testCard("c1", "user1", nil)
	require.NoError(t, cards.Create(ctx, c))
	require.NoError(t, playlists.Create(ctx, &playlist.Playlist{ID: "pl1", UserID: "user1", Name: "deck", CreatedAt: time.Now()}))
	require.NoError(t, playlists.AddCard(ctx, "user1", "pl1", "c1"))

	reviewed := time.Date(2026, 1, 11, 9, 0, 0, 0, time.UTC)
	upd := card.ScheduleUpdate{
		Due:           reviewed.Add(48 * time.Hour),
		ScheduledDays: 2,
		Reps:          1,
		State:         "1",
		LastReviewed:  reviewed,
	}
	log := &card.ReviewLog{ID: "rl1", UserID: "user1", CardID: "c1", Rating: 3, State: "0", ReviewedAt: reviewed, Snapshot: json.RawMessage(`{}`)}
	require.NoError(t, cards.CommitReview(ctx, "user1", "c1", upd, 1, log))

	require.NoError(t, cards.Delete(ctx, "user1", "c1"))

	_, err := cards.Get(ctx, "user1", "c1")
	require.ErrorIs(t, err, repository.ErrNotFound)

	var logs, memberships int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM review_logs WHERE card_id = 'c1'`).Scan(&logs))
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM playlist_cards WHERE card_id = 'c1'`).Scan(&memberships))
	require.Zero(t, logs)
	require.Zero(t, memberships)
}

func TestCardRepository_CommitReview(t *testing.T) {
	db := NewTestDB(t)
	repo := NewCardRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testCard("c1", "user1", nil)))

	reviewed := time.Date(2026, 1, 11, 9, 0, 0, 0, time.UTC)
	newDue := reviewed.Add(72 * time.Hour)
	upd := card.ScheduleUpdate{
		Due:           newDue,
		Stability:     3.1,
		Difficulty:    5.2,
		ElapsedDays:   1,
		ScheduledDays: 3,
		Reps:          1,
		State:         "2",
		LastReviewed:  reviewed,
	}
	log := &card.ReviewLog{
		ID: "rl1", UserID: "user1", CardID: "c1",
		Rating: 3, ScheduledDays: 3, ElapsedDays: 1, State: "0",
		ReviewedAt: reviewed, Snapshot: json.RawMessage(`{"reps":1}`),
	}
	require.NoError(t, repo.CommitReview(ctx, "user1", "c1", upd, 1, log))

	got, err := repo.Get(ctx, "user1", "c1")
	require.NoError(t, err)
	require.Equal(t, "2", got.State)
	require.Equal(t, 1, got.Reps)
	require.InDelta(t, 3.1, got.Stability, 1e-9)
	require.WithinDuration(t, newDue, *got.Due, time.Second)
	require.WithinDuration(t, reviewed, *got.LastReviewed, time.Second)
	require.Equal(t, int64(2), got.Revision)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM review_logs WHERE card_id = 'c1'`).Scan(&count))
	require.Equal(t, 1, count)
}

func TestCardRepository_CommitReview_StaleRevision(t *testing.T) {
	db := NewTestDB(t)
	repo := NewCardRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testCard("c1", "user1", nil)))

	reviewed := time.Now().UTC()
	upd := card.ScheduleUpdate{Due: reviewed.Add(48 * time.Hour), ScheduledDays: 2, Reps: 1, State: "1", LastReviewed: reviewed}
	log := &card.ReviewLog{ID: "rl1", UserID: "user1", CardID: "c1", Rating: 3, State: "0", ReviewedAt: reviewed, Snapshot: json.RawMessage(`{}`)}

	err := repo.CommitReview(ctx, "user1", "c1", upd, 99, log)
	require.ErrorIs(t, err, repository.ErrConflict)

	// Conflict leaves the card untouched and writes no log.
	got, err := repo.Get(ctx, "user1", "c1")
	require.NoError(t, err)
	require.Equal(t, int64(1), got.Revision)
	require.Zero(t, got.Reps)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM review_logs`).Scan(&count))
	require.Zero(t, count)
}

func TestCardRepository_CommitReview_MissingCard(t *testing.T) {
	db := NewTestDB(t)
	repo := NewCardRepository(db)
	ctx := context.Background()

	reviewed := time.Now().UTC()
	upd := card.ScheduleUpdate{Due: reviewed, LastReviewed: reviewed}
	log := &card.ReviewLog{ID: "rl1", UserID: "user1", CardID: "missing", Rating: 3, ReviewedAt: reviewed}

	err := repo.CommitReview(ctx, "user1", "missing", upd, 1, log)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCardRepository_ListDue_OrderingAndCutoff(t *testing.T) {
	db := NewTestDB(t)
	repo := NewCardRepository(db)
	ctx := context.Background()

	cutoff := time.Date(2026, 1, 15, 23, 59, 59, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, testCard("later", "user1", timePtr(cutoff.Add(time.Minute)))))
	require.NoError(t, repo.Create(ctx, testCard("due-early", "user1", timePtr(cutoff.Add(-48*time.Hour)))))
	require.NoError(t, repo.Create(ctx, testCard("due-late", "user1", timePtr(cutoff.Add(-time.Hour)))))
	require.NoError(t, repo.Create(ctx, testCard("never-scheduled", "user1", nil)))

	cards, err := repo.ListDue(ctx, "user1", study.DueQuery{Cutoff: cutoff})
	require.NoError(t, err)
	require.Len(t, cards, 3)
	// NULL dues first, then ascending due.
	require.Equal(t, "never-scheduled", cards[0].ID)
	require.Equal(t, "due-early", cards[1].ID)
	require.Equal(t, "due-late", cards[2].ID)
}

func TestCardRepository_ListDue_PlaylistFilter(t *testing.T) {
	db := NewTestDB(t)
	cards := NewCardRepository(db)
	playlists := NewPlaylistRepository(db)
	ctx := context.Background()

	cutoff := time.Now().UTC()
	require.NoError(t, cards.Create(ctx, testCard("in", "user1", nil)))
	require.NoError(t, cards.Create(ctx, testCard("out", "user1", nil)))
	require.NoError(t, playlists.Create(ctx, &playlist.Playlist{ID: "pl1", UserID: "user1", Name: "deck", CreatedAt: time.Now()}))
	require.NoError(t, playlists.AddCard(ctx, "user1", "pl1", "in"))

	got, err := cards.ListDue(ctx, "user1", study.DueQuery{Cutoff: cutoff, PlaylistID: "pl1"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "in", got[0].ID)
}

func TestCardRepository_DeferDue_SkipsRescheduledRows(t *testing.T) {
	db := NewTestDB(t)
	repo := NewCardRepository(db)
	ctx := context.Background()

	cutoff := time.Date(2026, 1, 15, 23, 59, 59, 0, time.UTC)
	tomorrow := cutoff.AddDate(0, 0, 1)

	require.NoError(t, repo.Create(ctx, testCard("still-due", "user1", timePtr(cutoff.Add(-time.Hour)))))
	// Reviewed between the queue read and the defer write: its due is
	// already past the observed cutoff.
	require.NoError(t, repo.Create(ctx, testCard("already-moved", "user1", timePtr(cutoff.Add(time.Hour)))))

	n, err := repo.DeferDue(ctx, "user1", []string{"still-due", "already-moved"}, tomorrow, cutoff)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	got, err := repo.Get(ctx, "user1", "still-due")
	require.NoError(t, err)
	require.WithinDuration(t, tomorrow, *got.Due, time.Second)

	got, err = repo.Get(ctx, "user1", "already-moved")
	require.NoError(t, err)
	require.WithinDuration(t, cutoff.Add(time.Hour), *got.Due, time.Second)
}

func TestCardRepository_ListOverdue_Keyset(t *testing.T) {
	db := NewTestDB(t)
	repo := NewCardRepository(db)
	ctx := context.Background()

	now := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	sameDue := now.Add(-24 * time.Hour)

	require.NoError(t, repo.Create(ctx, testCard("a", "user1", timePtr(now.Add(-72*time.Hour)))))
	require.NoError(t, repo.Create(ctx, testCard("b", "user1", timePtr(sameDue))))
	require.NoError(t, repo.Create(ctx, testCard("c", "user1", timePtr(sameDue))))
	require.NoError(t, repo.Create(ctx, testCard("future", "user1", timePtr(now.Add(time.Hour)))))
	require.NoError(t, repo.Create(ctx, testCard("unscheduled", "user1", nil)))

	page, err := repo.ListOverdue(ctx, "user1", now, study.OverdueCursor{}, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, "a", page[0].ID)
	require.Equal(t, "b", page[1].ID)

	cursor := study.OverdueCursor{Due: *page[1].Due, ID: page[1].ID}
	page, err = repo.ListOverdue(ctx, "user1", now, cursor, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.Equal(t, "c", page[0].ID)
}

func TestCardRepository_RebaseDue(t *testing.T) {
	db := NewTestDB(t)
	repo := NewCardRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testCard("c1", "user1", timePtr(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))))

	newDue := time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.RebaseDue(ctx, "user1", "c1", newDue, 5))

	got, err := repo.Get(ctx, "user1", "c1")
	require.NoError(t, err)
	require.WithinDuration(t, newDue, *got.Due, time.Second)
	require.InDelta(t, 5, got.ScheduledDays, 1e-9)
	require.Equal(t, int64(2), got.Revision)

	require.ErrorIs(t, repo.RebaseDue(ctx, "user1", "missing", newDue, 5), repository.ErrNotFound)
}

func TestCardRepository_UpdateDue_RevisionGuard(t *testing.T) {
	db := NewTestDB(t)
	repo := NewCardRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testCard("c1", "user1", nil)))

	newDue := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.UpdateDue(ctx, "user1", "c1", newDue, 7, 1))

	err := repo.UpdateDue(ctx, "user1", "c1", newDue, 7, 1)
	require.ErrorIs(t, err, repository.ErrConflict)

	err = repo.UpdateDue(ctx, "user1", "missing", newDue, 7, 1)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCardRepository_Counts(t *testing.T) {
	db := NewTestDB(t)
	repo := NewCardRepository(db)
	ctx := context.Background()

	cutoff := time.Date(2026, 1, 15, 23, 59, 59, 0, time.UTC)

	newCard := testCard("n1", "user1", nil)
	require.NoError(t, repo.Create(ctx, newCard))

	reviewDue := testCard("r1", "user1", timePtr(cutoff.Add(-time.Hour)))
	reviewDue.State = "2"
	require.NoError(t, repo.Create(ctx, reviewDue))

	reviewLater := testCard("r2", "user1", timePtr(cutoff.Add(time.Hour)))
	reviewLater.State = "2"
	require.NoError(t, repo.Create(ctx, reviewLater))

	// Other users don't leak into the summary.
	require.NoError(t, repo.Create(ctx, testCard("other", "user2", nil)))

	counts, err := repo.Counts(ctx, "user1", cutoff)
	require.NoError(t, err)
	require.Equal(t, 3, counts.Total)
	require.Equal(t, 2, counts.Due)
	require.Equal(t, 1, counts.ByState["0"])
	require.Equal(t, 2, counts.ByState["2"])
}

func TestCardRepository_ListUserIDs(t *testing.T) {
	db := NewTestDB(t)
	repo := NewCardRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testCard("c1", "beth", nil)))
	require.NoError(t, repo.Create(ctx, testCard("c2", "amir", nil)))
	require.NoError(t, repo.Create(ctx, testCard("c3", "amir", nil)))

	users, err := repo.ListUserIDs(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"amir", "beth"}, users)
}
