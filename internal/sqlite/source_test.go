package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/avesk/recollect/internal/domain/source"
	"github.com/avesk/recollect/internal/repository"
)

func testSource(id, userID, path string) *source.Source {
	return &source.Source{
		ID:        id,
		UserID:    userID,
		Kind:      source.KindLocal,
		Path:      path,
		CreatedAt: time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC),
	}
}

func TestSourceRepository_CreateAndList(t *testing.T) {
	db := NewTestDB(t)
	repo := NewSourceRepository(db)
	ctx := context.Background()

	s := testSource("s1", "user1", "/decks/go")
	require.NoError(t, repo.Create(ctx, s))

	git := testSource("s2", "user1", "https://example.com/decks.git")
	git.Kind = source.KindGit
	git.CreatedAt = s.CreatedAt.Add(time.Minute)
	require.NoError(t, repo.Create(ctx, git))

	require.NoError(t, repo.Create(ctx, testSource("s3", "user2", "/decks/go")))

	sources, err := repo.List(ctx, "user1")
	require.NoError(t, err)
	require.Len(t, sources, 2)
	require.Equal(t, "s1", sources[0].ID)
	require.Equal(t, "s2", sources[1].ID)
	require.Equal(t, source.KindGit, sources[1].Kind)
	require.Nil(t, sources[0].LastSynced)
}

func TestSourceRepository_Create_DuplicatePath(t *testing.T) {
	db := NewTestDB(t)
	repo := NewSourceRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testSource("s1", "user1", "/decks/go")))

	err := repo.Create(ctx, testSource("s2", "user1", "/decks/go"))
	require.ErrorIs(t, err, repository.ErrDuplicate)

	// Same path for a different user is fine.
	require.NoError(t, repo.Create(ctx, testSource("s3", "user2", "/decks/go")))
}

func TestSourceRepository_UpdateLastSynced(t *testing.T) {
	db := NewTestDB(t)
	repo := NewSourceRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testSource("s1", "user1", "/decks/go")))

	synced := time.Date(2026, 1, 15, 3, 30, 0, 0, time.UTC)
	require.NoError(t, repo.UpdateLastSynced(ctx, "user1", "s1", synced))

	sources, err := repo.List(ctx, "user1")
	require.NoError(t, err)
	require.NotNil(t, sources[0].LastSynced)
	require.WithinDuration(t, synced, *sources[0].LastSynced, time.Second)

	require.ErrorIs(t, repo.UpdateLastSynced(ctx, "user1", "missing", synced), repository.ErrNotFound)
	require.ErrorIs(t, repo.UpdateLastSynced(ctx, "user2", "s1", synced), repository.ErrNotFound)
}

func TestSourceRepository_Delete_DetachesCards(t *testing.T) {
	db := NewTestDB(t)
	sources := NewSourceRepository(db)
	cards := NewCardRepository(db)
	ctx := context.Background()

	require.NoError(t, sources.Create(ctx, testSource("s1", "user1", "/decks/go")))

	c := testCard("c1", "user1", nil)
	c.SourceID = "s1"
	require.NoError(t, cards.Create(ctx, c))

	require.NoError(t, sources.Delete(ctx, "user1", "s1"))

	// Imported cards survive with the source link cleared.
	got, err := cards.Get(ctx, "user1", "c1")
	require.NoError(t, err)
	require.Empty(t, got.SourceID)

	require.ErrorIs(t, sources.Delete(ctx, "user1", "s1"), repository.ErrNotFound)
}
