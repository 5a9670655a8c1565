package source_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/avesk/recollect/internal/domain/card"
	"github.com/avesk/recollect/internal/domain/source"
	"github.com/avesk/recollect/internal/repository"
	"github.com/avesk/recollect/internal/repository/mocks"
)

func TestSourceService_Add_DetectsKind(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		path string
		kind string
	}{
		{"/home/me/decks", source.KindLocal},
		{"https://example.com/me/decks.git", source.KindGit},
		{"git@example.com:me/decks.git", source.KindGit},
		{"./relative/decks", source.KindLocal},
	}

	for _, tc := range cases {
		repo := &mocks.SourceRepository{}
		repo.On("Create", ctx, mock.MatchedBy(func(s *source.Source) bool {
			return s.Kind == tc.kind && s.Path == tc.path
		})).Return(nil)

		svc := source.NewService(repo, &mocks.CardRepository{}, &mocks.PlaylistFiler{}, &mocks.RepoSyncer{}, "", nil)
		src, err := svc.Add(ctx, "user1", tc.path)
		require.NoError(t, err, tc.path)
		require.Equal(t, tc.kind, src.Kind, tc.path)
	}
}

func TestSourceService_Add_DuplicatePath(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.SourceRepository{}
	repo.On("Create", ctx, mock.Anything).Return(repository.ErrDuplicate)

	svc := source.NewService(repo, &mocks.CardRepository{}, &mocks.PlaylistFiler{}, &mocks.RepoSyncer{}, "", nil)
	_, err := svc.Add(ctx, "user1", "/decks")
	require.ErrorIs(t, err, source.ErrDuplicatePath)
}

func TestSourceService_SyncAll_ImportsNewCardsOnce(t *testing.T) {
	ctx := context.Background()
	deckDir := t.TempDir()

	deck := `Q: first question
A: first answer
---
Q: second question
A: second answer`
	require.NoError(t, os.WriteFile(filepath.Join(deckDir, "deck.md"), []byte(deck), 0o644))
	// Non-markdown files are skipped.
	require.NoError(t, os.WriteFile(filepath.Join(deckDir, "notes.txt"), []byte("Q: not a deck"), 0o644))

	firstHash := source.ContentHash(source.ParsedCard{Question: "first question", Answer: "first answer"})
	secondHash := source.ContentHash(source.ParsedCard{Question: "second question", Answer: "second answer"})

	sourceRepo := &mocks.SourceRepository{}
	sourceRepo.On("List", ctx, "user1").Return([]*source.Source{
		{ID: "src1", UserID: "user1", Kind: source.KindLocal, Path: deckDir},
	}, nil)
	sourceRepo.On("UpdateLastSynced", ctx, "user1", "src1", mock.Anything).Return(nil)

	cardsRepo := &mocks.CardRepository{}
	// First card already exists, second is new.
	cardsRepo.On("FindByContentHash", ctx, "user1", firstHash).
		Return(&card.Card{ID: "existing"}, nil)
	cardsRepo.On("FindByContentHash", ctx, "user1", secondHash).
		Return(nil, repository.ErrNotFound)
	cardsRepo.On("Create", ctx, mock.MatchedBy(func(c *card.Card) bool {
		return c.Question == "second question" && c.ContentHash == secondHash && c.SourceID == "src1"
	})).Return(nil)

	filer := &mocks.PlaylistFiler{}
	filer.On("EnsureDefault", ctx, "user1").Return("pl-default", nil)
	filer.On("AddCard", ctx, "user1", "pl-default", mock.Anything).Return(nil)

	svc := source.NewService(sourceRepo, cardsRepo, filer, &mocks.RepoSyncer{}, "", nil)
	report, err := svc.SyncAll(ctx, "user1")
	require.NoError(t, err)

	require.Equal(t, 1, report.SourcesSynced)
	require.Equal(t, 2, report.CardsParsed)
	require.Equal(t, 1, report.CardsImported)
	require.Empty(t, report.Errors)
	cardsRepo.AssertExpectations(t)
}

func TestSourceService_SyncAll_GitSourceSyncedBeforeImport(t *testing.T) {
	ctx := context.Background()
	reposDir := t.TempDir()

	url := "https://example.com/me/decks.git"
	localPath := filepath.Join(reposDir, "example.com", "me", "decks")
	require.NoError(t, os.MkdirAll(localPath, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(localPath, "deck.md"), []byte("Q: q\nA: a"), 0o644))

	sourceRepo := &mocks.SourceRepository{}
	sourceRepo.On("List", ctx, "user1").Return([]*source.Source{
		{ID: "src1", UserID: "user1", Kind: source.KindGit, Path: url},
	}, nil)
	sourceRepo.On("UpdateLastSynced", ctx, "user1", "src1", mock.Anything).Return(nil)

	syncer := &mocks.RepoSyncer{}
	syncer.On("Sync", ctx, url, localPath).Return(nil)

	cardsRepo := &mocks.CardRepository{}
	cardsRepo.On("FindByContentHash", ctx, "user1", mock.Anything).Return(nil, repository.ErrNotFound)
	cardsRepo.On("Create", ctx, mock.Anything).Return(nil)

	filer := &mocks.PlaylistFiler{}
	filer.On("EnsureDefault", ctx, "user1").Return("pl-default", nil)
	filer.On("AddCard", ctx, "user1", "pl-default", mock.Anything).Return(nil)

	svc := source.NewService(sourceRepo, cardsRepo, filer, syncer, reposDir, nil)
	report, err := svc.SyncAll(ctx, "user1")
	require.NoError(t, err)
	require.Equal(t, 1, report.CardsImported)
	syncer.AssertExpectations(t)
}

func TestSourceService_SyncAll_BrokenSourceDoesNotStopRun(t *testing.T) {
	ctx := context.Background()
	deckDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(deckDir, "deck.md"), []byte("Q: q\nA: a"), 0o644))

	sourceRepo := &mocks.SourceRepository{}
	sourceRepo.On("List", ctx, "user1").Return([]*source.Source{
		{ID: "bad", UserID: "user1", Kind: source.KindGit, Path: "https://example.com/gone.git"},
		{ID: "good", UserID: "user1", Kind: source.KindLocal, Path: deckDir},
	}, nil)
	sourceRepo.On("UpdateLastSynced", ctx, "user1", "good", mock.Anything).Return(nil)

	syncer := &mocks.RepoSyncer{}
	syncer.On("Sync", ctx, "https://example.com/gone.git", mock.Anything).
		Return(errors.New("clone failed"))

	cardsRepo := &mocks.CardRepository{}
	cardsRepo.On("FindByContentHash", ctx, "user1", mock.Anything).Return(nil, repository.ErrNotFound)
	cardsRepo.On("Create", ctx, mock.Anything).Return(nil)

	filer := &mocks.PlaylistFiler{}
	filer.On("EnsureDefault", ctx, "user1").Return("pl-default", nil)
	filer.On("AddCard", ctx, "user1", "pl-default", mock.Anything).Return(nil)

	svc := source.NewService(sourceRepo, cardsRepo, filer, syncer, t.TempDir(), nil)
	report, err := svc.SyncAll(ctx, "user1")
	require.NoError(t, err)
	require.Equal(t, 1, report.SourcesSynced)
	require.Equal(t, 1, report.CardsImported)
	require.Len(t, report.Errors, 1)
}
