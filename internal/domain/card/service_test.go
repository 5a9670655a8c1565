package card_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/avesk/recollect/internal/domain/card"
	"github.com/avesk/recollect/internal/repository"
	"github.com/avesk/recollect/internal/repository/mocks"
)

func TestCardService_Create_FilesIntoDefaultPlaylist(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	cardsRepo := &mocks.CardRepository{}
	filer := &mocks.PlaylistFiler{}

	cardsRepo.On("Create", ctx, mock.Anything).Return(nil)
	filer.On("EnsureDefault", ctx, "user1").Return("pl-default", nil)
	filer.On("AddCard", ctx, "user1", "pl-default", mock.Anything).Return(nil)

	svc := card.NewService(cardsRepo, filer, nil)
	c, err := svc.Create(ctx, "user1", card.CreateRequest{
		Question: "What is a goroutine?",
		Answer:   "A lightweight thread managed by the Go runtime.",
		Now:      now,
	})
	require.NoError(t, err)
	require.NotEmpty(t, c.ID)
	require.Equal(t, "user1", c.UserID)
	require.Equal(t, int64(1), c.Revision)
	require.NotNil(t, c.Due)
	require.Equal(t, now.AddDate(0, 0, 2), *c.Due)
	require.Equal(t, 2.0, c.ScheduledDays)

	filer.AssertCalled(t, "AddCard", ctx, "user1", "pl-default", c.ID)
}

func TestCardService_Create_ExplicitPlaylistSkipsDefault(t *testing.T) {
	ctx := context.Background()

	cardsRepo := &mocks.CardRepository{}
	filer := &mocks.PlaylistFiler{}

	cardsRepo.On("Create", ctx, mock.Anything).Return(nil)
	filer.On("AddCard", ctx, "user1", "pl-42", mock.Anything).Return(nil)

	svc := card.NewService(cardsRepo, filer, nil)
	_, err := svc.Create(ctx, "user1", card.CreateRequest{
		Question:   "Q",
		Answer:     "A",
		PlaylistID: "pl-42",
	})
	require.NoError(t, err)
	filer.AssertNotCalled(t, "EnsureDefault", mock.Anything, mock.Anything)
}

func TestCardService_Create_RequiresQuestionAndAnswer(t *testing.T) {
	ctx := context.Background()
	svc := card.NewService(&mocks.CardRepository{}, &mocks.PlaylistFiler{}, nil)

	_, err := svc.Create(ctx, "user1", card.CreateRequest{Question: "  ", Answer: "A"})
	require.ErrorIs(t, err, card.ErrInvalidInput)

	_, err = svc.Create(ctx, "user1", card.CreateRequest{Question: "Q", Answer: ""})
	require.ErrorIs(t, err, card.ErrInvalidInput)
}

func TestCardService_Get_MapsNotFound(t *testing.T) {
	ctx := context.Background()

	cardsRepo := &mocks.CardRepository{}
	cardsRepo.On("Get", ctx, "user1", "missing").Return(nil, repository.ErrNotFound)

	svc := card.NewService(cardsRepo, &mocks.PlaylistFiler{}, nil)
	_, err := svc.Get(ctx, "user1", "missing")
	require.ErrorIs(t, err, card.ErrNotFound)
}

func TestCardService_Delete_MapsNotFound(t *testing.T) {
	ctx := context.Background()

	cardsRepo := &mocks.CardRepository{}
	cardsRepo.On("Delete", ctx, "user1", "missing").Return(repository.ErrNotFound)

	svc := card.NewService(cardsRepo, &mocks.PlaylistFiler{}, nil)
	require.ErrorIs(t, svc.Delete(ctx, "user1", "missing"), card.ErrNotFound)
}
