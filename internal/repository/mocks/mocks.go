package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/avesk/recollect/internal/domain/card"
	"github.com/avesk/recollect/internal/domain/playlist"
	"github.com/avesk/recollect/internal/domain/source"
	"github.com/avesk/recollect/internal/domain/study"
)

// CardRepository is a mock for the card persistence surface.
type CardRepository struct {
	mock.Mock
}

func (m *CardRepository) Create(ctx context.Context, c *card.Card) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *CardRepository) Get(ctx context.Context, userID, id string) (*card.Card, error) {
	args := m.Called(ctx, userID, id)
	if c, ok := args.Get(0).(*card.Card); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CardRepository) List(ctx context.Context, userID string, opts card.ListOptions) ([]*card.Card, int, error) {
	args := m.Called(ctx, userID, opts)
	if cards, ok := args.Get(0).([]*card.Card); ok {
		return cards, args.Int(1), args.Error(2)
	}
	return nil, args.Int(1), args.Error(2)
}

func (m *CardRepository) Delete(ctx context.Context, userID, id string) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *CardRepository) FindByContentHash(ctx context.Context, userID, hash string) (*card.Card, error) {
	args := m.Called(ctx, userID, hash)
	if c, ok := args.Get(0).(*card.Card); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CardRepository) CommitReview(ctx context.Context, userID, cardID string, upd card.ScheduleUpdate, expectedRevision int64, log *card.ReviewLog) error {
	args := m.Called(ctx, userID, cardID, upd, expectedRevision, log)
	return args.Error(0)
}

func (m *CardRepository) ListDue(ctx context.Context, userID string, q study.DueQuery) ([]*card.Card, error) {
	args := m.Called(ctx, userID, q)
	if cards, ok := args.Get(0).([]*card.Card); ok {
		return cards, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CardRepository) DeferDue(ctx context.Context, userID string, ids []string, newDue, observedCutoff time.Time) (int, error) {
	args := m.Called(ctx, userID, ids, newDue, observedCutoff)
	return args.Int(0), args.Error(1)
}

func (m *CardRepository) ListOverdue(ctx context.Context, userID string, before time.Time, cursor study.OverdueCursor, limit int) ([]*card.Card, error) {
	args := m.Called(ctx, userID, before, cursor, limit)
	if cards, ok := args.Get(0).([]*card.Card); ok {
		return cards, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CardRepository) RebaseDue(ctx context.Context, userID, id string, due time.Time, scheduledDays float64) error {
	args := m.Called(ctx, userID, id, due, scheduledDays)
	return args.Error(0)
}

func (m *CardRepository) UpdateDue(ctx context.Context, userID, id string, due time.Time, scheduledDays float64, expectedRevision int64) error {
	args := m.Called(ctx, userID, id, due, scheduledDays, expectedRevision)
	return args.Error(0)
}

func (m *CardRepository) Counts(ctx context.Context, userID string, dueCutoff time.Time) (study.CardCounts, error) {
	args := m.Called(ctx, userID, dueCutoff)
	return args.Get(0).(study.CardCounts), args.Error(1)
}

func (m *CardRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if users, ok := args.Get(0).([]string); ok {
		return users, args.Error(1)
	}
	return nil, args.Error(1)
}

// ReviewLogRepository is a mock for the review-log read surface.
type ReviewLogRepository struct {
	mock.Mock
}

func (m *ReviewLogRepository) CountSince(ctx context.Context, userID string, since time.Time) (int, error) {
	args := m.Called(ctx, userID, since)
	return args.Int(0), args.Error(1)
}

func (m *ReviewLogRepository) ListForCard(ctx context.Context, userID, cardID string, limit int) ([]*card.ReviewLog, error) {
	args := m.Called(ctx, userID, cardID, limit)
	if logs, ok := args.Get(0).([]*card.ReviewLog); ok {
		return logs, args.Error(1)
	}
	return nil, args.Error(1)
}

// PlaylistRepository is a mock for playlist.Repository.
type PlaylistRepository struct {
	mock.Mock
}

func (m *PlaylistRepository) Create(ctx context.Context, p *playlist.Playlist) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *PlaylistRepository) Get(ctx context.Context, userID, id string) (*playlist.Playlist, error) {
	args := m.Called(ctx, userID, id)
	if p, ok := args.Get(0).(*playlist.Playlist); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PlaylistRepository) GetByName(ctx context.Context, userID, name string) (*playlist.Playlist, error) {
	args := m.Called(ctx, userID, name)
	if p, ok := args.Get(0).(*playlist.Playlist); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PlaylistRepository) List(ctx context.Context, userID string) ([]*playlist.Summary, error) {
	args := m.Called(ctx, userID)
	if list, ok := args.Get(0).([]*playlist.Summary); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PlaylistRepository) Delete(ctx context.Context, userID, id string) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *PlaylistRepository) AddCard(ctx context.Context, userID, playlistID, cardID string) error {
	args := m.Called(ctx, userID, playlistID, cardID)
	return args.Error(0)
}

func (m *PlaylistRepository) RemoveCard(ctx context.Context, userID, playlistID, cardID string) error {
	args := m.Called(ctx, userID, playlistID, cardID)
	return args.Error(0)
}

// PlaylistFiler is a mock for card.PlaylistFiler.
type PlaylistFiler struct {
	mock.Mock
}

func (m *PlaylistFiler) EnsureDefault(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *PlaylistFiler) AddCard(ctx context.Context, userID, playlistID, cardID string) error {
	args := m.Called(ctx, userID, playlistID, cardID)
	return args.Error(0)
}

// SourceRepository is a mock for source.Repository.
type SourceRepository struct {
	mock.Mock
}

func (m *SourceRepository) Create(ctx context.Context, s *source.Source) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *SourceRepository) List(ctx context.Context, userID string) ([]*source.Source, error) {
	args := m.Called(ctx, userID)
	if list, ok := args.Get(0).([]*source.Source); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SourceRepository) UpdateLastSynced(ctx context.Context, userID, id string, at time.Time) error {
	args := m.Called(ctx, userID, id, at)
	return args.Error(0)
}

func (m *SourceRepository) Delete(ctx context.Context, userID, id string) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

// RepoSyncer is a mock for source.RepoSyncer.
type RepoSyncer struct {
	mock.Mock
}

func (m *RepoSyncer) Sync(ctx context.Context, url, localPath string) error {
	args := m.Called(ctx, url, localPath)
	return args.Error(0)
}
