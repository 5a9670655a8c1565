package card

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/avesk/recollect/internal/repository"
)

// Service provides card CRUD on top of a Repository. Scheduling state
// is initialized here; it is only ever advanced by the study service.
type Service struct {
	cards     Repository
	playlists PlaylistFiler
	logger    *slog.Logger
}

func NewService(cards Repository, playlists PlaylistFiler, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{cards: cards, playlists: playlists, logger: logger}
}

// CreateRequest carries the content of a new card. PlaylistID is
// optional; empty files the card into the user's default playlist.
// Now is optional and defaults to the wall clock.
type CreateRequest struct {
	Question   string
	Answer     string
	Context    string
	PlaylistID string
	Now        time.Time
}

func (s *Service) Create(ctx context.Context, userID string, req CreateRequest) (*Card, error) {
	if strings.TrimSpace(req.Question) == "" {
		return nil, fmt.Errorf("%w: question is required", ErrInvalidInput)
	}
	if strings.TrimSpace(req.Answer) == "" {
		return nil, fmt.Errorf("%w: answer is required", ErrInvalidInput)
	}

	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}

	c := &Card{
		ID:         uuid.NewString(),
		UserID:     userID,
		Question:   req.Question,
		Answer:     req.Answer,
		Context:    req.Context,
		CreatedAt:  now,
		ModifiedAt: now,
	}
	InitialSchedule(now).ApplyTo(c, now)
	c.Revision = 1

	if err := s.cards.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("creating card: %w", err)
	}

	playlistID := req.PlaylistID
	if playlistID == "" {
		id, err := s.playlists.EnsureDefault(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("ensuring default playlist: %w", err)
		}
		playlistID = id
	}
	if err := s.playlists.AddCard(ctx, userID, playlistID, c.ID); err != nil {
		return nil, fmt.Errorf("filing card into playlist: %w", err)
	}

	s.logger.Info("card created", "card_id", c.ID, "user_id", userID, "due", c.Due)
	return c, nil
}

func (s *Service) Get(ctx context.Context, userID, id string) (*Card, error) {
	c, err := s.cards.Get(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting card: %w", err)
	}
	return c, nil
}

func (s *Service) List(ctx context.Context, userID string, opts ListOptions) ([]*Card, int, error) {
	cards, total, err := s.cards.List(ctx, userID, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("listing cards: %w", err)
	}
	return cards, total, nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if err := s.cards.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("deleting card: %w", err)
	}
	s.logger.Info("card deleted", "card_id", id, "user_id", userID)
	return nil
}
