package playlist

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

type Service struct {
	playlists Repository
	logger    *slog.Logger
}

func NewService(playlists Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{playlists: playlists, logger: logger}
}

func (s *Service) Create(ctx context.Context, userID, name, description string) (*Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	p := &Playlist{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        name,
		Description: description,
		CreatedAt:   time.Now(),
	}
	if err := s.playlists.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, name)
		}
		return nil, fmt.Errorf("creating playlist: %w", err)
	}
	s.logger.Info("playlist created", "playlist_id", p.ID, "user_id", userID, "name", name)
	return p, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]*Summary, error) {
	summaries, err := s.playlists.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing playlists: %w", err)
	}
	return summaries, nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if err := s.playlists.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("deleting playlist: %w", err)
	}
	return nil
}

// EnsureDefault returns the user's default playlist, creating it on
// first use.
func (s *Service) EnsureDefault(ctx context.Context, userID string) (string, error) {
	p, err := s.playlists.GetByName(ctx, userID, DefaultName)
	if err == nil {
		return p.ID, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return "", fmt.Errorf("looking up default playlist: %w", err)
	}

	p = &Playlist{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      DefaultName,
		CreatedAt: time.Now(),
	}
	if err := s.playlists.Create(ctx, p); err != nil {
		// Lost a race with another request creating it.
		if errors.Is(err, repository.ErrDuplicate) {
			existing, lookupErr := s.playlists.GetByName(ctx, userID, DefaultName)
			if lookupErr != nil {
				return "", fmt.Errorf("looking up default playlist: %w", lookupErr)
			}
			return existing.ID, nil
		}
		return "", fmt.Errorf("creating default playlist: %w", err)
	}
	return p.ID, nil
}

func (s *Service) AddCard(ctx context.Context, userID, playlistID, cardID string) error {
	if err := s.playlists.AddCard(ctx, userID, playlistID, cardID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("adding card to playlist: %w", err)
	}
	return nil
}

func (s *Service) RemoveCard(ctx context.Context, userID, playlistID, cardID string) error {
	if err := s.playlists.RemoveCard(ctx, userID, playlistID, cardID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("removing card from playlist: %w", err)
	}
	return nil
}
