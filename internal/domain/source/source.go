// Package source imports cards from markdown decks, either local
// directories or git repositories. Import is insert-only: a card that
// disappears from its deck keeps its review history.
package source

import (
	"context"
	"errors"
	"time"

	"github.com/avesk/recollect/internal/domain/card"
)

// Source kinds.
const (
	KindLocal = "local"
	KindGit   = "git"
)

var (
	// ErrNotFound is returned when a source doesn't exist or belongs
	// to another user.
	ErrNotFound = errors.New("source not found")

	// ErrDuplicatePath is returned when a user already registered the
	// same path.
	ErrDuplicatePath = errors.New("source path already registered")

	// ErrInvalidInput is returned when source input fails validation.
	ErrInvalidInput = errors.New("invalid source input")
)

type Source struct {
	ID         string
	UserID     string
	Kind       string
	Path       string
	LastSynced *time.Time
	CreatedAt  time.Time
}

// Repository provides source persistence, scoped to a user.
type Repository interface {
	Create(ctx context.Context, s *Source) error
	List(ctx context.Context, userID string) ([]*Source, error)
	UpdateLastSynced(ctx context.Context, userID, id string, at time.Time) error
	Delete(ctx context.Context, userID, id string) error
}

// CardRepository is the slice of card persistence the importer needs.
type CardRepository interface {
	FindByContentHash(ctx context.Context, userID, hash string) (*card.Card, error)
	Create(ctx context.Context, c *card.Card) error
}

// PlaylistFiler files imported cards into the user's default playlist.
type PlaylistFiler interface {
	EnsureDefault(ctx context.Context, userID string) (string, error)
	AddCard(ctx context.Context, userID, playlistID, cardID string) error
}

// RepoSyncer mirrors a remote git repository to a local path.
type RepoSyncer interface {
	Sync(ctx context.Context, url, localPath string) error
}
