// Package playlist groups cards into named decks. Every card belongs
// to at least one playlist; cards created without one land in the
// user's default playlist.
package playlist

import (
	"context"
	"errors"
	"time"
)

// DefaultName is the playlist cards fall into when none is chosen.
const DefaultName = "Unfiled"

var (
	// ErrNotFound is returned when a playlist doesn't exist or belongs
	// to another user.
	ErrNotFound = errors.New("playlist not found")

	// ErrDuplicateName is returned when a user already has a playlist
	// with the requested name.
	ErrDuplicateName = errors.New("playlist name already in use")

	// ErrInvalidInput is returned when playlist input fails validation.
	ErrInvalidInput = errors.New("invalid playlist input")
)

type Playlist struct {
	ID          string
	UserID      string
	Name        string
	Description string
	CreatedAt   time.Time
}

// Summary is a playlist plus its card count, for listings.
type Summary struct {
	Playlist
	CardCount int
}

// Repository provides playlist persistence, scoped to a user.
type Repository interface {
	Create(ctx context.Context, p *Playlist) error
	Get(ctx context.Context, userID, id string) (*Playlist, error)
	GetByName(ctx context.Context, userID, name string) (*Playlist, error)
	List(ctx context.Context, userID string) ([]*Summary, error)
	Delete(ctx context.Context, userID, id string) error

	// AddCard files a card into a playlist. Filing the same card twice
	// is a no-op.
	AddCard(ctx context.Context, userID, playlistID, cardID string) error
	RemoveCard(ctx context.Context, userID, playlistID, cardID string) error
}
