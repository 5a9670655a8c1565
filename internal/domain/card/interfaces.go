package card

import "context"

// ListOptions controls pagination for card listings.
type ListOptions struct {
	// Offset is the number of cards to skip.
	Offset int
	// Limit is the maximum number of cards to return. Zero means the
	// repository default.
	Limit int
	// PlaylistID restricts the listing to one playlist when non-empty.
	PlaylistID string
}

// Repository provides card persistence. All operations are scoped to a
// user; a card owned by another user behaves as if it doesn't exist.
type Repository interface {
	Create(ctx context.Context, c *Card) error
	Get(ctx context.Context, userID, id string) (*Card, error)
	List(ctx context.Context, userID string, opts ListOptions) ([]*Card, int, error)
	Delete(ctx context.Context, userID, id string) error
	FindByContentHash(ctx context.Context, userID, hash string) (*Card, error)
}

// PlaylistFiler files cards into playlists. Implemented by the playlist
// service; kept as an interface here so card creation can be tested
// without it.
type PlaylistFiler interface {
	EnsureDefault(ctx context.Context, userID string) (string, error)
	AddCard(ctx context.Context, userID, playlistID, cardID string) error
}
