package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/avesk/recollect/internal/domain/playlist"
	"github.com/avesk/recollect/internal/repository"
)

// PlaylistRepository implements playlist persistence for SQLite
type PlaylistRepository struct {
	db *DB
}

// NewPlaylistRepository creates a new PlaylistRepository
func NewPlaylistRepository(db *DB) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

// Create inserts a new playlist
func (r *PlaylistRepository) Create(ctx context.Context, p *playlist.Playlist) error {
	query := `
		INSERT INTO playlists (id, user_id, name, description, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query, p.ID, p.UserID, p.Name, p.Description, p.CreatedAt.UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create playlist: %w", err)
	}
	return nil
}

// Get retrieves a playlist by ID
func (r *PlaylistRepository) Get(ctx context.Context, userID, id string) (*playlist.Playlist, error) {
	query := `SELECT id, user_id, name, description, created_at FROM playlists WHERE id = ? AND user_id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id, userID))
}

// GetByName retrieves a playlist by its unique per-user name
func (r *PlaylistRepository) GetByName(ctx context.Context, userID, name string) (*playlist.Playlist, error) {
	query := `SELECT id, user_id, name, description, created_at FROM playlists WHERE user_id = ? AND name = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, query, userID, name))
}

func (r *PlaylistRepository) scanOne(row *sql.Row) (*playlist.Playlist, error) {
	var p playlist.Playlist
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist: %w", err)
	}
	return &p, nil
}

// List returns all playlists for a user with card counts
func (r *PlaylistRepository) List(ctx context.Context, userID string) ([]*playlist.Summary, error) {
	query := `
		SELECT p.id, p.user_id, p.name, p.description, p.created_at,
		       COUNT(pc.card_id) AS card_count
		FROM playlists p
		LEFT JOIN playlist_cards pc ON pc.playlist_id = p.id
		WHERE p.user_id = ?
		GROUP BY p.id
		ORDER BY p.name
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list playlists: %w", err)
	}
	defer rows.Close()

	var summaries []*playlist.Summary
	for rows.Next() {
		var s playlist.Summary
		if err := rows.Scan(&s.ID, &s.UserID, &s.Name, &s.Description, &s.CreatedAt, &s.CardCount); err != nil {
			return nil, fmt.Errorf("failed to scan playlist: %w", err)
		}
		summaries = append(summaries, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate playlists: %w", err)
	}
	return summaries, nil
}

// Delete removes a playlist and its memberships. Cards survive.
func (r *PlaylistRepository) Delete(ctx context.Context, userID, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM playlist_cards WHERE playlist_id IN (SELECT id FROM playlists WHERE id = ? AND user_id = ?)`,
		id, userID); err != nil {
		return fmt.Errorf("failed to delete playlist memberships: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM playlists WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return tx.Commit()
}

// AddCard files a card into a playlist; filing twice is a no-op. Both
// the playlist and the card must belong to the user.
func (r *PlaylistRepository) AddCard(ctx context.Context, userID, playlistID, cardID string) error {
	if err := r.checkOwnership(ctx, userID, playlistID, cardID); err != nil {
		return err
	}

	query := `
		INSERT INTO playlist_cards (playlist_id, card_id)
		VALUES (?, ?)
		ON CONFLICT (playlist_id, card_id) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, playlistID, cardID); err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("failed to add card to playlist: %w", err)
	}
	return nil
}

// RemoveCard removes a card from a playlist
func (r *PlaylistRepository) RemoveCard(ctx context.Context, userID, playlistID, cardID string) error {
	if err := r.checkOwnership(ctx, userID, playlistID, cardID); err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx,
		`DELETE FROM playlist_cards WHERE playlist_id = ? AND card_id = ?`, playlistID, cardID)
	if err != nil {
		return fmt.Errorf("failed to remove card from playlist: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PlaylistRepository) checkOwnership(ctx context.Context, userID, playlistID, cardID string) error {
	var playlistOK, cardOK bool
	query := `
		SELECT EXISTS(SELECT 1 FROM playlists WHERE id = ? AND user_id = ?),
		       EXISTS(SELECT 1 FROM cards WHERE id = ? AND user_id = ?)
	`
	if err := r.db.QueryRowContext(ctx, query, playlistID, userID, cardID, userID).Scan(&playlistOK, &cardOK); err != nil {
		return fmt.Errorf("failed to check ownership: %w", err)
	}
	if !playlistOK || !cardOK {
		return repository.ErrNotFound
	}
	return nil
}
