package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/avesk/recollect/internal/domain/source"
	"github.com/avesk/recollect/internal/repository"
)

// SourceRepository implements deck-source persistence for SQLite
type SourceRepository struct {
	db *DB
}

// NewSourceRepository creates a new SourceRepository
func NewSourceRepository(db *DB) *SourceRepository {
	return &SourceRepository{db: db}
}

// Create inserts a new source
func (r *SourceRepository) Create(ctx context.Context, s *source.Source) error {
	query := `
		INSERT INTO sources (id, user_id, kind, path, last_synced, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.UserID, s.Kind, s.Path, nullTime(s.LastSynced), s.CreatedAt.UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create source: %w", err)
	}
	return nil
}

// List returns all sources for a user
func (r *SourceRepository) List(ctx context.Context, userID string) ([]*source.Source, error) {
	query := `
		SELECT id, user_id, kind, path, last_synced, created_at
		FROM sources
		WHERE user_id = ?
		ORDER BY created_at, id
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	defer rows.Close()

	var sources []*source.Source
	for rows.Next() {
		var s source.Source
		var lastSynced sql.NullTime
		if err := rows.Scan(&s.ID, &s.UserID, &s.Kind, &s.Path, &lastSynced, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan source: %w", err)
		}
		if lastSynced.Valid {
			t := lastSynced.Time
			s.LastSynced = &t
		}
		sources = append(sources, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sources: %w", err)
	}
	return sources, nil
}

// UpdateLastSynced records a successful sync
func (r *SourceRepository) UpdateLastSynced(ctx context.Context, userID, id string, at time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE sources SET last_synced = ? WHERE id = ? AND user_id = ?`, at.UTC(), id, userID)
	if err != nil {
		return fmt.Errorf("failed to update source: %w", err)
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

// Delete removes a source. Imported cards keep their source_id cleared.
func (r *SourceRepository) Delete(ctx context.Context, userID, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE cards SET source_id = NULL WHERE source_id = ? AND user_id = ?`, id, userID); err != nil {
		return fmt.Errorf("failed to detach cards: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM sources WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete source: %w", err)
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
