package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/avesk/recollect/internal/domain/card"
)

// ReviewLogRepository reads the append-only review history. Logs are
// written by CardRepository.CommitReview so the card update and its log
// share a transaction.
type ReviewLogRepository struct {
	db *DB
}

// NewReviewLogRepository creates a new ReviewLogRepository
func NewReviewLogRepository(db *DB) *ReviewLogRepository {
	return &ReviewLogRepository{db: db}
}

// CountSince counts a user's reviews at or after the given time
func (r *ReviewLogRepository) CountSince(ctx context.Context, userID string, since time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM review_logs WHERE user_id = ? AND reviewed_at >= ?`
	if err := r.db.QueryRowContext(ctx, query, userID, since.UTC()).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count reviews: %w", err)
	}
	return count, nil
}

// ListForCard returns a card's most recent reviews, newest first
func (r *ReviewLogRepository) ListForCard(ctx context.Context, userID, cardID string, limit int) ([]*card.ReviewLog, error) {
	query := `
		SELECT id, user_id, card_id, rating, scheduled_days, elapsed_days,
		       state, reviewed_at, snapshot_json
		FROM review_logs
		WHERE user_id = ? AND card_id = ?
		ORDER BY reviewed_at DESC, id
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, userID, cardID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list review logs: %w", err)
	}
	defer rows.Close()

	var logs []*card.ReviewLog
	for rows.Next() {
		var log card.ReviewLog
		var snapshot sql.NullString
		err := rows.Scan(
			&log.ID,
			&log.UserID,
			&log.CardID,
			&log.Rating,
			&log.ScheduledDays,
			&log.ElapsedDays,
			&log.State,
			&log.ReviewedAt,
			&snapshot,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review log: %w", err)
		}
		if snapshot.Valid {
			log.Snapshot = json.RawMessage(snapshot.String)
		}
		logs = append(logs, &log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate review logs: %w", err)
	}
	return logs, nil
}
