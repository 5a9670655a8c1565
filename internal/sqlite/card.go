package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/avesk/recollect/internal/domain/card"
	"github.com/avesk/recollect/internal/domain/study"
	"github.com/avesk/recollect/internal/repository"
)

// CardRepository implements card persistence and the due-queue reads
// for SQLite.
type CardRepository struct {
	db *DB
}

// NewCardRepository creates a new CardRepository
func NewCardRepository(db *DB) *CardRepository {
	return &CardRepository{db: db}
}

const cardColumns = `
	id, user_id, question, answer, context, content_hash, source_id,
	due, stability, difficulty, elapsed_days, scheduled_days,
	learning_step, reps, lapses, state, last_reviewed,
	created_at, modified_at, revision
`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCard(row rowScanner) (*card.Card, error) {
	var c card.Card
	var contentHash, sourceID sql.NullString
	var due, lastReviewed sql.NullTime

	err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.Question,
		&c.Answer,
		&c.Context,
		&contentHash,
		&sourceID,
		&due,
		&c.Stability,
		&c.Difficulty,
		&c.ElapsedDays,
		&c.ScheduledDays,
		&c.LearningStep,
		&c.Reps,
		&c.Lapses,
		&c.State,
		&lastReviewed,
		&c.CreatedAt,
		&c.ModifiedAt,
		&c.Revision,
	)
	if err != nil {
		return nil, err
	}

	c.ContentHash = contentHash.String
	c.SourceID = sourceID.String
	if due.Valid {
		t := due.Time
		c.Due = &t
	}
	if lastReviewed.Valid {
		t := lastReviewed.Time
		c.LastReviewed = &t
	}
	return &c, nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC()
}

// Create inserts a new card
func (r *CardRepository) Create(ctx context.Context, c *card.Card) error {
	query := `
		INSERT INTO cards (` + cardColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		c.ID,
		c.UserID,
		c.Question,
		c.Answer,
		c.Context,
		nullString(c.ContentHash),
		nullString(c.SourceID),
		nullTime(c.Due),
		c.Stability,
		c.Difficulty,
		c.ElapsedDays,
		c.ScheduledDays,
		c.LearningStep,
		c.Reps,
		c.Lapses,
		c.State,
		nullTime(c.LastReviewed),
		c.CreatedAt.UTC(),
		c.ModifiedAt.UTC(),
		c.Revision,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create card: %w", err)
	}

	return nil
}

// Get retrieves a card by ID
func (r *CardRepository) Get(ctx context.Context, userID, id string) (*card.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = ? AND user_id = ?`

	c, err := scanCard(r.db.QueryRowContext(ctx, query, id, userID))
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	return c, nil
}

// FindByContentHash looks a card up by its import dedupe hash
func (r *CardRepository) FindByContentHash(ctx context.Context, userID, hash string) (*card.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE user_id = ? AND content_hash = ?`

	c, err := scanCard(r.db.QueryRowContext(ctx, query, userID, hash))
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find card by hash: %w", err)
	}
	return c, nil
}

// List returns a page of cards plus the total count
func (r *CardRepository) List(ctx context.Context, userID string, opts card.ListOptions) ([]*card.Card, int, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	countQuery := `SELECT COUNT(*) FROM cards WHERE user_id = ?`
	countArgs := []interface{}{userID}
	query := `SELECT ` + cardColumns + ` FROM cards WHERE user_id = ?`
	args := []interface{}{userID}

	if opts.PlaylistID != "" {
		filter := ` AND id IN (SELECT card_id FROM playlist_cards WHERE playlist_id = ?)`
		countQuery += filter
		countArgs = append(countArgs, opts.PlaylistID)
		query += filter
		args = append(args, opts.PlaylistID)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count cards: %w", err)
	}

	query += ` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`
	args = append(args, limit, opts.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list cards: %w", err)
	}
	defer rows.Close()

	cards, err := collectCards(rows)
	if err != nil {
		return nil, 0, err
	}
	return cards, total, nil
}

// Delete removes a card along with its playlist memberships and review
// history
func (r *CardRepository) Delete(ctx context.Context, userID, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM review_logs WHERE card_id = ? AND user_id = ?`, id, userID); err != nil {
		return fmt.Errorf("failed to delete review logs: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM playlist_cards WHERE card_id = ?
		   AND playlist_id IN (SELECT id FROM playlists WHERE user_id = ?)`, id, userID); err != nil {
		return fmt.Errorf("failed to delete playlist memberships: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM cards WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
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

// CommitReview applies a schedule update and appends the review log in
// one transaction, guarded by the expected revision
func (r *CardRepository) CommitReview(ctx context.Context, userID, cardID string, upd card.ScheduleUpdate, expectedRevision int64, log *card.ReviewLog) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE cards
		SET due = ?, stability = ?, difficulty = ?, elapsed_days = ?,
		    scheduled_days = ?, learning_step = ?, reps = ?, lapses = ?,
		    state = ?, last_reviewed = ?, modified_at = ?,
		    revision = revision + 1
		WHERE id = ? AND user_id = ? AND revision = ?
	`
	result, err := tx.ExecContext(ctx, query,
		upd.Due.UTC(),
		upd.Stability,
		upd.Difficulty,
		upd.ElapsedDays,
		upd.ScheduledDays,
		upd.LearningStep,
		upd.Reps,
		upd.Lapses,
		upd.State,
		upd.LastReviewed.UTC(),
		log.ReviewedAt.UTC(),
		cardID,
		userID,
		expectedRevision,
	)
	if err != nil {
		return fmt.Errorf("failed to update card schedule: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		var exists bool
		checkQuery := `SELECT EXISTS(SELECT 1 FROM cards WHERE id = ? AND user_id = ?)`
		if err := tx.QueryRowContext(ctx, checkQuery, cardID, userID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check card existence: %w", err)
		}
		if !exists {
			return repository.ErrNotFound
		}
		return repository.ErrConflict
	}

	logQuery := `
		INSERT INTO review_logs (
			id, user_id, card_id, rating, scheduled_days, elapsed_days,
			state, reviewed_at, snapshot_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := tx.ExecContext(ctx, logQuery,
		log.ID,
		log.UserID,
		log.CardID,
		log.Rating,
		log.ScheduledDays,
		log.ElapsedDays,
		log.State,
		log.ReviewedAt.UTC(),
		string(log.Snapshot),
	); err != nil {
		return fmt.Errorf("failed to insert review log: %w", err)
	}

	return tx.Commit()
}

// ListDue returns review candidates: never-scheduled cards first, then
// cards due at or before the cutoff in due order
func (r *CardRepository) ListDue(ctx context.Context, userID string, q study.DueQuery) ([]*card.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE user_id = ? AND (due IS NULL OR due <= ?)`
	args := []interface{}{userID, q.Cutoff.UTC()}

	if q.PlaylistID != "" {
		query += ` AND id IN (SELECT card_id FROM playlist_cards WHERE playlist_id = ?)`
		args = append(args, q.PlaylistID)
	}

	// NULL sorts first under ASC, which is exactly the ordering we want
	query += ` ORDER BY due ASC, created_at ASC, id ASC`
	if q.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, q.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list due cards: %w", err)
	}
	defer rows.Close()

	return collectCards(rows)
}

// DeferDue pushes the given cards to newDue, skipping any row no
// longer inside the observed due window
func (r *CardRepository) DeferDue(ctx context.Context, userID string, ids []string, newDue, observedCutoff time.Time) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	placeholders := make([]string, len(ids))
	args := []interface{}{newDue.UTC(), time.Now().UTC(), userID}
	for i, id := range ids {
		placeholders[i] = "?"
		args = append(args, id)
	}
	args = append(args, observedCutoff.UTC())

	query := `
		UPDATE cards
		SET due = ?, modified_at = ?
		WHERE user_id = ? AND id IN (` + strings.Join(placeholders, ", ") + `)
		  AND (due IS NULL OR due <= ?)
	`
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to defer cards: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(rowsAffected), nil
}

// ListOverdue returns cards due strictly before the given time in
// (due, id) keyset order, starting after cursor
func (r *CardRepository) ListOverdue(ctx context.Context, userID string, before time.Time, cursor study.OverdueCursor, limit int) ([]*card.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE user_id = ? AND due IS NOT NULL AND due < ?`
	args := []interface{}{userID, before.UTC()}

	if !cursor.Due.IsZero() {
		query += ` AND (due > ? OR (due = ? AND id > ?))`
		args = append(args, cursor.Due.UTC(), cursor.Due.UTC(), cursor.ID)
	}

	query += ` ORDER BY due ASC, id ASC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue cards: %w", err)
	}
	defer rows.Close()

	return collectCards(rows)
}

// RebaseDue rewrites due and scheduled_days without touching the rest
// of the memory state
func (r *CardRepository) RebaseDue(ctx context.Context, userID, id string, due time.Time, scheduledDays float64) error {
	query := `
		UPDATE cards
		SET due = ?, scheduled_days = ?, modified_at = ?, revision = revision + 1
		WHERE id = ? AND user_id = ?
	`
	result, err := r.db.ExecContext(ctx, query, due.UTC(), scheduledDays, time.Now().UTC(), id, userID)
	if err != nil {
		return fmt.Errorf("failed to rebase card: %w", err)
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

// UpdateDue rewrites due and scheduled_days under a revision guard
func (r *CardRepository) UpdateDue(ctx context.Context, userID, id string, due time.Time, scheduledDays float64, expectedRevision int64) error {
	query := `
		UPDATE cards
		SET due = ?, scheduled_days = ?, modified_at = ?, revision = revision + 1
		WHERE id = ? AND user_id = ? AND revision = ?
	`
	result, err := r.db.ExecContext(ctx, query, due.UTC(), scheduledDays, time.Now().UTC(), id, userID, expectedRevision)
	if err != nil {
		return fmt.Errorf("failed to update card due: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		var exists bool
		checkQuery := `SELECT EXISTS(SELECT 1 FROM cards WHERE id = ? AND user_id = ?)`
		if err := r.db.QueryRowContext(ctx, checkQuery, id, userID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check card existence: %w", err)
		}
		if !exists {
			return repository.ErrNotFound
		}
		return repository.ErrConflict
	}
	return nil
}

// Counts summarizes the user's collection
func (r *CardRepository) Counts(ctx context.Context, userID string, dueCutoff time.Time) (study.CardCounts, error) {
	counts := study.CardCounts{ByState: make(map[string]int)}

	query := `
		SELECT state, COUNT(*), COUNT(CASE WHEN due IS NULL OR due <= ? THEN 1 END)
		FROM cards
		WHERE user_id = ?
		GROUP BY state
	`
	rows, err := r.db.QueryContext(ctx, query, dueCutoff.UTC(), userID)
	if err != nil {
		return counts, fmt.Errorf("failed to count cards: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var state string
		var total, due int
		if err := rows.Scan(&state, &total, &due); err != nil {
			return counts, fmt.Errorf("failed to scan counts: %w", err)
		}
		counts.ByState[state] = total
		counts.Total += total
		counts.Due += due
	}
	if err := rows.Err(); err != nil {
		return counts, fmt.Errorf("failed to iterate counts: %w", err)
	}
	return counts, nil
}

// ListUserIDs returns every user with at least one card
func (r *CardRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT user_id FROM cards ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		users = append(users, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}

func collectCards(rows *sql.Rows) ([]*card.Card, error) {
	var cards []*card.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cards: %w", err)
	}
	return cards, nil
}
