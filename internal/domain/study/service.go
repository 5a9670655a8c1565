// Package study implements the review flows: grading cards, building
// the daily due queue, postponing, and rebasing overdue backlogs.
package study

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/avesk/recollect/internal/domain/card"
	"github.com/avesk/recollect/internal/fsrs"
	"github.com/avesk/recollect/internal/repository"
)

const (
	defaultDailyCap   = 60
	defaultQueueLimit = 10

	// rebaseBatchSize pages the overdue scan.
	rebaseBatchSize = 200
)

// Defaults are the queue bounds applied when a request leaves them
// unset.
type Defaults struct {
	DailyCap   int
	QueueLimit int
}

// Service runs the study flows on top of the scheduler and card store.
type Service struct {
	cards     CardRepository
	logs      ReviewLogRepository
	scheduler *fsrs.Scheduler
	jitter    *JitterPolicy
	defaults  Defaults
	logger    *slog.Logger
}

func NewService(cards CardRepository, logs ReviewLogRepository, scheduler *fsrs.Scheduler, jitter *JitterPolicy, defaults Defaults, logger *slog.Logger) *Service {
	if jitter == nil {
		jitter = NewJitterPolicy(nil)
	}
	if defaults.DailyCap <= 0 {
		defaults.DailyCap = defaultDailyCap
	}
	if defaults.QueueLimit <= 0 {
		defaults.QueueLimit = defaultQueueLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cards:     cards,
		logs:      logs,
		scheduler: scheduler,
		jitter:    jitter,
		defaults:  defaults,
		logger:    logger,
	}
}

// ReviewRequest grades one card. Now is optional and defaults to the
// wall clock.
type ReviewRequest struct {
	CardID string
	Rating fsrs.Rating
	Now    time.Time
}

// ApplyReview advances a card's memory state by one graded review. The
// schedule write and the review log land in one transaction; a stale
// card revision surfaces as ErrConflict.
func (s *Service) ApplyReview(ctx context.Context, userID string, req ReviewRequest) (*card.Card, *card.ReviewLog, error) {
	if !req.Rating.IsValid() {
		return nil, nil, fmt.Errorf("%w: %d", ErrInvalidRating, req.Rating)
	}
	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}

	c, err := s.cards.Get(ctx, userID, req.CardID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrCardNotFound
		}
		return nil, nil, fmt.Errorf("loading card: %w", err)
	}

	state := card.ToMemoryState(c)
	next, snapshot, err := s.scheduler.Schedule(state, req.Rating, now)
	if err != nil {
		return nil, nil, fmt.Errorf("scheduling review: %w", err)
	}

	next.Due = s.jitter.Apply(next.Due, now)
	snapshot.Due = next.Due

	upd := card.FromMemoryState(next)

	snapJSON, err := json.Marshal(snapshot)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding review snapshot: %w", err)
	}
	log := &card.ReviewLog{
		ID:            uuid.NewString(),
		UserID:        userID,
		CardID:        c.ID,
		Rating:        int(req.Rating),
		ScheduledDays: snapshot.ScheduledDays,
		ElapsedDays:   snapshot.ElapsedDays,
		State:         snapshot.State.Code(),
		ReviewedAt:    now,
		Snapshot:      snapJSON,
	}

	if err := s.cards.CommitReview(ctx, userID, c.ID, upd, c.Revision, log); err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			return nil, nil, ErrConflict
		case errors.Is(err, repository.ErrNotFound):
			return nil, nil, ErrCardNotFound
		}
		return nil, nil, fmt.Errorf("committing review: %w", err)
	}

	upd.ApplyTo(c, now)
	s.logger.Info("review applied",
		"card_id", c.ID,
		"user_id", userID,
		"rating", req.Rating.String(),
		"state", c.State,
		"due", upd.Due,
	)
	return c, log, nil
}

// NextRequest bounds one due-queue read. Zero Limit and DailyCap fall
// back to the service defaults; zero Now means the wall clock.
type NextRequest struct {
	Limit      int
	DailyCap   int
	PlaylistID string
	Now        time.Time
}

// NextCards returns up to Limit cards due today. Candidates beyond
// DailyCap are pushed to tomorrow so a backlog drains at a steady pace
// instead of piling onto one day. The deferral only touches rows still
// inside today's window, so a concurrently reviewed card keeps its new
// schedule.
func (s *Service) NextCards(ctx context.Context, userID string, req NextRequest) ([]*card.Card, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = s.defaults.QueueLimit
	}
	dailyCap := req.DailyCap
	if dailyCap <= 0 {
		dailyCap = s.defaults.DailyCap
	}
	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}
	cutoff := endOfDay(now)

	candidates, err := s.cards.ListDue(ctx, userID, DueQuery{
		Cutoff:     cutoff,
		PlaylistID: req.PlaylistID,
	})
	if err != nil {
		return nil, fmt.Errorf("listing due cards: %w", err)
	}

	if len(candidates) > dailyCap {
		excess := candidates[dailyCap:]
		ids := make([]string, len(excess))
		for i, c := range excess {
			ids[i] = c.ID
		}
		tomorrow := cutoff.AddDate(0, 0, 1)
		deferred, err := s.cards.DeferDue(ctx, userID, ids, tomorrow, cutoff)
		if err != nil {
			return nil, fmt.Errorf("deferring overflow: %w", err)
		}
		s.logger.Info("daily cap reached, overflow deferred",
			"user_id", userID,
			"cap", dailyCap,
			"candidates", len(candidates),
			"deferred", deferred,
		)
		candidates = candidates[:dailyCap]
	}

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

// Postpone pushes a card out by the given number of days from now,
// widening the scheduled interval if needed. Days below one are
// treated as one.
func (s *Service) Postpone(ctx context.Context, userID, cardID string, days int, now time.Time) (*card.Card, error) {
	if days < 1 {
		days = 1
	}
	if now.IsZero() {
		now = time.Now()
	}

	c, err := s.cards.Get(ctx, userID, cardID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, fmt.Errorf("loading card: %w", err)
	}

	due := now.Add(time.Duration(days) * 24 * time.Hour)
	scheduled := c.ScheduledDays
	if float64(days) > scheduled {
		scheduled = float64(days)
	}

	if err := s.cards.UpdateDue(ctx, userID, cardID, due, scheduled, c.Revision); err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			return nil, ErrConflict
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrCardNotFound
		}
		return nil, fmt.Errorf("postponing card: %w", err)
	}

	c.Due = &due
	c.ScheduledDays = scheduled
	c.ModifiedAt = now
	c.Revision++
	s.logger.Info("card postponed", "card_id", cardID, "user_id", userID, "days", days, "due", due)
	return c, nil
}

// RebaseOverdue re-anchors every overdue card as if its current
// interval had just started today: due becomes the start of today plus
// (scheduledDays - 1) days, so a one-day card is due today and longer
// intervals fan out from here. The overdue set is read in full before
// any writes, so rows whose new due is still in the past aren't
// re-selected. Failed rows are skipped; the count of rewritten cards
// is returned.
func (s *Service) RebaseOverdue(ctx context.Context, userID string, now time.Time) (int, error) {
	if now.IsZero() {
		now = time.Now()
	}
	today := startOfDay(now)

	var overdue []*card.Card
	var cursor OverdueCursor
	for {
		batch, err := s.cards.ListOverdue(ctx, userID, now, cursor, rebaseBatchSize)
		if err != nil {
			return 0, fmt.Errorf("listing overdue cards: %w", err)
		}
		if len(batch) == 0 {
			break
		}
		overdue = append(overdue, batch...)
		last := batch[len(batch)-1]
		cursor = OverdueCursor{Due: *last.Due, ID: last.ID}
		if len(batch) < rebaseBatchSize {
			break
		}
	}

	updated := 0
	for _, c := range overdue {
		days := c.ScheduledDays
		if days < 1 {
			days = 1
		}
		due := today.Add(time.Duration((days - 1) * 24 * float64(time.Hour)))
		if err := s.cards.RebaseDue(ctx, userID, c.ID, due, days); err != nil {
			s.logger.Warn("rebase skipped card", "card_id", c.ID, "user_id", userID, "error", err)
			continue
		}
		updated++
	}
	if updated > 0 {
		s.logger.Info("overdue cards rebased", "user_id", userID, "updated", updated)
	}
	return updated, nil
}

// Stats is the dashboard summary for one user.
type Stats struct {
	TotalCards     int
	DueNow         int
	ByState        map[string]int
	ReviewsLast24h int
}

func (s *Service) Stats(ctx context.Context, userID string, now time.Time) (*Stats, error) {
	if now.IsZero() {
		now = time.Now()
	}
	counts, err := s.cards.Counts(ctx, userID, now)
	if err != nil {
		return nil, fmt.Errorf("counting cards: %w", err)
	}
	reviews, err := s.logs.CountSince(ctx, userID, now.Add(-24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("counting reviews: %w", err)
	}
	return &Stats{
		TotalCards:     counts.Total,
		DueNow:         counts.Due,
		ByState:        counts.ByState,
		ReviewsLast24h: reviews,
	}, nil
}

// History returns a card's most recent review logs, newest first.
func (s *Service) History(ctx context.Context, userID, cardID string, limit int) ([]*card.ReviewLog, error) {
	if limit <= 0 {
		limit = 20
	}
	logs, err := s.logs.ListForCard(ctx, userID, cardID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing review logs: %w", err)
	}
	return logs, nil
}
