// Package maintenance runs the nightly background jobs, currently just
// the overdue rebase.
package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// Rebaser re-anchors a user's overdue cards.
type Rebaser interface {
	RebaseOverdue(ctx context.Context, userID string, now time.Time) (int, error)
}

// UserLister enumerates users with cards.
type UserLister interface {
	ListUserIDs(ctx context.Context) ([]string, error)
}

// Scheduler owns the cron loop.
type Scheduler struct {
	cron    *gocron.Scheduler
	rebaser Rebaser
	users   UserLister
	at      string
	logger  *slog.Logger
}

// New builds a scheduler that rebases every user's overdue cards daily
// at the given local time ("HH:MM").
func New(rebaser Rebaser, users UserLister, at string, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cron:    gocron.NewScheduler(time.Local),
		rebaser: rebaser,
		users:   users,
		at:      at,
		logger:  logger,
	}
}

// Start schedules the jobs and runs them in the background.
func (s *Scheduler) Start() error {
	if _, err := s.cron.Every(1).Day().At(s.at).Do(s.runRebase); err != nil {
		return err
	}
	s.cron.StartAsync()
	s.logger.Info("maintenance scheduler started", "rebase_at", s.at)
	return nil
}

// Stop halts the cron loop, waiting for a running job to finish.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) runRebase() {
	ctx := context.Background()
	users, err := s.users.ListUserIDs(ctx)
	if err != nil {
		s.logger.Error("rebase job failed to list users", "error", err)
		return
	}
	for _, userID := range users {
		updated, err := s.rebaser.RebaseOverdue(ctx, userID, time.Now())
		if err != nil {
			s.logger.Error("rebase job failed", "user_id", userID, "error", err)
			continue
		}
		if updated > 0 {
			s.logger.Info("rebase job updated cards", "user_id", userID, "updated", updated)
		}
	}
}
