// Package gitsource mirrors remote git repositories to the local disk
// so deck sources can be read as plain directories.
package gitsource

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	git "github.com/go-git/go-git/v5"
)

type Syncer struct {
	logger *slog.Logger
}

func NewSyncer(logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{logger: logger}
}

// Sync clones url into localPath on first use, then fast-forwards the
// existing checkout on every run after that.
func (s *Syncer) Sync(ctx context.Context, url, localPath string) error {
	_, err := os.Stat(localPath)
	switch {
	case os.IsNotExist(err):
		s.logger.Info("cloning repository", "url", url, "path", localPath)
		_, err := git.PlainCloneContext(ctx, localPath, false, &git.CloneOptions{URL: url})
		if err != nil {
			return fmt.Errorf("cloning %s: %w", url, err)
		}
		return nil

	case err != nil:
		return fmt.Errorf("checking %s: %w", localPath, err)
	}

	repo, err := git.PlainOpen(localPath)
	if err != nil {
		return fmt.Errorf("opening repository at %s: %w", localPath, err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("getting worktree at %s: %w", localPath, err)
	}
	s.logger.Info("pulling repository", "url", url, "path", localPath)
	err = worktree.PullContext(ctx, &git.PullOptions{RemoteName: "origin"})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		return fmt.Errorf("pulling %s: %w", url, err)
	}
	return nil
}
