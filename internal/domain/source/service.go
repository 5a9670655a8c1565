package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/avesk/recollect/internal/domain/card"
	"github.com/avesk/recollect/internal/repository"
)

// Service registers deck sources and reconciles them into the card
// store.
type Service struct {
	sources   Repository
	cards     CardRepository
	playlists PlaylistFiler
	git       RepoSyncer

	// reposDir is where git sources are mirrored locally.
	reposDir string
	logger   *slog.Logger
}

func NewService(sources Repository, cards CardRepository, playlists PlaylistFiler, git RepoSyncer, reposDir string, logger *slog.Logger) *Service {
	if reposDir == "" {
		reposDir = "repos"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		sources:   sources,
		cards:     cards,
		playlists: playlists,
		git:       git,
		reposDir:  reposDir,
		logger:    logger,
	}
}

// Add registers a new deck source. Git URLs (https, or scp-style
// git@host:path) are detected automatically; everything else is
// treated as a local directory.
func (s *Service) Add(ctx context.Context, userID, path string) (*Source, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("%w: path is required", ErrInvalidInput)
	}
	src := &Source{
		ID:        uuid.NewString(),
		UserID:    userID,
		Kind:      detectKind(path),
		Path:      path,
		CreatedAt: time.Now(),
	}
	if err := s.sources.Create(ctx, src); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: %q", ErrDuplicatePath, path)
		}
		return nil, fmt.Errorf("creating source: %w", err)
	}
	s.logger.Info("source added", "source_id", src.ID, "user_id", userID, "kind", src.Kind, "path", path)
	return src, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]*Source, error) {
	sources, err := s.sources.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing sources: %w", err)
	}
	return sources, nil
}

// SyncReport summarizes one reconciliation run.
type SyncReport struct {
	SourcesSynced int
	CardsParsed   int
	CardsImported int
	Errors        []string
}

// SyncAll reconciles every source the user registered. Each source is
// best-effort: a broken deck or unreachable repository is reported and
// the run moves on.
func (s *Service) SyncAll(ctx context.Context, userID string) (*SyncReport, error) {
	sources, err := s.sources.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing sources: %w", err)
	}

	report := &SyncReport{}
	for _, src := range sources {
		localPath := src.Path
		if src.Kind == KindGit {
			localPath, err = gitLocalPath(s.reposDir, src.Path)
			if err != nil {
				report.Errors = append(report.Errors, fmt.Sprintf("source %s: %v", src.Path, err))
				continue
			}
			if err := s.git.Sync(ctx, src.Path, localPath); err != nil {
				report.Errors = append(report.Errors, fmt.Sprintf("syncing %s: %v", src.Path, err))
				continue
			}
		}

		parsed, imported, errs := s.importDir(ctx, userID, src, localPath)
		report.CardsParsed += parsed
		report.CardsImported += imported
		report.Errors = append(report.Errors, errs...)
		report.SourcesSynced++

		if err := s.sources.UpdateLastSynced(ctx, userID, src.ID, time.Now()); err != nil {
			s.logger.Warn("failed to record sync time", "source_id", src.ID, "error", err)
		}
	}

	s.logger.Info("source sync complete",
		"user_id", userID,
		"sources", report.SourcesSynced,
		"parsed", report.CardsParsed,
		"imported", report.CardsImported,
		"errors", len(report.Errors),
	)
	return report, nil
}

// importDir walks a deck directory and inserts any card whose content
// hash isn't already in the user's collection.
func (s *Service) importDir(ctx context.Context, userID string, src *Source, dir string) (parsed, imported int, errs []string) {
	playlistID, err := s.playlists.EnsureDefault(ctx, userID)
	if err != nil {
		return 0, 0, []string{fmt.Sprintf("ensuring default playlist: %v", err)}
	}

	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}
		deck, parseErr := ParseDeckFile(path)
		if parseErr != nil {
			errs = append(errs, fmt.Sprintf("parsing %s: %v", path, parseErr))
			return nil
		}
		parsed += len(deck)
		for _, pc := range deck {
			n, importErr := s.importCard(ctx, userID, src.ID, playlistID, pc)
			if importErr != nil {
				errs = append(errs, fmt.Sprintf("importing from %s: %v", path, importErr))
				continue
			}
			imported += n
		}
		return nil
	})
	if walkErr != nil {
		errs = append(errs, fmt.Sprintf("walking %s: %v", dir, walkErr))
	}
	return parsed, imported, errs
}

func (s *Service) importCard(ctx context.Context, userID, sourceID, playlistID string, pc ParsedCard) (int, error) {
	hash := ContentHash(pc)
	existing, err := s.cards.FindByContentHash(ctx, userID, hash)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return 0, err
	}
	if existing != nil {
		return 0, nil
	}

	now := time.Now()
	c := &card.Card{
		ID:          uuid.NewString(),
		UserID:      userID,
		Question:    pc.Question,
		Answer:      pc.Answer,
		Context:     pc.Context,
		ContentHash: hash,
		SourceID:    sourceID,
		CreatedAt:   now,
		ModifiedAt:  now,
	}
	card.InitialSchedule(now).ApplyTo(c, now)
	c.Revision = 1

	if err := s.cards.Create(ctx, c); err != nil {
		return 0, err
	}
	if err := s.playlists.AddCard(ctx, userID, playlistID, c.ID); err != nil {
		return 0, err
	}
	return 1, nil
}

func detectKind(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") ||
		strings.HasPrefix(path, "git@") || strings.HasSuffix(path, ".git") {
		return KindGit
	}
	return KindLocal
}

// gitLocalPath maps a repository URL to a stable mirror path under
// baseDir, keyed by host and repo path.
func gitLocalPath(baseDir, repoURL string) (string, error) {
	parsed, err := url.Parse(repoURL)
	if err == nil && (parsed.Scheme == "http" || parsed.Scheme == "https") {
		return filepath.Join(baseDir, parsed.Host, strings.TrimSuffix(parsed.Path, ".git")), nil
	}

	// scp-style: git@host:user/repo.git
	if at := strings.Index(repoURL, "@"); at >= 0 {
		if colon := strings.Index(repoURL, ":"); colon > at {
			host := repoURL[at+1 : colon]
			repoPath := strings.TrimSuffix(repoURL[colon+1:], ".git")
			return filepath.Join(baseDir, host, repoPath), nil
		}
	}
	return "", fmt.Errorf("could not parse git url: %s", repoURL)
}
