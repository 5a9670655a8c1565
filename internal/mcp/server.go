// Package mcp exposes the flashcard notebook as an MCP server: study
// tools, card and playlist management, and deck source sync.
package mcp

import (
	"context"
	"log/slog"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/avesk/recollect/internal/domain/card"
	"github.com/avesk/recollect/internal/domain/playlist"
	"github.com/avesk/recollect/internal/domain/source"
	"github.com/avesk/recollect/internal/domain/study"
)

// CardService defines card operations needed by MCP.
type CardService interface {
	Create(ctx context.Context, userID string, req card.CreateRequest) (*card.Card, error)
	Get(ctx context.Context, userID, id string) (*card.Card, error)
	List(ctx context.Context, userID string, opts card.ListOptions) ([]*card.Card, int, error)
	Delete(ctx context.Context, userID, id string) error
}

// StudyService defines study operations needed by MCP.
type StudyService interface {
	ApplyReview(ctx context.Context, userID string, req study.ReviewRequest) (*card.Card, *card.ReviewLog, error)
	NextCards(ctx context.Context, userID string, req study.NextRequest) ([]*card.Card, error)
	Postpone(ctx context.Context, userID, cardID string, days int, now time.Time) (*card.Card, error)
	RebaseOverdue(ctx context.Context, userID string, now time.Time) (int, error)
	Stats(ctx context.Context, userID string, now time.Time) (*study.Stats, error)
	History(ctx context.Context, userID, cardID string, limit int) ([]*card.ReviewLog, error)
}

// PlaylistService defines playlist operations needed by MCP.
type PlaylistService interface {
	Create(ctx context.Context, userID, name, description string) (*playlist.Playlist, error)
	List(ctx context.Context, userID string) ([]*playlist.Summary, error)
	Delete(ctx context.Context, userID, id string) error
	AddCard(ctx context.Context, userID, playlistID, cardID string) error
	RemoveCard(ctx context.Context, userID, playlistID, cardID string) error
}

// SourceService defines deck-source operations needed by MCP.
type SourceService interface {
	Add(ctx context.Context, userID, path string) (*source.Source, error)
	List(ctx context.Context, userID string) ([]*source.Source, error)
	SyncAll(ctx context.Context, userID string) (*source.SyncReport, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Cards     CardService
	Study     StudyService
	Playlists PlaylistService
	Sources   SourceService
}

// Config contains server configuration.
type Config struct {
	Services      Services
	Resolver      UserResolver
	AuthEnabled   bool
	TransportMode string // "stdio" or "http"
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "recollect",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	// Stdio mode is local-only, so auth is always off there.
	if cfg.TransportMode == "stdio" || !cfg.AuthEnabled {
		server.AddReceivingMiddleware(noAuthMiddleware("default"))
	} else {
		server.AddReceivingMiddleware(authMiddleware(cfg.Resolver))
	}
	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, cfg.Services)

	return server
}
