package mcp

import (
	"context"
	"fmt"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/avesk/recollect/internal/domain/card"
	"github.com/avesk/recollect/internal/domain/study"
	"github.com/avesk/recollect/internal/fsrs"
)

// parseNow parses an optional RFC 3339 override of "now". Most clients
// leave it empty; tests and backfills use it to pin the clock.
func parseNow(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, &APIError{
			Code:         "INVALID_TIMESTAMP",
			Message:      fmt.Sprintf("could not parse %q as RFC 3339", s),
			RecoveryHint: "Use a timestamp like 2026-01-02T15:04:05Z, or omit the field",
		}
	}
	return t, nil
}

type NextCardsParams struct {
	Limit      int    `json:"limit,omitempty" jsonschema:"maximum number of cards to return"`
	DailyCap   int    `json:"daily_cap,omitempty" jsonschema:"maximum cards allowed in one day before overflow is pushed to tomorrow"`
	PlaylistID string `json:"playlist_id,omitempty" jsonschema:"restrict the queue to one playlist"`
	Now        string `json:"now,omitempty" jsonschema:"RFC 3339 override of the current time"`
}

type NextCardsResult struct {
	Cards []CardView `json:"cards"`
	Count int        `json:"count"`
}

type ReviewCardParams struct {
	CardID string `json:"card_id" jsonschema:"ID of the card being graded"`
	Rating string `json:"rating" jsonschema:"grade for the review: again, hard, good, or easy"`
	Now    string `json:"now,omitempty" jsonschema:"RFC 3339 override of the review time"`
}

type ReviewCardResult struct {
	Card      CardView      `json:"card"`
	ReviewLog ReviewLogView `json:"review_log"`
}

type PostponeCardParams struct {
	CardID string `json:"card_id" jsonschema:"ID of the card to postpone"`
	Days   int    `json:"days,omitempty" jsonschema:"days to push the card out, minimum 1"`
	Now    string `json:"now,omitempty" jsonschema:"RFC 3339 override of the current time"`
}

type PostponeCardResult struct {
	Card CardView `json:"card"`
}

type RebaseDueParams struct {
	Now string `json:"now,omitempty" jsonschema:"RFC 3339 override of the current time"`
}

type RebaseDueResult struct {
	Updated int `json:"updated"`
}

type CreateCardParams struct {
	Question   string `json:"question" jsonschema:"front of the card"`
	Answer     string `json:"answer" jsonschema:"back of the card"`
	Context    string `json:"context,omitempty" jsonschema:"optional extra context shown with the answer"`
	PlaylistID string `json:"playlist_id,omitempty" jsonschema:"playlist to file the card into; defaults to Unfiled"`
}

type CreateCardResult struct {
	Card CardView `json:"card"`
}

type GetCardParams struct {
	ID string `json:"id" jsonschema:"card ID"`
}

type GetCardResult struct {
	Card    CardView        `json:"card"`
	History []ReviewLogView `json:"history,omitempty"`
}

type ListCardsParams struct {
	Offset     int    `json:"offset,omitempty" jsonschema:"number of cards to skip"`
	Limit      int    `json:"limit,omitempty" jsonschema:"page size"`
	PlaylistID string `json:"playlist_id,omitempty" jsonschema:"restrict the listing to one playlist"`
}

type ListCardsResult struct {
	Cards []CardView `json:"cards"`
	Total int        `json:"total"`
}

type DeleteCardParams struct {
	ID string `json:"id" jsonschema:"card ID"`
}

type DeleteCardResult struct {
	Deleted bool `json:"deleted"`
}

type CreatePlaylistParams struct {
	Name        string `json:"name" jsonschema:"playlist name, unique per user"`
	Description string `json:"description,omitempty" jsonschema:"optional description"`
}

type CreatePlaylistResult struct {
	Playlist PlaylistView `json:"playlist"`
}

type ListPlaylistsParams struct{}

type ListPlaylistsResult struct {
	Playlists []PlaylistView `json:"playlists"`
}

type AssignCardParams struct {
	CardID     string `json:"card_id" jsonschema:"card to move"`
	PlaylistID string `json:"playlist_id" jsonschema:"playlist to file the card into"`
	Remove     bool   `json:"remove,omitempty" jsonschema:"remove the card from the playlist instead of adding it"`
}

type AssignCardResult struct {
	OK bool `json:"ok"`
}

type GetStatsParams struct {
	Now string `json:"now,omitempty" jsonschema:"RFC 3339 override of the current time"`
}

type AddSourceParams struct {
	Path string `json:"path" jsonschema:"local directory or git URL containing markdown decks"`
}

type AddSourceResult struct {
	Source SourceView `json:"source"`
}

type ListSourcesParams struct{}

type ListSourcesResult struct {
	Sources []SourceView `json:"sources"`
}

type SyncSourcesParams struct{}

type SyncSourcesResult struct {
	SourcesSynced int      `json:"sources_synced"`
	CardsParsed   int      `json:"cards_parsed"`
	CardsImported int      `json:"cards_imported"`
	Errors        []string `json:"errors,omitempty"`
}

// registerTools wires every tool onto the server.
func registerTools(server *sdkmcp.Server, svc Services) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "next_cards",
		Description: "Get the next cards due for review, respecting the daily cap",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, params NextCardsParams) (*sdkmcp.CallToolResult, NextCardsResult, error) {
		now, err := parseNow(params.Now)
		if err != nil {
			return nil, NextCardsResult{}, err
		}
		cards, err := svc.Study.NextCards(ctx, getUserID(ctx), study.NextRequest{
			Limit:      params.Limit,
			DailyCap:   params.DailyCap,
			PlaylistID: params.PlaylistID,
			Now:        now,
		})
		if err != nil {
			return nil, NextCardsResult{}, wrapError(err)
		}
		return nil, NextCardsResult{Cards: toCardViews(cards), Count: len(cards)}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "review_card",
		Description: "Grade a card (again/hard/good/easy) and advance its schedule",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, params ReviewCardParams) (*sdkmcp.CallToolResult, ReviewCardResult, error) {
		now, err := parseNow(params.Now)
		if err != nil {
			return nil, ReviewCardResult{}, err
		}
		rating, err := fsrs.ParseRating(params.Rating)
		if err != nil {
			return nil, ReviewCardResult{}, &APIError{
				Code:         "INVALID_RATING",
				Message:      fmt.Sprintf("unknown rating %q", params.Rating),
				RecoveryHint: "Use again, hard, good, or easy",
			}
		}
		c, log, err := svc.Study.ApplyReview(ctx, getUserID(ctx), study.ReviewRequest{
			CardID: params.CardID,
			Rating: rating,
			Now:    now,
		})
		if err != nil {
			return nil, ReviewCardResult{}, wrapError(err)
		}
		return nil, ReviewCardResult{Card: toCardView(c), ReviewLog: toReviewLogView(log)}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "postpone_card",
		Description: "Push a card out by a number of days without grading it",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, params PostponeCardParams) (*sdkmcp.CallToolResult, PostponeCardResult, error) {
		now, err := parseNow(params.Now)
		if err != nil {
			return nil, PostponeCardResult{}, err
		}
		c, err := svc.Study.Postpone(ctx, getUserID(ctx), params.CardID, params.Days, now)
		if err != nil {
			return nil, PostponeCardResult{}, wrapError(err)
		}
		return nil, PostponeCardResult{Card: toCardView(c)}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "rebase_due",
		Description: "Re-anchor all overdue cards so their intervals restart from today",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, params RebaseDueParams) (*sdkmcp.CallToolResult, RebaseDueResult, error) {
		now, err := parseNow(params.Now)
		if err != nil {
			return nil, RebaseDueResult{}, err
		}
		updated, err := svc.Study.RebaseOverdue(ctx, getUserID(ctx), now)
		if err != nil {
			return nil, RebaseDueResult{}, wrapError(err)
		}
		return nil, RebaseDueResult{Updated: updated}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "create_card",
		Description: "Create a new flashcard",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, params CreateCardParams) (*sdkmcp.CallToolResult, CreateCardResult, error) {
		c, err := svc.Cards.Create(ctx, getUserID(ctx), card.CreateRequest{
			Question:   params.Question,
			Answer:     params.Answer,
			Context:    params.Context,
			PlaylistID: params.PlaylistID,
		})
		if err != nil {
			return nil, CreateCardResult{}, wrapError(err)
		}
		return nil, CreateCardResult{Card: toCardView(c)}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_card",
		Description: "Get a card with its recent review history",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, params GetCardParams) (*sdkmcp.CallToolResult, GetCardResult, error) {
		userID := getUserID(ctx)
		c, err := svc.Cards.Get(ctx, userID, params.ID)
		if err != nil {
			return nil, GetCardResult{}, wrapError(err)
		}
		history, err := svc.Study.History(ctx, userID, params.ID, 10)
		if err != nil {
			return nil, GetCardResult{}, wrapError(err)
		}
		result := GetCardResult{Card: toCardView(c)}
		for _, l := range history {
			result.History = append(result.History, toReviewLogView(l))
		}
		return nil, result, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_cards",
		Description: "List cards, optionally filtered by playlist",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, params ListCardsParams) (*sdkmcp.CallToolResult, ListCardsResult, error) {
		cards, total, err := svc.Cards.List(ctx, getUserID(ctx), card.ListOptions{
			Offset:     params.Offset,
			Limit:      params.Limit,
			PlaylistID: params.PlaylistID,
		})
		if err != nil {
			return nil, ListCardsResult{}, wrapError(err)
		}
		return nil, ListCardsResult{Cards: toCardViews(cards), Total: total}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "delete_card",
		Description: "Delete a card and its review history",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, params DeleteCardParams) (*sdkmcp.CallToolResult, DeleteCardResult, error) {
		if err := svc.Cards.Delete(ctx, getUserID(ctx), params.ID); err != nil {
			return nil, DeleteCardResult{}, wrapError(err)
		}
		return nil, DeleteCardResult{Deleted: true}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "create_playlist",
		Description: "Create a new playlist",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, params CreatePlaylistParams) (*sdkmcp.CallToolResult, CreatePlaylistResult, error) {
		p, err := svc.Playlists.Create(ctx, getUserID(ctx), params.Name, params.Description)
		if err != nil {
			return nil, CreatePlaylistResult{}, wrapError(err)
		}
		view := PlaylistView{ID: p.ID, Name: p.Name, Description: p.Description, CreatedAt: p.CreatedAt}
		return nil, CreatePlaylistResult{Playlist: view}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_playlists",
		Description: "List playlists with card counts",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, params ListPlaylistsParams) (*sdkmcp.CallToolResult, ListPlaylistsResult, error) {
		summaries, err := svc.Playlists.List(ctx, getUserID(ctx))
		if err != nil {
			return nil, ListPlaylistsResult{}, wrapError(err)
		}
		result := ListPlaylistsResult{Playlists: make([]PlaylistView, len(summaries))}
		for i, s := range summaries {
			result.Playlists[i] = toPlaylistView(s)
		}
		return nil, result, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "assign_card",
		Description: "Add a card to a playlist, or remove it",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, params AssignCardParams) (*sdkmcp.CallToolResult, AssignCardResult, error) {
		userID := getUserID(ctx)
		var err error
		if params.Remove {
			err = svc.Playlists.RemoveCard(ctx, userID, params.PlaylistID, params.CardID)
		} else {
			err = svc.Playlists.AddCard(ctx, userID, params.PlaylistID, params.CardID)
		}
		if err != nil {
			return nil, AssignCardResult{}, wrapError(err)
		}
		return nil, AssignCardResult{OK: true}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_stats",
		Description: "Summarize the collection: totals, due counts, recent reviews",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, params GetStatsParams) (*sdkmcp.CallToolResult, StatsView, error) {
		now, err := parseNow(params.Now)
		if err != nil {
			return nil, StatsView{}, err
		}
		stats, err := svc.Study.Stats(ctx, getUserID(ctx), now)
		if err != nil {
			return nil, StatsView{}, wrapError(err)
		}
		return nil, toStatsView(stats), nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "add_source",
		Description: "Register a markdown deck source (local directory or git URL)",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, params AddSourceParams) (*sdkmcp.CallToolResult, AddSourceResult, error) {
		src, err := svc.Sources.Add(ctx, getUserID(ctx), params.Path)
		if err != nil {
			return nil, AddSourceResult{}, wrapError(err)
		}
		return nil, AddSourceResult{Source: toSourceView(src)}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_sources",
		Description: "List registered deck sources",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, params ListSourcesParams) (*sdkmcp.CallToolResult, ListSourcesResult, error) {
		sources, err := svc.Sources.List(ctx, getUserID(ctx))
		if err != nil {
			return nil, ListSourcesResult{}, wrapError(err)
		}
		result := ListSourcesResult{Sources: make([]SourceView, len(sources))}
		for i, s := range sources {
			result.Sources[i] = toSourceView(s)
		}
		return nil, result, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "sync_sources",
		Description: "Pull and import every registered deck source",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, params SyncSourcesParams) (*sdkmcp.CallToolResult, SyncSourcesResult, error) {
		report, err := svc.Sources.SyncAll(ctx, getUserID(ctx))
		if err != nil {
			return nil, SyncSourcesResult{}, wrapError(err)
		}
		return nil, SyncSourcesResult{
			SourcesSynced: report.SourcesSynced,
			CardsParsed:   report.CardsParsed,
			CardsImported: report.CardsImported,
			Errors:        report.Errors,
		}, nil
	})
}
