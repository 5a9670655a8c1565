package mcp

import (
	"time"

	"github.com/avesk/recollect/internal/domain/card"
	"github.com/avesk/recollect/internal/domain/playlist"
	"github.com/avesk/recollect/internal/domain/source"
	"github.com/avesk/recollect/internal/domain/study"
)

// CardView is the card shape returned to MCP clients.
type CardView struct {
	ID            string     `json:"id"`
	Question      string     `json:"question"`
	Answer        string     `json:"answer"`
	Context       string     `json:"context,omitempty"`
	SourceID      string     `json:"source_id,omitempty"`
	Due           *time.Time `json:"due,omitempty"`
	Stability     float64    `json:"stability"`
	Difficulty    float64    `json:"difficulty"`
	ScheduledDays float64    `json:"scheduled_days"`
	Reps          int        `json:"reps"`
	Lapses        int        `json:"lapses"`
	State         string     `json:"state"`
	LastReviewed  *time.Time `json:"last_reviewed,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func toCardView(c *card.Card) CardView {
	return CardView{
		ID:            c.ID,
		Question:      c.Question,
		Answer:        c.Answer,
		Context:       c.Context,
		SourceID:      c.SourceID,
		Due:           c.Due,
		Stability:     c.Stability,
		Difficulty:    c.Difficulty,
		ScheduledDays: c.ScheduledDays,
		Reps:          c.Reps,
		Lapses:        c.Lapses,
		State:         c.State,
		LastReviewed:  c.LastReviewed,
		CreatedAt:     c.CreatedAt,
	}
}

func toCardViews(cards []*card.Card) []CardView {
	views := make([]CardView, len(cards))
	for i, c := range cards {
		views[i] = toCardView(c)
	}
	return views
}

// ReviewLogView is the review-log shape returned to MCP clients.
type ReviewLogView struct {
	ID            string    `json:"id"`
	CardID        string    `json:"card_id"`
	Rating        int       `json:"rating"`
	ScheduledDays float64   `json:"scheduled_days"`
	ElapsedDays   float64   `json:"elapsed_days"`
	State         string    `json:"state"`
	ReviewedAt    time.Time `json:"reviewed_at"`
}

func toReviewLogView(l *card.ReviewLog) ReviewLogView {
	return ReviewLogView{
		ID:            l.ID,
		CardID:        l.CardID,
		Rating:        l.Rating,
		ScheduledDays: l.ScheduledDays,
		ElapsedDays:   l.ElapsedDays,
		State:         l.State,
		ReviewedAt:    l.ReviewedAt,
	}
}

// PlaylistView is the playlist shape returned to MCP clients.
type PlaylistView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CardCount   int       `json:"card_count"`
	CreatedAt   time.Time `json:"created_at"`
}

func toPlaylistView(s *playlist.Summary) PlaylistView {
	return PlaylistView{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		CardCount:   s.CardCount,
		CreatedAt:   s.CreatedAt,
	}
}

// SourceView is the deck-source shape returned to MCP clients.
type SourceView struct {
	ID         string     `json:"id"`
	Kind       string     `json:"kind"`
	Path       string     `json:"path"`
	LastSynced *time.Time `json:"last_synced,omitempty"`
}

func toSourceView(s *source.Source) SourceView {
	return SourceView{
		ID:         s.ID,
		Kind:       s.Kind,
		Path:       s.Path,
		LastSynced: s.LastSynced,
	}
}

// StatsView is the collection summary returned to MCP clients.
type StatsView struct {
	TotalCards     int            `json:"total_cards"`
	DueNow         int            `json:"due_now"`
	ByState        map[string]int `json:"by_state"`
	ReviewsLast24h int            `json:"reviews_last_24h"`
}

func toStatsView(s *study.Stats) StatsView {
	return StatsView{
		TotalCards:     s.TotalCards,
		DueNow:         s.DueNow,
		ByState:        s.ByState,
		ReviewsLast24h: s.ReviewsLast24h,
	}
}
