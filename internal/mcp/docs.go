package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `recollect is a personal spaced-repetition flashcard notebook.

Core concepts:
- Card: a question/answer pair with scheduler memory state (stability, difficulty, due date).
- Rating: every review gets one of four grades: again (forgot), hard, good, easy.
- Playlist: a named deck. Cards created without one land in "Unfiled".
- Source: a local directory or git repository of markdown decks (Q:/A:/C: blocks) imported by content hash.

Daily workflow:
1) Call next_cards to get today's queue. The daily cap pushes any overflow to tomorrow automatically.
2) Show the question, let the user recall, then call review_card with the grade.
3) Repeat until next_cards returns empty.

Other flows:
- postpone_card pushes a single card out without grading it.
- rebase_due restarts every overdue card's interval from today; useful after a long break.
- get_stats summarizes due counts and recent review volume.
- add_source + sync_sources import markdown decks; re-syncing never duplicates cards.

Timestamps: every scheduling tool accepts an optional "now" (RFC 3339) to pin the clock; omit it in normal use.

Docs:
- recollect://docs/deck-format (markdown deck syntax)
- recollect://docs/scheduling (how grades move the schedule)
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "recollect://docs/deck-format",
		Name:        "deck-format",
		Title:       "Markdown deck format",
		Description: "How to write deck files that sync_sources can import",
		Content: `# Markdown deck format

Deck files are plain markdown, extension ` + "`.md`" + `. Each card is a block:

    Q: What does the sqlite PRAGMA foreign_keys do?
    A: Enables enforcement of foreign key constraints for the connection.
    C: Off by default for historical compatibility.

Rules:
- ` + "`Q:`" + ` starts a card; a second ` + "`Q:`" + ` or a ` + "`---`" + ` line closes the previous one.
- ` + "`A:`" + ` and ` + "`C:`" + ` (optional context) belong to the current card.
- Blocks may span multiple lines until the next prefix.
- A card is identified by a hash of its normalized content, so editing a card creates a new one; cosmetic whitespace and case changes do not.
`,
	},
	{
		URI:         "recollect://docs/scheduling",
		Name:        "scheduling",
		Title:       "Scheduling behavior",
		Description: "How grades, the daily cap, postpone, and rebase move due dates",
		Content: `# Scheduling behavior

- Grades: "again" marks a lapse and shrinks the interval; "hard", "good", "easy" grow it by increasing amounts.
- New cards are first due two days after creation, so bulk imports ramp in instead of flooding today.
- Due dates carry a small random spread so cards created together drift apart over time.
- next_cards enforces a daily cap: candidates beyond the cap are moved to tomorrow at read time.
- postpone_card moves one card N days out without grading.
- rebase_due is the "I was away for a month" reset: every overdue card keeps its interval length but restarts it from today.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		doc := doc

		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
