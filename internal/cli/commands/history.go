package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/quarrylabs/quarry/internal/cli/output"
	"github.com/quarrylabs/quarry/internal/history"
)

// maxHistoryQueryWidth caps the query column in history listings.
const maxHistoryQueryWidth = 60

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently executed statements",
		Long: `Show the most recent statements from the local history database,
newest first. Both quarry query and the interactive session record there.`,
		Example: `  quarry history
  quarry history --limit 5
  quarry -o json history`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := NewCommandContext(cmd)

			store, cleanup, err := openHistory(ctx.Cfg, ctx.Logger)
			if err != nil {
				return fmt.Errorf("failed to open history: %w", err)
			}
			defer cleanup()

			entries, err := store.Recent(limit)
			if err != nil {
				return err
			}
			return renderHistory(ctx.Renderer, entries)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries to show")

	return cmd
}

// historyEntryJSON is the JSON shape of one history entry.
type historyEntryJSON struct {
	ID           string    `json:"id"`
	Connection   string    `json:"connection"`
	Kind         string    `json:"kind"`
	Query        string    `json:"query"`
	RowCount     int64     `json:"row_count"`
	RowsAffected int64     `json:"rows_affected"`
	DurationMS   int64     `json:"duration_ms"`
	Error        string    `json:"error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func renderHistory(r *output.Renderer, entries []*history.Entry) error {
	if r.EffectiveMode() == output.ModeJSON {
		out := make([]historyEntryJSON, 0, len(entries))
		for _, e := range entries {
			out = append(out, historyEntryJSON{
				ID:           e.ID,
				Connection:   e.ConnectionID,
				Kind:         e.Kind,
				Query:        e.Query,
				RowCount:     e.RowCount,
				RowsAffected: e.RowsAffected,
				DurationMS:   e.Duration.Milliseconds(),
				Error:        e.Error,
				CreatedAt:    e.CreatedAt,
			})
		}
		return r.JSON(out)
	}

	if len(entries) == 0 {
		r.Println("No history yet. Run 'quarry query' first.")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.Out())
	t.AppendHeader(table.Row{"time", "connection", "kind", "rows", "duration", "status", "query"})
	for _, e := range entries {
		rows := e.RowCount
		if e.Kind == "write" {
			rows = e.RowsAffected
		}
		status := "ok"
		if e.Error != "" {
			status = "error"
		}
		t.AppendRow(table.Row{
			e.CreatedAt.Format("2006-01-02 15:04:05"),
			e.ConnectionID,
			e.Kind,
			rows,
			e.Duration.String(),
			status,
			truncateQuery(e.Query, maxHistoryQueryWidth),
		})
	}

	if r.EffectiveMode() == output.ModeMarkdown {
		t.Style().Format.Header = text.FormatDefault
		t.RenderMarkdown()
		return nil
	}

	t.SetStyle(table.StyleLight)
	t.Render()
	label := fmt.Sprintf("(%d entries)", len(entries))
	if len(entries) == 1 {
		label = "(1 entry)"
	}
	r.Println(r.Styles().Muted.Render(label))
	return nil
}

// truncateQuery collapses whitespace and caps the query for list display.
func truncateQuery(q string, width int) string {
	q = strings.Join(strings.Fields(q), " ")
	if len(q) <= width {
		return q
	}
	return q[:width-3] + "..."
}
