package commands

import (
	"fmt"
	"net/url"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/quarrylabs/quarry/internal/cli/config"
	"github.com/quarrylabs/quarry/internal/cli/output"
)

// connectionSummary is the JSON shape of one configured connection.
type connectionSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name,omitempty"`
	Kind    string `json:"kind"`
	Backend string `json:"backend"`
	Target  string `json:"target,omitempty"`
	Default bool   `json:"default"`
}

// NewConnectionsCommand creates the connections command.
func NewConnectionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "connections",
		Short: "List configured connections",
		Long: `List the connections defined in quarry.yaml.

Connections are edited in the configuration file, not through the CLI.
Run 'quarry doctor' to validate them.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := NewCommandContext(cmd)
			return runConnections(ctx)
		},
	}
}

func runConnections(ctx *CommandContext) error {
	summaries := summarizeConnections(ctx.Cfg)

	if ctx.Renderer.EffectiveMode() == output.ModeJSON {
		return ctx.Renderer.JSON(summaries)
	}

	if len(summaries) == 0 {
		ctx.Renderer.Println("No connections configured. Add them to quarry.yaml or run 'quarry init'.")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(ctx.Renderer.Out())
	t.AppendHeader(table.Row{"id", "name", "kind", "backend", "target"})
	for _, s := range summaries {
		id := s.ID
		if s.Default {
			id += " (default)"
		}
		t.AppendRow(table.Row{id, s.Name, s.Kind, s.Backend, s.Target})
	}

	if ctx.Renderer.EffectiveMode() == output.ModeMarkdown {
		t.Style().Format.Header = text.FormatDefault
		t.RenderMarkdown()
		return nil
	}

	t.SetStyle(table.StyleLight)
	t.Render()
	label := fmt.Sprintf("(%d connections)", len(summaries))
	if len(summaries) == 1 {
		label = "(1 connection)"
	}
	ctx.Renderer.Println(ctx.Renderer.Styles().Muted.Render(label))
	return nil
}

// summarizeConnections builds display rows from the raw configuration.
// DSNs are redacted before they reach any output and ${VAR} references are
// left unexpanded, so listings never surface credentials.
func summarizeConnections(cfg *config.Config) []connectionSummary {
	summaries := make([]connectionSummary, 0, len(cfg.Connections))
	for _, cc := range cfg.Connections {
		s := connectionSummary{
			ID:      cc.ID,
			Name:    cc.Name,
			Default: cc.ID != "" && cc.ID == cfg.Connection,
		}
		if cc.Provider != "" {
			s.Kind = "storage"
			s.Backend = cc.Provider
			s.Target = storageTarget(cc.Params)
		} else {
			s.Kind = "sql"
			s.Backend = cc.Driver
			s.Target = redactDSN(cc.DSN)
		}
		summaries = append(summaries, s)
	}
	return summaries
}

// storageTarget picks the most identifying param for display.
func storageTarget(params map[string]any) string {
	for _, key := range []string{"endpoint", "account_name", "region"} {
		if v, ok := params[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// redactDSN masks the password of URL-shaped DSNs. Non-URL DSNs (sqlite
// paths, keyword=value strings) pass through unchanged.
func redactDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" {
		return dsn
	}
	if u.User != nil {
		if _, has := u.User.Password(); has {
			u.User = url.UserPassword(u.User.Username(), "xxxxx")
		}
	}
	return u.String()
}
