package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/quarrylabs/quarry/internal/cli/output"
	"github.com/quarrylabs/quarry/internal/history"
	"github.com/quarrylabs/quarry/pkg/classify"
	"github.com/quarrylabs/quarry/pkg/core"
)

// QueryOptions holds options for the query command.
type QueryOptions struct {
	Format string // Result format: table, json, csv, md
	Input  string // Read SQL from a file
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query [sql]",
		Short: "Run SQL on the active connection",
		Long: `Run SQL against the active connection through the gateway.

Read statements (SELECT, WITH, SHOW, DESCRIBE, EXPLAIN, PRAGMA) go to the
query endpoint; everything else goes to the execute endpoint. Without SQL
from arguments, --input, or a pipe, an interactive session opens.

Executed statements are recorded in the local history database; see
'quarry history'.`,
		Example: `  # Run a statement
  quarry query "SELECT * FROM users LIMIT 10"

  # CSV for scripting
  quarry query -f csv "SELECT id, email FROM users" > users.csv

  # Run a file
  quarry query --input weekly_report.sql

  # Pipe SQL in
  echo "SELECT count(*) FROM events" | quarry query

  # Interactive session
  quarry query`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "table", "Result format: table, json, csv, md")
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from a file")

	return cmd
}

func runQuery(cmd *cobra.Command, args []string, opts *QueryOptions) error {
	ctx := NewCommandContext(cmd)

	format, err := output.ParseFormat(opts.Format)
	if err != nil {
		return err
	}

	conn, err := ctx.Cfg.ResolveConnection("")
	if err != nil {
		return err
	}
	if conn.SQL == nil {
		return fmt.Errorf("connection %q is not a SQL connection; see 'quarry storage'", conn.ID)
	}

	sqlText, err := resolveQueryText(cmd, args, opts.Input)
	if err != nil {
		return err
	}

	if strings.TrimSpace(sqlText) == "" {
		if !isTerminal(os.Stdin) {
			return fmt.Errorf("no SQL provided")
		}
		return runQueryREPL(cmd, ctx, conn, format)
	}

	store, cleanup, err := openHistory(ctx.Cfg, ctx.Logger)
	if err != nil {
		ctx.Logger.Warn("query history disabled", "error", err)
		store = nil
	} else {
		defer cleanup()
	}

	return executeStatement(cmd.Context(), ctx, store, conn, sqlText, format)
}

// resolveQueryText picks the SQL source: arguments, then --input, then a pipe.
// Empty return with nil error means no source was given.
func resolveQueryText(cmd *cobra.Command, args []string, inputFile string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	if inputFile != "" {
		content, err := os.ReadFile(inputFile)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", inputFile, err)
		}
		return string(content), nil
	}

	if !isTerminal(os.Stdin) {
		content, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(content), nil
	}

	return "", nil
}

// executeStatement routes one statement through the gateway, records it in
// history, and renders the result.
func executeStatement(ctx context.Context, cmdCtx *CommandContext, store *history.Store, conn *core.Connection, sqlText string, format output.Format) error {
	kind := classify.SQL(sqlText).String()

	start := time.Now()
	res, err := cmdCtx.Gateway.Run(ctx, conn.ID, sqlText)
	recordHistory(store, cmdCtx.Logger, conn.ID, sqlText, kind, res, err, time.Since(start))
	if err != nil {
		return err
	}

	return cmdCtx.Renderer.Result(res, format)
}

// recordHistory writes one entry, logging instead of failing the statement.
func recordHistory(store *history.Store, logger *slog.Logger, connectionID, sqlText, kind string, res *core.QueryResult, execErr error, took time.Duration) {
	if store == nil {
		return
	}

	entry := &history.Entry{
		ConnectionID: connectionID,
		Query:        strings.TrimSpace(sqlText),
		Kind:         kind,
		Duration:     took,
	}
	if res != nil {
		entry.RowCount = int64(res.RowCount())
		entry.RowsAffected = res.RowsAffected
	}
	if execErr != nil {
		entry.Error = execErr.Error()
	}

	if err := store.Record(entry); err != nil {
		logger.Warn("failed to record history entry", "error", err)
	}
}

// isTerminal reports whether f is attached to an interactive terminal.
func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
