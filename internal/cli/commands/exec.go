package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/quarrylabs/quarry/internal/cli/output"
)

// NewExecCommand creates the exec command.
func NewExecCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "exec <sql>",
		Short: "Run SQL on the execute endpoint",
		Long: `Run a statement on the execute endpoint regardless of how it reads.

The query command routes by prefix, so a SELECT that calls a function with
side effects, or a PRAGMA that writes, would land on the query endpoint.
exec skips the classification and always takes the write path.`,
		Example: `  quarry exec "SELECT refresh_all_views()"
  quarry exec "PRAGMA journal_mode=WAL"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewCommandContext(cmd)

			resultFormat, err := output.ParseFormat(format)
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

			sqlText := strings.Join(args, " ")

			store, cleanup, err := openHistory(ctx.Cfg, ctx.Logger)
			if err != nil {
				ctx.Logger.Warn("query history disabled", "error", err)
				store = nil
			} else {
				defer cleanup()
			}

			start := time.Now()
			res, err := ctx.Gateway.Execute(cmd.Context(), conn.ID, sqlText)
			recordHistory(store, ctx.Logger, conn.ID, sqlText, "write", res, err, time.Since(start))
			if err != nil {
				return err
			}

			return ctx.Renderer.Result(res, resultFormat)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "Result format: table, json, csv, md")

	return cmd
}
