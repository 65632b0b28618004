package commands

import (
	"github.com/spf13/cobra"

	"github.com/quarrylabs/quarry/pkg/schema"
)

// NewTablesCommand creates the tables command.
func NewTablesCommand() *cobra.Command {
	var database string

	cmd := &cobra.Command{
		Use:   "tables",
		Short: "List tables in a database",
		Example: `  # Tables in the connection's own database
  quarry tables

  # Tables in a sibling database
  quarry tables --database analytics_staging`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := NewCommandContext(cmd)
			conn, err := ctx.Cfg.ResolveConnection("")
			if err != nil {
				return err
			}

			in := schema.New(ctx.Gateway, ctx.Logger)
			names, err := in.ListTables(cmd.Context(), conn, database)
			if err != nil {
				return err
			}
			return renderNameList(ctx.Renderer, "tables", names)
		},
	}

	cmd.Flags().StringVar(&database, "database", "", "Target a sibling database instead of the connection's own")

	return cmd
}
