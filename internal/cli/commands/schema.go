package commands

import (
	"github.com/spf13/cobra"

	"github.com/quarrylabs/quarry/pkg/schema"
)

// NewSchemaCommand creates the schema command.
func NewSchemaCommand() *cobra.Command {
	var database string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Dump a database schema",
		Long: `Introspect the active connection and print every table with its
columns. Column fetches run concurrently and stop after 50 tables; tables
past that cap still appear, just without columns.`,
		Example: `  # Schema of the connection's own database
  quarry schema

  # Schema of a sibling database
  quarry schema --database analytics_staging

  # Machine-readable dump
  quarry -o json schema`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := NewCommandContext(cmd)
			conn, err := ctx.Cfg.ResolveConnection("")
			if err != nil {
				return err
			}

			in := schema.New(ctx.Gateway, ctx.Logger)
			ds, err := in.BuildSchema(cmd.Context(), conn, database)
			if err != nil {
				return err
			}
			return renderSchema(ctx.Renderer, conn.ID, ds)
		},
	}

	cmd.Flags().StringVar(&database, "database", "", "Introspect a sibling database instead of the connection's own")

	return cmd
}
