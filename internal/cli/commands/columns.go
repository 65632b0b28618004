package commands

import (
	"github.com/spf13/cobra"

	"github.com/quarrylabs/quarry/pkg/schema"
)

// NewColumnsCommand creates the columns command.
func NewColumnsCommand() *cobra.Command {
	var database string

	cmd := &cobra.Command{
		Use:   "columns <table>",
		Short: "Show the columns of a table",
		Example: `  quarry columns users
  quarry columns orders --database analytics_staging`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewCommandContext(cmd)
			conn, err := ctx.Cfg.ResolveConnection("")
			if err != nil {
				return err
			}

			in := schema.New(ctx.Gateway, ctx.Logger)
			cols, err := in.ListColumns(cmd.Context(), conn, database, args[0])
			if err != nil {
				return err
			}
			return renderColumns(ctx.Renderer, cols)
		},
	}

	cmd.Flags().StringVar(&database, "database", "", "Target a sibling database instead of the connection's own")

	return cmd
}
