package commands

import (
	"github.com/spf13/cobra"

	"github.com/quarrylabs/quarry/pkg/schema"
)

// NewDatabasesCommand creates the databases command.
func NewDatabasesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "databases",
		Short: "List databases visible on the active connection",
		Example: `  quarry databases
  quarry -c analytics -o json databases`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := NewCommandContext(cmd)
			conn, err := ctx.Cfg.ResolveConnection("")
			if err != nil {
				return err
			}

			in := schema.New(ctx.Gateway, ctx.Logger)
			names, err := in.ListDatabases(cmd.Context(), conn)
			if err != nil {
				return err
			}
			return renderNameList(ctx.Renderer, "databases", names)
		},
	}
}
