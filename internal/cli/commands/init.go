package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/quarrylabs/quarry/internal/cli/output"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new Quarry project",
		Long: `Initialize a new Quarry project with a starter configuration.

This creates:
  - quarry.yaml configuration file with an example connection
  - .quarry/ directory for local state (query history)
  - .gitignore entry keeping local state out of version control`,
		Example: `  # Initialize in current directory
  quarry init

  # Initialize in a new directory
  quarry init my-project

  # Force overwrite existing config
  quarry init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			cfg := getConfig()
			mode := output.Mode(cfg.OutputFormat)
			r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

			return runInit(r, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")

	return cmd
}

func runInit(r *output.Renderer, dir string, force bool) error {
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	configPath := filepath.Join(dir, "quarry.yaml")
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("quarry.yaml already exists. Use --force to overwrite")
	}

	if err := copyTemplate("minimal", dir, force); err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}

	// Local state directory; the history store also creates it on demand,
	// but scaffolding it up front makes the .gitignore entry visible.
	if err := os.MkdirAll(filepath.Join(dir, ".quarry"), 0750); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	files, _ := listTemplateFiles("minimal")
	for _, f := range files {
		r.StatusLine(f, "success", "")
	}
	r.StatusLine(".quarry/", "success", "")

	r.Println("")
	r.Success("Quarry project initialized!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  1. Edit quarry.yaml and point it at your gateway and connections")
	r.Println("  2. Run 'quarry doctor' to check the configuration")
	r.Println("  3. Run 'quarry query' to open an interactive session")

	return nil
}
