package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/quarrylabs/quarry/internal/cli/config"
	"github.com/quarrylabs/quarry/internal/cli/output"
	"github.com/quarrylabs/quarry/internal/history"
	"github.com/quarrylabs/quarry/pkg/gateway"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Gateway  *gateway.Client
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with a gateway client and
// renderer. The gateway client keeps no open sockets, so there is nothing
// to clean up.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	gw := gateway.New(cfg.GatewayURL, gateway.WithLogger(logger))

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Gateway:  gw,
		Renderer: r,
	}
}

// openHistory opens the local history store and runs its migrations.
// Returns the store and a cleanup function that must be called (typically via defer).
func openHistory(cfg *config.Config, logger *slog.Logger) (*history.Store, func(), error) {
	store := history.New(logger)
	if err := store.Open(cfg.HistoryPath); err != nil {
		return nil, nil, err
	}
	if err := store.Migrate(); err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	cleanup := func() {
		_ = store.Close()
	}
	return store, cleanup, nil
}

// Helper functions shared across commands

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	// Fallback: read from environment with defaults
	gatewayURL := getEnvOrDefault("QUARRY_GATEWAY_URL", config.DefaultGatewayURL)
	historyPath := getEnvOrDefault("QUARRY_HISTORY_PATH", config.DefaultHistoryFile)
	connection := os.Getenv("QUARRY_CONNECTION")
	outputFormat := getEnvOrDefault("QUARRY_OUTPUT", config.DefaultOutput)
	verbose := os.Getenv("QUARRY_VERBOSE") == "true"

	return &config.Config{
		GatewayURL:   gatewayURL,
		HistoryPath:  historyPath,
		Connection:   connection,
		OutputFormat: outputFormat,
		Verbose:      verbose,
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
