// Package commands_test provides tests for CLI command creation.
package commands

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrylabs/quarry/internal/cli/config"
	"github.com/quarrylabs/quarry/internal/testutil"
)

func TestNewConnectionsCommand(t *testing.T) {
	cmd := NewConnectionsCommand()

	assert.Equal(t, "connections", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
}

func TestNewDatabasesCommand(t *testing.T) {
	cmd := NewDatabasesCommand()

	assert.Equal(t, "databases", cmd.Use)
	assert.NotNil(t, cmd.RunE)
}

func TestNewTablesCommand(t *testing.T) {
	cmd := NewTablesCommand()

	assert.Equal(t, "tables", cmd.Use)
	assert.NotNil(t, cmd.Flags().Lookup("database"), "--database flag should exist")
}

func TestNewColumnsCommand(t *testing.T) {
	cmd := NewColumnsCommand()

	assert.Equal(t, "columns <table>", cmd.Use)
	assert.NotNil(t, cmd.Flags().Lookup("database"), "--database flag should exist")
}

func TestNewSchemaCommand(t *testing.T) {
	cmd := NewSchemaCommand()

	assert.Equal(t, "schema", cmd.Use)
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")
}

func TestNewExecCommand(t *testing.T) {
	cmd := NewExecCommand()

	assert.Equal(t, "exec", cmd.Use[:4])
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotNil(t, cmd.Flags().Lookup("format"), "--format flag should exist")
}

func TestNewHistoryCommand(t *testing.T) {
	cmd := NewHistoryCommand()

	assert.Equal(t, "history", cmd.Use)
	assert.NotNil(t, cmd.Flags().Lookup("limit"), "--limit flag should exist")
}

func TestNewStorageCommand(t *testing.T) {
	cmd := NewStorageCommand()

	assert.Equal(t, "storage", cmd.Use)
	assert.NotNil(t, cmd.PersistentFlags().Lookup("container"), "--container flag should exist")

	subCmds := cmd.Commands()
	var names []string
	for _, c := range subCmds {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "containers")
	assert.Contains(t, names, "create-container")
	assert.Contains(t, names, "ls")
	assert.Contains(t, names, "stat")
	assert.Contains(t, names, "presign")
	assert.Contains(t, names, "put")
	assert.Contains(t, names, "rm")
}

func TestGetConfig_EnvFallback(t *testing.T) {
	t.Setenv("QUARRY_GATEWAY_URL", "http://gateway.internal:9090")
	t.Setenv("QUARRY_CONNECTION", "analytics")
	t.Setenv("QUARRY_VERBOSE", "true")

	cfg := getConfig()

	assert.Equal(t, "http://gateway.internal:9090", cfg.GatewayURL)
	assert.Equal(t, "analytics", cfg.Connection)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, config.DefaultHistoryFile, cfg.HistoryPath)
	assert.Equal(t, config.DefaultOutput, cfg.OutputFormat)
}

func TestOpenHistory(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := &config.Config{HistoryPath: filepath.Join(tmpDir, ".quarry", "history.db")}

	store, cleanup, err := openHistory(cfg, testutil.NewTestLogger(t))
	require.NoError(t, err)
	defer cleanup()

	// Migrations ran, so the store is immediately queryable.
	entries, err := store.Recent(5)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
