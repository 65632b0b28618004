package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrylabs/quarry/internal/cli/testutil"
	"github.com/quarrylabs/quarry/pkg/core"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "quarry.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0600))
	return cfgPath
}

func TestLoadConfigDefaults(t *testing.T) {
	ResetConfig()

	cfgPath := writeConfigFile(t, "connections: []\n")
	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultGatewayURL, cfg.GatewayURL)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.False(t, cfg.Verbose)
	assert.Equal(t, filepath.Dir(cfgPath), cfg.ProjectRoot)
	assert.Equal(t, filepath.Join(cfg.ProjectRoot, ".quarry", "history.db"), cfg.HistoryPath)
}

func TestLoadConfigFromFile(t *testing.T) {
	ResetConfig()

	cfgPath := writeConfigFile(t, `gateway_url: http://gw.internal:9000
output: json
verbose: true
connection: pg-main
connections:
  - id: pg-main
    name: Main Postgres
    driver: postgres
    dsn: postgres://app@db:5432/app
  - id: media
    provider: s3
    params:
      region: us-east-1
`)
	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)

	assert.Equal(t, "http://gw.internal:9000", cfg.GatewayURL)
	assert.Equal(t, "json", cfg.OutputFormat)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, "pg-main", cfg.Connection)
	require.Len(t, cfg.Connections, 2)
	assert.Equal(t, "postgres", cfg.Connections[0].Driver)
	assert.Equal(t, "s3", cfg.Connections[1].Provider)
	assert.Equal(t, "us-east-1", cfg.Connections[1].Params["region"])
}

func TestLoadConfigScaffoldedProject(t *testing.T) {
	ResetConfig()

	dir := testutil.SetupTestProject(t)
	cfg, err := LoadConfig(filepath.Join(dir, "quarry.yaml"), nil)
	require.NoError(t, err)

	assert.Equal(t, "analytics", cfg.Connection)
	require.Len(t, cfg.Connections, 2)
	assert.Equal(t, "postgres", cfg.Connections[0].Driver)
	assert.Equal(t, "s3", cfg.Connections[1].Provider)
}

func TestLoadConfigEnvPrecedenceOverFile(t *testing.T) {
	ResetConfig()

	cfgPath := writeConfigFile(t, "gateway_url: http://from-file:8080\n")

	require.NoError(t, os.Setenv("QUARRY_GATEWAY_URL", "http://from-env:8080"))
	defer func() { _ = os.Unsetenv("QUARRY_GATEWAY_URL") }()

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)

	assert.Equal(t, "http://from-env:8080", cfg.GatewayURL)
}

func TestLoadConfigFlagPrecedence(t *testing.T) {
	ResetConfig()

	cfgPath := writeConfigFile(t, "gateway_url: http://from-file:8080\n")

	require.NoError(t, os.Setenv("QUARRY_GATEWAY_URL", "http://from-env:8080"))
	defer func() { _ = os.Unsetenv("QUARRY_GATEWAY_URL") }()

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("gateway-url", "", "gateway URL")
	require.NoError(t, flags.Set("gateway-url", "http://from-flag:8080"))

	cfg, err := LoadConfig(cfgPath, flags)
	require.NoError(t, err)

	assert.Equal(t, "http://from-flag:8080", cfg.GatewayURL)
}

func TestLoadConfigFlagNotSetUsesEnv(t *testing.T) {
	ResetConfig()

	cfgPath := writeConfigFile(t, "gateway_url: http://from-file:8080\n")

	require.NoError(t, os.Setenv("QUARRY_GATEWAY_URL", "http://from-env:8080"))
	defer func() { _ = os.Unsetenv("QUARRY_GATEWAY_URL") }()

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("gateway-url", "", "gateway URL")
	// Note: not calling flags.Set(), so Changed is false

	cfg, err := LoadConfig(cfgPath, flags)
	require.NoError(t, err)

	assert.Equal(t, "http://from-env:8080", cfg.GatewayURL)
}

func TestLoadConfigRejectsBadGatewayURL(t *testing.T) {
	ResetConfig()

	cfgPath := writeConfigFile(t, "gateway_url: not-a-url\n")
	_, err := LoadConfig(cfgPath, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a valid URL")
}

func TestLoadConfigRejectsBadOutput(t *testing.T) {
	ResetConfig()

	cfgPath := writeConfigFile(t, "output: xml\n")
	_, err := LoadConfig(cfgPath, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auto, text, markdown, json")
}

func TestExpandEnvVars(t *testing.T) {
	require.NoError(t, os.Setenv("TEST_VAR_ONE", "value_one"))
	require.NoError(t, os.Setenv("TEST_VAR_TWO", "value_two"))
	defer func() {
		_ = os.Unsetenv("TEST_VAR_ONE")
		_ = os.Unsetenv("TEST_VAR_TWO")
	}()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "single variable",
			input:    "${TEST_VAR_ONE}",
			expected: "value_one",
		},
		{
			name:     "multiple variables",
			input:    "${TEST_VAR_ONE}/${TEST_VAR_TWO}",
			expected: "value_one/value_two",
		},
		{
			name:     "variable in dsn",
			input:    "postgres://app:${TEST_VAR_ONE}@db:5432/app",
			expected: "postgres://app:value_one@db:5432/app",
		},
		{
			name:     "unset variable stays as-is",
			input:    "${UNSET_VARIABLE}",
			expected: "${UNSET_VARIABLE}",
		},
		{
			name:     "no variables",
			input:    "plain string",
			expected: "plain string",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "mixed set and unset",
			input:    "${TEST_VAR_ONE}:${UNSET_VAR}",
			expected: "value_one:${UNSET_VAR}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := expandEnvVars(tt.input)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestToConnectionSQL(t *testing.T) {
	require.NoError(t, os.Setenv("TEST_PG_PASSWORD", "s3cret"))
	defer func() { _ = os.Unsetenv("TEST_PG_PASSWORD") }()

	cc := ConnectionConfig{
		ID:     "pg-main",
		Name:   "Main Postgres",
		Driver: "postgres",
		DSN:    "postgres://app:${TEST_PG_PASSWORD}@db:5432/app",
	}

	conn := cc.ToConnection()
	require.NotNil(t, conn.SQL)
	assert.Nil(t, conn.Storage)
	assert.Equal(t, core.DriverPostgres, conn.SQL.Driver)
	assert.Equal(t, "postgres://app:s3cret@db:5432/app", conn.SQL.DSN)
	assert.NoError(t, conn.Validate())
}

func TestToConnectionStorage(t *testing.T) {
	require.NoError(t, os.Setenv("TEST_S3_KEY", "AKIA123"))
	defer func() { _ = os.Unsetenv("TEST_S3_KEY") }()

	cc := ConnectionConfig{
		ID:       "media",
		Provider: "s3",
		Params: map[string]any{
			"region":        "us-east-1",
			"access_key_id": "${TEST_S3_KEY}",
			"path_style":    true,
		},
	}

	conn := cc.ToConnection()
	require.NotNil(t, conn.Storage)
	assert.Nil(t, conn.SQL)
	assert.Equal(t, core.ProviderS3, conn.Storage.Provider)
	assert.Equal(t, "AKIA123", conn.Storage.Params["access_key_id"])
	assert.Equal(t, true, conn.Storage.Params["path_style"])
}

func TestCoreConnectionsRejectsDuplicates(t *testing.T) {
	cfg := &Config{
		Connections: []ConnectionConfig{
			{ID: "a", Driver: "sqlite", DSN: "file:a.db"},
			{ID: "a", Driver: "sqlite", DSN: "file:b.db"},
		},
	}

	_, err := cfg.CoreConnections()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate connection id")
}

func TestCoreConnectionsRejectsInvalid(t *testing.T) {
	cfg := &Config{
		Connections: []ConnectionConfig{
			{ID: "bad", Driver: "dbase", DSN: "whatever"},
		},
	}

	_, err := cfg.CoreConnections()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown driver")
}

func TestResolveConnection(t *testing.T) {
	cfg := &Config{
		Connections: []ConnectionConfig{
			{ID: "pg", Driver: "postgres", DSN: "postgres://db/app"},
			{ID: "media", Provider: "s3", Params: map[string]any{"region": "us-east-1"}},
		},
	}

	t.Run("by id", func(t *testing.T) {
		conn, err := cfg.ResolveConnection("media")
		require.NoError(t, err)
		assert.Equal(t, "media", conn.ID)
	})

	t.Run("default from config", func(t *testing.T) {
		withDefault := *cfg
		withDefault.Connection = "pg"
		conn, err := withDefault.ResolveConnection("")
		require.NoError(t, err)
		assert.Equal(t, "pg", conn.ID)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := cfg.ResolveConnection("missing")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})

	t.Run("ambiguous without selection", func(t *testing.T) {
		_, err := cfg.ResolveConnection("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no connection selected")
	})
}

func TestResolveConnectionSingleConnectionIsDefault(t *testing.T) {
	cfg := &Config{
		Connections: []ConnectionConfig{
			{ID: "only", Driver: "sqlite", DSN: "file:only.db"},
		},
	}

	conn, err := cfg.ResolveConnection("")
	require.NoError(t, err)
	assert.Equal(t, "only", conn.ID)
}

func TestGetLoggerFallback(t *testing.T) {
	logger := GetLogger(context.Background())
	require.NotNil(t, logger)
}
