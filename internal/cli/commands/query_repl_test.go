package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrylabs/quarry/internal/cli/output"
	clitest "github.com/quarrylabs/quarry/internal/cli/testutil"
	"github.com/quarrylabs/quarry/internal/testutil"
	"github.com/quarrylabs/quarry/pkg/core"
	"github.com/quarrylabs/quarry/pkg/dialect"
	"github.com/quarrylabs/quarry/pkg/gateway"
	"github.com/quarrylabs/quarry/pkg/schema"

	// Register the dialect adapters the introspector resolves at runtime.
	_ "github.com/quarrylabs/quarry/pkg/dialects/all"
)

func TestHandleDotCommand_Quit(t *testing.T) {
	tr := clitest.NewTestRendererText()
	cmdCtx := &CommandContext{Renderer: tr.Renderer}
	format := output.FormatTable

	assert.True(t, handleDotCommand(context.Background(), cmdCtx, nil, nil, ".quit", &format))
	assert.True(t, handleDotCommand(context.Background(), cmdCtx, nil, nil, ".exit", &format))
}

func TestHandleDotCommand_Help(t *testing.T) {
	tr := clitest.NewTestRendererText()
	cmdCtx := &CommandContext{Renderer: tr.Renderer}
	format := output.FormatTable

	done := handleDotCommand(context.Background(), cmdCtx, nil, nil, ".help", &format)
	assert.False(t, done)
	assert.Contains(t, tr.Output(), ".tables")
	assert.Contains(t, tr.Output(), ".format")
}

func TestHandleDotCommand_Format(t *testing.T) {
	tr := clitest.NewTestRendererText()
	cmdCtx := &CommandContext{Renderer: tr.Renderer}
	format := output.FormatTable

	// Bare .format shows the current setting.
	handleDotCommand(context.Background(), cmdCtx, nil, nil, ".format", &format)
	assert.Contains(t, tr.Output(), "format: table")

	tr.Reset()
	handleDotCommand(context.Background(), cmdCtx, nil, nil, ".format json", &format)
	assert.Equal(t, output.FormatJSON, format)
	assert.Contains(t, tr.Output(), "format set to json")

	tr.Reset()
	handleDotCommand(context.Background(), cmdCtx, nil, nil, ".format bogus", &format)
	assert.Equal(t, output.FormatJSON, format, "invalid format should not change the setting")
	assert.Contains(t, tr.ErrorOutput(), "bogus")
}

func TestHandleDotCommand_ColumnsUsage(t *testing.T) {
	tr := clitest.NewTestRendererText()
	cmdCtx := &CommandContext{Renderer: tr.Renderer}
	format := output.FormatTable

	handleDotCommand(context.Background(), cmdCtx, nil, nil, ".columns", &format)
	assert.Contains(t, tr.ErrorOutput(), "usage: .columns <table>")
}

func TestHandleDotCommand_Unknown(t *testing.T) {
	tr := clitest.NewTestRendererText()
	cmdCtx := &CommandContext{Renderer: tr.Renderer}
	format := output.FormatTable

	handleDotCommand(context.Background(), cmdCtx, nil, nil, ".frobnicate", &format)
	assert.Contains(t, tr.ErrorOutput(), "unknown command: .frobnicate")
}

func TestHandleDotCommand_Tables(t *testing.T) {
	gw := testutil.NewGatewayServer(t)

	adapter, err := dialect.ForDriver(core.DriverPostgres)
	require.NoError(t, err)
	gw.ScriptResult(adapter.ListTablesQuery(), &core.QueryResult{
		Columns: []string{"name"},
		Rows:    []core.Row{{"name": "orders"}, {"name": "customers"}},
	})

	tr := clitest.NewTestRendererText()
	cmdCtx := &CommandContext{
		Renderer: tr.Renderer,
		Logger:   testutil.NewTestLogger(t),
		Gateway:  gateway.New(gw.URL()),
	}
	in := schema.New(cmdCtx.Gateway, cmdCtx.Logger)
	format := output.FormatTable

	done := handleDotCommand(context.Background(), cmdCtx, in, testSQLConnection(), ".tables", &format)
	assert.False(t, done)
	assert.Contains(t, tr.Output(), "orders")
	assert.Contains(t, tr.Output(), "(2 tables)")
}

func TestHandleDotCommand_TablesError(t *testing.T) {
	gw := testutil.NewGatewayServer(t)

	adapter, err := dialect.ForDriver(core.DriverPostgres)
	require.NoError(t, err)
	gw.ScriptError(adapter.ListTablesQuery(), 502, "backend unreachable")

	tr := clitest.NewTestRendererText()
	cmdCtx := &CommandContext{
		Renderer: tr.Renderer,
		Logger:   testutil.NewTestLogger(t),
		Gateway:  gateway.New(gw.URL()),
	}
	in := schema.New(cmdCtx.Gateway, cmdCtx.Logger)
	format := output.FormatTable

	done := handleDotCommand(context.Background(), cmdCtx, in, testSQLConnection(), ".tables", &format)
	assert.False(t, done)
	assert.Contains(t, tr.ErrorOutput(), "backend unreachable")
}
