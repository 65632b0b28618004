// Package main provides tests for the Quarry CLI.
package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/quarrylabs/quarry/internal/cli"
	"github.com/quarrylabs/quarry/internal/testutil"
	"github.com/quarrylabs/quarry/pkg/core"
)

// writeTestConfig writes a minimal quarry.yaml pointing at the given gateway
// and returns its path. History lands in the same temp directory.
func writeTestConfig(t *testing.T, gatewayURL string) string {
	t.Helper()
	dir := t.TempDir()
	cfg := fmt.Sprintf(`gateway_url: %s
connection: analytics
connections:
  - id: analytics
    name: Analytics Warehouse
    driver: postgres
    dsn: postgres://app@db:5432/analytics
`, gatewayURL)
	path := filepath.Join(dir, "quarry.yaml")
	if err := os.WriteFile(path, []byte(cfg), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestVersionCommand(t *testing.T) {
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"version"})

	err := cmd.Execute()
	if err != nil {
		t.Errorf("version command error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "Quarry") {
		t.Errorf("version output should contain 'Quarry', got: %s", output)
	}
}

func TestHelpCommand(t *testing.T) {
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--help"})

	err := cmd.Execute()
	if err != nil {
		t.Errorf("help command error = %v", err)
	}

	output := buf.String()
	expectedCommands := []string{"query", "exec", "connections", "databases", "tables", "columns", "schema", "storage", "history", "doctor", "init"}
	for _, expected := range expectedCommands {
		if !strings.Contains(output, expected) {
			t.Errorf("help output should contain '%s', got: %s", expected, output)
		}
	}
}

func TestCompletionCommand(t *testing.T) {
	shells := []string{"bash", "zsh", "fish", "powershell"}

	for _, shell := range shells {
		t.Run(shell, func(t *testing.T) {
			cmd := cli.NewRootCmd()
			buf := new(bytes.Buffer)
			cmd.SetOut(buf)
			cmd.SetErr(buf)
			cmd.SetArgs([]string{"completion", shell})

			err := cmd.Execute()
			if err != nil {
				t.Errorf("completion %s command error = %v", shell, err)
			}
		})
	}
}

func TestUnknownCommand(t *testing.T) {
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"unknown-command"})

	err := cmd.Execute()
	if err == nil {
		t.Error("unknown command should return an error")
	}
}

func TestQueryCommand(t *testing.T) {
	gw := testutil.NewGatewayServer(t)
	gw.ScriptResult("SELECT id, name FROM users", &core.QueryResult{
		Columns: []string{"id", "name"},
		Rows:    []core.Row{{"id": float64(1), "name": "ada"}},
	})

	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{
		"query", "SELECT id, name FROM users",
		"--config", writeTestConfig(t, gw.URL()),
		"--format", "csv",
	})

	err := cmd.Execute()
	if err != nil {
		t.Fatalf("query command error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "id,name") {
		t.Errorf("csv output should contain header 'id,name', got: %s", output)
	}
	if !strings.Contains(output, "1,ada") {
		t.Errorf("csv output should contain row '1,ada', got: %s", output)
	}
}

func TestConnectionsCommand(t *testing.T) {
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{
		"connections",
		"--config", writeTestConfig(t, "http://localhost:8080"),
	})

	err := cmd.Execute()
	if err != nil {
		t.Fatalf("connections command error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "analytics (default)") {
		t.Errorf("connections output should mark the default connection, got: %s", output)
	}
	if !strings.Contains(output, "postgres") {
		t.Errorf("connections output should contain the driver, got: %s", output)
	}
}

func TestMain(m *testing.M) {
	os.Exit(m.Run())
}
