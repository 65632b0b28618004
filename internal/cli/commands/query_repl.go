package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/quarrylabs/quarry/internal/cli/output"
	"github.com/quarrylabs/quarry/pkg/core"
	"github.com/quarrylabs/quarry/pkg/schema"
)

const (
	replPrompt             = "quarry> "
	replContinuationPrompt = "   ...> "
)

func runQueryREPL(cmd *cobra.Command, cmdCtx *CommandContext, conn *core.Connection, format output.Format) error {
	ctx := cmd.Context()
	r := cmdCtx.Renderer

	store, cleanup, err := openHistory(cmdCtx.Cfg, cmdCtx.Logger)
	if err != nil {
		cmdCtx.Logger.Warn("query history disabled", "error", err)
		store = nil
	} else {
		defer cleanup()
	}

	in := schema.New(cmdCtx.Gateway, cmdCtx.Logger)

	// Readline history lives next to the history database
	historyFile := filepath.Join(filepath.Dir(cmdCtx.Cfg.HistoryPath), "query_history")

	completer := newTableCompleter(ctx, in, conn)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     historyFile,
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize interactive session: %w", err)
	}
	defer func() { _ = rl.Close() }()

	r.Printf("Quarry interactive session (connection: %s, driver: %s)\n", conn.ID, conn.SQL.Driver)
	r.Println("Type .help for commands, .quit to exit")
	r.Println("")

	var multiLineBuffer strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			multiLineBuffer.Reset()
			rl.SetPrompt(replPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		// Dot-commands only apply outside a multi-line statement
		if multiLineBuffer.Len() == 0 && strings.HasPrefix(line, ".") {
			if quit := handleDotCommand(ctx, cmdCtx, in, conn, line, &format); quit {
				break
			}
			continue
		}

		// Accumulate multi-line SQL until semicolon
		multiLineBuffer.WriteString(line)
		if !strings.HasSuffix(line, ";") {
			multiLineBuffer.WriteString(" ")
			rl.SetPrompt(replContinuationPrompt)
			continue
		}
		rl.SetPrompt(replPrompt)

		query := strings.TrimSuffix(multiLineBuffer.String(), ";")
		multiLineBuffer.Reset()

		if err := executeStatement(ctx, cmdCtx, store, conn, query, format); err != nil {
			r.Error(err.Error())
		}
		r.Println("")
	}

	return nil
}

// handleDotCommand runs one REPL dot-command. It returns true when the
// session should end.
func handleDotCommand(ctx context.Context, cmdCtx *CommandContext, in *schema.Introspector, conn *core.Connection, line string, format *output.Format) bool {
	r := cmdCtx.Renderer
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(r)

	case ".tables":
		tables, err := in.ListTables(ctx, conn, "")
		if err != nil {
			r.Error(err.Error())
			break
		}
		_ = renderNameList(r, "tables", tables)

	case ".databases":
		databases, err := in.ListDatabases(ctx, conn)
		if err != nil {
			r.Error(err.Error())
			break
		}
		_ = renderNameList(r, "databases", databases)

	case ".columns":
		if len(parts) < 2 {
			r.Error("usage: .columns <table>")
			break
		}
		cols, err := in.ListColumns(ctx, conn, "", parts[1])
		if err != nil {
			r.Error(err.Error())
			break
		}
		_ = renderColumns(r, cols)

	case ".format":
		if len(parts) < 2 {
			r.Printf("format: %s\n", *format)
			break
		}
		f, err := output.ParseFormat(parts[1])
		if err != nil {
			r.Error(err.Error())
			break
		}
		*format = f
		r.Printf("format set to %s\n", f)

	case ".clear":
		r.Printf("\033[H\033[2J")

	default:
		r.Error(fmt.Sprintf("unknown command: %s (type .help for commands)", command))
	}

	return false
}

func printREPLHelp(r *output.Renderer) {
	help := `
Commands:
  .help             Show this help message
  .tables           List tables in the current database
  .databases        List databases on the connection
  .columns <table>  Show columns for a table
  .format [fmt]     Show or set the result format (table, json, csv, md)
  .clear            Clear the screen
  .quit / .exit     Exit the session

Tips:
  - SQL statements must end with a semicolon (;)
  - Reads route to the query endpoint, writes to execute
  - Use arrow keys for history, tab for completion
`
	r.Println(help)
}

// newTableCompleter creates a readline completer from the connection's
// tables. Introspection failure degrades to dot-command completion only.
func newTableCompleter(ctx context.Context, in *schema.Introspector, conn *core.Connection) *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface

	tables, err := in.ListTables(ctx, conn, "")
	if err == nil {
		tableItems := make([]readline.PrefixCompleterInterface, 0, len(tables))
		for _, t := range tables {
			items = append(items, readline.PcItem(t))
			tableItems = append(tableItems, readline.PcItem(t))
		}
		items = append(items, readline.PcItem(".columns", tableItems...))
	} else {
		items = append(items, readline.PcItem(".columns"))
	}

	items = append(items,
		readline.PcItem(".help"),
		readline.PcItem(".tables"),
		readline.PcItem(".databases"),
		readline.PcItem(".format",
			readline.PcItem("table"),
			readline.PcItem("json"),
			readline.PcItem("csv"),
			readline.PcItem("md"),
		),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)

	return readline.NewPrefixCompleter(items...)
}
