package commands

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/quarrylabs/quarry/internal/cli/output"
	"github.com/quarrylabs/quarry/pkg/core"
)

// renderNameList prints a flat name listing (databases, tables).
func renderNameList(r *output.Renderer, label string, names []string) error {
	if r.EffectiveMode() == output.ModeJSON {
		if names == nil {
			names = []string{}
		}
		return r.JSON(map[string][]string{label: names})
	}

	if len(names) == 0 {
		r.Printf("No %s found.\n", label)
		return nil
	}

	for _, name := range names {
		if r.EffectiveMode() == output.ModeMarkdown {
			r.Println("- " + name)
		} else {
			r.Println(name)
		}
	}

	if r.EffectiveMode() != output.ModeMarkdown {
		label = strings.TrimSuffix(label, "s")
		if len(names) != 1 {
			label += "s"
		}
		r.Println(r.Styles().Muted.Render(fmt.Sprintf("(%d %s)", len(names), label)))
	}
	return nil
}

// renderColumns prints one table's column listing.
func renderColumns(r *output.Renderer, cols []core.ColumnInfo) error {
	if r.EffectiveMode() == output.ModeJSON {
		if cols == nil {
			cols = []core.ColumnInfo{}
		}
		return r.JSON(cols)
	}

	if len(cols) == 0 {
		r.Println("No columns found.")
		return nil
	}

	renderColumnTable(r, cols)

	if r.EffectiveMode() != output.ModeMarkdown {
		label := fmt.Sprintf("(%d columns)", len(cols))
		if len(cols) == 1 {
			label = "(1 column)"
		}
		r.Println(r.Styles().Muted.Render(label))
	}
	return nil
}

func renderColumnTable(r *output.Renderer, cols []core.ColumnInfo) {
	t := table.NewWriter()
	t.SetOutputMirror(r.Out())
	t.AppendHeader(table.Row{"column", "type", "nullable", "key"})
	for _, c := range cols {
		nullable := "no"
		if c.Nullable {
			nullable = "yes"
		}
		key := ""
		if c.PrimaryKey {
			key = "PK"
		}
		t.AppendRow(table.Row{c.Name, c.Type, nullable, key})
	}

	if r.EffectiveMode() == output.ModeMarkdown {
		t.Style().Format.Header = text.FormatDefault
		t.RenderMarkdown()
		return
	}
	t.SetStyle(table.StyleLight)
	t.Render()
}

// renderSchema prints a full database snapshot, one section per table.
func renderSchema(r *output.Renderer, connectionID string, ds *core.DatabaseSchema) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(ds)
	}

	target := ds.Database
	if target == "" {
		target = connectionID
	}
	r.Header(1, "Schema: "+target)
	r.Println("")

	if len(ds.Tables) == 0 {
		r.Println("No tables found.")
		return nil
	}

	for _, tbl := range ds.Tables {
		if r.EffectiveMode() == output.ModeMarkdown {
			r.Println(output.FormatHeader(2, tbl))
			r.Println("")
		} else {
			r.Println(r.Styles().Identifier.Render(tbl))
		}

		cols := ds.Columns[tbl]
		if len(cols) == 0 {
			r.Println(r.Styles().Muted.Render("  (columns not introspected)"))
			r.Println("")
			continue
		}
		renderColumnTable(r, cols)
		r.Println("")
	}
	return nil
}
