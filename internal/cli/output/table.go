package output

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/quarrylabs/quarry/pkg/core"
)

// Format selects how a result set is rendered.
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
)

// ParseFormat validates a result format name.
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case FormatTable, FormatJSON, FormatCSV, FormatMarkdown:
		return Format(name), nil
	}
	return "", fmt.Errorf("unknown result format %q (expected table, json, csv, or md)", name)
}

// Result writes a query result in the requested format. Write results
// without a column set render as a row count.
func (r *Renderer) Result(res *core.QueryResult, format Format) error {
	if format == FormatJSON {
		return r.JSON(res)
	}
	if len(res.Columns) == 0 {
		r.Printf("(%d rows affected)\n", res.RowsAffected)
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.out)

	header := make(table.Row, 0, len(res.Columns))
	for _, col := range res.Columns {
		header = append(header, col)
	}
	t.AppendHeader(header)

	for _, row := range res.Rows {
		cells := make(table.Row, 0, len(res.Columns))
		for _, col := range res.Columns {
			cells = append(cells, formatCell(row[col]))
		}
		t.AppendRow(cells)
	}

	switch format {
	case FormatCSV:
		// Machine formats keep the exact column names; the default table
		// style upper-cases headers.
		t.Style().Format.Header = text.FormatDefault
		t.RenderCSV()
	case FormatMarkdown:
		t.Style().Format.Header = text.FormatDefault
		t.RenderMarkdown()
	default:
		t.SetStyle(table.StyleLight)
		t.Render()
		r.Println(r.styles.Muted.Render(rowCountLabel(len(res.Rows))))
	}
	return nil
}

func rowCountLabel(n int) string {
	if n == 1 {
		return "(1 row)"
	}
	return fmt.Sprintf("(%d rows)", n)
}

// formatCell renders a single result value. JSON transport delivers all
// numbers as float64, so integers are recovered without an exponent.
func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprintf("%v", x)
	}
}
