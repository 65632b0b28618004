package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrylabs/quarry/pkg/core"
)

func newTestRenderer(mode Mode) (*Renderer, *bytes.Buffer, *bytes.Buffer) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return NewRenderer(out, errOut, mode), out, errOut
}

func TestEffectiveMode(t *testing.T) {
	tests := []struct {
		name string
		mode Mode
		want Mode
	}{
		{name: "auto falls back to markdown without a terminal", mode: ModeAuto, want: ModeMarkdown},
		{name: "empty mode is treated as auto", mode: Mode(""), want: ModeMarkdown},
		{name: "text passes through", mode: ModeText, want: ModeText},
		{name: "json passes through", mode: ModeJSON, want: ModeJSON},
		{name: "markdown passes through", mode: ModeMarkdown, want: ModeMarkdown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, _ := newTestRenderer(tt.mode)
			assert.Equal(t, tt.want, r.EffectiveMode())
		})
	}
}

func TestPrintlnAndPrintf(t *testing.T) {
	r, out, _ := newTestRenderer(ModeText)

	r.Println("hello")
	r.Printf("%d connections\n", 3)

	assert.Equal(t, "hello\n3 connections\n", out.String())
}

func TestSuccessWithoutTerminal(t *testing.T) {
	r, out, _ := newTestRenderer(ModeAuto)

	r.Success("connection saved")

	assert.Equal(t, "connection saved\n", out.String())
}

func TestSuccessInTextMode(t *testing.T) {
	r, out, _ := newTestRenderer(ModeText)

	r.Success("connection saved")

	assert.Equal(t, "✓ connection saved\n", out.String())
}

func TestWarningAndErrorGoToErrorStream(t *testing.T) {
	r, out, errOut := newTestRenderer(ModeText)

	r.Warning("no connections configured")
	r.Error("backend unreachable")

	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "! no connections configured")
	assert.Contains(t, errOut.String(), "✗ backend unreachable")
}

func TestJSON(t *testing.T) {
	r, out, _ := newTestRenderer(ModeJSON)

	require.NoError(t, r.JSON(map[string]int{"tables": 4}))

	var decoded map[string]int
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, 4, decoded["tables"])
	assert.Contains(t, out.String(), "  \"tables\"")
}

func TestHeaderByMode(t *testing.T) {
	r, out, _ := newTestRenderer(ModeMarkdown)
	r.Header(2, "Containers")
	assert.Equal(t, "## Containers\n", out.String())

	r, out, _ = newTestRenderer(ModeText)
	r.Header(1, "Containers")
	assert.Equal(t, "Containers\n", out.String())
}

func TestStatusLine(t *testing.T) {
	r, out, _ := newTestRenderer(ModeText)

	r.StatusLine("quarry.yaml", "success", "")
	r.StatusLine("dsn", "failed", "connection refused")
	r.StatusLine("params", "warn", "")

	got := out.String()
	assert.Contains(t, got, "✓ quarry.yaml")
	assert.Contains(t, got, "✗ dsn connection refused")
	assert.Contains(t, got, "! params")
}

func TestStylesPlainWithoutTerminal(t *testing.T) {
	r, _, _ := newTestRenderer(ModeText)
	styles := r.Styles()

	assert.Equal(t, "header", styles.Header1.Render("header"))
	assert.Equal(t, "✓", styles.StatusSuccess.String())
	assert.Equal(t, "✗", styles.StatusFailed.String())
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "# Tables", FormatHeader(1, "Tables"))
	assert.Equal(t, "## users", FormatHeader(2, "users"))
	assert.Equal(t, "- **Driver**: postgres", FormatKeyValue("Driver", "postgres"))
	assert.Equal(t, "```sql\nSELECT 1\n```", FormatCodeBlock("sql", "SELECT 1\n"))
}

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"table", "json", "csv", "md"} {
		got, err := ParseFormat(name)
		require.NoError(t, err)
		assert.Equal(t, Format(name), got)
	}

	_, err := ParseFormat("yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown result format")
}

func queryResultFixture() *core.QueryResult {
	return &core.QueryResult{
		Columns: []string{"id", "name"},
		Rows: []core.Row{
			{"id": float64(1), "name": "ada"},
			{"id": float64(2), "name": "grace"},
		},
	}
}

func TestResultTable(t *testing.T) {
	r, out, _ := newTestRenderer(ModeText)

	require.NoError(t, r.Result(queryResultFixture(), FormatTable))

	got := out.String()
	assert.Contains(t, got, "NAME")
	assert.Contains(t, got, "ada")
	assert.Contains(t, got, "grace")
	assert.Contains(t, got, "(2 rows)")
}

func TestResultTableSingleRow(t *testing.T) {
	r, out, _ := newTestRenderer(ModeText)

	res := &core.QueryResult{
		Columns: []string{"n"},
		Rows:    []core.Row{{"n": float64(1)}},
	}
	require.NoError(t, r.Result(res, FormatTable))

	assert.Contains(t, out.String(), "(1 row)")
}

func TestResultCSV(t *testing.T) {
	r, out, _ := newTestRenderer(ModeText)

	require.NoError(t, r.Result(queryResultFixture(), FormatCSV))

	got := out.String()
	assert.Contains(t, got, "id,name")
	assert.Contains(t, got, "1,ada")
	assert.Contains(t, got, "2,grace")
}

func TestResultMarkdown(t *testing.T) {
	r, out, _ := newTestRenderer(ModeText)

	require.NoError(t, r.Result(queryResultFixture(), FormatMarkdown))

	got := out.String()
	assert.Contains(t, got, "| id | name |")
	assert.Contains(t, got, "| 1 | ada |")
}

func TestResultJSON(t *testing.T) {
	r, out, _ := newTestRenderer(ModeJSON)

	require.NoError(t, r.Result(queryResultFixture(), FormatJSON))

	var decoded core.QueryResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, []string{"id", "name"}, decoded.Columns)
	assert.Len(t, decoded.Rows, 2)
}

func TestResultWriteOnly(t *testing.T) {
	r, out, _ := newTestRenderer(ModeText)

	require.NoError(t, r.Result(&core.QueryResult{RowsAffected: 3}, FormatTable))

	assert.Equal(t, "(3 rows affected)\n", out.String())
}

func TestFormatCell(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{name: "nil", in: nil, want: "NULL"},
		{name: "string", in: "ada", want: "ada"},
		{name: "integer valued float", in: float64(42), want: "42"},
		{name: "fractional float", in: 1.5, want: "1.5"},
		{name: "bool", in: true, want: "true"},
		{name: "int", in: 7, want: "7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatCell(tt.in))
		})
	}
}

func TestSpinnerWithoutTerminal(t *testing.T) {
	r, _, errOut := newTestRenderer(ModeText)

	sp := r.NewSpinner("uploading")
	sp.Start()
	sp.Success("uploaded")
	sp.Success("ignored")

	lines := strings.Split(strings.TrimRight(errOut.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "uploading", lines[0])
	assert.Equal(t, "✓ uploaded", lines[1])
}

func TestSpinnerFail(t *testing.T) {
	r, _, errOut := newTestRenderer(ModeText)

	sp := r.NewSpinner("deleting")
	sp.Start()
	sp.Fail("delete failed")

	assert.Contains(t, errOut.String(), "✗ delete failed")
}
