package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrylabs/quarry/internal/cli/testutil"
	"github.com/quarrylabs/quarry/pkg/core"
)

func TestRenderNameList_Text(t *testing.T) {
	tr := testutil.NewTestRendererText()

	err := renderNameList(tr.Renderer, "tables", []string{"orders", "customers"})
	require.NoError(t, err)

	out := tr.Output()
	assert.Contains(t, out, "orders")
	assert.Contains(t, out, "customers")
	assert.Contains(t, out, "(2 tables)")
	testutil.AssertNoANSI(t, out)
}

func TestRenderNameList_Singular(t *testing.T) {
	tr := testutil.NewTestRendererText()

	err := renderNameList(tr.Renderer, "databases", []string{"main"})
	require.NoError(t, err)

	assert.Contains(t, tr.Output(), "(1 database)")
}

func TestRenderNameList_Empty(t *testing.T) {
	tr := testutil.NewTestRendererText()

	err := renderNameList(tr.Renderer, "databases", nil)
	require.NoError(t, err)

	assert.Contains(t, tr.Output(), "No databases found.")
}

func TestRenderNameList_Markdown(t *testing.T) {
	tr := testutil.NewTestRendererMarkdown()

	err := renderNameList(tr.Renderer, "tables", []string{"orders"})
	require.NoError(t, err)

	assert.Contains(t, tr.Output(), "- orders")
}

func TestRenderNameList_JSON(t *testing.T) {
	tr := testutil.NewTestRendererJSON()

	err := renderNameList(tr.Renderer, "tables", nil)
	require.NoError(t, err)

	// nil becomes an empty array, never null
	assert.Contains(t, tr.Output(), `"tables": []`)
}

func testColumns() []core.ColumnInfo {
	return []core.ColumnInfo{
		{Name: "id", Type: "bigint", Nullable: false, PrimaryKey: true},
		{Name: "email", Type: "text", Nullable: true},
	}
}

func TestRenderColumns_Text(t *testing.T) {
	tr := testutil.NewTestRendererText()

	err := renderColumns(tr.Renderer, testColumns())
	require.NoError(t, err)

	out := tr.Output()
	assert.Contains(t, out, "id")
	assert.Contains(t, out, "bigint")
	assert.Contains(t, out, "PK")
	assert.Contains(t, out, "(2 columns)")
}

func TestRenderColumns_Empty(t *testing.T) {
	tr := testutil.NewTestRendererText()

	err := renderColumns(tr.Renderer, nil)
	require.NoError(t, err)

	assert.Contains(t, tr.Output(), "No columns found.")
}

func TestRenderColumns_Markdown(t *testing.T) {
	tr := testutil.NewTestRendererMarkdown()

	err := renderColumns(tr.Renderer, testColumns())
	require.NoError(t, err)

	out := tr.Output()
	assert.Contains(t, out, "| column | type | nullable | key |")
	assert.Contains(t, out, "| id | bigint | no | PK |")
}

func TestRenderColumns_JSON(t *testing.T) {
	tr := testutil.NewTestRendererJSON()

	err := renderColumns(tr.Renderer, testColumns())
	require.NoError(t, err)

	out := tr.Output()
	assert.Contains(t, out, `"name": "id"`)
	assert.Contains(t, out, `"primaryKey": true`)
}

func TestRenderSchema_Text(t *testing.T) {
	tr := testutil.NewTestRendererText()

	ds := &core.DatabaseSchema{
		Database: "analytics",
		Tables:   []string{"orders", "audit_log"},
		Columns: map[string][]core.ColumnInfo{
			"orders": testColumns(),
		},
	}

	err := renderSchema(tr.Renderer, "analytics-conn", ds)
	require.NoError(t, err)

	out := tr.Output()
	assert.Contains(t, out, "Schema: analytics")
	assert.Contains(t, out, "orders")
	assert.Contains(t, out, "audit_log")
	assert.Contains(t, out, "(columns not introspected)")
	testutil.AssertNoANSI(t, out)
}

func TestRenderSchema_FallsBackToConnectionID(t *testing.T) {
	tr := testutil.NewTestRendererText()

	ds := &core.DatabaseSchema{Tables: []string{}}

	err := renderSchema(tr.Renderer, "cachebox", ds)
	require.NoError(t, err)

	out := tr.Output()
	assert.Contains(t, out, "Schema: cachebox")
	assert.Contains(t, out, "No tables found.")
}

func TestRenderSchema_JSON(t *testing.T) {
	tr := testutil.NewTestRendererJSON()

	ds := &core.DatabaseSchema{
		Database: "analytics",
		Tables:   []string{"orders"},
		Columns:  map[string][]core.ColumnInfo{"orders": testColumns()},
	}

	err := renderSchema(tr.Renderer, "analytics-conn", ds)
	require.NoError(t, err)

	out := tr.Output()
	assert.Contains(t, out, `"database": "analytics"`)
	assert.Contains(t, out, `"orders"`)
}
