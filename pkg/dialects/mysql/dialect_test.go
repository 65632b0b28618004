package mysql

import (
	"testing"

	"github.com/quarrylabs/quarry/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectAllQuery(t *testing.T) {
	d := New()

	assert.Equal(t, "SELECT * FROM `orders` LIMIT 50", d.SelectAllQuery("orders", 50))
	assert.Equal(t, "SELECT * FROM `orders`", d.SelectAllQuery("orders", 0))
}

func TestModifyDSNForDatabase(t *testing.T) {
	d := New()

	tests := []struct {
		name     string
		dsn      string
		database string
		want     string
	}{
		{
			name:     "tcp dsn",
			dsn:      "user:pass@tcp(host:3306)/db1",
			database: "db2",
			want:     "user:pass@tcp(host:3306)/db2",
		},
		{
			name:     "dsn with params",
			dsn:      "user:pass@tcp(host:3306)/db1?parseTime=true&loc=UTC",
			database: "db2",
			want:     "user:pass@tcp(host:3306)/db2?parseTime=true&loc=UTC",
		},
		{
			name:     "no slash unchanged",
			dsn:      "user:pass@tcp(host:3306)",
			database: "db2",
			want:     "user:pass@tcp(host:3306)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.ModifyDSNForDatabase(tt.dsn, tt.database))
		})
	}
}

func TestParseColumns(t *testing.T) {
	d := New()

	rows := []core.Row{
		{"Field": "id", "Type": "int", "Null": "NO", "Key": "PRI", "Default": nil, "Extra": "auto_increment"},
		{"Field": "email", "Type": "varchar(255)", "Null": "YES", "Key": "", "Default": nil, "Extra": ""},
		{"Field": "org_id", "Type": "int", "Null": "NO", "Key": "MUL", "Default": nil, "Extra": ""},
	}

	cols := d.ParseColumns(rows)
	require.Len(t, cols, 3)
	assert.Equal(t, core.ColumnInfo{Name: "id", Type: "int", Nullable: false, PrimaryKey: true}, cols[0])
	assert.Equal(t, core.ColumnInfo{Name: "email", Type: "varchar(255)", Nullable: true, PrimaryKey: false}, cols[1])
	assert.Equal(t, core.ColumnInfo{Name: "org_id", Type: "int", Nullable: false, PrimaryKey: false}, cols[2],
		"MUL key is an index, not a primary key")
}

func TestParseTableNames(t *testing.T) {
	d := New()

	rows := []core.Row{
		{"Tables_in_shop": "orders"},
		{"Tables_in_shop": "users"},
	}

	assert.Equal(t, []string{"orders", "users"}, d.ParseTableNames(rows))
}

func TestParseDatabaseNames(t *testing.T) {
	d := New()

	rows := []core.Row{
		{"Database": "information_schema"},
		{"Database": "shop"},
	}

	assert.Equal(t, []string{"information_schema", "shop"}, d.ParseDatabaseNames(rows))
}

func TestCatalogQueries(t *testing.T) {
	d := New()

	assert.Equal(t, "SHOW DATABASES", d.ListDatabasesQuery())
	assert.Equal(t, "SHOW TABLES", d.ListTablesQuery())
	assert.Equal(t, "DESCRIBE `users`", d.ListColumnsQuery("users"))

	q, ok := d.ListIndexesQuery("users")
	require.True(t, ok)
	assert.Equal(t, "SHOW INDEX FROM `users`", q)
}

func TestCreateDatabaseQuery(t *testing.T) {
	d := New()

	q, ok := d.CreateDatabaseQuery("analytics")
	require.True(t, ok)
	assert.Equal(t, "CREATE DATABASE `analytics`", q)
}
