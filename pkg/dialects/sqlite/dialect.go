// Package sqlite provides the SQLite dialect definition.
// This package is pure Go with no database driver dependencies.
package sqlite

import (
	"fmt"

	"github.com/quarrylabs/quarry/pkg/core"
	"github.com/quarrylabs/quarry/pkg/dialect"
)

// Dialect implements dialect.Adapter for SQLite.
type Dialect struct {
	dialect.Base
}

// New creates the SQLite dialect.
func New() *Dialect {
	return &Dialect{Base: dialect.NewBase(core.DriverSQLite, dialect.QuoteDouble)}
}

// ListDatabasesQuery returns a literal single row: a SQLite file is one
// database named main.
func (d *Dialect) ListDatabasesQuery() string {
	return "SELECT 'main' AS name"
}

// ListTablesQuery enumerates user tables, skipping SQLite's own bookkeeping.
func (d *Dialect) ListTablesQuery() string {
	return `SELECT name FROM sqlite_master
WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
ORDER BY name`
}

// ListColumnsQuery describes a table via PRAGMA table_info.
func (d *Dialect) ListColumnsQuery(table string) string {
	return fmt.Sprintf("PRAGMA table_info(%s)", d.QuoteIdentifier(table))
}

// SelectAllQuery reads a table capped with LIMIT.
func (d *Dialect) SelectAllQuery(table string, limit int) string {
	q := fmt.Sprintf("SELECT * FROM %s", d.QuoteIdentifier(table))
	if limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", limit)
	}
	return q
}

// CreateDatabaseQuery reports no support: a SQLite database is a file, not
// a statement.
func (d *Dialect) CreateDatabaseQuery(string) (string, bool) {
	return "", false
}

// ModifyDSNForDatabase returns dsn unchanged; the file path is the database.
func (d *Dialect) ModifyDSNForDatabase(dsn, _ string) string {
	return dsn
}

// ParseDatabaseNames extracts the literal "main" row.
func (d *Dialect) ParseDatabaseNames(rows []core.Row) []string {
	return dialect.ParseNames(rows, "name")
}

// ParseTableNames extracts names from sqlite_master rows.
func (d *Dialect) ParseTableNames(rows []core.Row) []string {
	return dialect.ParseNames(rows, "name")
}

// ParseColumns normalizes PRAGMA table_info rows: notnull inverts into
// Nullable, pk > 0 flags primary key membership.
func (d *Dialect) ParseColumns(rows []core.Row) []core.ColumnInfo {
	cols := make([]core.ColumnInfo, 0, len(rows))
	for _, row := range rows {
		name := dialect.StringField(row, "name")
		if name == "" {
			continue
		}
		cols = append(cols, core.ColumnInfo{
			Name:       name,
			Type:       dialect.StringField(row, "type"),
			Nullable:   !dialect.BoolField(row, "notnull"),
			PrimaryKey: dialect.BoolField(row, "pk"),
		})
	}
	return cols
}

// ListIndexesQuery lists indexes via PRAGMA index_list.
func (d *Dialect) ListIndexesQuery(table string) (string, bool) {
	return fmt.Sprintf("PRAGMA index_list(%s)", d.QuoteIdentifier(table)), true
}

// SupportedViews: records, columns and indexes. SQLite exposes constraint
// details only through SQL text in sqlite_master, so the structured
// constraint and foreign key views stay unsupported.
func (d *Dialect) SupportedViews() core.TableViews {
	return core.TableViews{
		core.ViewRecords,
		core.ViewColumns,
		core.ViewIndexes,
	}
}

// Ensure Dialect implements the adapter contract.
var _ dialect.Adapter = (*Dialect)(nil)
