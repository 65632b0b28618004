// Package postgres provides the PostgreSQL dialect definition.
// This package is pure Go with no database driver dependencies; it
// generates catalog SQL and normalizes result rows, nothing else.
package postgres

import (
	"fmt"
	"net/url"

	"github.com/quarrylabs/quarry/pkg/core"
	"github.com/quarrylabs/quarry/pkg/dialect"
)

// Dialect implements dialect.Adapter for PostgreSQL.
type Dialect struct {
	dialect.Base
}

// New creates the PostgreSQL dialect.
func New() *Dialect {
	return &Dialect{Base: dialect.NewBase(core.DriverPostgres, dialect.QuoteDouble)}
}

// ListDatabasesQuery enumerates non-template databases.
func (d *Dialect) ListDatabasesQuery() string {
	return `SELECT datname AS name FROM pg_database WHERE datistemplate = false ORDER BY datname`
}

// ListTablesQuery enumerates base tables in the public schema.
func (d *Dialect) ListTablesQuery() string {
	return `SELECT table_name AS name
FROM information_schema.tables
WHERE table_schema = 'public' AND table_type = 'BASE TABLE'
ORDER BY table_name`
}

// ListColumnsQuery describes one table's columns with primary key flags.
// Aliases match the canonical shape: name, type, nullable, primary_key.
func (d *Dialect) ListColumnsQuery(table string) string {
	lit := dialect.QuoteLiteral(table)
	return fmt.Sprintf(`SELECT
	c.column_name AS name,
	c.data_type AS type,
	c.is_nullable = 'YES' AS nullable,
	pk.column_name IS NOT NULL AS primary_key
FROM information_schema.columns c
LEFT JOIN (
	SELECT kcu.column_name
	FROM information_schema.table_constraints tc
	JOIN information_schema.key_column_usage kcu
		ON tc.constraint_name = kcu.constraint_name
		AND tc.table_schema = kcu.table_schema
	WHERE tc.constraint_type = 'PRIMARY KEY'
		AND tc.table_schema = 'public'
		AND tc.table_name = %s
) pk ON c.column_name = pk.column_name
WHERE c.table_schema = 'public' AND c.table_name = %s
ORDER BY c.ordinal_position`, lit, lit)
}

// SelectAllQuery reads a table capped with LIMIT.
func (d *Dialect) SelectAllQuery(table string, limit int) string {
	q := fmt.Sprintf("SELECT * FROM %s", d.QuoteIdentifier(table))
	if limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", limit)
	}
	return q
}

// CreateDatabaseQuery builds CREATE DATABASE.
func (d *Dialect) CreateDatabaseQuery(name string) (string, bool) {
	return fmt.Sprintf("CREATE DATABASE %s", d.QuoteIdentifier(name)), true
}

// ModifyDSNForDatabase retargets a postgres:// URL at another database by
// rewriting the path. Non-URL DSNs are returned unchanged.
func (d *Dialect) ModifyDSNForDatabase(dsn, database string) string {
	u, err := url.Parse(dsn)
	if err != nil || (u.Scheme != "postgres" && u.Scheme != "postgresql") {
		return dsn
	}
	u.Path = "/" + database
	return u.String()
}

// ParseDatabaseNames extracts names from ListDatabasesQuery rows.
func (d *Dialect) ParseDatabaseNames(rows []core.Row) []string {
	return dialect.ParseNames(rows, "name")
}

// ParseTableNames extracts names from ListTablesQuery rows.
func (d *Dialect) ParseTableNames(rows []core.Row) []string {
	return dialect.ParseNames(rows, "name")
}

// ParseColumns normalizes ListColumnsQuery rows.
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
			Nullable:   dialect.BoolField(row, "nullable"),
			PrimaryKey: dialect.BoolField(row, "primary_key"),
		})
	}
	return cols
}

// ListConstraintsQuery lists all constraints on a table.
func (d *Dialect) ListConstraintsQuery(table string) (string, bool) {
	return fmt.Sprintf(`SELECT
	tc.constraint_name AS name,
	tc.constraint_type AS type,
	kcu.column_name AS column_name
FROM information_schema.table_constraints tc
LEFT JOIN information_schema.key_column_usage kcu
	ON tc.constraint_name = kcu.constraint_name
	AND tc.table_schema = kcu.table_schema
WHERE tc.table_schema = 'public' AND tc.table_name = %s
ORDER BY tc.constraint_name`, dialect.QuoteLiteral(table)), true
}

// ListForeignKeysQuery lists foreign keys with their referenced side.
func (d *Dialect) ListForeignKeysQuery(table string) (string, bool) {
	return fmt.Sprintf(`SELECT
	tc.constraint_name AS name,
	kcu.column_name AS column_name,
	ccu.table_name AS referenced_table,
	ccu.column_name AS referenced_column
FROM information_schema.table_constraints tc
JOIN information_schema.key_column_usage kcu
	ON tc.constraint_name = kcu.constraint_name
	AND tc.table_schema = kcu.table_schema
JOIN information_schema.constraint_column_usage ccu
	ON tc.constraint_name = ccu.constraint_name
	AND tc.table_schema = ccu.table_schema
WHERE tc.constraint_type = 'FOREIGN KEY'
	AND tc.table_schema = 'public'
	AND tc.table_name = %s
ORDER BY tc.constraint_name`, dialect.QuoteLiteral(table)), true
}

// ListIndexesQuery lists indexes with their definitions.
func (d *Dialect) ListIndexesQuery(table string) (string, bool) {
	return fmt.Sprintf(`SELECT indexname AS name, indexdef AS definition
FROM pg_indexes
WHERE schemaname = 'public' AND tablename = %s
ORDER BY indexname`, dialect.QuoteLiteral(table)), true
}

// SupportedViews reports full catalog support.
func (d *Dialect) SupportedViews() core.TableViews {
	return core.TableViews{
		core.ViewRecords,
		core.ViewColumns,
		core.ViewConstraints,
		core.ViewForeignKeys,
		core.ViewIndexes,
	}
}

// Ensure Dialect implements the adapter contract.
var _ dialect.Adapter = (*Dialect)(nil)
