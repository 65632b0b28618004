// Package oracle provides the Oracle dialect definition.
// This package is pure Go with no database driver dependencies.
package oracle

import (
	"fmt"

	"github.com/quarrylabs/quarry/pkg/core"
	"github.com/quarrylabs/quarry/pkg/dialect"
)

// Dialect implements dialect.Adapter for Oracle.
type Dialect struct {
	dialect.Base
}

// New creates the Oracle dialect.
func New() *Dialect {
	return &Dialect{Base: dialect.NewBase(core.DriverOracle, dialect.QuoteDouble)}
}

// ListDatabasesQuery enumerates schemas; Oracle has no database list in the
// Postgres sense, so users stand in for databases.
func (d *Dialect) ListDatabasesQuery() string {
	return "SELECT username AS name FROM all_users ORDER BY username"
}

// ListTablesQuery enumerates tables owned by the current user, filtering
// out the recycle bin and the internal tables Oracle plants in user schemas.
func (d *Dialect) ListTablesQuery() string {
	return `SELECT table_name AS name FROM user_tables
WHERE table_name NOT LIKE 'LOGMNR%'
  AND table_name NOT LIKE 'AQ$%'
  AND table_name NOT LIKE 'DEF$%'
  AND table_name NOT LIKE 'MVIEW%'
  AND table_name NOT LIKE 'REPCAT%'
  AND table_name NOT LIKE 'OL$%'
  AND table_name NOT LIKE 'SQLPLUS%'
  AND table_name NOT LIKE 'BIN$%'
ORDER BY table_name`
}

// ListColumnsQuery describes one table's columns. Catalog names are stored
// uppercase, so the table literal is compared through UPPER.
func (d *Dialect) ListColumnsQuery(table string) string {
	lit := dialect.QuoteLiteral(table)
	return fmt.Sprintf(`SELECT
	c.column_name AS name,
	c.data_type AS type,
	CASE WHEN c.nullable = 'Y' THEN 1 ELSE 0 END AS nullable,
	CASE WHEN pk.column_name IS NOT NULL THEN 1 ELSE 0 END AS primary_key
FROM user_tab_columns c
LEFT JOIN (
	SELECT cc.column_name
	FROM user_cons_columns cc
	JOIN user_constraints uc ON cc.constraint_name = uc.constraint_name
	WHERE uc.constraint_type = 'P' AND uc.table_name = UPPER(%s)
) pk ON c.column_name = pk.column_name
WHERE c.table_name = UPPER(%s)
ORDER BY c.column_id`, lit, lit)
}

// SelectAllQuery reads a table using the 12c+ row limiting clause.
func (d *Dialect) SelectAllQuery(table string, limit int) string {
	if limit > 0 {
		return fmt.Sprintf("SELECT * FROM %s FETCH FIRST %d ROWS ONLY", d.QuoteIdentifier(table), limit)
	}
	return fmt.Sprintf("SELECT * FROM %s", d.QuoteIdentifier(table))
}

// CreateDatabaseQuery reports no support; creating an Oracle database is a
// DBA operation, not a statement a client should issue.
func (d *Dialect) CreateDatabaseQuery(name string) (string, bool) {
	return "", false
}

// ModifyDSNForDatabase returns the DSN unchanged. Oracle connections bind
// to a service, and the schema in play follows the authenticated user.
func (d *Dialect) ModifyDSNForDatabase(dsn, database string) string {
	return dsn
}

// ParseDatabaseNames extracts schema names from all_users rows.
func (d *Dialect) ParseDatabaseNames(rows []core.Row) []string {
	return dialect.ParseNames(rows, "name")
}

// ParseTableNames extracts names from user_tables rows.
func (d *Dialect) ParseTableNames(rows []core.Row) []string {
	return dialect.ParseNames(rows, "name")
}

// ParseColumns normalizes ListColumnsQuery rows. Oracle uppercases unquoted
// column aliases, which the case-insensitive field lookup absorbs.
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

// ListConstraintsQuery lists constraints from user_constraints.
func (d *Dialect) ListConstraintsQuery(table string) (string, bool) {
	return fmt.Sprintf(`SELECT constraint_name AS name, constraint_type AS type
FROM user_constraints
WHERE table_name = UPPER(%s)
ORDER BY constraint_name`, dialect.QuoteLiteral(table)), true
}

// ListForeignKeysQuery lists foreign keys with their referenced side.
func (d *Dialect) ListForeignKeysQuery(table string) (string, bool) {
	return fmt.Sprintf(`SELECT
	uc.constraint_name AS name,
	cc.column_name AS column_name,
	rc.table_name AS referenced_table,
	rcc.column_name AS referenced_column
FROM user_constraints uc
JOIN user_cons_columns cc ON uc.constraint_name = cc.constraint_name
JOIN user_constraints rc ON uc.r_constraint_name = rc.constraint_name
JOIN user_cons_columns rcc ON rc.constraint_name = rcc.constraint_name
WHERE uc.constraint_type = 'R' AND uc.table_name = UPPER(%s)
ORDER BY uc.constraint_name`, dialect.QuoteLiteral(table)), true
}

// ListIndexesQuery lists indexes from user_indexes.
func (d *Dialect) ListIndexesQuery(table string) (string, bool) {
	return fmt.Sprintf(`SELECT index_name AS name, index_type AS type, uniqueness AS is_unique
FROM user_indexes
WHERE table_name = UPPER(%s)
ORDER BY index_name`, dialect.QuoteLiteral(table)), true
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
