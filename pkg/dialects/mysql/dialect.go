// Package mysql provides the MySQL dialect definition.
// This package is pure Go with no database driver dependencies.
package mysql

import (
	"fmt"
	"strings"

	"github.com/quarrylabs/quarry/pkg/core"
	"github.com/quarrylabs/quarry/pkg/dialect"
)

// Dialect implements dialect.Adapter for MySQL.
type Dialect struct {
	dialect.Base
}

// New creates the MySQL dialect.
func New() *Dialect {
	return &Dialect{Base: dialect.NewBase(core.DriverMySQL, dialect.QuoteBacktick)}
}

// ListDatabasesQuery enumerates databases.
func (d *Dialect) ListDatabasesQuery() string {
	return "SHOW DATABASES"
}

// ListTablesQuery enumerates tables in the current database.
func (d *Dialect) ListTablesQuery() string {
	return "SHOW TABLES"
}

// ListColumnsQuery describes a table. DESCRIBE yields the
// Field/Type/Null/Key/Default/Extra shape that ParseColumns normalizes.
func (d *Dialect) ListColumnsQuery(table string) string {
	return fmt.Sprintf("DESCRIBE %s", d.QuoteIdentifier(table))
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

// ModifyDSNForDatabase rewrites the database segment of a go-sql-driver DSN
// ("user:pass@tcp(host:3306)/db?params"): everything after the last slash up
// to the parameter list is the database name. DSNs without a slash are
// returned unchanged.
func (d *Dialect) ModifyDSNForDatabase(dsn, database string) string {
	slash := strings.LastIndex(dsn, "/")
	if slash < 0 {
		return dsn
	}
	rest := dsn[slash+1:]
	params := ""
	if q := strings.Index(rest, "?"); q >= 0 {
		params = rest[q:]
	}
	return dsn[:slash+1] + database + params
}

// ParseDatabaseNames extracts names from SHOW DATABASES rows, whose single
// column is named "Database" (or "Database (pattern)" with a LIKE clause).
func (d *Dialect) ParseDatabaseNames(rows []core.Row) []string {
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, firstString(row))
	}
	return compact(names)
}

// ParseTableNames extracts names from SHOW TABLES rows, whose single column
// is named "Tables_in_<database>".
func (d *Dialect) ParseTableNames(rows []core.Row) []string {
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, firstString(row))
	}
	return compact(names)
}

// ParseColumns normalizes DESCRIBE rows: Null "NO" means not nullable,
// Key "PRI" marks primary key membership.
func (d *Dialect) ParseColumns(rows []core.Row) []core.ColumnInfo {
	cols := make([]core.ColumnInfo, 0, len(rows))
	for _, row := range rows {
		name := dialect.StringField(row, "Field")
		if name == "" {
			continue
		}
		null := strings.ToUpper(dialect.StringField(row, "Null"))
		key := strings.ToUpper(dialect.StringField(row, "Key"))
		cols = append(cols, core.ColumnInfo{
			Name:       name,
			Type:       dialect.StringField(row, "Type"),
			Nullable:   null != "NO",
			PrimaryKey: key == "PRI",
		})
	}
	return cols
}

// ListConstraintsQuery lists constraints from information_schema.
func (d *Dialect) ListConstraintsQuery(table string) (string, bool) {
	return fmt.Sprintf(`SELECT CONSTRAINT_NAME AS name, CONSTRAINT_TYPE AS type
FROM information_schema.TABLE_CONSTRAINTS
WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = %s
ORDER BY CONSTRAINT_NAME`, dialect.QuoteLiteral(table)), true
}

// ListForeignKeysQuery lists foreign keys with their referenced side.
func (d *Dialect) ListForeignKeysQuery(table string) (string, bool) {
	return fmt.Sprintf(`SELECT
	CONSTRAINT_NAME AS name,
	COLUMN_NAME AS column_name,
	REFERENCED_TABLE_NAME AS referenced_table,
	REFERENCED_COLUMN_NAME AS referenced_column
FROM information_schema.KEY_COLUMN_USAGE
WHERE TABLE_SCHEMA = DATABASE()
	AND TABLE_NAME = %s
	AND REFERENCED_TABLE_NAME IS NOT NULL
ORDER BY CONSTRAINT_NAME`, dialect.QuoteLiteral(table)), true
}

// ListIndexesQuery lists indexes.
func (d *Dialect) ListIndexesQuery(table string) (string, bool) {
	return fmt.Sprintf("SHOW INDEX FROM %s", d.QuoteIdentifier(table)), true
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

// firstString returns the lone value of a single-column SHOW row. The
// column name varies ("Database", "Tables_in_<db>"), so known keys are
// tried first and a single remaining column is taken as-is.
func firstString(row core.Row) string {
	for _, key := range []string{"Database", "name"} {
		if s := dialect.StringField(row, key); s != "" {
			return s
		}
	}
	if len(row) == 1 {
		for _, v := range row {
			switch x := v.(type) {
			case string:
				return x
			case []byte:
				return string(x)
			}
		}
	}
	return ""
}

func compact(names []string) []string {
	out := names[:0]
	for _, n := range names {
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}

// Ensure Dialect implements the adapter contract.
var _ dialect.Adapter = (*Dialect)(nil)
