// Package sqlserver provides the Microsoft SQL Server dialect definition.
// This package is pure Go with no database driver dependencies.
package sqlserver

import (
	"fmt"
	"net/url"

	"github.com/quarrylabs/quarry/pkg/core"
	"github.com/quarrylabs/quarry/pkg/dialect"
)

// Dialect implements dialect.Adapter for SQL Server.
type Dialect struct {
	dialect.Base
}

// New creates the SQL Server dialect.
func New() *Dialect {
	return &Dialect{Base: dialect.NewBase(core.DriverSQLServer, dialect.QuoteBracket)}
}

// ListDatabasesQuery enumerates user databases (ids 1-4 are system).
func (d *Dialect) ListDatabasesQuery() string {
	return "SELECT name FROM sys.databases WHERE database_id > 4 ORDER BY name"
}

// ListTablesQuery enumerates base tables in the current database.
func (d *Dialect) ListTablesQuery() string {
	return `SELECT TABLE_NAME AS name
FROM INFORMATION_SCHEMA.TABLES
WHERE TABLE_TYPE = 'BASE TABLE'
ORDER BY TABLE_NAME`
}

// ListColumnsQuery describes one table's columns. SQL Server has no boolean
// literal, so the flags come back as BIT 0/1.
func (d *Dialect) ListColumnsQuery(table string) string {
	lit := dialect.QuoteLiteral(table)
	return fmt.Sprintf(`SELECT
	c.COLUMN_NAME AS name,
	c.DATA_TYPE AS type,
	CAST(CASE WHEN c.IS_NULLABLE = 'YES' THEN 1 ELSE 0 END AS BIT) AS nullable,
	CAST(CASE WHEN pk.COLUMN_NAME IS NOT NULL THEN 1 ELSE 0 END AS BIT) AS primary_key
FROM INFORMATION_SCHEMA.COLUMNS c
LEFT JOIN (
	SELECT kcu.COLUMN_NAME
	FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS tc
	JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE kcu
		ON tc.CONSTRAINT_NAME = kcu.CONSTRAINT_NAME
	WHERE tc.CONSTRAINT_TYPE = 'PRIMARY KEY' AND tc.TABLE_NAME = %s
) pk ON c.COLUMN_NAME = pk.COLUMN_NAME
WHERE c.TABLE_NAME = %s
ORDER BY c.ORDINAL_POSITION`, lit, lit)
}

// SelectAllQuery reads a table; TOP goes immediately after SELECT.
func (d *Dialect) SelectAllQuery(table string, limit int) string {
	if limit > 0 {
		return fmt.Sprintf("SELECT TOP %d * FROM %s", limit, d.QuoteIdentifier(table))
	}
	return fmt.Sprintf("SELECT * FROM %s", d.QuoteIdentifier(table))
}

// CreateDatabaseQuery builds CREATE DATABASE.
func (d *Dialect) CreateDatabaseQuery(name string) (string, bool) {
	return fmt.Sprintf("CREATE DATABASE %s", d.QuoteIdentifier(name)), true
}

// ModifyDSNForDatabase retargets a sqlserver:// URL. go-mssqldb carries the
// database in the "database" query parameter; URLs using a path instead get
// the path rewritten. Non-URL DSNs are returned unchanged.
func (d *Dialect) ModifyDSNForDatabase(dsn, database string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.Scheme != "sqlserver" {
		return dsn
	}
	q := u.Query()
	if q.Has("database") {
		q.Set("database", database)
		u.RawQuery = q.Encode()
		return u.String()
	}
	u.Path = "/" + database
	return u.String()
}

// ParseDatabaseNames extracts names from sys.databases rows.
func (d *Dialect) ParseDatabaseNames(rows []core.Row) []string {
	return dialect.ParseNames(rows, "name")
}

// ParseTableNames extracts names from INFORMATION_SCHEMA rows.
func (d *Dialect) ParseTableNames(rows []core.Row) []string {
	return dialect.ParseNames(rows, "name")
}

// ParseColumns normalizes ListColumnsQuery rows; the BIT flags may arrive
// as numbers or booleans depending on the gateway's decoding.
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

// ListConstraintsQuery lists constraints from INFORMATION_SCHEMA.
func (d *Dialect) ListConstraintsQuery(table string) (string, bool) {
	return fmt.Sprintf(`SELECT CONSTRAINT_NAME AS name, CONSTRAINT_TYPE AS type
FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS
WHERE TABLE_NAME = %s
ORDER BY CONSTRAINT_NAME`, dialect.QuoteLiteral(table)), true
}

// ListForeignKeysQuery lists foreign keys with their referenced side.
func (d *Dialect) ListForeignKeysQuery(table string) (string, bool) {
	return fmt.Sprintf(`SELECT
	fk.name AS name,
	pc.name AS column_name,
	rt.name AS referenced_table,
	rc.name AS referenced_column
FROM sys.foreign_keys fk
JOIN sys.foreign_key_columns fkc ON fk.object_id = fkc.constraint_object_id
JOIN sys.columns pc ON fkc.parent_object_id = pc.object_id AND fkc.parent_column_id = pc.column_id
JOIN sys.tables rt ON fkc.referenced_object_id = rt.object_id
JOIN sys.columns rc ON fkc.referenced_object_id = rc.object_id AND fkc.referenced_column_id = rc.column_id
WHERE OBJECT_NAME(fk.parent_object_id) = %s
ORDER BY fk.name`, dialect.QuoteLiteral(table)), true
}

// ListIndexesQuery lists indexes from sys.indexes.
func (d *Dialect) ListIndexesQuery(table string) (string, bool) {
	return fmt.Sprintf(`SELECT i.name AS name, i.type_desc AS type, i.is_unique AS is_unique
FROM sys.indexes i
WHERE i.object_id = OBJECT_ID(%s) AND i.name IS NOT NULL
ORDER BY i.name`, dialect.QuoteLiteral(table)), true
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
