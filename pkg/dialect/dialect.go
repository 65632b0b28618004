// Package dialect provides the per-driver SQL generation contract.
//
// This package contains the public contract all dialect adapters implement.
// Concrete implementations live in pkg/dialects/*/ packages and register
// themselves in init(); import pkg/dialects/all to pull in the full set.
//
// Adapters are pure: they generate SQL text and normalize raw result rows,
// they never open network connections. Execution happens elsewhere.
package dialect

import (
	"strings"

	"github.com/quarrylabs/quarry/pkg/core"
)

// Adapter generates dialect-correct SQL and normalizes raw rows for one
// driver. Query generators return text the backend executes verbatim;
// parsers turn the backend's raw row shapes into canonical core types.
//
// Optional capabilities use a (string, bool) sentinel: ok=false means the
// driver has no such operation, and callers must not fall back to a guess.
type Adapter interface {
	// Driver returns the driver this adapter serves.
	Driver() core.Driver

	// ListDatabasesQuery returns the statement enumerating databases
	// visible to the connection.
	ListDatabasesQuery() string

	// ListTablesQuery returns the statement enumerating user tables in the
	// current database.
	ListTablesQuery() string

	// ListColumnsQuery returns the statement describing one table's columns.
	ListColumnsQuery(table string) string

	// SelectAllQuery returns a full-table read capped at limit rows, using
	// the dialect's native limiting syntax. limit <= 0 means no cap.
	SelectAllQuery(table string, limit int) string

	// CreateDatabaseQuery returns the statement creating a database, or
	// ok=false when the driver has no notion of creating one.
	CreateDatabaseQuery(name string) (string, bool)

	// ModifyDSNForDatabase returns a copy of dsn retargeted at database.
	// Drivers whose DSNs carry no database component return dsn unchanged.
	// The input is never mutated.
	ModifyDSNForDatabase(dsn, database string) string

	// ParseDatabaseNames extracts database names from ListDatabasesQuery rows.
	ParseDatabaseNames(rows []core.Row) []string

	// ParseTableNames extracts table names from ListTablesQuery rows.
	ParseTableNames(rows []core.Row) []string

	// ParseColumns normalizes ListColumnsQuery rows into canonical columns.
	ParseColumns(rows []core.Row) []core.ColumnInfo

	// ListConstraintsQuery returns the table constraint listing, if supported.
	ListConstraintsQuery(table string) (string, bool)

	// ListForeignKeysQuery returns the foreign key listing, if supported.
	ListForeignKeysQuery(table string) (string, bool)

	// ListIndexesQuery returns the index listing, if supported.
	ListIndexesQuery(table string) (string, bool)

	// SupportedViews returns the table views this driver can populate.
	SupportedViews() core.TableViews

	// QuoteIdentifier quotes name with the dialect's identifier quoting,
	// escaping embedded closing quotes. Every identifier interpolated into
	// generated SQL goes through this.
	QuoteIdentifier(name string) string
}

// Quoting holds a dialect's identifier quoting characters.
type Quoting struct {
	Start  string // opening quote, e.g. `"` or "[" or "`"
	End    string // closing quote, e.g. `"` or "]" or "`"
	Escape string // replacement for End inside an identifier, e.g. `""` or "]]"
}

// Quote wraps name in the dialect's identifier quotes, escaping any
// embedded closing quote characters.
func (q Quoting) Quote(name string) string {
	if q.Start == "" && q.End == "" {
		return name
	}
	escaped := strings.ReplaceAll(name, q.End, q.Escape)
	return q.Start + escaped + q.End
}

// QuoteLiteral wraps s in single quotes for use as a SQL string literal,
// doubling any embedded single quotes. Catalog queries compare table names
// as literals; identifiers go through Quoting instead.
func QuoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Standard quoting configurations shared by the driver packages.
var (
	// QuoteDouble is ANSI double-quote quoting (postgres, sqlite, oracle).
	QuoteDouble = Quoting{Start: `"`, End: `"`, Escape: `""`}
	// QuoteBacktick is MySQL backtick quoting.
	QuoteBacktick = Quoting{Start: "`", End: "`", Escape: "``"}
	// QuoteBracket is SQL Server bracket quoting.
	QuoteBracket = Quoting{Start: "[", End: "]", Escape: "]]"}
	// QuoteNone leaves identifiers untouched (redis keys are not identifiers).
	QuoteNone = Quoting{}
)
