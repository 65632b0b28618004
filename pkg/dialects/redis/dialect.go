// Package redis provides the Redis dialect definition.
//
// Redis is not a SQL database; the gateway accepts a small set of commands
// in place of SQL, and this dialect emits those. Key/value pairs surface as
// records, and the richer catalog views are reported unsupported.
package redis

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/quarrylabs/quarry/pkg/core"
	"github.com/quarrylabs/quarry/pkg/dialect"
)

// Dialect implements dialect.Adapter for Redis.
type Dialect struct {
	dialect.Base
}

// New creates the Redis dialect.
func New() *Dialect {
	return &Dialect{Base: dialect.NewBase(core.DriverRedis, dialect.QuoteNone)}
}

// ListDatabasesQuery reports keyspace usage; only databases holding keys
// appear in the output.
func (d *Dialect) ListDatabasesQuery() string {
	return "INFO keyspace"
}

// ListTablesQuery enumerates keys. One SCAN page stands in for the table
// list; COUNT is a hint, not a limit.
func (d *Dialect) ListTablesQuery() string {
	return "SCAN 0 COUNT 1000"
}

// ListColumnsQuery degrades to the key's type.
func (d *Dialect) ListColumnsQuery(table string) string {
	return fmt.Sprintf("TYPE %s", table)
}

// SelectAllQuery fetches one key's value. Redis has no row limiting, so
// limit is ignored.
func (d *Dialect) SelectAllQuery(table string, limit int) string {
	return fmt.Sprintf("GET %s", table)
}

// CreateDatabaseQuery reports no support; Redis ships a fixed set of
// numbered databases.
func (d *Dialect) CreateDatabaseQuery(name string) (string, bool) {
	return "", false
}

// ModifyDSNForDatabase rewrites the numeric DB index in a redis:// URL path.
// Non-numeric targets and non-URL DSNs are returned unchanged.
func (d *Dialect) ModifyDSNForDatabase(dsn, database string) string {
	if _, err := strconv.Atoi(database); err != nil {
		return dsn
	}
	u, err := url.Parse(dsn)
	if err != nil || (u.Scheme != "redis" && u.Scheme != "rediss") {
		return dsn
	}
	u.Path = "/" + database
	return u.String()
}

// ParseDatabaseNames extracts database names from INFO keyspace rows. The
// gateway either normalizes each database into a row with a name field, or
// passes the section through as one row keyed db0, db1, ...
func (d *Dialect) ParseDatabaseNames(rows []core.Row) []string {
	var names []string
	for _, row := range rows {
		if name := dialect.StringField(row, "name"); name != "" {
			names = append(names, name)
			continue
		}
		for k := range row {
			if isDBIndex(k) {
				names = append(names, k)
			}
		}
	}
	sort.Strings(names)
	return names
}

// ParseTableNames extracts key names from SCAN rows.
func (d *Dialect) ParseTableNames(rows []core.Row) []string {
	var names []string
	for _, row := range rows {
		name := dialect.StringField(row, "key")
		if name == "" {
			name = dialect.StringField(row, "name")
		}
		if name == "" && len(row) == 1 {
			for _, v := range row {
				if s, ok := v.(string); ok {
					name = s
				}
			}
		}
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

// ParseColumns maps a TYPE reply to a single pseudo-column describing the
// key's value.
func (d *Dialect) ParseColumns(rows []core.Row) []core.ColumnInfo {
	for _, row := range rows {
		typ := dialect.StringField(row, "type")
		if typ == "" && len(row) == 1 {
			for _, v := range row {
				if s, ok := v.(string); ok {
					typ = s
				}
			}
		}
		if typ != "" {
			return []core.ColumnInfo{{Name: "value", Type: typ}}
		}
	}
	return nil
}

// SupportedViews reports records only; Redis keys have no columns,
// constraints, or indexes to inspect.
func (d *Dialect) SupportedViews() core.TableViews {
	return core.TableViews{core.ViewRecords}
}

// isDBIndex reports whether s looks like a keyspace section label (db0, db1, ...).
func isDBIndex(s string) bool {
	rest, ok := strings.CutPrefix(s, "db")
	if !ok || rest == "" {
		return false
	}
	_, err := strconv.Atoi(rest)
	return err == nil
}

// Ensure Dialect implements the adapter contract.
var _ dialect.Adapter = (*Dialect)(nil)
