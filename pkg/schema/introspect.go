// Package schema assembles database structure by running dialect catalog
// queries through the gateway.
package schema

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/quarrylabs/quarry/pkg/core"
	"github.com/quarrylabs/quarry/pkg/dialect"
	"github.com/quarrylabs/quarry/pkg/gateway"
)

// maxColumnTables caps how many tables get column introspection per build.
// A schema with hundreds of tables would otherwise fan out into hundreds of
// catalog queries; tables past the cap still appear, just without columns.
const maxColumnTables = 50

// columnFetchConcurrency bounds the parallel column queries per build.
const columnFetchConcurrency = 8

// Introspector builds schema snapshots for SQL connections.
type Introspector struct {
	gateway *gateway.Client
	logger  *slog.Logger
}

// New creates an Introspector. If logger is nil, a discard logger is used.
func New(gw *gateway.Client, logger *slog.Logger) *Introspector {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Introspector{gateway: gw, logger: logger}
}

// BuildSchema introspects one database on the connection. A non-empty
// database targets a sibling database through a transient DSN rewrite; the
// stored connection is never modified. Table listing failures abort the
// build, but a single table's column fetch failing only logs a warning and
// leaves that table's column list empty.
func (in *Introspector) BuildSchema(ctx context.Context, conn *core.Connection, database string) (*core.DatabaseSchema, error) {
	adapter, err := adapterFor(conn)
	if err != nil {
		return nil, err
	}
	dsn := transientDSN(adapter, conn, database)

	result, err := in.read(ctx, conn.ID, dsn, adapter.ListTablesQuery())
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	tables := adapter.ParseTableNames(result.Rows)

	schema := &core.DatabaseSchema{
		Database: database,
		Tables:   tables,
		Columns:  make(map[string][]core.ColumnInfo, len(tables)),
	}
	for _, table := range tables {
		schema.Columns[table] = []core.ColumnInfo{}
	}

	capped := tables
	if len(capped) > maxColumnTables {
		in.logger.Warn("table count exceeds introspection cap",
			"tables", len(tables), "cap", maxColumnTables)
		capped = capped[:maxColumnTables]
	}

	var mu sync.Mutex
	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(columnFetchConcurrency)
	for _, table := range capped {
		eg.Go(func() error {
			cols := in.fetchColumns(egctx, conn.ID, dsn, adapter, table)
			mu.Lock()
			schema.Columns[table] = cols
			mu.Unlock()
			return egctx.Err()
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return schema, nil
}

// ListDatabases lists the databases visible on the connection.
func (in *Introspector) ListDatabases(ctx context.Context, conn *core.Connection) ([]string, error) {
	adapter, err := adapterFor(conn)
	if err != nil {
		return nil, err
	}

	result, err := in.gateway.Query(ctx, conn.ID, adapter.ListDatabasesQuery())
	if err != nil {
		return nil, fmt.Errorf("list databases: %w", err)
	}
	return adapter.ParseDatabaseNames(result.Rows), nil
}

// ListTables lists tables in one database (empty means the connection's own).
func (in *Introspector) ListTables(ctx context.Context, conn *core.Connection, database string) ([]string, error) {
	adapter, err := adapterFor(conn)
	if err != nil {
		return nil, err
	}

	result, err := in.read(ctx, conn.ID, transientDSN(adapter, conn, database), adapter.ListTablesQuery())
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return adapter.ParseTableNames(result.Rows), nil
}

// ListColumns describes one table's columns.
func (in *Introspector) ListColumns(ctx context.Context, conn *core.Connection, database, table string) ([]core.ColumnInfo, error) {
	adapter, err := adapterFor(conn)
	if err != nil {
		return nil, err
	}

	result, err := in.read(ctx, conn.ID, transientDSN(adapter, conn, database), adapter.ListColumnsQuery(table))
	if err != nil {
		return nil, fmt.Errorf("list columns for %s: %w", table, err)
	}
	return adapter.ParseColumns(result.Rows), nil
}

func (in *Introspector) fetchColumns(ctx context.Context, connectionID, dsn string, a dialect.Adapter, table string) []core.ColumnInfo {
	result, err := in.read(ctx, connectionID, dsn, a.ListColumnsQuery(table))
	if err != nil {
		in.logger.Warn("column introspection failed", "table", table, "error", err)
		return []core.ColumnInfo{}
	}
	cols := a.ParseColumns(result.Rows)
	if cols == nil {
		cols = []core.ColumnInfo{}
	}
	return cols
}

// read issues a read query, through the DSN override when one is in play.
func (in *Introspector) read(ctx context.Context, connectionID, dsn, query string) (*core.QueryResult, error) {
	if dsn != "" {
		return in.gateway.QueryWithDSN(ctx, connectionID, dsn, query)
	}
	return in.gateway.Query(ctx, connectionID, query)
}

// transientDSN derives the DSN for targeting a sibling database, or ""
// when the connection's own database is the target.
func transientDSN(a dialect.Adapter, conn *core.Connection, database string) string {
	if database == "" {
		return ""
	}
	return a.ModifyDSNForDatabase(conn.SQL.DSN, database)
}

func adapterFor(conn *core.Connection) (dialect.Adapter, error) {
	if conn == nil {
		return nil, fmt.Errorf("no connection")
	}
	if conn.SQL == nil {
		return nil, fmt.Errorf("connection %q is not a SQL connection", conn.ID)
	}
	return dialect.ForDriver(conn.SQL.Driver)
}
