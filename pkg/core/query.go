package core

// Row is a single result row keyed by column name.
// Values keep whatever JSON type the gateway produced.
type Row map[string]any

// ColumnInfo is the canonical column shape every dialect produces.
// Nullable and PrimaryKey are real booleans regardless of how the backend
// spells them (YES/NO, Y/N, 0/1, PRI).
type ColumnInfo struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Nullable   bool   `json:"nullable"`
	PrimaryKey bool   `json:"primaryKey"`
}

// QueryResult is the outcome of one SQL round trip.
// Reads carry Columns and Rows; writes carry RowsAffected; a statement the
// backend rejected carries Error. The unused fields stay at their zero
// values and are omitted on the wire.
type QueryResult struct {
	Columns      []string `json:"columns,omitempty"`
	Rows         []Row    `json:"rows,omitempty"`
	RowsAffected int64    `json:"rowsAffected,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// RowCount returns the number of rows in a read result.
func (r *QueryResult) RowCount() int {
	return len(r.Rows)
}

// TableView identifies one inspectable facet of a table.
type TableView string

// Table views a dialect may support.
const (
	ViewRecords     TableView = "records"
	ViewColumns     TableView = "columns"
	ViewConstraints TableView = "constraints"
	ViewForeignKeys TableView = "foreignKeys"
	ViewIndexes     TableView = "indexes"
)

// TableViews is the set of views a dialect supports.
type TableViews []TableView

// Contains reports whether v is in the set.
func (tv TableViews) Contains(v TableView) bool {
	for _, x := range tv {
		if x == v {
			return true
		}
	}
	return false
}

// DatabaseSchema is the introspector's assembled view of one database.
// Tables preserves the backend's listing order; Columns is keyed by table
// name and holds an empty (non-nil) slice for tables whose column fetch
// failed or fell beyond the introspection cap.
type DatabaseSchema struct {
	Database string                  `json:"database,omitempty"`
	Tables   []string                `json:"tables"`
	Columns  map[string][]ColumnInfo `json:"columns"`
}
