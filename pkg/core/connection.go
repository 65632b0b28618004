package core

import "fmt"

// Connection is one configured backend, SQL or storage but never both.
// The DSN inside SQL is treated as immutable: introspection that targets a
// sibling database derives a transient DSN and discards it, it never writes
// back.
type Connection struct {
	ID      string             `json:"id"`
	Name    string             `json:"name,omitempty"`
	SQL     *SQLConnection     `json:"sql,omitempty"`
	Storage *StorageConnection `json:"storage,omitempty"`
}

// SQLConnection configures a SQL (or Redis) backend.
type SQLConnection struct {
	Driver Driver `json:"driver"`
	DSN    string `json:"dsn"`
}

// StorageConnection configures an object storage backend.
// Params carries provider-specific settings (region, endpoint, account)
// as an untyped map; the storage package decodes it into typed structs.
type StorageConnection struct {
	Provider Provider       `json:"provider"`
	Params   map[string]any `json:"params,omitempty"`
}

// Kind returns "sql" or "storage" for display purposes.
func (c *Connection) Kind() string {
	if c.Storage != nil {
		return "storage"
	}
	return "sql"
}

// Validate checks the exactly-one-of invariant and the enum fields.
func (c *Connection) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("connection has no id")
	}
	switch {
	case c.SQL == nil && c.Storage == nil:
		return fmt.Errorf("connection %q: neither sql nor storage configured", c.ID)
	case c.SQL != nil && c.Storage != nil:
		return fmt.Errorf("connection %q: both sql and storage configured", c.ID)
	case c.SQL != nil:
		if !c.SQL.Driver.Valid() {
			return fmt.Errorf("connection %q: unknown driver %q", c.ID, c.SQL.Driver)
		}
		if c.SQL.DSN == "" {
			return fmt.Errorf("connection %q: empty dsn", c.ID)
		}
	case c.Storage != nil:
		if !c.Storage.Provider.Valid() {
			return fmt.Errorf("connection %q: unknown provider %q", c.ID, c.Storage.Provider)
		}
	}
	return nil
}
