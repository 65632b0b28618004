// Package history persists executed statements in a local SQLite database
// so `quarry history` and the REPL can replay them.
package history

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

// Entry is one recorded statement.
type Entry struct {
	ID           string
	ConnectionID string
	Query        string
	Kind         string
	RowCount     int64
	RowsAffected int64
	Duration     time.Duration
	Error        string
	CreatedAt    time.Time
}

// Store is the SQLite-backed history store.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// New creates a history store instance. If logger is nil, a discard logger
// is used.
func New(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{logger: logger}
}

// Open opens the database, creating parent directories as needed.
// Use ":memory:" for an in-memory database.
func (s *Store) Open(path string) error {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping history database: %w", err)
	}

	s.db = db
	s.path = path
	s.logger.Debug("history store opened", "path", path)
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record inserts one entry. A missing ID or CreatedAt is filled in.
func (s *Store) Record(e *Entry) error {
	if s.db == nil {
		return fmt.Errorf("history store not opened")
	}

	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	var errorPtr *string
	if e.Error != "" {
		errorPtr = &e.Error
	}

	_, err := s.db.Exec(
		`INSERT INTO query_history (id, connection_id, query, kind, row_count, rows_affected, duration_ms, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.ConnectionID, e.Query, e.Kind, e.RowCount, e.RowsAffected,
		e.Duration.Milliseconds(), errorPtr, e.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to record history entry: %w", err)
	}

	s.logger.Debug("recorded history entry", "id", e.ID, "kind", e.Kind)
	return nil
}

// Recent returns the newest n entries, newest first.
func (s *Store) Recent(n int) ([]*Entry, error) {
	if s.db == nil {
		return nil, fmt.Errorf("history store not opened")
	}
	if n <= 0 {
		n = 20
	}

	rows, err := s.db.Query(
		`SELECT id, connection_id, query, kind, row_count, rows_affected, duration_ms, error, created_at
		 FROM query_history ORDER BY created_at DESC LIMIT ?`, n,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		e := &Entry{}
		var errMsg sql.NullString
		var durationMS, createdAt int64

		err := rows.Scan(&e.ID, &e.ConnectionID, &e.Query, &e.Kind,
			&e.RowCount, &e.RowsAffected, &durationMS, &errMsg, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}

		e.Duration = time.Duration(durationMS) * time.Millisecond
		e.CreatedAt = time.Unix(0, createdAt).UTC()
		if errMsg.Valid {
			e.Error = errMsg.String
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
