// Package core defines the shared language of the Quarry client.
//
// This package contains:
//   - Backend identity types (Driver, Provider)
//   - Canonical query shapes (ColumnInfo, Row, QueryResult, DatabaseSchema)
//   - Object storage shapes (StorageObject, ListObjectsResult, Container, ObjectDetails)
//   - Connection configuration (Connection, SQLConnection, StorageConnection)
//
// The Golden Rule: pkg/core imports ONLY stdlib. All other packages depend
// on core, not the reverse. Raw backend row shapes never leave the dialect
// adapters; the canonical types here are the only shapes that cross package
// boundaries.
package core
