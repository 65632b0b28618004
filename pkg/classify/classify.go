// Package classify decides whether a SQL statement reads or writes.
//
// The router uses the answer to pick the gateway endpoint. The check is a
// prefix heuristic, not a parse; it lives in its own package so a smarter
// classifier can replace it without touching callers.
package classify

import "strings"

// Kind is the routing class of a statement.
type Kind int

const (
	// Read routes to the query endpoint and expects rows back.
	Read Kind = iota
	// Write routes to the execute endpoint and expects a row count.
	Write
)

// String returns the kind name for logs.
func (k Kind) String() string {
	if k == Read {
		return "read"
	}
	return "write"
}

// readPrefixes mark statements that produce rows.
var readPrefixes = []string{
	"SELECT",
	"WITH",
	"SHOW",
	"DESCRIBE",
	"EXPLAIN",
	"PRAGMA",
}

// SQL classifies a statement. Leading whitespace and case are ignored.
// Statements with a RETURNING clause produce rows and route as reads even
// though they mutate; the substring check is knowingly loose (a string
// literal containing RETURNING also routes as a read, which only costs the
// caller an empty column set).
func SQL(text string) Kind {
	upper := strings.ToUpper(strings.TrimSpace(text))

	for _, prefix := range readPrefixes {
		if strings.HasPrefix(upper, prefix) {
			return Read
		}
	}
	if strings.Contains(upper, "RETURNING") {
		return Read
	}
	return Write
}
