package sqlserver

import "github.com/quarrylabs/quarry/pkg/dialect"

// init registers the SQL Server dialect. Importing this package
// (typically via pkg/dialects/all) makes the dialect available.
func init() {
	dialect.Register(New())
}
