// This file registers the PostgreSQL dialect with the dialect registry.
// Import this package with a blank identifier to register it:
//
//	import _ "github.com/quarrylabs/quarry/pkg/dialects/postgres"
package postgres

import "github.com/quarrylabs/quarry/pkg/dialect"

func init() {
	dialect.Register(New())
}
