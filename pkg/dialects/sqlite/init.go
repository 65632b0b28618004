// This file registers the SQLite dialect with the dialect registry.
// Import this package with a blank identifier to register it:
//
//	import _ "github.com/quarrylabs/quarry/pkg/dialects/sqlite"
package sqlite

import "github.com/quarrylabs/quarry/pkg/dialect"

func init() {
	dialect.Register(New())
}
