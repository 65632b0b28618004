// This file registers the MySQL dialect with the dialect registry.
// Import this package with a blank identifier to register it:
//
//	import _ "github.com/quarrylabs/quarry/pkg/dialects/mysql"
package mysql

import "github.com/quarrylabs/quarry/pkg/dialect"

func init() {
	dialect.Register(New())
}
