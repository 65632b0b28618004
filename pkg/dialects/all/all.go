// Package all registers every built-in dialect.
// Import this package with a blank identifier to make all six available:
//
//	import _ "github.com/quarrylabs/quarry/pkg/dialects/all"
package all

import (
	_ "github.com/quarrylabs/quarry/pkg/dialects/mysql"
	_ "github.com/quarrylabs/quarry/pkg/dialects/oracle"
	_ "github.com/quarrylabs/quarry/pkg/dialects/postgres"
	_ "github.com/quarrylabs/quarry/pkg/dialects/redis"
	_ "github.com/quarrylabs/quarry/pkg/dialects/sqlite"
	_ "github.com/quarrylabs/quarry/pkg/dialects/sqlserver"
)
