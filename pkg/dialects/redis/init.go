package redis

import "github.com/quarrylabs/quarry/pkg/dialect"

// init registers the Redis dialect. Importing this package
// (typically via pkg/dialects/all) makes the dialect available.
func init() {
	dialect.Register(New())
}
