package dialect

import (
	"strings"

	"github.com/quarrylabs/quarry/pkg/core"
)

// Base carries the pieces every adapter shares: the driver tag, the
// identifier quoting, and no-support defaults for the optional catalog
// queries. Driver packages embed it and override what they support.
type Base struct {
	driver  core.Driver
	quoting Quoting
}

// NewBase builds the embedded base for a driver adapter.
func NewBase(driver core.Driver, quoting Quoting) Base {
	return Base{driver: driver, quoting: quoting}
}

// Driver returns the driver this adapter serves.
func (b Base) Driver() core.Driver {
	return b.driver
}

// QuoteIdentifier quotes name with the dialect's identifier quoting.
func (b Base) QuoteIdentifier(name string) string {
	return b.quoting.Quote(name)
}

// ListConstraintsQuery reports no constraint support by default.
func (Base) ListConstraintsQuery(string) (string, bool) {
	return "", false
}

// ListForeignKeysQuery reports no foreign key support by default.
func (Base) ListForeignKeysQuery(string) (string, bool) {
	return "", false
}

// ListIndexesQuery reports no index support by default.
func (Base) ListIndexesQuery(string) (string, bool) {
	return "", false
}

// ParseNames extracts the named field from each row, tolerating key case
// variation. Rows missing the field are skipped.
func ParseNames(rows []core.Row, field string) []string {
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		if v, ok := Field(row, field); ok {
			if s := toString(v); s != "" {
				names = append(names, s)
			}
		}
	}
	return names
}

// Field looks up a row value by name, falling back to a case-insensitive
// match. Oracle uppercases result keys, MySQL capitalizes them; callers
// should not care.
func Field(row core.Row, name string) (any, bool) {
	if v, ok := row[name]; ok {
		return v, true
	}
	for k, v := range row {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return nil, false
}

// StringField returns the row value as a string, or "" when absent.
func StringField(row core.Row, name string) string {
	v, ok := Field(row, name)
	if !ok {
		return ""
	}
	return toString(v)
}

// BoolField interprets the row value as a boolean. It accepts real bools,
// numeric 0/1 (including the float64 JSON numbers arrive as), and the
// spellings the backends use: true/t/yes/y/1 are true, everything else is
// false.
func BoolField(row core.Row, name string) bool {
	v, ok := Field(row, name)
	if !ok {
		return false
	}
	switch x := v.(type) {
	case bool:
		return x
	case int:
		return x != 0
	case int64:
		return x != 0
	case float64:
		return x != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "true", "t", "yes", "y", "1":
			return true
		}
	}
	return false
}

func toString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	}
	return ""
}
