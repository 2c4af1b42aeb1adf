package sqlite

import (
	"fmt"

	"github.com/memgraph-tools/mgmigrate/internal/value"
)

// decodeField maps a value the pure-Go SQLite driver produced for an
// untyped scan target onto one of the coarse Value categories the rest
// of the system deals in. SQLite's dynamic typing means the driver
// already hands back int64, float64, string, []byte, or nil directly.
func decodeField(raw any) value.Value {
	switch v := raw.(type) {
	case nil:
		return value.Null
	case int64:
		return value.Int(v)
	case float64:
		return value.Float(v)
	case string:
		return value.String(v)
	case []byte:
		return value.String(string(v))
	default:
		return value.String(fmt.Sprint(v))
	}
}
