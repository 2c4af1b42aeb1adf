package mysql

import (
	"fmt"
	"time"

	"github.com/memgraph-tools/mgmigrate/internal/value"
)

// decodeField maps a value the MySQL driver produced for an untyped scan
// target onto one of the coarse Value categories the rest of the system
// deals in: bool, int, float, string. The driver hands back int64,
// float64, []byte, time.Time (ParseTime is always enabled, see Connect),
// or nil, never the narrower Go integer/float widths.
func decodeField(raw any) value.Value {
	switch v := raw.(type) {
	case nil:
		return value.Null
	case bool:
		return value.Bool(v)
	case int64:
		return value.Int(v)
	case float64:
		return value.Float(v)
	case []byte:
		return value.String(string(v))
	case string:
		return value.String(v)
	case time.Time:
		return value.String(v.Format(time.RFC3339))
	default:
		return value.String(fmt.Sprint(v))
	}
}
