package postgres

import (
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/memgraph-tools/mgmigrate/internal/value"
)

// decodeField maps a value pgx decoded through its default type map onto
// one of the coarse Value categories the rest of the system deals in:
// bool, int, float, string, or list, recursing into arrays.
func decodeField(field any) (value.Value, error) {
	switch v := field.(type) {
	case nil:
		return value.Null, nil
	case bool:
		return value.Bool(v), nil
	case int16:
		return value.Int(int64(v)), nil
	case int32:
		return value.Int(int64(v)), nil
	case int64:
		return value.Int(v), nil
	case float32:
		return value.Float(float64(v)), nil
	case float64:
		return value.Float(v), nil
	case string:
		return value.String(v), nil
	case []byte:
		return value.String(string(v)), nil
	case time.Time:
		return value.String(v.Format(time.RFC3339)), nil
	case pgtype.Numeric:
		f, err := v.Float64Value()
		if err != nil {
			return value.Value{}, fmt.Errorf("decode numeric field: %w", err)
		}
		return value.Float(f.Float64), nil
	case []any:
		items := make([]value.Value, len(v))
		for i, el := range v {
			converted, err := decodeField(el)
			if err != nil {
				return value.Value{}, err
			}
			items[i] = converted
		}
		return value.List(items), nil
	default:
		return value.String(fmt.Sprint(v)), nil
	}
}
