package mysql

import (
	"testing"
	"time"

	"github.com/memgraph-tools/mgmigrate/internal/value"
)

func TestDecodeField(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want value.Value
	}{
		{"nil", nil, value.Null},
		{"int64", int64(42), value.Int(42)},
		{"float64", float64(1.5), value.Float(1.5)},
		{"bytes", []byte("hi"), value.String("hi")},
		{"string", "hi", value.String("hi")},
	}
	for _, tt := range tests {
		if got := decodeField(tt.raw); !got.Equal(tt.want) {
			t.Errorf("%s: decodeField(%v) = %v, want %v", tt.name, tt.raw, got, tt.want)
		}
	}
}

func TestDecodeFieldFormatsTimeAsRFC3339(t *testing.T) {
	ts := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	got := decodeField(ts)
	want := value.String("2026-01-02T15:04:05Z")
	if !got.Equal(want) {
		t.Errorf("decodeField(time) = %v, want %v", got, want)
	}
}
