package bolt

import (
	"context"
	"io"
	"testing"

	"github.com/memgraph-tools/mgmigrate/internal/value"
)

func TestFakeClientSingleCursor(t *testing.T) {
	ctx := context.Background()
	c := NewFakeClient()
	c.QueueRows("MATCH (n) RETURN n", [][]value.Value{
		{value.Int(1)},
		{value.Int(2)},
	})

	if err := c.Execute(ctx, "MATCH (n) RETURN n", nil); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if err := c.Execute(ctx, "MATCH (n) RETURN n", nil); err != ErrCursorActive {
		t.Fatalf("expected ErrCursorActive, got %v", err)
	}

	row, err := c.FetchOne(ctx)
	if err != nil || !row[0].Equal(value.Int(1)) {
		t.Fatalf("first row = %v, %v", row, err)
	}
	row, err = c.FetchOne(ctx)
	if err != nil || !row[0].Equal(value.Int(2)) {
		t.Fatalf("second row = %v, %v", row, err)
	}
	if _, err := c.FetchOne(ctx); err != io.EOF {
		t.Fatalf("expected io.EOF, got %v", err)
	}

	if err := c.Execute(ctx, "MATCH (n) RETURN n", nil); err != nil {
		t.Fatalf("re-execute after exhaustion: %v", err)
	}
}

func TestFakeClientFetchWithoutExecute(t *testing.T) {
	c := NewFakeClient()
	if _, err := c.FetchOne(context.Background()); err != ErrNoCursor {
		t.Fatalf("expected ErrNoCursor, got %v", err)
	}
}
