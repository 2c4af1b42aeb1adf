//go:build integration

package mysql

import (
	"context"
	"os"
	"testing"

	"github.com/memgraph-tools/mgmigrate/internal/value"
)

func TestIntegrationSchemaInfoAndReadTable(t *testing.T) {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		t.Skip("MYSQL_DSN env var required")
	}

	ctx := context.Background()
	src, err := Connect(dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer src.Close()

	info, err := src.SchemaInfo(ctx)
	if err != nil {
		t.Fatalf("schema info: %v", err)
	}
	if len(info.Tables) == 0 {
		t.Fatalf("expected at least one table in %s", dsn)
	}

	if err := src.ReadTable(ctx, info.Tables[0], func(row []value.Value) error {
		return nil
	}); err != nil {
		t.Fatalf("read table %s: %v", info.Tables[0].Name, err)
	}
}
