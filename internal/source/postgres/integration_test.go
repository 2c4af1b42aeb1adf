//go:build integration

package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/memgraph-tools/mgmigrate/internal/value"
)

func TestIntegrationSchemaInfoAndReadTable(t *testing.T) {
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_DSN env var required")
	}

	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		t.Fatalf("parse POSTGRES_DSN: %v", err)
	}

	ctx := context.Background()
	src, err := Connect(ctx, cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database)
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

	var rows int
	if err := src.ReadTable(ctx, info.Tables[0], func(row []value.Value) error {
		rows++
		return nil
	}); err != nil {
		t.Fatalf("read table %s: %v", info.Tables[0].Name, err)
	}
}
