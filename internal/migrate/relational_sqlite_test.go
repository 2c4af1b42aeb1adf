package migrate

import (
	"context"
	"strings"
	"testing"

	"github.com/memgraph-tools/mgmigrate/internal/bolt"
	"github.com/memgraph-tools/mgmigrate/internal/destination"
	"github.com/memgraph-tools/mgmigrate/internal/source/sqlite"
	"github.com/memgraph-tools/mgmigrate/internal/value"
)

const fixtureDDL = `
CREATE TABLE authors (id INTEGER PRIMARY KEY, name TEXT NOT NULL);
CREATE TABLE books (id INTEGER PRIMARY KEY, title TEXT NOT NULL);
CREATE TABLE book_authors (
	book_id INTEGER NOT NULL REFERENCES books(id),
	author_id INTEGER NOT NULL REFERENCES authors(id)
);
`

// TestRelationalAgainstSQLiteFixture exercises the full relational
// migration path (schema introspection, join-table classification,
// foreign-key edge construction) against a real database rather than a
// hand-rolled fake source.
func TestRelationalAgainstSQLiteFixture(t *testing.T) {
	ctx := context.Background()
	src, err := sqlite.Open(fixtureDDL)
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	defer src.Close()

	seeds := []string{
		`INSERT INTO authors (id, name) VALUES (1, 'Ada')`,
		`INSERT INTO books (id, title) VALUES (100, 'Notes')`,
		`INSERT INTO book_authors (book_id, author_id) VALUES (100, 1)`,
	}
	for _, stmt := range seeds {
		if err := src.Exec(stmt); err != nil {
			t.Fatalf("seed %q: %v", stmt, err)
		}
	}

	dstClient := bolt.NewFakeClient()
	dst := destination.NewWriter(dstClient)
	dstClient.QueueRows(
		"MATCH (u:`books`), (v:`authors`) WHERE u.`id` = $p0 AND v.`id` = $p1 CREATE (u)-[:`book_authors`]->(v) RETURN COUNT(u)",
		[][]value.Value{{value.Int(1)}},
	)

	if err := Relational(ctx, src, dst, "main"); err != nil {
		t.Fatalf("Relational: %v", err)
	}

	for _, stmt := range dstClient.Statements {
		t.Logf("STMT: %q", stmt.Text)
	}
	var sawNode, sawEdge bool
	for _, stmt := range dstClient.Statements {
		if strings.HasPrefix(stmt.Text, "CREATE (u:`authors`") || strings.HasPrefix(stmt.Text, "CREATE (u:`books`") {
			sawNode = true
		}
		if strings.Contains(stmt.Text, "book_authors") {
			sawEdge = true
		}
	}
	if !sawNode {
		t.Errorf("expected authors/books rows to be created as nodes")
	}
	if !sawEdge {
		t.Errorf("expected the join table to be migrated as a relationship")
	}
}
