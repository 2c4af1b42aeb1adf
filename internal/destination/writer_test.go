package destination

import (
	"context"
	"testing"

	"github.com/memgraph-tools/mgmigrate/internal/bolt"
	"github.com/memgraph-tools/mgmigrate/internal/value"
)

func TestCreateNodeSendsLabelsAndBoundProperties(t *testing.T) {
	ctx := context.Background()
	fake := bolt.NewFakeClient()
	w := NewWriter(fake)

	props := value.MapOf(value.Pair{Key: "name", Value: value.String("Ada")})
	if err := w.CreateNode(ctx, []string{"Person", "Employee"}, props); err != nil {
		t.Fatalf("CreateNode: %v", err)
	}

	if len(fake.Statements) != 1 {
		t.Fatalf("expected exactly one statement, got %d", len(fake.Statements))
	}
	stmt := fake.Statements[0]
	const want = "CREATE (u:`Employee`:`Person` {`name`: $p0})"
	if stmt.Text != want {
		t.Errorf("statement = %q, want %q", stmt.Text, want)
	}
	bound, ok := stmt.Params.Get("p0")
	if !ok || !bound.Equal(value.String("Ada")) {
		t.Errorf("p0 = %v, want Ada", bound)
	}
}

func TestCreateRelationshipsReturnsCount(t *testing.T) {
	ctx := context.Background()
	fake := bolt.NewFakeClient()
	w := NewWriter(fake)

	id1 := value.MapOf(value.Pair{Key: "id", Value: value.Int(1)})
	id2 := value.MapOf(value.Pair{Key: "id", Value: value.Int(2)})
	fake.QueueRows(
		"MATCH (u:`Person`), (v:`Person`) WHERE u.`id` = $p0 AND v.`id` = $p1 CREATE (u)-[:`KNOWS`]->(v) RETURN COUNT(u)",
		[][]value.Value{{value.Int(1)}},
	)

	count, err := w.CreateRelationships(ctx, "Person", id1, "Person", id2, "KNOWS", value.NewMap(0), false)
	if err != nil {
		t.Fatalf("CreateRelationships: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestCreateRelationshipsUsesMergeWhenRequested(t *testing.T) {
	ctx := context.Background()
	fake := bolt.NewFakeClient()
	w := NewWriter(fake)

	id1 := value.MapOf(value.Pair{Key: "id", Value: value.Int(1)})
	id2 := value.MapOf(value.Pair{Key: "id", Value: value.Int(2)})
	fake.QueueRows(
		"MATCH (u:`Person`), (v:`Person`) WHERE u.`id` = $p0 AND v.`id` = $p1 MERGE (u)-[:`KNOWS`]->(v) RETURN COUNT(u)",
		[][]value.Value{{value.Int(0)}},
	)

	count, err := w.CreateRelationships(ctx, "Person", id1, "Person", id2, "KNOWS", value.NewMap(0), true)
	if err != nil {
		t.Fatalf("CreateRelationships: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0 (already existed)", count)
	}
}

func TestEscapeNameDoublesBackticks(t *testing.T) {
	if got := escapeName("weird`name"); got != "`weird``name`" {
		t.Errorf("escapeName = %q", got)
	}
}

func TestCreateUniqueConstraintSortsProperties(t *testing.T) {
	ctx := context.Background()
	fake := bolt.NewFakeClient()
	w := NewWriter(fake)

	if err := w.CreateUniqueConstraint(ctx, "Person", []string{"id", "email"}); err != nil {
		t.Fatalf("CreateUniqueConstraint: %v", err)
	}
	const want = "CREATE CONSTRAINT ON (u:`Person`) ASSERT u.`email`, u.`id` IS UNIQUE"
	if fake.Statements[0].Text != want {
		t.Errorf("statement = %q, want %q", fake.Statements[0].Text, want)
	}
}
