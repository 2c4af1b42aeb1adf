package migrate

import (
	"context"
	"strings"
	"testing"

	"github.com/memgraph-tools/mgmigrate/internal/bolt"
	"github.com/memgraph-tools/mgmigrate/internal/destination"
	srcgraph "github.com/memgraph-tools/mgmigrate/internal/source/graph"
	"github.com/memgraph-tools/mgmigrate/internal/value"
)

func TestGraphMigratesNodesAndRelationships(t *testing.T) {
	ctx := context.Background()
	srcClient := bolt.NewFakeClient()
	dstClient := bolt.NewFakeClient()

	n1 := value.NodeValue(value.Node{ID: 1, Labels: []string{"Person"}, Properties: value.MapOf(value.Pair{Key: "name", Value: value.String("Ada")})})
	n2 := value.NodeValue(value.Node{ID: 2, Labels: []string{"Person"}, Properties: value.NewMap(0)})
	srcClient.QueueRows("MATCH (u) RETURN u", [][]value.Value{{n1}, {n2}})

	rel := value.RelationshipValue(value.Relationship{ID: 10, StartID: 1, EndID: 2, Type: "KNOWS", Properties: value.NewMap(0)})
	srcClient.QueueRows("MATCH (u)-[e]->(v) RETURN e", [][]value.Value{{rel}})
	srcClient.QueueRows("SHOW INDEX INFO", nil)
	srcClient.QueueRows("SHOW CONSTRAINT INFO", nil)

	dstClient.QueueRows(
		"MATCH (u:`__mg_vertex__`), (v:`__mg_vertex__`) WHERE u.`__mg_id__` = $p0 AND v.`__mg_id__` = $p1 CREATE (u)-[:`KNOWS`]->(v) RETURN COUNT(u)",
		[][]value.Value{{value.Int(1)}},
	)

	src := srcgraph.NewSource(srcClient)
	dst := destination.NewWriter(dstClient)

	if err := Graph(ctx, src, dst); err != nil {
		t.Fatalf("Graph: %v", err)
	}

	var createNodeCount int
	for _, stmt := range dstClient.Statements {
		if strings.HasPrefix(stmt.Text, "CREATE (u:") {
			createNodeCount++
		}
	}
	if createNodeCount != 2 {
		t.Errorf("expected 2 CreateNode statements, got %d (all: %v)", createNodeCount, dstClient.Statements)
	}
}
