package graph

import (
	"context"
	"testing"

	"github.com/memgraph-tools/mgmigrate/internal/bolt"
	"github.com/memgraph-tools/mgmigrate/internal/value"
)

func TestReadNodesStreamsEachRow(t *testing.T) {
	ctx := context.Background()
	fake := bolt.NewFakeClient()
	n1 := value.NodeValue(value.Node{ID: 1, Labels: []string{"Person"}, Properties: value.NewMap(0)})
	n2 := value.NodeValue(value.Node{ID: 2, Labels: []string{"Person"}, Properties: value.NewMap(0)})
	fake.QueueRows("MATCH (u) RETURN u", [][]value.Value{{n1}, {n2}})

	src := NewSource(fake)
	var got []value.Node
	if err := src.ReadNodes(ctx, func(n value.Node) error {
		got = append(got, n)
		return nil
	}); err != nil {
		t.Fatalf("ReadNodes: %v", err)
	}
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 2 {
		t.Errorf("got %v", got)
	}
}

func TestReadIndicesClassifiesByType(t *testing.T) {
	ctx := context.Background()
	fake := bolt.NewFakeClient()
	fake.QueueRows("SHOW INDEX INFO", [][]value.Value{
		{value.String("label"), value.String("Person"), value.Null},
		{value.String("label+property"), value.String("Person"), value.String("email")},
	})

	src := NewSource(fake)
	info, err := src.ReadIndices(ctx)
	if err != nil {
		t.Fatalf("ReadIndices: %v", err)
	}
	if len(info.Label) != 1 || info.Label[0] != "Person" {
		t.Errorf("label indices = %v", info.Label)
	}
	if len(info.LabelProperty) != 1 || info.LabelProperty[0].Property != "email" {
		t.Errorf("label-property indices = %v", info.LabelProperty)
	}
}

func TestReadIndicesRejectsUnknownType(t *testing.T) {
	ctx := context.Background()
	fake := bolt.NewFakeClient()
	fake.QueueRows("SHOW INDEX INFO", [][]value.Value{
		{value.String("point"), value.String("Person"), value.Null},
	})

	src := NewSource(fake)
	if _, err := src.ReadIndices(ctx); err == nil {
		t.Errorf("expected an error for an unsupported index type")
	}
}

func TestReadConstraintsClassifiesByType(t *testing.T) {
	ctx := context.Background()
	fake := bolt.NewFakeClient()
	fake.QueueRows("SHOW CONSTRAINT INFO", [][]value.Value{
		{value.String("existence"), value.String("Person"), value.String("email")},
		{value.String("unique"), value.String("Person"), value.List([]value.Value{value.String("email")})},
	})

	src := NewSource(fake)
	info, err := src.ReadConstraints(ctx)
	if err != nil {
		t.Fatalf("ReadConstraints: %v", err)
	}
	if len(info.Existence) != 1 || info.Existence[0].Property != "email" {
		t.Errorf("existence constraints = %v", info.Existence)
	}
	if len(info.Unique) != 1 || len(info.Unique[0].Properties) != 1 {
		t.Errorf("unique constraints = %v", info.Unique)
	}
}
