// Package migrate implements the two migration strategies: copying one
// graph database into another, and lifting a relational schema into a
// property graph.
package migrate

import (
	"context"
	"fmt"
	"log"

	"github.com/memgraph-tools/mgmigrate/internal/destination"
	"github.com/memgraph-tools/mgmigrate/internal/schema"
	"github.com/memgraph-tools/mgmigrate/internal/source/graph"
	"github.com/memgraph-tools/mgmigrate/internal/value"
)

// internalVertexLabel and internalVertexID name the bootstrap scaffolding
// added to every node during a graph-to-graph migration so relationships
// can be matched by source node identity, and torn down once migration
// completes.
const (
	internalVertexLabel = "__mg_vertex__"
	internalVertexID    = "__mg_id__"
)

// Graph copies every node, relationship, index, and constraint from src
// into dst.
func Graph(ctx context.Context, src *graph.Source, dst *destination.Writer) error {
	log.Printf("migrating nodes...")
	var nodeCount int
	var createdBootstrapIndex bool
	if err := src.ReadNodes(ctx, func(n value.Node) error {
		if !createdBootstrapIndex {
			if err := dst.CreateLabelPropertyIndex(ctx, internalVertexLabel, internalVertexID); err != nil {
				return err
			}
			createdBootstrapIndex = true
		}
		labels := append([]string{internalVertexLabel}, n.Labels...)
		properties := value.NewMap(n.Properties.Len() + 1)
		properties.InsertUnsafe(internalVertexID, value.Int(n.ID))
		for _, key := range n.Properties.Keys() {
			v, _ := n.Properties.Get(key)
			properties.InsertUnsafe(key, v)
		}
		nodeCount++
		return dst.CreateNode(ctx, labels, properties)
	}); err != nil {
		return fmt.Errorf("migrate graph: %w", err)
	}
	log.Printf("migrated %d nodes", nodeCount)

	log.Printf("migrating relationships...")
	var relCount int
	if err := src.ReadRelationships(ctx, func(r value.Relationship) error {
		id1 := value.MapOf(value.Pair{Key: internalVertexID, Value: value.Int(r.StartID)})
		id2 := value.MapOf(value.Pair{Key: internalVertexID, Value: value.Int(r.EndID)})
		created, err := dst.CreateRelationships(ctx, internalVertexLabel, id1, internalVertexLabel, id2, r.Type, r.Properties, false)
		if err != nil {
			return err
		}
		if created != 1 {
			return fmt.Errorf("migrate graph: expected to create exactly 1 relationship, created %d", created)
		}
		relCount++
		return nil
	}); err != nil {
		return fmt.Errorf("migrate graph: %w", err)
	}
	log.Printf("migrated %d relationships", relCount)

	log.Printf("migrating indices and constraints...")
	indexInfo, err := src.ReadIndices(ctx)
	if err != nil {
		return fmt.Errorf("migrate graph: %w", err)
	}
	if err := replayIndices(ctx, dst, indexInfo); err != nil {
		return fmt.Errorf("migrate graph: %w", err)
	}

	constraintInfo, err := src.ReadConstraints(ctx)
	if err != nil {
		return fmt.Errorf("migrate graph: %w", err)
	}
	if err := replayConstraints(ctx, dst, constraintInfo); err != nil {
		return fmt.Errorf("migrate graph: %w", err)
	}

	if !createdBootstrapIndex {
		return nil
	}

	log.Printf("tearing down bootstrap scaffolding...")
	if err := dst.DropLabelPropertyIndex(ctx, internalVertexLabel, internalVertexID); err != nil {
		return fmt.Errorf("migrate graph: %w", err)
	}
	if err := dst.RemoveLabelFromNodes(ctx, internalVertexLabel); err != nil {
		return fmt.Errorf("migrate graph: %w", err)
	}
	if err := dst.RemovePropertyFromNodes(ctx, internalVertexID); err != nil {
		return fmt.Errorf("migrate graph: %w", err)
	}
	return nil
}

func replayIndices(ctx context.Context, dst *destination.Writer, info schema.IndexInfo) error {
	for _, label := range info.Label {
		if err := dst.CreateLabelIndex(ctx, label); err != nil {
			return err
		}
	}
	for _, idx := range info.LabelProperty {
		if err := dst.CreateLabelPropertyIndex(ctx, idx.Label, idx.Property); err != nil {
			return err
		}
	}
	return nil
}

func replayConstraints(ctx context.Context, dst *destination.Writer, info schema.ConstraintInfo) error {
	for _, c := range info.Existence {
		if err := dst.CreateExistenceConstraint(ctx, c.Label, c.Property); err != nil {
			return err
		}
	}
	for _, c := range info.Unique {
		if err := dst.CreateUniqueConstraint(ctx, c.Label, c.Properties); err != nil {
			return err
		}
	}
	return nil
}
