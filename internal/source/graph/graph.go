// Package graph reads nodes, relationships, indices, and constraints from
// a graph database source, one bare MATCH/SHOW statement at a time.
package graph

import (
	"context"
	"fmt"
	"io"

	"github.com/memgraph-tools/mgmigrate/internal/bolt"
	"github.com/memgraph-tools/mgmigrate/internal/schema"
	"github.com/memgraph-tools/mgmigrate/internal/value"
)

// Source reads a graph database through a single bolt.Client. Its methods
// must not be called concurrently: each opens its own cursor and drains
// it before returning.
type Source struct {
	client bolt.Client
}

func NewSource(client bolt.Client) *Source {
	return &Source{client: client}
}

// ReadNodes streams every node in the source, invoking visit once per
// node in result order.
func (s *Source) ReadNodes(ctx context.Context, visit func(value.Node) error) error {
	if err := s.client.Execute(ctx, "MATCH (u) RETURN u", nil); err != nil {
		return fmt.Errorf("graph source: read nodes: %w", err)
	}
	for {
		row, err := s.client.FetchOne(ctx)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("graph source: read nodes: %w", err)
		}
		if len(row) != 1 || row[0].Kind() != value.KindNode {
			return fmt.Errorf("graph source: read nodes: unexpected result shape %v", row)
		}
		if err := visit(row[0].AsNode()); err != nil {
			return err
		}
	}
}

// ReadRelationships streams every relationship in the source, invoking
// visit once per relationship in result order.
func (s *Source) ReadRelationships(ctx context.Context, visit func(value.Relationship) error) error {
	if err := s.client.Execute(ctx, "MATCH (u)-[e]->(v) RETURN e", nil); err != nil {
		return fmt.Errorf("graph source: read relationships: %w", err)
	}
	for {
		row, err := s.client.FetchOne(ctx)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("graph source: read relationships: %w", err)
		}
		if len(row) != 1 || row[0].Kind() != value.KindRelationship {
			return fmt.Errorf("graph source: read relationships: unexpected result shape %v", row)
		}
		if err := visit(row[0].AsRelationship()); err != nil {
			return err
		}
	}
}

// ReadIndices returns the full index catalog via SHOW INDEX INFO.
func (s *Source) ReadIndices(ctx context.Context) (schema.IndexInfo, error) {
	var info schema.IndexInfo
	if err := s.client.Execute(ctx, "SHOW INDEX INFO", nil); err != nil {
		return info, fmt.Errorf("graph source: read indices: %w", err)
	}
	for {
		row, err := s.client.FetchOne(ctx)
		if err == io.EOF {
			return info, nil
		}
		if err != nil {
			return info, fmt.Errorf("graph source: read indices: %w", err)
		}
		if len(row) != 3 || row[0].Kind() != value.KindString || row[1].Kind() != value.KindString {
			return info, fmt.Errorf("graph source: read indices: unexpected result shape %v", row)
		}
		kind := row[0].AsString()
		label := row[1].AsString()
		switch kind {
		case "label":
			info.Label = append(info.Label, label)
		case "label+property":
			if row[2].Kind() != value.KindString {
				return info, fmt.Errorf("graph source: read indices: unexpected result shape %v", row)
			}
			info.LabelProperty = append(info.LabelProperty, schema.LabelPropertyIndex{Label: label, Property: row[2].AsString()})
		default:
			return info, fmt.Errorf("graph source: read indices: unsupported index type %q", kind)
		}
	}
}

// ReadConstraints returns the full constraint catalog via SHOW CONSTRAINT
// INFO.
func (s *Source) ReadConstraints(ctx context.Context) (schema.ConstraintInfo, error) {
	var info schema.ConstraintInfo
	if err := s.client.Execute(ctx, "SHOW CONSTRAINT INFO", nil); err != nil {
		return info, fmt.Errorf("graph source: read constraints: %w", err)
	}
	for {
		row, err := s.client.FetchOne(ctx)
		if err == io.EOF {
			return info, nil
		}
		if err != nil {
			return info, fmt.Errorf("graph source: read constraints: %w", err)
		}
		if len(row) != 3 || row[0].Kind() != value.KindString || row[1].Kind() != value.KindString {
			return info, fmt.Errorf("graph source: read constraints: unexpected result shape %v", row)
		}
		kind := row[0].AsString()
		label := row[1].AsString()
		switch kind {
		case "existence":
			if row[2].Kind() != value.KindString {
				return info, fmt.Errorf("graph source: read constraints: unexpected result shape %v", row)
			}
			info.Existence = append(info.Existence, schema.LabelPropertyIndex{Label: label, Property: row[2].AsString()})
		case "unique":
			if row[2].Kind() != value.KindList {
				return info, fmt.Errorf("graph source: read constraints: unexpected result shape %v", row)
			}
			items := row[2].AsList()
			properties := make([]string, len(items))
			for i, item := range items {
				if item.Kind() != value.KindString {
					return info, fmt.Errorf("graph source: read constraints: unexpected result shape %v", row)
				}
				properties[i] = item.AsString()
			}
			info.Unique = append(info.Unique, schema.UniqueConstraintInfo{Label: label, Properties: properties})
		default:
			return info, fmt.Errorf("graph source: read constraints: unsupported constraint type %q", kind)
		}
	}
}
