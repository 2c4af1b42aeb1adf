package bolt

import (
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/memgraph-tools/mgmigrate/internal/value"
)

// toCypherParams flattens a *value.Map of bound statement parameters into
// the map[string]any the driver's Run expects. A nil params is a valid
// statement with no bound parameters.
func toCypherParams(params *value.Map) map[string]any {
	if params == nil {
		return nil
	}
	out := make(map[string]any, params.Len())
	params.Range(func(key string, v value.Value) bool {
		out[key] = toCypherValue(v)
		return true
	})
	return out
}

func toCypherValue(v value.Value) any {
	switch v.Kind() {
	case value.KindNull:
		return nil
	case value.KindBool:
		return v.AsBool()
	case value.KindInt:
		return v.AsInt()
	case value.KindFloat:
		return v.AsFloat()
	case value.KindString:
		return v.AsString()
	case value.KindList:
		items := v.AsList()
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = toCypherValue(item)
		}
		return out
	case value.KindMap:
		m := v.AsMap()
		out := make(map[string]any, m.Len())
		m.Range(func(key string, item value.Value) bool {
			out[key] = toCypherValue(item)
			return true
		})
		return out
	default:
		// Nodes, relationships, and paths are never legal bound parameters;
		// callers only ever bind scalars, lists, and property maps.
		panic(fmt.Sprintf("bolt: cannot bind a %s value as a statement parameter", v.Kind()))
	}
}

// fromCypherValue converts one column of a driver record back into a
// Value, recursing into lists, maps, nodes, relationships, and paths.
func fromCypherValue(raw any) (value.Value, error) {
	switch x := raw.(type) {
	case nil:
		return value.Null, nil
	case bool:
		return value.Bool(x), nil
	case int64:
		return value.Int(x), nil
	case int:
		return value.Int(int64(x)), nil
	case float64:
		return value.Float(x), nil
	case string:
		return value.String(x), nil
	case []any:
		items := make([]value.Value, len(x))
		for i, item := range x {
			v, err := fromCypherValue(item)
			if err != nil {
				return value.Value{}, err
			}
			items[i] = v
		}
		return value.List(items), nil
	case map[string]any:
		m, err := mapFromCypher(x)
		if err != nil {
			return value.Value{}, err
		}
		return value.MapValue(m), nil
	case dbtype.Node:
		props, err := mapFromCypher(x.Props)
		if err != nil {
			return value.Value{}, err
		}
		return value.NodeValue(value.Node{
			ID:         x.Id,
			Labels:     append([]string(nil), x.Labels...),
			Properties: props,
		}), nil
	case dbtype.Relationship:
		props, err := mapFromCypher(x.Props)
		if err != nil {
			return value.Value{}, err
		}
		return value.RelationshipValue(value.Relationship{
			ID:         x.Id,
			StartID:    x.StartId,
			EndID:      x.EndId,
			Type:       x.Type,
			Properties: props,
		}), nil
	case dbtype.Path:
		return pathFromCypher(x)
	default:
		return value.Value{}, fmt.Errorf("bolt: unsupported driver value of type %T", raw)
	}
}

func mapFromCypher(raw map[string]any) (*value.Map, error) {
	m := value.NewMap(len(raw))
	for k, v := range raw {
		converted, err := fromCypherValue(v)
		if err != nil {
			return nil, err
		}
		if err := m.Insert(k, converted); err != nil {
			return nil, fmt.Errorf("bolt: property %q: %w", k, err)
		}
	}
	return m, nil
}

func pathFromCypher(p dbtype.Path) (value.Value, error) {
	nodes := make([]value.Node, len(p.Nodes))
	for i, n := range p.Nodes {
		props, err := mapFromCypher(n.Props)
		if err != nil {
			return value.Value{}, err
		}
		nodes[i] = value.Node{ID: n.Id, Labels: append([]string(nil), n.Labels...), Properties: props}
	}
	rels := make([]value.UnboundRelationship, len(p.Relationships))
	reversed := make([]bool, len(p.Relationships))
	nextNodeID := nodes[0].ID
	for i, r := range p.Relationships {
		props, err := mapFromCypher(r.Props)
		if err != nil {
			return value.Value{}, err
		}
		rels[i] = value.UnboundRelationship{ID: r.Id, Type: r.Type, Properties: props}
		reversed[i] = r.StartId != nextNodeID
		if reversed[i] {
			nextNodeID = r.StartId
		} else {
			nextNodeID = r.EndId
		}
	}
	return value.PathValue(value.Path{Nodes: nodes, Relationships: rels, Reversed: reversed}), nil
}
