// Package value implements the tagged-union Value type that every source
// adapter decodes into and the destination writer serializes from. A
// Value owns its payload; slices and Maps referenced from it should be
// treated as immutable once the Value is constructed, giving the
// structural sharing a systems language would get from move semantics
// without needing a separate "const view" type.
package value

import "fmt"

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindList
	KindMap
	KindNode
	KindRelationship
	KindUnboundRelationship
	KindPath
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindBool:
		return "Bool"
	case KindInt:
		return "Int"
	case KindFloat:
		return "Float"
	case KindString:
		return "String"
	case KindList:
		return "List"
	case KindMap:
		return "Map"
	case KindNode:
		return "Node"
	case KindRelationship:
		return "Relationship"
	case KindUnboundRelationship:
		return "UnboundRelationship"
	case KindPath:
		return "Path"
	default:
		return "Unknown"
	}
}

// Value is a sum type over everything that can cross a database boundary
// in this system: the scalar types plus ordered List/Map containers and
// the graph-only Node/Relationship/UnboundRelationship/Path variants.
type Value struct {
	kind Kind

	b    bool
	i    int64
	f    float64
	s    string
	list []Value
	m    *Map
	node *Node
	rel  *Relationship
	urel *UnboundRelationship
	path *Path
}

// Null is the null Value.
var Null = Value{kind: KindNull}

// Bool constructs a Bool Value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int constructs an Int Value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float constructs a Float Value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// String constructs a String Value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// List constructs a List Value from an ordered sequence of values. The
// caller must not mutate items after this call.
func List(items []Value) Value { return Value{kind: KindList, list: items} }

// MapValue constructs a Map Value from an already-built Map.
func MapValue(m *Map) Value { return Value{kind: KindMap, m: m} }

// NodeValue constructs a Node Value.
func NodeValue(n Node) Value { return Value{kind: KindNode, node: &n} }

// RelationshipValue constructs a Relationship Value.
func RelationshipValue(r Relationship) Value { return Value{kind: KindRelationship, rel: &r} }

// UnboundRelationshipValue constructs an UnboundRelationship Value.
func UnboundRelationshipValue(u UnboundRelationship) Value {
	return Value{kind: KindUnboundRelationship, urel: &u}
}

// PathValue constructs a Path Value.
func PathValue(p Path) Value { return Value{kind: KindPath, path: &p} }

// Kind reports which variant this Value holds.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether this Value is Null.
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) typeMismatch(want Kind) string {
	return fmt.Sprintf("value: expected %s, got %s", want, v.kind)
}

// AsBool returns the boolean payload. It panics on type mismatch: callers
// are expected to check Kind() first, or to know the shape of the data
// they requested from the schema.
func (v Value) AsBool() bool {
	if v.kind != KindBool {
		panic(v.typeMismatch(KindBool))
	}
	return v.b
}

// AsInt returns the int64 payload.
func (v Value) AsInt() int64 {
	if v.kind != KindInt {
		panic(v.typeMismatch(KindInt))
	}
	return v.i
}

// AsFloat returns the float64 payload.
func (v Value) AsFloat() float64 {
	if v.kind != KindFloat {
		panic(v.typeMismatch(KindFloat))
	}
	return v.f
}

// AsString returns the string payload.
func (v Value) AsString() string {
	if v.kind != KindString {
		panic(v.typeMismatch(KindString))
	}
	return v.s
}

// AsList returns the list payload.
func (v Value) AsList() []Value {
	if v.kind != KindList {
		panic(v.typeMismatch(KindList))
	}
	return v.list
}

// AsMap returns the map payload.
func (v Value) AsMap() *Map {
	if v.kind != KindMap {
		panic(v.typeMismatch(KindMap))
	}
	return v.m
}

// AsNode returns the node payload.
func (v Value) AsNode() Node {
	if v.kind != KindNode {
		panic(v.typeMismatch(KindNode))
	}
	return *v.node
}

// AsRelationship returns the relationship payload.
func (v Value) AsRelationship() Relationship {
	if v.kind != KindRelationship {
		panic(v.typeMismatch(KindRelationship))
	}
	return *v.rel
}

// AsUnboundRelationship returns the unbound-relationship payload.
func (v Value) AsUnboundRelationship() UnboundRelationship {
	if v.kind != KindUnboundRelationship {
		panic(v.typeMismatch(KindUnboundRelationship))
	}
	return *v.urel
}

// AsPath returns the path payload.
func (v Value) AsPath() Path {
	if v.kind != KindPath {
		panic(v.typeMismatch(KindPath))
	}
	return *v.path
}

// Equal reports deep structural equality between two Values, following
// the per-variant rules in the data model: node equality ignores label
// and property order; relationship equality additionally compares
// endpoints and type; path equality compares the full alternating
// sequence including per-edge orientation.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindInt:
		return v.i == other.i
	case KindFloat:
		return v.f == other.f
	case KindString:
		return v.s == other.s
	case KindList:
		if len(v.list) != len(other.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(other.list[i]) {
				return false
			}
		}
		return true
	case KindMap:
		return v.m.Equal(other.m)
	case KindNode:
		return v.node.equal(*other.node)
	case KindRelationship:
		return v.rel.equal(*other.rel)
	case KindUnboundRelationship:
		return v.urel.equal(*other.urel)
	case KindPath:
		return v.path.equal(*other.path)
	default:
		return false
	}
}
