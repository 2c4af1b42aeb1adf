package value

import "testing"

func TestScalarEquality(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"null==null", Null, Null, true},
		{"bool equal", Bool(true), Bool(true), true},
		{"bool differ", Bool(true), Bool(false), false},
		{"int equal", Int(7), Int(7), true},
		{"int differ", Int(7), Int(8), false},
		{"float equal", Float(1.5), Float(1.5), true},
		{"string equal", String("ada"), String("ada"), true},
		{"kind mismatch", Int(1), String("1"), false},
		{"null vs zero int", Null, Int(0), false},
	}
	for _, tt := range tests {
		if got := tt.a.Equal(tt.b); got != tt.want {
			t.Errorf("%s: Equal() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestListEqualityIsOrderSensitive(t *testing.T) {
	a := List([]Value{Int(1), Int(2), Int(3)})
	b := List([]Value{Int(1), Int(2), Int(3)})
	c := List([]Value{Int(3), Int(2), Int(1)})

	if !a.Equal(b) {
		t.Errorf("identical lists should be equal")
	}
	if a.Equal(c) {
		t.Errorf("lists with reordered elements should not be equal")
	}
}

func TestMapEqualityIsOrderInsensitive(t *testing.T) {
	a := MapOf(Pair{"name", String("Ada")}, Pair{"age", Int(36)})
	b := MapOf(Pair{"age", Int(36)}, Pair{"name", String("Ada")})
	c := MapOf(Pair{"name", String("Ada")})

	if !MapValue(a).Equal(MapValue(b)) {
		t.Errorf("maps with same entries in different order should be equal")
	}
	if MapValue(a).Equal(MapValue(c)) {
		t.Errorf("maps with different entry counts should not be equal")
	}
}

func TestMapInsertRejectsDuplicateKey(t *testing.T) {
	m := NewMap(2)
	if err := m.Insert("k", Int(1)); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if err := m.Insert("k", Int(2)); err == nil {
		t.Errorf("expected error inserting duplicate key")
	}
}

func TestMapInsertRejectsGraphTypedProperty(t *testing.T) {
	m := NewMap(1)
	n := NodeValue(Node{ID: 1, Labels: []string{"x"}, Properties: NewMap(0)})
	if err := m.Insert("bad", n); err == nil {
		t.Errorf("expected error inserting a graph-typed value into a property map")
	}
}

func TestNodeEqualityIgnoresLabelAndPropertyOrder(t *testing.T) {
	n1 := Node{
		ID:         7,
		Labels:     []string{"person", "employee"},
		Properties: MapOf(Pair{"name", String("Ada")}, Pair{"age", Int(36)}),
	}
	n2 := Node{
		ID:         7,
		Labels:     []string{"employee", "person"},
		Properties: MapOf(Pair{"age", Int(36)}, Pair{"name", String("Ada")}),
	}
	n3 := Node{ID: 8, Labels: n1.Labels, Properties: n1.Properties}

	if !NodeValue(n1).Equal(NodeValue(n2)) {
		t.Errorf("nodes differing only in label/property order should be equal")
	}
	if NodeValue(n1).Equal(NodeValue(n3)) {
		t.Errorf("nodes with different identities should not be equal")
	}
}

func TestRelationshipEqualityComparesEndpointsAndType(t *testing.T) {
	base := Relationship{ID: 1, StartID: 10, EndID: 20, Type: "KNOWS", Properties: NewMap(0)}
	same := base
	diffEnd := base
	diffEnd.EndID = 21
	diffType := base
	diffType.Type = "LIKES"

	if !RelationshipValue(base).Equal(RelationshipValue(same)) {
		t.Errorf("identical relationships should be equal")
	}
	if RelationshipValue(base).Equal(RelationshipValue(diffEnd)) {
		t.Errorf("relationships with different endpoints should not be equal")
	}
	if RelationshipValue(base).Equal(RelationshipValue(diffType)) {
		t.Errorf("relationships with different types should not be equal")
	}
}

func TestPathEqualityComparesOrientation(t *testing.T) {
	n0 := Node{ID: 1, Properties: NewMap(0)}
	n1 := Node{ID: 2, Properties: NewMap(0)}
	e := UnboundRelationship{ID: 100, Type: "KNOWS", Properties: NewMap(0)}

	forward := Path{Nodes: []Node{n0, n1}, Relationships: []UnboundRelationship{e}, Reversed: []bool{false}}
	reversed := Path{Nodes: []Node{n0, n1}, Relationships: []UnboundRelationship{e}, Reversed: []bool{true}}

	if PathValue(forward).Equal(PathValue(reversed)) {
		t.Errorf("paths with different edge orientation should not be equal")
	}
	if !PathValue(forward).Equal(PathValue(forward)) {
		t.Errorf("identical paths should be equal")
	}
}

func TestAccessorPanicsOnKindMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic accessing Int() on a String value")
		}
	}()
	String("x").AsInt()
}
