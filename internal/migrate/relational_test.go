package migrate

import (
	"context"
	"testing"

	"github.com/memgraph-tools/mgmigrate/internal/bolt"
	"github.com/memgraph-tools/mgmigrate/internal/destination"
	"github.com/memgraph-tools/mgmigrate/internal/schema"
	"github.com/memgraph-tools/mgmigrate/internal/value"
)

// fakeRelationalSource serves canned rows for a fixed schema, grounded on
// a tiny authors/books/book_authors (join table) layout.
type fakeRelationalSource struct {
	info schema.Info
	rows map[string][][]value.Value
}

func (f *fakeRelationalSource) SchemaInfo(ctx context.Context) (schema.Info, error) {
	return f.info, nil
}

func (f *fakeRelationalSource) ReadTable(ctx context.Context, table schema.Table, visit func([]value.Value) error) error {
	for _, row := range f.rows[table.Name] {
		if err := visit(row); err != nil {
			return err
		}
	}
	return nil
}

func newFixture() *fakeRelationalSource {
	authors := schema.Table{SchemaName: "public", Name: "authors", Columns: []string{"id", "name"}, PrimaryKey: []int{0}}
	books := schema.Table{SchemaName: "public", Name: "books", Columns: []string{"id", "title"}, PrimaryKey: []int{0}}
	bookAuthors := schema.Table{
		SchemaName: "public", Name: "book_authors",
		Columns:     []string{"book_id", "author_id"},
		ForeignKeys: []int{0, 1},
	}

	info := schema.Info{
		Tables: []schema.Table{authors, books, bookAuthors},
		ForeignKeys: []schema.ForeignKey{
			{ChildTable: 2, ParentTable: 1, ChildColumns: []int{0}, ParentColumns: []int{0}},
			{ChildTable: 2, ParentTable: 0, ChildColumns: []int{1}, ParentColumns: []int{0}},
		},
	}
	info.Tables[1].PrimaryKeyReferenced = true
	info.Tables[0].PrimaryKeyReferenced = true

	rows := map[string][][]value.Value{
		"authors": {{value.Int(1), value.String("Ada")}},
		"books":   {{value.Int(100), value.String("Notes")}},
		"book_authors": {
			{value.Int(100), value.Int(1)},
			{value.Int(100), value.Null},
		},
	}
	return &fakeRelationalSource{info: info, rows: rows}
}

func TestRelationalSkipsJoinTableAsNodeButEmitsItsEdges(t *testing.T) {
	ctx := context.Background()
	src := newFixture()
	dstClient := bolt.NewFakeClient()
	dst := destination.NewWriter(dstClient)

	dstClient.QueueRows(
		"MATCH (u:`books`), (v:`authors`) WHERE u.`id` = $p0 AND v.`id` = $p1 CREATE (u)-[:`book_authors`]->(v) RETURN COUNT(u)",
		[][]value.Value{{value.Int(1)}},
	)

	if err := Relational(ctx, src, dst, "public"); err != nil {
		t.Fatalf("Relational: %v", err)
	}

	var createNodeLabels []string
	var relationshipEdges int
	for _, stmt := range dstClient.Statements {
		switch {
		case len(stmt.Text) > 9 && stmt.Text[:9] == "CREATE (u":
			createNodeLabels = append(createNodeLabels, stmt.Text)
		case len(stmt.Text) > 5 && stmt.Text[:5] == "MATCH" && stmt.Text[len(stmt.Text)-15:] == "RETURN COUNT(u)":
			relationshipEdges++
		}
	}
	if len(createNodeLabels) != 2 {
		t.Errorf("expected exactly 2 node creations (authors, books — not the join table), got %d: %v", len(createNodeLabels), createNodeLabels)
	}
	if relationshipEdges != 1 {
		t.Errorf("expected exactly 1 relationship created from the join table's well-defined row, got %d", relationshipEdges)
	}
}
