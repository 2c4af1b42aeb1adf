// Package destination issues the openCypher-like statements that write
// nodes, relationships, indices, and constraints into the destination
// database, and tears down the scaffolding the migration orchestrator adds
// along the way.
package destination

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/memgraph-tools/mgmigrate/internal/bolt"
	"github.com/memgraph-tools/mgmigrate/internal/value"
)

// Writer wraps a bolt.Client with the statement shapes the migration
// orchestrator needs. It assumes exclusive use of the underlying client:
// every method runs exactly one statement to completion before returning.
type Writer struct {
	client bolt.Client
}

func NewWriter(client bolt.Client) *Writer {
	return &Writer{client: client}
}

// expectNoRows runs statement and asserts it returns no result rows,
// which is the case for every DDL-shaped write below.
func (w *Writer) expectNoRows(ctx context.Context, statement string, params *value.Map) error {
	if err := w.client.Execute(ctx, statement, params); err != nil {
		return err
	}
	if _, err := w.client.FetchOne(ctx); err != io.EOF {
		if err == nil {
			return fmt.Errorf("destination: unexpected row returned by %q", statement)
		}
		return err
	}
	return nil
}

// CreateNode creates a single node carrying labels and properties.
func (w *Writer) CreateNode(ctx context.Context, labels []string, properties *value.Map) error {
	params := newParamBuilder()
	var b strings.Builder
	b.WriteString("CREATE (u")
	for _, label := range sortedCopy(labels) {
		b.WriteByte(':')
		b.WriteString(escapeName(label))
	}
	b.WriteByte(' ')
	writeProperties(&b, params, properties)
	b.WriteByte(')')

	if err := w.expectNoRows(ctx, b.String(), params.params); err != nil {
		return fmt.Errorf("destination: create node: %w", err)
	}
	return nil
}

// CreateRelationships matches nodes by label and identity properties and
// connects them with a relationship of edgeType, returning how many were
// created (or merged, if useMerge skips relationships that already exist).
func (w *Writer) CreateRelationships(ctx context.Context, label1 string, id1 *value.Map, label2 string, id2 *value.Map, edgeType string, properties *value.Map, useMerge bool) (int64, error) {
	params := newParamBuilder()
	var b strings.Builder
	b.WriteString("MATCH (u:")
	b.WriteString(escapeName(label1))
	b.WriteString("), (v:")
	b.WriteString(escapeName(label2))
	b.WriteString(") WHERE ")
	writeIDMatcher(&b, params, "u", id1)
	b.WriteString(" AND ")
	writeIDMatcher(&b, params, "v", id2)
	if useMerge {
		b.WriteString(" MERGE ")
	} else {
		b.WriteString(" CREATE ")
	}
	b.WriteString("(u)-[:")
	b.WriteString(escapeName(edgeType))
	if properties.Len() > 0 {
		b.WriteByte(' ')
		writeProperties(&b, params, properties)
	}
	b.WriteString("]->(v) RETURN COUNT(u)")

	println("DEBUG STMT: " + b.String())
	if err := w.client.Execute(ctx, b.String(), params.params); err != nil {
		return 0, fmt.Errorf("destination: create relationships: %w", err)
	}
	row, err := w.client.FetchOne(ctx)
	if err != nil {
		return 0, fmt.Errorf("destination: create relationships: expected a count row: %w", err)
	}
	if _, err := w.client.FetchOne(ctx); err != io.EOF {
		if err == nil {
			return 0, fmt.Errorf("destination: create relationships: more than one result row")
		}
		return 0, err
	}
	if len(row) != 1 || row[0].Kind() != value.KindInt {
		return 0, fmt.Errorf("destination: create relationships: expected a single integer count, got %v", row)
	}
	return row[0].AsInt(), nil
}

func (w *Writer) CreateLabelIndex(ctx context.Context, label string) error {
	stmt := fmt.Sprintf("CREATE INDEX ON :%s", escapeName(label))
	if err := w.expectNoRows(ctx, stmt, nil); err != nil {
		return fmt.Errorf("destination: create label index on %q: %w", label, err)
	}
	return nil
}

func (w *Writer) CreateLabelPropertyIndex(ctx context.Context, label, property string) error {
	stmt := fmt.Sprintf("CREATE INDEX ON :%s(%s)", escapeName(label), escapeName(property))
	if err := w.expectNoRows(ctx, stmt, nil); err != nil {
		return fmt.Errorf("destination: create label-property index on %q(%q): %w", label, property, err)
	}
	return nil
}

func (w *Writer) CreateExistenceConstraint(ctx context.Context, label, property string) error {
	stmt := fmt.Sprintf("CREATE CONSTRAINT ON (u:%s) ASSERT EXISTS (u.%s)", escapeName(label), escapeName(property))
	if err := w.expectNoRows(ctx, stmt, nil); err != nil {
		return fmt.Errorf("destination: create existence constraint on %q(%q): %w", label, property, err)
	}
	return nil
}

func (w *Writer) CreateUniqueConstraint(ctx context.Context, label string, properties []string) error {
	sorted := sortedCopy(properties)
	parts := make([]string, len(sorted))
	for i, p := range sorted {
		parts[i] = "u." + escapeName(p)
	}
	stmt := fmt.Sprintf("CREATE CONSTRAINT ON (u:%s) ASSERT %s IS UNIQUE", escapeName(label), strings.Join(parts, ", "))
	if err := w.expectNoRows(ctx, stmt, nil); err != nil {
		return fmt.Errorf("destination: create unique constraint on %q%v: %w", label, sorted, err)
	}
	return nil
}

func (w *Writer) DropLabelIndex(ctx context.Context, label string) error {
	stmt := fmt.Sprintf("DROP INDEX ON :%s", escapeName(label))
	if err := w.expectNoRows(ctx, stmt, nil); err != nil {
		return fmt.Errorf("destination: drop label index on %q: %w", label, err)
	}
	return nil
}

func (w *Writer) DropLabelPropertyIndex(ctx context.Context, label, property string) error {
	stmt := fmt.Sprintf("DROP INDEX ON :%s(%s)", escapeName(label), escapeName(property))
	if err := w.expectNoRows(ctx, stmt, nil); err != nil {
		return fmt.Errorf("destination: drop label-property index on %q(%q): %w", label, property, err)
	}
	return nil
}

// RemoveLabelFromNodes strips label from every node carrying it, used to
// tear down the bootstrap scaffolding once a migration completes.
func (w *Writer) RemoveLabelFromNodes(ctx context.Context, label string) error {
	stmt := fmt.Sprintf("MATCH (u) REMOVE u:%s", escapeName(label))
	if err := w.expectNoRows(ctx, stmt, nil); err != nil {
		return fmt.Errorf("destination: remove label %q from nodes: %w", label, err)
	}
	return nil
}

// RemovePropertyFromNodes strips property from every node carrying it,
// used to tear down scaffold identity properties once a migration
// completes.
func (w *Writer) RemovePropertyFromNodes(ctx context.Context, property string) error {
	stmt := fmt.Sprintf("MATCH (u) REMOVE u.%s", escapeName(property))
	if err := w.expectNoRows(ctx, stmt, nil); err != nil {
		return fmt.Errorf("destination: remove property %q from nodes: %w", property, err)
	}
	return nil
}

func sortedCopy(s []string) []string {
	out := append([]string(nil), s...)
	sort.Strings(out)
	return out
}
