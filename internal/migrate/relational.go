package migrate

import (
	"context"
	"fmt"
	"log"

	"github.com/memgraph-tools/mgmigrate/internal/destination"
	"github.com/memgraph-tools/mgmigrate/internal/schema"
	"github.com/memgraph-tools/mgmigrate/internal/value"
)

// RelationalSource is the subset of a relational source adapter (Postgres
// or MySQL) the orchestrator needs: a one-shot schema snapshot and a
// table row stream.
type RelationalSource interface {
	SchemaInfo(ctx context.Context) (schema.Info, error)
	ReadTable(ctx context.Context, table schema.Table, visit func([]value.Value) error) error
}

// Relational lifts a relational schema into a property graph: every
// non-join table becomes a label, every foreign key becomes a
// relationship, and two-foreign-key join tables become relationships in
// their own right rather than nodes. defaultSchema is the schema whose
// tables get a bare label ("public" for Postgres, the database name
// itself for MySQL).
func Relational(ctx context.Context, src RelationalSource, dst *destination.Writer, defaultSchema string) error {
	info, err := src.SchemaInfo(ctx)
	if err != nil {
		return fmt.Errorf("migrate relational: %w", err)
	}
	logWarnings("type compatibility", schema.CollectUnsupportedTypeWarnings(info))
	logWarnings("index compatibility", schema.CollectIndexCompatibilityWarnings(info))

	log.Printf("migrating rows as nodes...")
	for _, table := range info.Tables {
		if table.IsJoinTable() {
			continue
		}
		if err := migrateTableRows(ctx, src, dst, table, defaultSchema); err != nil {
			return fmt.Errorf("migrate relational: %w", err)
		}
		if err := createScaffoldIndex(ctx, dst, table, defaultSchema); err != nil {
			return fmt.Errorf("migrate relational: %w", err)
		}
	}

	log.Printf("migrating foreign keys as relationships...")
	for _, table := range info.Tables {
		if len(table.ForeignKeys) == 0 {
			continue
		}
		if table.IsJoinTable() {
			if err := migrateJoinTableEdges(ctx, src, dst, info, table, defaultSchema); err != nil {
				return fmt.Errorf("migrate relational: %w", err)
			}
			continue
		}
		if err := migrateForeignKeyEdges(ctx, src, dst, info, table, defaultSchema); err != nil {
			return fmt.Errorf("migrate relational: %w", err)
		}
	}

	log.Printf("tearing down scaffold indices...")
	for _, table := range info.Tables {
		if table.IsJoinTable() {
			continue
		}
		if err := dropScaffoldIndex(ctx, dst, table, defaultSchema); err != nil {
			return fmt.Errorf("migrate relational: %w", err)
		}
	}

	log.Printf("migrating constraints...")
	for _, c := range info.ExistenceConstraints {
		table := info.Tables[c.Table]
		if table.IsJoinTable() {
			continue
		}
		if err := dst.CreateExistenceConstraint(ctx, table.Label(defaultSchema), table.Columns[c.Column]); err != nil {
			return fmt.Errorf("migrate relational: %w", err)
		}
	}
	for _, c := range info.UniqueConstraints {
		table := info.Tables[c.Table]
		if table.IsJoinTable() {
			continue
		}
		properties := make([]string, len(c.Columns))
		for i, col := range c.Columns {
			properties[i] = table.Columns[col]
		}
		if err := dst.CreateUniqueConstraint(ctx, table.Label(defaultSchema), properties); err != nil {
			return fmt.Errorf("migrate relational: %w", err)
		}
	}
	return nil
}

func migrateTableRows(ctx context.Context, src RelationalSource, dst *destination.Writer, table schema.Table, defaultSchema string) error {
	label := table.Label(defaultSchema)
	var rowCount int
	err := src.ReadTable(ctx, table, func(row []value.Value) error {
		properties := extractProperties(table, row, allPositions(len(table.Columns)))
		rowCount++
		return dst.CreateNode(ctx, []string{label}, properties)
	})
	if err != nil {
		return err
	}
	log.Printf("migrated %d rows of %s as nodes", rowCount, label)
	return nil
}

func createScaffoldIndex(ctx context.Context, dst *destination.Writer, table schema.Table, defaultSchema string) error {
	label := table.Label(defaultSchema)
	if len(table.PrimaryKey) > 0 {
		return dst.CreateLabelPropertyIndex(ctx, label, table.Columns[table.PrimaryKey[0]])
	}
	return dst.CreateLabelIndex(ctx, label)
}

func dropScaffoldIndex(ctx context.Context, dst *destination.Writer, table schema.Table, defaultSchema string) error {
	label := table.Label(defaultSchema)
	if len(table.PrimaryKey) > 0 {
		return dst.DropLabelPropertyIndex(ctx, label, table.Columns[table.PrimaryKey[0]])
	}
	return dst.DropLabelIndex(ctx, label)
}

// migrateJoinTableEdges turns every row of a two-foreign-key join table
// into a relationship directly between the two tables it joins,
// discarding the join table's own identity; it never becomes a node.
func migrateJoinTableEdges(ctx context.Context, src RelationalSource, dst *destination.Writer, info schema.Info, table schema.Table, defaultSchema string) error {
	fk1 := info.ForeignKeys[table.ForeignKeys[0]]
	fk2 := info.ForeignKeys[table.ForeignKeys[1]]
	label1 := info.Tables[fk1.ParentTable].Label(defaultSchema)
	label2 := info.Tables[fk2.ParentTable].Label(defaultSchema)
	edgeType := table.Label(defaultSchema)

	var created, skipped int
	err := src.ReadTable(ctx, table, func(row []value.Value) error {
		id1 := foreignKeyMatcher(info, fk1, row)
		id2 := foreignKeyMatcher(info, fk2, row)
		if !wellDefined(id1) || !wellDefined(id2) {
			skipped++
			return nil
		}
		excluded := map[int]bool{}
		for _, c := range fk1.ChildColumns {
			excluded[c] = true
		}
		for _, c := range fk2.ChildColumns {
			excluded[c] = true
		}
		var positions []int
		for i := range table.Columns {
			if !excluded[i] {
				positions = append(positions, i)
			}
		}
		properties := extractProperties(table, row, positions)
		count, err := dst.CreateRelationships(ctx, label1, id1, label2, id2, edgeType, properties, false)
		if err != nil {
			return err
		}
		if count != 1 {
			return fmt.Errorf("expected to create exactly 1 relationship for join table %q, created %d", table.Name, count)
		}
		created++
		return nil
	})
	if err != nil {
		return err
	}
	log.Printf("migrated %d rows of %s as relationships (%d skipped: null foreign key)", created, table.Name, skipped)
	return nil
}

// migrateForeignKeyEdges connects every row of a non-join table to the
// rows its foreign keys reference. Tables without a primary key have no
// reliable node identity, so their edges are MERGEd rather than CREATEd
// to avoid duplicate relationships if this step ever reruns.
func migrateForeignKeyEdges(ctx context.Context, src RelationalSource, dst *destination.Writer, info schema.Info, table schema.Table, defaultSchema string) error {
	label1 := table.Label(defaultSchema)
	useMerge := len(table.PrimaryKey) == 0
	var created, skipped int
	err := src.ReadTable(ctx, table, func(row []value.Value) error {
		var idPositions []int
		if len(table.PrimaryKey) > 0 {
			idPositions = table.PrimaryKey
		} else {
			idPositions = allPositions(len(table.Columns))
		}
		id1 := extractProperties(table, row, idPositions)

		for _, fkPos := range table.ForeignKeys {
			fk := info.ForeignKeys[fkPos]
			id2 := foreignKeyMatcher(info, fk, row)
			if !wellDefined(id2) {
				skipped++
				continue
			}
			label2 := info.Tables[fk.ParentTable].Label(defaultSchema)
			edgeType := label1 + "_to_" + label2
			count, err := dst.CreateRelationships(ctx, label1, id1, label2, id2, edgeType, value.NewMap(0), useMerge)
			if err != nil {
				return err
			}
			if !useMerge && count != 1 {
				return fmt.Errorf("expected to create exactly 1 relationship from %q, created %d", table.Name, count)
			}
			created++
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.Printf("migrated %d foreign key relationships from %s (%d skipped: null foreign key)", created, table.Name, skipped)
	return nil
}

func extractProperties(table schema.Table, row []value.Value, positions []int) *value.Map {
	properties := value.NewMap(len(positions))
	for _, pos := range positions {
		properties.InsertUnsafe(table.Columns[pos], row[pos])
	}
	return properties
}

// foreignKeyMatcher builds the identity map used to match a foreign key's
// referenced row: for each (child column, parent column) pair, the
// parent's column name bound to the child row's value.
func foreignKeyMatcher(info schema.Info, fk schema.ForeignKey, row []value.Value) *value.Map {
	parentTable := info.Tables[fk.ParentTable]
	m := value.NewMap(len(fk.ChildColumns))
	for i, childPos := range fk.ChildColumns {
		parentPos := fk.ParentColumns[i]
		m.InsertUnsafe(parentTable.Columns[parentPos], row[childPos])
	}
	return m
}

// wellDefined reports whether every value in a foreign key matcher is
// non-null; a matcher containing a null means the row's foreign key is
// itself null, and the would-be relationship is silently skipped rather
// than attempted against a non-existent match.
func wellDefined(m *value.Map) bool {
	wellDefined := true
	m.Range(func(_ string, v value.Value) bool {
		if v.IsNull() {
			wellDefined = false
			return false
		}
		return true
	})
	return wellDefined
}

// logWarnings reports a compatibility report under kind, one line per
// warning, matching the source adapters' own progress logging.
func logWarnings(kind string, warnings []string) {
	if len(warnings) == 0 {
		return
	}
	log.Printf("%s report: %d item(s) may require manual handling", kind, len(warnings))
	for _, w := range warnings {
		log.Printf("  WARN: %s", w)
	}
}

func allPositions(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
