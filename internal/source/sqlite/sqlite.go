// Package sqlite is a relational source backed by an in-process SQLite
// database. It is not one of the migration tool's supported source
// kinds; it exists so tests can exercise the full relational migration
// path (schema introspection, join-table classification, foreign-key
// edges) against a real database instead of a hand-rolled fake.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/memgraph-tools/mgmigrate/internal/schema"
	"github.com/memgraph-tools/mgmigrate/internal/value"
)

// Source introspects and reads an in-process SQLite database. Every
// table is reported under the "main" schema, SQLite's only schema.
type Source struct {
	db *sql.DB
}

const defaultSchemaName = "main"

// Open starts a fresh in-memory SQLite database and runs ddl (arbitrary
// CREATE TABLE statements) against it.
func Open(ddl string) (*Source, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("sqlite source: open: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite source: enable foreign keys: %w", err)
	}
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite source: apply schema: %w", err)
	}
	return &Source{db: db}, nil
}

func (s *Source) Close() { s.db.Close() }

// Exec runs an arbitrary statement against the fixture database, for
// seeding rows in tests.
func (s *Source) Exec(statement string, args ...any) error {
	_, err := s.db.Exec(statement, args...)
	return err
}

func (s *Source) SchemaInfo(ctx context.Context) (schema.Info, error) {
	var info schema.Info

	names, err := s.listTables(ctx)
	if err != nil {
		return info, err
	}
	for _, name := range names {
		columns, err := s.listColumns(ctx, name)
		if err != nil {
			return info, err
		}
		pk, err := s.primaryKeyColumns(ctx, name, columns)
		if err != nil {
			return info, err
		}
		info.Tables = append(info.Tables, schema.Table{SchemaName: defaultSchemaName, Name: name, Columns: columns, PrimaryKey: pk})
	}

	var foreignKeys []schema.ForeignKey
	for i, table := range info.Tables {
		fks, err := s.foreignKeysFor(ctx, table, info.Tables)
		if err != nil {
			return info, err
		}
		for _, fk := range fks {
			idx := len(foreignKeys)
			foreignKeys = append(foreignKeys, fk)
			info.Tables[i].ForeignKeys = append(info.Tables[i].ForeignKeys, idx)
			info.Tables[fk.ParentTable].PrimaryKeyReferenced = true
		}
	}
	info.ForeignKeys = foreignKeys
	return info, nil
}

func (s *Source) listTables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("sqlite source: list tables: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

func (s *Source) listColumns(ctx context.Context, table string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(table)))
	if err != nil {
		return nil, fmt.Errorf("sqlite source: list columns of %q: %w", table, err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var cid int
		var name, colType string
		var notNull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("sqlite source: list columns of %q: %w", table, err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

func (s *Source) primaryKeyColumns(ctx context.Context, table string, columns []string) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(table)))
	if err != nil {
		return nil, fmt.Errorf("sqlite source: primary key of %q: %w", table, err)
	}
	defer rows.Close()

	type pkCol struct {
		pos int
		seq int
	}
	var found []pkCol
	for rows.Next() {
		var cid int
		var name, colType string
		var notNull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("sqlite source: primary key of %q: %w", table, err)
		}
		if pk > 0 {
			found = append(found, pkCol{pos: indexOf(columns, name), seq: pk})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	out := make([]int, len(found))
	for _, f := range found {
		out[f.seq-1] = f.pos
	}
	return out, nil
}

func (s *Source) foreignKeysFor(ctx context.Context, table schema.Table, tables []schema.Table) ([]schema.ForeignKey, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA foreign_key_list(%s)", quoteIdent(table.Name)))
	if err != nil {
		return nil, fmt.Errorf("sqlite source: foreign keys of %q: %w", table.Name, err)
	}
	defer rows.Close()

	byID := make(map[int]*schema.ForeignKey)
	var order []int
	for rows.Next() {
		var id, seq int
		var refTable, from, to, onUpdate, onDelete, match string
		if err := rows.Scan(&id, &seq, &refTable, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			return nil, fmt.Errorf("sqlite source: foreign keys of %q: %w", table.Name, err)
		}
		parentIdx := schema.TableIndex(tables, defaultSchemaName, refTable)
		if parentIdx < 0 {
			return nil, fmt.Errorf("sqlite source: foreign key on %q references unknown table %q", table.Name, refTable)
		}
		fk, ok := byID[id]
		if !ok {
			fk = &schema.ForeignKey{ChildTable: schema.TableIndex(tables, defaultSchemaName, table.Name), ParentTable: parentIdx}
			byID[id] = fk
			order = append(order, id)
		}
		fk.ChildColumns = append(fk.ChildColumns, table.ColumnIndex(from))
		fk.ParentColumns = append(fk.ParentColumns, tables[parentIdx].ColumnIndex(to))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	out := make([]schema.ForeignKey, len(order))
	for i, id := range order {
		out[i] = *byID[id]
	}
	// PRAGMA foreign_key_list numbers keys in reverse declaration order;
	// report them by child column position instead.
	sort.Slice(out, func(i, j int) bool { return out[i].ChildColumns[0] < out[j].ChildColumns[0] })
	return out, nil
}

// ReadTable streams every row of table in column order, invoking visit
// once per row.
func (s *Source) ReadTable(ctx context.Context, table schema.Table, visit func([]value.Value) error) error {
	cols := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		cols[i] = quoteIdent(c)
	}
	statement := fmt.Sprintf("SELECT %s FROM %s", strings.Join(cols, ", "), quoteIdent(table.Name))
	rows, err := s.db.QueryContext(ctx, statement)
	if err != nil {
		return fmt.Errorf("sqlite source: read table %q: %w", table.Name, err)
	}
	defer rows.Close()

	scanValues := make([]any, len(table.Columns))
	scanTargets := make([]any, len(table.Columns))
	for i := range scanValues {
		scanTargets[i] = &scanValues[i]
	}
	for rows.Next() {
		if err := rows.Scan(scanTargets...); err != nil {
			return fmt.Errorf("sqlite source: read table %q: %w", table.Name, err)
		}
		row := make([]value.Value, len(scanValues))
		for i, raw := range scanValues {
			row[i] = decodeField(raw)
		}
		if err := visit(row); err != nil {
			return err
		}
	}
	return rows.Err()
}

func indexOf(items []string, item string) int {
	for i, v := range items {
		if v == item {
			return i
		}
	}
	return -1
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
