// Package mysql introspects a MySQL database's schema and streams its
// table rows, the way a relational source feeds the migration
// orchestrator. MySQL has no separate schema concept, so every table's
// SchemaName is the database name itself.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"

	"github.com/memgraph-tools/mgmigrate/internal/schema"
	"github.com/memgraph-tools/mgmigrate/internal/value"
)

// systemSchemas names the databases that hold MySQL's own catalogs and
// housekeeping tables, never a user's data.
var systemSchemas = map[string]bool{
	"information_schema": true,
	"mysql":               true,
	"performance_schema":  true,
	"sys":                 true,
}

// Source introspects and reads a MySQL database through a single
// *sql.DB. Only one ReadTable call may be active at a time.
type Source struct {
	db       *sql.DB
	database string
	cursor   bool
}

// Connect normalizes dsn the way a reporting connection should be opened:
// parsed times in UTC, so temporal columns come back as time.Time rather
// than opaque byte strings.
func Connect(dsn string) (*Source, error) {
	cfg, err := mysqldriver.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql source: parse dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	database := cfg.DBName
	if database == "" {
		return nil, fmt.Errorf("mysql source: dsn must name a database")
	}
	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("mysql source: open: %w", err)
	}
	// One underlying driver connection per adapter; introspection queries
	// below run sequentially rather than concurrently because of this.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("mysql source: connect: %w", err)
	}
	return &Source{db: db, database: database}, nil
}

func (s *Source) Close() {
	s.db.Close()
}

// SchemaInfo introspects every base table of the source database, along
// with its primary key, foreign keys, and unique/existence constraints.
func (s *Source) SchemaInfo(ctx context.Context) (schema.Info, error) {
	var info schema.Info
	if systemSchemas[s.database] {
		return info, fmt.Errorf("mysql source: refusing to migrate the system database %q", s.database)
	}

	names, err := s.listTables(ctx)
	if err != nil {
		return info, err
	}
	rawFKs, err := s.listForeignKeysRaw(ctx)
	if err != nil {
		return info, err
	}

	for _, name := range names {
		columns, columnTypes, err := s.listColumns(ctx, name)
		if err != nil {
			return info, err
		}
		info.Tables = append(info.Tables, schema.Table{SchemaName: s.database, Name: name, Columns: columns, ColumnTypes: columnTypes})
	}

	for i := range info.Tables {
		pkColumns, indexes, err := s.indexesFor(ctx, info.Tables[i].Name)
		if err != nil {
			return info, err
		}
		for _, col := range pkColumns {
			pos := info.Tables[i].ColumnIndex(col)
			if pos < 0 {
				return info, fmt.Errorf("mysql source: primary key column %q not found in table %q", col, info.Tables[i].Name)
			}
			info.Tables[i].PrimaryKey = append(info.Tables[i].PrimaryKey, pos)
		}
		if len(info.Tables[i].PrimaryKey) > 0 {
			info.UniqueConstraints = append(info.UniqueConstraints, schema.UniqueConstraint{Table: i, Columns: info.Tables[i].PrimaryKey})
		}
		info.Tables[i].Indexes = indexes
		for _, idx := range indexes {
			if !idx.Unique {
				continue
			}
			positions := make([]int, len(idx.Columns))
			for j, col := range idx.Columns {
				pos := info.Tables[i].ColumnIndex(col)
				if pos < 0 {
					return info, fmt.Errorf("mysql source: unique key column %q not found in table %q", col, info.Tables[i].Name)
				}
				positions[j] = pos
			}
			info.UniqueConstraints = append(info.UniqueConstraints, schema.UniqueConstraint{Table: i, Columns: positions})
		}
	}

	notNull, err := s.notNullColumns(ctx)
	if err != nil {
		return info, err
	}
	for _, nn := range notNull {
		idx := schema.TableIndex(info.Tables, s.database, nn.table)
		if idx < 0 {
			continue
		}
		col := info.Tables[idx].ColumnIndex(nn.column)
		if col < 0 {
			continue
		}
		info.ExistenceConstraints = append(info.ExistenceConstraints, schema.ExistenceConstraint{Table: idx, Column: col})
	}

	foreignKeys, err := s.resolveForeignKeys(info.Tables, rawFKs)
	if err != nil {
		return info, err
	}
	info.ForeignKeys = foreignKeys
	for i, fk := range foreignKeys {
		info.Tables[fk.ChildTable].ForeignKeys = append(info.Tables[fk.ChildTable].ForeignKeys, i)
		info.Tables[fk.ParentTable].PrimaryKeyReferenced = true
	}
	return info, nil
}

func (s *Source) listTables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES
		 WHERE TABLE_SCHEMA = ? AND TABLE_TYPE = 'BASE TABLE'
		 ORDER BY TABLE_NAME`, s.database)
	if err != nil {
		return nil, fmt.Errorf("mysql source: list tables: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("mysql source: list tables: %w", err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

func (s *Source) listColumns(ctx context.Context, table string) ([]string, []string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT COLUMN_NAME, COLUMN_TYPE FROM INFORMATION_SCHEMA.COLUMNS
		 WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
		 ORDER BY ORDINAL_POSITION`, s.database, table)
	if err != nil {
		return nil, nil, fmt.Errorf("mysql source: list columns of %q: %w", table, err)
	}
	defer rows.Close()
	var names, types []string
	for rows.Next() {
		var name, typ string
		if err := rows.Scan(&name, &typ); err != nil {
			return nil, nil, fmt.Errorf("mysql source: list columns of %q: %w", table, err)
		}
		names = append(names, name)
		types = append(types, typ)
	}
	return names, types, rows.Err()
}

// indexesFor returns the primary key columns (in key order) and every
// other index on table, in enough detail to decide whether each one can
// be replayed as an equivalent destination index: a functional key-part
// (COLUMN_NAME NULL, MySQL 8+) marks the index as Expression, and a
// non-NULL SUB_PART marks it as a prefix index.
func (s *Source) indexesFor(ctx context.Context, table string) (primaryKey []string, indexes []schema.Index, err error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT INDEX_NAME, COLUMN_NAME, NON_UNIQUE, INDEX_TYPE, SUB_PART
		 FROM INFORMATION_SCHEMA.STATISTICS
		 WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
		 ORDER BY INDEX_NAME, SEQ_IN_INDEX`, s.database, table)
	if err != nil {
		return nil, nil, fmt.Errorf("mysql source: list indexes of %q: %w", table, err)
	}
	defer rows.Close()

	type accum struct {
		columns []string
		unique  bool
		method  string
		expr    bool
		prefix  bool
	}
	var order []string
	byIndex := make(map[string]*accum)
	for rows.Next() {
		var indexName, indexType string
		var columnName sql.NullString
		var nonUnique int
		var subPart sql.NullInt64
		if err := rows.Scan(&indexName, &columnName, &nonUnique, &indexType, &subPart); err != nil {
			return nil, nil, fmt.Errorf("mysql source: list indexes of %q: %w", table, err)
		}
		a, seen := byIndex[indexName]
		if !seen {
			a = &accum{unique: nonUnique == 0, method: indexType}
			byIndex[indexName] = a
			order = append(order, indexName)
		}
		if columnName.Valid {
			a.columns = append(a.columns, columnName.String)
		} else {
			a.expr = true
		}
		if subPart.Valid {
			a.prefix = true
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	for _, name := range order {
		a := byIndex[name]
		if name == "PRIMARY" {
			primaryKey = a.columns
			continue
		}
		indexes = append(indexes, schema.Index{
			Name: name, Columns: a.columns, Unique: a.unique,
			Method: a.method, Expression: a.expr, Prefix: a.prefix,
		})
	}
	return primaryKey, indexes, nil
}

type notNullColumn struct{ table, column string }

func (s *Source) notNullColumns(ctx context.Context) ([]notNullColumn, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT TABLE_NAME, COLUMN_NAME FROM INFORMATION_SCHEMA.COLUMNS
		 WHERE TABLE_SCHEMA = ? AND IS_NULLABLE = 'NO'`, s.database)
	if err != nil {
		return nil, fmt.Errorf("mysql source: list existence constraints: %w", err)
	}
	defer rows.Close()
	var out []notNullColumn
	for rows.Next() {
		var c notNullColumn
		if err := rows.Scan(&c.table, &c.column); err != nil {
			return nil, fmt.Errorf("mysql source: list existence constraints: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// rawForeignKey is one (child column, parent column) row of a foreign key
// constraint, named rather than resolved to a table position, so it can be
// fetched before the table list is available.
type rawForeignKey struct {
	name         string
	childTable   string
	childColumn  string
	parentTable  string
	parentColumn string
}

func (s *Source) listForeignKeysRaw(ctx context.Context) ([]rawForeignKey, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT kcu.CONSTRAINT_NAME, kcu.TABLE_NAME, kcu.COLUMN_NAME,
		        kcu.REFERENCED_TABLE_NAME, kcu.REFERENCED_COLUMN_NAME
		 FROM INFORMATION_SCHEMA.KEY_COLUMN_USAGE kcu
		 WHERE kcu.TABLE_SCHEMA = ? AND kcu.REFERENCED_TABLE_NAME IS NOT NULL
		 ORDER BY kcu.CONSTRAINT_NAME, kcu.ORDINAL_POSITION`, s.database)
	if err != nil {
		return nil, fmt.Errorf("mysql source: list foreign keys: %w", err)
	}
	defer rows.Close()

	var out []rawForeignKey
	for rows.Next() {
		var fk rawForeignKey
		if err := rows.Scan(&fk.name, &fk.childTable, &fk.childColumn, &fk.parentTable, &fk.parentColumn); err != nil {
			return nil, fmt.Errorf("mysql source: list foreign keys: %w", err)
		}
		out = append(out, fk)
	}
	return out, rows.Err()
}

// resolveForeignKeys groups raw foreign key rows (already ordered by
// constraint name, then child ordinal) into schema.ForeignKey values with
// column positions resolved against tables.
func (s *Source) resolveForeignKeys(tables []schema.Table, raw []rawForeignKey) ([]schema.ForeignKey, error) {
	var out []schema.ForeignKey
	var current schema.ForeignKey
	var prevName string
	for _, fk := range raw {
		childIdx := schema.TableIndex(tables, s.database, fk.childTable)
		parentIdx := schema.TableIndex(tables, s.database, fk.parentTable)
		if childIdx < 0 || parentIdx < 0 {
			return nil, fmt.Errorf("mysql source: foreign key %q references an unknown table", fk.name)
		}
		childCol := tables[childIdx].ColumnIndex(fk.childColumn)
		parentCol := tables[parentIdx].ColumnIndex(fk.parentColumn)
		if childCol < 0 || parentCol < 0 {
			return nil, fmt.Errorf("mysql source: foreign key %q references an unknown column", fk.name)
		}
		if fk.name != prevName {
			if len(current.ChildColumns) > 0 {
				out = append(out, current)
			}
			current = schema.ForeignKey{ChildTable: childIdx, ParentTable: parentIdx}
		}
		current.ChildColumns = append(current.ChildColumns, childCol)
		current.ParentColumns = append(current.ParentColumns, parentCol)
		prevName = fk.name
	}
	if len(current.ChildColumns) > 0 {
		out = append(out, current)
	}
	return out, nil
}

// ReadTable streams every row of table in column order, invoking visit
// once per row. Only one ReadTable call may be in flight at a time.
func (s *Source) ReadTable(ctx context.Context, table schema.Table, visit func([]value.Value) error) error {
	if s.cursor {
		return fmt.Errorf("mysql source: a cursor is already active")
	}
	s.cursor = true
	defer func() { s.cursor = false }()

	cols := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		cols[i] = quoteIdent(c)
	}
	statement := fmt.Sprintf("SELECT %s FROM %s", strings.Join(cols, ", "), quoteIdent(table.Name))
	rows, err := s.db.QueryContext(ctx, statement)
	if err != nil {
		return fmt.Errorf("mysql source: read table %q: %w", table.Name, err)
	}
	defer rows.Close()

	scanTargets := make([]any, len(table.Columns))
	scanValues := make([]any, len(table.Columns))
	for i := range scanTargets {
		scanTargets[i] = &scanValues[i]
	}

	for rows.Next() {
		if err := rows.Scan(scanTargets...); err != nil {
			return fmt.Errorf("mysql source: read table %q: %w", table.Name, err)
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

// IntrospectSourceObjects reports the views, stored routines, and
// triggers defined on the source database; none of them migrate, this
// is purely so an operator knows to handle them by hand.
func (s *Source) IntrospectSourceObjects(ctx context.Context) (schema.SourceObjects, error) {
	var objs schema.SourceObjects
	var err error
	if objs.Views, err = s.queryNames(ctx,
		"SELECT TABLE_NAME FROM INFORMATION_SCHEMA.VIEWS WHERE TABLE_SCHEMA = ? ORDER BY TABLE_NAME"); err != nil {
		return objs, fmt.Errorf("mysql source: list views: %w", err)
	}
	if objs.Routines, err = s.queryNames(ctx,
		"SELECT ROUTINE_NAME FROM INFORMATION_SCHEMA.ROUTINES WHERE ROUTINE_SCHEMA = ? ORDER BY ROUTINE_NAME"); err != nil {
		return objs, fmt.Errorf("mysql source: list routines: %w", err)
	}
	if objs.Triggers, err = s.queryNames(ctx,
		"SELECT TRIGGER_NAME FROM INFORMATION_SCHEMA.TRIGGERS WHERE TRIGGER_SCHEMA = ? ORDER BY TRIGGER_NAME"); err != nil {
		return objs, fmt.Errorf("mysql source: list triggers: %w", err)
	}
	return objs, nil
}

func (s *Source) queryNames(ctx context.Context, query string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, s.database)
	if err != nil {
		return nil, err
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

func quoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
