// Package postgres introspects a PostgreSQL database's schema and streams
// its table rows through a single server-side cursor, the way a
// relational source feeds the migration orchestrator.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/memgraph-tools/mgmigrate/internal/schema"
	"github.com/memgraph-tools/mgmigrate/internal/value"
)

// schemaBlacklist names schemas that hold Postgres's own catalogs, never a
// user's data.
var schemaBlacklist = []string{"information_schema", "pg_catalog"}

// Source introspects and reads a PostgreSQL database through a pooled
// connection. Only one cursor (ReadTable call) may be active at a time.
type Source struct {
	pool   *pgxpool.Pool
	cursor pgx.Tx
}

func Connect(ctx context.Context, host string, port uint16, username, password, database string) (*Source, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s", username, password, host, port, database)
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres source: connect: %w", err)
	}
	// One underlying driver connection per adapter; introspection queries
	// below run sequentially rather than concurrently because of this.
	poolConfig.MaxConns = 1
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("postgres source: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres source: connect: %w", err)
	}
	return &Source{pool: pool}, nil
}

func (s *Source) Close() {
	s.pool.Close()
}

// SchemaInfo introspects every base table outside the catalog schemas,
// along with its primary key, foreign keys, and unique/existence
// constraints.
func (s *Source) SchemaInfo(ctx context.Context) (schema.Info, error) {
	var info schema.Info

	names, err := s.listTables(ctx)
	if err != nil {
		return info, err
	}
	rawFKs, err := s.listForeignKeysRaw(ctx)
	if err != nil {
		return info, err
	}

	for _, name := range names {
		columns, columnTypes, err := s.listColumns(ctx, name.schema, name.name)
		if err != nil {
			return info, err
		}
		pkColumns, err := s.primaryKeyColumns(ctx, name.schema, name.name)
		if err != nil {
			return info, err
		}
		pk := make([]int, len(pkColumns))
		for i, col := range pkColumns {
			pos := indexOf(columns, col)
			if pos < 0 {
				return info, fmt.Errorf("postgres source: primary key column %q not found in table %q", col, name.name)
			}
			pk[i] = pos
		}
		indexes, err := s.listIndexes(ctx, name.schema, name.name)
		if err != nil {
			return info, err
		}
		info.Tables = append(info.Tables, schema.Table{
			SchemaName:  name.schema,
			Name:        name.name,
			Columns:     columns,
			ColumnTypes: columnTypes,
			PrimaryKey:  pk,
			Indexes:     indexes,
		})
	}

	foreignKeys, err := resolveForeignKeys(info.Tables, rawFKs)
	if err != nil {
		return info, err
	}
	info.ForeignKeys = foreignKeys
	for i, fk := range foreignKeys {
		info.Tables[fk.ChildTable].ForeignKeys = append(info.Tables[fk.ChildTable].ForeignKeys, i)
		info.Tables[fk.ParentTable].PrimaryKeyReferenced = true
	}

	info.ExistenceConstraints, err = s.listExistenceConstraints(ctx, info.Tables)
	if err != nil {
		return info, err
	}
	info.UniqueConstraints, err = s.listUniqueConstraints(ctx, info.Tables)
	if err != nil {
		return info, err
	}
	return info, nil
}

type tableName struct{ schema, name string }

func (s *Source) listTables(ctx context.Context) ([]tableName, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT table_schema, table_name FROM information_schema.tables "+
			"WHERE table_type = 'BASE TABLE' AND table_schema NOT IN ("+placeholders(len(schemaBlacklist))+")",
		toAnySlice(schemaBlacklist)...,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres source: list tables: %w", err)
	}
	defer rows.Close()
	var out []tableName
	for rows.Next() {
		var t tableName
		if err := rows.Scan(&t.schema, &t.name); err != nil {
			return nil, fmt.Errorf("postgres source: list tables: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Source) listColumns(ctx context.Context, tableSchema, tableName string) ([]string, []string, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT column_name, data_type FROM information_schema.columns WHERE table_schema = $1 AND table_name = $2 ORDER BY ordinal_position",
		tableSchema, tableName,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres source: list columns of %s.%s: %w", tableSchema, tableName, err)
	}
	defer rows.Close()
	var names, types []string
	for rows.Next() {
		var name, typ string
		if err := rows.Scan(&name, &typ); err != nil {
			return nil, nil, fmt.Errorf("postgres source: list columns of %s.%s: %w", tableSchema, tableName, err)
		}
		names = append(names, name)
		types = append(types, typ)
	}
	return names, types, rows.Err()
}

// listIndexes reports every secondary index on a table (excluding the
// primary key, which is tracked separately), in enough detail to decide
// whether it can be replayed as an equivalent destination index.
func (s *Source) listIndexes(ctx context.Context, tableSchema, tableName string) ([]schema.Index, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT ic.relname::text, ix.indisunique, am.amname::text, "+
			"  (ix.indexprs IS NOT NULL), (ix.indpred IS NOT NULL), "+
			"  COALESCE(array_agg(att.attname::text ORDER BY k.ord) FILTER (WHERE att.attname IS NOT NULL), '{}') "+
			"FROM pg_index ix "+
			"JOIN pg_class ic ON ic.oid = ix.indexrelid "+
			"JOIN pg_class tc ON tc.oid = ix.indrelid "+
			"JOIN pg_namespace ns ON ns.oid = tc.relnamespace "+
			"JOIN pg_am am ON am.oid = ic.relam "+
			"LEFT JOIN LATERAL unnest(ix.indkey) WITH ORDINALITY AS k(attnum, ord) ON true "+
			"LEFT JOIN pg_attribute att ON att.attrelid = tc.oid AND att.attnum = k.attnum AND k.attnum <> 0 "+
			"WHERE ns.nspname = $1 AND tc.relname = $2 AND NOT ix.indisprimary "+
			"GROUP BY ic.relname, ix.indisunique, am.amname, ix.indexprs, ix.indpred",
		tableSchema, tableName,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres source: list indexes of %s.%s: %w", tableSchema, tableName, err)
	}
	defer rows.Close()

	var out []schema.Index
	for rows.Next() {
		var idx schema.Index
		var hasExpression, isPartial bool
		if err := rows.Scan(&idx.Name, &idx.Unique, &idx.Method, &hasExpression, &isPartial, &idx.Columns); err != nil {
			return nil, fmt.Errorf("postgres source: list indexes of %s.%s: %w", tableSchema, tableName, err)
		}
		idx.Expression = hasExpression
		idx.Prefix = isPartial
		out = append(out, idx)
	}
	return out, rows.Err()
}

// IntrospectSourceObjects discovers the views, stored routines, and
// triggers defined in the source database, none of which this tool
// migrates automatically.
func (s *Source) IntrospectSourceObjects(ctx context.Context) (schema.SourceObjects, error) {
	var objs schema.SourceObjects

	viewRows, err := s.pool.Query(ctx,
		"SELECT table_schema || '.' || table_name FROM information_schema.views "+
			"WHERE table_schema NOT IN ("+placeholders(len(schemaBlacklist))+")",
		toAnySlice(schemaBlacklist)...,
	)
	if err != nil {
		return objs, fmt.Errorf("postgres source: list views: %w", err)
	}
	for viewRows.Next() {
		var name string
		if err := viewRows.Scan(&name); err != nil {
			viewRows.Close()
			return objs, fmt.Errorf("postgres source: list views: %w", err)
		}
		objs.Views = append(objs.Views, name)
	}
	if err := viewRows.Err(); err != nil {
		viewRows.Close()
		return objs, err
	}
	viewRows.Close()

	routineRows, err := s.pool.Query(ctx,
		"SELECT routine_schema || '.' || routine_name FROM information_schema.routines "+
			"WHERE routine_schema NOT IN ("+placeholders(len(schemaBlacklist))+")",
		toAnySlice(schemaBlacklist)...,
	)
	if err != nil {
		return objs, fmt.Errorf("postgres source: list routines: %w", err)
	}
	for routineRows.Next() {
		var name string
		if err := routineRows.Scan(&name); err != nil {
			routineRows.Close()
			return objs, fmt.Errorf("postgres source: list routines: %w", err)
		}
		objs.Routines = append(objs.Routines, name)
	}
	if err := routineRows.Err(); err != nil {
		routineRows.Close()
		return objs, err
	}
	routineRows.Close()

	triggerRows, err := s.pool.Query(ctx,
		"SELECT DISTINCT trigger_schema || '.' || trigger_name FROM information_schema.triggers "+
			"WHERE trigger_schema NOT IN ("+placeholders(len(schemaBlacklist))+")",
		toAnySlice(schemaBlacklist)...,
	)
	if err != nil {
		return objs, fmt.Errorf("postgres source: list triggers: %w", err)
	}
	defer triggerRows.Close()
	for triggerRows.Next() {
		var name string
		if err := triggerRows.Scan(&name); err != nil {
			return objs, fmt.Errorf("postgres source: list triggers: %w", err)
		}
		objs.Triggers = append(objs.Triggers, name)
	}
	return objs, triggerRows.Err()
}

func (s *Source) primaryKeyColumns(ctx context.Context, tableSchema, tableName string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT usage.column_name FROM information_schema.table_constraints AS constraints "+
			"JOIN information_schema.key_column_usage AS usage "+
			"  USING (constraint_schema, constraint_name) "+
			"WHERE constraint_type = 'PRIMARY KEY' AND constraints.table_schema = $1 AND constraints.table_name = $2 "+
			"ORDER BY usage.ordinal_position",
		tableSchema, tableName,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres source: primary key of %s.%s: %w", tableSchema, tableName, err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("postgres source: primary key of %s.%s: %w", tableSchema, tableName, err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// rawForeignKey is one (child column, parent column) row of a foreign key
// constraint, named by schema/table/column rather than resolved position,
// so it can be fetched before the table list is available.
type rawForeignKey struct {
	name         string
	childSchema  string
	childTable   string
	childColumn  string
	parentSchema string
	parentTable  string
	parentColumn string
}

func (s *Source) listForeignKeysRaw(ctx context.Context) ([]rawForeignKey, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT constraints.constraint_name, child.table_schema, child.table_name, child.column_name, "+
			"  parent.table_schema, parent.table_name, parent.column_name "+
			"FROM information_schema.referential_constraints AS constraints "+
			"JOIN information_schema.key_column_usage AS child USING (constraint_schema, constraint_name) "+
			"JOIN information_schema.key_column_usage AS parent "+
			"  ON parent.ordinal_position = child.position_in_unique_constraint "+
			" AND parent.constraint_name = constraints.unique_constraint_name "+
			"WHERE constraints.constraint_schema NOT IN ("+placeholders(len(schemaBlacklist))+") "+
			"ORDER BY constraints.constraint_name, child.ordinal_position",
		toAnySlice(schemaBlacklist)...,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres source: list foreign keys: %w", err)
	}
	defer rows.Close()

	var out []rawForeignKey
	for rows.Next() {
		var fk rawForeignKey
		if err := rows.Scan(&fk.name, &fk.childSchema, &fk.childTable, &fk.childColumn,
			&fk.parentSchema, &fk.parentTable, &fk.parentColumn); err != nil {
			return nil, fmt.Errorf("postgres source: list foreign keys: %w", err)
		}
		out = append(out, fk)
	}
	return out, rows.Err()
}

// resolveForeignKeys groups raw foreign key rows (already ordered by
// constraint name, then child ordinal) into schema.ForeignKey values with
// column positions resolved against tables.
func resolveForeignKeys(tables []schema.Table, raw []rawForeignKey) ([]schema.ForeignKey, error) {
	var out []schema.ForeignKey
	var current schema.ForeignKey
	var prevName string
	for _, fk := range raw {
		childIdx := schema.TableIndex(tables, fk.childSchema, fk.childTable)
		parentIdx := schema.TableIndex(tables, fk.parentSchema, fk.parentTable)
		if childIdx < 0 || parentIdx < 0 {
			return nil, fmt.Errorf("postgres source: foreign key %q references an unknown table", fk.name)
		}
		childCol := tables[childIdx].ColumnIndex(fk.childColumn)
		parentCol := tables[parentIdx].ColumnIndex(fk.parentColumn)
		if childCol < 0 || parentCol < 0 {
			return nil, fmt.Errorf("postgres source: foreign key %q references an unknown column", fk.name)
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

func (s *Source) listExistenceConstraints(ctx context.Context, tables []schema.Table) ([]schema.ExistenceConstraint, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT table_schema, table_name, column_name FROM information_schema.columns "+
			"WHERE is_nullable = 'NO' AND table_schema NOT IN ("+placeholders(len(schemaBlacklist))+")",
		toAnySlice(schemaBlacklist)...,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres source: list existence constraints: %w", err)
	}
	defer rows.Close()
	var out []schema.ExistenceConstraint
	for rows.Next() {
		var tableSchema, tableName, columnName string
		if err := rows.Scan(&tableSchema, &tableName, &columnName); err != nil {
			return nil, fmt.Errorf("postgres source: list existence constraints: %w", err)
		}
		idx := schema.TableIndex(tables, tableSchema, tableName)
		if idx < 0 {
			continue
		}
		col := tables[idx].ColumnIndex(columnName)
		if col < 0 {
			continue
		}
		out = append(out, schema.ExistenceConstraint{Table: idx, Column: col})
	}
	return out, rows.Err()
}

func (s *Source) listUniqueConstraints(ctx context.Context, tables []schema.Table) ([]schema.UniqueConstraint, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT tc.constraint_name, tc.table_schema, tc.table_name, ccu.column_name "+
			"FROM information_schema.table_constraints AS tc "+
			"JOIN information_schema.constraint_column_usage AS ccu USING (constraint_name, table_schema) "+
			"WHERE tc.constraint_type IN ('UNIQUE', 'PRIMARY KEY') "+
			"ORDER BY tc.constraint_name",
	)
	if err != nil {
		return nil, fmt.Errorf("postgres source: list unique constraints: %w", err)
	}
	defer rows.Close()

	var out []schema.UniqueConstraint
	var current schema.UniqueConstraint
	var prevName string
	for rows.Next() {
		var name, tableSchema, tableName, columnName string
		if err := rows.Scan(&name, &tableSchema, &tableName, &columnName); err != nil {
			return nil, fmt.Errorf("postgres source: list unique constraints: %w", err)
		}
		idx := schema.TableIndex(tables, tableSchema, tableName)
		if idx < 0 {
			continue
		}
		col := tables[idx].ColumnIndex(columnName)
		if col < 0 {
			continue
		}
		if name != prevName {
			if len(current.Columns) > 0 {
				out = append(out, current)
			}
			current = schema.UniqueConstraint{Table: idx}
		}
		current.Columns = append(current.Columns, col)
		prevName = name
	}
	if len(current.Columns) > 0 {
		out = append(out, current)
	}
	return out, rows.Err()
}

// ReadTable streams every row of table in column order, invoking visit
// once per row. Only one ReadTable call may be in flight at a time.
func (s *Source) ReadTable(ctx context.Context, table schema.Table, visit func([]value.Value) error) error {
	if s.cursor != nil {
		return fmt.Errorf("postgres source: a cursor is already active")
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres source: read table %s.%s: %w", table.SchemaName, table.Name, err)
	}
	s.cursor = tx
	defer func() {
		_ = tx.Rollback(ctx)
		s.cursor = nil
	}()

	cols := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		cols[i] = quoteIdent(c)
	}
	statement := fmt.Sprintf("DECLARE mgmigrate_cursor CURSOR FOR SELECT %s FROM %s.%s",
		strings.Join(cols, ", "), quoteIdent(table.SchemaName), quoteIdent(table.Name))
	if _, err := tx.Exec(ctx, statement); err != nil {
		return fmt.Errorf("postgres source: read table %s.%s: %w", table.SchemaName, table.Name, err)
	}

	for {
		rows, err := tx.Query(ctx, "FETCH 1 FROM mgmigrate_cursor")
		if err != nil {
			return fmt.Errorf("postgres source: read table %s.%s: %w", table.SchemaName, table.Name, err)
		}
		more := rows.Next()
		if !more {
			rows.Close()
			return rows.Err()
		}
		raw, err := rows.Values()
		if err != nil {
			rows.Close()
			return fmt.Errorf("postgres source: read table %s.%s: %w", table.SchemaName, table.Name, err)
		}
		rows.Close()
		row := make([]value.Value, len(raw))
		for i, field := range raw {
			v, err := decodeField(field)
			if err != nil {
				return fmt.Errorf("postgres source: read table %s.%s: %w", table.SchemaName, table.Name, err)
			}
			row[i] = v
		}
		if len(row) != len(table.Columns) {
			return fmt.Errorf("postgres source: read table %s.%s: column count mismatch", table.SchemaName, table.Name)
		}
		if err := visit(row); err != nil {
			return err
		}
	}
}

func indexOf(items []string, item string) int {
	for i, v := range items {
		if v == item {
			return i
		}
	}
	return -1
}

func placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", i+1)
	}
	return strings.Join(parts, ", ")
}

func toAnySlice(items []string) []any {
	out := make([]any, len(items))
	for i, s := range items {
		out[i] = s
	}
	return out
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
