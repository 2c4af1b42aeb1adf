// Package schema holds the relational schema model read once from a
// relational source at the start of a migration: tables, their columns,
// primary keys, foreign keys, and the uniqueness/existence constraints
// that get replayed as graph indices and constraints.
package schema

// Table describes one base table of the source relational schema.
// Column positions elsewhere in this package (PrimaryKey, ForeignKey
// columns, constraint columns) refer to this table's Columns slice.
type Table struct {
	SchemaName string
	Name       string
	Columns    []string

	// ColumnTypes holds each column's source-reported type name
	// (information_schema.columns.data_type for Postgres, COLUMN_TYPE for
	// MySQL), parallel to Columns by position. Used only for the
	// unsupported-type compatibility report, never for decoding.
	ColumnTypes []string

	// PrimaryKey holds column positions in key order; empty if the table
	// has no primary key.
	PrimaryKey []int

	// ForeignKeys holds indices into Info.ForeignKeys for every foreign
	// key whose child table is this one.
	ForeignKeys []int

	// PrimaryKeyReferenced is true if some foreign key (possibly on a
	// different table) references this table's primary key or a unique
	// key. It is what rules out classifying this table as a join table
	// even when it has exactly two foreign keys.
	PrimaryKeyReferenced bool

	// Indexes holds every secondary index found on the table (not
	// including the primary key), for the index-compatibility report.
	Indexes []Index
}

// Index describes one secondary index as introspected from the source,
// in enough detail to decide whether it can be replayed as an equivalent
// destination index.
type Index struct {
	Name    string
	Columns []string
	Unique  bool

	// Method names the index's access method ("btree", "hash", ...) for
	// Postgres, or INDEX_TYPE ("BTREE", "FULLTEXT", ...) for MySQL.
	Method string

	// Expression is true for an index with at least one expression
	// key-part rather than a plain column reference.
	Expression bool

	// Prefix is true for an index that only partially covers its table's
	// rows in a way a plain label/property index cannot reproduce: a
	// MySQL prefix (SUB_PART) index, or a Postgres partial index.
	Prefix bool
}

// ColumnIndex returns the position of name in t.Columns, or -1.
func (t Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// ForeignKey relates a child table's columns to a parent table's primary
// or unique key, in corresponding order.
type ForeignKey struct {
	ChildTable  int
	ParentTable int

	// ChildColumns and ParentColumns have equal length; ChildColumns[i]
	// on the child table matches ParentColumns[i] on the parent table.
	ChildColumns  []int
	ParentColumns []int
}

// UniqueConstraint names a set of columns on one table that are jointly
// unique in the source (covers both UNIQUE and PRIMARY KEY constraints).
type UniqueConstraint struct {
	Table   int
	Columns []int
}

// ExistenceConstraint records that a single column on a table is NOT
// NULL in the source.
type ExistenceConstraint struct {
	Table  int
	Column int
}

// Info is the complete relational schema as introspected from a source.
// It is built once at the start of a migration, consumed by the
// orchestrator, and discarded; Tables is indexed by position and
// ForeignKeys/constraints reference tables and columns by those
// positions, so Info must not be mutated once built.
type Info struct {
	Tables               []Table
	ForeignKeys          []ForeignKey
	UniqueConstraints    []UniqueConstraint
	ExistenceConstraints []ExistenceConstraint
}

// TableIndex returns the position of the table identified by
// (schemaName, name) in tables, or -1 if not found.
func TableIndex(tables []Table, schemaName, name string) int {
	for i, t := range tables {
		if t.SchemaName == schemaName && t.Name == name {
			return i
		}
	}
	return -1
}

// IsJoinTable implements the classification rule: a table is a join
// table iff it has exactly two foreign keys and no foreign key (from any
// table) references its primary key.
func (t Table) IsJoinTable() bool {
	return len(t.ForeignKeys) == 2 && !t.PrimaryKeyReferenced
}

// Label returns the graph label a table's rows are created under: the
// bare table name when the table lives in the source's default schema
// ("public" for Postgres, the database name itself for MySQL, which has
// no separate schema concept), otherwise "schema_name".
func (t Table) Label(defaultSchema string) string {
	if t.SchemaName == defaultSchema {
		return t.Name
	}
	return t.SchemaName + "_" + t.Name
}
