package schema

import (
	"fmt"
	"strings"
)

// supportedColumnTypes names the coarse type categories a source
// adapter's decodeField maps onto a definite Value category, rather than
// falling back to a best-effort string conversion.
var supportedColumnTypes = map[string]bool{
	"boolean": true, "bool": true,
	"smallint": true, "integer": true, "int": true, "bigint": true,
	"tinyint": true, "mediumint": true,
	"real": true, "double precision": true, "numeric": true, "decimal": true,
	"float": true, "double": true,
	"character varying": true, "varchar": true, "character": true, "char": true,
	"text": true, "mediumtext": true, "longtext": true, "tinytext": true,
	"date": true, "timestamp": true, "timestamp without time zone": true,
	"timestamp with time zone": true, "datetime": true, "time": true,
	"bytea": true, "blob": true, "json": true, "jsonb": true,
	"uuid": true,
	"array": true,
}

func normalizeColumnType(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	array := strings.HasSuffix(t, "[]")
	if array {
		t = strings.TrimSuffix(t, "[]")
	}
	if paren := strings.IndexByte(t, '('); paren >= 0 {
		t = t[:paren]
	}
	t = strings.TrimSuffix(strings.TrimSuffix(t, " zerofill"), " unsigned")
	if array {
		return "array"
	}
	return t
}

// CollectUnsupportedTypeWarnings reports every column whose declared type
// has no dedicated decoding rule in the source adapter, so it would
// migrate through a best-effort string conversion instead.
func CollectUnsupportedTypeWarnings(info Info) []string {
	var warnings []string
	for _, t := range info.Tables {
		for i, colType := range t.ColumnTypes {
			if colType == "" || supportedColumnTypes[normalizeColumnType(colType)] {
				continue
			}
			warnings = append(warnings, fmt.Sprintf(
				"%s.%s (%s): no dedicated decoding rule, will convert via fallback string formatting",
				t.Name, t.Columns[i], colType))
		}
	}
	return warnings
}

// IndexUnsupportedReason reports why idx cannot be replayed as an
// equivalent destination index, if any.
func IndexUnsupportedReason(idx Index) (string, bool) {
	if idx.Expression {
		return "expression index key-parts are not currently supported", true
	}
	if idx.Prefix {
		return "partial or prefix indexes are not currently supported", true
	}
	if idx.Method != "" && !strings.EqualFold(idx.Method, "btree") {
		return fmt.Sprintf("index method %q is not supported", idx.Method), true
	}
	if len(idx.Columns) == 0 {
		return "index has no plain column key-parts", true
	}
	return "", false
}

// CollectIndexCompatibilityWarnings reports every index that will be
// dropped rather than replayed on the destination.
func CollectIndexCompatibilityWarnings(info Info) []string {
	var warnings []string
	for _, t := range info.Tables {
		for _, idx := range t.Indexes {
			if reason, unsupported := IndexUnsupportedReason(idx); unsupported {
				warnings = append(warnings, fmt.Sprintf("%s.%s (%v): %s", t.Name, idx.Name, idx.Columns, reason))
			}
		}
	}
	return warnings
}

// SourceObjects holds non-table source objects that require manual
// migration: views, triggers, and stored routines are Non-goals for
// migration itself, but an operator should still be told they exist.
type SourceObjects struct {
	Views    []string
	Routines []string
	Triggers []string
}

// SourceObjectWarnings reports the non-table objects found during
// introspection so an operator knows to handle them by hand; none of
// their logic is ever migrated.
func SourceObjectWarnings(objs SourceObjects) []string {
	if len(objs.Views) == 0 && len(objs.Routines) == 0 && len(objs.Triggers) == 0 {
		return nil
	}
	warnings := []string{fmt.Sprintf(
		"source contains non-table objects not migrated automatically (%d views, %d routines, %d triggers)",
		len(objs.Views), len(objs.Routines), len(objs.Triggers),
	)}
	for _, v := range objs.Views {
		warnings = append(warnings, fmt.Sprintf("view: %s", v))
	}
	for _, r := range objs.Routines {
		warnings = append(warnings, fmt.Sprintf("routine: %s", r))
	}
	for _, t := range objs.Triggers {
		warnings = append(warnings, fmt.Sprintf("trigger: %s", t))
	}
	return warnings
}
