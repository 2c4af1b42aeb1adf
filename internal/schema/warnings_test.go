package schema

import "testing"

func TestCollectUnsupportedTypeWarnings(t *testing.T) {
	info := Info{
		Tables: []Table{
			{
				Name:        "users",
				Columns:     []string{"id", "location"},
				ColumnTypes: []string{"integer", "geometry"},
			},
			{
				Name:        "events",
				Columns:     []string{"payload", "tags"},
				ColumnTypes: []string{"jsonb", "point"},
			},
		},
	}

	warnings := CollectUnsupportedTypeWarnings(info)
	if len(warnings) != 2 {
		t.Fatalf("CollectUnsupportedTypeWarnings len = %d, want 2 (%v)", len(warnings), warnings)
	}
}

func TestCollectUnsupportedTypeWarningsNormalizesModifiersAndArrays(t *testing.T) {
	info := Info{
		Tables: []Table{
			{
				Name:        "products",
				Columns:     []string{"name", "price", "tags"},
				ColumnTypes: []string{"varchar(255)", "int unsigned", "text[]"},
			},
		},
	}

	warnings := CollectUnsupportedTypeWarnings(info)
	if len(warnings) != 0 {
		t.Fatalf("CollectUnsupportedTypeWarnings = %v, want no warnings for known types with modifiers", warnings)
	}
}

func TestCollectIndexCompatibilityWarnings(t *testing.T) {
	info := Info{
		Tables: []Table{
			{
				Name: "users",
				Indexes: []Index{
					{Name: "users_email_idx", Columns: []string{"email"}, Unique: true, Method: "btree"},
					{Name: "users_bio_fts", Columns: []string{"bio"}, Method: "gin"},
					{Name: "users_name_prefix", Columns: []string{"name"}, Method: "btree", Prefix: true},
					{Name: "users_lower_email", Method: "btree", Expression: true},
				},
			},
		},
	}

	warnings := CollectIndexCompatibilityWarnings(info)
	if len(warnings) != 3 {
		t.Fatalf("CollectIndexCompatibilityWarnings len = %d, want 3 (%v)", len(warnings), warnings)
	}
}

func TestSourceObjectWarningsEmpty(t *testing.T) {
	if got := SourceObjectWarnings(SourceObjects{}); got != nil {
		t.Errorf("SourceObjectWarnings(empty) = %v, want nil", got)
	}
}

func TestSourceObjectWarningsListsEachObject(t *testing.T) {
	objs := SourceObjects{
		Views:    []string{"public.active_users"},
		Routines: []string{"public.recalculate_totals"},
		Triggers: []string{"public.users_audit"},
	}
	warnings := SourceObjectWarnings(objs)
	if len(warnings) != 4 {
		t.Fatalf("SourceObjectWarnings len = %d, want 4 (summary + 3 objects): %v", len(warnings), warnings)
	}
}
