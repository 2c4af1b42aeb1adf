package config

import "testing"

func TestResolveDefaultsPortByKind(t *testing.T) {
	cfg, err := Resolve(Raw{
		SourceKind: "postgresql", SourceHost: "db.internal", SourceDatabase: "app",
		DestinationHost: "graph.internal", DestinationPort: 7687,
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.SourcePort != 5432 {
		t.Errorf("SourcePort = %d, want 5432", cfg.SourcePort)
	}
}

func TestResolveRejectsUnknownKind(t *testing.T) {
	_, err := Resolve(Raw{SourceKind: "oracle", SourceHost: "h", DestinationHost: "h2", DestinationPort: 7687})
	if err == nil {
		t.Errorf("expected an error for an unsupported source_kind")
	}
}

func TestResolveRejectsMatchingEndpoints(t *testing.T) {
	_, err := Resolve(Raw{
		SourceKind: "memgraph", SourceHost: "127.0.0.1", SourcePort: 7687,
		DestinationHost: "127.0.0.1", DestinationPort: 7687,
	})
	if err == nil {
		t.Errorf("expected an error when source and destination endpoints match")
	}
}

func TestResolveRequiresDatabaseForRelationalSources(t *testing.T) {
	_, err := Resolve(Raw{
		SourceKind: "mysql", SourceHost: "db", DestinationHost: "graph", DestinationPort: 7687,
	})
	if err == nil {
		t.Errorf("expected an error when source_database is empty for a relational source")
	}
}

func TestResolveAllowsEmptyDatabaseForGraphSource(t *testing.T) {
	_, err := Resolve(Raw{
		SourceKind: "memgraph", SourceHost: "db", DestinationHost: "graph", DestinationPort: 7687,
	})
	if err != nil {
		t.Errorf("unexpected error for a graph source with no database name: %v", err)
	}
}
