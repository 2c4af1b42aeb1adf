package config

import "testing"

func TestOverrideLeavesFileValuesWhenCLIFieldsAreZero(t *testing.T) {
	file := Raw{SourceKind: "postgresql", SourceHost: "db.internal", DestinationHost: "graph.internal", DestinationPort: 7687}
	// override represents what main.go builds when no CLI flag was
	// explicitly passed: every field left at its Go zero value, not at
	// whatever default spf13/cobra would otherwise bind the flag to.
	cli := Raw{}
	got := Override(file, cli)
	if got.SourceKind != "postgresql" {
		t.Errorf("SourceKind = %q, want the file's \"postgresql\" to survive an empty CLI override", got.SourceKind)
	}
	if got.SourceHost != "db.internal" {
		t.Errorf("SourceHost = %q, want the file's \"db.internal\" to survive an empty CLI override", got.SourceHost)
	}
	if got.DestinationHost != "graph.internal" || got.DestinationPort != 7687 {
		t.Errorf("destination = %s:%d, want the file's graph.internal:7687 to survive an empty CLI override", got.DestinationHost, got.DestinationPort)
	}
}

func TestOverrideLetsCLIFieldsWin(t *testing.T) {
	file := Raw{SourceKind: "postgresql", SourceHost: "db.internal"}
	cli := Raw{SourceKind: "mysql", SourceHost: "cli-host"}
	got := Override(file, cli)
	if got.SourceKind != "mysql" || got.SourceHost != "cli-host" {
		t.Errorf("SourceKind/SourceHost = %q/%q, want the explicit CLI values to win", got.SourceKind, got.SourceHost)
	}
}

func TestOverrideUseSSLPointerLetsFileDisableWhatCLIDefaultsToTrue(t *testing.T) {
	disabled := false
	file := Raw{SourceUseSSL: &disabled}
	cli := Raw{} // CLI flag not explicitly passed
	got := Override(file, cli)
	if got.SourceUseSSL == nil || *got.SourceUseSSL != false {
		t.Errorf("SourceUseSSL = %v, want the file's false to survive an unset CLI flag", got.SourceUseSSL)
	}
}
