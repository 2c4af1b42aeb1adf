// Package config resolves and validates the CLI flags that select a
// migration's source and destination, the way the CLI entrypoint hands
// connection parameters down to the rest of the system.
package config

import "fmt"

// Config is the fully resolved and validated set of connection
// parameters for one migration run.
type Config struct {
	SourceKind     string
	SourceHost     string
	SourcePort     uint16
	SourceUsername string
	SourcePassword string
	SourceUseSSL   bool
	SourceDatabase string

	DestinationHost     string
	DestinationPort     uint16
	DestinationUsername string
	DestinationPassword string
	DestinationUseSSL   bool

	// DryRun reports the introspected relational schema without writing
	// anything to the destination.
	DryRun bool
}

// Raw holds the CLI flags exactly as parsed, before kind-based port
// defaulting and validation.
type Raw struct {
	SourceKind     string
	SourceHost     string
	SourcePort     int
	SourceUsername string
	SourcePassword string
	SourceUseSSL   *bool
	SourceDatabase string

	DestinationHost     string
	DestinationPort     int
	DestinationUsername string
	DestinationPassword string
	DestinationUseSSL   *bool

	DryRun bool
}

// boolDefault returns *b if set, else def. Used to apply the "use SSL"
// default only when neither a CLI flag nor a config file set it, instead
// of letting a bool zero value silently mean "explicitly false".
func boolDefault(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

var defaultPorts = map[string]uint16{
	"memgraph":   7687,
	"postgresql": 5432,
	"mysql":      3306,
}

// stringDefault returns s if non-empty, else def. Mirrors boolDefault: the
// CLI flag's own default (e.g. "memgraph", "127.0.0.1") is applied here
// rather than at flag-binding time, so an unset raw field can still be
// filled in by a config file before falling back to the hardcoded default.
func stringDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// Resolve applies kind-based and host/port defaulting and validates the
// result once, before opening any connection.
func Resolve(raw Raw) (Config, error) {
	sourceKind := stringDefault(raw.SourceKind, "memgraph")
	switch sourceKind {
	case "memgraph", "postgresql", "mysql":
	default:
		return Config{}, fmt.Errorf("config: source_kind must be one of memgraph, postgresql, mysql, got %q", sourceKind)
	}

	sourceHost := stringDefault(raw.SourceHost, "127.0.0.1")
	sourcePort := raw.SourcePort
	if sourcePort == 0 {
		sourcePort = int(defaultPorts[sourceKind])
	}
	destinationHost := stringDefault(raw.DestinationHost, "127.0.0.1")
	destinationPort := raw.DestinationPort
	if destinationPort == 0 {
		destinationPort = int(defaultPorts["memgraph"])
	}

	if sourceHost == "" {
		return Config{}, fmt.Errorf("config: source_host must not be empty")
	}
	if sourcePort == 0 {
		return Config{}, fmt.Errorf("config: source_port must not be zero")
	}
	if destinationHost == "" {
		return Config{}, fmt.Errorf("config: destination_host must not be empty")
	}
	if destinationPort == 0 {
		return Config{}, fmt.Errorf("config: destination_port must not be zero")
	}
	if sourceHost == destinationHost && sourcePort == destinationPort {
		return Config{}, fmt.Errorf("config: source and destination endpoints must differ (both are %s:%d)", sourceHost, sourcePort)
	}
	if sourceKind != "memgraph" && raw.SourceDatabase == "" {
		return Config{}, fmt.Errorf("config: source_database is required for a %s source", sourceKind)
	}

	return Config{
		SourceKind:     sourceKind,
		SourceHost:     sourceHost,
		SourcePort:     uint16(sourcePort),
		SourceUsername: raw.SourceUsername,
		SourcePassword: raw.SourcePassword,
		SourceUseSSL:   boolDefault(raw.SourceUseSSL, true),
		SourceDatabase: raw.SourceDatabase,

		DestinationHost:     destinationHost,
		DestinationPort:     uint16(destinationPort),
		DestinationUsername: raw.DestinationUsername,
		DestinationPassword: raw.DestinationPassword,
		DestinationUseSSL:   boolDefault(raw.DestinationUseSSL, true),

		DryRun: raw.DryRun,
	}, nil
}
