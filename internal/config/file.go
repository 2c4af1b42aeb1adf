package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// fileRaw mirrors Raw's fields for TOML decoding; a dedicated struct lets
// the CLI flags keep their flat spf13/cobra names while the config file
// groups source and destination under their own tables.
type fileRaw struct {
	Source struct {
		Kind     string `toml:"kind"`
		Host     string `toml:"host"`
		Port     int    `toml:"port"`
		Username string `toml:"username"`
		Password string `toml:"password"`
		UseSSL   *bool  `toml:"use_ssl"`
		Database string `toml:"database"`
	} `toml:"source"`
	Destination struct {
		Host     string `toml:"host"`
		Port     int    `toml:"port"`
		Username string `toml:"username"`
		Password string `toml:"password"`
		UseSSL   *bool  `toml:"use_ssl"`
	} `toml:"destination"`
	DryRun bool `toml:"dry_run"`
}

// LoadFile reads a TOML config file into a Raw, the way the CLI accepts
// either flags or a config file covering the same ground. Unknown keys
// are rejected outright rather than silently ignored.
func LoadFile(path string) (Raw, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Raw{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	var fr fileRaw
	md, err := toml.Decode(string(data), &fr)
	if err != nil {
		return Raw{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if unknown := md.Undecoded(); len(unknown) > 0 {
		keys := make([]string, len(unknown))
		for i, k := range unknown {
			keys[i] = k.String()
		}
		return Raw{}, fmt.Errorf("config: unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return Raw{
		SourceKind:     fr.Source.Kind,
		SourceHost:     fr.Source.Host,
		SourcePort:     fr.Source.Port,
		SourceUsername: fr.Source.Username,
		SourcePassword: fr.Source.Password,
		SourceUseSSL:   fr.Source.UseSSL,
		SourceDatabase: fr.Source.Database,

		DestinationHost:     fr.Destination.Host,
		DestinationPort:     fr.Destination.Port,
		DestinationUsername: fr.Destination.Username,
		DestinationPassword: fr.Destination.Password,
		DestinationUseSSL:   fr.Destination.UseSSL,

		DryRun: fr.DryRun,
	}, nil
}

// Override replaces every field in base with the corresponding field from
// override where override's value is non-zero, giving CLI flags
// precedence over a config file's values. UseSSL fields are pointers so an
// explicitly-set "false" can be distinguished from "flag not passed" and
// still override the file.
func Override(base, override Raw) Raw {
	if override.SourceKind != "" {
		base.SourceKind = override.SourceKind
	}
	if override.SourceHost != "" {
		base.SourceHost = override.SourceHost
	}
	if override.SourcePort != 0 {
		base.SourcePort = override.SourcePort
	}
	if override.SourceUsername != "" {
		base.SourceUsername = override.SourceUsername
	}
	if override.SourcePassword != "" {
		base.SourcePassword = override.SourcePassword
	}
	if override.SourceUseSSL != nil {
		base.SourceUseSSL = override.SourceUseSSL
	}
	if override.SourceDatabase != "" {
		base.SourceDatabase = override.SourceDatabase
	}
	if override.DestinationHost != "" {
		base.DestinationHost = override.DestinationHost
	}
	if override.DestinationPort != 0 {
		base.DestinationPort = override.DestinationPort
	}
	if override.DestinationUsername != "" {
		base.DestinationUsername = override.DestinationUsername
	}
	if override.DestinationPassword != "" {
		base.DestinationPassword = override.DestinationPassword
	}
	if override.DestinationUseSSL != nil {
		base.DestinationUseSSL = override.DestinationUseSSL
	}
	if override.DryRun {
		base.DryRun = true
	}
	return base
}
