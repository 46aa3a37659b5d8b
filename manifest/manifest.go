// Package manifest loads a flat, declarative list of component
// registrations from YAML/JSON/env, via viper. It produces instance-shaped
// registrations (a fixed value activator per entry) — not a constructor
// scanner or fluent registration DSL, which is out of scope for this
// container (activators stay opaque and hand-written).
package manifest

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Entry is one declared component in a manifest file.
type Entry struct {
	// Name identifies the entry within the manifest. It is not a Go
	// type; it is the key of the keyed service the entry registers
	// (see Entry.Service).
	Name string `mapstructure:"name"`
	// Lifetime is one of "current", "root", or "matching:<tag>".
	Lifetime string `mapstructure:"lifetime"`
	// Shared, when true, caches the activated instance within the scope
	// Lifetime resolves to.
	Shared bool `mapstructure:"shared"`
	// Metadata is attached verbatim to the resulting registration.
	Metadata map[string]any `mapstructure:"metadata"`
	// Fixed makes this entry the canonical default for its service.
	Fixed bool `mapstructure:"fixed"`
	// Value is the literal value this entry resolves to. Manifests
	// declare config-shaped values (strings, numbers, nested maps), not
	// Go constructors — wiring a real activator together with
	// dependencies still happens in code, via ioc.NewRegistration.
	Value any `mapstructure:"value"`
}

// Manifest is the parsed, validated contents of a manifest file: every
// declared entry, in file order, looked up by name through ByName.
type Manifest struct {
	Entries []Entry `mapstructure:"entries"`
}

// Load reads a manifest from path using viper, with optional environment
// variable overrides under envPrefix (dots become double underscores, per
// viper convention).
func Load(path string, envPrefix string) (*Manifest, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if envPrefix != "" {
		v.SetEnvPrefix(envPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
		v.AutomaticEnv()
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("manifest: failed to read %s: %w", path, err)
	}

	var m Manifest
	if err := v.Unmarshal(&m); err != nil {
		return nil, fmt.Errorf("manifest: failed to decode %s: %w", path, err)
	}

	for i, e := range m.Entries {
		if e.Name == "" {
			return nil, fmt.Errorf("manifest: entry %d has no name", i)
		}
	}

	return &m, nil
}

// ByName looks up an entry by its declared name.
func (m *Manifest) ByName(name string) (Entry, bool) {
	for _, e := range m.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}
