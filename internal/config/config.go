// Package config resolves CCDB tool configuration from, in rising
// precedence: built-in defaults, a ccdb.yaml file, CCDB_* environment
// variables, and command-line flags.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Config file names looked up in the working directory.
const (
	ConfigFileName    = "ccdb.yaml"
	ConfigFileNameAlt = "ccdb.yml"
)

// EnvPrefix is the prefix for environment variable overrides, e.g.
// CCDB_CONNECTION maps to the "connection" key.
const EnvPrefix = "CCDB_"

// Config is the resolved tool configuration.
type Config struct {
	// Connection is the database connection string, e.g.
	// "sqlite:///var/lib/ccdb/ccdb.sqlite".
	Connection string `koanf:"connection"`

	// Verbose enables debug logging.
	Verbose bool `koanf:"verbose"`
}

var (
	configFileUsed string
	current        *Config
)

// findConfigFile picks the config file: explicit path first, then
// ccdb.yaml / ccdb.yml in the working directory.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{ConfigFileName, ConfigFileNameAlt} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load resolves the configuration. flags may be nil; only flags the
// user actually set override lower layers.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults.
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"connection": "",
		"verbose":    false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file, when present.
	configFileUsed = findConfigFile(cfgFile)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Environment variables: CCDB_CONNECTION -> connection.
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags, highest priority.
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	current = &cfg
	return &cfg, nil
}

// Current returns the configuration resolved by the last Load, or nil
// before any Load.
func Current() *Config { return current }

// FileUsed returns the path of the config file consumed by the last
// Load, if any.
func FileUsed() string { return configFileUsed }
