// Package config loads the docfill CLI configuration.
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

	"github.com/benjaminschreck/go-docfill/pkg/docfill"
)

// DefaultFileNames are searched in the working directory when no config file
// is given.
var DefaultFileNames = []string{"docfill.yaml", "docfill.yml"}

// Result is a loaded configuration and where it came from.
type Result struct {
	Config *docfill.Config
	// File is the config file that was read, or empty.
	File string
}

// findConfigFile finds the config file to use.
// Priority: explicit path > docfill.yaml > docfill.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range DefaultFileNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load builds the configuration from defaults, the config file, DOCFILL_*
// environment variables and flags, in increasing priority. Only flags that
// were set on the command line take part.
func Load(cfgFile string, flags *pflag.FlagSet) (*Result, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(docfill.ConfigDefaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	if err := k.Load(env.Provider(docfill.EnvPrefix, ".", docfill.EnvKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed || f.Name == "config" {
				return "", nil
			}
			return FlagKey(f.Name), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	cfg, err := docfill.ConfigFromKoanf(k)
	if err != nil {
		if used != "" {
			return nil, fmt.Errorf("invalid configuration (%s): %w", used, err)
		}
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &Result{Config: cfg, File: used}, nil
}

// FlagKey maps a flag name to its config key: --log-level sets log_level,
// --cache-size sets cache_max_size.
func FlagKey(name string) string {
	if name == "cache-size" {
		return "cache_max_size"
	}
	return strings.ReplaceAll(name, "-", "_")
}
