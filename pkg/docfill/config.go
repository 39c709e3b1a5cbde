package docfill

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"golang.org/x/text/language"
)

// EnvPrefix prefixes every environment variable the engine reads.
const EnvPrefix = "DOCFILL_"

// Config contains all configuration options for the docfill engine
type Config struct {
	// CacheMaxSize is the maximum number of templates to cache. 0 disables caching.
	CacheMaxSize int `koanf:"cache_max_size"`
	// CacheTTL is the time-to-live for cached templates. 0 means no expiration.
	CacheTTL time.Duration `koanf:"cache_ttl"`
	// LogLevel controls the verbosity of logging (trace, debug, info, warn, error, off)
	LogLevel string `koanf:"log_level"`
	// LogFormat is text or json
	LogFormat string `koanf:"log_format"`
	// Locale is a BCP 47 tag used by the grouped number formats
	Locale string `koanf:"locale"`
	// FixSmartQuotes turns curly quotes inside placeholders into ASCII quotes
	// before evaluation, undoing Word's autocorrect.
	FixSmartQuotes bool `koanf:"fix_smart_quotes"`
}

var (
	globalConfig      *Config
	globalConfigMutex sync.RWMutex
	configOnce        sync.Once
)

func initGlobalConfig() {
	configOnce.Do(func() {
		config, err := ConfigFromEnvironment()
		if err != nil {
			config = DefaultConfig()
		}
		globalConfigMutex.Lock()
		if globalConfig == nil {
			globalConfig = config
		}
		globalConfigMutex.Unlock()
	})
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		CacheMaxSize:   100,
		CacheTTL:       0,
		LogLevel:       "info",
		LogFormat:      "text",
		Locale:         "en",
		FixSmartQuotes: true,
	}
}

// ConfigDefaults returns the defaults as a flat koanf map.
func ConfigDefaults() map[string]interface{} {
	d := DefaultConfig()
	return map[string]interface{}{
		"cache_max_size":   d.CacheMaxSize,
		"cache_ttl":        d.CacheTTL.String(),
		"log_level":        d.LogLevel,
		"log_format":       d.LogFormat,
		"locale":           d.Locale,
		"fix_smart_quotes": d.FixSmartQuotes,
	}
}

// EnvKey maps DOCFILL_CACHE_TTL to cache_ttl.
func EnvKey(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
}

// ConfigFromEnvironment creates a configuration from the defaults overlaid
// with DOCFILL_* environment variables.
func ConfigFromEnvironment() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(ConfigDefaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", EnvKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	return ConfigFromKoanf(k)
}

// ConfigFromKoanf decodes and validates a configuration from k.
func ConfigFromKoanf(k *koanf.Koanf) (*Config, error) {
	config := DefaultConfig()
	if err := k.Unmarshal("", config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks if the configuration is valid. All problems are reported
// together as a *ValidationError.
func (c *Config) Validate() error {
	verr := &ValidationError{}

	if c.CacheMaxSize < 0 {
		verr.Add("cache_max_size", "cannot be negative")
	}

	if c.CacheTTL < 0 {
		verr.Add("cache_ttl", "cannot be negative")
	}

	validLogLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"off":   true,
	}

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		verr.Add("log_level", "invalid log level: "+c.LogLevel)
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		verr.Add("log_format", "invalid log format: "+c.LogFormat)
	}

	if _, err := language.Parse(c.Locale); err != nil {
		verr.Add("locale", fmt.Sprintf("invalid locale %q", c.Locale))
	}

	return verr.Err()
}

// GetGlobalConfig returns a copy of the global configuration
func GetGlobalConfig() *Config {
	initGlobalConfig()

	globalConfigMutex.RLock()
	defer globalConfigMutex.RUnlock()

	configCopy := *globalConfig
	return &configCopy
}

// SetGlobalConfig sets the global configuration
func SetGlobalConfig(config *Config) error {
	if config == nil {
		return errors.New("config cannot be nil")
	}
	if err := config.Validate(); err != nil {
		return err
	}

	initGlobalConfig()

	globalConfigMutex.Lock()
	configCopy := *config
	globalConfig = &configCopy
	globalConfigMutex.Unlock()

	UpdateLoggerFromConfig()
	return nil
}

// ResetGlobalConfig reloads the global configuration from the environment.
// Used by tests.
func ResetGlobalConfig() {
	config, err := ConfigFromEnvironment()
	if err != nil {
		config = DefaultConfig()
	}

	initGlobalConfig()

	globalConfigMutex.Lock()
	globalConfig = config
	globalConfigMutex.Unlock()
}
