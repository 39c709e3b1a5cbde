package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjaminschreck/go-docfill/pkg/docfill"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func testFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("config", "", "config file")
	flags.String("log-level", "", "log level")
	flags.String("locale", "", "locale")
	flags.Int("cache-size", 0, "cache size")
	flags.Bool("fix-smart-quotes", true, "smart quotes")
	return flags
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	result, err := Load("", nil)
	require.NoError(t, err)

	assert.Empty(t, result.File)
	assert.Equal(t, docfill.DefaultConfig(), result.Config)
}

func TestLoad_FileValues(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "custom.yaml", `
cache_max_size: 5
cache_ttl: 5m
log_level: debug
log_format: json
locale: de-DE
fix_smart_quotes: false
`)

	result, err := Load(path, nil)
	require.NoError(t, err)

	cfg := result.Config
	assert.Equal(t, path, result.File)
	assert.Equal(t, 5, cfg.CacheMaxSize)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "de-DE", cfg.Locale)
	assert.False(t, cfg.FixSmartQuotes)
}

func TestLoad_DiscoversDefaultFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "docfill.yml", "locale: fr\n")
	t.Chdir(dir)

	result, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "docfill.yml", result.File)
	assert.Equal(t, "fr", result.Config.Locale)
}

func TestLoad_Precedence(t *testing.T) {
	tests := []struct {
		name       string
		env        string
		flag       string
		wantLevel  string
		wantLocale string
	}{
		{
			name:       "file only",
			wantLevel:  "warn",
			wantLocale: "de",
		},
		{
			name:       "env overrides file",
			env:        "error",
			wantLevel:  "error",
			wantLocale: "de",
		},
		{
			name:       "flag overrides env and file",
			env:        "error",
			flag:       "trace",
			wantLevel:  "trace",
			wantLocale: "de",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), "docfill.yaml", "log_level: warn\nlocale: de\n")
			if tt.env != "" {
				t.Setenv("DOCFILL_LOG_LEVEL", tt.env)
			}

			flags := testFlags()
			if tt.flag != "" {
				require.NoError(t, flags.Set("log-level", tt.flag))
			}

			result, err := Load(path, flags)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLevel, result.Config.LogLevel)
			assert.Equal(t, tt.wantLocale, result.Config.Locale, "unset locale flag must not override the file")
		})
	}
}

func TestLoad_FlagKeys(t *testing.T) {
	t.Chdir(t.TempDir())

	flags := testFlags()
	require.NoError(t, flags.Set("cache-size", "3"))
	require.NoError(t, flags.Set("fix-smart-quotes", "false"))
	require.NoError(t, flags.Set("config", "ignored.yaml"))

	result, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Config.CacheMaxSize)
	assert.False(t, result.Config.FixSmartQuotes)
}

func TestLoad_EnvNumbers(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DOCFILL_CACHE_MAX_SIZE", "7")
	t.Setenv("DOCFILL_CACHE_TTL", "90s")

	result, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, 7, result.Config.CacheMaxSize)
	assert.Equal(t, 90*time.Second, result.Config.CacheTTL)
}

func TestLoad_Errors(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)

	broken := writeConfig(t, t.TempDir(), "broken.yaml", "log_level: [unclosed\n")
	_, err = Load(broken, nil)
	assert.Error(t, err)

	invalid := writeConfig(t, t.TempDir(), "invalid.yaml", "log_level: loud\ncache_max_size: -1\n")
	_, err = Load(invalid, nil)
	require.Error(t, err)
	assert.True(t, docfill.IsValidationError(err))
	assert.Contains(t, err.Error(), "invalid.yaml")
}

func TestFlagKey(t *testing.T) {
	assert.Equal(t, "log_level", FlagKey("log-level"))
	assert.Equal(t, "cache_max_size", FlagKey("cache-size"))
	assert.Equal(t, "locale", FlagKey("locale"))
}
