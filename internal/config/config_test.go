package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ddlsync/internal/core"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ddlsync.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
dialect = "mysql"
id_format = "ulid"
cache_size = 8
log_level = "debug"

[generate]
header = ["Project: shop"]

[output]
format = "json"
`)
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvDialect, "")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, core.DialectMySQL, cfg.DialectValue())
	assert.Equal(t, "ulid", cfg.IDs().Type())
	assert.Equal(t, 8, cfg.CacheSize)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []string{"Project: shop"}, cfg.Generate.Header)
	assert.Equal(t, "json", cfg.Output.Format)
}

func TestLoadMissingDefaultFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvDialect, "")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, `dialect = "mysql"`)
	t.Setenv(EnvDialect, "sqlite3")
	t.Setenv(EnvLogLevel, "error")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, core.DialectSQLite, cfg.DialectValue())
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"dialect":    func(c *Config) { c.Dialect = "oracle" },
		"id format":  func(c *Config) { c.IDFormat = "snowflake" },
		"cache size": func(c *Config) { c.CacheSize = -1 },
		"format":     func(c *Config) { c.Output.Format = "xml" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
	require.NoError(t, Default().Validate())
}
