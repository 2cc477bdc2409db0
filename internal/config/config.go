// Package config loads the CLI configuration from ddlsync.toml and the
// environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"ddlsync/internal/core"
	"ddlsync/internal/output"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "ddlsync.toml"

// Environment variables that override the file.
const (
	EnvLogLevel = "LOG_LEVEL"
	EnvDialect  = "DDLSYNC_DIALECT"
)

// Config is the decoded ddlsync.toml.
type Config struct {
	Dialect   string   `toml:"dialect"`
	IDFormat  string   `toml:"id_format"`
	CacheSize int      `toml:"cache_size"`
	LogLevel  string   `toml:"log_level"`
	Generate  Generate `toml:"generate"`
	Output    Output   `toml:"output"`
}

// Generate maps [generate].
type Generate struct {
	Header []string `toml:"header"`
}

// Output maps [output].
type Output struct {
	Format string `toml:"format"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Dialect:   string(core.DialectPostgreSQL),
		IDFormat:  "uuid",
		CacheSize: 64,
		LogLevel:  "info",
		Output:    Output{Format: string(output.FormatHuman)},
	}
}

// Load reads path over the defaults and applies environment overrides. An
// empty path falls back to DefaultFile, which may be absent; an explicit
// path must exist.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg.withEnv(os.LookupEnv)
		}
		return Config{}, fmt.Errorf("config: decode %q: %w", path, err)
	}
	return cfg.withEnv(os.LookupEnv)
}

func (c Config) withEnv(lookup func(string) (string, bool)) (Config, error) {
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
	}
	if v, ok := lookup(EnvDialect); ok && v != "" {
		c.Dialect = v
	}
	return c, c.Validate()
}

// Validate fails on values the CLI cannot act on.
func (c Config) Validate() error {
	if _, err := core.ParseDialect(c.Dialect); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := core.NewIDGenerator(c.IDFormat); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("config: cache_size must not be negative, got %d", c.CacheSize)
	}
	if _, err := output.NewFormatter(c.Output.Format); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// DialectValue returns the resolved dialect. Call after Validate.
func (c Config) DialectValue() core.Dialect {
	d, _ := core.ParseDialect(strings.TrimSpace(c.Dialect))
	return d
}

// IDs builds the configured identifier generator.
func (c Config) IDs() core.IDGenerator {
	ids, err := core.NewIDGenerator(c.IDFormat)
	if err != nil {
		return core.UUIDGenerator{}
	}
	return ids
}
