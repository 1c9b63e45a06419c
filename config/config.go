// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config holds the launcher's settings and loads them from TOML.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/poiesic/launchpad/source"
)

// Cache backends.
const (
	CacheFile   = "file"
	CacheBadger = "badger"
	CacheNone   = "none"
)

const appName = "launchpad"

// Environment variables that override file settings.
const (
	EnvSource   = "LAUNCHPAD_SOURCE"
	EnvCacheDir = "LAUNCHPAD_CACHE_DIR"
)

// Duration is a time.Duration written as "250ms" or "2s" in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config holds configuration for a launcher instance.
type Config struct {
	// Source is the path of the entry definition file.
	// Default: <user config dir>/launchpad/entries.yaml
	Source string `toml:"source"`

	// Format forces the source format: "auto", "json", "yaml" or "toml".
	// Default: "auto", which picks by extension and then by content.
	Format string `toml:"format"`

	// CacheBackend selects where snapshots are kept: "file", "badger" or "none".
	// Default: "file"
	CacheBackend string `toml:"cache_backend"`

	// CacheDir holds the snapshot file or badger database.
	// Default: <user cache dir>/launchpad
	CacheDir string `toml:"cache_dir"`

	// MaxResults caps each session's result list. 0 disables the cap.
	// Default: 50
	MaxResults int `toml:"max_results"`

	// PersistWorkers is the size of the background cache write pool.
	// Default: 1
	PersistWorkers int `toml:"persist_workers"`

	// PersistRetries is how many times a cache write is attempted.
	// Default: 3
	PersistRetries int `toml:"persist_retries"`

	// PersistRetryDelay is the base backoff between cache write attempts.
	// Default: 100ms
	PersistRetryDelay Duration `toml:"persist_retry_delay"`

	// QueryDebounce delays asynchronous queries until typing pauses.
	// Default: 0
	QueryDebounce Duration `toml:"query_debounce"`

	// ResultMemoSize is how many ranked result lists are memoised. 0 disables it.
	// Default: 256
	ResultMemoSize int `toml:"result_memo_size"`

	// UsageBoost ranks frequently launched entries first among equal matches.
	// The badger backend keeps launch counts across restarts; the file and none
	// backends count in memory for the life of the process.
	// Default: true
	UsageBoost bool `toml:"usage_boost"`
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithSource sets the entry definition file.
func WithSource(path string) ConfigOption {
	return func(c *Config) {
		c.Source = path
	}
}

// WithFormat forces the source format.
func WithFormat(format string) ConfigOption {
	return func(c *Config) {
		c.Format = format
	}
}

// WithCacheBackend selects the snapshot backend.
func WithCacheBackend(backend string) ConfigOption {
	return func(c *Config) {
		c.CacheBackend = backend
	}
}

// WithCacheDir sets the snapshot directory.
func WithCacheDir(dir string) ConfigOption {
	return func(c *Config) {
		c.CacheDir = dir
	}
}

// WithMaxResults sets the result cap.
func WithMaxResults(n int) ConfigOption {
	return func(c *Config) {
		c.MaxResults = n
	}
}

// WithQueryDebounce sets the async query debounce.
func WithQueryDebounce(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.QueryDebounce = Duration{d}
	}
}

// WithUsageBoost toggles launch-count ranking.
func WithUsageBoost(enabled bool) ConfigOption {
	return func(c *Config) {
		c.UsageBoost = enabled
	}
}

// DefaultConfig returns a Config using the platform's per-user config and cache
// directories.
func DefaultConfig() *Config {
	return &Config{
		Source:            filepath.Join(userDir(os.UserConfigDir), "entries.yaml"),
		Format:            "auto",
		CacheBackend:      CacheFile,
		CacheDir:          userDir(os.UserCacheDir),
		MaxResults:        50,
		PersistWorkers:    1,
		PersistRetries:    3,
		PersistRetryDelay: Duration{100 * time.Millisecond},
		ResultMemoSize:    256,
		UsageBoost:        true,
	}
}

func userDir(base func() (string, error)) string {
	dir, err := base()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, appName)
}

// DefaultPath is where Load looks when no path is given.
func DefaultPath() string {
	return filepath.Join(userDir(os.UserConfigDir), "config.toml")
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithSource("~/.config/launchpad/entries.json"),
//	    WithCacheBackend(CacheBadger),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Load reads a TOML config file over the defaults, applies environment overrides
// and validates the result. A missing file is not an error when path is empty;
// the defaults are used instead. Unknown keys are logged and ignored.
func Load(path string, logger *slog.Logger) (*Config, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	md, err := toml.DecodeFile(path, cfg)
	switch {
	case err == nil:
		for _, key := range md.Undecoded() {
			logger.Warn("ignoring unknown config key", "path", path, "key", key.String())
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		logger.Debug("no config file, using defaults", "path", path)
	default:
		return nil, fmt.Errorf("launchpad config: %s: %w", path, err)
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnvOverrides replaces settings named by environment variables.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv(EnvSource); v != "" {
		c.Source = v
	}
	if v := os.Getenv(EnvCacheDir); v != "" {
		c.CacheDir = v
	}
}

// Normalize brings the configuration into canonical form: lower-case names and
// paths with a leading ~ expanded.
func (c *Config) Normalize() {
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	if c.Format == "" {
		c.Format = "auto"
	}
	c.CacheBackend = strings.ToLower(strings.TrimSpace(c.CacheBackend))
	c.Source = expandHome(strings.TrimSpace(c.Source))
	c.CacheDir = expandHome(strings.TrimSpace(c.CacheDir))
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Validate checks that the configuration is valid and complete.
// It normalizes the configuration first.
func (c *Config) Validate() error {
	c.Normalize()

	if c.Source == "" {
		return errors.New("launchpad config: source is required")
	}
	if _, err := source.ParseFormat(c.Format); err != nil {
		return fmt.Errorf("launchpad config: format: %w", err)
	}
	switch c.CacheBackend {
	case CacheFile, CacheBadger:
		if c.CacheDir == "" {
			return errors.New("launchpad config: cache_dir is required for the " + c.CacheBackend + " backend")
		}
	case CacheNone:
	default:
		return fmt.Errorf("launchpad config: unknown cache_backend %q", c.CacheBackend)
	}
	if c.MaxResults < 0 {
		return errors.New("launchpad config: max_results must not be negative")
	}
	if c.PersistWorkers < 1 {
		return errors.New("launchpad config: persist_workers must be at least 1")
	}
	if c.PersistRetries < 1 {
		return errors.New("launchpad config: persist_retries must be at least 1")
	}
	if c.PersistRetryDelay.Duration < 0 || c.QueryDebounce.Duration < 0 {
		return errors.New("launchpad config: durations must not be negative")
	}
	if c.ResultMemoSize < 0 {
		return errors.New("launchpad config: result_memo_size must not be negative")
	}
	return nil
}

// SourceFormat returns the parsed Format setting.
func (c *Config) SourceFormat() source.Format {
	f, err := source.ParseFormat(c.Format)
	if err != nil {
		return source.FormatAuto
	}
	return f
}

// SnapshotPath is the snapshot file used by the file backend.
func (c *Config) SnapshotPath() string {
	return filepath.Join(c.CacheDir, "entries.snapshot")
}

// BadgerDir is the database directory used by the badger backend.
func (c *Config) BadgerDir() string {
	return filepath.Join(c.CacheDir, "db")
}
