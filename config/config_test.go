package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/launchpad/source"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, "entries.yaml", filepath.Base(cfg.Source))
	assert.Equal(t, "auto", cfg.Format)
	assert.Equal(t, CacheFile, cfg.CacheBackend)
	assert.Equal(t, "launchpad", filepath.Base(cfg.CacheDir))
	assert.Equal(t, 50, cfg.MaxResults)
	assert.Equal(t, 3, cfg.PersistRetries)
	assert.Equal(t, 100*time.Millisecond, cfg.PersistRetryDelay.Duration)
	assert.Equal(t, 256, cfg.ResultMemoSize)
	assert.True(t, cfg.UsageBoost)
	assert.NoError(t, cfg.Validate())
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("with options", func(t *testing.T) {
		cfg := NewConfig(
			WithSource("/tmp/entries.json"),
			WithFormat("JSON"),
			WithCacheBackend(CacheBadger),
			WithCacheDir("/tmp/lp"),
			WithMaxResults(10),
			WithQueryDebounce(30*time.Millisecond),
			WithUsageBoost(false),
		)

		assert.Equal(t, "/tmp/entries.json", cfg.Source)
		assert.Equal(t, CacheBadger, cfg.CacheBackend)
		assert.Equal(t, "/tmp/lp", cfg.CacheDir)
		assert.Equal(t, 10, cfg.MaxResults)
		assert.Equal(t, 30*time.Millisecond, cfg.QueryDebounce.Duration)
		assert.False(t, cfg.UsageBoost)

		require.NoError(t, cfg.Validate())
		assert.Equal(t, "json", cfg.Format)
		assert.Equal(t, source.FormatJSON, cfg.SourceFormat())
		assert.Equal(t, filepath.Join("/tmp/lp", "db"), cfg.BadgerDir())
		assert.Equal(t, filepath.Join("/tmp/lp", "entries.snapshot"), cfg.SnapshotPath())
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    []ConfigOption
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", nil, nil, ""},
		{"missing source", []ConfigOption{WithSource("  ")}, nil, "source is required"},
		{"bad format", []ConfigOption{WithFormat("xml")}, nil, "format"},
		{"bad backend", []ConfigOption{WithCacheBackend("redis")}, nil, "unknown cache_backend"},
		{"file backend needs dir", []ConfigOption{WithCacheDir("")}, nil, "cache_dir is required"},
		{"none backend needs no dir", []ConfigOption{WithCacheBackend("NONE"), WithCacheDir("")}, nil, ""},
		{"negative results", []ConfigOption{WithMaxResults(-1)}, nil, "max_results"},
		{"no workers", nil, func(c *Config) { c.PersistWorkers = 0 }, "persist_workers"},
		{"no retries", nil, func(c *Config) { c.PersistRetries = 0 }, "persist_retries"},
		{"negative debounce", []ConfigOption{WithQueryDebounce(-time.Second)}, nil, "durations"},
		{"negative memo", nil, func(c *Config) { c.ResultMemoSize = -1 }, "result_memo_size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig(tt.opts...)
			if tt.mutate != nil {
				tt.mutate(cfg)
			}
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNormalize_ExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	cfg := NewConfig(WithSource("~/entries.toml"), WithCacheDir("~"))
	cfg.Normalize()
	assert.Equal(t, filepath.Join(home, "entries.toml"), cfg.Source)
	assert.Equal(t, home, cfg.CacheDir)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
source = "/srv/entries.json"
cache_backend = "badger"
cache_dir = "/var/cache/launchpad"
max_results = 20
persist_retry_delay = "250ms"
query_debounce = "15ms"
usage_boost = false
colour = "blue"
`), 0o644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "/srv/entries.json", cfg.Source)
	assert.Equal(t, CacheBadger, cfg.CacheBackend)
	assert.Equal(t, "/var/cache/launchpad", cfg.CacheDir)
	assert.Equal(t, 20, cfg.MaxResults)
	assert.Equal(t, 250*time.Millisecond, cfg.PersistRetryDelay.Duration)
	assert.Equal(t, 15*time.Millisecond, cfg.QueryDebounce.Duration)
	assert.False(t, cfg.UsageBoost)
	// untouched keys keep their defaults
	assert.Equal(t, 256, cfg.ResultMemoSize)
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`source = "/srv/entries.json"`), 0o644))
	t.Setenv(EnvSource, "/override/entries.yaml")
	t.Setenv(EnvCacheDir, "/override/cache")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "/override/entries.yaml", cfg.Source)
	assert.Equal(t, "/override/cache", cfg.CacheDir)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.toml"), nil)
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte(`max_results = "many"`), 0o644))
	_, err = Load(bad, nil)
	assert.Error(t, err)

	invalid := filepath.Join(dir, "invalid.toml")
	require.NoError(t, os.WriteFile(invalid, []byte(`cache_backend = "redis"`), 0o644))
	_, err = Load(invalid, nil)
	assert.ErrorContains(t, err, "cache_backend")

	badDuration := filepath.Join(dir, "duration.toml")
	require.NoError(t, os.WriteFile(badDuration, []byte(`query_debounce = "soon"`), 0o644))
	_, err = Load(badDuration, nil)
	assert.Error(t, err)
}

func TestDuration_Text(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("1m30s")))
	assert.Equal(t, 90*time.Second, d.Duration)

	text, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1m30s", string(text))
}
