package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValid(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxRetries = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.TimeoutSec = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.MinDelayMs = 500
	cfg.MaxDelayMs = 100
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.RetryBackoffMs = -1
	assert.Error(t, cfg.Validate())
}

func TestMergeConfigOverrides(t *testing.T) {
	cfg := DefaultConfig()
	mergeConfig(cfg, Options{
		DefaultURL:  "https://www.77shuwu.cc/novel/123/",
		MaxChapters: 10,
		MaxRetries:  5,
		Output:      "out",
		Debug:       true,
	})

	assert.Equal(t, "https://www.77shuwu.cc/novel/123/", cfg.DefaultURL)
	assert.Equal(t, 10, cfg.MaxChapters)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, "out", cfg.Output)
	assert.True(t, cfg.Debug)

	// Untouched fields keep their config values.
	assert.Equal(t, 30, cfg.TimeoutSec)
	assert.Equal(t, 1000, cfg.RetryBackoffMs)
}

func TestMergeConfigZeroValuesDoNotOverride(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DefaultURL = "https://example.com/novel/1/"
	cfg.MaxChapters = 42

	mergeConfig(cfg, Options{})

	assert.Equal(t, "https://example.com/novel/1/", cfg.DefaultURL)
	assert.Equal(t, 42, cfg.MaxChapters)
}

func TestNormalizeDefaultsFillsGaps(t *testing.T) {
	cfg := &Config{}
	normalizeDefaults(cfg)

	assert.Equal(t, ".", cfg.Output)
	assert.Equal(t, ".", cfg.CheckpointDir)
	assert.Equal(t, "debug_html", cfg.DebugDir)
	assert.Equal(t, 100000, cfg.MaxChapters)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 30, cfg.TimeoutSec)
	assert.Equal(t, 1000, cfg.RetryBackoffMs)
	assert.Equal(t, 500, cfg.MaxDelayMs)
}

func TestDurationHelpers(t *testing.T) {
	cfg := &Config{TimeoutSec: 30, RetryBackoffMs: 1000, MinDelayMs: 100, MaxDelayMs: 500}

	assert.Equal(t, "30s", cfg.Timeout().String())
	assert.Equal(t, "1s", cfg.RetryBackoff().String())
	assert.Equal(t, "100ms", cfg.MinDelay().String())
	assert.Equal(t, "500ms", cfg.MaxDelay().String())
}

func TestYAMLRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.DefaultURL = "https://www.77shuwu.cc/novel/123/"
	cfg.MaxChapters = 50
	cfg.Cookie = "session=abc"
	require.NoError(t, SaveYAML(cfg, path))

	loaded, err := loadYAML(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadYAMLRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\n\t- not yaml"), 0644))

	_, err := loadYAML(path)
	assert.Error(t, err)
}
