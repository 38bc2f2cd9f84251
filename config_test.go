package lazypix

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Empty(t, cfg.CacheDir, "disk caching is opt-in")
	assert.Equal(t, int64(32<<20), cfg.MemoryBudgetBytes)
	assert.Equal(t, 5*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, 20*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 1920, cfg.DefaultMaxWidth)
	assert.Equal(t, 1080, cfg.DefaultMaxHeight)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestConfig_WithDefaults(t *testing.T) {
	cfg := Config{CacheDir: "/tmp/x", MemoryBudgetBytes: 1024}.withDefaults()

	assert.Equal(t, "/tmp/x", cfg.CacheDir)
	assert.Equal(t, int64(1024), cfg.MemoryBudgetBytes)
	assert.Equal(t, 5*time.Second, cfg.ConnectTimeout, "zero fields fall back to defaults")
	assert.Equal(t, 1920, cfg.DefaultMaxWidth)
}

func TestConfigManager_DefaultsWithoutFile(t *testing.T) {
	m := NewConfigManager(t.TempDir())
	require.NoError(t, m.Load())

	assert.Equal(t, DefaultConfig(), m.Config())
}

func TestConfigManager_FileOverride(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte("cache_dir: /var/cache/lazypix\nmemory_budget_bytes: 1048576\nconnect_timeout: 2s\nlogging:\n  level: debug\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lazypix.yaml"), yaml, 0644))

	m := NewConfigManager(dir)
	require.NoError(t, m.Load())

	cfg := m.Config()
	assert.Equal(t, "/var/cache/lazypix", cfg.CacheDir)
	assert.Equal(t, int64(1<<20), cfg.MemoryBudgetBytes)
	assert.Equal(t, 2*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Unset keys keep their defaults.
	assert.Equal(t, 20*time.Second, cfg.ReadTimeout)
}

func TestConfigManager_EnvOverride(t *testing.T) {
	t.Setenv("LAZYPIX_MEMORY_BUDGET_BYTES", "2048")
	t.Setenv("LAZYPIX_LOGGING_LEVEL", "warn")

	m := NewConfigManager(t.TempDir())
	require.NoError(t, m.Load())

	cfg := m.Config()
	assert.Equal(t, int64(2048), cfg.MemoryBudgetBytes)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestConfigManager_ConfigBeforeLoad(t *testing.T) {
	m := NewConfigManager("")
	assert.Equal(t, DefaultConfig(), m.Config())
}

func TestConfigSchema(t *testing.T) {
	schema := ConfigSchema()
	require.NotNil(t, schema)
	assert.Equal(t, "lazypix Configuration", schema.Title)

	path := filepath.Join(t.TempDir(), "lazypix.schema.json")
	require.NoError(t, WriteConfigSchema(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "$schema")
}
