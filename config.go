package lazypix

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config holds the loader configuration.
type Config struct {
	// CacheDir is the directory for the on-disk cache. Empty disables disk
	// caching entirely.
	CacheDir string `mapstructure:"cache_dir" yaml:"cache_dir" json:"cache_dir"`
	// MemoryBudgetBytes bounds the total resident cost of the memory cache.
	MemoryBudgetBytes int64 `mapstructure:"memory_budget_bytes" yaml:"memory_budget_bytes" json:"memory_budget_bytes"`
	// ConnectTimeout bounds connection establishment for remote fetches.
	ConnectTimeout time.Duration `mapstructure:"connect_timeout" yaml:"connect_timeout" json:"connect_timeout"`
	// ReadTimeout bounds waiting for the remote response.
	ReadTimeout time.Duration `mapstructure:"read_timeout" yaml:"read_timeout" json:"read_timeout"`
	// DefaultMaxWidth/DefaultMaxHeight bound decoding when the sizing
	// strategy supplies nothing useful for a target.
	DefaultMaxWidth  int `mapstructure:"default_max_width" yaml:"default_max_width" json:"default_max_width"`
	DefaultMaxHeight int `mapstructure:"default_max_height" yaml:"default_max_height" json:"default_max_height"`

	Logging LoggingConfig `mapstructure:"logging" yaml:"logging" json:"logging"`
}

// LoggingConfig holds logging-related configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" json:"level"`
	Format string `mapstructure:"format" yaml:"format" json:"format"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		MemoryBudgetBytes: 32 << 20,
		ConnectTimeout:    5 * time.Second,
		ReadTimeout:       20 * time.Second,
		DefaultMaxWidth:   1920,
		DefaultMaxHeight:  1080,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// withDefaults fills zero-valued fields from DefaultConfig.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.MemoryBudgetBytes <= 0 {
		c.MemoryBudgetBytes = def.MemoryBudgetBytes
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = def.ConnectTimeout
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = def.ReadTimeout
	}
	if c.DefaultMaxWidth <= 0 {
		c.DefaultMaxWidth = def.DefaultMaxWidth
	}
	if c.DefaultMaxHeight <= 0 {
		c.DefaultMaxHeight = def.DefaultMaxHeight
	}
	if c.Logging.Level == "" {
		c.Logging.Level = def.Logging.Level
	}
	if c.Logging.Format == "" {
		c.Logging.Format = def.Logging.Format
	}
	return c
}

// ConfigManager handles configuration loading, watching, and reloading.
type ConfigManager struct {
	config    *Config
	viper     *viper.Viper
	mu        sync.RWMutex
	callbacks []func(Config)
	watching  bool
}

// NewConfigManager creates a configuration manager. configDir is searched
// for a lazypix.{yaml,json,toml} file; the current directory is always
// searched as a fallback. Values can be overridden via LAZYPIX_* environment
// variables (e.g. LAZYPIX_MEMORY_BUDGET_BYTES, LAZYPIX_LOGGING_LEVEL).
func NewConfigManager(configDir string) *ConfigManager {
	v := viper.New()

	v.SetConfigName("lazypix")
	if configDir != "" {
		v.AddConfigPath(configDir)
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix("LAZYPIX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &ConfigManager{viper: v}
}

// Load loads the configuration from file and environment variables.
// A missing config file is not an error; defaults apply.
func (m *ConfigManager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadLocked()
}

func (m *ConfigManager) loadLocked() error {
	def := DefaultConfig()
	m.viper.SetDefault("cache_dir", def.CacheDir)
	m.viper.SetDefault("memory_budget_bytes", def.MemoryBudgetBytes)
	m.viper.SetDefault("connect_timeout", def.ConnectTimeout)
	m.viper.SetDefault("read_timeout", def.ReadTimeout)
	m.viper.SetDefault("default_max_width", def.DefaultMaxWidth)
	m.viper.SetDefault("default_max_height", def.DefaultMaxHeight)
	m.viper.SetDefault("logging.level", def.Logging.Level)
	m.viper.SetDefault("logging.format", def.Logging.Format)

	if err := m.viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config file: %w", err)
		}
	}

	config := &Config{}
	if err := m.viper.Unmarshal(config); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	m.config = config
	return nil
}

// Config returns the current configuration (thread-safe copy).
func (m *ConfigManager) Config() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.config == nil {
		return DefaultConfig()
	}
	return *m.config
}

// Watch starts watching the config file for changes and reloads
// automatically, notifying registered callbacks.
func (m *ConfigManager) Watch() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.watching {
		return
	}

	m.viper.WatchConfig()
	m.viper.OnConfigChange(func(_ fsnotify.Event) {
		m.mu.Lock()
		if err := m.loadLocked(); err != nil {
			m.mu.Unlock()
			return
		}
		config := *m.config
		callbacks := make([]func(Config), len(m.callbacks))
		copy(callbacks, m.callbacks)
		m.mu.Unlock()

		for _, callback := range callbacks {
			callback(config)
		}
	})

	m.watching = true
}

// OnConfigChange registers a callback invoked after each successful reload.
func (m *ConfigManager) OnConfigChange(callback func(Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, callback)
}
