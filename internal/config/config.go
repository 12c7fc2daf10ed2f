package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete cfoundation configuration
type Config struct {
	Timer    TimerConfig    `mapstructure:"timer" yaml:"timer"`
	Notify   NotifyConfig   `mapstructure:"notify" yaml:"notify"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
	Dispatch DispatchConfig `mapstructure:"dispatch" yaml:"dispatch"`
}

// TimerConfig controls timers created by the CLI
type TimerConfig struct {
	// IntervalMs is the repeat interval in milliseconds; 0 fires once (default: 500)
	IntervalMs int `mapstructure:"interval_ms" yaml:"interval_ms"`
	// LeewayMs is the allowed delivery delay in milliseconds (default: 0)
	LeewayMs int `mapstructure:"leeway_ms" yaml:"leeway_ms"`
	// Ticks is how many ticks `timer run` waits for before cancelling (default: 5)
	Ticks int `mapstructure:"ticks" yaml:"ticks"`
	// Executor selects where ticks run: "queue" (serial) or "pool" (default: "queue")
	Executor string `mapstructure:"executor" yaml:"executor"`
}

// Interval returns the repeat interval as a time.Duration
func (c *TimerConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMs) * time.Millisecond
}

// Leeway returns the leeway as a time.Duration
func (c *TimerConfig) Leeway() time.Duration {
	return time.Duration(c.LeewayMs) * time.Millisecond
}

// NotifyConfig controls where release notifications are posted
type NotifyConfig struct {
	// Backend is "file" for a cross-process center or "local" for in-process only (default: "file")
	Backend string `mapstructure:"backend" yaml:"backend"`
	// Dir is the directory shared by file centers (default: $TMPDIR/cfoundation-notify)
	Dir string `mapstructure:"dir" yaml:"dir"`
	// PollIntervalMs is the fallback re-read interval for file centers (default: 500)
	PollIntervalMs int `mapstructure:"poll_interval_ms" yaml:"poll_interval_ms"`
}

// PollInterval returns the poll interval as a time.Duration
func (c *NotifyConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level" yaml:"level"`
	// Dir is the directory for cfoundation.log; empty logs to stderr
	Dir string `mapstructure:"dir" yaml:"dir"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation (default: 10)
	MaxSizeMB int `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	// MaxBackups is the number of backup log files to keep (default: 3)
	MaxBackups int `mapstructure:"max_backups" yaml:"max_backups"`
}

// DispatchConfig controls executors
type DispatchConfig struct {
	// PoolSize is the worker count of pool executors (default: 4)
	PoolSize int `mapstructure:"pool_size" yaml:"pool_size"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Timer: TimerConfig{
			IntervalMs: 500,
			LeewayMs:   0,
			Ticks:      5,
			Executor:   "queue",
		},
		Notify: NotifyConfig{
			Backend:        "file",
			Dir:            filepath.Join(os.TempDir(), "cfoundation-notify"),
			PollIntervalMs: 500,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Dir:        "",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Dispatch: DispatchConfig{
			PoolSize: 4,
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Timer defaults
	viper.SetDefault("timer.interval_ms", defaults.Timer.IntervalMs)
	viper.SetDefault("timer.leeway_ms", defaults.Timer.LeewayMs)
	viper.SetDefault("timer.ticks", defaults.Timer.Ticks)
	viper.SetDefault("timer.executor", defaults.Timer.Executor)

	// Notify defaults
	viper.SetDefault("notify.backend", defaults.Notify.Backend)
	viper.SetDefault("notify.dir", defaults.Notify.Dir)
	viper.SetDefault("notify.poll_interval_ms", defaults.Notify.PollIntervalMs)

	// Logging defaults
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)

	// Dispatch defaults
	viper.SetDefault("dispatch.pool_size", defaults.Dispatch.PoolSize)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "cfoundation")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cfoundation"
	}
	return filepath.Join(home, ".config", "cfoundation")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// ValidBackends returns the list of valid notification backends
func ValidBackends() []string {
	return []string{"file", "local"}
}

// ValidExecutors returns the list of valid timer executors
func ValidExecutors() []string {
	return []string{"queue", "pool"}
}
