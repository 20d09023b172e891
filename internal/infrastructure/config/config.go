// Package config loads workspace settings from .slate/config.yaml.
//
// Settings are resolved with Viper in this order, highest first:
//  1. Environment variables (SLATE_ prefix, e.g. SLATE_RETRY_MAX_ATTEMPTS)
//  2. .slate/config.yaml
//  3. [Default] values
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/felixgeelhaar/slate/pkg/domain/approval"
	"github.com/felixgeelhaar/slate/pkg/storage"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix for environment overrides.
const EnvPrefix = "SLATE"

// Output formats.
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// Config is the workspace configuration.
type Config struct {
	// Actor is the default identity recorded on changes. --actor overrides it.
	Actor string `mapstructure:"actor" yaml:"actor,omitempty"`

	// TrackedRoles are the roles the greenlight gate waits for. An empty list
	// tracks none.
	TrackedRoles []string `mapstructure:"tracked_roles" yaml:"tracked_roles"`

	Retry  RetryConfig `mapstructure:"retry" yaml:"retry"`
	Log    LogConfig   `mapstructure:"log" yaml:"log"`
	Output string      `mapstructure:"output" yaml:"output"`
}

// RetryConfig bounds retries of conflicted writes.
type RetryConfig struct {
	MaxAttempts    int           `mapstructure:"max_attempts" yaml:"max_attempts"`
	InitialDelay   time.Duration `mapstructure:"initial_delay" yaml:"initial_delay"`
	AttemptTimeout time.Duration `mapstructure:"attempt_timeout" yaml:"attempt_timeout"`
}

// LogConfig sets the stderr log level.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	roles := approval.ValidRoles()
	tracked := make([]string, len(roles))
	for i, r := range roles {
		tracked[i] = r.String()
	}
	return &Config{
		TrackedRoles: tracked,
		Retry: RetryConfig{
			MaxAttempts:    3,
			InitialDelay:   20 * time.Millisecond,
			AttemptTimeout: 5 * time.Second,
		},
		Log:    LogConfig{Level: "warn"},
		Output: OutputText,
	}
}

// Roles parses TrackedRoles.
func (c *Config) Roles() ([]approval.Role, error) {
	roles, err := approval.ParseRoles(c.TrackedRoles)
	if err != nil {
		return nil, err
	}
	if roles == nil {
		roles = []approval.Role{}
	}
	return roles, nil
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelWarn, fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	return level, nil
}

// Validate checks every field that has a closed set of values.
func (c *Config) Validate() error {
	if _, err := c.Roles(); err != nil {
		return fmt.Errorf("tracked_roles: %w", err)
	}
	if _, err := c.LogLevel(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	switch c.Output {
	case OutputText, OutputJSON, OutputYAML:
	default:
		return fmt.Errorf("output: unsupported format %q", c.Output)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry.max_attempts must be at least 1")
	}
	return nil
}

// Loader resolves configuration with Viper.
type Loader struct {
	v *viper.Viper
}

// NewLoader returns a Loader seeded with defaults and environment bindings.
func NewLoader() *Loader {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := Default()
	v.SetDefault("actor", d.Actor)
	v.SetDefault("tracked_roles", d.TrackedRoles)
	v.SetDefault("retry.max_attempts", d.Retry.MaxAttempts)
	v.SetDefault("retry.initial_delay", d.Retry.InitialDelay)
	v.SetDefault("retry.attempt_timeout", d.Retry.AttemptTimeout)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("output", d.Output)

	return &Loader{v: v}
}

// Load reads the workspace config under root. A missing file yields the
// defaults plus any environment overrides.
func (l *Loader) Load(root string) (*Config, error) {
	path, err := storage.NewFilesystemRepository(root).ResolvePath(storage.ConfigFile)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err == nil {
		return l.LoadFromFile(path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	return l.decode()
}

// LoadFromFile reads the config at path.
func (l *Loader) LoadFromFile(path string) (*Config, error) {
	l.v.SetConfigFile(path)
	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	return l.decode()
}

func (l *Loader) decode() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load reads the workspace config under root with a fresh Loader.
func Load(root string) (*Config, error) {
	return NewLoader().Load(root)
}

// Save writes cfg to .slate/config.yaml under root.
func Save(root string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	path, err := storage.NewFilesystemRepository(root).ResolvePath(storage.ConfigFile)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}
