// Package config loads the compositor/client process configuration:
// logging, the metrics HTTP server, graceful-shutdown timing, and the
// schema search path the IDL loader walks at startup. Grounded on the
// teacher's pkg/config/config.go viper+mapstructure+yaml layering
// (env > file > defaults) and kept to the ambient concerns this process
// actually has — no database, cache, or auth sections, since Stardust
// has none of those.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the static process configuration.
//
// Configuration sources, in precedence order:
//  1. Environment variables (STARDUST_*)
//  2. Configuration file (YAML)
//  3. Default values
//
// Environment variables are consulted only when a configuration file is
// found, and only for keys that file sets; with no file, Load returns
// DefaultConfig() without reading the environment.
type Config struct {
	// Logging controls structured log output.
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// ShutdownTimeout bounds how long graceful shutdown waits for
	// in-flight calls to drain before forcing connections closed.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`

	// Metrics configures the Prometheus metrics HTTP server.
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// Schema configures where the IDL loader finds .kdl schema files.
	Schema SchemaConfig `mapstructure:"schema" yaml:"schema"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output.
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive).
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format is the log output encoding. Valid values: text, json.
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output is where logs are written: stdout, stderr, or a file path.
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// MetricsConfig configures the Prometheus metrics HTTP server. When
// Enabled is false, no metrics are collected.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	Port    int  `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
}

// SchemaConfig configures schema discovery for the IDL loader.
type SchemaConfig struct {
	// Paths are directories searched (non-recursively) for *.kdl files,
	// in order; an aspect name defined in more than one schema is a
	// resolution error (idl.ErrDuplicateAspect).
	Paths []string `mapstructure:"paths" validate:"required,min=1" yaml:"paths"`
}

// Load loads configuration from file, environment, and defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	found, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}
	if !found {
		cfg := DefaultConfig()
		return cfg, nil
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(durationDecodeHook())); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	ApplyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return &cfg, nil
}

// MustLoad loads configuration, returning a user-facing error naming
// configPath when a non-empty configPath does not exist. With an empty
// configPath it behaves like Load.
func MustLoad(configPath string) (*Config, error) {
	if configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("config: file not found: %s", configPath)
		}
	}
	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("config: load: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes cfg to path in YAML form.
func SaveConfig(cfg *Config, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: create dir: %w", err)
		}
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("STARDUST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}
	v.AddConfigPath(configDir())
	v.SetConfigName("config")
	v.SetConfigType("yaml")
}

func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("config: read file: %w", err)
	}
	return true, nil
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.StringToTimeDurationHookFunc()
}

func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "stardust")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "stardust")
}

// DefaultConfigPath returns the default configuration file location.
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}
