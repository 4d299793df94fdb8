// Package config handles configuration loading and validation for the
// calculator service.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// History backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config holds the complete service configuration.
type Config struct {
	Server    ServerConfig    `toml:"server" json:"server" yaml:"server"`
	History   HistoryConfig   `toml:"history" json:"history" yaml:"history"`
	Logging   LoggingConfig   `toml:"logging" json:"logging" yaml:"logging"`
	Telemetry TelemetryConfig `toml:"telemetry" json:"telemetry" yaml:"telemetry"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr string `toml:"addr" json:"addr" yaml:"addr"`

	// ShutdownTimeoutSec bounds graceful shutdown.
	ShutdownTimeoutSec int `toml:"shutdown_timeout_sec" json:"shutdown_timeout_sec" yaml:"shutdown_timeout_sec"`
}

// HistoryConfig selects where calculation history is persisted.
type HistoryConfig struct {
	// Backend is one of "file", "sqlite" or "memory".
	Backend string `toml:"backend" json:"backend" yaml:"backend"`

	// Path is the data directory for file and sqlite backends.
	Path string `toml:"path" json:"path" yaml:"path"`

	// Key names the persisted record.
	Key string `toml:"key" json:"key" yaml:"key"`
}

type LoggingConfig struct {
	Level string `toml:"level" json:"level" yaml:"level"`
}

// TelemetryConfig toggles the OTLP exporters. Endpoints come from the
// standard OTEL_EXPORTER_OTLP_* variables.
type TelemetryConfig struct {
	Enabled     bool   `toml:"enabled" json:"enabled" yaml:"enabled"`
	ExportLogs  bool   `toml:"export_logs" json:"export_logs" yaml:"export_logs"`
	ServiceName string `toml:"service_name" json:"service_name" yaml:"service_name"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:               ":8080",
			ShutdownTimeoutSec: 5,
		},
		History: HistoryConfig{
			Backend: BackendFile,
			Path:    "data",
			Key:     "calc_history",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Telemetry: TelemetryConfig{
			Enabled:     true,
			ServiceName: "neonflow-calculator",
		},
	}
}

// Load reads path, applies NEONFLOW_* environment overrides and validates the
// result. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg, err := loadConfigFromFile(path)
	if err != nil {
		return nil, err
	}

	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return cfg, nil
}

func loadConfigFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	switch filepath.Ext(path) {
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode JSON: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode YAML: %w", err)
		}
	default:
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("decode TOML: %w", err)
		}
	}
	return cfg, nil
}

// ApplyEnvOverrides applies NEONFLOW_* variables on top of the file values.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("NEONFLOW_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("NEONFLOW_HISTORY_BACKEND"); v != "" {
		c.History.Backend = v
	}
	if v := os.Getenv("NEONFLOW_HISTORY_PATH"); v != "" {
		c.History.Path = v
	}
	if v := os.Getenv("NEONFLOW_HISTORY_KEY"); v != "" {
		c.History.Key = v
	}
	if v := os.Getenv("NEONFLOW_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("NEONFLOW_TELEMETRY_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Telemetry.Enabled = b
		}
	}
	if v := os.Getenv("OTEL_SERVICE_NAME"); v != "" {
		c.Telemetry.ServiceName = v
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Server.ShutdownTimeoutSec < 0 {
		errs = append(errs, errors.New("server.shutdown_timeout_sec must not be negative"))
	}

	switch c.History.Backend {
	case BackendFile, BackendSQLite:
		if c.History.Path == "" {
			errs = append(errs, fmt.Errorf("history.path is required for the %s backend", c.History.Backend))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("history.backend must be one of file, sqlite, memory; got %q", c.History.Backend))
	}
	if strings.ContainsAny(c.History.Key, `/\`) {
		errs = append(errs, fmt.Errorf("history.key %q must not contain path separators", c.History.Key))
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level))
	}

	return errors.Join(errs...)
}
