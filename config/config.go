// Package config loads ridebook settings from a YAML or JSON file with
// environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes environment overrides. Nested keys use a double
// underscore: RIDEBOOK_SERVER__PORT=9090.
const EnvPrefix = "RIDEBOOK_"

// Store drivers.
const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

type Config struct {
	Server     ServerConfig     `json:"server"`
	Database   DatabaseConfig   `json:"database"`
	Logging    LoggingConfig    `json:"logging"`
	Validation ValidationConfig `json:"validation"`
	Metrics    MetricsConfig    `json:"metrics"`
	Backup     BackupConfig     `json:"backup"`
}

type ServerConfig struct {
	Port                int      `json:"port"`
	ReadTimeoutSeconds  int      `json:"read_timeout_seconds"`
	WriteTimeoutSeconds int      `json:"write_timeout_seconds"`
	CORSOrigins         []string `json:"cors_origins"`
}

type DatabaseConfig struct {
	// Driver is "sqlite" or "memory".
	Driver string `json:"driver"`
	// Path is the sqlite file; ":memory:" keeps everything in memory.
	Path string `json:"path"`
}

// LoggingConfig controls the application log.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level"`
	// Format is "json" or "console".
	Format string `json:"format"`
}

// ValidationConfig controls input checks applied before records reach the
// earnings engine. The engine itself accepts anything.
type ValidationConfig struct {
	RejectNegative *bool `json:"reject_negative"`
}

type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// BackupConfig drives the periodic JSON export.
type BackupConfig struct {
	Enabled         bool   `json:"enabled"`
	Dir             string `json:"dir"`
	IntervalMinutes int    `json:"interval_minutes"`
	Keep            int    `json:"keep"`
}

// Load reads path (if not empty), applies environment overrides, fills
// defaults and validates the result.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		var parser koanf.Parser
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", filepath.Ext(path))
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) SetDefaults() {
	c.Server.SetDefaults()
	c.Database.SetDefaults()
	c.Logging.SetDefaults()
	c.Validation.SetDefaults()
	c.Metrics.SetDefaults()
	c.Backup.SetDefaults()
}

func (c Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Backup.Validate(); err != nil {
		return fmt.Errorf("backup: %w", err)
	}
	return nil
}

func (c *ServerConfig) SetDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.ReadTimeoutSeconds == 0 {
		c.ReadTimeoutSeconds = 15
	}
	if c.WriteTimeoutSeconds == 0 {
		c.WriteTimeoutSeconds = 15
	}
	if len(c.CORSOrigins) == 0 {
		c.CORSOrigins = []string{"http://localhost:5173", "http://localhost:8080"}
	}
}

func (c ServerConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	return nil
}

func (c *DatabaseConfig) SetDefaults() {
	if c.Driver == "" {
		c.Driver = DriverSQLite
	}
	if c.Path == "" {
		c.Path = "ridebook.db"
	}
}

func (c DatabaseConfig) Validate() error {
	if c.Driver != DriverSQLite && c.Driver != DriverMemory {
		return fmt.Errorf("unknown driver %s", c.Driver)
	}
	return nil
}

func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "json"
	}
}

func (c LoggingConfig) Validate() error {
	switch c.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown level %s", c.Level)
	}
	if c.Format != "json" && c.Format != "console" {
		return fmt.Errorf("unknown format %s", c.Format)
	}
	return nil
}

func (c *ValidationConfig) SetDefaults() {
	if c.RejectNegative == nil {
		v := true
		c.RejectNegative = &v
	}
}

// RejectsNegative reports whether negative values must be refused.
func (c ValidationConfig) RejectsNegative() bool {
	return c.RejectNegative == nil || *c.RejectNegative
}

func (c *MetricsConfig) SetDefaults() {
	if c.Path == "" {
		c.Path = "/metrics"
	}
}

func (c *BackupConfig) SetDefaults() {
	if c.Dir == "" {
		c.Dir = "backups"
	}
	if c.IntervalMinutes == 0 {
		c.IntervalMinutes = 24 * 60
	}
	if c.Keep == 0 {
		c.Keep = 7
	}
}

func (c BackupConfig) Validate() error {
	if c.IntervalMinutes < 1 {
		return fmt.Errorf("interval_minutes must be positive")
	}
	if c.Keep < 1 {
		return fmt.Errorf("keep must be positive")
	}
	return nil
}
