// Package config loads batchqd's configuration from a YAML file, applying
// production-ready defaults for anything the file leaves unset.
package config

import (
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/sathwikv/batchq/internal/database"
	"github.com/sathwikv/batchq/internal/errs"
)

// Duration is a time.Duration that unmarshals from YAML strings like "5s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return errs.Wrap(errs.ErrKindInvalidInput, "invalid duration", err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the standard-library representation.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the full batchqd configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `yaml:"addr"`

	// ReadTimeout / WriteTimeout bound each HTTP request.
	ReadTimeout  Duration `yaml:"read_timeout"`
	WriteTimeout Duration `yaml:"write_timeout"`
}

// DatabaseConfig holds the driver selection and connection settings.
type DatabaseConfig struct {
	// Driver is "postgres" or "mysql".
	Driver string `yaml:"driver"`

	// DSN is the full connection string for the chosen driver.
	DSN string `yaml:"dsn"`

	ConnectTimeout Duration `yaml:"connect_timeout"`
	QueryTimeout   Duration `yaml:"query_timeout"`
}

// LogConfig holds structured-logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// Default returns the configuration used when no file overrides it.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  Duration(15 * time.Second),
			WriteTimeout: Duration(60 * time.Second),
		},
		Database: DatabaseConfig{
			Driver:         string(database.DriverPostgres),
			ConnectTimeout: Duration(10 * time.Second),
			QueryTimeout:   Duration(30 * time.Second),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads the YAML file at path and merges it over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "failed to read config file", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "failed to parse config file", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch database.Driver(c.Database.Driver) {
	case database.DriverPostgres, database.DriverMySQL:
	default:
		return errs.Newf(errs.ErrKindInvalidInput, "unknown database driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errs.New(errs.ErrKindInvalidInput, "database.dsn is required")
	}
	return nil
}

// Build converts the YAML settings into the driver-facing database.Config.
func (c *DatabaseConfig) Build() *database.Config {
	return &database.Config{
		Driver:         database.Driver(c.Driver),
		DSN:            c.DSN,
		ConnectTimeout: c.ConnectTimeout.Std(),
		QueryTimeout:   c.QueryTimeout.Std(),
	}
}
