// Package config provides configuration management.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"plan-advisor/internal/errors"
	"plan-advisor/internal/logging"
)

// EnvPrefix prefixes environment overrides, e.g. PLANADVISOR_SERVER_ADDR
const EnvPrefix = "PLANADVISOR"

// Rate table sources
const (
	SourceCSV      = "csv"
	SourceWorkbook = "xlsx"
	SourceDatabase = "sqlite"
)

// Config is the main application configuration
type Config struct {
	// Rates selects and locates the rate table
	Rates RatesConfig `json:"rates" yaml:"rates" mapstructure:"rates"`

	// Catalog locates an optional catalog file
	Catalog CatalogConfig `json:"catalog" yaml:"catalog" mapstructure:"catalog"`

	// Output contains output configuration
	Output OutputConfig `json:"output" yaml:"output" mapstructure:"output"`

	// Server contains HTTP server configuration
	Server ServerConfig `json:"server" yaml:"server" mapstructure:"server"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging" yaml:"logging" mapstructure:"logging"`

	// Region is the default regional variant; empty prices in euros
	Region string `json:"region" yaml:"region" mapstructure:"region"`
}

// RatesConfig contains rate table settings
type RatesConfig struct {
	// Source is csv, xlsx or sqlite
	Source string `json:"source" yaml:"source" mapstructure:"source"`

	// PlansCSV is the plan rate file
	PlansCSV string `json:"plans_csv" yaml:"plans_csv" mapstructure:"plans_csv"`

	// ModulesCSV is the module rate file
	ModulesCSV string `json:"modules_csv" yaml:"modules_csv" mapstructure:"modules_csv"`

	// Workbook is the xlsx rate workbook
	Workbook string `json:"workbook" yaml:"workbook" mapstructure:"workbook"`

	// Database is the SQLite rate store
	Database string `json:"database" yaml:"database" mapstructure:"database"`
}

// CatalogConfig contains catalog settings
type CatalogConfig struct {
	// Path is an HCL catalog file; empty uses the built-in catalog
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// DefaultFormat is the default output format
	DefaultFormat string `json:"default_format" yaml:"default_format" mapstructure:"default_format"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Addr            string        `json:"addr" yaml:"addr" mapstructure:"addr"`
	ReadTimeout     time.Duration `json:"read_timeout" yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout" yaml:"write_timeout" mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`

	// MaxBodyBytes caps request bodies
	MaxBodyBytes int64 `json:"max_body_bytes" yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Rates: RatesConfig{
			Source:     SourceCSV,
			PlansCSV:   filepath.Join("data", "precos_planos.csv"),
			ModulesCSV: filepath.Join("data", "precos_produtos.csv"),
			Workbook:   filepath.Join("data", "precos.xlsx"),
			Database:   filepath.Join("data", "precos.db"),
		},
		Output: OutputConfig{
			DefaultFormat: "cli",
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			MaxBodyBytes:    1 << 20,
		},
		Logging: logging.DefaultConfig(),
	}
}

// setDefaults registers every key so environment overrides apply
func setDefaults(v *viper.Viper, c *Config) {
	v.SetDefault("rates.source", c.Rates.Source)
	v.SetDefault("rates.plans_csv", c.Rates.PlansCSV)
	v.SetDefault("rates.modules_csv", c.Rates.ModulesCSV)
	v.SetDefault("rates.workbook", c.Rates.Workbook)
	v.SetDefault("rates.database", c.Rates.Database)
	v.SetDefault("catalog.path", c.Catalog.Path)
	v.SetDefault("output.default_format", c.Output.DefaultFormat)
	v.SetDefault("server.addr", c.Server.Addr)
	v.SetDefault("server.read_timeout", c.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", c.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", c.Server.ShutdownTimeout)
	v.SetDefault("server.max_body_bytes", c.Server.MaxBodyBytes)
	v.SetDefault("logging.level", c.Logging.Level)
	v.SetDefault("logging.format", c.Logging.Format)
	v.SetDefault("logging.output", c.Logging.Output)
	v.SetDefault("logging.development", c.Logging.Development)
	v.SetDefault("region", c.Region)
}

// Load loads configuration from a file, then applies environment overrides.
// An empty path or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, errors.Config("failed to read config file", err).WithContext("path", path)
			}
		} else if !os.IsNotExist(err) {
			return nil, errors.Config("failed to stat config file", err).WithContext("path", path)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Config("failed to decode config", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the rate source
func (c *Config) Validate() error {
	switch c.Rates.Source {
	case SourceCSV, SourceWorkbook, SourceDatabase:
		return nil
	default:
		return errors.Newf(errors.TypeConfig, "unknown rates source %q", c.Rates.Source)
	}
}

// Save writes the configuration in the format implied by the file extension
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Config("failed to create config directory", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Config("failed to encode config", err)
	}
	var values map[string]any
	if err := yaml.Unmarshal(data, &values); err != nil {
		return errors.Config("failed to encode config", err)
	}

	v := viper.New()
	if err := v.MergeConfigMap(values); err != nil {
		return errors.Config("failed to encode config", err)
	}
	if err := v.WriteConfigAs(path); err != nil {
		return errors.Config("failed to write config file", err).WithContext("path", path)
	}
	return nil
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
