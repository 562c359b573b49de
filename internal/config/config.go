package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config captures the settings for the crashkit CLI and triage service.
type Config struct {
	Logging     LoggingConfig     `yaml:"logging"`
	Analysis    AnalysisConfig    `yaml:"analysis"`
	Rules       RulesConfig       `yaml:"rules"`
	Environment EnvironmentConfig `yaml:"environment"`
	Server      ServerConfig      `yaml:"server"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn warning error"`
	JSON  bool   `yaml:"json"`
}

// AnalysisConfig bounds what reports include.
type AnalysisConfig struct {
	KeyLineLimit int `yaml:"keyLineLimit" validate:"gte=0"`
	TopSuspects  int `yaml:"topSuspects" validate:"gte=1"`
}

// RulesConfig points at an alternative suspect taxonomy. Empty uses the built-in one.
type RulesConfig struct {
	Path string `yaml:"path"`
}

// EnvironmentConfig controls host GPU/OS queries during summarize.
type EnvironmentConfig struct {
	Enabled bool          `yaml:"enabled"`
	Timeout time.Duration `yaml:"timeout" validate:"gte=0"`
}

// ServerConfig controls gRPC listener behaviour.
type ServerConfig struct {
	Address         string        `yaml:"address" validate:"required"`
	MetricsAddress  string        `yaml:"metricsAddress"`
	GracefulTimeout time.Duration `yaml:"gracefulTimeout" validate:"gte=0"`
}

// MetricsConfig controls metric export for batch commands.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// Load initialises Config from defaults, an optional YAML file and
// environment overrides, then validates the result.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("MIRADOR_CRASHKIT_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := defaultConfig()
	return &cfg
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info", JSON: false},
		Analysis: AnalysisConfig{
			KeyLineLimit: 25,
			TopSuspects:  6,
		},
		Environment: EnvironmentConfig{Enabled: true},
		Server: ServerConfig{
			Address:         ":50061",
			MetricsAddress:  ":2113",
			GracefulTimeout: 10 * time.Second,
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MIRADOR_CRASHKIT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("MIRADOR_CRASHKIT_LOG_FORMAT"); v == "json" {
		cfg.Logging.JSON = true
	}
	if v := os.Getenv("MIRADOR_CRASHKIT_RULES_PATH"); v != "" {
		cfg.Rules.Path = v
	}
	if v := os.Getenv("MIRADOR_CRASHKIT_KEY_LINE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Analysis.KeyLineLimit = n
		}
	}
	if v := os.Getenv("MIRADOR_CRASHKIT_ENV_PROBE"); v != "" {
		cfg.Environment.Enabled = strings.EqualFold(v, "true") || v == "1"
	}
	if v := os.Getenv("MIRADOR_CRASHKIT_ENV_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Environment.Timeout = d
		}
	}
	if v := os.Getenv("MIRADOR_CRASHKIT_SERVER_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("MIRADOR_CRASHKIT_METRICS_ADDRESS"); v != "" {
		cfg.Server.MetricsAddress = v
	}
	if v := os.Getenv("MIRADOR_CRASHKIT_METRICS_TEXTFILE"); v != "" {
		cfg.Metrics.Textfile = v
	}
}
