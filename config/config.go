// Package config loads client configuration from YAML files with
// environment-variable overrides.
//
// Precedence: defaults, then the YAML file, then environment variables with
// the COAX_ prefix.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full client configuration.
type Config struct {
	// Endpoint is the chat endpoint to talk to.
	Endpoint EndpointConfig `yaml:"endpoint"`

	// Retry holds the default orchestrator settings. Per-call options
	// override these.
	Retry RetryConfig `yaml:"retry"`

	// Log configures logging.
	Log LogConfig `yaml:"log"`
}

// EndpointConfig describes the chat endpoint.
type EndpointConfig struct {
	Host    string        `yaml:"host"`
	Port    int           `yaml:"port"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

// RetryConfig holds default retry-loop settings.
type RetryConfig struct {
	MaxRetries      int     `yaml:"max_retries"`
	EnsureComplete  bool    `yaml:"ensure_complete"`
	Strict          bool    `yaml:"strict"`
	TargetedRetries bool    `yaml:"targeted_retries"`
	Temperature     float64 `yaml:"temperature"`
	MaxTemperature  float64 `yaml:"max_temperature"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Endpoint: EndpointConfig{
			Host:    "127.0.0.1",
			Port:    11434,
			Timeout: 30 * time.Second,
		},
		Retry: RetryConfig{
			MaxRetries:      0,
			EnsureComplete:  false,
			Strict:          false,
			TargetedRetries: true,
			Temperature:     0.7,
			MaxTemperature:  2.0,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads path (if non-empty) over the defaults and applies environment
// overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("COAX_HOST"); v != "" {
		c.Endpoint.Host = v
	}
	if v := os.Getenv("COAX_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Endpoint.Port = p
		}
	}
	if v := os.Getenv("COAX_MODEL"); v != "" {
		c.Endpoint.Model = v
	}
	if v := os.Getenv("COAX_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Endpoint.Timeout = d
		}
	}
	if v := os.Getenv("COAX_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Retry.MaxRetries = n
		}
	}
	if v := os.Getenv("COAX_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Retry.Temperature = f
		}
	}
	if v := os.Getenv("COAX_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

func (c *Config) validate() error {
	if c.Endpoint.Port <= 0 || c.Endpoint.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Endpoint.Port)
	}
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative: %d", c.Retry.MaxRetries)
	}
	if c.Retry.Temperature < 0 {
		return fmt.Errorf("temperature must not be negative: %g", c.Retry.Temperature)
	}
	if c.Retry.MaxTemperature > 0 && c.Retry.Temperature > c.Retry.MaxTemperature {
		return fmt.Errorf("temperature %g exceeds max_temperature %g", c.Retry.Temperature, c.Retry.MaxTemperature)
	}
	return nil
}
