// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Session backends accepted by SessionBackend.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Defaults applied by MergeWithDefaults when nothing else sets a value.
const (
	DefaultAPIBaseURL     = "http://localhost:8000"
	DefaultSessionBackend = BackendFile
	DefaultTimeoutSeconds = 30
)

// Environment variables read by FromEnv.
const (
	EnvAPIBaseURL     = "PORTAL_API_BASE_URL"
	EnvSessionFile    = "PORTAL_SESSION_FILE"
	EnvSessionBackend = "PORTAL_SESSION_BACKEND"
	EnvRedisURL       = "REDIS_URL"
	EnvTimeoutSeconds = "PORTAL_TIMEOUT_SECONDS"
)

// Config represents the CLI configuration that can be loaded from a JSON or YAML file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	APIBaseURL     string `json:"api_base_url,omitempty" yaml:"api_base_url,omitempty"`       // Backend root URL
	SessionBackend string `json:"session_backend,omitempty" yaml:"session_backend,omitempty"` // file, redis or memory
	SessionFile    string `json:"session_file,omitempty" yaml:"session_file,omitempty"`       // Credential file for the file backend
	RedisURL       string `json:"redis_url,omitempty" yaml:"redis_url,omitempty"`             // Redis address for the redis backend
	TimeoutSeconds int    `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty"` // Per-request timeout
	Verbose        bool   `json:"verbose,omitempty" yaml:"verbose,omitempty"`                 // Debug logging
}

// LoadConfig loads configuration from a file. Files ending in .yaml or .yml
// are parsed as YAML, everything else as JSON.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// FromEnv reads configuration from environment variables.
// Unset variables leave the corresponding field empty.
func FromEnv() (Config, error) {
	cfg := Config{
		APIBaseURL:     os.Getenv(EnvAPIBaseURL),
		SessionFile:    os.Getenv(EnvSessionFile),
		SessionBackend: os.Getenv(EnvSessionBackend),
		RedisURL:       os.Getenv(EnvRedisURL),
	}

	if raw := os.Getenv(EnvTimeoutSeconds); raw != "" {
		timeout, err := strconv.Atoi(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %v", EnvTimeoutSeconds, err)
		}
		cfg.TimeoutSeconds = timeout
	}

	return cfg, nil
}

// Validate checks that the configuration has valid values.
// Empty fields are accepted since defaults are applied after merging.
func (c *Config) Validate() error {
	if c.APIBaseURL != "" {
		u, err := url.Parse(c.APIBaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("config error: 'api_base_url' is not an absolute URL: %q", c.APIBaseURL)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("config error: 'api_base_url' must use http or https, got %q", u.Scheme)
		}
	}

	switch c.SessionBackend {
	case "", BackendFile, BackendMemory:
	case BackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("config error: 'redis_url' is required when 'session_backend' is redis")
		}
	default:
		return fmt.Errorf("config error: unknown 'session_backend' %q (want file, redis or memory)", c.SessionBackend)
	}

	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("config error: 'timeout_seconds' must be non-negative")
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// It is applied in priority order: flags, then env, then file, then the built-in defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.APIBaseURL == "" {
		result.APIBaseURL = defaults.APIBaseURL
	}
	if result.SessionBackend == "" {
		result.SessionBackend = defaults.SessionBackend
	}
	if result.SessionFile == "" {
		result.SessionFile = defaults.SessionFile
	}
	if result.RedisURL == "" {
		result.RedisURL = defaults.RedisURL
	}

	// Int fields: use default if zero
	if result.TimeoutSeconds == 0 {
		result.TimeoutSeconds = defaults.TimeoutSeconds
	}

	// Bool fields: cannot distinguish unset from false, so true wins
	result.Verbose = result.Verbose || defaults.Verbose

	return result
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		APIBaseURL:     DefaultAPIBaseURL,
		SessionBackend: DefaultSessionBackend,
		TimeoutSeconds: DefaultTimeoutSeconds,
	}
}
