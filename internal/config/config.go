// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied by MergeWithDefaults and Defaults.
const (
	DefaultPort             = 8080
	DefaultMaxUploadBytes   = 5 * 1024 * 1024
	DefaultAITimeoutSeconds = 120
	DefaultConcurrency      = 4
)

// Config represents the configuration that can be loaded from a JSON or YAML file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	APIKey           string `json:"api_key,omitempty" yaml:"api_key,omitempty"`                       // Gemini API key
	Model            string `json:"model,omitempty" yaml:"model,omitempty"`                           // Gemini model used for AI repair
	Port             int    `json:"port,omitempty" yaml:"port,omitempty"`                             // HTTP listen port
	MaxUploadBytes   int64  `json:"max_upload_bytes,omitempty" yaml:"max_upload_bytes,omitempty"`     // Upload limit, capped at 5 MB
	AITimeoutSeconds int    `json:"ai_timeout_seconds,omitempty" yaml:"ai_timeout_seconds,omitempty"` // Timeout for one AI repair call
	Concurrency      int    `json:"concurrency,omitempty" yaml:"concurrency,omitempty"`               // Files repaired in parallel by the CLI
	Verbose          bool   `json:"verbose,omitempty" yaml:"verbose,omitempty"`                       // Print detailed debug information
	RateLimitEnabled *bool  `json:"rate_limit_enabled,omitempty" yaml:"rate_limit_enabled,omitempty"` // Nil means enabled
}

// Defaults returns a Config holding every default value.
func Defaults() Config {
	return Config{
		Port:             DefaultPort,
		MaxUploadBytes:   DefaultMaxUploadBytes,
		AITimeoutSeconds: DefaultAITimeoutSeconds,
		Concurrency:      DefaultConcurrency,
	}
}

// LoadConfig loads configuration from a JSON file, or YAML when the extension is .yaml or .yml.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

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

// FromEnv returns a Config populated from GEMINI_API_KEY, GEMINI_MODEL and PORT.
func FromEnv() Config {
	cfg := Config{
		APIKey: os.Getenv("GEMINI_API_KEY"),
		Model:  os.Getenv("GEMINI_MODEL"),
	}
	if port, err := strconv.Atoi(os.Getenv("PORT")); err == nil {
		cfg.Port = port
	}
	return cfg
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.MaxUploadBytes < 0 {
		return fmt.Errorf("config error: 'max_upload_bytes' must be non-negative")
	}
	if c.MaxUploadBytes > DefaultMaxUploadBytes {
		return fmt.Errorf("config error: 'max_upload_bytes' cannot exceed %d", DefaultMaxUploadBytes)
	}
	if c.AITimeoutSeconds < 0 {
		return fmt.Errorf("config error: 'ai_timeout_seconds' must be non-negative")
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("config error: 'concurrency' must be non-negative")
	}
	return nil
}

// MergeWithDefaults returns a new Config with zero-valued fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.MaxUploadBytes == 0 {
		result.MaxUploadBytes = defaults.MaxUploadBytes
	}
	if result.AITimeoutSeconds == 0 {
		result.AITimeoutSeconds = defaults.AITimeoutSeconds
	}
	if result.Concurrency == 0 {
		result.Concurrency = defaults.Concurrency
	}
	if result.RateLimitEnabled == nil {
		result.RateLimitEnabled = defaults.RateLimitEnabled
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// AITimeout returns the AI call timeout as a duration.
func (c *Config) AITimeout() time.Duration {
	return time.Duration(c.AITimeoutSeconds) * time.Second
}

// RateLimited reports whether rate limiting is enabled.
func (c *Config) RateLimited() bool {
	return c.RateLimitEnabled == nil || *c.RateLimitEnabled
}
