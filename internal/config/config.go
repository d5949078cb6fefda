// Package config provides configuration loading and validation for the
// server and worker.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration. Values come from an optional
// JSON file, overridden by environment variables.
type Config struct {
	Port                int    `json:"port,omitempty"`
	DatabaseURL         string `json:"database_url,omitempty"`
	GeminiAPIKey        string `json:"gemini_api_key,omitempty"`
	TranscriptAPIKey    string `json:"transcript_api_key,omitempty"`
	SupabaseJWTSecret   string `json:"supabase_jwt_secret,omitempty"`
	Model               string `json:"model,omitempty"`
	PollIntervalSeconds int    `json:"poll_interval_seconds,omitempty"`
	BatchSize           int    `json:"batch_size,omitempty"`
}

// Defaults for optional settings.
const (
	DefaultPort                = 8080
	DefaultPollIntervalSeconds = 30
	DefaultBatchSize           = 10
)

// Load reads configuration from an optional JSON file, applies environment
// overrides, and fills defaults. An empty path skips the file entirely.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		}
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.GeminiAPIKey = v
	}
	if v := os.Getenv("TRANSCRIPT_API_KEY"); v != "" {
		c.TranscriptAPIKey = v
	}
	if v := os.Getenv("SUPABASE_JWT_SECRET"); v != "" {
		c.SupabaseJWTSecret = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("RETRY_POLL_INTERVAL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.PollIntervalSeconds = n
		}
	}
	if v := os.Getenv("RETRY_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.BatchSize = n
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.PollIntervalSeconds == 0 {
		c.PollIntervalSeconds = DefaultPollIntervalSeconds
	}
	if c.BatchSize == 0 {
		c.BatchSize = DefaultBatchSize
	}
}

// Validate checks that required values are present and ranges make sense.
// The Gemini API key is deliberately not required here: a missing key keeps
// the service up and surfaces as a retriable 503 on generation attempts.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("config error: DATABASE_URL is required")
	}
	if c.SupabaseJWTSecret == "" {
		return fmt.Errorf("config error: SUPABASE_JWT_SECRET is required")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config error: port %d out of range", c.Port)
	}
	if c.PollIntervalSeconds < 1 {
		return fmt.Errorf("config error: poll interval must be positive")
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("config error: batch size must be positive")
	}
	return nil
}

// PollInterval returns the worker poll interval as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}
