// Package config loads the service's environment-driven configuration
// once at startup, validates it eagerly, and exposes it as an
// immutable value passed explicitly into every component that needs
// it (never read back from the environment ad hoc).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment selects production vs development behaviour: log
// encoding, CORS strictness, and error-detail sanitisation.
type Environment string

const (
	Production  Environment = "production"
	Development Environment = "development"
)

// Config holds every environment-sourced setting from spec.md §6.
type Config struct {
	DBPath           string
	ManifestPath     string
	Port             int
	AllowedOrigins   []string
	Environment      Environment
	RateLimitMax     int
	RateLimitWindow  time.Duration
	DBPoolSize       int
	DBPoolOverflow   int
	CacheSize        int
	CacheTTL         time.Duration
	LLMConcurrency   int
	LLMEndpoint      string
	LLMUsername      string
	LLMPassword      string
	LLMCallBudget    int
	LLMTimeout       time.Duration
	ToolCallTimeout  time.Duration
}

// Load reads the process environment and returns a validated Config.
// Any fatal misconfiguration (missing manifest, missing credentials,
// wildcard CORS in production) is returned as an error rather than
// panicking; the caller (cmd/edgarqa) is responsible for exiting
// non-zero with a single-line structured error, per spec.md §7.
func Load() (*Config, error) {
	cfg := &Config{
		DBPath:          os.Getenv("DB_PATH"),
		ManifestPath:    os.Getenv("MCP_MANIFEST_PATH"),
		Port:            envInt("PORT", 8010),
		Environment:     Environment(envString("ENVIRONMENT", string(Development))),
		RateLimitMax:    envInt("RATE_LIMIT_MAX_REQUESTS", 100),
		RateLimitWindow: envDuration("RATE_LIMIT_WINDOW_SECONDS", 60*time.Second, true),
		DBPoolSize:      envInt("DB_POOL_SIZE", 10),
		DBPoolOverflow:  envInt("DB_POOL_MAX_OVERFLOW", 5),
		CacheSize:       envInt("CACHE_SIZE", 1000),
		CacheTTL:        envDuration("CACHE_TTL_SECONDS", 300*time.Second, true),
		LLMConcurrency:  envInt("LLM_CONCURRENCY_LIMIT", 10),
		LLMEndpoint:     os.Getenv("LLM_ENDPOINT_URL"),
		LLMCallBudget:   envInt("LLM_CALL_BUDGET", 6),
		LLMTimeout:      envDuration("LLM_TIMEOUT_SECONDS", 120*time.Second, true),
		ToolCallTimeout: envDuration("TOOL_CALL_TIMEOUT_SECONDS", 30*time.Second, true),
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}

	if cred := os.Getenv("LLM_CREDENTIAL"); cred != "" {
		user, pass, ok := strings.Cut(cred, ":")
		if !ok {
			return nil, fmt.Errorf("LLM_CREDENTIAL must be in username:password form")
		}
		cfg.LLMUsername, cfg.LLMPassword = user, pass
	}

	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH is required")
	}
	if c.ManifestPath == "" {
		return fmt.Errorf("MCP_MANIFEST_PATH is required")
	}
	if c.LLMUsername == "" || c.LLMPassword == "" {
		return fmt.Errorf("LLM_CREDENTIAL is required (username:password form)")
	}
	if c.LLMEndpoint == "" {
		return fmt.Errorf("LLM_ENDPOINT_URL is required")
	}
	if c.Environment != Production && c.Environment != Development {
		return fmt.Errorf("ENVIRONMENT must be %q or %q, got %q", Production, Development, c.Environment)
	}
	if c.Environment == Production {
		for _, o := range c.AllowedOrigins {
			if o == "*" {
				return fmt.Errorf("wildcard ALLOWED_ORIGINS is forbidden in production mode")
			}
		}
		if len(c.AllowedOrigins) == 0 {
			return fmt.Errorf("ALLOWED_ORIGINS must be set (fail-closed) in production mode")
		}
	}
	if c.DBPoolSize <= 0 {
		return fmt.Errorf("DB_POOL_SIZE must be positive")
	}
	return nil
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// envDuration reads an integer-seconds env var (per spec.md §6, these
// are named *_SECONDS) into a time.Duration.
func envDuration(key string, def time.Duration, seconds bool) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	if seconds {
		return time.Duration(n) * time.Second
	}
	return time.Duration(n)
}
