package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Default pacing constants. These are empirical values tuned against the
// public mainnet endpoint's undocumented rate limits.
const (
	DefaultRPCURL     = "https://api.mainnet-beta.solana.com"
	DefaultPageLimit  = 100
	DefaultBatchSize  = 5
	DefaultPageDelay  = 100 * time.Millisecond
	DefaultFetchDelay = 100 * time.Millisecond
	DefaultBatchDelay = 500 * time.Millisecond
)

// Config holds all application configuration loaded from environment variables.
// All fields are validated at startup to ensure fail-fast behavior.
type Config struct {
	// RPC configuration
	RPCURL string

	// Output configuration
	OutputDir string
	LogLevel  string

	// Pagination and fetch pacing
	PageLimit  int
	BatchSize  int
	PageDelay  time.Duration
	FetchDelay time.Duration
	BatchDelay time.Duration
}

// Load reads configuration from environment variables and validates all fields.
// Returns an error if any value is present but unparsable or out of range.
func Load() (*Config, error) {
	cfg := &Config{}
	var errs []error

	cfg.RPCURL = getEnvOrDefault("SOLANA_RPC_URL", DefaultRPCURL)
	cfg.OutputDir = getEnvOrDefault("OUTPUT_DIR", ".")
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", "info")

	pageLimit, err := parseInt("PAGE_LIMIT", DefaultPageLimit)
	if err != nil {
		errs = append(errs, err)
	} else {
		cfg.PageLimit = pageLimit
	}

	batchSize, err := parseInt("BATCH_SIZE", DefaultBatchSize)
	if err != nil {
		errs = append(errs, err)
	} else {
		cfg.BatchSize = batchSize
	}

	pageDelay, err := parseDuration("PAGE_DELAY", DefaultPageDelay.String())
	if err != nil {
		errs = append(errs, err)
	} else {
		cfg.PageDelay = pageDelay
	}

	fetchDelay, err := parseDuration("FETCH_DELAY", DefaultFetchDelay.String())
	if err != nil {
		errs = append(errs, err)
	} else {
		cfg.FetchDelay = fetchDelay
	}

	batchDelay, err := parseDuration("BATCH_DELAY", DefaultBatchDelay.String())
	if err != nil {
		errs = append(errs, err)
	} else {
		cfg.BatchDelay = batchDelay
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %v", errs)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// MustLoad is like Load but panics if configuration is invalid.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// Validate checks if the configuration is valid.
// This is useful for testing configuration without loading from env.
func (c *Config) Validate() error {
	var errs []error

	if c.RPCURL == "" {
		errs = append(errs, fmt.Errorf("RPCURL is required"))
	}

	if c.OutputDir == "" {
		errs = append(errs, fmt.Errorf("OutputDir is required"))
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("LogLevel must be one of debug, info, warn, error"))
	}

	if c.PageLimit < 1 || c.PageLimit > 1000 {
		errs = append(errs, fmt.Errorf("PageLimit must be between 1 and 1000"))
	}

	if c.BatchSize < 1 {
		errs = append(errs, fmt.Errorf("BatchSize must be at least 1"))
	}

	if c.PageDelay < 0 {
		errs = append(errs, fmt.Errorf("PageDelay cannot be negative"))
	}

	if c.FetchDelay < 0 {
		errs = append(errs, fmt.Errorf("FetchDelay cannot be negative"))
	}

	if c.BatchDelay < 0 {
		errs = append(errs, fmt.Errorf("BatchDelay cannot be negative"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errs)
	}

	return nil
}

// getEnvOrDefault returns the environment variable value or a default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseDuration parses a duration from an environment variable or uses a default.
func parseDuration(key, defaultValue string) (time.Duration, error) {
	value := getEnvOrDefault(key, defaultValue)
	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", key, value, err)
	}
	return duration, nil
}

// parseInt parses an integer from an environment variable or uses a default.
func parseInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q: %w", key, value, err)
	}
	return result, nil
}
