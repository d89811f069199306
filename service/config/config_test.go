package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cleanupEnv()

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "https://api.mainnet-beta.solana.com", cfg.RPCURL)
	assert.Equal(t, ".", cfg.OutputDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 100, cfg.PageLimit)
	assert.Equal(t, 5, cfg.BatchSize)
	assert.Equal(t, 100*time.Millisecond, cfg.PageDelay)
	assert.Equal(t, 100*time.Millisecond, cfg.FetchDelay)
	assert.Equal(t, 500*time.Millisecond, cfg.BatchDelay)
}

func TestLoad_CustomValues(t *testing.T) {
	os.Setenv("SOLANA_RPC_URL", "https://mainnet.helius-rpc.com/?api-key=test")
	os.Setenv("OUTPUT_DIR", "/tmp/reports")
	os.Setenv("LOG_LEVEL", "debug")
	os.Setenv("PAGE_LIMIT", "50")
	os.Setenv("BATCH_SIZE", "10")
	os.Setenv("PAGE_DELAY", "250ms")
	os.Setenv("FETCH_DELAY", "50ms")
	os.Setenv("BATCH_DELAY", "1s")
	defer cleanupEnv()

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "https://mainnet.helius-rpc.com/?api-key=test", cfg.RPCURL)
	assert.Equal(t, "/tmp/reports", cfg.OutputDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 50, cfg.PageLimit)
	assert.Equal(t, 10, cfg.BatchSize)
	assert.Equal(t, 250*time.Millisecond, cfg.PageDelay)
	assert.Equal(t, 50*time.Millisecond, cfg.FetchDelay)
	assert.Equal(t, time.Second, cfg.BatchDelay)
}

func TestLoad_InvalidPageLimit(t *testing.T) {
	os.Setenv("PAGE_LIMIT", "not-a-number")
	defer cleanupEnv()

	cfg, err := Load()
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "invalid integer")
}

func TestLoad_InvalidDelay(t *testing.T) {
	os.Setenv("PAGE_DELAY", "soon")
	defer cleanupEnv()

	cfg, err := Load()
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "invalid duration")
}

func TestLoad_PageLimitOutOfRange(t *testing.T) {
	os.Setenv("PAGE_LIMIT", "0")
	defer cleanupEnv()

	cfg, err := Load()
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "PageLimit must be between 1 and 1000")
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := &Config{
		RPCURL:     "https://api.mainnet-beta.solana.com",
		OutputDir:  ".",
		LogLevel:   "info",
		PageLimit:  100,
		BatchSize:  5,
		PageDelay:  100 * time.Millisecond,
		FetchDelay: 100 * time.Millisecond,
		BatchDelay: 500 * time.Millisecond,
	}

	err := cfg.Validate()
	assert.NoError(t, err)
}

func TestValidate_MissingRPCURL(t *testing.T) {
	cfg := &Config{
		OutputDir: ".",
		LogLevel:  "info",
		PageLimit: 100,
		BatchSize: 5,
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RPCURL is required")
}

func TestValidate_BadLogLevel(t *testing.T) {
	cfg := &Config{
		RPCURL:    "https://api.mainnet-beta.solana.com",
		OutputDir: ".",
		LogLevel:  "verbose",
		PageLimit: 100,
		BatchSize: 5,
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LogLevel must be one of")
}

func TestValidate_NegativeDelay(t *testing.T) {
	cfg := &Config{
		RPCURL:    "https://api.mainnet-beta.solana.com",
		OutputDir: ".",
		LogLevel:  "info",
		PageLimit: 100,
		BatchSize: 5,
		PageDelay: -time.Second,
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PageDelay cannot be negative")
}

func TestMustLoad_Panics(t *testing.T) {
	os.Setenv("BATCH_SIZE", "five")
	defer cleanupEnv()

	assert.Panics(t, func() {
		MustLoad()
	})
}

func TestMustLoad_Success(t *testing.T) {
	cleanupEnv()

	assert.NotPanics(t, func() {
		cfg := MustLoad()
		assert.NotNil(t, cfg)
	})
}

// cleanupEnv clears all environment variables used in tests
func cleanupEnv() {
	os.Unsetenv("SOLANA_RPC_URL")
	os.Unsetenv("OUTPUT_DIR")
	os.Unsetenv("LOG_LEVEL")
	os.Unsetenv("PAGE_LIMIT")
	os.Unsetenv("BATCH_SIZE")
	os.Unsetenv("PAGE_DELAY")
	os.Unsetenv("FETCH_DELAY")
	os.Unsetenv("BATCH_DELAY")
}
