package config

import (
	"os"
	"strconv"
	"strings"
)

// Global configuration instance
var global *Config

// Config is the global configuration, loaded from the environment (.env).
// Only truly global settings live here; per-run parameters travel with the
// backtest request.
type Config struct {
	// Server
	APIServerPort int
	LogLevel      string

	// Default execution-cost rates, used when a leveraged request leaves
	// them unset. Spot runs ignore them entirely.
	MakerFeeRate float64
	TakerFeeRate float64
	SlippageRate float64
}

// Init loads the global configuration from environment variables.
func Init() {
	cfg := &Config{
		APIServerPort: 8080,
		LogLevel:      "info",
		MakerFeeRate:  0.0002,
		TakerFeeRate:  0.0005,
		SlippageRate:  0.0005,
	}

	if v := os.Getenv("API_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			cfg.APIServerPort = port
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(v))
	}
	if v := envFloat("MAKER_FEE_RATE"); v >= 0 {
		cfg.MakerFeeRate = v
	}
	if v := envFloat("TAKER_FEE_RATE"); v >= 0 {
		cfg.TakerFeeRate = v
	}
	if v := envFloat("SLIPPAGE_RATE"); v >= 0 {
		cfg.SlippageRate = v
	}

	global = cfg
}

// Get returns the global configuration.
func Get() *Config {
	if global == nil {
		Init()
	}
	return global
}

// envFloat returns the parsed value or -1 when unset/invalid.
func envFloat(key string) float64 {
	v := os.Getenv(key)
	if v == "" {
		return -1
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || f < 0 {
		return -1
	}
	return f
}
