// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading for chatledger.
//
// Configuration comes from ~/.chatledger/config.toml with built-in defaults
// and environment variable overrides. The OpenAI API key is read from the
// environment only and never written to the config file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/morganforge/chatledger/internal/pricing"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete chatledger configuration.
type Config struct {
	// DataDir is the root of the conversation store (default: ~/.chatledger).
	DataDir string `toml:"data_dir"`

	// DefaultModel is the model used for new sessions.
	DefaultModel string `toml:"default_model"`

	// HistoryWindow is how many recent messages are sent as context.
	HistoryWindow int `toml:"history_window"`

	// MaxResponseTokens caps the completion length per turn.
	MaxResponseTokens int `toml:"max_response_tokens"`

	// Temperature is the sampling temperature.
	Temperature float64 `toml:"temperature"`

	// FallbackUSDPLN is the exchange rate used when the NBP lookup fails.
	FallbackUSDPLN float64 `toml:"fallback_usd_pln"`

	// RateCacheTTL is how long a fetched exchange rate stays valid,
	// as a Go duration string (default: "1h").
	RateCacheTTL string `toml:"rate_cache_ttl"`

	// Pricing holds per-model price overrides, USD per 1M tokens.
	Pricing map[string]PricingEntry `toml:"pricing"`

	// APIKey is the OpenAI credential, from OPENAI_API_KEY only.
	APIKey string `toml:"-"`
}

// PricingEntry is a per-model price override in USD per 1M tokens.
type PricingEntry struct {
	Description   string  `toml:"description"`
	InputPerMTok  float64 `toml:"input_per_mtok"`
	OutputPerMTok float64 `toml:"output_per_mtok"`
}

// ErrMissingAPIKey is the single fatal startup precondition.
var ErrMissingAPIKey = errors.New("OPENAI_API_KEY is not set")

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DefaultModel:      "gpt-5-nano",
		HistoryWindow:     20,
		MaxResponseTokens: 1000,
		Temperature:       1.0,
		FallbackUSDPLN:    3.6,
		RateCacheTTL:      "1h",
	}
}

// ConfigDir returns the chatledger configuration directory (~/.chatledger).
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".chatledger"), nil
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the configuration file at path, falling back to defaults when
// the file does not exist, then applies environment overrides. An empty path
// uses ~/.chatledger/config.toml.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		dir, err := ConfigDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "config.toml")
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if cfg.DataDir == "" {
		dir, err := ConfigDir()
		if err != nil {
			return nil, err
		}
		cfg.DataDir = dir
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnvOverrides applies the supported environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CHATLEDGER_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("CHATLEDGER_MODEL"); v != "" {
		cfg.DefaultModel = v
	}
	cfg.APIKey = os.Getenv("OPENAI_API_KEY")
}

// Validate checks field ranges. It does not require the API key; callers
// that are about to talk to the model check RequireAPIKey separately so that
// offline commands (list, export) still work.
func (c *Config) Validate() error {
	if c.HistoryWindow <= 0 {
		return fmt.Errorf("history_window must be positive, got %d", c.HistoryWindow)
	}
	if c.MaxResponseTokens <= 0 {
		return fmt.Errorf("max_response_tokens must be positive, got %d", c.MaxResponseTokens)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be in [0, 2], got %g", c.Temperature)
	}
	if c.FallbackUSDPLN <= 0 {
		return fmt.Errorf("fallback_usd_pln must be positive, got %g", c.FallbackUSDPLN)
	}
	if _, err := time.ParseDuration(c.RateCacheTTL); err != nil {
		return fmt.Errorf("rate_cache_ttl: %w", err)
	}
	return nil
}

// RequireAPIKey returns ErrMissingAPIKey when no credential is configured.
func (c *Config) RequireAPIKey() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// RateTTL returns the parsed rate cache TTL. Validate guarantees it parses.
func (c *Config) RateTTL() time.Duration {
	d, err := time.ParseDuration(c.RateCacheTTL)
	if err != nil {
		return time.Hour
	}
	return d
}

// =============================================================================
// PRICING
// =============================================================================

// PricingTable merges the built-in price table with the configured
// overrides. Override prices are given per 1M tokens and converted here.
func (c *Config) PricingTable() pricing.Table {
	table := pricing.Default()
	for name, entry := range c.Pricing {
		table[name] = pricing.ModelPricing{
			Description:    entry.Description,
			InputPerToken:  entry.InputPerMTok / 1_000_000,
			OutputPerToken: entry.OutputPerMTok / 1_000_000,
		}
	}
	return table
}
