// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package exchange looks up the USD/PLN rate from the NBP public API.
package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// FallbackRate is the USD/PLN rate used when the NBP lookup fails.
const FallbackRate = 3.6

// ClientConfig holds configuration options for the NBP client.
type ClientConfig struct {
	// BaseURL is the NBP exchange-rates endpoint.
	BaseURL string

	// Timeout for the HTTP request (default: 5s).
	Timeout time.Duration

	// CacheTTL is how long a fetched rate stays valid (default: 1h).
	CacheTTL time.Duration

	// Fallback is the rate returned when the lookup fails (default: 3.6).
	Fallback float64
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:  "https://api.nbp.pl/api/exchangerates/rates/A/USD/?format=json",
		Timeout:  5 * time.Second,
		CacheTTL: time.Hour,
		Fallback: FallbackRate,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Rate is an exchange rate with the date it was published for. Date is empty
// when the fallback rate is in effect.
type Rate struct {
	Value float64
	Date  string
}

// Client fetches the USD/PLN mid rate with a bounded-lifetime cache. A failed
// lookup degrades to the fallback rate and is never surfaced as an error.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client

	mu        sync.Mutex
	cached    Rate
	fetchedAt time.Time
}

// NewClient creates an NBP client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates an NBP client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultConfig().BaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = 5 * time.Second
	}
	if config.CacheTTL == 0 {
		config.CacheTTL = time.Hour
	}
	if config.Fallback == 0 {
		config.Fallback = FallbackRate
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}
}

// USDPLN returns the current USD/PLN rate. Within the cache TTL the cached
// rate is returned without a network call. On lookup failure the fallback
// rate is returned with an empty date.
func (c *Client) USDPLN(ctx context.Context) Rate {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.fetchedAt.IsZero() && time.Since(c.fetchedAt) < c.config.CacheTTL {
		return c.cached
	}

	rate, err := c.fetch(ctx)
	if err != nil {
		log.Warn().Err(err).Float64("fallback", c.config.Fallback).Msg("USD/PLN lookup failed, using fallback rate")
		// The fallback is not cached: the next call retries the lookup.
		return Rate{Value: c.config.Fallback}
	}

	c.cached = rate
	c.fetchedAt = time.Now()
	log.Debug().Float64("rate", rate.Value).Str("date", rate.Date).Msg("fetched USD/PLN rate")
	return rate
}

// =============================================================================
// FETCH
// =============================================================================

// nbpResponse mirrors the relevant part of the NBP table-A payload.
type nbpResponse struct {
	Rates []struct {
		Mid           float64 `json:"mid"`
		EffectiveDate string  `json:"effectiveDate"`
	} `json:"rates"`
}

func (c *Client) fetch(ctx context.Context) (Rate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL, nil)
	if err != nil {
		return Rate{}, fmt.Errorf("building NBP request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Rate{}, fmt.Errorf("calling NBP: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Rate{}, fmt.Errorf("NBP returned status %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Rate{}, fmt.Errorf("reading NBP response: %w", err)
	}

	var payload nbpResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return Rate{}, fmt.Errorf("parsing NBP response: %w", err)
	}
	if len(payload.Rates) == 0 || payload.Rates[0].Mid <= 0 {
		return Rate{}, errors.New("unexpected NBP response structure")
	}

	return Rate{
		Value: payload.Rates[0].Mid,
		Date:  payload.Rates[0].EffectiveDate,
	}, nil
}
