// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package pricing holds the per-model price table and cost accounting.
package pricing

import "sort"

// =============================================================================
// PRICE TABLE
// =============================================================================

// ModelPricing holds the price of a single token, in USD, for one model.
type ModelPricing struct {
	// Description is a short human-readable summary of what the model is
	// good for, shown in the model picker.
	Description string

	// InputPerToken is the USD cost of one prompt token.
	InputPerToken float64

	// OutputPerToken is the USD cost of one completion token.
	OutputPerToken float64
}

// Table maps model names to their pricing.
type Table map[string]ModelPricing

// perMillion converts a USD-per-1M-tokens price to a per-token price.
const perMillion = 1.0 / 1_000_000

// Default returns the built-in price table.
func Default() Table {
	return Table{
		"gpt-5-nano": {
			Description:    "Classification, summaries. Handles images and text, no audio.",
			InputPerToken:  0.05 * perMillion,
			OutputPerToken: 0.40 * perMillion,
		},
		"gpt-5-mini": {
			Description:    "Workflows, quick tasks. Handles images and text, no audio.",
			InputPerToken:  0.25 * perMillion,
			OutputPerToken: 2.00 * perMillion,
		},
		"gpt-5": {
			Description:    "Programming, complex tasks. Handles images and text, no audio.",
			InputPerToken:  1.25 * perMillion,
			OutputPerToken: 10.00 * perMillion,
		},
	}
}

// Models returns the model names in the table, sorted for stable display.
func (t Table) Models() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether the table prices the given model.
func (t Table) Has(model string) bool {
	_, ok := t[model]
	return ok
}
