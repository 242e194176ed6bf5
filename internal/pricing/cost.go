// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package pricing

import "github.com/morganforge/chatledger/internal/model"

// =============================================================================
// COST ACCOUNTING
// =============================================================================

// CostAndTime folds the usage records of a message sequence into the total
// USD cost and the total response time in seconds. Messages without usage
// contribute zero to both. The fold is order-independent: permuting the
// messages yields identical totals.
func CostAndTime(messages []model.Message, p ModelPricing) (cost float64, seconds float64) {
	for _, msg := range messages {
		if !msg.HasUsage() {
			continue
		}
		cost += float64(msg.Usage.PromptTokens)*p.InputPerToken +
			float64(msg.Usage.CompletionTokens)*p.OutputPerToken
		seconds += msg.Usage.ResponseTime
	}
	return cost, seconds
}

// TotalTokens sums the total_tokens of every message carrying usage.
func TotalTokens(messages []model.Message) int {
	total := 0
	for _, msg := range messages {
		if msg.HasUsage() {
			total += msg.Usage.TotalTokens
		}
	}
	return total
}
