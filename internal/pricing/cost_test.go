// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/morganforge/chatledger/internal/model"
)

func TestCostAndTime_KnownValues(t *testing.T) {
	p := Default()["gpt-5-nano"] // $0.05/M input, $0.40/M output

	messages := []model.Message{
		model.NewAssistantMessage("a", &model.Usage{PromptTokens: 100, CompletionTokens: 50, ResponseTime: 1.5}),
		model.NewAssistantMessage("b", &model.Usage{PromptTokens: 10, CompletionTokens: 5, ResponseTime: 0.5}),
	}

	cost, seconds := CostAndTime(messages, p)

	want := (110*0.05 + 55*0.40) / 1_000_000
	assert.InDelta(t, want, cost, 1e-12)
	assert.InDelta(t, 2.0, seconds, 1e-12)
}

func TestCostAndTime_OrderIndependent(t *testing.T) {
	p := Default()["gpt-5"]

	messages := []model.Message{
		model.NewUserMessage("q1"),
		model.NewAssistantMessage("a1", &model.Usage{PromptTokens: 321, CompletionTokens: 123, ResponseTime: 2.5}),
		model.NewUserMessage("q2"),
		model.NewAssistantMessage("a2", &model.Usage{PromptTokens: 55, CompletionTokens: 200, ResponseTime: 0.7}),
	}
	reversed := make([]model.Message, len(messages))
	for i, msg := range messages {
		reversed[len(messages)-1-i] = msg
	}

	cost1, time1 := CostAndTime(messages, p)
	cost2, time2 := CostAndTime(reversed, p)

	assert.Equal(t, cost1, cost2)
	assert.Equal(t, time1, time2)
}

func TestCostAndTime_EmptyUsageContributesZero(t *testing.T) {
	p := Default()["gpt-5-mini"]

	withFailures := []model.Message{
		model.NewUserMessage("q"),
		model.NewAssistantMessage("failed turn", nil),
		model.NewAssistantMessage("empty usage", &model.Usage{}),
		model.NewAssistantMessage("real", &model.Usage{PromptTokens: 10, CompletionTokens: 10, ResponseTime: 1}),
	}
	onlyReal := withFailures[3:]

	cost1, time1 := CostAndTime(withFailures, p)
	cost2, time2 := CostAndTime(onlyReal, p)

	assert.Equal(t, cost2, cost1)
	assert.Equal(t, time2, time1)
}

func TestCostAndTime_NoMessages(t *testing.T) {
	cost, seconds := CostAndTime(nil, Default()["gpt-5"])
	assert.Zero(t, cost)
	assert.Zero(t, seconds)
}

func TestTotalTokens(t *testing.T) {
	messages := []model.Message{
		model.NewUserMessage("q"),
		model.NewAssistantMessage("a", &model.Usage{TotalTokens: 150}),
		model.NewAssistantMessage("b", nil),
		model.NewAssistantMessage("c", &model.Usage{TotalTokens: 15}),
	}
	assert.Equal(t, 165, TotalTokens(messages))
}

func TestDefaultTable(t *testing.T) {
	table := Default()

	assert.Equal(t, []string{"gpt-5", "gpt-5-mini", "gpt-5-nano"}, table.Models())
	assert.True(t, table.Has("gpt-5-nano"))
	assert.False(t, table.Has("gpt-4"))

	nano := table["gpt-5-nano"]
	assert.InDelta(t, 0.05/1_000_000, nano.InputPerToken, 1e-15)
	assert.InDelta(t, 0.40/1_000_000, nano.OutputPerToken, 1e-15)
}
