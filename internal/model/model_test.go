// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConversation(t *testing.T) {
	conv := NewConversation(7)

	assert.Equal(t, 7, conv.ID)
	assert.Equal(t, "Conversation 7", conv.Name)
	assert.Equal(t, DefaultPersonality, conv.Personality)
	assert.Empty(t, conv.Messages)
	assert.True(t, conv.IsEmpty())
}

func TestConversation_Append(t *testing.T) {
	conv := NewConversation(1)
	conv.Append(NewUserMessage("hello"))
	conv.Append(NewAssistantMessage("hi", &Usage{TotalTokens: 3}))

	assert.Equal(t, 2, conv.MessageCount())
	assert.Equal(t, RoleUser, conv.Messages[0].Role)
	assert.Equal(t, RoleAssistant, conv.Messages[1].Role)
}

func TestConversation_Window(t *testing.T) {
	conv := NewConversation(1)
	for i := 0; i < 5; i++ {
		conv.Append(NewUserMessage("msg"))
	}

	assert.Len(t, conv.Window(3), 3)
	assert.Len(t, conv.Window(10), 5)
	assert.Len(t, conv.Window(0), 5)
	assert.Len(t, conv.Window(-1), 5)

	// Window keeps the most recent messages in original order.
	conv2 := NewConversation(2)
	conv2.Append(NewUserMessage("first"))
	conv2.Append(NewUserMessage("second"))
	conv2.Append(NewUserMessage("third"))
	window := conv2.Window(2)
	assert.Equal(t, "second", window[0].Content)
	assert.Equal(t, "third", window[1].Content)
}

func TestConversation_Clone(t *testing.T) {
	conv := NewConversation(1)
	conv.Append(NewAssistantMessage("hi", &Usage{PromptTokens: 10}))

	clone := conv.Clone()
	clone.Name = "changed"
	clone.Messages[0].Usage.PromptTokens = 99

	assert.Equal(t, "Conversation 1", conv.Name)
	assert.Equal(t, 10, conv.Messages[0].Usage.PromptTokens)
}

func TestUsage_IsZero(t *testing.T) {
	var nilUsage *Usage
	assert.True(t, nilUsage.IsZero())
	assert.True(t, (&Usage{}).IsZero())
	assert.False(t, (&Usage{PromptTokens: 1}).IsZero())
	assert.False(t, (&Usage{ResponseTime: 0.5}).IsZero())
}

func TestMessage_HasUsage(t *testing.T) {
	assert.False(t, NewUserMessage("hi").HasUsage())
	assert.False(t, NewAssistantMessage("hi", nil).HasUsage())
	assert.False(t, NewAssistantMessage("hi", &Usage{}).HasUsage())
	assert.True(t, NewAssistantMessage("hi", &Usage{TotalTokens: 5}).HasUsage())
}

func TestMessage_Preview(t *testing.T) {
	msg := NewUserMessage("hello world")
	assert.Equal(t, "hello world", msg.Preview(20))
	assert.Equal(t, "hello...", msg.Preview(8))

	// Rune-safe truncation.
	unicode := NewUserMessage("żółć żółć żółć")
	assert.Equal(t, "żółć ...", unicode.Preview(8))
}

func TestMessage_JSONRoundTrip(t *testing.T) {
	msg := NewAssistantMessage("answer", &Usage{
		PromptTokens:     100,
		CompletionTokens: 50,
		TotalTokens:      150,
		ResponseTime:     1.25,
	})

	data, err := json.Marshal(msg)
	require.NoError(t, err)

	var decoded Message
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, msg, decoded)
}

func TestMessage_JSONOmitsEmptyUsage(t *testing.T) {
	data, err := json.Marshal(NewUserMessage("hi"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "usage")
}
