// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// Valid reports whether the role is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// =============================================================================
// USAGE TYPE
// =============================================================================

// Usage holds the token counts and latency reported by the model API for one
// assistant turn. A nil Usage on a message means the call failed or usage was
// unavailable; such messages contribute nothing to cost accounting.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`

	// ResponseTime is the wall-clock duration of the API call in seconds.
	ResponseTime float64 `json:"response_time"`
}

// IsZero reports whether the usage record carries no information.
func (u *Usage) IsZero() bool {
	if u == nil {
		return true
	}
	return u.PromptTokens == 0 && u.CompletionTokens == 0 &&
		u.TotalTokens == 0 && u.ResponseTime == 0
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a conversation. Messages are
// immutable once appended to a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`

	// Usage is set only on assistant messages whose API call succeeded.
	Usage *Usage `json:"usage,omitempty"`
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// NewAssistantMessage creates a new assistant message with optional usage.
func NewAssistantMessage(content string, usage *Usage) Message {
	return Message{Role: RoleAssistant, Content: content, Usage: usage}
}

// HasUsage reports whether the message carries a non-empty usage record.
func (m Message) HasUsage() bool {
	return !m.Usage.IsZero()
}

// Preview returns a truncated preview of the message content.
// Uses rune-based truncation to handle Unicode correctly.
func (m Message) Preview(maxLen int) string {
	runes := []rune(m.Content)
	if len(runes) <= maxLen {
		return m.Content
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
