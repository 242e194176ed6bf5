// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "strconv"

// DefaultPersonality is the system prompt used for every new conversation.
// Creating a new conversation always resets to this text, even when the
// previous conversation carried a customized personality.
const DefaultPersonality = `You are a helpful AI assistant that answers the user's questions in a way that is:
- Concise and easy to understand
- Substantive and accurate
- Friendly and professional
- Adapted to the context of the conversation

If you receive a document to analyze, examine it carefully and answer questions based on it.`

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation is a named, persisted chat session with its own personality
// prompt and message history. The ID is a positive integer allocated
// monotonically (max existing + 1) by the session manager.
type Conversation struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Personality string    `json:"chatbot_personality"`
	Messages    []Message `json:"messages"`
}

// NewConversation creates a conversation with the default name and
// personality for the given id.
func NewConversation(id int) *Conversation {
	return &Conversation{
		ID:          id,
		Name:        DefaultName(id),
		Personality: DefaultPersonality,
		Messages:    make([]Message, 0),
	}
}

// DefaultName returns the default display name for a conversation id.
func DefaultName(id int) string {
	return "Conversation " + strconv.Itoa(id)
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// Append adds a message to the end of the history.
func (c *Conversation) Append(msg Message) {
	c.Messages = append(c.Messages, msg)
}

// MessageCount returns the number of messages.
func (c *Conversation) MessageCount() int {
	return len(c.Messages)
}

// IsEmpty returns true if there are no messages.
func (c *Conversation) IsEmpty() bool {
	return len(c.Messages) == 0
}

// Window returns the most recent n messages in original order. It returns the
// full history when n is zero or negative, or when the history is shorter
// than n. The returned slice aliases the conversation's history.
func (c *Conversation) Window(n int) []Message {
	if n <= 0 || len(c.Messages) <= n {
		return c.Messages
	}
	return c.Messages[len(c.Messages)-n:]
}

// LastUserMessage returns the most recent user message, or nil.
func (c *Conversation) LastUserMessage() *Message {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role == RoleUser {
			return &c.Messages[i]
		}
	}
	return nil
}

// Clone creates a deep copy of the conversation.
func (c *Conversation) Clone() *Conversation {
	clone := &Conversation{
		ID:          c.ID,
		Name:        c.Name,
		Personality: c.Personality,
		Messages:    make([]Message, len(c.Messages)),
	}
	for i, msg := range c.Messages {
		if msg.Usage != nil {
			usage := *msg.Usage
			msg.Usage = &usage
		}
		clone.Messages[i] = msg
	}
	return clone
}
