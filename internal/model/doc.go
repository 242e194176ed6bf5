// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// # Key Types
//
//   - Conversation: A persisted chat session with personality and history
//   - Message: A single system/user/assistant turn
//   - Usage: Token counts and latency for an assistant turn
//
// Conversations are identified by positive integer ids. Id allocation and
// the current-conversation pointer are owned by the session package; this
// package holds only the plain data shapes and small helpers over them.
package model
