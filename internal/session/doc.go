// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session manages the conversation lifecycle and the current pointer.
//
// The Manager is the only component that mutates conversation state. It owns
// the in-memory snapshot of the active conversation and the persisted
// current-pointer record, and it enforces two invariants:
//
//   - Ids are allocated as max(existing) + 1 and never reused, even after
//     deletions.
//   - The current pointer always resolves to an existing conversation once
//     Bootstrap has run; missing targets are recreated, never surfaced.
package session
