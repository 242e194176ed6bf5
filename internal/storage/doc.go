// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the on-disk conversation store for chatledger.
//
// One JSON record per conversation, addressed by its integer id, plus a
// singleton current-pointer record:
//
//	<data_dir>/conversations/<id>.json
//	<data_dir>/current.json
//
// # Key Types
//
//   - Store: CRUD over conversation records and the current pointer
//   - Meta: Lightweight projection for listing
//   - DecodeError: A record that exists but cannot be parsed
//
// All record writes go through an atomic temp-write-then-rename, so a crash
// never leaves a half-written record. The store assumes a single writer; it
// performs no file locking.
package storage
