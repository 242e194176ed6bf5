// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the chatledger command-line interface: the cobra
// command tree, the interactive liner-based chat session and the
// non-interactive list/export commands.
package cli
