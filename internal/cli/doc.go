// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements plain mode: a line-oriented REPL over the same
// turn orchestrator as the TUI, for terminals or scripts where the full
// interface is unwanted.
package cli
