// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api builds chat-completions request payloads and performs the
// single network call of the application. Failures come back as typed
// errors; classification helpers (IsTimeout, IsBlocked) let the turn
// orchestrator route them without string matching in control flow.
package api
