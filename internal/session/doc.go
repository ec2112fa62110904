// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session runs one user turn end to end: compose the user
// message, call the completion endpoint, and apply the outcome to the
// chat store and persistence. All network and parsing failures stop
// here; the rest of the app only ever sees a classified Outcome.
package session
