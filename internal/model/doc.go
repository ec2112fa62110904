// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model defines the chat domain types: chats, messages, and the
// string-or-parts message content union used on the wire and on disk.
package model
