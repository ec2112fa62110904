// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists application state as whole-record JSON values
// in a local SQLite database: one record for the chat list, one for
// settings. It serializes and stores; business rules live upstream.
package storage
