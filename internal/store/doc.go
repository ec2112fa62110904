// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store holds the in-memory chat list and the active-thread
// pointer. It is the single source of truth for rendering and for what
// gets persisted; it is only ever touched from the UI event loop, so it
// carries no locking.
package store
