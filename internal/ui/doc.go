// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui is the Bubble Tea interface: thread sidebar, chat viewport
// with markdown rendering, input area, model picker, settings, and the
// error surfaces. All state mutation happens in the update loop; network
// work runs in commands and comes back as messages.
package ui
