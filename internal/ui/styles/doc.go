// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles is the visual styling system for the pollen TUI. All
// colors are Lip Gloss adaptive pairs; the active theme decides whether
// the dark or light variant resolves.
package styles
