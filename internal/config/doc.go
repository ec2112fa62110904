// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads the TOML configuration file from ~/.pollen,
// applies POLLEN_* environment overrides, and validates the result.
// Runtime settings that users change from inside the app (API key, theme)
// live in the storage package instead; this file covers what is decided
// before the program starts.
package config
