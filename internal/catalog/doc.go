// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package catalog is the static model capability table: which model ids
// accept image input, which support extended thinking, and which take a
// reasoning-effort parameter. Membership is closed-world; unknown ids have
// no special capability.
package catalog
