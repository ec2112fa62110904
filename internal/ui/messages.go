// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"github.com/jeranaias/pollen-tui/internal/config"
	"github.com/jeranaias/pollen-tui/internal/session"
)

// TurnOutcomeMsg delivers a finished network turn back to the update
// loop.
type TurnOutcomeMsg struct {
	Outcome session.Outcome
}

// ConfigReloadedMsg arrives when the config file watcher picked up a
// valid change.
type ConfigReloadedMsg struct {
	Config *config.Config
}

// CopyDoneMsg reports a clipboard write.
type CopyDoneMsg struct {
	Err error
}

// ExportDoneMsg reports a chat export.
type ExportDoneMsg struct {
	Path string
	Err  error
}

// statusClearMsg clears the transient status line.
type statusClearMsg struct{ seq int }
