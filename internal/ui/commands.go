// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/pollen-tui/internal/export"
	"github.com/jeranaias/pollen-tui/internal/model"
	"github.com/jeranaias/pollen-tui/internal/session"
)

// awaitTurnCmd runs the blocking network step of a turn. The orchestrator
// guarantees Await never touches shared state, so this is safe off-loop.
func awaitTurnCmd(orch *session.Orchestrator, turn *session.Turn) tea.Cmd {
	return func() tea.Msg {
		return TurnOutcomeMsg{Outcome: orch.Await(context.Background(), turn)}
	}
}

// copyCmd writes text to the system clipboard.
func copyCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return CopyDoneMsg{Err: clipboard.WriteAll(text)}
	}
}

// exportCmd writes the chat to a file in the current directory. The chat
// is cloned by the caller; this goroutine must not share the live one.
func exportCmd(chat *model.Chat, format export.Format) tea.Cmd {
	return func() tea.Msg {
		path, err := export.ToFile(chat, format, ".")
		return ExportDoneMsg{Path: path, Err: err}
	}
}

// clearStatusCmd clears the status line after a delay unless a newer
// status replaced it (tracked by seq).
func clearStatusCmd(seq int) tea.Cmd {
	return tea.Tick(4*time.Second, func(time.Time) tea.Msg {
		return statusClearMsg{seq: seq}
	})
}
