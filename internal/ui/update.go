// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/pollen-tui/internal/api"
	"github.com/jeranaias/pollen-tui/internal/catalog"
	"github.com/jeranaias/pollen-tui/internal/config"
	"github.com/jeranaias/pollen-tui/internal/export"
	"github.com/jeranaias/pollen-tui/internal/session"
	"github.com/jeranaias/pollen-tui/internal/storage"
	"github.com/jeranaias/pollen-tui/internal/util"
)

// Update is the single mutation point for all application state.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return a, a.handleResize(msg)

	case tea.KeyMsg:
		return a.handleKey(msg)

	case TurnOutcomeMsg:
		return a, a.handleOutcome(msg.Outcome)

	case ConfigReloadedMsg:
		return a, a.handleConfigReload(msg.Config)

	case CopyDoneMsg:
		if msg.Err != nil {
			return a, a.setStatus("Copy failed: " + msg.Err.Error())
		}
		return a, a.setStatus("Copied to clipboard")

	case ExportDoneMsg:
		if msg.Err != nil {
			return a, a.setStatus("Export failed: " + msg.Err.Error())
		}
		return a, a.setStatus("Exported to " + msg.Path)

	case statusClearMsg:
		if msg.seq == a.statusSeq {
			a.statusMsg = ""
		}
		return a, nil

	case spinner.TickMsg:
		if a.awaitingChat == "" {
			return a, nil
		}
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		a.refreshViewport(false)
		return a, cmd
	}

	return a, a.updateFocused(msg)
}

func (a *App) handleResize(msg tea.WindowSizeMsg) tea.Cmd {
	a.width = msg.Width
	a.height = msg.Height

	chatHeight := a.height - a.headerHeight() - a.inputHeight() - a.statusHeight()
	if chatHeight < 3 {
		chatHeight = 3
	}

	if !a.ready {
		a.viewport = viewport.New(a.chatWidth(), chatHeight)
		a.ready = true
	} else {
		a.viewport.Width = a.chatWidth()
		a.viewport.Height = chatHeight
	}
	a.textarea.SetWidth(a.width - 4)
	a.rebuildRenderer()
	a.refreshViewport(false)
	return nil
}

// handleKey routes keys by overlay first, then focus.
func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, a.keys.Quit) {
		return a, tea.Quit
	}

	switch a.overlay {
	case overlayPicker:
		return a, a.updatePicker(msg)
	case overlaySettings:
		return a, a.updateSettings(msg)
	case overlayConfirm:
		return a, a.updateConfirm(msg)
	case overlayCode:
		return a, a.updateCodeOverlay(msg)
	}

	// Notice interactions come before pane handling so the retry key
	// works regardless of focus.
	if a.notice != nil {
		if key.Matches(msg, a.keys.Dismiss) {
			a.notice = nil
			return a, nil
		}
		if a.notice.kind == noticeBlocked && key.Matches(msg, a.keys.Retry) {
			return a, a.retryBlocked()
		}
	}

	switch {
	case key.Matches(msg, a.keys.NewChat):
		a.store.ClearActive()
		a.focus = focusInput
		a.sidebarIndex = 0
		a.refreshViewport(false)
		return a, nil

	case key.Matches(msg, a.keys.ToggleSide):
		if a.focus == focusInput {
			a.focus = focusSidebar
			a.textarea.Blur()
		} else {
			a.focus = focusInput
			a.textarea.Focus()
		}
		return a, nil

	case key.Matches(msg, a.keys.Picker):
		a.overlay = overlayPicker
		a.pickerIndex = a.currentPickerIndex()
		return a, nil

	case key.Matches(msg, a.keys.Settings):
		a.overlay = overlaySettings
		a.keyInput.SetValue(a.settings.APIKey)
		a.keyInput.Focus()
		a.themeIndex = themeIndexOf(a.settings.Theme)
		return a, nil

	case key.Matches(msg, a.keys.Thinking):
		a.thinkingEnabled = !a.thinkingEnabled
		return a, nil

	case key.Matches(msg, a.keys.Effort):
		a.reasoningEffort = nextEffort(a.reasoningEffort)
		return a, nil

	case key.Matches(msg, a.keys.Export):
		chat := a.store.Active()
		if chat == nil || chat.IsEmpty() {
			return a, a.setStatus("Nothing to export")
		}
		return a, exportCmd(chat.Clone(), export.FormatMarkdown)

	case key.Matches(msg, a.keys.CodeBlocks):
		if len(a.codeBlocks) == 0 {
			return a, a.setStatus("No code blocks in the last reply")
		}
		a.overlay = overlayCode
		a.codeIndex = len(a.codeBlocks) - 1
		return a, nil
	}

	if a.focus == focusSidebar {
		return a, a.updateSidebar(msg)
	}
	return a, a.updateInput(msg)
}

// =============================================================================
// INPUT PANE
// =============================================================================

func (a *App) updateInput(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, a.keys.Send):
		return a.submit()
	case key.Matches(msg, a.keys.Newline):
		a.textarea.InsertString("\n")
		return nil
	}

	var cmd tea.Cmd
	a.textarea, cmd = a.textarea.Update(msg)
	return cmd
}

// submit runs the Composing step for whatever is in the input area.
func (a *App) submit() tea.Cmd {
	text := strings.TrimSpace(a.textarea.Value())

	// Input-line commands, the one non-key affordance: image attach.
	if path, ok := strings.CutPrefix(text, "/attach "); ok {
		return a.attachImage(strings.TrimSpace(path))
	}

	if a.awaitingChat != "" {
		return a.setStatus("Still waiting for the previous reply")
	}

	turn, err := a.orch.Compose(session.Input{
		Text:            text,
		ImageDataURI:    a.pendingImage,
		Model:           a.modelID,
		ReasoningEffort: a.reasoningEffort,
		ThinkingEnabled: a.thinkingEnabled,
	})
	if err != nil {
		switch {
		case errors.Is(err, session.ErrEmptyInput):
			return nil
		case errors.Is(err, session.ErrTurnInFlight):
			return a.setStatus("Still waiting for the previous reply")
		default:
			a.notice = &notice{kind: noticeError, message: err.Error()}
			return nil
		}
	}

	a.textarea.Reset()
	a.pendingImage = ""
	a.pendingImageName = ""
	a.notice = nil
	a.awaitingChat = turn.ChatID
	a.sidebarIndex = 0
	a.refreshViewport(true)

	return tea.Batch(a.spin.Tick, awaitTurnCmd(a.orch, turn))
}

func (a *App) attachImage(path string) tea.Cmd {
	a.textarea.Reset()
	if path == "" {
		return a.setStatus("Usage: /attach <image-file>")
	}
	uri, err := util.EncodeImageDataURI(path)
	if err != nil {
		return a.setStatus(err.Error())
	}
	a.pendingImage = uri
	a.pendingImageName = path
	if !catalog.IsVisionCapable(a.modelID) {
		return a.setStatus(a.modelID + " does not accept images; it will be dropped at send time")
	}
	return a.setStatus("Image attached to your next message")
}

// =============================================================================
// TURN OUTCOMES
// =============================================================================

func (a *App) handleOutcome(out session.Outcome) tea.Cmd {
	a.awaitingChat = ""

	if _, err := a.orch.Resolve(out); err != nil {
		a.notice = &notice{kind: noticeError, message: err.Error()}
		a.refreshViewport(false)
		return nil
	}

	switch out.Kind {
	case session.OutcomeReply:
		a.codeBlocks = ExtractCodeBlocks(out.Reply)
		a.refreshViewport(true)
		return nil

	case session.OutcomeSuppressed:
		// Gateway timeout: the placeholder disappears and that is all.
		a.refreshViewport(false)
		return nil

	case session.OutcomeBlocked:
		a.notice = &notice{
			kind:    noticeBlocked,
			message: out.ErrMessage,
			retry: &retryState{
				chatID:    out.Turn.ChatID,
				messageID: out.Turn.UserMessageID,
				text:      out.Turn.Text,
			},
		}
		a.refreshViewport(false)
		return nil

	default:
		a.notice = &notice{kind: noticeError, message: out.ErrMessage}
		a.refreshViewport(false)
		return nil
	}
}

// retryBlocked is the one-click remediation: roll the turn back, switch
// to the fallback model, refill the input, and resubmit.
func (a *App) retryBlocked() tea.Cmd {
	r := a.notice.retry
	a.notice = nil

	// The retry lands in the conversation it came from, even if the user
	// started a new chat or switched threads while the notice was up.
	if !a.store.SetActive(r.chatID) {
		a.notice = &notice{kind: noticeError, message: "the chat for this retry no longer exists"}
		return nil
	}

	text, err := a.orch.RollbackTurn(r.chatID, r.messageID)
	if err != nil {
		a.notice = &notice{kind: noticeError, message: err.Error()}
		return nil
	}
	if text == "" {
		text = r.text
	}

	a.modelID = catalog.FallbackModel
	a.textarea.SetValue(text)
	a.refreshViewport(false)
	return a.submit()
}

// =============================================================================
// SIDEBAR
// =============================================================================

func (a *App) updateSidebar(msg tea.KeyMsg) tea.Cmd {
	chats := a.store.Chats()

	switch {
	case key.Matches(msg, a.keys.Up):
		if a.sidebarIndex > 0 {
			a.sidebarIndex--
		}
	case key.Matches(msg, a.keys.Down):
		if a.sidebarIndex < len(chats)-1 {
			a.sidebarIndex++
		}
	case key.Matches(msg, a.keys.Select):
		if a.sidebarIndex < len(chats) {
			a.store.SetActive(chats[a.sidebarIndex].ID)
			a.focus = focusInput
			a.textarea.Focus()
			a.notice = nil
			a.codeBlocks = nil
			a.refreshViewport(true)
		}
	case key.Matches(msg, a.keys.Delete):
		if a.sidebarIndex < len(chats) {
			id := chats[a.sidebarIndex].ID
			title := chats[a.sidebarIndex].Title
			a.confirm = &confirmState{
				prompt: "Delete \"" + title + "\"? This cannot be undone.",
				action: func(app *App) tea.Cmd { return app.deleteChat(id) },
			}
			a.overlay = overlayConfirm
		}
	case key.Matches(msg, a.keys.Wipe):
		if len(chats) > 0 {
			a.confirm = &confirmState{
				prompt: "Delete ALL chats? This cannot be undone.",
				action: func(app *App) tea.Cmd { return app.deleteAllChats() },
			}
			a.overlay = overlayConfirm
		}
	}
	return nil
}

func (a *App) deleteChat(id string) tea.Cmd {
	if a.awaitingChat == id {
		// The in-flight reply will be dropped at resolve time.
		a.awaitingChat = ""
	}
	if !a.store.Delete(id) {
		return nil
	}
	if a.sidebarIndex >= a.store.Len() && a.sidebarIndex > 0 {
		a.sidebarIndex--
	}
	a.refreshViewport(false)
	if err := a.orch.PersistChats(); err != nil {
		a.notice = &notice{kind: noticeError, message: err.Error()}
	}
	return nil
}

func (a *App) deleteAllChats() tea.Cmd {
	a.store.DeleteAll()
	a.awaitingChat = ""
	a.sidebarIndex = 0
	a.codeBlocks = nil
	a.refreshViewport(false)
	if err := a.orch.PersistChats(); err != nil {
		a.notice = &notice{kind: noticeError, message: err.Error()}
	}
	return nil
}

// =============================================================================
// OVERLAYS
// =============================================================================

func (a *App) updatePicker(msg tea.KeyMsg) tea.Cmd {
	models := catalog.Models()
	switch {
	case key.Matches(msg, a.keys.Dismiss):
		a.overlay = overlayNone
	case key.Matches(msg, a.keys.Up):
		if a.pickerIndex > 0 {
			a.pickerIndex--
		}
	case key.Matches(msg, a.keys.Down):
		if a.pickerIndex < len(models)-1 {
			a.pickerIndex++
		}
	case key.Matches(msg, a.keys.Select):
		a.modelID = models[a.pickerIndex].ID
		a.overlay = overlayNone
		if a.pendingImage != "" && !catalog.IsVisionCapable(a.modelID) {
			return a.setStatus(a.modelID + " does not accept images; the attachment will be dropped at send time")
		}
	}
	return nil
}

func (a *App) updateSettings(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		a.overlay = overlayNone
		a.keyInput.Blur()
		return nil
	case "left", "right":
		// Cycle theme; preview immediately.
		delta := 1
		if msg.String() == "left" {
			delta = len(themeOrder) - 1
		}
		a.themeIndex = (a.themeIndex + delta) % len(themeOrder)
		a.applyTheme(themeOrder[a.themeIndex])
		a.refreshViewport(false)
		return nil
	case "enter":
		a.settings.APIKey = a.keyInput.Value()
		a.settings.Theme = themeOrder[a.themeIndex]
		// A turn may be awaiting its reply on the old client; never mutate
		// that one. Build a fresh client and swap it in under the
		// orchestrator's lock, same as the config-reload path.
		a.client = api.NewClient(a.cfg.Endpoint).WithAPIKey(a.settings.APIKey)
		a.orch.SetClient(a.client)
		a.overlay = overlayNone
		a.keyInput.Blur()
		if err := a.db.SaveSettings(a.settings); err != nil {
			a.notice = &notice{kind: noticeError, message: err.Error()}
			return nil
		}
		return a.setStatus("Settings saved")
	}

	var cmd tea.Cmd
	a.keyInput, cmd = a.keyInput.Update(msg)
	return cmd
}

func (a *App) updateConfirm(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y", "enter":
		confirm := a.confirm
		a.confirm = nil
		a.overlay = overlayNone
		return confirm.action(a)
	case "n", "N", "esc":
		a.confirm = nil
		a.overlay = overlayNone
	}
	return nil
}

func (a *App) updateCodeOverlay(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "q":
		a.overlay = overlayNone
	case "left", "h":
		if a.codeIndex > 0 {
			a.codeIndex--
		}
	case "right", "l":
		if a.codeIndex < len(a.codeBlocks)-1 {
			a.codeIndex++
		}
	case "c", "enter":
		a.overlay = overlayNone
		return copyCmd(a.codeBlocks[a.codeIndex].Code)
	}
	return nil
}

// =============================================================================
// CONFIG RELOAD
// =============================================================================

func (a *App) handleConfigReload(cfg *config.Config) tea.Cmd {
	endpointChanged := cfg.Endpoint != a.cfg.Endpoint
	a.cfg = cfg

	if endpointChanged {
		a.client = api.NewClient(cfg.Endpoint).WithAPIKey(a.settings.APIKey)
		a.orch.SetClient(a.client)
	}
	return a.setStatus("Configuration reloaded")
}

// updateFocused forwards non-key messages (blink ticks) to the focused
// text component.
func (a *App) updateFocused(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	a.textarea, cmd = a.textarea.Update(msg)
	cmds = append(cmds, cmd)
	a.keyInput, cmd = a.keyInput.Update(msg)
	cmds = append(cmds, cmd)
	return tea.Batch(cmds...)
}

// =============================================================================
// HELPERS
// =============================================================================

var themeOrder = []string{storage.ThemeSystem, storage.ThemeLight, storage.ThemeDark}

func themeIndexOf(theme string) int {
	for i, t := range themeOrder {
		if t == theme {
			return i
		}
	}
	return 0
}

func nextEffort(current string) string {
	efforts := catalog.ReasoningEfforts()
	for i, e := range efforts {
		if e == current {
			return efforts[(i+1)%len(efforts)]
		}
	}
	return efforts[0]
}

func (a *App) currentPickerIndex() int {
	for i, info := range catalog.Models() {
		if info.ID == a.modelID {
			return i
		}
	}
	return 0
}
