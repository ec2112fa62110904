// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/pollen-tui/internal/catalog"
	"github.com/jeranaias/pollen-tui/internal/model"
	"github.com/jeranaias/pollen-tui/internal/storage"
	"github.com/jeranaias/pollen-tui/internal/util"
)

// View renders the whole interface.
func (a *App) View() string {
	if !a.ready {
		return "Starting..."
	}

	header := a.renderHeader()
	body := lipgloss.JoinHorizontal(lipgloss.Top, a.renderSidebar(), a.viewport.View())
	input := a.renderInput()
	status := a.renderStatus()

	screen := lipgloss.JoinVertical(lipgloss.Left, header, body, input, status)

	if a.overlay != overlayNone {
		return a.renderOverlay(screen)
	}
	return screen
}

// =============================================================================
// LAYOUT METRICS
// =============================================================================

func (a *App) headerHeight() int { return 2 } // title line + bottom border

func (a *App) statusHeight() int { return 1 }

// inputHeight includes the bordered textarea and, when present, the
// notice banner above it.
func (a *App) inputHeight() int {
	h := a.textarea.Height() + 2 // rounded border
	if a.notice != nil {
		h += 4 // bordered notice: title + message + borders
	}
	if a.pendingImage != "" {
		h++
	}
	return h
}

// =============================================================================
// HEADER
// =============================================================================

func (a *App) renderHeader() string {
	title := a.theme.HeaderTitle.Render("pollen")

	info := catalog.Lookup(a.modelID)
	parts := []string{info.Label}
	if catalog.IsReasoningCapable(a.modelID) {
		if a.thinkingEnabled {
			parts = append(parts, "thinking on")
		} else {
			parts = append(parts, "thinking off")
		}
	}
	if catalog.SupportsReasoningEffort(a.modelID) {
		parts = append(parts, "effort "+a.reasoningEffort)
	}
	meta := a.theme.HeaderModel.Render(strings.Join(parts, " · "))

	gap := a.width - lipgloss.Width(title) - lipgloss.Width(meta) - 4
	if gap < 1 {
		gap = 1
	}
	line := title + strings.Repeat(" ", gap) + meta
	return a.theme.Header.Width(a.width - 2).Render(line)
}

// =============================================================================
// SIDEBAR
// =============================================================================

func (a *App) renderSidebar() string {
	height := a.viewport.Height
	var b strings.Builder

	b.WriteString(a.theme.SidebarTitle.Render("Chats"))
	b.WriteString("\n")

	chats := a.store.Chats()
	if len(chats) == 0 {
		b.WriteString(a.theme.SidebarPlaceholder.Render("No chats yet"))
	}

	visible := height - 2
	if visible < 1 {
		visible = 1
	}
	start := 0
	if a.sidebarIndex >= visible {
		start = a.sidebarIndex - visible + 1
	}

	for i := start; i < len(chats) && i < start+visible; i++ {
		c := chats[i]
		label := util.TruncateWidth(c.Title, sidebarWidth-4)

		style := a.theme.SidebarItem
		if c.ID == a.store.ActiveID() {
			style = a.theme.SidebarActive
		}
		if a.focus == focusSidebar && i == a.sidebarIndex {
			style = a.theme.SidebarSelected
		}
		b.WriteString(style.Render(label))
		b.WriteString("\n")
	}

	return a.theme.Sidebar.
		Width(sidebarWidth - 1).
		Height(height).
		Render(b.String())
}

// =============================================================================
// CHAT TRANSCRIPT
// =============================================================================

// refreshViewport rebuilds the transcript for the active chat. The
// pending-reply placeholder is rendered here and only here; it is never
// part of the stored history.
func (a *App) refreshViewport(scrollBottom bool) {
	if !a.ready {
		return
	}

	chat := a.store.Active()
	if chat == nil {
		a.viewport.SetContent(a.renderWelcome())
		return
	}

	var b strings.Builder
	for _, msg := range chat.Messages {
		b.WriteString(a.renderMessage(&msg))
		b.WriteString("\n")
	}

	if a.awaitingChat == chat.ID {
		b.WriteString(a.theme.AssistantLabel.Render("Assistant"))
		b.WriteString("\n")
		b.WriteString(a.spin.View())
		b.WriteString(a.theme.Placeholder.Render(" thinking..."))
		b.WriteString("\n")
	}

	a.viewport.SetContent(b.String())
	if scrollBottom {
		a.viewport.GotoBottom()
	}
}

func (a *App) renderMessage(msg *model.Message) string {
	var b strings.Builder

	if msg.Role == model.RoleUser {
		b.WriteString(a.theme.UserLabel.Render("You"))
	} else {
		b.WriteString(a.theme.AssistantLabel.Render("Assistant"))
	}
	b.WriteString(" ")
	b.WriteString(a.theme.MessageMeta.Render(msg.Timestamp.Format("15:04")))
	b.WriteString("\n")

	if msg.Role == model.RoleAssistant {
		b.WriteString(a.renderMarkdown(msg.Content.TextContent()))
	} else {
		b.WriteString(msg.Content.TextContent())
		if msg.Content.HasImage() {
			b.WriteString("\n")
			b.WriteString(a.theme.AttachBadge.Render("⊕ image attached"))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (a *App) renderWelcome() string {
	var b strings.Builder
	b.WriteString("\n\n")
	b.WriteString(a.theme.WelcomeTitle.Render("  Welcome to pollen"))
	b.WriteString("\n\n")
	b.WriteString(a.theme.WelcomeText.Render("  Type a message below to start a chat."))
	b.WriteString("\n\n")
	for _, hint := range [][2]string{
		{"ctrl+k", "choose a model"},
		{"ctrl+n", "new chat"},
		{"tab", "browse chats"},
		{"ctrl+s", "settings"},
	} {
		b.WriteString("  ")
		b.WriteString(a.theme.WelcomeKey.Render(hint[0]))
		b.WriteString(a.theme.WelcomeText.Render("  " + hint[1]))
		b.WriteString("\n")
	}
	return b.String()
}

// =============================================================================
// INPUT AREA
// =============================================================================

func (a *App) renderInput() string {
	var sections []string

	if a.notice != nil {
		sections = append(sections, a.renderNotice())
	}

	if a.pendingImage != "" {
		badge := a.theme.AttachBadge.Render("⊕ " + util.TruncateWidth(a.pendingImageName, 50))
		sections = append(sections, " "+badge)
	}

	sections = append(sections, a.theme.InputContainer.Width(a.width-2).Render(a.textarea.View()))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (a *App) renderNotice() string {
	if a.notice.kind == noticeBlocked {
		body := a.theme.NoticeTitle.Render("Request blocked") + "\n" +
			a.notice.message + "\n" +
			a.theme.InputHint.Render("Press ctrl+y to retry on "+catalog.FallbackModel+", esc to dismiss")
		return a.theme.NoticeBox.Width(a.width - 2).Render(body)
	}
	body := a.theme.ErrorTitle.Render("Error") + "\n" + a.notice.message
	return a.theme.ErrorBox.Width(a.width - 2).Render(body)
}

// =============================================================================
// STATUS BAR
// =============================================================================

func (a *App) renderStatus() string {
	if a.statusMsg != "" {
		return a.theme.StatusBar.Render(" " + a.statusMsg)
	}

	hints := [][2]string{
		{"enter", "send"},
		{"ctrl+k", "model"},
		{"ctrl+n", "new"},
		{"tab", "chats"},
		{"ctrl+e", "export"},
		{"ctrl+b", "code"},
		{"ctrl+c", "quit"},
	}
	var parts []string
	for _, h := range hints {
		parts = append(parts, a.theme.StatusKey.Render(h[0])+" "+a.theme.StatusDesc.Render(h[1]))
	}
	return a.theme.StatusBar.Render(" " + strings.Join(parts, "  "))
}

// =============================================================================
// OVERLAYS
// =============================================================================

func (a *App) renderOverlay(under string) string {
	var box string
	switch a.overlay {
	case overlayPicker:
		box = a.renderPicker()
	case overlaySettings:
		box = a.renderSettings()
	case overlayConfirm:
		box = a.renderConfirm()
	case overlayCode:
		box = a.renderCode()
	default:
		return under
	}
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, box)
}

func (a *App) renderPicker() string {
	var b strings.Builder
	b.WriteString(a.theme.SidebarTitle.Render("Model"))
	b.WriteString("\n\n")

	for i, info := range catalog.Models() {
		style := a.theme.PickerItem
		cursor := "  "
		if i == a.pickerIndex {
			style = a.theme.PickerSelected
			cursor = "❯ "
		}

		var caps []string
		if info.Caps&catalog.CapVision != 0 {
			caps = append(caps, "vision")
		}
		if info.Caps&catalog.CapReasoning != 0 {
			caps = append(caps, "reasoning")
		}
		if info.Caps&catalog.CapReasoningEffort != 0 {
			caps = append(caps, "effort")
		}

		line := cursor + style.Render(fmt.Sprintf("%-24s", info.Label))
		if len(caps) > 0 {
			line += " " + a.theme.PickerCaps.Render(strings.Join(caps, " "))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(a.theme.InputHint.Render("enter select · esc cancel"))
	return a.theme.PickerBox.Render(b.String())
}

func (a *App) renderSettings() string {
	var b strings.Builder
	b.WriteString(a.theme.SidebarTitle.Render("Settings"))
	b.WriteString("\n\n")

	b.WriteString("API key\n")
	b.WriteString(a.keyInput.View())
	b.WriteString("\n\n")

	b.WriteString("Theme  ")
	for i, t := range themeOrder {
		label := themeLabel(t)
		if i == a.themeIndex {
			b.WriteString(a.theme.PickerSelected.Render(" " + label + " "))
		} else {
			b.WriteString(a.theme.PickerItem.Render(" " + label + " "))
		}
	}
	b.WriteString("\n\n")
	b.WriteString(a.theme.InputHint.Render("←/→ theme · enter save · esc cancel"))
	return a.theme.Dialog.Render(b.String())
}

func themeLabel(t string) string {
	switch t {
	case storage.ThemeLight:
		return "light"
	case storage.ThemeDark:
		return "dark"
	default:
		return "system"
	}
}

func (a *App) renderConfirm() string {
	var b strings.Builder
	b.WriteString(a.confirm.prompt)
	b.WriteString("\n\n")
	b.WriteString(a.theme.DialogDanger.Render("y delete"))
	b.WriteString("  ")
	b.WriteString(a.theme.DialogButton.Render("n cancel"))
	return a.theme.Dialog.Render(b.String())
}

func (a *App) renderCode() string {
	block := a.codeBlocks[a.codeIndex]

	lang := block.Lang
	if lang == "" {
		lang = "text"
	}
	badge := a.theme.CodeBadge.Render(fmt.Sprintf("%s  %d/%d", lang, a.codeIndex+1, len(a.codeBlocks)))

	code := block.Highlight(a.theme.IsDark)

	var b strings.Builder
	b.WriteString(badge)
	b.WriteString("\n\n")
	b.WriteString(code)
	b.WriteString("\n")
	b.WriteString(a.theme.InputHint.Render("c copy · ←/→ blocks · esc close"))
	return a.theme.CodeOverlay.Render(b.String())
}
