// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/pollen-tui/internal/api"
	"github.com/jeranaias/pollen-tui/internal/config"
	"github.com/jeranaias/pollen-tui/internal/session"
	"github.com/jeranaias/pollen-tui/internal/storage"
	"github.com/jeranaias/pollen-tui/internal/store"
	"github.com/jeranaias/pollen-tui/internal/ui/styles"
)

// focusArea is which pane receives navigation keys.
type focusArea int

const (
	focusInput focusArea = iota
	focusSidebar
)

// overlayKind is the modal surface currently covering the chat, if any.
type overlayKind int

const (
	overlayNone overlayKind = iota
	overlayPicker
	overlaySettings
	overlayConfirm
	overlayCode
)

// noticeKind distinguishes the two user-visible failure surfaces.
type noticeKind int

const (
	noticeError noticeKind = iota
	noticeBlocked
)

// notice is the banner above the input: a generic error, or a blocked
// notice carrying its retry state.
type notice struct {
	kind    noticeKind
	message string
	retry   *retryState
}

// retryState identifies the rolled-back turn for retry-with-different-
// model: the rollback keys off the message id, never stack positions.
type retryState struct {
	chatID    string
	messageID string
	text      string
}

// confirmState is a pending destructive action.
type confirmState struct {
	prompt string
	action func(a *App) tea.Cmd
}

// App is the root Bubble Tea model.
type App struct {
	cfg      *config.Config
	theme    *styles.Theme
	keys     KeyMap
	store    *store.Store
	db       *storage.Store
	orch     *session.Orchestrator
	client   *api.Client
	settings storage.Settings

	width  int
	height int
	ready  bool

	focus   focusArea
	overlay overlayKind

	viewport viewport.Model
	textarea textarea.Model
	spin     spinner.Model

	sidebarIndex int

	modelID         string
	reasoningEffort string
	thinkingEnabled bool

	pendingImage     string // data URI, attached to the next send
	pendingImageName string

	awaitingChat string // chat id with a turn in flight, "" when idle

	notice  *notice
	confirm *confirmState

	pickerIndex int

	keyInput   textinput.Model
	themeIndex int

	codeBlocks []CodeBlock
	codeIndex  int

	statusMsg string
	statusSeq int

	md *glamour.TermRenderer
}

// New wires the interface over its collaborators.
func New(cfg *config.Config, st *store.Store, db *storage.Store, orch *session.Orchestrator, client *api.Client, settings storage.Settings) *App {
	theme := styles.New(settings.Theme)

	ta := textarea.New()
	ta.Placeholder = "Message... (enter to send, ctrl+j for newline)"
	ta.Prompt = "┃ "
	ta.CharLimit = 0
	ta.SetHeight(3)
	ta.ShowLineNumbers = false
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	ki := textinput.New()
	ki.Placeholder = "API key (optional)"
	ki.EchoMode = textinput.EchoPassword
	ki.EchoCharacter = '•'

	app := &App{
		cfg:             cfg,
		theme:           theme,
		keys:            DefaultKeyMap(),
		store:           st,
		db:              db,
		orch:            orch,
		client:          client,
		settings:        settings,
		textarea:        ta,
		spin:            sp,
		keyInput:        ki,
		modelID:         cfg.Model,
		reasoningEffort: "medium",
	}
	app.rebuildRenderer()
	return app
}

// Init starts the cursor blink.
func (a *App) Init() tea.Cmd {
	return textarea.Blink
}

// rebuildRenderer recreates the markdown renderer for the current theme
// and width.
func (a *App) rebuildRenderer() {
	width := a.chatWidth() - 2
	if width < 20 {
		width = 80
	}
	md, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(a.theme.GlamourStyle()),
		glamour.WithWordWrap(width),
	)
	if err == nil {
		a.md = md
	}
}

// renderMarkdown renders assistant markdown, falling back to raw text.
func (a *App) renderMarkdown(text string) string {
	if a.md == nil {
		return text
	}
	out, err := a.md.Render(text)
	if err != nil {
		return text
	}
	return out
}

// setStatus shows a transient message in the status bar.
func (a *App) setStatus(msg string) tea.Cmd {
	a.statusMsg = msg
	a.statusSeq++
	return clearStatusCmd(a.statusSeq)
}

// applyTheme switches the palette and rebuilds everything derived from
// it.
func (a *App) applyTheme(theme string) {
	a.settings.Theme = theme
	a.theme = styles.New(theme)
	a.spin.Style = a.theme.Spinner
	a.rebuildRenderer()
}

// sidebarWidth is fixed; the chat pane takes the rest.
const sidebarWidth = 28

func (a *App) chatWidth() int {
	if a.width == 0 {
		return 80
	}
	return a.width - sidebarWidth - 1
}
