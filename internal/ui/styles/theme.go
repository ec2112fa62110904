// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jeranaias/pollen-tui/internal/storage"
)

// Theme holds the styled components for the application.
type Theme struct {
	IsDark bool

	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	HeaderModel lipgloss.Style

	Sidebar            lipgloss.Style
	SidebarTitle       lipgloss.Style
	SidebarItem        lipgloss.Style
	SidebarActive      lipgloss.Style
	SidebarSelected    lipgloss.Style
	SidebarPlaceholder lipgloss.Style

	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	MessageMeta    lipgloss.Style
	Placeholder    lipgloss.Style

	InputContainer lipgloss.Style
	InputHint      lipgloss.Style
	AttachBadge    lipgloss.Style

	StatusBar    lipgloss.Style
	StatusKey    lipgloss.Style
	StatusDesc   lipgloss.Style
	StatusToggle lipgloss.Style

	ErrorBox    lipgloss.Style
	ErrorTitle  lipgloss.Style
	NoticeBox   lipgloss.Style
	NoticeTitle lipgloss.Style

	Dialog       lipgloss.Style
	DialogButton lipgloss.Style
	DialogDanger lipgloss.Style

	PickerBox      lipgloss.Style
	PickerItem     lipgloss.Style
	PickerSelected lipgloss.Style
	PickerCaps     lipgloss.Style

	WelcomeTitle lipgloss.Style
	WelcomeText  lipgloss.Style
	WelcomeKey   lipgloss.Style

	Spinner lipgloss.Style

	CodeOverlay lipgloss.Style
	CodeBadge   lipgloss.Style
}

// Apply resolves the theme setting against the terminal: "light" and
// "dark" force the palette, "system" keeps whatever the terminal
// background detection decided.
func Apply(theme string) {
	switch theme {
	case storage.ThemeLight:
		lipgloss.SetHasDarkBackground(false)
	case storage.ThemeDark:
		lipgloss.SetHasDarkBackground(true)
	default:
		lipgloss.SetHasDarkBackground(termenv.HasDarkBackground())
	}
}

// New builds the theme for the given setting. Call again after the
// setting changes; adaptive colors resolve at style-build time.
func New(theme string) *Theme {
	Apply(theme)

	t := &Theme{IsDark: lipgloss.HasDarkBackground()}

	t.Header = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.HeaderTitle = lipgloss.NewStyle().Foreground(Honey).Bold(true)
	t.HeaderModel = lipgloss.NewStyle().Foreground(TextSecondary)

	t.Sidebar = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.SidebarTitle = lipgloss.NewStyle().Foreground(TextSecondary).Bold(true)
	t.SidebarItem = lipgloss.NewStyle().Foreground(TextPrimary)
	t.SidebarActive = lipgloss.NewStyle().Foreground(Honey)
	t.SidebarSelected = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(SurfaceBright).
		Bold(true)
	t.SidebarPlaceholder = lipgloss.NewStyle().Foreground(TextMuted).Italic(true)

	t.UserLabel = lipgloss.NewStyle().Foreground(Cyan).Bold(true)
	t.AssistantLabel = lipgloss.NewStyle().Foreground(Purple).Bold(true)
	t.MessageMeta = lipgloss.NewStyle().Foreground(TextMuted)
	t.Placeholder = lipgloss.NewStyle().Foreground(TextMuted).Italic(true)

	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.InputHint = lipgloss.NewStyle().Foreground(TextMuted)
	t.AttachBadge = lipgloss.NewStyle().Foreground(Emerald).Bold(true)

	t.StatusBar = lipgloss.NewStyle().Foreground(TextSecondary)
	t.StatusKey = lipgloss.NewStyle().Foreground(Cyan)
	t.StatusDesc = lipgloss.NewStyle().Foreground(TextMuted)
	t.StatusToggle = lipgloss.NewStyle().Foreground(Emerald)

	t.ErrorBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Rose).
		Padding(0, 1)
	t.ErrorTitle = lipgloss.NewStyle().Foreground(Rose).Bold(true)
	t.NoticeBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Amber).
		Padding(0, 1)
	t.NoticeTitle = lipgloss.NewStyle().Foreground(Amber).Bold(true)

	t.Dialog = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(1, 2)
	t.DialogButton = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(SurfaceBright).
		Padding(0, 2)
	t.DialogDanger = lipgloss.NewStyle().
		Foreground(Surface).
		Background(Rose).
		Bold(true).
		Padding(0, 2)

	t.PickerBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.PickerItem = lipgloss.NewStyle().Foreground(TextPrimary)
	t.PickerSelected = lipgloss.NewStyle().
		Foreground(Honey).
		Background(SurfaceBright).
		Bold(true)
	t.PickerCaps = lipgloss.NewStyle().Foreground(TextMuted)

	t.WelcomeTitle = lipgloss.NewStyle().Foreground(Honey).Bold(true)
	t.WelcomeText = lipgloss.NewStyle().Foreground(TextSecondary)
	t.WelcomeKey = lipgloss.NewStyle().Foreground(Cyan)

	t.Spinner = lipgloss.NewStyle().Foreground(Purple)

	t.CodeOverlay = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.CodeBadge = lipgloss.NewStyle().Foreground(Cyan).Bold(true)

	return t
}

// GlamourStyle returns the glamour style name matching the theme.
func (t *Theme) GlamourStyle() string {
	if t.IsDark {
		return "dark"
	}
	return "light"
}
