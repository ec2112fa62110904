// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines every binding the interface reacts to.
type KeyMap struct {
	Send       key.Binding
	Newline    key.Binding
	NewChat    key.Binding
	ToggleSide key.Binding
	Picker     key.Binding
	Settings   key.Binding
	Thinking   key.Binding
	Effort     key.Binding
	Export     key.Binding
	CodeBlocks key.Binding
	Retry      key.Binding
	Quit       key.Binding
	Dismiss    key.Binding

	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Delete key.Binding
	Wipe   key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Send:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		Newline:    key.NewBinding(key.WithKeys("ctrl+j"), key.WithHelp("ctrl+j", "newline")),
		NewChat:    key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "new chat")),
		ToggleSide: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "chats")),
		Picker:     key.NewBinding(key.WithKeys("ctrl+k"), key.WithHelp("ctrl+k", "model")),
		Settings:   key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "settings")),
		Thinking:   key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "thinking")),
		Effort:     key.NewBinding(key.WithKeys("ctrl+g"), key.WithHelp("ctrl+g", "effort")),
		Export:     key.NewBinding(key.WithKeys("ctrl+e"), key.WithHelp("ctrl+e", "export")),
		CodeBlocks: key.NewBinding(key.WithKeys("ctrl+b"), key.WithHelp("ctrl+b", "code")),
		Retry:      key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "retry")),
		Quit:       key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		Dismiss:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "dismiss")),

		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Delete: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "delete")),
		Wipe:   key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "delete all")),
	}
}
