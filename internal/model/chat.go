// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strconv"
	"time"
)

const (
	// DefaultChatTitle is used until the first user text arrives.
	DefaultChatTitle = "New Chat"

	// titleRunes is how much of the first user text a title keeps.
	titleRunes = 30
)

// Chat is one persisted conversation thread.
type Chat struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	Timestamp time.Time `json:"timestamp"`
}

// NewChat creates an empty chat. The id is the creation time in
// milliseconds, the same opaque format earlier releases persisted, so old
// chat records stay loadable.
func NewChat(now time.Time) *Chat {
	return &Chat{
		ID:        strconv.FormatInt(now.UnixMilli(), 10),
		Title:     DefaultChatTitle,
		Messages:  []Message{},
		Timestamp: now,
	}
}

// DeriveTitle produces a chat title from the first user text: up to 30
// runes, with a trailing ellipsis when anything was cut. Empty text keeps
// the default title.
func DeriveTitle(text string) string {
	if text == "" {
		return DefaultChatTitle
	}
	runes := []rune(text)
	if len(runes) <= titleRunes {
		return text
	}
	return string(runes[:titleRunes]) + "..."
}

// Append adds a message to the end of the chat.
func (c *Chat) Append(m Message) {
	c.Messages = append(c.Messages, m)
}

// RemoveMessage deletes the message with the given id, preserving order.
// Returns false if no message has that id.
func (c *Chat) RemoveMessage(id string) bool {
	for i, m := range c.Messages {
		if m.ID == id {
			c.Messages = append(c.Messages[:i], c.Messages[i+1:]...)
			return true
		}
	}
	return false
}

// TruncateFrom removes the message with the given id and everything after
// it. This is the retry rollback: the triggering user entry and any
// assistant entry that followed it leave history together. Returns false
// if no message has that id.
func (c *Chat) TruncateFrom(id string) bool {
	for i, m := range c.Messages {
		if m.ID == id {
			c.Messages = c.Messages[:i]
			return true
		}
	}
	return false
}

// LastMessage returns the most recent message, or nil for an empty chat.
func (c *Chat) LastMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return &c.Messages[len(c.Messages)-1]
}

// IsEmpty reports whether the chat has no messages.
func (c *Chat) IsEmpty() bool {
	return len(c.Messages) == 0
}

// Clone returns a deep copy. The UI hands copies to background commands so
// the live chat is never shared across goroutines.
func (c *Chat) Clone() *Chat {
	if c == nil {
		return nil
	}
	clone := *c
	clone.Messages = make([]Message, len(c.Messages))
	copy(clone.Messages, c.Messages)
	for i := range clone.Messages {
		parts := clone.Messages[i].Content.Parts
		if parts != nil {
			copied := make([]Part, len(parts))
			copy(copied, parts)
			clone.Messages[i].Content.Parts = copied
		}
	}
	return &clone
}
