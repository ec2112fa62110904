// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry in a chat. IDs exist so that retry rollback can
// target a specific entry by identity rather than by stack position.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   Content   `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewUserMessage builds a plain-text user message.
func NewUserMessage(text string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      RoleUser,
		Content:   TextContentOf(text),
		Timestamp: time.Now(),
	}
}

// NewUserImageMessage builds a user message carrying text plus an inline
// image. Only constructed when the selected model is vision-capable at
// send time.
func NewUserImageMessage(text, dataURI string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      RoleUser,
		Content:   MultipartContent(text, dataURI),
		Timestamp: time.Now(),
	}
}

// NewAssistantMessage builds an assistant reply message.
func NewAssistantMessage(text string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      RoleAssistant,
		Content:   TextContentOf(text),
		Timestamp: time.Now(),
	}
}
