// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"github.com/jeranaias/pollen-tui/internal/catalog"
	"github.com/jeranaias/pollen-tui/internal/model"
)

// ThinkingType values accepted by the thinking control.
const (
	ThinkingEnabled  = "enabled"
	ThinkingDisabled = "disabled"
)

// Thinking is the extended-reasoning control attached for
// reasoning-capable models.
type Thinking struct {
	Type string `json:"type"`
}

// WireMessage is one history entry as the endpoint sees it: role plus
// content, with local bookkeeping (ids, timestamps) stripped.
type WireMessage struct {
	Role    model.Role    `json:"role"`
	Content model.Content `json:"content"`
}

// Request is the chat-completions request body. Streaming is always off;
// replies arrive whole.
type Request struct {
	Model           string        `json:"model"`
	Messages        []WireMessage `json:"messages"`
	Stream          bool          `json:"stream"`
	ReasoningEffort string        `json:"reasoning_effort,omitempty"`
	Thinking        *Thinking     `json:"thinking,omitempty"`
}

// BuildRequest projects a message history into a request payload for the
// given model. The history passes through verbatim: content shaping
// (attaching an image part) already happened at message construction time
// against the then-selected model, and is never undone here.
//
// Reasoning-capable models always get a thinking control reflecting the
// toggle; reasoning_effort rides along only for models that take that
// parameter. Everything else gets neither field. Total over well-formed
// input: unknown model ids simply yield a plain payload.
func BuildRequest(history []model.Message, modelID, effort string, thinkingEnabled bool) *Request {
	messages := make([]WireMessage, len(history))
	for i, m := range history {
		messages[i] = WireMessage{Role: m.Role, Content: m.Content}
	}

	req := &Request{
		Model:    modelID,
		Messages: messages,
		Stream:   false,
	}

	if catalog.IsReasoningCapable(modelID) {
		thinking := ThinkingDisabled
		if thinkingEnabled {
			thinking = ThinkingEnabled
		}
		req.Thinking = &Thinking{Type: thinking}
		if catalog.SupportsReasoningEffort(modelID) {
			req.ReasoningEffort = effort
		}
	}

	return req
}
