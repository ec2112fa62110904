// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package catalog

// Capability flags for one model id.
type Capability uint8

const (
	// CapVision marks models that accept image parts in message content.
	CapVision Capability = 1 << iota
	// CapReasoning marks models that take a thinking control.
	CapReasoning
	// CapReasoningEffort marks models that additionally take a
	// reasoning_effort parameter. Always implies CapReasoning.
	CapReasoningEffort
)

// ModelInfo describes one selectable model.
type ModelInfo struct {
	ID    string
	Label string
	Caps  Capability
}

const (
	// DefaultModel is selected on first run.
	DefaultModel = "openai"

	// FallbackModel is switched to by the retry-with-different-model
	// action after a content-policy rejection.
	FallbackModel = "openai-fast"
)

// models is the ordered picker list. Capability membership is a fixed
// fact about the upstream API, not something probed at runtime.
var models = []ModelInfo{
	{ID: "openai-fast", Label: "OpenAI Fast", Caps: CapVision},
	{ID: "openai", Label: "OpenAI", Caps: CapVision},
	{ID: "openai-large", Label: "OpenAI Large", Caps: CapVision | CapReasoning | CapReasoningEffort},
	{ID: "claude-fast", Label: "Claude Fast", Caps: CapVision},
	{ID: "claude", Label: "Claude", Caps: CapVision},
	{ID: "claude-large", Label: "Claude Large", Caps: CapVision},
	{ID: "gemini", Label: "Gemini", Caps: CapVision},
	{ID: "gemini-large", Label: "Gemini Large", Caps: CapVision | CapReasoning},
	{ID: "gemini-search", Label: "Gemini Search", Caps: CapVision},
	{ID: "grok", Label: "Grok", Caps: CapVision},
	{ID: "midjourney", Label: "Midjourney", Caps: CapVision},
	{ID: "deepseek", Label: "DeepSeek", Caps: CapReasoning},
	{ID: "kimi-k2-thinking", Label: "Kimi K2 Thinking", Caps: CapReasoning},
	{ID: "perplexity-reasoning", Label: "Perplexity Reasoning", Caps: CapReasoning},
	{ID: "mistral", Label: "Mistral"},
	{ID: "qwen-coder", Label: "Qwen Coder"},
	{ID: "llama", Label: "Llama"},
}

var byID = func() map[string]ModelInfo {
	m := make(map[string]ModelInfo, len(models))
	for _, info := range models {
		m[info.ID] = info
	}
	return m
}()

// Models returns the picker list in display order. The slice is shared;
// callers must not modify it.
func Models() []ModelInfo {
	return models
}

// Lookup returns the info for a model id. Unknown ids yield an entry with
// no capabilities and the id itself as label.
func Lookup(id string) ModelInfo {
	if info, ok := byID[id]; ok {
		return info
	}
	return ModelInfo{ID: id, Label: id}
}

// IsVisionCapable reports whether the model accepts image content parts.
func IsVisionCapable(id string) bool {
	return Lookup(id).Caps&CapVision != 0
}

// IsReasoningCapable reports whether the model takes a thinking control.
func IsReasoningCapable(id string) bool {
	return Lookup(id).Caps&(CapReasoning|CapReasoningEffort) != 0
}

// SupportsReasoningEffort reports whether the model takes the
// reasoning_effort parameter.
func SupportsReasoningEffort(id string) bool {
	return Lookup(id).Caps&CapReasoningEffort != 0
}

// ReasoningEfforts lists the accepted reasoning_effort values in UI order.
func ReasoningEfforts() []string {
	return []string{"low", "medium", "high"}
}
