// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

// =============================================================================
// CONTENT WIRE FORMAT TESTS
// =============================================================================

func TestContent_MarshalPlainText(t *testing.T) {
	c := TextContentOf("describe this")
	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `"describe this"` {
		t.Errorf("plain text content = %s, want bare JSON string", data)
	}
}

func TestContent_MarshalMultipart(t *testing.T) {
	c := MultipartContent("describe this", "data:image/png;base64,AAAA")
	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var wire []map[string]any
	if err := json.Unmarshal(data, &wire); err != nil {
		t.Fatalf("multipart content is not a JSON array: %v", err)
	}
	if len(wire) != 2 {
		t.Fatalf("part count = %d, want 2", len(wire))
	}
	if wire[0]["type"] != "text" || wire[0]["text"] != "describe this" {
		t.Errorf("first part = %v, want text part", wire[0])
	}
	if wire[1]["type"] != "image_url" {
		t.Errorf("second part type = %v, want image_url", wire[1]["type"])
	}
	img, ok := wire[1]["image_url"].(map[string]any)
	if !ok || img["url"] != "data:image/png;base64,AAAA" {
		t.Errorf("image_url = %v, want url object with data URI", wire[1]["image_url"])
	}
}

func TestContent_UnmarshalBothForms(t *testing.T) {
	var plain Content
	if err := json.Unmarshal([]byte(`"hello"`), &plain); err != nil {
		t.Fatalf("Unmarshal string failed: %v", err)
	}
	if plain.Text != "hello" || plain.Parts != nil {
		t.Errorf("plain = %+v, want text-only", plain)
	}

	var multi Content
	raw := `[{"type":"text","text":"hi"},{"type":"image_url","image_url":{"url":"data:image/jpeg;base64,BB"}}]`
	if err := json.Unmarshal([]byte(raw), &multi); err != nil {
		t.Fatalf("Unmarshal array failed: %v", err)
	}
	if len(multi.Parts) != 2 {
		t.Fatalf("part count = %d, want 2", len(multi.Parts))
	}
	if multi.Parts[0].Kind != PartText || multi.Parts[0].Text != "hi" {
		t.Errorf("first part = %+v", multi.Parts[0])
	}
	if multi.Parts[1].Kind != PartImage || multi.Parts[1].DataURI != "data:image/jpeg;base64,BB" {
		t.Errorf("second part = %+v", multi.Parts[1])
	}
}

func TestContent_UnmarshalRejectsGarbage(t *testing.T) {
	var c Content
	if err := json.Unmarshal([]byte(`42`), &c); err == nil {
		t.Error("expected error for numeric content")
	}
	if err := json.Unmarshal([]byte(`[{"type":"audio"}]`), &c); err == nil {
		t.Error("expected error for unknown part type")
	}
}

func TestContent_TextContent(t *testing.T) {
	if got := TextContentOf("plain").TextContent(); got != "plain" {
		t.Errorf("TextContent = %q", got)
	}
	if got := MultipartContent("with image", "data:x").TextContent(); got != "with image" {
		t.Errorf("TextContent of multipart = %q", got)
	}
	if !MultipartContent("t", "d").HasImage() {
		t.Error("HasImage = false for multipart with image")
	}
	if TextContentOf("t").HasImage() {
		t.Error("HasImage = true for plain text")
	}
}

// =============================================================================
// CHAT TESTS
// =============================================================================

func TestNewChat(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	chat := NewChat(now)

	if chat.ID != "1741608000000" {
		t.Errorf("ID = %q, want millisecond timestamp", chat.ID)
	}
	if chat.Title != DefaultChatTitle {
		t.Errorf("Title = %q, want %q", chat.Title, DefaultChatTitle)
	}
	if !chat.IsEmpty() {
		t.Error("new chat should be empty")
	}
}

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty keeps default", "", DefaultChatTitle},
		{"short passes through", "hello", "hello"},
		{"exactly 30 runes", strings.Repeat("a", 30), strings.Repeat("a", 30)},
		{"long gets ellipsis", strings.Repeat("a", 31), strings.Repeat("a", 30) + "..."},
		{"unicode counted in runes", strings.Repeat("é", 31), strings.Repeat("é", 30) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveTitle(tt.input); got != tt.want {
				t.Errorf("DeriveTitle(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestChat_RemoveMessage(t *testing.T) {
	chat := NewChat(time.Now())
	m1 := NewUserMessage("one")
	m2 := NewAssistantMessage("two")
	chat.Append(m1)
	chat.Append(m2)

	if !chat.RemoveMessage(m1.ID) {
		t.Fatal("RemoveMessage returned false for existing id")
	}
	if len(chat.Messages) != 1 || chat.Messages[0].ID != m2.ID {
		t.Errorf("messages after removal = %+v", chat.Messages)
	}
	if chat.RemoveMessage("no-such-id") {
		t.Error("RemoveMessage returned true for unknown id")
	}
}

func TestChat_TruncateFrom(t *testing.T) {
	chat := NewChat(time.Now())
	keep := NewUserMessage("keep")
	trigger := NewUserMessage("trigger")
	reply := NewAssistantMessage("reply")
	chat.Append(keep)
	chat.Append(trigger)
	chat.Append(reply)

	if !chat.TruncateFrom(trigger.ID) {
		t.Fatal("TruncateFrom returned false for existing id")
	}
	if len(chat.Messages) != 1 || chat.Messages[0].ID != keep.ID {
		t.Errorf("messages after truncate = %+v", chat.Messages)
	}
	if chat.TruncateFrom("no-such-id") {
		t.Error("TruncateFrom returned true for unknown id")
	}
}

func TestChat_Clone(t *testing.T) {
	chat := NewChat(time.Now())
	chat.Append(NewUserImageMessage("pic", "data:image/png;base64,AA"))

	clone := chat.Clone()
	clone.Messages[0].Content.Parts[0].Text = "mutated"
	clone.Append(NewAssistantMessage("extra"))

	if chat.Messages[0].Content.Parts[0].Text != "pic" {
		t.Error("clone mutation leaked into original parts")
	}
	if len(chat.Messages) != 1 {
		t.Error("clone append leaked into original")
	}
}

func TestChat_JSONRoundTrip(t *testing.T) {
	chat := NewChat(time.Now().Truncate(time.Millisecond))
	chat.Title = DeriveTitle("first message")
	chat.Append(NewUserMessage("first message"))
	chat.Append(NewAssistantMessage("a reply"))
	chat.Append(NewUserImageMessage("look", "data:image/png;base64,CC"))

	data, err := json.Marshal(chat)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var loaded Chat
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if loaded.ID != chat.ID || loaded.Title != chat.Title {
		t.Errorf("identity changed: %q/%q", loaded.ID, loaded.Title)
	}
	if len(loaded.Messages) != 3 {
		t.Fatalf("message count = %d, want 3", len(loaded.Messages))
	}
	if loaded.Messages[2].Content.Parts == nil {
		t.Error("vision message lost its parts on round trip")
	}
	if loaded.Messages[0].Content.Parts != nil {
		t.Error("plain message grew parts on round trip")
	}
	if loaded.Messages[1].Role != RoleAssistant {
		t.Errorf("role = %q, want assistant", loaded.Messages[1].Role)
	}
}
