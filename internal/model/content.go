// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"fmt"
)

// PartKind identifies the type of one multi-part content element.
type PartKind string

const (
	PartText  PartKind = "text"
	PartImage PartKind = "image"
)

// Part is one element of multi-part message content: either a text
// fragment or an image carried inline as a data URI.
type Part struct {
	Kind    PartKind
	Text    string
	DataURI string
}

// Content is a message body: plain text, or an ordered list of parts when
// the message carries an image. The zero value is empty text.
//
// The JSON form matches the chat-completions wire shape exactly: a bare
// string, or an array of {"type":"text","text":...} /
// {"type":"image_url","image_url":{"url":...}} objects. The same form is
// used for requests and for persisted chats, so stored vision messages
// keep their image parts across model switches.
type Content struct {
	Text  string
	Parts []Part // when non-nil, takes precedence over Text
}

// TextContent returns plain text, or the first text part of multi-part
// content. Used for title derivation, retry refill, and export.
func (c Content) TextContent() string {
	if c.Parts == nil {
		return c.Text
	}
	for _, p := range c.Parts {
		if p.Kind == PartText {
			return p.Text
		}
	}
	return ""
}

// HasImage reports whether any part carries an image.
func (c Content) HasImage() bool {
	for _, p := range c.Parts {
		if p.Kind == PartImage {
			return true
		}
	}
	return false
}

// IsEmpty reports whether the content carries neither text nor parts.
func (c Content) IsEmpty() bool {
	return c.Parts == nil && c.Text == ""
}

// wirePart is the on-wire representation of one content part.
type wirePart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *wireImageURL `json:"image_url,omitempty"`
}

type wireImageURL struct {
	URL string `json:"url"`
}

// MarshalJSON emits a bare string for plain text and a part array for
// multi-part content.
func (c Content) MarshalJSON() ([]byte, error) {
	if c.Parts == nil {
		return json.Marshal(c.Text)
	}
	wire := make([]wirePart, 0, len(c.Parts))
	for _, p := range c.Parts {
		switch p.Kind {
		case PartText:
			wire = append(wire, wirePart{Type: "text", Text: p.Text})
		case PartImage:
			wire = append(wire, wirePart{Type: "image_url", ImageURL: &wireImageURL{URL: p.DataURI}})
		default:
			return nil, fmt.Errorf("unknown content part kind %q", p.Kind)
		}
	}
	return json.Marshal(wire)
}

// UnmarshalJSON accepts either wire form.
func (c *Content) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = Content{Text: s}
		return nil
	}

	var wire []wirePart
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("content is neither string nor part array: %w", err)
	}
	parts := make([]Part, 0, len(wire))
	for _, w := range wire {
		switch w.Type {
		case "text":
			parts = append(parts, Part{Kind: PartText, Text: w.Text})
		case "image_url":
			url := ""
			if w.ImageURL != nil {
				url = w.ImageURL.URL
			}
			parts = append(parts, Part{Kind: PartImage, DataURI: url})
		default:
			return fmt.Errorf("unknown content part type %q", w.Type)
		}
	}
	*c = Content{Parts: parts}
	return nil
}

// TextContentOf builds plain-text content.
func TextContentOf(text string) Content {
	return Content{Text: text}
}

// MultipartContent builds text-plus-image content in the order the wire
// format expects: text part first, image part second.
func MultipartContent(text, dataURI string) Content {
	return Content{Parts: []Part{
		{Kind: PartText, Text: text},
		{Kind: PartImage, DataURI: dataURI},
	}}
}
