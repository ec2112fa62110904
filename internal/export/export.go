// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/pollen-tui/internal/model"
	"github.com/jeranaias/pollen-tui/internal/util"
)

// Format selects the export output format.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ErrEmptyChat is returned when there is nothing to export.
var ErrEmptyChat = errors.New("chat has no messages")

// ToFile writes the chat to outputDir in the given format and returns
// the file path. The write is atomic; a failed export never leaves a
// partial file.
func ToFile(chat *model.Chat, format Format, outputDir string) (string, error) {
	if chat == nil || chat.IsEmpty() {
		return "", ErrEmptyChat
	}

	var content []byte
	var ext string
	var err error
	switch format {
	case FormatJSON:
		content, err = json.MarshalIndent(chat, "", "  ")
		ext = ".json"
	case FormatMarkdown:
		content = renderMarkdown(chat)
		ext = ".md"
	default:
		return "", fmt.Errorf("unknown export format %q", format)
	}
	if err != nil {
		return "", fmt.Errorf("failed to encode chat: %w", err)
	}

	filename := fmt.Sprintf("chat_%s_%s%s",
		sanitizeFilename(chat.Title),
		time.Now().Format("20060102_150405"),
		ext,
	)
	path := filepath.Join(outputDir, filename)
	if err := util.AtomicWriteFile(path, content, 0644); err != nil {
		return "", err
	}
	return path, nil
}

// renderMarkdown produces a readable transcript. Image parts become a
// placeholder note; inlining data URIs would make the file enormous and
// unreadable.
func renderMarkdown(chat *model.Chat) []byte {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", chat.Title))
	sb.WriteString(fmt.Sprintf("_Started %s · %d messages_\n\n",
		chat.Timestamp.Format("2006-01-02 15:04"), len(chat.Messages)))
	sb.WriteString("---\n\n")

	for i, msg := range chat.Messages {
		switch msg.Role {
		case model.RoleUser:
			sb.WriteString("### You\n\n")
		case model.RoleAssistant:
			sb.WriteString("### Assistant\n\n")
		default:
			sb.WriteString(fmt.Sprintf("### %s\n\n", msg.Role))
		}

		sb.WriteString(msg.Content.TextContent())
		if msg.Content.HasImage() {
			sb.WriteString("\n\n*(image attached)*")
		}
		sb.WriteString("\n\n")

		if i < len(chat.Messages)-1 {
			sb.WriteString("---\n\n")
		}
	}

	return []byte(sb.String())
}

// sanitizeFilename keeps titles filesystem-safe.
func sanitizeFilename(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			sb.WriteRune('_')
		}
	}
	name := strings.Trim(sb.String(), "_")
	if name == "" {
		name = "untitled"
	}
	return util.TruncateRunes(name, 40)
}
