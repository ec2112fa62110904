// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
)

// CodeBlock is one fenced code block extracted from an assistant reply,
// for the copy-code action and the code overlay.
type CodeBlock struct {
	Lang string
	Code string
}

// ExtractCodeBlocks pulls fenced blocks out of markdown. Fences inside
// a block (longer fence runs) are treated the way common renderers do:
// the first closing fence of at least the opening length closes it.
func ExtractCodeBlocks(md string) []CodeBlock {
	var blocks []CodeBlock
	lines := strings.Split(md, "\n")

	inBlock := false
	fence := ""
	var lang string
	var body []string

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !inBlock {
			if strings.HasPrefix(trimmed, "```") {
				inBlock = true
				fence = trimmed[:fenceLen(trimmed)]
				lang = strings.TrimSpace(trimmed[len(fence):])
				body = body[:0]
			}
			continue
		}
		if strings.HasPrefix(trimmed, fence) && strings.TrimSpace(strings.TrimLeft(trimmed, "`")) == "" {
			blocks = append(blocks, CodeBlock{Lang: lang, Code: strings.Join(body, "\n")})
			inBlock = false
			continue
		}
		body = append(body, line)
	}

	return blocks
}

func fenceLen(s string) int {
	n := 0
	for n < len(s) && s[n] == '`' {
		n++
	}
	return n
}

// Highlight renders the block with ANSI colors for the code overlay.
// Unknown languages fall back to the raw text.
func (b CodeBlock) Highlight(dark bool) string {
	style := "github"
	if dark {
		style = "monokai"
	}

	lang := b.Lang
	if lang == "" {
		lang = "text"
	}

	var sb strings.Builder
	if err := quick.Highlight(&sb, b.Code, lang, "terminal256", style); err != nil {
		return b.Code
	}
	return sb.String()
}
