// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"strings"
	"testing"
)

// =============================================================================
// CODE BLOCK EXTRACTION
// =============================================================================

func TestExtractCodeBlocksBasic(t *testing.T) {
	md := "Here you go:\n\n```go\nfunc main() {}\n```\n\nDone."

	blocks := ExtractCodeBlocks(md)
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if blocks[0].Lang != "go" {
		t.Errorf("lang = %q, want go", blocks[0].Lang)
	}
	if blocks[0].Code != "func main() {}" {
		t.Errorf("code = %q", blocks[0].Code)
	}
}

func TestExtractCodeBlocksMultiple(t *testing.T) {
	md := "```python\nprint(1)\n```\ntext\n```\nplain\n```\n"

	blocks := ExtractCodeBlocks(md)
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if blocks[0].Lang != "python" {
		t.Errorf("first lang = %q", blocks[0].Lang)
	}
	if blocks[1].Lang != "" {
		t.Errorf("second lang = %q, want empty", blocks[1].Lang)
	}
	if blocks[1].Code != "plain" {
		t.Errorf("second code = %q", blocks[1].Code)
	}
}

func TestExtractCodeBlocksNoBlocks(t *testing.T) {
	if blocks := ExtractCodeBlocks("just prose, no fences"); len(blocks) != 0 {
		t.Fatalf("expected no blocks, got %d", len(blocks))
	}
}

func TestExtractCodeBlocksUnclosedFence(t *testing.T) {
	// A fence the reply never closes yields no block rather than
	// swallowing the rest of the text into one.
	blocks := ExtractCodeBlocks("```go\nfunc main() {}\n")
	if len(blocks) != 0 {
		t.Fatalf("expected no blocks for unclosed fence, got %d", len(blocks))
	}
}

func TestExtractCodeBlocksLongerFence(t *testing.T) {
	// A four-backtick fence can contain a three-backtick run as content.
	md := "````markdown\nexample:\n```go\ncode\n```\n````\n"

	blocks := ExtractCodeBlocks(md)
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if !strings.Contains(blocks[0].Code, "```go") {
		t.Errorf("inner fence lost: %q", blocks[0].Code)
	}
}

func TestExtractCodeBlocksPreservesBlankLines(t *testing.T) {
	md := "```\na\n\nb\n```"

	blocks := ExtractCodeBlocks(md)
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if blocks[0].Code != "a\n\nb" {
		t.Errorf("code = %q", blocks[0].Code)
	}
}

func TestHighlightUnknownLanguageFallsBack(t *testing.T) {
	b := CodeBlock{Lang: "", Code: "some text"}
	out := b.Highlight(true)
	if !strings.Contains(out, "some text") {
		t.Errorf("highlight lost the content: %q", out)
	}
}
