// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// =============================================================================
// PLAIN RENDERER TESTS
// =============================================================================

func TestPlainRenderer_WritesDeltas(t *testing.T) {
	var buf bytes.Buffer
	r := NewPlainRenderer(&buf)
	acc := NewAccumulator()

	r.Render(acc.Feed("hello "))
	r.Render(acc.Feed("world"))

	// Each call writes only the new text, never re-emits the prefix.
	assert.Equal(t, "hello world", buf.String())
}

func TestPlainRenderer_FlushTerminatesLine(t *testing.T) {
	var buf bytes.Buffer
	r := NewPlainRenderer(&buf)
	acc := NewAccumulator()

	r.Render(acc.Feed("partial"))
	r.Flush(acc.Document())

	assert.Equal(t, "partial\n", buf.String())
}

func TestPlainRenderer_FlushEmpty(t *testing.T) {
	var buf bytes.Buffer
	r := NewPlainRenderer(&buf)
	r.Flush(NewAccumulator().Document())
	assert.Empty(t, buf.String())
}

// =============================================================================
// LIVE RENDERER TESTS
// =============================================================================

func TestLiveRenderer_FlushDrawsFrame(t *testing.T) {
	var buf bytes.Buffer
	r := NewLiveRenderer(&buf, 60, "dracula", "AI Assistant")
	acc := NewAccumulator()

	acc.Feed("some *markdown* text\n")
	r.Flush(acc.Document())

	out := buf.String()
	assert.NotEmpty(t, out)
	assert.Contains(t, out, "AI Assistant")
}

func TestLiveRenderer_RenderThrottles(t *testing.T) {
	var buf bytes.Buffer
	r := NewLiveRenderer(&buf, 60, "dracula", "AI")
	acc := NewAccumulator()

	// Burst of updates: only the first frame gets through the limiter.
	r.Render(acc.Feed("a"))
	first := buf.Len()
	r.Render(acc.Feed("b"))
	r.Render(acc.Feed("c"))

	assert.Positive(t, first)
	assert.Equal(t, first, buf.Len())
}

// =============================================================================
// HIGHLIGHT TESTS
// =============================================================================

func TestHighlight_NumbersLines(t *testing.T) {
	out := Highlight("x = 1\ny = 2\n", "python", "dracula", 60)
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "1")
	assert.Contains(t, lines[1], "2")
}

func TestHighlight_UnknownLanguage(t *testing.T) {
	// Unknown languages still render, falling back to a guessed or
	// plain lexer.
	out := Highlight("just words", "nosuchlang", "dracula", 60)
	assert.Contains(t, out, "just words")
}

// =============================================================================
// PANEL WIDTH TESTS
// =============================================================================

func TestPanelWidth(t *testing.T) {
	tests := []struct {
		name string
		term int
		want int
	}{
		{"narrow terminal keeps margin", 80, 76},
		{"maximized uses 80 percent", 200, 160},
		{"tiny floors at minimum", 10, 20},
		{"unknown defaults", 0, 76},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, PanelWidth(tc.term))
		})
	}
}
