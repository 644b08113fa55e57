// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

var lineNumStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("8")).
	Width(4).
	Align(lipgloss.Right).
	MarginRight(1)

// Highlight renders code with syntax highlighting and line numbers.
// language may be empty, in which case the lexer is guessed from the
// content. theme names a chroma style (e.g. "dracula"). Lines longer
// than width are truncated so the surrounding panel never wraps.
func Highlight(code, language, theme string, width int) string {
	code = strings.TrimRight(code, "\n")

	highlighted := highlightChroma(code, language, theme)

	var out strings.Builder
	for i, line := range strings.Split(highlighted, "\n") {
		if i > 0 {
			out.WriteString("\n")
		}
		out.WriteString(lineNumStyle.Render(fmt.Sprintf("%d", i+1)))
		out.WriteString(truncateLine(line, width-6))
	}
	return out.String()
}

// highlightChroma runs the chroma pipeline, returning the code
// unchanged if tokenising or formatting fails.
func highlightChroma(code, language, theme string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get(theme)
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return strings.TrimRight(buf.String(), "\n")
}

// truncateLine caps the display width of a single line, accounting for
// wide runes. ANSI-styled lines are measured by lipgloss first; plain
// truncation only applies when the visible width overflows.
func truncateLine(line string, width int) string {
	if width <= 0 {
		return line
	}
	if lipgloss.Width(line) <= width {
		return line
	}
	return runewidth.Truncate(line, width, "…")
}
