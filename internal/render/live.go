// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/time/rate"
)

// refreshPerSecond caps how often the live frame is redrawn. The final
// frame is always drawn through Flush regardless of the cap.
const refreshPerSecond = 10

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("10")).
			Padding(0, 1)
)

// =============================================================================
// LIVE RENDERER
// =============================================================================

// LiveRenderer redraws a formatted panel in place on every update:
// prose segments go through the markdown renderer, code segments get
// syntax highlighting, and the previous frame is erased with cursor
// control before the new one is written.
type LiveRenderer struct {
	w       io.Writer
	out     *termenv.Output
	md      *glamour.TermRenderer
	theme   string
	width   int
	title   string
	limiter *rate.Limiter
	lines   int // height of the frame currently on screen
}

// NewLiveRenderer creates a live renderer writing to w. width is the
// panel width in cells, theme names the syntax-highlight style, and
// title is shown above the panel (e.g. "AI Assistant · mistral").
func NewLiveRenderer(w io.Writer, width int, theme, title string) *LiveRenderer {
	if width < 20 {
		width = 20
	}

	// Markdown renderer failure is non-fatal: prose falls back to raw text.
	md, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width-4),
	)
	if err != nil {
		md = nil
	}

	return &LiveRenderer{
		w:       w,
		out:     termenv.NewOutput(w),
		md:      md,
		theme:   theme,
		width:   width,
		title:   title,
		limiter: rate.NewLimiter(rate.Limit(refreshPerSecond), 1),
	}
}

// Render redraws the panel, dropping the frame when updates arrive
// faster than the refresh cap.
func (r *LiveRenderer) Render(doc Document) {
	if !r.limiter.Allow() {
		return
	}
	r.draw(doc)
}

// Flush redraws the final panel unconditionally and leaves it on screen.
func (r *LiveRenderer) Flush(doc Document) {
	r.draw(doc)
	r.lines = 0
}

// Clear erases the live frame.
func (r *LiveRenderer) Clear() {
	if r.lines > 0 {
		r.out.ClearLines(r.lines)
		r.lines = 0
	}
}

func (r *LiveRenderer) draw(doc Document) {
	frame := r.format(doc)
	if r.lines > 0 {
		r.out.ClearLines(r.lines)
	}
	fmt.Fprint(r.w, frame)
	r.lines = strings.Count(frame, "\n")
}

// format builds the full frame: title line plus a bordered panel with
// each segment rendered according to its kind.
func (r *LiveRenderer) format(doc Document) string {
	var body strings.Builder
	for _, seg := range doc.Segments {
		switch seg.Kind {
		case SegmentCode:
			body.WriteString(Highlight(seg.Text, seg.Language, r.theme, r.width-4))
			body.WriteString("\n")
		default:
			body.WriteString(r.renderMarkdown(seg.Text))
		}
	}

	panel := panelStyle.Width(r.width - 2).Render(strings.TrimRight(body.String(), "\n"))
	return titleStyle.Render(r.title) + "\n" + panel + "\n"
}

// renderMarkdown renders prose for terminal display. Returns the text
// unchanged if the renderer is unavailable or fails.
func (r *LiveRenderer) renderMarkdown(content string) string {
	if r.md == nil {
		return content
	}
	rendered, err := r.md.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(rendered, "\n") + "\n"
}

// =============================================================================
// PANEL WIDTH
// =============================================================================

// PanelWidth computes the display width for response panels. Wide
// terminals (likely maximized) use 80% of the available width; narrow
// ones keep a small margin so the border never wraps.
func PanelWidth(termWidth int) int {
	if termWidth <= 0 {
		termWidth = 80
	}
	width := termWidth - 4
	if termWidth >= 120 {
		width = termWidth * 8 / 10
	}
	if width < 20 {
		width = 20
	}
	return width
}

// TitleBar renders the assistant title with the model name as subtitle.
func TitleBar(title, model string) string {
	if model == "" {
		return title
	}
	return title + " " + subtitleStyle.Render("· "+model)
}
