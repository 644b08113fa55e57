// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"fmt"
	"io"
	"strings"
)

// PlainRenderer writes raw response text as it arrives, with no ANSI
// control sequences and no formatting. Used when stdout is not a
// terminal (pipes, redirects, notebook-style frontends).
type PlainRenderer struct {
	w       io.Writer
	written int
}

// NewPlainRenderer creates a renderer that appends to w.
func NewPlainRenderer(w io.Writer) *PlainRenderer {
	return &PlainRenderer{w: w}
}

// Render writes only the text that arrived since the previous call.
func (r *PlainRenderer) Render(doc Document) {
	if len(doc.Raw) <= r.written {
		return
	}
	fmt.Fprint(r.w, doc.Raw[r.written:])
	r.written = len(doc.Raw)
}

// Flush writes any remaining text and terminates the line.
func (r *PlainRenderer) Flush(doc Document) {
	r.Render(doc)
	if r.written > 0 && !strings.HasSuffix(doc.Raw, "\n") {
		fmt.Fprintln(r.w)
	}
}

// Clear is a no-op: plain output is append-only.
func (r *PlainRenderer) Clear() {}
