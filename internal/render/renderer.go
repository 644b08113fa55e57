// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

// Renderer is a display backend for streaming documents. One
// implementation is selected at startup based on the environment:
// LiveRenderer for interactive terminals, PlainRenderer for pipes and
// other non-TTY outputs.
type Renderer interface {
	// Render displays the document, replacing any previous live output.
	// Implementations may drop frames to cap the refresh rate.
	Render(doc Document)

	// Flush displays the final document unconditionally. Called once
	// when the fragment sequence ends or is interrupted.
	Flush(doc Document)

	// Clear erases any live output that has not been flushed.
	Clear()
}
