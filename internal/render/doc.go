// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render implements the incremental streaming-render pipeline.
//
// The pipeline consumes text fragments as they arrive from a streaming
// model response, accumulates them, detects fenced-code regions inside
// the growing text, and rebuilds a renderable document after every
// fragment. Prose spans are rendered as markdown; closed code spans are
// rendered with syntax highlighting. An unclosed fence is displayed as
// plain prose until its closing fence arrives.
//
// # Key Types
//
//   - Accumulator: per-response fragment accumulator with fence tracking
//   - Document: ordered prose/code segments over the accumulated text
//   - Renderer: display backend interface with live (TTY) and plain
//     (pipe) implementations, selected once at startup
//
// # Usage
//
//	acc := render.NewAccumulator()
//	r := render.NewLiveRenderer(os.Stdout, width, "dracula", "AI Assistant")
//	for chunk := range chunks {
//	    r.Render(acc.Feed(chunk))
//	}
//	r.Flush(acc.Document())
//
// Fence detection registers at most one open/close transition per
// fragment. Fragments delivered by token streams virtually never carry
// two markers, so in practice every marker is seen; see Accumulator.Feed
// for the precise rule.
package render
