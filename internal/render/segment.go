// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

// =============================================================================
// SEGMENT TYPES
// =============================================================================

// SegmentKind classifies a span of accumulated response text.
type SegmentKind int

const (
	// SegmentProse is ordinary text, rendered as markdown.
	SegmentProse SegmentKind = iota
	// SegmentCode is a closed fenced-code region, rendered fixed-width
	// with syntax highlighting.
	SegmentCode
)

// Segment is one classified span of the accumulated text.
// For code segments, Text has the fence markers and any language
// annotation stripped; the annotation is kept in Language.
type Segment struct {
	Kind     SegmentKind
	Text     string
	Language string
}

// Document is the renderable view over the entire accumulated text,
// rebuilt after every fragment. Raw carries the unmodified accumulated
// text for backends that do not format (and for history persistence).
type Document struct {
	Raw      string
	Segments []Segment
}

// CodeSegments returns the number of closed code segments.
func (d Document) CodeSegments() int {
	n := 0
	for _, s := range d.Segments {
		if s.Kind == SegmentCode {
			n++
		}
	}
	return n
}
