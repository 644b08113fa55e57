// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import "strings"

// fenceMarker is the literal fence delimiter in markdown.
const fenceMarker = "```"

// region is a closed [start, end) byte range into the accumulated text.
type region struct {
	start, end int
}

// =============================================================================
// ACCUMULATOR
// =============================================================================

// Accumulator collects response fragments and tracks fenced-code regions
// inside the growing text. It is created fresh for each response and
// discarded when the response completes or is interrupted.
//
// Invariants: closed regions are disjoint and strictly increasing; an
// open region, when present, starts after the end of the last closed
// region. Accumulated text grows monotonically and is never truncated.
//
// Fence detection is fragment-granular: at most one open or close
// transition is registered per fragment, even if a fragment contains the
// marker more than once. Token streams deliver fragments far smaller
// than two markers, so this is harmless in practice.
type Accumulator struct {
	text    strings.Builder
	regions []region
	open    int // byte offset of the open fence, -1 when none
}

// NewAccumulator creates an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{open: -1}
}

// Feed appends a fragment to the accumulated text, updates fence state,
// and returns the rebuilt document over everything seen so far. Later
// fragments can close regions opened earlier, so segment boundaries for
// the trailing (open or absent) region may change between calls; closed
// regions are never revised.
func (a *Accumulator) Feed(fragment string) Document {
	base := a.text.Len()
	a.text.WriteString(fragment)

	if idx := strings.Index(fragment, fenceMarker); idx >= 0 {
		if a.open < 0 {
			a.open = base + idx
		} else {
			a.regions = append(a.regions, region{a.open, base + idx + len(fenceMarker)})
			a.open = -1
		}
	}

	return a.Document()
}

// Text returns the full accumulated response text.
func (a *Accumulator) Text() string {
	return a.text.String()
}

// Len returns the length of the accumulated text in bytes.
func (a *Accumulator) Len() int {
	return a.text.Len()
}

// ClosedRegions returns the number of completed fenced-code regions.
func (a *Accumulator) ClosedRegions() int {
	return len(a.regions)
}

// Open reports whether a fence has been opened but not yet closed.
func (a *Accumulator) Open() bool {
	return a.open >= 0
}

// Document rebuilds the segment view over the accumulated text: prose
// gaps between closed code regions, the code regions themselves, and a
// trailing prose segment covering everything after the last closed
// region. The contents of a still-open fence stay plain prose until
// the closing marker arrives.
func (a *Accumulator) Document() Document {
	text := a.text.String()
	segments := make([]Segment, 0, 2*len(a.regions)+1)

	last := 0
	for _, r := range a.regions {
		if r.start > last {
			segments = append(segments, Segment{Kind: SegmentProse, Text: text[last:r.start]})
		}
		lang, body := splitFence(text[r.start:r.end])
		segments = append(segments, Segment{Kind: SegmentCode, Text: body, Language: lang})
		last = r.end
	}
	if last < len(text) {
		segments = append(segments, Segment{Kind: SegmentProse, Text: text[last:]})
	}

	return Document{Raw: text, Segments: segments}
}

// =============================================================================
// FENCE PARSING
// =============================================================================

// splitFence strips the fence markers from a closed region and separates
// a leading language annotation (e.g. "```python\n") from the code body.
func splitFence(s string) (lang, body string) {
	s = strings.TrimPrefix(s, fenceMarker)
	s = strings.TrimSuffix(s, fenceMarker)

	nl := strings.IndexByte(s, '\n')
	if nl < 0 {
		return "", s
	}

	first := strings.TrimSpace(s[:nl])
	if isLanguageTag(first) {
		return first, s[nl+1:]
	}
	return "", s
}

// isLanguageTag reports whether a fence info string looks like a plain
// language name (letters, digits, and the few symbols real tags use).
func isLanguageTag(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '+' || r == '-' || r == '#' || r == '.' || r == '_':
		default:
			return false
		}
	}
	return true
}
