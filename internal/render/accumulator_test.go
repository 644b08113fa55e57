// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// FENCE DETECTION TESTS
// =============================================================================

func TestAccumulator_FencePairing(t *testing.T) {
	acc := NewAccumulator()

	var doc Document
	for _, frag := range []string{"Here:\n```python\n", "def f(): pass\n", "```\ndone"} {
		doc = acc.Feed(frag)
	}

	require.Equal(t, 1, acc.ClosedRegions())
	assert.False(t, acc.Open())

	// prose "Here:\n", one code segment, trailing prose with "done"
	require.Len(t, doc.Segments, 3)
	assert.Equal(t, SegmentProse, doc.Segments[0].Kind)
	assert.Equal(t, "Here:\n", doc.Segments[0].Text)

	assert.Equal(t, SegmentCode, doc.Segments[1].Kind)
	assert.Equal(t, "python", doc.Segments[1].Language)
	assert.Equal(t, "def f(): pass\n", doc.Segments[1].Text)

	last := doc.Segments[len(doc.Segments)-1]
	assert.Equal(t, SegmentProse, last.Kind)
	assert.Contains(t, last.Text, "done")
}

func TestAccumulator_OpenFenceStaysProse(t *testing.T) {
	acc := NewAccumulator()
	acc.Feed("text before\n")
	doc := acc.Feed("```go\nfunc main() {}\n")

	// No closing fence yet: everything renders as one prose segment.
	assert.True(t, acc.Open())
	assert.Equal(t, 0, acc.ClosedRegions())
	require.Len(t, doc.Segments, 1)
	assert.Equal(t, SegmentProse, doc.Segments[0].Kind)
	assert.Equal(t, "text before\n```go\nfunc main() {}\n", doc.Segments[0].Text)
}

func TestAccumulator_CloseRevealsCodeSegment(t *testing.T) {
	acc := NewAccumulator()
	acc.Feed("```python\nx = 1\n")
	before := acc.Document()
	require.Len(t, before.Segments, 1)
	assert.Equal(t, SegmentProse, before.Segments[0].Kind)

	after := acc.Feed("```")
	require.GreaterOrEqual(t, len(after.Segments), 1)
	assert.Equal(t, SegmentCode, after.Segments[0].Kind)
	assert.Equal(t, "python", after.Segments[0].Language)
	assert.Equal(t, "x = 1\n", after.Segments[0].Text)
}

func TestAccumulator_MultipleBlocks(t *testing.T) {
	acc := NewAccumulator()
	var doc Document
	for _, frag := range []string{
		"first:\n", "```\n", "a\n", "```\n",
		"between\n", "```\n", "b\n", "```\n", "end",
	} {
		doc = acc.Feed(frag)
	}

	assert.Equal(t, 2, acc.ClosedRegions())
	assert.Equal(t, 2, doc.CodeSegments())

	// Closed regions are disjoint and ordered; prose fills the gaps.
	kinds := make([]SegmentKind, len(doc.Segments))
	for i, s := range doc.Segments {
		kinds[i] = s.Kind
	}
	assert.Equal(t, []SegmentKind{
		SegmentProse, SegmentCode, SegmentProse, SegmentCode, SegmentProse,
	}, kinds)
}

func TestAccumulator_OneTogglePerFragment(t *testing.T) {
	// A fragment carrying both markers registers only the opening
	// transition; the fence closes on the next marker-bearing fragment.
	acc := NewAccumulator()
	acc.Feed("```inline```")
	assert.True(t, acc.Open())
	assert.Equal(t, 0, acc.ClosedRegions())

	acc.Feed("\n```")
	assert.False(t, acc.Open())
	assert.Equal(t, 1, acc.ClosedRegions())
}

func TestAccumulator_RegionCountBound(t *testing.T) {
	// Closed regions never exceed floor(markers/2) with one marker per
	// fragment.
	acc := NewAccumulator()
	markers := 0
	for i := 0; i < 7; i++ {
		acc.Feed("```\n")
		markers++
	}
	assert.LessOrEqual(t, acc.ClosedRegions(), markers/2)
}

// =============================================================================
// ACCUMULATION TESTS
// =============================================================================

func TestAccumulator_TextGrowsMonotonically(t *testing.T) {
	acc := NewAccumulator()
	frags := []string{"a", "b", "", "c d e", "\n"}
	var want strings.Builder
	for _, f := range frags {
		want.WriteString(f)
		acc.Feed(f)
		assert.Equal(t, want.String(), acc.Text())
	}
	assert.Equal(t, want.Len(), acc.Len())
}

func TestAccumulator_EmptyDocument(t *testing.T) {
	acc := NewAccumulator()
	doc := acc.Document()
	assert.Empty(t, doc.Raw)
	assert.Empty(t, doc.Segments)
}

func TestAccumulator_RawCarriesFences(t *testing.T) {
	// Raw keeps the unmodified text: fences are stripped only in the
	// segment view, never from what gets persisted.
	acc := NewAccumulator()
	acc.Feed("```python\nx\n")
	doc := acc.Feed("```")
	assert.Equal(t, "```python\nx\n```", doc.Raw)
}

// =============================================================================
// FENCE PARSING TESTS
// =============================================================================

func TestSplitFence(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		wantLang string
		wantBody string
	}{
		{"python tag", "```python\nx = 1\n```", "python", "x = 1\n"},
		{"no tag", "```\nplain\n```", "", "\nplain\n"},
		{"c++ tag", "```c++\nint x;\n```", "c++", "int x;\n"},
		{"tag with spaces is body", "```not a tag\ncode\n```", "", "not a tag\ncode\n"},
		{"single line", "```x```", "", "x"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			lang, body := splitFence(tc.in)
			assert.Equal(t, tc.wantLang, lang)
			assert.Equal(t, tc.wantBody, body)
		})
	}
}
