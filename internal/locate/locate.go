// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package locate finds the best-effort span of a described text block
// inside a document. LLM-authored "old text" is frequently approximate
// (wrong whitespace, wrong casing, slightly wrong context), so a cascade
// of strategies is tried from strict to lenient, short-circuiting on the
// first sufficient match.
// Implements: prd001-block-locator R1-R8;
//
//	docs/ARCHITECTURE § Block Locator.
package locate

import (
	"strings"

	"github.com/petar-djukic/go-edit/pkg/types"

	"github.com/sergi/go-diff/diffmatchpatch"
)

const (
	// anchorMinLines is the minimum target length for the anchor and
	// shrinking sub-block stages.
	anchorMinLines = 3

	// Normalized-text windows range over the target length plus or minus
	// (length/windowSlackDiv + windowSlackBase) lines.
	windowSlackDiv  = 10
	windowSlackBase = 5
)

// StructuralMatcher locates a target block via syntax-tree comparison.
// Implementations parse the target standalone and search the document's
// parse tree within the given 1-based inclusive line window.
type StructuralMatcher interface {
	LocateNode(doc, target []string, lo, hi int) (types.Span, bool)
}

// Options constrains a search to a line window. Zero values mean the
// whole document.
type Options struct {
	StartHint int // 1-based first line of the window
	EndHint   int // 1-based last line of the window, inclusive
}

// Match is a successful location result.
type Match struct {
	Span  types.Span
	Stage types.MatchStage
}

// Locator runs the matching cascade. The structural stage is enabled
// only when a StructuralMatcher is configured.
type Locator struct {
	structural StructuralMatcher
}

// New creates a Locator. structural may be nil, which disables the
// syntax-tree stage.
func New(structural StructuralMatcher) *Locator {
	return &Locator{structural: structural}
}

// Locate finds target inside doc. Neither input is mutated. An empty
// target never matches: insertions are the caller's concern. If every
// stage fails inside the hinted window and the window does not start at
// line 1, the entire cascade is retried over the lines before the window.
func (l *Locator) Locate(doc, target []string, opts Options) (Match, bool) {
	if len(target) == 0 || len(doc) == 0 {
		return Match{Stage: types.StageNone}, false
	}

	lo, hi := clampWindow(opts, len(doc))

	if m, ok := l.cascade(doc, target, lo, hi); ok {
		return m, true
	}

	// Wrap-around retry over the prefix the hint excluded.
	if lo > 1 {
		if m, ok := l.cascade(doc, target, 1, lo-1); ok {
			return m, true
		}
	}

	return Match{Stage: types.StageNone}, false
}

// cascade tries every stage in order within [lo, hi].
func (l *Locator) cascade(doc, target []string, lo, hi int) (Match, bool) {
	if lo > hi {
		return Match{}, false
	}

	if span, ok := exactMatch(doc, target, lo, hi); ok {
		return Match{Span: span, Stage: types.StageExact}, true
	}

	if span, ok := trimmedMatch(doc, target, lo, hi); ok {
		return Match{Span: span, Stage: types.StageTrimmed}, true
	}

	if len(target) == 1 {
		if span, ok := substringMatch(doc, target[0], lo, hi); ok {
			return Match{Span: span, Stage: types.StageSubstring}, true
		}
	}

	if len(target) >= anchorMinLines {
		if span, ok := anchorMatch(doc, target, lo, hi); ok {
			return Match{Span: span, Stage: types.StageAnchor}, true
		}
		if span, ok := subBlockMatch(doc, target, lo, hi); ok {
			return Match{Span: span, Stage: types.StageSubBlock}, true
		}
	}

	if l.structural != nil {
		if span, ok := l.structural.LocateNode(doc, target, lo, hi); ok {
			return Match{Span: span, Stage: types.StageStructural}, true
		}
	}

	if span, ok := normalizedMatch(doc, target, lo, hi); ok {
		return Match{Span: span, Stage: types.StageNormalized}, true
	}

	return Match{}, false
}

// exactMatch requires every candidate line to equal the corresponding
// target line case-insensitively.
func exactMatch(doc, target []string, lo, hi int) (types.Span, bool) {
	n := len(target)
	for start := lo; start+n-1 <= hi; start++ {
		if foldEqual(doc[start-1:start-1+n], target) {
			return types.Span{StartLine: start, EndLine: start + n - 1}, true
		}
	}
	return types.Span{}, false
}

// trimmedMatch compares lines case-insensitively after stripping leading
// and trailing whitespace from both sides.
func trimmedMatch(doc, target []string, lo, hi int) (types.Span, bool) {
	n := len(target)
	trimmed := make([]string, n)
	for i, t := range target {
		trimmed[i] = strings.TrimSpace(t)
	}

	for start := lo; start+n-1 <= hi; start++ {
		match := true
		for j := 0; j < n; j++ {
			if !strings.EqualFold(strings.TrimSpace(doc[start-1+j]), trimmed[j]) {
				match = false
				break
			}
		}
		if match {
			return types.Span{StartLine: start, EndLine: start + n - 1}, true
		}
	}
	return types.Span{}, false
}

// substringMatch succeeds when the trimmed single-line target is a
// literal substring of a trimmed document line. A target that trims to
// nothing would match everywhere, so it is rejected.
func substringMatch(doc []string, target string, lo, hi int) (types.Span, bool) {
	t := strings.TrimSpace(target)
	if t == "" {
		return types.Span{}, false
	}
	for i := lo; i <= hi; i++ {
		if strings.Contains(strings.TrimSpace(doc[i-1]), t) {
			return types.Span{StartLine: i, EndLine: i}, true
		}
	}
	return types.Span{}, false
}

// anchorMatch accepts a candidate whose first and last trimmed lines
// equal the target's, regardless of the interior. Lenient on purpose:
// interior drift is common in LLM-quoted context.
func anchorMatch(doc, target []string, lo, hi int) (types.Span, bool) {
	n := len(target)
	first := strings.TrimSpace(target[0])
	last := strings.TrimSpace(target[n-1])

	for start := lo; start+n-1 <= hi; start++ {
		if strings.TrimSpace(doc[start-1]) == first &&
			strings.TrimSpace(doc[start+n-2]) == last {
			return types.Span{StartLine: start, EndLine: start + n - 1}, true
		}
	}
	return types.Span{}, false
}

// subBlockMatch trims lines off the top and/or bottom of the target,
// down to half its original length, and retries the trimmed-line
// comparison with each sub-block. Larger sub-blocks are tried first.
func subBlockMatch(doc, target []string, lo, hi int) (types.Span, bool) {
	n := len(target)
	minLen := (n + 1) / 2
	for size := n - 1; size >= minLen; size-- {
		for off := 0; off+size <= n; off++ {
			if span, ok := trimmedMatch(doc, target[off:off+size], lo, hi); ok {
				return span, true
			}
		}
	}
	return types.Span{}, false
}

// normalizedMatch strips comments, collapses whitespace, and lowercases
// both sides, then slides windows whose line count ranges over the
// target length plus or minus a slack proportional to that length.
func normalizedMatch(doc, target []string, lo, hi int) (types.Span, bool) {
	want := Normalize(strings.Join(target, "\n"))
	if want == "" {
		return types.Span{}, false
	}

	n := len(target)
	slack := n/windowSlackDiv + windowSlackBase
	minSize := n - slack
	if minSize < 1 {
		minSize = 1
	}
	maxSize := n + slack

	for start := lo; start <= hi; start++ {
		for size := minSize; size <= maxSize && start+size-1 <= hi; size++ {
			got := Normalize(strings.Join(doc[start-1:start-1+size], "\n"))
			if got == want {
				return types.Span{StartLine: start, EndLine: start + size - 1}, true
			}
		}
	}
	return types.Span{}, false
}

// Closest finds the region most similar to target, for diagnostics when
// every stage failed. Returns the best span and its similarity in
// [0, 1]; ok is false when the document is empty.
func (l *Locator) Closest(doc, target []string) (types.Span, float64, bool) {
	if len(doc) == 0 || len(target) == 0 {
		return types.Span{}, 0, false
	}

	size := len(target)
	if size > len(doc) {
		size = len(doc)
	}
	want := strings.Join(target, "\n")

	var (
		bestSpan types.Span
		bestSim  float64
	)
	for start := 1; start+size-1 <= len(doc); start++ {
		got := strings.Join(doc[start-1:start-1+size], "\n")
		sim := similarity(got, want)
		if sim > bestSim {
			bestSim = sim
			bestSpan = types.Span{StartLine: start, EndLine: start + size - 1}
		}
	}
	return bestSpan, bestSim, bestSim > 0
}

// similarity computes 1 - levenshtein/maxLen over a character diff.
func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1.0
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(a, b, false)
	distance := dmp.DiffLevenshtein(diffs)

	return 1.0 - float64(distance)/float64(maxLen)
}

// foldEqual reports per-line case-insensitive equality. Caller
// guarantees equal lengths.
func foldEqual(a, b []string) bool {
	for i := range b {
		if !strings.EqualFold(a[i], b[i]) {
			return false
		}
	}
	return true
}

// clampWindow resolves Options against the document length.
func clampWindow(opts Options, docLen int) (lo, hi int) {
	lo = opts.StartHint
	if lo < 1 {
		lo = 1
	}
	hi = opts.EndHint
	if hi < 1 || hi > docLen {
		hi = docLen
	}
	return lo, hi
}
