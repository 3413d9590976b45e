// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package diffmodel computes zero-context line diffs between two versions
// of content and groups them into hunks for patch reporting and review.
// Implements: prd003-diff-model R1, R2;
//
//	docs/ARCHITECTURE § Diff Model.
package diffmodel

import (
	"slices"

	"github.com/petar-djukic/go-edit/internal/lines"
	"github.com/petar-djukic/go-edit/pkg/types"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Diff produces the hunks that turn oldLines into newLines, sorted by
// NewRange.StartLine and mutually non-overlapping. Equal inputs yield no
// hunks. Unequal inputs always yield at least one hunk: if the edit
// script degenerates to nothing, a single whole-content hunk is
// synthesized so callers never see "no hunks" for content that differs.
func Diff(oldLines, newLines []string) []types.Hunk {
	if slices.Equal(oldLines, newLines) {
		return nil
	}

	hunks := group(lineDiffs(oldLines, newLines))
	if len(hunks) == 0 {
		return []types.Hunk{{
			OldLines: lines.Clone(oldLines),
			NewLines: lines.Clone(newLines),
			NewRange: types.Span{StartLine: 1, EndLine: len(newLines)},
		}}
	}
	return hunks
}

// lineDiffs runs the line-mode character trick: each distinct line
// becomes one rune, the diff runs over runes, and the result is mapped
// back to line text.
func lineDiffs(oldLines, newLines []string) []diffmatchpatch.Diff {
	oldText := lines.Join(oldLines)
	newText := lines.Join(newLines)

	dmp := diffmatchpatch.New()
	a, b, arr := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffMain(a, b, false)
	return dmp.DiffCharsToLines(diffs, arr)
}

// group folds contiguous delete/insert runs into hunks, tracking line
// cursors on both sides.
func group(diffs []diffmatchpatch.Diff) []types.Hunk {
	var (
		hunks    []types.Hunk
		cur      *types.Hunk
		newStart int
		oldLn    = 1
		newLn    = 1
	)

	flush := func() {
		if cur == nil {
			return
		}
		cur.NewRange = types.Span{StartLine: newStart, EndLine: newLn - 1}
		hunks = append(hunks, *cur)
		cur = nil
	}

	for _, d := range diffs {
		segment := lines.Split(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			flush()
			oldLn += len(segment)
			newLn += len(segment)
		case diffmatchpatch.DiffDelete:
			if cur == nil {
				cur = &types.Hunk{}
				newStart = newLn
			}
			cur.OldLines = append(cur.OldLines, segment...)
			oldLn += len(segment)
		case diffmatchpatch.DiffInsert:
			if cur == nil {
				cur = &types.Hunk{}
				newStart = newLn
			}
			cur.NewLines = append(cur.NewLines, segment...)
			newLn += len(segment)
		}
	}
	flush()

	return hunks
}
