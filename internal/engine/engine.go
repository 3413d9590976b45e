// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package engine applies a batch of search/replace edits to one file's
// content. Application is best-effort and partial: unresolved edits are
// reported, never fatal. Input edit order carries no meaning except
// where target spans genuinely overlap, in which case discovery order
// within a pass decides.
// Implements: prd002-patch-engine R1-R6;
//
//	docs/ARCHITECTURE § Patch Engine.
package engine

import (
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/petar-djukic/go-edit/internal/diffmodel"
	"github.com/petar-djukic/go-edit/internal/lines"
	"github.com/petar-djukic/go-edit/internal/locate"
	"github.com/petar-djukic/go-edit/pkg/types"

	"github.com/rs/zerolog"
)

// maxPasses bounds the apply loop. Chained edits (one edit's old text is
// another's new text) settle within two passes; the third absorbs
// overlap deferrals.
const maxPasses = 3

// MalformedEditError aborts an entire batch: a corrupt edit cannot be
// partially trusted, so nothing from its batch is applied.
type MalformedEditError struct {
	Index int // 1-based position of the edit within the batch
}

func (e *MalformedEditError) Error() string {
	return fmt.Sprintf("edit %d: malformed text encoding", e.Index)
}

// Engine applies edit batches using a block locator for matching.
type Engine struct {
	loc *locate.Locator
	log zerolog.Logger
}

// New creates an Engine around the given locator.
func New(loc *locate.Locator, log zerolog.Logger) *Engine {
	return &Engine{loc: loc, log: log}
}

// located pairs a pending edit with the span found for it this pass.
type located struct {
	ed    *types.EditOperation
	span  types.Span
	stage types.MatchStage
}

// Apply runs the batch against content and returns the new content with
// per-edit resolution, counts, a unified diff, and its fingerprint.
// content is not mutated. The only fatal condition is a malformed edit
// encoding, which rejects the whole batch with a position-qualified
// error before anything is applied.
func (e *Engine) Apply(path string, content []string, edits []*types.EditOperation) (*types.PatchResult, error) {
	if err := validateBatch(edits); err != nil {
		return nil, err
	}

	working := lines.Clone(content)

	var applied, skipped int
	pending := make([]*types.EditOperation, 0, len(edits))
	for _, ed := range edits {
		if isInsertion(ed) && len(ed.NewBlock) == 0 {
			ed.Status = types.Unresolved
			ed.Note = "edit has no content on either side"
			continue
		}
		ed.Status = types.Pending
		ed.Stage = types.StageNone
		pending = append(pending, ed)
	}

	passCount := 0
	for pass := 1; pass <= maxPasses && len(pending) > 0; pass++ {
		passCount = pass
		progressed := false

		var (
			next       []*types.EditOperation
			found      []located
			insertions []*types.EditOperation
		)

		// Locate every still-pending replacement against the full
		// current working content; on a miss, check whether the edit is
		// already applied before keeping it pending.
		for _, ed := range pending {
			if isInsertion(ed) {
				insertions = append(insertions, ed)
				continue
			}
			if m, ok := e.loc.Locate(working, ed.OldBlock, locate.Options{}); ok {
				found = append(found, located{ed: ed, span: m.Span, stage: m.Stage})
				continue
			}
			if _, ok := e.loc.Locate(working, ed.NewBlock, locate.Options{}); ok {
				ed.Status = types.SkippedAlreadyApplied
				ed.Note = "replacement text already present"
				skipped++
				progressed = true
				continue
			}
			next = append(next, ed)
		}

		// Greedy left-to-right selection; overlapping spans defer to the
		// next pass. Stable sort keeps batch order as the tiebreak, so
		// overlap resolution follows discovery order.
		sort.SliceStable(found, func(i, j int) bool {
			if found[i].span.StartLine != found[j].span.StartLine {
				return found[i].span.StartLine < found[j].span.StartLine
			}
			return found[i].span.Len() < found[j].span.Len()
		})

		lastEnd := 0
		selected := found[:0]
		for _, f := range found {
			if f.span.StartLine <= lastEnd {
				next = append(next, f.ed)
				continue
			}
			selected = append(selected, f)
			lastEnd = f.span.EndLine
		}

		// Apply left-to-right. Earlier splices shift line numbers, so
		// each edit is re-located immediately before its splice.
		for _, f := range selected {
			m, ok := e.loc.Locate(working, f.ed.OldBlock, locate.Options{})
			if !ok {
				next = append(next, f.ed)
				continue
			}
			span := m.Span
			base := baseIndent(working[span.StartLine-1 : span.EndLine])
			working = lines.Splice(working, span, rebase(f.ed.NewBlock, base))

			f.ed.Status = types.Applied
			f.ed.Stage = m.Stage
			applied++
			progressed = true
		}

		// Insertions have no textual anchor; placement is policy. An
		// insertion whose content is already present is idempotent.
		for _, ed := range insertions {
			if _, ok := e.loc.Locate(working, ed.NewBlock, locate.Options{}); ok {
				ed.Status = types.SkippedAlreadyApplied
				ed.Note = "inserted text already present"
				skipped++
				progressed = true
				continue
			}
			if pass == 1 {
				working = append(lines.Clone(ed.NewBlock), working...)
			} else {
				working = append(working, ed.NewBlock...)
			}
			ed.Status = types.Applied
			applied++
			progressed = true
		}

		pending = next
		if !progressed {
			break
		}
	}

	// The pass budget is spent; whatever is left is unresolved, with the
	// closest region recorded to help the feedback loop.
	for _, ed := range pending {
		ed.Status = types.Unresolved
		if span, sim, ok := e.loc.Closest(working, ed.OldBlock); ok {
			ed.Note = types.Diagnostic{
				Path:         path,
				ClosestStart: span.StartLine,
				ClosestEnd:   span.EndLine,
				Similarity:   sim,
			}.Error()
		} else {
			ed.Note = "no similar region found"
		}
	}

	unresolved := 0
	for _, ed := range edits {
		if ed.Status == types.Unresolved {
			unresolved++
		}
	}

	diff := diffmodel.Unified(content, working, "a/"+path, "b/"+path)
	res := &types.PatchResult{
		Path:            path,
		Content:         working,
		Edits:           edits,
		AppliedCount:    applied,
		SkippedCount:    skipped,
		UnresolvedCount: unresolved,
		PassCount:       passCount,
		Diff:            diff,
		Fingerprint:     diffmodel.Fingerprint(diff),
	}
	if applied == 0 {
		if skipped > 0 {
			res.Outcome = types.OutcomeAlreadyApplied
		} else {
			res.Outcome = types.OutcomeNoReplacements
		}
	}

	e.log.Debug().
		Str("path", path).
		Int("applied", applied).
		Int("skipped", skipped).
		Int("unresolved", unresolved).
		Int("passes", passCount).
		Msg("patch batch applied")

	return res, nil
}

// validateBatch rejects edits whose text is not valid UTF-8. A single
// corrupt edit fails the whole batch.
func validateBatch(edits []*types.EditOperation) error {
	for i, ed := range edits {
		for _, l := range ed.OldBlock {
			if !utf8.ValidString(l) {
				return &MalformedEditError{Index: i + 1}
			}
		}
		for _, l := range ed.NewBlock {
			if !utf8.ValidString(l) {
				return &MalformedEditError{Index: i + 1}
			}
		}
	}
	return nil
}

// isInsertion reports whether an edit has no old block to find. An old
// block that line-splitting reduced to a single empty string counts.
func isInsertion(ed *types.EditOperation) bool {
	return len(ed.OldBlock) == 0 || (len(ed.OldBlock) == 1 && ed.OldBlock[0] == "")
}
