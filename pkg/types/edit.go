// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package types defines shared types used across go-edit packages.
// Implements: prd001-block-locator R1 (Span, MatchStage);
//
//	prd002-patch-engine R1, R2 (EditOperation, EditStatus);
//	prd002-patch-engine R6 (Diagnostic).
package types

import "fmt"

// Span is a 1-based, inclusive line range within a line sequence.
// StartLine <= EndLine except for empty spans, which mark an insertion
// point with EndLine = StartLine - 1.
type Span struct {
	StartLine int
	EndLine   int
}

// Len returns the number of lines the span covers.
func (s Span) Len() int {
	return s.EndLine - s.StartLine + 1
}

// Empty reports whether the span covers no lines.
func (s Span) Empty() bool {
	return s.EndLine < s.StartLine
}

// EditStatus tracks the lifecycle of a single edit within one patch run.
type EditStatus int

const (
	Pending EditStatus = iota // Not yet resolved
	Applied                   // Old block found and replaced
	SkippedAlreadyApplied     // New block already present; nothing to do
	Unresolved                // No match after the pass budget
)

func (s EditStatus) String() string {
	switch s {
	case Pending:
		return "pending"
	case Applied:
		return "applied"
	case SkippedAlreadyApplied:
		return "skipped_already_applied"
	case Unresolved:
		return "unresolved"
	default:
		return "unknown"
	}
}

// EditOperation is one search/replace unit within a patch batch. An empty
// OldBlock (or one reducing to a single empty string) denotes an insertion.
// The blocks are immutable once the batch is handed to the engine; only
// Status, Stage, and Note are written during application.
type EditOperation struct {
	OldBlock []string   // Lines to locate (empty for insertion)
	NewBlock []string   // Replacement lines
	Status   EditStatus // Resolution after the engine runs
	Stage    MatchStage // Locator stage that found the old block
	Note     string     // Human-readable detail for skipped/unresolved edits
}

// MatchStage identifies which locator strategy produced a match.
type MatchStage int

const (
	StageExact      MatchStage = iota // Case-insensitive line equality
	StageTrimmed                      // Trimmed-line equality
	StageSubstring                    // Single-line substring
	StageAnchor                       // First/last line anchors
	StageSubBlock                     // Shrinking-window sub-block
	StageStructural                   // Syntax-tree node match
	StageNormalized                   // Comment-stripped normalized text
	StageNone                         // No match found
)

func (s MatchStage) String() string {
	switch s {
	case StageExact:
		return "exact"
	case StageTrimmed:
		return "trimmed"
	case StageSubstring:
		return "substring"
	case StageAnchor:
		return "anchor"
	case StageSubBlock:
		return "subblock"
	case StageStructural:
		return "structural"
	case StageNormalized:
		return "normalized"
	case StageNone:
		return "none"
	default:
		return "unknown"
	}
}

// Diagnostic describes why a block failed to locate, with enough detail
// for the feedback loop to format a useful message for the LLM.
type Diagnostic struct {
	Path         string  // File where the match was attempted
	SearchText   string  // What we searched for
	ClosestStart int     // Starting line of the closest region (1-based, 0 if none)
	ClosestEnd   int     // Ending line of the closest region (1-based)
	Similarity   float64 // Similarity score of the closest region (0.0-1.0)
}

func (d Diagnostic) Error() string {
	if d.ClosestStart == 0 {
		return fmt.Sprintf("no match found in %s", d.Path)
	}
	return fmt.Sprintf("no match in %s (closest region at lines %d-%d, similarity %.2f)",
		d.Path, d.ClosestStart, d.ClosestEnd, d.Similarity)
}
