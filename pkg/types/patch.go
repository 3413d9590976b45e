// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Implements: prd002-patch-engine R5;
//
//	docs/ARCHITECTURE § Patch Engine.
package types

// Patch outcome notes for runs that changed nothing. Both are best-effort
// statuses, not errors.
const (
	OutcomeNoReplacements = "no replacements made"
	OutcomeAlreadyApplied = "already applied, nothing to do"
)

// PatchResult summarizes one engine run over a single file's content.
type PatchResult struct {
	Path            string           // File the batch was applied to
	Content         []string         // Content after application
	Edits           []*EditOperation // The batch, with per-edit resolution filled in
	AppliedCount    int
	SkippedCount    int
	UnresolvedCount int
	PassCount       int    // Passes actually executed (1-3)
	Diff            string // Unified diff, input content vs Content
	Fingerprint     string // Compact digest of Diff, for change detection across runs
	Outcome         string // Set when nothing was applied; empty otherwise
	IssueCount      int    // Diagnostics reported against Content (summary only)
}

// Changed reports whether the run modified the content at all.
func (r *PatchResult) Changed() bool {
	return r.AppliedCount > 0
}
