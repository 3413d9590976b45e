// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Implements: prd003-diff-model R1;
//
//	docs/ARCHITECTURE § Diff Model.
package types

// Hunk is a contiguous region where two versions of content differ. It
// carries both sides of the change and the region's position in the new
// content. Hunks produced for one diff never overlap and are sorted by
// NewRange.StartLine. A pure deletion has no new lines and an empty
// NewRange marking where the old lines were removed.
type Hunk struct {
	OldLines []string
	NewLines []string
	NewRange Span
}
