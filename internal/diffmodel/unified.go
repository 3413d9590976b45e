// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Implements: prd003-diff-model R3, R4;
//
//	docs/ARCHITECTURE § Diff Model.
package diffmodel

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/petar-djukic/go-edit/internal/lines"

	"github.com/sergi/go-diff/diffmatchpatch"
)

const fingerprintLen = 16

// Unified renders a zero-context unified diff between the two line
// sequences. Equal inputs yield the empty string.
func Unified(oldLines, newLines []string, oldLabel, newLabel string) string {
	type region struct {
		oldStart, oldCount int
		newStart, newCount int
		body               []string
	}

	var (
		regions []region
		cur     *region
		oldLn   = 1
		newLn   = 1
	)

	flush := func() {
		if cur != nil {
			regions = append(regions, *cur)
			cur = nil
		}
	}
	open := func() {
		if cur == nil {
			cur = &region{oldStart: oldLn, newStart: newLn}
		}
	}

	for _, d := range lineDiffs(oldLines, newLines) {
		segment := lines.Split(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			flush()
			oldLn += len(segment)
			newLn += len(segment)
		case diffmatchpatch.DiffDelete:
			open()
			for _, l := range segment {
				cur.body = append(cur.body, "-"+l)
			}
			cur.oldCount += len(segment)
			oldLn += len(segment)
		case diffmatchpatch.DiffInsert:
			open()
			for _, l := range segment {
				cur.body = append(cur.body, "+"+l)
			}
			cur.newCount += len(segment)
			newLn += len(segment)
		}
	}
	flush()

	if len(regions) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "--- %s\n", oldLabel)
	fmt.Fprintf(&b, "+++ %s\n", newLabel)
	for _, r := range regions {
		// Unified convention: a zero-count range names the line before it.
		os, ns := r.oldStart, r.newStart
		if r.oldCount == 0 {
			os--
		}
		if r.newCount == 0 {
			ns--
		}
		fmt.Fprintf(&b, "@@ -%d,%d +%d,%d @@\n", os, r.oldCount, ns, r.newCount)
		for _, l := range r.body {
			b.WriteString(l)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Fingerprint returns a compact digest of a rendered diff, used to
// detect "nothing further changed" across repeated patch attempts.
func Fingerprint(diff string) string {
	sum := sha256.Sum256([]byte(diff))
	return hex.EncodeToString(sum[:])[:fingerprintLen]
}
