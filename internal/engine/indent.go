// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Implements: prd002-patch-engine R4 (indentation re-basing);
//
//	docs/ARCHITECTURE § Patch Engine.
package engine

import "strings"

// leadingWhitespace returns the run of spaces and tabs at the start of a
// line.
func leadingWhitespace(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] != ' ' && s[i] != '\t' {
			return s[:i]
		}
	}
	return s
}

// baseIndent is the indentation a replacement block inherits: the
// shortest leading-whitespace prefix among the span's non-empty lines.
func baseIndent(span []string) string {
	base := ""
	found := false
	for _, l := range span {
		if strings.TrimSpace(l) == "" {
			continue
		}
		p := leadingWhitespace(l)
		if !found || len(p) < len(base) {
			base = p
			found = true
		}
	}
	return base
}

// commonIndent is the longest whitespace prefix shared by every
// non-empty line of a block.
func commonIndent(block []string) string {
	var common string
	first := true
	for _, l := range block {
		if strings.TrimSpace(l) == "" {
			continue
		}
		p := leadingWhitespace(l)
		if first {
			common = p
			first = false
			continue
		}
		common = commonPrefix(common, p)
		if common == "" {
			break
		}
	}
	return common
}

// rebase dedents a block to its own common indentation, then prefixes
// every non-empty line with base. Internal relative indentation is
// preserved; empty lines pass through untouched.
func rebase(block []string, base string) []string {
	common := commonIndent(block)
	out := make([]string, len(block))
	for i, l := range block {
		if strings.TrimSpace(l) == "" {
			out[i] = l
			continue
		}
		out[i] = base + strings.TrimPrefix(l, common)
	}
	return out
}

func commonPrefix(a, b string) string {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return a[:i]
}
