// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Implements: prd001-block-locator R7;
//
//	docs/ARCHITECTURE § Block Locator.
package locate

import "strings"

// Normalize reduces text to a comment-free, whitespace-collapsed,
// lowercased form. Both sides of a comparison are normalized, so the
// transformation does not need to be language-exact; it only needs to be
// symmetric.
func Normalize(text string) string {
	text = StripComments(text)
	text = strings.ToLower(text)
	return strings.Join(strings.Fields(text), " ")
}

// StripComments removes line comments (//, #, --) and block comments
// (/* */, <!-- -->) for the common comment styles. String literals are
// not tracked; a marker inside a string is stripped on both sides of a
// comparison alike.
func StripComments(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	i := 0
	for i < len(text) {
		rest := text[i:]
		switch {
		case strings.HasPrefix(rest, "/*"):
			end := strings.Index(rest[2:], "*/")
			if end < 0 {
				return b.String() // unterminated: drop the remainder
			}
			i += 2 + end + 2
		case strings.HasPrefix(rest, "<!--"):
			end := strings.Index(rest[4:], "-->")
			if end < 0 {
				return b.String()
			}
			i += 4 + end + 3
		case strings.HasPrefix(rest, "//"), strings.HasPrefix(rest, "#"), strings.HasPrefix(rest, "--"):
			nl := strings.IndexByte(rest, '\n')
			if nl < 0 {
				return b.String()
			}
			i += nl // keep the newline for the whitespace pass
		default:
			b.WriteByte(text[i])
			i++
		}
	}
	return b.String()
}
