// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package lines converts between text and the line sequences every core
// component operates on: ordered slices of strings with no trailing
// newline per element.
// Implements: prd002-patch-engine R1.1;
//
//	docs/ARCHITECTURE § Data Model.
package lines

import (
	"slices"
	"strings"

	"github.com/petar-djukic/go-edit/pkg/types"
)

// Split converts text into a line sequence. CRLF and lone CR line endings
// are normalized to LF first. A trailing newline does not produce a final
// empty element; empty input produces nil.
func Split(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	out := strings.Split(text, "\n")
	if out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out
}

// Join converts a line sequence back into text. Non-empty content is
// always newline-terminated; an empty sequence yields the empty string.
func Join(seq []string) string {
	if len(seq) == 0 {
		return ""
	}
	return strings.Join(seq, "\n") + "\n"
}

// Clone returns an independent copy of the sequence.
func Clone(seq []string) []string {
	return slices.Clone(seq)
}

// Splice returns a copy of doc with the span's lines replaced by repl.
// An empty span (EndLine = StartLine-1) inserts repl before StartLine.
func Splice(doc []string, span types.Span, repl []string) []string {
	out := make([]string, 0, len(doc)-span.Len()+len(repl))
	out = append(out, doc[:span.StartLine-1]...)
	out = append(out, repl...)
	out = append(out, doc[span.EndLine:]...)
	return out
}
