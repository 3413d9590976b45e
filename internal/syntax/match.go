// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Implements: prd007-syntax-provider R3;
//
//	docs/ARCHITECTURE § Syntax Provider.
package syntax

import (
	"strings"

	"github.com/petar-djukic/go-edit/internal/lines"
	"github.com/petar-djukic/go-edit/pkg/types"

	sitter "github.com/smacker/go-tree-sitter"
)

// Matcher locates a target block inside a document by comparing parse
// trees, which makes the search insensitive to formatting, whitespace,
// and interior comments. It only engages when the target parses to
// exactly one significant top-level node.
type Matcher struct {
	lang *sitter.Language
}

// NewMatcher returns a structural matcher for the given grammar.
func NewMatcher(lang *sitter.Language) *Matcher {
	return &Matcher{lang: lang}
}

// MatcherForPath returns a matcher for the path's language, or ok=false
// when the language is not supported. Callers pass nothing to the
// locator in that case, which simply disables the structural stage.
func MatcherForPath(path string) (*Matcher, bool) {
	lang, ok := LanguageForPath(path)
	if !ok {
		return nil, false
	}
	return NewMatcher(lang), true
}

// LocateNode parses target standalone and, if it is a single significant
// node, searches doc's parse tree within [lo, hi] for a node of the same
// type whose subtree matches in type and leaf text. Returns the matched
// node's line range.
func (m *Matcher) LocateNode(doc, target []string, lo, hi int) (types.Span, bool) {
	if len(target) == 0 || len(doc) == 0 {
		return types.Span{}, false
	}

	targetSrc := []byte(lines.Join(target))
	targetRoot := parse(targetSrc, m.lang)
	if targetRoot == nil {
		return types.Span{}, false
	}
	want, ok := singleSignificantChild(targetRoot)
	if !ok {
		return types.Span{}, false
	}

	docSrc := []byte(lines.Join(doc))
	docRoot := parse(docSrc, m.lang)
	if docRoot == nil {
		return types.Span{}, false
	}

	node := findEquivalent(docRoot, want, docSrc, targetSrc, lo, hi)
	if node == nil {
		return types.Span{}, false
	}
	return nodeSpan(node), true
}

// singleSignificantChild returns the root's only named non-comment
// child, or ok=false when there are zero or several.
func singleSignificantChild(root *sitter.Node) (*sitter.Node, bool) {
	var found *sitter.Node
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		if !significant(child) {
			continue
		}
		if found != nil {
			return nil, false
		}
		found = child
	}
	if found == nil || found.Type() == "ERROR" {
		return nil, false
	}
	return found, true
}

func significant(n *sitter.Node) bool {
	return n.IsNamed() && !strings.Contains(n.Type(), "comment")
}

// findEquivalent walks doc's tree depth-first for a node equivalent to
// want, pruning subtrees entirely outside the line window.
func findEquivalent(n, want *sitter.Node, docSrc, targetSrc []byte, lo, hi int) *sitter.Node {
	span := nodeSpan(n)
	if span.StartLine > hi || span.EndLine < lo {
		return nil
	}

	if span.StartLine >= lo && span.EndLine <= hi &&
		n.Type() == want.Type() && subtreesEqual(n, want, docSrc, targetSrc) {
		return n
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		if hit := findEquivalent(n.NamedChild(i), want, docSrc, targetSrc, lo, hi); hit != nil {
			return hit
		}
	}
	return nil
}

// subtreesEqual compares two nodes recursively: equal types at every
// level, equal text at the leaves. Anonymous tokens (operators,
// punctuation) participate so that a+b never equals a-b; comment
// children are ignored on both sides.
func subtreesEqual(a, b *sitter.Node, aSrc, bSrc []byte) bool {
	if a.Type() != b.Type() {
		return false
	}

	aKids := comparableChildren(a)
	bKids := comparableChildren(b)
	if len(aKids) != len(bKids) {
		return false
	}
	if len(aKids) == 0 {
		return a.Content(aSrc) == b.Content(bSrc)
	}

	for i := range aKids {
		if !subtreesEqual(aKids[i], bKids[i], aSrc, bSrc) {
			return false
		}
	}
	return true
}

func comparableChildren(n *sitter.Node) []*sitter.Node {
	var kids []*sitter.Node
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if strings.Contains(child.Type(), "comment") {
			continue
		}
		kids = append(kids, child)
	}
	return kids
}

// nodeSpan converts a node's position to 1-based inclusive lines. An end
// position at column zero belongs to the previous line.
func nodeSpan(n *sitter.Node) types.Span {
	start := int(n.StartPoint().Row) + 1
	end := int(n.EndPoint().Row) + 1
	if n.EndPoint().Column == 0 && end > start {
		end--
	}
	return types.Span{StartLine: start, EndLine: end}
}
