// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package syntax provides tree-sitter parsing for the languages the
// editing pipeline understands, and a structural matcher that locates a
// code block by its parse tree rather than its text.
// Implements: prd007-syntax-provider R1, R2;
//
//	docs/ARCHITECTURE § Syntax Provider.
package syntax

import (
	"context"
	"path/filepath"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
	"github.com/smacker/go-tree-sitter/yaml"
)

// languages maps file extensions to their tree-sitter grammar.
var languages = map[string]*sitter.Language{
	".go":   golang.GetLanguage(),
	".py":   python.GetLanguage(),
	".js":   javascript.GetLanguage(),
	".ts":   typescript.GetLanguage(),
	".yaml": yaml.GetLanguage(),
	".yml":  yaml.GetLanguage(),
}

// LanguageForPath returns the grammar for a file path's extension.
func LanguageForPath(path string) (*sitter.Language, bool) {
	lang, ok := languages[filepath.Ext(path)]
	return lang, ok
}

// Supported reports whether path has a parseable language.
func Supported(path string) bool {
	_, ok := LanguageForPath(path)
	return ok
}

// parse returns the root node of content, or nil when parsing fails
// outright. Trees with localized ERROR nodes still come back; callers
// decide how much damage they tolerate.
func parse(content []byte, lang *sitter.Language) *sitter.Node {
	root, err := sitter.ParseCtx(context.Background(), content, lang)
	if err != nil {
		return nil
	}
	return root
}
