// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package repomap builds a ranked map of the repository for LLM context:
// tree-sitter symbol extraction, a file-level reference graph, PageRank
// with personalization for mentioned files, and a token-budgeted rendering.
// Implements: prd008-context-map R1, R2, R3, R4, R5;
//
//	docs/ARCHITECTURE § Context Map.
package repomap

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/petar-djukic/go-edit/internal/syntax"
	"github.com/petar-djukic/go-edit/pkg/types"
)

// querySpec holds the tree-sitter query patterns for one language.
// Grammars themselves come from the syntax provider; only the queries are
// map-specific.
type querySpec struct {
	defQ string // Definitions (capture @name)
	refQ string // References (capture @ref), empty for data formats
}

var langQueries = map[string]querySpec{
	".go": {
		defQ: `
			(function_declaration name: (identifier) @name)
			(method_declaration name: (field_identifier) @name)
			(type_declaration (type_spec name: (type_identifier) @name))
		`,
		refQ: `
			(identifier) @ref
			(field_identifier) @ref
			(type_identifier) @ref
		`,
	},
	".py": {
		defQ: `
			(function_definition name: (identifier) @name)
			(class_definition name: (identifier) @name)
		`,
		refQ: `
			(identifier) @ref
		`,
	},
	".js": {
		defQ: `
			(function_declaration name: (identifier) @name)
			(class_declaration name: (identifier) @name)
			(variable_declarator name: (identifier) @name)
		`,
		refQ: `
			(identifier) @ref
		`,
	},
	".ts": {
		defQ: `
			(function_declaration name: (identifier) @name)
			(class_declaration name: (identifier) @name)
			(variable_declarator name: (identifier) @name)
			(interface_declaration name: (type_identifier) @name)
		`,
		refQ: `
			(identifier) @ref
			(type_identifier) @ref
		`,
	},
	".yaml": {
		defQ: `
			(block_mapping_pair key: (flow_node) @name)
		`,
	},
	".yml": {
		defQ: `
			(block_mapping_pair key: (flow_node) @name)
		`,
	},
}

// cacheEntry stores extraction results keyed by path and mod time.
type cacheEntry struct {
	modTime time.Time
	symbols []types.SymbolRef
}

// Extractor walks a repository and extracts symbol definitions and
// references from every file the syntax provider can parse. Results are
// cached per file until its mod time changes.
//
// Implements: prd008-context-map R1, R5.
type Extractor struct {
	mu    sync.Mutex
	cache map[string]cacheEntry
	stats ExtractStats
}

// ExtractStats tracks one ExtractAll pass.
type ExtractStats struct {
	FilesProcessed int
	FilesSkipped   int
	CacheHits      int
	ParseCount     int
}

// NewExtractor creates an extractor with an empty cache.
func NewExtractor() *Extractor {
	return &Extractor{
		cache: make(map[string]cacheEntry),
	}
}

// ExtractAll walks workDir and extracts symbols from every supported file,
// parsing in parallel with one worker per CPU. Unparseable and unsupported
// files are counted as skipped, never fatal.
//
// Implements: prd008-context-map R1.1-R1.6.
func (e *Extractor) ExtractAll(ctx context.Context, workDir string) ([]types.SymbolRef, ExtractStats, error) {
	e.mu.Lock()
	e.stats = ExtractStats{}
	e.mu.Unlock()

	type candidate struct {
		absPath string
		relPath string
		modTime time.Time
		lang    *sitter.Language
		spec    querySpec
	}

	var candidates []candidate

	err := filepath.WalkDir(workDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			switch d.Name() {
			case ".git", "vendor", "node_modules":
				return filepath.SkipDir
			}
			return nil
		}

		lang, ok := syntax.LanguageForPath(path)
		spec, okQ := langQueries[filepath.Ext(path)]
		if !ok || !okQ {
			e.skip()
			return nil
		}

		info, err := d.Info()
		if err != nil {
			e.skip()
			return nil
		}

		relPath, _ := filepath.Rel(workDir, path)
		candidates = append(candidates, candidate{
			absPath: path,
			relPath: relPath,
			modTime: info.ModTime(),
			lang:    lang,
			spec:    spec,
		})
		return nil
	})
	if err != nil {
		return nil, e.snapshot(), err
	}

	// Parse with a bounded worker pool. Results are indexed by candidate
	// so the output keeps walk order regardless of completion order.
	perFile := make([][]types.SymbolRef, len(candidates))
	jobs := make(chan int, len(candidates))

	workers := runtime.NumCPU()
	if workers > len(candidates) {
		workers = len(candidates)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					continue
				}
				c := candidates[i]
				symbols, err := e.extractFile(ctx, c.absPath, c.relPath, c.modTime, c.lang, c.spec)
				if err != nil {
					e.skip()
					continue
				}
				e.mu.Lock()
				e.stats.FilesProcessed++
				e.mu.Unlock()
				perFile[i] = symbols
			}
		}()
	}
	for i := range candidates {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, e.snapshot(), err
	}

	var all []types.SymbolRef
	for _, symbols := range perFile {
		all = append(all, symbols...)
	}
	return all, e.snapshot(), nil
}

func (e *Extractor) skip() {
	e.mu.Lock()
	e.stats.FilesSkipped++
	e.mu.Unlock()
}

func (e *Extractor) snapshot() ExtractStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// extractFile parses one file, consulting the mod-time cache first.
//
// Implements: prd008-context-map R5.1-R5.3.
func (e *Extractor) extractFile(ctx context.Context, absPath, relPath string, modTime time.Time, lang *sitter.Language, spec querySpec) ([]types.SymbolRef, error) {
	e.mu.Lock()
	if cached, ok := e.cache[relPath]; ok && cached.modTime.Equal(modTime) {
		e.stats.CacheHits++
		result := cached.symbols
		e.mu.Unlock()
		return result, nil
	}
	e.mu.Unlock()

	content, err := os.ReadFile(absPath)
	if err != nil {
		return nil, err
	}

	symbols := parseSymbols(ctx, content, relPath, lang, spec)
	if err := ctx.Err(); err != nil {
		// A cancelled parse yields partial symbols; caching them would
		// serve bad results on the next run at the same mod time.
		return nil, err
	}

	e.mu.Lock()
	e.stats.ParseCount++
	e.cache[relPath] = cacheEntry{modTime: modTime, symbols: symbols}
	e.mu.Unlock()

	return symbols, nil
}

// parseSymbols runs the definition and reference queries over one file.
// References that shadow a same-file definition are dropped so they cannot
// later produce self-edges.
func parseSymbols(ctx context.Context, content []byte, relPath string, lang *sitter.Language, spec querySpec) []types.SymbolRef {
	root, err := sitter.ParseCtx(ctx, content, lang)
	if err != nil || root == nil {
		return nil
	}

	var symbols []types.SymbolRef

	if spec.defQ != "" {
		for _, d := range runQuery(spec.defQ, lang, root, content) {
			symbols = append(symbols, types.SymbolRef{
				Name:     d.name,
				FilePath: relPath,
				Line:     d.line,
				Kind:     types.Definition,
			})
		}
	}

	if spec.refQ != "" {
		defSet := make(map[string]bool, len(symbols))
		for _, s := range symbols {
			defSet[s.Name] = true
		}
		for _, r := range runQuery(spec.refQ, lang, root, content) {
			if defSet[r.name] {
				continue
			}
			symbols = append(symbols, types.SymbolRef{
				Name:     r.name,
				FilePath: relPath,
				Line:     r.line,
				Kind:     types.Reference,
			})
		}
	}

	return symbols
}

// capture is one query hit: a symbol name and its location.
type capture struct {
	name string
	line int
}

// runQuery executes a tree-sitter query, deduplicating captures by name
// and line.
func runQuery(pattern string, lang *sitter.Language, root *sitter.Node, content []byte) []capture {
	q, err := sitter.NewQuery([]byte(pattern), lang)
	if err != nil {
		return nil
	}

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(q, root)

	seen := make(map[capture]bool)
	var results []capture

	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, c := range m.Captures {
			hit := capture{
				name: c.Node.Content(content),
				line: int(c.Node.StartPoint().Row) + 1,
			}
			if hit.name == "" || seen[hit] {
				continue
			}
			seen[hit] = true
			results = append(results, hit)
		}
	}

	return results
}

// sourceLine returns the trimmed source text at a 1-based line, capped for
// rendering.
func sourceLine(content []byte, line int) string {
	all := strings.Split(string(content), "\n")
	if line < 1 || line > len(all) {
		return ""
	}
	sig := strings.TrimSpace(all[line-1])
	if len(sig) > 100 {
		sig = sig[:97] + "..."
	}
	return sig
}
