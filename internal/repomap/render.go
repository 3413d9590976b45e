// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Implements: prd008-context-map R4;
//
//	docs/ARCHITECTURE § Context Map.
package repomap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/petar-djukic/go-edit/pkg/types"
)

const (
	defaultTokenRatio  = 0.25
	defaultTokenBudget = 4096
	maxLineLength      = 100
)

// RenderConfig configures map rendering.
type RenderConfig struct {
	TokenBudget float64 // Token cap for the rendered map (default 4096)
	TokenRatio  float64 // Tokens per character (default 0.25)
	WorkDir     string  // Repository root for reading signature lines
}

// Render produces the context map text: files in rank order, each listing
// its definitions' signature lines, cut off at the token budget.
//
// Implements: prd008-context-map R4.1-R4.5.
func Render(ranked []types.RankedFile, symbols []types.SymbolRef, totalFiles int, cfg RenderConfig) *types.ContextMapResult {
	budget := cfg.TokenBudget
	if budget == 0 {
		budget = defaultTokenBudget
	}
	ratio := cfg.TokenRatio
	if ratio == 0 {
		ratio = defaultTokenRatio
	}

	defsByFile := make(map[string][]types.SymbolRef)
	totalSyms := 0
	for _, s := range symbols {
		if s.Kind == types.Definition {
			defsByFile[s.FilePath] = append(defsByFile[s.FilePath], s)
			totalSyms++
		}
	}
	for _, defs := range defsByFile {
		sort.Slice(defs, func(i, j int) bool { return defs[i].Line < defs[j].Line })
	}

	// Reserve header room at its widest (shown counts never exceed the
	// totals) so the finished map stays inside the budget.
	widest := fmt.Sprintf("Context map (%d/%d files, %d/%d symbols)\n", totalFiles, totalFiles, totalSyms, totalSyms)

	var sections []string
	filesShown := 0
	symsShown := 0
	used := float64(len(widest)) * ratio

	for _, rf := range ranked {
		defs := defsByFile[rf.FilePath]
		if len(defs) == 0 {
			continue
		}

		section := renderSection(rf.FilePath, defs, cfg.WorkDir)
		cost := float64(len(section)) * ratio
		if used+cost > budget {
			break
		}

		sections = append(sections, section)
		used += cost
		filesShown++
		symsShown += len(defs)
	}

	header := fmt.Sprintf("Context map (%d/%d files, %d/%d symbols)\n", filesShown, totalFiles, symsShown, totalSyms)
	mapText := header + strings.Join(sections, "")

	return &types.ContextMapResult{
		Map:        mapText,
		FileCount:  filesShown,
		TotalFiles: totalFiles,
		SymCount:   symsShown,
		TotalSyms:  totalSyms,
		TokensUsed: float64(len(mapText)) * ratio,
	}
}

// renderSection renders one file's entry: the path, then an indented
// signature line per definition. Falls back to the bare symbol name when
// the source cannot be read.
func renderSection(file string, defs []types.SymbolRef, workDir string) string {
	var content []byte
	if workDir != "" {
		content, _ = os.ReadFile(filepath.Join(workDir, file))
	}

	var buf strings.Builder
	buf.WriteString(file + "\n")
	for _, d := range defs {
		sig := ""
		if content != nil {
			sig = sourceLine(content, d.Line)
		}
		if sig == "" {
			sig = d.Name
		}
		line := "  " + sig
		if len(line) > maxLineLength {
			line = line[:maxLineLength-3] + "..."
		}
		buf.WriteString(line + "\n")
	}
	return buf.String()
}

// Build runs the full pipeline: extract, graph, rank, render.
//
// Implements: prd008-context-map R1-R4 (composition).
func Build(ctx context.Context, workDir string, mentioned []string, tokenBudget float64) (*types.ContextMapResult, error) {
	ext := NewExtractor()
	symbols, stats, err := ext.ExtractAll(ctx, workDir)
	if err != nil {
		return nil, fmt.Errorf("extracting symbols: %w", err)
	}

	graph := BuildGraph(symbols)
	ranked := Rank(graph, RankConfig{Mentioned: mentioned})

	result := Render(ranked, symbols, stats.FilesProcessed+stats.FilesSkipped, RenderConfig{
		TokenBudget: tokenBudget,
		WorkDir:     workDir,
	})

	return result, nil
}
