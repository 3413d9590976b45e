// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package repomap

import (
	"context"
	"strings"
	"testing"

	"github.com/petar-djukic/go-edit/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_FitsWithinBudget(t *testing.T) {
	ranked := []types.RankedFile{
		{FilePath: "a.go", Score: 0.9},
		{FilePath: "b.go", Score: 0.5},
		{FilePath: "c.go", Score: 0.3},
	}
	symbols := []types.SymbolRef{
		{Name: "FuncA", FilePath: "a.go", Line: 1, Kind: types.Definition},
		{Name: "FuncB", FilePath: "a.go", Line: 2, Kind: types.Definition},
		{Name: "FuncC", FilePath: "b.go", Line: 1, Kind: types.Definition},
		{Name: "FuncD", FilePath: "c.go", Line: 1, Kind: types.Definition},
	}

	result := Render(ranked, symbols, 3, RenderConfig{TokenBudget: 100, TokenRatio: 0.25})

	assert.LessOrEqual(t, result.TokensUsed, 100.0)
	assert.True(t, result.FileCount > 0)
	assert.True(t, result.SymCount > 0)
}

func TestRender_ExcludesLowRankedWhenBudgetTight(t *testing.T) {
	ranked := []types.RankedFile{
		{FilePath: "a.go", Score: 0.9},
		{FilePath: "b.go", Score: 0.5},
		{FilePath: "c.go", Score: 0.1},
	}
	symbols := []types.SymbolRef{
		{Name: "ImportantFunc", FilePath: "a.go", Line: 1, Kind: types.Definition},
		{Name: "LessImportant", FilePath: "b.go", Line: 1, Kind: types.Definition},
		{Name: "LeastImportant", FilePath: "c.go", Line: 1, Kind: types.Definition},
	}

	// Tight budget: header plus the top file fit, the tail does not.
	result := Render(ranked, symbols, 3, RenderConfig{TokenBudget: 16, TokenRatio: 0.25})

	assert.Less(t, result.FileCount, 3)
	assert.Contains(t, result.Map, "a.go")
	assert.NotContains(t, result.Map, "LeastImportant")
	assert.LessOrEqual(t, result.TokensUsed, 16.0)
}

func TestRender_HeaderShowsCounts(t *testing.T) {
	ranked := []types.RankedFile{
		{FilePath: "a.go", Score: 0.9},
	}
	symbols := []types.SymbolRef{
		{Name: "Func", FilePath: "a.go", Line: 1, Kind: types.Definition},
	}
	for i := 0; i < 9; i++ {
		symbols = append(symbols, types.SymbolRef{
			Name: "Helper", FilePath: "other.go", Line: i + 1, Kind: types.Definition,
		})
	}

	result := Render(ranked, symbols, 5, RenderConfig{TokenBudget: 1000})

	assert.Contains(t, result.Map, "Context map")
	assert.Contains(t, result.Map, "1/5 files")
	assert.Contains(t, result.Map, "1/10 symbols")
}

func TestRender_SkipsFilesWithoutDefinitions(t *testing.T) {
	ranked := []types.RankedFile{
		{FilePath: "empty.go", Score: 0.9},
		{FilePath: "code.go", Score: 0.5},
	}
	symbols := []types.SymbolRef{
		{Name: "RealFunction", FilePath: "code.go", Line: 1, Kind: types.Definition},
		{Name: "RealFunction", FilePath: "empty.go", Line: 4, Kind: types.Reference},
	}

	result := Render(ranked, symbols, 2, RenderConfig{TokenBudget: 1000})

	assert.NotContains(t, result.Map, "empty.go")
	assert.Contains(t, result.Map, "code.go")
	assert.Equal(t, 1, result.FileCount)
}

func TestRender_SignatureFromSource(t *testing.T) {
	dir := setupTestRepo(t, map[string]string{
		"calc.go": `package calc

func Add(a, b int) int { return a + b }
`,
	})
	ranked := []types.RankedFile{{FilePath: "calc.go", Score: 1.0}}
	symbols := []types.SymbolRef{
		{Name: "Add", FilePath: "calc.go", Line: 3, Kind: types.Definition},
	}

	result := Render(ranked, symbols, 1, RenderConfig{TokenBudget: 1000, WorkDir: dir})

	assert.Contains(t, result.Map, "func Add(a, b int) int")
}

func TestRender_NameFallbackWithoutSource(t *testing.T) {
	ranked := []types.RankedFile{{FilePath: "gone.go", Score: 1.0}}
	symbols := []types.SymbolRef{
		{Name: "Orphan", FilePath: "gone.go", Line: 3, Kind: types.Definition},
	}

	result := Render(ranked, symbols, 1, RenderConfig{TokenBudget: 1000})

	assert.Contains(t, result.Map, "  Orphan\n")
}

func TestRender_LongLinesTruncated(t *testing.T) {
	dir := setupTestRepo(t, map[string]string{
		"long.go": `package long

func VeryLongFunctionNameThatExceedsTheMaximumLineLengthForRenderingPurposesInTheMapOutput(a, b, c, d, e, f, g int) (string, error) {
	return "", nil
}
`,
	})
	ranked := []types.RankedFile{{FilePath: "long.go", Score: 1.0}}
	symbols := []types.SymbolRef{
		{Name: "VeryLong", FilePath: "long.go", Line: 3, Kind: types.Definition},
	}

	result := Render(ranked, symbols, 1, RenderConfig{TokenBudget: 1000, WorkDir: dir})

	for _, line := range strings.Split(result.Map, "\n") {
		assert.LessOrEqual(t, len(line), maxLineLength, "line too long: %s", line)
	}
}

func TestRender_EmptyRanked(t *testing.T) {
	result := Render(nil, nil, 0, RenderConfig{TokenBudget: 1000})

	assert.Contains(t, result.Map, "0/0 files")
	assert.Equal(t, 0, result.FileCount)
	assert.Equal(t, 0, result.SymCount)
}

func TestBuild_Integration(t *testing.T) {
	dir := setupTestRepo(t, map[string]string{
		"math.go": `package main

func Add(a, b int) int { return a + b }

func Subtract(a, b int) int { return a - b }
`,
		"main.go": `package main

func main() {
	Add(1, 2)
	Subtract(3, 1)
}
`,
	})

	result, err := Build(context.Background(), dir, []string{"math.go"}, 1000)
	require.NoError(t, err)

	assert.Contains(t, result.Map, "Context map")
	assert.Contains(t, result.Map, "math.go")
	assert.Contains(t, result.Map, "func Add(a, b int) int")
	assert.True(t, result.FileCount > 0)
	assert.True(t, result.SymCount > 0)
	assert.LessOrEqual(t, result.TokensUsed, 1000.0)
}
