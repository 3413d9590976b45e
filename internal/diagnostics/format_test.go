// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package diagnostics

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat_IssuesWithExcerpt(t *testing.T) {
	dir := t.TempDir()
	mainGo := filepath.Join(dir, "main.go")
	content := `package main

import "fmt"

func helper() string {
    return "ok"
}

func main() {
    x :=
    fmt.Println(helper())
}
`
	require.NoError(t, os.WriteFile(mainGo, []byte(content), 0o644))

	rep := &Report{
		BuildOK: false,
		Issues: []Diagnostic{
			{File: mainGo, Line: 10, Column: 5, Message: "expected operand"},
		},
		BuildOutput: fmt.Sprintf("%s:10:5: expected operand", mainGo),
	}

	formatted := Format(rep, []string{"main.go"}, FormatConfig{ContextLines: 5})

	assert.Contains(t, formatted, "Fix them")
	assert.Contains(t, formatted, "Modified Files")
	assert.Contains(t, formatted, "main.go")
	assert.Contains(t, formatted, "Compiler Errors")
	assert.Contains(t, formatted, "expected operand")
	// The excerpt should include the surrounding declarations.
	assert.Contains(t, formatted, "func helper()")
	assert.Contains(t, formatted, "func main()")
	// Issue line marker.
	assert.Contains(t, formatted, "> ")
}

func TestFormat_TestOutputCapped(t *testing.T) {
	longOutput := strings.Repeat("x", 5000)
	rep := &Report{
		BuildOK:    true,
		VetOK:      true,
		TestOK:     false,
		TestOutput: longOutput,
	}

	formatted := Format(rep, nil, FormatConfig{MaxTestOutput: 4096})

	assert.Contains(t, formatted, "Test Output")
	assert.Contains(t, formatted, "truncated")
	assert.Less(t, len(formatted), len(longOutput))
}

func TestFormat_ShortTestOutputUntouched(t *testing.T) {
	rep := &Report{
		BuildOK:    true,
		VetOK:      true,
		TestOK:     false,
		TestOutput: "--- FAIL: TestAdd\n    expected 5\nFAIL\n",
	}

	formatted := Format(rep, nil, FormatConfig{})

	assert.Contains(t, formatted, "FAIL")
	assert.NotContains(t, formatted, "truncated")
}

func TestFormat_VetSection(t *testing.T) {
	rep := &Report{
		BuildOK:   true,
		VetOK:     false,
		TestOK:    true,
		VetOutput: "main.go:7:2: unreachable code\n",
	}

	formatted := Format(rep, nil, FormatConfig{})

	assert.Contains(t, formatted, "Vet Output")
	assert.Contains(t, formatted, "unreachable")
}

func TestFormat_RawBuildFallback(t *testing.T) {
	rep := &Report{
		BuildOK:     false,
		BuildOutput: "some raw output\n",
	}

	formatted := Format(rep, nil, FormatConfig{})

	assert.Contains(t, formatted, "Build Output")
	assert.Contains(t, formatted, "some raw output")
}

func TestFormat_ModifiedFileList(t *testing.T) {
	rep := &Report{
		BuildOK: false,
		Issues:  []Diagnostic{{File: "a.go", Line: 1, Message: "err"}},
	}

	formatted := Format(rep, []string{"a.go", "b.go"}, FormatConfig{})

	assert.Contains(t, formatted, "- a.go")
	assert.Contains(t, formatted, "- b.go")
}

func TestExcerpt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.go")
	var all []string
	for i := 1; i <= 20; i++ {
		all = append(all, fmt.Sprintf("line %d", i))
	}
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(all, "\n")), 0o644))

	ex := excerpt(path, 10, 5)

	// Lines 5 through 15.
	assert.Contains(t, ex, "line 5")
	assert.Contains(t, ex, "line 10")
	assert.Contains(t, ex, "line 15")
	// Issue line is marked.
	assert.Contains(t, ex, ">   10")
}

func TestExcerpt_EdgeCases(t *testing.T) {
	t.Run("issue at start of file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "test.go")
		require.NoError(t, os.WriteFile(path, []byte("line 1\nline 2\nline 3\n"), 0o644))

		ex := excerpt(path, 1, 5)
		assert.Contains(t, ex, "line 1")
		assert.Contains(t, ex, ">    1")
	})

	t.Run("nonexistent file", func(t *testing.T) {
		assert.Empty(t, excerpt("/nonexistent/file.go", 5, 5))
	})
}
