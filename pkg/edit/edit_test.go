// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package edit

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RequiresWorkDir(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNew_RequiresExistingWorkDir(t *testing.T) {
	_, err := New(Config{WorkDir: "/nonexistent/path"})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNew_ModelAndRegionComeTogether(t *testing.T) {
	dir := t.TempDir()

	_, err := New(Config{WorkDir: dir, Model: "some-model"})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(Config{WorkDir: dir, Region: "us-east-1"})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestRun_RefusesWithoutModel(t *testing.T) {
	dir := t.TempDir()

	ed, err := New(Config{WorkDir: dir, NoGit: true})
	require.NoError(t, err)
	defer ed.Close()

	_, err = ed.Run(context.Background(), "do something")
	assert.ErrorIs(t, err, ErrLLMFailure)
}

func TestApplyBatch_AppliesAndPersists(t *testing.T) {
	dir := setupModule(t)

	ed, err := New(Config{WorkDir: dir, NoGit: true})
	require.NoError(t, err)
	defer ed.Close()

	res, err := ed.ApplyBatch(context.Background(), "main.go", []Edit{{
		Old: []string{"func main() {}"},
		New: []string{"func main() {}", "", "func Helper() int { return 7 }"},
	}})
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, []string{"main.go"}, res.ModifiedFiles)

	content, err := os.ReadFile(filepath.Join(dir, "main.go"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "func Helper()")
}

func TestApplyBatch_UnmatchedReturnsNoChanges(t *testing.T) {
	dir := setupModule(t)

	ed, err := New(Config{WorkDir: dir, NoGit: true})
	require.NoError(t, err)
	defer ed.Close()

	res, err := ed.ApplyBatch(context.Background(), "main.go", []Edit{{
		Old: []string{"this line does not exist"},
		New: []string{"replacement"},
	}})
	assert.ErrorIs(t, err, ErrNoChanges)
	require.NotNil(t, res)
	assert.Empty(t, res.ModifiedFiles)
}

func TestApplyBatch_EmptyReturnsNoChanges(t *testing.T) {
	dir := setupModule(t)

	ed, err := New(Config{WorkDir: dir, NoGit: true})
	require.NoError(t, err)
	defer ed.Close()

	_, err = ed.ApplyBatch(context.Background(), "main.go", nil)
	assert.ErrorIs(t, err, ErrNoChanges)
}

func TestApplyBatch_CreatesFileFromInsertion(t *testing.T) {
	dir := setupModule(t)

	ed, err := New(Config{WorkDir: dir, NoGit: true})
	require.NoError(t, err)
	defer ed.Close()

	res, err := ed.ApplyBatch(context.Background(), "NOTES.md", []Edit{{
		New: []string{"# Notes"},
	}})
	require.NoError(t, err)
	assert.Contains(t, res.ModifiedFiles, "NOTES.md")

	content, err := os.ReadFile(filepath.Join(dir, "NOTES.md"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "# Notes")
}

func setupModule(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module testmod\n\ngo 1.25\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n\nfunc main() {}\n"), 0o644))
	return dir
}
