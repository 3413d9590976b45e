// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package editformat

import (
	"os"
	"testing"

	"github.com/petar-djukic/go-edit/internal/workspace"
	"github.com/petar-djukic/go-edit/pkg/types"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *workspace.Store {
	t.Helper()
	return workspace.NewStore(t.TempDir(), zerolog.Nop())
}

func TestRouter_AppliesAndPersists(t *testing.T) {
	store := testStore(t)
	require.NoError(t, store.Create("config.yaml", []string{"timeout: 30", "retries: 3"}))

	router := &Router{Store: store, Persist: true, Log: zerolog.Nop()}
	result := router.ApplyAll([]*ParsedEdit{
		{Path: "config.yaml", Old: []string{"timeout: 30"}, New: []string{"timeout: 60"}},
	})

	assert.Empty(t, result.Errors)
	require.Len(t, result.Results, 1)
	assert.Equal(t, 1, result.Results[0].AppliedCount)
	assert.True(t, result.Changed())

	got, err := store.ReadLines("config.yaml")
	require.NoError(t, err)
	assert.Equal(t, []string{"timeout: 60", "retries: 3"}, got)
}

func TestRouter_GroupsEditsPerFile(t *testing.T) {
	store := testStore(t)
	require.NoError(t, store.Create("a.txt", []string{"one", "two", "three"}))
	require.NoError(t, store.Create("b.txt", []string{"alpha"}))

	mock := &mockApplier{}
	router := &Router{Store: store, Applier: mock, Log: zerolog.Nop()}

	result := router.ApplyAll([]*ParsedEdit{
		{Path: "a.txt", Old: []string{"one"}, New: []string{"ONE"}},
		{Path: "b.txt", Old: []string{"alpha"}, New: []string{"ALPHA"}},
		{Path: "a.txt", Old: []string{"three"}, New: []string{"THREE"}},
	})

	assert.Empty(t, result.Errors)
	require.Len(t, mock.calls, 2, "one engine invocation per file")
	assert.Equal(t, "a.txt", mock.calls[0].path)
	assert.Equal(t, 2, mock.calls[0].batchSize)
	assert.Equal(t, "b.txt", mock.calls[1].path)
	assert.Equal(t, 1, mock.calls[1].batchSize)
}

func TestRouter_CreateEdit(t *testing.T) {
	store := testStore(t)
	router := &Router{Store: store, Persist: true, Log: zerolog.Nop()}

	result := router.ApplyAll([]*ParsedEdit{
		{Path: "fresh.txt", New: []string{"hello"}, Create: true},
	})

	assert.Empty(t, result.Errors)
	assert.Equal(t, []string{"fresh.txt"}, result.Created)
	got, err := store.ReadLines("fresh.txt")
	require.NoError(t, err)
	assert.Equal(t, []string{"hello"}, got)
}

func TestRouter_MissingFileInsertionsMaterialize(t *testing.T) {
	store := testStore(t)
	router := &Router{Store: store, Persist: true, Log: zerolog.Nop()}

	result := router.ApplyAll([]*ParsedEdit{
		{Path: "notes.txt", New: []string{"first line"}},
	})

	assert.Empty(t, result.Errors)
	assert.Equal(t, []string{"notes.txt"}, result.Created)
	got, err := store.ReadLines("notes.txt")
	require.NoError(t, err)
	assert.Equal(t, []string{"first line"}, got)
}

func TestRouter_MissingFileReplacementErrors(t *testing.T) {
	store := testStore(t)
	router := &Router{Store: store, Persist: true, Log: zerolog.Nop()}

	result := router.ApplyAll([]*ParsedEdit{
		{Path: "ghost.txt", Old: []string{"x"}, New: []string{"y"}},
	})

	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0].Error(), "file not found")
	assert.Empty(t, result.Results)
}

func TestRouter_ContinuesPastFailingFile(t *testing.T) {
	store := testStore(t)
	require.NoError(t, store.Create("good.txt", []string{"a"}))

	router := &Router{Store: store, Persist: true, Log: zerolog.Nop()}
	result := router.ApplyAll([]*ParsedEdit{
		{Path: "ghost.txt", Old: []string{"x"}, New: []string{"y"}},
		{Path: "good.txt", Old: []string{"a"}, New: []string{"b"}},
	})

	require.Len(t, result.Errors, 1)
	require.Len(t, result.Results, 1)
	assert.Equal(t, 1, result.Results[0].AppliedCount)

	got, err := store.ReadLines("good.txt")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, got)
}

func TestRouter_WithoutPersistLeavesDiskUntouched(t *testing.T) {
	store := testStore(t)
	require.NoError(t, store.Create("a.txt", []string{"before"}))

	router := &Router{Store: store, Log: zerolog.Nop()}
	result := router.ApplyAll([]*ParsedEdit{
		{Path: "a.txt", Old: []string{"before"}, New: []string{"after"}},
	})

	require.Len(t, result.Results, 1)
	assert.Equal(t, []string{"after"}, result.Results[0].Content)

	raw, err := os.ReadFile(store.Abs("a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "before\n", string(raw))
}

// mockApplier records the per-file batches the router forms.
type mockApplier struct {
	calls []struct {
		path      string
		batchSize int
	}
}

func (m *mockApplier) Apply(path string, content []string, edits []*types.EditOperation) (*types.PatchResult, error) {
	m.calls = append(m.calls, struct {
		path      string
		batchSize int
	}{path, len(edits)})
	return &types.PatchResult{Path: path, Content: content, Edits: edits}, nil
}
