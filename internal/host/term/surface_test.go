// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package term

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/go-edit/internal/review"
	"github.com/petar-djukic/go-edit/pkg/types"
)

func TestShowHunk_RendersDiff(t *testing.T) {
	var buf bytes.Buffer
	s := NewSurface(&buf)

	hunk := &types.Hunk{
		OldLines: []string{"old line"},
		NewLines: []string{"new line one", "new line two"},
		NewRange: types.Span{StartLine: 10, EndLine: 11},
	}

	require.NoError(t, s.ShowHunk("main.go", hunk, 1, 3))

	out := buf.String()
	assert.Contains(t, out, "main.go (hunk 1/3)")
	assert.Contains(t, out, "lines 10-11")
	assert.Contains(t, out, "- old line")
	assert.Contains(t, out, "+ new line one")
	assert.Contains(t, out, "+ new line two")
}

func TestShowHunk_PureDeletion(t *testing.T) {
	var buf bytes.Buffer
	s := NewSurface(&buf)

	hunk := &types.Hunk{
		OldLines: []string{"removed"},
		NewRange: types.Span{StartLine: 5, EndLine: 4},
	}

	require.NoError(t, s.ShowHunk("main.go", hunk, 1, 1))

	out := buf.String()
	assert.Contains(t, out, "deletion at line 5")
	assert.Contains(t, out, "- removed")
	assert.NotContains(t, out, "+ ")
}

func TestClear_NoOutput(t *testing.T) {
	var buf bytes.Buffer
	s := NewSurface(&buf)

	require.NoError(t, s.Clear("main.go"))
	assert.Empty(t, buf.String())
}

type memPersister struct {
	written map[string][]string
}

func (m *memPersister) WriteLines(path string, content []string) error {
	if m.written == nil {
		m.written = make(map[string][]string)
	}
	m.written[path] = content
	return nil
}

func beginSession(t *testing.T, out *bytes.Buffer, persist *memPersister, events *[]types.ReviewEvent) *review.Session {
	t.Helper()
	sess, err := review.Begin("main.go",
		[]string{"a", "b", "c"},
		[]string{"a", "B", "c"},
		review.Deps{
			Persist: persist,
			Surface: NewSurface(out),
			OnEvent: func(ev types.ReviewEvent) { *events = append(*events, ev) },
			Log:     zerolog.Nop(),
		})
	require.NoError(t, err)
	return sess
}

func TestLoop_AcceptResolvesSession(t *testing.T) {
	var out bytes.Buffer
	var events []types.ReviewEvent
	persist := &memPersister{}
	sess := beginSession(t, &out, persist, &events)

	loop := NewLoop(strings.NewReader("a\n"), &out)
	require.NoError(t, loop.Run(sess))

	assert.Equal(t, types.Resolved, sess.Phase())
	assert.Equal(t, []string{"a", "B", "c"}, persist.written["main.go"])
	assert.Contains(t, out.String(), "review resolved")
	require.Len(t, events, 1)
}

func TestLoop_CancelRestoresBaseline(t *testing.T) {
	var out bytes.Buffer
	var events []types.ReviewEvent
	persist := &memPersister{}
	sess := beginSession(t, &out, persist, &events)

	loop := NewLoop(strings.NewReader("c\n"), &out)
	require.NoError(t, loop.Run(sess))

	assert.Equal(t, types.Cancelled, sess.Phase())
	assert.Contains(t, out.String(), "review cancelled")
}

func TestLoop_EOFClosesSession(t *testing.T) {
	var out bytes.Buffer
	var events []types.ReviewEvent
	persist := &memPersister{}
	sess := beginSession(t, &out, persist, &events)

	loop := NewLoop(strings.NewReader(""), &out)
	require.NoError(t, loop.Run(sess))

	assert.Equal(t, types.Closed, sess.Phase())
}

func TestLoop_UnknownCommandPrintsHint(t *testing.T) {
	var out bytes.Buffer
	var events []types.ReviewEvent
	persist := &memPersister{}
	sess := beginSession(t, &out, persist, &events)

	loop := NewLoop(strings.NewReader("z\n?\nA\n"), &out)
	require.NoError(t, loop.Run(sess))

	assert.Contains(t, out.String(), "unknown command")
	assert.Contains(t, out.String(), "accept focused hunk")
	assert.Equal(t, types.Resolved, sess.Phase())
}

func TestLoop_RevertKeepsBaselineHunk(t *testing.T) {
	var out bytes.Buffer
	var events []types.ReviewEvent
	persist := &memPersister{}
	sess := beginSession(t, &out, persist, &events)

	loop := NewLoop(strings.NewReader("r\n"), &out)
	require.NoError(t, loop.Run(sess))

	assert.Equal(t, types.Resolved, sess.Phase())
	assert.Equal(t, []string{"a", "b", "c"}, persist.written["main.go"])
}
