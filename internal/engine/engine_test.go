// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package engine

import (
	"errors"
	"testing"

	"github.com/petar-djukic/go-edit/internal/locate"
	"github.com/petar-djukic/go-edit/pkg/types"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine() *Engine {
	return New(locate.New(nil), zerolog.Nop())
}

func op(old, new []string) *types.EditOperation {
	return &types.EditOperation{OldBlock: old, NewBlock: new}
}

func TestEngine_SingleReplacement(t *testing.T) {
	e := newEngine()

	res, err := e.Apply("f.txt", []string{"A", "B", "C"}, []*types.EditOperation{
		op([]string{"B"}, []string{"B2"}),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B2", "C"}, res.Content)
	assert.Equal(t, 1, res.AppliedCount)
	assert.Equal(t, 1, res.PassCount)
	assert.Equal(t, types.Applied, res.Edits[0].Status)
	assert.Empty(t, res.Outcome)
	assert.NotEmpty(t, res.Diff)
	assert.Len(t, res.Fingerprint, 16)
}

func TestEngine_ChainedEditsTakeTwoPasses(t *testing.T) {
	e := newEngine()

	res, err := e.Apply("f.txt", []string{"foo"}, []*types.EditOperation{
		op([]string{"foo"}, []string{"FOO"}),
		op([]string{"FOO"}, []string{"FOO2"}),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"FOO2"}, res.Content)
	assert.Equal(t, 2, res.AppliedCount)
	assert.Equal(t, 2, res.PassCount)
}

func TestEngine_UnresolvedEdit(t *testing.T) {
	e := newEngine()

	res, err := e.Apply("f.txt", []string{"x"}, []*types.EditOperation{
		op([]string{"y"}, []string{"z"}),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"x"}, res.Content)
	assert.Equal(t, 0, res.AppliedCount)
	assert.Equal(t, 1, res.UnresolvedCount)
	assert.Equal(t, types.Unresolved, res.Edits[0].Status)
	assert.Equal(t, types.OutcomeNoReplacements, res.Outcome)
}

func TestEngine_IdempotentReapply(t *testing.T) {
	e := newEngine()
	content := []string{"A", "B", "C"}

	first, err := e.Apply("f.txt", content, []*types.EditOperation{
		op([]string{"B"}, []string{"X2"}),
		op(nil, []string{"H"}),
	})
	require.NoError(t, err)
	require.Equal(t, 2, first.AppliedCount)
	require.Equal(t, []string{"H", "A", "X2", "C"}, first.Content)

	second, err := e.Apply("f.txt", first.Content, []*types.EditOperation{
		op([]string{"B"}, []string{"X2"}),
		op(nil, []string{"H"}),
	})
	require.NoError(t, err)

	assert.Equal(t, first.Content, second.Content)
	assert.Equal(t, 0, second.AppliedCount)
	assert.Equal(t, 2, second.SkippedCount)
	for _, ed := range second.Edits {
		assert.Equal(t, types.SkippedAlreadyApplied, ed.Status)
	}
	assert.Equal(t, types.OutcomeAlreadyApplied, second.Outcome)
}

func TestEngine_OrderIndependence(t *testing.T) {
	content := []string{"a", "b", "c", "d", "e", "f"}

	forward := []*types.EditOperation{
		op([]string{"b"}, []string{"B"}),
		op([]string{"e"}, []string{"E"}),
	}
	backward := []*types.EditOperation{
		op([]string{"e"}, []string{"E"}),
		op([]string{"b"}, []string{"B"}),
	}

	e := newEngine()
	r1, err := e.Apply("f.txt", content, forward)
	require.NoError(t, err)
	r2, err := e.Apply("f.txt", content, backward)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "B", "c", "d", "E", "f"}, r1.Content)
	assert.Equal(t, r1.Content, r2.Content)
	assert.Equal(t, r1.AppliedCount, r2.AppliedCount)
	assert.Equal(t, r1.Fingerprint, r2.Fingerprint)
}

func TestEngine_OverlapDefersAndReports(t *testing.T) {
	e := newEngine()

	res, err := e.Apply("f.txt", []string{"l1", "l2", "l3"}, []*types.EditOperation{
		op([]string{"l1", "l2"}, []string{"X"}),
		op([]string{"l2", "l3"}, []string{"Y"}),
	})
	require.NoError(t, err)

	// The earlier span wins the pass; the overlapping edit is deferred,
	// cannot re-locate afterwards, and ends unresolved.
	assert.Equal(t, []string{"X", "l3"}, res.Content)
	assert.Equal(t, 1, res.AppliedCount)
	assert.Equal(t, 1, res.UnresolvedCount)
	assert.Equal(t, types.Applied, res.Edits[0].Status)
	assert.Equal(t, types.Unresolved, res.Edits[1].Status)
}

func TestEngine_IndentRebase(t *testing.T) {
	e := newEngine()
	content := []string{
		"func f() {",
		"\tif ok {",
		"\t\tdoThing()",
		"\t}",
		"}",
	}

	t.Run("relative indentation preserved", func(t *testing.T) {
		res, err := e.Apply("f.go", content, []*types.EditOperation{
			op(
				[]string{"if ok {", "doThing()", "}"},
				[]string{"if ok {", "    doSomethingElse()", "}"},
			),
		})
		require.NoError(t, err)
		assert.Equal(t, []string{
			"func f() {",
			"\tif ok {",
			"\t    doSomethingElse()",
			"\t}",
			"}",
		}, res.Content)
	})

	t.Run("uniform indentation dedented then re-based", func(t *testing.T) {
		res, err := e.Apply("f.go", content, []*types.EditOperation{
			op(
				[]string{"doThing()"},
				[]string{"        foo()", "        bar()"},
			),
		})
		require.NoError(t, err)
		assert.Equal(t, []string{
			"func f() {",
			"\tif ok {",
			"\t\tfoo()",
			"\t\tbar()",
			"\t}",
			"}",
		}, res.Content)
	})
}

func TestEngine_Insertions(t *testing.T) {
	e := newEngine()

	t.Run("empty old block inserts at top on the first pass", func(t *testing.T) {
		res, err := e.Apply("f.txt", []string{"A"}, []*types.EditOperation{
			op(nil, []string{"H1", "H2"}),
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"H1", "H2", "A"}, res.Content)
		assert.Equal(t, 1, res.AppliedCount)
		assert.Equal(t, 1, res.PassCount)
	})

	t.Run("single empty string counts as insertion", func(t *testing.T) {
		res, err := e.Apply("f.txt", []string{"A"}, []*types.EditOperation{
			op([]string{""}, []string{"H"}),
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"H", "A"}, res.Content)
	})

	t.Run("insertion into empty content", func(t *testing.T) {
		res, err := e.Apply("f.txt", nil, []*types.EditOperation{
			op(nil, []string{"only"}),
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"only"}, res.Content)
	})
}

func TestEngine_DeletionEdit(t *testing.T) {
	e := newEngine()

	res, err := e.Apply("f.txt", []string{"A", "B", "C"}, []*types.EditOperation{
		op([]string{"B"}, nil),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C"}, res.Content)
	assert.Equal(t, 1, res.AppliedCount)
}

func TestEngine_MalformedEncodingAbortsBatch(t *testing.T) {
	e := newEngine()
	edits := []*types.EditOperation{
		op([]string{"A"}, []string{"B"}),
		op([]string{"bad \xff\xfe bytes"}, []string{"C"}),
	}

	res, err := e.Apply("f.txt", []string{"A"}, edits)
	require.Error(t, err)
	assert.Nil(t, res)

	var malformed *MalformedEditError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, 2, malformed.Index)

	// Nothing was touched: the healthy edit stayed pending.
	assert.Equal(t, types.Pending, edits[0].Status)
}

func TestEngine_EmptyEditIsUnresolved(t *testing.T) {
	e := newEngine()

	res, err := e.Apply("f.txt", []string{"A"}, []*types.EditOperation{
		op([]string{""}, nil),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, res.Content)
	assert.Equal(t, 1, res.UnresolvedCount)
	assert.Equal(t, types.OutcomeNoReplacements, res.Outcome)
}

func TestEngine_AlreadyAppliedOutcome(t *testing.T) {
	e := newEngine()

	res, err := e.Apply("f.txt", []string{"A", "X2", "C"}, []*types.EditOperation{
		op([]string{"B"}, []string{"X2"}),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.AppliedCount)
	assert.Equal(t, 1, res.SkippedCount)
	assert.Equal(t, types.OutcomeAlreadyApplied, res.Outcome)
	assert.Equal(t, "", res.Diff)
}

func TestBaseIndent(t *testing.T) {
	tests := []struct {
		name string
		span []string
		want string
	}{
		{name: "shortest prefix wins", span: []string{"\t\ta", "\tb", "\t\t\tc"}, want: "\t"},
		{name: "single line", span: []string{"    x"}, want: "    "},
		{name: "empty lines ignored", span: []string{"", "  x", ""}, want: "  "},
		{name: "all empty", span: []string{"", "   "}, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, baseIndent(tt.span))
		})
	}
}

func TestRebase(t *testing.T) {
	got := rebase([]string{"  if x {", "    y()", "", "  }"}, "\t")
	assert.Equal(t, []string{"\tif x {", "\t  y()", "", "\t}"}, got)
}
