// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Implements: prd005-edit-formats R6;
//
//	docs/ARCHITECTURE § Edit Formats.
package editformat

import (
	"fmt"

	"github.com/petar-djukic/go-edit/internal/engine"
	"github.com/petar-djukic/go-edit/internal/locate"
	"github.com/petar-djukic/go-edit/internal/syntax"
	"github.com/petar-djukic/go-edit/internal/workspace"
	"github.com/petar-djukic/go-edit/pkg/types"

	"github.com/rs/zerolog"
)

// Applier applies an edit batch against one file's content.
type Applier interface {
	Apply(path string, content []string, edits []*types.EditOperation) (*types.PatchResult, error)
}

// EngineApplier is the default Applier: a patch engine whose locator
// gains the structural stage when the path's language is parseable.
type EngineApplier struct {
	Log zerolog.Logger
}

func (a *EngineApplier) Apply(path string, content []string, edits []*types.EditOperation) (*types.PatchResult, error) {
	var structural locate.StructuralMatcher
	if m, ok := syntax.MatcherForPath(path); ok {
		structural = m
	}
	return engine.New(locate.New(structural), a.Log).Apply(path, content, edits)
}

// RouteResult holds the outcome of routing a parsed batch.
type RouteResult struct {
	Results []*types.PatchResult // Per touched file, in first-seen order
	Created []string             // Files created by this batch
	Errors  []error
}

// Changed reports whether any file's content differs after routing.
func (r *RouteResult) Changed() bool {
	for _, res := range r.Results {
		if res.Changed() {
			return true
		}
	}
	return len(r.Created) > 0
}

// Router groups parsed edits per target file and applies each file's
// batch through the patch engine. One file's failure never blocks the
// others.
type Router struct {
	Store   *workspace.Store
	Applier Applier // Defaults to EngineApplier
	Persist bool    // Write results back immediately (no review step)
	Log     zerolog.Logger
}

// ApplyAll routes every edit. Creation edits materialize files first,
// then each file's remaining edits run as one batch against its current
// content. A missing file whose edits are all insertions is created on
// the fly.
func (r *Router) ApplyAll(edits []*ParsedEdit) *RouteResult {
	result := &RouteResult{}
	applier := r.Applier
	if applier == nil {
		applier = &EngineApplier{Log: r.Log}
	}

	var order []string
	byPath := make(map[string][]*ParsedEdit)
	for _, ed := range edits {
		if _, ok := byPath[ed.Path]; !ok {
			order = append(order, ed.Path)
		}
		byPath[ed.Path] = append(byPath[ed.Path], ed)
	}

	for _, path := range order {
		var ops []*types.EditOperation
		for _, ed := range byPath[path] {
			if ed.Create {
				if err := r.Store.Create(path, ed.New); err != nil {
					result.Errors = append(result.Errors, err)
					continue
				}
				result.Created = append(result.Created, path)
				continue
			}
			ops = append(ops, &types.EditOperation{OldBlock: ed.Old, NewBlock: ed.New})
		}
		if len(ops) == 0 {
			continue
		}

		var content []string
		materialize := false
		if r.Store.Exists(path) {
			var err error
			content, err = r.Store.ReadLines(path)
			if err != nil {
				result.Errors = append(result.Errors, err)
				continue
			}
		} else if allInsertions(byPath[path]) {
			materialize = true
		} else {
			result.Errors = append(result.Errors, fmt.Errorf("file not found: %s", path))
			continue
		}

		res, err := applier.Apply(path, content, ops)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("%s: %w", path, err))
			continue
		}
		result.Results = append(result.Results, res)

		if r.Persist && res.Changed() {
			var werr error
			if materialize {
				werr = r.Store.Create(path, res.Content)
				if werr == nil {
					result.Created = append(result.Created, path)
				}
			} else {
				werr = r.Store.WriteLines(path, res.Content)
			}
			if werr != nil {
				result.Errors = append(result.Errors, werr)
			}
		}
	}

	return result
}

func allInsertions(edits []*ParsedEdit) bool {
	for _, ed := range edits {
		if ed.Create {
			continue
		}
		if len(ed.Old) == 0 || (len(ed.Old) == 1 && ed.Old[0] == "") {
			continue
		}
		return false
	}
	return true
}
