// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Implements: prd004-review-session R6;
//
//	docs/ARCHITECTURE § Review Session.
package review

import (
	"errors"
	"sync"

	"github.com/petar-djukic/go-edit/pkg/types"
)

// ErrReviewPending rejects a second concurrent review of a path. Reviews
// of different paths may run side by side; reviews of the same path must
// be serialized by the caller.
var ErrReviewPending = errors.New("a review is already pending for this path")

// Registry tracks active sessions by path. Entries drop out when their
// session fires its terminal event.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry returns an empty session registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Begin starts a registered session for path. The caller's OnEvent still
// receives the terminal event, after the registry entry is removed.
func (r *Registry) Begin(path string, baseline, proposed []string, deps Deps) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[path]; ok {
		return nil, ErrReviewPending
	}

	var s *Session
	inner := deps.OnEvent
	deps.OnEvent = func(ev types.ReviewEvent) {
		r.drop(path, s)
		if inner != nil {
			inner(ev)
		}
	}

	s, err := Begin(path, baseline, proposed, deps)
	if err != nil {
		return nil, err
	}
	r.sessions[path] = s
	return s, nil
}

// Pending reports whether a review is active for path.
func (r *Registry) Pending(path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[path]
	return ok
}

// Get returns the active session for path, if any.
func (r *Registry) Get(path string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[path]
	return s, ok
}

// CloseAll tears down every active session through its implicit close
// path. Used on host shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	open := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		open = append(open, s)
	}
	r.mu.Unlock()

	for _, s := range open {
		_ = s.Close()
	}
}

// drop removes the entry for path if it still maps to s.
func (r *Registry) drop(path string, s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sessions[path] == s {
		delete(r.sessions, path)
	}
}
