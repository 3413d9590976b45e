// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package review manages interactive hunk resolution for a proposed file
// change. A session walks the reviewer through the hunks between baseline
// and proposed content, lets each be kept or rolled back, and emits
// exactly one terminal event when the review concludes.
// Implements: prd004-review-session R1-R5;
//
//	docs/ARCHITECTURE § Review Session.
package review

import (
	"errors"
	"sync"

	"github.com/petar-djukic/go-edit/internal/diffmodel"
	"github.com/petar-djukic/go-edit/internal/lines"
	"github.com/petar-djukic/go-edit/pkg/types"

	"github.com/rs/zerolog"
)

// ErrNoChanges reports that baseline and proposed content are identical,
// so there is nothing to review.
var ErrNoChanges = errors.New("no changes to review")

// Surface renders review focus on some host: an editor buffer, a
// terminal, anything that can present one hunk at a time. Surface errors
// never affect review correctness; they are logged and dropped.
type Surface interface {
	// ShowHunk presents the focused hunk. index is 1-based, total is the
	// number of hunks still pending.
	ShowHunk(path string, hunk *types.Hunk, index, total int) error
	// Clear removes any review decoration for the path.
	Clear(path string) error
}

// Persister writes final content back to its path once a review resolves.
type Persister interface {
	WriteLines(path string, content []string) error
}

// DiagnosticsSource counts issues against content. The count is carried
// in the terminal event for reporting only and never gates the review.
type DiagnosticsSource interface {
	IssueCount(path string, content []string) int
}

// Deps holds injected collaborators for a session. All fields are
// optional except that a session without OnEvent is only useful for its
// accessors.
type Deps struct {
	Persist     Persister
	Diagnostics DiagnosticsSource
	Surface     Surface
	OnEvent     func(types.ReviewEvent)
	Log         zerolog.Logger
}

// Session is the state of one in-progress review. All operations are
// serialized internally; exactly one decision is processed at a time.
//
// OnEvent runs on the goroutine that triggered finalization, while the
// session is locked. It must not call back into the session.
type Session struct {
	mu       sync.Mutex
	path     string
	baseline []string
	current  []string
	pending  []*types.Hunk
	cursor   int
	phase    types.ReviewPhase
	fired    bool
	deps     Deps
}

// Begin diffs baseline against proposed and starts a review over the
// resulting hunks. Returns ErrNoChanges when the two are identical.
func Begin(path string, baseline, proposed []string, deps Deps) (*Session, error) {
	hunks := diffmodel.Diff(baseline, proposed)
	if len(hunks) == 0 {
		return nil, ErrNoChanges
	}

	pending := make([]*types.Hunk, len(hunks))
	for i := range hunks {
		pending[i] = &hunks[i]
	}

	s := &Session{
		path:     path,
		baseline: lines.Clone(baseline),
		current:  lines.Clone(proposed),
		pending:  pending,
		phase:    types.Reviewing,
		deps:     deps,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.showLocked()
	return s, nil
}

// Accept keeps the focused hunk's proposed lines. Content is already in
// its proposed form, so only the pending set changes. Accepting the last
// hunk finalizes the session.
func (s *Session) Accept() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fired || len(s.pending) == 0 {
		return nil
	}

	s.removeFocusedLocked()
	s.afterDecisionLocked()
	return nil
}

// Revert rolls the focused hunk back to its baseline lines, splicing
// them over the proposed lines at the hunk's current position. Every
// later hunk's range shifts by the line-count delta. Reverting the last
// hunk finalizes the session.
func (s *Session) Revert() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fired || len(s.pending) == 0 {
		return nil
	}

	h := s.pending[s.cursor]
	s.current = lines.Splice(s.current, h.NewRange, h.OldLines)

	delta := len(h.OldLines) - len(h.NewLines)
	s.removeFocusedLocked()
	if delta != 0 {
		for _, rest := range s.pending {
			if rest.NewRange.StartLine > h.NewRange.EndLine {
				rest.NewRange.StartLine += delta
				rest.NewRange.EndLine += delta
			}
		}
	}

	s.afterDecisionLocked()
	return nil
}

// AcceptAll keeps every remaining hunk and finalizes the session.
func (s *Session) AcceptAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fired {
		return nil
	}

	s.pending = nil
	s.finalizeLocked(types.ActionResolved)
	return nil
}

// Next moves review focus to the following pending hunk.
func (s *Session) Next() error {
	return s.navigate(1)
}

// Prev moves review focus to the preceding pending hunk.
func (s *Session) Prev() error {
	return s.navigate(-1)
}

func (s *Session) navigate(step int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fired || len(s.pending) == 0 {
		return nil
	}

	next := s.cursor + step
	if next < 0 || next >= len(s.pending) {
		return nil
	}
	s.cursor = next
	s.showLocked()
	return nil
}

// Cancel discards every pending hunk and restores baseline content
// exactly. Idempotent: calls after the terminal event are no-ops.
func (s *Session) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fired {
		return nil
	}

	s.pending = nil
	s.current = lines.Clone(s.baseline)
	s.finalizeLocked(types.ActionCancelled)
	return nil
}

// Close is the implicit teardown path, for hosts whose review surface is
// destroyed without an explicit decision. With no hunks pending it
// behaves as a resolution; otherwise the session closes with whatever
// content exists, unpersisted, since undecided hunks must not land.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fired {
		return nil
	}

	if len(s.pending) == 0 {
		s.finalizeLocked(types.ActionResolved)
	} else {
		s.finalizeLocked(types.ActionClosed)
	}
	return nil
}

// Phase returns the session's current phase.
func (s *Session) Phase() types.ReviewPhase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Path returns the reviewed file's path.
func (s *Session) Path() string { return s.path }

// PendingCount returns how many hunks remain undecided.
func (s *Session) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Focused returns the hunk currently under review, or nil when none
// remain. The returned hunk must not be mutated.
func (s *Session) Focused() *types.Hunk {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		return nil
	}
	return s.pending[s.cursor]
}

// Current returns a copy of the session's working content.
func (s *Session) Current() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lines.Clone(s.current)
}

func (s *Session) removeFocusedLocked() {
	s.pending = append(s.pending[:s.cursor], s.pending[s.cursor+1:]...)
}

func (s *Session) afterDecisionLocked() {
	if len(s.pending) == 0 {
		s.finalizeLocked(types.ActionResolved)
		return
	}
	if s.cursor >= len(s.pending) {
		s.cursor = len(s.pending) - 1
	}
	s.showLocked()
}

// finalizeLocked is the single termination routine. Every terminal path
// funnels through it; the fired flag guarantees the event is emitted
// exactly once. A failed write-back demotes a resolution to Closed and
// the event's Final content becomes authoritative.
func (s *Session) finalizeLocked(action types.ReviewAction) {
	if s.fired {
		return
	}
	s.fired = true

	if s.deps.Surface != nil {
		if err := s.deps.Surface.Clear(s.path); err != nil {
			s.deps.Log.Debug().Err(err).Str("path", s.path).Msg("clearing review surface failed")
		}
	}

	persisted := false
	if action == types.ActionResolved && s.deps.Persist != nil {
		if err := s.deps.Persist.WriteLines(s.path, s.current); err != nil {
			s.deps.Log.Warn().Err(err).Str("path", s.path).Msg("persisting reviewed content failed")
			action = types.ActionClosed
		} else {
			persisted = true
		}
	}

	switch action {
	case types.ActionResolved:
		s.phase = types.Resolved
	case types.ActionCancelled:
		s.phase = types.Cancelled
	default:
		s.phase = types.Closed
	}

	diff := diffmodel.Unified(s.baseline, s.current, "a/"+s.path, "b/"+s.path)
	ev := types.ReviewEvent{
		Path:        s.path,
		Action:      action,
		Diff:        diff,
		Fingerprint: diffmodel.Fingerprint(diff),
		Final:       lines.Clone(s.current),
		Persisted:   persisted,
	}
	if s.deps.Diagnostics != nil {
		ev.IssueCount = s.deps.Diagnostics.IssueCount(s.path, s.current)
	}

	s.deps.Log.Debug().
		Str("path", s.path).
		Str("action", action.String()).
		Str("fingerprint", ev.Fingerprint).
		Int("issues", ev.IssueCount).
		Bool("persisted", persisted).
		Msg("review finalized")

	if s.deps.OnEvent != nil {
		s.deps.OnEvent(ev)
	}
}

func (s *Session) showLocked() {
	if s.deps.Surface == nil || len(s.pending) == 0 {
		return
	}
	h := s.pending[s.cursor]
	if err := s.deps.Surface.ShowHunk(s.path, h, s.cursor+1, len(s.pending)); err != nil {
		s.deps.Log.Debug().Err(err).Str("path", s.path).Msg("showing hunk failed")
	}
}
