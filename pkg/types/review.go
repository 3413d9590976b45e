// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Implements: prd004-review-session R1, R5;
//
//	docs/ARCHITECTURE § Review Session.
package types

// ReviewPhase is the state of a review session. A session starts in
// Reviewing and reaches exactly one of the three terminal phases.
type ReviewPhase int

const (
	Reviewing ReviewPhase = iota
	Resolved              // Every hunk decided and the result persisted
	Cancelled             // Explicitly cancelled; content restored to baseline
	Closed                // Torn down with hunks pending, or persistence failed
)

func (p ReviewPhase) String() string {
	switch p {
	case Reviewing:
		return "reviewing"
	case Resolved:
		return "resolved"
	case Cancelled:
		return "cancelled"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// ReviewAction tags how a session terminated.
type ReviewAction int

const (
	ActionResolved ReviewAction = iota
	ActionCancelled
	ActionClosed
)

func (a ReviewAction) String() string {
	switch a {
	case ActionResolved:
		return "resolved"
	case ActionCancelled:
		return "cancelled"
	case ActionClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// ReviewEvent is the single terminal notification a review session emits.
// The orchestration layer depends on receiving exactly one per session.
type ReviewEvent struct {
	Path        string
	Action      ReviewAction
	Diff        string   // Unified diff, baseline vs final content
	Fingerprint string   // Digest of Diff
	IssueCount  int      // Diagnostics against the final content (summary only)
	Final       []string // Final content; authoritative when Persisted is false
	Persisted   bool     // Whether write-back succeeded
}
