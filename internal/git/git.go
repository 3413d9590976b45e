// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package git provides checkpoint commits, dirty worktree handling, and
// undo for assistant-generated edits.
// Implements: prd011-git-integration R1, R2, R4, R5;
//
//	docs/ARCHITECTURE § Git Checkpoints.
package git

import (
	"errors"
	"fmt"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

const (
	coAuthorTrailer = "Co-Authored-By: go-edit <noreply@go-edit>"
	dirtyCommitMsg  = "go-edit: save uncommitted changes before edit"
)

// ErrNotAssistantCommit is returned when undo targets a commit go-edit did
// not make.
var ErrNotAssistantCommit = errors.New("not a go-edit commit")

// ErrDirtyWorkTree is returned when uncommitted changes exist and
// DirtyCommit is disabled.
var ErrDirtyWorkTree = errors.New("uncommitted changes exist")

// ErrNoGit is returned when the working directory is not a git repository.
var ErrNoGit = errors.New("not a git repository")

// Config configures git integration behavior.
type Config struct {
	WorkDir     string // Repository working directory
	AutoCommit  bool   // Create checkpoint commits after reviewed edits
	DirtyCommit bool   // Commit pre-existing dirty files before editing
}

// Repo wraps a go-git repository for the operations go-edit needs.
type Repo struct {
	repo *gogit.Repository
	cfg  Config
}

// Open opens the git repository at the configured work directory. Returns
// ErrNoGit when the directory is not under version control.
//
// Implements: prd011-git-integration R1.5, R5.1.
func Open(cfg Config) (*Repo, error) {
	r, err := gogit.PlainOpen(cfg.WorkDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoGit, err)
	}
	return &Repo{repo: r, cfg: cfg}, nil
}

// IsDirty reports whether the working tree has uncommitted changes, staged
// or unstaged.
//
// Implements: prd011-git-integration R2.1, R2.4.
func (r *Repo) IsDirty() (bool, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("getting worktree: %w", err)
	}

	status, err := wt.Status()
	if err != nil {
		return false, fmt.Errorf("getting status: %w", err)
	}

	return !status.IsClean(), nil
}

// IsAssistantCommit reports whether the HEAD commit was made by go-edit,
// identified by the Co-Authored-By trailer.
//
// Implements: prd011-git-integration R4.2.
func (r *Repo) IsAssistantCommit() (bool, error) {
	head, err := r.repo.Head()
	if err != nil {
		return false, fmt.Errorf("getting HEAD: %w", err)
	}

	commit, err := r.repo.CommitObject(head.Hash())
	if err != nil {
		return false, fmt.Errorf("getting commit: %w", err)
	}

	return strings.Contains(commit.Message, coAuthorTrailer), nil
}

// lastCommitMessage returns the message of the HEAD commit.
func (r *Repo) lastCommitMessage() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", err
	}
	commit, err := r.repo.CommitObject(head.Hash())
	if err != nil {
		return "", err
	}
	return commit.Message, nil
}

// commitCount returns the number of commits reachable from HEAD.
func (r *Repo) commitCount() (int, error) {
	iter, err := r.repo.Log(&gogit.LogOptions{})
	if err != nil {
		return 0, err
	}
	count := 0
	err = iter.ForEach(func(c *object.Commit) error {
		count++
		return nil
	})
	return count, err
}
