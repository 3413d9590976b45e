// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Implements: prd011-git-integration R1, R2, R4;
//
//	docs/ARCHITECTURE § Git Checkpoints.
package git

import (
	"fmt"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

const (
	authorName  = "go-edit"
	authorEmail = "noreply@go-edit"
)

// HandleDirty checks for uncommitted changes and either saves them in a
// separate commit or refuses to proceed, depending on Config.DirtyCommit.
// Keeping the user's own work out of the checkpoint commit is what makes
// Undo safe.
//
// Implements: prd011-git-integration R2.1-R2.4.
func (r *Repo) HandleDirty() error {
	dirty, err := r.IsDirty()
	if err != nil {
		return err
	}
	if !dirty {
		return nil
	}
	if !r.cfg.DirtyCommit {
		return ErrDirtyWorkTree
	}

	wt, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("getting worktree: %w", err)
	}

	if _, err := wt.Add("."); err != nil {
		return fmt.Errorf("staging dirty files: %w", err)
	}

	_, err = wt.Commit(dirtyCommitMsg, &gogit.CommitOptions{
		Author: signature(),
	})
	if err != nil {
		return fmt.Errorf("committing dirty files: %w", err)
	}

	return nil
}

// Checkpoint stages the reviewed files and commits them with a generated
// message carrying the go-edit trailer. A no-op when AutoCommit is off.
//
// Implements: prd011-git-integration R1.1-R1.4.
func (r *Repo) Checkpoint(files []string, prompt string) error {
	if !r.cfg.AutoCommit {
		return nil
	}

	wt, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("getting worktree: %w", err)
	}

	// Only the files the assistant touched; everything else stays out.
	for _, f := range files {
		if _, err := wt.Add(f); err != nil {
			return fmt.Errorf("staging %s: %w", f, err)
		}
	}

	msg := GenerateMessage(prompt, files)

	_, err = wt.Commit(msg, &gogit.CommitOptions{
		Author: signature(),
	})
	if err != nil {
		return fmt.Errorf("committing: %w", err)
	}

	return nil
}

// Undo soft-resets HEAD to its parent, but only when HEAD is a go-edit
// checkpoint. The edits stay staged in the working tree.
//
// Implements: prd011-git-integration R4.1-R4.4.
func (r *Repo) Undo() error {
	ours, err := r.IsAssistantCommit()
	if err != nil {
		return err
	}
	if !ours {
		return ErrNotAssistantCommit
	}

	head, err := r.repo.Head()
	if err != nil {
		return fmt.Errorf("getting HEAD: %w", err)
	}

	commit, err := r.repo.CommitObject(head.Hash())
	if err != nil {
		return fmt.Errorf("getting commit: %w", err)
	}

	if commit.NumParents() == 0 {
		return fmt.Errorf("cannot undo: HEAD is the initial commit")
	}

	parent, err := commit.Parent(0)
	if err != nil {
		return fmt.Errorf("getting parent commit: %w", err)
	}

	wt, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("getting worktree: %w", err)
	}

	err = wt.Reset(&gogit.ResetOptions{
		Commit: parent.Hash,
		Mode:   gogit.SoftReset,
	})
	if err != nil {
		return fmt.Errorf("resetting to parent: %w", err)
	}

	return nil
}

func signature() *object.Signature {
	return &object.Signature{
		Name:  authorName,
		Email: authorEmail,
		When:  time.Now(),
	}
}
