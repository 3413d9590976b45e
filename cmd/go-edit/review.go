// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Implements: prd013-cli R5.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/petar-djukic/go-edit/internal/host/term"
	"github.com/petar-djukic/go-edit/internal/lines"
	"github.com/petar-djukic/go-edit/internal/review"
	"github.com/petar-djukic/go-edit/internal/workspace"
	"github.com/petar-djukic/go-edit/pkg/types"
)

// newReviewCmd creates the "review" command.
func newReviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "review <file> <proposed-file>",
		Short: "Review proposed content for one file hunk by hunk",
		Long: "Review diffs a file in the repository against proposed content, walks the hunks " +
			"interactively, and persists whatever survives.",
		Args: cobra.ExactArgs(2),
		RunE: runReview,
	}
}

// runReview reviews one file against proposed content.
func runReview(cmd *cobra.Command, args []string) error {
	path, proposedPath := args[0], args[1]

	log := newLogger()
	store := workspace.NewStore(viper.GetString("workdir"), log)
	store.FormatGo = !viper.GetBool("no-format")

	var baseline []string
	if store.Exists(path) {
		var err error
		baseline, err = store.ReadLines(path)
		if err != nil {
			return err
		}
	}

	data, err := os.ReadFile(proposedPath)
	if err != nil {
		return fmt.Errorf("reading proposed content: %w", err)
	}

	var final types.ReviewEvent
	sess, err := review.Begin(path, baseline, lines.Split(string(data)), review.Deps{
		Persist: putPersister{store: store},
		Surface: term.NewSurface(os.Stderr),
		OnEvent: func(ev types.ReviewEvent) { final = ev },
		Log:     log,
	})
	if err != nil {
		return err
	}

	if err := term.NewLoop(os.Stdin, os.Stderr).Run(sess); err != nil {
		return err
	}

	printResult(struct {
		Path      string `json:"path"`
		Action    string `json:"action"`
		Persisted bool   `json:"persisted"`
		Issues    int    `json:"issues"`
	}{final.Path, final.Action.String(), final.Persisted, final.IssueCount})
	return nil
}

// putPersister adapts the workspace store to the review persister.
type putPersister struct {
	store *workspace.Store
}

func (p putPersister) WriteLines(path string, content []string) error {
	return p.store.Put(path, content)
}
