// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Implements: prd013-cli R3, R4.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/petar-djukic/go-edit/internal/editformat"
	"github.com/petar-djukic/go-edit/internal/host/term"
	"github.com/petar-djukic/go-edit/internal/runner"
	"github.com/petar-djukic/go-edit/internal/workspace"
)

// newApplyCmd creates the "apply" command.
func newApplyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply [marker-file]",
		Short: "Apply an edit batch without calling the LLM",
		Long: "Apply reads SEARCH/REPLACE blocks from a marker file or stdin, or a JSON batch " +
			"via --edits, and lands them through the same engine, review, and verification path as run.",
		Args: cobra.MaximumNArgs(1),
		RunE: runApply,
	}

	cmd.Flags().String("edits", "", "JSON edit batch file")

	return cmd
}

// runApply applies a prepared edit batch.
func runApply(cmd *cobra.Command, args []string) error {
	editsPath, _ := cmd.Flags().GetString("edits")

	var parsed []*editformat.ParsedEdit
	fromStdin := false

	switch {
	case editsPath != "":
		data, err := os.ReadFile(editsPath)
		if err != nil {
			return fmt.Errorf("reading edit batch: %w", err)
		}
		parsed, err = editformat.ParseBatch(data)
		if err != nil {
			return fmt.Errorf("decoding edit batch: %w", err)
		}
	case len(args) == 1:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading marker file: %w", err)
		}
		parsed, err = parseMarkers(string(data))
		if err != nil {
			return err
		}
	default:
		fromStdin = true
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		parsed, err = parseMarkers(string(data))
		if err != nil {
			return err
		}
	}

	if len(parsed) == 0 {
		return fmt.Errorf("no edits to apply")
	}

	log := newLogger()
	store := workspace.NewStore(viper.GetString("workdir"), log)
	store.FormatGo = !viper.GetBool("no-format")

	deps := runner.Deps{
		Store:       store,
		WorkDir:     viper.GetString("workdir"),
		TestCmd:     viper.GetString("test-cmd"),
		NoGit:       viper.GetBool("no-git"),
		AutoCommit:  viper.GetBool("auto-commit"),
		DirtyCommit: viper.GetBool("dirty-commit"),
		Log:         log,
	}

	if viper.GetBool("review") {
		in := io.Reader(os.Stdin)
		if fromStdin {
			// Stdin carries the batch; review commands need the terminal.
			tty, err := os.Open("/dev/tty")
			if err != nil {
				return fmt.Errorf("interactive review needs a terminal when edits come from stdin: %v", err)
			}
			defer tty.Close()
			in = tty
		}
		deps.Surface = term.NewSurface(os.Stderr)
		deps.Driver = term.NewLoop(in, os.Stderr).Run
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	result, err := runner.NewRunner(deps).ApplyEdits(ctx, parsed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if result != nil {
			printResult(result)
		}
		return err
	}

	printResult(result)
	return nil
}

// parseMarkers extracts edit blocks, warning about malformed ones.
func parseMarkers(text string) ([]*editformat.ParsedEdit, error) {
	res, err := editformat.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing edit blocks: %w", err)
	}
	for _, pe := range res.ParseErrors {
		fmt.Fprintf(os.Stderr, "warning: %v\n", pe)
	}
	return res.Edits, nil
}
