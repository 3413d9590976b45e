// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Implements: prd013-cli R2, R6, R7.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	gitpkg "github.com/petar-djukic/go-edit/internal/git"
	"github.com/petar-djukic/go-edit/pkg/edit"
)

// newRunCmd creates the "run" command.
func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute an editing task",
		Long: "Run takes a natural language prompt, sends it to the LLM with a repository " +
			"context map, and lands the resulting edits through review and verification.",
		RunE: runEdit,
	}

	cmd.Flags().StringP("prompt", "p", "", "Editing task description (required)")
	cmd.MarkFlagRequired("prompt")
	cmd.Flags().StringSlice("files", nil, "Files the task concerns; scopes context and boosts the map")

	return cmd
}

// runEdit executes the editing task.
func runEdit(cmd *cobra.Command, args []string) error {
	prompt, _ := cmd.Flags().GetString("prompt")
	files, _ := cmd.Flags().GetStringSlice("files")

	cfg := buildConfig()
	cfg.Mentioned = files

	ed, err := edit.New(cfg)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	defer ed.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	result, err := ed.Run(ctx, prompt)
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

// printResult outputs a result as JSON to stdout.
func printResult(result any) {
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling result: %v\n", err)
		return
	}
	fmt.Println(string(out))
}

// newUndoCmd creates the "undo" command.
func newUndoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "undo",
		Short: "Revert the last go-edit commit",
		Long:  "Undo performs a soft reset of the last commit if it was made by go-edit.",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := gitpkg.Open(gitpkg.Config{WorkDir: viper.GetString("workdir")})
			if err != nil {
				return fmt.Errorf("opening repository: %w", err)
			}

			if err := repo.Undo(); err != nil {
				return fmt.Errorf("undo failed: %w", err)
			}

			fmt.Println("Successfully reverted last go-edit commit.")
			return nil
		},
	}
}
