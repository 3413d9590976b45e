// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Command go-edit is a CLI for the go-edit library.
// Implements: prd013-cli R1, R8;
//
//	docs/ARCHITECTURE § CLI.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/petar-djukic/go-edit/pkg/edit"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "go-edit",
		Short: "Fuzzy patch engine and AI code-editing assistant",
		Long: "go-edit takes a natural language prompt or a prepared edit batch, locates each " +
			"change in your files with fuzzy matching, and lands it through review and verification.",
	}

	// Global flags.
	rootCmd.PersistentFlags().String("workdir", ".", "Repository root directory")
	rootCmd.PersistentFlags().String("model", "", "Bedrock model ID")
	rootCmd.PersistentFlags().String("region", "", "AWS region for Bedrock")
	rootCmd.PersistentFlags().Int("max-retries", 3, "Maximum feedback loop iterations")
	rootCmd.PersistentFlags().String("test-cmd", "", "Test command (e.g., 'go test ./...')")
	rootCmd.PersistentFlags().Int("map-token-budget", 2048, "Token budget for the context map")
	rootCmd.PersistentFlags().Int("max-tokens", 4096, "Maximum tokens for LLM response")
	rootCmd.PersistentFlags().Bool("review", false, "Review each hunk interactively before it lands")
	rootCmd.PersistentFlags().String("nvim", "", "Attach to a running Neovim at this RPC address")
	rootCmd.PersistentFlags().Bool("no-git", false, "Disable git operations")
	rootCmd.PersistentFlags().Bool("auto-commit", false, "Checkpoint modified files after a successful run")
	rootCmd.PersistentFlags().Bool("dirty-commit", false, "Commit pre-existing changes instead of refusing to run")
	rootCmd.PersistentFlags().Bool("no-format", false, "Skip Go formatting on write")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn, error, disabled")
	rootCmd.PersistentFlags().Bool("log-json", false, "Log as JSON instead of console text")

	viper.BindPFlags(rootCmd.PersistentFlags())

	// Env vars: GO_EDIT_MODEL, GO_EDIT_REGION, etc.
	viper.SetEnvPrefix("GO_EDIT")
	viper.AutomaticEnv()

	// Config file.
	viper.SetConfigName(".go-edit")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.ReadInConfig() // Ignore error; config file is optional.

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newApplyCmd())
	rootCmd.AddCommand(newReviewCmd())
	rootCmd.AddCommand(newUndoCmd())
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildConfig assembles the library config from flags, env, and file.
func buildConfig() edit.Config {
	return edit.Config{
		WorkDir:        viper.GetString("workdir"),
		Model:          viper.GetString("model"),
		Region:         viper.GetString("region"),
		MaxRetries:     viper.GetInt("max-retries"),
		TestCmd:        viper.GetString("test-cmd"),
		MapTokenBudget: viper.GetInt("map-token-budget"),
		MaxTokens:      viper.GetInt("max-tokens"),
		Review:         viper.GetBool("review"),
		NvimAddress:    viper.GetString("nvim"),
		NoGit:          viper.GetBool("no-git"),
		AutoCommit:     viper.GetBool("auto-commit"),
		DirtyCommit:    viper.GetBool("dirty-commit"),
		NoFormat:       viper.GetBool("no-format"),
		Logger:         newLogger(),
	}
}

// newLogger builds the CLI logger: console text on stderr by default,
// JSON when asked for.
func newLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		level = zerolog.WarnLevel
	}
	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stderr}
	if viper.GetBool("log-json") {
		out = os.Stderr
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// newVersionCmd creates the "version" command.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print go-edit version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("go-edit %s\n", version)
		},
	}
}
