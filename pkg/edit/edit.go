// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package edit defines the public interface for go-edit, a fuzzy
// patch-application engine and code-editing assistant library.
// Implements: prd015-public-api R1, R2, R3, R6;
//
//	docs/ARCHITECTURE § Public API.
package edit

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/petar-djukic/go-edit/pkg/types"
)

// Error types for the Editor API.
//
// Implements: prd015-public-api R6.1-R6.4.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLLMFailure    = errors.New("LLM call failed")
	ErrParseFailure  = errors.New("failed to parse LLM response into edits")
	ErrNoChanges     = errors.New("no changes to apply")
)

// Config configures an Editor instance.
//
// Implements: prd015-public-api R1.1-R1.15.
type Config struct {
	WorkDir        string         // Repository root (required)
	Model          string         // Bedrock model ID (required for Run)
	Region         string         // AWS region (required for Run)
	MaxRetries     int            // Maximum feedback loop iterations (default 3)
	TestCmd        string         // Test command run by diagnostics (empty = skip tests)
	MapTokenBudget int            // Token budget for the context map (default 2048)
	MaxTokens      int            // Maximum tokens for the LLM response (default 4096)
	Mentioned      []string       // Files the prompt concerns; scopes context reads
	Review         bool           // Review hunks interactively instead of accepting all
	NvimAddress    string         // Attach to a running Neovim at this RPC address
	NoGit          bool           // Disable git operations
	AutoCommit     bool           // Checkpoint modified files after a successful run
	DirtyCommit    bool           // Commit pre-existing changes instead of refusing
	NoFormat       bool           // Skip Go formatting on write
	Logger         zerolog.Logger // Library logging; the zero value is silent
}

// Edit is one search/replace block. An empty Old block means insertion:
// at the top of an existing file, or as the content of a new one.
type Edit struct {
	Old []string // Lines to locate; empty means insertion
	New []string // Replacement lines
}

// Result holds the outcome of an Editor invocation.
//
// Implements: prd015-public-api R3.1-R3.5.
type Result struct {
	ModifiedFiles []string         // Paths of files changed
	Errors        []string         // Remaining errors after all retries
	TokensUsed    types.TokenUsage // Total tokens consumed
	Retries       int              // Number of retry iterations performed
	Success       bool             // True if no errors remain
}

// Editor runs editing tasks against a repository.
//
// Implements: prd015-public-api R2.1-R2.5.
type Editor interface {
	// Run executes the full assistant lifecycle: map the repository, send
	// the prompt to the LLM, parse edits, apply them through review,
	// verify, retry on failure, and return the result.
	Run(ctx context.Context, prompt string) (*Result, error)

	// ApplyBatch applies pre-built edits to one file through the same
	// apply, review, and verification path, with no model in the loop.
	// A batch that leaves the file untouched returns ErrNoChanges.
	ApplyBatch(ctx context.Context, path string, edits []Edit) (*Result, error)

	// Close releases host connections. Safe to call on every Editor.
	Close() error
}
