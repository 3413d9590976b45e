// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Implements: prd015-public-api R4, R5;
//
//	docs/ARCHITECTURE § Public API.
package edit

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/petar-djukic/go-edit/internal/editformat"
	nvimhost "github.com/petar-djukic/go-edit/internal/host/nvim"
	"github.com/petar-djukic/go-edit/internal/host/term"
	"github.com/petar-djukic/go-edit/internal/llm"
	"github.com/petar-djukic/go-edit/internal/runner"
	"github.com/petar-djukic/go-edit/internal/workspace"
)

const (
	defaultMaxRetries     = 3
	defaultMapTokenBudget = 2048
	defaultMaxTokens      = 4096
	defaultLLMTimeout     = 5 * time.Minute
)

// New validates the config, wires hosts and the LLM client, and returns
// a ready-to-use Editor. Without a Model the Editor is batch-only: Run
// refuses, ApplyBatch works. It does not index the repository; that
// happens per call.
//
// Implements: prd015-public-api R4.1-R4.4.
func New(cfg Config) (Editor, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	applyDefaults(&cfg)
	log := cfg.Logger

	store := workspace.NewStore(cfg.WorkDir, log)
	store.FormatGo = !cfg.NoFormat

	var client *llm.Client
	if cfg.Model != "" {
		var err error
		client, err = llm.NewClient(context.Background(), llm.ClientConfig{
			ModelID:   cfg.Model,
			Region:    cfg.Region,
			Timeout:   defaultLLMTimeout,
			MaxTokens: cfg.MaxTokens,
			Log:       log,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLLMFailure, err)
		}
	}

	deps := runner.Deps{
		LLMClient:      client,
		Store:          store,
		WorkDir:        cfg.WorkDir,
		Mentioned:      cfg.Mentioned,
		MaxRetries:     cfg.MaxRetries,
		TestCmd:        cfg.TestCmd,
		MapTokenBudget: cfg.MapTokenBudget,
		NoGit:          cfg.NoGit,
		AutoCommit:     cfg.AutoCommit,
		DirtyCommit:    cfg.DirtyCommit,
		Log:            log,
	}

	ed := &editor{cfg: cfg, store: store}

	if cfg.NvimAddress != "" {
		host, err := nvimhost.Connect(cfg.NvimAddress, log)
		if err != nil {
			return nil, fmt.Errorf("%w: nvim: %v", ErrInvalidConfig, err)
		}
		ed.host = host
		deps.Surface = host
		deps.Persist = &bufferedPersister{store: store, host: host, log: log}
	} else if cfg.Review {
		deps.Surface = term.NewSurface(os.Stderr)
	}

	if cfg.Review {
		deps.Driver = term.NewLoop(os.Stdin, os.Stderr).Run
	}

	ed.runner = runner.NewRunner(deps)
	return ed, nil
}

// editor adapts internal/runner.Runner to the public Editor interface.
type editor struct {
	cfg    Config
	runner *runner.Runner
	store  *workspace.Store
	host   *nvimhost.Host // nil without NvimAddress
}

func (e *editor) Run(ctx context.Context, prompt string) (*Result, error) {
	if e.cfg.Model == "" {
		return nil, fmt.Errorf("%w: no model configured", ErrLLMFailure)
	}
	if err := e.syncOverlays(); err != nil {
		return nil, err
	}

	ir, err := e.runner.Run(ctx, prompt)
	if ir == nil {
		return &Result{}, mapError(err)
	}
	return convertResult(ir), mapError(err)
}

func (e *editor) ApplyBatch(ctx context.Context, path string, edits []Edit) (*Result, error) {
	if len(edits) == 0 {
		return &Result{}, ErrNoChanges
	}
	if err := e.syncOverlays(); err != nil {
		return nil, err
	}

	parsed := make([]*editformat.ParsedEdit, len(edits))
	for i, ed := range edits {
		parsed[i] = &editformat.ParsedEdit{Path: path, Old: ed.Old, New: ed.New}
	}

	ir, err := e.runner.ApplyEdits(ctx, parsed)
	if ir == nil {
		return &Result{}, err
	}
	res := convertResult(ir)
	if err == nil && len(res.ModifiedFiles) == 0 {
		return res, ErrNoChanges
	}
	return res, err
}

func (e *editor) Close() error {
	if e.host == nil {
		return nil
	}
	return e.host.Close()
}

// syncOverlays snapshots open nvim buffers into the workspace so reads
// see live editor content rather than stale disk files.
func (e *editor) syncOverlays() error {
	if e.host == nil {
		return nil
	}
	abs, err := filepath.Abs(e.cfg.WorkDir)
	if err != nil {
		abs = e.cfg.WorkDir
	}
	overlays, err := e.host.Overlays(abs)
	if err != nil {
		return fmt.Errorf("reading nvim buffers: %w", err)
	}
	for path, content := range overlays {
		e.store.SetOverlay(path, content)
	}
	return nil
}

// bufferedPersister lands resolved content in the workspace, then
// refreshes the matching nvim buffer so the editor view tracks the file.
type bufferedPersister struct {
	store *workspace.Store
	host  *nvimhost.Host
	log   zerolog.Logger
}

func (p *bufferedPersister) WriteLines(path string, content []string) error {
	if err := p.store.Put(path, content); err != nil {
		return err
	}

	final, err := p.store.ReadLines(path)
	if err != nil {
		final = content
	}
	if err := p.host.WriteLines(p.store.Abs(path), final); err != nil {
		// Content is already on disk; a stale buffer is survivable.
		p.log.Warn().Err(err).Str("path", path).Msg("nvim buffer refresh failed")
	}
	return nil
}

func convertResult(ir *runner.RunResult) *Result {
	return &Result{
		ModifiedFiles: ir.ModifiedFiles,
		Errors:        ir.Errors,
		TokensUsed:    ir.TokensUsed,
		Retries:       ir.Retries,
		Success:       ir.Success,
	}
}

// mapError translates internal failures onto the public sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var noEdits *editformat.NoEditsFoundError
	var malformed *editformat.ParseError
	switch {
	case errors.Is(err, llm.ErrLLMFailure):
		return fmt.Errorf("%w: %v", ErrLLMFailure, err)
	case errors.As(err, &noEdits), errors.As(err, &malformed):
		return fmt.Errorf("%w: %v", ErrParseFailure, err)
	}
	return err
}

// validateConfig checks that required fields are present.
//
// Implements: prd015-public-api R1.12-R1.15.
func validateConfig(cfg Config) error {
	if cfg.WorkDir == "" {
		return fmt.Errorf("WorkDir is required")
	}
	if info, err := os.Stat(cfg.WorkDir); err != nil || !info.IsDir() {
		return fmt.Errorf("WorkDir %q does not exist or is not a directory", cfg.WorkDir)
	}
	if cfg.Model != "" && cfg.Region == "" {
		return fmt.Errorf("Region is required when Model is set")
	}
	if cfg.Model == "" && cfg.Region != "" {
		return fmt.Errorf("Model is required when Region is set")
	}
	return nil
}

// applyDefaults fills in zero-value fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.MapTokenBudget == 0 {
		cfg.MapTokenBudget = defaultMapTokenBudget
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
}
