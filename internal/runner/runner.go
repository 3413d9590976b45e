// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package runner orchestrates the edit lifecycle: context map, LLM
// round, edit parsing, per-file patching, review, diagnostics, bounded
// retries, and the checkpoint commit.
// Implements: prd012-runner R1, R2, R3, R4;
//
//	docs/ARCHITECTURE § Runner, Lifecycle.
package runner

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/rs/zerolog"

	"github.com/petar-djukic/go-edit/internal/diagnostics"
	"github.com/petar-djukic/go-edit/internal/editformat"
	gitpkg "github.com/petar-djukic/go-edit/internal/git"
	"github.com/petar-djukic/go-edit/internal/llm"
	"github.com/petar-djukic/go-edit/internal/repomap"
	"github.com/petar-djukic/go-edit/internal/review"
	"github.com/petar-djukic/go-edit/internal/workspace"
	"github.com/petar-djukic/go-edit/pkg/types"
)

// Prompter abstracts LLM interactions so the runner is testable.
type Prompter interface {
	Generate(ctx context.Context, system []brtypes.SystemContentBlock, messages []brtypes.Message) (string, error)
	Usage() types.TokenUsage
}

// Driver runs one interactive review session to completion. A nil Driver
// means sessions resolve by accepting every hunk.
type Driver func(sess *review.Session) error

// Deps holds injected dependencies for the runner.
type Deps struct {
	LLMClient      *llm.Client // Real client; nil when Prompter is set.
	Prompter       Prompter    // Mock for testing; overrides LLMClient.
	Store          *workspace.Store
	WorkDir        string
	Mentioned      []string // Files the user named; boosts the map and scopes context reads
	MaxRetries     int
	TestCmd        string
	MapTokenBudget int
	NoGit          bool
	AutoCommit     bool
	DirtyCommit    bool
	Surface        review.Surface   // Optional host surface for review focus
	Persist        review.Persister // Overrides the workspace write on resolve
	Driver         Driver           // Interactive review; nil resolves sessions automatically
	Log            zerolog.Logger
}

// RunResult holds the outcome of a Runner.Run invocation. This is the
// internal result type; pkg/edit converts it to the public Result.
type RunResult struct {
	ModifiedFiles []string
	Errors        []string
	TokensUsed    types.TokenUsage
	Retries       int
	Success       bool
}

// Runner orchestrates the edit lifecycle.
type Runner struct {
	deps     Deps
	store    *workspace.Store
	registry *review.Registry
	diag     *reportSource
}

// NewRunner creates a Runner with the given dependencies. A missing
// Store is created over WorkDir.
func NewRunner(deps Deps) *Runner {
	store := deps.Store
	if store == nil {
		store = workspace.NewStore(deps.WorkDir, deps.Log)
	}
	return &Runner{
		deps:     deps,
		store:    store,
		registry: review.NewRegistry(),
		diag:     &reportSource{},
	}
}

// Registry exposes the review registry, for hosts that tear sessions
// down on shutdown.
func (r *Runner) Registry() *review.Registry {
	return r.registry
}

// Run executes the full lifecycle: dirty-tree handling, context map,
// prompt, parse, apply, review, diagnostics, retries, checkpoint.
//
// Implements: prd012-runner R1.1-R1.8.
func (r *Runner) Run(ctx context.Context, prompt string) (*RunResult, error) {
	result := &RunResult{}

	repo := r.openRepo()
	if repo != nil {
		if err := repo.HandleDirty(); err != nil {
			return result, fmt.Errorf("handling dirty work tree: %w", err)
		}
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	mapResult, err := repomap.Build(ctx, r.deps.WorkDir, r.deps.Mentioned, float64(r.deps.MapTokenBudget))
	if err != nil {
		return result, fmt.Errorf("building context map: %w", err)
	}

	systemPrompt, err := llm.RenderSystemPrompt(llm.TemplateData{
		OS:        runtime.GOOS,
		GoVersion: runtime.Version(),
	})
	if err != nil {
		return result, fmt.Errorf("rendering system prompt: %w", err)
	}

	files := r.readContextFiles()

	system, messages := llm.ConstructMessages(systemPrompt, mapResult.Map, files, prompt)

	responseText, err := r.generate(ctx, system, messages)
	if err != nil {
		return result, fmt.Errorf("LLM call failed: %w", err)
	}

	parsed, err := editformat.Parse(responseText)
	if err != nil {
		return result, fmt.Errorf("parsing model response: %w", err)
	}
	for _, pe := range parsed.ParseErrors {
		result.Errors = append(result.Errors, pe.Error())
	}

	round, err := r.applyRound(ctx, parsed.Edits)
	if err != nil {
		return result, err
	}
	result.merge(round)

	// Retry loop. Each retry feeds the diagnostics back to the model and
	// lands the next batch; it stops early when a retry changes nothing,
	// measured by the per-file diff fingerprints.
	prevMessages, prevResponse := messages, responseText
	landed := round.fingerprints

	rep := r.check(ctx)
	for attempt := 0; !rep.Clean() && attempt < r.deps.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		feedback := diagnostics.Format(rep, result.ModifiedFiles, diagnostics.FormatConfig{})
		retryMessages := llm.ConstructRetryMessages(prevMessages, prevResponse, feedback)

		retryText, err := r.generate(ctx, system, retryMessages)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("retry call failed: %v", err))
			break
		}

		retryParsed, err := editformat.Parse(retryText)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("retry response unparsable: %v", err))
			break
		}

		round, err = r.applyRound(ctx, retryParsed.Edits)
		if err != nil {
			return result, err
		}
		result.merge(round)
		result.Retries = attempt + 1
		prevMessages, prevResponse = retryMessages, retryText

		if !progressed(landed, round.fingerprints) {
			r.deps.Log.Info().Int("attempt", attempt+1).Msg("retry landed no new content, stopping")
			break
		}
		for path, fp := range round.fingerprints {
			landed[path] = fp
		}

		rep = r.check(ctx)
	}

	result.Success = rep.Clean()
	if !result.Success {
		for _, d := range rep.Issues {
			result.Errors = append(result.Errors, d.String())
		}
		if !rep.TestOK && rep.TestOutput != "" {
			result.Errors = append(result.Errors, "test failure: "+rep.TestOutput)
		}
	}

	result.TokensUsed = r.usage()

	if result.Success && repo != nil && len(result.ModifiedFiles) > 0 {
		if err := repo.Checkpoint(result.ModifiedFiles, prompt); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("checkpoint commit failed: %v", err))
		}
	}

	return result, nil
}

// ApplyEdits routes an already-parsed batch through patching, review,
// and one diagnostics pass. No LLM round, no retries.
//
// Implements: prd012-runner R3.1-R3.3.
func (r *Runner) ApplyEdits(ctx context.Context, edits []*editformat.ParsedEdit) (*RunResult, error) {
	result := &RunResult{}

	repo := r.openRepo()
	if repo != nil {
		if err := repo.HandleDirty(); err != nil {
			return result, fmt.Errorf("handling dirty work tree: %w", err)
		}
	}

	round, err := r.applyRound(ctx, edits)
	if err != nil {
		return result, err
	}
	result.merge(round)

	rep := r.check(ctx)
	result.Success = rep.Clean()
	if !result.Success {
		for _, d := range rep.Issues {
			result.Errors = append(result.Errors, d.String())
		}
		if !rep.TestOK && rep.TestOutput != "" {
			result.Errors = append(result.Errors, "test failure: "+rep.TestOutput)
		}
	}

	if result.Success && repo != nil && len(result.ModifiedFiles) > 0 {
		if err := repo.Checkpoint(result.ModifiedFiles, ""); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("checkpoint commit failed: %v", err))
		}
	}

	return result, nil
}

// roundOutcome is what one applied batch left behind.
type roundOutcome struct {
	modified     []string
	fingerprints map[string]string
	errors       []error
}

// applyRound routes the batch through the patch engine, then settles
// each changed file through a review session: the injected driver when
// reviewing interactively, accept-all otherwise. Only review errors from
// the driver abort the round; everything else accumulates.
func (r *Runner) applyRound(ctx context.Context, edits []*editformat.ParsedEdit) (*roundOutcome, error) {
	out := &roundOutcome{fingerprints: make(map[string]string)}

	router := &editformat.Router{Store: r.store, Log: r.deps.Log}
	routed := router.ApplyAll(edits)

	out.errors = append(out.errors, routed.Errors...)
	out.modified = append(out.modified, routed.Created...)

	for _, res := range routed.Results {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		if !res.Changed() {
			continue
		}

		var baseline []string
		if r.store.Exists(res.Path) {
			var err error
			baseline, err = r.store.ReadLines(res.Path)
			if err != nil {
				out.errors = append(out.errors, err)
				continue
			}
		}

		persist := review.Persister(storePersister{store: r.store})
		if r.deps.Persist != nil {
			persist = r.deps.Persist
		}

		var events []types.ReviewEvent
		sess, err := r.registry.Begin(res.Path, baseline, res.Content, review.Deps{
			Persist:     persist,
			Diagnostics: r.diag,
			Surface:     r.deps.Surface,
			OnEvent:     func(ev types.ReviewEvent) { events = append(events, ev) },
			Log:         r.deps.Log,
		})
		if errors.Is(err, review.ErrNoChanges) {
			continue
		}
		if err != nil {
			out.errors = append(out.errors, fmt.Errorf("%s: %w", res.Path, err))
			continue
		}

		if r.deps.Driver != nil {
			if err := r.deps.Driver(sess); err != nil {
				sess.Close()
				return out, fmt.Errorf("reviewing %s: %w", res.Path, err)
			}
		} else {
			if err := sess.AcceptAll(); err != nil {
				out.errors = append(out.errors, err)
				continue
			}
		}

		for _, ev := range events {
			out.fingerprints[ev.Path] = ev.Fingerprint
			if ev.Persisted {
				out.modified = append(out.modified, ev.Path)
			}
		}
	}

	return out, nil
}

// check runs the toolchain over the workspace and hands the report to
// the review event source.
func (r *Runner) check(ctx context.Context) *diagnostics.Report {
	rep := diagnostics.Run(ctx, diagnostics.Config{
		WorkDir: r.deps.WorkDir,
		TestCmd: r.deps.TestCmd,
	})
	r.diag.update(rep)
	return rep
}

// openRepo opens the work tree's repository when git is enabled.
// Absence of a repository is not an error; git features just disengage.
func (r *Runner) openRepo() *gitpkg.Repo {
	if r.deps.NoGit {
		return nil
	}
	repo, err := gitpkg.Open(gitpkg.Config{
		WorkDir:     r.deps.WorkDir,
		AutoCommit:  r.deps.AutoCommit,
		DirtyCommit: r.deps.DirtyCommit,
	})
	if err != nil {
		r.deps.Log.Debug().Err(err).Msg("git disabled for this run")
		return nil
	}
	return repo
}

// generate sends a prompt to the LLM and returns the full response text.
func (r *Runner) generate(ctx context.Context, system []brtypes.SystemContentBlock, messages []brtypes.Message) (string, error) {
	if r.deps.Prompter != nil {
		return r.deps.Prompter.Generate(ctx, system, messages)
	}
	if r.deps.LLMClient == nil {
		return "", errors.New("no LLM client configured")
	}

	tokenCh, responseCh := r.deps.LLMClient.SendPrompt(ctx, system, messages)
	for range tokenCh {
	}

	resp := <-responseCh
	if resp == nil {
		return "", errors.New("no response from LLM")
	}
	if resp.Err != nil {
		return "", resp.Err
	}
	return resp.FullText, nil
}

// usage returns cumulative token usage.
func (r *Runner) usage() types.TokenUsage {
	if r.deps.Prompter != nil {
		return r.deps.Prompter.Usage()
	}
	if r.deps.LLMClient != nil {
		return r.deps.LLMClient.CumulativeUsage()
	}
	return types.TokenUsage{}
}

// merge folds a round's outcome into the result, deduplicating paths.
func (res *RunResult) merge(round *roundOutcome) {
	seen := make(map[string]bool, len(res.ModifiedFiles))
	for _, p := range res.ModifiedFiles {
		seen[p] = true
	}
	for _, p := range round.modified {
		if !seen[p] {
			res.ModifiedFiles = append(res.ModifiedFiles, p)
			seen[p] = true
		}
	}
	for _, err := range round.errors {
		res.Errors = append(res.Errors, err.Error())
	}
}

// progressed reports whether the round landed content not seen before.
func progressed(landed, current map[string]string) bool {
	for path, fp := range current {
		if landed[path] != fp {
			return true
		}
	}
	return false
}

// storePersister writes reviewed content through the store, materializing
// files the engine built from pure insertions.
type storePersister struct {
	store *workspace.Store
}

func (p storePersister) WriteLines(path string, content []string) error {
	return p.store.Put(path, content)
}

// reportSource hands the latest diagnostics report's per-path counts to
// review events. Counts lag one round, since a session finalizes before
// the toolchain has seen its persisted content.
type reportSource struct {
	mu  sync.Mutex
	rep *diagnostics.Report
}

func (s *reportSource) IssueCount(path string, _ []string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rep == nil {
		return 0
	}
	return s.rep.Count(path)
}

func (s *reportSource) update(rep *diagnostics.Report) {
	s.mu.Lock()
	s.rep = rep
	s.mu.Unlock()
}
