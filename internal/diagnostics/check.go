// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package diagnostics runs the Go toolchain over the workspace after edits
// land and summarizes the outcome: per-file issue counts for result
// reporting and a formatted follow-up prompt for model retries. Diagnostics
// inform, they never veto an applied edit.
// Implements: prd009-diagnostics R1, R4;
//
//	docs/ARCHITECTURE § Diagnostics.
package diagnostics

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	defaultCheckTimeout = 60 * time.Second
	defaultTestTimeout  = 120 * time.Second
)

// Diagnostic is a single issue reported by the toolchain, located by file
// and line.
//
// Implements: prd009-diagnostics R1.3.
type Diagnostic struct {
	File    string // Source path as the tool printed it
	Line    int    // Line number (1-based)
	Column  int    // Column number (1-based, 0 if the tool omitted it)
	Message string // Issue text
}

func (d Diagnostic) String() string {
	if d.Column > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", d.File, d.Line, d.Column, d.Message)
	}
	return fmt.Sprintf("%s:%d: %s", d.File, d.Line, d.Message)
}

// Report holds the outcome of one toolchain pass over the workspace.
//
// Implements: prd009-diagnostics R1.1, R1.2.
type Report struct {
	BuildOK bool // go build succeeded
	VetOK   bool // go vet succeeded (false when skipped after a failed build)
	TestOK  bool // test command succeeded (true when none is configured)

	Issues []Diagnostic // Parsed build and vet messages

	BuildOutput string // Raw build output (stdout+stderr)
	VetOutput   string // Raw vet output (stdout+stderr)
	TestOutput  string // Raw test output (stdout+stderr)
}

// Clean reports whether every check passed.
//
// Implements: prd009-diagnostics R1.2.
func (r *Report) Clean() bool {
	return r.BuildOK && r.VetOK && r.TestOK
}

// Count returns the number of issues attributed to path. Paths are compared
// after cleaning, so the ./-relative form the toolchain prints matches the
// workdir-relative form used elsewhere in go-edit.
//
// Implements: prd009-diagnostics R4.1, R4.2.
func (r *Report) Count(path string) int {
	n := 0
	for _, d := range r.Issues {
		if samePath(d.File, path) {
			n++
		}
	}
	return n
}

// Total returns the number of issues across all files.
func (r *Report) Total() int {
	return len(r.Issues)
}

func samePath(a, b string) bool {
	a = filepath.Clean(a)
	b = filepath.Clean(b)
	if a == b {
		return true
	}
	return strings.HasSuffix(a, "/"+b) || strings.HasSuffix(b, "/"+a)
}

// Config configures a toolchain pass.
type Config struct {
	WorkDir      string        // Module root the commands run in
	TestCmd      string        // Test command (empty skips the test step)
	CheckTimeout time.Duration // Timeout for build and vet (default 60s)
	TestTimeout  time.Duration // Timeout for the test command (default 120s)
}

// Run executes go build, go vet, and the configured test command in
// sequence and returns a Report. Failures land in the report rather than an
// error return: a broken build is a valid diagnostic outcome, not a fault
// of the check itself.
//
// Implements: prd009-diagnostics R1.1-R1.6.
func Run(ctx context.Context, cfg Config) *Report {
	checkTimeout := cfg.CheckTimeout
	if checkTimeout == 0 {
		checkTimeout = defaultCheckTimeout
	}
	testTimeout := cfg.TestTimeout
	if testTimeout == 0 {
		testTimeout = defaultTestTimeout
	}

	rep := &Report{TestOK: true} // No test command means the test step passes.

	out, err := runTool(ctx, cfg.WorkDir, checkTimeout, "go", "build", "./...")
	rep.BuildOutput = out
	rep.BuildOK = err == nil
	if !rep.BuildOK {
		// Vet repeats the compiler's complaints on a broken tree; skip it.
		rep.Issues = parseToolOutput(out)
		return rep
	}

	out, err = runTool(ctx, cfg.WorkDir, checkTimeout, "go", "vet", "./...")
	rep.VetOutput = out
	rep.VetOK = err == nil
	if !rep.VetOK {
		rep.Issues = append(rep.Issues, parseToolOutput(out)...)
	}

	if cfg.TestCmd == "" {
		return rep
	}
	if !rep.VetOK {
		rep.TestOK = false
		return rep
	}

	parts := strings.Fields(cfg.TestCmd)
	out, err = runTool(ctx, cfg.WorkDir, testTimeout, parts[0], parts[1:]...)
	rep.TestOutput = out
	rep.TestOK = err == nil

	return rep
}

// runTool executes one command with a timeout and captures combined output.
func runTool(ctx context.Context, dir string, timeout time.Duration, name string, args ...string) (string, error) {
	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, name, args...)
	cmd.Dir = dir

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	return buf.String(), err
}

// toolLineRegex matches the file:line[:col]: message shape shared by the
// compiler and vet:
//
//	file.go:10:5: message
//	file.go:10: message
var toolLineRegex = regexp.MustCompile(`^(.+?\.go):(\d+)(?::(\d+))?: (.+)$`)

// parseToolOutput extracts Diagnostics from compiler or vet output.
//
// Implements: prd009-diagnostics R1.4.
func parseToolOutput(output string) []Diagnostic {
	var issues []Diagnostic
	for _, line := range strings.Split(output, "\n") {
		m := toolLineRegex.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}

		lineNum, _ := strconv.Atoi(m[2])
		col := 0
		if m[3] != "" {
			col, _ = strconv.Atoi(m[3])
		}

		issues = append(issues, Diagnostic{
			File:    m[1],
			Line:    lineNum,
			Column:  col,
			Message: m[4],
		})
	}
	return issues
}
