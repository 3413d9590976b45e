// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Implements: prd009-diagnostics R2, R3;
//
//	docs/ARCHITECTURE § Diagnostics.
package diagnostics

import (
	"fmt"
	"os"
	"strings"
)

const (
	defaultContextLines  = 5
	defaultMaxTestOutput = 4096
)

// FormatConfig configures follow-up prompt rendering.
type FormatConfig struct {
	ContextLines  int // Lines of context around each issue (default 5)
	MaxTestOutput int // Test output cap in bytes (default 4096)
}

// Format renders a report as a follow-up prompt asking the model to repair
// the reported issues with further search/replace edits. Each parsed issue
// carries a numbered excerpt of the surrounding source.
//
// Implements: prd009-diagnostics R2.1-R2.5.
func Format(rep *Report, modified []string, cfg FormatConfig) string {
	contextLines := cfg.ContextLines
	if contextLines == 0 {
		contextLines = defaultContextLines
	}
	maxTestOutput := cfg.MaxTestOutput
	if maxTestOutput == 0 {
		maxTestOutput = defaultMaxTestOutput
	}

	var buf strings.Builder

	buf.WriteString("The applied edits left the workspace with errors. Fix them using the same search/replace edit format.\n\n")

	if len(modified) > 0 {
		buf.WriteString("## Modified Files\n\n")
		for _, f := range modified {
			buf.WriteString(fmt.Sprintf("- %s\n", f))
		}
		buf.WriteString("\n")
	}

	if len(rep.Issues) > 0 {
		buf.WriteString("## Compiler Errors\n\n")
		for _, d := range rep.Issues {
			buf.WriteString(fmt.Sprintf("### %s\n\n", d.String()))
			if ex := excerpt(d.File, d.Line, contextLines); ex != "" {
				buf.WriteString("```\n")
				buf.WriteString(ex)
				buf.WriteString("```\n\n")
			}
		}
	}

	// Raw build output when nothing parsed into structured issues.
	if !rep.BuildOK && len(rep.Issues) == 0 && rep.BuildOutput != "" {
		buf.WriteString("## Build Output\n\n```\n")
		buf.WriteString(rep.BuildOutput)
		buf.WriteString("```\n\n")
	}

	if !rep.VetOK && rep.VetOutput != "" {
		buf.WriteString("## Vet Output\n\n```\n")
		buf.WriteString(rep.VetOutput)
		buf.WriteString("```\n\n")
	}

	if !rep.TestOK && rep.TestOutput != "" {
		testOut := rep.TestOutput
		if len(testOut) > maxTestOutput {
			testOut = testOut[:maxTestOutput] + "\n... (truncated)"
		}
		buf.WriteString("## Test Output\n\n```\n")
		buf.WriteString(testOut)
		buf.WriteString("```\n\n")
	}

	return buf.String()
}

// excerpt reads a file and renders numbered lines around the issue, the
// offending line marked with ">".
//
// Implements: prd009-diagnostics R2.2.
func excerpt(path string, issueLine, contextLines int) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}

	all := strings.Split(string(data), "\n")
	start := issueLine - contextLines - 1
	if start < 0 {
		start = 0
	}
	end := issueLine + contextLines
	if end > len(all) {
		end = len(all)
	}

	var buf strings.Builder
	for i := start; i < end; i++ {
		lineNum := i + 1
		marker := "  "
		if lineNum == issueLine {
			marker = "> "
		}
		buf.WriteString(fmt.Sprintf("%s%4d │ %s\n", marker, lineNum, all[i]))
	}

	return buf.String()
}
