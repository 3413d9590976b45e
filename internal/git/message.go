// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Implements: prd011-git-integration R3;
//
//	docs/ARCHITECTURE § Git Checkpoints.
package git

import (
	"fmt"
	"strings"
	"unicode"
)

const maxSubjectLength = 72

// commitTypes maps task keywords to conventional commit prefixes. Order
// matters: the first matching entry wins, and "feat" sits last because its
// keywords are the broadest.
var commitTypes = []struct {
	prefix   string
	keywords []string
}{
	{"fix", []string{"fix", "bug", "repair", "patch", "resolve", "correct"}},
	{"refactor", []string{"refactor", "restructure", "reorganize", "clean up", "simplify"}},
	{"test", []string{"test", "spec", "coverage"}},
	{"docs", []string{"doc", "comment", "readme", "documentation"}},
	{"style", []string{"style", "format", "lint", "whitespace"}},
	{"perf", []string{"perf", "performance", "optimize", "speed"}},
	{"ci", []string{"ci", "pipeline", "workflow", "github action"}},
	{"build", []string{"build", "dependency", "deps", "module"}},
	{"chore", []string{"chore", "cleanup", "maintain"}},
	{"feat", []string{"add", "create", "implement", "new", "feature", "introduce"}},
}

// GenerateMessage creates a conventional commit message from the task
// prompt and the list of reviewed files.
//
// Implements: prd011-git-integration R3.1-R3.5.
func GenerateMessage(prompt string, files []string) string {
	subject := buildSubject(inferCommitType(prompt), prompt)

	msg := subject
	if body := buildBody(files); body != "" {
		msg += "\n\n" + body
	}
	msg += "\n\n" + coAuthorTrailer

	return msg
}

// inferCommitType picks the conventional commit type from prompt keywords,
// defaulting to "feat".
//
// Implements: prd011-git-integration R3.3, R3.4.
func inferCommitType(prompt string) string {
	lower := strings.ToLower(prompt)
	for _, ct := range commitTypes {
		for _, kw := range ct.keywords {
			if containsWord(lower, kw) {
				return ct.prefix
			}
		}
	}
	return "feat"
}

// containsWord checks whether text contains keyword as a whole word,
// bounded by non-letter characters or string edges. Multi-word keywords
// like "clean up" fall back to substring matching.
func containsWord(text, keyword string) bool {
	if strings.Contains(keyword, " ") {
		return strings.Contains(text, keyword)
	}
	idx := 0
	for {
		i := strings.Index(text[idx:], keyword)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(keyword)
		leftOK := start == 0 || !unicode.IsLetter(rune(text[start-1]))
		rightOK := end == len(text) || !unicode.IsLetter(rune(text[end]))
		if leftOK && rightOK {
			return true
		}
		idx = start + 1
	}
}

// buildSubject creates the "type: summary" first line, capped at 72 chars.
// Multi-line prompts contribute only their first line.
//
// Implements: prd011-git-integration R3.1, R3.2.
func buildSubject(commitType, prompt string) string {
	summary, _, _ := strings.Cut(strings.TrimSpace(prompt), "\n")
	summary = strings.TrimRight(strings.TrimSpace(summary), ".")
	if summary == "" {
		summary = "apply requested edits"
	}
	summary = strings.ToLower(summary[:1]) + summary[1:]

	subject := fmt.Sprintf("%s: %s", commitType, summary)
	if len(subject) > maxSubjectLength {
		subject = subject[:maxSubjectLength-3] + "..."
	}

	return subject
}

// buildBody lists the reviewed files.
func buildBody(files []string) string {
	if len(files) == 0 {
		return ""
	}

	var buf strings.Builder
	buf.WriteString("Modified files:\n")
	for _, f := range files {
		buf.WriteString(fmt.Sprintf("- %s\n", f))
	}
	return buf.String()
}
