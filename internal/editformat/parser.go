// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package editformat parses AI response text into edit batches and
// routes them through the patch engine, grouped per target file.
// Implements: prd005-edit-formats R1, R2, R4, R5;
//
//	docs/ARCHITECTURE § Edit Formats.
package editformat

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	markerSearch  = "<<<<<<< SEARCH"
	markerDivider = "======="
	markerReplace = ">>>>>>> REPLACE"
)

// ParsedEdit is one edit extracted from a response, not yet bound to
// file content. Old and New are line sequences; an empty Old means
// insertion.
type ParsedEdit struct {
	Path   string
	Old    []string
	New    []string
	Create bool
}

// ParseError describes a malformed edit block.
type ParseError struct {
	Position int    // 1-based line number where the block starts
	RawText  string // Raw text of the malformed block
	Message  string // What went wrong
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d: %s", e.Position, e.Message)
}

// NoEditsFoundError is returned when the response contains no edit
// blocks at all.
type NoEditsFoundError struct{}

func (e *NoEditsFoundError) Error() string {
	return "no edit blocks found in response"
}

// ParseResult holds the outcome of parsing a response.
type ParseResult struct {
	Edits         []*ParsedEdit
	ParseErrors   []*ParseError // Malformed blocks, skipped non-fatally
	ReasoningText string        // Non-edit prose from the response
	BlocksFound   int
	BlocksParsed  int
}

// Parse extracts SEARCH/REPLACE blocks from an AI response. The line
// before each block names the target file. Malformed blocks are skipped
// and recorded; text that is not valid UTF-8 fails the whole response,
// since a corrupt edit cannot be trusted even partially. With no blocks
// at all, returns NoEditsFoundError.
func Parse(response string) (*ParseResult, error) {
	if strings.TrimSpace(response) == "" {
		return nil, &NoEditsFoundError{}
	}

	result := &ParseResult{}
	all := strings.Split(response, "\n")
	var reasoning strings.Builder
	i := 0

	for i < len(all) {
		searchIdx := -1
		for j := i; j < len(all); j++ {
			if isMarker(all[j], markerSearch) {
				searchIdx = j
				break
			}
		}

		if searchIdx < 0 {
			for ; i < len(all); i++ {
				appendReasoning(&reasoning, all[i])
			}
			break
		}

		// The line immediately before SEARCH names the file; everything
		// earlier is reasoning.
		pathLine := searchIdx - 1
		for ; i < pathLine; i++ {
			appendReasoning(&reasoning, all[i])
		}

		path := ""
		if pathLine >= 0 {
			path = extractFilePath(all[pathLine])
		}

		i = searchIdx + 1
		result.BlocksFound++

		oldBlock, next, ok := collectUntil(all, i, markerDivider)
		if !ok {
			result.ParseErrors = append(result.ParseErrors, &ParseError{
				Position: searchIdx + 1,
				RawText:  reconstructBlock(all, searchIdx, next),
				Message:  "unclosed block: missing ======= divider",
			})
			i = next
			continue
		}
		i = next

		newBlock, next, ok := collectUntil(all, i, markerReplace)
		if !ok {
			result.ParseErrors = append(result.ParseErrors, &ParseError{
				Position: searchIdx + 1,
				RawText:  reconstructBlock(all, searchIdx, next),
				Message:  "unclosed block: missing >>>>>>> REPLACE marker",
			})
			i = next
			continue
		}
		i = next

		// Skip a closing markdown fence after the block.
		if i < len(all) && isMarkdownFence(all[i]) {
			i++
		}

		if path == "" {
			result.ParseErrors = append(result.ParseErrors, &ParseError{
				Position: searchIdx + 1,
				RawText:  reconstructBlock(all, searchIdx, i),
				Message:  "missing file path before <<<<<<< SEARCH marker",
			})
			continue
		}

		if !validText(oldBlock) || !validText(newBlock) {
			return nil, &ParseError{
				Position: searchIdx + 1,
				Message:  "malformed text encoding in edit block",
			}
		}

		result.Edits = append(result.Edits, &ParsedEdit{
			Path: path,
			Old:  oldBlock,
			New:  newBlock,
		})
		result.BlocksParsed++
	}

	result.ReasoningText = strings.TrimSpace(reasoning.String())

	if result.BlocksFound == 0 {
		return nil, &NoEditsFoundError{}
	}

	return result, nil
}

// collectUntil gathers lines from start until the marker. Returns the
// collected lines, the index after the marker (or after the last line
// when the marker is missing), and whether the marker was found.
func collectUntil(all []string, start int, marker string) ([]string, int, bool) {
	var block []string
	for i := start; i < len(all); i++ {
		if isMarker(all[i], marker) {
			return block, i + 1, true
		}
		block = append(block, all[i])
	}
	return nil, len(all), false
}

// extractFilePath cleans a file path line, stripping markdown fences,
// backticks, and surrounding whitespace. Lines that read like prose are
// rejected.
func extractFilePath(line string) string {
	s := strings.TrimSpace(line)

	if isMarkdownFence(s) {
		return ""
	}

	s = strings.Trim(s, "`")
	s = strings.TrimSpace(s)

	if strings.ContainsAny(s, " \t") && !strings.Contains(s, "/") {
		return ""
	}

	return s
}

// isMarker checks if a line matches a marker, allowing surrounding
// whitespace.
func isMarker(line, marker string) bool {
	return strings.TrimSpace(line) == marker
}

// isMarkdownFence checks if a line is a markdown fence (``` with
// optional language).
func isMarkdownFence(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "```")
}

// reconstructBlock joins lines from start to end for error reporting.
func reconstructBlock(all []string, start, end int) string {
	if end > len(all) {
		end = len(all)
	}
	return strings.Join(all[start:end], "\n")
}

func appendReasoning(b *strings.Builder, line string) {
	if b.Len() > 0 {
		b.WriteByte('\n')
	}
	b.WriteString(line)
}

func validText(block []string) bool {
	for _, l := range block {
		if !utf8.ValidString(l) {
			return false
		}
	}
	return true
}
