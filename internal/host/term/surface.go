// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package term hosts reviews on a plain terminal: hunks render as styled
// diff text and single-letter commands drive the session.
// Implements: prd014-hosts R1, R2;
//
//	docs/ARCHITECTURE § Hosts.
package term

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/petar-djukic/go-edit/pkg/types"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")) // Mauve
	addedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))            // Green
	removedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("197"))           // Red
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

// Surface renders one review hunk at a time to a writer.
type Surface struct {
	out io.Writer
}

// NewSurface returns a Surface writing to out.
func NewSurface(out io.Writer) *Surface {
	return &Surface{out: out}
}

// ShowHunk renders the focused hunk: a header with the path and position,
// the outgoing lines, then the incoming lines.
func (s *Surface) ShowHunk(path string, hunk *types.Hunk, index, total int) error {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("%s (hunk %d/%d)", path, index, total)))
	b.WriteString("\n")

	if hunk.NewRange.Empty() {
		b.WriteString(faintStyle.Render(fmt.Sprintf("deletion at line %d", hunk.NewRange.StartLine)))
	} else {
		b.WriteString(faintStyle.Render(fmt.Sprintf("lines %d-%d", hunk.NewRange.StartLine, hunk.NewRange.EndLine)))
	}
	b.WriteString("\n")

	for _, l := range hunk.OldLines {
		b.WriteString(removedStyle.Render("- " + l))
		b.WriteString("\n")
	}
	for _, l := range hunk.NewLines {
		b.WriteString(addedStyle.Render("+ " + l))
		b.WriteString("\n")
	}

	_, err := io.WriteString(s.out, b.String())
	return err
}

// Clear is a no-op. An append-only stream has nothing to erase.
func (s *Surface) Clear(path string) error {
	return nil
}
