// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Implements: prd014-hosts R4;
//
//	docs/ARCHITECTURE § Hosts.
package nvim

import (
	"fmt"

	"github.com/neovim/go-client/nvim"

	"github.com/petar-djukic/go-edit/pkg/types"
)

const (
	incomingGroup = "DiffAdd"
	removalGroup  = "DiffDelete"
)

// ShowHunk jumps the editor to the focused hunk and highlights its
// incoming range. A pure deletion highlights the line the removal
// happened at instead.
func (h *Host) ShowHunk(path string, hunk *types.Hunk, index, total int) error {
	buf, err := h.openBuffer(path)
	if err != nil {
		return err
	}

	if err := h.v.ClearBufferNamespace(buf, h.ns, 0, -1); err != nil {
		return fmt.Errorf("clearing highlights in %s: %w", path, err)
	}

	// Highlight lines are 0-based; spans are 1-based.
	var hlID int
	b := h.v.NewBatch()
	if hunk.NewRange.Empty() {
		line := hunk.NewRange.StartLine - 2
		if line < 0 {
			line = 0
		}
		b.AddBufferHighlight(buf, h.ns, removalGroup, line, 0, -1, &hlID)
		b.SetWindowCursor(0, [2]int{line + 1, 0})
	} else {
		for line := hunk.NewRange.StartLine; line <= hunk.NewRange.EndLine; line++ {
			b.AddBufferHighlight(buf, h.ns, incomingGroup, line-1, 0, -1, &hlID)
		}
		b.SetWindowCursor(0, [2]int{hunk.NewRange.StartLine, 0})
	}
	b.Command(fmt.Sprintf(`echo "go-edit: %s hunk %d/%d"`, path, index, total))

	if err := b.Execute(); err != nil {
		return fmt.Errorf("showing hunk in %s: %w", path, err)
	}
	return nil
}

// Clear removes every highlight this host placed in the path's buffer.
func (h *Host) Clear(path string) error {
	buf, found, err := h.findBuffer(path)
	if err != nil || !found {
		return err
	}
	return h.v.ClearBufferNamespace(buf, h.ns, 0, -1)
}

// openBuffer returns the buffer for path, opening the file when no
// buffer has it loaded yet.
func (h *Host) openBuffer(path string) (nvim.Buffer, error) {
	buf, found, err := h.findBuffer(path)
	if err != nil {
		return 0, fmt.Errorf("listing nvim buffers: %w", err)
	}
	if found {
		if err := h.v.SetCurrentBuffer(buf); err != nil {
			return 0, fmt.Errorf("focusing buffer for %s: %w", path, err)
		}
		return buf, nil
	}

	if err := h.v.Command(fmt.Sprintf("edit %s", path)); err != nil {
		return 0, fmt.Errorf("opening %s in nvim: %w", path, err)
	}
	return h.v.CurrentBuffer()
}
