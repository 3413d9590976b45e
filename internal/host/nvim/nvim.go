// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package nvim hosts reviews inside a running Neovim instance over RPC.
// Buffer contents act as the preferred content overlay, final content is
// written back with a batch, and review focus renders as namespace
// highlights.
// Implements: prd014-hosts R3, R4;
//
//	docs/ARCHITECTURE § Hosts.
package nvim

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/neovim/go-client/nvim"
	"github.com/rs/zerolog"
)

const namespaceName = "go-edit"

// Host is a connection to one Neovim instance.
type Host struct {
	v   *nvim.Nvim
	ns  int
	log zerolog.Logger
}

// Connect dials a Neovim RPC address, falling back to $NVIM_LISTEN_ADDRESS
// when addr is empty.
func Connect(addr string, log zerolog.Logger) (*Host, error) {
	if addr == "" {
		addr = os.Getenv("NVIM_LISTEN_ADDRESS")
	}
	if addr == "" {
		return nil, errors.New("no nvim address: pass one or set NVIM_LISTEN_ADDRESS")
	}

	v, err := nvim.Dial(addr)
	if err != nil {
		return nil, fmt.Errorf("connecting to nvim at %s: %w", addr, err)
	}

	ns, err := v.CreateNamespace(namespaceName)
	if err != nil {
		v.Close()
		return nil, fmt.Errorf("creating highlight namespace: %w", err)
	}

	log.Debug().Str("addr", addr).Msg("connected to nvim")
	return &Host{v: v, ns: ns, log: log}, nil
}

// Close disconnects from the instance.
func (h *Host) Close() error {
	return h.v.Close()
}

// BufferLines returns the live buffer content for path. ok is false when
// no buffer has the file loaded; disk content should then be used.
func (h *Host) BufferLines(path string) ([]string, bool) {
	buf, found, err := h.findBuffer(path)
	if err != nil || !found {
		return nil, false
	}

	raw, err := h.v.BufferLines(buf, 0, -1, true)
	if err != nil {
		h.log.Debug().Err(err).Str("path", path).Msg("reading buffer lines failed")
		return nil, false
	}
	return fromByteLines(raw), true
}

// Overlays snapshots every loaded buffer under workDir, keyed by
// workdir-relative path. Unnamed and out-of-tree buffers are skipped.
func (h *Host) Overlays(workDir string) (map[string][]string, error) {
	bufs, err := h.v.Buffers()
	if err != nil {
		return nil, fmt.Errorf("listing nvim buffers: %w", err)
	}

	prefix := strings.TrimSuffix(workDir, "/") + "/"
	out := make(map[string][]string)
	for _, buf := range bufs {
		name, err := h.v.BufferName(buf)
		if err != nil || !strings.HasPrefix(name, prefix) {
			continue
		}
		raw, err := h.v.BufferLines(buf, 0, -1, true)
		if err != nil {
			h.log.Debug().Err(err).Str("buffer", name).Msg("snapshotting buffer failed")
			continue
		}
		out[strings.TrimPrefix(name, prefix)] = fromByteLines(raw)
	}
	return out, nil
}

// WriteLines replaces the buffer content for path and writes the buffer
// out, opening the file first when no buffer has it. One batch round trip.
func (h *Host) WriteLines(path string, content []string) error {
	b := h.v.NewBatch()
	b.Command(fmt.Sprintf("edit %s", path))
	b.SetBufferLines(0, 0, -1, false, toByteLines(content))
	b.Command("write")
	if err := b.Execute(); err != nil {
		return fmt.Errorf("writing %s back to nvim: %w", path, err)
	}
	return nil
}

// findBuffer locates the loaded buffer editing path without opening one.
func (h *Host) findBuffer(path string) (nvim.Buffer, bool, error) {
	bufs, err := h.v.Buffers()
	if err != nil {
		return 0, false, err
	}
	for _, buf := range bufs {
		name, err := h.v.BufferName(buf)
		if err != nil {
			continue
		}
		if matchesPath(name, path) {
			return buf, true, nil
		}
	}
	return 0, false, nil
}

// matchesPath reports whether a buffer name refers to path. Buffer names
// are usually absolute while edit paths are workdir-relative.
func matchesPath(bufName, path string) bool {
	if bufName == "" {
		return false
	}
	return bufName == path || strings.HasSuffix(bufName, "/"+path)
}

func toByteLines(content []string) [][]byte {
	out := make([][]byte, len(content))
	for i, s := range content {
		out[i] = []byte(s)
	}
	return out
}

func fromByteLines(raw [][]byte) []string {
	out := make([]string, len(raw))
	for i, b := range raw {
		out[i] = string(b)
	}
	return out
}
