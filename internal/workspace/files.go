// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package workspace mediates content access for the editing pipeline.
// A Store resolves paths against a working directory and serves line
// sequences from disk, unless a host has installed an in-memory overlay
// for the path (a live editor buffer), which always wins.
// Implements: prd006-workspace R1, R2, R3, R4;
//
//	docs/ARCHITECTURE § Workspace.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/petar-djukic/go-edit/internal/lines"

	"github.com/rs/zerolog"
)

// Store is the content accessor for one working directory. Safe for
// concurrent use.
type Store struct {
	// FormatGo runs goimports-style formatting on Go content at write
	// time. Defaults on; formatting failures never lose content.
	FormatGo bool

	workDir  string
	mu       sync.Mutex
	overlays map[string][]string
	log      zerolog.Logger
}

// NewStore creates a store rooted at workDir.
func NewStore(workDir string, log zerolog.Logger) *Store {
	return &Store{
		FormatGo: true,
		workDir:  workDir,
		overlays: make(map[string][]string),
		log:      log,
	}
}

// WorkDir returns the store's root directory.
func (s *Store) WorkDir() string { return s.workDir }

// Abs resolves a path against the working directory.
func (s *Store) Abs(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(s.workDir, path)
}

// key normalizes a path for overlay lookup: workdir-relative when the
// path sits under the workdir, absolute otherwise.
func (s *Store) key(path string) string {
	abs := s.Abs(path)
	rel, err := filepath.Rel(s.workDir, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return abs
	}
	return rel
}

// ReadLines returns the current content for path: the overlay when a
// host has installed one, the on-disk file otherwise.
func (s *Store) ReadLines(path string) ([]string, error) {
	s.mu.Lock()
	if overlay, ok := s.overlays[s.key(path)]; ok {
		out := lines.Clone(overlay)
		s.mu.Unlock()
		return out, nil
	}
	s.mu.Unlock()

	data, err := os.ReadFile(s.Abs(path))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return lines.Split(string(data)), nil
}

// WriteLines writes content for path atomically, formatting Go sources
// first. An installed overlay is updated to the written content so
// subsequent reads stay coherent.
func (s *Store) WriteLines(path string, content []string) error {
	data := []byte(lines.Join(content))
	if s.FormatGo && filepath.Ext(path) == ".go" {
		if formatted, ok := formatGoSource(s.Abs(path), data); ok {
			data = formatted
		} else {
			s.log.Debug().Str("path", path).Msg("go formatting failed, writing unformatted")
		}
	}

	if err := atomicWrite(s.Abs(path), data); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	s.mu.Lock()
	if _, ok := s.overlays[s.key(path)]; ok {
		s.overlays[s.key(path)] = lines.Split(string(data))
	}
	s.mu.Unlock()
	return nil
}

// Create writes a new file, failing when the path already exists.
func (s *Store) Create(path string, content []string) error {
	abs := s.Abs(path)
	if _, err := os.Stat(abs); err == nil {
		return fmt.Errorf("file already exists: %s", path)
	}

	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	return s.WriteLines(path, content)
}

// Put writes content for path, creating the file and any missing parent
// directories when it does not exist yet.
func (s *Store) Put(path string, content []string) error {
	if s.Exists(path) {
		return s.WriteLines(path, content)
	}
	return s.Create(path, content)
}

// Delete removes a file and any overlay for it.
func (s *Store) Delete(path string) error {
	s.mu.Lock()
	delete(s.overlays, s.key(path))
	s.mu.Unlock()

	if err := os.Remove(s.Abs(path)); err != nil {
		return fmt.Errorf("deleting %s: %w", path, err)
	}
	return nil
}

// Exists reports whether path has content, on disk or as an overlay.
func (s *Store) Exists(path string) bool {
	s.mu.Lock()
	_, ok := s.overlays[s.key(path)]
	s.mu.Unlock()
	if ok {
		return true
	}
	_, err := os.Stat(s.Abs(path))
	return err == nil
}

// SetOverlay installs in-memory content for path. Reads prefer it over
// disk until it is cleared.
func (s *Store) SetOverlay(path string, content []string) {
	s.mu.Lock()
	s.overlays[s.key(path)] = lines.Clone(content)
	s.mu.Unlock()
}

// ClearOverlay removes the in-memory content for path.
func (s *Store) ClearOverlay(path string) {
	s.mu.Lock()
	delete(s.overlays, s.key(path))
	s.mu.Unlock()
}

// HasOverlay reports whether path has in-memory content installed.
func (s *Store) HasOverlay(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.overlays[s.key(path)]
	return ok
}

// atomicWrite writes data to a temp file in the same directory, then
// renames it over the target path, so a crash never leaves a partial
// file. Existing permissions are preserved.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)

	perm := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	f, err := os.CreateTemp(dir, ".go-edit-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Chmod(tmpPath, perm); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("setting permissions: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}

	return nil
}
