// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Implements: prd012-runner R2;
//
//	docs/ARCHITECTURE § Runner.
package runner

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/petar-djukic/go-edit/internal/lines"
	"github.com/petar-djukic/go-edit/pkg/types"
)

const maxContextFileSize = 32 * 1024

var contextExts = map[string]bool{
	".go": true, ".py": true, ".js": true, ".ts": true,
	".yaml": true, ".yml": true, ".md": true,
}

// readContextFiles collects the file contents sent alongside the prompt.
// Files the user named are read exactly, through the store so host
// overlays win over disk; without mentions every source file under the
// size cap goes in.
func (r *Runner) readContextFiles() []types.FileContent {
	if len(r.deps.Mentioned) > 0 {
		var files []types.FileContent
		for _, path := range r.deps.Mentioned {
			content, err := r.store.ReadLines(path)
			if err != nil {
				r.deps.Log.Warn().Err(err).Str("path", path).Msg("skipping mentioned file")
				continue
			}
			files = append(files, types.FileContent{Path: path, Content: lines.Join(content)})
		}
		return files
	}
	return readAllSources(r.deps.WorkDir)
}

// readAllSources walks the work tree for parseable source files.
func readAllSources(workDir string) []types.FileContent {
	var files []types.FileContent

	_ = filepath.WalkDir(workDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			base := filepath.Base(path)
			if base == ".git" || base == "vendor" || base == "node_modules" || base == "testdata" {
				return filepath.SkipDir
			}
			return nil
		}

		if !contextExts[filepath.Ext(path)] {
			return nil
		}
		info, err := d.Info()
		if err != nil || info.Size() > maxContextFileSize {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return nil
		}

		relPath, _ := filepath.Rel(workDir, path)
		files = append(files, types.FileContent{
			Path:    relPath,
			Content: string(content),
		})
		return nil
	})

	return files
}
