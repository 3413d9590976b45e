// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Implements: prd006-workspace R5;
//
//	docs/ARCHITECTURE § Workspace.
package workspace

import (
	"golang.org/x/tools/imports"
)

// formatGoSource runs gofmt plus import grouping over Go source. Returns
// ok=false when the source does not parse; the caller writes it as-is,
// since an unformatted edit is still the reviewer's edit.
func formatGoSource(path string, src []byte) ([]byte, bool) {
	formatted, err := imports.Process(path, src, nil)
	if err != nil {
		return src, false
	}
	return formatted, true
}
