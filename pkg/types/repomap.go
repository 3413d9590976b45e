// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Implements: prd008-context-map R1.4, R3.5, R4;
//
//	docs/ARCHITECTURE § Context Map.
package types

// SymbolRef represents a symbol extracted from a source file, used by the
// context map to build the dependency graph.
type SymbolRef struct {
	Name     string // Symbol name
	FilePath string // Source file path (relative to workspace root)
	Line     int    // Line number (1-based)
	Kind     RefKind
}

// RefKind distinguishes symbol definitions from references.
type RefKind int

const (
	Definition RefKind = iota
	Reference
)

// RankedFile is a file with its PageRank score over the reference graph.
type RankedFile struct {
	FilePath string
	Score    float64
}

// ContextMapResult holds the rendered context map and metadata.
type ContextMapResult struct {
	Map        string  // Rendered map text
	FileCount  int     // Number of files included in the map
	TotalFiles int     // Total files scanned
	SymCount   int     // Number of symbols included in the map
	TotalSyms  int     // Total symbols extracted
	TokensUsed float64 // Estimated token count of the map
}
