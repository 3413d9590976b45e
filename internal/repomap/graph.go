// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Implements: prd008-context-map R2;
//
//	docs/ARCHITECTURE § Context Map.
package repomap

import (
	"sort"

	"github.com/petar-djukic/go-edit/pkg/types"
)

const (
	longNameThreshold = 8
	longNameWeight    = 1.0
	shortNameWeight   = 0.5
	underscoreWeight  = 0.1
	commonThreshold   = 5
	commonFactor      = 0.1
)

// Edge is a directed reference edge between two files.
type Edge struct {
	From   string  // Referencing file
	To     string  // File defining the symbol
	Symbol string  // Symbol name
	Weight float64 // Reference count scaled by identifier quality
}

// Graph is a directed multigraph over files: an edge per (from, to,
// symbol) triple that crosses a file boundary.
//
// Implements: prd008-context-map R2.1-R2.5.
type Graph struct {
	Nodes []string
	Edges []Edge
	defs  map[string][]string // symbol name → defining files
}

// BuildGraph constructs the file reference graph from extracted symbols.
func BuildGraph(symbols []types.SymbolRef) *Graph {
	g := &Graph{
		defs: make(map[string][]string),
	}

	nodeSet := make(map[string]bool)
	for _, s := range symbols {
		nodeSet[s.FilePath] = true
		if s.Kind == types.Definition {
			g.defs[s.Name] = append(g.defs[s.Name], s.FilePath)
		}
	}
	for f := range nodeSet {
		g.Nodes = append(g.Nodes, f)
	}
	sort.Strings(g.Nodes)

	type edgeKey struct {
		from, to, sym string
	}
	counts := make(map[edgeKey]int)

	for _, s := range symbols {
		if s.Kind != types.Reference {
			continue
		}
		for _, defFile := range g.defs[s.Name] {
			if defFile == s.FilePath {
				continue
			}
			counts[edgeKey{from: s.FilePath, to: defFile, sym: s.Name}]++
		}
	}

	for key, count := range counts {
		g.Edges = append(g.Edges, Edge{
			From:   key.from,
			To:     key.to,
			Symbol: key.sym,
			Weight: float64(count) * identifierWeight(key.sym) * commonWeight(key.sym, g.defs),
		})
	}

	return g
}

// identifierWeight scores a symbol name by how informative a reference to
// it is: long names carry signal, short and underscore-prefixed ones
// mostly noise.
//
// Implements: prd008-context-map R2.4.
func identifierWeight(name string) float64 {
	if len(name) > 0 && name[0] == '_' {
		return underscoreWeight
	}
	if len(name) >= longNameThreshold {
		return longNameWeight
	}
	return shortNameWeight
}

// commonWeight dampens symbols defined in many files (String, Error and
// friends would otherwise connect everything to everything).
//
// Implements: prd008-context-map R2.5.
func commonWeight(name string, defs map[string][]string) float64 {
	if len(defs[name]) >= commonThreshold {
		return commonFactor
	}
	return 1.0
}
