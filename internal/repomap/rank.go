// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Implements: prd008-context-map R3;
//
//	docs/ARCHITECTURE § Context Map.
package repomap

import (
	"math"
	"sort"

	"github.com/petar-djukic/go-edit/pkg/types"
)

const (
	defaultDamping    = 0.85
	defaultMaxIter    = 100
	defaultTolerance  = 1e-6
	personalizeFactor = 100.0
)

// RankConfig configures the PageRank pass.
type RankConfig struct {
	Damping       float64  // Damping factor (default 0.85)
	MaxIterations int      // Iteration cap (default 100)
	Tolerance     float64  // L1 convergence tolerance (default 1e-6)
	Mentioned     []string // Files named by the user, boosted 100x
}

// Rank runs personalized PageRank over the file graph and returns files
// ordered by score, highest first. Ties break on path for determinism.
//
// Implements: prd008-context-map R3.1-R3.5.
func Rank(g *Graph, cfg RankConfig) []types.RankedFile {
	damping := cfg.Damping
	if damping == 0 {
		damping = defaultDamping
	}
	maxIter := cfg.MaxIterations
	if maxIter == 0 {
		maxIter = defaultMaxIter
	}
	tolerance := cfg.Tolerance
	if tolerance == 0 {
		tolerance = defaultTolerance
	}

	n := len(g.Nodes)
	if n == 0 {
		return nil
	}

	idx := make(map[string]int, n)
	for i, node := range g.Nodes {
		idx[node] = i
	}

	// Personalization: mentioned files soak up most of the teleport mass.
	mentioned := make(map[string]bool, len(cfg.Mentioned))
	for _, f := range cfg.Mentioned {
		mentioned[f] = true
	}

	personalization := make([]float64, n)
	total := 0.0
	for i, node := range g.Nodes {
		if mentioned[node] {
			personalization[i] = personalizeFactor
		} else {
			personalization[i] = 1.0
		}
		total += personalization[i]
	}
	for i := range personalization {
		personalization[i] /= total
	}

	type outEdge struct {
		to     int
		weight float64
	}
	outEdges := make([][]outEdge, n)
	outWeight := make([]float64, n)

	for _, e := range g.Edges {
		fromIdx, okF := idx[e.From]
		toIdx, okT := idx[e.To]
		if !okF || !okT {
			continue
		}
		outEdges[fromIdx] = append(outEdges[fromIdx], outEdge{to: toIdx, weight: e.Weight})
		outWeight[fromIdx] += e.Weight
	}

	rank := make([]float64, n)
	for i := range rank {
		rank[i] = 1.0 / float64(n)
	}

	next := make([]float64, n)
	for iter := 0; iter < maxIter; iter++ {
		for i := range next {
			next[i] = (1.0 - damping) * personalization[i]
		}

		for i := 0; i < n; i++ {
			if outWeight[i] == 0 {
				// Dangling file: its rank teleports along the
				// personalization vector.
				for j := range next {
					next[j] += damping * rank[i] * personalization[j]
				}
				continue
			}
			for _, e := range outEdges[i] {
				next[e.to] += damping * rank[i] * (e.weight / outWeight[i])
			}
		}

		diff := 0.0
		for i := range rank {
			diff += math.Abs(next[i] - rank[i])
		}
		copy(rank, next)
		if diff < tolerance {
			break
		}
	}

	ranked := make([]types.RankedFile, n)
	for i, node := range g.Nodes {
		ranked[i] = types.RankedFile{FilePath: node, Score: rank[i]}
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].FilePath < ranked[j].FilePath
	})

	return ranked
}
