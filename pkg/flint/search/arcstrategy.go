package search

import (
	"github.com/xs2maverick/flint/pkg/flint"
	"github.com/xs2maverick/flint/pkg/flint/variable"
)

// TreeHint exposes a support tree computed elsewhere, typically the minimum
// spanning tree of a Lagrangian relaxation. The bound-guided strategy
// branches on its arcs.
type TreeHint interface {
	HasTree() bool
	EachTreeNeighbor(i int, f func(j int) bool)
}

// FirstPathArcs seeds a feasible assignment greedily: as long as some node
// has kernel degree zero, it picks that node's cheapest envelope arc; then it
// picks the cheapest undecided envelope arc overall. Ties break on the lowest
// node pair. Returns nil once kernel and envelope coincide everywhere.
type FirstPathArcs struct {
	G    *variable.GraphVar
	Cost flint.Cost
}

func (s *FirstPathArcs) Init() error {
	if s.G == nil || s.Cost == nil {
		return flint.ErrConfiguration
	}
	return nil
}

func (s *FirstPathArcs) Decide() Decision {
	n := s.G.N()
	for i := 0; i < n; i++ {
		if !s.G.EnvNode(i) || s.G.KerDegree(i) != 0 {
			continue
		}
		from, to, best := -1, -1, 0
		s.G.EachEnvNeighbor(i, func(j int) bool {
			if c := s.Cost(i, j); to == -1 || c < best {
				from, to, best = i, j, c
			}
			return true
		})
		if to != -1 {
			return &ArcDecision{G: s.G, From: from, To: to}
		}
	}
	from, to, best := -1, -1, 0
	for i := 0; i < n; i++ {
		if s.G.EnvDegree(i) == s.G.KerDegree(i) {
			continue
		}
		s.G.EachEnvNeighbor(i, func(j int) bool {
			if i < j && !s.G.KerArc(i, j) {
				if c := s.Cost(i, j); to == -1 || c < best {
					from, to, best = i, j, c
				}
			}
			return true
		})
	}
	if from == -1 {
		return nil
	}
	return &ArcDecision{G: s.G, From: from, To: to}
}

// BoundGuidedArcs branches on arcs of the hint tree that are not yet in the
// kernel. It first targets the node with the smallest slack between its
// degree cap and its kernel degree, then among those prefers the arc whose
// endpoints keep the most envelope flexibility (maximum envelope-degree sum).
// Returns nil when the hint holds no undecided arc.
type BoundGuidedArcs struct {
	G    *variable.GraphVar
	DMax []int
	Hint TreeHint
}

func (s *BoundGuidedArcs) Init() error {
	if s.G == nil || s.Hint == nil || len(s.DMax) != s.G.N() {
		return flint.ErrConfiguration
	}
	return nil
}

func (s *BoundGuidedArcs) Decide() Decision {
	if !s.Hint.HasTree() {
		return nil
	}
	n := s.G.N()

	minSlack := -1
	for i := 0; i < n; i++ {
		if s.G.EnvDegree(i) == s.G.KerDegree(i) {
			continue
		}
		k := s.G.KerDegree(i)
		s.Hint.EachTreeNeighbor(i, func(j int) bool {
			if s.G.EnvArc(i, j) && !s.G.KerArc(i, j) {
				if slack := s.DMax[i] - k; minSlack == -1 || slack < minSlack {
					minSlack = slack
				}
			}
			return true
		})
	}
	if minSlack == -1 {
		return nil
	}

	from, to, bestDeg := -1, -1, 0
	for i := 0; i < n; i++ {
		if s.G.EnvDegree(i) == s.G.KerDegree(i) {
			continue
		}
		k := s.G.KerDegree(i)
		if s.DMax[i]-k != minSlack {
			continue
		}
		s.Hint.EachTreeNeighbor(i, func(j int) bool {
			if s.G.EnvArc(i, j) && !s.G.KerArc(i, j) {
				if d := s.G.EnvDegree(i) + s.G.EnvDegree(j); d > bestDeg {
					from, to, bestDeg = i, j, d
				}
			}
			return true
		})
	}
	if from == -1 {
		return nil
	}
	return &ArcDecision{G: s.G, From: from, To: to}
}
