package constraint

import (
	"fmt"
	"math"

	"github.com/xs2maverick/flint/pkg/flint"
	"github.com/xs2maverick/flint/pkg/flint/variable"
)

const (
	heldKarpIters = 16
	// kernelShift lowers the key of kernel arcs far below any real cost, so
	// that every minimum spanning tree picks them all while still choosing
	// the cheapest ones under ties.
	kernelShift = -1e12
)

// HeldKarp strengthens the tree lower bound by Lagrangian relaxation of the
// degree caps: each cap dMax[i] carries a multiplier added to the cost of the
// arcs at node i, and a minimum spanning tree under the shifted costs yields
// a valid bound on obj. Multipliers are adjusted by subgradient steps and
// warm-started from one search node to the next.
//
// The propagator keeps its last support tree and serves it to bound-guided
// branching through the TreeHint it implements.
type HeldKarp struct {
	base
	g    *variable.GraphVar
	obj  *variable.IntVar
	cost flint.Cost
	dMax []int

	// wait defers filtering until a first incumbent exists: subgradient
	// steps need a meaningful upper bound to aim at.
	wait     bool
	measures *flint.Measures

	pi      []float64
	treeAdj [][]int
	hasTree bool
}

var _ flint.Propagator = (*HeldKarp)(nil)

// NewHeldKarp posts the Lagrangian bound on obj for the degree-constrained
// tree over g. When waitFirstSolution is set the propagator stays idle until
// measures records a solution.
func NewHeldKarp(g *variable.GraphVar, obj *variable.IntVar, cost flint.Cost, dMax []int, waitFirstSolution bool, measures *flint.Measures) *HeldKarp {
	n := g.N()
	return &HeldKarp{
		base: base{
			name:  fmt.Sprintf("heldKarp(%s,%s)", g.Name(), obj.Name()),
			scope: []flint.Variable{g, obj},
			prio:  flint.Heavy,
		},
		g:        g,
		obj:      obj,
		cost:     cost,
		dMax:     dMax,
		wait:     waitFirstSolution,
		measures: measures,
		pi:       make([]float64, n),
		treeAdj:  make([][]int, n),
	}
}

func (p *HeldKarp) Conditions(idx int) flint.Event {
	if idx == 0 {
		return flint.EnforceArc | flint.RemoveArc | flint.RemoveNode
	}
	return flint.DecUpp
}

func (p *HeldKarp) Incremental() bool { return false }

// HasTree reports whether a support tree from the last propagation is
// available.
func (p *HeldKarp) HasTree() bool { return p.hasTree }

// EachTreeNeighbor visits the neighbors of i in the last support tree. The
// tree is a snapshot: callers must re-check arcs against the current
// envelope.
func (p *HeldKarp) EachTreeNeighbor(i int, f func(j int) bool) {
	for _, j := range p.treeAdj[i] {
		if !f(j) {
			return
		}
	}
}

func (p *HeldKarp) Propagate() error {
	if p.wait && p.measures.Solutions == 0 {
		return nil
	}

	var nodes []int
	p.g.EachEnvNode(func(i int) bool {
		nodes = append(nodes, i)
		return true
	})
	if len(nodes) <= 1 {
		return nil
	}

	ub := float64(p.obj.UB())
	best := math.Inf(-1)
	for iter := 0; iter < heldKarpIters; iter++ {
		weight, deg, err := p.spanningTree(nodes)
		if err != nil {
			return err
		}
		bound := weight
		var norm float64
		for _, i := range nodes {
			bound -= p.pi[i] * float64(p.dMax[i])
			s := float64(deg[i] - p.dMax[i])
			norm += s * s
		}
		if bound > best {
			best = bound
		}
		if norm == 0 || bound >= ub {
			break
		}
		step := 0.5 * (ub + 1 - bound) / norm
		for _, i := range nodes {
			p.pi[i] = math.Max(0, p.pi[i]+step*float64(deg[i]-p.dMax[i]))
		}
	}

	lb := int(math.Ceil(best - 1e-6))
	_, err := p.obj.UpdateLowerBound(lb, p)
	return err
}

func (p *HeldKarp) PropagateOn(int, flint.Event) error {
	return p.Propagate()
}

// spanningTree runs Prim over the envelope under the shifted costs, forcing
// kernel arcs in first. It returns the shifted tree weight and the tree
// degree of each node, and records the tree for EachTreeNeighbor.
func (p *HeldKarp) spanningTree(nodes []int) (float64, []int, error) {
	n := p.g.N()
	key := make([]float64, n)
	realCost := make([]float64, n)
	parent := make([]int, n)
	done := make([]bool, n)
	for _, i := range nodes {
		key[i] = math.Inf(1)
		parent[i] = -1
	}

	deg := make([]int, n)
	for i := range p.treeAdj {
		p.treeAdj[i] = p.treeAdj[i][:0]
	}
	p.hasTree = false

	weight := 0.0
	key[nodes[0]] = 0
	for range nodes {
		u := -1
		for _, i := range nodes {
			if !done[i] && (u < 0 || key[i] < key[u]) {
				u = i
			}
		}
		if u < 0 || math.IsInf(key[u], 1) {
			return 0, nil, flint.Contradict(p, p.g, "envelope is disconnected")
		}
		done[u] = true
		if v := parent[u]; v >= 0 {
			weight += realCost[u]
			deg[u]++
			deg[v]++
			p.treeAdj[u] = append(p.treeAdj[u], v)
			p.treeAdj[v] = append(p.treeAdj[v], u)
		}
		p.g.EachEnvNeighbor(u, func(j int) bool {
			if done[j] {
				return true
			}
			w := float64(p.cost(u, j)) + p.pi[u] + p.pi[j]
			prio := w
			if p.g.KerArc(u, j) {
				prio = w + kernelShift
			}
			if prio < key[j] {
				key[j] = prio
				realCost[j] = w
				parent[j] = u
			}
			return true
		})
	}
	p.hasTree = true
	return weight, deg, nil
}

func (p *HeldKarp) Entailed() flint.Entailment {
	if p.g.Instantiated() && p.obj.Instantiated() {
		return flint.True
	}
	return flint.Undefined
}
