package constraint

import (
	"fmt"
	"sort"

	"github.com/xs2maverick/flint/pkg/flint"
	"github.com/xs2maverick/flint/pkg/flint/variable"
)

// TreeCost channels the cost of the spanning tree of g into obj. The lower
// bound is the kernel cost plus the cheapest completion by optional envelope
// arcs; optional arcs too expensive for the current upper bound are removed.
type TreeCost struct {
	base
	g    *variable.GraphVar
	obj  *variable.IntVar
	cost flint.Cost
}

var _ flint.Propagator = (*TreeCost)(nil)

// NewTreeCost posts obj = cost of the tree spanning the nodes of g.
func NewTreeCost(g *variable.GraphVar, obj *variable.IntVar, cost flint.Cost) *TreeCost {
	return &TreeCost{
		base: base{
			name:  fmt.Sprintf("treeCost(%s,%s)", g.Name(), obj.Name()),
			scope: []flint.Variable{g, obj},
			prio:  flint.Quadratic,
		},
		g:    g,
		obj:  obj,
		cost: cost,
	}
}

func (p *TreeCost) Conditions(idx int) flint.Event {
	if idx == 0 {
		return flint.EnforceArc | flint.RemoveArc | flint.RemoveNode
	}
	return flint.DecUpp | flint.Instantiate
}

func (p *TreeCost) Incremental() bool { return false }

type weightedArc struct {
	i, j int
	c    int
}

func (p *TreeCost) Propagate() error {
	kerCost := 0
	envNodes := 0
	var optional []weightedArc
	p.g.EachEnvNode(func(i int) bool {
		envNodes++
		p.g.EachEnvNeighbor(i, func(j int) bool {
			if i >= j {
				return true
			}
			if p.g.KerArc(i, j) {
				kerCost += p.cost(i, j)
			} else {
				optional = append(optional, weightedArc{i, j, p.cost(i, j)})
			}
			return true
		})
		return true
	})

	need := envNodes - 1 - p.g.KerArcCount()
	if need < 0 {
		return flint.Contradict(p, p.g, "kernel holds more arcs than a tree")
	}
	if len(optional) < need {
		return flint.Contradict(p, p.g, "not enough arcs left to span the graph")
	}

	if need == 0 {
		// A complete tree admits no extra arc.
		for _, a := range optional {
			if _, err := p.g.RemoveArc(a.i, a.j, p); err != nil {
				return err
			}
		}
		_, err := p.obj.InstantiateTo(kerCost, p)
		return err
	}

	sort.Slice(optional, func(a, b int) bool { return optional[a].c < optional[b].c })
	completion := 0
	for k := 0; k < need; k++ {
		completion += optional[k].c
	}
	if _, err := p.obj.UpdateLowerBound(kerCost+completion, p); err != nil {
		return err
	}

	// Forcing an arc outside the cheapest completion swaps it against the
	// most expensive chosen one.
	worst := optional[need-1].c
	for _, a := range optional[need:] {
		if kerCost+completion-worst+a.c > p.obj.UB() {
			if _, err := p.g.RemoveArc(a.i, a.j, p); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *TreeCost) PropagateOn(int, flint.Event) error {
	return p.Propagate()
}

func (p *TreeCost) Entailed() flint.Entailment {
	if !p.g.Instantiated() || !p.obj.Instantiated() {
		return flint.Undefined
	}
	kerCost := 0
	p.g.EachEnvNode(func(i int) bool {
		p.g.EachKerNeighbor(i, func(j int) bool {
			if i < j {
				kerCost += p.cost(i, j)
			}
			return true
		})
		return true
	})
	if kerCost == p.obj.Value() {
		return flint.True
	}
	return flint.False
}
