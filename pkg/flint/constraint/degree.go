package constraint

import (
	"fmt"

	"github.com/xs2maverick/flint/pkg/flint"
	"github.com/xs2maverick/flint/pkg/flint/variable"
)

// AtMostDegree caps the kernel degree of every node i of g at dMax[i]. Once a
// node is saturated, its remaining optional envelope arcs are removed.
type AtMostDegree struct {
	base
	g    *variable.GraphVar
	dMax []int
}

var _ flint.Propagator = (*AtMostDegree)(nil)

// NewAtMostDegree posts kerDegree(i) <= dMax[i] for all i.
func NewAtMostDegree(g *variable.GraphVar, dMax []int) *AtMostDegree {
	return &AtMostDegree{
		base: base{
			name:  fmt.Sprintf("maxDegree(%s)", g.Name()),
			scope: []flint.Variable{g},
			prio:  flint.Binary,
		},
		g:    g,
		dMax: dMax,
	}
}

func (p *AtMostDegree) Conditions(int) flint.Event { return flint.EnforceArc }
func (p *AtMostDegree) Incremental() bool { return true }

func (p *AtMostDegree) Propagate() error {
	var outer error
	p.g.EachEnvNode(func(i int) bool {
		outer = p.checkNode(i)
		return outer == nil
	})
	return outer
}

func (p *AtMostDegree) PropagateOn(_ int, _ flint.Event) error {
	return p.g.ForEachDelta(p, func(d variable.Delta) error {
		if d.Evt != flint.EnforceArc {
			return nil
		}
		if err := p.checkNode(d.From); err != nil {
			return err
		}
		return p.checkNode(d.To)
	})
}

// checkNode fails on an over-full node and strips the optional arcs of a
// saturated one.
func (p *AtMostDegree) checkNode(i int) error {
	kd := p.g.KerDegree(i)
	if kd > p.dMax[i] {
		return flint.Contradict(p, p.g, fmt.Sprintf("node %d exceeds degree %d", i, p.dMax[i]))
	}
	if kd < p.dMax[i] {
		return nil
	}
	var victims []int
	p.g.EachEnvNeighbor(i, func(j int) bool {
		if !p.g.KerArc(i, j) {
			victims = append(victims, j)
		}
		return true
	})
	for _, j := range victims {
		if _, err := p.g.RemoveArc(i, j, p); err != nil {
			return err
		}
	}
	return nil
}

func (p *AtMostDegree) Entailed() flint.Entailment {
	done := flint.True
	var failed bool
	p.g.EachEnvNode(func(i int) bool {
		if p.g.KerDegree(i) > p.dMax[i] {
			failed = true
			return false
		}
		if p.g.EnvDegree(i) > p.dMax[i] {
			done = flint.Undefined
		}
		return true
	})
	if failed {
		return flint.False
	}
	return done
}

// AtLeastDegree forces every kernel node of g to reach degree dMin[i]. A node
// whose envelope degree drops to the minimum has all its arcs enforced.
type AtLeastDegree struct {
	base
	g    *variable.GraphVar
	dMin []int
}

var _ flint.Propagator = (*AtLeastDegree)(nil)

// NewAtLeastDegree posts kerDegree(i) >= dMin[i] for all kernel nodes i.
func NewAtLeastDegree(g *variable.GraphVar, dMin []int) *AtLeastDegree {
	return &AtLeastDegree{
		base: base{
			name:  fmt.Sprintf("minDegree(%s)", g.Name()),
			scope: []flint.Variable{g},
			prio:  flint.Binary,
		},
		g:    g,
		dMin: dMin,
	}
}

func (p *AtLeastDegree) Conditions(int) flint.Event {
	return flint.RemoveArc | flint.RemoveNode | flint.EnforceNode
}

func (p *AtLeastDegree) Incremental() bool { return false }

func (p *AtLeastDegree) Propagate() error {
	var outer error
	p.g.EachEnvNode(func(i int) bool {
		outer = p.checkNode(i)
		return outer == nil
	})
	return outer
}

func (p *AtLeastDegree) PropagateOn(int, flint.Event) error {
	return p.Propagate()
}

func (p *AtLeastDegree) checkNode(i int) error {
	if !p.g.KerNode(i) {
		return nil
	}
	ed := p.g.EnvDegree(i)
	if ed < p.dMin[i] {
		return flint.Contradict(p, p.g, fmt.Sprintf("node %d cannot reach degree %d", i, p.dMin[i]))
	}
	if ed > p.dMin[i] {
		return nil
	}
	var needed []int
	p.g.EachEnvNeighbor(i, func(j int) bool {
		if !p.g.KerArc(i, j) {
			needed = append(needed, j)
		}
		return true
	})
	for _, j := range needed {
		if _, err := p.g.EnforceArc(i, j, p); err != nil {
			return err
		}
	}
	return nil
}

func (p *AtLeastDegree) Entailed() flint.Entailment {
	done := flint.True
	var failed bool
	p.g.EachEnvNode(func(i int) bool {
		if !p.g.KerNode(i) {
			done = flint.Undefined
			return true
		}
		if p.g.EnvDegree(i) < p.dMin[i] {
			failed = true
			return false
		}
		if p.g.KerDegree(i) < p.dMin[i] {
			done = flint.Undefined
		}
		return true
	})
	if failed {
		return flint.False
	}
	return done
}
