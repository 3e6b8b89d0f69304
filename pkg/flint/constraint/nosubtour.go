package constraint

import (
	"fmt"

	"github.com/xs2maverick/flint/pkg/flint"
	"github.com/xs2maverick/flint/pkg/flint/trail"
	"github.com/xs2maverick/flint/pkg/flint/variable"
)

// NoSubtour forbids cycles in the kernel of g. Kernel components are tracked
// with a backtrackable union-find; an envelope arc whose endpoints already
// share a component would close a cycle and is removed.
type NoSubtour struct {
	base
	g *variable.GraphVar

	parent []*trail.Int
	size   []*trail.Int
	// processed marks kernel arcs already merged into the union-find, so
	// that a coarse pass never re-unions an arc and misreads it as a cycle.
	processed *trail.Bitset
}

var _ flint.Propagator = (*NoSubtour)(nil)

// NewNoSubtour posts acyclicity of the kernel of g.
func NewNoSubtour(t *trail.Trail, g *variable.GraphVar) *NoSubtour {
	n := g.N()
	p := &NoSubtour{
		base: base{
			name:  fmt.Sprintf("noSubtour(%s)", g.Name()),
			scope: []flint.Variable{g},
			prio:  flint.Linear,
		},
		g:         g,
		parent:    make([]*trail.Int, n),
		size:      make([]*trail.Int, n),
		processed: t.NewBitset(uint(n * n)),
	}
	for i := 0; i < n; i++ {
		p.parent[i] = t.NewInt(i)
		p.size[i] = t.NewInt(1)
	}
	return p
}

func (p *NoSubtour) Conditions(int) flint.Event { return flint.EnforceArc }
func (p *NoSubtour) Incremental() bool { return true }

// find walks to the root without path compression: parents only change under
// union, which keeps the trail small.
func (p *NoSubtour) find(x int) int {
	for p.parent[x].Get() != x {
		x = p.parent[x].Get()
	}
	return x
}

func (p *NoSubtour) union(i, j int) error {
	ri, rj := p.find(i), p.find(j)
	if ri == rj {
		return flint.Contradict(p, p.g, fmt.Sprintf("arc %d-%d closes a cycle", i, j))
	}
	if p.size[ri].Get() < p.size[rj].Get() {
		ri, rj = rj, ri
	}
	p.parent[rj].Set(ri)
	p.size[ri].Add(p.size[rj].Get())
	return nil
}

func (p *NoSubtour) absorb(i, j int) error {
	idx := uint(i*p.g.N() + j)
	if i > j {
		idx = uint(j*p.g.N() + i)
	}
	if p.processed.Test(idx) {
		return nil
	}
	if err := p.union(i, j); err != nil {
		return err
	}
	p.processed.Set(idx)
	return nil
}

func (p *NoSubtour) Propagate() error {
	var outer error
	p.g.EachEnvNode(func(i int) bool {
		p.g.EachKerNeighbor(i, func(j int) bool {
			if i < j {
				outer = p.absorb(i, j)
			}
			return outer == nil
		})
		return outer == nil
	})
	if outer != nil {
		return outer
	}
	return p.pruneCycles()
}

func (p *NoSubtour) PropagateOn(_ int, _ flint.Event) error {
	err := p.g.ForEachDelta(p, func(d variable.Delta) error {
		if d.Evt != flint.EnforceArc {
			return nil
		}
		return p.absorb(d.From, d.To)
	})
	if err != nil {
		return err
	}
	return p.pruneCycles()
}

// pruneCycles removes every optional envelope arc joining two nodes of the
// same kernel component.
func (p *NoSubtour) pruneCycles() error {
	type arc struct{ i, j int }
	var victims []arc
	p.g.EachEnvNode(func(i int) bool {
		p.g.EachEnvNeighbor(i, func(j int) bool {
			if i < j && !p.g.KerArc(i, j) && p.find(i) == p.find(j) {
				victims = append(victims, arc{i, j})
			}
			return true
		})
		return true
	})
	for _, a := range victims {
		if _, err := p.g.RemoveArc(a.i, a.j, p); err != nil {
			return err
		}
	}
	return nil
}

// Entailed recomputes a fresh union-find over the kernel: the trailed one may
// be behind the graph when the engine has not reached the propagator yet.
func (p *NoSubtour) Entailed() flint.Entailment {
	n := p.g.N()
	root := make([]int, n)
	for i := range root {
		root[i] = i
	}
	var find func(x int) int
	find = func(x int) int {
		for root[x] != x {
			x = root[x]
		}
		return x
	}
	cyclic := false
	p.g.EachEnvNode(func(i int) bool {
		p.g.EachKerNeighbor(i, func(j int) bool {
			if i >= j {
				return true
			}
			ri, rj := find(i), find(j)
			if ri == rj {
				cyclic = true
				return false
			}
			root[rj] = ri
			return true
		})
		return !cyclic
	})
	if cyclic {
		return flint.False
	}
	if p.g.Instantiated() {
		return flint.True
	}
	return flint.Undefined
}
