package constraint

import (
	"fmt"

	"github.com/xs2maverick/flint/pkg/flint"
	"github.com/xs2maverick/flint/pkg/flint/variable"
)

// ConnectedEnvelope fails as soon as the envelope of g can no longer connect
// all kernel nodes: once two mandatory nodes sit in different envelope
// components, no extension of the graph can join them.
type ConnectedEnvelope struct {
	base
	g *variable.GraphVar
}

var _ flint.Propagator = (*ConnectedEnvelope)(nil)

// NewConnectedEnvelope posts envelope connectivity over the kernel nodes of g.
func NewConnectedEnvelope(g *variable.GraphVar) *ConnectedEnvelope {
	return &ConnectedEnvelope{
		base: base{
			name:  fmt.Sprintf("connected(%s)", g.Name()),
			scope: []flint.Variable{g},
			prio:  flint.Linear,
		},
		g: g,
	}
}

func (p *ConnectedEnvelope) Conditions(int) flint.Event {
	return flint.RemoveArc | flint.RemoveNode
}

func (p *ConnectedEnvelope) Incremental() bool { return false }

func (p *ConnectedEnvelope) Propagate() error {
	start := -1
	p.g.EachEnvNode(func(i int) bool {
		if p.g.KerNode(i) {
			start = i
			return false
		}
		return true
	})
	if start < 0 {
		return nil
	}
	seen := make([]bool, p.g.N())
	queue := []int{start}
	seen[start] = true
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		p.g.EachEnvNeighbor(i, func(j int) bool {
			if !seen[j] {
				seen[j] = true
				queue = append(queue, j)
			}
			return true
		})
	}
	var stranded int
	ok := true
	p.g.EachEnvNode(func(i int) bool {
		if p.g.KerNode(i) && !seen[i] {
			stranded = i
			ok = false
		}
		return ok
	})
	if !ok {
		return flint.Contradict(p, p.g, fmt.Sprintf("node %d is cut off from node %d", stranded, start))
	}
	return nil
}

func (p *ConnectedEnvelope) PropagateOn(int, flint.Event) error {
	return p.Propagate()
}

func (p *ConnectedEnvelope) Entailed() flint.Entailment {
	if err := p.Propagate(); err != nil {
		return flint.False
	}
	if p.g.Instantiated() {
		return flint.True
	}
	return flint.Undefined
}
