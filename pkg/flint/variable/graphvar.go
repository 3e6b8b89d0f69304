package variable

import (
	"fmt"

	"github.com/xs2maverick/flint/pkg/flint"
	"github.com/xs2maverick/flint/pkg/flint/trail"
)

// GraphVar is an undirected graph variable: a kernel (mandatory) and an
// envelope (possible) pair of node and adjacency sets, with kernel always
// contained in the envelope. Nodes and arcs move in one direction only within
// a branch: into the kernel or out of the envelope. The variable is
// instantiated once kernel and envelope coincide.
type GraphVar struct {
	hooks
	id   int
	name string
	n    int

	kerNodes, envNodes *trail.Bitset
	kerAdj, envAdj     []*trail.Bitset
	kerArcs, envArcs   *trail.Int
}

var _ flint.Variable = (*GraphVar)(nil)

// NewGraph creates a graph variable over n nodes. All nodes start in the
// envelope; the envelope adjacency starts empty and is built with InitArc
// before solving.
func NewGraph(t *trail.Trail, sink flint.EventSink, id int, name string, n int) *GraphVar {
	g := &GraphVar{
		hooks:    hooks{trail: t, sink: sink},
		id:       id,
		name:     name,
		n:        n,
		kerNodes: t.NewBitset(uint(n)),
		envNodes: t.NewBitset(uint(n)),
		kerAdj:   make([]*trail.Bitset, n),
		envAdj:   make([]*trail.Bitset, n),
		kerArcs:  t.NewInt(0),
		envArcs:  t.NewInt(0),
	}
	for i := 0; i < n; i++ {
		g.envNodes.InitSet(uint(i))
		g.kerAdj[i] = t.NewBitset(uint(n))
		g.envAdj[i] = t.NewBitset(uint(n))
	}
	return g
}

func (g *GraphVar) ID() int { return g.id }
func (g *GraphVar) Name() string { return g.name }
func (g *GraphVar) N() int { return g.n }

func (g *GraphVar) String() string {
	return fmt.Sprintf("%s(%d nodes, %d/%d arcs)", g.name, g.n, g.KerArcCount(), g.EnvArcCount())
}

// Subscribe implements flint.Variable.
func (g *GraphVar) Subscribe(p flint.Propagator, idx int, mask flint.Event) {
	g.subscribe(p, idx, mask)
}

// InitArc adds an undirected arc to the envelope without trailing. Only valid
// while building the model.
func (g *GraphVar) InitArc(i, j int) {
	if i == j {
		panic(fmt.Sprintf("graph %s: self loop (%d,%d)", g.name, i, j))
	}
	if !g.envAdj[i].Test(uint(j)) {
		g.envAdj[i].InitSet(uint(j))
		g.envAdj[j].InitSet(uint(i))
		g.envArcs.Set(g.envArcs.Get() + 1)
	}
}

func (g *GraphVar) EnvNode(i int) bool { return g.envNodes.Test(uint(i)) }
func (g *GraphVar) KerNode(i int) bool { return g.kerNodes.Test(uint(i)) }

func (g *GraphVar) EnvArc(i, j int) bool { return g.envAdj[i].Test(uint(j)) }
func (g *GraphVar) KerArc(i, j int) bool { return g.kerAdj[i].Test(uint(j)) }

func (g *GraphVar) EnvDegree(i int) int { return g.envAdj[i].Count() }
func (g *GraphVar) KerDegree(i int) int { return g.kerAdj[i].Count() }

// EnvArcCount returns the number of undirected envelope arcs.
func (g *GraphVar) EnvArcCount() int { return g.envArcs.Get() }

// KerArcCount returns the number of undirected kernel arcs.
func (g *GraphVar) KerArcCount() int { return g.kerArcs.Get() }

// EachEnvNeighbor visits the envelope neighbors of i in ascending order until
// f returns false.
func (g *GraphVar) EachEnvNeighbor(i int, f func(j int) bool) {
	g.envAdj[i].Each(func(j uint) bool { return f(int(j)) })
}

// EachKerNeighbor visits the kernel neighbors of i in ascending order until
// f returns false.
func (g *GraphVar) EachKerNeighbor(i int, f func(j int) bool) {
	g.kerAdj[i].Each(func(j uint) bool { return f(int(j)) })
}

// EachEnvNode visits the envelope nodes in ascending order until f returns
// false.
func (g *GraphVar) EachEnvNode(f func(i int) bool) {
	g.envNodes.Each(func(i uint) bool { return f(int(i)) })
}

// Instantiated reports whether kernel and envelope coincide.
func (g *GraphVar) Instantiated() bool {
	return g.kerNodes.Count() == g.envNodes.Count() && g.kerArcs.Get() == g.envArcs.Get()
}

// EnforceNode moves node i into the kernel. Fails if i already left the
// envelope.
func (g *GraphVar) EnforceNode(i int, cause flint.Cause) (bool, error) {
	if g.kerNodes.Test(uint(i)) {
		return false, nil
	}
	if !g.envNodes.Test(uint(i)) {
		return false, flint.Contradict(cause, g, fmt.Sprintf("enforcing node %d outside envelope", i))
	}
	g.kerNodes.Set(uint(i))
	g.notify(flint.EnforceNode, cause, i, -1)
	return true, nil
}

// RemoveNode removes node i from the envelope together with its incident
// envelope arcs. Fails if i or one of those arcs is in the kernel.
func (g *GraphVar) RemoveNode(i int, cause flint.Cause) (bool, error) {
	if !g.envNodes.Test(uint(i)) {
		return false, nil
	}
	if g.kerNodes.Test(uint(i)) {
		return false, flint.Contradict(cause, g, fmt.Sprintf("removing kernel node %d", i))
	}
	var neighbors []int
	g.EachEnvNeighbor(i, func(j int) bool {
		neighbors = append(neighbors, j)
		return true
	})
	for _, j := range neighbors {
		if _, err := g.RemoveArc(i, j, cause); err != nil {
			return false, err
		}
	}
	g.envNodes.Clear(uint(i))
	g.notify(flint.RemoveNode, cause, i, -1)
	return true, nil
}

// EnforceArc moves arc (i,j) into the kernel, enforcing both endpoint nodes.
// Fails if the arc is not in the envelope.
func (g *GraphVar) EnforceArc(i, j int, cause flint.Cause) (bool, error) {
	if g.kerAdj[i].Test(uint(j)) {
		return false, nil
	}
	if !g.envAdj[i].Test(uint(j)) {
		return false, flint.Contradict(cause, g, fmt.Sprintf("enforcing arc (%d,%d) outside envelope", i, j))
	}
	if _, err := g.EnforceNode(i, cause); err != nil {
		return false, err
	}
	if _, err := g.EnforceNode(j, cause); err != nil {
		return false, err
	}
	g.kerAdj[i].Set(uint(j))
	g.kerAdj[j].Set(uint(i))
	g.kerArcs.Set(g.kerArcs.Get() + 1)
	g.notify(flint.EnforceArc, cause, i, j)
	return true, nil
}

// RemoveArc removes arc (i,j) from the envelope. Fails if the arc is in the
// kernel.
func (g *GraphVar) RemoveArc(i, j int, cause flint.Cause) (bool, error) {
	if !g.envAdj[i].Test(uint(j)) {
		return false, nil
	}
	if g.kerAdj[i].Test(uint(j)) {
		return false, flint.Contradict(cause, g, fmt.Sprintf("removing kernel arc (%d,%d)", i, j))
	}
	g.envAdj[i].Clear(uint(j))
	g.envAdj[j].Clear(uint(i))
	g.envArcs.Set(g.envArcs.Get() - 1)
	g.notify(flint.RemoveArc, cause, i, j)
	return true, nil
}

// ForEachDelta hands p the arc and node changes recorded since its last
// read, skipping changes p caused itself.
func (g *GraphVar) ForEachDelta(p flint.Propagator, f func(d Delta) error) error {
	q := g.queueFor(p)
	if q == nil {
		return nil
	}
	return q.consume(p, f)
}
