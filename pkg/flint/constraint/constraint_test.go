package constraint_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xs2maverick/flint/pkg/flint"
	"github.com/xs2maverick/flint/pkg/flint/propagation"
	"github.com/xs2maverick/flint/pkg/flint/trail"
	"github.com/xs2maverick/flint/pkg/flint/variable"
)

// fixture wires a trail, an engine and a variable factory the way the solver
// facade does, without dragging the search loop into propagator tests.
type fixture struct {
	trail  *trail.Trail
	engine *propagation.Engine
	nextID int
}

func newFixture() *fixture {
	return &fixture{trail: trail.New(), engine: propagation.New()}
}

func (f *fixture) intVar(name string, lb, ub int) *variable.IntVar {
	f.nextID++
	return variable.NewInt(f.trail, f.engine, f.nextID, name, lb, ub)
}

func (f *fixture) enumVar(name string, values ...int) *variable.IntVar {
	f.nextID++
	return variable.NewEnum(f.trail, f.engine, f.nextID, name, values)
}

func (f *fixture) graphVar(name string, n int) *variable.GraphVar {
	f.nextID++
	return variable.NewGraph(f.trail, f.engine, f.nextID, name, n)
}

func (f *fixture) post(t *testing.T, props ...flint.Propagator) {
	t.Helper()
	for _, p := range props {
		require.NoError(t, f.engine.Register(p))
	}
}

// mandatoryGraph builds a graph variable where every node is in the kernel
// and the given arcs form the envelope.
func (f *fixture) mandatoryGraph(t *testing.T, name string, n int, arcs [][2]int) *variable.GraphVar {
	t.Helper()
	g := f.graphVar(name, n)
	for _, a := range arcs {
		g.InitArc(a[0], a[1])
	}
	for i := 0; i < n; i++ {
		_, err := g.EnforceNode(i, flint.NoCause)
		require.NoError(t, err)
	}
	return g
}
