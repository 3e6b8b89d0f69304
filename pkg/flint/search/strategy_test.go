package search_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xs2maverick/flint/pkg/flint"
	"github.com/xs2maverick/flint/pkg/flint/search"
	"github.com/xs2maverick/flint/pkg/flint/variable"
)

func (m *model) graphVar(t *testing.T, name string, n int, arcs [][2]int) *variable.GraphVar {
	t.Helper()
	m.nextID++
	g := variable.NewGraph(m.trail, m.engine, m.nextID, name, n)
	for _, a := range arcs {
		g.InitArc(a[0], a[1])
	}
	for i := 0; i < n; i++ {
		_, err := g.EnforceNode(i, flint.NoCause)
		require.NoError(t, err)
	}
	return g
}

func TestSequenceUsesLaterStrategyWhenFirstExhausted(t *testing.T) {
	m := newModel()
	x := m.intVar("x", 2, 2)
	y := m.intVar("y", 0, 1)

	st := &search.Sequence{Strategies: []search.Strategy{
		&search.InputOrderMinValue{Vars: []*variable.IntVar{x}},
		&search.InputOrderMinValue{Vars: []*variable.IntVar{y}},
	}}
	require.NoError(t, st.Init())

	d := st.Decide()
	require.NotNil(t, d)
	assert.Equal(t, "y=0", d.String())
}

func TestPhaseSwitchChangesAfterFirstSolution(t *testing.T) {
	m := newModel()
	x := m.intVar("x", 0, 1)
	y := m.intVar("y", 0, 1)

	st := &search.PhaseSwitch{
		Measures: &m.measures,
		First:    &search.InputOrderMinValue{Vars: []*variable.IntVar{x}},
		Then:     &search.InputOrderMinValue{Vars: []*variable.IntVar{y}},
	}
	require.NoError(t, st.Init())

	assert.Equal(t, "x=0", st.Decide().String())
	m.measures.Solutions = 1
	assert.Equal(t, "y=0", st.Decide().String())
}

func TestFirstPathArcsTargetsIsolatedNodeFirst(t *testing.T) {
	m := newModel()
	g := m.graphVar(t, "g", 3, [][2]int{{0, 1}, {0, 2}, {1, 2}})
	cost := func(i, j int) int { return 10*i + j }

	st := &search.FirstPathArcs{G: g, Cost: cost}
	require.NoError(t, st.Init())

	d := st.Decide()
	require.NotNil(t, d)
	assert.Equal(t, "arc(0,1)", d.String(), "node 0 has no kernel arc; 0-1 is its cheapest")
}

func TestFirstPathArcsFallsBackToCheapestUndecided(t *testing.T) {
	m := newModel()
	g := m.graphVar(t, "g", 3, [][2]int{{0, 1}, {0, 2}, {1, 2}})
	cost := func(i, j int) int {
		if i > j {
			i, j = j, i
		}
		if i == 1 && j == 2 {
			return 1
		}
		return 5
	}

	// A kernel path 0-1-2 leaves no degree-zero node; 1-2 is the cheapest
	// undecided arc.
	_, err := g.EnforceArc(0, 1, flint.NoCause)
	require.NoError(t, err)
	_, err = g.EnforceArc(0, 2, flint.NoCause)
	require.NoError(t, err)

	st := &search.FirstPathArcs{G: g, Cost: cost}
	require.NoError(t, st.Init())

	d := st.Decide()
	require.NotNil(t, d)
	assert.Equal(t, "arc(1,2)", d.String())
}

func TestFirstPathArcsStopsWhenGraphDecided(t *testing.T) {
	m := newModel()
	g := m.graphVar(t, "g", 2, [][2]int{{0, 1}})
	_, err := g.EnforceArc(0, 1, flint.NoCause)
	require.NoError(t, err)

	st := &search.FirstPathArcs{G: g, Cost: func(i, j int) int { return 1 }}
	require.NoError(t, st.Init())
	assert.Nil(t, st.Decide())
}

type fixedTree struct {
	adj map[int][]int
}

func (f fixedTree) HasTree() bool { return f.adj != nil }

func (f fixedTree) EachTreeNeighbor(i int, fn func(j int) bool) {
	for _, j := range f.adj[i] {
		if !fn(j) {
			return
		}
	}
}

func TestBoundGuidedArcsFollowsHintTree(t *testing.T) {
	m := newModel()
	g := m.graphVar(t, "g", 4, [][2]int{{0, 1}, {1, 2}, {2, 3}, {0, 3}})

	hint := fixedTree{adj: map[int][]int{
		0: {1}, 1: {0, 2}, 2: {1, 3}, 3: {2},
	}}
	st := &search.BoundGuidedArcs{G: g, DMax: []int{2, 2, 2, 2}, Hint: hint}
	require.NoError(t, st.Init())

	d := st.Decide()
	require.NotNil(t, d)
	ad, ok := d.(*search.ArcDecision)
	require.True(t, ok)
	assert.True(t, hasArc(hint, ad.From, ad.To), "decision must come from the hint tree")
}

func TestBoundGuidedArcsWithoutTree(t *testing.T) {
	m := newModel()
	g := m.graphVar(t, "g", 3, [][2]int{{0, 1}, {1, 2}})

	st := &search.BoundGuidedArcs{G: g, DMax: []int{2, 2, 2}, Hint: fixedTree{}}
	require.NoError(t, st.Init())
	assert.Nil(t, st.Decide())
}

func TestBoundGuidedArcsSkipsArcsOutsideEnvelope(t *testing.T) {
	m := newModel()
	g := m.graphVar(t, "g", 3, [][2]int{{0, 1}, {1, 2}})
	_, err := g.RemoveArc(0, 1, flint.NoCause)
	require.NoError(t, err)

	// The hint still names 0-1, but only 1-2 is available.
	hint := fixedTree{adj: map[int][]int{0: {1}, 1: {0, 2}, 2: {1}}}
	st := &search.BoundGuidedArcs{G: g, DMax: []int{2, 2, 2}, Hint: hint}
	require.NoError(t, st.Init())

	d := st.Decide()
	require.NotNil(t, d)
	ad, ok := d.(*search.ArcDecision)
	require.True(t, ok)
	lo, hi := ad.From, ad.To
	if lo > hi {
		lo, hi = hi, lo
	}
	assert.Equal(t, [2]int{1, 2}, [2]int{lo, hi})
}

func hasArc(f fixedTree, i, j int) bool {
	for _, k := range f.adj[i] {
		if k == j {
			return true
		}
	}
	return false
}
