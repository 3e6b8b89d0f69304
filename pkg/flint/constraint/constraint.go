// Package constraint provides the propagators used by the solver's tests and
// its benchmarks: binary arithmetic over integer variables, and the graph
// propagators of the degree-constrained spanning tree model (degree caps,
// cycle elimination, connectivity, tree cost, Held-Karp bound).
//
// Every propagator is a plug-in to the generic contract in pkg/flint: it
// declares its scope, priority and wake-up conditions, filters in Propagate
// and PropagateOn, and reports entailment. Propagators only narrow variables
// in their own scope and cite themselves as cause.
package constraint

import (
	"github.com/xs2maverick/flint/pkg/flint"
)

// base carries the fields shared by all propagators in this package.
type base struct {
	name  string
	scope []flint.Variable
	prio  flint.Priority
}

func (b *base) String() string { return b.name }
func (b *base) Scope() []flint.Variable { return b.scope }
func (b *base) Priority() flint.Priority { return b.prio }
