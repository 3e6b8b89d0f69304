// Package solver is the front door of the library: it owns the trail, the
// propagation engine and the search loop, and exposes variable factories,
// constraint posting and the find-solution entry points.
package solver

import (
	"context"
	"fmt"
	"time"

	"github.com/xs2maverick/flint/pkg/flint"
	"github.com/xs2maverick/flint/pkg/flint/propagation"
	"github.com/xs2maverick/flint/pkg/flint/search"
	"github.com/xs2maverick/flint/pkg/flint/trail"
	"github.com/xs2maverick/flint/pkg/flint/variable"
)

// Solver assembles a model and solves it. A Solver is single-use: build the
// model, run one of the Find methods, read the results.
type Solver struct {
	trail    *trail.Trail
	engine   *propagation.Engine
	measures flint.Measures
	limits   search.Limits
	monitors []flint.Monitor

	strategy    search.Strategy
	objective   *search.ObjectiveManager
	intVars     []*variable.IntVar
	graphVars   []*variable.GraphVar
	constraints []*flint.Constraint
	nextID      int
	searched    bool
}

// Option configures a Solver at construction time.
type Option func(s *Solver) error

// New creates a solver with the given options applied in order.
func New(options ...Option) (*Solver, error) {
	s := &Solver{
		trail:  trail.New(),
		engine: propagation.New(),
	}
	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// WithTimeLimit bounds the wall-clock search time. A zero duration stops the
// search right after root propagation.
func WithTimeLimit(d time.Duration) Option {
	return func(s *Solver) error {
		if d < 0 {
			return fmt.Errorf("%w: negative time limit %s", flint.ErrConfiguration, d)
		}
		s.limits.TimeLimited = true
		s.limits.Time = d
		return nil
	}
}

// WithNodeLimit bounds the number of search nodes opened.
func WithNodeLimit(n int64) Option {
	return func(s *Solver) error {
		s.limits.Nodes = n
		return nil
	}
}

// WithFailLimit bounds the number of contradictions hit.
func WithFailLimit(n int64) Option {
	return func(s *Solver) error {
		s.limits.Fails = n
		return nil
	}
}

// WithSolutionLimit stops the search after n solutions.
func WithSolutionLimit(n int64) Option {
	return func(s *Solver) error {
		s.limits.Solutions = n
		return nil
	}
}

// WithMonitor attaches a search monitor.
func WithMonitor(m flint.Monitor) Option {
	return func(s *Solver) error {
		s.monitors = append(s.monitors, m)
		return nil
	}
}

// IntVar creates a bounded integer variable over [lb, ub].
func (s *Solver) IntVar(name string, lb, ub int) *variable.IntVar {
	s.nextID++
	v := variable.NewInt(s.trail, s.engine, s.nextID, name, lb, ub)
	s.intVars = append(s.intVars, v)
	return v
}

// EnumVar creates an enumerated integer variable over the given values.
func (s *Solver) EnumVar(name string, values ...int) *variable.IntVar {
	s.nextID++
	v := variable.NewEnum(s.trail, s.engine, s.nextID, name, values)
	s.intVars = append(s.intVars, v)
	return v
}

// GraphVar creates a graph variable over n nodes.
func (s *Solver) GraphVar(name string, n int) *variable.GraphVar {
	s.nextID++
	g := variable.NewGraph(s.trail, s.engine, s.nextID, name, n)
	s.graphVars = append(s.graphVars, g)
	return g
}

// Trail exposes the solver's trail for constraints that keep backtrackable
// state of their own.
func (s *Solver) Trail() *trail.Trail { return s.trail }

// Measures exposes the live search statistics.
func (s *Solver) Measures() *flint.Measures { return &s.measures }

// Post registers a constraint's propagators with the engine. Posting after a
// search has run is a configuration error.
func (s *Solver) Post(cs ...*flint.Constraint) error {
	if s.searched {
		return fmt.Errorf("%w: constraint posted after search", flint.ErrConfiguration)
	}
	for _, c := range cs {
		for _, p := range c.Props {
			if err := s.engine.Register(p); err != nil {
				return err
			}
		}
		s.constraints = append(s.constraints, c)
	}
	return nil
}

// Constraints returns every posted constraint, in posting order.
func (s *Solver) Constraints() []*flint.Constraint { return s.constraints }

// SetStrategy installs the branching strategy. Without one the solver falls
// back to input-order, minimum-value branching over the integer variables.
func (s *Solver) SetStrategy(st search.Strategy) { s.strategy = st }

// SetObjective turns the next search into an optimization over v.
func (s *Solver) SetObjective(v *variable.IntVar, dir search.Direction) {
	s.objective = &search.ObjectiveManager{Obj: v, Dir: dir}
}

// Objective exposes the objective manager, or nil for satisfaction problems.
func (s *Solver) Objective() *search.ObjectiveManager { return s.objective }

// FindSolution searches for one solution. A nil solution with a nil error
// means the search ended without one: inspect Result for the reason.
func (s *Solver) FindSolution(ctx context.Context) (*Solution, search.Result, error) {
	return s.run(ctx, true)
}

// FindOptimalSolution exhausts the search space under the objective cut and
// returns the best solution found. Result.Complete reports proof of
// optimality.
func (s *Solver) FindOptimalSolution(ctx context.Context) (*Solution, search.Result, error) {
	if s.objective == nil {
		return nil, search.Result{}, fmt.Errorf("%w: optimization without an objective", flint.ErrConfiguration)
	}
	return s.run(ctx, false)
}

func (s *Solver) run(ctx context.Context, stopFirst bool) (*Solution, search.Result, error) {
	if s.searched {
		return nil, search.Result{}, fmt.Errorf("%w: solver already searched", flint.ErrConfiguration)
	}
	s.searched = true

	strategy := s.strategy
	if strategy == nil {
		strategy = &search.InputOrderMinValue{Vars: s.intVars}
	}

	var best *Solution
	loop := &search.Loop{
		Trail:     s.trail,
		Engine:    s.engine,
		Strategy:  strategy,
		Objective: s.objective,
		Measures:  &s.measures,
		Monitors:  s.monitors,
		Limits:    s.limits,
		OnSolution: func() error {
			best = s.snapshot()
			return nil
		},
	}
	result, err := loop.Run(ctx, stopFirst)
	if err != nil {
		return nil, result, err
	}
	if best != nil {
		best.Proven = result.Complete
	}
	return best, result, nil
}

// Solution is an immutable snapshot of an assignment, safe to keep after the
// solver backtracks away from it.
type Solution struct {
	// Proven reports that the search space was exhausted after this
	// solution was found: under an objective it is optimal.
	Proven bool

	ints map[int]int
	arcs map[int][][2]int
}

func (s *Solver) snapshot() *Solution {
	sol := &Solution{
		ints: make(map[int]int, len(s.intVars)),
		arcs: make(map[int][][2]int, len(s.graphVars)),
	}
	for _, v := range s.intVars {
		if v.Instantiated() {
			sol.ints[v.ID()] = v.Value()
		}
	}
	for _, g := range s.graphVars {
		var arcs [][2]int
		g.EachEnvNode(func(i int) bool {
			g.EachKerNeighbor(i, func(j int) bool {
				if i < j {
					arcs = append(arcs, [2]int{i, j})
				}
				return true
			})
			return true
		})
		sol.arcs[g.ID()] = arcs
	}
	return sol
}

// Int returns the value of v in the solution. The variable must have been
// instantiated when the solution was recorded.
func (sol *Solution) Int(v *variable.IntVar) (int, bool) {
	x, ok := sol.ints[v.ID()]
	return x, ok
}

// GraphArcs returns the kernel arcs of g in the solution, each as an ordered
// pair i < j, in ascending node order.
func (sol *Solution) GraphArcs(g *variable.GraphVar) [][2]int {
	return sol.arcs[g.ID()]
}
