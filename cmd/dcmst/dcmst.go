package dcmst

import (
	"context"
	"fmt"
	"io"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/xs2maverick/flint/pkg/flint"
	"github.com/xs2maverick/flint/pkg/flint/constraint"
	"github.com/xs2maverick/flint/pkg/flint/search"
	"github.com/xs2maverick/flint/pkg/flint/solver"
)

// Search modes. "first" branches on arcs only, "botup" drives the objective
// bottom-up ahead of the arc strategy, and "dicho" binary-searches the
// objective range.
const (
	SearchFirst = "first"
	SearchBotUp = "botup"
	SearchDicho = "dicho"
)

// Config tunes a benchmark run.
type Config struct {
	SearchMode string
	TimeLimit  time.Duration
	// UpperBound is an initial bound on the tree cost, typically from a
	// bound table. Zero means no bound is known and the total arc cost is
	// used.
	UpperBound int
	Verbose    bool
}

// Outcome is the record of one solved instance.
type Outcome struct {
	Instance   string
	SearchMode string
	Result     search.Result
	Solutions  int64
	Fails      int64
	Nodes      int64
	TimeMs     int64
	BestCost   int
	Tree       [][2]int
}

// Line renders the outcome in the benchmark result format.
func (o *Outcome) Line() string {
	return fmt.Sprintf("%s;%d;%d;%d;%d;%d;%s;",
		o.Instance, o.Solutions, o.Fails, o.Nodes, o.TimeMs, o.BestCost, o.SearchMode)
}

// Solve builds the degree-constrained tree model for the instance and runs a
// branch-and-bound minimization of the tree cost.
func Solve(ctx context.Context, inst *Instance, cfg Config) (*Outcome, error) {
	ub := cfg.UpperBound
	if ub <= 0 {
		ub = inst.TotalCost()
	}

	opts := []solver.Option{solver.WithTimeLimit(cfg.TimeLimit)}
	if cfg.Verbose {
		opts = append(opts, solver.WithMonitor(&search.LogMonitor{}))
	}
	s, err := solver.New(opts...)
	if err != nil {
		return nil, err
	}

	g := s.GraphVar("tree", inst.N)
	for _, a := range inst.Arcs() {
		g.InitArc(a[0], a[1])
	}
	for i := 0; i < inst.N; i++ {
		if _, err := g.EnforceNode(i, flint.NoCause); err != nil {
			return nil, err
		}
	}
	obj := s.IntVar("treeCost", 0, ub)
	dist := func(i, j int) int { return inst.Dist[i][j] }

	dMin := make([]int, inst.N)
	for i := range dMin {
		dMin[i] = 1
	}
	heldKarp := constraint.NewHeldKarp(g, obj, dist, inst.DMax, true, s.Measures())
	if err := s.Post(
		flint.NewConstraint("degrees",
			constraint.NewAtLeastDegree(g, dMin),
			constraint.NewAtMostDegree(g, inst.DMax),
		),
		flint.NewConstraint("tree",
			constraint.NewNoSubtour(s.Trail(), g),
			constraint.NewConnectedEnvelope(g),
			constraint.NewTreeCost(g, obj, dist),
		),
		flint.NewConstraint("heldKarp", heldKarp),
	); err != nil {
		return nil, err
	}

	// Arc branching: greedy until the first solution, then along the
	// Held-Karp support tree, with the greedy strategy as a completeness
	// fallback when the hint runs dry.
	arcs := &search.Sequence{Strategies: []search.Strategy{
		&search.PhaseSwitch{
			Measures: s.Measures(),
			First:    &search.FirstPathArcs{G: g, Cost: dist},
			Then:     &search.BoundGuidedArcs{G: g, DMax: inst.DMax, Hint: heldKarp},
		},
		&search.FirstPathArcs{G: g, Cost: dist},
	}}

	var strategy search.Strategy
	switch cfg.SearchMode {
	case SearchFirst:
		strategy = arcs
	case SearchBotUp:
		strategy = &search.Sequence{Strategies: []search.Strategy{&search.BottomUp{Obj: obj}, arcs}}
	case SearchDicho:
		strategy = &search.Sequence{Strategies: []search.Strategy{&search.Dichotomic{Obj: obj}, arcs}}
	default:
		return nil, fmt.Errorf("%w: unknown search mode %q", flint.ErrConfiguration, cfg.SearchMode)
	}
	s.SetStrategy(strategy)
	s.SetObjective(obj, search.Minimize)

	if cfg.Verbose {
		stats := search.NewStatsLogger(s.Measures(), time.Second)
		stats.Start()
		defer stats.Stop()
	}

	sol, result, err := s.FindOptimalSolution(ctx)
	if err != nil {
		return nil, err
	}

	m := s.Measures()
	out := &Outcome{
		Instance:   inst.Name,
		SearchMode: cfg.SearchMode,
		Result:     result,
		Solutions:  m.Solutions,
		Fails:      m.Fails,
		Nodes:      m.Nodes,
		TimeMs:     m.Elapsed().Milliseconds(),
		BestCost:   -1,
	}
	if sol != nil {
		out.BestCost = m.Best
		out.Tree = sol.GraphArcs(g)
	}
	return out, nil
}

// Report writes the result line to w and logs a human-readable summary.
func Report(w io.Writer, o *Outcome) error {
	switch {
	case o.Solutions == 0 && o.Result.Complete:
		log.Warnf("%s: no degree-constrained spanning tree exists", o.Instance)
	case o.Solutions == 0:
		log.Warnf("%s: no solution within limits", o.Instance)
	case o.Result.Complete:
		log.Infof("%s: optimum %d proven (%d solutions, %d fails, %d nodes)",
			o.Instance, o.BestCost, o.Solutions, o.Fails, o.Nodes)
	default:
		log.Infof("%s: best %d, optimality not proven (%d solutions, %d fails, %d nodes)",
			o.Instance, o.BestCost, o.Solutions, o.Fails, o.Nodes)
	}
	_, err := fmt.Fprintln(w, o.Line())
	return err
}
