package search

import (
	"context"
	"time"

	"github.com/xs2maverick/flint/pkg/flint"
	"github.com/xs2maverick/flint/pkg/flint/propagation"
	"github.com/xs2maverick/flint/pkg/flint/trail"
)

// Limits bound the search. Zero values mean unlimited, except TimeLimited
// which gates the Time field so that an explicit zero time limit stops the
// search right after root propagation.
type Limits struct {
	TimeLimited bool
	Time        time.Duration
	Nodes       int64
	Fails       int64
	Solutions   int64
}

// Result is the outcome of a search run. Complete reports that the search
// space was exhausted: a Satisfied result is then proven optimal (under an
// objective) and an Unsatisfiable result is a proof.
type Result struct {
	Status   flint.Status
	Complete bool
}

// Loop is the backtracking state machine. It applies decisions, runs the
// propagation engine to fixpoint, records solutions, and rolls the trail back
// on failure. Contradictions never escape it; any other error aborts the
// search and is returned as fatal.
type Loop struct {
	Trail     *trail.Trail
	Engine    *propagation.Engine
	Strategy  Strategy
	Objective *ObjectiveManager // nil for satisfaction search
	Measures  *flint.Measures
	Monitors  []flint.Monitor
	Limits    Limits

	// OnSolution snapshots the current assignment; invoked at every
	// solution, before backtracking resumes.
	OnSolution func() error

	deadline time.Time
}

type frame struct {
	d       Decision
	mark    trail.Mark
	refuted bool
}

// Run explores the search tree. With stopFirst the loop returns at the first
// solution; otherwise it exhausts the tree, which under an objective manager
// enumerates solutions of strictly improving cost.
func (l *Loop) Run(ctx context.Context, stopFirst bool) (Result, error) {
	l.Measures.Start()
	if l.Limits.TimeLimited {
		l.deadline = time.Now().Add(l.Limits.Time)
	}
	if l.Strategy == nil {
		return Result{}, flint.ErrConfiguration
	}
	if err := l.Strategy.Init(); err != nil {
		return Result{}, err
	}

	err := l.propagate()
	for _, m := range l.Monitors {
		m.AfterRootPropagation(l.Measures)
	}
	if err != nil {
		if flint.IsContradiction(err) {
			l.fail()
			return Result{Status: flint.Unsatisfiable, Complete: true}, nil
		}
		return Result{}, err
	}

	var stack []frame
	exhausted := false
	for {
		if l.limitReached(ctx) {
			break
		}
		l.Measures.Nodes++

		d := l.Strategy.Decide()
		if d == nil {
			if err := l.recordSolution(); err != nil {
				return Result{}, err
			}
			if stopFirst {
				return Result{Status: flint.Satisfied, Complete: false}, nil
			}
			more, err := l.backtrack(&stack)
			if err != nil {
				return Result{}, err
			}
			if !more {
				exhausted = true
				break
			}
			continue
		}

		stack = append(stack, frame{d: d, mark: l.Trail.Mark()})
		if err := l.commit(d.Apply); err != nil {
			if !flint.IsContradiction(err) {
				return Result{}, err
			}
			l.fail()
			more, berr := l.backtrack(&stack)
			if berr != nil {
				return Result{}, berr
			}
			if !more {
				exhausted = true
				break
			}
		}
	}

	status := flint.Unknown
	if l.Measures.Solutions > 0 {
		status = flint.Satisfied
	} else if exhausted {
		status = flint.Unsatisfiable
	}
	return Result{Status: status, Complete: exhausted}, nil
}

// backtrack unwinds the stack until some node still has an unexplored
// alternative, applying the refutation of the decision it stops at. Reports
// false when every ancestor is exhausted.
func (l *Loop) backtrack(stack *[]frame) (bool, error) {
	for len(*stack) > 0 {
		f := &(*stack)[len(*stack)-1]
		l.Trail.Rollback(f.mark)
		if f.refuted {
			*stack = (*stack)[:len(*stack)-1]
			continue
		}
		f.refuted = true
		err := l.commit(f.d.Refute)
		if err == nil {
			return true, nil
		}
		if !flint.IsContradiction(err) {
			return false, err
		}
		l.fail()
	}
	return false, nil
}

// commit applies a branch mutation and runs propagation to fixpoint.
func (l *Loop) commit(branch func() error) error {
	if err := branch(); err != nil {
		l.Engine.Flush()
		return err
	}
	return l.propagate()
}

// propagate re-applies the objective cut and drains the engine.
func (l *Loop) propagate() error {
	if l.Objective != nil {
		if err := l.Objective.Apply(); err != nil {
			l.Engine.Flush()
			return err
		}
	}
	return l.Engine.Propagate()
}

func (l *Loop) recordSolution() error {
	l.Measures.Solutions++
	if l.Objective != nil {
		l.Objective.OnSolution()
		l.Measures.Best = l.Objective.Best()
	}
	for _, m := range l.Monitors {
		m.OnSolution(l.Measures)
	}
	if l.OnSolution != nil {
		return l.OnSolution()
	}
	return nil
}

func (l *Loop) fail() {
	l.Measures.Fails++
	for _, m := range l.Monitors {
		m.OnContradiction(l.Measures)
	}
}

func (l *Loop) limitReached(ctx context.Context) bool {
	if ctx != nil && ctx.Err() != nil {
		return true
	}
	if l.Limits.TimeLimited && !time.Now().Before(l.deadline) {
		return true
	}
	if l.Limits.Nodes > 0 && l.Measures.Nodes >= l.Limits.Nodes {
		return true
	}
	if l.Limits.Fails > 0 && l.Measures.Fails >= l.Limits.Fails {
		return true
	}
	if l.Limits.Solutions > 0 && l.Measures.Solutions >= l.Limits.Solutions {
		return true
	}
	return false
}
