package search

import (
	"fmt"

	"github.com/xs2maverick/flint/pkg/flint"
	"github.com/xs2maverick/flint/pkg/flint/variable"
)

// Direction of optimization.
type Direction int8

const (
	Minimize Direction = iota
	Maximize
)

func (d Direction) String() string {
	if d == Maximize {
		return "maximize"
	}
	return "minimize"
}

// ObjectiveManager turns satisfaction search into branch-and-bound. After
// each solution it records the objective value; the search loop asks it to
// re-apply the strengthened bound before every propagation pass, so nodes
// opened before the solution also benefit from the cut. The bound only ever
// tightens.
type ObjectiveManager struct {
	Obj *variable.IntVar
	Dir Direction

	found bool
	best  int
}

func (om *ObjectiveManager) String() string {
	return fmt.Sprintf("objective(%s %s)", om.Dir, om.Obj.Name())
}

// OnSolution records the objective value of the solution just found.
func (om *ObjectiveManager) OnSolution() {
	if om.Obj.Instantiated() {
		om.best = om.Obj.Value()
	} else if om.Dir == Minimize {
		om.best = om.Obj.LB()
	} else {
		om.best = om.Obj.UB()
	}
	om.found = true
}

// Apply enforces the standing cut: the objective must strictly improve on the
// best solution found so far. A no-op until the first solution.
func (om *ObjectiveManager) Apply() error {
	if !om.found {
		return nil
	}
	var err error
	if om.Dir == Minimize {
		_, err = om.Obj.UpdateUpperBound(om.best-1, om)
	} else {
		_, err = om.Obj.UpdateLowerBound(om.best+1, om)
	}
	return err
}

// Found reports whether a solution has been recorded.
func (om *ObjectiveManager) Found() bool { return om.found }

// Best returns the objective value of the best solution found so far. Only
// meaningful once Found reports true.
func (om *ObjectiveManager) Best() int { return om.best }

// BottomUp drives minimization from below: at every node it pins the
// objective to its current lower bound, so the first solution found is
// optimal for the residual problem; refutation lifts the lower bound by one.
type BottomUp struct {
	Obj *variable.IntVar
}

func (s *BottomUp) Init() error {
	if s.Obj == nil {
		return flint.ErrConfiguration
	}
	return nil
}

func (s *BottomUp) Decide() Decision {
	if s.Obj.Instantiated() {
		return nil
	}
	return &SplitDecision{X: s.Obj, V: s.Obj.LB()}
}

// Dichotomic binary-searches the objective: it halves the [lb, ub] range at
// every node, reducing the number of bound improvements to O(log(ub-lb)).
type Dichotomic struct {
	Obj *variable.IntVar
}

func (s *Dichotomic) Init() error {
	if s.Obj == nil {
		return flint.ErrConfiguration
	}
	return nil
}

func (s *Dichotomic) Decide() Decision {
	lb, ub := s.Obj.LB(), s.Obj.UB()
	if lb == ub {
		return nil
	}
	return &SplitDecision{X: s.Obj, V: lb + (ub-lb)/2}
}
