// Package search implements the backtracking search loop, branching
// strategies and objective-directed (branch-and-bound) optimization.
package search

import (
	"fmt"

	"github.com/xs2maverick/flint/pkg/flint"
	"github.com/xs2maverick/flint/pkg/flint/variable"
)

// Decision is a reversible binary branching point. Apply commits the
// positive branch; Refute commits its negation after the positive branch
// failed. The search loop consumes each direction exactly once.
type Decision interface {
	flint.Cause
	Apply() error
	Refute() error
}

// ArcDecision branches on a graph arc: enforced on the left branch, removed
// from the envelope on the right branch.
type ArcDecision struct {
	G        *variable.GraphVar
	From, To int
}

func (d *ArcDecision) String() string {
	return fmt.Sprintf("arc(%d,%d)", d.From, d.To)
}

func (d *ArcDecision) Apply() error {
	_, err := d.G.EnforceArc(d.From, d.To, d)
	return err
}

func (d *ArcDecision) Refute() error {
	_, err := d.G.RemoveArc(d.From, d.To, d)
	return err
}

// AssignDecision branches on an integer value: assigned on the left branch,
// removed on the right branch.
type AssignDecision struct {
	X *variable.IntVar
	V int
}

func (d *AssignDecision) String() string {
	return fmt.Sprintf("%s=%d", d.X.Name(), d.V)
}

func (d *AssignDecision) Apply() error {
	_, err := d.X.InstantiateTo(d.V, d)
	return err
}

func (d *AssignDecision) Refute() error {
	_, err := d.X.RemoveValue(d.V, d)
	return err
}

// SplitDecision branches on a bound: x <= v on the left branch, x >= v+1 on
// the right branch. The objective driving strategies use it.
type SplitDecision struct {
	X *variable.IntVar
	V int
}

func (d *SplitDecision) String() string {
	return fmt.Sprintf("%s<=%d", d.X.Name(), d.V)
}

func (d *SplitDecision) Apply() error {
	_, err := d.X.UpdateUpperBound(d.V, d)
	return err
}

func (d *SplitDecision) Refute() error {
	_, err := d.X.UpdateLowerBound(d.V+1, d)
	return err
}
