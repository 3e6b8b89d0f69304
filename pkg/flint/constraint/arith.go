package constraint

import (
	"fmt"

	"github.com/xs2maverick/flint/pkg/flint"
	"github.com/xs2maverick/flint/pkg/flint/variable"
)

// SumXY filters x + y = c with bound consistency, plus hole propagation on
// enumerated domains.
type SumXY struct {
	base
	x, y *variable.IntVar
	c    int
}

var _ flint.Propagator = (*SumXY)(nil)

// NewSumXY posts x + y = c.
func NewSumXY(x, y *variable.IntVar, c int) *SumXY {
	return &SumXY{
		base: base{
			name:  fmt.Sprintf("%s+%s=%d", x.Name(), y.Name(), c),
			scope: []flint.Variable{x, y},
			prio:  flint.Binary,
		},
		x: x, y: y, c: c,
	}
}

func (p *SumXY) Conditions(int) flint.Event { return flint.IntAll }
func (p *SumXY) Incremental() bool { return true }

func (p *SumXY) Propagate() error {
	if _, err := p.x.UpdateLowerBound(p.c-p.y.UB(), p); err != nil {
		return err
	}
	if _, err := p.x.UpdateUpperBound(p.c-p.y.LB(), p); err != nil {
		return err
	}
	if _, err := p.y.UpdateLowerBound(p.c-p.x.UB(), p); err != nil {
		return err
	}
	if _, err := p.y.UpdateUpperBound(p.c-p.x.LB(), p); err != nil {
		return err
	}
	if p.x.Enumerated() && p.y.Enumerated() {
		if err := p.pruneHoles(p.x, p.y); err != nil {
			return err
		}
		return p.pruneHoles(p.y, p.x)
	}
	return nil
}

// pruneHoles removes from a the values whose complement is absent from b.
func (p *SumXY) pruneHoles(a, b *variable.IntVar) error {
	for v, ok := a.LB(), true; ok; v, ok = a.NextValue(v) {
		if !b.Contains(p.c - v) {
			if _, err := a.RemoveValue(v, p); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *SumXY) PropagateOn(idx int, evt flint.Event) error {
	this, other := p.x, p.y
	if idx == 1 {
		this, other = p.y, p.x
	}
	if evt&flint.Instantiate != 0 {
		_, err := other.InstantiateTo(p.c-this.Value(), p)
		return err
	}
	if evt&flint.IncLow != 0 {
		if _, err := other.UpdateUpperBound(p.c-this.LB(), p); err != nil {
			return err
		}
	}
	if evt&flint.DecUpp != 0 {
		if _, err := other.UpdateLowerBound(p.c-this.UB(), p); err != nil {
			return err
		}
	}
	if evt&flint.Remove != 0 {
		return this.ForEachRemoved(p, func(v int) error {
			_, err := other.RemoveValue(p.c-v, p)
			return err
		})
	}
	return nil
}

func (p *SumXY) Entailed() flint.Entailment {
	if p.x.LB()+p.y.LB() > p.c || p.x.UB()+p.y.UB() < p.c {
		return flint.False
	}
	if p.x.Instantiated() && p.y.Instantiated() {
		return flint.True
	}
	return flint.Undefined
}

// DiffLeq filters x - y <= c.
type DiffLeq struct {
	base
	x, y *variable.IntVar
	c    int
}

var _ flint.Propagator = (*DiffLeq)(nil)

// NewDiffLeq posts x - y <= c.
func NewDiffLeq(x, y *variable.IntVar, c int) *DiffLeq {
	return &DiffLeq{
		base: base{
			name:  fmt.Sprintf("%s-%s<=%d", x.Name(), y.Name(), c),
			scope: []flint.Variable{x, y},
			prio:  flint.Binary,
		},
		x: x, y: y, c: c,
	}
}

func (p *DiffLeq) Conditions(idx int) flint.Event {
	if idx == 0 {
		return flint.IncLow | flint.Instantiate
	}
	return flint.DecUpp | flint.Instantiate
}

func (p *DiffLeq) Incremental() bool { return true }

func (p *DiffLeq) Propagate() error {
	if _, err := p.x.UpdateUpperBound(p.y.UB()+p.c, p); err != nil {
		return err
	}
	_, err := p.y.UpdateLowerBound(p.x.LB()-p.c, p)
	return err
}

func (p *DiffLeq) PropagateOn(int, flint.Event) error {
	return p.Propagate()
}

func (p *DiffLeq) Entailed() flint.Entailment {
	if p.x.UB()-p.y.LB() <= p.c {
		return flint.True
	}
	if p.x.LB()-p.y.UB() > p.c {
		return flint.False
	}
	return flint.Undefined
}

// NotEqual filters x != y + c. It only acts on instantiation.
type NotEqual struct {
	base
	x, y *variable.IntVar
	c    int
}

var _ flint.Propagator = (*NotEqual)(nil)

// NewNotEqual posts x != y + c.
func NewNotEqual(x, y *variable.IntVar, c int) *NotEqual {
	return &NotEqual{
		base: base{
			name:  fmt.Sprintf("%s!=%s+%d", x.Name(), y.Name(), c),
			scope: []flint.Variable{x, y},
			prio:  flint.Binary,
		},
		x: x, y: y, c: c,
	}
}

func (p *NotEqual) Conditions(int) flint.Event { return flint.Instantiate }
func (p *NotEqual) Incremental() bool { return true }

func (p *NotEqual) Propagate() error {
	if p.x.Instantiated() {
		if _, err := p.y.RemoveValue(p.x.Value()-p.c, p); err != nil {
			return err
		}
	}
	if p.y.Instantiated() {
		if _, err := p.x.RemoveValue(p.y.Value()+p.c, p); err != nil {
			return err
		}
	}
	return nil
}

func (p *NotEqual) PropagateOn(int, flint.Event) error {
	return p.Propagate()
}

func (p *NotEqual) Entailed() flint.Entailment {
	if p.x.UB() < p.y.LB()+p.c || p.x.LB() > p.y.UB()+p.c {
		return flint.True
	}
	if p.x.Instantiated() && p.y.Instantiated() {
		if p.x.Value() == p.y.Value()+p.c {
			return flint.False
		}
		return flint.True
	}
	return flint.Undefined
}
