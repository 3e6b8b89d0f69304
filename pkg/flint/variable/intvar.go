package variable

import (
	"fmt"

	"github.com/xs2maverick/flint/pkg/flint"
	"github.com/xs2maverick/flint/pkg/flint/trail"
)

// IntVar is a finite-domain integer variable. A bounded IntVar keeps only its
// interval [lb, ub]; an enumerated IntVar additionally keeps an explicit
// value bitset, so interior removals are representable. Bounded variables
// silently ignore interior RemoveValue calls, as interval domains cannot
// represent holes.
type IntVar struct {
	hooks
	id   int
	name string

	lb, ub *trail.Int
	values *trail.Bitset // nil on bounded variables
	offset int           // domain value of bit 0
}

var _ flint.Variable = (*IntVar)(nil)

// NewInt creates a bounded integer variable with domain [lb, ub].
func NewInt(t *trail.Trail, sink flint.EventSink, id int, name string, lb, ub int) *IntVar {
	if lb > ub {
		panic(fmt.Sprintf("variable %s: empty initial domain [%d,%d]", name, lb, ub))
	}
	return &IntVar{
		hooks: hooks{trail: t, sink: sink},
		id:    id,
		name:  name,
		lb:    t.NewInt(lb),
		ub:    t.NewInt(ub),
	}
}

// NewEnum creates an enumerated integer variable over the given values.
func NewEnum(t *trail.Trail, sink flint.EventSink, id int, name string, values []int) *IntVar {
	if len(values) == 0 {
		panic(fmt.Sprintf("variable %s: empty initial domain", name))
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	bs := t.NewBitset(uint(hi - lo + 1))
	for _, v := range values {
		bs.InitSet(uint(v - lo))
	}
	return &IntVar{
		hooks:  hooks{trail: t, sink: sink},
		id:     id,
		name:   name,
		lb:     t.NewInt(lo),
		ub:     t.NewInt(hi),
		values: bs,
		offset: lo,
	}
}

func (v *IntVar) ID() int { return v.id }
func (v *IntVar) Name() string { return v.name }

func (v *IntVar) String() string {
	if v.Instantiated() {
		return fmt.Sprintf("%s=%d", v.name, v.lb.Get())
	}
	return fmt.Sprintf("%s=[%d,%d]", v.name, v.lb.Get(), v.ub.Get())
}

// Subscribe implements flint.Variable.
func (v *IntVar) Subscribe(p flint.Propagator, idx int, mask flint.Event) {
	v.subscribe(p, idx, mask)
}

func (v *IntVar) LB() int { return v.lb.Get() }
func (v *IntVar) UB() int { return v.ub.Get() }

// Value returns the instantiated value. Only valid once Instantiated reports
// true.
func (v *IntVar) Value() int {
	if !v.Instantiated() {
		panic(fmt.Sprintf("variable %s: Value on uninstantiated domain", v.name))
	}
	return v.lb.Get()
}

func (v *IntVar) Instantiated() bool { return v.lb.Get() == v.ub.Get() }

// Enumerated reports whether the domain can represent holes.
func (v *IntVar) Enumerated() bool { return v.values != nil }

// Contains reports whether value x is currently admissible.
func (v *IntVar) Contains(x int) bool {
	if x < v.lb.Get() || x > v.ub.Get() {
		return false
	}
	if v.values == nil {
		return true
	}
	return v.values.Test(uint(x - v.offset))
}

// DomainSize returns the number of admissible values.
func (v *IntVar) DomainSize() int {
	if v.values == nil {
		return v.ub.Get() - v.lb.Get() + 1
	}
	return v.values.Count()
}

// NextValue returns the smallest admissible value strictly greater than x,
// or ok=false if none remains.
func (v *IntVar) NextValue(x int) (int, bool) {
	if x < v.lb.Get() {
		return v.lb.Get(), true
	}
	if x >= v.ub.Get() {
		return 0, false
	}
	if v.values == nil {
		return x + 1, true
	}
	i, ok := v.values.NextSet(uint(x - v.offset + 1))
	if !ok {
		return 0, false
	}
	return int(i) + v.offset, true
}

// UpdateLowerBound raises the lower bound to at least x. Reports whether the
// domain changed; fails if the domain would become empty.
func (v *IntVar) UpdateLowerBound(x int, cause flint.Cause) (bool, error) {
	if x <= v.lb.Get() {
		return false, nil
	}
	if x > v.ub.Get() {
		return false, flint.Contradict(cause, v, fmt.Sprintf("lower bound %d above upper bound %d", x, v.ub.Get()))
	}
	if v.values != nil {
		i, ok := v.values.NextSet(uint(x - v.offset))
		if !ok {
			return false, flint.Contradict(cause, v, fmt.Sprintf("no admissible value at or above %d", x))
		}
		x = int(i) + v.offset
		for u := v.lb.Get(); u < x; u++ {
			v.values.Clear(uint(u - v.offset))
		}
	}
	v.lb.Set(x)
	evt := flint.IncLow
	if v.lb.Get() == v.ub.Get() {
		evt |= flint.Instantiate
	}
	v.notify(evt, cause, x, 0)
	return true, nil
}

// UpdateUpperBound lowers the upper bound to at most x. Reports whether the
// domain changed; fails if the domain would become empty.
func (v *IntVar) UpdateUpperBound(x int, cause flint.Cause) (bool, error) {
	if x >= v.ub.Get() {
		return false, nil
	}
	if x < v.lb.Get() {
		return false, flint.Contradict(cause, v, fmt.Sprintf("upper bound %d below lower bound %d", x, v.lb.Get()))
	}
	if v.values != nil {
		for !v.values.Test(uint(x - v.offset)) {
			x--
			if x < v.lb.Get() {
				return false, flint.Contradict(cause, v, "no admissible value below requested upper bound")
			}
		}
		for u := v.ub.Get(); u > x; u-- {
			v.values.Clear(uint(u - v.offset))
		}
	}
	v.ub.Set(x)
	evt := flint.DecUpp
	if v.lb.Get() == v.ub.Get() {
		evt |= flint.Instantiate
	}
	v.notify(evt, cause, x, 0)
	return true, nil
}

// RemoveValue removes x from the domain. Removing one of the bounds shifts
// that bound; removing the only remaining value fails. On bounded domains an
// interior removal is a no-op.
func (v *IntVar) RemoveValue(x int, cause flint.Cause) (bool, error) {
	lb, ub := v.lb.Get(), v.ub.Get()
	if x < lb || x > ub {
		return false, nil
	}
	if lb == ub {
		return false, flint.Contradict(cause, v, fmt.Sprintf("removing last value %d", x))
	}
	if v.values == nil {
		switch x {
		case lb:
			return v.UpdateLowerBound(x+1, cause)
		case ub:
			return v.UpdateUpperBound(x-1, cause)
		}
		return false, nil
	}
	if !v.values.Test(uint(x - v.offset)) {
		return false, nil
	}
	if x == lb {
		return v.UpdateLowerBound(x+1, cause)
	}
	if x == ub {
		return v.UpdateUpperBound(x-1, cause)
	}
	v.values.Clear(uint(x - v.offset))
	v.notify(flint.Remove, cause, x, 0)
	return true, nil
}

// InstantiateTo fixes the variable to x, failing if x is not admissible.
func (v *IntVar) InstantiateTo(x int, cause flint.Cause) (bool, error) {
	if !v.Contains(x) {
		return false, flint.Contradict(cause, v, fmt.Sprintf("value %d not admissible", x))
	}
	if v.Instantiated() {
		return false, nil
	}
	evt := flint.Instantiate
	if x > v.lb.Get() {
		evt |= flint.IncLow
	}
	if x < v.ub.Get() {
		evt |= flint.DecUpp
	}
	if v.values != nil {
		for u := v.lb.Get(); u <= v.ub.Get(); u++ {
			if u != x {
				v.values.Clear(uint(u - v.offset))
			}
		}
	}
	v.lb.Set(x)
	v.ub.Set(x)
	v.notify(evt, cause, x, 0)
	return true, nil
}

// ForEachRemoved hands p the values removed from the domain since its last
// read, skipping removals p caused itself. Only meaningful on enumerated
// domains subscribed with the Remove event.
func (v *IntVar) ForEachRemoved(p flint.Propagator, f func(x int) error) error {
	q := v.queueFor(p)
	if q == nil {
		return nil
	}
	return q.consume(p, func(d Delta) error {
		if d.Evt&flint.Remove == 0 {
			return nil
		}
		return f(d.From)
	})
}
