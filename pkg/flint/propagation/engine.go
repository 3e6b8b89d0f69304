// Package propagation implements the event-driven fixpoint engine. Dirty
// propagators are held in per-priority FIFO queues; the engine repeatedly
// runs the cheapest dirty propagator until nothing remains dirty or a
// contradiction aborts the pass.
package propagation

import (
	"fmt"

	"github.com/xs2maverick/flint/pkg/flint"
)

type state int8

const (
	idle state = iota
	propagating
)

// entry is the engine-side bookkeeping of one registered propagator.
type entry struct {
	p         flint.Propagator
	scheduled bool
	coarse    bool
	fine      []flint.Event // pending event mask per scope position
}

// Engine schedules and executes propagators to quiescence.
type Engine struct {
	state   state
	entries map[flint.Propagator]*entry
	order   []*entry // registration order, for deterministic scheduling
	queues  [flint.NumPriorities][]*entry
}

var _ flint.EventSink = (*Engine)(nil)

// New creates an empty engine.
func New() *Engine {
	return &Engine{entries: make(map[flint.Propagator]*entry)}
}

// Register subscribes a propagator to its scope and schedules it for an
// initial full pass. Called once per propagator when its constraint is
// posted; posting while a fixpoint is running is a configuration error.
func (e *Engine) Register(p flint.Propagator) error {
	if e.Active() {
		return fmt.Errorf("%w: propagator %s posted during propagation", flint.ErrConfiguration, p)
	}
	if _, ok := e.entries[p]; ok {
		return fmt.Errorf("%w: propagator %s posted twice", flint.ErrConfiguration, p)
	}
	scope := p.Scope()
	ent := &entry{p: p, fine: make([]flint.Event, len(scope))}
	e.entries[p] = ent
	e.order = append(e.order, ent)
	for i, v := range scope {
		v.Subscribe(p, i, p.Conditions(i))
	}
	ent.coarse = true
	e.enqueue(ent)
	return nil
}

// ScheduleEvent implements flint.EventSink: a variable reports a domain
// change relevant to p's subscription.
func (e *Engine) ScheduleEvent(p flint.Propagator, idx int, evt flint.Event, _ flint.Cause) {
	ent, ok := e.entries[p]
	if !ok {
		return
	}
	if p.Incremental() {
		ent.fine[idx] |= evt
	} else {
		ent.coarse = true
	}
	e.enqueue(ent)
}

// ScheduleFull marks p dirty for a full pass.
func (e *Engine) ScheduleFull(p flint.Propagator) {
	ent, ok := e.entries[p]
	if !ok {
		return
	}
	ent.coarse = true
	e.enqueue(ent)
}

func (e *Engine) enqueue(ent *entry) {
	if ent.scheduled {
		return
	}
	ent.scheduled = true
	pr := ent.p.Priority()
	e.queues[pr] = append(e.queues[pr], ent)
}

// Propagate runs the fixpoint: while any propagator is dirty, pop the front
// of the cheapest non-empty priority queue and run its pending work. Events
// raised during a run schedule further propagators, including the running
// one if its own scope changed. On contradiction the pass is aborted
// immediately, the dirty set is cleared, and the failure is returned to the
// search loop; domains are left as mutated, only the caller's rollback
// restores them.
func (e *Engine) Propagate() error {
	e.state = propagating
	defer func() { e.state = idle }()

	for {
		ent := e.pop()
		if ent == nil {
			return nil
		}
		if err := e.run(ent); err != nil {
			e.Flush()
			return err
		}
	}
}

func (e *Engine) pop() *entry {
	for pr := 0; pr < flint.NumPriorities; pr++ {
		q := e.queues[pr]
		if len(q) == 0 {
			continue
		}
		ent := q[0]
		e.queues[pr] = q[1:]
		return ent
	}
	return nil
}

func (e *Engine) run(ent *entry) error {
	// Clear the dirty markers before running so that changes to the
	// propagator's own scope made during the run reschedule it.
	ent.scheduled = false
	coarse := ent.coarse
	ent.coarse = false

	if coarse {
		for i := range ent.fine {
			ent.fine[i] = 0
		}
		return ent.p.Propagate()
	}
	for i := range ent.fine {
		evt := ent.fine[i]
		if evt == 0 {
			continue
		}
		ent.fine[i] = 0
		if err := ent.p.PropagateOn(i, evt); err != nil {
			return err
		}
	}
	return nil
}

// Flush drops all pending work. Used after a contradiction; the search
// loop's rollback restores the domains, so nothing remains to propagate.
func (e *Engine) Flush() {
	for pr := range e.queues {
		for _, ent := range e.queues[pr] {
			ent.scheduled = false
			ent.coarse = false
			for i := range ent.fine {
				ent.fine[i] = 0
			}
		}
		e.queues[pr] = e.queues[pr][:0]
	}
}

// ScheduleAll marks every registered propagator dirty for a full pass.
// Used for root propagation and after search restarts.
func (e *Engine) ScheduleAll() {
	for _, ent := range e.order {
		ent.coarse = true
		e.enqueue(ent)
	}
}

// Active reports whether a fixpoint is currently running.
func (e *Engine) Active() bool { return e.state == propagating }
