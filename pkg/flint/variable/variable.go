// Package variable provides the solver's variable kinds: bounded and
// enumerated integer variables and undirected graph variables with an
// envelope/kernel pair. All mutable state lives in reversible primitives so
// that a trail rollback restores any variable exactly.
package variable

import (
	"github.com/xs2maverick/flint/pkg/flint"
	"github.com/xs2maverick/flint/pkg/flint/trail"
)

// Delta is one fine-grained domain change: a removed value for an integer
// variable (From holds the value) or a changed arc/node for a graph variable.
type Delta struct {
	Evt   flint.Event
	From  int
	To    int
	Cause flint.Cause
}

// deltaMask selects the events worth recording per-element deltas for.
const deltaMask = flint.Remove | flint.EnforceNode | flint.RemoveNode |
	flint.EnforceArc | flint.RemoveArc

// deltaQueue is a per-subscription log of fine-grained changes. Its write
// size and read cursor are reversible: backtracking rewinds the queue to
// exactly the state it had when the mark was taken, and stale tail entries
// are overwritten by later appends.
type deltaQueue struct {
	entries []Delta
	size    *trail.Int
	read    *trail.Int
}

func newDeltaQueue(t *trail.Trail) *deltaQueue {
	return &deltaQueue{size: t.NewInt(0), read: t.NewInt(0)}
}

func (q *deltaQueue) push(d Delta) {
	i := q.size.Get()
	if i < len(q.entries) {
		q.entries[i] = d
	} else {
		q.entries = append(q.entries, d)
	}
	q.size.Set(i + 1)
}

// consume hands every unread entry to f, skipping entries the reader caused
// itself, and advances the read cursor. It stops on the first error, leaving
// the remaining entries unread.
func (q *deltaQueue) consume(self flint.Cause, f func(d Delta) error) error {
	end := q.size.Get()
	for i := q.read.Get(); i < end; i++ {
		q.read.Set(i + 1)
		d := q.entries[i]
		if d.Cause == self {
			continue
		}
		if err := f(d); err != nil {
			return err
		}
	}
	return nil
}

// link is one propagator subscription on a variable.
type link struct {
	p     flint.Propagator
	idx   int
	mask  flint.Event
	delta *deltaQueue
}

// hooks holds the subscription list and event sink shared by all variable
// kinds.
type hooks struct {
	trail *trail.Trail
	sink  flint.EventSink
	links []link
}

func (h *hooks) subscribe(p flint.Propagator, idx int, mask flint.Event) {
	ln := link{p: p, idx: idx, mask: mask}
	if p.Incremental() && mask&deltaMask != 0 {
		ln.delta = newDeltaQueue(h.trail)
	}
	h.links = append(h.links, ln)
}

// notify wakes every subscribed propagator whose mask intersects evt, except
// the cause itself, and records per-element deltas for incremental
// subscribers.
func (h *hooks) notify(evt flint.Event, cause flint.Cause, from, to int) {
	for i := range h.links {
		ln := &h.links[i]
		if ln.mask&evt == 0 {
			continue
		}
		if ln.delta != nil && evt&deltaMask != 0 {
			ln.delta.push(Delta{Evt: evt & deltaMask, From: from, To: to, Cause: cause})
		}
		if ln.p != cause {
			h.sink.ScheduleEvent(ln.p, ln.idx, evt&ln.mask, cause)
		}
	}
}

func (h *hooks) queueFor(p flint.Propagator) *deltaQueue {
	for i := range h.links {
		if h.links[i].p == p {
			return h.links[i].delta
		}
	}
	return nil
}
