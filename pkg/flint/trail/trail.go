// Package trail implements the reversible store backing all backtrackable
// solver state. Every mutation of a reversible primitive pushes an undo
// record; rolling back to a previously taken mark undoes the records above it
// in reverse chronological order. The store is the single owner of
// backtrackable state: a rollback restores every primitive created against it
// bit for bit.
package trail

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// Mark is an opaque snapshot of the trail. Rollback targets a mark exactly;
// rolling back past a mark that was already popped is a programming error.
type Mark int

type record struct {
	i   *Int
	old int

	b   *Bitset
	bit uint
	set bool
}

// Trail records undo information for reversible primitives.
type Trail struct {
	records []record
}

// New creates an empty trail.
func New() *Trail {
	return &Trail{}
}

// Mark snapshots the current trail depth.
func (t *Trail) Mark() Mark {
	return Mark(len(t.records))
}

// Rollback undoes every mutation recorded since m, most recent first, and
// discards the records. Panics if m lies beyond the current depth: that means
// the caller kept a mark across a rollback that already popped it.
func (t *Trail) Rollback(m Mark) {
	if int(m) > len(t.records) {
		panic(fmt.Sprintf("trail: rollback to mark %d beyond depth %d", m, len(t.records)))
	}
	for i := len(t.records) - 1; i >= int(m); i-- {
		r := t.records[i]
		if r.i != nil {
			r.i.v = r.old
			continue
		}
		if r.set {
			r.b.b.Set(r.bit)
		} else {
			r.b.b.Clear(r.bit)
		}
	}
	t.records = t.records[:m]
}

// Depth returns the number of undo records currently held.
func (t *Trail) Depth() int {
	return len(t.records)
}

// Int is a reversible integer.
type Int struct {
	t *Trail
	v int
}

// NewInt creates a reversible integer with an initial value. The initial
// value is not trailed: rollback never crosses a primitive's creation.
func (t *Trail) NewInt(v int) *Int {
	return &Int{t: t, v: v}
}

// Get returns the current value.
func (i *Int) Get() int { return i.v }

// Set records the old value and applies the new one. Setting the current
// value records nothing.
func (i *Int) Set(v int) {
	if v == i.v {
		return
	}
	i.t.records = append(i.t.records, record{i: i, old: i.v})
	i.v = v
}

// Add shifts the value by delta.
func (i *Int) Add(delta int) {
	i.Set(i.v + delta)
}

// Bitset is a reversible fixed-capacity bitset.
type Bitset struct {
	t *Trail
	b *bitset.BitSet
}

// NewBitset creates a reversible bitset of n bits, all clear.
func (t *Trail) NewBitset(n uint) *Bitset {
	return &Bitset{t: t, b: bitset.New(n)}
}

// InitSet sets a bit without trailing it. Only valid while building the
// model, before the first mark that could be rolled back over.
func (b *Bitset) InitSet(i uint) {
	b.b.Set(i)
}

// Set turns bit i on, trailing the change.
func (b *Bitset) Set(i uint) {
	if b.b.Test(i) {
		return
	}
	b.t.records = append(b.t.records, record{b: b, bit: i, set: false})
	b.b.Set(i)
}

// Clear turns bit i off, trailing the change.
func (b *Bitset) Clear(i uint) {
	if !b.b.Test(i) {
		return
	}
	b.t.records = append(b.t.records, record{b: b, bit: i, set: true})
	b.b.Clear(i)
}

// Test reports whether bit i is set.
func (b *Bitset) Test(i uint) bool { return b.b.Test(i) }

// Count returns the number of set bits.
func (b *Bitset) Count() int { return int(b.b.Count()) }

// NextSet returns the first set bit at or after i.
func (b *Bitset) NextSet(i uint) (uint, bool) { return b.b.NextSet(i) }

// Len returns the capacity in bits.
func (b *Bitset) Len() uint { return b.b.Len() }

// Snapshot clones the underlying bits. Used by tests and solution recording.
func (b *Bitset) Snapshot() *bitset.BitSet { return b.b.Clone() }

// Each calls f for every set bit in ascending order until f returns false.
func (b *Bitset) Each(f func(i uint) bool) {
	for i, ok := b.b.NextSet(0); ok; i, ok = b.b.NextSet(i + 1) {
		if !f(i) {
			return
		}
	}
}
