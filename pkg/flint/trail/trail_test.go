package trail

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntRollback(t *testing.T) {
	tr := New()
	x := tr.NewInt(3)

	m := tr.Mark()
	x.Set(7)
	x.Set(11)
	assert.Equal(t, 11, x.Get())

	tr.Rollback(m)
	assert.Equal(t, 3, x.Get())
	assert.Equal(t, 0, tr.Depth())
}

func TestSetSameValueRecordsNothing(t *testing.T) {
	tr := New()
	x := tr.NewInt(5)
	x.Set(5)
	assert.Equal(t, 0, tr.Depth())
}

func TestNestedMarks(t *testing.T) {
	tr := New()
	x := tr.NewInt(0)
	y := tr.NewInt(100)

	m1 := tr.Mark()
	x.Set(1)
	m2 := tr.Mark()
	y.Set(99)
	x.Set(2)

	tr.Rollback(m2)
	assert.Equal(t, 1, x.Get())
	assert.Equal(t, 100, y.Get())

	tr.Rollback(m1)
	assert.Equal(t, 0, x.Get())
	assert.Equal(t, 100, y.Get())
}

func TestRollbackPastPoppedMarkPanics(t *testing.T) {
	tr := New()
	x := tr.NewInt(0)

	m1 := tr.Mark()
	x.Set(1)
	m2 := tr.Mark()
	_ = m2
	x.Set(2)
	tr.Rollback(m1)

	require.Panics(t, func() { tr.Rollback(m2) })
}

func TestBitsetRoundTrip(t *testing.T) {
	tr := New()
	b := tr.NewBitset(64)
	for i := uint(0); i < 64; i += 2 {
		b.InitSet(i)
	}
	before := b.Snapshot()

	m := tr.Mark()
	b.Clear(0)
	b.Clear(2)
	b.Set(1)
	b.Set(1) // second set records nothing
	require.Equal(t, 31, b.Count())

	tr.Rollback(m)
	if diff := cmp.Diff(before.String(), b.Snapshot().String()); diff != "" {
		t.Errorf("bitset not restored (-before +after):\n%s", diff)
	}
}

func TestBitsetEachStopsEarly(t *testing.T) {
	tr := New()
	b := tr.NewBitset(16)
	b.InitSet(1)
	b.InitSet(4)
	b.InitSet(9)

	var seen []uint
	b.Each(func(i uint) bool {
		seen = append(seen, i)
		return len(seen) < 2
	})
	assert.Equal(t, []uint{1, 4}, seen)
}
