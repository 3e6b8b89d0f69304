package propagation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xs2maverick/flint/pkg/flint"
	"github.com/xs2maverick/flint/pkg/flint/trail"
	"github.com/xs2maverick/flint/pkg/flint/variable"
)

// funcProp adapts closures to the propagator contract for engine tests.
type funcProp struct {
	name        string
	scope       []flint.Variable
	priority    flint.Priority
	incremental bool
	propagate   func() error
	propagateOn func(idx int, evt flint.Event) error
}

func (p *funcProp) String() string { return p.name }
func (p *funcProp) Scope() []flint.Variable { return p.scope }
func (p *funcProp) Priority() flint.Priority { return p.priority }
func (p *funcProp) Conditions(int) flint.Event { return flint.IntAll }
func (p *funcProp) Incremental() bool { return p.incremental }
func (p *funcProp) Entailed() flint.Entailment { return flint.Undefined }

func (p *funcProp) Propagate() error {
	if p.propagate == nil {
		return nil
	}
	return p.propagate()
}

func (p *funcProp) PropagateOn(idx int, evt flint.Event) error {
	if p.propagateOn == nil {
		return nil
	}
	return p.propagateOn(idx, evt)
}

func TestInitialCoarsePass(t *testing.T) {
	e := New()
	tr := trail.New()
	x := variable.NewInt(tr, e, 0, "x", 0, 10)

	runs := 0
	p := &funcProp{name: "p", scope: []flint.Variable{x}, propagate: func() error {
		runs++
		return nil
	}}
	require.NoError(t, e.Register(p))
	require.NoError(t, e.Propagate())
	assert.Equal(t, 1, runs)

	// fixpoint idempotence: nothing dirty, nothing runs
	require.NoError(t, e.Propagate())
	assert.Equal(t, 1, runs)
}

func TestPriorityOrderAndFIFO(t *testing.T) {
	e := New()
	var order []string
	mk := func(name string, pr flint.Priority) *funcProp {
		return &funcProp{name: name, priority: pr, propagate: func() error {
			order = append(order, name)
			return nil
		}}
	}
	require.NoError(t, e.Register(mk("heavy", flint.Heavy)))
	require.NoError(t, e.Register(mk("unary1", flint.Unary)))
	require.NoError(t, e.Register(mk("binary", flint.Binary)))
	require.NoError(t, e.Register(mk("unary2", flint.Unary)))

	require.NoError(t, e.Propagate())
	assert.Equal(t, []string{"unary1", "unary2", "binary", "heavy"}, order)
}

func TestEventWakesSubscriber(t *testing.T) {
	e := New()
	tr := trail.New()
	x := variable.NewInt(tr, e, 0, "x", 0, 10)

	var woken []flint.Event
	watcher := &funcProp{name: "watcher", scope: []flint.Variable{x}, incremental: true,
		propagateOn: func(idx int, evt flint.Event) error {
			woken = append(woken, evt)
			return nil
		}}
	mutator := &funcProp{name: "mutator", scope: []flint.Variable{x}}
	mutator.propagate = func() error {
		_, err := x.UpdateLowerBound(5, mutator)
		return err
	}
	require.NoError(t, e.Register(watcher))
	require.NoError(t, e.Register(mutator))

	require.NoError(t, e.Propagate())
	// watcher ran its initial coarse pass, then woke once on IncLow
	require.Len(t, woken, 1)
	assert.NotZero(t, woken[0]&flint.IncLow)
}

func TestContradictionAbortsAndFlushes(t *testing.T) {
	e := New()
	tr := trail.New()
	x := variable.NewInt(tr, e, 0, "x", 0, 10)

	ran := false
	failing := &funcProp{name: "failing", priority: flint.Unary, scope: []flint.Variable{x}}
	failing.propagate = func() error {
		return flint.Contradict(failing, x, "forced failure")
	}
	bystander := &funcProp{name: "bystander", priority: flint.Binary, scope: []flint.Variable{x},
		propagate: func() error {
			ran = true
			return nil
		}}
	require.NoError(t, e.Register(failing))
	require.NoError(t, e.Register(bystander))

	err := e.Propagate()
	require.Error(t, err)
	assert.True(t, flint.IsContradiction(err))
	assert.False(t, ran, "remaining dirty propagators must not run after a failure")

	// the dirty set was cleared: a fresh pass has nothing to do
	require.NoError(t, e.Propagate())
	assert.False(t, ran)
}

func TestSelfChangeReschedules(t *testing.T) {
	e := New()
	tr := trail.New()
	x := variable.NewInt(tr, e, 0, "x", 0, 3)
	y := variable.NewInt(tr, e, 1, "y", 0, 3)

	// lifts x's lower bound to y's, one step at a time, and is woken again
	// through y by the second propagator
	var follow *funcProp
	follow = &funcProp{name: "follow", scope: []flint.Variable{x, y}}
	follow.propagate = func() error {
		_, err := x.UpdateLowerBound(y.LB(), follow)
		return err
	}
	var push *funcProp
	push = &funcProp{name: "push", scope: []flint.Variable{y}}
	push.propagate = func() error {
		_, err := y.UpdateLowerBound(2, push)
		return err
	}
	require.NoError(t, e.Register(follow))
	require.NoError(t, e.Register(push))

	require.NoError(t, e.Propagate())
	assert.Equal(t, 2, y.LB())
	assert.Equal(t, 2, x.LB(), "follow must have been rescheduled after push raised y")
}

func TestRegisterRejectedDuringFixpoint(t *testing.T) {
	e := New()
	tr := trail.New()
	x := variable.NewInt(tr, e, 0, "x", 0, 10)

	late := &funcProp{name: "late", scope: []flint.Variable{x}}
	var sawActive bool
	var lateErr error
	p := &funcProp{name: "p", scope: []flint.Variable{x}}
	p.propagate = func() error {
		sawActive = e.Active()
		lateErr = e.Register(late)
		return nil
	}
	require.NoError(t, e.Register(p))

	assert.False(t, e.Active())
	require.NoError(t, e.Propagate())
	assert.False(t, e.Active())

	assert.True(t, sawActive, "the fixpoint must report itself as running")
	require.Error(t, lateErr)
	assert.ErrorIs(t, lateErr, flint.ErrConfiguration)
}

func TestScheduleAllAfterRollback(t *testing.T) {
	e := New()
	tr := trail.New()
	x := variable.NewInt(tr, e, 0, "x", 0, 10)

	runs := 0
	p := &funcProp{name: "p", scope: []flint.Variable{x}, propagate: func() error {
		runs++
		return nil
	}}
	require.NoError(t, e.Register(p))
	require.NoError(t, e.Propagate())
	require.Equal(t, 1, runs)

	e.ScheduleAll()
	require.NoError(t, e.Propagate())
	assert.Equal(t, 2, runs)
}
