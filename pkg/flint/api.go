package flint

// Event is a bitmask describing how a variable's domain changed. Propagators
// subscribe to the events they care about via Conditions; the propagation
// engine only wakes a propagator for events in its subscription mask.
type Event uint32

const (
	// IncLow: the lower bound of an integer variable increased.
	IncLow Event = 1 << iota
	// DecUpp: the upper bound of an integer variable decreased.
	DecUpp
	// Remove: an interior value was removed from an enumerated domain.
	Remove
	// Instantiate: a variable became fixed to a single value.
	Instantiate
	// EnforceNode: a node moved into the kernel of a graph variable.
	EnforceNode
	// RemoveNode: a node was removed from the envelope of a graph variable.
	RemoveNode
	// EnforceArc: an arc moved into the kernel of a graph variable.
	EnforceArc
	// RemoveArc: an arc was removed from the envelope of a graph variable.
	RemoveArc
)

// Bound groups the bound-tightening events of an integer variable.
const Bound = IncLow | DecUpp

// IntAll is the full event mask of an integer variable.
const IntAll = IncLow | DecUpp | Remove | Instantiate

// GraphAll is the full event mask of a graph variable.
const GraphAll = EnforceNode | RemoveNode | EnforceArc | RemoveArc

// Cause identifies the origin of a domain mutation: the propagator or
// decision that performed it. Variables use it to skip waking the mutator on
// its own events, and contradictions carry it for diagnostics.
type Cause interface {
	String() string
}

type noCause struct{}

func (noCause) String() string { return "none" }

// NoCause is used for mutations performed outside of propagation and search,
// typically while building the model.
var NoCause Cause = noCause{}

// Entailment is the three-valued status of a constraint or propagator.
type Entailment int8

const (
	// Undefined: satisfiability still depends on uninstantiated variables.
	Undefined Entailment = iota
	// True: the relation holds for every remaining domain value.
	True
	// False: no completion of the current domains can satisfy the relation.
	False
)

func (e Entailment) String() string {
	switch e {
	case True:
		return "true"
	case False:
		return "false"
	}
	return "undefined"
}

// Priority is the scheduling class of a propagator. Cheaper classes are
// drained first so that cheap propagators get the chance to fail fast before
// expensive ones run.
type Priority int8

const (
	Unary Priority = iota
	Binary
	Ternary
	Linear
	Quadratic
	Heavy

	NumPriorities = int(Heavy) + 1
)

// Variable is the capability every solver variable exposes to the engine,
// independent of its kind. Scalar and graph specific operations live on the
// concrete types in pkg/flint/variable.
type Variable interface {
	ID() int
	Name() string
	Instantiated() bool
	// Subscribe registers a propagator against this variable. idx is the
	// position of the variable in the propagator's scope and mask the set of
	// events the propagator reacts to.
	Subscribe(p Propagator, idx int, mask Event)
}

// Propagator is a filtering routine over a fixed scope of variables.
//
// Propagate performs a full filtering pass and must be idempotent: running it
// again on the resulting domains may not change anything. PropagateOn reacts
// to a single variable's change and is only invoked for events declared by
// Conditions on propagators whose Incremental reports true; others always
// receive a full Propagate pass. Propagators may only narrow variables in
// their own scope and must cite themselves as cause.
type Propagator interface {
	Cause
	Scope() []Variable
	Priority() Priority
	Conditions(idx int) Event
	Incremental() bool
	Propagate() error
	PropagateOn(idx int, evt Event) error
	Entailed() Entailment
}

// Constraint is a named group of propagators jointly encoding one logical
// relation. It is posted once into a solver session.
type Constraint struct {
	Name  string
	Props []Propagator
}

// NewConstraint groups propagators under a name.
func NewConstraint(name string, props ...Propagator) *Constraint {
	return &Constraint{Name: name, Props: props}
}

// Entailed reports the conjunction of the propagators' entailment statuses.
func (c *Constraint) Entailed() Entailment {
	result := True
	for _, p := range c.Props {
		switch p.Entailed() {
		case False:
			return False
		case Undefined:
			result = Undefined
		}
	}
	return result
}

func (c *Constraint) String() string { return c.Name }

// EventSink receives fine-grained wake-up requests from variables. The
// propagation engine is the only implementation; variables hold it so that
// domain mutations can schedule dependent propagators without the variable
// package depending on the engine.
type EventSink interface {
	ScheduleEvent(p Propagator, idx int, evt Event, cause Cause)
}
