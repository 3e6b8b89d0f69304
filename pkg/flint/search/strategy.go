package search

import (
	"github.com/xs2maverick/flint/pkg/flint"
	"github.com/xs2maverick/flint/pkg/flint/variable"
)

// Strategy produces the next branching decision at an open search node, or
// nil when it has nothing left to decide over its variables.
type Strategy interface {
	Init() error
	Decide() Decision
}

// InputOrderMinValue branches on the first uninstantiated variable in input
// order, assigning its smallest admissible value first.
type InputOrderMinValue struct {
	Vars []*variable.IntVar
}

func (s *InputOrderMinValue) Init() error { return nil }

func (s *InputOrderMinValue) Decide() Decision {
	for _, x := range s.Vars {
		if !x.Instantiated() {
			return &AssignDecision{X: x, V: x.LB()}
		}
	}
	return nil
}

// Sequence tries each strategy in order and returns the first decision
// produced. A later strategy only decides once every earlier one is
// exhausted.
type Sequence struct {
	Strategies []Strategy
}

func (s *Sequence) Init() error {
	for _, st := range s.Strategies {
		if err := st.Init(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sequence) Decide() Decision {
	for _, st := range s.Strategies {
		if d := st.Decide(); d != nil {
			return d
		}
	}
	return nil
}

// PhaseSwitch delegates to First until a solution has been found, then
// permanently to Then: find a feasible assignment fast, then optimize.
type PhaseSwitch struct {
	Measures *flint.Measures
	First    Strategy
	Then     Strategy
}

func (s *PhaseSwitch) Init() error {
	if err := s.First.Init(); err != nil {
		return err
	}
	return s.Then.Init()
}

func (s *PhaseSwitch) Decide() Decision {
	if s.Measures.Solutions == 0 {
		return s.First.Decide()
	}
	return s.Then.Decide()
}
