package flint

import (
	"fmt"
	"time"
)

// Status is the outcome of a search.
type Status int8

const (
	// Unknown: the search was stopped by a limit before reaching a
	// conclusion.
	Unknown Status = iota
	// Satisfied: at least one solution was found.
	Satisfied
	// Unsatisfiable: the search space was exhausted without a solution.
	Unsatisfiable
)

func (s Status) String() string {
	switch s {
	case Satisfied:
		return "satisfied"
	case Unsatisfiable:
		return "unsatisfiable"
	}
	return "unknown"
}

// Measures aggregates search statistics. The search loop is the only writer;
// monitors and the periodic logger read it concurrently, which is acceptable
// for approximate progress reporting.
type Measures struct {
	Solutions int64
	Fails     int64
	Nodes     int64
	Best      int

	start time.Time
}

// Start stamps the beginning of the search.
func (m *Measures) Start() { m.start = time.Now() }

// Elapsed returns the wall-clock time since Start.
func (m *Measures) Elapsed() time.Duration {
	if m.start.IsZero() {
		return 0
	}
	return time.Since(m.start)
}

// OneLine renders the measures in the compact form used by the periodic
// logger and the benchmark result sink.
func (m *Measures) OneLine() string {
	return fmt.Sprintf("%d solutions, %d fails, %d nodes, %dms",
		m.Solutions, m.Fails, m.Nodes, m.Elapsed().Milliseconds())
}

// Monitor observes the search loop. Implementations must not mutate solver
// state; they are notified synchronously from the loop.
type Monitor interface {
	AfterRootPropagation(m *Measures)
	OnSolution(m *Measures)
	OnContradiction(m *Measures)
}

// NopMonitor is a Monitor with empty callbacks, meant for embedding so that
// implementations only override what they observe.
type NopMonitor struct{}

func (NopMonitor) AfterRootPropagation(*Measures) {}
func (NopMonitor) OnSolution(*Measures)           {}
func (NopMonitor) OnContradiction(*Measures)      {}
