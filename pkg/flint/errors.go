package flint

import (
	"errors"
	"fmt"
)

// Contradiction signals that a domain became empty or a propagator proved the
// current node infeasible. It is the expected failure path of propagation:
// the search loop catches it, rolls back, and tries the alternative branch.
// It never escapes a Find* call.
type Contradiction struct {
	Cause Cause
	Var   Variable
	Msg   string
}

func (c *Contradiction) Error() string {
	v := "-"
	if c.Var != nil {
		v = c.Var.Name()
	}
	cause := "-"
	if c.Cause != nil {
		cause = c.Cause.String()
	}
	return fmt.Sprintf("contradiction on %s (cause: %s): %s", v, cause, c.Msg)
}

// Contradict builds the failure returned by domain operations and
// propagators.
func Contradict(cause Cause, v Variable, msg string) error {
	return &Contradiction{Cause: cause, Var: v, Msg: msg}
}

// IsContradiction distinguishes the recoverable propagation failure from
// fatal errors.
func IsContradiction(err error) bool {
	var c *Contradiction
	return errors.As(err, &c)
}

// ErrConfiguration marks fatal misuse of the solver API (posting after
// search started, an objective outside the model, an unreachable bound-table
// entry). It is surfaced to the caller and never converted into a backtrack.
var ErrConfiguration = errors.New("invalid solver configuration")
