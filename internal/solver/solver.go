// Package solver drives the MILP engine: it relaxes the model to linear
// programs solved with gonum's simplex, searches the binary space with a
// deterministic branch-and-bound, and maps the outcome onto the planner's
// typed statuses.
package solver

import (
	"context"
	"time"

	"github.com/beanfleet/coffeeplan/internal/domain/planning/milp"
)

// Status is the engine-level outcome of a solve.
type Status int

const (
	// StatusOptimal means an integer-feasible solution within the MIP gap.
	StatusOptimal Status = iota
	// StatusInfeasible means the instance was proven infeasible.
	StatusInfeasible
	// StatusTimedOut means the budget expired with no incumbent, or the
	// caller cancelled the solve before it completed.
	StatusTimedOut
	// StatusError covers engine failures and non-integral binaries.
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "Optimal"
	case StatusInfeasible:
		return "Infeasible"
	case StatusTimedOut:
		return "TimedOut"
	default:
		return "SolverError"
	}
}

// Options configures a single solve. Zero values fall back to the defaults.
type Options struct {
	// TimeLimit is the wall-clock budget for the solve call (default 30s).
	TimeLimit time.Duration

	// MIPGap is the relative optimality gap at which the search stops
	// (default 1e-4).
	MIPGap float64

	// IntTol is the maximum distance of a binary primal from {0,1} before
	// the solution is rejected as non-integral (default 1e-6).
	IntTol float64
}

func (o Options) withDefaults() Options {
	if o.TimeLimit <= 0 {
		o.TimeLimit = 30 * time.Second
	}
	if o.MIPGap <= 0 {
		o.MIPGap = 1e-4
	}
	if o.IntTol <= 0 {
		o.IntTol = 1e-6
	}
	return o
}

// Outcome is the result of one solve call. Primals are present iff Status is
// StatusOptimal; binary primals are rounded to exact 0/1.
type Outcome struct {
	Status      Status
	Objective   float64
	Primals     []float64
	Gap         float64 // relative gap of the returned incumbent
	GapExceeded bool    // true when the budget expired before reaching MIPGap
	SolveTime   time.Duration
	Reason      string // populated for StatusError
}

// Solve runs branch-and-bound on the model. The wall time is measured around
// the search only; model construction is the caller's concern. Cancelling ctx
// stops the search and yields StatusTimedOut, incumbent or not; only an
// expired time budget lets an incumbent through as Optimal with GapExceeded.
func Solve(ctx context.Context, m *milp.Model, opts Options) Outcome {
	opts = opts.withDefaults()

	start := time.Now()
	outcome := branchAndBound(ctx, m, opts)
	outcome.SolveTime = time.Since(start)
	return outcome
}
