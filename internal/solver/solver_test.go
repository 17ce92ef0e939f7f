package solver_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beanfleet/coffeeplan/internal/domain/planning/milp"
	"github.com/beanfleet/coffeeplan/internal/solver"
)

func TestSolve_PureLP(t *testing.T) {
	m := milp.NewModel()
	x := m.AddContinuous("x")
	m.SetCost(x, 1)
	m.AddConstraint("lower", []milp.Term{{Var: x, Coef: 1}}, milp.GreaterEq, 5)

	outcome := solver.Solve(context.Background(), m, solver.Options{})

	require.Equal(t, solver.StatusOptimal, outcome.Status)
	assert.InDelta(t, 5.0, outcome.Objective, 1e-6)
	assert.InDelta(t, 5.0, outcome.Primals[x], 1e-6)
}

func TestSolve_BinaryChoice(t *testing.T) {
	// min 3a + 2b s.t. a + b >= 1: the cheaper indicator wins
	m := milp.NewModel()
	a := m.AddBinary("a")
	b := m.AddBinary("b")
	m.SetCost(a, 3)
	m.SetCost(b, 2)
	m.AddConstraint("cover", []milp.Term{{Var: a, Coef: 1}, {Var: b, Coef: 1}}, milp.GreaterEq, 1)

	outcome := solver.Solve(context.Background(), m, solver.Options{})

	require.Equal(t, solver.StatusOptimal, outcome.Status)
	assert.InDelta(t, 2.0, outcome.Objective, 1e-6)
	assert.Equal(t, 0.0, outcome.Primals[a])
	assert.Equal(t, 1.0, outcome.Primals[b])
}

func TestSolve_FixedChargeActivation(t *testing.T) {
	// min 2x + 10y s.t. x <= 10y, x >= 3: ordering anything pays the charge
	m := milp.NewModel()
	x := m.AddContinuous("x")
	y := m.AddBinary("y")
	m.SetCost(x, 2)
	m.SetCost(y, 10)
	m.AddConstraint("link", []milp.Term{{Var: x, Coef: 1}, {Var: y, Coef: -10}}, milp.LessEq, 0)
	m.AddConstraint("floor", []milp.Term{{Var: x, Coef: 1}}, milp.GreaterEq, 3)

	outcome := solver.Solve(context.Background(), m, solver.Options{})

	require.Equal(t, solver.StatusOptimal, outcome.Status)
	assert.InDelta(t, 16.0, outcome.Objective, 1e-6)
	assert.Equal(t, 1.0, outcome.Primals[y])
	assert.InDelta(t, 3.0, outcome.Primals[x], 1e-6)
}

func TestSolve_CoveringChoosesCheapestSet(t *testing.T) {
	// min 5a + 4b + 3c s.t. 2a + b + c >= 2: a alone beats b plus c
	m := milp.NewModel()
	a := m.AddBinary("a")
	b := m.AddBinary("b")
	c := m.AddBinary("c")
	m.SetCost(a, 5)
	m.SetCost(b, 4)
	m.SetCost(c, 3)
	m.AddConstraint("cover", []milp.Term{
		{Var: a, Coef: 2}, {Var: b, Coef: 1}, {Var: c, Coef: 1},
	}, milp.GreaterEq, 2)

	outcome := solver.Solve(context.Background(), m, solver.Options{})

	require.Equal(t, solver.StatusOptimal, outcome.Status)
	assert.InDelta(t, 5.0, outcome.Objective, 1e-6)
	assert.Equal(t, 1.0, outcome.Primals[a])
}

func TestSolve_Infeasible(t *testing.T) {
	// a binary cannot reach 2
	m := milp.NewModel()
	a := m.AddBinary("a")
	m.SetCost(a, 1)
	m.AddConstraint("impossible", []milp.Term{{Var: a, Coef: 1}}, milp.GreaterEq, 2)

	outcome := solver.Solve(context.Background(), m, solver.Options{})

	assert.Equal(t, solver.StatusInfeasible, outcome.Status)
	assert.Nil(t, outcome.Primals)
}

func TestSolve_CancelledContextTimesOut(t *testing.T) {
	m := milp.NewModel()
	x := m.AddContinuous("x")
	m.SetCost(x, 1)
	m.AddConstraint("lower", []milp.Term{{Var: x, Coef: 1}}, milp.GreaterEq, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome := solver.Solve(ctx, m, solver.Options{})

	assert.Equal(t, solver.StatusTimedOut, outcome.Status)
}

func TestSolve_Deterministic(t *testing.T) {
	build := func() *milp.Model {
		m := milp.NewModel()
		vars := make([]milp.Var, 6)
		costs := []float64{7, 5, 9, 4, 6, 8}
		for i := range vars {
			vars[i] = m.AddBinary("y")
			m.SetCost(vars[i], costs[i])
		}
		m.AddConstraint("cover", []milp.Term{
			{Var: vars[0], Coef: 3}, {Var: vars[1], Coef: 2}, {Var: vars[2], Coef: 4},
			{Var: vars[3], Coef: 1}, {Var: vars[4], Coef: 2}, {Var: vars[5], Coef: 3},
		}, milp.GreaterEq, 5)
		return m
	}

	first := solver.Solve(context.Background(), build(), solver.Options{})
	require.Equal(t, solver.StatusOptimal, first.Status)

	for i := 0; i < 5; i++ {
		again := solver.Solve(context.Background(), build(), solver.Options{})
		require.Equal(t, first.Status, again.Status)
		assert.Equal(t, first.Objective, again.Objective)
		assert.Equal(t, first.Primals, again.Primals)
	}
}

func TestSolve_ReportsSolveTime(t *testing.T) {
	m := milp.NewModel()
	x := m.AddContinuous("x")
	m.SetCost(x, 1)
	m.AddConstraint("lower", []milp.Term{{Var: x, Coef: 1}}, milp.GreaterEq, 1)

	outcome := solver.Solve(context.Background(), m, solver.Options{TimeLimit: time.Second})

	assert.GreaterOrEqual(t, outcome.SolveTime, time.Duration(0))
	assert.Less(t, outcome.SolveTime, time.Second)
}

func TestSolve_BinariesAreExact(t *testing.T) {
	m := milp.NewModel()
	a := m.AddBinary("a")
	m.SetCost(a, -1) // maximizing a: optimum at the upper bound
	m.AddConstraint("noop", []milp.Term{{Var: a, Coef: 1}}, milp.LessEq, 1)

	outcome := solver.Solve(context.Background(), m, solver.Options{})

	require.Equal(t, solver.StatusOptimal, outcome.Status)
	assert.Equal(t, 1.0, outcome.Primals[a])
	assert.InDelta(t, -1.0, outcome.Objective, 1e-9)
}

// lateCancelContext reports cancellation only from the nth Err check onwards,
// so the search can be interrupted at a chosen depth.
type lateCancelContext struct {
	context.Context
	checks int
	after  int
}

func (c *lateCancelContext) Err() error {
	c.checks++
	if c.checks > c.after {
		return context.Canceled
	}
	return nil
}

func TestSolve_MidSearchCancellationDiscardsIncumbent(t *testing.T) {
	// min 2x + y + 10z s.t. x >= 3, x <= 10y + 10z. The root relaxation is
	// fractional in y; the y=0 child branches again on z while the y=1 child
	// is integral at cost 7. Best-bound pops y=0 first, then y=1, so after
	// three iterations an incumbent exists with two nodes still open.
	build := func() *milp.Model {
		m := milp.NewModel()
		x := m.AddContinuous("x")
		y := m.AddBinary("y")
		z := m.AddBinary("z")
		m.SetCost(x, 2)
		m.SetCost(y, 1)
		m.SetCost(z, 10)
		m.AddConstraint("floor", []milp.Term{{Var: x, Coef: 1}}, milp.GreaterEq, 3)
		m.AddConstraint("link", []milp.Term{
			{Var: x, Coef: 1}, {Var: y, Coef: -10}, {Var: z, Coef: -10},
		}, milp.LessEq, 0)
		return m
	}

	full := solver.Solve(context.Background(), build(), solver.Options{})
	require.Equal(t, solver.StatusOptimal, full.Status)
	require.InDelta(t, 7.0, full.Objective, 1e-6)

	ctx := &lateCancelContext{Context: context.Background(), after: 3}
	outcome := solver.Solve(ctx, build(), solver.Options{})

	// an incumbent was in hand, but the caller asked to stop: no Optimal
	assert.Equal(t, solver.StatusTimedOut, outcome.Status)
	assert.Nil(t, outcome.Primals)
}
