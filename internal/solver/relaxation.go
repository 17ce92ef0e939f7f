package solver

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/beanfleet/coffeeplan/internal/domain/planning/milp"
)

// simplexTol is the pivot tolerance handed to gonum's simplex.
const simplexTol = 1e-10

// relaxation converts a MILP plus a set of branching fixes into the standard
// form min c'x s.t. Ax = b, x >= 0 expected by lp.Simplex. Inequalities gain
// slack columns; free binaries gain an upper-bound row, fixed binaries an
// equality row.
type relaxation struct {
	model    *milp.Model
	binaries []milp.Var
}

// lpResult is the outcome of one relaxation solve.
type lpResult struct {
	feasible  bool
	objective float64
	primals   []float64
}

var errUnbounded = errors.New("relaxation is unbounded")

func newRelaxation(m *milp.Model) *relaxation {
	return &relaxation{model: m, binaries: m.Binaries()}
}

// solve evaluates the LP relaxation under the given binary fixes
// (variable -> 0 or 1). A nil map is the root relaxation.
func (r *relaxation) solve(fixed map[milp.Var]float64) (lpResult, error) {
	n := r.model.NumVars()
	rows := r.model.Constraints()

	// One row per model constraint, plus one bound row per binary.
	numRows := len(rows) + len(r.binaries)
	numSlacks := 0
	for _, c := range rows {
		if c.Sense != milp.Equal {
			numSlacks++
		}
	}
	for _, v := range r.binaries {
		if _, isFixed := fixed[v]; !isFixed {
			numSlacks++ // x <= 1 needs a slack; fixed binaries become equalities
		}
	}

	cols := n + numSlacks
	a := mat.NewDense(numRows, cols, nil)
	b := make([]float64, numRows)
	c := make([]float64, cols)
	copy(c, r.model.Objective())

	slack := n
	row := 0
	for _, cons := range rows {
		for _, term := range cons.Terms {
			a.Set(row, int(term.Var), a.At(row, int(term.Var))+term.Coef)
		}
		b[row] = cons.RHS
		switch cons.Sense {
		case milp.LessEq:
			a.Set(row, slack, 1)
			slack++
		case milp.GreaterEq:
			a.Set(row, slack, -1)
			slack++
		}
		row++
	}

	for _, v := range r.binaries {
		if val, isFixed := fixed[v]; isFixed {
			a.Set(row, int(v), 1)
			b[row] = val
		} else {
			a.Set(row, int(v), 1)
			a.Set(row, slack, 1)
			b[row] = 1
			slack++
		}
		row++
	}

	objective, point, err := lp.Simplex(c, a, b, simplexTol, nil)
	if err != nil {
		if errors.Is(err, lp.ErrInfeasible) {
			return lpResult{feasible: false}, nil
		}
		if errors.Is(err, lp.ErrUnbounded) {
			return lpResult{}, errUnbounded
		}
		return lpResult{}, fmt.Errorf("simplex failed: %w", err)
	}

	primals := make([]float64, n)
	copy(primals, point[:n])
	return lpResult{feasible: true, objective: objective, primals: primals}, nil
}
