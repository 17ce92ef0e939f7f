// Package milp holds the mixed-integer linear model of the procurement
// problem: a solver-agnostic representation of variables, constraints and the
// cost objective, plus the builders that translate assembled planning
// parameters into it.
package milp

import "math"

// Var is the dense index of a decision variable within a Model.
type Var int

// VarKind distinguishes continuous quantities from 0/1 indicators.
type VarKind int

const (
	Continuous VarKind = iota
	Binary
)

// Sense is the comparison direction of a linear constraint.
type Sense int

const (
	LessEq Sense = iota
	GreaterEq
	Equal
)

// Term is one coefficient-variable product of a linear expression.
type Term struct {
	Var  Var
	Coef float64
}

// Constraint is a linear row: sum(Terms) Sense RHS.
type Constraint struct {
	Name  string
	Terms []Term
	Sense Sense
	RHS   float64
}

// Model is a minimization MILP. All variables are bounded below by zero;
// binaries are additionally bounded above by one.
type Model struct {
	names       []string
	kinds       []VarKind
	objective   []float64
	constraints []Constraint
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{}
}

// AddContinuous registers a non-negative continuous variable.
func (m *Model) AddContinuous(name string) Var {
	return m.addVar(name, Continuous)
}

// AddBinary registers a 0/1 variable.
func (m *Model) AddBinary(name string) Var {
	return m.addVar(name, Binary)
}

func (m *Model) addVar(name string, kind VarKind) Var {
	m.names = append(m.names, name)
	m.kinds = append(m.kinds, kind)
	m.objective = append(m.objective, 0)
	return Var(len(m.names) - 1)
}

// SetCost adds coef to the objective coefficient of v.
func (m *Model) SetCost(v Var, coef float64) {
	m.objective[v] += coef
}

// AddConstraint appends a linear row to the model.
func (m *Model) AddConstraint(name string, terms []Term, sense Sense, rhs float64) {
	m.constraints = append(m.constraints, Constraint{
		Name:  name,
		Terms: terms,
		Sense: sense,
		RHS:   rhs,
	})
}

// NumVars returns the number of registered variables.
func (m *Model) NumVars() int { return len(m.names) }

// NumConstraints returns the number of rows.
func (m *Model) NumConstraints() int { return len(m.constraints) }

// Kind returns the kind of v.
func (m *Model) Kind(v Var) VarKind { return m.kinds[v] }

// Name returns the debug name of v.
func (m *Model) Name(v Var) string { return m.names[v] }

// Objective returns the cost coefficient vector.
func (m *Model) Objective() []float64 { return m.objective }

// Constraints returns the constraint rows.
func (m *Model) Constraints() []Constraint { return m.constraints }

// Binaries returns the indices of all binary variables in registration order.
func (m *Model) Binaries() []Var {
	var out []Var
	for i, k := range m.kinds {
		if k == Binary {
			out = append(out, Var(i))
		}
	}
	return out
}

// ObjectiveValue evaluates the cost of a primal point.
func (m *Model) ObjectiveValue(primals []float64) float64 {
	total := 0.0
	for i, c := range m.objective {
		if c != 0 {
			total += c * primals[i]
		}
	}
	return total
}

// MaxIntegralityGap returns the largest distance of any binary primal from
// {0,1}. Used to reject solutions that drifted beyond the reporting tolerance.
func (m *Model) MaxIntegralityGap(primals []float64) float64 {
	worst := 0.0
	for i, k := range m.kinds {
		if k != Binary {
			continue
		}
		gap := math.Abs(primals[i] - math.Round(primals[i]))
		if gap > worst {
			worst = gap
		}
	}
	return worst
}
