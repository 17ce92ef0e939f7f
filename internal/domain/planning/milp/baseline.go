package milp

import (
	"fmt"

	"github.com/beanfleet/coffeeplan/internal/domain/planning"
)

// BaselineModel is the single-office, single-supplier, untiered formulation
// kept as a fast path for the legacy endpoint. Orders arrive the same day.
type BaselineModel struct {
	Model *Model

	Order []Var // x[t], kg ordered on day t
	Inv   []Var // I[t], end-of-day inventory
	Place []Var // y[t], order-placed indicator
}

// BuildBaseline constructs the baseline MILP from parameters restricted to
// one office and one distributor with zero lead time and no tiers.
func BuildBaseline(p *planning.ProblemParameters) *BaselineModel {
	T := p.Horizon
	m := NewModel()
	bm := &BaselineModel{
		Model: m,
		Order: make([]Var, T),
		Inv:   make([]Var, T),
		Place: make([]Var, T),
	}

	capacity := p.Capacity[0]
	alpha := p.LossRate[0]

	for t := 0; t < T; t++ {
		bm.Order[t] = m.AddContinuous(fmt.Sprintf("x_t%d", t))
		bm.Inv[t] = m.AddContinuous(fmt.Sprintf("inv_t%d", t))
		bm.Place[t] = m.AddBinary(fmt.Sprintf("y_t%d", t))

		m.SetCost(bm.Order[t], p.PriceBase[0][t])
		m.SetCost(bm.Place[t], p.FixedCost[0][0])
	}

	for t := 0; t < T; t++ {
		// Inventory identity: I[t] = (1-alpha)*I[t-1] + x[t] - D[t].
		terms := []Term{
			{Var: bm.Inv[t], Coef: 1},
			{Var: bm.Order[t], Coef: -1},
		}
		rhs := -p.Demand[0][t]
		if t == 0 {
			rhs += (1 - alpha) * p.InitialInv[0]
		} else {
			terms = append(terms, Term{Var: bm.Inv[t-1], Coef: -(1 - alpha)})
		}
		m.AddConstraint(fmt.Sprintf("inventory_day_%d", t), terms, Equal, rhs)

		m.AddConstraint(fmt.Sprintf("capacity_day_%d", t),
			[]Term{{Var: bm.Inv[t], Coef: 1}}, LessEq, capacity)

		// x[t] <= M*y[t] with M = Vmax, as in the legacy model.
		m.AddConstraint(fmt.Sprintf("link_order_transport_%d", t),
			[]Term{
				{Var: bm.Order[t], Coef: 1},
				{Var: bm.Place[t], Coef: -capacity},
			}, LessEq, 0)
	}

	return bm
}
