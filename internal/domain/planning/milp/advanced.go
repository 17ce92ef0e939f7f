package milp

import (
	"fmt"

	"github.com/beanfleet/coffeeplan/internal/domain/planning"
)

// AdvancedModel is the multi-distributor, multi-office formulation with
// volume tiers, lead times and optional order correction. Variable registries
// are dense arrays indexed [d][b][t] (and [l-1] for tier buckets).
type AdvancedModel struct {
	Model  *Model
	Params *planning.ProblemParameters

	OrderBase [][][]Var   // x0[d][b][t], kg at tier 0
	OrderTier [][][][]Var // x[d][b][t][l-1], incremental kg at tier l
	Inv       [][]Var     // I[b][t]
	Placed    [][][]Var   // yOrder[d][b][t]
	TierHit   [][][][]Var // yThresh[d][b][t][l-1]

	// Correction variables, allocated only when Params.Correction is set.
	IncBase [][][]Var   // r+ for the tier-0 bucket
	DecBase [][][]Var   // r- for the tier-0 bucket
	IncTier [][][][]Var // r+[d][b][t][l-1]
	DecTier [][][][]Var // r-[d][b][t][l-1]
}

// BuildAdvanced constructs the advanced MILP from validated parameters.
func BuildAdvanced(p *planning.ProblemParameters) *AdvancedModel {
	T, D, B, L := p.Horizon, p.Distributors(), p.Offices(), p.Levels
	m := NewModel()
	am := &AdvancedModel{Model: m, Params: p}

	am.allocateVariables(T, D, B, L)
	am.setObjective(T, D, B, L)
	am.addInventoryIdentity(T, D, B, L)
	am.addCapacity(T, B)
	am.addOrderLinking(T, D, B)
	am.addSupplyCaps(T, D, B, L)
	am.addTierStaircase(T, D, B, L)
	if p.Correction {
		am.addCorrectionLinkage(T, D, B, L)
	}

	return am
}

func (am *AdvancedModel) allocateVariables(T, D, B, L int) {
	m := am.Model

	am.OrderBase = make([][][]Var, D)
	am.OrderTier = make([][][][]Var, D)
	am.Placed = make([][][]Var, D)
	am.TierHit = make([][][][]Var, D)
	for d := 0; d < D; d++ {
		am.OrderBase[d] = make([][]Var, B)
		am.OrderTier[d] = make([][][]Var, B)
		am.Placed[d] = make([][]Var, B)
		am.TierHit[d] = make([][][]Var, B)
		for b := 0; b < B; b++ {
			am.OrderBase[d][b] = make([]Var, T)
			am.OrderTier[d][b] = make([][]Var, T)
			am.Placed[d][b] = make([]Var, T)
			am.TierHit[d][b] = make([][]Var, T)
			for t := 0; t < T; t++ {
				am.OrderBase[d][b][t] = m.AddContinuous(fmt.Sprintf("x_below_d%d_b%d_t%d", d, b, t))
				am.Placed[d][b][t] = m.AddBinary(fmt.Sprintf("y_order_d%d_b%d_t%d", d, b, t))
				am.OrderTier[d][b][t] = make([]Var, L)
				am.TierHit[d][b][t] = make([]Var, L)
				for l := 1; l <= L; l++ {
					am.OrderTier[d][b][t][l-1] = m.AddContinuous(fmt.Sprintf("x_d%d_b%d_t%d_l%d", d, b, t, l))
					am.TierHit[d][b][t][l-1] = m.AddBinary(fmt.Sprintf("y_thresh_d%d_b%d_t%d_l%d", d, b, t, l))
				}
			}
		}
	}

	am.Inv = make([][]Var, B)
	for b := 0; b < B; b++ {
		am.Inv[b] = make([]Var, T)
		for t := 0; t < T; t++ {
			am.Inv[b][t] = m.AddContinuous(fmt.Sprintf("inv_b%d_t%d", b, t))
		}
	}

	if !am.Params.Correction {
		return
	}
	am.IncBase = make([][][]Var, D)
	am.DecBase = make([][][]Var, D)
	am.IncTier = make([][][][]Var, D)
	am.DecTier = make([][][][]Var, D)
	for d := 0; d < D; d++ {
		am.IncBase[d] = make([][]Var, B)
		am.DecBase[d] = make([][]Var, B)
		am.IncTier[d] = make([][][]Var, B)
		am.DecTier[d] = make([][][]Var, B)
		for b := 0; b < B; b++ {
			am.IncBase[d][b] = make([]Var, T)
			am.DecBase[d][b] = make([]Var, T)
			am.IncTier[d][b] = make([][]Var, T)
			am.DecTier[d][b] = make([][]Var, T)
			for t := 0; t < T; t++ {
				am.IncBase[d][b][t] = m.AddContinuous(fmt.Sprintf("r_plus_0_d%d_b%d_t%d", d, b, t))
				am.DecBase[d][b][t] = m.AddContinuous(fmt.Sprintf("r_minus_0_d%d_b%d_t%d", d, b, t))
				am.IncTier[d][b][t] = make([]Var, L)
				am.DecTier[d][b][t] = make([]Var, L)
				for l := 1; l <= L; l++ {
					am.IncTier[d][b][t][l-1] = m.AddContinuous(fmt.Sprintf("r_plus_d%d_b%d_t%d_l%d", d, b, t, l))
					am.DecTier[d][b][t][l-1] = m.AddContinuous(fmt.Sprintf("r_minus_d%d_b%d_t%d_l%d", d, b, t, l))
				}
			}
		}
	}
}

// setObjective prices every ordered kilogram at its tier, charges the fixed
// delivery cost per placed order, and prices correction movement at K per kg.
func (am *AdvancedModel) setObjective(T, D, B, L int) {
	m, p := am.Model, am.Params
	for d := 0; d < D; d++ {
		for b := 0; b < B; b++ {
			for t := 0; t < T; t++ {
				m.SetCost(am.OrderBase[d][b][t], p.PriceBase[d][t])
				m.SetCost(am.Placed[d][b][t], p.FixedCost[d][b])
				for l := 1; l <= L; l++ {
					m.SetCost(am.OrderTier[d][b][t][l-1], p.PriceTier[d][t][l-1])
				}
				if p.Correction {
					k := p.CorrectionCost[d][b][t]
					m.SetCost(am.IncBase[d][b][t], k)
					m.SetCost(am.DecBase[d][b][t], k)
					for l := 1; l <= L; l++ {
						m.SetCost(am.IncTier[d][b][t][l-1], k)
						m.SetCost(am.DecTier[d][b][t][l-1], k)
					}
				}
			}
		}
	}
}

// addInventoryIdentity wires I[b,t] = (1-alpha)*prev + arrivals - demand,
// where arrivals collect every in-horizon placement tau with
// tau + X[d][b] == t plus historical in-transit quantities.
func (am *AdvancedModel) addInventoryIdentity(T, D, B, L int) {
	m, p := am.Model, am.Params
	for b := 0; b < B; b++ {
		alpha := p.LossRate[b]
		for t := 0; t < T; t++ {
			terms := []Term{{Var: am.Inv[b][t], Coef: 1}}
			for d := 0; d < D; d++ {
				for tau := 0; tau < T; tau++ {
					if tau+p.LeadTime[d][b] != t {
						continue
					}
					terms = append(terms, Term{Var: am.OrderBase[d][b][tau], Coef: -1})
					for l := 1; l <= L; l++ {
						terms = append(terms, Term{Var: am.OrderTier[d][b][tau][l-1], Coef: -1})
					}
				}
			}

			rhs := p.HistoricalArrivals(b, t) - p.Demand[b][t]
			if t == 0 {
				rhs += (1 - alpha) * p.InitialInv[b]
			} else {
				terms = append(terms, Term{Var: am.Inv[b][t-1], Coef: -(1 - alpha)})
			}
			m.AddConstraint(fmt.Sprintf("inventory_b%d_t%d", b, t), terms, Equal, rhs)
		}
	}
}

func (am *AdvancedModel) addCapacity(T, B int) {
	m, p := am.Model, am.Params
	for b := 0; b < B; b++ {
		for t := 0; t < T; t++ {
			m.AddConstraint(fmt.Sprintf("capacity_b%d_t%d", b, t),
				[]Term{{Var: am.Inv[b][t], Coef: 1}}, LessEq, p.Capacity[b])
		}
	}
}

// addOrderLinking forces the order indicator whenever tier-0 kilograms flow:
// x0 <= S[d][t] * yOrder.
func (am *AdvancedModel) addOrderLinking(T, D, B int) {
	m, p := am.Model, am.Params
	for d := 0; d < D; d++ {
		for b := 0; b < B; b++ {
			for t := 0; t < T; t++ {
				m.AddConstraint(fmt.Sprintf("link_order_d%d_b%d_t%d", d, b, t),
					[]Term{
						{Var: am.OrderBase[d][b][t], Coef: 1},
						{Var: am.Placed[d][b][t], Coef: -p.SupplyCap[d][t]},
					}, LessEq, 0)
			}
		}
	}
}

// addSupplyCaps bounds each distributor's total shipped kilograms per day.
func (am *AdvancedModel) addSupplyCaps(T, D, B, L int) {
	m, p := am.Model, am.Params
	for d := 0; d < D; d++ {
		for t := 0; t < T; t++ {
			var terms []Term
			for b := 0; b < B; b++ {
				terms = append(terms, Term{Var: am.OrderBase[d][b][t], Coef: 1})
				for l := 1; l <= L; l++ {
					terms = append(terms, Term{Var: am.OrderTier[d][b][t][l-1], Coef: 1})
				}
			}
			m.AddConstraint(fmt.Sprintf("supply_d%d_t%d", d, t), terms, LessEq, p.SupplyCap[d][t])
		}
	}
}

// addTierStaircase enforces the volume-tier semantics: each bucket is bounded
// by its bracket width, activations require a placed order, and tier l+1 may
// hold kilograms only once tier l is filled to capacity. The last bucket is
// bounded by the supply-derived big-M.
func (am *AdvancedModel) addTierStaircase(T, D, B, L int) {
	if L == 0 {
		return
	}
	m, p := am.Model, am.Params
	bigM := p.BigM()
	Q := p.Thresholds

	for d := 0; d < D; d++ {
		for b := 0; b < B; b++ {
			for t := 0; t < T; t++ {
				for l := 1; l <= L; l++ {
					m.AddConstraint(fmt.Sprintf("thresh_needs_order_d%d_b%d_t%d_l%d", d, b, t, l),
						[]Term{
							{Var: am.TierHit[d][b][t][l-1], Coef: 1},
							{Var: am.Placed[d][b][t], Coef: -1},
						}, LessEq, 0)
				}

				m.AddConstraint(fmt.Sprintf("base_bracket_d%d_b%d_t%d", d, b, t),
					[]Term{{Var: am.OrderBase[d][b][t], Coef: 1}}, LessEq, Q[1])

				for l := 1; l < L; l++ {
					width := Q[l+1] - Q[l]
					m.AddConstraint(fmt.Sprintf("tier_bracket_d%d_b%d_t%d_l%d", d, b, t, l),
						[]Term{
							{Var: am.OrderTier[d][b][t][l-1], Coef: 1},
							{Var: am.TierHit[d][b][t][l-1], Coef: -width},
						}, LessEq, 0)
				}
				m.AddConstraint(fmt.Sprintf("tier_bracket_d%d_b%d_t%d_l%d", d, b, t, L),
					[]Term{
						{Var: am.OrderTier[d][b][t][L-1], Coef: 1},
						{Var: am.TierHit[d][b][t][L-1], Coef: -bigM},
					}, LessEq, 0)

				// Staircase filling: entering tier l+1 requires tier l full.
				m.AddConstraint(fmt.Sprintf("staircase_d%d_b%d_t%d_l1", d, b, t),
					[]Term{
						{Var: am.OrderBase[d][b][t], Coef: 1},
						{Var: am.TierHit[d][b][t][0], Coef: -Q[1]},
					}, GreaterEq, 0)
				for l := 1; l < L; l++ {
					width := Q[l+1] - Q[l]
					m.AddConstraint(fmt.Sprintf("staircase_d%d_b%d_t%d_l%d", d, b, t, l+1),
						[]Term{
							{Var: am.OrderTier[d][b][t][l-1], Coef: 1},
							{Var: am.TierHit[d][b][t][l], Coef: -width},
						}, GreaterEq, 0)
				}
			}
		}
	}
}

// addCorrectionLinkage ties every tier bucket to the prior plan's committed
// quantity through the priced increase/decrease variables, and caps the total
// movement per order slot at Rmax.
func (am *AdvancedModel) addCorrectionLinkage(T, D, B, L int) {
	m, p := am.Model, am.Params
	for d := 0; d < D; d++ {
		for b := 0; b < B; b++ {
			for t := 0; t < T; t++ {
				key := planning.OrderKey{D: d, B: b, T: t}

				m.AddConstraint(fmt.Sprintf("correction_base_d%d_b%d_t%d", d, b, t),
					[]Term{
						{Var: am.OrderBase[d][b][t], Coef: 1},
						{Var: am.IncBase[d][b][t], Coef: -1},
						{Var: am.DecBase[d][b][t], Coef: 1},
					}, Equal, p.PriorBase[key])

				for l := 1; l <= L; l++ {
					m.AddConstraint(fmt.Sprintf("correction_d%d_b%d_t%d_l%d", d, b, t, l),
						[]Term{
							{Var: am.OrderTier[d][b][t][l-1], Coef: 1},
							{Var: am.IncTier[d][b][t][l-1], Coef: -1},
							{Var: am.DecTier[d][b][t][l-1], Coef: 1},
						}, Equal, p.PriorTier[planning.TierKey{D: d, B: b, T: t, L: l}])
				}

				terms := []Term{
					{Var: am.IncBase[d][b][t], Coef: 1},
					{Var: am.DecBase[d][b][t], Coef: 1},
				}
				for l := 1; l <= L; l++ {
					terms = append(terms,
						Term{Var: am.IncTier[d][b][t][l-1], Coef: 1},
						Term{Var: am.DecTier[d][b][t][l-1], Coef: 1})
				}
				m.AddConstraint(fmt.Sprintf("correction_cap_d%d_b%d_t%d", d, b, t),
					terms, LessEq, p.CorrectionMax[d][b][t])
			}
		}
	}
}

// TotalOrdered evaluates X[d][b][t] = x0 + sum of tier buckets at a primal point.
func (am *AdvancedModel) TotalOrdered(primals []float64, d, b, t int) float64 {
	total := primals[am.OrderBase[d][b][t]]
	for l := range am.OrderTier[d][b][t] {
		total += primals[am.OrderTier[d][b][t][l]]
	}
	return total
}

// AchievedTier returns the highest tier bucket holding kilograms at the
// primal point, or 0 when the order stayed within the base bracket. The
// activation binaries are not consulted: an order landing exactly on a
// threshold may carry a set binary over an empty bucket.
func (am *AdvancedModel) AchievedTier(primals []float64, d, b, t int) int {
	achieved := 0
	for l := 1; l <= am.Params.Levels; l++ {
		if primals[am.OrderTier[d][b][t][l-1]] > 1e-9 {
			achieved = l
		}
	}
	return achieved
}
