package planning

import (
	"fmt"
	"time"
)

// OrderKey addresses one order slot in the (distributor, office, day) grid.
// Day may be negative for historical placements.
type OrderKey struct {
	D int // distributor index
	B int // office index
	T int // placement day
}

// TierKey addresses one tier bucket of an order slot.
type TierKey struct {
	D int
	B int
	T int
	L int // tier index, 0..L
}

// ProblemParameters is the fully assembled, validated input of the MILP
// builders. All per-day arrays are dense and indexed by the planning day;
// sparse data lives only in the maps at the persistence boundary.
type ProblemParameters struct {
	Horizon      int // T
	HorizonStart time.Time

	// Index catalogues mapping dense positions back to entities.
	OfficeIDs      []uint // length B
	DistributorIDs []uint // length D

	Levels int // L, shared across distributors (narrower tariffs are padded)

	Capacity   []float64     // Vmax[b]
	LossRate   []float64     // alpha[b]
	InitialInv []float64     // I0[b]
	Demand     [][]float64   // [b][t]
	PriceBase  [][]float64   // P0[d][t], tier-0 unit price
	PriceTier  [][][]float64 // P[d][t][l-1], unit price of tier l=1..L
	FixedCost  [][]float64   // Cfix[d][b]
	LeadTime   [][]int       // X[d][b]
	SupplyCap  [][]float64   // S[d][t]
	Thresholds []float64     // Q[0..L], Q[0] == 0

	// Historical in-transit orders: kg placed before the horizon that arrive
	// within it. Only entries with T < 0 and T+LeadTime[d][b] in [0, Horizon)
	// are consulted.
	Historical map[OrderKey]float64

	// Correction-mode inputs. PriorBase/PriorTier are the prior plan's order
	// quantities projected back onto the tier grid; CorrectionCost is K[d][b][t]
	// and CorrectionMax is Rmax[d][b][t].
	Correction     bool
	PriorBase      map[OrderKey]float64
	PriorTier      map[TierKey]float64
	PriorOrderIDs  map[OrderKey]uint // order row behind each prior slot
	CorrectionCost [][][]float64
	CorrectionMax  [][][]float64
}

// Offices returns B.
func (p *ProblemParameters) Offices() int { return len(p.OfficeIDs) }

// Distributors returns D.
func (p *ProblemParameters) Distributors() int { return len(p.DistributorIDs) }

// BigM is the activation constant linking order quantities to their binary
// indicators: the largest supply cap across all distributors and days.
func (p *ProblemParameters) BigM() float64 {
	m := 0.0
	for d := range p.SupplyCap {
		for t := range p.SupplyCap[d] {
			if p.SupplyCap[d][t] > m {
				m = p.SupplyCap[d][t]
			}
		}
	}
	return m
}

// HistoricalArrivals sums the in-transit kg arriving at office b on day t.
func (p *ProblemParameters) HistoricalArrivals(b, t int) float64 {
	if len(p.Historical) == 0 {
		return 0
	}
	total := 0.0
	for key, kg := range p.Historical {
		if key.B != b || key.T >= 0 {
			continue
		}
		if key.T+p.LeadTime[key.D][key.B] == t {
			total += kg
		}
	}
	return total
}

// Validate enforces every structural invariant of the parameter set. It
// returns an InvalidInputError naming the first offending field.
func (p *ProblemParameters) Validate() error {
	T, B, D, L := p.Horizon, p.Offices(), p.Distributors(), p.Levels

	if T < 1 || T > 30 {
		return NewInvalidInputError("planning_horizon_days", "must be within 1..30")
	}
	if B == 0 {
		return NewInvalidInputError("office_id", "at least one office is required")
	}
	if D == 0 {
		return NewInvalidInputError("distributor_id", "at least one distributor is required")
	}

	if len(p.Capacity) != B || len(p.LossRate) != B || len(p.InitialInv) != B {
		return NewInvalidInputError("offices", "per-office parameter arrays must match the office set")
	}
	for b := 0; b < B; b++ {
		if p.Capacity[b] <= 0 {
			return NewInvalidInputError("storage_capacity_kg", "must be positive")
		}
		if p.LossRate[b] < 0 || p.LossRate[b] > 1 {
			return NewInvalidInputError("daily_loss_fraction", "must be within [0, 1]")
		}
		if p.InitialInv[b] < 0 {
			return NewInvalidInputError("initial_inventory_kg", "must be non-negative")
		}
	}

	if len(p.Demand) != B {
		return NewInvalidInputError("demand", "must cover every office")
	}
	for b := 0; b < B; b++ {
		if len(p.Demand[b]) != T {
			return NewInvalidInputError("demand", fmt.Sprintf("office %d must have %d daily entries", p.OfficeIDs[b], T))
		}
		for _, v := range p.Demand[b] {
			if v < 0 {
				return NewInvalidInputError("demand", "must be non-negative")
			}
		}
	}

	if len(p.Thresholds) != L+1 {
		return NewInvalidInputError("tier_thresholds", fmt.Sprintf("must have %d entries", L+1))
	}
	if p.Thresholds[0] != 0 {
		return NewInvalidInputError("tier_thresholds", "first threshold must be 0")
	}
	for l := 1; l <= L; l++ {
		if p.Thresholds[l] <= p.Thresholds[l-1] {
			return NewInvalidInputError("tier_thresholds", "must be strictly increasing")
		}
	}

	if len(p.PriceBase) != D || len(p.PriceTier) != D || len(p.FixedCost) != D ||
		len(p.LeadTime) != D || len(p.SupplyCap) != D {
		return NewInvalidInputError("distributors", "per-distributor parameter arrays must match the distributor set")
	}
	for d := 0; d < D; d++ {
		if len(p.PriceBase[d]) != T {
			return NewInvalidInputError("purchase_costs_pln_per_kg_daily", fmt.Sprintf("must have %d elements", T))
		}
		for _, v := range p.PriceBase[d] {
			if v < 0 {
				return NewInvalidInputError("purchase_costs_pln_per_kg_daily", "must be non-negative")
			}
		}
		if len(p.PriceTier[d]) != T {
			return NewInvalidInputError("tier_prices", fmt.Sprintf("must have %d daily rows", T))
		}
		for t := 0; t < T; t++ {
			if len(p.PriceTier[d][t]) != L {
				return NewInvalidInputError("tier_prices", fmt.Sprintf("must define %d tier prices", L))
			}
			for _, v := range p.PriceTier[d][t] {
				if v < 0 {
					return NewInvalidInputError("tier_prices", "must be non-negative")
				}
			}
		}
		if len(p.FixedCost[d]) != B || len(p.LeadTime[d]) != B {
			return NewInvalidInputError("routes", "every distributor must define cost and lead time per office")
		}
		for b := 0; b < B; b++ {
			if p.FixedCost[d][b] < 0 {
				return NewInvalidInputError("transport_cost_pln", "must be non-negative")
			}
			if p.LeadTime[d][b] < 0 {
				return NewInvalidInputError("lead_time_days", "must be non-negative")
			}
		}
		if len(p.SupplyCap[d]) != T {
			return NewInvalidInputError("supply_caps", fmt.Sprintf("must have %d elements", T))
		}
		for _, v := range p.SupplyCap[d] {
			if v < 0 {
				return NewInvalidInputError("supply_caps", "must be non-negative")
			}
		}
	}

	if p.Correction {
		if len(p.CorrectionCost) != D || len(p.CorrectionMax) != D {
			return NewInvalidInputError("correction", "cost and cap arrays must match the distributor set")
		}
		for d := 0; d < D; d++ {
			if len(p.CorrectionCost[d]) != B || len(p.CorrectionMax[d]) != B {
				return NewInvalidInputError("correction", "cost and cap arrays must cover every office")
			}
			for b := 0; b < B; b++ {
				if len(p.CorrectionCost[d][b]) != T || len(p.CorrectionMax[d][b]) != T {
					return NewInvalidInputError("correction", fmt.Sprintf("cost and cap arrays must have %d elements", T))
				}
				for t := 0; t < T; t++ {
					if p.CorrectionCost[d][b][t] < 0 {
						return NewInvalidInputError("correction_cost_pln_per_kg", "must be non-negative")
					}
					if p.CorrectionMax[d][b][t] < 0 {
						return NewInvalidInputError("max_correction_kg", "must be non-negative")
					}
				}
			}
		}
	}

	for key, kg := range p.Historical {
		if key.T >= 0 {
			return NewInvalidInputError("historical_orders", "placement day must be negative")
		}
		if kg < 0 {
			return NewInvalidInputError("historical_orders", "quantity must be non-negative")
		}
		if key.D < 0 || key.D >= D || key.B < 0 || key.B >= B {
			return NewInvalidInputError("historical_orders", "references an unknown distributor or office")
		}
	}

	return nil
}
