package services

import (
	"sort"

	"github.com/beanfleet/coffeeplan/internal/domain/planning"
	"github.com/beanfleet/coffeeplan/internal/domain/planning/milp"
)

// orderEps is the smallest kilogram amount projected into a plan. Anything
// below it is solver noise around zero.
const orderEps = 1e-6

// PlanProjector translates a solved primal point back into the domain plan:
// order intents, correction records and per-day inventory snapshots.
type PlanProjector struct{}

// NewPlanProjector creates a projector.
func NewPlanProjector() *PlanProjector {
	return &PlanProjector{}
}

// ProjectBaseline maps a baseline solution onto the single-office plan shape.
func (pr *PlanProjector) ProjectBaseline(bm *milp.BaselineModel, p *planning.ProblemParameters, primals []float64) ([]planning.OrderIntent, []planning.InventorySnapshot) {
	T := p.Horizon
	officeID := p.OfficeIDs[0]

	var orders []planning.OrderIntent
	for t := 0; t < T; t++ {
		qty := primals[bm.Order[t]]
		if qty <= orderEps {
			continue
		}
		date := p.HorizonStart.AddDate(0, 0, t)
		orders = append(orders, planning.OrderIntent{
			OfficeID:      officeID,
			DistributorID: p.DistributorIDs[0],
			PlacementDay:  t,
			DeliveryDay:   t,
			OrderDate:     date,
			DeliveryDate:  date,
			QtyKg:         qty,
			Tier:          0,
			UnitPrice:     p.PriceBase[0][t],
			TransportCost: p.FixedCost[0][0],
			TotalCost:     qty*p.PriceBase[0][t] + p.FixedCost[0][0],
		})
	}

	snapshots := make([]planning.InventorySnapshot, 0, T)
	prev := p.InitialInv[0]
	for t := 0; t < T; t++ {
		level := primals[bm.Inv[t]]
		delivered := primals[bm.Order[t]]
		if delivered < orderEps {
			delivered = 0
		}
		snapshots = append(snapshots, planning.InventorySnapshot{
			OfficeID:           officeID,
			Day:                t,
			Date:               p.HorizonStart.AddDate(0, 0, t),
			Level:              level,
			DemandFulfilled:    p.Demand[0][t],
			Loss:               p.LossRate[0] * prev,
			DeliveriesReceived: delivered,
			IsProjected:        true,
		})
		prev = level
	}
	return orders, snapshots
}

// ProjectAdvanced maps an advanced solution onto order intents, corrections
// and inventory snapshots. One intent is emitted per active order slot, priced
// at the tier the total quantity reached.
func (pr *PlanProjector) ProjectAdvanced(am *milp.AdvancedModel, primals []float64) ([]planning.OrderIntent, []planning.OrderCorrection, []planning.InventorySnapshot) {
	p := am.Params
	T, D, B := p.Horizon, p.Distributors(), p.Offices()

	var orders []planning.OrderIntent
	var corrections []planning.OrderCorrection
	for t := 0; t < T; t++ {
		for d := 0; d < D; d++ {
			for b := 0; b < B; b++ {
				qty := am.TotalOrdered(primals, d, b, t)
				if qty > orderEps {
					orders = append(orders, pr.orderIntent(am, primals, d, b, t, qty))
				}
				if p.Correction {
					corrections = append(corrections, pr.slotCorrections(am, primals, d, b, t)...)
				}
			}
		}
	}

	snapshots := pr.inventorySnapshots(am, primals)
	sortOrders(orders)
	sortCorrections(corrections)
	return orders, corrections, snapshots
}

func (pr *PlanProjector) orderIntent(am *milp.AdvancedModel, primals []float64, d, b, t int, qty float64) planning.OrderIntent {
	p := am.Params
	tier := am.AchievedTier(primals, d, b, t)
	unitPrice := p.PriceBase[d][t]
	if tier > 0 {
		unitPrice = p.PriceTier[d][t][tier-1]
	}
	delivery := t + p.LeadTime[d][b]
	return planning.OrderIntent{
		OfficeID:      p.OfficeIDs[b],
		DistributorID: p.DistributorIDs[d],
		PlacementDay:  t,
		DeliveryDay:   delivery,
		OrderDate:     p.HorizonStart.AddDate(0, 0, t),
		DeliveryDate:  p.HorizonStart.AddDate(0, 0, delivery),
		QtyKg:         qty,
		Tier:          tier,
		UnitPrice:     unitPrice,
		TransportCost: p.FixedCost[d][b],
		TotalCost:     qty*unitPrice + p.FixedCost[d][b],
	}
}

// slotCorrections emits one record per tier bucket whose increase or decrease
// variable moved, tier 0 covering the below-threshold bucket.
func (pr *PlanProjector) slotCorrections(am *milp.AdvancedModel, primals []float64, d, b, t int) []planning.OrderCorrection {
	p := am.Params
	k := p.CorrectionCost[d][b][t]
	priorID := p.PriorOrderIDs[planning.OrderKey{D: d, B: b, T: t}]

	var out []planning.OrderCorrection
	emit := func(tier int, inc, dec float64) {
		if inc <= orderEps && dec <= orderEps {
			return
		}
		if inc < 0 {
			inc = 0
		}
		if dec < 0 {
			dec = 0
		}
		out = append(out, planning.OrderCorrection{
			OfficeID:      p.OfficeIDs[b],
			DistributorID: p.DistributorIDs[d],
			PlacementDay:  t,
			Tier:          tier,
			PriorOrderID:  priorID,
			IncreaseKg:    inc,
			DecreaseKg:    dec,
			Cost:          k * (inc + dec),
		})
	}

	emit(0, primals[am.IncBase[d][b][t]], primals[am.DecBase[d][b][t]])
	for l := 1; l <= p.Levels; l++ {
		emit(l, primals[am.IncTier[d][b][t][l-1]], primals[am.DecTier[d][b][t][l-1]])
	}
	return out
}

func (pr *PlanProjector) inventorySnapshots(am *milp.AdvancedModel, primals []float64) []planning.InventorySnapshot {
	p := am.Params
	T, D, B := p.Horizon, p.Distributors(), p.Offices()

	snapshots := make([]planning.InventorySnapshot, 0, B*T)
	for b := 0; b < B; b++ {
		prev := p.InitialInv[b]
		for t := 0; t < T; t++ {
			delivered := p.HistoricalArrivals(b, t)
			for d := 0; d < D; d++ {
				for tau := 0; tau < T; tau++ {
					if tau+p.LeadTime[d][b] == t {
						delivered += am.TotalOrdered(primals, d, b, tau)
					}
				}
			}
			level := primals[am.Inv[b][t]]
			snapshots = append(snapshots, planning.InventorySnapshot{
				OfficeID:           p.OfficeIDs[b],
				Day:                t,
				Date:               p.HorizonStart.AddDate(0, 0, t),
				Level:              level,
				DemandFulfilled:    p.Demand[b][t],
				Loss:               p.LossRate[b] * prev,
				DeliveriesReceived: delivered,
				IsProjected:        true,
			})
			prev = level
		}
	}
	return snapshots
}

func sortOrders(orders []planning.OrderIntent) {
	sort.SliceStable(orders, func(i, j int) bool {
		a, b := orders[i], orders[j]
		if a.PlacementDay != b.PlacementDay {
			return a.PlacementDay < b.PlacementDay
		}
		if a.DistributorID != b.DistributorID {
			return a.DistributorID < b.DistributorID
		}
		return a.OfficeID < b.OfficeID
	})
}

func sortCorrections(corrections []planning.OrderCorrection) {
	sort.SliceStable(corrections, func(i, j int) bool {
		a, b := corrections[i], corrections[j]
		if a.PlacementDay != b.PlacementDay {
			return a.PlacementDay < b.PlacementDay
		}
		if a.DistributorID != b.DistributorID {
			return a.DistributorID < b.DistributorID
		}
		if a.OfficeID != b.OfficeID {
			return a.OfficeID < b.OfficeID
		}
		return a.Tier < b.Tier
	})
}
