package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/beanfleet/coffeeplan/internal/application/planning/types"
	"github.com/beanfleet/coffeeplan/internal/domain/planning"
)

// System parameter names consumed by the assembler.
const (
	ParamKgPerWorker      = "coffee_per_worker_daily"
	ParamConferenceFactor = "conference_demand_factor"
	ParamCorrectionCost   = "correction_cost_pln_per_kg"
	ParamCorrectionMax    = "max_correction_kg_daily"
)

const dateLayout = "2006-01-02"

// ParameterAssembler turns a validated API request plus catalogue reads into
// the dense ProblemParameters consumed by the MILP builders.
type ParameterAssembler struct {
	offices      planning.OfficeRepository
	distributors planning.DistributorRepository
	plans        planning.PlanRepository
	params       planning.SystemParameterRepository
}

// NewParameterAssembler creates an assembler over the catalogue repositories.
func NewParameterAssembler(
	offices planning.OfficeRepository,
	distributors planning.DistributorRepository,
	plans planning.PlanRepository,
	params planning.SystemParameterRepository,
) *ParameterAssembler {
	return &ParameterAssembler{
		offices:      offices,
		distributors: distributors,
		plans:        plans,
		params:       params,
	}
}

// Assemble produces validated problem parameters together with the domain
// request they answer. All catalogue reads honour ctx.
func (a *ParameterAssembler) Assemble(ctx context.Context, req *types.CreatePlanRequest) (*planning.ProblemParameters, *planning.PlanRequest, error) {
	horizonStart, err := time.Parse(dateLayout, req.PlanningHorizonStart)
	if err != nil {
		return nil, nil, planning.NewInvalidInputError("planning_horizon_start", "must be an ISO-8601 date")
	}

	T := req.PlanningHorizonDays
	if len(req.NumWorkersDaily) != T {
		return nil, nil, planning.NewInvalidInputError("num_workers_daily", fmt.Sprintf("must have %d elements", T))
	}
	if len(req.NumConferencesDaily) != T {
		return nil, nil, planning.NewInvalidInputError("num_conferences_daily", fmt.Sprintf("must have %d elements", T))
	}

	demandCfg, err := a.demandConfig(ctx)
	if err != nil {
		return nil, nil, err
	}

	if req.Advanced() {
		return a.assembleAdvanced(ctx, req, horizonStart, demandCfg)
	}
	return a.assembleBaseline(ctx, req, horizonStart, demandCfg)
}

func (a *ParameterAssembler) demandConfig(ctx context.Context) (planning.DemandConfig, error) {
	cfg := planning.DefaultDemandConfig()
	kg, err := a.params.GetFloat(ctx, ParamKgPerWorker, cfg.KgPerWorker)
	if err != nil {
		return cfg, planning.NewPersistenceError("read system parameters", err)
	}
	factor, err := a.params.GetFloat(ctx, ParamConferenceFactor, cfg.ConferenceFactor)
	if err != nil {
		return cfg, planning.NewPersistenceError("read system parameters", err)
	}
	cfg.KgPerWorker = kg
	cfg.ConferenceFactor = factor
	return cfg, nil
}

// assembleBaseline maps the legacy single-office shape: the tariff is inline,
// the supplier is implicit and delivers the same day.
func (a *ParameterAssembler) assembleBaseline(ctx context.Context, req *types.CreatePlanRequest, horizonStart time.Time, demandCfg planning.DemandConfig) (*planning.ProblemParameters, *planning.PlanRequest, error) {
	T := req.PlanningHorizonDays
	if len(req.PurchaseCostsDaily) != T {
		return nil, nil, planning.NewInvalidInputError("purchase_costs_pln_per_kg_daily", fmt.Sprintf("must have %d elements", T))
	}

	office, err := a.offices.FindByID(ctx, req.OfficeID)
	if err != nil {
		return nil, nil, err
	}

	capacity := office.Capacity
	if req.StorageCapacityKg != nil {
		capacity = *req.StorageCapacityKg
	}
	lossRate := office.LossRate
	if req.DailyLossFraction != nil {
		lossRate = *req.DailyLossFraction
	}

	supply := make([]float64, T)
	tierPrices := make([][]float64, T)
	for t := 0; t < T; t++ {
		supply[t] = capacity // legacy big-M: a single order can refill the warehouse
		tierPrices[t] = nil
	}

	p := &planning.ProblemParameters{
		Horizon:        T,
		HorizonStart:   horizonStart,
		OfficeIDs:      []uint{office.ID},
		DistributorIDs: []uint{0},
		Levels:         0,
		Capacity:       []float64{capacity},
		LossRate:       []float64{lossRate},
		InitialInv:     []float64{req.InitialInventoryKg},
		Demand:         [][]float64{demandCfg.EstimateDailyDemand(req.NumWorkersDaily, req.NumConferencesDaily)},
		PriceBase:      [][]float64{append([]float64(nil), req.PurchaseCostsDaily...)},
		PriceTier:      [][][]float64{tierPrices},
		FixedCost:      [][]float64{{req.TransportCostPLN}},
		LeadTime:       [][]int{{0}},
		SupplyCap:      [][]float64{supply},
		Thresholds:     []float64{0},
	}

	if err := p.Validate(); err != nil {
		return nil, nil, err
	}

	domainReq := &planning.PlanRequest{
		OfficeIDs:        []uint{office.ID},
		HorizonStart:     horizonStart,
		HorizonDays:      T,
		InitialInventory: map[uint]float64{office.ID: req.InitialInventoryKg},
	}
	return p, domainReq, nil
}

// assembleAdvanced sources offices, distributors, tariffs, routes and supply
// caps from the catalogue and, for corrections, projects the prior plan's
// orders back onto the tier grid.
func (a *ParameterAssembler) assembleAdvanced(ctx context.Context, req *types.CreatePlanRequest, horizonStart time.Time, demandCfg planning.DemandConfig) (*planning.ProblemParameters, *planning.PlanRequest, error) {
	T := req.PlanningHorizonDays

	officeIDs := append([]uint(nil), req.Offices()...)
	sort.Slice(officeIDs, func(i, j int) bool { return officeIDs[i] < officeIDs[j] })

	offices, err := a.offices.FindByIDs(ctx, officeIDs)
	if err != nil {
		return nil, nil, err
	}
	if len(offices) != len(officeIDs) {
		return nil, nil, planning.ErrOfficeNotFound
	}

	distributors, err := a.distributors.FindActiveServing(ctx, officeIDs)
	if err != nil {
		return nil, nil, err
	}
	if len(distributors) == 0 {
		return nil, nil, planning.ErrDistributorNotFound
	}

	thresholds, levels, err := alignTariffs(distributors)
	if err != nil {
		return nil, nil, err
	}

	B, D := len(offices), len(distributors)
	p := &planning.ProblemParameters{
		Horizon:        T,
		HorizonStart:   horizonStart,
		OfficeIDs:      officeIDs,
		DistributorIDs: make([]uint, D),
		Levels:         levels,
		Capacity:       make([]float64, B),
		LossRate:       make([]float64, B),
		InitialInv:     make([]float64, B),
		Demand:         make([][]float64, B),
		PriceBase:      make([][]float64, D),
		PriceTier:      make([][][]float64, D),
		FixedCost:      make([][]float64, D),
		LeadTime:       make([][]int, D),
		SupplyCap:      make([][]float64, D),
		Thresholds:     thresholds,
	}

	demand := demandCfg.EstimateDailyDemand(req.NumWorkersDaily, req.NumConferencesDaily)
	for b, office := range offices {
		p.Capacity[b] = office.Capacity
		p.LossRate[b] = office.LossRate
		p.InitialInv[b] = a.initialInventory(req, office.ID)
		p.Demand[b] = demand
	}

	for d, dist := range distributors {
		p.DistributorIDs[d] = dist.ID
		p.PriceBase[d] = make([]float64, T)
		p.PriceTier[d] = make([][]float64, T)
		p.SupplyCap[d] = make([]float64, T)
		for t := 0; t < T; t++ {
			p.PriceBase[d][t] = dist.Tariff.UnitPrice(t, 0)
			p.PriceTier[d][t] = make([]float64, levels)
			for l := 1; l <= levels; l++ {
				tier := l
				if max := dist.Tariff.Levels(); tier > max {
					tier = max // pad narrower tariffs with their top tier price
				}
				p.PriceTier[d][t][l-1] = dist.Tariff.UnitPrice(t, tier)
			}
			p.SupplyCap[d][t] = dist.SupplyCap(t)
		}

		p.FixedCost[d] = make([]float64, B)
		p.LeadTime[d] = make([]int, B)
		for b, office := range offices {
			route := dist.RouteTo(office.ID)
			if route == nil {
				return nil, nil, planning.NewInvalidInputError("office_ids",
					fmt.Sprintf("distributor %d does not serve office %d", dist.ID, office.ID))
			}
			p.FixedCost[d][b] = route.FixedCost
			p.LeadTime[d][b] = route.LeadTime
		}
	}

	domainReq := &planning.PlanRequest{
		OfficeIDs:        officeIDs,
		HorizonStart:     horizonStart,
		HorizonDays:      T,
		InitialInventory: make(map[uint]float64, B),
		IsCorrection:     req.IsCorrectionMode,
		PriorPlanID:      req.PriorPlanID,
	}
	for b, id := range officeIDs {
		domainReq.InitialInventory[id] = p.InitialInv[b]
	}

	if req.IsCorrectionMode {
		if err := a.applyCorrectionInputs(ctx, req, p); err != nil {
			return nil, nil, err
		}
	}

	if err := p.Validate(); err != nil {
		return nil, nil, err
	}
	return p, domainReq, nil
}

func (a *ParameterAssembler) initialInventory(req *types.CreatePlanRequest, officeID uint) float64 {
	if v, ok := req.InitialInventoryBy[officeID]; ok {
		return v
	}
	return req.InitialInventoryKg
}

// alignTariffs resolves the shared threshold ladder: the widest tariff wins
// and every other tariff's thresholds must be a prefix of it.
func alignTariffs(distributors []*planning.Distributor) ([]float64, int, error) {
	var widest []float64
	for _, dist := range distributors {
		if err := dist.Tariff.Validate(); err != nil {
			return nil, 0, err
		}
		if len(dist.Tariff.Thresholds) > len(widest) {
			widest = dist.Tariff.Thresholds
		}
	}
	for _, dist := range distributors {
		for l, q := range dist.Tariff.Thresholds {
			if widest[l] != q {
				return nil, 0, planning.NewInvalidInputError("tier_thresholds",
					fmt.Sprintf("distributor %d thresholds diverge from the shared ladder", dist.ID))
			}
		}
	}
	return append([]float64(nil), widest...), len(widest) - 1, nil
}

// applyCorrectionInputs resolves the prior plan, checks the correction
// preconditions, splits its orders into tier buckets and in-transit
// historical arrivals, and fills the correction pricing arrays.
func (a *ParameterAssembler) applyCorrectionInputs(ctx context.Context, req *types.CreatePlanRequest, p *planning.ProblemParameters) error {
	prior, err := a.plans.FindByID(ctx, req.PriorPlanID)
	if err != nil {
		return planning.NewCorrectionPreconditionError(req.PriorPlanID, "prior plan not found")
	}
	if prior.Status != planning.StatusOptimal {
		return planning.NewCorrectionPreconditionError(req.PriorPlanID, "prior plan has no committed orders")
	}
	if !sameOfficeSet(prior.Request.OfficeIDs, p.OfficeIDs) {
		return planning.NewCorrectionPreconditionError(req.PriorPlanID, "office set differs from the prior plan")
	}
	if prior.Request.HorizonEnd().Before(p.HorizonStart) ||
		p.HorizonStart.AddDate(0, 0, p.Horizon-1).Before(prior.Request.HorizonStart) {
		return planning.NewCorrectionPreconditionError(req.PriorPlanID, "horizons do not overlap")
	}

	orders, err := a.plans.FindPriorOrders(ctx, req.PriorPlanID)
	if err != nil {
		return planning.NewPersistenceError("read prior orders", err)
	}

	p.Correction = true
	p.PriorBase = make(map[planning.OrderKey]float64)
	p.PriorTier = make(map[planning.TierKey]float64)
	p.PriorOrderIDs = make(map[planning.OrderKey]uint)
	p.Historical = make(map[planning.OrderKey]float64)

	distIndex := indexOf(p.DistributorIDs)
	officeIndex := indexOf(p.OfficeIDs)

	for _, order := range orders {
		d, okD := distIndex[order.DistributorID]
		b, okB := officeIndex[order.OfficeID]
		if !okD || !okB {
			return planning.NewCorrectionPreconditionError(req.PriorPlanID,
				fmt.Sprintf("prior order references distributor %d / office %d outside this plan", order.DistributorID, order.OfficeID))
		}

		t := daysBetween(p.HorizonStart, order.OrderDate)
		key := planning.OrderKey{D: d, B: b, T: t}
		switch {
		case t >= 0 && t < p.Horizon:
			base, tiers := splitIntoTiers(order.QtyKg, p.Thresholds)
			p.PriorBase[key] += base
			for l, kg := range tiers {
				if kg > 0 {
					p.PriorTier[planning.TierKey{D: d, B: b, T: t, L: l + 1}] += kg
				}
			}
			p.PriorOrderIDs[key] = order.ID
		case t < 0:
			// Already placed; it arrives as an in-transit quantity if the
			// delivery lands inside the new horizon.
			arrival := t + p.LeadTime[d][b]
			if arrival >= 0 && arrival < p.Horizon {
				p.Historical[key] += order.QtyKg
			}
		}
	}

	cost, err := a.params.GetFloat(ctx, ParamCorrectionCost, 1.0)
	if err != nil {
		return planning.NewPersistenceError("read system parameters", err)
	}
	if req.CorrectionCostPLNPerKg > 0 {
		cost = req.CorrectionCostPLNPerKg
	}
	maxKg, err := a.params.GetFloat(ctx, ParamCorrectionMax, p.BigM())
	if err != nil {
		return planning.NewPersistenceError("read system parameters", err)
	}
	if req.MaxCorrectionKgDaily > 0 {
		maxKg = req.MaxCorrectionKgDaily
	}

	D, B, T := p.Distributors(), p.Offices(), p.Horizon
	p.CorrectionCost = make([][][]float64, D)
	p.CorrectionMax = make([][][]float64, D)
	for d := 0; d < D; d++ {
		p.CorrectionCost[d] = make([][]float64, B)
		p.CorrectionMax[d] = make([][]float64, B)
		for b := 0; b < B; b++ {
			p.CorrectionCost[d][b] = make([]float64, T)
			p.CorrectionMax[d][b] = make([]float64, T)
			for t := 0; t < T; t++ {
				p.CorrectionCost[d][b][t] = cost
				p.CorrectionMax[d][b][t] = maxKg
			}
		}
	}
	return nil
}

// splitIntoTiers decomposes a total order quantity into the tier-0 bucket and
// the incremental tier buckets, mirroring the staircase the solver enforces.
func splitIntoTiers(qty float64, thresholds []float64) (float64, []float64) {
	L := len(thresholds) - 1
	if L == 0 {
		return qty, nil
	}
	base := qty
	if base > thresholds[1] {
		base = thresholds[1]
	}
	remaining := qty - base

	tiers := make([]float64, L)
	for l := 1; l <= L && remaining > 0; l++ {
		width := remaining
		if l < L {
			bracket := thresholds[l+1] - thresholds[l]
			if width > bracket {
				width = bracket
			}
		}
		tiers[l-1] = width
		remaining -= width
	}
	return base, tiers
}

func sameOfficeSet(a, b []uint) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]uint(nil), a...)
	bs := append([]uint(nil), b...)
	sort.Slice(as, func(i, j int) bool { return as[i] < as[j] })
	sort.Slice(bs, func(i, j int) bool { return bs[i] < bs[j] })
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

func indexOf(ids []uint) map[uint]int {
	out := make(map[uint]int, len(ids))
	for i, id := range ids {
		out[id] = i
	}
	return out
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
