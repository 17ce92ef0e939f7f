package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beanfleet/coffeeplan/internal/application/planning/services"
	"github.com/beanfleet/coffeeplan/internal/application/planning/types"
	"github.com/beanfleet/coffeeplan/internal/domain/planning"
)

func testOffice() *planning.Office {
	return &planning.Office{ID: 1, Name: "HQ", Capacity: 200, LossRate: 0.02, IsActive: true}
}

func testDistributor(id uint, officeIDs ...uint) *planning.Distributor {
	routes := make([]planning.Route, 0, len(officeIDs))
	for _, oid := range officeIDs {
		routes = append(routes, planning.Route{OfficeID: oid, FixedCost: 120, LeadTime: 1})
	}
	return &planning.Distributor{
		ID:       id,
		Name:     "Bean Express",
		IsActive: true,
		Tariff: planning.Tariff{
			Thresholds: []float64{0, 50, 150},
			TierPrices: []float64{48, 44, 40},
		},
		Routes:     routes,
		SupplyCaps: []float64{400},
	}
}

func newAssembler(offices *fakeOfficeRepo, distributors *fakeDistributorRepo, plans *fakePlanRepo) *services.ParameterAssembler {
	return services.NewParameterAssembler(offices, distributors, plans, &fakeParamRepo{})
}

func baselineRequest() *types.CreatePlanRequest {
	return &types.CreatePlanRequest{
		OfficeID:             1,
		PlanningHorizonStart: "2026-03-02",
		PlanningHorizonDays:  3,
		InitialInventoryKg:   30,
		PurchaseCostsDaily:   []float64{48, 48, 48},
		TransportCostPLN:     120,
		NumWorkersDaily:      []int{40, 40, 40},
		NumConferencesDaily:  []int{0, 1, 0},
	}
}

func TestAssemble_Baseline(t *testing.T) {
	assembler := newAssembler(newFakeOfficeRepo(testOffice()), &fakeDistributorRepo{}, newFakePlanRepo())

	params, req, err := assembler.Assemble(context.Background(), baselineRequest())

	require.NoError(t, err)
	assert.Equal(t, 3, params.Horizon)
	assert.Equal(t, []uint{1}, params.OfficeIDs)
	assert.Equal(t, 0, params.Levels)
	assert.Equal(t, []float64{200}, params.Capacity)
	assert.Equal(t, []float64{0.02}, params.LossRate)
	assert.Equal(t, []float64{30}, params.InitialInv)

	// demand from the consumption model: 40*0.25, conference day bumped
	assert.InDelta(t, 10.0, params.Demand[0][0], 1e-9)
	assert.InDelta(t, 12.0, params.Demand[0][1], 1e-9)

	// single implicit supplier delivering same day, cap at warehouse size
	assert.Equal(t, [][]int{{0}}, params.LeadTime)
	assert.Equal(t, []float64{200, 200, 200}, params.SupplyCap[0])

	assert.Equal(t, []uint{1}, req.OfficeIDs)
	assert.False(t, req.IsCorrection)
}

func TestAssemble_BaselineOverrides(t *testing.T) {
	capacity := 500.0
	loss := 0.1
	req := baselineRequest()
	req.StorageCapacityKg = &capacity
	req.DailyLossFraction = &loss

	assembler := newAssembler(newFakeOfficeRepo(testOffice()), &fakeDistributorRepo{}, newFakePlanRepo())
	params, _, err := assembler.Assemble(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, []float64{500}, params.Capacity)
	assert.Equal(t, []float64{0.1}, params.LossRate)
}

func TestAssemble_RejectsBadInputs(t *testing.T) {
	assembler := newAssembler(newFakeOfficeRepo(testOffice()), &fakeDistributorRepo{}, newFakePlanRepo())

	tests := []struct {
		name   string
		mutate func(*types.CreatePlanRequest)
		field  string
	}{
		{"bad date", func(r *types.CreatePlanRequest) { r.PlanningHorizonStart = "02-03-2026" }, "planning_horizon_start"},
		{"workers length", func(r *types.CreatePlanRequest) { r.NumWorkersDaily = []int{40} }, "num_workers_daily"},
		{"conferences length", func(r *types.CreatePlanRequest) { r.NumConferencesDaily = []int{0} }, "num_conferences_daily"},
		{"prices length", func(r *types.CreatePlanRequest) { r.PurchaseCostsDaily = []float64{48} }, "purchase_costs_pln_per_kg_daily"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := baselineRequest()
			tt.mutate(req)

			_, _, err := assembler.Assemble(context.Background(), req)

			var invalid *planning.InvalidInputError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.field, invalid.Field)
		})
	}
}

func TestAssemble_UnknownOffice(t *testing.T) {
	assembler := newAssembler(newFakeOfficeRepo(), &fakeDistributorRepo{}, newFakePlanRepo())

	req := baselineRequest()
	_, _, err := assembler.Assemble(context.Background(), req)

	assert.ErrorIs(t, err, planning.ErrOfficeNotFound)
}

func advancedRequest() *types.CreatePlanRequest {
	return &types.CreatePlanRequest{
		OfficeIDs:            []uint{1},
		PlanningHorizonStart: "2026-03-02",
		PlanningHorizonDays:  3,
		InitialInventoryKg:   30,
		NumWorkersDaily:      []int{40, 40, 40},
		NumConferencesDaily:  []int{0, 0, 0},
	}
}

func TestAssemble_Advanced(t *testing.T) {
	distributors := &fakeDistributorRepo{distributors: []*planning.Distributor{testDistributor(7, 1)}}
	assembler := newAssembler(newFakeOfficeRepo(testOffice()), distributors, newFakePlanRepo())

	params, req, err := assembler.Assemble(context.Background(), advancedRequest())

	require.NoError(t, err)
	assert.Equal(t, []uint{7}, params.DistributorIDs)
	assert.Equal(t, 2, params.Levels)
	assert.Equal(t, []float64{0, 50, 150}, params.Thresholds)
	assert.InDelta(t, 48.0, params.PriceBase[0][0], 1e-9)
	assert.InDelta(t, 44.0, params.PriceTier[0][0][0], 1e-9)
	assert.InDelta(t, 40.0, params.PriceTier[0][0][1], 1e-9)
	assert.Equal(t, 1, params.LeadTime[0][0])
	assert.Equal(t, []float64{400, 400, 400}, params.SupplyCap[0])
	assert.True(t, req.IsCorrection == false)
}

func TestAssemble_TariffPadding(t *testing.T) {
	// a flat-tariff distributor rides the wider ladder at its top price
	narrow := testDistributor(8, 1)
	narrow.Tariff = planning.Tariff{Thresholds: []float64{0, 50}, TierPrices: []float64{52, 47}}
	distributors := &fakeDistributorRepo{distributors: []*planning.Distributor{testDistributor(7, 1), narrow}}
	assembler := newAssembler(newFakeOfficeRepo(testOffice()), distributors, newFakePlanRepo())

	params, _, err := assembler.Assemble(context.Background(), advancedRequest())

	require.NoError(t, err)
	assert.Equal(t, 2, params.Levels)
	// narrow distributor's missing tier 2 reuses its top tier price
	assert.InDelta(t, 47.0, params.PriceTier[1][0][0], 1e-9)
	assert.InDelta(t, 47.0, params.PriceTier[1][0][1], 1e-9)
}

func TestAssemble_TariffLadderMismatch(t *testing.T) {
	other := testDistributor(8, 1)
	other.Tariff = planning.Tariff{Thresholds: []float64{0, 60}, TierPrices: []float64{52, 47}}
	distributors := &fakeDistributorRepo{distributors: []*planning.Distributor{testDistributor(7, 1), other}}
	assembler := newAssembler(newFakeOfficeRepo(testOffice()), distributors, newFakePlanRepo())

	_, _, err := assembler.Assemble(context.Background(), advancedRequest())

	var invalid *planning.InvalidInputError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "tier_thresholds", invalid.Field)
}

func TestAssemble_NoDistributorServes(t *testing.T) {
	assembler := newAssembler(newFakeOfficeRepo(testOffice()), &fakeDistributorRepo{}, newFakePlanRepo())

	_, _, err := assembler.Assemble(context.Background(), advancedRequest())

	assert.ErrorIs(t, err, planning.ErrDistributorNotFound)
}

func correctionPriorPlan(t *testing.T, plans *fakePlanRepo) uint {
	t.Helper()
	horizonStart := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	prior := &planning.PlanResult{
		Request: planning.PlanRequest{
			OfficeIDs:    []uint{1},
			HorizonStart: horizonStart,
			HorizonDays:  3,
		},
		Status: planning.StatusOptimal,
		Orders: []planning.OrderIntent{
			{
				OfficeID:      1,
				DistributorID: 7,
				PlacementDay:  1,
				OrderDate:     horizonStart.AddDate(0, 0, 1),
				QtyKg:         80, // 50 at tier 0, 30 into tier 1
				Tier:          1,
			},
		},
	}
	require.NoError(t, plans.SaveResult(context.Background(), prior))
	return prior.ID
}

func TestAssemble_CorrectionSplitsPriorOrders(t *testing.T) {
	plans := newFakePlanRepo()
	priorID := correctionPriorPlan(t, plans)

	distributors := &fakeDistributorRepo{distributors: []*planning.Distributor{testDistributor(7, 1)}}
	assembler := newAssembler(newFakeOfficeRepo(testOffice()), distributors, plans)

	req := advancedRequest()
	req.IsCorrectionMode = true
	req.PriorPlanID = priorID
	req.CorrectionCostPLNPerKg = 2.5
	req.MaxCorrectionKgDaily = 100

	params, domainReq, err := assembler.Assemble(context.Background(), req)

	require.NoError(t, err)
	assert.True(t, params.Correction)
	assert.True(t, domainReq.IsCorrection)
	assert.Equal(t, priorID, domainReq.PriorPlanID)

	key := planning.OrderKey{D: 0, B: 0, T: 1}
	assert.InDelta(t, 50.0, params.PriorBase[key], 1e-9)
	assert.InDelta(t, 30.0, params.PriorTier[planning.TierKey{D: 0, B: 0, T: 1, L: 1}], 1e-9)
	assert.Zero(t, params.PriorTier[planning.TierKey{D: 0, B: 0, T: 1, L: 2}])
	assert.NotZero(t, params.PriorOrderIDs[key])

	assert.InDelta(t, 2.5, params.CorrectionCost[0][0][0], 1e-9)
	assert.InDelta(t, 100.0, params.CorrectionMax[0][0][2], 1e-9)
}

func TestAssemble_CorrectionPreconditions(t *testing.T) {
	plans := newFakePlanRepo()
	priorID := correctionPriorPlan(t, plans)

	infeasible := &planning.PlanResult{
		Request: planning.PlanRequest{OfficeIDs: []uint{1}, HorizonStart: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), HorizonDays: 3},
		Status:  planning.StatusInfeasible,
	}
	require.NoError(t, plans.SaveResult(context.Background(), infeasible))

	distributors := &fakeDistributorRepo{distributors: []*planning.Distributor{testDistributor(7, 1)}}
	assembler := newAssembler(newFakeOfficeRepo(testOffice()), distributors, plans)

	tests := []struct {
		name   string
		mutate func(*types.CreatePlanRequest)
	}{
		{"missing prior plan", func(r *types.CreatePlanRequest) { r.PriorPlanID = 999 }},
		{"prior plan not optimal", func(r *types.CreatePlanRequest) { r.PriorPlanID = infeasible.ID }},
		{"disjoint horizon", func(r *types.CreatePlanRequest) { r.PlanningHorizonStart = "2026-06-01" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := advancedRequest()
			req.IsCorrectionMode = true
			req.PriorPlanID = priorID
			tt.mutate(req)

			_, _, err := assembler.Assemble(context.Background(), req)

			var precondition *planning.CorrectionPreconditionError
			assert.ErrorAs(t, err, &precondition)
		})
	}
}
