package planning_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beanfleet/coffeeplan/internal/domain/planning"
)

func validParams() *planning.ProblemParameters {
	return &planning.ProblemParameters{
		Horizon:        3,
		HorizonStart:   time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		OfficeIDs:      []uint{1},
		DistributorIDs: []uint{7},
		Levels:         1,
		Capacity:       []float64{200},
		LossRate:       []float64{0.02},
		InitialInv:     []float64{30},
		Demand:         [][]float64{{10, 12, 10}},
		PriceBase:      [][]float64{{48, 48, 48}},
		PriceTier:      [][][]float64{{{44}, {44}, {44}}},
		FixedCost:      [][]float64{{120}},
		LeadTime:       [][]int{{1}},
		SupplyCap:      [][]float64{{400, 400, 400}},
		Thresholds:     []float64{0, 50},
	}
}

func TestProblemParameters_ValidateAccepts(t *testing.T) {
	require.NoError(t, validParams().Validate())
}

func TestProblemParameters_ValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*planning.ProblemParameters)
		field  string
	}{
		{"horizon too long", func(p *planning.ProblemParameters) { p.Horizon = 31 }, "planning_horizon_days"},
		{"horizon zero", func(p *planning.ProblemParameters) { p.Horizon = 0 }, "planning_horizon_days"},
		{"no offices", func(p *planning.ProblemParameters) { p.OfficeIDs = nil }, "office_id"},
		{"no distributors", func(p *planning.ProblemParameters) { p.DistributorIDs = nil }, "distributor_id"},
		{"negative capacity", func(p *planning.ProblemParameters) { p.Capacity[0] = -1 }, "storage_capacity_kg"},
		{"loss above one", func(p *planning.ProblemParameters) { p.LossRate[0] = 1.5 }, "daily_loss_fraction"},
		{"negative inventory", func(p *planning.ProblemParameters) { p.InitialInv[0] = -10 }, "initial_inventory_kg"},
		{"demand wrong length", func(p *planning.ProblemParameters) { p.Demand[0] = []float64{10} }, "demand"},
		{"negative demand", func(p *planning.ProblemParameters) { p.Demand[0][1] = -1 }, "demand"},
		{"thresholds not increasing", func(p *planning.ProblemParameters) { p.Thresholds = []float64{0, 0} }, "tier_thresholds"},
		{"first threshold nonzero", func(p *planning.ProblemParameters) { p.Thresholds = []float64{5, 50} }, "tier_thresholds"},
		{"negative price", func(p *planning.ProblemParameters) { p.PriceBase[0][0] = -1 }, "purchase_costs_pln_per_kg_daily"},
		{"missing tier price", func(p *planning.ProblemParameters) { p.PriceTier[0][1] = nil }, "tier_prices"},
		{"negative transport", func(p *planning.ProblemParameters) { p.FixedCost[0][0] = -5 }, "transport_cost_pln"},
		{"negative lead time", func(p *planning.ProblemParameters) { p.LeadTime[0][0] = -1 }, "lead_time_days"},
		{"negative supply cap", func(p *planning.ProblemParameters) { p.SupplyCap[0][2] = -1 }, "supply_caps"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validParams()
			tt.mutate(p)

			err := p.Validate()

			require.Error(t, err)
			var invalid *planning.InvalidInputError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.field, invalid.Field)
		})
	}
}

func TestProblemParameters_ValidateCorrectionArrays(t *testing.T) {
	p := validParams()
	p.Correction = true

	err := p.Validate()

	var invalid *planning.InvalidInputError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "correction", invalid.Field)
}

func TestProblemParameters_BigM(t *testing.T) {
	p := validParams()
	p.SupplyCap = [][]float64{{400, 750, 400}}

	assert.Equal(t, 750.0, p.BigM())
}

func TestProblemParameters_HistoricalArrivals(t *testing.T) {
	p := validParams()
	// placed 1 day before the horizon, lead time 1: arrives on day 0
	p.Historical = map[planning.OrderKey]float64{
		{D: 0, B: 0, T: -1}: 25,
	}

	assert.InDelta(t, 25.0, p.HistoricalArrivals(0, 0), 1e-9)
	assert.Zero(t, p.HistoricalArrivals(0, 1))
	require.NoError(t, p.Validate())
}

func TestTariff_UnitPrice(t *testing.T) {
	tariff := planning.Tariff{
		Thresholds:   []float64{0, 50, 150},
		TierPrices:   []float64{48, 44, 40},
		DailyFactors: []float64{1.0, 1.1},
	}

	require.NoError(t, tariff.Validate())
	assert.Equal(t, 2, tariff.Levels())
	assert.InDelta(t, 48.0, tariff.UnitPrice(0, 0), 1e-9)
	assert.InDelta(t, 44.0*1.1, tariff.UnitPrice(1, 1), 1e-9)
	// days past the factor series fall back to the flat price
	assert.InDelta(t, 40.0, tariff.UnitPrice(5, 2), 1e-9)
}

func TestNewOffice_Validation(t *testing.T) {
	_, err := planning.NewOffice(1, "HQ", 0, 0.02)
	assert.Error(t, err)

	_, err = planning.NewOffice(1, "HQ", 100, 1.5)
	assert.Error(t, err)

	office, err := planning.NewOffice(1, "HQ", 100, 0.02)
	require.NoError(t, err)
	assert.True(t, office.IsActive)
}
