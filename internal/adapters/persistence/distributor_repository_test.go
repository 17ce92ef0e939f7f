package persistence_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beanfleet/coffeeplan/internal/adapters/persistence"
	"github.com/beanfleet/coffeeplan/internal/domain/planning"
	"github.com/beanfleet/coffeeplan/test/helpers"
)

func seedOffices(t *testing.T, repo *persistence.GormOfficeRepository, names ...string) []uint {
	t.Helper()
	ids := make([]uint, 0, len(names))
	for _, name := range names {
		office := &planning.Office{Name: name, Capacity: 200, IsActive: true}
		require.NoError(t, repo.Add(context.Background(), office))
		ids = append(ids, office.ID)
	}
	return ids
}

func TestDistributorRepository_AddAndFindRoundTrip(t *testing.T) {
	db := helpers.NewTestDB(t)
	offices := persistence.NewGormOfficeRepository(db)
	repo := persistence.NewGormDistributorRepository(db)

	officeIDs := seedOffices(t, offices, "Warsaw")

	dist := &planning.Distributor{
		Name:        "Kawa Hurt",
		Description: "bulk importer",
		IsActive:    true,
		Tariff: planning.Tariff{
			Thresholds:   []float64{0, 50, 150},
			TierPrices:   []float64{46, 42, 38},
			DailyFactors: []float64{1.0, 1.1},
		},
		Routes:     []planning.Route{{OfficeID: officeIDs[0], FixedCost: 150.5, LeadTime: 3}},
		SupplyCaps: []float64{800},
	}
	require.NoError(t, repo.Add(context.Background(), dist))
	require.NotZero(t, dist.ID)

	found, err := repo.FindActiveServing(context.Background(), officeIDs)

	require.NoError(t, err)
	require.Len(t, found, 1)
	got := found[0]
	assert.Equal(t, "Kawa Hurt", got.Name)
	assert.Equal(t, []float64{0, 50, 150}, got.Tariff.Thresholds)
	assert.Equal(t, []float64{46, 42, 38}, got.Tariff.TierPrices)
	assert.Equal(t, []float64{1.0, 1.1}, got.Tariff.DailyFactors)
	assert.Equal(t, []float64{800}, got.SupplyCaps)
	require.Len(t, got.Routes, 1)
	assert.Equal(t, officeIDs[0], got.Routes[0].OfficeID)
	assert.InDelta(t, 150.5, got.Routes[0].FixedCost, 1e-9)
	assert.Equal(t, 3, got.Routes[0].LeadTime)
}

func TestDistributorRepository_FindActiveServing_RequiresAllRoutes(t *testing.T) {
	db := helpers.NewTestDB(t)
	offices := persistence.NewGormOfficeRepository(db)
	repo := persistence.NewGormDistributorRepository(db)

	officeIDs := seedOffices(t, offices, "Warsaw", "Krakow")

	full := &planning.Distributor{
		Name:     "Nationwide",
		IsActive: true,
		Tariff:   planning.Tariff{Thresholds: []float64{0}, TierPrices: []float64{50}},
		Routes: []planning.Route{
			{OfficeID: officeIDs[0], FixedCost: 100, LeadTime: 1},
			{OfficeID: officeIDs[1], FixedCost: 140, LeadTime: 2},
		},
		SupplyCaps: []float64{400},
	}
	partial := &planning.Distributor{
		Name:       "Local Roaster",
		IsActive:   true,
		Tariff:     planning.Tariff{Thresholds: []float64{0}, TierPrices: []float64{52}},
		Routes:     []planning.Route{{OfficeID: officeIDs[0], FixedCost: 40, LeadTime: 0}},
		SupplyCaps: []float64{150},
	}
	inactive := &planning.Distributor{
		Name:     "Former Supplier",
		IsActive: false,
		Tariff:   planning.Tariff{Thresholds: []float64{0}, TierPrices: []float64{45}},
		Routes: []planning.Route{
			{OfficeID: officeIDs[0], FixedCost: 100, LeadTime: 1},
			{OfficeID: officeIDs[1], FixedCost: 100, LeadTime: 1},
		},
		SupplyCaps: []float64{400},
	}
	for _, d := range []*planning.Distributor{full, partial, inactive} {
		require.NoError(t, repo.Add(context.Background(), d))
	}

	serving, err := repo.FindActiveServing(context.Background(), officeIDs)

	require.NoError(t, err)
	require.Len(t, serving, 1)
	assert.Equal(t, "Nationwide", serving[0].Name)

	// narrowing to the first office brings the local roaster back in
	serving, err = repo.FindActiveServing(context.Background(), officeIDs[:1])
	require.NoError(t, err)
	require.Len(t, serving, 2)
	assert.Equal(t, full.ID, serving[0].ID)
	assert.Equal(t, partial.ID, serving[1].ID)
}
