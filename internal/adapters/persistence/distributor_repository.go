package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"github.com/beanfleet/coffeeplan/internal/domain/planning"
)

// GormDistributorRepository implements DistributorRepository using GORM
type GormDistributorRepository struct {
	db *gorm.DB
}

// NewGormDistributorRepository creates a new GORM distributor repository
func NewGormDistributorRepository(db *gorm.DB) *GormDistributorRepository {
	return &GormDistributorRepository{db: db}
}

// FindActiveServing returns active distributors that route to every office in
// the set, preloaded with their routes, in id order.
func (r *GormDistributorRepository) FindActiveServing(ctx context.Context, officeIDs []uint) ([]*planning.Distributor, error) {
	var models []DistributorModel
	result := r.db.WithContext(ctx).
		Preload("Routes").
		Where("is_active = ?", true).
		Order("id").
		Find(&models)

	if result.Error != nil {
		return nil, fmt.Errorf("failed to find distributors: %w", result.Error)
	}

	distributors := make([]*planning.Distributor, 0, len(models))
	for i := range models {
		entity, err := r.modelToEntity(&models[i])
		if err != nil {
			return nil, fmt.Errorf("failed to convert distributor %d: %w", models[i].ID, err)
		}
		if servesAll(entity, officeIDs) {
			distributors = append(distributors, entity)
		}
	}
	return distributors, nil
}

// Add persists a distributor with its routes
func (r *GormDistributorRepository) Add(ctx context.Context, dist *planning.Distributor) error {
	model, err := r.entityToModel(dist)
	if err != nil {
		return fmt.Errorf("failed to convert distributor to model: %w", err)
	}
	result := r.db.WithContext(ctx).Save(model)
	if result.Error != nil {
		return fmt.Errorf("failed to add distributor: %w", result.Error)
	}
	dist.ID = model.ID
	return nil
}

func servesAll(dist *planning.Distributor, officeIDs []uint) bool {
	for _, id := range officeIDs {
		if dist.RouteTo(id) == nil {
			return false
		}
	}
	return true
}

// modelToEntity converts database model to domain entity
func (r *GormDistributorRepository) modelToEntity(model *DistributorModel) (*planning.Distributor, error) {
	var tariff planning.Tariff
	if err := json.Unmarshal([]byte(model.TierThresholds), &tariff.Thresholds); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tier thresholds: %w", err)
	}
	if err := json.Unmarshal([]byte(model.TierPrices), &tariff.TierPrices); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tier prices: %w", err)
	}
	if model.DailyPriceFactors != "" {
		if err := json.Unmarshal([]byte(model.DailyPriceFactors), &tariff.DailyFactors); err != nil {
			return nil, fmt.Errorf("failed to unmarshal daily price factors: %w", err)
		}
	}

	var supplyCaps []float64
	if err := json.Unmarshal([]byte(model.DailySupplyCapsKg), &supplyCaps); err != nil {
		return nil, fmt.Errorf("failed to unmarshal supply caps: %w", err)
	}

	routes := make([]planning.Route, 0, len(model.Routes))
	for _, rm := range model.Routes {
		cost, _ := rm.TransportCostPLN.Float64()
		routes = append(routes, planning.Route{
			OfficeID:  rm.OfficeID,
			FixedCost: cost,
			LeadTime:  rm.LeadTimeDays,
		})
	}

	return &planning.Distributor{
		ID:          model.ID,
		Name:        model.Name,
		Description: model.Description,
		IsActive:    model.IsActive,
		Tariff:      tariff,
		Routes:      routes,
		SupplyCaps:  supplyCaps,
	}, nil
}

// entityToModel converts domain entity to database model
func (r *GormDistributorRepository) entityToModel(dist *planning.Distributor) (*DistributorModel, error) {
	thresholds, err := json.Marshal(dist.Tariff.Thresholds)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tier thresholds: %w", err)
	}
	prices, err := json.Marshal(dist.Tariff.TierPrices)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tier prices: %w", err)
	}
	supplyCaps, err := json.Marshal(dist.SupplyCaps)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal supply caps: %w", err)
	}

	factors := ""
	if len(dist.Tariff.DailyFactors) > 0 {
		raw, err := json.Marshal(dist.Tariff.DailyFactors)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal daily price factors: %w", err)
		}
		factors = string(raw)
	}

	routes := make([]RouteModel, 0, len(dist.Routes))
	for _, route := range dist.Routes {
		routes = append(routes, RouteModel{
			DistributorID:    dist.ID,
			OfficeID:         route.OfficeID,
			TransportCostPLN: pln(route.FixedCost),
			LeadTimeDays:     route.LeadTime,
		})
	}

	return &DistributorModel{
		ID:                dist.ID,
		Name:              dist.Name,
		Description:       dist.Description,
		IsActive:          dist.IsActive,
		TierThresholds:    string(thresholds),
		TierPrices:        string(prices),
		DailyPriceFactors: factors,
		DailySupplyCapsKg: string(supplyCaps),
		Routes:            routes,
	}, nil
}
