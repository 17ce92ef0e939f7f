package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/beanfleet/coffeeplan/internal/domain/planning"
)

// GormOfficeRepository implements OfficeRepository using GORM
type GormOfficeRepository struct {
	db *gorm.DB
}

// NewGormOfficeRepository creates a new GORM office repository
func NewGormOfficeRepository(db *gorm.DB) *GormOfficeRepository {
	return &GormOfficeRepository{db: db}
}

// FindByID retrieves an active office by ID
func (r *GormOfficeRepository) FindByID(ctx context.Context, id uint) (*planning.Office, error) {
	var model OfficeModel
	result := r.db.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&model)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, planning.ErrOfficeNotFound
		}
		return nil, fmt.Errorf("failed to find office: %w", result.Error)
	}

	return r.modelToEntity(&model), nil
}

// FindByIDs retrieves the active offices of the given set, in id order.
func (r *GormOfficeRepository) FindByIDs(ctx context.Context, ids []uint) ([]*planning.Office, error) {
	var models []OfficeModel
	result := r.db.WithContext(ctx).
		Where("id IN ? AND is_active = ?", ids, true).
		Order("id").
		Find(&models)

	if result.Error != nil {
		return nil, fmt.Errorf("failed to find offices: %w", result.Error)
	}

	offices := make([]*planning.Office, 0, len(models))
	for i := range models {
		offices = append(offices, r.modelToEntity(&models[i]))
	}
	return offices, nil
}

// Add persists an office
func (r *GormOfficeRepository) Add(ctx context.Context, office *planning.Office) error {
	model := r.entityToModel(office)
	result := r.db.WithContext(ctx).Save(model)
	if result.Error != nil {
		return fmt.Errorf("failed to add office: %w", result.Error)
	}
	office.ID = model.ID
	return nil
}

// modelToEntity converts database model to domain entity
func (r *GormOfficeRepository) modelToEntity(model *OfficeModel) *planning.Office {
	return &planning.Office{
		ID:       model.ID,
		Name:     model.Name,
		Address:  model.Address,
		Capacity: model.StorageCapacityKg,
		LossRate: model.DailyLossFraction,
		IsActive: model.IsActive,
	}
}

// entityToModel converts domain entity to database model
func (r *GormOfficeRepository) entityToModel(office *planning.Office) *OfficeModel {
	return &OfficeModel{
		ID:                office.ID,
		Name:              office.Name,
		Address:           office.Address,
		StorageCapacityKg: office.Capacity,
		DailyLossFraction: office.LossRate,
		IsActive:          office.IsActive,
	}
}
