package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// GormSystemParameterRepository implements SystemParameterRepository using GORM
type GormSystemParameterRepository struct {
	db *gorm.DB
}

// NewGormSystemParameterRepository creates a new GORM system parameter repository
func NewGormSystemParameterRepository(db *gorm.DB) *GormSystemParameterRepository {
	return &GormSystemParameterRepository{db: db}
}

// GetFloat reads one tunable coefficient, returning the fallback when the
// parameter is not seeded.
func (r *GormSystemParameterRepository) GetFloat(ctx context.Context, name string, fallback float64) (float64, error) {
	var model SystemParameterModel
	result := r.db.WithContext(ctx).Where("name = ?", name).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return fallback, nil
		}
		return fallback, fmt.Errorf("failed to read system parameter %s: %w", name, result.Error)
	}
	return model.Value, nil
}

// Set upserts one tunable coefficient
func (r *GormSystemParameterRepository) Set(ctx context.Context, name string, value float64, description string) error {
	model := SystemParameterModel{Name: name, Value: value, Description: description}
	result := r.db.WithContext(ctx).Save(&model)
	if result.Error != nil {
		return fmt.Errorf("failed to save system parameter %s: %w", name, result.Error)
	}
	return nil
}
