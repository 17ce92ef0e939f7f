package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/beanfleet/coffeeplan/internal/domain/planning"
)

// pln converts a float money amount to its stored 2-decimal representation.
func pln(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// GormPlanRepository implements PlanRepository using GORM
type GormPlanRepository struct {
	db *gorm.DB
}

// NewGormPlanRepository creates a new GORM plan repository
func NewGormPlanRepository(db *gorm.DB) *GormPlanRepository {
	return &GormPlanRepository{db: db}
}

// SaveResult writes the plan result with its orders, corrections and
// snapshots in one transaction. The generated id is written back to the
// result. No partial write is ever visible to readers.
func (r *GormPlanRepository) SaveResult(ctx context.Context, result *planning.PlanResult) error {
	model, err := r.resultToModel(result)
	if err != nil {
		return fmt.Errorf("failed to convert plan result to model: %w", err)
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(model).Error; err != nil {
			return fmt.Errorf("failed to save optimization request: %w", err)
		}

		for i := range result.Orders {
			order := orderToModel(model.ID, &result.Orders[i])
			if err := tx.Create(order).Error; err != nil {
				return fmt.Errorf("failed to save order: %w", err)
			}
		}
		for i := range result.Corrections {
			correction := correctionToModel(model.ID, &result.Corrections[i])
			if err := tx.Create(correction).Error; err != nil {
				return fmt.Errorf("failed to save correction: %w", err)
			}
		}
		for i := range result.Inventory {
			snapshot := snapshotToModel(model.ID, &result.Inventory[i])
			if err := tx.Create(snapshot).Error; err != nil {
				return fmt.Errorf("failed to save inventory snapshot: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	result.ID = model.ID
	return nil
}

// FindByID retrieves a plan header without its orders and snapshots.
func (r *GormPlanRepository) FindByID(ctx context.Context, id uint) (*planning.PlanResult, error) {
	var model OptimizationRequestModel
	result := r.db.WithContext(ctx).First(&model, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, planning.ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to find optimization request: %w", result.Error)
	}
	return r.modelToResult(&model)
}

// FindWithResults retrieves a plan with its orders, corrections and snapshots.
func (r *GormPlanRepository) FindWithResults(ctx context.Context, id uint) (*planning.PlanResult, error) {
	var model OptimizationRequestModel
	result := r.db.WithContext(ctx).
		Preload("Orders", func(db *gorm.DB) *gorm.DB { return db.Order("placement_day, distributor_id, office_id") }).
		Preload("Corrections", func(db *gorm.DB) *gorm.DB {
			return db.Order("placement_day, distributor_id, office_id, tier_index")
		}).
		Preload("Snapshots", func(db *gorm.DB) *gorm.DB { return db.Order("office_id, day") }).
		First(&model, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, planning.ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to find optimization request: %w", result.Error)
	}
	return r.modelToResult(&model)
}

// FindRecent retrieves the newest plan headers covering the given office.
// The office set is stored as JSON, so membership is filtered after the scan.
func (r *GormPlanRepository) FindRecent(ctx context.Context, officeID uint, limit int) ([]*planning.PlanResult, error) {
	var models []OptimizationRequestModel
	result := r.db.WithContext(ctx).Order("id DESC").Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list optimization requests: %w", result.Error)
	}

	plans := make([]*planning.PlanResult, 0, limit)
	for i := range models {
		plan, err := r.modelToResult(&models[i])
		if err != nil {
			return nil, fmt.Errorf("failed to convert optimization request %d: %w", models[i].ID, err)
		}
		if officeID != 0 && !containsOffice(plan.Request.OfficeIDs, officeID) {
			continue
		}
		plans = append(plans, plan)
		if len(plans) == limit {
			break
		}
	}
	return plans, nil
}

// FindPriorOrders retrieves the persisted orders of a plan for a correction run.
func (r *GormPlanRepository) FindPriorOrders(ctx context.Context, planID uint) ([]planning.PriorOrder, error) {
	var models []OrderModel
	result := r.db.WithContext(ctx).
		Where("request_id = ?", planID).
		Order("placement_day, distributor_id, office_id").
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to find prior orders: %w", result.Error)
	}

	orders := make([]planning.PriorOrder, 0, len(models))
	for i := range models {
		orders = append(orders, planning.PriorOrder{
			ID:          models[i].ID,
			OrderIntent: modelToOrder(&models[i]),
		})
	}
	return orders, nil
}

func containsOffice(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// resultToModel converts domain result to database model
func (r *GormPlanRepository) resultToModel(result *planning.PlanResult) (*OptimizationRequestModel, error) {
	officeIDs, err := json.Marshal(result.Request.OfficeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal office ids: %w", err)
	}
	initialInv, err := json.Marshal(result.Request.InitialInventory)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal initial inventory: %w", err)
	}

	model := &OptimizationRequestModel{
		OfficeIDs:        string(officeIDs),
		HorizonStart:     result.Request.HorizonStart,
		HorizonDays:      result.Request.HorizonDays,
		InitialInventory: string(initialInv),
		Status:           string(result.Status),
		StatusReason:     result.StatusReason,
		TotalCostPLN:     pln(result.Objective),
		CorrectionCost:   pln(result.CorrectionCost),
		GapExceeded:      result.GapExceeded,
		SolveTimeMs:      result.SolveMillis,
		IsCorrection:     result.Request.IsCorrection,
		CreatedAt:        result.CreatedAt,
	}
	if result.Request.IsCorrection {
		prior := result.Request.PriorPlanID
		model.PriorRequestID = &prior
	}
	return model, nil
}

// modelToResult converts database model to domain result
func (r *GormPlanRepository) modelToResult(model *OptimizationRequestModel) (*planning.PlanResult, error) {
	var officeIDs []uint
	if err := json.Unmarshal([]byte(model.OfficeIDs), &officeIDs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal office ids: %w", err)
	}
	initialInv := make(map[uint]float64)
	if model.InitialInventory != "" {
		if err := json.Unmarshal([]byte(model.InitialInventory), &initialInv); err != nil {
			return nil, fmt.Errorf("failed to unmarshal initial inventory: %w", err)
		}
	}

	request := planning.PlanRequest{
		OfficeIDs:        officeIDs,
		HorizonStart:     model.HorizonStart,
		HorizonDays:      model.HorizonDays,
		InitialInventory: initialInv,
		IsCorrection:     model.IsCorrection,
	}
	if model.PriorRequestID != nil {
		request.PriorPlanID = *model.PriorRequestID
	}

	objective, _ := model.TotalCostPLN.Float64()
	correctionCost, _ := model.CorrectionCost.Float64()

	result := &planning.PlanResult{
		ID:             model.ID,
		Request:        request,
		Status:         planning.PlanStatus(model.Status),
		StatusReason:   model.StatusReason,
		Objective:      objective,
		CorrectionCost: correctionCost,
		GapExceeded:    model.GapExceeded,
		SolveMillis:    model.SolveTimeMs,
		CreatedAt:      model.CreatedAt,
	}

	for i := range model.Orders {
		result.Orders = append(result.Orders, modelToOrder(&model.Orders[i]))
	}
	for i := range model.Corrections {
		result.Corrections = append(result.Corrections, modelToCorrection(&model.Corrections[i]))
	}
	for i := range model.Snapshots {
		result.Inventory = append(result.Inventory, modelToSnapshot(&model.Snapshots[i]))
	}
	return result, nil
}

func orderToModel(requestID uint, o *planning.OrderIntent) *OrderModel {
	return &OrderModel{
		RequestID:        requestID,
		OfficeID:         o.OfficeID,
		DistributorID:    o.DistributorID,
		PlacementDay:     o.PlacementDay,
		DeliveryDay:      o.DeliveryDay,
		OrderDate:        o.OrderDate,
		DeliveryDate:     o.DeliveryDate,
		QuantityKg:       o.QtyKg,
		TierIndex:        o.Tier,
		UnitPricePLN:     pln(o.UnitPrice),
		TransportCostPLN: pln(o.TransportCost),
		TotalCostPLN:     pln(o.TotalCost),
	}
}

func modelToOrder(m *OrderModel) planning.OrderIntent {
	unitPrice, _ := m.UnitPricePLN.Float64()
	transportCost, _ := m.TransportCostPLN.Float64()
	totalCost, _ := m.TotalCostPLN.Float64()
	return planning.OrderIntent{
		OfficeID:      m.OfficeID,
		DistributorID: m.DistributorID,
		PlacementDay:  m.PlacementDay,
		DeliveryDay:   m.DeliveryDay,
		OrderDate:     m.OrderDate,
		DeliveryDate:  m.DeliveryDate,
		QtyKg:         m.QuantityKg,
		Tier:          m.TierIndex,
		UnitPrice:     unitPrice,
		TransportCost: transportCost,
		TotalCost:     totalCost,
	}
}

func correctionToModel(requestID uint, c *planning.OrderCorrection) *OrderCorrectionModel {
	model := &OrderCorrectionModel{
		RequestID:     requestID,
		OfficeID:      c.OfficeID,
		DistributorID: c.DistributorID,
		PlacementDay:  c.PlacementDay,
		TierIndex:     c.Tier,
		IncreaseKg:    c.IncreaseKg,
		DecreaseKg:    c.DecreaseKg,
		CostPLN:       pln(c.Cost),
	}
	if c.PriorOrderID != 0 {
		prior := c.PriorOrderID
		model.PriorOrderID = &prior
	}
	return model
}

func modelToCorrection(m *OrderCorrectionModel) planning.OrderCorrection {
	cost, _ := m.CostPLN.Float64()
	correction := planning.OrderCorrection{
		OfficeID:      m.OfficeID,
		DistributorID: m.DistributorID,
		PlacementDay:  m.PlacementDay,
		Tier:          m.TierIndex,
		IncreaseKg:    m.IncreaseKg,
		DecreaseKg:    m.DecreaseKg,
		Cost:          cost,
	}
	if m.PriorOrderID != nil {
		correction.PriorOrderID = *m.PriorOrderID
	}
	return correction
}

func snapshotToModel(requestID uint, s *planning.InventorySnapshot) *InventorySnapshotModel {
	return &InventorySnapshotModel{
		RequestID:          requestID,
		OfficeID:           s.OfficeID,
		Day:                s.Day,
		SnapshotDate:       s.Date,
		InventoryLevelKg:   s.Level,
		DemandFulfilledKg:  s.DemandFulfilled,
		LossKg:             s.Loss,
		DeliveriesReceived: s.DeliveriesReceived,
		IsProjected:        s.IsProjected,
	}
}

func modelToSnapshot(m *InventorySnapshotModel) planning.InventorySnapshot {
	return planning.InventorySnapshot{
		OfficeID:           m.OfficeID,
		Day:                m.Day,
		Date:               m.SnapshotDate,
		Level:              m.InventoryLevelKg,
		DemandFulfilled:    m.DemandFulfilledKg,
		Loss:               m.LossKg,
		DeliveriesReceived: m.DeliveriesReceived,
		IsProjected:        m.IsProjected,
	}
}
