package persistence

import (
	"time"

	"github.com/shopspring/decimal"
)

// OfficeModel represents the offices table
type OfficeModel struct {
	ID                uint    `gorm:"column:id;primaryKey;autoIncrement"`
	Name              string  `gorm:"column:name;unique;not null"`
	Address           string  `gorm:"column:address"`
	StorageCapacityKg float64 `gorm:"column:storage_capacity_kg;not null"`
	DailyLossFraction float64 `gorm:"column:daily_loss_fraction;not null;default:0"`
	IsActive          bool    `gorm:"column:is_active;not null;default:true"`
}

func (OfficeModel) TableName() string {
	return "offices"
}

// DistributorModel represents the distributors table. The tariff arrays are
// stored as JSON text so SQLite and PostgreSQL share one schema.
type DistributorModel struct {
	ID                uint   `gorm:"column:id;primaryKey;autoIncrement"`
	Name              string `gorm:"column:name;unique;not null"`
	Description       string `gorm:"column:description"`
	IsActive          bool   `gorm:"column:is_active;not null;default:true"`
	TierThresholds    string `gorm:"column:tier_thresholds;type:text;not null"`   // JSON array, first element 0
	TierPrices        string `gorm:"column:tier_prices;type:text;not null"`       // JSON array, one price per tier
	DailyPriceFactors string `gorm:"column:daily_price_factors;type:text"`        // JSON array, empty means flat
	DailySupplyCapsKg string `gorm:"column:daily_supply_caps_kg;type:text;not null"` // JSON array, single element means flat

	Routes []RouteModel `gorm:"foreignKey:DistributorID;references:ID"`
}

func (DistributorModel) TableName() string {
	return "distributors"
}

// RouteModel represents the distributor_offices table: one delivery leg per
// (distributor, office) pair.
type RouteModel struct {
	ID               uint            `gorm:"column:id;primaryKey;autoIncrement"`
	DistributorID    uint            `gorm:"column:distributor_id;not null;uniqueIndex:idx_route;constraint:OnDelete:CASCADE;"`
	OfficeID         uint            `gorm:"column:office_id;not null;uniqueIndex:idx_route"`
	Office           *OfficeModel    `gorm:"foreignKey:OfficeID;references:ID"`
	TransportCostPLN decimal.Decimal `gorm:"column:transport_cost_pln;type:decimal(12,2);not null"`
	LeadTimeDays     int             `gorm:"column:lead_time_days;not null;default:0"`
}

func (RouteModel) TableName() string {
	return "distributor_offices"
}

// OptimizationRequestModel represents the optimization_requests table. One row
// per solver run, terminal statuses included; orders and snapshots hang off
// OPTIMAL rows only.
type OptimizationRequestModel struct {
	ID               uint            `gorm:"column:id;primaryKey;autoIncrement"`
	OfficeIDs        string          `gorm:"column:office_ids;type:text;not null"` // JSON array
	HorizonStart     time.Time       `gorm:"column:horizon_start;not null"`
	HorizonDays      int             `gorm:"column:horizon_days;not null"`
	InitialInventory string          `gorm:"column:initial_inventory;type:text"` // JSON object office id -> kg
	Status           string          `gorm:"column:status;not null"`
	StatusReason     string          `gorm:"column:status_reason"`
	TotalCostPLN     decimal.Decimal `gorm:"column:total_cost_pln;type:decimal(14,2)"`
	CorrectionCost   decimal.Decimal `gorm:"column:correction_cost_pln;type:decimal(14,2)"`
	GapExceeded      bool            `gorm:"column:gap_exceeded;not null;default:false"`
	SolveTimeMs      int64           `gorm:"column:solve_time_ms;not null;default:0"`
	IsCorrection     bool            `gorm:"column:is_correction;not null;default:false"`
	PriorRequestID   *uint           `gorm:"column:prior_request_id"`
	CreatedAt        time.Time       `gorm:"column:created_at;not null"`

	Orders      []OrderModel             `gorm:"foreignKey:RequestID;references:ID"`
	Corrections []OrderCorrectionModel   `gorm:"foreignKey:RequestID;references:ID"`
	Snapshots   []InventorySnapshotModel `gorm:"foreignKey:RequestID;references:ID"`
}

func (OptimizationRequestModel) TableName() string {
	return "optimization_requests"
}

// OrderModel represents the orders table
type OrderModel struct {
	ID               uint            `gorm:"column:id;primaryKey;autoIncrement"`
	RequestID        uint            `gorm:"column:request_id;not null;index;constraint:OnDelete:CASCADE;"`
	OfficeID         uint            `gorm:"column:office_id;not null;index"`
	DistributorID    uint            `gorm:"column:distributor_id;not null"`
	PlacementDay     int             `gorm:"column:placement_day;not null"`
	DeliveryDay      int             `gorm:"column:delivery_day;not null"`
	OrderDate        time.Time       `gorm:"column:order_date;not null"`
	DeliveryDate     time.Time       `gorm:"column:delivery_date;not null"`
	QuantityKg       float64         `gorm:"column:quantity_kg;not null"`
	TierIndex        int             `gorm:"column:tier_index;not null;default:0"`
	UnitPricePLN     decimal.Decimal `gorm:"column:unit_price_pln;type:decimal(12,2);not null"`
	TransportCostPLN decimal.Decimal `gorm:"column:transport_cost_pln;type:decimal(12,2);not null"`
	TotalCostPLN     decimal.Decimal `gorm:"column:total_cost_pln;type:decimal(14,2);not null"`
}

func (OrderModel) TableName() string {
	return "orders"
}

// OrderCorrectionModel represents the order_corrections table
type OrderCorrectionModel struct {
	ID            uint            `gorm:"column:id;primaryKey;autoIncrement"`
	RequestID     uint            `gorm:"column:request_id;not null;index;constraint:OnDelete:CASCADE;"`
	OfficeID      uint            `gorm:"column:office_id;not null"`
	DistributorID uint            `gorm:"column:distributor_id;not null"`
	PlacementDay  int             `gorm:"column:placement_day;not null"`
	TierIndex     int             `gorm:"column:tier_index;not null;default:0"`
	PriorOrderID  *uint           `gorm:"column:prior_order_id"`
	IncreaseKg    float64         `gorm:"column:increase_kg;not null;default:0"`
	DecreaseKg    float64         `gorm:"column:decrease_kg;not null;default:0"`
	CostPLN       decimal.Decimal `gorm:"column:cost_pln;type:decimal(12,2);not null"`
}

func (OrderCorrectionModel) TableName() string {
	return "order_corrections"
}

// InventorySnapshotModel represents the inventory_snapshots table
type InventorySnapshotModel struct {
	ID                 uint      `gorm:"column:id;primaryKey;autoIncrement"`
	RequestID          uint      `gorm:"column:request_id;not null;index;constraint:OnDelete:CASCADE;"`
	OfficeID           uint      `gorm:"column:office_id;not null;index"`
	Day                int       `gorm:"column:day;not null"`
	SnapshotDate       time.Time `gorm:"column:snapshot_date;not null"`
	InventoryLevelKg   float64   `gorm:"column:inventory_level_kg;not null"`
	DemandFulfilledKg  float64   `gorm:"column:demand_fulfilled_kg;not null;default:0"`
	LossKg             float64   `gorm:"column:loss_kg;not null;default:0"`
	DeliveriesReceived float64   `gorm:"column:deliveries_received_kg;not null;default:0"`
	IsProjected        bool      `gorm:"column:is_projected;not null;default:true"`
}

func (InventorySnapshotModel) TableName() string {
	return "inventory_snapshots"
}

// SystemParameterModel represents the system_parameters table: tunable
// coefficients of the demand and correction models.
type SystemParameterModel struct {
	Name        string  `gorm:"column:name;primaryKey"`
	Value       float64 `gorm:"column:value;not null"`
	Description string  `gorm:"column:description"`
}

func (SystemParameterModel) TableName() string {
	return "system_parameters"
}
