package types

// CreatePlanRequest is the JSON body of POST /optimization/requests. The
// legacy baseline shape carries the full tariff inline (single office, one
// implicit supplier, same-day delivery); the advanced shape names an office
// set and sources distributors, tariffs and lead times from the catalogue.
type CreatePlanRequest struct {
	OfficeID  uint   `json:"office_id" validate:"required_without=OfficeIDs"`
	OfficeIDs []uint `json:"office_ids" validate:"omitempty,min=1,unique,dive,gt=0"`

	PlanningHorizonStart string `json:"planning_horizon_start" validate:"required,datetime=2006-01-02"`
	PlanningHorizonDays  int    `json:"planning_horizon_days" validate:"required,min=1,max=30"`

	InitialInventoryKg float64          `json:"initial_inventory_kg" validate:"gte=0"`
	InitialInventoryBy map[uint]float64 `json:"initial_inventory_by_office_kg" validate:"omitempty,dive,gte=0"`

	// Baseline-only tariff fields.
	PurchaseCostsDaily []float64 `json:"purchase_costs_pln_per_kg_daily" validate:"omitempty,dive,gte=0"`
	TransportCostPLN   float64   `json:"transport_cost_pln" validate:"gte=0"`
	DailyLossFraction  *float64  `json:"daily_loss_fraction" validate:"omitempty,gte=0,lte=1"`
	StorageCapacityKg  *float64  `json:"storage_capacity_kg" validate:"omitempty,gt=0"`

	NumWorkersDaily     []int `json:"num_workers_daily" validate:"required,dive,gte=0"`
	NumConferencesDaily []int `json:"num_conferences_daily" validate:"required,dive,gte=0"`

	IsCorrectionMode bool `json:"is_correction_mode"`
	PriorPlanID      uint `json:"prior_plan_id" validate:"required_if=IsCorrectionMode true"`

	// Correction pricing; zero values fall back to system parameters.
	CorrectionCostPLNPerKg float64 `json:"correction_cost_pln_per_kg" validate:"gte=0"`
	MaxCorrectionKgDaily   float64 `json:"max_correction_kg_daily" validate:"gte=0"`
}

// Advanced reports whether the request targets the multi-distributor model.
// The inline-tariff legacy shape stays on the baseline fast path.
func (r *CreatePlanRequest) Advanced() bool {
	return len(r.OfficeIDs) > 0 || r.IsCorrectionMode || len(r.PurchaseCostsDaily) == 0
}

// Offices returns the requested office set in request order.
func (r *CreatePlanRequest) Offices() []uint {
	if len(r.OfficeIDs) > 0 {
		return r.OfficeIDs
	}
	return []uint{r.OfficeID}
}
