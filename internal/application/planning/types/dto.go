package types

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/beanfleet/coffeeplan/internal/domain/planning"
)

// OrderDTO is one planned order in an API response. Money is carried as
// 2-decimal PLN amounts.
type OrderDTO struct {
	OfficeID      uint            `json:"office_id"`
	DistributorID uint            `json:"distributor_id"`
	OrderDate     string          `json:"order_date"`
	DeliveryDate  string          `json:"delivery_date"`
	QuantityKg    decimal.Decimal `json:"quantity_kg"`
	Tier          int             `json:"tier"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	TransportCost decimal.Decimal `json:"transport_cost"`
	TotalCost     decimal.Decimal `json:"total_cost"`
	Status        string          `json:"status"`
}

// CorrectionDTO is one adjustment applied to a prior order.
type CorrectionDTO struct {
	OfficeID         uint            `json:"office_id"`
	DistributorID    uint            `json:"distributor_id"`
	OrderDate        string          `json:"order_date"`
	Tier             int             `json:"tier"`
	QuantityIncrease decimal.Decimal `json:"quantity_increase"`
	QuantityDecrease decimal.Decimal `json:"quantity_decrease"`
	CorrectionCost   decimal.Decimal `json:"correction_cost"`
}

// InventorySnapshotDTO is one projected end-of-day warehouse state.
type InventorySnapshotDTO struct {
	OfficeID           uint            `json:"office_id"`
	Date               string          `json:"date"`
	InventoryLevel     decimal.Decimal `json:"inventory_level"`
	DemandFulfilled    decimal.Decimal `json:"demand_fulfilled"`
	LossAmount         decimal.Decimal `json:"loss_amount"`
	DeliveriesReceived decimal.Decimal `json:"deliveries_received"`
	IsProjected        bool            `json:"is_projected"`
}

// PlanDTO is the full optimization response.
type PlanDTO struct {
	ID                   uint                   `json:"id"`
	OfficeIDs            []uint                 `json:"office_ids"`
	PlanningHorizonStart string                 `json:"planning_horizon_start"`
	PlanningHorizonEnd   string                 `json:"planning_horizon_end"`
	SolverStatus         string                 `json:"solver_status"`
	TotalCost            *decimal.Decimal       `json:"total_cost,omitempty"`
	CorrectionCost       *decimal.Decimal       `json:"correction_cost,omitempty"`
	GapExceeded          bool                   `json:"gap_exceeded,omitempty"`
	SolveTimeMs          int64                  `json:"solve_time_ms"`
	IsCorrectionMode     bool                   `json:"is_correction_mode"`
	CreatedAt            time.Time              `json:"created_at"`
	Orders               []OrderDTO             `json:"orders"`
	Corrections          []CorrectionDTO        `json:"corrections,omitempty"`
	InventoryProjections []InventorySnapshotDTO `json:"inventory_projections"`
}

const dateLayout = "2006-01-02"

func pln(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// NewPlanDTO projects a domain result into its API shape.
func NewPlanDTO(result *planning.PlanResult) *PlanDTO {
	dto := &PlanDTO{
		ID:                   result.ID,
		OfficeIDs:            result.Request.OfficeIDs,
		PlanningHorizonStart: result.Request.HorizonStart.Format(dateLayout),
		PlanningHorizonEnd:   result.Request.HorizonEnd().Format(dateLayout),
		SolverStatus:         string(result.Status),
		GapExceeded:          result.GapExceeded,
		SolveTimeMs:          result.SolveMillis,
		IsCorrectionMode:     result.Request.IsCorrection,
		CreatedAt:            result.CreatedAt,
		Orders:               make([]OrderDTO, 0, len(result.Orders)),
		InventoryProjections: make([]InventorySnapshotDTO, 0, len(result.Inventory)),
	}

	if result.Status == planning.StatusOptimal {
		total := pln(result.Objective)
		dto.TotalCost = &total
		if result.Request.IsCorrection {
			correction := pln(result.CorrectionCost)
			dto.CorrectionCost = &correction
		}
	}

	for _, o := range result.Orders {
		dto.Orders = append(dto.Orders, OrderDTO{
			OfficeID:      o.OfficeID,
			DistributorID: o.DistributorID,
			OrderDate:     o.OrderDate.Format(dateLayout),
			DeliveryDate:  o.DeliveryDate.Format(dateLayout),
			QuantityKg:    pln(o.QtyKg),
			Tier:          o.Tier,
			UnitPrice:     pln(o.UnitPrice),
			TransportCost: pln(o.TransportCost),
			TotalCost:     pln(o.TotalCost),
			Status:        "planned",
		})
	}

	for _, c := range result.Corrections {
		dto.Corrections = append(dto.Corrections, CorrectionDTO{
			OfficeID:         c.OfficeID,
			DistributorID:    c.DistributorID,
			OrderDate:        result.Request.HorizonStart.AddDate(0, 0, c.PlacementDay).Format(dateLayout),
			Tier:             c.Tier,
			QuantityIncrease: pln(c.IncreaseKg),
			QuantityDecrease: pln(c.DecreaseKg),
			CorrectionCost:   pln(c.Cost),
		})
	}

	for _, s := range result.Inventory {
		dto.InventoryProjections = append(dto.InventoryProjections, InventorySnapshotDTO{
			OfficeID:           s.OfficeID,
			Date:               s.Date.Format(dateLayout),
			InventoryLevel:     pln(s.Level),
			DemandFulfilled:    pln(s.DemandFulfilled),
			LossAmount:         pln(s.Loss),
			DeliveriesReceived: pln(s.DeliveriesReceived),
			IsProjected:        s.IsProjected,
		})
	}

	return dto
}
