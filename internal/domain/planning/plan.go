package planning

import "time"

// PlanStatus is the typed outcome of a solver run.
type PlanStatus string

const (
	StatusOptimal     PlanStatus = "OPTIMAL"
	StatusInfeasible  PlanStatus = "INFEASIBLE"
	StatusTimedOut    PlanStatus = "TIMED_OUT"
	StatusSolverError PlanStatus = "SOLVER_ERROR"
)

// PlanRequest is the planner-facing request after schema validation. One
// request yields exactly one PlanResult.
type PlanRequest struct {
	OfficeIDs        []uint
	HorizonStart     time.Time
	HorizonDays      int
	InitialInventory map[uint]float64 // I0 per office [kg]
	IsCorrection     bool
	PriorPlanID      uint // set iff IsCorrection
}

// HorizonEnd returns the last covered calendar day.
func (r PlanRequest) HorizonEnd() time.Time {
	return r.HorizonStart.AddDate(0, 0, r.HorizonDays-1)
}

// OrderIntent is one planned purchase: place an order of QtyKg with a
// distributor on PlacementDay, to arrive at the office on DeliveryDay.
// UnitPrice is the price of the tier actually reached by the total quantity.
type OrderIntent struct {
	OfficeID      uint
	DistributorID uint
	PlacementDay  int // day index t within the horizon
	DeliveryDay   int // t + lead time; may exceed the horizon
	OrderDate     time.Time
	DeliveryDate  time.Time
	QtyKg         float64
	Tier          int     // achieved tier index, 0..L
	UnitPrice     float64 // [PLN/kg]
	TransportCost float64 // [PLN], Cfix of the route
	TotalCost     float64 // QtyKg*UnitPrice + TransportCost
}

// OrderCorrection records a bounded adjustment applied to a previously
// committed order during a correction run.
type OrderCorrection struct {
	OfficeID      uint
	DistributorID uint
	PlacementDay  int
	Tier          int
	PriorOrderID  uint // 0 when the prior order cannot be resolved to a row
	IncreaseKg    float64
	DecreaseKg    float64
	Cost          float64 // K * (increase + decrease) [PLN]
}

// InventorySnapshot is the projected end-of-day warehouse state of one office.
type InventorySnapshot struct {
	OfficeID           uint
	Day                int
	Date               time.Time
	Level              float64 // I[b,t] [kg]
	DemandFulfilled    float64
	Loss               float64 // alpha * previous level
	DeliveriesReceived float64
	IsProjected        bool
}

// PlanResult is the durable outcome of one planning run. Orders, corrections
// and snapshots are present iff Status == StatusOptimal.
type PlanResult struct {
	ID             uint
	Request        PlanRequest
	Status         PlanStatus
	StatusReason   string // populated for SOLVER_ERROR
	Objective      float64
	CorrectionCost float64
	GapExceeded    bool
	SolveMillis    int64
	CreatedAt      time.Time

	Orders      []OrderIntent
	Corrections []OrderCorrection
	Inventory   []InventorySnapshot
}
