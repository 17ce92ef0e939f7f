package planning

import "context"

// PriorOrder is a previously persisted order used to seed a correction run.
type PriorOrder struct {
	ID uint
	OrderIntent
}

// OfficeRepository provides read access to office parameters.
type OfficeRepository interface {
	FindByID(ctx context.Context, id uint) (*Office, error)
	FindByIDs(ctx context.Context, ids []uint) ([]*Office, error)
}

// DistributorRepository provides read access to distributor tariffs, routes
// and supply caps.
type DistributorRepository interface {
	// FindActiveServing returns active distributors that route to every
	// office in the set, in stable id order.
	FindActiveServing(ctx context.Context, officeIDs []uint) ([]*Distributor, error)
}

// PlanRepository persists plan results and resolves prior plans for
// correction runs. SaveResult writes the result, its orders, corrections and
// snapshots in one transaction; no partial write is ever visible.
type PlanRepository interface {
	SaveResult(ctx context.Context, result *PlanResult) error
	FindByID(ctx context.Context, id uint) (*PlanResult, error)
	FindWithResults(ctx context.Context, id uint) (*PlanResult, error)
	FindRecent(ctx context.Context, officeID uint, limit int) ([]*PlanResult, error)
	FindPriorOrders(ctx context.Context, planID uint) ([]PriorOrder, error)
}

// SystemParameterRepository reads tunable coefficients (demand model,
// correction cost factors) seeded at install time.
type SystemParameterRepository interface {
	GetFloat(ctx context.Context, name string, fallback float64) (float64, error)
}
