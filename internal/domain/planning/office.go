package planning

// Office is a building with its own coffee warehouse. Physical parameters are
// maintained through the admin flow; the planner only reads them.
type Office struct {
	ID       uint
	Name     string
	Address  string
	Capacity float64 // Vmax [kg], > 0
	LossRate float64 // alpha, fraction of end-of-day stock lost overnight
	IsActive bool
}

// NewOffice validates the physical parameters and returns an office.
func NewOffice(id uint, name string, capacity, lossRate float64) (*Office, error) {
	if capacity <= 0 {
		return nil, NewInvalidInputError("storage_capacity_kg", "must be positive")
	}
	if lossRate < 0 || lossRate > 1 {
		return nil, NewInvalidInputError("daily_loss_fraction", "must be within [0, 1]")
	}
	return &Office{
		ID:       id,
		Name:     name,
		Capacity: capacity,
		LossRate: lossRate,
		IsActive: true,
	}, nil
}
