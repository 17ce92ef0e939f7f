package planning

// Tariff is a distributor's volume-tier price card. Thresholds[0] is always 0;
// Thresholds[1..L] are the strictly increasing tier boundaries in kg. Tier 0
// covers quantities below Thresholds[1], tier l the increment above
// Thresholds[l]. TierPrices[l] is the base unit price of tier l [PLN/kg];
// DailyFactors optionally scales prices per planning day (empty means flat).
type Tariff struct {
	Thresholds   []float64 // length L+1, Thresholds[0] == 0
	TierPrices   []float64 // length L+1, price of tier 0..L
	DailyFactors []float64 // optional per-day multiplier, length T or empty
}

// Levels returns L, the number of thresholds above zero.
func (t Tariff) Levels() int {
	return len(t.Thresholds) - 1
}

// UnitPrice returns the price of tier l on planning day t.
func (t Tariff) UnitPrice(day, tier int) float64 {
	price := t.TierPrices[tier]
	if day < len(t.DailyFactors) {
		price *= t.DailyFactors[day]
	}
	return price
}

// Validate checks the tariff's structural invariants.
func (t Tariff) Validate() error {
	if len(t.Thresholds) == 0 || t.Thresholds[0] != 0 {
		return NewInvalidInputError("tier_thresholds", "first threshold must be 0")
	}
	if len(t.TierPrices) != len(t.Thresholds) {
		return NewInvalidInputError("tier_prices", "must define one price per tier")
	}
	for l := 1; l < len(t.Thresholds); l++ {
		if t.Thresholds[l] <= t.Thresholds[l-1] {
			return NewInvalidInputError("tier_thresholds", "must be strictly increasing")
		}
	}
	for _, p := range t.TierPrices {
		if p < 0 {
			return NewInvalidInputError("tier_prices", "must be non-negative")
		}
	}
	for _, f := range t.DailyFactors {
		if f < 0 {
			return NewInvalidInputError("daily_price_factors", "must be non-negative")
		}
	}
	return nil
}

// Route describes a distributor-to-office delivery leg.
type Route struct {
	OfficeID  uint
	FixedCost float64 // Cfix [PLN], charged once per delivery day
	LeadTime  int     // X [days], >= 0
}

// Distributor is a coffee supplier with a tariff, per-office routes and a
// daily supply cap.
type Distributor struct {
	ID          uint
	Name        string
	Description string
	IsActive    bool
	Tariff      Tariff
	Routes      []Route
	SupplyCaps  []float64 // S[t] per planning day; a single element means flat
}

// RouteTo returns the delivery leg to the given office, or nil when the
// distributor does not serve it.
func (d *Distributor) RouteTo(officeID uint) *Route {
	for i := range d.Routes {
		if d.Routes[i].OfficeID == officeID {
			return &d.Routes[i]
		}
	}
	return nil
}

// SupplyCap returns S[t], falling back to the flat cap when no per-day series
// is configured.
func (d *Distributor) SupplyCap(day int) float64 {
	if len(d.SupplyCaps) == 0 {
		return 0
	}
	if day < len(d.SupplyCaps) {
		return d.SupplyCaps[day]
	}
	return d.SupplyCaps[len(d.SupplyCaps)-1]
}
