package planning

import "math"

// DemandConfig holds the coefficients of the consumption model. Values are
// seeded into system_parameters and may be overridden per deployment; the
// estimator itself never reads global state.
type DemandConfig struct {
	// KgPerWorker is the expected coffee consumption per worker per day [kg]
	KgPerWorker float64

	// ConferenceFactor is the multiplicative bump applied once per conference
	ConferenceFactor float64
}

// DefaultDemandConfig returns the coefficients used when no override is configured.
func DefaultDemandConfig() DemandConfig {
	return DemandConfig{
		KgPerWorker:      0.25,
		ConferenceFactor: 1.2,
	}
}

// EstimateDemand computes the expected consumption for a single office-day:
//
//	D = workers * kgPerWorker * conferenceFactor^conferences
//
// The function is pure: identical inputs always produce the identical float.
func (c DemandConfig) EstimateDemand(workers, conferences int) float64 {
	if workers <= 0 {
		return 0
	}
	demand := float64(workers) * c.KgPerWorker
	if conferences > 0 {
		demand *= math.Pow(c.ConferenceFactor, float64(conferences))
	}
	return demand
}

// EstimateDailyDemand maps per-day headcount and conference load onto a demand
// series. Both slices must have the same length; the caller validates that
// against the planning horizon.
func (c DemandConfig) EstimateDailyDemand(workers, conferences []int) []float64 {
	demands := make([]float64, len(workers))
	for t := range workers {
		demands[t] = c.EstimateDemand(workers[t], conferences[t])
	}
	return demands
}
