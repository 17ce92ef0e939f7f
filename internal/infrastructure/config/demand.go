package config

// DemandConfig holds the consumption model coefficients. Values seeded into
// system_parameters take precedence at runtime; these are install defaults.
type DemandConfig struct {
	// Expected coffee consumption per worker per day [kg]
	KgPerWorker float64 `mapstructure:"kg_per_worker" validate:"gt=0"`

	// Multiplicative bump applied once per conference
	ConferenceFactor float64 `mapstructure:"conference_factor" validate:"gte=1"`

	// Baseline headcount used by the mock forecaster
	MockBaseWorkers int `mapstructure:"mock_base_workers" validate:"min=1"`
}
