package config

import "time"

// SolverConfig holds optimization engine configuration
type SolverConfig struct {
	// Wall-clock budget per solve
	TimeLimit time.Duration `mapstructure:"time_limit" validate:"required"`

	// Relative optimality gap at which the search stops
	MIPGap float64 `mapstructure:"mip_gap" validate:"gt=0,lt=1"`

	// Maximum distance of a binary from {0,1} before rejection
	IntegralityTolerance float64 `mapstructure:"integrality_tolerance" validate:"gt=0,lt=1"`

	// Maximum concurrently running solves; further requests are rejected
	MaxConcurrent int64 `mapstructure:"max_concurrent" validate:"min=1"`
}
