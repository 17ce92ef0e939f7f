package config

import "time"

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// Database defaults
	if cfg.Database.Type == "" {
		cfg.Database.Type = "postgres"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "coffeeplan"
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "coffeeplan"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Pool.MaxOpen == 0 {
		cfg.Database.Pool.MaxOpen = 25
	}
	if cfg.Database.Pool.MaxIdle == 0 {
		cfg.Database.Pool.MaxIdle = 5
	}
	if cfg.Database.Pool.MaxLifetime == 0 {
		cfg.Database.Pool.MaxLifetime = 5 * time.Minute
	}

	// Server defaults
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		// Solves can take the full budget; leave headroom above it
		cfg.Server.WriteTimeout = 60 * time.Second
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"*"}
	}

	// Solver defaults
	if cfg.Solver.TimeLimit == 0 {
		cfg.Solver.TimeLimit = 30 * time.Second
	}
	if cfg.Solver.MIPGap == 0 {
		cfg.Solver.MIPGap = 1e-4
	}
	if cfg.Solver.IntegralityTolerance == 0 {
		cfg.Solver.IntegralityTolerance = 1e-6
	}
	if cfg.Solver.MaxConcurrent == 0 {
		cfg.Solver.MaxConcurrent = 4
	}

	// Demand defaults
	if cfg.Demand.KgPerWorker == 0 {
		cfg.Demand.KgPerWorker = 0.25
	}
	if cfg.Demand.ConferenceFactor == 0 {
		cfg.Demand.ConferenceFactor = 1.2
	}
	if cfg.Demand.MockBaseWorkers == 0 {
		cfg.Demand.MockBaseWorkers = 50
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}
