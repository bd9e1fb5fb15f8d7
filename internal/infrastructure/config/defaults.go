package config

import "time"

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// Simulation defaults
	if cfg.Simulation.RunFrequencyMinutes == 0 {
		cfg.Simulation.RunFrequencyMinutes = 10
	}
	if cfg.Simulation.Lamda == 0 {
		cfg.Simulation.Lamda = 10.0
	}
	if cfg.Simulation.RandomSeed == 0 {
		cfg.Simulation.RandomSeed = 10000
	}
	if cfg.Simulation.Policy == "" {
		cfg.Simulation.Policy = "greedy"
	}
	if cfg.Simulation.RouteCap == 0 {
		cfg.Simulation.RouteCap = 8
	}
	if cfg.Simulation.TightRouteCap == 0 {
		cfg.Simulation.TightRouteCap = 6
	}

	// Benchmark defaults
	if cfg.Benchmark.Dir == "" {
		cfg.Benchmark.Dir = "./benchmark"
	}
	if len(cfg.Benchmark.Instances) == 0 {
		cfg.Benchmark.Instances = []string{"instance_1"}
	}

	// Algorithm defaults
	if cfg.Algorithm.Mode == "" {
		cfg.Algorithm.Mode = "inprocess"
	}
	if cfg.Algorithm.ExchangeDir == "" {
		cfg.Algorithm.ExchangeDir = "./algorithm"
	}
	if cfg.Algorithm.EntryPrefix == "" {
		cfg.Algorithm.EntryPrefix = "main_algorithm"
	}
	if cfg.Algorithm.SuccessFlag == "" {
		cfg.Algorithm.SuccessFlag = "SUCCESS"
	}
	if cfg.Algorithm.MaxRuntimeSeconds == 0 {
		cfg.Algorithm.MaxRuntimeSeconds = 600
	}

	// Database defaults
	if cfg.Database.Type == "" {
		cfg.Database.Type = "sqlite"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "mealdelivery"
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "mealdelivery"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "./meal-delivery.db"
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

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}
