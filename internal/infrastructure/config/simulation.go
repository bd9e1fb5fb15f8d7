package config

// SimulationConfig holds the virtual-time and dispatch-policy settings.
type SimulationConfig struct {
	// Minutes of virtual time per tick (ALG_RUN_FREQUENCY)
	RunFrequencyMinutes int `mapstructure:"run_frequency_minutes" validate:"min=1"`

	// Weight of the lateness term in the score (LAMDA)
	Lamda float64 `mapstructure:"lamda" validate:"gt=0"`

	// Seed for the per-dispatch PRNG (RANDOM_SEED)
	RandomSeed int64 `mapstructure:"random_seed"`

	// Dispatch policy: "greedy" (insertion heuristic) or "nearest"
	Policy string `mapstructure:"policy" validate:"required,oneof=greedy nearest"`

	// Soft cap on planned-route length for new assignments
	RouteCap int `mapstructure:"route_cap" validate:"min=1"`

	// Stricter cap applied to the nearest-driver candidate
	TightRouteCap int `mapstructure:"tight_route_cap" validate:"min=1"`
}
