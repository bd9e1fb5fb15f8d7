package config

// BenchmarkConfig points at the static inputs and selects the instances of a
// batch run.
type BenchmarkConfig struct {
	// Directory holding customers.csv, restaurants.csv, routes.csv and the
	// per-instance subdirectories
	Dir string `mapstructure:"dir" validate:"required"`

	// Instance subdirectories to simulate (selected_instances)
	Instances []string `mapstructure:"instances" validate:"min=1"`
}
