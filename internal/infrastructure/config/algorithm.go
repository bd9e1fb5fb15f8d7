package config

// AlgorithmConfig describes how the dispatch policy is invoked each tick.
type AlgorithmConfig struct {
	// Invocation mode: "inprocess" runs the built-in policy directly,
	// "subprocess" goes through the four-file exchange
	Mode string `mapstructure:"mode" validate:"required,oneof=inprocess subprocess"`

	// Directory the exchange files are rewritten in
	ExchangeDir string `mapstructure:"exchange_dir"`

	// Explicit shell command for the algorithm; when empty the exchange dir
	// is scanned for a file named EntryPrefix* and the command is derived
	// from its extension
	Command string `mapstructure:"command"`

	// File-name prefix of the algorithm entry (ALGORITHM_ENTRY_FILE_NAME)
	EntryPrefix string `mapstructure:"entry_prefix"`

	// Substring the algorithm must print on stdout (ALGORITHM_SUCCESS_FLAG)
	SuccessFlag string `mapstructure:"success_flag" validate:"required"`

	// Wall-clock limit per invocation in seconds (MAX_RUNTIME_OF_ALGORITHM)
	MaxRuntimeSeconds int `mapstructure:"max_runtime_seconds" validate:"min=1"`
}
