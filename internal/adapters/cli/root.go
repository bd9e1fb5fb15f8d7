// Package cli wires the meal-delivery binary: the batch simulator, the
// algorithm side of the file exchange, and inspection of persisted scores.
package cli

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/YJFKD/Food-delivery-simulator/internal/infrastructure/config"
)

var (
	// Global flags
	configPath string
	verbose    bool
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "meal-delivery",
		Short: "Meal-delivery fleet simulator and online dispatcher",
		Long: `meal-delivery simulates a last-mile meal-delivery fleet against benchmark
instances: couriers pick up orders at restaurants and deliver them to
customers while a dispatch policy assigns work every tick.

Examples:
  meal-delivery run
  meal-delivery run --config configs/config.yaml
  meal-delivery dispatch --dir ./algorithm
  meal-delivery scores --limit 20`,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config file (default: config.yaml in ., ./configs, /etc/meal-delivery)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose output")

	rootCmd.AddCommand(NewRunCommand())
	rootCmd.AddCommand(NewDispatchCommand())
	rootCmd.AddCommand(NewScoresCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setupLogging points the stdlib logger at the configured destination.
func setupLogging(cfg *config.LoggingConfig) {
	switch cfg.Output {
	case "stderr":
		log.SetOutput(os.Stderr)
	case "file":
		if cfg.FilePath != "" {
			f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				log.Printf("cli: cannot open log file %s, keeping stdout: %v", cfg.FilePath, err)
				return
			}
			log.SetOutput(f)
		}
	default:
		log.SetOutput(os.Stdout)
	}
}
