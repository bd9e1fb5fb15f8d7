package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/YJFKD/Food-delivery-simulator/internal/adapters/exchange"
	"github.com/YJFKD/Food-delivery-simulator/internal/adapters/files"
	"github.com/YJFKD/Food-delivery-simulator/internal/adapters/persistence"
	"github.com/YJFKD/Food-delivery-simulator/internal/application/batch"
	"github.com/YJFKD/Food-delivery-simulator/internal/domain/dispatch"
	"github.com/YJFKD/Food-delivery-simulator/internal/domain/history"
	"github.com/YJFKD/Food-delivery-simulator/internal/domain/shared"
	"github.com/YJFKD/Food-delivery-simulator/internal/infrastructure/config"
	"github.com/YJFKD/Food-delivery-simulator/internal/infrastructure/database"
)

// NewRunCommand creates the batch simulation command
func NewRunCommand() *cobra.Command {
	var instances []string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Simulate the configured benchmark instances and report scores",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}
			setupLogging(&cfg.Logging)

			selected := cfg.Benchmark.Instances
			if len(instances) > 0 {
				selected = instances
			}

			clock := shared.NewRealClock()
			newDispatcher, err := dispatcherFactory(cfg, clock)
			if err != nil {
				return err
			}

			runner := batch.NewRunner(files.NewLoader(cfg.Benchmark.Dir), newDispatcher, clock,
				batch.Options{
					Policy:          cfg.Simulation.Policy,
					Seed:            cfg.Simulation.RandomSeed,
					Lamda:           cfg.Simulation.Lamda,
					IntervalSeconds: int64(cfg.Simulation.RunFrequencyMinutes) * 60,
					MaxRuntime:      time.Duration(cfg.Algorithm.MaxRuntimeSeconds) * time.Second,
				})

			if db, err := database.NewConnection(&cfg.Database); err != nil {
				log.Printf("cli: database unavailable, runs will not be persisted: %v", err)
			} else {
				defer database.Close(db)
				if err := database.AutoMigrate(db); err != nil {
					return fmt.Errorf("migrate database: %w", err)
				}
				runner.WithPersistence(persistence.NewRunRepository(db), persistence.NewHistoryRepository(db))
			}

			report, err := runner.Run(context.Background(), selected)
			if err != nil {
				return err
			}
			printReport(report)

			for _, result := range report.Results {
				if result.Err != nil {
					return fmt.Errorf("instance %s aborted: %w", result.Instance, result.Err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&instances, "instances", nil,
		"Instance directories to simulate (overrides the config selection)")
	return cmd
}

func printReport(report *batch.Report) {
	fmt.Println("instance            score")
	for _, result := range report.Results {
		fmt.Printf("%-18s  %s\n", result.Instance, formatScore(result.Score))
	}
	if report.MeanScore == history.ScoreInfinite {
		fmt.Println("mean score: inf")
	} else {
		fmt.Printf("mean score: %.6f\n", report.MeanScore)
	}
}

func formatScore(score history.Score) string {
	if score.Failed {
		return "inf (failed)"
	}
	return fmt.Sprintf("%.6f", score.Value)
}

// dispatcherFactory builds a fresh dispatcher per instance so that the
// per-dispatch PRNG state never leaks between instances.
func dispatcherFactory(cfg *config.Config, clock shared.Clock) (func() dispatch.Dispatcher, error) {
	if cfg.Algorithm.Mode == "inprocess" {
		return func() dispatch.Dispatcher {
			return builtinPolicy(cfg)
		}, nil
	}

	command := cfg.Algorithm.Command
	if command == "" {
		found, err := exchange.FindAlgorithmCommand(cfg.Algorithm.ExchangeDir, cfg.Algorithm.EntryPrefix)
		if err != nil {
			return nil, err
		}
		command = found
	}
	if command == "" {
		// No external entry present: the simulator dispatches against its
		// own dispatch subcommand through the same file exchange.
		fallback, err := fallbackDispatchCommand(configPath)
		if err != nil {
			return nil, err
		}
		command = fallback
	}
	log.Printf("cli: algorithm command: %s", command)

	dir := cfg.Algorithm.ExchangeDir
	flag := cfg.Algorithm.SuccessFlag
	return func() dispatch.Dispatcher {
		return exchange.NewSubprocessDispatcher(dir, command, flag, clock)
	}, nil
}

// fallbackDispatchCommand builds the self-dispatch command line. The config
// path is made absolute: the subprocess runs in the exchange directory, where
// a relative path would no longer resolve.
func fallbackDispatchCommand(configPath string) (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate own binary for dispatch fallback: %w", err)
	}
	command := exe + " dispatch"
	if configPath != "" {
		abs, err := filepath.Abs(configPath)
		if err != nil {
			return "", fmt.Errorf("resolve config path %s: %w", configPath, err)
		}
		command += " --config " + abs
	}
	return command, nil
}

func builtinPolicy(cfg *config.Config) dispatch.Dispatcher {
	if cfg.Simulation.Policy == "nearest" {
		return dispatch.NewNearestDriverPolicy()
	}
	return dispatch.NewGreedyInsertionPolicy(cfg.Simulation.RandomSeed,
		cfg.Simulation.RouteCap, cfg.Simulation.TightRouteCap)
}
