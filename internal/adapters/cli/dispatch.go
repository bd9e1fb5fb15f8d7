package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/YJFKD/Food-delivery-simulator/internal/adapters/exchange"
	"github.com/YJFKD/Food-delivery-simulator/internal/adapters/files"
	"github.com/YJFKD/Food-delivery-simulator/internal/infrastructure/config"
)

// NewDispatchCommand creates the algorithm side of the file exchange: read
// the three input files, run the built-in policy, write the two output files
// and print the success flag.
func NewDispatchCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "dispatch",
		Short: "Run one dispatch over the exchange files in a directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}
			setupLogging(&cfg.Logging)

			loader := files.NewLoader(cfg.Benchmark.Dir)
			locations, err := loader.LoadLocations()
			if err != nil {
				return err
			}
			routeMap, err := loader.LoadRouteMap()
			if err != nil {
				return err
			}

			snapshot, err := exchange.ReadInputs(dir, locations, routeMap)
			if err != nil {
				return err
			}
			result, err := builtinPolicy(cfg).Dispatch(context.Background(), snapshot)
			if err != nil {
				return err
			}
			if err := exchange.WriteOutputs(dir, result); err != nil {
				return err
			}

			fmt.Println(cfg.Algorithm.SuccessFlag)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "Directory holding the exchange files")
	return cmd
}
