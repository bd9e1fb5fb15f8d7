package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/YJFKD/Food-delivery-simulator/internal/adapters/persistence"
	"github.com/YJFKD/Food-delivery-simulator/internal/infrastructure/config"
	"github.com/YJFKD/Food-delivery-simulator/internal/infrastructure/database"
)

// NewScoresCommand lists persisted run scores
func NewScoresCommand() *cobra.Command {
	var limit int
	var instance string

	cmd := &cobra.Command{
		Use:   "scores",
		Short: "List persisted simulation runs and their scores",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}

			db, err := database.NewConnection(&cfg.Database)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer database.Close(db)
			if err := database.AutoMigrate(db); err != nil {
				return fmt.Errorf("migrate database: %w", err)
			}

			repo := persistence.NewRunRepository(db)
			var runs []persistence.RunModel
			if instance != "" {
				runs, err = repo.GetByInstance(context.Background(), instance)
			} else {
				runs, err = repo.List(context.Background(), limit)
			}
			if err != nil {
				return err
			}

			if len(runs) == 0 {
				fmt.Println("no persisted runs")
				return nil
			}
			fmt.Printf("%-36s  %-18s  %-8s  %-12s  %s\n", "run", "instance", "policy", "score", "finished")
			for _, run := range runs {
				score := fmt.Sprintf("%.6f", run.Score)
				if run.Failed {
					score = "inf"
				}
				fmt.Printf("%-36s  %-18s  %-8s  %-12s  %s\n",
					run.ID, run.Instance, run.Policy, score, run.FinishedAt.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list")
	cmd.Flags().StringVar(&instance, "instance", "", "Only list runs of this instance")
	return cmd
}
