package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nutriflow/backend/internal/factories"
	"github.com/nutriflow/backend/internal/service"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newSeedCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Bulk-load synthetic foods into the catalog",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return v.BindPFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runSeed(ctx, v)
		},
	}

	cmd.Flags().Int("count", 1000, "number of foods to create")
	cmd.Flags().Int64("seed", 42, "random seed for the food factory")

	return cmd
}

func runSeed(ctx context.Context, v *viper.Viper) error {
	count := v.GetInt("count")
	if count <= 0 {
		return fmt.Errorf("count must be positive")
	}
	dsn := v.GetString("database-url")
	if dsn == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	foods := factories.NewSeededFoodFactory(v.GetInt64("seed")).CreateCatalog(count)

	bar := progressbar.Default(int64(count), "seeding foods")
	n, err := service.NewFoodImporter(pool).Import(ctx, foods, func(rows int) {
		bar.Add(rows)
	})
	if err != nil {
		return err
	}

	log.Printf("[Seed] Inserted %d foods", n)
	return nil
}
