package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/nutriflow/backend/internal/mealplan"
	"github.com/nutriflow/backend/internal/models"
	"github.com/nutriflow/backend/internal/service"
	"github.com/nutriflow/backend/internal/types"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newGenerateCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Fill meal slots for a patient and print the result as JSON",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return v.BindPFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runGenerate(ctx, v, cmd.OutOrStdout())
		},
	}

	cmd.Flags().String("slots", "", "JSON file with the meal slots to fill")
	cmd.Flags().String("patient", "", "JSON file with the patient profile")
	cmd.Flags().String("catalog", "", "JSON file with the food catalog (default: read Postgres)")
	cmd.Flags().Int64("seed", 0, "random seed; 0 picks one from the clock")
	cmd.Flags().Int("candidate-limit", mealplan.DefaultCandidateLimit, "maximum candidates fetched per query")
	cmd.MarkFlagRequired("slots")

	return cmd
}

func runGenerate(ctx context.Context, v *viper.Viper, out io.Writer) error {
	var slots []models.MealSlot
	if err := readJSON(v.GetString("slots"), &slots); err != nil {
		return err
	}

	var patient *models.PatientProfile
	if path := v.GetString("patient"); path != "" {
		patient = &models.PatientProfile{}
		if err := readJSON(path, patient); err != nil {
			return err
		}
	}

	repo, err := openCatalog(v)
	if err != nil {
		return err
	}

	opts := []mealplan.Option{
		mealplan.WithCandidateLimit(v.GetInt("candidate-limit")),
		mealplan.WithLogger(log.New(os.Stderr, "", log.LstdFlags)),
	}
	if seed := v.GetInt64("seed"); seed != 0 {
		opts = append(opts, mealplan.WithSeed(seed))
	}

	filled, report := mealplan.NewGenerator(repo, opts...).GenerateWithReport(ctx, slots, patient)

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(types.PreviewResponse{Slots: filled, Report: report})
}

// openCatalog reads the JSON catalog when one is given and the database
// otherwise.
func openCatalog(v *viper.Viper) (mealplan.CandidateRepository, error) {
	if path := v.GetString("catalog"); path != "" {
		var foods []models.Food
		if err := readJSON(path, &foods); err != nil {
			return nil, err
		}
		return mealplan.NewMemoryCatalog(foods...), nil
	}

	dsn := v.GetString("database-url")
	if dsn == "" {
		return nil, fmt.Errorf("either --catalog or DATABASE_URL is required")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return service.NewFoodService(db), nil
}

func readJSON(path string, v interface{}) error {
	if path == "" {
		return fmt.Errorf("no file given")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}
