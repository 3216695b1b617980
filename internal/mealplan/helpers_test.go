package mealplan

import (
	"context"
	"io"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/nutriflow/backend/internal/models"
	"github.com/stretchr/testify/mock"
)

func testFood(name, category string, kcal float64, tags ...string) models.Food {
	return models.Food{
		ID:            uuid.New(),
		Name:          name,
		Category:      category,
		MealTags:      models.JSONBStringArray(tags),
		PortionAmount: 100,
		PortionUnit:   "g",
		Calories:      kcal,
		Protein:       kcal * 0.08,
		Carbs:         kcal * 0.1,
		Fat:           kcal * 0.03,
		Active:        true,
	}
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) FindByMealTags(ctx context.Context, tags []string, limit int) ([]models.Food, error) {
	args := m.Called(ctx, tags, limit)
	foods, _ := args.Get(0).([]models.Food)
	return foods, args.Error(1)
}

func (m *mockRepository) FindByCategory(ctx context.Context, categories []string, limit int) ([]models.Food, error) {
	args := m.Called(ctx, categories, limit)
	foods, _ := args.Get(0).([]models.Food)
	return foods, args.Error(1)
}

// failingRepository fails every query that mentions failOn.
type failingRepository struct {
	CandidateRepository
	failOn string
	err    error
}

func (r *failingRepository) FindByMealTags(ctx context.Context, tags []string, limit int) ([]models.Food, error) {
	if containsFold(tags, r.failOn) {
		return nil, r.err
	}
	return r.CandidateRepository.FindByMealTags(ctx, tags, limit)
}

func (r *failingRepository) FindByCategory(ctx context.Context, categories []string, limit int) ([]models.Food, error) {
	if containsFold(categories, r.failOn) {
		return nil, r.err
	}
	return r.CandidateRepository.FindByCategory(ctx, categories, limit)
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

func itemIDs(slots []models.MealSlot) []uuid.UUID {
	var ids []uuid.UUID
	for _, s := range slots {
		for _, it := range s.Items {
			ids = append(ids, it.FoodID)
		}
	}
	return ids
}
