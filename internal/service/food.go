package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/nutriflow/backend/internal/mealplan"
	"github.com/nutriflow/backend/internal/models"
	"gorm.io/gorm"
)

var ErrFoodNotFound = errors.New("food not found")

// CandidateInvalidator forgets cached candidate lists after the catalog changes.
type CandidateInvalidator interface {
	Invalidate(ctx context.Context) error
}

// FoodService reads and writes the food catalog
type FoodService struct {
	db    *gorm.DB
	cache CandidateInvalidator
}

var (
	_ IFoodService                 = (*FoodService)(nil)
	_ mealplan.CandidateRepository = (*FoodService)(nil)
)

// NewFoodService creates a new FoodService instance
func NewFoodService(db *gorm.DB) *FoodService {
	return &FoodService{db: db}
}

// WithCandidateCache makes catalog writes invalidate cache.
func (s *FoodService) WithCandidateCache(cache CandidateInvalidator) *FoodService {
	s.cache = cache
	return s
}

// CreateFood inserts a catalog entry
func (s *FoodService) CreateFood(ctx context.Context, food *models.Food) (*models.Food, error) {
	food.MealTags = models.JSONBStringArray(cleanKeys(food.MealTags))
	food.Category = strings.ToLower(strings.TrimSpace(food.Category))
	if err := s.db.WithContext(ctx).Create(food).Error; err != nil {
		return nil, fmt.Errorf("failed to create food: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			log.Printf("[FoodService] Failed to invalidate candidate cache: %v", err)
		}
	}
	return food, nil
}

// GetFood retrieves a food by ID
func (s *FoodService) GetFood(ctx context.Context, id uuid.UUID) (*models.Food, error) {
	var food models.Food
	if err := s.db.WithContext(ctx).First(&food, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFoodNotFound
		}
		return nil, fmt.Errorf("failed to get food: %w", err)
	}
	return &food, nil
}

// FindByMealTags returns active foods tagged with any of tags, ordered by name
func (s *FoodService) FindByMealTags(ctx context.Context, tags []string, limit int) ([]models.Food, error) {
	tags = cleanKeys(tags)
	if len(tags) == 0 {
		return []models.Food{}, nil
	}

	query := s.activeFoods(ctx, limit)
	if s.db.Dialector.Name() == "postgres" {
		query = query.Where("jsonb_exists_any(meal_tags, ?::text[])", pq.StringArray(tags))
	} else {
		conds := make([]string, len(tags))
		args := make([]interface{}, len(tags))
		for i, tag := range tags {
			conds[i] = "LOWER(meal_tags) LIKE ?"
			args[i] = `%"` + tag + `"%`
		}
		query = query.Where(strings.Join(conds, " OR "), args...)
	}

	var foods []models.Food
	if err := query.Find(&foods).Error; err != nil {
		return nil, fmt.Errorf("failed to find foods by meal tags: %w", err)
	}
	return foods, nil
}

// FindByCategory returns active foods in any of categories, ordered by name
func (s *FoodService) FindByCategory(ctx context.Context, categories []string, limit int) ([]models.Food, error) {
	categories = cleanKeys(categories)
	if len(categories) == 0 {
		return []models.Food{}, nil
	}

	var foods []models.Food
	err := s.activeFoods(ctx, limit).
		Where("LOWER(category) IN ?", categories).
		Find(&foods).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find foods by category: %w", err)
	}
	return foods, nil
}

func (s *FoodService) activeFoods(ctx context.Context, limit int) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&models.Food{}).
		Where("active = ?", true).
		Order("name ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	return query
}

// cleanKeys lower-cases and trims keys, dropping blanks and duplicates.
func cleanKeys(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
