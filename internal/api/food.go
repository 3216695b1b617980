package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nutriflow/backend/internal/mealplan"
	"github.com/nutriflow/backend/internal/models"
	"github.com/nutriflow/backend/internal/service"
	"github.com/nutriflow/backend/internal/types"
)

const maxFoodListLimit = 500

type FoodHandler struct {
	candidates mealplan.CandidateRepository
	foods      service.IFoodService
}

// NewFoodHandler serves lookups through candidates, which is the same
// repository the generator reads, and writes through foods.
func NewFoodHandler(candidates mealplan.CandidateRepository, foods service.IFoodService) *FoodHandler {
	return &FoodHandler{candidates: candidates, foods: foods}
}

func (h *FoodHandler) RegisterRoutes(router *gin.RouterGroup) {
	foods := router.Group("/foods")
	{
		foods.GET("", h.ListFoods)
		foods.POST("", h.CreateFood)
	}
}

// ListFoods looks foods up by meal_tag and/or category (comma separated)
func (h *FoodHandler) ListFoods(c *gin.Context) {
	tags := splitList(c.Query("meal_tag"))
	categories := splitList(c.Query("category"))
	if len(tags) == 0 && len(categories) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "meal_tag or category is required"})
		return
	}

	limit := mealplan.DefaultCandidateLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxFoodListLimit {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 500"})
			return
		}
		limit = n
	}

	ctx := c.Request.Context()
	var foods []models.Food
	seen := make(map[uuid.UUID]struct{})
	add := func(batch []models.Food) {
		for _, f := range batch {
			if _, ok := seen[f.ID]; ok {
				continue
			}
			seen[f.ID] = struct{}{}
			foods = append(foods, f)
		}
	}

	if len(tags) > 0 {
		batch, err := h.candidates.FindByMealTags(ctx, tags, limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch foods"})
			return
		}
		add(batch)
	}
	if len(categories) > 0 {
		batch, err := h.candidates.FindByCategory(ctx, categories, limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch foods"})
			return
		}
		add(batch)
	}
	if foods == nil {
		foods = []models.Food{}
	}

	c.JSON(http.StatusOK, types.FoodListResponse{Foods: foods, Count: len(foods)})
}

func (h *FoodHandler) CreateFood(c *gin.Context) {
	var req types.CreateFoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	food, err := h.foods.CreateFood(c.Request.Context(), req.ToModel())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create food"})
		return
	}

	c.JSON(http.StatusCreated, food)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
