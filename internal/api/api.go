package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nutriflow/backend/internal/models"
	"github.com/nutriflow/backend/internal/service"
	"github.com/nutriflow/backend/internal/types"
)

// errUnknownFood reports a hand-placed item that references no catalog food.
var errUnknownFood = errors.New("unknown food")

// parseID reads the :id path parameter, answering 400 when it is not a UUID.
func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

// buildSlots turns slot requests into model slots, resolving hand-placed
// items against the catalog.
func buildSlots(ctx context.Context, foods service.IFoodService, reqs []types.SlotRequest) ([]models.MealSlot, error) {
	slots := make([]models.MealSlot, len(reqs))
	for i, r := range reqs {
		position := i
		if r.Position != nil {
			position = *r.Position
		}
		slots[i] = models.MealSlot{
			Name:           r.Name,
			Position:       position,
			TargetCalories: r.TargetCalories,
			TargetProtein:  r.TargetProtein,
			TargetCarbs:    r.TargetCarbs,
			TargetFat:      r.TargetFat,
		}
		for j, it := range r.Items {
			food, err := foods.GetFood(ctx, it.FoodID)
			if err != nil {
				if errors.Is(err, service.ErrFoodNotFound) {
					return nil, fmt.Errorf("%w %s", errUnknownFood, it.FoodID)
				}
				return nil, err
			}
			item := models.NewMealItem(*food, it.Quantity)
			item.Position = j
			slots[i].Items = append(slots[i].Items, item)
		}
	}
	return slots, nil
}

// respondSlotError maps buildSlots errors to responses.
func respondSlotError(c *gin.Context, err error) {
	if errors.Is(err, errUnknownFood) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load foods"})
}
