package mealplan

import (
	"math"

	"github.com/google/uuid"
	"github.com/nutriflow/backend/internal/models"
)

const (
	// WorkingSetSize is how many top-ranked candidates a slot considers.
	WorkingSetSize = 20
	// MaxItemsPerSlot caps the foods placed in one slot.
	MaxItemsPerSlot = 4
	// LowerBound and UpperBound are fractions of the slot's calorie target.
	// Filling stops once LowerBound is reached; no item may push the slot
	// past UpperBound.
	LowerBound = 0.85
	UpperBound = 1.15

	QuantityStep = 0.5
	MinQuantity  = 0.5
	MaxQuantity  = 3.0

	shuffleWindow = 3
)

// UsedFoods is the set of food ids already placed in the plan being built.
type UsedFoods map[uuid.UUID]struct{}

func NewUsedFoods() UsedFoods {
	return make(UsedFoods)
}

func (u UsedFoods) Has(id uuid.UUID) bool {
	_, ok := u[id]
	return ok
}

func (u UsedFoods) Add(id uuid.UUID) {
	u[id] = struct{}{}
}

// SlotFiller greedily picks foods and half-portion quantities for one slot.
type SlotFiller struct {
	rng Rand
}

// NewSlotFiller returns a filler that perturbs candidate order with rng.
// A nil rng keeps the ranked order as is.
func NewSlotFiller(rng Rand) *SlotFiller {
	return &SlotFiller{rng: rng}
}

// Fill selects items for a slot with the given calorie target from ranked
// candidates. Accepted food ids are added to used. The result may be empty
// or fall short of the lower bound; there is no backtracking.
func (f *SlotFiller) Fill(candidates []models.Food, targetKcal float64, used UsedFoods) []models.MealItem {
	if targetKcal <= 0 || len(candidates) == 0 {
		return nil
	}

	n := len(candidates)
	if n > WorkingSetSize {
		n = WorkingSetSize
	}
	working := make([]models.Food, n)
	copy(working, candidates[:n])
	lightShuffle(working, f.rng)

	lower := LowerBound * targetKcal
	upper := UpperBound * targetKcal

	var items []models.MealItem
	var acc float64
	for _, food := range working {
		if used.Has(food.ID) {
			continue
		}
		if acc >= lower || len(items) >= MaxItemsPerSlot {
			break
		}
		if food.Calories <= 0 {
			continue
		}

		qty := portionFor(targetKcal-acc, food.Calories)
		item := models.NewMealItem(food, qty)
		if acc+item.Calories > upper {
			continue
		}

		item.Position = len(items)
		items = append(items, item)
		acc += item.Calories
		used.Add(food.ID)
	}
	return items
}

// portionFor picks the half-step multiplier that best covers remaining kcal,
// clamped to [MinQuantity, MaxQuantity].
func portionFor(remaining, kcalPerPortion float64) float64 {
	q := math.Round(remaining/kcalPerPortion/QuantityStep) * QuantityStep
	if q < MinQuantity {
		return MinQuantity
	}
	if q > MaxQuantity {
		return MaxQuantity
	}
	return q
}

// lightShuffle swaps each position with one at most shuffleWindow-1 places
// ahead, keeping ranking roughly intact while varying repeated runs.
func lightShuffle(foods []models.Food, rng Rand) {
	if rng == nil {
		return
	}
	for i := range foods {
		span := shuffleWindow
		if rest := len(foods) - i; rest < span {
			span = rest
		}
		j := i + rng.Intn(span)
		foods[i], foods[j] = foods[j], foods[i]
	}
}
