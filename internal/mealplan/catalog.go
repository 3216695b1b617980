package mealplan

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/nutriflow/backend/internal/models"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// CandidateRepository is the read-only food catalog the generator draws from.
// Implementations return active foods only and never more than limit.
type CandidateRepository interface {
	FindByMealTags(ctx context.Context, tags []string, limit int) ([]models.Food, error)
	FindByCategory(ctx context.Context, categories []string, limit int) ([]models.Food, error)
}

// SlotKind identifies a meal occasion.
type SlotKind string

const (
	SlotBreakfast      SlotKind = "breakfast"
	SlotMorningSnack   SlotKind = "morning-snack"
	SlotLunch          SlotKind = "lunch"
	SlotAfternoonSnack SlotKind = "afternoon-snack"
	SlotDinner         SlotKind = "dinner"
	SlotEveningSnack   SlotKind = "evening-snack"
	SlotOther          SlotKind = "other"
)

// SlotProfile describes where candidates for a meal occasion come from.
type SlotProfile struct {
	Kind               SlotKind
	Tags               []string
	FallbackCategories []string
}

var slotProfiles = map[SlotKind]SlotProfile{
	SlotBreakfast: {
		Kind:               SlotBreakfast,
		Tags:               []string{models.MealTagBreakfast, models.MealTagAny},
		FallbackCategories: []string{models.CategoryDairy, models.CategoryGrains, models.CategoryFruits},
	},
	SlotMorningSnack: {
		Kind:               SlotMorningSnack,
		Tags:               []string{models.MealTagSnack, models.MealTagAny},
		FallbackCategories: []string{models.CategoryFruits, models.CategoryNuts, models.CategoryDairy},
	},
	SlotLunch: {
		Kind: SlotLunch,
		Tags: []string{models.MealTagLunch, models.MealTagMain, models.MealTagAny},
		FallbackCategories: []string{
			models.CategoryMeat, models.CategoryProtein, models.CategoryGrains,
			models.CategoryLegumes, models.CategoryVegetables,
		},
	},
	SlotAfternoonSnack: {
		Kind:               SlotAfternoonSnack,
		Tags:               []string{models.MealTagSnack, models.MealTagAny},
		FallbackCategories: []string{models.CategoryFruits, models.CategoryDairy, models.CategoryGrains},
	},
	SlotDinner: {
		Kind: SlotDinner,
		Tags: []string{models.MealTagDinner, models.MealTagMain, models.MealTagAny},
		FallbackCategories: []string{
			models.CategoryMeat, models.CategoryProtein, models.CategoryVegetables,
			models.CategoryGrains, models.CategoryLegumes,
		},
	},
	SlotEveningSnack: {
		Kind:               SlotEveningSnack,
		Tags:               []string{models.MealTagSnack, models.MealTagSupper, models.MealTagAny},
		FallbackCategories: []string{models.CategoryDairy, models.CategoryFruits, models.CategoryNuts},
	},
	SlotOther: {
		Kind:               SlotOther,
		Tags:               []string{models.MealTagAny},
		FallbackCategories: []string{models.CategoryProtein, models.CategoryGrains, models.CategoryVegetables, models.CategoryFruits},
	},
}

var slotAliases = map[string]SlotKind{
	"breakfast":       SlotBreakfast,
	"cafe-da-manha":   SlotBreakfast,
	"desjejum":        SlotBreakfast,
	"morning-snack":   SlotMorningSnack,
	"lanche-da-manha": SlotMorningSnack,
	"colacao":         SlotMorningSnack,
	"lunch":           SlotLunch,
	"almoco":          SlotLunch,
	"afternoon-snack": SlotAfternoonSnack,
	"lanche-da-tarde": SlotAfternoonSnack,
	"lanche":          SlotAfternoonSnack,
	"dinner":          SlotDinner,
	"supper":          SlotDinner,
	"jantar":          SlotDinner,
	"evening-snack":   SlotEveningSnack,
	"ceia":            SlotEveningSnack,
}

// ParseSlotKind classifies a slot name. Unrecognised names are SlotOther.
func ParseSlotKind(name string) SlotKind {
	if kind, ok := slotAliases[normalizeKey(name)]; ok {
		return kind
	}
	return SlotOther
}

// ProfileFor returns the candidate profile for a slot name.
func ProfileFor(name string) SlotProfile {
	return slotProfiles[ParseSlotKind(name)]
}

var separators = regexp.MustCompile(`[^\p{L}\p{N}]+`)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalizeKey folds case and accents and joins words with a single hyphen,
// so "Café da Manhã" and "cafe_da_manha" share the key "cafe-da-manha".
func normalizeKey(s string) string {
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(strings.TrimSpace(folded))
	return strings.Trim(separators.ReplaceAllString(folded, "-"), "-")
}

// MemoryCatalog is a CandidateRepository over a fixed list of foods. Results
// keep insertion order.
type MemoryCatalog struct {
	mu    sync.RWMutex
	foods []models.Food
}

var _ CandidateRepository = (*MemoryCatalog)(nil)

func NewMemoryCatalog(foods ...models.Food) *MemoryCatalog {
	c := &MemoryCatalog{}
	c.Add(foods...)
	return c
}

// Add appends foods to the catalog.
func (c *MemoryCatalog) Add(foods ...models.Food) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.foods = append(c.foods, foods...)
}

// Len returns the number of foods held, active or not.
func (c *MemoryCatalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.foods)
}

func (c *MemoryCatalog) FindByMealTags(ctx context.Context, tags []string, limit int) ([]models.Food, error) {
	return c.find(ctx, limit, func(f *models.Food) bool {
		for _, tag := range tags {
			if f.MealTags.Contains(tag) {
				return true
			}
		}
		return false
	})
}

func (c *MemoryCatalog) FindByCategory(ctx context.Context, categories []string, limit int) ([]models.Food, error) {
	return c.find(ctx, limit, func(f *models.Food) bool {
		for _, category := range categories {
			if strings.EqualFold(strings.TrimSpace(f.Category), strings.TrimSpace(category)) {
				return true
			}
		}
		return false
	})
}

func (c *MemoryCatalog) find(ctx context.Context, limit int, match func(*models.Food) bool) ([]models.Food, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []models.Food
	for i := range c.foods {
		if limit > 0 && len(out) >= limit {
			break
		}
		f := &c.foods[i]
		if !f.Active || !match(f) {
			continue
		}
		out = append(out, *f)
	}
	return out, nil
}

// mergeByID appends the foods of extra not already present in primary.
func mergeByID(primary, extra []models.Food) []models.Food {
	seen := make(map[string]struct{}, len(primary)+len(extra))
	out := make([]models.Food, 0, len(primary)+len(extra))
	for _, list := range [][]models.Food{primary, extra} {
		for _, f := range list {
			key := f.ID.String()
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, f)
		}
	}
	return out
}
