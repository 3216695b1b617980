package mealplan

import (
	"strings"

	"github.com/nutriflow/backend/internal/models"
)

// Restriction is a dietary restriction the engine understands.
type Restriction string

const (
	RestrictionVegetarian        Restriction = "vegetarian"
	RestrictionVegan             Restriction = "vegan"
	RestrictionLactoseIntolerant Restriction = "lactose-intolerant"
	RestrictionLowCarb           Restriction = "low-carb"
	RestrictionPescatarian       Restriction = "pescatarian"
	RestrictionGlutenFree        Restriction = "gluten-free"
)

var restrictionAliases = map[string]Restriction{
	"vegetarian":            RestrictionVegetarian,
	"vegetariano":           RestrictionVegetarian,
	"vegan":                 RestrictionVegan,
	"vegano":                RestrictionVegan,
	"lactose-intolerant":    RestrictionLactoseIntolerant,
	"lactose-free":          RestrictionLactoseIntolerant,
	"dairy-free":            RestrictionLactoseIntolerant,
	"sem-lactose":           RestrictionLactoseIntolerant,
	"intolerante-a-lactose": RestrictionLactoseIntolerant,
	"low-carb":              RestrictionLowCarb,
	"lowcarb":               RestrictionLowCarb,
	"keto":                  RestrictionLowCarb,
	"pescatarian":           RestrictionPescatarian,
	"pescetariano":          RestrictionPescatarian,
	"gluten-free":           RestrictionGlutenFree,
	"celiac":                RestrictionGlutenFree,
	"sem-gluten":            RestrictionGlutenFree,
	"celiaco":               RestrictionGlutenFree,
}

var forbiddenByRestriction = map[Restriction][]string{
	RestrictionVegetarian:        {models.CategoryMeat},
	RestrictionVegan:             {models.CategoryMeat, models.CategoryProtein, models.CategoryDairy},
	RestrictionLactoseIntolerant: {models.CategoryDairy},
	RestrictionLowCarb:           {models.CategoryGrains, models.CategorySweets},
	RestrictionPescatarian:       {models.CategoryMeat},
	RestrictionGlutenFree:        {models.CategoryGrains},
}

// ParseRestriction looks a keyword up in the alias table.
func ParseRestriction(keyword string) (Restriction, bool) {
	r, ok := restrictionAliases[normalizeKey(keyword)]
	return r, ok
}

// ForbiddenCategories returns the union of categories ruled out by the given
// keywords. Unknown keywords contribute nothing.
func ForbiddenCategories(keywords []string) map[string]struct{} {
	forbidden := make(map[string]struct{})
	for _, kw := range keywords {
		r, ok := ParseRestriction(kw)
		if !ok {
			continue
		}
		for _, category := range forbiddenByRestriction[r] {
			forbidden[category] = struct{}{}
		}
	}
	return forbidden
}

// FilterRestricted drops foods whose category a restriction forbids. With no
// restrictions the input slice is returned as is.
func FilterRestricted(foods []models.Food, restrictions []string) []models.Food {
	if len(restrictions) == 0 {
		return foods
	}
	forbidden := ForbiddenCategories(restrictions)
	if len(forbidden) == 0 {
		return foods
	}

	out := make([]models.Food, 0, len(foods))
	for _, f := range foods {
		if _, banned := forbidden[strings.ToLower(strings.TrimSpace(f.Category))]; banned {
			continue
		}
		out = append(out, f)
	}
	return out
}
