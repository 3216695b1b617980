package mealplan

import (
	"sort"
	"strings"

	"github.com/nutriflow/backend/internal/models"
)

// Objective is the patient's nutritional goal as the ranker sees it.
type Objective string

const (
	ObjectiveUnspecified Objective = ""
	ObjectiveHypertrophy Objective = "hypertrophy"
	ObjectiveWeightLoss  Objective = "weight-loss"
	ObjectiveMaintenance Objective = "maintenance"
)

var objectiveAliases = map[string]Objective{
	"hypertrophy":    ObjectiveHypertrophy,
	"muscle-gain":    ObjectiveHypertrophy,
	"gain":           ObjectiveHypertrophy,
	"weight-gain":    ObjectiveHypertrophy,
	"bulk":           ObjectiveHypertrophy,
	"bulking":        ObjectiveHypertrophy,
	"mass":           ObjectiveHypertrophy,
	"mass-gain":      ObjectiveHypertrophy,
	"hipertrofia":    ObjectiveHypertrophy,
	"ganho-de-massa": ObjectiveHypertrophy,
	"weight-loss":    ObjectiveWeightLoss,
	"lose-weight":    ObjectiveWeightLoss,
	"fat-loss":       ObjectiveWeightLoss,
	"cut":            ObjectiveWeightLoss,
	"cutting":        ObjectiveWeightLoss,
	"definition":     ObjectiveWeightLoss,
	"emagrecimento":  ObjectiveWeightLoss,
	"perda-de-peso":  ObjectiveWeightLoss,
	"definicao":      ObjectiveWeightLoss,
	"maintenance":    ObjectiveMaintenance,
	"maintain":       ObjectiveMaintenance,
	"manutencao":     ObjectiveMaintenance,
}

// ParseObjective classifies free objective text. Runs of consecutive words
// are looked up longest first, so "lean bulk" and "perda de peso gradual"
// both find their alias.
func ParseObjective(text string) Objective {
	key := normalizeKey(text)
	if key == "" {
		return ObjectiveUnspecified
	}
	words := strings.Split(key, "-")
	for n := len(words); n > 0; n-- {
		for start := 0; start+n <= len(words); start++ {
			if obj, ok := objectiveAliases[strings.Join(words[start:start+n], "-")]; ok {
				return obj
			}
		}
	}
	return ObjectiveUnspecified
}

// Rand is the slice of *rand.Rand the engine needs.
type Rand interface {
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}

// Score rates a food for an objective using its per-portion values. Only
// hypertrophy and weight loss are scored; other objectives score zero.
func Score(f models.Food, obj Objective) float64 {
	switch obj {
	case ObjectiveHypertrophy:
		return 3*f.Protein + 1.5*f.Carbs + f.Calories/100
	case ObjectiveWeightLoss:
		return 4*f.Protein - 2*f.Fat - f.Calories/30
	}
	return 0
}

// Rank orders candidates best-first for the objective. Scored objectives use a
// stable descending sort; the rest get a uniform shuffle from rng. The input
// slice is left untouched.
func Rank(foods []models.Food, obj Objective, rng Rand) []models.Food {
	ranked := make([]models.Food, len(foods))
	copy(ranked, foods)

	switch obj {
	case ObjectiveHypertrophy, ObjectiveWeightLoss:
		scores := make([]float64, len(ranked))
		idx := make([]int, len(ranked))
		for i := range ranked {
			idx[i] = i
			scores[i] = Score(ranked[i], obj)
		}
		sort.SliceStable(idx, func(a, b int) bool {
			return scores[idx[a]] > scores[idx[b]]
		})
		out := make([]models.Food, len(ranked))
		for i, j := range idx {
			out[i] = ranked[j]
		}
		return out
	default:
		if rng != nil {
			rng.Shuffle(len(ranked), func(i, j int) {
				ranked[i], ranked[j] = ranked[j], ranked[i]
			})
		}
		return ranked
	}
}
