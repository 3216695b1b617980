package mealplan

import (
	"context"
	"log"
	"math/rand"
	"sort"
	"time"

	"github.com/nutriflow/backend/internal/models"
)

const (
	// DefaultCandidateLimit caps each repository query.
	DefaultCandidateLimit = 60
	// MinTargetCalories is the smallest slot target worth filling.
	MinTargetCalories = 50.0

	fallbackThreshold = 10
)

// Outcome says what happened to one slot during generation.
type Outcome string

const (
	OutcomeFilled       Outcome = "filled"
	OutcomeUnderfilled  Outcome = "underfilled"
	OutcomePrefilled    Outcome = "prefilled"
	OutcomeNoTarget     Outcome = "no_target"
	OutcomeNoCandidates Outcome = "no_candidates"
	OutcomeFetchFailed  Outcome = "fetch_failed"
	OutcomeNoFit        Outcome = "no_fit"
)

// Outcomes lists every slot outcome.
var Outcomes = []Outcome{
	OutcomeFilled,
	OutcomeUnderfilled,
	OutcomePrefilled,
	OutcomeNoTarget,
	OutcomeNoCandidates,
	OutcomeFetchFailed,
	OutcomeNoFit,
}

// NeedsAttention reports whether a clinician should look at the slot.
func (o Outcome) NeedsAttention() bool {
	switch o {
	case OutcomeUnderfilled, OutcomeNoCandidates, OutcomeFetchFailed, OutcomeNoFit:
		return true
	}
	return false
}

// SlotReport describes the result for one slot.
type SlotReport struct {
	Name           string        `json:"name"`
	Position       int           `json:"position"`
	Kind           SlotKind      `json:"kind"`
	Outcome        Outcome       `json:"outcome"`
	Candidates     int           `json:"candidates"`
	TargetCalories float64       `json:"target_calories"`
	Achieved       models.Macros `json:"achieved"`
	Error          string        `json:"error,omitempty"`
}

// Report summarises a generation run. Slots follow the input order.
type Report struct {
	Objective Objective    `json:"objective"`
	Slots     []SlotReport `json:"slots"`
}

// Count returns how many slots ended with outcome o.
func (r Report) Count(o Outcome) int {
	n := 0
	for _, s := range r.Slots {
		if s.Outcome == o {
			n++
		}
	}
	return n
}

// Attention returns the slots a clinician has to complete by hand.
func (r Report) Attention() []SlotReport {
	var out []SlotReport
	for _, s := range r.Slots {
		if s.Outcome.NeedsAttention() {
			out = append(out, s)
		}
	}
	return out
}

// Generator fills the empty slots of a daily plan.
type Generator struct {
	repo    CandidateRepository
	logger  *log.Logger
	newRand func() *rand.Rand
	limit   int
}

type Option func(*Generator)

func WithLogger(l *log.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithSeed makes every run start from the same random state.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.newRand = func() *rand.Rand { return rand.New(rand.NewSource(seed)) }
	}
}

// WithRandSource sets the factory called once per run for its random source.
func WithRandSource(fn func() *rand.Rand) Option {
	return func(g *Generator) {
		if fn != nil {
			g.newRand = fn
		}
	}
}

func WithCandidateLimit(limit int) Option {
	return func(g *Generator) {
		if limit > 0 {
			g.limit = limit
		}
	}
}

// NewGenerator builds a Generator over repo. It holds no per-run state and
// can serve concurrent calls.
func NewGenerator(repo CandidateRepository, opts ...Option) *Generator {
	g := &Generator{
		repo:   repo,
		logger: log.Default(),
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
		limit: DefaultCandidateLimit,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns a copy of slots with every empty, targeted slot filled.
func (g *Generator) Generate(ctx context.Context, slots []models.MealSlot, patient *models.PatientProfile) []models.MealSlot {
	out, _ := g.GenerateWithReport(ctx, slots, patient)
	return out
}

// GenerateWithReport is Generate plus a per-slot account of what happened.
// Slots are visited by ascending Position; no food is used twice across the
// plan, including foods a clinician already placed.
func (g *Generator) GenerateWithReport(ctx context.Context, slots []models.MealSlot, patient *models.PatientProfile) ([]models.MealSlot, Report) {
	var restrictions []string
	objective := ObjectiveUnspecified
	if patient != nil {
		restrictions = patient.Restrictions
		objective = ParseObjective(patient.Objective)
	}

	out := copySlots(slots)
	report := Report{Objective: objective, Slots: make([]SlotReport, len(out))}

	used := NewUsedFoods()
	for _, s := range out {
		for _, it := range s.Items {
			used.Add(it.FoodID)
		}
	}

	order := make([]int, len(out))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return out[order[a]].Position < out[order[b]].Position
	})

	rng := g.newRand()
	filler := NewSlotFiller(rng)

	for _, i := range order {
		slot := &out[i]
		profile := ProfileFor(slot.Name)
		rep := SlotReport{
			Name:           slot.Name,
			Position:       slot.Position,
			Kind:           profile.Kind,
			TargetCalories: slot.TargetCalories,
		}

		switch {
		case len(slot.Items) > 0:
			rep.Outcome = OutcomePrefilled
		case slot.TargetCalories <= MinTargetCalories:
			rep.Outcome = OutcomeNoTarget
		default:
			g.fillSlot(ctx, slot, profile, restrictions, objective, rng, filler, used, &rep)
		}

		rep.Achieved = slot.Totals()
		report.Slots[i] = rep
	}

	return out, report
}

func (g *Generator) fillSlot(
	ctx context.Context,
	slot *models.MealSlot,
	profile SlotProfile,
	restrictions []string,
	objective Objective,
	rng Rand,
	filler *SlotFiller,
	used UsedFoods,
	rep *SlotReport,
) {
	candidates, err := g.fetchCandidates(ctx, profile)
	if err != nil {
		g.logger.Printf("[MealPlanGenerator] Failed to fetch candidates for slot %q: %v", slot.Name, err)
		rep.Outcome = OutcomeFetchFailed
		rep.Error = err.Error()
		return
	}
	if len(candidates) == 0 {
		g.logger.Printf("[MealPlanGenerator] No candidates for slot %q (%s)", slot.Name, profile.Kind)
		rep.Outcome = OutcomeNoCandidates
		return
	}

	allowed := FilterRestricted(candidates, restrictions)
	rep.Candidates = len(allowed)
	if len(allowed) == 0 {
		g.logger.Printf("[MealPlanGenerator] WARNING: restrictions %v exclude all %d candidates for slot %q",
			restrictions, len(candidates), slot.Name)
		rep.Outcome = OutcomeNoCandidates
		return
	}

	ranked := Rank(allowed, objective, rng)
	items := filler.Fill(ranked, slot.TargetCalories, used)
	slot.Items = items

	var kcal float64
	for _, it := range items {
		kcal += it.Calories
	}
	switch {
	case len(items) == 0:
		g.logger.Printf("[MealPlanGenerator] No candidate fits slot %q (target %.0f kcal)", slot.Name, slot.TargetCalories)
		rep.Outcome = OutcomeNoFit
	case kcal < LowerBound*slot.TargetCalories:
		rep.Outcome = OutcomeUnderfilled
	default:
		rep.Outcome = OutcomeFilled
	}
}

// fetchCandidates queries by meal tags and tops up from the fallback
// categories when the tag query comes back thin. A failed fallback only
// fails the slot when the tag query found nothing.
func (g *Generator) fetchCandidates(ctx context.Context, profile SlotProfile) ([]models.Food, error) {
	tagged, err := g.repo.FindByMealTags(ctx, profile.Tags, g.limit)
	if err != nil {
		return nil, err
	}
	if len(tagged) >= fallbackThreshold {
		return tagged, nil
	}

	byCategory, err := g.repo.FindByCategory(ctx, profile.FallbackCategories, g.limit)
	if err != nil {
		if len(tagged) == 0 {
			return nil, err
		}
		g.logger.Printf("[MealPlanGenerator] Category fallback failed, using %d tagged candidates: %v", len(tagged), err)
		return tagged, nil
	}
	return mergeByID(tagged, byCategory), nil
}

func copySlots(slots []models.MealSlot) []models.MealSlot {
	out := make([]models.MealSlot, len(slots))
	for i, s := range slots {
		out[i] = s
		if s.Items != nil {
			out[i].Items = append([]models.MealItem(nil), s.Items...)
		}
	}
	return out
}
