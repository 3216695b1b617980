package factories

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/jaswdr/faker"
	"github.com/nutriflow/backend/internal/models"
)

var fake = faker.New()

// nutrientRange bounds per-100 g values for a category, in tenths so faker
// can draw them with one decimal.
type nutrientRange struct {
	kcal    [2]int
	protein [2]int
	carbs   [2]int
	fat     [2]int
	tags    []string
	names   []string
}

var categoryProfiles = map[string]nutrientRange{
	models.CategoryMeat: {
		kcal: [2]int{120, 300}, protein: [2]int{18, 32}, carbs: [2]int{0, 2}, fat: [2]int{3, 22},
		tags:  []string{models.MealTagLunch, models.MealTagDinner, models.MealTagMain},
		names: []string{"Grilled Chicken Breast", "Beef Steak", "Pork Loin", "Turkey Breast", "Lean Ground Beef"},
	},
	models.CategoryProtein: {
		kcal: [2]int{90, 220}, protein: [2]int{12, 26}, carbs: [2]int{0, 3}, fat: [2]int{1, 14},
		tags:  []string{models.MealTagBreakfast, models.MealTagLunch, models.MealTagDinner, models.MealTagMain},
		names: []string{"Boiled Egg", "Baked Salmon", "Tuna", "Tilapia Fillet", "Scrambled Eggs"},
	},
	models.CategoryDairy: {
		kcal: [2]int{40, 350}, protein: [2]int{3, 25}, carbs: [2]int{1, 12}, fat: [2]int{0, 30},
		tags:  []string{models.MealTagBreakfast, models.MealTagSnack, models.MealTagSupper},
		names: []string{"Greek Yogurt", "Skim Milk", "Cottage Cheese", "Mozzarella", "Kefir"},
	},
	models.CategoryGrains: {
		kcal: [2]int{110, 380}, protein: [2]int{2, 13}, carbs: [2]int{23, 77}, fat: [2]int{0, 7},
		tags:  []string{models.MealTagBreakfast, models.MealTagLunch, models.MealTagDinner},
		names: []string{"Brown Rice", "Rolled Oats", "Whole Wheat Bread", "Quinoa", "Couscous"},
	},
	models.CategoryLegumes: {
		kcal: [2]int{75, 160}, protein: [2]int{5, 10}, carbs: [2]int{13, 28}, fat: [2]int{0, 3},
		tags:  []string{models.MealTagLunch, models.MealTagDinner},
		names: []string{"Black Beans", "Lentils", "Chickpeas", "Pinto Beans", "Green Peas"},
	},
	models.CategoryVegetables: {
		kcal: [2]int{15, 80}, protein: [2]int{1, 4}, carbs: [2]int{2, 18}, fat: [2]int{0, 1},
		tags: []string{models.MealTagLunch, models.MealTagDinner, models.MealTagAny},
	},
	models.CategoryFruits: {
		kcal: [2]int{30, 120}, protein: [2]int{0, 2}, carbs: [2]int{8, 30}, fat: [2]int{0, 1},
		tags: []string{models.MealTagBreakfast, models.MealTagSnack, models.MealTagAny},
	},
	models.CategoryNuts: {
		kcal: [2]int{520, 680}, protein: [2]int{14, 26}, carbs: [2]int{10, 30}, fat: [2]int{45, 70},
		tags:  []string{models.MealTagSnack},
		names: []string{"Almonds", "Cashews", "Walnuts", "Brazil Nuts", "Peanut Butter"},
	},
	models.CategoryFats: {
		kcal: [2]int{700, 900}, protein: [2]int{0, 1}, carbs: [2]int{0, 1}, fat: [2]int{80, 100},
		tags:  []string{models.MealTagLunch, models.MealTagDinner},
		names: []string{"Olive Oil", "Butter", "Coconut Oil"},
	},
	models.CategorySweets: {
		kcal: [2]int{250, 550}, protein: [2]int{2, 8}, carbs: [2]int{40, 75}, fat: [2]int{5, 35},
		tags:  []string{models.MealTagSnack},
		names: []string{"Dark Chocolate", "Honey", "Oat Cookie", "Granola Bar"},
	},
	models.CategoryBeverages: {
		kcal: [2]int{20, 70}, protein: [2]int{0, 3}, carbs: [2]int{4, 15}, fat: [2]int{0, 2},
		tags:  []string{models.MealTagBreakfast, models.MealTagSnack},
		names: []string{"Orange Juice", "Coconut Water", "Soy Drink", "Green Smoothie"},
	},
}

// FoodFactory builds plausible catalog foods. Values are per 100 g.
type FoodFactory struct {
	fake faker.Faker
}

func NewFoodFactory() *FoodFactory {
	return &FoodFactory{fake: fake}
}

// NewSeededFoodFactory returns a factory whose output is reproducible.
func NewSeededFoodFactory(seed int64) *FoodFactory {
	return &FoodFactory{fake: faker.NewWithSeed(rand.NewSource(seed))}
}

// CreateFood builds an active food of the given category. An unknown
// category gets vegetable-like values.
func (ff *FoodFactory) CreateFood(category string) models.Food {
	profile, ok := categoryProfiles[category]
	if !ok {
		profile = categoryProfiles[models.CategoryVegetables]
	}

	tags := models.JSONBStringArray{}
	for _, tag := range profile.tags {
		if len(tags) == 0 || ff.fake.Bool() {
			tags = append(tags, tag)
		}
	}

	return models.Food{
		ID:            uuid.MustParse(ff.fake.UUID().V4()),
		Name:          ff.foodName(category, profile),
		Category:      category,
		MealTags:      tags,
		PortionAmount: 100,
		PortionUnit:   "g",
		PortionGrams:  100,
		Calories:      ff.fake.Float64(1, profile.kcal[0], profile.kcal[1]),
		Protein:       ff.fake.Float64(1, profile.protein[0], profile.protein[1]),
		Carbs:         ff.fake.Float64(1, profile.carbs[0], profile.carbs[1]),
		Fat:           ff.fake.Float64(1, profile.fat[0], profile.fat[1]),
		Active:        true,
	}
}

// CreateRandomFood builds a food of a random category.
func (ff *FoodFactory) CreateRandomFood() models.Food {
	return ff.CreateFood(ff.fake.RandomStringElement(models.Categories))
}

// CreateCatalog builds n foods spread over every category.
func (ff *FoodFactory) CreateCatalog(n int) []models.Food {
	foods := make([]models.Food, 0, n)
	for i := 0; i < n; i++ {
		foods = append(foods, ff.CreateFood(models.Categories[i%len(models.Categories)]))
	}
	return foods
}

func (ff *FoodFactory) foodName(category string, profile nutrientRange) string {
	var base string
	switch category {
	case models.CategoryFruits:
		base = ff.fake.Food().Fruit()
	case models.CategoryVegetables:
		base = ff.fake.Food().Vegetable()
	default:
		base = ff.fake.RandomStringElement(profile.names)
	}
	return fmt.Sprintf("%s #%d", base, ff.fake.IntBetween(1, 9999))
}

var objectives = []string{"hypertrophy", "weight loss", "maintenance", "emagrecimento", "ganho de massa", ""}

var restrictionKeywords = []string{"vegetarian", "vegan", "lactose-intolerant", "low-carb", "gluten-free", "no-spicy"}

// PatientFactory builds patient profiles with random goals and restrictions.
type PatientFactory struct {
	fake faker.Faker
}

func NewPatientFactory() *PatientFactory {
	return &PatientFactory{fake: fake}
}

func NewSeededPatientFactory(seed int64) *PatientFactory {
	return &PatientFactory{fake: faker.NewWithSeed(rand.NewSource(seed))}
}

func (pf *PatientFactory) CreatePatient() models.PatientProfile {
	restrictions := models.JSONBStringArray{}
	for i := pf.fake.IntBetween(0, 2); i > 0; i-- {
		restrictions = append(restrictions, pf.fake.RandomStringElement(restrictionKeywords))
	}
	return models.PatientProfile{
		ID:           uuid.MustParse(pf.fake.UUID().V4()),
		Name:         pf.fake.Person().Name(),
		Objective:    pf.fake.RandomStringElement(objectives),
		Restrictions: restrictions,
		Gender:       pf.fake.RandomStringElement([]string{"female", "male"}),
	}
}
