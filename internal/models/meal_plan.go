package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Macros is an energy and macronutrient total.
type Macros struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// MealPlan is one patient's daily plan.
type MealPlan struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	PatientID uuid.UUID      `gorm:"type:uuid;not null;index" json:"patient_id"`
	Name      string         `gorm:"size:255" json:"name"`
	Date      time.Time      `json:"date"`
	Slots     []MealSlot     `gorm:"foreignKey:MealPlanID" json:"slots"`
}

func (MealPlan) TableName() string {
	return "meal_plans"
}

func (p *MealPlan) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// MealSlot is one meal occasion of a plan with its own targets.
type MealSlot struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	MealPlanID     uuid.UUID  `gorm:"type:uuid;index" json:"meal_plan_id"`
	Name           string     `gorm:"size:100;not null" json:"name"`
	Position       int        `gorm:"not null" json:"position"`
	TargetCalories float64    `json:"target_calories"`
	TargetProtein  float64    `json:"target_protein"`
	TargetCarbs    float64    `json:"target_carbs"`
	TargetFat      float64    `json:"target_fat"`
	Items          []MealItem `gorm:"foreignKey:MealSlotID" json:"items"`
}

func (MealSlot) TableName() string {
	return "meal_slots"
}

func (s *MealSlot) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Totals sums the slot's items.
func (s MealSlot) Totals() Macros {
	var t Macros
	for _, it := range s.Items {
		t.Calories += it.Calories
		t.Protein += it.Protein
		t.Carbs += it.Carbs
		t.Fat += it.Fat
	}
	return t
}

// MealItem is a food placed in a slot at a portion multiplier. Items are
// never edited in place; a different quantity means a new item.
type MealItem struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	MealSlotID uuid.UUID `gorm:"type:uuid;index" json:"meal_slot_id"`
	Position   int       `json:"position"`
	FoodID     uuid.UUID `gorm:"type:uuid;not null" json:"food_id"`
	FoodName   string    `gorm:"size:255" json:"food_name"`
	Quantity   float64   `gorm:"not null" json:"quantity"`
	Unit       string    `gorm:"size:20" json:"unit"`
	Grams      float64   `json:"grams"`
	Calories   float64   `json:"calories"`
	Protein    float64   `json:"protein"`
	Carbs      float64   `json:"carbs"`
	Fat        float64   `json:"fat"`
}

func (MealItem) TableName() string {
	return "meal_items"
}

func (i *MealItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// NewMealItem scales food's reference values by quantity.
func NewMealItem(food Food, quantity float64) MealItem {
	return MealItem{
		FoodID:   food.ID,
		FoodName: food.Name,
		Quantity: quantity,
		Unit:     food.PortionUnit,
		Grams:    food.ReferenceGrams() * quantity,
		Calories: food.Calories * quantity,
		Protein:  food.Protein * quantity,
		Carbs:    food.Carbs * quantity,
		Fat:      food.Fat * quantity,
	}
}
