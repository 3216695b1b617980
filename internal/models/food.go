package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Food categories used by the catalog. Restriction rules forbid whole categories.
const (
	CategoryMeat       = "meat"
	CategoryProtein    = "protein"
	CategoryDairy      = "dairy"
	CategoryGrains     = "grains"
	CategoryLegumes    = "legumes"
	CategoryVegetables = "vegetables"
	CategoryFruits     = "fruits"
	CategoryNuts       = "nuts"
	CategoryFats       = "fats"
	CategorySweets     = "sweets"
	CategoryBeverages  = "beverages"
)

// Categories lists every known food category.
var Categories = []string{
	CategoryMeat,
	CategoryProtein,
	CategoryDairy,
	CategoryGrains,
	CategoryLegumes,
	CategoryVegetables,
	CategoryFruits,
	CategoryNuts,
	CategoryFats,
	CategorySweets,
	CategoryBeverages,
}

// Meal tags attached to foods.
const (
	MealTagBreakfast = "breakfast"
	MealTagSnack     = "snack"
	MealTagLunch     = "lunch"
	MealTagDinner    = "dinner"
	MealTagMain      = "main"
	MealTagSupper    = "supper"
	MealTagAny       = "any"
)

// Food is a catalog entry. Nutrient values are per reference portion
// (PortionAmount PortionUnit, e.g. 100 g).
type Food struct {
	ID            uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
	DeletedAt     gorm.DeletedAt   `gorm:"index" json:"-"`
	Name          string           `gorm:"size:255;not null" json:"name"`
	Category      string           `gorm:"size:50;not null;index" json:"category"`
	MealTags      JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"meal_tags"`
	PortionAmount float64          `gorm:"not null" json:"portion_amount"`
	PortionUnit   string           `gorm:"size:20;not null" json:"portion_unit"`
	PortionGrams  float64          `json:"portion_grams"`
	Calories      float64          `gorm:"not null" json:"calories"`
	Protein       float64          `gorm:"not null" json:"protein"`
	Carbs         float64          `gorm:"not null" json:"carbs"`
	Fat           float64          `gorm:"not null" json:"fat"`
	Active        bool             `gorm:"not null;index" json:"active"`
}

func (Food) TableName() string {
	return "foods"
}

// BeforeCreate assigns an id when the caller did not.
func (f *Food) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// ReferenceGrams is the weight of one reference portion in grams. Gram and
// millilitre portions weigh their amount unless PortionGrams says otherwise.
func (f *Food) ReferenceGrams() float64 {
	if f.PortionGrams > 0 {
		return f.PortionGrams
	}
	switch strings.ToLower(strings.TrimSpace(f.PortionUnit)) {
	case "g", "gram", "grams", "ml":
		return f.PortionAmount
	}
	return 0
}
