package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/nutriflow/backend/internal/mealplan"
	"github.com/nutriflow/backend/internal/models"
)

// ItemRequest places a food in a slot by hand.
type ItemRequest struct {
	FoodID   uuid.UUID `json:"food_id" binding:"required"`
	Quantity float64   `json:"quantity" binding:"required,gt=0"`
}

// SlotRequest describes one meal slot. Position defaults to the slot's index
// in the request when omitted.
type SlotRequest struct {
	Name           string        `json:"name" binding:"required"`
	Position       *int          `json:"position"`
	TargetCalories float64       `json:"target_calories" binding:"gte=0"`
	TargetProtein  float64       `json:"target_protein" binding:"gte=0"`
	TargetCarbs    float64       `json:"target_carbs" binding:"gte=0"`
	TargetFat      float64       `json:"target_fat" binding:"gte=0"`
	Items          []ItemRequest `json:"items" binding:"dive"`
}

// PatientRequest is an inline patient profile.
type PatientRequest struct {
	Name         string   `json:"name"`
	Objective    string   `json:"objective"`
	Restrictions []string `json:"restrictions"`
	Gender       string   `json:"gender"`
}

// ToModel converts the request to a patient profile.
func (p PatientRequest) ToModel() *models.PatientProfile {
	restrictions := models.JSONBStringArray(p.Restrictions)
	if restrictions == nil {
		restrictions = models.JSONBStringArray{}
	}
	return &models.PatientProfile{
		Name:         p.Name,
		Objective:    p.Objective,
		Restrictions: restrictions,
		Gender:       p.Gender,
	}
}

// PreviewRequest is the body of POST /meal-plans/preview. A stored patient
// can be referenced by PatientID instead of sending Patient inline.
type PreviewRequest struct {
	Slots     []SlotRequest   `json:"slots" binding:"required,min=1,dive"`
	Patient   *PatientRequest `json:"patient"`
	PatientID *uuid.UUID      `json:"patient_id"`
}

// CreatePlanRequest is the body of POST /meal-plans.
type CreatePlanRequest struct {
	PatientID uuid.UUID     `json:"patient_id" binding:"required"`
	Name      string        `json:"name"`
	Date      *time.Time    `json:"date"`
	Slots     []SlotRequest `json:"slots" binding:"required,min=1,dive"`
}

// CreateFoodRequest is the body of POST /foods. Active defaults to true.
type CreateFoodRequest struct {
	Name          string   `json:"name" binding:"required"`
	Category      string   `json:"category" binding:"required"`
	MealTags      []string `json:"meal_tags"`
	PortionAmount float64  `json:"portion_amount" binding:"required,gt=0"`
	PortionUnit   string   `json:"portion_unit" binding:"required"`
	PortionGrams  float64  `json:"portion_grams" binding:"gte=0"`
	Calories      float64  `json:"calories" binding:"gte=0"`
	Protein       float64  `json:"protein" binding:"gte=0"`
	Carbs         float64  `json:"carbs" binding:"gte=0"`
	Fat           float64  `json:"fat" binding:"gte=0"`
	Active        *bool    `json:"active"`
}

// ToModel converts the request to a catalog entry.
func (r CreateFoodRequest) ToModel() *models.Food {
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	tags := make(models.JSONBStringArray, 0, len(r.MealTags))
	for _, t := range r.MealTags {
		tags = append(tags, t)
	}
	return &models.Food{
		Name:          r.Name,
		Category:      r.Category,
		MealTags:      tags,
		PortionAmount: r.PortionAmount,
		PortionUnit:   r.PortionUnit,
		PortionGrams:  r.PortionGrams,
		Calories:      r.Calories,
		Protein:       r.Protein,
		Carbs:         r.Carbs,
		Fat:           r.Fat,
		Active:        active,
	}
}

// PreviewResponse is returned by the preview route.
type PreviewResponse struct {
	Slots  []models.MealSlot `json:"slots"`
	Report mealplan.Report   `json:"report"`
}

// GeneratePlanResponse is returned by the generate route.
type GeneratePlanResponse struct {
	MealPlan *models.MealPlan `json:"meal_plan"`
	Report   mealplan.Report  `json:"report"`
}

// FoodListResponse is returned by the food lookup route.
type FoodListResponse struct {
	Foods []models.Food `json:"foods"`
	Count int           `json:"count"`
}
