package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nutriflow/backend/internal/mealplan"
	"github.com/nutriflow/backend/internal/models"
)

// IFoodService defines catalog operations. It is also the generator's
// candidate source.
type IFoodService interface {
	mealplan.CandidateRepository
	CreateFood(ctx context.Context, food *models.Food) (*models.Food, error)
	GetFood(ctx context.Context, id uuid.UUID) (*models.Food, error)
}

// IPatientService defines patient profile operations
type IPatientService interface {
	CreatePatient(ctx context.Context, patient *models.PatientProfile) (*models.PatientProfile, error)
	GetPatient(ctx context.Context, id uuid.UUID) (*models.PatientProfile, error)
}

// IMealPlanService defines meal plan operations
type IMealPlanService interface {
	CreatePlan(ctx context.Context, plan *models.MealPlan) (*models.MealPlan, error)
	GetPlan(ctx context.Context, id uuid.UUID) (*models.MealPlan, error)
	GeneratePlan(ctx context.Context, id uuid.UUID) (*models.MealPlan, mealplan.Report, error)
	Preview(ctx context.Context, slots []models.MealSlot, patient *models.PatientProfile) ([]models.MealSlot, mealplan.Report)
}

// PlanArchiver stores a snapshot of a generated plan.
type PlanArchiver interface {
	Archive(ctx context.Context, plan *models.MealPlan, report mealplan.Report, at time.Time) (string, error)
}

// EventPublisher announces generated plans to other systems.
type EventPublisher interface {
	PublishGenerated(ctx context.Context, event PlanGeneratedEvent) error
	Close() error
}
