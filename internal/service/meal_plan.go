package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/nutriflow/backend/internal/mealplan"
	"github.com/nutriflow/backend/internal/metrics"
	"github.com/nutriflow/backend/internal/models"
	"gorm.io/gorm"
)

var ErrMealPlanNotFound = errors.New("meal plan not found")

const (
	modePreview   = "preview"
	modePersisted = "persisted"
)

// MealPlanService loads plans, runs the generator over them and stores the result
type MealPlanService struct {
	db        *gorm.DB
	generator *mealplan.Generator
	archiver  PlanArchiver
	publisher EventPublisher
	metrics   *metrics.Collector
	now       func() time.Time
}

var _ IMealPlanService = (*MealPlanService)(nil)

// NewMealPlanService creates a new MealPlanService instance. archiver,
// publisher and collector are optional.
func NewMealPlanService(
	db *gorm.DB,
	generator *mealplan.Generator,
	archiver PlanArchiver,
	publisher EventPublisher,
	collector *metrics.Collector,
) *MealPlanService {
	return &MealPlanService{
		db:        db,
		generator: generator,
		archiver:  archiver,
		publisher: publisher,
		metrics:   collector,
		now:       time.Now,
	}
}

// CreatePlan stores a plan with its slots and any clinician-chosen items
func (s *MealPlanService) CreatePlan(ctx context.Context, plan *models.MealPlan) (*models.MealPlan, error) {
	var patients int64
	if err := s.db.WithContext(ctx).Model(&models.PatientProfile{}).Where("id = ?", plan.PatientID).Count(&patients).Error; err != nil {
		return nil, fmt.Errorf("failed to check patient: %w", err)
	}
	if patients == 0 {
		return nil, ErrPatientNotFound
	}

	if err := s.db.WithContext(ctx).Create(plan).Error; err != nil {
		return nil, fmt.Errorf("failed to create meal plan: %w", err)
	}
	return s.GetPlan(ctx, plan.ID)
}

// GetPlan retrieves a plan with slots and items in position order
func (s *MealPlanService) GetPlan(ctx context.Context, id uuid.UUID) (*models.MealPlan, error) {
	var plan models.MealPlan
	err := s.db.WithContext(ctx).
		Preload("Slots", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Slots.Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&plan, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMealPlanNotFound
		}
		return nil, fmt.Errorf("failed to get meal plan: %w", err)
	}
	return &plan, nil
}

// Preview generates items for the given slots without storing anything
func (s *MealPlanService) Preview(ctx context.Context, slots []models.MealSlot, patient *models.PatientProfile) ([]models.MealSlot, mealplan.Report) {
	start := s.now()
	out, report := s.generator.GenerateWithReport(ctx, slots, patient)
	s.record(modePreview, report, s.now().Sub(start))
	return out, report
}

// GeneratePlan fills the empty slots of a stored plan and saves the new items.
// Slots that already had items are left as they are.
func (s *MealPlanService) GeneratePlan(ctx context.Context, id uuid.UUID) (*models.MealPlan, mealplan.Report, error) {
	plan, err := s.GetPlan(ctx, id)
	if err != nil {
		return nil, mealplan.Report{}, err
	}

	var patient models.PatientProfile
	if err := s.db.WithContext(ctx).First(&patient, "id = ?", plan.PatientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, mealplan.Report{}, ErrPatientNotFound
		}
		return nil, mealplan.Report{}, fmt.Errorf("failed to get patient: %w", err)
	}

	start := s.now()
	slots, report := s.generator.GenerateWithReport(ctx, plan.Slots, &patient)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range slots {
			if !generatedItems(report.Slots[i].Outcome) || len(slots[i].Items) == 0 {
				continue
			}
			for j := range slots[i].Items {
				slots[i].Items[j].MealSlotID = slots[i].ID
			}
			if err := tx.Create(&slots[i].Items).Error; err != nil {
				return fmt.Errorf("failed to save items for slot %s: %w", slots[i].Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, mealplan.Report{}, err
	}

	finished := s.now()
	s.record(modePersisted, report, finished.Sub(start))
	plan.Slots = slots

	log.Printf("[MealPlanService] Generated plan %s: %d filled, %d need attention",
		plan.ID, report.Count(mealplan.OutcomeFilled), len(report.Attention()))

	s.archive(ctx, plan, report, finished)
	s.publish(ctx, plan, report, finished)

	return plan, report, nil
}

func generatedItems(o mealplan.Outcome) bool {
	return o == mealplan.OutcomeFilled || o == mealplan.OutcomeUnderfilled
}

func (s *MealPlanService) record(mode string, report mealplan.Report, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordGeneration(mode, elapsed)
	for _, slot := range report.Slots {
		s.metrics.RecordSlot(string(slot.Outcome))
	}
}

func (s *MealPlanService) archive(ctx context.Context, plan *models.MealPlan, report mealplan.Report, at time.Time) {
	if s.archiver == nil {
		return
	}
	if _, err := s.archiver.Archive(ctx, plan, report, at); err != nil {
		log.Printf("[MealPlanService] Failed to archive plan %s: %v", plan.ID, err)
	}
}

func (s *MealPlanService) publish(ctx context.Context, plan *models.MealPlan, report mealplan.Report, at time.Time) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishGenerated(ctx, NewPlanGeneratedEvent(plan, report, at)); err != nil {
		log.Printf("[MealPlanService] Failed to publish event for plan %s: %v", plan.ID, err)
	}
}
