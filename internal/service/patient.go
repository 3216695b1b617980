package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/nutriflow/backend/internal/models"
	"gorm.io/gorm"
)

var ErrPatientNotFound = errors.New("patient not found")

// PatientService handles patient profile persistence
type PatientService struct {
	db *gorm.DB
}

var _ IPatientService = (*PatientService)(nil)

// NewPatientService creates a new PatientService instance
func NewPatientService(db *gorm.DB) *PatientService {
	return &PatientService{db: db}
}

// CreatePatient stores a new patient profile
func (s *PatientService) CreatePatient(ctx context.Context, patient *models.PatientProfile) (*models.PatientProfile, error) {
	if patient.Restrictions == nil {
		patient.Restrictions = models.JSONBStringArray{}
	}
	if err := s.db.WithContext(ctx).Create(patient).Error; err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}
	return patient, nil
}

// GetPatient retrieves a patient profile by ID
func (s *PatientService) GetPatient(ctx context.Context, id uuid.UUID) (*models.PatientProfile, error) {
	var patient models.PatientProfile
	if err := s.db.WithContext(ctx).First(&patient, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}
