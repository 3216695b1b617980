package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PatientProfile carries what meal-plan generation needs to know about a patient.
type PatientProfile struct {
	ID           uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
	DeletedAt    gorm.DeletedAt   `gorm:"index" json:"-"`
	Name         string           `gorm:"size:255" json:"name"`
	Objective    string           `gorm:"size:50" json:"objective"`
	Restrictions JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"restrictions"`
	Gender       string           `gorm:"size:20" json:"gender"`
}

func (PatientProfile) TableName() string {
	return "patient_profiles"
}

func (p *PatientProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
