package crm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VolunteerRegistration struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID     uuid.UUID  `gorm:"type:uuid;not null;index:idx_volunteer_occurrence,priority:1" json:"tenant_id"`
	OccurrenceID uuid.UUID  `gorm:"type:uuid;not null;index:idx_volunteer_occurrence,priority:2" json:"occurrence_id"`
	ContactID    *uuid.UUID `gorm:"type:uuid;index" json:"contact_id,omitempty"`
	SubmittedAt  time.Time  `gorm:"column:submitted_at;not null" json:"submitted_at"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (VolunteerRegistration) TableName() string { return "volunteer_registrations" }

// VolunteerShiftAssignment schedules a volunteer registration onto one shift.
type VolunteerShiftAssignment struct {
	ID                      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID                uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`
	VolunteerRegistrationID uuid.UUID `gorm:"type:uuid;not null;index" json:"volunteer_registration_id"`
	ShiftID                 uuid.UUID `gorm:"type:uuid;not null" json:"shift_id"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (VolunteerShiftAssignment) TableName() string { return "volunteer_shift_assignments" }
