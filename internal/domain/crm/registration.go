package crm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RegistrationTier struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID     uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`
	OccurrenceID uuid.UUID `gorm:"type:uuid;not null;index" json:"occurrence_id"`
	Name         string    `gorm:"column:name;not null" json:"name"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (RegistrationTier) TableName() string { return "registration_tiers" }

// Registration is participant involvement. Only finalized rows count.
type Registration struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID     uuid.UUID  `gorm:"type:uuid;not null;index:idx_registration_occurrence,priority:1" json:"tenant_id"`
	OccurrenceID uuid.UUID  `gorm:"type:uuid;not null;index:idx_registration_occurrence,priority:2" json:"occurrence_id"`
	ContactID    *uuid.UUID `gorm:"type:uuid;index" json:"contact_id,omitempty"`
	TierID       *uuid.UUID `gorm:"type:uuid;index" json:"tier_id,omitempty"`
	PeriodID     *uuid.UUID `gorm:"type:uuid" json:"period_id,omitempty"`
	Finalized    bool       `gorm:"column:finalized;not null;default:false" json:"finalized"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Registration) TableName() string { return "registrations" }
