package crm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EventOccurrence is one time-boxed run of a recurring event.
type EventOccurrence struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;index:idx_occurrence_tenant_start,priority:1" json:"tenant_id"`
	EventID  uuid.UUID `gorm:"type:uuid;index" json:"event_id"`
	Name     string    `gorm:"column:name;not null;default:''" json:"name"`
	StartsAt time.Time `gorm:"column:starts_at;not null;index:idx_occurrence_tenant_start,priority:2" json:"starts_at"`
	EndsAt   time.Time `gorm:"column:ends_at" json:"ends_at"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (EventOccurrence) TableName() string { return "event_occurrences" }
