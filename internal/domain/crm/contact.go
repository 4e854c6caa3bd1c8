package crm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Contact struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;index:idx_contact_tenant_created,priority:1" json:"tenant_id"`
	FirstName string    `gorm:"column:first_name;not null;default:''" json:"first_name"`
	LastName  string    `gorm:"column:last_name;not null;default:''" json:"last_name"`
	Email     string    `gorm:"column:email;index" json:"email"`
	Phone     string    `gorm:"column:phone" json:"phone"`

	CreatedAt time.Time      `gorm:"not null;index:idx_contact_tenant_created,priority:2" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Contact) TableName() string { return "contacts" }

// ContactSummary is the projection returned by segment evaluation.
type ContactSummary struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
