package crm

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ensureID assigns a random id to rows created without one. Postgres and
// sqlite both get app-side ids so the models migrate on either driver.
func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (c *Contact) BeforeCreate(*gorm.DB) error                  { ensureID(&c.ID); return nil }
func (o *EventOccurrence) BeforeCreate(*gorm.DB) error          { ensureID(&o.ID); return nil }
func (t *RegistrationTier) BeforeCreate(*gorm.DB) error         { ensureID(&t.ID); return nil }
func (r *Registration) BeforeCreate(*gorm.DB) error             { ensureID(&r.ID); return nil }
func (v *VolunteerRegistration) BeforeCreate(*gorm.DB) error    { ensureID(&v.ID); return nil }
func (a *VolunteerShiftAssignment) BeforeCreate(*gorm.DB) error { ensureID(&a.ID); return nil }
func (s *Segment) BeforeCreate(*gorm.DB) error                  { ensureID(&s.ID); return nil }
