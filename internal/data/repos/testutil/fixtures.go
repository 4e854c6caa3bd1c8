package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/eventops-backend/internal/domain"
)

func SeedContact(tb testing.TB, ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, first, last string) *types.Contact {
	tb.Helper()
	c := &types.Contact{
		ID:        uuid.New(),
		TenantID:  tenantID,
		FirstName: first,
		LastName:  last,
		Email:     first + "." + last + "@example.com",
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed contact: %v", err)
	}
	return c
}

// SeedContactAt seeds a contact with a fixed created_at.
func SeedContactAt(tb testing.TB, ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, first, last string, createdAt time.Time) *types.Contact {
	tb.Helper()
	c := &types.Contact{
		ID:        uuid.New(),
		TenantID:  tenantID,
		FirstName: first,
		LastName:  last,
		CreatedAt: createdAt.UTC(),
		UpdatedAt: createdAt.UTC(),
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed contact: %v", err)
	}
	return c
}

func SeedOccurrence(tb testing.TB, ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, name string, startsAt time.Time) *types.EventOccurrence {
	tb.Helper()
	o := &types.EventOccurrence{
		ID:       uuid.New(),
		TenantID: tenantID,
		Name:     name,
		StartsAt: startsAt.UTC(),
		EndsAt:   startsAt.UTC().Add(72 * time.Hour),
	}
	if err := tx.WithContext(ctx).Create(o).Error; err != nil {
		tb.Fatalf("seed occurrence: %v", err)
	}
	return o
}

func SeedTier(tb testing.TB, ctx context.Context, tx *gorm.DB, tenantID, occurrenceID uuid.UUID, name string) *types.RegistrationTier {
	tb.Helper()
	t := &types.RegistrationTier{
		ID:           uuid.New(),
		TenantID:     tenantID,
		OccurrenceID: occurrenceID,
		Name:         name,
	}
	if err := tx.WithContext(ctx).Create(t).Error; err != nil {
		tb.Fatalf("seed tier: %v", err)
	}
	return t
}

func SeedRegistration(tb testing.TB, ctx context.Context, tx *gorm.DB, tenantID, occurrenceID uuid.UUID, contactID *uuid.UUID, tierID *uuid.UUID, finalized bool) *types.Registration {
	tb.Helper()
	r := &types.Registration{
		ID:           uuid.New(),
		TenantID:     tenantID,
		OccurrenceID: occurrenceID,
		ContactID:    contactID,
		TierID:       tierID,
		Finalized:    finalized,
	}
	if err := tx.WithContext(ctx).Create(r).Error; err != nil {
		tb.Fatalf("seed registration: %v", err)
	}
	return r
}

func SeedVolunteer(tb testing.TB, ctx context.Context, tx *gorm.DB, tenantID, occurrenceID uuid.UUID, contactID *uuid.UUID, shifts int) *types.VolunteerRegistration {
	tb.Helper()
	v := &types.VolunteerRegistration{
		ID:           uuid.New(),
		TenantID:     tenantID,
		OccurrenceID: occurrenceID,
		ContactID:    contactID,
		SubmittedAt:  time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(v).Error; err != nil {
		tb.Fatalf("seed volunteer registration: %v", err)
	}
	for i := 0; i < shifts; i++ {
		a := &types.VolunteerShiftAssignment{
			ID:                      uuid.New(),
			TenantID:                tenantID,
			VolunteerRegistrationID: v.ID,
			ShiftID:                 uuid.New(),
		}
		if err := tx.WithContext(ctx).Create(a).Error; err != nil {
			tb.Fatalf("seed shift assignment: %v", err)
		}
	}
	return v
}

// SoftDelete stamps deleted_at on a seeded row.
func SoftDelete(tb testing.TB, ctx context.Context, tx *gorm.DB, row any) {
	tb.Helper()
	if err := tx.WithContext(ctx).Delete(row).Error; err != nil {
		tb.Fatalf("soft delete %T: %v", row, err)
	}
}
