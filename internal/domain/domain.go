package domain

import "github.com/yungbote/eventops-backend/internal/domain/crm"

type (
	Contact                  = crm.Contact
	ContactSummary           = crm.ContactSummary
	EventOccurrence          = crm.EventOccurrence
	RegistrationTier         = crm.RegistrationTier
	Registration             = crm.Registration
	VolunteerRegistration    = crm.VolunteerRegistration
	VolunteerShiftAssignment = crm.VolunteerShiftAssignment
	Segment                  = crm.Segment
)

// Models lists every table owned by this service, in migration order.
func Models() []any {
	return []any{
		&crm.Contact{},
		&crm.EventOccurrence{},
		&crm.RegistrationTier{},
		&crm.Registration{},
		&crm.VolunteerRegistration{},
		&crm.VolunteerShiftAssignment{},
		&crm.Segment{},
	}
}
