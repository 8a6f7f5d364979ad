package tickets

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"helpdesk/internal/pkg/validator"
)

var urgencies = []string{UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical}

func ValidateTicket(t *Ticket) error {
	return validation.ValidateStruct(t,
		validation.Field(&t.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&t.Description, validation.Length(0, 10000)),
		validation.Field(&t.Urgency, validation.Required, validator.OneOf(urgencies...)),
		validation.Field(&t.Status, validator.OneOf(StatusOpen, StatusInWork, StatusSolved)),
		validation.Field(&t.CreatedBy, validation.Required),
	)
}

// canTransition lists the allowed status moves. Solved tickets stay solved.
func canTransition(from, to string) bool {
	switch to {
	case StatusInWork:
		return from == StatusOpen
	case StatusSolved:
		return from == StatusOpen || from == StatusInWork
	default:
		return false
	}
}
