package webhooks

import (
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/samber/lo"
)

const (
	UnknownUserName  = "Unknown User"
	PlaceholderEmail = "unknown@example.com"
)

var (
	ErrUnknownAction = errors.New("unknown webhook action")
	ErrMissingField  = errors.New("webhook context is missing a required field")
)

type Identity struct {
	ID       string
	Email    string
	FullName string
}

type TicketInfo struct {
	ID       string
	Title    string
	Status   string
	Urgency  string
	Deadline *time.Time
}

func (t TicketInfo) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.ID, validation.Required),
		validation.Field(&t.Title, validation.Required),
	)
}

type BackupInfo struct {
	ID         string
	Title      string
	Type       string
	AccessRole string
}

func (b BackupInfo) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.ID, validation.Required),
		validation.Field(&b.Title, validation.Required),
	)
}

type MailInfo struct {
	ID      string
	Subject string
}

func (m MailInfo) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.ID, validation.Required),
		validation.Field(&m.Subject, validation.Required),
	)
}

// Context is the domain data a call site hands to the builder. Which parts
// are required depends on the action.
type Context struct {
	Actor   Identity
	Subject Identity

	Ticket     *TicketInfo
	RoleBefore string
	RoleAfter  string
	Backup     *BackupInfo
	Mail       *MailInfo

	Preferences Preferences
	// OccurredAt defaults to now.
	OccurredAt time.Time
}

// Recipient is the user whose preferences and override URL apply.
func (c Context) Recipient() string {
	if c.Subject.ID != "" {
		return c.Subject.ID
	}
	return c.Actor.ID
}

// BuildPayload assembles the event for action. A missing required field is a
// caller bug and returns an error wrapping ErrMissingField, never a partial event.
func BuildPayload(action Action, c Context) (*Event, error) {
	if err := c.validate(action); err != nil {
		return nil, err
	}

	occurred := c.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now()
	}

	e := &Event{
		Action:      action,
		Timestamp:   occurred.UTC().Format(time.RFC3339),
		ActorID:     c.Actor.ID,
		ActorEmail:  emailOf(c.Actor),
		ActorName:   nameOf(c.Actor),
		TargetID:    c.Subject.ID,
		TargetEmail: emailOf(c.Subject),
		TargetName:  nameOf(c.Subject),
		RoleBefore:  c.RoleBefore,
		RoleAfter:   c.RoleAfter,
		Preferences: c.Preferences,
	}

	if c.Ticket != nil {
		e.TicketID = c.Ticket.ID
		e.TicketTitle = c.Ticket.Title
		e.TicketStatus = c.Ticket.Status
		e.Urgency = c.Ticket.Urgency
		e.Date, e.Time = splitDeadline(c.Ticket.Deadline)
	}
	if c.Backup != nil {
		e.BackupID = c.Backup.ID
		e.BackupTitle = c.Backup.Title
		e.BackupType = c.Backup.Type
		e.AccessRole = c.Backup.AccessRole
	}
	if c.Mail != nil {
		e.MailID = c.Mail.ID
		e.MailSubject = c.Mail.Subject
	}

	return e, nil
}

func (c Context) validate(action Action) error {
	var err error
	switch action {
	case ActionTicketCreated, ActionUpdated, ActionInWork, ActionSolved, ActionDeleted:
		err = validation.ValidateStruct(&c,
			validation.Field(&c.Ticket, validation.Required),
		)
	case ActionRoleChanged:
		err = validation.ValidateStruct(&c,
			validation.Field(&c.Subject, validation.By(requireIdentityID)),
			validation.Field(&c.RoleBefore, validation.Required),
			validation.Field(&c.RoleAfter, validation.Required),
		)
	case ActionUserApproved, ActionUserRejected:
		err = validation.ValidateStruct(&c,
			validation.Field(&c.Subject, validation.By(requireIdentityID)),
		)
	case ActionSharedWorkflow, ActionSharedPrompt:
		err = validation.ValidateStruct(&c,
			validation.Field(&c.Subject, validation.By(requireIdentityID)),
			validation.Field(&c.Backup, validation.Required),
		)
	case ActionMailReceived:
		err = validation.ValidateStruct(&c,
			validation.Field(&c.Subject, validation.By(requireIdentityID)),
			validation.Field(&c.Mail, validation.Required),
		)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}

	if err != nil {
		return fmt.Errorf("%w for %s: %v", ErrMissingField, action, err)
	}
	return nil
}

func requireIdentityID(value interface{}) error {
	id, _ := value.(Identity)
	if strings.TrimSpace(id.ID) == "" {
		return errors.New("id is required")
	}
	return nil
}

func nameOf(id Identity) string {
	name, _ := lo.Coalesce(strings.TrimSpace(id.FullName), strings.TrimSpace(id.Email), UnknownUserName)
	return name
}

func emailOf(id Identity) string {
	email, _ := lo.Coalesce(strings.TrimSpace(id.Email), PlaceholderEmail)
	return email
}

// splitDeadline renders the deadline in UTC as YYYY-MM-DD and 24-hour HH:MM.
func splitDeadline(deadline *time.Time) (*string, *string) {
	if deadline == nil || deadline.IsZero() {
		return nil, nil
	}
	d := deadline.UTC()
	date := d.Format("2006-01-02")
	clock := d.Format("15:04")
	return &date, &clock
}
