package webhooks

// Action tags the kind of change a webhook reports. The set is closed: a new
// tag needs a case in BuildPayload that names its required context.
type Action string

const (
	ActionTicketCreated  Action = "ticket_created"
	ActionUpdated        Action = "updated"
	ActionInWork         Action = "in_work"
	ActionSolved         Action = "solved"
	ActionDeleted        Action = "deleted"
	ActionRoleChanged    Action = "role_changed"
	ActionUserApproved   Action = "user_approved"
	ActionUserRejected   Action = "user_rejected"
	ActionSharedWorkflow Action = "sharedWorkflow"
	ActionSharedPrompt   Action = "sharedPrompt"
	ActionMailReceived   Action = "mail_received"
)

// Category selects the destination path a webhook is sent to.
type Category string

const (
	CategoryTickets Category = "tickets"
	CategoryUsers   Category = "users"
	CategoryMails   Category = "mails"
	CategoryShares  Category = "shares"
)

var Categories = []Category{CategoryTickets, CategoryUsers, CategoryMails, CategoryShares}

// Preferences are the recipient's notification toggles, embedded in every event
// so the receiver can decide what to forward.
type Preferences struct {
	NewTicket      bool `json:"new_ticket"`
	DeletedTicket  bool `json:"deleted_ticket"`
	InWorkTicket   bool `json:"in_work_ticket"`
	UpdatedTicket  bool `json:"updated_ticket"`
	SolvedTicket   bool `json:"solved_ticket"`
	SharedWorkflow bool `json:"shared_workflow"`
	SharedPrompt   bool `json:"shared_prompt"`
	RoleChange     bool `json:"role_change"`
	NewMail        bool `json:"new_mail"`
}

// Event is the flat JSON body POSTed to the destination.
type Event struct {
	Action    Action `json:"action"`
	Timestamp string `json:"timestamp"`

	ActorID    string `json:"actor_id,omitempty"`
	ActorEmail string `json:"actor_email"`
	ActorName  string `json:"actor_name"`

	TargetID    string `json:"target_id,omitempty"`
	TargetEmail string `json:"target_email"`
	TargetName  string `json:"target_name"`

	TicketID     string `json:"ticket_id,omitempty"`
	TicketTitle  string `json:"ticket_title,omitempty"`
	TicketStatus string `json:"ticket_status,omitempty"`
	Urgency      string `json:"urgency,omitempty"`

	// Date and Time split the ticket deadline; both are null without one.
	Date *string `json:"date"`
	Time *string `json:"time"`

	RoleBefore string `json:"role_before,omitempty"`
	RoleAfter  string `json:"role_after,omitempty"`

	BackupID    string `json:"backup_id,omitempty"`
	BackupTitle string `json:"backup_title,omitempty"`
	BackupType  string `json:"backup_type,omitempty"`
	AccessRole  string `json:"access_role,omitempty"`

	MailID      string `json:"mail_id,omitempty"`
	MailSubject string `json:"mail_subject,omitempty"`

	Preferences
}

// DispatchResult reports a single delivery attempt.
//
// UserNotified comes from a case-insensitive search for "user has been
// notified" in the response body. Receivers rely on that exact phrase; it is
// not a structured acknowledgement.
type DispatchResult struct {
	Success      bool `json:"success"`
	UserNotified bool `json:"user_notified"`
}
