package models

const (
	RoleAdmin   = "admin"
	RoleSupport = "support"
	RoleUser    = "user"

	UserStatusPending  = "pending"
	UserStatusApproved = "approved"
	UserStatusRejected = "rejected"
)

type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	FullName     string `json:"full_name"`
	Role         string `json:"role"`
	Status       string `json:"status"`
	LastLoginAt  *int64 `json:"last_login_at,omitempty"`
	CreatedAt    int64  `json:"created_at"`
	UpdatedAt    int64  `json:"updated_at"`
}

// DisplayName is what gets rendered when only one identity string fits.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.FullName != "" {
		return u.FullName
	}
	return u.Email
}

// IsStaff reports whether the user may work on tickets they did not create.
func (u *User) IsStaff() bool {
	return u != nil && (u.Role == RoleAdmin || u.Role == RoleSupport)
}

// NotificationSettings is the per-user opt-out row. A missing row means every flag is on.
type NotificationSettings struct {
	UserID         string `json:"user_id"`
	NewTicket      bool   `json:"new_ticket"`
	DeletedTicket  bool   `json:"deleted_ticket"`
	InWorkTicket   bool   `json:"in_work_ticket"`
	UpdatedTicket  bool   `json:"updated_ticket"`
	SolvedTicket   bool   `json:"solved_ticket"`
	SharedWorkflow bool   `json:"shared_workflow"`
	SharedPrompt   bool   `json:"shared_prompt"`
	RoleChange     bool   `json:"role_change"`
	NewMail        bool   `json:"new_mail"`
	WebhookURL     string `json:"webhook_url,omitempty"`
	UpdatedAt      int64  `json:"updated_at"`
}

type Setting struct {
	Key       string `json:"key"`
	Value     string `json:"value"`
	UpdatedAt int64  `json:"updated_at"`
}

type Mail struct {
	ID          string `json:"id"`
	SenderID    string `json:"sender_id"`
	RecipientID string `json:"recipient_id"`
	Subject     string `json:"subject"`
	Body        string `json:"body"`
	ReadAt      *int64 `json:"read_at,omitempty"`
	CreatedAt   int64  `json:"created_at"`
}

const (
	BackupTypeWorkflow = "workflow"
	BackupTypePrompt   = "prompt"

	AccessViewer = "viewer"
	AccessEditor = "editor"
)

type Backup struct {
	ID        string `json:"id"`
	OwnerID   string `json:"owner_id"`
	Title     string `json:"title"`
	Type      string `json:"type"`
	CreatedAt int64  `json:"created_at"`
}

type BackupShare struct {
	ID         string `json:"id"`
	BackupID   string `json:"backup_id"`
	SharedBy   string `json:"shared_by"`
	SharedWith string `json:"shared_with"`
	AccessRole string `json:"access_role"`
	CreatedAt  int64  `json:"created_at"`
}
