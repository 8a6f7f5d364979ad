package tickets

import "time"

const (
	StatusOpen   = "open"
	StatusInWork = "in_work"
	StatusSolved = "solved"

	UrgencyLow      = "low"
	UrgencyMedium   = "medium"
	UrgencyHigh     = "high"
	UrgencyCritical = "critical"
)

type Ticket struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Urgency     string `json:"urgency"` // low, medium, high, critical
	Status      string `json:"status"`  // open, in_work, solved
	CreatedBy   string `json:"created_by"`
	AssignedTo  string `json:"assigned_to,omitempty"`
	Deadline    *int64 `json:"deadline,omitempty"` // unix seconds
	SolvedAt    *int64 `json:"solved_at,omitempty"`
	CreatedAt   int64  `json:"created_at"`
	UpdatedAt   int64  `json:"updated_at"`
}

// DeadlineTime returns the deadline in UTC, or nil when the ticket has none.
func (t *Ticket) DeadlineTime() *time.Time {
	if t == nil || t.Deadline == nil {
		return nil
	}
	d := time.Unix(*t.Deadline, 0).UTC()
	return &d
}

// Update carries the fields a PATCH may change. Nil means untouched.
type Update struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Urgency     *string `json:"urgency"`
	Deadline    *int64  `json:"deadline"`
}

type ListFilter struct {
	CreatedBy string
	Status    string
	Limit     int
	Offset    int
}
