package repositories

import (
	"context"
	"database/sql"
	"time"

	"helpdesk/internal/platform/models"
)

type NotificationSettingsRepository struct {
	db *sql.DB
}

func NewNotificationSettingsRepository(db *sql.DB) *NotificationSettingsRepository {
	return &NotificationSettingsRepository{db: db}
}

// GetByUserID returns nil, nil when the user never saved preferences.
func (r *NotificationSettingsRepository) GetByUserID(ctx context.Context, userID string) (*models.NotificationSettings, error) {
	s := &models.NotificationSettings{}
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id, new_ticket, deleted_ticket, in_work_ticket, updated_ticket, solved_ticket,
		       shared_workflow, shared_prompt, role_change, new_mail, webhook_url, updated_at
		FROM notification_settings WHERE user_id = ?
	`, userID).Scan(&s.UserID, &s.NewTicket, &s.DeletedTicket, &s.InWorkTicket, &s.UpdatedTicket, &s.SolvedTicket,
		&s.SharedWorkflow, &s.SharedPrompt, &s.RoleChange, &s.NewMail, &s.WebhookURL, &s.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}

func (r *NotificationSettingsRepository) Upsert(ctx context.Context, s *models.NotificationSettings) error {
	s.UpdatedAt = time.Now().Unix()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notification_settings (
			user_id, new_ticket, deleted_ticket, in_work_ticket, updated_ticket, solved_ticket,
			shared_workflow, shared_prompt, role_change, new_mail, webhook_url, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			new_ticket = excluded.new_ticket,
			deleted_ticket = excluded.deleted_ticket,
			in_work_ticket = excluded.in_work_ticket,
			updated_ticket = excluded.updated_ticket,
			solved_ticket = excluded.solved_ticket,
			shared_workflow = excluded.shared_workflow,
			shared_prompt = excluded.shared_prompt,
			role_change = excluded.role_change,
			new_mail = excluded.new_mail,
			webhook_url = excluded.webhook_url,
			updated_at = excluded.updated_at
	`, s.UserID, s.NewTicket, s.DeletedTicket, s.InWorkTicket, s.UpdatedTicket, s.SolvedTicket,
		s.SharedWorkflow, s.SharedPrompt, s.RoleChange, s.NewMail, s.WebhookURL, s.UpdatedAt)
	return err
}
