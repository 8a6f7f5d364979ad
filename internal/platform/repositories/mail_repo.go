package repositories

import (
	"context"
	"database/sql"

	"helpdesk/internal/platform/models"
)

type MailRepository struct {
	db *sql.DB
}

func NewMailRepository(db *sql.DB) *MailRepository {
	return &MailRepository{db: db}
}

func (r *MailRepository) Create(ctx context.Context, mail *models.Mail) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO mails (id, sender_id, recipient_id, subject, body, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, mail.ID, mail.SenderID, mail.RecipientID, mail.Subject, mail.Body, mail.CreatedAt)
	return err
}

func (r *MailRepository) ListByRecipient(ctx context.Context, recipientID string, limit, offset int) ([]*models.Mail, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, sender_id, recipient_id, subject, body, read_at, created_at
		FROM mails WHERE recipient_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, recipientID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	mails := []*models.Mail{}
	for rows.Next() {
		var m models.Mail
		var readAt sql.NullInt64
		if err := rows.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.Subject, &m.Body, &readAt, &m.CreatedAt); err != nil {
			return nil, err
		}
		if readAt.Valid {
			val := readAt.Int64
			m.ReadAt = &val
		}
		mails = append(mails, &m)
	}
	return mails, rows.Err()
}
