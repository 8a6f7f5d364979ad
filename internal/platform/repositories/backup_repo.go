package repositories

import (
	"context"
	"database/sql"

	"helpdesk/internal/platform/models"
)

type BackupRepository struct {
	db *sql.DB
}

func NewBackupRepository(db *sql.DB) *BackupRepository {
	return &BackupRepository{db: db}
}

func (r *BackupRepository) Create(ctx context.Context, b *models.Backup) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO backups (id, owner_id, title, type, created_at) VALUES (?, ?, ?, ?, ?)
	`, b.ID, b.OwnerID, b.Title, b.Type, b.CreatedAt)
	return err
}

func (r *BackupRepository) GetByID(ctx context.Context, id string) (*models.Backup, error) {
	b := &models.Backup{}
	err := r.db.QueryRowContext(ctx, `SELECT id, owner_id, title, type, created_at FROM backups WHERE id = ?`, id).
		Scan(&b.ID, &b.OwnerID, &b.Title, &b.Type, &b.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return b, nil
}

func (r *BackupRepository) CreateShare(ctx context.Context, s *models.BackupShare) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO backup_shares (id, backup_id, shared_by, shared_with, access_role, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, s.ID, s.BackupID, s.SharedBy, s.SharedWith, s.AccessRole, s.CreatedAt)
	return translateConstraint(err)
}

func (r *BackupRepository) ListShares(ctx context.Context, backupID string) ([]*models.BackupShare, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, backup_id, shared_by, shared_with, access_role, created_at
		FROM backup_shares WHERE backup_id = ? ORDER BY created_at
	`, backupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shares := []*models.BackupShare{}
	for rows.Next() {
		var s models.BackupShare
		if err := rows.Scan(&s.ID, &s.BackupID, &s.SharedBy, &s.SharedWith, &s.AccessRole, &s.CreatedAt); err != nil {
			return nil, err
		}
		shares = append(shares, &s)
	}
	return shares, rows.Err()
}
