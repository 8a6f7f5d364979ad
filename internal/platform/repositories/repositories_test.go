package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helpdesk/internal/platform/database"
	"helpdesk/internal/platform/models"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.OpenMemory()
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedUser(t *testing.T, db *sql.DB, id, email, role string) *models.User {
	t.Helper()
	now := time.Now().Unix()
	user := &models.User{
		ID:           id,
		Email:        email,
		PasswordHash: "hash",
		FullName:     "User " + id,
		Role:         role,
		Status:       models.UserStatusApproved,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := NewUserRepository(db).Create(context.Background(), user); err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}
	return user
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	seedUser(t, db, "usr_1", "one@example.com", models.RoleUser)

	byID, err := repo.GetByID(ctx, "usr_1")
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "one@example.com", byID.Email)

	byEmail, err := repo.GetByEmail(ctx, "one@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, "usr_1", byEmail.ID)

	missing, err := repo.GetByID(ctx, "usr_missing")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserRepository_UpdateRoleAndStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	seedUser(t, db, "usr_1", "one@example.com", models.RoleUser)

	require.NoError(t, repo.UpdateRole(ctx, "usr_1", models.RoleSupport))
	require.NoError(t, repo.UpdateStatus(ctx, "usr_1", models.UserStatusRejected))

	user, err := repo.GetByID(ctx, "usr_1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleSupport, user.Role)
	assert.Equal(t, models.UserStatusRejected, user.Status)

	assert.ErrorIs(t, repo.UpdateRole(ctx, "usr_missing", models.RoleAdmin), ErrNotFound)

	approved, err := repo.List(ctx, models.UserStatusApproved)
	require.NoError(t, err)
	assert.Empty(t, approved)
}

func TestSettingsRepository_SetAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSettingsRepository(db)
	ctx := context.Background()

	_, ok, err := repo.Get(ctx, "webhook_url")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.SetMany(ctx, map[string]string{
		"webhook_base_url":     "https://hooks.test",
		"webhook_path_tickets": "/tickets",
	}))
	require.NoError(t, repo.SetMany(ctx, map[string]string{"webhook_path_tickets": "/t2"}))

	values, err := repo.GetMany(ctx, "webhook_base_url", "webhook_path_tickets", "webhook_url")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"webhook_base_url":     "https://hooks.test",
		"webhook_path_tickets": "/t2",
	}, values)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSettingsRepository_GetQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT value FROM settings WHERE key = ?").
		WithArgs("webhook_url").
		WillReturnError(errors.New("no such table: settings"))

	_, ok, err := NewSettingsRepository(db).Get(context.Background(), "webhook_url")
	assert.Error(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationSettingsRepository_Upsert(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNotificationSettingsRepository(db)
	ctx := context.Background()
	seedUser(t, db, "usr_1", "one@example.com", models.RoleUser)

	missing, err := repo.GetByUserID(ctx, "usr_1")
	require.NoError(t, err)
	assert.Nil(t, missing)

	prefs := &models.NotificationSettings{UserID: "usr_1", NewTicket: true, SolvedTicket: true, WebhookURL: "https://me.test/hook"}
	require.NoError(t, repo.Upsert(ctx, prefs))

	prefs.SolvedTicket = false
	require.NoError(t, repo.Upsert(ctx, prefs))

	got, err := repo.GetByUserID(ctx, "usr_1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.NewTicket)
	assert.False(t, got.SolvedTicket)
	assert.False(t, got.DeletedTicket)
	assert.Equal(t, "https://me.test/hook", got.WebhookURL)
}

func TestMailRepository_CreateAndList(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMailRepository(db)
	ctx := context.Background()
	seedUser(t, db, "usr_1", "one@example.com", models.RoleUser)
	seedUser(t, db, "usr_2", "two@example.com", models.RoleUser)

	require.NoError(t, repo.Create(ctx, &models.Mail{ID: "mail_1", SenderID: "usr_1", RecipientID: "usr_2", Subject: "Hi", CreatedAt: 1}))
	require.NoError(t, repo.Create(ctx, &models.Mail{ID: "mail_2", SenderID: "usr_2", RecipientID: "usr_1", Subject: "Re: Hi", CreatedAt: 2}))

	inbox, err := repo.ListByRecipient(ctx, "usr_2", 10, 0)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, "mail_1", inbox[0].ID)
}

func TestBackupRepository_Shares(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBackupRepository(db)
	ctx := context.Background()
	seedUser(t, db, "usr_1", "one@example.com", models.RoleUser)
	seedUser(t, db, "usr_2", "two@example.com", models.RoleUser)

	require.NoError(t, repo.Create(ctx, &models.Backup{ID: "bkp_1", OwnerID: "usr_1", Title: "Flow", Type: models.BackupTypeWorkflow, CreatedAt: 1}))

	share := &models.BackupShare{ID: "shr_1", BackupID: "bkp_1", SharedBy: "usr_1", SharedWith: "usr_2", AccessRole: models.AccessViewer, CreatedAt: 2}
	require.NoError(t, repo.CreateShare(ctx, share))

	dup := *share
	dup.ID = "shr_2"
	assert.ErrorIs(t, repo.CreateShare(ctx, &dup), ErrDuplicate)

	shares, err := repo.ListShares(ctx, "bkp_1")
	require.NoError(t, err)
	assert.Len(t, shares, 1)

	missing, err := repo.GetByID(ctx, "bkp_missing")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
