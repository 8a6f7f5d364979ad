package handlers

import (
	goerrors "errors"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"helpdesk/internal/engine/webhooks"
	"helpdesk/internal/pkg/errors"
	"helpdesk/internal/pkg/validator"
	"helpdesk/internal/platform/audit"
	"helpdesk/internal/platform/models"
	"helpdesk/internal/platform/repositories"
)

type BackupHandler struct {
	backups  *repositories.BackupRepository
	users    *repositories.UserRepository
	notifier Notifier
	audit    *audit.Logger
}

func NewBackupHandler(backups *repositories.BackupRepository, users *repositories.UserRepository, notifier Notifier, auditLog *audit.Logger) *BackupHandler {
	return &BackupHandler{backups: backups, users: users, notifier: notifier, audit: auditLog}
}

type CreateBackupRequest struct {
	Title string `json:"title"`
	Type  string `json:"type"`
}

func (req CreateBackupRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&req.Type, validation.Required, validator.OneOf(models.BackupTypeWorkflow, models.BackupTypePrompt)),
	)
}

func (h *BackupHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	var req CreateBackupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidBody(w)
		return
	}
	if err := req.Validate(); err != nil {
		errors.WriteValidationError(w, err)
		return
	}

	backup := &models.Backup{
		ID:        "bkp_" + uuid.NewString(),
		OwnerID:   claims.UserID,
		Title:     req.Title,
		Type:      req.Type,
		CreatedAt: time.Now().Unix(),
	}
	if err := h.backups.Create(r.Context(), backup); err != nil {
		writeInternal(w, err, "Failed to create backup")
		return
	}

	h.audit.Log(r, claims.UserID, "backup.create", "backup", backup.ID, nil)
	errors.WriteJSON(w, http.StatusCreated, backup)
}

type ShareBackupRequest struct {
	UserID     string `json:"user_id"`
	AccessRole string `json:"access_role"`
}

func (req ShareBackupRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.AccessRole, validator.OneOf(models.AccessViewer, models.AccessEditor)),
	)
}

// Share grants another user access to a backup. The webhook action follows
// the backup type.
func (h *BackupHandler) Share(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	backup, err := h.backups.GetByID(r.Context(), param(r, "id"))
	if err != nil {
		writeInternal(w, err, "Failed to load backup")
		return
	}
	if backup == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Backup not found", nil)
		return
	}
	if backup.OwnerID != claims.UserID {
		errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Only the owner can share this backup", nil)
		return
	}

	var req ShareBackupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidBody(w)
		return
	}
	if req.AccessRole == "" {
		req.AccessRole = models.AccessViewer
	}
	if err := req.Validate(); err != nil {
		errors.WriteValidationError(w, err)
		return
	}
	if req.UserID == claims.UserID {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Cannot share a backup with yourself", nil)
		return
	}

	recipient, err := h.users.GetByID(r.Context(), req.UserID)
	if err != nil {
		writeInternal(w, err, "Failed to load user")
		return
	}
	if recipient == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "User not found", nil)
		return
	}

	share := &models.BackupShare{
		ID:         "shr_" + uuid.NewString(),
		BackupID:   backup.ID,
		SharedBy:   claims.UserID,
		SharedWith: recipient.ID,
		AccessRole: req.AccessRole,
		CreatedAt:  time.Now().Unix(),
	}
	if err := h.backups.CreateShare(r.Context(), share); err != nil {
		if goerrors.Is(err, repositories.ErrDuplicate) {
			errors.WriteError(w, http.StatusConflict, errors.ErrCodeConflict, "Backup already shared with this user", nil)
			return
		}
		writeInternal(w, err, "Failed to share backup")
		return
	}

	action := webhooks.ActionSharedWorkflow
	if backup.Type == models.BackupTypePrompt {
		action = webhooks.ActionSharedPrompt
	}

	h.audit.Log(r, claims.UserID, "backup.share", "backup", backup.ID, map[string]interface{}{"shared_with": recipient.ID})
	h.notifier.Notify(r.Context(), webhooks.CategoryShares, action, webhooks.Context{
		Actor:   lookupIdentity(r.Context(), h.users, claims.UserID),
		Subject: identityOf(recipient),
		Backup: &webhooks.BackupInfo{
			ID:         backup.ID,
			Title:      backup.Title,
			Type:       backup.Type,
			AccessRole: share.AccessRole,
		},
	})

	errors.WriteJSON(w, http.StatusCreated, share)
}
