package handlers

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"helpdesk/internal/engine/webhooks"
	"helpdesk/internal/pkg/errors"
	"helpdesk/internal/pkg/validator"
	"helpdesk/internal/platform/audit"
	"helpdesk/internal/platform/models"
	"helpdesk/internal/platform/repositories"
)

type UserHandler struct {
	users    *repositories.UserRepository
	notifier Notifier
	audit    *audit.Logger
}

func NewUserHandler(users *repositories.UserRepository, notifier Notifier, auditLog *audit.Logger) *UserHandler {
	return &UserHandler{users: users, notifier: notifier, audit: auditLog}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if err := validation.Validate(status, validator.OneOf(models.UserStatusPending, models.UserStatusApproved, models.UserStatusRejected)); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "status: "+err.Error(), nil)
		return
	}

	users, err := h.users.List(r.Context(), status)
	if err != nil {
		writeInternal(w, err, "Failed to list users")
		return
	}

	errors.WriteJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}

type UpdateRoleRequest struct {
	Role string `json:"role"`
}

func (req UpdateRoleRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Role, validation.Required, validator.OneOf(models.RoleAdmin, models.RoleSupport, models.RoleUser)),
	)
}

func (h *UserHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	var req UpdateRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidBody(w)
		return
	}
	if err := req.Validate(); err != nil {
		errors.WriteValidationError(w, err)
		return
	}

	target := h.loadTarget(w, r)
	if target == nil {
		return
	}
	if target.ID == claims.UserID {
		errors.WriteError(w, http.StatusConflict, errors.ErrCodeConflict, "Admins cannot change their own role", nil)
		return
	}

	before := target.Role
	if before == req.Role {
		errors.WriteJSON(w, http.StatusOK, target)
		return
	}

	if err := h.users.UpdateRole(r.Context(), target.ID, req.Role); err != nil {
		writeInternal(w, err, "Failed to update role")
		return
	}
	target.Role = req.Role

	h.audit.Log(r, claims.UserID, "user.role", "user", target.ID, map[string]interface{}{"before": before, "after": req.Role})
	h.notifier.Notify(r.Context(), webhooks.CategoryUsers, webhooks.ActionRoleChanged, webhooks.Context{
		Actor:      lookupIdentity(r.Context(), h.users, claims.UserID),
		Subject:    identityOf(target),
		RoleBefore: before,
		RoleAfter:  req.Role,
	})

	errors.WriteJSON(w, http.StatusOK, target)
}

func (h *UserHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, models.UserStatusApproved, webhooks.ActionUserApproved)
}

func (h *UserHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, models.UserStatusRejected, webhooks.ActionUserRejected)
}

func (h *UserHandler) setStatus(w http.ResponseWriter, r *http.Request, status string, action webhooks.Action) {
	claims := claimsFrom(r)

	target := h.loadTarget(w, r)
	if target == nil {
		return
	}

	if err := h.users.UpdateStatus(r.Context(), target.ID, status); err != nil {
		writeInternal(w, err, "Failed to update user status")
		return
	}
	target.Status = status

	h.audit.Log(r, claims.UserID, "user."+status, "user", target.ID, nil)
	h.notifier.Notify(r.Context(), webhooks.CategoryUsers, action, webhooks.Context{
		Actor:   lookupIdentity(r.Context(), h.users, claims.UserID),
		Subject: identityOf(target),
	})

	errors.WriteJSON(w, http.StatusOK, target)
}

// loadTarget writes the error response itself and returns nil when the user cannot be loaded.
func (h *UserHandler) loadTarget(w http.ResponseWriter, r *http.Request) *models.User {
	target, err := h.users.GetByID(r.Context(), param(r, "id"))
	if err != nil {
		writeInternal(w, err, "Failed to load user")
		return nil
	}
	if target == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "User not found", nil)
		return nil
	}
	return target
}
