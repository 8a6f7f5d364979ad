package handlers

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"helpdesk/internal/engine/webhooks"
	"helpdesk/internal/pkg/errors"
	"helpdesk/internal/platform/models"
	"helpdesk/internal/platform/repositories"
)

type NotificationSettingsHandler struct {
	repo *repositories.NotificationSettingsRepository
}

func NewNotificationSettingsHandler(repo *repositories.NotificationSettingsRepository) *NotificationSettingsHandler {
	return &NotificationSettingsHandler{repo: repo}
}

type NotificationSettingsResponse struct {
	webhooks.Preferences
	WebhookURL string `json:"webhook_url"`
}

// UpdateNotificationSettingsRequest leaves flags that are absent untouched.
type UpdateNotificationSettingsRequest struct {
	NewTicket      *bool   `json:"new_ticket"`
	DeletedTicket  *bool   `json:"deleted_ticket"`
	InWorkTicket   *bool   `json:"in_work_ticket"`
	UpdatedTicket  *bool   `json:"updated_ticket"`
	SolvedTicket   *bool   `json:"solved_ticket"`
	SharedWorkflow *bool   `json:"shared_workflow"`
	SharedPrompt   *bool   `json:"shared_prompt"`
	RoleChange     *bool   `json:"role_change"`
	NewMail        *bool   `json:"new_mail"`
	WebhookURL     *string `json:"webhook_url"`
}

func (req UpdateNotificationSettingsRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.WebhookURL, validation.By(func(value interface{}) error {
			var raw string
			switch v := value.(type) {
			case string:
				raw = v
			case *string:
				if v != nil {
					raw = *v
				}
			}
			if raw == "" {
				return nil
			}
			return webhooks.ValidateURL(raw)
		})),
	)
}

func (h *NotificationSettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	row, err := h.repo.GetByUserID(r.Context(), claims.UserID)
	if err != nil {
		writeInternal(w, err, "Failed to load notification settings")
		return
	}

	errors.WriteJSON(w, http.StatusOK, toNotificationResponse(row))
}

func (h *NotificationSettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	var req UpdateNotificationSettingsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidBody(w)
		return
	}
	if err := req.Validate(); err != nil {
		errors.WriteValidationError(w, err)
		return
	}

	row, err := h.repo.GetByUserID(r.Context(), claims.UserID)
	if err != nil {
		writeInternal(w, err, "Failed to load notification settings")
		return
	}
	if row == nil {
		row = settingsFromPreferences(claims.UserID, webhooks.DefaultPreferences())
	}

	apply := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&row.NewTicket, req.NewTicket)
	apply(&row.DeletedTicket, req.DeletedTicket)
	apply(&row.InWorkTicket, req.InWorkTicket)
	apply(&row.UpdatedTicket, req.UpdatedTicket)
	apply(&row.SolvedTicket, req.SolvedTicket)
	apply(&row.SharedWorkflow, req.SharedWorkflow)
	apply(&row.SharedPrompt, req.SharedPrompt)
	apply(&row.RoleChange, req.RoleChange)
	apply(&row.NewMail, req.NewMail)
	if req.WebhookURL != nil {
		row.WebhookURL = *req.WebhookURL
	}

	if err := h.repo.Upsert(r.Context(), row); err != nil {
		writeInternal(w, err, "Failed to save notification settings")
		return
	}

	errors.WriteJSON(w, http.StatusOK, toNotificationResponse(row))
}

func toNotificationResponse(row *models.NotificationSettings) NotificationSettingsResponse {
	resp := NotificationSettingsResponse{Preferences: webhooks.PreferencesFromSettings(row)}
	if row != nil {
		resp.WebhookURL = row.WebhookURL
	}
	return resp
}

func settingsFromPreferences(userID string, p webhooks.Preferences) *models.NotificationSettings {
	return &models.NotificationSettings{
		UserID:         userID,
		NewTicket:      p.NewTicket,
		DeletedTicket:  p.DeletedTicket,
		InWorkTicket:   p.InWorkTicket,
		UpdatedTicket:  p.UpdatedTicket,
		SolvedTicket:   p.SolvedTicket,
		SharedWorkflow: p.SharedWorkflow,
		SharedPrompt:   p.SharedPrompt,
		RoleChange:     p.RoleChange,
		NewMail:        p.NewMail,
	}
}
