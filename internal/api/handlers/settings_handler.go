package handlers

import (
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/samber/lo"

	"helpdesk/internal/engine/webhooks"
	"helpdesk/internal/pkg/errors"
	"helpdesk/internal/platform/audit"
	"helpdesk/internal/platform/repositories"
)

// SettingsHandler edits the global webhook destination keys. Values are read
// again on every dispatch, so changes apply to the next notification.
type SettingsHandler struct {
	settings *repositories.SettingsRepository
	audit    *audit.Logger
}

func NewSettingsHandler(settings *repositories.SettingsRepository, auditLog *audit.Logger) *SettingsHandler {
	return &SettingsHandler{settings: settings, audit: auditLog}
}

func (h *SettingsHandler) GetWebhook(w http.ResponseWriter, r *http.Request) {
	values, err := h.settings.GetMany(r.Context(), webhooks.SettingKeys()...)
	if err != nil {
		writeInternal(w, err, "Failed to load settings")
		return
	}

	out := make(map[string]string, len(webhooks.SettingKeys()))
	for _, key := range webhooks.SettingKeys() {
		out[key] = values[key]
	}
	errors.WriteJSON(w, http.StatusOK, out)
}

// UpdateWebhook upserts the given keys. An empty value disables that key.
func (h *SettingsHandler) UpdateWebhook(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	var req map[string]string
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidBody(w)
		return
	}
	if err := validateWebhookSettings(req); err != nil {
		errors.WriteValidationError(w, err)
		return
	}

	if err := h.settings.SetMany(r.Context(), req); err != nil {
		writeInternal(w, err, "Failed to save settings")
		return
	}

	h.audit.Log(r, claims.UserID, "settings.webhook", "settings", "webhook", lo.MapValues(req, func(v string, _ string) interface{} { return v }))
	h.GetWebhook(w, r)
}

func validateWebhookSettings(values map[string]string) error {
	known := webhooks.SettingKeys()
	errs := validation.Errors{}
	for key, value := range values {
		switch {
		case !lo.Contains(known, key):
			errs[key] = validation.NewError("unknown_key", "unknown setting")
		case value == "":
		case key == webhooks.KeyWebhookURL, key == webhooks.KeyWebhookBaseURL, key == webhooks.KeyWebhookDomain:
			if err := webhooks.ValidateURL(value); err != nil {
				errs[key] = validation.NewError("invalid_url", "must be an absolute http(s) url")
			}
		case strings.ContainsAny(value, " \t\n"):
			errs[key] = validation.NewError("invalid_path", "must not contain whitespace")
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
