package handlers

import (
	"net/http"

	"helpdesk/internal/pkg/errors"
	"helpdesk/internal/platform/audit"
)

type AuditHandler struct {
	audit *audit.Logger
}

func NewAuditHandler(auditLog *audit.Logger) *AuditHandler {
	return &AuditHandler{audit: auditLog}
}

func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.audit.List(r.Context(), queryInt(r, "limit", 100))
	if err != nil {
		writeInternal(w, err, "Failed to load audit log")
		return
	}

	errors.WriteJSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}
