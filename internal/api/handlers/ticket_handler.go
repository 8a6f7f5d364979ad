package handlers

import (
	goerrors "errors"
	"net/http"

	"github.com/samber/lo"

	"helpdesk/internal/engine/tickets"
	"helpdesk/internal/engine/webhooks"
	"helpdesk/internal/pkg/errors"
	"helpdesk/internal/platform/audit"
	"helpdesk/internal/platform/auth"
	"helpdesk/internal/platform/models"
	"helpdesk/internal/platform/repositories"
)

var staffRoles = []string{models.RoleAdmin, models.RoleSupport}

type TicketHandler struct {
	service  *tickets.Service
	users    *repositories.UserRepository
	notifier Notifier
	audit    *audit.Logger
}

func NewTicketHandler(service *tickets.Service, users *repositories.UserRepository, notifier Notifier, auditLog *audit.Logger) *TicketHandler {
	return &TicketHandler{
		service:  service,
		users:    users,
		notifier: notifier,
		audit:    auditLog,
	}
}

type CreateTicketRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Urgency     string `json:"urgency"`
	Deadline    *int64 `json:"deadline"`
}

func (h *TicketHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	var req CreateTicketRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidBody(w)
		return
	}

	t, err := h.service.CreateTicket(r.Context(), &tickets.Ticket{
		Title:       req.Title,
		Description: req.Description,
		Urgency:     req.Urgency,
		Deadline:    req.Deadline,
		CreatedBy:   claims.UserID,
	})
	if err != nil {
		writeTicketError(w, err)
		return
	}

	h.audit.Log(r, claims.UserID, "ticket.create", "ticket", t.ID, map[string]interface{}{"title": t.Title})
	h.notifyTicket(r, claims, webhooks.ActionTicketCreated, t)

	errors.WriteJSON(w, http.StatusCreated, t)
}

func (h *TicketHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	filter := tickets.ListFilter{
		Status: r.URL.Query().Get("status"),
		Limit:  queryInt(r, "limit", 50),
		Offset: queryInt(r, "offset", 0),
	}
	if isStaff(claims) {
		filter.CreatedBy = r.URL.Query().Get("created_by")
	} else {
		filter.CreatedBy = claims.UserID
	}

	list, err := h.service.ListTickets(r.Context(), filter)
	if err != nil {
		writeInternal(w, err, "Failed to list tickets")
		return
	}

	errors.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"tickets": list,
		"limit":   filter.Limit,
		"offset":  filter.Offset,
	})
}

func (h *TicketHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	t, err := h.service.GetTicket(r.Context(), param(r, "id"))
	if err != nil {
		writeTicketError(w, err)
		return
	}
	if t.CreatedBy != claims.UserID && !isStaff(claims) {
		errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Not allowed to view this ticket", nil)
		return
	}

	errors.WriteJSON(w, http.StatusOK, t)
}

// Update is open to the ticket's creator and to admins.
func (h *TicketHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	id := param(r, "id")

	existing, err := h.service.GetTicket(r.Context(), id)
	if err != nil {
		writeTicketError(w, err)
		return
	}
	if existing.CreatedBy != claims.UserID && claims.Role != models.RoleAdmin {
		errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Only the creator or an admin can edit this ticket", nil)
		return
	}

	var req tickets.Update
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidBody(w)
		return
	}

	t, err := h.service.UpdateTicket(r.Context(), id, req)
	if err != nil {
		writeTicketError(w, err)
		return
	}

	h.audit.Log(r, claims.UserID, "ticket.update", "ticket", t.ID, nil)
	h.notifyTicket(r, claims, webhooks.ActionUpdated, t)

	errors.WriteJSON(w, http.StatusOK, t)
}

func (h *TicketHandler) InWork(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, tickets.StatusInWork, webhooks.ActionInWork)
}

func (h *TicketHandler) Solve(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, tickets.StatusSolved, webhooks.ActionSolved)
}

func (h *TicketHandler) setStatus(w http.ResponseWriter, r *http.Request, status string, action webhooks.Action) {
	claims := claimsFrom(r)

	t, err := h.service.SetStatus(r.Context(), param(r, "id"), status, claims.UserID)
	if err != nil {
		writeTicketError(w, err)
		return
	}

	h.audit.Log(r, claims.UserID, "ticket."+status, "ticket", t.ID, nil)
	h.notifyTicket(r, claims, action, t)

	errors.WriteJSON(w, http.StatusOK, t)
}

func (h *TicketHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	t, err := h.service.DeleteTicket(r.Context(), param(r, "id"))
	if err != nil {
		writeTicketError(w, err)
		return
	}

	h.audit.Log(r, claims.UserID, "ticket.delete", "ticket", t.ID, map[string]interface{}{"title": t.Title})
	h.notifyTicket(r, claims, webhooks.ActionDeleted, t)

	w.WriteHeader(http.StatusNoContent)
}

// notifyTicket addresses ticket events to the ticket's creator.
func (h *TicketHandler) notifyTicket(r *http.Request, claims *auth.Claims, action webhooks.Action, t *tickets.Ticket) {
	ctx := r.Context()
	actor := lookupIdentity(ctx, h.users, claims.UserID)

	c := webhooks.Context{
		Actor: actor,
		Ticket: &webhooks.TicketInfo{
			ID:       t.ID,
			Title:    t.Title,
			Status:   t.Status,
			Urgency:  t.Urgency,
			Deadline: t.DeadlineTime(),
		},
	}
	if t.CreatedBy == claims.UserID {
		c.Subject = actor
	} else {
		c.Subject = lookupIdentity(ctx, h.users, t.CreatedBy)
	}

	h.notifier.Notify(ctx, webhooks.CategoryTickets, action, c)
}

func isStaff(claims *auth.Claims) bool {
	return claims != nil && lo.Contains(staffRoles, claims.Role)
}

func writeTicketError(w http.ResponseWriter, err error) {
	switch {
	case goerrors.Is(err, tickets.ErrNotFound):
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Ticket not found", nil)
	case goerrors.Is(err, tickets.ErrInvalidTransition):
		errors.WriteError(w, http.StatusConflict, errors.ErrCodeConflict, err.Error(), nil)
	case isValidationError(err):
		errors.WriteValidationError(w, err)
	default:
		writeInternal(w, err, "Ticket operation failed")
	}
}
