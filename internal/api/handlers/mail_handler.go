package handlers

import (
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

type MailHandler struct {
	mails    *repositories.MailRepository
	users    *repositories.UserRepository
	notifier Notifier
	audit    *audit.Logger
}

func NewMailHandler(mails *repositories.MailRepository, users *repositories.UserRepository, notifier Notifier, auditLog *audit.Logger) *MailHandler {
	return &MailHandler{mails: mails, users: users, notifier: notifier, audit: auditLog}
}

// SendMailRequest addresses the recipient by id or by email.
type SendMailRequest struct {
	RecipientID    string `json:"recipient_id"`
	RecipientEmail string `json:"recipient_email"`
	Subject        string `json:"subject"`
	Body           string `json:"body"`
}

func (req SendMailRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.RecipientID, validation.When(req.RecipientEmail == "", validation.Required.Error("recipient_id or recipient_email is required"))),
		validation.Field(&req.RecipientEmail, validation.When(req.RecipientID == "", validator.Email...)),
		validation.Field(&req.Subject, validation.Required, validation.Length(1, 300)),
		validation.Field(&req.Body, validation.Length(0, 50000)),
	)
}

func (h *MailHandler) Send(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	var req SendMailRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidBody(w)
		return
	}
	req.RecipientEmail = validator.NormalizeEmail(req.RecipientEmail)
	if err := req.Validate(); err != nil {
		errors.WriteValidationError(w, err)
		return
	}

	var recipient *models.User
	var err error
	if req.RecipientID != "" {
		recipient, err = h.users.GetByID(r.Context(), req.RecipientID)
	} else {
		recipient, err = h.users.GetByEmail(r.Context(), req.RecipientEmail)
	}
	if err != nil {
		writeInternal(w, err, "Failed to load recipient")
		return
	}
	if recipient == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Recipient not found", nil)
		return
	}

	mail := &models.Mail{
		ID:          "mail_" + uuid.NewString(),
		SenderID:    claims.UserID,
		RecipientID: recipient.ID,
		Subject:     req.Subject,
		Body:        req.Body,
		CreatedAt:   time.Now().Unix(),
	}
	if err := h.mails.Create(r.Context(), mail); err != nil {
		writeInternal(w, err, "Failed to send mail")
		return
	}

	h.audit.Log(r, claims.UserID, "mail.send", "mail", mail.ID, map[string]interface{}{"recipient_id": recipient.ID})
	h.notifier.Notify(r.Context(), webhooks.CategoryMails, webhooks.ActionMailReceived, webhooks.Context{
		Actor:   lookupIdentity(r.Context(), h.users, claims.UserID),
		Subject: identityOf(recipient),
		Mail:    &webhooks.MailInfo{ID: mail.ID, Subject: mail.Subject},
	})

	errors.WriteJSON(w, http.StatusCreated, mail)
}

func (h *MailHandler) Inbox(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	limit := queryInt(r, "limit", 50)
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	offset := max(queryInt(r, "offset", 0), 0)

	mails, err := h.mails.ListByRecipient(r.Context(), claims.UserID, limit, offset)
	if err != nil {
		writeInternal(w, err, "Failed to load inbox")
		return
	}

	errors.WriteJSON(w, http.StatusOK, map[string]interface{}{"mails": mails})
}
