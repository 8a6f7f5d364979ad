package handlers

import (
	"context"
	"encoding/json"
	goerrors "errors"
	"net/http"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/log"

	apiContext "helpdesk/internal/api/context"
	"helpdesk/internal/engine/webhooks"
	"helpdesk/internal/pkg/errors"
	"helpdesk/internal/platform/auth"
	"helpdesk/internal/platform/models"
	"helpdesk/internal/platform/repositories"
)

// Notifier is the post-commit webhook phase. Handlers call it only after the
// primary write succeeded and never let its result change the response.
type Notifier interface {
	Notify(ctx context.Context, category webhooks.Category, action webhooks.Action, c webhooks.Context) webhooks.DispatchResult
}

func claimsFrom(r *http.Request) *auth.Claims {
	claims, _ := r.Context().Value(apiContext.Claims).(*auth.Claims)
	return claims
}

func param(r *http.Request, name string) string {
	ps, _ := r.Context().Value(apiContext.Params).(httprouter.Params)
	return ps.ByName(name)
}

func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func queryInt(r *http.Request, name string, fallback int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return fallback
	}
	return n
}

func writeInvalidBody(w http.ResponseWriter) {
	errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
}

func writeInternal(w http.ResponseWriter, err error, msg string) {
	log.Error().Err(err).Msg(msg)
	errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, msg, nil)
}

func isValidationError(err error) bool {
	var verrs validation.Errors
	return goerrors.As(err, &verrs)
}

func identityOf(u *models.User) webhooks.Identity {
	if u == nil {
		return webhooks.Identity{}
	}
	return webhooks.Identity{ID: u.ID, Email: u.Email, FullName: u.FullName}
}

// lookupIdentity loads a user for a webhook payload. A failed lookup still
// yields the id; the payload builder fills in the placeholders.
func lookupIdentity(ctx context.Context, users *repositories.UserRepository, userID string) webhooks.Identity {
	if userID == "" {
		return webhooks.Identity{}
	}
	u, err := users.GetByID(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("failed to load user for webhook payload")
	}
	if u == nil {
		return webhooks.Identity{ID: userID}
	}
	return identityOf(u)
}
