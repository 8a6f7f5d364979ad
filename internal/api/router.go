package api

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/samber/lo"

	apiContext "helpdesk/internal/api/context"
	"helpdesk/internal/api/handlers"
	"helpdesk/internal/api/middleware"
	"helpdesk/internal/pkg/errors"
	"helpdesk/internal/platform/auth"
	"helpdesk/internal/platform/models"
)

type Dependencies struct {
	AuthHandler                 *handlers.AuthHandler
	TicketHandler               *handlers.TicketHandler
	UserHandler                 *handlers.UserHandler
	MailHandler                 *handlers.MailHandler
	BackupHandler               *handlers.BackupHandler
	SettingsHandler             *handlers.SettingsHandler
	NotificationSettingsHandler *handlers.NotificationSettingsHandler
	AuditHandler                *handlers.AuditHandler
	HealthHandler               *handlers.HealthHandler
	MetricsHandler              *handlers.MetricsHandler
	AuthMiddleware              *middleware.AuthMiddleware
	RateLimiter                 *middleware.RateLimiter
}

func NewRouter(deps *Dependencies) *httprouter.Router {
	router := httprouter.New()

	authMid := deps.AuthMiddleware
	read := deps.RateLimiter.Limit("api_read")
	write := deps.RateLimiter.Limit("api_write")
	admin := requireRole(models.RoleAdmin)
	staff := requireRole(models.RoleAdmin, models.RoleSupport)

	router.GET("/health", wrap(deps.HealthHandler.Check))
	router.GET("/metrics", wrap(deps.MetricsHandler.Export))

	// Authentication routes
	authLimit := deps.RateLimiter.Limit("auth")
	router.POST("/api/v1/auth/register", chain(deps.AuthHandler.Register, authLimit))
	router.POST("/api/v1/auth/login", chain(deps.AuthHandler.Login, authLimit))

	// Tickets
	router.POST("/api/v1/tickets",
		chain(deps.TicketHandler.Create, authMid.Handle, write))
	router.GET("/api/v1/tickets",
		chain(deps.TicketHandler.List, authMid.Handle, read))
	router.GET("/api/v1/tickets/:id",
		chain(deps.TicketHandler.Get, authMid.Handle, read))
	router.PATCH("/api/v1/tickets/:id",
		chain(deps.TicketHandler.Update, authMid.Handle, write))
	router.POST("/api/v1/tickets/:id/in-work",
		chain(deps.TicketHandler.InWork, authMid.Handle, write, staff))
	router.POST("/api/v1/tickets/:id/solve",
		chain(deps.TicketHandler.Solve, authMid.Handle, write, staff))
	router.DELETE("/api/v1/tickets/:id",
		chain(deps.TicketHandler.Delete, authMid.Handle, write, admin))

	// User management
	router.GET("/api/v1/users",
		chain(deps.UserHandler.List, authMid.Handle, read, admin))
	router.PATCH("/api/v1/users/:id/role",
		chain(deps.UserHandler.UpdateRole, authMid.Handle, write, admin))
	router.POST("/api/v1/users/:id/approve",
		chain(deps.UserHandler.Approve, authMid.Handle, write, admin))
	router.POST("/api/v1/users/:id/reject",
		chain(deps.UserHandler.Reject, authMid.Handle, write, admin))

	// Mail
	router.POST("/api/v1/mails",
		chain(deps.MailHandler.Send, authMid.Handle, write))
	router.GET("/api/v1/mails",
		chain(deps.MailHandler.Inbox, authMid.Handle, read))

	// Backups
	router.POST("/api/v1/backups",
		chain(deps.BackupHandler.Create, authMid.Handle, write))
	router.POST("/api/v1/backups/:id/shares",
		chain(deps.BackupHandler.Share, authMid.Handle, write))

	// Settings
	router.GET("/api/v1/admin/settings/webhook",
		chain(deps.SettingsHandler.GetWebhook, authMid.Handle, read, admin))
	router.PUT("/api/v1/admin/settings/webhook",
		chain(deps.SettingsHandler.UpdateWebhook, authMid.Handle, write, admin))
	router.GET("/api/v1/admin/audit",
		chain(deps.AuditHandler.List, authMid.Handle, read, admin))
	router.GET("/api/v1/me/notifications",
		chain(deps.NotificationSettingsHandler.Get, authMid.Handle, read))
	router.PUT("/api/v1/me/notifications",
		chain(deps.NotificationSettingsHandler.Update, authMid.Handle, write))

	return router
}

// chain applies middlewares in the order given.
func chain(handler http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) httprouter.Handle {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return wrap(handler)
}

// Convert http.HandlerFunc to httprouter.Handle
func wrap(handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		ctx := context.WithValue(r.Context(), apiContext.Params, ps)
		handler(w, r.WithContext(ctx))
	}
}

func requireRole(roles ...string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			claims, _ := r.Context().Value(apiContext.Claims).(*auth.Claims)

			if claims == nil || !lo.Contains(roles, claims.Role) {
				errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Insufficient permissions", nil)
				return
			}

			next(w, r)
		}
	}
}
