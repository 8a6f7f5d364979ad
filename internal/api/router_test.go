package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"helpdesk/internal/api/handlers"
	"helpdesk/internal/api/middleware"
	"helpdesk/internal/engine/tickets"
	"helpdesk/internal/engine/webhooks"
	"helpdesk/internal/platform/audit"
	"helpdesk/internal/platform/auth"
	"helpdesk/internal/platform/config"
	"helpdesk/internal/platform/database"
	"helpdesk/internal/platform/models"
	"helpdesk/internal/platform/repositories"
)

const testPassword = "correct-horse"

type notifyCall struct {
	Category webhooks.Category
	Action   webhooks.Action
	Context  webhooks.Context
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []notifyCall
}

func (n *recordingNotifier) Notify(_ context.Context, category webhooks.Category, action webhooks.Action, c webhooks.Context) webhooks.DispatchResult {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, notifyCall{Category: category, Action: action, Context: c})
	return webhooks.DispatchResult{Success: true}
}

func (n *recordingNotifier) Calls() []notifyCall {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notifyCall(nil), n.calls...)
}

func (n *recordingNotifier) Last(t *testing.T) notifyCall {
	t.Helper()
	calls := n.Calls()
	require.NotEmpty(t, calls, "expected a notification")
	return calls[len(calls)-1]
}

type testEnv struct {
	t        *testing.T
	db       *sql.DB
	router   http.Handler
	tokens   *auth.TokenService
	stats    *handlers.DispatchStats
	settings *repositories.SettingsRepository
}

// newTestEnv builds the full router over an in-memory database. A nil
// notifier wires the real resolver, preference lookup and dispatcher.
func newTestEnv(t *testing.T, notifier handlers.Notifier) *testEnv {
	t.Helper()

	db, err := database.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	users := repositories.NewUserRepository(db)
	settings := repositories.NewSettingsRepository(db)
	prefs := repositories.NewNotificationSettingsRepository(db)
	auditLog := audit.NewSyncLogger(db)
	tokens := auth.NewTokenService(config.JWTConfig{Secret: "test-secret", AccessTokenTTL: time.Hour})

	if notifier == nil {
		notifier = webhooks.NewNotifier(
			webhooks.NewDefaultResolver(settings, prefs, ""),
			webhooks.NewPreferenceResolver(prefs),
			webhooks.NewDispatcher(2*time.Second),
		)
	}
	stats := &handlers.DispatchStats{}
	notifier = stats.Observe(notifier)

	router := NewRouter(&Dependencies{
		AuthHandler:                 handlers.NewAuthHandler(users, tokens),
		TicketHandler:               handlers.NewTicketHandler(tickets.NewService(tickets.NewRepository(db)), users, notifier, auditLog),
		UserHandler:                 handlers.NewUserHandler(users, notifier, auditLog),
		MailHandler:                 handlers.NewMailHandler(repositories.NewMailRepository(db), users, notifier, auditLog),
		BackupHandler:               handlers.NewBackupHandler(repositories.NewBackupRepository(db), users, notifier, auditLog),
		SettingsHandler:             handlers.NewSettingsHandler(settings, auditLog),
		NotificationSettingsHandler: handlers.NewNotificationSettingsHandler(prefs),
		AuditHandler:                handlers.NewAuditHandler(auditLog),
		HealthHandler:               handlers.NewHealthHandler(db),
		MetricsHandler:              handlers.NewMetricsHandler(stats),
		AuthMiddleware:              middleware.NewAuthMiddleware(tokens),
		RateLimiter:                 middleware.NewRateLimiter(map[string]int{"auth": 1000, "api_read": 1000, "api_write": 1000}),
	})

	return &testEnv{t: t, db: db, router: router, tokens: tokens, stats: stats, settings: settings}
}

func (e *testEnv) seedUser(id, email, fullName, role, status string) string {
	e.t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(e.t, err)

	now := time.Now().Unix()
	require.NoError(e.t, repositories.NewUserRepository(e.db).Create(context.Background(), &models.User{
		ID: id, Email: email, FullName: fullName, PasswordHash: string(hash),
		Role: role, Status: status, CreatedAt: now, UpdatedAt: now,
	}))

	token, err := e.tokens.GenerateAccessToken(id, role, email)
	require.NoError(e.t, err)
	return token
}

func (e *testEnv) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v), rr.Body.String())
}

func TestAuth_RegisterApproveLogin(t *testing.T) {
	rec := &recordingNotifier{}
	env := newTestEnv(t, rec)
	adminToken := env.seedUser("usr_admin", "admin@example.com", "Ada Admin", models.RoleAdmin, models.UserStatusApproved)

	rr := env.do("POST", "/api/v1/auth/register", "", map[string]string{
		"email": "New.User@Example.com", "password": testPassword, "full_name": "New User",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var created models.User
	decode(t, rr, &created)
	assert.Equal(t, "new.user@example.com", created.Email)
	assert.Equal(t, models.UserStatusPending, created.Status)

	rr = env.do("POST", "/api/v1/auth/register", "", map[string]string{"email": "new.user@example.com", "password": testPassword})
	assert.Equal(t, http.StatusConflict, rr.Code)

	login := map[string]string{"email": "new.user@example.com", "password": testPassword}
	rr = env.do("POST", "/api/v1/auth/login", "", login)
	assert.Equal(t, http.StatusForbidden, rr.Code, "pending users cannot log in")

	rr = env.do("POST", "/api/v1/users/"+created.ID+"/approve", adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	call := rec.Last(t)
	assert.Equal(t, webhooks.CategoryUsers, call.Category)
	assert.Equal(t, webhooks.ActionUserApproved, call.Action)
	assert.Equal(t, created.ID, call.Context.Subject.ID)
	assert.Equal(t, "usr_admin", call.Context.Actor.ID)

	rr = env.do("POST", "/api/v1/auth/login", "", login)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var resp handlers.LoginResponse
	decode(t, rr, &resp)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotNil(t, resp.User.LastLoginAt)

	rr = env.do("POST", "/api/v1/auth/login", "", map[string]string{"email": "new.user@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestTickets_Lifecycle(t *testing.T) {
	rec := &recordingNotifier{}
	env := newTestEnv(t, rec)
	userToken := env.seedUser("usr_1", "user@example.com", "Uma User", models.RoleUser, models.UserStatusApproved)
	supportToken := env.seedUser("usr_2", "support@example.com", "", models.RoleSupport, models.UserStatusApproved)
	adminToken := env.seedUser("usr_3", "admin@example.com", "Ada Admin", models.RoleAdmin, models.UserStatusApproved)

	deadline := time.Date(2025, 3, 1, 14, 30, 0, 0, time.UTC).Unix()
	rr := env.do("POST", "/api/v1/tickets", userToken, map[string]interface{}{
		"title": "Printer on fire", "urgency": "high", "deadline": deadline,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var ticket tickets.Ticket
	decode(t, rr, &ticket)

	call := rec.Last(t)
	assert.Equal(t, webhooks.CategoryTickets, call.Category)
	assert.Equal(t, webhooks.ActionTicketCreated, call.Action)
	require.NotNil(t, call.Context.Ticket)
	assert.Equal(t, ticket.ID, call.Context.Ticket.ID)
	assert.Equal(t, "usr_1", call.Context.Recipient())
	require.NotNil(t, call.Context.Ticket.Deadline)
	assert.Equal(t, deadline, call.Context.Ticket.Deadline.Unix())

	rr = env.do("POST", "/api/v1/tickets/"+ticket.ID+"/in-work", userToken, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = env.do("POST", "/api/v1/tickets/"+ticket.ID+"/in-work", supportToken, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	call = rec.Last(t)
	assert.Equal(t, webhooks.ActionInWork, call.Action)
	assert.Equal(t, "usr_2", call.Context.Actor.ID)
	assert.Equal(t, "usr_1", call.Context.Subject.ID, "ticket events go to the creator")
	assert.Equal(t, "Uma User", call.Context.Subject.FullName)

	rr = env.do("POST", "/api/v1/tickets/"+ticket.ID+"/solve", supportToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, webhooks.ActionSolved, rec.Last(t).Action)

	before := len(rec.Calls())
	rr = env.do("POST", "/api/v1/tickets/"+ticket.ID+"/in-work", supportToken, nil)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Len(t, rec.Calls(), before, "failed transitions must not notify")

	rr = env.do("DELETE", "/api/v1/tickets/"+ticket.ID, userToken, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = env.do("DELETE", "/api/v1/tickets/"+ticket.ID, adminToken, nil)
	require.Equal(t, http.StatusNoContent, rr.Code)
	call = rec.Last(t)
	assert.Equal(t, webhooks.ActionDeleted, call.Action)
	assert.Equal(t, "Printer on fire", call.Context.Ticket.Title)

	rr = env.do("GET", "/api/v1/tickets/"+ticket.ID, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestTickets_UpdateAndVisibility(t *testing.T) {
	rec := &recordingNotifier{}
	env := newTestEnv(t, rec)
	ownerToken := env.seedUser("usr_1", "owner@example.com", "", models.RoleUser, models.UserStatusApproved)
	otherToken := env.seedUser("usr_2", "other@example.com", "", models.RoleUser, models.UserStatusApproved)
	supportToken := env.seedUser("usr_3", "support@example.com", "", models.RoleSupport, models.UserStatusApproved)

	rr := env.do("POST", "/api/v1/tickets", ownerToken, map[string]interface{}{"title": "VPN down"})
	require.Equal(t, http.StatusCreated, rr.Code)
	var ticket tickets.Ticket
	decode(t, rr, &ticket)
	assert.Equal(t, tickets.UrgencyMedium, ticket.Urgency)

	assert.Equal(t, http.StatusForbidden, env.do("GET", "/api/v1/tickets/"+ticket.ID, otherToken, nil).Code)
	assert.Equal(t, http.StatusOK, env.do("GET", "/api/v1/tickets/"+ticket.ID, supportToken, nil).Code)

	var list struct {
		Tickets []tickets.Ticket `json:"tickets"`
	}
	decode(t, env.do("GET", "/api/v1/tickets", otherToken, nil), &list)
	assert.Empty(t, list.Tickets)
	decode(t, env.do("GET", "/api/v1/tickets", supportToken, nil), &list)
	assert.Len(t, list.Tickets, 1)

	before := len(rec.Calls())
	rr = env.do("PATCH", "/api/v1/tickets/"+ticket.ID, supportToken, map[string]string{"title": "x"})
	assert.Equal(t, http.StatusForbidden, rr.Code, "only the creator or an admin may edit")

	rr = env.do("PATCH", "/api/v1/tickets/"+ticket.ID, ownerToken, map[string]string{"urgency": "apocalyptic"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Len(t, rec.Calls(), before, "rejected writes must not notify")

	rr = env.do("PATCH", "/api/v1/tickets/"+ticket.ID, ownerToken, map[string]string{"title": "VPN still down"})
	require.Equal(t, http.StatusOK, rr.Code)
	call := rec.Last(t)
	assert.Equal(t, webhooks.ActionUpdated, call.Action)
	assert.Equal(t, "VPN still down", call.Context.Ticket.Title)
}

func TestUsers_UpdateRole(t *testing.T) {
	rec := &recordingNotifier{}
	env := newTestEnv(t, rec)
	adminToken := env.seedUser("usr_admin", "admin@example.com", "", models.RoleAdmin, models.UserStatusApproved)
	userToken := env.seedUser("usr_1", "user@example.com", "", models.RoleUser, models.UserStatusApproved)

	assert.Equal(t, http.StatusForbidden, env.do("PATCH", "/api/v1/users/usr_1/role", userToken, map[string]string{"role": "admin"}).Code)
	assert.Equal(t, http.StatusBadRequest, env.do("PATCH", "/api/v1/users/usr_1/role", adminToken, map[string]string{"role": "overlord"}).Code)
	assert.Equal(t, http.StatusNotFound, env.do("PATCH", "/api/v1/users/usr_missing/role", adminToken, map[string]string{"role": "support"}).Code)
	assert.Equal(t, http.StatusConflict, env.do("PATCH", "/api/v1/users/usr_admin/role", adminToken, map[string]string{"role": "user"}).Code)
	assert.Empty(t, rec.Calls())

	rr := env.do("PATCH", "/api/v1/users/usr_1/role", adminToken, map[string]string{"role": "support"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	call := rec.Last(t)
	assert.Equal(t, webhooks.ActionRoleChanged, call.Action)
	assert.Equal(t, "user", call.Context.RoleBefore)
	assert.Equal(t, "support", call.Context.RoleAfter)
	assert.Equal(t, "usr_1", call.Context.Subject.ID)

	rr = env.do("POST", "/api/v1/users/usr_1/reject", adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, webhooks.ActionUserRejected, rec.Last(t).Action)

	var list struct {
		Users []models.User `json:"users"`
	}
	decode(t, env.do("GET", "/api/v1/users?status=rejected", adminToken, nil), &list)
	require.Len(t, list.Users, 1)
	assert.Equal(t, "usr_1", list.Users[0].ID)
}

func TestBackups_Share(t *testing.T) {
	rec := &recordingNotifier{}
	env := newTestEnv(t, rec)
	ownerToken := env.seedUser("usr_1", "owner@example.com", "Olive Owner", models.RoleUser, models.UserStatusApproved)
	otherToken := env.seedUser("usr_2", "friend@example.com", "", models.RoleUser, models.UserStatusApproved)

	createBackup := func(title, kind string) string {
		rr := env.do("POST", "/api/v1/backups", ownerToken, map[string]string{"title": title, "type": kind})
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		var b models.Backup
		decode(t, rr, &b)
		return b.ID
	}
	workflow := createBackup("Nightly flow", models.BackupTypeWorkflow)
	prompt := createBackup("Support prompt", models.BackupTypePrompt)

	rr := env.do("POST", "/api/v1/backups/"+workflow+"/shares", ownerToken, map[string]string{"user_id": "usr_2"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	call := rec.Last(t)
	assert.Equal(t, webhooks.CategoryShares, call.Category)
	assert.Equal(t, webhooks.ActionSharedWorkflow, call.Action)
	assert.Equal(t, "usr_2", call.Context.Subject.ID)
	assert.Equal(t, models.AccessViewer, call.Context.Backup.AccessRole)

	rr = env.do("POST", "/api/v1/backups/"+prompt+"/shares", ownerToken, map[string]string{"user_id": "usr_2", "access_role": "editor"})
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, webhooks.ActionSharedPrompt, rec.Last(t).Action)

	before := len(rec.Calls())
	assert.Equal(t, http.StatusConflict, env.do("POST", "/api/v1/backups/"+prompt+"/shares", ownerToken, map[string]string{"user_id": "usr_2"}).Code)
	assert.Equal(t, http.StatusForbidden, env.do("POST", "/api/v1/backups/"+prompt+"/shares", otherToken, map[string]string{"user_id": "usr_1"}).Code)
	assert.Equal(t, http.StatusBadRequest, env.do("POST", "/api/v1/backups/"+prompt+"/shares", ownerToken, map[string]string{"user_id": "usr_1"}).Code)
	assert.Equal(t, http.StatusNotFound, env.do("POST", "/api/v1/backups/bkp_missing/shares", ownerToken, map[string]string{"user_id": "usr_2"}).Code)
	assert.Len(t, rec.Calls(), before)
}

func TestMails_SendAndInbox(t *testing.T) {
	rec := &recordingNotifier{}
	env := newTestEnv(t, rec)
	senderToken := env.seedUser("usr_1", "sender@example.com", "", models.RoleUser, models.UserStatusApproved)
	recipientToken := env.seedUser("usr_2", "recipient@example.com", "Rita", models.RoleUser, models.UserStatusApproved)

	assert.Equal(t, http.StatusBadRequest, env.do("POST", "/api/v1/mails", senderToken, map[string]string{"subject": "hi"}).Code)
	assert.Equal(t, http.StatusNotFound, env.do("POST", "/api/v1/mails", senderToken, map[string]string{"recipient_email": "ghost@example.com", "subject": "hi"}).Code)

	rr := env.do("POST", "/api/v1/mails", senderToken, map[string]string{
		"recipient_email": "Recipient@example.com", "subject": "Lunch?", "body": "noon",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	call := rec.Last(t)
	assert.Equal(t, webhooks.CategoryMails, call.Category)
	assert.Equal(t, webhooks.ActionMailReceived, call.Action)
	assert.Equal(t, "usr_2", call.Context.Subject.ID)
	assert.Equal(t, "Lunch?", call.Context.Mail.Subject)

	var inbox struct {
		Mails []models.Mail `json:"mails"`
	}
	decode(t, env.do("GET", "/api/v1/mails", recipientToken, nil), &inbox)
	require.Len(t, inbox.Mails, 1)
	assert.Equal(t, "usr_1", inbox.Mails[0].SenderID)
}

func TestSettings_Webhook(t *testing.T) {
	env := newTestEnv(t, &recordingNotifier{})
	adminToken := env.seedUser("usr_admin", "admin@example.com", "", models.RoleAdmin, models.UserStatusApproved)
	userToken := env.seedUser("usr_1", "user@example.com", "", models.RoleUser, models.UserStatusApproved)

	assert.Equal(t, http.StatusForbidden, env.do("GET", "/api/v1/admin/settings/webhook", userToken, nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do("PUT", "/api/v1/admin/settings/webhook", adminToken, map[string]string{"webhook_url": "not-a-url"}).Code)
	assert.Equal(t, http.StatusBadRequest, env.do("PUT", "/api/v1/admin/settings/webhook", adminToken, map[string]string{"webhook_color": "blue"}).Code)

	rr := env.do("PUT", "/api/v1/admin/settings/webhook", adminToken, map[string]string{
		"webhook_base_url": "https://hooks.example.com", "webhook_path_tickets": "/tickets",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var got map[string]string
	decode(t, rr, &got)
	assert.Equal(t, "https://hooks.example.com", got["webhook_base_url"])
	assert.Equal(t, "/tickets", got["webhook_path_tickets"])
	assert.Equal(t, "", got["webhook_url"])

	var audits struct {
		Entries []audit.Entry `json:"entries"`
	}
	decode(t, env.do("GET", "/api/v1/admin/audit", adminToken, nil), &audits)
	require.NotEmpty(t, audits.Entries)
	assert.Equal(t, "settings.webhook", audits.Entries[0].Action)
}

func TestNotificationSettings(t *testing.T) {
	env := newTestEnv(t, &recordingNotifier{})
	token := env.seedUser("usr_1", "user@example.com", "", models.RoleUser, models.UserStatusApproved)

	var got handlers.NotificationSettingsResponse
	decode(t, env.do("GET", "/api/v1/me/notifications", token, nil), &got)
	assert.Equal(t, webhooks.DefaultPreferences(), got.Preferences)

	assert.Equal(t, http.StatusBadRequest, env.do("PUT", "/api/v1/me/notifications", token, map[string]interface{}{"webhook_url": "ftp://x"}).Code)

	rr := env.do("PUT", "/api/v1/me/notifications", token, map[string]interface{}{
		"new_mail": false, "webhook_url": "https://me.example.com/hook",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	decode(t, env.do("GET", "/api/v1/me/notifications", token, nil), &got)
	assert.False(t, got.NewMail)
	assert.True(t, got.NewTicket)
	assert.Equal(t, "https://me.example.com/hook", got.WebhookURL)
}

func TestHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t, &recordingNotifier{})

	assert.Equal(t, http.StatusOK, env.do("GET", "/health", "", nil).Code)

	rr := env.do("GET", "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "helpdesk_webhook_notifications_total 0")
}

// The primary write stands no matter what happens to the webhook.
func TestWebhookFailureDoesNotFailRequest(t *testing.T) {
	var mu sync.Mutex
	var received []map[string]interface{}
	receiver := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		mu.Lock()
		received = append(received, body)
		mu.Unlock()
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer receiver.Close()

	closed := httptest.NewServer(http.NotFoundHandler())
	unreachable := closed.URL
	closed.Close()

	for name, target := range map[string]string{"receiver error": receiver.URL + "/hook", "unreachable": unreachable + "/hook"} {
		t.Run(name, func(t *testing.T) {
			env := newTestEnv(t, nil)
			userToken := env.seedUser("usr_1", "user@example.com", "", models.RoleUser, models.UserStatusApproved)
			supportToken := env.seedUser("usr_2", "support@example.com", "", models.RoleSupport, models.UserStatusApproved)
			require.NoError(t, env.settings.SetMany(context.Background(), map[string]string{webhooks.KeyWebhookURL: target}))

			rr := env.do("POST", "/api/v1/tickets", userToken, map[string]string{"title": "Broken"})
			require.Equal(t, http.StatusCreated, rr.Code)
			var ticket tickets.Ticket
			decode(t, rr, &ticket)

			rr = env.do("POST", "/api/v1/tickets/"+ticket.ID+"/solve", supportToken, nil)
			require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
			decode(t, rr, &ticket)
			assert.Equal(t, tickets.StatusSolved, ticket.Status)

			metrics := env.do("GET", "/metrics", "", nil).Body.String()
			assert.Contains(t, metrics, "helpdesk_webhook_notifications_total 2")
			assert.Contains(t, metrics, "helpdesk_webhook_delivered_total 0")
		})
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 2)
	assert.Equal(t, "ticket_created", received[0]["action"])
	assert.Equal(t, "solved", received[1]["action"])
	assert.Equal(t, true, received[1]["solved_ticket"])
}

func TestWebhookDelivery_UserNotified(t *testing.T) {
	receiver := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"User has been notified"}`))
	}))
	defer receiver.Close()

	env := newTestEnv(t, nil)
	token := env.seedUser("usr_1", "user@example.com", "", models.RoleUser, models.UserStatusApproved)
	require.NoError(t, env.settings.SetMany(context.Background(), map[string]string{
		webhooks.KeyWebhookBaseURL:                 receiver.URL,
		webhooks.PathKey(webhooks.CategoryTickets): "/tickets",
	}))

	rr := env.do("POST", "/api/v1/tickets", token, map[string]string{"title": "Hello"})
	require.Equal(t, http.StatusCreated, rr.Code)

	metrics := env.do("GET", "/metrics", "", nil).Body.String()
	assert.Contains(t, metrics, "helpdesk_webhook_delivered_total 1")
	assert.Contains(t, metrics, "helpdesk_webhook_user_notified_total 1")
}
