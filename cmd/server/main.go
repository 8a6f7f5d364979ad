package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"helpdesk/internal/api"
	"helpdesk/internal/api/handlers"
	"helpdesk/internal/api/middleware"
	"helpdesk/internal/engine/tickets"
	"helpdesk/internal/engine/webhooks"
	"helpdesk/internal/pkg/logger"
	"helpdesk/internal/platform/audit"
	"helpdesk/internal/platform/auth"
	"helpdesk/internal/platform/config"
	"helpdesk/internal/platform/database"
	"helpdesk/internal/platform/repositories"
	"helpdesk/migrations"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logger.Init(cfg.Logging)

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("jwt.secret must be set")
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := migrations.Up(db); err != nil {
		log.Fatal().Err(err).Msg("failed to apply migrations")
	}

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	settingsRepo := repositories.NewSettingsRepository(db)
	prefsRepo := repositories.NewNotificationSettingsRepository(db)
	mailRepo := repositories.NewMailRepository(db)
	backupRepo := repositories.NewBackupRepository(db)

	// Services
	tokenSvc := auth.NewTokenService(cfg.JWT)
	ticketSvc := tickets.NewService(tickets.NewRepository(db))
	auditLog := audit.NewLogger(db)

	// Webhooks
	stats := &handlers.DispatchStats{}
	notifier := stats.Observe(webhooks.NewNotifier(
		webhooks.NewDefaultResolver(settingsRepo, prefsRepo, cfg.Webhooks.FallbackURL),
		webhooks.NewPreferenceResolver(prefsRepo),
		webhooks.NewDispatcher(cfg.Webhooks.Timeout),
	))

	rateLimiter := middleware.NewRateLimiter(nil)

	deps := &api.Dependencies{
		AuthHandler:                 handlers.NewAuthHandler(userRepo, tokenSvc),
		TicketHandler:               handlers.NewTicketHandler(ticketSvc, userRepo, notifier, auditLog),
		UserHandler:                 handlers.NewUserHandler(userRepo, notifier, auditLog),
		MailHandler:                 handlers.NewMailHandler(mailRepo, userRepo, notifier, auditLog),
		BackupHandler:               handlers.NewBackupHandler(backupRepo, userRepo, notifier, auditLog),
		SettingsHandler:             handlers.NewSettingsHandler(settingsRepo, auditLog),
		NotificationSettingsHandler: handlers.NewNotificationSettingsHandler(prefsRepo),
		AuditHandler:                handlers.NewAuditHandler(auditLog),
		HealthHandler:               handlers.NewHealthHandler(db),
		MetricsHandler:              handlers.NewMetricsHandler(stats),
		AuthMiddleware:              middleware.NewAuthMiddleware(tokenSvc),
		RateLimiter:                 rateLimiter,
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      otelhttp.NewHandler(api.NewRouter(deps), "helpdesk"),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rateLimiter.Cleanup(10 * time.Minute)
			}
		}
	}()

	go func() {
		log.Info().Str("addr", addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
