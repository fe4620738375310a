package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/userpanel/internal/app"
	"github.com/odyssey-erp/userpanel/internal/audit"
	audithttp "github.com/odyssey-erp/userpanel/internal/audit/http"
	"github.com/odyssey-erp/userpanel/internal/auth"
	"github.com/odyssey-erp/userpanel/internal/observability"
	"github.com/odyssey-erp/userpanel/internal/panel"
	"github.com/odyssey-erp/userpanel/internal/platform/cache"
	"github.com/odyssey-erp/userpanel/internal/platform/db"
	"github.com/odyssey-erp/userpanel/internal/rbac"
	"github.com/odyssey-erp/userpanel/internal/roles"
	"github.com/odyssey-erp/userpanel/internal/shared"
	"github.com/odyssey-erp/userpanel/internal/users"
	"github.com/odyssey-erp/userpanel/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	if cfg.MigrateOnRun {
		if err := migrateUp(cfg.PGDSN); err != nil {
			logger.Error("migrate", slog.Any("error", err))
			os.Exit(1)
		}
	}

	dbpool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "userpanel_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	metrics := observability.NewMetrics()

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	jobClient := jobs.NewClient(redisOpts)
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("jobs inspector close", slog.Any("error", err))
		}
	}()

	rbacService := rbac.NewService(dbpool)
	if err := rbacService.EnsureScopes(ctx); err != nil {
		logger.Warn("ensure permissions", slog.Any("error", err))
	}
	rbacMiddleware := rbac.Middleware{Source: rbacService, Logger: logger}

	authService := auth.NewService(auth.NewRepository(dbpool), sessionManager)
	usersService := users.NewService(users.NewRepository(dbpool),
		users.WithAudit(jobClient),
		users.WithSessionPurger(jobClient),
		users.WithLogger(logger),
	)
	rolesService := roles.NewService(roles.NewRepository(dbpool))

	localizer, err := panel.NewCatalogLocalizer(cfg.PanelLocale)
	if err != nil {
		logger.Error("init localizer", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("panel locale", slog.String("requested", cfg.PanelLocale), slog.String("language", localizer.Language().String()))
	panelParams := panel.Params{
		Gateway:   panel.ServiceGateway{Users: usersService, Roles: rolesService, Grants: rbacService},
		Notifier:  panel.SessionNotifier{Fallback: panel.LogNotifier{Logger: logger}},
		Localizer: localizer,
		Recorder:  metrics,
		Logger:    logger,
		Options:   panel.Options{UseNickname: cfg.PanelUseNickname},
	}
	registry := panel.NewRegistry(panel.NewFactory(rbacService, panelParams), cfg.PanelIdleTTL, cfg.PanelMaxOpen, logger)
	defer func() {
		if err := registry.Close(); err != nil {
			logger.Warn("panel registry close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		SessionManager:     sessionManager,
		CSRFManager:        csrfManager,
		Tokens:             tokens,
		AuthHandler:        auth.NewHandler(logger, authService, tokens, sessionManager, csrfManager).WithSessionReleaser(registry),
		UsersHandler:       users.NewHandler(logger, usersService, rbacMiddleware),
		RolesHandler:       roles.NewHandler(logger, rolesService, rbacMiddleware),
		PermissionsHandler: rbac.NewPermissionsHandler(logger, rbacService, rbacService, rbacMiddleware),
		AuditHandler:       audithttp.NewHandler(logger, audit.NewService(audit.NewRepository(dbpool)), rbacMiddleware),
		PanelHandler:       panel.NewHandler(logger, registry),
		JobHandler:         jobs.NewHandler(inspector, logger),
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

func migrateUp(dsn string) error {
	m, err := db.NewMigrator(dsn)
	if err != nil {
		return err
	}
	defer m.Close()
	return m.Up()
}
