package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/marginboard/marginboard/internal/analytics"
	analytichttp "github.com/marginboard/marginboard/internal/analytics/http"
	"github.com/marginboard/marginboard/internal/analytics/svg"
	"github.com/marginboard/marginboard/internal/app"
	"github.com/marginboard/marginboard/internal/auth"
	"github.com/marginboard/marginboard/internal/chat"
	"github.com/marginboard/marginboard/internal/observability"
	"github.com/marginboard/marginboard/internal/platform/cache"
	"github.com/marginboard/marginboard/internal/platform/db"
	"github.com/marginboard/marginboard/internal/refdata"
	"github.com/marginboard/marginboard/internal/sales"
	"github.com/marginboard/marginboard/internal/shared"
	"github.com/marginboard/marginboard/internal/view"
	"github.com/marginboard/marginboard/jobs"
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

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "marginboard_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := observability.NewMetrics()

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, templates, sessionManager, csrfManager)

	rollupCache := analytics.NewCache(redisClient, cfg.RollupCacheTTL)

	warmQueue, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job queue", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := warmQueue.Close(); err != nil {
			logger.Warn("job queue close", slog.Any("error", err))
		}
	}()

	salesRepo := sales.NewRepository(dbpool)
	salesService := sales.NewService(salesRepo, rollupCache, warmQueue)
	salesHandler := sales.NewHandler(logger, salesService, templates, csrfManager)

	refdataRepo := refdata.NewRepository(dbpool)
	refdataService := refdata.NewService(refdataRepo, rollupCache, warmQueue)
	refdataHandler := refdata.NewHandler(logger, refdataService, templates, csrfManager)

	snapshotRepo := analytics.NewSnapshotRepository(salesRepo, refdataRepo)
	analyticsService := analytics.NewService(snapshotRepo, rollupCache, metrics)
	dashboardHandler := analytichttp.NewHandler(
		logger,
		analyticsService,
		templates,
		csrfManager,
		analytichttp.LineFunc(svg.Line),
		analytichttp.BarFunc(svg.Bars),
	)

	chatHandler := chat.NewHandler(logger, templates, csrfManager)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		Templates:        templates,
		SessionManager:   sessionManager,
		CSRFManager:      csrfManager,
		AuthHandler:      authHandler,
		SalesHandler:     salesHandler,
		RefdataHandler:   refdataHandler,
		DashboardHandler: dashboardHandler,
		ChatHandler:      chatHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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
