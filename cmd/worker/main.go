package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/marginboard/marginboard/internal/analytics"
	"github.com/marginboard/marginboard/internal/app"
	"github.com/marginboard/marginboard/internal/platform/cache"
	"github.com/marginboard/marginboard/internal/platform/db"
	"github.com/marginboard/marginboard/internal/refdata"
	"github.com/marginboard/marginboard/internal/sales"
	"github.com/marginboard/marginboard/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

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

	salesRepo := sales.NewRepository(pool)
	refdataRepo := refdata.NewRepository(pool)
	snapshotRepo := analytics.NewSnapshotRepository(salesRepo, refdataRepo)
	rollupCache := analytics.NewCache(redisClient, cfg.RollupCacheTTL)
	analyticsService := analytics.NewService(snapshotRepo, rollupCache, nil)

	warmJob := jobs.NewRollupWarmJob(analyticsService, logger, nil)

	warmTask, err := jobs.NewRollupWarmTask(jobs.RollupWarmPayload{Reason: "scheduled"})
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeRollupWarm, Handler: warmJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "*/15 * * * *", Task: warmTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
