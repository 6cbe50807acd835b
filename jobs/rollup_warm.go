package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/marginboard/marginboard/internal/analytics"
	jobmetrics "github.com/marginboard/marginboard/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// RollupWarmJob pre-populates the dashboard rollup caches so the first
// page view after a quiet period stays fast.
type RollupWarmJob struct {
	Analytics *analytics.Service
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
	clock     func() time.Time
}

// NewRollupWarmJob wires dependencies for the warmup handler.
func NewRollupWarmJob(analyticsSvc *analytics.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *RollupWarmJob {
	return &RollupWarmJob{
		Analytics: analyticsSvc,
		Logger:    logger,
		Metrics:   metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes rollup warmup tasks.
func (j *RollupWarmJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Analytics == nil {
		return errors.New("rollup warm: handler not configured")
	}
	var payload RollupWarmPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.Reason == "" {
		payload.Reason = "scheduled"
	}

	tracker := j.metrics().Track(TaskTypeRollupWarm)
	logger := j.logger().With(slog.String("reason", payload.Reason))
	logger.Info("starting rollup warmup")

	warmCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	started := j.now()
	if err := tracker.End(j.Analytics.Warm(warmCtx)); err != nil {
		logger.Error("rollup warmup", slog.Any("error", err))
		return err
	}
	logger.Info("completed rollup warmup", slog.Duration("duration", time.Since(started)))
	return nil
}

func (j *RollupWarmJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *RollupWarmJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskTypeRollupWarm))
	}
	return slog.Default().With(slog.String("job", TaskTypeRollupWarm))
}

func (j *RollupWarmJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
