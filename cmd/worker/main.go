package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/planwise-hr/planwise/internal/app"
	jobmetrics "github.com/planwise-hr/planwise/internal/jobs"
	"github.com/planwise-hr/planwise/internal/observability"
	"github.com/planwise-hr/planwise/internal/platform/db"
	"github.com/planwise-hr/planwise/internal/validation"
	"github.com/planwise-hr/planwise/jobs"
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

	metrics := observability.NewMetrics()
	store := validation.NewRepository(pool)
	engine := validation.NewEngine(store, cfg.Policy(), logger)
	engine.SetVerdictRecorder(metrics)

	scanJob := jobs.NewConsistencyScanJob(pool, engine, logger, jobmetrics.NewMetrics(metrics.Registerer()), metrics)

	scanTask, err := jobs.NewConsistencyScanTask(jobs.ConsistencyScanPayload{LookbackDays: cfg.ScanLookbackDays})
	if err != nil {
		logger.Error("build scan task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskConsistencyScan, Handler: scanJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.ScanSchedule, Task: scanTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
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
