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
	"github.com/redis/go-redis/v9"

	"github.com/planwise-hr/planwise/internal/platform/cache"
	"github.com/planwise-hr/planwise/internal/app"
	"github.com/planwise-hr/planwise/internal/employees"
	"github.com/planwise-hr/planwise/internal/observability"
	"github.com/planwise-hr/planwise/internal/platform/db"
	"github.com/planwise-hr/planwise/internal/shared"
	"github.com/planwise-hr/planwise/internal/teams"
	"github.com/planwise-hr/planwise/internal/vacations"
	"github.com/planwise-hr/planwise/internal/validation"
	"github.com/planwise-hr/planwise/internal/workloads"
	"github.com/planwise-hr/planwise/jobs"
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	var redisClient *redis.Client
	if client, err := cache.New(ctx, cfg.RedisAddr); err != nil {
		logger.Warn("redis unavailable, related cache disabled", slog.Any("error", err))
	} else {
		redisClient = client
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	metrics := observability.NewMetrics()

	store := validation.NewRepository(pool)
	engine := validation.NewEngine(store, cfg.Policy(), logger)
	engine.SetVerdictRecorder(metrics)

	idempotencyStore := shared.NewIdempotencyStore(pool)

	employeesRepo := employees.NewPGRepository(pool)
	employeesHandler := employees.NewHandler(employeesRepo, logger)

	vacationsRepo := vacations.NewPGRepository(pool)
	vacationsService := vacations.NewService(vacationsRepo, engine, logger)
	vacationsHandler := vacations.NewHandler(vacationsService, logger)

	workloadsRepo := workloads.NewPGRepository(pool)
	workloadsCache := workloads.NewCache(redisClient, cfg.RelatedCacheTTL)
	workloadsService := workloads.NewService(workloadsRepo, store, engine, workloadsCache, logger)
	workloadsHandler := workloads.NewHandler(workloadsService, logger)

	teamsRepo := teams.NewPGRepository(pool)
	teamsService := teams.NewService(teamsRepo, store, engine, logger)
	teamsHandler := teams.NewHandler(teamsService, logger)

	validationHandler := validation.NewHandler(engine, logger)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		EmployeesHandler:  employeesHandler,
		VacationsHandler:  vacationsHandler,
		WorkloadsHandler:  workloadsHandler,
		TeamsHandler:      teamsHandler,
		ValidationHandler: validationHandler,
		JobsHandler:       jobsHandler,
		Idempotency:       idempotencyStore,
		Metrics:           metrics,
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
