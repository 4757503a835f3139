// cmd/worker/main.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/resell-orders/internal/adapters/db"
	"github.com/ammerola/resell-orders/internal/core/services"
	"github.com/ammerola/resell-orders/internal/pkg/config"
	"github.com/ammerola/resell-orders/internal/pkg/logger"
	"github.com/ammerola/resell-orders/internal/workers"
)

func main() {
	bootLogger := logger.New(logger.Config{Level: "info", Format: "json", ServiceName: "resell-orders-worker"}).Slog()

	cfg, err := config.Load(bootLogger)
	if err != nil {
		bootLogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()

	secrets, err := config.NewSecretsManager(ctx, cfg, bootLogger)
	if err == nil {
		err = config.ApplySecrets(ctx, cfg, secrets)
	}
	if err != nil {
		bootLogger.Error("failed to apply secrets", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slogger := logger.New(logger.Config{
		Level:          cfg.App.LogLevel,
		Format:         cfg.App.LogFormat,
		ServiceName:    "resell-orders-worker",
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
	}).SetDefault().Slog()

	slogger.Info("starting worker",
		slog.String("environment", cfg.App.Environment),
		slog.String("redis_addr", cfg.Asynq.RedisAddr))

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Asynq.RedisAddr,
		Password: cfg.Asynq.RedisPassword,
		DB:       cfg.Asynq.RedisDB,
	}

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency:     cfg.Asynq.Concurrency,
		Queues:          cfg.Asynq.Queues,
		StrictPriority:  cfg.Asynq.StrictPriority,
		ErrorHandler:    asynq.ErrorHandlerFunc(handleError),
		RetryDelayFunc:  exponentialBackoff,
		ShutdownTimeout: cfg.Asynq.ShutdownTimeout,
		HealthCheckFunc: healthCheck,
		Logger:          newAsynqLogger(slogger),
	})

	mux := asynq.NewServeMux()

	notificationProcessor := workers.NewNotificationProcessor(
		workers.NewMailer(cfg, slogger), cfg.Notification.Email, slogger)
	mux.HandleFunc(workers.TypeLowStockAlert, notificationProcessor.HandleLowStockAlert)

	// The movement ledger only outlives a process in Postgres
	var scheduler *asynq.Scheduler
	if cfg.UsesMemoryStore() {
		slogger.Warn("memory store configured, movement cleanup disabled")
	} else {
		database, err := initDatabase(ctx, cfg, slogger)
		if err != nil {
			slogger.Error("failed to initialize database", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer database.Close()

		inventoryService := services.NewInventoryService(
			db.NewUnitOfWork(database, slogger),
			db.NewInventoryRepository(database.Pool(), slogger),
			nil,
			slogger,
		)
		cleanupProcessor := workers.NewCleanupProcessor(inventoryService, cfg.Inventory.MovementRetention, slogger)
		mux.HandleFunc(workers.TypeCleanupMovements, cleanupProcessor.PruneMovements)

		scheduler = asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{
			Logger: newAsynqLogger(slogger),
		})
		entryID, err := scheduler.Register(cfg.Asynq.CleanupCron, workers.NewCleanupMovementsTask())
		if err != nil {
			slogger.Error("failed to schedule movement cleanup", slog.String("error", err.Error()))
			os.Exit(1)
		}
		slogger.Info("movement cleanup scheduled",
			slog.String("cron", cfg.Asynq.CleanupCron),
			slog.String("entry_id", entryID))
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Run(mux); err != nil {
			slogger.Error("failed to run worker server", slog.String("error", err.Error()))
			shutdown <- syscall.SIGTERM
		}
	}()

	if scheduler != nil {
		if err := scheduler.Start(); err != nil {
			slogger.Error("failed to start scheduler", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	slogger.Info("worker started successfully",
		slog.Int("concurrency", cfg.Asynq.Concurrency),
		slog.Any("queues", cfg.Asynq.Queues))

	sig := <-shutdown
	slogger.Info("shutdown signal received", slog.String("signal", sig.String()))

	if scheduler != nil {
		scheduler.Shutdown()
	}
	srv.Shutdown()
	slogger.Info("worker shutdown complete")
}

func initDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*db.Database, error) {
	return db.NewDatabase(ctx, &db.Config{
		Host:               cfg.Database.Host,
		Port:               cfg.Database.Port,
		User:               cfg.Database.User,
		Password:           cfg.Database.Password,
		Database:           cfg.Database.Name,
		SSLMode:            cfg.Database.SSLMode,
		MaxConnections:     5, // cleanup is the only writer here
		MinConnections:     1,
		MaxConnLifetime:    cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:    cfg.Database.MaxConnIdleTime,
		HealthCheckPeriod:  cfg.Database.HealthCheckPeriod,
		ConnectTimeout:     cfg.Database.ConnectTimeout,
		StatementCacheMode: cfg.Database.StatementCacheMode,
		EnableQueryLogging: cfg.Database.EnableQueryLogging,
	}, logger)
}

func handleError(ctx context.Context, task *asynq.Task, err error) {
	slog.ErrorContext(ctx, "task processing failed",
		slog.String("type", task.Type()),
		slog.String("payload", string(task.Payload())),
		slog.String("error", err.Error()))
}

func exponentialBackoff(n int, e error, t *asynq.Task) time.Duration {
	baseDelay := time.Second
	maxDelay := 10 * time.Minute
	delay := baseDelay * time.Duration(1<<uint(n))
	if delay > maxDelay || delay <= 0 {
		delay = maxDelay
	}
	return delay
}

func healthCheck(err error) {
	if err != nil {
		slog.Error("worker health check failed", slog.String("error", err.Error()))
	}
}

// asynqLogger adapts slog for Asynq
type asynqLogger struct {
	logger *slog.Logger
}

func newAsynqLogger(logger *slog.Logger) *asynqLogger {
	return &asynqLogger{
		logger: logger.With(slog.String("component", "asynq")),
	}
}

func (l *asynqLogger) Debug(args ...interface{}) {
	l.logger.Debug(fmt.Sprint(args...))
}

func (l *asynqLogger) Info(args ...interface{}) {
	l.logger.Info(fmt.Sprint(args...))
}

func (l *asynqLogger) Warn(args ...interface{}) {
	l.logger.Warn(fmt.Sprint(args...))
}

func (l *asynqLogger) Error(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
}

func (l *asynqLogger) Fatal(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
	os.Exit(1)
}
