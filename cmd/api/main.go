// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/ammerola/resell-orders/internal/adapters/db"
	"github.com/ammerola/resell-orders/internal/adapters/memory"
	redis_a "github.com/ammerola/resell-orders/internal/adapters/redis_adapter"
	"github.com/ammerola/resell-orders/internal/core/ports"
	"github.com/ammerola/resell-orders/internal/core/services"
	"github.com/ammerola/resell-orders/internal/handlers"
	"github.com/ammerola/resell-orders/internal/handlers/middleware"
	"github.com/ammerola/resell-orders/internal/pkg/config"
	"github.com/ammerola/resell-orders/internal/pkg/logger"
	"github.com/ammerola/resell-orders/internal/seed"
	"github.com/ammerola/resell-orders/internal/workers"
)

// Build information injected at compile time
var (
	Version   = "dev"
	BuildTime = "unknown"
	GoVersion = "unknown"
)

func main() {
	bootLogger := logger.New(logger.Config{
		Level:          "info",
		Format:         "json",
		ServiceName:    "resell-orders-api",
		ServiceVersion: Version,
	}).Slog()

	bootLogger.Info("starting resell order service",
		slog.String("version", Version),
		slog.String("build_time", BuildTime),
		slog.String("go_version", GoVersion),
	)

	cfg, err := config.Load(bootLogger)
	if err != nil {
		bootLogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	secrets, err := config.NewSecretsManager(ctx, cfg, bootLogger)
	if err != nil {
		bootLogger.Error("failed to create secrets manager", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := config.ApplySecrets(ctx, cfg, secrets); err != nil {
		bootLogger.Error("failed to apply secrets", slog.String("error", err.Error()))
		os.Exit(1)
	}

	appLogger := logger.New(logger.Config{
		Level:          cfg.App.LogLevel,
		Format:         cfg.App.LogFormat,
		ServiceName:    "resell-orders-api",
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		AddSource:      cfg.App.Debug,
	}).SetDefault()
	slogger := appLogger.Slog()

	slogger.Info("configuration loaded",
		slog.String("environment", cfg.App.Environment),
		slog.String("store", cfg.Store.Driver),
		slog.String("negative_policy", cfg.Inventory.NegativePolicy),
	)

	deps, err := initializeDependencies(ctx, cfg, slogger)
	if err != nil {
		slogger.Error("failed to initialize dependencies", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer deps.cleanup()

	server, limiter := setupHTTPServer(cfg, deps, appLogger)
	go limiter.Run(ctx)

	serverErrors := make(chan error, 1)
	go func() {
		slogger.Info("starting HTTP server", slog.String("address", cfg.GetServerAddress()))
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slogger.Error("server error", slog.String("error", err.Error()))
		}
	case sig := <-shutdown:
		slogger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slogger.Error("failed to gracefully shutdown server", slog.String("error", err.Error()))
			server.Close()
		}

		slogger.Info("server shutdown complete")
	}
}

// dependencies holds all application dependencies. database, redisClient
// and the asynq handles stay nil when the memory store runs without Redis.
type dependencies struct {
	database       *db.Database
	redisClient    *redis.Client
	asynqClient    *asynq.Client
	asynqInspector *asynq.Inspector

	orderHandler     *handlers.OrderHandler
	inventoryHandler *handlers.InventoryHandler
	healthHandler    *handlers.HealthHandler
}

func (d *dependencies) cleanup() {
	if d.database != nil {
		d.database.Close()
	}
	if d.redisClient != nil {
		d.redisClient.Close()
	}
	if d.asynqClient != nil {
		d.asynqClient.Close()
	}
	if d.asynqInspector != nil {
		d.asynqInspector.Close()
	}
}

// storage is the persistence wiring chosen by STORE_DRIVER
type storage struct {
	uow       ports.UnitOfWork
	orders    ports.OrderRepository
	inventory ports.InventoryRepository
	products  ports.ProductRepository
}

func initializeDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*dependencies, error) {
	deps := &dependencies{}

	var store storage
	if cfg.UsesMemoryStore() {
		logger.Warn("using in-memory store, data is lost on restart")
		mem := memory.NewStore(logger)
		store = storage{uow: mem, orders: mem.Orders(), inventory: mem.Inventory(), products: mem.Products()}
	} else {
		database, err := connectDatabase(ctx, cfg, logger)
		if err != nil {
			deps.cleanup()
			return nil, err
		}
		deps.database = database

		if !cfg.IsProduction() {
			if err := runMigrations(ctx, cfg, logger); err != nil {
				deps.cleanup()
				return nil, fmt.Errorf("failed to run migrations: %w", err)
			}
		}

		pool := database.Pool()
		store = storage{
			uow:       db.NewUnitOfWork(database, logger),
			orders:    db.NewOrderRepository(pool, logger),
			inventory: db.NewInventoryRepository(pool, logger),
			products:  db.NewProductRepository(pool, logger),
		}
	}

	var (
		cache     ports.CacheRepository
		publisher ports.EventPublisher
	)
	redisClient, err := connectRedis(ctx, cfg, logger)
	switch {
	case err == nil:
		deps.redisClient = redisClient
		cache = redis_a.NewCache(redisClient, cfg.Redis.TTL, logger)

		asynqRedisOpt := asynq.RedisClientOpt{
			Addr:     cfg.Asynq.RedisAddr,
			Password: cfg.Asynq.RedisPassword,
			DB:       cfg.Asynq.RedisDB,
		}
		deps.asynqClient = asynq.NewClient(asynqRedisOpt)
		deps.asynqInspector = asynq.NewInspector(asynqRedisOpt)
		publisher = workers.NewTaskPublisher(deps.asynqClient, logger)
	case cfg.UsesMemoryStore():
		logger.Warn("redis unavailable, running without cache and low-stock alerts",
			slog.String("error", err.Error()))
	default:
		deps.cleanup()
		return nil, err
	}

	policy, err := services.ParseNegativePolicy(cfg.Inventory.NegativePolicy)
	if err != nil {
		deps.cleanup()
		return nil, err
	}

	orderService := services.NewOrderService(services.OrderServiceParams{
		UnitOfWork: store.uow,
		Orders:     store.orders,
		Products:   store.products,
		Inventory:  store.inventory,
		Cache:      cache,
		Publisher:  publisher,
		Config: services.OrderServiceConfig{
			NegativePolicy:    policy,
			LowStockThreshold: cfg.Inventory.LowStockThreshold,
			CacheTTL:          cfg.Redis.TTL,
		},
		Logger: logger,
	})
	inventoryService := services.NewInventoryService(store.uow, store.inventory, cache, logger)

	if cfg.UsesMemoryStore() && cfg.Store.SeedDemo {
		seeder := seed.NewSeeder(store.products, inventoryService, logger)
		if _, err := seeder.Run(ctx, seed.DemoCatalog(uuid.New())); err != nil {
			deps.cleanup()
			return nil, fmt.Errorf("failed to seed demo catalog: %w", err)
		}
	}

	var database ports.Database
	if deps.database != nil {
		database = deps.database
	}

	deps.orderHandler = handlers.NewOrderHandler(orderService, logger)
	deps.inventoryHandler = handlers.NewInventoryHandler(inventoryService, logger)
	deps.healthHandler = handlers.NewHealthHandler(database, deps.redisClient, deps.asynqInspector, cfg, logger)

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

func connectDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*db.Database, error) {
	logger.Info("connecting to database",
		slog.String("host", cfg.Database.Host),
		slog.String("database", cfg.Database.Name),
	)

	database, err := db.NewDatabase(ctx, &db.Config{
		Host:               cfg.Database.Host,
		Port:               cfg.Database.Port,
		User:               cfg.Database.User,
		Password:           cfg.Database.Password,
		Database:           cfg.Database.Name,
		SSLMode:            cfg.Database.SSLMode,
		MaxConnections:     cfg.Database.MaxConnections,
		MinConnections:     cfg.Database.MinConnections,
		MaxConnLifetime:    cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:    cfg.Database.MaxConnIdleTime,
		HealthCheckPeriod:  cfg.Database.HealthCheckPeriod,
		ConnectTimeout:     cfg.Database.ConnectTimeout,
		StatementCacheMode: cfg.Database.StatementCacheMode,
		EnableQueryLogging: cfg.Database.EnableQueryLogging,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return database, nil
}

func connectRedis(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*redis.Client, error) {
	logger.Info("connecting to Redis", slog.String("address", cfg.GetRedisAddress()))

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.GetRedisAddress(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		MaxRetries:   cfg.Redis.MaxRetries,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func setupHTTPServer(cfg *config.Config, deps *dependencies, appLogger *logger.Logger) (*http.Server, *middleware.RateLimiter) {
	mux := http.NewServeMux()
	handlers.Routes{
		Orders:    deps.orderHandler,
		Inventory: deps.inventoryHandler,
		Health:    deps.healthHandler,
	}.Register(mux)

	limiter := middleware.NewRateLimiter(cfg.Security.RateLimitRequests, cfg.Security.RateLimitDuration)

	chain := []func(http.Handler) http.Handler{
		middleware.RequestID(cfg.Security.RequestIDHeader),
		middleware.Logger(appLogger),
		middleware.Recovery(appLogger.Slog()),
		limiter.Middleware,
		middleware.CORS(cfg.Security.AllowedOrigins),
	}
	if cfg.Security.SecureHeaders {
		chain = append(chain, middleware.SecureHeaders)
	}
	if cfg.Server.RequestTimeout > 0 {
		chain = append(chain, middleware.Timeout(cfg.Server.RequestTimeout))
	}

	server := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        middleware.Chain(mux, chain...),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(appLogger.Handler(), slog.LevelError),
	}

	return server, limiter
}

func runMigrations(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("running database migrations")

	return db.RunMigrationsWithRetry(ctx, &db.MigrationConfig{
		DatabaseURL: cfg.GetDatabaseURL(),
		TableName:   "schema_migrations",
		SchemaName:  "public",
	}, logger, 3)
}
