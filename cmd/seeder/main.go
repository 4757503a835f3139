// cmd/seeder/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/ammerola/resell-orders/internal/adapters/db"
	"github.com/ammerola/resell-orders/internal/core/services"
	"github.com/ammerola/resell-orders/internal/pkg/config"
	"github.com/ammerola/resell-orders/internal/pkg/logger"
	"github.com/ammerola/resell-orders/internal/seed"
)

func main() {
	var (
		catalogFile  = flag.String("catalog", "", "JSON catalog to seed (demo catalog when empty)")
		ownerFlag    = flag.String("owner", "", "Owner id for the demo catalog")
		migrateCmd   = flag.String("migrate", "", "Migration command: up, down, status, reset, force")
		forceVersion = flag.Int("version", -1, "Version used by -migrate=force")
		migrateOnly  = flag.Bool("migrate-only", false, "Run the migration command and exit")
		logLevel     = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
		dryRun       = flag.Bool("dry-run", false, "Print the catalog without touching the database")
	)
	flag.Parse()

	slogger := logger.New(logger.Config{
		Level:       *logLevel,
		Format:      "json",
		ServiceName: "resell-orders-seeder",
	}).SetDefault().Slog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog, err := loadCatalog(*catalogFile, *ownerFlag)
	if err != nil {
		slogger.Error("failed to load catalog", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if *dryRun {
		printJSON(catalog)
		return
	}

	cfg, err := config.Load(slogger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if cfg.UsesMemoryStore() {
		slogger.Error("seeding needs the postgres store; the memory store seeds itself with STORE_SEED_DEMO")
		os.Exit(1)
	}

	secrets, err := config.NewSecretsManager(ctx, cfg, slogger)
	if err == nil {
		err = config.ApplySecrets(ctx, cfg, secrets)
	}
	if err != nil {
		slogger.Error("failed to apply secrets", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if *migrateCmd != "" {
		if err := runMigration(ctx, cfg, *migrateCmd, *forceVersion, slogger); err != nil {
			slogger.Error("migration failed",
				slog.String("command", *migrateCmd),
				slog.String("error", err.Error()))
			os.Exit(1)
		}
		if *migrateOnly {
			return
		}
	}

	database, err := db.NewDatabase(ctx, &db.Config{
		Host:           cfg.Database.Host,
		Port:           cfg.Database.Port,
		User:           cfg.Database.User,
		Password:       cfg.Database.Password,
		Database:       cfg.Database.Name,
		SSLMode:        cfg.Database.SSLMode,
		MaxConnections: 4,
		MinConnections: 1,
		ConnectTimeout: cfg.Database.ConnectTimeout,
	}, slogger)
	if err != nil {
		slogger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.Close()

	pool := database.Pool()
	inventoryService := services.NewInventoryService(
		db.NewUnitOfWork(database, slogger),
		db.NewInventoryRepository(pool, slogger),
		nil,
		slogger,
	)
	seeder := seed.NewSeeder(db.NewProductRepository(pool, slogger), inventoryService, slogger)

	res, err := seeder.Run(ctx, catalog)
	if err != nil {
		slogger.Error("seeding interrupted", slog.String("error", err.Error()))
		os.Exit(1)
	}

	printJSON(res)
	if len(res.Failed) > 0 {
		os.Exit(2)
	}
}

func loadCatalog(path, owner string) (*seed.Catalog, error) {
	if path != "" {
		return seed.LoadCatalog(path)
	}

	ownerID := uuid.New()
	if owner != "" {
		id, err := uuid.Parse(owner)
		if err != nil {
			return nil, fmt.Errorf("invalid owner id: %w", err)
		}
		ownerID = id
	}
	return seed.DemoCatalog(ownerID), nil
}

func runMigration(ctx context.Context, cfg *config.Config, command string, version int, logger *slog.Logger) error {
	if command == "reset" {
		if err := withMigrator(cfg, logger, func(m *db.Migrator) error { return m.Drop(ctx) }); err != nil {
			return err
		}
		// the bookkeeping table is created when a migrator opens
		command = "up"
	}

	return withMigrator(cfg, logger, func(m *db.Migrator) error {
		switch command {
		case "up":
			return m.Up(ctx)
		case "down":
			return m.Down(ctx)
		case "force":
			if version < 0 {
				return fmt.Errorf("-version is required with -migrate=force")
			}
			return m.Force(ctx, version)
		case "status":
			status, err := m.Status(ctx)
			if err != nil {
				return err
			}
			printJSON(status)
			return nil
		default:
			return fmt.Errorf("unknown migration command %q", command)
		}
	})
}

func withMigrator(cfg *config.Config, logger *slog.Logger, fn func(*db.Migrator) error) error {
	migrator, err := db.NewMigrator(&db.MigrationConfig{DatabaseURL: cfg.GetDatabaseURL()}, logger)
	if err != nil {
		return err
	}
	defer migrator.Close()
	return fn(migrator)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
