// test/helpers/helpers.go
package helpers

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/resell-orders/internal/adapters/db"
	"github.com/ammerola/resell-orders/internal/core/domain"
	"github.com/ammerola/resell-orders/internal/pkg/config"
)

// TestDB represents a test database instance
type TestDB struct {
	PgxPool  *pgxpool.Pool
	Database *db.Database
	Resource *dockertest.Resource
	Pool     *dockertest.Pool
	Config   *db.Config
}

// TestRedis represents a test Redis instance
type TestRedis struct {
	Client *redis.Client
	Server *miniredis.Miniredis
}

// TestLogger returns a test logger
func TestLogger() *slog.Logger {
	if testing.Verbose() {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// SetupTestDB starts a PostgreSQL container and applies the embedded migrations
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	pool, err := dockertest.NewPool("")
	require.NoError(t, err, "Could not connect to Docker")

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=test",
			"POSTGRES_PASSWORD=test",
			"POSTGRES_DB=test_orders",
			"listen_addresses = '*'",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err, "Could not start PostgreSQL container")

	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("Could not purge resource: %s", err)
		}
	})

	dbConfig := &db.Config{
		Host:               "localhost",
		Port:               resource.GetPort("5432/tcp"),
		User:               "test",
		Password:           "test",
		Database:           "test_orders",
		SSLMode:            "disable",
		MaxConnections:     5,
		MinConnections:     1,
		MaxConnLifetime:    time.Hour,
		MaxConnIdleTime:    time.Minute * 30,
		HealthCheckPeriod:  time.Minute,
		ConnectTimeout:     time.Second * 10,
		StatementCacheMode: "describe",
		EnableQueryLogging: testing.Verbose(),
	}

	var database *db.Database
	err = pool.Retry(func() error {
		ctx := context.Background()
		var err error
		database, err = db.NewDatabase(ctx, dbConfig, TestLogger())
		if err != nil {
			return err
		}
		return database.Ping(ctx)
	})
	require.NoError(t, err, "Could not connect to PostgreSQL")
	t.Cleanup(database.Close)

	migrationConfig := &db.MigrationConfig{
		DatabaseURL: fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
			dbConfig.User, dbConfig.Password, dbConfig.Host, dbConfig.Port,
			dbConfig.Database, dbConfig.SSLMode),
	}
	err = db.RunMigrationsWithRetry(context.Background(), migrationConfig, TestLogger(), 3)
	require.NoError(t, err, "Could not run migrations")

	return &TestDB{
		PgxPool:  database.Pool(),
		Database: database,
		Resource: resource,
		Pool:     pool,
		Config:   dbConfig,
	}
}

// SetupTestRedis creates an in-process Redis instance
func SetupTestRedis(t *testing.T) *TestRedis {
	t.Helper()

	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	t.Cleanup(func() {
		client.Close()
	})

	return &TestRedis{
		Client: client,
		Server: mr,
	}
}

// SetupMockDB creates a mock database/sql handle for unit testing
func SetupMockDB(t *testing.T) (sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err, "Failed to create mock DB")

	t.Cleanup(func() {
		db.Close()
	})

	return mock, db
}

// LoadTestConfig returns a configuration that passes basic validation
func LoadTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:        "test-api",
			Environment: "test",
			Version:     "test",
			LogLevel:    "debug",
			LogFormat:   "text",
			Debug:       true,
		},
		Store: config.StoreConfig{
			Driver: config.DriverPostgres,
		},
		Database: config.DatabaseConfig{
			Host:               "localhost",
			Port:               "5432",
			User:               "test",
			Password:           "test",
			Name:               "test_orders",
			SSLMode:            "disable",
			MaxConnections:     10,
			MinConnections:     2,
			EnableQueryLogging: true,
		},
		Redis: config.RedisConfig{
			Host:     "localhost",
			Port:     "6379",
			DB:       0,
			TTL:      time.Hour,
			PoolSize: 10,
		},
		Asynq: config.AsynqConfig{
			RedisAddr:   "localhost:6379",
			RedisDB:     1,
			Concurrency: 2,
			Queues:      map[string]int{"critical": 6, "default": 3, "low": 1},
			RetryMax:    3,
			CleanupCron: "@daily",
		},
		AWS: config.AWSConfig{
			Region:          "us-east-1",
			SecretsProvider: "env",
		},
		Inventory: config.InventoryConfig{
			NegativePolicy:    config.PolicyReject,
			LowStockThreshold: 2,
			MovementRetention: 90 * 24 * time.Hour,
		},
		Notification: config.NotificationConfig{
			From:     "noreply@test.local",
			SMTPAddr: "localhost:1025",
		},
		Security: config.SecurityConfig{
			RateLimitRequests: 100,
			RateLimitDuration: time.Minute,
			AllowedOrigins:    []string{"*"},
			SecureHeaders:     false,
			RequestIDHeader:   "X-Request-ID",
		},
		Server: config.ServerConfig{
			Host:           "localhost",
			Port:           "8080",
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   15 * time.Second,
			RequestTimeout: 5 * time.Second,
		},
	}
}

// CreateTestProduct creates a catalog entry
func CreateTestProduct(overrides ...func(*domain.Product)) *domain.Product {
	now := time.Now().UTC()
	p := &domain.Product{
		ID:          uuid.New(),
		Type:        domain.ProductPerfume,
		Name:        "Oud Royale",
		Color:       "amber",
		Smell:       "woody",
		Season:      domain.SeasonWinter,
		Gender:      domain.GenderBoy,
		Persistence: 8,
		Slug:        "oud-royale",
		OwnerID:     uuid.New(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	for _, override := range overrides {
		override(p)
	}
	return p
}

// CreateTestPurchase creates a stock intake of count units
func CreateTestPurchase(productID uuid.UUID, count int) *domain.Purchase {
	return &domain.Purchase{
		ID:             uuid.New(),
		ProductID:      productID,
		OwnerID:        uuid.New(),
		Count:          count,
		PurchasedPrice: decimal.NewFromFloat(40.00),
		SalePrice:      decimal.NewFromFloat(65.50),
		CreatedAt:      time.Now().UTC(),
	}
}

// CreateTestOrder creates a valid order with one line item
func CreateTestOrder(overrides ...func(*domain.Order)) *domain.Order {
	now := time.Now().UTC()
	o := &domain.Order{
		ID:     uuid.New(),
		Status: domain.StatusAdded,
		LineItems: []domain.LineItem{
			{ProductID: uuid.New(), Qty: 1},
		},
		Customer: domain.Customer{
			Name:     "Layla Haddad",
			Phone:    "0501234567",
			Location: "Block 4, Street 12",
		},
		OwnerID:       uuid.New(),
		PaymentMethod: domain.PaymentCash,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	for _, override := range overrides {
		override(o)
	}
	return o
}

// SeedStock inserts a product and its inventory counter directly
func SeedStock(t *testing.T, pool *pgxpool.Pool, count int) *domain.Product {
	t.Helper()

	ctx := context.Background()
	p := CreateTestProduct()

	_, err := pool.Exec(ctx, `
		INSERT INTO products (id, type, name, color, smell, season, gender, persistence, slug, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.ID, p.Type, p.Name, p.Color, p.Smell, p.Season, p.Gender, p.Persistence, p.Slug, p.OwnerID)
	require.NoError(t, err, "Failed to seed product")

	_, err = pool.Exec(ctx, `
		INSERT INTO inventory (product_id, owner_id, count, sale_price)
		VALUES ($1, $2, $3, $4)`,
		p.ID, p.OwnerID, count, decimal.NewFromFloat(65.50))
	require.NoError(t, err, "Failed to seed inventory")

	return p
}

// StockCount reads a product's counter directly
func StockCount(t *testing.T, pool *pgxpool.Pool, productID uuid.UUID) int {
	t.Helper()

	var count int
	err := pool.QueryRow(context.Background(),
		`SELECT count FROM inventory WHERE product_id = $1`, productID).Scan(&count)
	require.NoError(t, err, "Failed to read stock count")
	return count
}

// AssertEventuallyWithTimeout asserts that a condition is met within a timeout
func AssertEventuallyWithTimeout(t *testing.T, condition func() bool, timeout time.Duration, msg string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}

	t.Errorf("Condition not met within %v: %s", timeout, msg)
}

// TruncateAllTables truncates all tables in the test database
func TruncateAllTables(t *testing.T, db *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()
	tables := []string{
		"stock_movements",
		"order_items",
		"orders",
		"purchases",
		"inventory",
		"products",
	}

	for _, table := range tables {
		_, err := db.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		require.NoError(t, err, "Failed to truncate table: %s", table)
	}
}
