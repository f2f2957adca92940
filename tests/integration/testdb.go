// Package integration runs the order entry stack against a real PostgreSQL
// started with testcontainers.
package integration

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/erp/orderentry/internal/domain/catalog"
	"github.com/erp/orderentry/internal/domain/inventory"
	"github.com/erp/orderentry/internal/infrastructure/migration"
	"github.com/erp/orderentry/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	sharedContainer    testcontainers.Container
	sharedContainerMu  sync.Mutex
	sharedContainerDSN string
)

// TestDB is a migrated database plus the order entry repositories on it
type TestDB struct {
	DB       *gorm.DB
	DSN      string
	Products *persistence.GormCatalogRepository
	Batches  *persistence.GormBatchRepository
	Stock    *persistence.GormStockRepository
	t        *testing.T
}

// NewSharedTestDB connects to a container shared by the package, starting
// and migrating it on first use. Tests must not depend on rows they did not
// create; use CleanTables when they do.
func NewSharedTestDB(t *testing.T) *TestDB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	sharedContainerMu.Lock()
	defer sharedContainerMu.Unlock()

	ctx := context.Background()
	if sharedContainer == nil {
		container, err := tcpostgres.Run(ctx,
			"postgres:16-alpine",
			tcpostgres.WithDatabase("orderentry_test"),
			tcpostgres.WithUsername("postgres"),
			tcpostgres.WithPassword("postgres"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second)),
		)
		require.NoError(t, err, "Failed to start PostgreSQL container")

		dsn, err := container.ConnectionString(ctx, "sslmode=disable")
		require.NoError(t, err, "Failed to get connection string")

		runMigrations(t, dsn)
		sharedContainer = container
		sharedContainerDSN = dsn
	}

	db := connectToDatabase(t, sharedContainerDSN)
	tdb := &TestDB{
		DB:       db,
		DSN:      sharedContainerDSN,
		Products: persistence.NewGormCatalogRepository(db),
		Batches:  persistence.NewGormBatchRepository(db),
		Stock:    persistence.NewGormStockRepository(db),
		t:        t,
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return tdb
}

// CleanTables empties the order entry tables
func (tdb *TestDB) CleanTables() {
	tdb.t.Helper()
	err := tdb.DB.Exec("TRUNCATE TABLE stock_levels, stock_batches, product_multi_units, products CASCADE").Error
	require.NoError(tdb.t, err, "Failed to truncate tables")
}

// SeedProduct saves a product with the given retail price and stock
func (tdb *TestDB) SeedProduct(code, retail, pieces string, opts ...func(*catalog.Product)) *catalog.Product {
	tdb.t.Helper()
	ctx := context.Background()

	p, err := catalog.NewProduct(code, "Product "+code, catalog.NewUnitRefEmbedded(uuid.New(), "pcs"))
	require.NoError(tdb.t, err)
	p.RetailPrice = decimal.RequireFromString(retail)
	for _, opt := range opts {
		opt(p)
	}
	require.NoError(tdb.t, tdb.Products.Save(ctx, p))
	require.NoError(tdb.t, tdb.Stock.SetStockPieces(ctx, p.ID, decimal.RequireFromString(pieces)))
	return p
}

// SeedBatch saves a batch of productID
func (tdb *TestDB) SeedBatch(productID uuid.UUID, number, quantity, retail string, expiry *time.Time) inventory.Batch {
	tdb.t.Helper()
	b := inventory.Batch{
		ID:          uuid.New(),
		ProductID:   productID,
		BatchNumber: number,
		Quantity:    decimal.RequireFromString(quantity),
		RetailPrice: decimal.RequireFromString(retail),
		ExpiryDate:  expiry,
	}
	require.NoError(tdb.t, tdb.Batches.Save(context.Background(), &b))
	return b
}

func connectToDatabase(t *testing.T, dsn string) *gorm.DB {
	t.Helper()

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}
	if os.Getenv("TEST_DB_DEBUG") != "" {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(gormpostgres.Open(dsn), gormConfig)
	require.NoError(t, err, "Failed to connect to database")

	sqlDB, err := db.DB()
	require.NoError(t, err, "Failed to get underlying SQL DB")
	sqlDB.SetMaxOpenConns(5)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	return db
}

func runMigrations(t *testing.T, dsn string) {
	t.Helper()

	path := findMigrationsPath()
	require.NotEmpty(t, path, "Could not find migrations directory")

	m, err := migration.NewFromURL(dsn, path, nil)
	require.NoError(t, err, "Failed to create migrator")
	defer func() {
		_ = m.Close()
	}()
	require.NoError(t, m.Up(), "Failed to run migrations")
}

func findMigrationsPath() string {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return ""
	}
	dir := filepath.Dir(filename)
	for i := 0; i < 4; i++ {
		candidate := filepath.Join(dir, "migrations")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		dir = filepath.Dir(dir)
	}
	return ""
}

// CleanupSharedContainer terminates the shared container; call it from TestMain
func CleanupSharedContainer() {
	sharedContainerMu.Lock()
	defer sharedContainerMu.Unlock()

	if sharedContainer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = sharedContainer.Terminate(ctx)
		sharedContainer = nil
		sharedContainerDSN = ""
	}
}
