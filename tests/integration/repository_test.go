package integration

import (
	"context"
	"testing"
	"time"

	"github.com/erp/orderentry/internal/domain/catalog"
	"github.com/erp/orderentry/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogRepository_Postgres(t *testing.T) {
	tdb := NewSharedTestDB(t)
	tdb.CleanTables()
	ctx := context.Background()

	box := catalog.NewUnitRefEmbedded(uuid.New(), "box")
	p := tdb.SeedProduct("pg-100", "12.50", "40", func(p *catalog.Product) {
		p.Barcode = "4006381333931"
		require.NoError(t, p.AddMultiUnit(catalog.MultiUnit{
			ID:          uuid.New(),
			Unit:        box,
			Conversion:  decimal.NewFromInt(12),
			RetailPrice: decimal.RequireFromString("140"),
		}))
	})
	tdb.SeedProduct("pg-200", "3", "0")

	t.Run("find by code is case insensitive", func(t *testing.T) {
		found, err := tdb.Products.FindByCode(ctx, " pg-100 ")
		require.NoError(t, err)
		assert.Equal(t, p.ID, found.ID)
		assert.False(t, found.BatchTracked)
		assert.True(t, decimal.RequireFromString("12.50").Equal(found.RetailPrice))
		require.Len(t, found.MultiUnits, 1)
		assert.Equal(t, "box", found.MultiUnits[0].Unit.Name())
		assert.True(t, decimal.NewFromInt(12).Equal(found.MultiUnits[0].Conversion))
	})

	t.Run("find by scan code", func(t *testing.T) {
		found, err := tdb.Products.FindByScanCode(ctx, "4006381333931")
		require.NoError(t, err)
		assert.Equal(t, p.ID, found.ID)

		_, err = tdb.Products.FindByScanCode(ctx, "0000")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("search orders by code and honours limit", func(t *testing.T) {
		found, err := tdb.Products.Search(ctx, "pg-", 10)
		require.NoError(t, err)
		require.Len(t, found, 2)
		assert.Equal(t, "PG-100", found[0].Code)
		assert.Equal(t, "PG-200", found[1].Code)

		found, err = tdb.Products.Search(ctx, "pg-", 1)
		require.NoError(t, err)
		assert.Len(t, found, 1)
	})

	t.Run("save replaces multi-units", func(t *testing.T) {
		p.MultiUnits = nil
		require.NoError(t, tdb.Products.Save(ctx, p))

		found, err := tdb.Products.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Empty(t, found.MultiUnits)
	})
}

func TestBatchAndStockRepositories_Postgres(t *testing.T) {
	tdb := NewSharedTestDB(t)
	tdb.CleanTables()
	ctx := context.Background()

	p := tdb.SeedProduct("pg-300", "10", "25")
	late := time.Date(2027, 6, 1, 0, 0, 0, 0, time.UTC)
	early := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
	tdb.SeedBatch(p.ID, "NOEXP", "5", "10", nil)
	tdb.SeedBatch(p.ID, "LATE", "10", "11", &late)
	tdb.SeedBatch(p.ID, "EARLY", "10", "9", &early)

	t.Run("batches ordered by expiry with no expiry last", func(t *testing.T) {
		batches, err := tdb.Batches.FindByProduct(ctx, p.ID)
		require.NoError(t, err)
		require.Len(t, batches, 3)
		assert.Equal(t, "EARLY", batches[0].BatchNumber)
		assert.Equal(t, "LATE", batches[1].BatchNumber)
		assert.Equal(t, "NOEXP", batches[2].BatchNumber)
		assert.Nil(t, batches[2].ExpiryDate)
	})

	t.Run("stock pieces", func(t *testing.T) {
		pieces, err := tdb.Stock.StockPieces(ctx, p.ID)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(25).Equal(pieces))

		require.NoError(t, tdb.Stock.SetStockPieces(ctx, p.ID, decimal.RequireFromString("7.5")))
		pieces, err = tdb.Stock.StockPieces(ctx, p.ID)
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("7.5").Equal(pieces))
	})

	t.Run("missing stock row reads as zero", func(t *testing.T) {
		pieces, err := tdb.Stock.StockPieces(ctx, uuid.New())
		require.NoError(t, err)
		assert.True(t, pieces.IsZero())
	})
}
