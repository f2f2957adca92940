package telemetry_test

import (
	"context"
	"testing"

	"github.com/erp/orderentry/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db
}

type tracedRow struct {
	ID   uint
	Name string
}

func TestDBTracingPlugin(t *testing.T) {
	t.Run("disabled registers nothing", func(t *testing.T) {
		db := openTestDB(t)
		plugin := telemetry.NewDBTracingPlugin(telemetry.DefaultDBTracingConfig(), zap.NewNop())

		require.NoError(t, plugin.RegisterOtelGorm(db))
		assert.Nil(t, db.Callback().Query().Get("otel_slow_query:query"))
	})

	t.Run("enabled traces queries", func(t *testing.T) {
		sr := setupTestTracer(t)
		db := openTestDB(t)
		require.NoError(t, db.AutoMigrate(&tracedRow{}))
		require.NoError(t, db.Create(&tracedRow{Name: "a"}).Error)

		cfg := telemetry.DefaultDBTracingConfig()
		cfg.Enabled = true
		cfg.DBSystem = "sqlite"
		plugin := telemetry.NewDBTracingPlugin(cfg, zap.NewNop())
		require.NoError(t, plugin.RegisterOtelGorm(db))
		assert.NotNil(t, db.Callback().Query().Get("otel_slow_query:query"))

		var rows []tracedRow
		require.NoError(t, db.WithContext(context.Background()).Find(&rows).Error)
		assert.Len(t, rows, 1)
		assert.NotEmpty(t, sr.Ended(), "otelgorm should end a span per query")
	})
}
