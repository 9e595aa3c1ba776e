package database_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/straye-as/attendance-api/internal/config"
	"github.com/straye-as/attendance-api/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewDatabase_MigratesSchema(t *testing.T) {
	db, err := database.NewDatabase(&config.DatabaseConfig{Name: "db_" + uuid.NewString()}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	for _, table := range []string{"students", "classes", "attendance_records", "daily_codes", "notifications", "sessions"} {
		assert.True(t, db.Migrator().HasTable(table), "missing table %s", table)
	}

	assert.NoError(t, database.HealthCheck(db))

	stats, err := database.HealthCheckWithStats(db)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.MaxOpen)
}

func TestNewDatabase_SeparateNamesAreIsolated(t *testing.T) {
	first, err := database.NewDatabase(&config.DatabaseConfig{Name: "db_" + uuid.NewString()}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(first) })

	second, err := database.NewDatabase(&config.DatabaseConfig{Name: "db_" + uuid.NewString()}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(second) })

	require.NoError(t, first.Exec("INSERT INTO notifications (message, created_at) VALUES ('hello', CURRENT_TIMESTAMP)").Error)

	var count int64
	require.NoError(t, second.Table("notifications").Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestClose_DiscardsData(t *testing.T) {
	cfg := &config.DatabaseConfig{Name: "db_" + uuid.NewString()}

	db, err := database.NewDatabase(cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, db.Exec("INSERT INTO notifications (message, created_at) VALUES ('hello', CURRENT_TIMESTAMP)").Error)
	require.NoError(t, database.Close(db))

	reopened, err := database.NewDatabase(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(reopened) })

	var count int64
	require.NoError(t, reopened.Table("notifications").Count(&count).Error)
	assert.Equal(t, int64(0), count)
}
