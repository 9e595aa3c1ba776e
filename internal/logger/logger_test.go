package logger_test

import (
	"testing"

	"github.com/straye-as/attendance-api/internal/config"
	"github.com/straye-as/attendance-api/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger_Level(t *testing.T) {
	log, err := logger.NewLogger(
		&config.LoggingConfig{Level: "warn", Format: "json"},
		&config.AppConfig{Name: "attendance-api", Environment: "test"},
	)
	require.NoError(t, err)

	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))
}

func TestNewLogger_UnknownLevelFallsBackToInfo(t *testing.T) {
	log, err := logger.NewLogger(
		&config.LoggingConfig{Level: "chatty", Format: "console"},
		&config.AppConfig{Name: "attendance-api", Environment: "development"},
	)
	require.NoError(t, err)

	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
}

func TestWithUser(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	logger.WithUser(zap.New(core), "student", "ST001").Info("marked")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "student", fields["user_type"])
	assert.Equal(t, "ST001", fields["user_id"])
}
