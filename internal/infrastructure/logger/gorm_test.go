package logger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

func TestGormLogger_TraceError(t *testing.T) {
	logger, logs := observedLogger()
	gl := NewGormLogger(logger, gormlogger.Error)

	gl.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT * FROM bank_transactions", 0
	}, assert.AnError)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.ErrorLevel, entry.Level)
	assert.Equal(t, "SQL Error", entry.Message)
	assert.Equal(t, "SELECT * FROM bank_transactions", entry.ContextMap()["sql"])
}

func TestGormLogger_IgnoresRecordNotFound(t *testing.T) {
	logger, logs := observedLogger()
	gl := NewGormLogger(logger, gormlogger.Error)

	gl.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT 1", 0
	}, gormlogger.ErrRecordNotFound)

	assert.Equal(t, 0, logs.Len())
}

func TestGormLogger_SlowQuery(t *testing.T) {
	logger, logs := observedLogger()
	gl := NewGormLogger(logger, gormlogger.Warn, WithSlowThreshold(time.Millisecond))

	gl.Trace(context.Background(), time.Now().Add(-time.Second), func() (string, int64) {
		return "SELECT pg_sleep(1)", 1
	}, nil)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)
}

func TestGormLogger_SilentAndLogMode(t *testing.T) {
	logger, logs := observedLogger()
	gl := NewGormLogger(logger, gormlogger.Info)

	silent := gl.LogMode(gormlogger.Silent)
	silent.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT 1", 1
	}, nil)
	assert.Equal(t, 0, logs.Len())

	// Original logger level is untouched by LogMode
	gl.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT 1", 1
	}, nil)
	assert.Equal(t, 1, logs.Len())
}

func TestGormLogger_RequestIDFromContext(t *testing.T) {
	logger, logs := observedLogger()
	gl := NewGormLogger(logger, gormlogger.Info)

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-42")
	gl.Trace(ctx, time.Now(), func() (string, int64) {
		return "SELECT 1", 1
	}, nil)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "req-42", logs.All()[0].ContextMap()["request_id"])
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("warn"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("info"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("other"))
}
