package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func TestWithContext_RoundTrip(t *testing.T) {
	logger, _ := observedLogger()
	ctx := WithContext(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx))
}

func TestFromContext_Missing(t *testing.T) {
	logger := FromContext(context.Background())
	require.NotNil(t, logger)
	// No-op logger must not panic
	logger.Info("ignored")
}

func TestContextIdentifiers(t *testing.T) {
	logger, logs := observedLogger()
	ctx := context.Background()

	ctx, logger = WithRequestID(ctx, logger, "req-1")
	ctx, logger = WithCompanyID(ctx, logger, "co-1")
	ctx, logger = WithUserID(ctx, logger, "user-1")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "co-1", GetCompanyID(ctx))
	assert.Equal(t, "user-1", GetUserID(ctx))

	logger.Info("scoped")
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "co-1", fields["company_id"])
	assert.Equal(t, "user-1", fields["user_id"])
}

func TestL_EnrichesFromContext(t *testing.T) {
	logger, logs := observedLogger()
	ctx := WithContext(context.Background(), logger)
	ctx = context.WithValue(ctx, RequestIDKey, "req-9")
	ctx = context.WithValue(ctx, CompanyIDKey, "co-9")

	L(ctx).Info("enriched")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-9", fields["request_id"])
	assert.Equal(t, "co-9", fields["company_id"])
	_, hasUser := fields["user_id"]
	assert.False(t, hasUser)
}
