package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryImportGuard_Seen(t *testing.T) {
	guard := NewInMemoryImportGuard(time.Hour)
	defer guard.Close()

	ctx := context.Background()
	accountID := uuid.New()

	seen, err := guard.Seen(ctx, accountID, "hash-1")
	require.NoError(t, err)
	assert.False(t, seen, "first sighting is not a duplicate")

	seen, err = guard.Seen(ctx, accountID, "hash-1")
	require.NoError(t, err)
	assert.True(t, seen, "second sighting is a duplicate")

	// Same hash on a different account is independent
	seen, err = guard.Seen(ctx, uuid.New(), "hash-1")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestInMemoryImportGuard_Expiry(t *testing.T) {
	guard := NewInMemoryImportGuard(10 * time.Millisecond)
	defer guard.Close()

	ctx := context.Background()
	accountID := uuid.New()

	_, err := guard.Seen(ctx, accountID, "hash-1")
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	seen, err := guard.Seen(ctx, accountID, "hash-1")
	require.NoError(t, err)
	assert.False(t, seen, "expired hash is forgotten")
}

func TestInMemoryImportGuard_CloseIsIdempotent(t *testing.T) {
	guard := NewInMemoryImportGuard(time.Hour)
	require.NoError(t, guard.Close())
	require.NoError(t, guard.Close())
}
