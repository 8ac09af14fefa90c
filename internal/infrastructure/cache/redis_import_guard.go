package cache

import (
	"context"
	"fmt"
	"time"

	appbanking "github.com/finbooks/backend/internal/application/banking"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisImportGuard implements the import duplicate-suppression gate using
// Redis. SETNX gives one atomic remember-and-report per hash, so concurrent
// imports of the same statement row flag all but the first occurrence even
// across instances.
type RedisImportGuard struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisImportGuard creates a Redis-backed import guard. The TTL bounds
// how long imported hashes stay remembered; statement rows older than the
// lookback horizon fall out naturally.
func NewRedisImportGuard(cfg RedisConfig, ttl time.Duration) (*RedisImportGuard, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisImportGuard{
		client:    client,
		keyPrefix: "import:hash:",
		ttl:       ttl,
	}, nil
}

// NewRedisImportGuardWithClient creates a guard with an existing Redis client
func NewRedisImportGuardWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisImportGuard {
	if keyPrefix == "" {
		keyPrefix = "import:hash:"
	}
	return &RedisImportGuard{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

// Seen reports whether the hash was already imported into the account and
// remembers it either way.
func (g *RedisImportGuard) Seen(ctx context.Context, bankAccountID uuid.UUID, hash string) (bool, error) {
	key := g.key(bankAccountID, hash)

	newlySet, err := g.client.SetNX(ctx, key, "1", g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check import hash: %w", err)
	}
	return !newlySet, nil
}

func (g *RedisImportGuard) key(bankAccountID uuid.UUID, hash string) string {
	return g.keyPrefix + bankAccountID.String() + ":" + hash
}

// Close closes the Redis client
func (g *RedisImportGuard) Close() error {
	return g.client.Close()
}

// Ensure RedisImportGuard implements the application's guard interface
var _ appbanking.ImportGuard = (*RedisImportGuard)(nil)
