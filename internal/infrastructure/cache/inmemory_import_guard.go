package cache

import (
	"context"
	"sync"
	"time"

	appbanking "github.com/finbooks/backend/internal/application/banking"
	"github.com/google/uuid"
)

type guardEntry struct {
	expiresAt time.Time
}

// InMemoryImportGuard implements the import duplicate-suppression gate with
// an in-process map. Suitable for single-instance deployments and tests.
type InMemoryImportGuard struct {
	mu        sync.Mutex
	entries   map[string]guardEntry
	ttl       time.Duration
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryImportGuard creates an in-memory import guard and starts a
// background goroutine that evicts expired hashes.
func NewInMemoryImportGuard(ttl time.Duration) *InMemoryImportGuard {
	guard := &InMemoryImportGuard{
		entries:  make(map[string]guardEntry),
		ttl:      ttl,
		stopChan: make(chan struct{}),
	}

	guard.wg.Add(1)
	go guard.cleanupLoop()

	return guard
}

// Seen reports whether the hash was already imported into the account and
// remembers it either way.
func (g *InMemoryImportGuard) Seen(ctx context.Context, bankAccountID uuid.UUID, hash string) (bool, error) {
	key := bankAccountID.String() + ":" + hash

	g.mu.Lock()
	defer g.mu.Unlock()

	if e, exists := g.entries[key]; exists && time.Now().Before(e.expiresAt) {
		return true, nil
	}
	g.entries[key] = guardEntry{expiresAt: time.Now().Add(g.ttl)}
	return false, nil
}

// Close stops the cleanup goroutine
func (g *InMemoryImportGuard) Close() error {
	g.closeOnce.Do(func() {
		close(g.stopChan)
	})
	g.wg.Wait()
	return nil
}

func (g *InMemoryImportGuard) cleanupLoop() {
	defer g.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-g.stopChan:
			return
		case <-ticker.C:
			g.evictExpired()
		}
	}
}

func (g *InMemoryImportGuard) evictExpired() {
	now := time.Now()

	g.mu.Lock()
	defer g.mu.Unlock()
	for key, e := range g.entries {
		if now.After(e.expiresAt) {
			delete(g.entries, key)
		}
	}
}

// Ensure InMemoryImportGuard implements the application's guard interface
var _ appbanking.ImportGuard = (*InMemoryImportGuard)(nil)
