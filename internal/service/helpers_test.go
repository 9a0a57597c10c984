package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/AlShabiliBadia/Shorter-links/internal/auth"
	"github.com/AlShabiliBadia/Shorter-links/internal/config"
	"github.com/AlShabiliBadia/Shorter-links/internal/repository"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := repository.OpenDB(context.Background(), config.DB{Driver: "sqlite", DSN: ":memory:"}, zap.NewNop(), logger.Silent)
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrate(db))
	t.Cleanup(func() { _ = repository.CloseDB(db) })
	return db
}

func newTestAccounts(t *testing.T, store repository.Store) *AccountService {
	t.Helper()

	tokens, err := auth.NewTokenService(config.Auth{
		Secret:    "test-secret",
		Algorithm: "HS256",
		TokenTTL:  time.Minute,
	})
	require.NoError(t, err)
	return NewAccountService(store, auth.NewHasher(bcrypt.MinCost), tokens, zap.NewNop())
}

// sequence hands out codes in order and repeats the last one forever.
type sequence struct {
	mu    sync.Mutex
	codes []string
	calls int
}

func (s *sequence) next() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.calls
	if i >= len(s.codes) {
		i = len(s.codes) - 1
	}
	s.calls++
	return s.codes[i], nil
}

func (s *sequence) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// mapCache is an in-process LinkCache.
type mapCache struct {
	mu      sync.Mutex
	entries map[string]repository.CachedLink
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string]repository.CachedLink)}
}

func (c *mapCache) Get(_ context.Context, code string) (repository.CachedLink, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.entries[code]
	return l, ok
}

func (c *mapCache) Set(_ context.Context, code string, link repository.CachedLink) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[code] = link
}

func (c *mapCache) Delete(_ context.Context, code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, code)
}
