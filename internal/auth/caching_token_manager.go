package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/fivetwenty-io/caseapi-client/internal/constants"
	"github.com/fivetwenty-io/caseapi-client/pkg/caseapi"
)

// CachingTokenManager wraps a TokenManager and reuses its tokens for a fixed
// TTL, storing them in a caseapi.Cache so several clients (or processes, with
// a NATS or Redis backend) can share one token.
type CachingTokenManager struct {
	inner  TokenManager
	cache  caseapi.Cache
	key    string
	ttl    time.Duration
	logger caseapi.Logger
	mutex  sync.Mutex
}

// NewCachingTokenManager creates a caching wrapper. scope identifies the
// credentials (e.g. token URL and API key) and is hashed into the cache key.
func NewCachingTokenManager(inner TokenManager, cache caseapi.Cache, scope string, ttl time.Duration, logger caseapi.Logger) *CachingTokenManager {
	if ttl <= 0 {
		ttl = constants.DefaultTokenTTL
	}

	if logger == nil {
		logger = caseapi.NopLogger{}
	}

	sum := sha256.Sum256([]byte(scope))

	return &CachingTokenManager{
		inner:  inner,
		cache:  cache,
		key:    constants.TokenCacheKeyPrefix + hex.EncodeToString(sum[:]),
		ttl:    ttl,
		logger: logger,
	}
}

// GetToken returns a cached token or fetches and caches a new one.
func (m *CachingTokenManager) GetToken(ctx context.Context) (string, error) {
	entry, err := m.cache.Get(ctx, m.key)
	if err == nil && len(entry.Data) > 0 {
		return string(entry.Data), nil
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	// Another caller may have filled the cache while we waited.
	entry, err = m.cache.Get(ctx, m.key)
	if err == nil && len(entry.Data) > 0 {
		return string(entry.Data), nil
	}

	m.logger.Debug("token cache miss", nil)

	return m.fetchAndStore(ctx)
}

// RefreshToken evicts the cached token and fetches a new one.
func (m *CachingTokenManager) RefreshToken(ctx context.Context) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	err := m.cache.Delete(ctx, m.key)
	if err != nil {
		m.logger.Warn("failed to evict cached token", map[string]interface{}{"error": err.Error()})
	}

	_, err = m.fetchAndStore(ctx)

	return err
}

// SetToken stores a token until expiresAt (or for the TTL when zero).
func (m *CachingTokenManager) SetToken(token string, expiresAt time.Time) {
	if expiresAt.IsZero() {
		expiresAt = time.Now().Add(m.ttl)
	}

	err := m.cache.Set(context.Background(), m.key, &caseapi.CacheEntry{
		Data:      []byte(token),
		ExpiresAt: expiresAt,
	})
	if err != nil {
		m.logger.Warn("failed to cache token", map[string]interface{}{"error": err.Error()})
	}
}

func (m *CachingTokenManager) fetchAndStore(ctx context.Context) (string, error) {
	token, err := m.inner.GetToken(ctx)
	if err != nil {
		return "", fmt.Errorf("fetching token: %w", err)
	}

	err = m.cache.Set(ctx, m.key, &caseapi.CacheEntry{
		Data:      []byte(token),
		ExpiresAt: time.Now().Add(m.ttl),
	})
	if err != nil {
		// A cache outage degrades to fetching per request.
		m.logger.Warn("failed to cache token", map[string]interface{}{"error": err.Error()})
	}

	return token, nil
}
