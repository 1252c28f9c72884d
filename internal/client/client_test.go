package client_test

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/caseapi-client/internal/auth"
	. "github.com/fivetwenty-io/caseapi-client/internal/client"
	"github.com/fivetwenty-io/caseapi-client/pkg/caseapi"
	"github.com/fivetwenty-io/caseapi-client/pkg/caseclient"
)

// tokenServer issues numbered tokens and counts how many it issued.
func tokenServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var issued atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))

		n := issued.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]string{"token": "token-" + string(rune('0'+n))})
	}))
	t.Cleanup(server.Close)

	return server, &issued
}

// usersServer answers GET /users/1 and records the Authorization headers.
func usersServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()

	if handler == nil {
		handler = func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/vnd.api+json")
			_, _ = w.Write([]byte(`{"users":{"id":1,"name":"Ann"}}`))
		}
	}

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return server
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("requires API endpoint", func(t *testing.T) {
		t.Parallel()

		_, err := New(context.Background(), &caseapi.Config{})
		require.ErrorIs(t, err, ErrAPIEndpointRequired)
	})

	t.Run("creates client with access token", func(t *testing.T) {
		t.Parallel()

		client, err := New(context.Background(), &caseapi.Config{
			APIEndpoint: "https://api.example.com",
			AccessToken: "test-token",
		})
		require.NoError(t, err)
		assert.IsType(t, &auth.StaticTokenManager{}, client.TokenManager())
	})

	t.Run("creates client with API key", func(t *testing.T) {
		t.Parallel()

		client, err := New(context.Background(), &caseapi.Config{
			APIEndpoint: "https://api.example.com",
			TokenURL:    "https://auth.example.com/token",
			APIKey:      "secret",
		})
		require.NoError(t, err)
		assert.IsType(t, &auth.APIKeyTokenManager{}, client.TokenManager())
	})

	t.Run("caches tokens when asked", func(t *testing.T) {
		t.Parallel()

		client, err := New(context.Background(), &caseapi.Config{
			APIEndpoint: "https://api.example.com",
			TokenURL:    "https://auth.example.com/token",
			APIKey:      "secret",
			CacheTokens: true,
		})
		require.NoError(t, err)
		assert.IsType(t, &auth.CachingTokenManager{}, client.TokenManager())
	})

	t.Run("requires an API key without an access token", func(t *testing.T) {
		t.Parallel()

		_, err := New(context.Background(), &caseapi.Config{
			APIEndpoint: "https://api.example.com",
			TokenURL:    "https://auth.example.com/token",
		})
		require.ErrorIs(t, err, auth.ErrAPIKeyRequired)
	})

	t.Run("rejects unknown token cache", func(t *testing.T) {
		t.Parallel()

		_, err := New(context.Background(), &caseapi.Config{
			APIEndpoint: "https://api.example.com",
			TokenURL:    "https://auth.example.com/token",
			APIKey:      "secret",
			CacheTokens: true,
			TokenCache:  &caseapi.CacheConfig{Type: "memcached"},
		})
		require.ErrorIs(t, err, caseapi.ErrUnsupportedCacheType)
	})
}

func TestClientFetchesTokenPerRequest(t *testing.T) {
	t.Parallel()

	tokens, issued := tokenServer(t)

	var (
		mu   sync.Mutex
		seen []string
	)

	api := usersServer(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Header.Get("Authorization"))
		mu.Unlock()

		_, _ = w.Write([]byte(`{"users":{"id":1}}`))
	})

	client, err := New(context.Background(), &caseapi.Config{
		APIEndpoint: api.URL,
		TokenURL:    tokens.URL,
		APIKey:      "secret",
	})
	require.NoError(t, err)

	for range 2 {
		_, err = client.Users().Get(context.Background(), "1", nil)
		require.NoError(t, err)
	}

	assert.Equal(t, int32(2), issued.Load())

	mu.Lock()
	defer mu.Unlock()

	assert.Equal(t, []string{"Bearer token-1", "Bearer token-2"}, seen)
}

func TestClientCachesTokens(t *testing.T) {
	t.Parallel()

	tokens, issued := tokenServer(t)
	api := usersServer(t, nil)

	client, err := New(context.Background(), &caseapi.Config{
		APIEndpoint: api.URL,
		TokenURL:    tokens.URL,
		APIKey:      "secret",
		CacheTokens: true,
		TokenTTL:    time.Minute,
	})
	require.NoError(t, err)

	for range 3 {
		_, err = client.Users().Get(context.Background(), "1", nil)
		require.NoError(t, err)
	}

	assert.Equal(t, int32(1), issued.Load())
}

// refusedAddr returns a local address nothing listens on.
func refusedAddr(t *testing.T) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	return addr
}

func TestClientNearCacheFrontsSharedTokenCache(t *testing.T) {
	t.Parallel()

	tokens, issued := tokenServer(t)
	api := usersServer(t, nil)

	tokenCache, err := caseclient.TokenCacheFromURL("redis://" + refusedAddr(t) + "/0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	client, err := New(ctx, &caseapi.Config{
		APIEndpoint: api.URL,
		TokenURL:    tokens.URL,
		APIKey:      "secret",
		CacheTokens: true,
		TokenCache:  tokenCache,
		TokenTTL:    time.Minute,
	})
	require.NoError(t, err)

	for range 3 {
		_, err = client.Users().Get(ctx, "1", nil)
		require.NoError(t, err)
	}

	// Redis is down, so every reuse came from the in-process tier.
	assert.Equal(t, int32(1), issued.Load())
}

func TestClientRefreshesTokenOnUnauthorized(t *testing.T) {
	t.Parallel()

	tokens, issued := tokenServer(t)

	var calls atomic.Int32

	api := usersServer(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)

			return
		}

		_, _ = w.Write([]byte(`{"users":{"id":1}}`))
	})

	client, err := New(context.Background(), &caseapi.Config{
		APIEndpoint:                    api.URL,
		TokenURL:                       tokens.URL,
		APIKey:                         "secret",
		AuthFailureBackoffInitialDelay: time.Millisecond,
	})
	require.NoError(t, err)

	got, err := client.Users().Get(context.Background(), "1", nil)
	require.NoError(t, err)
	assert.Equal(t, caseapi.ID("1"), got.Record.ID)
	assert.Equal(t, int32(2), calls.Load())
	// One token per attempt; the retry needs no separate refresh fetch.
	assert.Equal(t, int32(2), issued.Load())
}

func TestClientMetricsAndHeaders(t *testing.T) {
	t.Parallel()

	var tenant atomic.Value

	api := usersServer(t, func(w http.ResponseWriter, r *http.Request) {
		tenant.Store(r.Header.Get("X-Tenant"))
		_, _ = w.Write([]byte(`{"users":{"id":1}}`))
	})

	registry := prometheus.NewRegistry()

	client, err := New(context.Background(), &caseapi.Config{
		APIEndpoint: api.URL,
		AccessToken: "test-token",
		Headers:     map[string]string{"X-Tenant": "acme"},
		Metrics:     registry,
	})
	require.NoError(t, err)

	_, err = client.Users().Get(context.Background(), "1", nil)
	require.NoError(t, err)

	assert.Equal(t, "acme", tenant.Load())

	count, err := testutil.GatherAndCount(registry, "caseapi_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestClient_ResourceAccessors(t *testing.T) {
	t.Parallel()

	client, err := New(context.Background(), &caseapi.Config{
		APIEndpoint: "https://api.example.com",
		AccessToken: "test-token",
	})
	require.NoError(t, err)

	var c caseapi.Client = client

	assert.NotNil(t, c.Actions())
	assert.NotNil(t, c.ActionTypes())
	assert.NotNil(t, c.ActionParticipants())
	assert.NotNil(t, c.Participants())
	assert.NotNil(t, c.ParticipantTypes())
	assert.NotNil(t, c.ParticipantDefaultTypes())
	assert.NotNil(t, c.Tasks())
	assert.NotNil(t, c.DataCollections())
	assert.NotNil(t, c.DataCollectionFields())
	assert.NotNil(t, c.DataCollectionRecords())
	assert.NotNil(t, c.DataCollectionRecordValues())
	assert.NotNil(t, c.ActionDocuments())
	assert.NotNil(t, c.ActionFolders())
	assert.NotNil(t, c.FileNotes())
	assert.NotNil(t, c.Steps())
	assert.NotNil(t, c.StepChangeLogs())
	assert.NotNil(t, c.Users())
	assert.NotNil(t, c.Files())
	assert.NotNil(t, c.FieldValues())
	assert.NotNil(t, c.Cleanup())
	assert.NotNil(t, c.Transitions())
	assert.NotNil(t, c.Classifier())
	assert.NotNil(t, client.HTTPClient())
}
