package caseclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/caseapi-client/pkg/caseapi"
	"github.com/fivetwenty-io/caseapi-client/pkg/caseclient"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("requires config", func(t *testing.T) {
		t.Parallel()

		_, err := caseclient.New(context.Background(), nil)
		require.ErrorIs(t, err, caseapi.ErrConfigRequired)
	})

	t.Run("requires endpoint", func(t *testing.T) {
		t.Parallel()

		_, err := caseclient.New(context.Background(), &caseapi.Config{AccessToken: "t"})
		require.ErrorIs(t, err, caseapi.ErrAPIEndpointRequired)
	})

	t.Run("validates config", func(t *testing.T) {
		t.Parallel()

		_, err := caseclient.New(context.Background(), &caseapi.Config{APIEndpoint: "api.example.com"})
		require.ErrorIs(t, err, caseclient.ErrInvalidConfig)
	})

	t.Run("does not modify config", func(t *testing.T) {
		t.Parallel()

		config := &caseapi.Config{APIEndpoint: "api.example.com/", AccessToken: "t"}

		client, err := caseclient.New(context.Background(), config)
		require.NoError(t, err)
		assert.NotNil(t, client)
		assert.Equal(t, "api.example.com/", config.APIEndpoint)
	})
}

func TestNormalizeEndpoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"api.example.com", "https://api.example.com"},
		{"https://api.example.com/api/rest/", "https://api.example.com/api/rest"},
		{"http://localhost:8080//", "http://localhost:8080"},
		{" https://api.example.com ", "https://api.example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, caseclient.NormalizeEndpoint(tt.input))
		})
	}
}

func TestNewWithToken(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/rest/users/1", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"users":{"id":1,"firstName":"Ann"}}`))
	}))
	defer server.Close()

	client, err := caseclient.NewWithToken(context.Background(), server.URL+"/api/rest/", "test-token")
	require.NoError(t, err)

	user, err := client.Users().Get(context.Background(), "1", nil)
	require.NoError(t, err)
	assert.Equal(t, "Ann", user.Record.FirstName)
}

func TestNewWithAPIKey(t *testing.T) {
	t.Parallel()

	client, err := caseclient.NewWithAPIKey(context.Background(),
		"https://api.example.com", "https://auth.example.com/token", "secret")
	require.NoError(t, err)
	assert.NotNil(t, client)

	_, err = caseclient.NewWithAPIKey(context.Background(), "https://api.example.com", "", "secret")
	require.ErrorIs(t, err, caseclient.ErrInvalidConfig)
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestTokenCacheFromURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		check   func(t *testing.T, config *caseapi.CacheConfig)
		wantErr bool
	}{
		{
			name: "default",
			raw:  "",
			check: func(t *testing.T, config *caseapi.CacheConfig) {
				t.Helper()
				assert.Equal(t, caseapi.CacheTypeMemory, config.Type)
				assert.Nil(t, config.Near)
			},
		},
		{
			name: "none",
			raw:  "NONE",
			check: func(t *testing.T, config *caseapi.CacheConfig) {
				t.Helper()
				assert.Equal(t, caseapi.CacheTypeNone, config.Type)
			},
		},
		{
			name: "redis",
			raw:  "redis://:pw@cache.internal:6380/2",
			check: func(t *testing.T, config *caseapi.CacheConfig) {
				t.Helper()
				assert.Equal(t, caseapi.CacheTypeRedis, config.Type)
				require.NotNil(t, config.Redis)
				assert.Equal(t, "cache.internal:6380", config.Redis.Addr)
				assert.Equal(t, "pw", config.Redis.Password)
				assert.Equal(t, 2, config.Redis.DB)
				assert.NotNil(t, config.Near, "remote caches get a near cache")
			},
		},
		{
			name: "nats with bucket",
			raw:  "nats://nats.internal:4222/tokens",
			check: func(t *testing.T, config *caseapi.CacheConfig) {
				t.Helper()
				assert.Equal(t, caseapi.CacheTypeNATS, config.Type)
				require.NotNil(t, config.NATS)
				assert.Equal(t, "nats://nats.internal:4222", config.NATS.URL)
				assert.Equal(t, "tokens", config.NATS.Bucket)
				assert.NotNil(t, config.Near)
			},
		},
		{
			name: "nats default bucket",
			raw:  "nats://nats.internal:4222",
			check: func(t *testing.T, config *caseapi.CacheConfig) {
				t.Helper()
				assert.Empty(t, config.NATS.Bucket)
			},
		},
		{name: "bad redis db", raw: "redis://cache.internal:6379/x", wantErr: true},
		{name: "unknown scheme", raw: "memcached://cache.internal", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			config, err := caseclient.TokenCacheFromURL(tt.raw)
			if tt.wantErr {
				require.ErrorIs(t, err, caseclient.ErrInvalidCacheURL)

				return
			}

			require.NoError(t, err)
			tt.check(t, config)
		})
	}
}
