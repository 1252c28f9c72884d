package caseclient

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/fivetwenty-io/caseapi-client/internal/client"
	"github.com/fivetwenty-io/caseapi-client/pkg/caseapi"
)

// Static errors for err113 compliance.
var (
	ErrInvalidConfig   = errors.New("invalid client configuration")
	ErrInvalidCacheURL = errors.New("invalid token cache URL")
)

// New creates a case API client. The endpoint is normalised before the
// configuration is validated; config itself is not modified.
func New(ctx context.Context, config *caseapi.Config) (caseapi.Client, error) {
	if config == nil {
		return nil, caseapi.ErrConfigRequired
	}

	if config.APIEndpoint == "" {
		return nil, caseapi.ErrAPIEndpointRequired
	}

	cfg := *config
	cfg.APIEndpoint = NormalizeEndpoint(cfg.APIEndpoint)

	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	c, err := client.New(ctx, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return c, nil
}

// NormalizeEndpoint trims trailing slashes and adds "https://" when the
// endpoint has no scheme.
func NormalizeEndpoint(endpoint string) string {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}

	return endpoint
}

// NewWithToken creates a client that sends a pre-issued bearer token.
func NewWithToken(ctx context.Context, endpoint, token string) (caseapi.Client, error) {
	return New(ctx, &caseapi.Config{
		APIEndpoint: endpoint,
		AccessToken: token,
	})
}

// NewWithAPIKey creates a client that exchanges apiKey for a token at
// tokenURL on every request.
func NewWithAPIKey(ctx context.Context, endpoint, tokenURL, apiKey string) (caseapi.Client, error) {
	return New(ctx, &caseapi.Config{
		APIEndpoint: endpoint,
		TokenURL:    tokenURL,
		APIKey:      apiKey,
	})
}

// TokenCacheFromURL selects a token cache backend from a URL:
//
//	memory            in-process cache
//	none              no caching
//	redis://host:port/db
//	nats://host:port[/bucket]
//
// Redis and NATS backends get an in-process near cache in front of them.
func TokenCacheFromURL(raw string) (*caseapi.CacheConfig, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(caseapi.CacheTypeMemory):
		return caseapi.DefaultCacheConfig(), nil
	case string(caseapi.CacheTypeNone):
		return caseapi.NewCacheBuilder().WithType(caseapi.CacheTypeNone).Config(), nil
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCacheURL, err)
	}

	switch parsed.Scheme {
	case "redis", "rediss":
		opts, err := redis.ParseURL(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidCacheURL, err)
		}

		return caseapi.NewCacheBuilder().
			WithType(caseapi.CacheTypeRedis).
			WithRedisConfig(&caseapi.RedisConfig{
				Addr:     opts.Addr,
				Password: opts.Password,
				DB:       opts.DB,
			}).
			WithNearCache(caseapi.DefaultCacheConfig().Memory).
			Config(), nil

	case "nats", "tls":
		bucket := strings.Trim(parsed.Path, "/")
		parsed.Path = ""

		return caseapi.NewCacheBuilder().
			WithType(caseapi.CacheTypeNATS).
			WithNATSConfig(&caseapi.NATSKVConfig{
				URL:    parsed.String(),
				Bucket: bucket,
			}).
			WithNearCache(caseapi.DefaultCacheConfig().Memory).
			Config(), nil

	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidCacheURL, parsed.Scheme)
	}
}
