package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/fivetwenty-io/caseapi-client/internal/constants"
	"github.com/fivetwenty-io/caseapi-client/pkg/caseapi"
	"github.com/hashicorp/go-retryablehttp"
)

// Static errors for err113 compliance.
var (
	ErrEmptyToken       = errors.New("token endpoint returned an empty token")
	ErrTokenURLRequired = errors.New("token URL is required")
	ErrAPIKeyRequired   = errors.New("API key is required")
)

// APIKeyConfig configures an APIKeyTokenManager.
type APIKeyConfig struct {
	TokenURL string
	APIKey   string
	// Header carries the key; defaults to "x-api-key".
	Header     string
	HTTPClient *http.Client
}

// APIKeyTokenManager exchanges an API key for a bearer token. Tokens are not
// reused: every GetToken hits the token endpoint.
type APIKeyTokenManager struct {
	config     APIKeyConfig
	httpClient *retryablehttp.Client

	mu   sync.RWMutex
	last *AuthToken
	now  func() time.Time
}

// NewAPIKeyTokenManager creates a token manager for the API-key flow.
func NewAPIKeyTokenManager(config *APIKeyConfig) (*APIKeyTokenManager, error) {
	if config.TokenURL == "" {
		return nil, ErrTokenURLRequired
	}

	if config.APIKey == "" {
		return nil, ErrAPIKeyRequired
	}

	cfg := *config
	if cfg.Header == "" {
		cfg.Header = constants.DefaultAPIKeyHeader
	}

	client := retryablehttp.NewClient()
	// Token failures surface immediately; the request layer owns retrying.
	client.RetryMax = 0
	client.Logger = nil
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler

	if cfg.HTTPClient != nil {
		client.HTTPClient = cfg.HTTPClient
	} else {
		client.HTTPClient.Timeout = constants.TokenHTTPTimeout
	}

	return &APIKeyTokenManager{
		config:     cfg,
		httpClient: client,
		now:        time.Now,
	}, nil
}

// FetchToken calls the token endpoint once.
func (m *APIKeyTokenManager) FetchToken(ctx context.Context) (*AuthToken, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, m.config.TokenURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating token request: %w", caseapi.ErrUnauthorized, err)
	}

	req.Header.Set(m.config.Header, m.config.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: requesting token: %w", caseapi.ErrUnauthorized, err)
	}

	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading token response: %w", caseapi.ErrUnauthorized, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: token endpoint returned status %d", caseapi.ErrUnauthorized, resp.StatusCode)
	}

	var payload struct {
		Token string `json:"token"`
	}

	err = json.Unmarshal(body, &payload)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding token response: %w", caseapi.ErrUnauthorized, err)
	}

	if payload.Token == "" {
		return nil, fmt.Errorf("%w: %w", caseapi.ErrUnauthorized, ErrEmptyToken)
	}

	token := &AuthToken{Value: payload.Token, AcquiredAt: m.now()}

	m.mu.Lock()
	m.last = token
	m.mu.Unlock()

	return token, nil
}

// GetToken fetches a fresh token.
func (m *APIKeyTokenManager) GetToken(ctx context.Context) (string, error) {
	token, err := m.FetchToken(ctx)
	if err != nil {
		return "", err
	}

	return token.Value, nil
}

// AuthHeader returns "Bearer {token}" using a fresh token.
func (m *APIKeyTokenManager) AuthHeader(ctx context.Context) (string, error) {
	return AuthHeader(ctx, m)
}

// FetchesPerCall is always true: tokens are never reused.
func (m *APIKeyTokenManager) FetchesPerCall() bool {
	return true
}

// RefreshToken fetches a token, surfacing any failure.
func (m *APIKeyTokenManager) RefreshToken(ctx context.Context) error {
	_, err := m.FetchToken(ctx)

	return err
}

// SetToken records a token as the last one seen. It is not reused.
func (m *APIKeyTokenManager) SetToken(token string, expiresAt time.Time) {
	m.mu.Lock()
	m.last = &AuthToken{Value: token, AcquiredAt: m.now()}
	m.mu.Unlock()
}

// LastToken returns the most recently fetched token, or nil.
func (m *APIKeyTokenManager) LastToken() *AuthToken {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.last == nil {
		return nil
	}

	token := *m.last

	return &token
}
