package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/fivetwenty-io/caseapi-client/internal/auth"
	"github.com/fivetwenty-io/caseapi-client/internal/constants"
	"github.com/fivetwenty-io/caseapi-client/pkg/caseapi"
	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
)

// errAuthRetry marks a 401 that should be retried after a token refresh.
var errAuthRetry = errors.New("authentication rejected")

// Client is the verb-based transport every resource client is built on.
type Client struct {
	baseURL        string
	httpClient     *retryablehttp.Client
	tokenManager   auth.TokenManager
	logger         caseapi.Logger
	debug          bool
	userAgent      string
	defaultHeaders map[string]string
	interceptors   *caseapi.InterceptorChain

	authBackoffInitial time.Duration
	authMaxRetries     int
}

// Request describes one API call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	// Body is JSON-encoded when set.
	Body interface{}
	// RawBody is sent verbatim with ContentType, taking precedence over Body.
	RawBody     []byte
	ContentType string
	Headers     map[string]string
}

// Response is a completed API call. Body is nil for 204 No Content.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	RequestID  string
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger caseapi.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDebug enables request/response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithRetryConfig tunes retries of transient failures.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = retryMax
		c.httpClient.RetryWaitMin = waitMin
		c.httpClient.RetryWaitMax = waitMax
	}
}

// WithAuthFailureBackoff tunes the refresh-and-retry loop on 401.
func WithAuthFailureBackoff(initialDelay time.Duration, maxRetries int) Option {
	return func(c *Client) {
		if initialDelay > 0 {
			c.authBackoffInitial = initialDelay
		}

		if maxRetries >= 0 {
			c.authMaxRetries = maxRetries
		}
	}
}

// WithDefaultHeaders adds headers to every request.
func WithDefaultHeaders(headers map[string]string) Option {
	return func(c *Client) {
		for k, v := range headers {
			c.defaultHeaders[k] = v
		}
	}
}

// WithInterceptors installs a request/response interceptor chain.
func WithInterceptors(chain *caseapi.InterceptorChain) Option {
	return func(c *Client) {
		c.interceptors = chain
	}
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient.HTTPClient = httpClient
		}
	}
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.HTTPClient.Timeout = timeout
		}
	}
}

// NewClient creates a transport for baseURL. A nil tokenManager sends
// unauthenticated requests.
func NewClient(baseURL string, tokenManager auth.TokenManager, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = constants.DefaultRetryMax
	retryClient.RetryWaitMin = constants.DefaultRetryWaitMin
	retryClient.RetryWaitMax = constants.DefaultRetryWaitMax
	retryClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout
	retryClient.Logger = nil
	// Hand back the last response after retries so status mapping still applies.
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	client := &Client{
		baseURL:            strings.TrimRight(baseURL, "/"),
		httpClient:         retryClient,
		tokenManager:       tokenManager,
		logger:             caseapi.NopLogger{},
		userAgent:          constants.DefaultUserAgent,
		defaultHeaders:     map[string]string{},
		authBackoffInitial: constants.DefaultAuthFailureBackoffInitialDelay,
		authMaxRetries:     constants.DefaultAuthFailureMaxRetries,
	}

	for _, opt := range opts {
		opt(client)
	}

	retryClient.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
		if attempt > 0 {
			client.logger.Warn("retrying request", map[string]interface{}{
				"method":     req.Method,
				"path":       req.URL.Path,
				"attempt":    attempt,
				"request_id": req.Header.Get(constants.HeaderRequestID),
			})
		}
	}

	return client
}

// BaseURL returns the API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do executes a request. On an HTTP error the response is returned together
// with a *caseapi.APIError.
//
// A 401 is retried with backoff. Managers that reuse tokens are refreshed
// first; per-call managers are not, since the retry fetches a new token.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	body, contentType, err := encodeBody(req)
	if err != nil {
		return nil, err
	}

	requestID := uuid.NewString()

	var (
		resp     *Response
		attempts int
	)

	operation := func() error {
		if attempts > 0 && auth.NeedsRefresh(c.tokenManager) {
			refreshErr := c.tokenManager.RefreshToken(ctx)
			if refreshErr != nil {
				return backoff.Permanent(fmt.Errorf("%w: refreshing token: %w", caseapi.ErrUnauthorized, refreshErr))
			}
		}

		attempts++

		r, execErr := c.execute(ctx, req, body, contentType, requestID)
		if execErr != nil {
			return backoff.Permanent(execErr)
		}

		resp = r

		if r.StatusCode == http.StatusUnauthorized && c.tokenManager != nil {
			c.logger.Warn("request unauthorized, refreshing token", map[string]interface{}{
				"method":     req.Method,
				"path":       req.Path,
				"attempt":    attempts,
				"request_id": requestID,
			})

			return errAuthRetry
		}

		return nil
	}

	err = backoff.Retry(operation, c.authBackoff(ctx))
	if err != nil && !errors.Is(err, errAuthRetry) {
		if ctx.Err() != nil && !errors.Is(err, caseapi.ErrRequestFailed) {
			err = fmt.Errorf("%w: %w", caseapi.ErrRequestFailed, err)
		}

		return resp, err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return resp, caseapi.NewAPIError(req.Method, req.Path, resp.StatusCode, resp.Body)
	}

	return resp, nil
}

func (c *Client) authBackoff(ctx context.Context) backoff.BackOff {
	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = c.authBackoffInitial
	expo.MaxInterval = constants.AuthFailureBackoffMaxInterval
	expo.MaxElapsedTime = 0

	return backoff.WithContext(backoff.WithMaxRetries(expo, uint64(c.authMaxRetries)), ctx)
}

func encodeBody(req *Request) ([]byte, string, error) {
	if req.RawBody != nil {
		contentType := req.ContentType
		if contentType == "" {
			contentType = constants.MediaTypeOctetStream
		}

		return req.RawBody, contentType, nil
	}

	if req.Body == nil {
		return nil, "", nil
	}

	data, err := json.Marshal(req.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	return data, constants.MediaTypeJSONAPI, nil
}

func (c *Client) execute(ctx context.Context, req *Request, body []byte, contentType, requestID string) (*Response, error) {
	fullURL := c.baseURL + req.Path
	if len(req.Query) > 0 {
		fullURL += "?" + req.Query.Encode()
	}

	headers := http.Header{}
	headers.Set("Accept", constants.MediaTypeJSONAPI)
	headers.Set("User-Agent", c.userAgent)
	headers.Set(constants.HeaderRequestID, requestID)

	if contentType != "" {
		headers.Set("Content-Type", contentType)
	}

	for k, v := range c.defaultHeaders {
		headers.Set(k, v)
	}

	for k, v := range req.Headers {
		headers.Set(k, v)
	}

	intercepted := &caseapi.Request{Method: req.Method, Path: req.Path, Headers: headers, Body: body}

	if c.interceptors != nil {
		err := c.interceptors.ExecuteRequestInterceptors(ctx, intercepted)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", caseapi.ErrRequestFailed, err)
		}
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %w", caseapi.ErrRequestFailed, err)
	}

	httpReq.Header = intercepted.Headers

	if c.tokenManager != nil {
		authHeader, tokenErr := auth.AuthHeader(ctx, c.tokenManager)
		if tokenErr != nil {
			return nil, fmt.Errorf("%w: getting token: %w", caseapi.ErrUnauthorized, tokenErr)
		}

		httpReq.Header.Set("Authorization", authHeader)
	}

	if c.debug {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method":     req.Method,
			"url":        fullURL,
			"request_id": requestID,
			"body_bytes": len(body),
		})
	}

	start := time.Now()

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.runResponseInterceptors(ctx, intercepted, &caseapi.Response{Error: err})

		return nil, fmt.Errorf("%w: %s %s: %w", caseapi.ErrRequestFailed, req.Method, req.Path, err)
	}

	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response body: %w", caseapi.ErrRequestFailed, err)
	}

	if len(respBody) == 0 {
		respBody = nil
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       respBody,
		RequestID:  requestID,
	}

	if c.debug {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"status":     resp.StatusCode,
			"request_id": requestID,
			"duration":   time.Since(start).String(),
			"body_bytes": len(respBody),
		})
	}

	c.runResponseInterceptors(ctx, intercepted, &caseapi.Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Body:       resp.Body,
	})

	return resp, nil
}

func (c *Client) runResponseInterceptors(ctx context.Context, req *caseapi.Request, resp *caseapi.Response) {
	if c.interceptors == nil {
		return
	}

	err := c.interceptors.ExecuteResponseInterceptors(ctx, req, resp)
	if err != nil {
		c.logger.Warn("response interceptor failed", map[string]interface{}{"error": err.Error()})
	}
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

// PostRaw performs a POST request with a raw byte body.
func (c *Client) PostRaw(ctx context.Context, path string, query url.Values, data []byte) (*Response, error) {
	if data == nil {
		data = []byte{}
	}

	return c.Do(ctx, &Request{
		Method:      http.MethodPost,
		Path:        path,
		Query:       query,
		RawBody:     data,
		ContentType: constants.MediaTypeOctetStream,
	})
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body})
}

// Patch performs a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPatch, Path: path, Body: body})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path})
}
