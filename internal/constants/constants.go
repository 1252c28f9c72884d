package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// TokenHTTPTimeout bounds a single token endpoint call.
	TokenHTTPTimeout = 15 * time.Second
)

// Retry limits.
const (
	// DefaultRetryMax is the default maximum number of retries.
	DefaultRetryMax = 3

	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 500 * time.Millisecond

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second

	// DefaultAuthFailureBackoffInitialDelay is the first delay after a 401
	// before the token is refreshed and the request retried.
	DefaultAuthFailureBackoffInitialDelay = 500 * time.Millisecond

	// DefaultAuthFailureMaxRetries bounds refresh-and-retry cycles on 401.
	DefaultAuthFailureMaxRetries = 3

	// AuthFailureBackoffMaxInterval caps the auth-failure backoff.
	AuthFailureBackoffMaxInterval = 10 * time.Second
)

// Pagination and upload limits.
const (
	// DefaultMaxPageSize is the page size requested when walking every page.
	DefaultMaxPageSize = 200

	// DefaultPageSize is the page size the CLI requests for single pages.
	DefaultPageSize = 50

	// DefaultUploadPartSize is the size of one file upload part (5 MiB).
	DefaultUploadPartSize = 5 * 1024 * 1024
)

// Authentication.
const (
	// DefaultAPIKeyHeader carries the API key on token requests.
	DefaultAPIKeyHeader = "x-api-key"

	// DefaultTokenTTL is how long a cached token is reused when caching is on.
	DefaultTokenTTL = 10 * time.Minute

	// TokenCacheKeyPrefix prefixes token cache keys.
	TokenCacheKeyPrefix = "caseapi:token:"
)

// Cache sizing.
const (
	// DefaultCacheSize is the default cache size limit.
	DefaultCacheSize = 1000

	// DefaultCacheTTL is the default cache time-to-live.
	DefaultCacheTTL = 5 * time.Minute

	// DefaultCacheCleanupInterval is the memory cache sweep interval.
	DefaultCacheCleanupInterval = time.Minute

	// DefaultNATSBucket is the JetStream KV bucket used for the token cache.
	DefaultNATSBucket = "caseapi-tokens"

	// DefaultRedisKeyPrefix prefixes keys stored in Redis.
	DefaultRedisKeyPrefix = "caseapi:"
)

// Media types.
const (
	// MediaTypeJSONAPI is sent as Accept and Content-Type for JSON bodies.
	MediaTypeJSONAPI = "application/vnd.api+json"

	// MediaTypeOctetStream is sent for raw file parts.
	MediaTypeOctetStream = "application/octet-stream"
)

// Headers.
const (
	// HeaderRequestID carries a per-request correlation id.
	HeaderRequestID = "X-Request-Id"

	// DefaultUserAgent identifies the client.
	DefaultUserAgent = "caseapi-client/1.0"
)

// Output formats for the CLI.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Display limits.
const (
	// TableCellMaxWidth truncates long cells in table output.
	TableCellMaxWidth = 60
)
