package constants

import "errors"

// Configuration errors.
var (
	ErrNoAPIConfigured = errors.New("no API configured, use 'casectl config set api <url>' first")
	ErrNoAPIKey        = errors.New("no API key configured, use 'casectl login' first")
	ErrNoTokenURL      = errors.New("no token URL configured")
)

// Validation errors.
var (
	ErrInvalidOutputFormat = errors.New("invalid output format")
	ErrInvalidConfigKey    = errors.New("unknown configuration key")
	ErrEmptyAPIKey         = errors.New("API key must not be empty")
)

// Required field errors.
var (
	ErrFieldGroupRequired = errors.New("--group flag is required")
	ErrFieldNameRequired  = errors.New("--field flag is required")
	ErrStatusRequired     = errors.New("--status flag is required")
)
