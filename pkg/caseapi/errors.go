package caseapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error kinds. Every error returned by the client wraps exactly one of these.
var (
	// ErrUnauthorized means the token fetch or refresh failed, or the API
	// rejected the bearer token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound means the API answered 404.
	ErrNotFound = errors.New("not found")
	// ErrValidationFailed means the response body did not match the expected shape.
	ErrValidationFailed = errors.New("response validation failed")
	// ErrRequestFailed covers every other transport or HTTP failure.
	ErrRequestFailed = errors.New("request failed")
	// ErrPreconditionFailed means a workflow could not resolve a required
	// intermediate record or the record was in the wrong state.
	ErrPreconditionFailed = errors.New("precondition failed")
)

// Common static errors that can be wrapped with context.
var (
	ErrConfigRequired       = errors.New("config is required")
	ErrAPIEndpointRequired  = errors.New("API endpoint is required")
	ErrStaticTokenNoRefresh = errors.New("static token cannot be refreshed")
	ErrUnsupportedCacheType = errors.New("unsupported cache type")
	ErrCacheDisabled        = errors.New("cache disabled")
	ErrCacheKeyNotFound     = errors.New("key not found")
	ErrCacheEntryExpired    = errors.New("entry expired")
	ErrNATSConfigRequired   = errors.New("NATS configuration required for NATS cache")
	ErrRedisConfigRequired  = errors.New("redis configuration required for redis cache")
)

// ErrorDetail is one entry of the API's error document.
type ErrorDetail struct {
	Status string `json:"status,omitempty" yaml:"status,omitempty"`
	Title  string `json:"title,omitempty"  yaml:"title,omitempty"`
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Error implements the error interface.
func (e ErrorDetail) Error() string {
	switch {
	case e.Title != "" && e.Detail != "":
		return e.Title + ": " + e.Detail
	case e.Detail != "":
		return e.Detail
	default:
		return e.Title
	}
}

// APIError is an HTTP-level failure returned by the request layer.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Kind       error
	Errors     []ErrorDetail
	Body       []byte
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)

	if len(e.Errors) > 0 {
		details := make([]string, 0, len(e.Errors))
		for _, d := range e.Errors {
			details = append(details, d.Error())
		}

		msg += ": " + strings.Join(details, "; ")
	}

	return msg
}

// Unwrap exposes the error kind to errors.Is.
func (e *APIError) Unwrap() error {
	return e.Kind
}

// FirstError returns the first error detail or nil.
func (e *APIError) FirstError() *ErrorDetail {
	if len(e.Errors) > 0 {
		return &e.Errors[0]
	}

	return nil
}

// KindForStatus maps an HTTP status code to an error kind.
func KindForStatus(status int) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return ErrRequestFailed
	}
}

// NewAPIError builds an APIError from a failed response, parsing the error
// document when the body carries one.
func NewAPIError(method, path string, status int, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: status,
		Method:     method,
		Path:       path,
		Kind:       KindForStatus(status),
		Body:       body,
	}

	if details, err := ParseErrorDetails(body); err == nil {
		apiErr.Errors = details
	}

	return apiErr
}

// ParseErrorDetails parses `{"errors":[...]}` from a response body.
func ParseErrorDetails(data []byte) ([]ErrorDetail, error) {
	var doc struct {
		Errors []ErrorDetail `json:"errors"`
	}

	err := json.Unmarshal(data, &doc)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal response error: %w", err)
	}

	return doc.Errors, nil
}

// PreconditionError reports which lookup in a workflow returned nothing.
type PreconditionError struct {
	Lookup string
	Detail string
}

// Error implements the error interface.
func (e *PreconditionError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %s lookup returned nothing", ErrPreconditionFailed, e.Lookup)
	}

	return fmt.Sprintf("%s: %s lookup returned nothing (%s)", ErrPreconditionFailed, e.Lookup, e.Detail)
}

// Unwrap exposes ErrPreconditionFailed to errors.Is.
func (e *PreconditionError) Unwrap() error {
	return ErrPreconditionFailed
}

// NewPreconditionError creates a PreconditionError.
func NewPreconditionError(lookup, detail string) *PreconditionError {
	return &PreconditionError{Lookup: lookup, Detail: detail}
}

// ValidationError reports a response body that did not match the expected shape.
type ValidationError struct {
	Resource string
	Err      error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrValidationFailed, e.Resource, e.Err)
}

// Unwrap exposes both ErrValidationFailed and the cause.
func (e *ValidationError) Unwrap() []error {
	return []error{ErrValidationFailed, e.Err}
}

// NewValidationError creates a ValidationError.
func NewValidationError(resource string, err error) *ValidationError {
	return &ValidationError{Resource: resource, Err: err}
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUnauthorized checks if the error is an unauthorized error.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsValidationFailed checks if the response did not match the expected shape.
func IsValidationFailed(err error) bool {
	return errors.Is(err, ErrValidationFailed)
}

// IsPreconditionFailed checks if a workflow precondition failed.
func IsPreconditionFailed(err error) bool {
	return errors.Is(err, ErrPreconditionFailed)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}

	return 0
}
