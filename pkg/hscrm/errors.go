package hscrm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Error categories returned by the CRM API.
const (
	CategoryValidationError = "VALIDATION_ERROR"
	CategoryObjectNotFound  = "OBJECT_NOT_FOUND"
	CategoryConflict        = "CONFLICT"
	CategoryRateLimits      = "RATE_LIMITS"
)

// APIError represents an error response from the CRM API.
type APIError struct {
	StatusCode    int              `json:"-"                     yaml:"status_code"`
	Status        string           `json:"status"                yaml:"status"`
	Message       string           `json:"message"               yaml:"message"`
	CorrelationID string           `json:"correlationId"         yaml:"correlation_id"`
	Category      string           `json:"category"              yaml:"category"`
	SubCategory   string           `json:"subCategory,omitempty" yaml:"sub_category,omitempty"`
	Errors        []APIErrorDetail `json:"errors,omitempty"      yaml:"errors,omitempty"`
}

// APIErrorDetail is a single entry of APIError.Errors.
type APIErrorDetail struct {
	Message string              `json:"message"           yaml:"message"`
	Code    string              `json:"code,omitempty"    yaml:"code,omitempty"`
	In      string              `json:"in,omitempty"      yaml:"in,omitempty"`
	Context map[string][]string `json:"context,omitempty" yaml:"context,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Category == "" {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
	}

	return fmt.Sprintf("%s: %s (status: %d)", e.Category, e.Message, e.StatusCode)
}

// Transient reports whether the error is a gateway timeout that is expected
// to succeed on retry.
func (e *APIError) Transient() bool {
	return e.StatusCode == http.StatusGatewayTimeout || e.StatusCode == http.StatusRequestTimeout
}

// ParseAPIError decodes an error body. A body that is not a CRM error
// document still yields an APIError carrying the raw text.
func ParseAPIError(statusCode int, data []byte) *APIError {
	apiErr := &APIError{}

	err := json.Unmarshal(data, apiErr)
	if err != nil || apiErr.Message == "" {
		apiErr = &APIError{Message: string(data)}
	}

	apiErr.StatusCode = statusCode

	return apiErr
}

// TransportError wraps a failure that happened before a response arrived.
type TransportError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Transient reports whether the transport failure was a timeout.
func (e *TransportError) Transient() bool {
	var netErr net.Error
	if errors.As(e.Err, &netErr) && netErr.Timeout() {
		return true
	}

	return errors.Is(e.Err, context.DeadlineExceeded)
}

// Common static errors that can be wrapped with context.
var (
	ErrConfigRequired          = errors.New("config is required")
	ErrInputRequired           = errors.New("input is required")
	ErrAPIEndpointRequired     = errors.New("API endpoint is required")
	ErrAccessTokenRequired     = errors.New("access token is required")
	ErrPipelineIDRequired      = errors.New("pipeline id is required")
	ErrInvalidOwnerKey         = errors.New("invalid owner lookup key, must be one of 'id' or 'email'")
	ErrUnknownRecordType       = errors.New("unknown record type")
	ErrUnsupportedOperation    = errors.New("unsupported operation")
	ErrNoAssociationType       = errors.New("no association type for record type pair")
	ErrNoPipelineStages        = errors.New("pipeline has no stages")
	ErrBatchReadMismatch       = errors.New("batch read results do not match search results")
	ErrEmptyResponse           = errors.New("empty response")
	ErrConsistencyTimeout      = errors.New("timed out waiting for consistency")
	ErrRetryAttemptsExhausted  = errors.New("retry attempts exhausted")
	ErrPaginatorExhausted      = errors.New("paginator exhausted")
	ErrCacheMiss               = errors.New("key not found")
	ErrCacheEntryExpired       = errors.New("entry expired")
	ErrCacheDisabled           = errors.New("cache disabled")
	ErrNATSConfigRequired      = errors.New("NATS configuration required for NATS cache")
	ErrUnsupportedCacheType    = errors.New("unsupported cache type")
	ErrKeyNotFoundInAnyCache   = errors.New("key not found in any cache")
	ErrContactCreateIncomplete = errors.New("contact create returned no id")
	ErrDealWorkflowUnavailable = errors.New("deals client has no workflow to create deals with")
)

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound || apiErr.Category == CategoryObjectNotFound
	}

	return false
}

// IsRateLimited checks if the error is a rate limit error.
func IsRateLimited(err error) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.Category == CategoryRateLimits
	}

	return false
}

// IsTransient checks if the error is a timeout or gateway timeout that the
// retry supervisor should absorb.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.Transient()
	}

	transportErr := &TransportError{}
	if errors.As(err, &transportErr) {
		return transportErr.Transient()
	}

	return false
}
