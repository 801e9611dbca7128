package hscrm

import (
	"time"

	"github.com/fivetwenty-io/hscrm/internal/constants"
)

// RecordClients provides access to the record-type specific clients. Each
// client only exposes the operations its record type supports.
type RecordClients interface {
	Contacts() ContactsClient
	Companies() CompaniesClient
	Deals() DealsClient
	Tickets() TicketsClient
	Emails() EmailsClient
	Owners() OwnersClient
}

// MetadataClients provides access to pipelines and associations.
type MetadataClients interface {
	Pipelines() PipelinesClient
	Associations() AssociationsClient
	EmailEvents() EmailEventsClient
}

// Client is the CRM client.
type Client interface {
	RecordClients
	MetadataClients

	// Workflows returns the multi-step create-and-associate workflows.
	Workflows() WorkflowsClient
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// ConsistencyConfig bounds the wait for the platform's asynchronous side
// effects (auto-association, search indexing) to become visible.
type ConsistencyConfig struct {
	// InitialDelay is waited before the first check.
	InitialDelay time.Duration
	// Interval is waited between checks.
	Interval time.Duration
	// Timeout bounds the whole wait, initial delay included.
	Timeout time.Duration
	// Sleep waits between checks. Defaults to SleepContext.
	Sleep SleepFunc
}

// DefaultConsistencyConfig returns a poll that gives up after the same ten
// seconds the platform was observed to need.
func DefaultConsistencyConfig() *ConsistencyConfig {
	return &ConsistencyConfig{
		InitialDelay: constants.DefaultConsistencyDelay,
		Interval:     constants.DefaultConsistencyInterval,
		Timeout:      constants.DefaultConsistencyTimeout,
		Sleep:        SleepContext,
	}
}

// Config represents client configuration for building a Client.
//
// # Authentication
//
// AccessToken is a private app access token sent as a Bearer token. Token
// acquisition and refresh are outside this package.
//
// # Deal operations
//
// PipelineID is the default deal pipeline. Operations that need it fail with
// ErrPipelineIDRequired before any request is sent when it is empty.
//
// # Retries
//
// Retry controls the transient-failure policy (gateway timeouts and request
// timeouts): a fixed backoff and a bounded number of attempts per top-level
// call. TransportRetryMax separately enables retryablehttp's own retries for
// connection errors and rate limiting; it is off by default.
type Config struct {
	// APIEndpoint is the API base URL. Defaults to https://api.hubapi.com.
	APIEndpoint string
	// AccessToken is the private app access token.
	AccessToken string
	// PipelineID is the default deal pipeline id.
	PipelineID string

	// HTTPTimeout bounds a single HTTP request. A request that times out is
	// a transient failure.
	HTTPTimeout time.Duration
	// Retry is the transient-failure retry policy. Nil uses DefaultRetryConfig.
	Retry *RetryConfig
	// TransportRetryMax enables retryablehttp retries for connection errors
	// and 429 responses.
	TransportRetryMax int
	// TransportRetryWaitMin is the minimum retryablehttp backoff.
	TransportRetryWaitMin time.Duration
	// TransportRetryWaitMax is the maximum retryablehttp backoff.
	TransportRetryWaitMax time.Duration
	// RateLimit is the client-side request rate in requests per second.
	RateLimit float64
	// RateBurst is the client-side burst size.
	RateBurst int

	// Consistency bounds eventual-consistency waits. Nil uses
	// DefaultConsistencyConfig.
	Consistency *ConsistencyConfig

	// Cache stores pipeline stages between calls. Nil uses an in-memory cache.
	Cache Cache
	// StageCacheTTL is how long pipeline stages stay cached.
	StageCacheTTL time.Duration

	// Debug enables request/response logging when a Logger is provided.
	Debug bool
	// Logger is an optional structured logger.
	Logger Logger
	// UserAgent overrides the default User-Agent header.
	UserAgent string
}
