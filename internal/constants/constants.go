package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// API endpoints.
const (
	// DefaultAPIEndpoint is the public HubSpot API host.
	DefaultAPIEndpoint = "https://api.hubapi.com"

	// DefaultUserAgent is sent when no user agent is configured.
	DefaultUserAgent = "hscrm-go/1.0"
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for a single HTTP request.
	DefaultHTTPTimeout = 30 * time.Second
)

// Transient-failure retry policy.
const (
	// DefaultRetryAttempts is the total number of attempts made for a
	// transient failure before it is surfaced.
	DefaultRetryAttempts = 3

	// DefaultRetryBackoff is the fixed wait between attempts.
	DefaultRetryBackoff = 60 * time.Second

	// DefaultTransportRetryMax is the retryablehttp retry count used for
	// connection resets and rate limiting. Zero disables transport retries.
	DefaultTransportRetryMax = 0

	// DefaultTransportRetryWaitMin is the lower retryablehttp backoff bound.
	DefaultTransportRetryWaitMin = 1 * time.Second

	// DefaultTransportRetryWaitMax is the upper retryablehttp backoff bound.
	DefaultTransportRetryWaitMax = 30 * time.Second
)

// Client-side rate limiting.
const (
	// DefaultRateLimit is the number of requests per second allowed.
	DefaultRateLimit = 10.0

	// DefaultRateBurst is the token bucket size.
	DefaultRateBurst = 10
)

// Pagination limits.
const (
	// DefaultBatchSize is the page size for full record walks.
	DefaultBatchSize = 50

	// EmailEventBatchSize is the page size for email event walks.
	EmailEventBatchSize = 10

	// DefaultSearchLimit is the page size for point lookups.
	DefaultSearchLimit = 20

	// DefaultOwnersPageSize is the page size for owner listings.
	DefaultOwnersPageSize = 100

	// DefaultAssociationsPageSize is the page size for association listings.
	DefaultAssociationsPageSize = 500
)

// Eventual-consistency polling.
const (
	// DefaultConsistencyDelay is the wait before the first consistency check.
	DefaultConsistencyDelay = 2 * time.Second

	// DefaultConsistencyInterval is the wait between consistency checks.
	DefaultConsistencyInterval = 2 * time.Second

	// DefaultConsistencyTimeout bounds the whole wait. It matches the
	// fixed delay the platform was observed to need.
	DefaultConsistencyTimeout = 10 * time.Second
)

// Cache settings.
const (
	// DefaultCacheSize is the maximum number of entries in a memory cache.
	DefaultCacheSize = 256

	// DefaultStageCacheTTL is how long pipeline stages stay cached.
	DefaultStageCacheTTL = 5 * time.Minute

	// DefaultNATSBucket is the JetStream KV bucket used for shared caching.
	DefaultNATSBucket = "hscrm_cache"
)

// CRM property names.
const (
	PropertyLastModified     = "hs_lastmodifieddate"
	PropertyObjectID         = "hs_object_id"
	PropertyDealPipeline     = "pipeline"
	PropertyDealStage        = "dealstage"
	PropertyDealName         = "dealname"
	PropertyTicketPipeline   = "hs_pipeline"
	PropertyCompanyName      = "name"
	PropertyCompanyDomain    = "domain"
	PropertyContactEmail     = "email"
	PropertyContactFirstName = "firstname"
	PropertyContactLastName  = "lastname"
	PropertyContactCompany   = "company"
	PropertyEmailTimestamp   = "hs_timestamp"
)

// Search operators and sort directions.
const (
	OperatorEQ = "EQ"
	OperatorGT = "GT"

	SortAscending  = "ASCENDING"
	SortDescending = "DESCENDING"
)

// Association categories.
const (
	AssociationCategoryHubSpotDefined = "HUBSPOT_DEFINED"
)

// Pipeline object types as the pipelines API names them.
const (
	PipelineObjectTypeTicket = "TICKET"
	PipelineObjectTypeDeal   = "DEAL"
)

// CLI settings.
const (
	// ConfigDirName is the configuration directory under the user's home.
	ConfigDirName = ".hscrm"

	// ConfigFileName is the configuration file inside ConfigDirName.
	ConfigFileName = "config.yml"

	// EnvPrefix prefixes every environment variable the CLI reads.
	EnvPrefix = "HUBSPOT"

	// FormatTable, FormatJSON and FormatYAML are the CLI output formats.
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"

	// MaskedValue replaces secrets in displayed configuration.
	MaskedValue = "***"

	// TwoArguments is the argument count of key/value commands.
	TwoArguments = 2

	// ThreeArguments is the argument count of association commands.
	ThreeArguments = 3
)
