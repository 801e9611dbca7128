package client

import (
	"context"
	"fmt"
	"time"

	"github.com/fivetwenty-io/hscrm/internal/auth"
	"github.com/fivetwenty-io/hscrm/internal/constants"
	"github.com/fivetwenty-io/hscrm/internal/http"
	"github.com/fivetwenty-io/hscrm/pkg/hscrm"
)

// Client implements the hscrm.Client interface.
type Client struct {
	httpClient   *http.Client
	tokenManager auth.TokenManager
	baseURL      string
	logger       hscrm.Logger
	settings     *settings

	// Resource clients
	contacts     *ContactsClient
	companies    *CompaniesClient
	deals        *DealsClient
	tickets      *TicketsClient
	emails       *EmailsClient
	owners       *OwnersClient
	pipelines    *PipelinesClient
	associations *AssociationsClient
	emailEvents  *EmailEventsClient
	workflows    *WorkflowsClient
}

// settings is the read-only configuration shared by the resource clients.
type settings struct {
	pipelineID    string
	retry         *hscrm.RetryConfig
	consistency   *hscrm.ConsistencyConfig
	stageCacheTTL time.Duration
	cache         *hscrm.CacheManager
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *hscrm.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(&loggerAdapter{logger: config.Logger}))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.HTTPTimeout))
	}

	rateLimit := config.RateLimit
	rateBurst := config.RateBurst

	if rateLimit == 0 {
		rateLimit = constants.DefaultRateLimit
	}

	if rateBurst == 0 {
		rateBurst = constants.DefaultRateBurst
	}

	httpOpts = append(httpOpts, http.WithRateLimit(rateLimit, rateBurst))

	if config.TransportRetryMax > 0 {
		retryWaitMin := constants.DefaultTransportRetryWaitMin
		retryWaitMax := constants.DefaultTransportRetryWaitMax

		if config.TransportRetryWaitMin > 0 {
			retryWaitMin = config.TransportRetryWaitMin
		}

		if config.TransportRetryWaitMax > 0 {
			retryWaitMax = config.TransportRetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(config.TransportRetryMax, retryWaitMin, retryWaitMax))
	}

	return httpOpts
}

// New creates a new CRM client authenticating with the configured private
// app access token.
func New(ctx context.Context, config *hscrm.Config) (*Client, error) {
	if config == nil {
		return nil, hscrm.ErrConfigRequired
	}

	if config.AccessToken == "" {
		return nil, hscrm.ErrAccessTokenRequired
	}

	return NewWithTokenManager(ctx, config, auth.NewStaticTokenManager(config.AccessToken))
}

// NewWithTokenManager creates a new CRM client with a custom token manager.
func NewWithTokenManager(ctx context.Context, config *hscrm.Config, tokenManager auth.TokenManager) (*Client, error) {
	if config == nil {
		return nil, hscrm.ErrConfigRequired
	}

	if config.APIEndpoint == "" {
		return nil, hscrm.ErrAPIEndpointRequired
	}

	httpClient := http.NewClient(config.APIEndpoint, tokenManager, createHTTPClientOptions(config)...)

	return newClient(httpClient, tokenManager, config), nil
}

func newClient(httpClient *http.Client, tokenManager auth.TokenManager, config *hscrm.Config) *Client {
	logger := config.Logger
	if logger == nil {
		logger = nopLogger{}
	}

	consistency := config.Consistency
	if consistency == nil {
		consistency = hscrm.DefaultConsistencyConfig()
	}

	cache := config.Cache
	if cache == nil {
		cache = hscrm.NewMemoryCache(constants.DefaultCacheSize)
	}

	ttl := config.StageCacheTTL
	if ttl == 0 {
		ttl = constants.DefaultStageCacheTTL
	}

	client := &Client{
		httpClient:   httpClient,
		tokenManager: tokenManager,
		baseURL:      config.APIEndpoint,
		logger:       logger,
		settings: &settings{
			pipelineID:    config.PipelineID,
			retry:         config.Retry,
			consistency:   consistency,
			stageCacheTTL: ttl,
			cache:         hscrm.NewCacheManager(cache, logger),
		},
	}

	client.initializeResourceClients()

	return client
}

// initializeResourceClients initializes all resource-specific clients.
func (c *Client) initializeResourceClients() {
	c.pipelines = NewPipelinesClient(c.httpClient, c.settings, c.logger)
	c.associations = NewAssociationsClient(c.httpClient, c.settings, c.logger)
	c.contacts = NewContactsClient(c.httpClient, c.settings, c.logger, c.associations)
	c.companies = NewCompaniesClient(c.httpClient, c.settings, c.logger, c.associations)
	c.deals = NewDealsClient(c.httpClient, c.settings, c.logger, c.associations)
	c.tickets = NewTicketsClient(c.httpClient, c.settings, c.logger)
	c.emails = NewEmailsClient(c.httpClient, c.settings, c.logger)
	c.owners = NewOwnersClient(c.httpClient, c.settings, c.logger)
	c.emailEvents = NewEmailEventsClient(c.httpClient, c.settings, c.logger)
	c.workflows = NewWorkflowsClient(c.contacts, c.companies, c.deals, c.pipelines, c.associations, c.settings, c.logger)
	c.deals.workflows = c.workflows
}

// GetTokenManager returns the token manager for this client.
func (c *Client) GetTokenManager() auth.TokenManager {
	return c.tokenManager
}

// BaseURL returns the API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Contacts implements hscrm.Client.Contacts.
func (c *Client) Contacts() hscrm.ContactsClient {
	return c.contacts
}

// Companies implements hscrm.Client.Companies.
func (c *Client) Companies() hscrm.CompaniesClient {
	return c.companies
}

// Deals implements hscrm.Client.Deals.
func (c *Client) Deals() hscrm.DealsClient {
	return c.deals
}

// Tickets implements hscrm.Client.Tickets.
func (c *Client) Tickets() hscrm.TicketsClient {
	return c.tickets
}

// Emails implements hscrm.Client.Emails.
func (c *Client) Emails() hscrm.EmailsClient {
	return c.emails
}

// Owners implements hscrm.Client.Owners.
func (c *Client) Owners() hscrm.OwnersClient {
	return c.owners
}

// Pipelines implements hscrm.Client.Pipelines.
func (c *Client) Pipelines() hscrm.PipelinesClient {
	return c.pipelines
}

// Associations implements hscrm.Client.Associations.
func (c *Client) Associations() hscrm.AssociationsClient {
	return c.associations
}

// EmailEvents implements hscrm.Client.EmailEvents.
func (c *Client) EmailEvents() hscrm.EmailEventsClient {
	return c.emailEvents
}

// Workflows implements hscrm.Client.Workflows.
func (c *Client) Workflows() hscrm.WorkflowsClient {
	return c.workflows
}

// loggerAdapter adapts hscrm.Logger to http.Logger.
type loggerAdapter struct {
	logger hscrm.Logger
}

func (l *loggerAdapter) Debug(msg string, fields map[string]interface{}) {
	l.logger.Debug(msg, fields)
}

func (l *loggerAdapter) Info(msg string, fields map[string]interface{}) {
	l.logger.Info(msg, fields)
}

func (l *loggerAdapter) Warn(msg string, fields map[string]interface{}) {
	l.logger.Warn(msg, fields)
}

func (l *loggerAdapter) Error(msg string, fields map[string]interface{}) {
	l.logger.Error(msg, fields)
}

type nopLogger struct{}

func (nopLogger) Debug(string, map[string]interface{}) {}
func (nopLogger) Info(string, map[string]interface{})  {}
func (nopLogger) Warn(string, map[string]interface{})  {}
func (nopLogger) Error(string, map[string]interface{}) {}

// requirePipelineID returns the configured pipeline id or a config error.
func (s *settings) requirePipelineID() (string, error) {
	if s.pipelineID == "" {
		return "", fmt.Errorf("%w: set a default deal pipeline", hscrm.ErrPipelineIDRequired)
	}

	return s.pipelineID, nil
}
