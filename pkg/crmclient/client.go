// Package crmclient provides the main entry point for creating CRM API clients
package crmclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/hscrm/internal/client"
	"github.com/fivetwenty-io/hscrm/internal/constants"
	"github.com/fivetwenty-io/hscrm/pkg/hscrm"
)

// New creates a new CRM API client. The config is copied; an empty
// APIEndpoint selects the public HubSpot API.
func New(ctx context.Context, config *hscrm.Config) (hscrm.Client, error) {
	if config == nil {
		return nil, hscrm.ErrConfigRequired
	}

	if config.AccessToken == "" {
		return nil, hscrm.ErrAccessTokenRequired
	}

	resolved := *config
	resolved.APIEndpoint = NormalizeEndpoint(config.APIEndpoint)

	crm, err := client.New(ctx, &resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return crm, nil
}

// NormalizeEndpoint trims trailing slashes and adds an https scheme when
// none is given. An empty endpoint becomes the public HubSpot API.
func NormalizeEndpoint(endpoint string) string {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		return constants.DefaultAPIEndpoint
	}

	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}

	return endpoint
}

// NewWithToken creates a new client with an API endpoint and private app
// access token.
func NewWithToken(ctx context.Context, endpoint, token string) (hscrm.Client, error) {
	return New(ctx, &hscrm.Config{
		APIEndpoint: endpoint,
		AccessToken: token,
	})
}

// NewWithPipeline creates a new client for the public API that creates and
// searches deals in the given pipeline.
func NewWithPipeline(ctx context.Context, token, pipelineID string) (hscrm.Client, error) {
	return New(ctx, &hscrm.Config{
		AccessToken: token,
		PipelineID:  pipelineID,
	})
}
