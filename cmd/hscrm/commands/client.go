package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fivetwenty-io/hscrm/internal/constants"
	"github.com/fivetwenty-io/hscrm/pkg/crmclient"
	"github.com/fivetwenty-io/hscrm/pkg/hscrm"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// tokenReader reads a secret from a terminal file descriptor. Replaced in
// tests.
var tokenReader = term.ReadPassword

// isTerminal reports whether the file descriptor is a terminal. Replaced
// in tests.
var isTerminal = term.IsTerminal

// CreateClient builds a CRM client from the merged flag, environment and
// file configuration. When no token is configured and stdin is a terminal
// the user is prompted for one.
func CreateClient(ctx context.Context) (hscrm.Client, error) {
	token, err := resolveAccessToken(os.Stdin, os.Stderr)
	if err != nil {
		return nil, err
	}

	cache, err := createCache(ctx)
	if err != nil {
		return nil, err
	}

	config := &hscrm.Config{
		APIEndpoint: viper.GetString("api_endpoint"),
		AccessToken: token,
		PipelineID:  viper.GetString("pipeline_id"),
		Logger:      NewSlogLogger(os.Stderr, viper.GetBool("verbose")),
		Debug:       viper.GetBool("verbose"),
		Cache:       cache,
	}

	client, err := crmclient.New(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, nil
}

// resolveAccessToken returns the configured token or prompts for one.
func resolveAccessToken(in *os.File, prompt io.Writer) (string, error) {
	token := strings.TrimSpace(viper.GetString("access_token"))
	if token != "" {
		return token, nil
	}

	fd := int(in.Fd()) // #nosec G115 -- file descriptors fit in int

	if !isTerminal(fd) {
		return "", fmt.Errorf("%w (%w)", constants.ErrNoAccessToken, constants.ErrNotATerminal)
	}

	_, _ = fmt.Fprint(prompt, "HubSpot access token: ")

	secret, err := tokenReader(fd)

	_, _ = fmt.Fprintln(prompt)

	if err != nil {
		return "", fmt.Errorf("reading access token: %w", err)
	}

	token = strings.TrimSpace(string(secret))
	if token == "" {
		return "", constants.ErrEmptyTokenEntered
	}

	return token, nil
}

// createCache builds the pipeline stage cache selected by --cache.
func createCache(ctx context.Context) (hscrm.Cache, error) {
	cacheType, err := hscrm.ParseCacheType(viper.GetString("cache"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", constants.ErrInvalidCacheType, err)
	}

	config := hscrm.DefaultCacheConfig()
	config.Type = cacheType

	if cacheType == hscrm.CacheTypeNATS {
		config.NATS = &hscrm.NATSKVConfig{URL: viper.GetString("nats_url")}
	}

	cache, err := hscrm.NewCacheFromConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("creating cache: %w", err)
	}

	return cache, nil
}
