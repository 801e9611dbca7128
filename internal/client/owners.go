package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/fivetwenty-io/hscrm/internal/constants"
	"github.com/fivetwenty-io/hscrm/internal/http"
	"github.com/fivetwenty-io/hscrm/pkg/hscrm"
)

// OwnersClient implements hscrm.OwnersClient.
type OwnersClient struct {
	httpClient *http.Client
	settings   *settings
	logger     hscrm.Logger
}

// NewOwnersClient creates a new owners client.
func NewOwnersClient(httpClient *http.Client, settings *settings, logger hscrm.Logger) *OwnersClient {
	return &OwnersClient{
		httpClient: httpClient,
		settings:   settings,
		logger:     logger,
	}
}

// Get implements hscrm.OwnersClient.Get.
func (c *OwnersClient) Get(ctx context.Context, id string) (*hscrm.Owner, error) {
	return hscrm.Retry(ctx, c.settings.retry, c.logger, "getting owner "+id, func(ctx context.Context) (*hscrm.Owner, error) {
		resp, err := c.httpClient.Get(ctx, "/crm/v3/owners/"+url.PathEscape(id), nil)
		if err != nil {
			return nil, fmt.Errorf("getting owner: %w", err)
		}

		var owner hscrm.Owner

		err = http.DecodeJSON(resp, &owner)
		if err != nil {
			return nil, fmt.Errorf("parsing owner: %w", err)
		}

		return &owner, nil
	})
}

// FindByEmail implements hscrm.OwnersClient.FindByEmail. It returns nil
// without an error when no owner has the email.
func (c *OwnersClient) FindByEmail(ctx context.Context, email string) (*hscrm.Owner, error) {
	query := url.Values{}
	query.Set("email", email)

	page, err := hscrm.Retry(ctx, c.settings.retry, c.logger, "finding owner by email", func(ctx context.Context) (*hscrm.CollectionResponse[hscrm.Owner], error) {
		return c.list(ctx, query)
	})
	if err != nil {
		return nil, err
	}

	if len(page.Results) == 0 {
		return nil, nil //nolint:nilnil // a missing owner is not an error
	}

	return &page.Results[0], nil
}

// Find implements hscrm.OwnersClient.Find. Owners can only be looked up by
// id or email.
func (c *OwnersClient) Find(ctx context.Context, key hscrm.OwnerLookupKey, value string) (*hscrm.Owner, error) {
	switch key {
	case hscrm.OwnerLookupID:
		return c.Get(ctx, value)
	case hscrm.OwnerLookupEmail:
		return c.FindByEmail(ctx, value)
	default:
		return nil, fmt.Errorf("%w: got %q", hscrm.ErrInvalidOwnerKey, key)
	}
}

// List implements hscrm.OwnersClient.List. Owners cannot be searched, so
// the walk pages through the plain owners listing.
func (c *OwnersClient) List(pageSize int) *hscrm.Paginator[hscrm.Owner] {
	if pageSize <= 0 {
		pageSize = constants.DefaultOwnersPageSize
	}

	supervisor := hscrm.NewRetrySupervisor(c.settings.retry, c.logger)

	fetch := func(ctx context.Context, after string) (*hscrm.Page[hscrm.Owner], error) {
		query := url.Values{}
		query.Set("limit", strconv.Itoa(pageSize))

		if after != "" {
			query.Set("after", after)
		}

		page, err := c.list(ctx, query)
		if err != nil {
			return nil, err
		}

		return &hscrm.Page[hscrm.Owner]{Results: page.Results, After: page.NextAfter()}, nil
	}

	return hscrm.NewPaginator(hscrm.Supervise(supervisor, "listing owners", fetch), "")
}

func (c *OwnersClient) list(ctx context.Context, query url.Values) (*hscrm.CollectionResponse[hscrm.Owner], error) {
	resp, err := c.httpClient.Get(ctx, "/crm/v3/owners", query)
	if err != nil {
		return nil, fmt.Errorf("listing owners: %w", err)
	}

	var page hscrm.CollectionResponse[hscrm.Owner]

	err = http.DecodeJSON(resp, &page)
	if err != nil {
		return nil, fmt.Errorf("parsing owners response: %w", err)
	}

	return &page, nil
}
