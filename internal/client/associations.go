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

// AssociationsClient implements hscrm.AssociationsClient over the v4
// associations API.
type AssociationsClient struct {
	httpClient *http.Client
	settings   *settings
	logger     hscrm.Logger
}

// NewAssociationsClient creates a new associations client.
func NewAssociationsClient(httpClient *http.Client, settings *settings, logger hscrm.Logger) *AssociationsClient {
	return &AssociationsClient{
		httpClient: httpClient,
		settings:   settings,
		logger:     logger,
	}
}

func associationsPath(from hscrm.RecordType, fromID string, to hscrm.RecordType) string {
	return fmt.Sprintf("/crm/v4/objects/%s/%s/associations/%s", from.ObjectPath(), url.PathEscape(fromID), to.ObjectPath())
}

// List implements hscrm.AssociationsClient.List.
func (c *AssociationsClient) List(ctx context.Context, from hscrm.RecordType, fromID string, to hscrm.RecordType) ([]hscrm.Association, error) {
	associations, err := c.Pages(from, fromID, to).All(ctx)
	if err != nil {
		return nil, err
	}

	return associations, nil
}

// Pages implements hscrm.AssociationsClient.Pages.
func (c *AssociationsClient) Pages(from hscrm.RecordType, fromID string, to hscrm.RecordType) *hscrm.Paginator[hscrm.Association] {
	path := associationsPath(from, fromID, to)
	op := fmt.Sprintf("listing %s associations of %s %s", to, from, fromID)
	supervisor := hscrm.NewRetrySupervisor(c.settings.retry, c.logger)

	fetch := func(ctx context.Context, after string) (*hscrm.Page[hscrm.Association], error) {
		query := url.Values{}
		query.Set("limit", strconv.Itoa(constants.DefaultAssociationsPageSize))

		if after != "" {
			query.Set("after", after)
		}

		resp, err := c.httpClient.Get(ctx, path, query)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		var result hscrm.CollectionResponse[hscrm.Association]

		err = http.DecodeJSON(resp, &result)
		if err != nil {
			return nil, fmt.Errorf("parsing associations response: %w", err)
		}

		return &hscrm.Page[hscrm.Association]{Results: result.Results, After: result.NextAfter()}, nil
	}

	return hscrm.NewPaginator(hscrm.Supervise(supervisor, op, fetch), "")
}

// Create implements hscrm.AssociationsClient.Create. A pair without a
// default association type fails before any request is sent.
func (c *AssociationsClient) Create(ctx context.Context, from hscrm.RecordType, fromID string, to hscrm.RecordType, toID string) (*hscrm.AssociationCreateResult, error) {
	code, ok := hscrm.AssociationTypeCode(from, to)
	if !ok {
		return nil, fmt.Errorf("%w: %s to %s", hscrm.ErrNoAssociationType, from, to)
	}

	path := associationsPath(from, fromID, to) + "/" + url.PathEscape(toID)
	body := []hscrm.AssociationSpec{{
		AssociationCategory: constants.AssociationCategoryHubSpotDefined,
		AssociationTypeID:   code,
	}}

	resp, err := c.httpClient.Put(ctx, path, body)
	if err != nil {
		c.logger.Error("CRM mutation failed", map[string]interface{}{
			"record_type": from.String(),
			"operation":   "associate",
			"to_type":     to.String(),
			"error":       err.Error(),
		})

		return nil, fmt.Errorf("associating %s %s with %s %s: %w", from, fromID, to, toID, err)
	}

	result := hscrm.AssociationCreateResult{
		FromObjectID: hscrm.ObjectID(fromID),
		ToObjectID:   hscrm.ObjectID(toID),
	}

	if len(resp.Body) > 0 {
		err = http.DecodeJSON(resp, &result)
		if err != nil {
			return nil, fmt.Errorf("parsing association response: %w", err)
		}
	}

	return &result, nil
}
