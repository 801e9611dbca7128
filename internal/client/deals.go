package client

import (
	"context"

	"github.com/fivetwenty-io/hscrm/internal/constants"
	"github.com/fivetwenty-io/hscrm/internal/http"
	"github.com/fivetwenty-io/hscrm/pkg/hscrm"
)

// DealsClient implements hscrm.DealsClient. Deal walks are two-phase: the
// search only yields ids and the records are batch-read.
type DealsClient struct {
	*objectsClient

	associations *AssociationsClient
	workflows    *WorkflowsClient
}

// NewDealsClient creates a new deals client.
func NewDealsClient(httpClient *http.Client, settings *settings, logger hscrm.Logger, associations *AssociationsClient) *DealsClient {
	return &DealsClient{
		objectsClient: newObjectsClient(hscrm.RecordTypeDeal, httpClient, settings, logger),
		associations:  associations,
	}
}

// Create implements hscrm.DealsClient.Create. See WorkflowsClient.CreateDeal.
// A deals client built outside Client has no workflow and cannot create.
func (c *DealsClient) Create(ctx context.Context, input *hscrm.DealInput) (*hscrm.Record, error) {
	if c.workflows == nil {
		return nil, hscrm.ErrDealWorkflowUnavailable
	}

	result, err := c.workflows.CreateDeal(ctx, input)
	if err != nil {
		return nil, err
	}

	return result.Deal, nil
}

// Find implements hscrm.DealsClient.Find. Only deals in the configured
// pipeline are returned.
func (c *DealsClient) Find(ctx context.Context, property string, value interface{}) ([]hscrm.Record, error) {
	pipelineID, err := c.settings.requirePipelineID()
	if err != nil {
		return nil, err
	}

	return c.find(ctx, property, value, nil, hscrm.EqualFilter(constants.PropertyDealPipeline, pipelineID))
}

// Update implements hscrm.DealsClient.Update.
func (c *DealsClient) Update(ctx context.Context, id string, properties hscrm.Properties) (*hscrm.Record, error) {
	return c.update(ctx, id, properties)
}

// Archive implements hscrm.DealsClient.Archive.
func (c *DealsClient) Archive(ctx context.Context, id string) error {
	return c.archive(ctx, id)
}

// ListAll implements hscrm.DealsClient.ListAll.
func (c *DealsClient) ListAll(opts *hscrm.WalkOptions) *hscrm.Paginator[hscrm.Record] {
	return c.twoPhaseWalk(opts, constants.PropertyDealPipeline)
}

// Associations implements hscrm.DealsClient.Associations.
func (c *DealsClient) Associations(ctx context.Context, id string, to hscrm.RecordType) ([]hscrm.Association, error) {
	return c.associations.List(ctx, hscrm.RecordTypeDeal, id, to)
}
