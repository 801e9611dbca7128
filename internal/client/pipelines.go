package client

import (
	"context"
	"fmt"
	"net/url"
	"slices"

	"github.com/fivetwenty-io/hscrm/internal/constants"
	"github.com/fivetwenty-io/hscrm/internal/http"
	"github.com/fivetwenty-io/hscrm/pkg/hscrm"
)

// dealsObjectType is the pipelines API name for deal pipelines.
const dealsObjectType = "deals"

// PipelinesClient implements hscrm.PipelinesClient. Stage lists are cached
// since deal creation needs them on every call.
type PipelinesClient struct {
	httpClient *http.Client
	settings   *settings
	logger     hscrm.Logger
}

// NewPipelinesClient creates a new pipelines client.
func NewPipelinesClient(httpClient *http.Client, settings *settings, logger hscrm.Logger) *PipelinesClient {
	return &PipelinesClient{
		httpClient: httpClient,
		settings:   settings,
		logger:     logger,
	}
}

// PipelineID implements hscrm.PipelinesClient.PipelineID.
func (c *PipelinesClient) PipelineID() (string, error) {
	return c.settings.requirePipelineID()
}

// Stages implements hscrm.PipelinesClient.Stages. Stages are returned in
// display order.
func (c *PipelinesClient) Stages(ctx context.Context, objectType, pipelineID string) ([]hscrm.PipelineStage, error) {
	key := hscrm.StageCacheKey(objectType, pipelineID)

	var stages []hscrm.PipelineStage
	if c.settings.cache.GetJSON(ctx, key, &stages) {
		return stages, nil
	}

	path := fmt.Sprintf("/crm/v3/pipelines/%s/%s/stages", url.PathEscape(objectType), url.PathEscape(pipelineID))

	result, err := hscrm.Retry(ctx, c.settings.retry, c.logger, "listing pipeline stages", func(ctx context.Context) (*hscrm.CollectionResponse[hscrm.PipelineStage], error) {
		resp, err := c.httpClient.Get(ctx, path, nil)
		if err != nil {
			return nil, fmt.Errorf("listing stages of pipeline %s: %w", pipelineID, err)
		}

		var page hscrm.CollectionResponse[hscrm.PipelineStage]

		err = http.DecodeJSON(resp, &page)
		if err != nil {
			return nil, fmt.Errorf("parsing pipeline stages: %w", err)
		}

		return &page, nil
	})
	if err != nil {
		return nil, err
	}

	stages = sortStages(result.Results)
	c.settings.cache.SetJSON(ctx, key, stages, c.settings.stageCacheTTL)

	return stages, nil
}

// DefaultDealStage implements hscrm.PipelinesClient.DefaultDealStage. It is
// the lowest display-order stage of the configured pipeline.
func (c *PipelinesClient) DefaultDealStage(ctx context.Context) (*hscrm.PipelineStage, error) {
	pipelineID, err := c.settings.requirePipelineID()
	if err != nil {
		return nil, err
	}

	stages, err := c.Stages(ctx, dealsObjectType, pipelineID)
	if err != nil {
		return nil, err
	}

	if len(stages) == 0 {
		return nil, fmt.Errorf("%w: %s", hscrm.ErrNoPipelineStages, pipelineID)
	}

	return &stages[0], nil
}

// List implements hscrm.PipelinesClient.List. Every pipeline is tagged with
// objectType.
func (c *PipelinesClient) List(ctx context.Context, objectType string) ([]hscrm.Pipeline, error) {
	path := "/crm/v3/pipelines/" + url.PathEscape(objectType)

	result, err := hscrm.Retry(ctx, c.settings.retry, c.logger, "listing pipelines", func(ctx context.Context) (*hscrm.CollectionResponse[hscrm.Pipeline], error) {
		resp, err := c.httpClient.Get(ctx, path, nil)
		if err != nil {
			return nil, fmt.Errorf("listing %s pipelines: %w", objectType, err)
		}

		var page hscrm.CollectionResponse[hscrm.Pipeline]

		err = http.DecodeJSON(resp, &page)
		if err != nil {
			return nil, fmt.Errorf("parsing pipelines: %w", err)
		}

		return &page, nil
	})
	if err != nil {
		return nil, err
	}

	pipelines := result.Results
	for i := range pipelines {
		pipelines[i].ObjectType = objectType
		pipelines[i].Stages = sortStages(pipelines[i].Stages)
	}

	return pipelines, nil
}

// Details implements hscrm.PipelinesClient.Details. It returns the ticket
// and deal pipelines, filtered to pipelineID (the configured pipeline when
// empty) unless all is set.
func (c *PipelinesClient) Details(ctx context.Context, pipelineID string, all bool) ([]hscrm.Pipeline, error) {
	if !all && pipelineID == "" {
		var err error

		pipelineID, err = c.settings.requirePipelineID()
		if err != nil {
			return nil, err
		}
	}

	var pipelines []hscrm.Pipeline

	for _, objectType := range []string{constants.PipelineObjectTypeTicket, constants.PipelineObjectTypeDeal} {
		found, err := c.List(ctx, objectType)
		if err != nil {
			return nil, err
		}

		pipelines = append(pipelines, found...)
	}

	if all {
		return pipelines, nil
	}

	return slices.DeleteFunc(pipelines, func(pipeline hscrm.Pipeline) bool {
		return pipeline.ID != pipelineID
	}), nil
}

func sortStages(stages []hscrm.PipelineStage) []hscrm.PipelineStage {
	sorted := slices.Clone(stages)
	slices.SortStableFunc(sorted, func(a, b hscrm.PipelineStage) int {
		return a.DisplayOrder - b.DisplayOrder
	})

	return sorted
}
