package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/hscrm/internal/constants"
	"github.com/fivetwenty-io/hscrm/internal/http"
	"github.com/fivetwenty-io/hscrm/pkg/hscrm"
)

// objectsClient implements the /crm/v3/objects calls shared by every record
// type. The typed clients expose the subset their record type supports.
type objectsClient struct {
	recordType hscrm.RecordType
	httpClient *http.Client
	settings   *settings
	logger     hscrm.Logger
}

func newObjectsClient(recordType hscrm.RecordType, httpClient *http.Client, settings *settings, logger hscrm.Logger) *objectsClient {
	return &objectsClient{
		recordType: recordType,
		httpClient: httpClient,
		settings:   settings,
		logger:     logger,
	}
}

func (c *objectsClient) path(segments ...string) string {
	path := "/crm/v3/objects/" + c.recordType.ObjectPath()
	if len(segments) > 0 {
		path += "/" + strings.Join(segments, "/")
	}

	return path
}

func (c *objectsClient) logFailure(operation string, err error) {
	c.logger.Error("CRM mutation failed", map[string]interface{}{
		"record_type": c.recordType.String(),
		"operation":   operation,
		"error":       err.Error(),
	})
}

func (c *objectsClient) create(ctx context.Context, properties hscrm.Properties) (*hscrm.Record, error) {
	resp, err := c.httpClient.Post(ctx, c.path(), &hscrm.RecordInput{Properties: properties})
	if err != nil {
		c.logFailure("create", err)

		return nil, fmt.Errorf("creating %s: %w", c.recordType, err)
	}

	var record hscrm.Record

	err = http.DecodeJSON(resp, &record)
	if err != nil {
		return nil, fmt.Errorf("parsing created %s: %w", c.recordType, err)
	}

	return &record, nil
}

func (c *objectsClient) get(ctx context.Context, id string) (*hscrm.Record, error) {
	resp, err := c.httpClient.Get(ctx, c.path(id), nil)
	if err != nil {
		return nil, fmt.Errorf("getting %s %s: %w", c.recordType, id, err)
	}

	var record hscrm.Record

	err = http.DecodeJSON(resp, &record)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", c.recordType, err)
	}

	return &record, nil
}

func (c *objectsClient) update(ctx context.Context, id string, properties hscrm.Properties) (*hscrm.Record, error) {
	resp, err := c.httpClient.Patch(ctx, c.path(id), &hscrm.RecordInput{Properties: properties})
	if err != nil {
		c.logFailure("update", err)

		return nil, fmt.Errorf("updating %s %s: %w", c.recordType, id, err)
	}

	var record hscrm.Record

	err = http.DecodeJSON(resp, &record)
	if err != nil {
		return nil, fmt.Errorf("parsing updated %s: %w", c.recordType, err)
	}

	return &record, nil
}

func (c *objectsClient) archive(ctx context.Context, id string) error {
	_, err := c.httpClient.Delete(ctx, c.path(id))
	if err != nil {
		c.logFailure("archive", err)

		return fmt.Errorf("archiving %s %s: %w", c.recordType, id, err)
	}

	return nil
}

func (c *objectsClient) search(ctx context.Context, req *hscrm.SearchRequest) (*hscrm.SearchResponse, error) {
	resp, err := c.httpClient.Post(ctx, c.path("search"), req)
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", c.recordType.ObjectPath(), err)
	}

	var result hscrm.SearchResponse

	err = http.DecodeJSON(resp, &result)
	if err != nil {
		return nil, fmt.Errorf("parsing %s search response: %w", c.recordType, err)
	}

	return &result, nil
}

func (c *objectsClient) batchRead(ctx context.Context, req *hscrm.BatchReadRequest) ([]hscrm.Record, error) {
	resp, err := c.httpClient.Post(ctx, c.path("batch", "read"), req)
	if err != nil {
		return nil, fmt.Errorf("batch reading %s: %w", c.recordType.ObjectPath(), err)
	}

	var result hscrm.BatchResponse

	err = http.DecodeJSON(resp, &result)
	if err != nil {
		return nil, fmt.Errorf("parsing %s batch read response: %w", c.recordType, err)
	}

	return result.Results, nil
}

// find runs a single equality search capped at the point-lookup page size.
func (c *objectsClient) find(ctx context.Context, property string, value interface{}, sorts []hscrm.Sort, extra ...hscrm.Filter) ([]hscrm.Record, error) {
	filters := append([]hscrm.Filter{hscrm.EqualFilter(property, value)}, extra...)

	req := &hscrm.SearchRequest{
		FilterGroups: hscrm.FilterGroups(hscrm.FilterGroup{Filters: filters}),
		Sorts:        sorts,
		Limit:        constants.DefaultSearchLimit,
	}

	op := fmt.Sprintf("finding %s by %s", c.recordType, property)

	result, err := hscrm.Retry(ctx, c.settings.retry, c.logger, op, func(ctx context.Context) (*hscrm.SearchResponse, error) {
		return c.search(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	return result.Results, nil
}

// searchFetcher returns a page fetcher for a watermark walk.
func (c *objectsClient) searchFetcher(opts *hscrm.WalkOptions, pipelineProperty string, properties []string) hscrm.PageFetcher[hscrm.Record] {
	watermark := opts.Watermark.Resolve()
	group := hscrm.WatermarkFilterGroup(watermark, pipelineProperty, opts.PipelineID)
	sorts := hscrm.WatermarkSort(watermark)

	return func(ctx context.Context, after string) (*hscrm.Page[hscrm.Record], error) {
		result, err := c.search(ctx, &hscrm.SearchRequest{
			FilterGroups: hscrm.FilterGroups(group),
			Sorts:        sorts,
			Properties:   properties,
			Limit:        opts.BatchSize,
			After:        after,
		})
		if err != nil {
			return nil, err
		}

		return &hscrm.Page[hscrm.Record]{Results: result.Results, After: result.NextAfter()}, nil
	}
}

// walk returns a lazy watermark walk that shares one retry budget across
// all its pages.
func (c *objectsClient) walk(opts *hscrm.WalkOptions, pipelineProperty string) *hscrm.Paginator[hscrm.Record] {
	opts = walkDefaults(opts)
	supervisor := hscrm.NewRetrySupervisor(c.settings.retry, c.logger)
	fetch := c.searchFetcher(opts, pipelineProperty, opts.Properties)

	return hscrm.NewPaginator(hscrm.Supervise(supervisor, "walking "+c.recordType.ObjectPath(), fetch), opts.After)
}

// twoPhaseWalk searches for ids only and batch-reads the full records of
// every page.
func (c *objectsClient) twoPhaseWalk(opts *hscrm.WalkOptions, pipelineProperty string) *hscrm.Paginator[hscrm.Record] {
	opts = walkDefaults(opts)
	supervisor := hscrm.NewRetrySupervisor(c.settings.retry, c.logger)

	search := c.searchFetcher(opts, pipelineProperty, nil)
	read := func(ctx context.Context, ids []string) ([]hscrm.Record, error) {
		inputs := make([]hscrm.RecordID, len(ids))
		for i, id := range ids {
			inputs[i] = hscrm.RecordID{ID: id}
		}

		return c.batchRead(ctx, &hscrm.BatchReadRequest{
			Inputs:                inputs,
			Properties:            opts.Properties,
			PropertiesWithHistory: opts.PropertiesWithHistory,
		})
	}

	fetch := hscrm.TwoPhaseFetcher(search, read)

	return hscrm.NewPaginator(hscrm.Supervise(supervisor, "walking "+c.recordType.ObjectPath(), fetch), opts.After)
}

func walkDefaults(opts *hscrm.WalkOptions) *hscrm.WalkOptions {
	resolved := hscrm.WalkOptions{}
	if opts != nil {
		resolved = *opts
	}

	if resolved.BatchSize <= 0 {
		resolved.BatchSize = constants.DefaultBatchSize
	}

	return &resolved
}
