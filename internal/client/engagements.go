package client

import (
	"context"
	"strconv"
	"time"

	"github.com/fivetwenty-io/hscrm/internal/constants"
	"github.com/fivetwenty-io/hscrm/internal/http"
	"github.com/fivetwenty-io/hscrm/pkg/hscrm"
)

// TicketsClient implements hscrm.TicketsClient.
type TicketsClient struct {
	*objectsClient
}

// NewTicketsClient creates a new tickets client.
func NewTicketsClient(httpClient *http.Client, settings *settings, logger hscrm.Logger) *TicketsClient {
	return &TicketsClient{
		objectsClient: newObjectsClient(hscrm.RecordTypeTicket, httpClient, settings, logger),
	}
}

// Create implements hscrm.TicketsClient.Create.
func (c *TicketsClient) Create(ctx context.Context, properties hscrm.Properties) (*hscrm.Record, error) {
	return c.create(ctx, properties)
}

// Archive implements hscrm.TicketsClient.Archive.
func (c *TicketsClient) Archive(ctx context.Context, id string) error {
	return c.archive(ctx, id)
}

// ListAll implements hscrm.TicketsClient.ListAll. A pipeline id restricts
// the walk to that ticket pipeline.
func (c *TicketsClient) ListAll(opts *hscrm.WalkOptions) *hscrm.Paginator[hscrm.Record] {
	return c.walk(opts, constants.PropertyTicketPipeline)
}

// EmailsClient implements hscrm.EmailsClient.
type EmailsClient struct {
	*objectsClient

	now func() time.Time
}

// NewEmailsClient creates a new emails client.
func NewEmailsClient(httpClient *http.Client, settings *settings, logger hscrm.Logger) *EmailsClient {
	return &EmailsClient{
		objectsClient: newObjectsClient(hscrm.RecordTypeEmail, httpClient, settings, logger),
		now:           time.Now,
	}
}

// Create implements hscrm.EmailsClient.Create. hs_timestamp defaults to now.
func (c *EmailsClient) Create(ctx context.Context, properties hscrm.Properties) (*hscrm.Record, error) {
	withTimestamp := hscrm.Properties{}
	for key, value := range properties {
		withTimestamp[key] = value
	}

	if _, ok := withTimestamp[constants.PropertyEmailTimestamp]; !ok {
		now := c.now()
		withTimestamp[constants.PropertyEmailTimestamp] = strconv.FormatInt(hscrm.EpochMillis(&now), 10)
	}

	return c.create(ctx, withTimestamp)
}

// Archive implements hscrm.EmailsClient.Archive.
func (c *EmailsClient) Archive(ctx context.Context, id string) error {
	return c.archive(ctx, id)
}

// ListAll implements hscrm.EmailsClient.ListAll.
func (c *EmailsClient) ListAll(opts *hscrm.WalkOptions) *hscrm.Paginator[hscrm.Record] {
	return c.walk(opts, "")
}
