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

// EmailEventsClient implements hscrm.EmailEventsClient over the legacy
// email events API, which pages by offset and hasMore.
type EmailEventsClient struct {
	httpClient *http.Client
	settings   *settings
	logger     hscrm.Logger
}

// NewEmailEventsClient creates a new email events client.
func NewEmailEventsClient(httpClient *http.Client, settings *settings, logger hscrm.Logger) *EmailEventsClient {
	return &EmailEventsClient{
		httpClient: httpClient,
		settings:   settings,
		logger:     logger,
	}
}

// ListAll implements hscrm.EmailEventsClient.ListAll.
func (c *EmailEventsClient) ListAll(opts *hscrm.EmailEventOptions) *hscrm.Paginator[hscrm.EmailEvent] {
	resolved := hscrm.EmailEventOptions{}
	if opts != nil {
		resolved = *opts
	}

	if resolved.BatchSize <= 0 {
		resolved.BatchSize = constants.EmailEventBatchSize
	}

	supervisor := hscrm.NewRetrySupervisor(c.settings.retry, c.logger)

	fetch := func(ctx context.Context, offset string) (*hscrm.Page[hscrm.EmailEvent], error) {
		query := url.Values{}
		query.Set("limit", strconv.Itoa(resolved.BatchSize))

		if resolved.StartTimestamp > 0 {
			query.Set("startTimestamp", strconv.FormatInt(resolved.StartTimestamp, 10))
		}

		if offset != "" {
			query.Set("offset", offset)
		}

		resp, err := c.httpClient.Get(ctx, "/email/public/v1/events", query)
		if err != nil {
			return nil, fmt.Errorf("listing email events: %w", err)
		}

		var page hscrm.EmailEventsResponse

		err = http.DecodeJSON(resp, &page)
		if err != nil {
			return nil, fmt.Errorf("parsing email events: %w", err)
		}

		next := ""
		if page.HasMore {
			next = page.Offset
		}

		return &hscrm.Page[hscrm.EmailEvent]{Results: page.Events, After: next}, nil
	}

	return hscrm.NewPaginator(hscrm.Supervise(supervisor, "listing email events", fetch), resolved.Offset)
}
