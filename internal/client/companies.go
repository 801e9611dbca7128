package client

import (
	"context"

	"github.com/fivetwenty-io/hscrm/internal/constants"
	"github.com/fivetwenty-io/hscrm/internal/http"
	"github.com/fivetwenty-io/hscrm/pkg/hscrm"
)

// CompaniesClient implements hscrm.CompaniesClient.
type CompaniesClient struct {
	*objectsClient

	associations *AssociationsClient
}

// NewCompaniesClient creates a new companies client.
func NewCompaniesClient(httpClient *http.Client, settings *settings, logger hscrm.Logger, associations *AssociationsClient) *CompaniesClient {
	return &CompaniesClient{
		objectsClient: newObjectsClient(hscrm.RecordTypeCompany, httpClient, settings, logger),
		associations:  associations,
	}
}

// Create implements hscrm.CompaniesClient.Create.
func (c *CompaniesClient) Create(ctx context.Context, input *hscrm.CompanyInput) (*hscrm.Record, error) {
	if input == nil {
		return nil, hscrm.ErrInputRequired
	}

	properties := hscrm.Properties{}
	for key, value := range input.Properties {
		properties[key] = value
	}

	properties[constants.PropertyCompanyName] = input.Name

	if input.Domain != "" {
		properties[constants.PropertyCompanyDomain] = input.Domain
	}

	return c.create(ctx, properties)
}

// Find implements hscrm.CompaniesClient.Find. The most recently modified
// companies come first.
func (c *CompaniesClient) Find(ctx context.Context, property string, value interface{}) ([]hscrm.Record, error) {
	return c.find(ctx, property, value, []hscrm.Sort{
		{PropertyName: constants.PropertyLastModified, Direction: constants.SortDescending},
	})
}

// Update implements hscrm.CompaniesClient.Update.
func (c *CompaniesClient) Update(ctx context.Context, id string, properties hscrm.Properties) (*hscrm.Record, error) {
	return c.update(ctx, id, properties)
}

// Archive implements hscrm.CompaniesClient.Archive.
func (c *CompaniesClient) Archive(ctx context.Context, id string) error {
	return c.archive(ctx, id)
}

// ListAll implements hscrm.CompaniesClient.ListAll.
func (c *CompaniesClient) ListAll(opts *hscrm.WalkOptions) *hscrm.Paginator[hscrm.Record] {
	return c.walk(opts, "")
}

// Associations implements hscrm.CompaniesClient.Associations.
func (c *CompaniesClient) Associations(ctx context.Context, id string, to hscrm.RecordType) ([]hscrm.Association, error) {
	return c.associations.List(ctx, hscrm.RecordTypeCompany, id, to)
}
