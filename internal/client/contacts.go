package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/hscrm/internal/constants"
	"github.com/fivetwenty-io/hscrm/internal/http"
	"github.com/fivetwenty-io/hscrm/pkg/hscrm"
)

// ContactsClient implements hscrm.ContactsClient.
type ContactsClient struct {
	*objectsClient

	associations *AssociationsClient
}

// NewContactsClient creates a new contacts client.
func NewContactsClient(httpClient *http.Client, settings *settings, logger hscrm.Logger, associations *AssociationsClient) *ContactsClient {
	return &ContactsClient{
		objectsClient: newObjectsClient(hscrm.RecordTypeContact, httpClient, settings, logger),
		associations:  associations,
	}
}

// Create implements hscrm.ContactsClient.Create.
func (c *ContactsClient) Create(ctx context.Context, input *hscrm.ContactInput) (*hscrm.Record, error) {
	if input == nil {
		return nil, hscrm.ErrInputRequired
	}

	properties := hscrm.Properties{}
	for key, value := range input.Properties {
		properties[key] = value
	}

	properties[constants.PropertyContactEmail] = input.Email
	properties[constants.PropertyContactFirstName] = input.FirstName
	properties[constants.PropertyContactLastName] = input.LastName

	return c.create(ctx, properties)
}

// Find implements hscrm.ContactsClient.Find.
func (c *ContactsClient) Find(ctx context.Context, property string, value interface{}) ([]hscrm.Record, error) {
	return c.find(ctx, property, value, []hscrm.Sort{
		{PropertyName: constants.PropertyObjectID, Direction: constants.SortAscending},
	})
}

// Update implements hscrm.ContactsClient.Update.
func (c *ContactsClient) Update(ctx context.Context, id string, properties hscrm.Properties) (*hscrm.Record, error) {
	return c.update(ctx, id, properties)
}

// Purge implements hscrm.ContactsClient.Purge. It permanently deletes the
// contact and its history. idProperty selects the property value is
// matched against; empty means the record id.
func (c *ContactsClient) Purge(ctx context.Context, value, idProperty string) error {
	_, err := c.httpClient.Post(ctx, c.path("gdpr-delete"), &hscrm.GDPRDeleteInput{
		ObjectID:   value,
		IDProperty: idProperty,
	})
	if err != nil {
		c.logFailure("purge", err)

		return fmt.Errorf("purging contact %s: %w", value, err)
	}

	return nil
}

// ListAll implements hscrm.ContactsClient.ListAll.
func (c *ContactsClient) ListAll(opts *hscrm.WalkOptions) *hscrm.Paginator[hscrm.Record] {
	return c.walk(opts, "")
}

// Associations implements hscrm.ContactsClient.Associations.
func (c *ContactsClient) Associations(ctx context.Context, id string, to hscrm.RecordType) ([]hscrm.Association, error) {
	return c.associations.List(ctx, hscrm.RecordTypeContact, id, to)
}
