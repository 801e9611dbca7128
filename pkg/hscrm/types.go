package hscrm

import (
	"encoding/json"
	"fmt"
	"time"
)

// Properties is the property bag sent to and received from the CRM. Values
// are strings, numbers, timestamps or nil.
type Properties map[string]interface{}

// Record represents a single CRM object (contact, company, deal, ...).
type Record struct {
	ID                    string                       `json:"id"                              yaml:"id"`
	Properties            Properties                   `json:"properties"                      yaml:"properties"`
	PropertiesWithHistory map[string][]PropertyVersion `json:"propertiesWithHistory,omitempty" yaml:"properties_with_history,omitempty"`
	CreatedAt             time.Time                    `json:"createdAt"                       yaml:"created_at"`
	UpdatedAt             time.Time                    `json:"updatedAt"                       yaml:"updated_at"`
	Archived              bool                         `json:"archived"                        yaml:"archived"`
}

// StringProperty returns the named property as a string. Missing and nil
// values yield "".
func (r *Record) StringProperty(name string) string {
	if r == nil || r.Properties == nil {
		return ""
	}

	switch value := r.Properties[name].(type) {
	case nil:
		return ""
	case string:
		return value
	default:
		return formatValue(value)
	}
}

// PropertyVersion is one historical value of a property.
type PropertyVersion struct {
	Value      string    `json:"value"                yaml:"value"`
	Timestamp  time.Time `json:"timestamp"            yaml:"timestamp"`
	SourceType string    `json:"sourceType,omitempty" yaml:"source_type,omitempty"`
	SourceID   string    `json:"sourceId,omitempty"   yaml:"source_id,omitempty"`
}

// Filter is a single property condition in a search request.
type Filter struct {
	PropertyName string      `json:"propertyName"    yaml:"property_name"`
	Operator     string      `json:"operator"        yaml:"operator"`
	Value        interface{} `json:"value,omitempty" yaml:"value,omitempty"`
}

// FilterGroup is a conjunction of filters.
type FilterGroup struct {
	Filters []Filter `json:"filters" yaml:"filters"`
}

// Sort orders search results by a property.
type Sort struct {
	PropertyName string `json:"propertyName" yaml:"property_name"`
	Direction    string `json:"direction"    yaml:"direction"`
}

// SearchRequest is the body of a CRM search call.
type SearchRequest struct {
	FilterGroups []FilterGroup `json:"filterGroups,omitempty" yaml:"filter_groups,omitempty"`
	Sorts        []Sort        `json:"sorts,omitempty"        yaml:"sorts,omitempty"`
	Properties   []string      `json:"properties,omitempty"   yaml:"properties,omitempty"`
	Limit        int           `json:"limit,omitempty"        yaml:"limit,omitempty"`
	After        string        `json:"after,omitempty"        yaml:"after,omitempty"`
}

// Paging carries the continuation cursor of a page.
type Paging struct {
	Next *PagingNext `json:"next,omitempty" yaml:"next,omitempty"`
}

// PagingNext holds the cursor for the next page.
type PagingNext struct {
	After string `json:"after"          yaml:"after"`
	Link  string `json:"link,omitempty" yaml:"link,omitempty"`
}

// CollectionResponse is a cursor-paginated list response.
type CollectionResponse[T any] struct {
	Total   int     `json:"total,omitempty"  yaml:"total,omitempty"`
	Results []T     `json:"results"          yaml:"results"`
	Paging  *Paging `json:"paging,omitempty" yaml:"paging,omitempty"`
}

// NextAfter returns the continuation token, or "" on the final page.
func (r *CollectionResponse[T]) NextAfter() string {
	if r == nil || r.Paging == nil || r.Paging.Next == nil {
		return ""
	}

	return r.Paging.Next.After
}

// SearchResponse is the response of a CRM search call.
type SearchResponse = CollectionResponse[Record]

// RecordID identifies a record in batch requests.
type RecordID struct {
	ID string `json:"id" yaml:"id"`
}

// BatchReadRequest is the body of a batch read call.
type BatchReadRequest struct {
	Inputs                []RecordID `json:"inputs"                          yaml:"inputs"`
	Properties            []string   `json:"properties,omitempty"            yaml:"properties,omitempty"`
	PropertiesWithHistory []string   `json:"propertiesWithHistory,omitempty" yaml:"properties_with_history,omitempty"`
	IDProperty            string     `json:"idProperty,omitempty"            yaml:"id_property,omitempty"`
}

// BatchResponse is the response of a batch call.
type BatchResponse struct {
	Status      string    `json:"status"              yaml:"status"`
	Results     []Record  `json:"results"             yaml:"results"`
	NumErrors   int       `json:"numErrors,omitempty" yaml:"num_errors,omitempty"`
	StartedAt   time.Time `json:"startedAt"           yaml:"started_at"`
	CompletedAt time.Time `json:"completedAt"         yaml:"completed_at"`
}

// RecordInput is the body of a create or update call.
type RecordInput struct {
	Properties Properties `json:"properties" yaml:"properties"`
}

// GDPRDeleteInput is the body of a contact GDPR purge.
type GDPRDeleteInput struct {
	ObjectID   string `json:"objectId"             yaml:"object_id"`
	IDProperty string `json:"idProperty,omitempty" yaml:"id_property,omitempty"`
}

// ObjectID is a record id. The v4 associations API sends ids as JSON
// numbers while the v3 objects API sends strings; both decode into ObjectID.
type ObjectID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *ObjectID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var text string

		err := json.Unmarshal(data, &text)
		if err != nil {
			return fmt.Errorf("decoding object id: %w", err)
		}

		*id = ObjectID(text)

		return nil
	}

	if string(data) == "null" {
		*id = ""

		return nil
	}

	var number json.Number

	err := json.Unmarshal(data, &number)
	if err != nil {
		return fmt.Errorf("decoding object id: %w", err)
	}

	*id = ObjectID(number.String())

	return nil
}

// String implements fmt.Stringer.
func (id ObjectID) String() string {
	return string(id)
}

// AssociationType describes the type of one association edge.
type AssociationType struct {
	Category string `json:"category"        yaml:"category"`
	TypeID   int    `json:"typeId"          yaml:"type_id"`
	Label    string `json:"label,omitempty" yaml:"label,omitempty"`
}

// Association is one edge from a record to a record of another type.
type Association struct {
	ToObjectID ObjectID          `json:"toObjectId"       yaml:"to_object_id"`
	Types      []AssociationType `json:"associationTypes" yaml:"association_types"`
}

// AssociationSpec is the body element of an association create call.
type AssociationSpec struct {
	AssociationCategory string `json:"associationCategory" yaml:"association_category"`
	AssociationTypeID   int    `json:"associationTypeId"   yaml:"association_type_id"`
}

// AssociationCreateResult is the response of an association create call.
type AssociationCreateResult struct {
	FromObjectTypeID string   `json:"fromObjectTypeId,omitempty" yaml:"from_object_type_id,omitempty"`
	FromObjectID     ObjectID `json:"fromObjectId,omitempty"     yaml:"from_object_id,omitempty"`
	ToObjectTypeID   string   `json:"toObjectTypeId,omitempty"   yaml:"to_object_type_id,omitempty"`
	ToObjectID       ObjectID `json:"toObjectId,omitempty"       yaml:"to_object_id,omitempty"`
	Labels           []string `json:"labels,omitempty"           yaml:"labels,omitempty"`
}

// Pipeline is an ordered workflow deals or tickets move through.
type Pipeline struct {
	ID           string          `json:"id"                   yaml:"id"`
	Label        string          `json:"label"                yaml:"label"`
	DisplayOrder int             `json:"displayOrder"         yaml:"display_order"`
	Stages       []PipelineStage `json:"stages"               yaml:"stages"`
	Archived     bool            `json:"archived"             yaml:"archived"`
	ObjectType   string          `json:"objectType,omitempty" yaml:"object_type,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"            yaml:"created_at"`
	UpdatedAt    time.Time       `json:"updatedAt"            yaml:"updated_at"`
}

// PipelineStage is a single stage within a pipeline.
type PipelineStage struct {
	ID           string            `json:"id"                 yaml:"id"`
	Label        string            `json:"label"              yaml:"label"`
	DisplayOrder int               `json:"displayOrder"       yaml:"display_order"`
	Metadata     map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Archived     bool              `json:"archived"           yaml:"archived"`
}

// Owner is a CRM user that records can be assigned to.
type Owner struct {
	ID        string    `json:"id"        yaml:"id"`
	Email     string    `json:"email"     yaml:"email"`
	FirstName string    `json:"firstName" yaml:"first_name"`
	LastName  string    `json:"lastName"  yaml:"last_name"`
	UserID    int       `json:"userId"    yaml:"user_id"`
	Archived  bool      `json:"archived"  yaml:"archived"`
	CreatedAt time.Time `json:"createdAt" yaml:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updated_at"`
}

// EmailEvent is one event from the email events API. The event payload
// differs per type so it is kept as a generic map.
type EmailEvent map[string]interface{}

// Created returns the event's creation time in epoch milliseconds.
func (e EmailEvent) Created() int64 {
	switch value := e["created"].(type) {
	case float64:
		return int64(value)
	case int64:
		return value
	case int:
		return int64(value)
	default:
		return 0
	}
}

// EmailEventsResponse is one page of the email events API, which pages by
// offset rather than by cursor.
type EmailEventsResponse struct {
	Events  []EmailEvent `json:"events"  yaml:"events"`
	HasMore bool         `json:"hasMore" yaml:"has_more"`
	Offset  string       `json:"offset"  yaml:"offset"`
}
