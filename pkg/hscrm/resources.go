package hscrm

import (
	"context"
)

// WalkOptions configures a full high-watermark walk over a record type.
type WalkOptions struct {
	// Watermark is the lower bound; the zero value walks everything.
	Watermark Watermark
	// Properties limits the returned properties. Empty returns the defaults.
	Properties []string
	// PropertiesWithHistory requests property history (deals only).
	PropertiesWithHistory []string
	// PipelineID restricts the walk to one pipeline (deals and tickets).
	PipelineID string
	// BatchSize is the page size. Defaults to 50.
	BatchSize int
	// After is the starting token.
	After string
}

// ContactInput holds the fields for a new contact.
type ContactInput struct {
	Email      string
	FirstName  string
	LastName   string
	Properties Properties
}

// CompanyInput holds the fields for a new company.
type CompanyInput struct {
	Name       string
	Domain     string
	Properties Properties
}

// DealInput holds the fields for a new deal. An empty Stage means the first
// stage of the configured pipeline.
type DealInput struct {
	Name       string
	Stage      string
	CompanyID  string
	ContactID  string
	Properties Properties
}

// ContactWithCompanyInput holds the fields for creating a contact together
// with its company.
type ContactWithCompanyInput struct {
	Contact     ContactInput
	CompanyName string
}

// WorkflowState is a state of a create-and-associate workflow.
type WorkflowState string

// Workflow states.
const (
	WorkflowCreatingPrimary     WorkflowState = "CREATING_PRIMARY"
	WorkflowAwaitingConsistency WorkflowState = "AWAITING_CONSISTENCY"
	WorkflowResolvingRelation   WorkflowState = "RESOLVING_RELATION"
	WorkflowAssociating         WorkflowState = "ASSOCIATING"
	WorkflowLinked              WorkflowState = "LINKED"
	WorkflowCreatedAndLinked    WorkflowState = "CREATED_AND_LINKED"
	WorkflowCreated             WorkflowState = "CREATED"
	WorkflowFailed              WorkflowState = "FAILED"
)

// ContactWithCompanyResult is the outcome of CreateContactWithCompany.
type ContactWithCompanyResult struct {
	WorkflowID string
	State      WorkflowState
	Contact    *Record
	// Company is the created or back-filled company. It is nil when an
	// auto-linked company already had a name.
	Company *Record
	// CompanyID is set whenever a company is linked to the contact.
	CompanyID   string
	Association *AssociationCreateResult
}

// DealResult is the outcome of CreateDeal.
type DealResult struct {
	WorkflowID   string
	State        WorkflowState
	Deal         *Record
	Associations []AssociationCreateResult
}

// ContactsClient defines operations on contacts.
type ContactsClient interface {
	Create(ctx context.Context, input *ContactInput) (*Record, error)
	Find(ctx context.Context, property string, value interface{}) ([]Record, error)
	Update(ctx context.Context, id string, properties Properties) (*Record, error)
	Purge(ctx context.Context, value, idProperty string) error
	ListAll(opts *WalkOptions) *Paginator[Record]
	Associations(ctx context.Context, id string, to RecordType) ([]Association, error)
}

// CompaniesClient defines operations on companies.
type CompaniesClient interface {
	Create(ctx context.Context, input *CompanyInput) (*Record, error)
	Find(ctx context.Context, property string, value interface{}) ([]Record, error)
	Update(ctx context.Context, id string, properties Properties) (*Record, error)
	Archive(ctx context.Context, id string) error
	ListAll(opts *WalkOptions) *Paginator[Record]
	Associations(ctx context.Context, id string, to RecordType) ([]Association, error)
}

// DealsClient defines operations on deals.
type DealsClient interface {
	Create(ctx context.Context, input *DealInput) (*Record, error)
	Find(ctx context.Context, property string, value interface{}) ([]Record, error)
	Update(ctx context.Context, id string, properties Properties) (*Record, error)
	Archive(ctx context.Context, id string) error
	ListAll(opts *WalkOptions) *Paginator[Record]
	Associations(ctx context.Context, id string, to RecordType) ([]Association, error)
}

// TicketsClient defines operations on tickets.
type TicketsClient interface {
	Create(ctx context.Context, properties Properties) (*Record, error)
	Archive(ctx context.Context, id string) error
	ListAll(opts *WalkOptions) *Paginator[Record]
}

// EmailsClient defines operations on email engagements.
type EmailsClient interface {
	Create(ctx context.Context, properties Properties) (*Record, error)
	Archive(ctx context.Context, id string) error
	ListAll(opts *WalkOptions) *Paginator[Record]
}

// OwnerLookupKey selects how Find looks an owner up.
type OwnerLookupKey string

// Owner lookup keys.
const (
	OwnerLookupID    OwnerLookupKey = "id"
	OwnerLookupEmail OwnerLookupKey = "email"
)

// OwnersClient defines operations on owners.
type OwnersClient interface {
	Get(ctx context.Context, id string) (*Owner, error)
	FindByEmail(ctx context.Context, email string) (*Owner, error)
	Find(ctx context.Context, key OwnerLookupKey, value string) (*Owner, error)
	List(pageSize int) *Paginator[Owner]
}

// PipelinesClient defines operations on pipelines.
type PipelinesClient interface {
	PipelineID() (string, error)
	Stages(ctx context.Context, objectType, pipelineID string) ([]PipelineStage, error)
	DefaultDealStage(ctx context.Context) (*PipelineStage, error)
	List(ctx context.Context, objectType string) ([]Pipeline, error)
	Details(ctx context.Context, pipelineID string, all bool) ([]Pipeline, error)
}

// AssociationsClient defines operations on associations.
type AssociationsClient interface {
	List(ctx context.Context, from RecordType, fromID string, to RecordType) ([]Association, error)
	Pages(from RecordType, fromID string, to RecordType) *Paginator[Association]
	Create(ctx context.Context, from RecordType, fromID string, to RecordType, toID string) (*AssociationCreateResult, error)
}

// EmailEventOptions configures an email events walk.
type EmailEventOptions struct {
	// StartTimestamp only returns events after this epoch-millisecond time.
	StartTimestamp int64
	// BatchSize is the page size. Defaults to 10.
	BatchSize int
	// Offset is the starting offset token.
	Offset string
}

// EmailEventsClient defines operations on the email events API.
type EmailEventsClient interface {
	ListAll(opts *EmailEventOptions) *Paginator[EmailEvent]
}

// WorkflowsClient runs multi-step, eventually-consistent mutations.
type WorkflowsClient interface {
	CreateContactWithCompany(ctx context.Context, input *ContactWithCompanyInput) (*ContactWithCompanyResult, error)
	CreateDeal(ctx context.Context, input *DealInput) (*DealResult, error)
}
