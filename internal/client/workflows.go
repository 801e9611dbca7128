package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/hscrm/internal/constants"
	"github.com/fivetwenty-io/hscrm/pkg/hscrm"
	"github.com/google/uuid"
)

// WorkflowsClient implements hscrm.WorkflowsClient. Each run gets a
// workflow id that is logged with every state transition.
type WorkflowsClient struct {
	contacts     *ContactsClient
	companies    *CompaniesClient
	deals        *DealsClient
	pipelines    *PipelinesClient
	associations *AssociationsClient
	settings     *settings
	logger       hscrm.Logger
	newID        func() string
}

// NewWorkflowsClient creates a new workflows client.
func NewWorkflowsClient(
	contacts *ContactsClient,
	companies *CompaniesClient,
	deals *DealsClient,
	pipelines *PipelinesClient,
	associations *AssociationsClient,
	settings *settings,
	logger hscrm.Logger,
) *WorkflowsClient {
	return &WorkflowsClient{
		contacts:     contacts,
		companies:    companies,
		deals:        deals,
		pipelines:    pipelines,
		associations: associations,
		settings:     settings,
		logger:       logger,
		newID:        uuid.NewString,
	}
}

// run tracks the state of one workflow execution.
type run struct {
	id       string
	workflow string
	state    hscrm.WorkflowState
	logger   hscrm.Logger
}

func (w *WorkflowsClient) start(workflow string) *run {
	r := &run{id: w.newID(), workflow: workflow, logger: w.logger}
	r.enter(hscrm.WorkflowCreatingPrimary, nil)

	return r
}

func (r *run) enter(state hscrm.WorkflowState, fields map[string]interface{}) {
	r.state = state

	entry := map[string]interface{}{
		"workflow_id": r.id,
		"workflow":    r.workflow,
		"state":       string(state),
	}
	for key, value := range fields {
		entry[key] = value
	}

	r.logger.Info("workflow transition", entry)
}

func (r *run) fail(err error) error {
	r.enter(hscrm.WorkflowFailed, map[string]interface{}{"error": err.Error()})

	return err
}

// CreateContactWithCompany implements hscrm.WorkflowsClient.CreateContactWithCompany.
//
// The contact is created with the company name as a hint property. The CRM
// may then associate a company on its own, typically one derived from the
// email domain. When such a company shows up it is kept, and its name is
// filled in if it has none. Otherwise the company is created and linked
// explicitly.
func (w *WorkflowsClient) CreateContactWithCompany(ctx context.Context, input *hscrm.ContactWithCompanyInput) (*hscrm.ContactWithCompanyResult, error) {
	if input == nil {
		return nil, hscrm.ErrInputRequired
	}

	r := w.start("create_contact_with_company")
	result := &hscrm.ContactWithCompanyResult{WorkflowID: r.id}

	defer func() { result.State = r.state }()

	contactInput := input.Contact
	contactInput.Properties = hscrm.Properties{}

	for key, value := range input.Contact.Properties {
		contactInput.Properties[key] = value
	}

	contactInput.Properties[constants.PropertyContactCompany] = input.CompanyName

	contact, err := w.contacts.Create(ctx, &contactInput)
	if err != nil {
		return result, r.fail(err)
	}

	if contact.ID == "" {
		return result, r.fail(hscrm.ErrContactCreateIncomplete)
	}

	result.Contact = contact

	r.enter(hscrm.WorkflowAwaitingConsistency, map[string]interface{}{"contact_id": contact.ID})

	var linked []hscrm.Association

	_, err = awaitConsistency(ctx, w.settings.consistency, func(ctx context.Context) (bool, error) {
		associations, err := w.associations.List(ctx, hscrm.RecordTypeContact, contact.ID, hscrm.RecordTypeCompany)
		if err != nil {
			return false, err
		}

		linked = associations

		return len(associations) > 0, nil
	})
	if err != nil {
		return result, r.fail(fmt.Errorf("checking company associations of contact %s: %w", contact.ID, err))
	}

	r.enter(hscrm.WorkflowResolvingRelation, map[string]interface{}{"linked_companies": len(linked)})

	if len(linked) > 0 {
		err = w.backfillCompanyName(ctx, result, linked[0].ToObjectID.String(), input.CompanyName)
		if err != nil {
			return result, r.fail(err)
		}

		r.enter(hscrm.WorkflowLinked, map[string]interface{}{"company_id": result.CompanyID})

		return result, nil
	}

	company, err := w.companies.Create(ctx, &hscrm.CompanyInput{Name: input.CompanyName})
	if err != nil {
		return result, r.fail(err)
	}

	result.Company = company
	result.CompanyID = company.ID

	r.enter(hscrm.WorkflowAssociating, map[string]interface{}{"company_id": company.ID})

	association, err := w.associations.Create(ctx, hscrm.RecordTypeContact, contact.ID, hscrm.RecordTypeCompany, company.ID)
	if err != nil {
		return result, r.fail(err)
	}

	result.Association = association

	r.enter(hscrm.WorkflowCreatedAndLinked, map[string]interface{}{"company_id": company.ID})

	return result, nil
}

// backfillCompanyName names an auto-linked company that has no name yet.
// The company is read by id; the search index may not list it yet.
func (w *WorkflowsClient) backfillCompanyName(ctx context.Context, result *hscrm.ContactWithCompanyResult, companyID, name string) error {
	result.CompanyID = companyID

	company, err := hscrm.Retry(ctx, w.settings.retry, w.logger, "reading linked company", func(ctx context.Context) (*hscrm.Record, error) {
		return w.companies.get(ctx, companyID)
	})
	if err != nil {
		return fmt.Errorf("reading company %s linked to the contact: %w", companyID, err)
	}

	if company.StringProperty(constants.PropertyCompanyName) != "" {
		return nil
	}

	updated, err := w.companies.Update(ctx, companyID, hscrm.Properties{constants.PropertyCompanyName: name})
	if err != nil {
		return err
	}

	result.Company = updated

	return nil
}

// CreateDeal implements hscrm.WorkflowsClient.CreateDeal.
//
// The deal is created in the configured pipeline, at the given stage or at
// the pipeline's first stage. Requested company and contact associations
// are created once the deal is visible; they are not checked first.
func (w *WorkflowsClient) CreateDeal(ctx context.Context, input *hscrm.DealInput) (*hscrm.DealResult, error) {
	if input == nil {
		return nil, hscrm.ErrInputRequired
	}

	pipelineID, err := w.settings.requirePipelineID()
	if err != nil {
		return nil, err
	}

	r := w.start("create_deal")
	result := &hscrm.DealResult{WorkflowID: r.id}

	defer func() { result.State = r.state }()

	stage := input.Stage
	if stage == "" {
		defaultStage, err := w.pipelines.DefaultDealStage(ctx)
		if err != nil {
			return result, r.fail(err)
		}

		stage = defaultStage.ID
	}

	properties := hscrm.Properties{constants.PropertyDealPipeline: pipelineID}
	for key, value := range input.Properties {
		properties[key] = value
	}

	properties[constants.PropertyDealName] = input.Name
	properties[constants.PropertyDealStage] = stage

	deal, err := w.deals.create(ctx, properties)
	if err != nil {
		return result, r.fail(err)
	}

	result.Deal = deal

	if input.CompanyID == "" && input.ContactID == "" {
		r.enter(hscrm.WorkflowCreated, map[string]interface{}{"deal_id": deal.ID})

		return result, nil
	}

	r.enter(hscrm.WorkflowAwaitingConsistency, map[string]interface{}{"deal_id": deal.ID})

	visible, err := awaitConsistency(ctx, w.settings.consistency, func(ctx context.Context) (bool, error) {
		_, err := w.deals.get(ctx, deal.ID)
		if hscrm.IsNotFound(err) || hscrm.IsTransient(err) {
			return false, nil
		}

		return err == nil, err
	})
	if err != nil {
		return result, r.fail(err)
	}

	if !visible {
		return result, r.fail(fmt.Errorf("deal %s: %w", deal.ID, hscrm.ErrConsistencyTimeout))
	}

	r.enter(hscrm.WorkflowAssociating, map[string]interface{}{"deal_id": deal.ID})

	targets := []struct {
		recordType hscrm.RecordType
		id         string
	}{
		{hscrm.RecordTypeCompany, input.CompanyID},
		{hscrm.RecordTypeContact, input.ContactID},
	}

	for _, target := range targets {
		if target.id == "" {
			continue
		}

		association, err := w.associations.Create(ctx, hscrm.RecordTypeDeal, deal.ID, target.recordType, target.id)
		if err != nil {
			return result, r.fail(err)
		}

		result.Associations = append(result.Associations, *association)
	}

	r.enter(hscrm.WorkflowLinked, map[string]interface{}{"deal_id": deal.ID})

	return result, nil
}
