//go:build integration

package integration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID         string                 `json:"id"`
	Properties map[string]interface{} `json:"properties"`
}

type contactWithCompany struct {
	State     string  `json:"State"`
	Contact   *record `json:"Contact"`
	CompanyID string  `json:"CompanyID"`
}

type dealResult struct {
	State string  `json:"State"`
	Deal  *record `json:"Deal"`
}

// TestContactWorkflow_CreateFindAssociatePurge creates a contact with a
// company, finds it by email, checks the company link and purges it.
func TestContactWorkflow_CreateFindAssociatePurge(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	runner := NewCommandRunner(config, t)
	email := GenerateTestEmail("contact")
	companyName := GenerateTestName("Integration Co")

	var result contactWithCompany
	require.NoError(t, runner.RunJSON(&result, "contacts", "create",
		"--email", email, "--first-name", "Integration", "--last-name", "Test",
		"--company", companyName))

	require.NotNil(t, result.Contact)
	assert.Contains(t, []string{"LINKED", "CREATED_AND_LINKED"}, result.State)
	require.NotEmpty(t, result.CompanyID)

	defer runner.CleanupRecord("companies", result.CompanyID)
	defer func() {
		_, _, _ = runner.Run("contacts", "delete", result.Contact.ID)
	}()

	// Search indexing lags behind creates.
	WaitForCondition(t, func() bool {
		var found []record

		return runner.RunJSON(&found, "contacts", "find", "email", email) == nil && len(found) == 1
	}, time.Minute, "contact to become searchable")

	var associations []map[string]interface{}
	require.NoError(t, runner.RunJSON(&associations, "associations", "list", "contact", result.Contact.ID, "company"))
	assert.NotEmpty(t, associations)
}

// TestDealWorkflow_CreateListArchive creates a deal in the first stage,
// walks the pipeline for it and archives it.
func TestDealWorkflow_CreateListArchive(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)
	config.SkipIfNoPipeline(t)

	runner := NewCommandRunner(config, t)
	started := time.Now().UTC().Add(-time.Minute)

	var result dealResult
	require.NoError(t, runner.RunJSON(&result, "deals", "create",
		"--name", GenerateTestName("Integration Deal"), "--prop", "amount=100"))

	require.NotNil(t, result.Deal)
	assert.Equal(t, "CREATED", result.State)

	defer runner.CleanupRecord("deals", result.Deal.ID)

	WaitForCondition(t, func() bool {
		var deals []record
		if runner.RunJSON(&deals, "deals", "list-all", "--since", started.Format(time.RFC3339)) != nil {
			return false
		}

		for _, deal := range deals {
			if deal.ID == result.Deal.ID {
				return true
			}
		}

		return false
	}, time.Minute, "deal to appear in the pipeline walk")
}

// TestEngagementWorkflow_CreateArchive creates and archives a ticket and an
// email.
func TestEngagementWorkflow_CreateArchive(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	runner := NewCommandRunner(config, t)

	var ticket record
	require.NoError(t, runner.RunJSON(&ticket, "tickets", "create",
		"--prop", "subject="+GenerateTestName("Integration Ticket"),
		"--prop", "hs_pipeline=0", "--prop", "hs_pipeline_stage=1"))
	require.NotEmpty(t, ticket.ID)

	_, stderr, err := runner.Run("tickets", "delete", ticket.ID)
	require.NoError(t, err, stderr)

	var email record
	require.NoError(t, runner.RunJSON(&email, "emails", "create",
		"--prop", "hs_email_subject="+GenerateTestName("Integration Email"),
		"--prop", "hs_email_direction=EMAIL"))
	require.NotEmpty(t, email.ID)

	_, stderr, err = runner.Run("emails", "delete", email.ID)
	require.NoError(t, err, stderr)
}

// TestMetadata_OwnersAndPipelines reads the portal's owners and pipelines.
func TestMetadata_OwnersAndPipelines(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	runner := NewCommandRunner(config, t)

	var owners []map[string]interface{}
	require.NoError(t, runner.RunJSON(&owners, "owners", "list"))

	var pipelines []map[string]interface{}
	require.NoError(t, runner.RunJSON(&pipelines, "pipelines", "show", "--all"))
	assert.NotEmpty(t, pipelines)

	_, _, err := runner.Run("owners", "find", "name", "anything")
	require.Error(t, err)
}
