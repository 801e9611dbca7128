package client

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/hscrm/pkg/hscrm"
)

// servePaged answers search calls from records, pageSize at a time, using
// the record offset as the cursor.
func servePaged(t *testing.T, records []hscrm.Record) http.HandlerFunc {
	t.Helper()

	return func(w http.ResponseWriter, r *http.Request) {
		var req hscrm.SearchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)

			return
		}

		start := 0
		if req.After != "" {
			start, _ = strconv.Atoi(req.After)
		}

		end := min(start+req.Limit, len(records))
		start = min(start, end)

		after := ""
		if end < len(records) {
			after = strconv.Itoa(end)
		}

		writeJSON(w, http.StatusOK, searchPage(after, records[start:end]...))
	}
}

func numberedRecords(n int) []hscrm.Record {
	records := make([]hscrm.Record, n)
	for i := range records {
		records[i] = record(strconv.Itoa(i+1), hscrm.Properties{"hs_lastmodifieddate": strconv.Itoa(1000 + i)})
	}

	return records
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestObjectsClient_WalkBatching(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		total     int
		batchSize int
		want      []int
	}{
		{name: "uneven", total: 7, batchSize: 3, want: []int{3, 3, 1}},
		{name: "even", total: 6, batchSize: 3, want: []int{3, 3}},
		{name: "single page", total: 2, batchSize: 50, want: []int{2}},
		{name: "empty", total: 0, batchSize: 3, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			records := numberedRecords(tt.total)

			fake := newFakeCRM(t)
			fake.handle("POST /crm/v3/objects/tickets/search", servePaged(t, records))

			client, _ := fake.client()

			var (
				sizes []int
				seen  []string
			)

			for batch, err := range client.Tickets().ListAll(&hscrm.WalkOptions{BatchSize: tt.batchSize}).Batches(context.Background()) {
				require.NoError(t, err)
				require.NotEmpty(t, batch)

				sizes = append(sizes, len(batch))
				for _, rec := range batch {
					seen = append(seen, rec.ID)
				}
			}

			assert.Equal(t, tt.want, sizes)
			require.Len(t, seen, tt.total)

			for i, id := range seen {
				assert.Equal(t, strconv.Itoa(i+1), id)
			}
		})
	}
}

func TestObjectsClient_WalkRequest(t *testing.T) {
	t.Parallel()

	fake := newFakeCRM(t)
	fake.respond("POST /crm/v3/objects/tickets/search", http.StatusOK, searchPage(""))

	client, _ := fake.client()

	watermark := time.Date(2024, 3, 1, 12, 0, 0, 500_000_000, time.UTC)

	_, err := client.Tickets().ListAll(&hscrm.WalkOptions{
		Watermark:  hscrm.Watermark{Property: "hs_lastmodifieddate", Value: watermark},
		Properties: []string{"subject", "content"},
		PipelineID: "support",
		BatchSize:  25,
	}).All(context.Background())
	require.NoError(t, err)

	calls := fake.callsTo(http.MethodPost, "/crm/v3/objects/tickets/search")
	require.Len(t, calls, 1)

	assert.JSONEq(t, `{
		"filterGroups": [{"filters": [
			{"propertyName": "hs_lastmodifieddate", "operator": "GT", "value": 1709294400500},
			{"propertyName": "hs_pipeline", "operator": "EQ", "value": "support"}
		]}],
		"sorts": [{"propertyName": "hs_lastmodifieddate", "direction": "ASCENDING"}],
		"properties": ["subject", "content"],
		"limit": 25
	}`, string(calls[0].Body))
}

func TestObjectsClient_WalkDefaultWatermark(t *testing.T) {
	t.Parallel()

	fake := newFakeCRM(t)
	fake.respond("POST /crm/v3/objects/contacts/search", http.StatusOK, searchPage(""))

	client, _ := fake.client()

	_, err := client.Contacts().ListAll(nil).All(context.Background())
	require.NoError(t, err)

	calls := fake.callsTo(http.MethodPost, "/crm/v3/objects/contacts/search")
	require.Len(t, calls, 1)

	var req hscrm.SearchRequest
	calls[0].decode(t, &req)
	assert.Equal(t, 50, req.Limit)
	require.Len(t, req.FilterGroups, 1)
	require.Len(t, req.FilterGroups[0].Filters, 1)
	assert.Equal(t, "hs_lastmodifieddate", req.FilterGroups[0].Filters[0].PropertyName)
	assert.Equal(t, "GT", req.FilterGroups[0].Filters[0].Operator)
	assert.InDelta(t, 0, req.FilterGroups[0].Filters[0].Value, 0)
}

func TestObjectsClient_WalkStartsAtAfter(t *testing.T) {
	t.Parallel()

	records := numberedRecords(5)

	fake := newFakeCRM(t)
	fake.handle("POST /crm/v3/objects/emails/search", servePaged(t, records))

	client, _ := fake.client()

	all, err := client.Emails().ListAll(&hscrm.WalkOptions{BatchSize: 2, After: "3"}).All(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "4", all[0].ID)
	assert.Equal(t, "5", all[1].ID)
}

func TestObjectsClient_WalkIsLazy(t *testing.T) {
	t.Parallel()

	fake := newFakeCRM(t)
	fake.handle("POST /crm/v3/objects/companies/search", servePaged(t, numberedRecords(10)))

	client, _ := fake.client()

	paginator := client.Companies().ListAll(&hscrm.WalkOptions{BatchSize: 2})
	assert.Empty(t, fake.allCalls())

	for batch, err := range paginator.Batches(context.Background()) {
		require.NoError(t, err)
		assert.Len(t, batch, 2)

		break
	}

	assert.Len(t, fake.callsTo(http.MethodPost, "/crm/v3/objects/companies/search"), 1)
	assert.Equal(t, 1, paginator.PagesFetched())
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestObjectsClient_WalkRetry(t *testing.T) {
	t.Parallel()

	page1 := okResponse(searchPage("2", record("1", nil), record("2", nil)))
	page2 := okResponse(searchPage("", record("3", nil)))

	t.Run("recovers within the attempt budget", func(t *testing.T) {
		t.Parallel()

		fake := newFakeCRM(t)
		fake.sequence("POST /crm/v3/objects/contacts/search", gatewayTimeout(), gatewayTimeout(), page1, page2)

		client, sleeper := fake.client()

		all, err := client.Contacts().ListAll(&hscrm.WalkOptions{BatchSize: 2}).All(context.Background())
		require.NoError(t, err)
		assert.Len(t, all, 3)
		assert.Equal(t, []time.Duration{time.Minute, time.Minute}, sleeper.recorded())
		assert.Len(t, fake.callsTo(http.MethodPost, "/crm/v3/objects/contacts/search"), 4)
	})

	t.Run("fails on the third transient failure", func(t *testing.T) {
		t.Parallel()

		fake := newFakeCRM(t)
		fake.sequence("POST /crm/v3/objects/contacts/search", gatewayTimeout())

		client, sleeper := fake.client()

		_, err := client.Contacts().ListAll(nil).All(context.Background())
		require.ErrorIs(t, err, hscrm.ErrRetryAttemptsExhausted)
		assert.True(t, hscrm.IsTransient(err))
		assert.Len(t, fake.callsTo(http.MethodPost, "/crm/v3/objects/contacts/search"), 3)
		assert.Len(t, sleeper.recorded(), 2)
	})

	t.Run("budget is shared across pages", func(t *testing.T) {
		t.Parallel()

		fake := newFakeCRM(t)
		fake.sequence("POST /crm/v3/objects/contacts/search",
			gatewayTimeout(), page1, gatewayTimeout(), gatewayTimeout(), page2)

		client, _ := fake.client()

		paginator := client.Contacts().ListAll(&hscrm.WalkOptions{BatchSize: 2})

		first, err := paginator.Next(context.Background())
		require.NoError(t, err)
		assert.Len(t, first, 2)

		_, err = paginator.Next(context.Background())
		require.ErrorIs(t, err, hscrm.ErrRetryAttemptsExhausted)
		assert.Len(t, fake.callsTo(http.MethodPost, "/crm/v3/objects/contacts/search"), 4)
	})

	t.Run("non-transient errors are not retried", func(t *testing.T) {
		t.Parallel()

		fake := newFakeCRM(t)
		fake.respond("POST /crm/v3/objects/contacts/search", http.StatusBadRequest, map[string]string{
			"category": hscrm.CategoryValidationError,
			"message":  "Invalid input",
		})

		client, sleeper := fake.client()

		_, err := client.Contacts().ListAll(nil).All(context.Background())
		require.Error(t, err)
		require.NotErrorIs(t, err, hscrm.ErrRetryAttemptsExhausted)
		assert.Len(t, fake.callsTo(http.MethodPost, "/crm/v3/objects/contacts/search"), 1)
		assert.Empty(t, sleeper.recorded())
	})

	t.Run("each walk gets a fresh budget", func(t *testing.T) {
		t.Parallel()

		fake := newFakeCRM(t)
		fake.sequence("POST /crm/v3/objects/contacts/search",
			gatewayTimeout(), gatewayTimeout(), page2, gatewayTimeout(), gatewayTimeout(), page2)

		client, _ := fake.client()

		for range 2 {
			all, err := client.Contacts().ListAll(nil).All(context.Background())
			require.NoError(t, err)
			assert.Len(t, all, 1)
		}
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestDealsClient_TwoPhaseWalk(t *testing.T) {
	t.Parallel()

	t.Run("records follow search order", func(t *testing.T) {
		t.Parallel()

		fake := newFakeCRM(t)
		fake.respond("POST /crm/v3/objects/deals/search", http.StatusOK, searchPage("", record("3", nil), record("1", nil), record("2", nil)))
		fake.respond("POST /crm/v3/objects/deals/batch/read", http.StatusOK, hscrm.BatchResponse{
			Status: "COMPLETE",
			Results: []hscrm.Record{
				record("1", hscrm.Properties{"dealname": "one"}),
				record("2", hscrm.Properties{"dealname": "two"}),
				record("3", hscrm.Properties{"dealname": "three"}),
			},
		})

		client, _ := fake.client()

		deals, err := client.Deals().ListAll(&hscrm.WalkOptions{
			PipelineID:            "default",
			Properties:            []string{"dealname"},
			PropertiesWithHistory: []string{"dealstage"},
		}).All(context.Background())
		require.NoError(t, err)
		require.Len(t, deals, 3)
		assert.Equal(t, "three", deals[0].StringProperty("dealname"))
		assert.Equal(t, "one", deals[1].StringProperty("dealname"))
		assert.Equal(t, "two", deals[2].StringProperty("dealname"))

		searches := fake.callsTo(http.MethodPost, "/crm/v3/objects/deals/search")
		require.Len(t, searches, 1)

		var search hscrm.SearchRequest
		searches[0].decode(t, &search)
		assert.Empty(t, search.Properties)
		require.Len(t, search.FilterGroups[0].Filters, 2)
		assert.Equal(t, hscrm.Filter{PropertyName: "pipeline", Operator: "EQ", Value: "default"}, search.FilterGroups[0].Filters[1])

		reads := fake.callsTo(http.MethodPost, "/crm/v3/objects/deals/batch/read")
		require.Len(t, reads, 1)

		var read hscrm.BatchReadRequest
		reads[0].decode(t, &read)
		assert.Equal(t, []hscrm.RecordID{{ID: "3"}, {ID: "1"}, {ID: "2"}}, read.Inputs)
		assert.Equal(t, []string{"dealname"}, read.Properties)
		assert.Equal(t, []string{"dealstage"}, read.PropertiesWithHistory)
	})

	t.Run("mismatched batch read fails the page", func(t *testing.T) {
		t.Parallel()

		fake := newFakeCRM(t)
		fake.respond("POST /crm/v3/objects/deals/search", http.StatusOK, searchPage("", record("1", nil), record("2", nil)))
		fake.respond("POST /crm/v3/objects/deals/batch/read", http.StatusOK, hscrm.BatchResponse{
			Results: []hscrm.Record{record("1", nil)},
		})

		client, _ := fake.client()

		_, err := client.Deals().ListAll(nil).All(context.Background())
		require.ErrorIs(t, err, hscrm.ErrBatchReadMismatch)
	})

	t.Run("transient batch read failure retries the page", func(t *testing.T) {
		t.Parallel()

		fake := newFakeCRM(t)
		fake.respond("POST /crm/v3/objects/deals/search", http.StatusOK, searchPage("", record("1", nil)))
		fake.sequence("POST /crm/v3/objects/deals/batch/read",
			gatewayTimeout(),
			okResponse(hscrm.BatchResponse{Results: []hscrm.Record{record("1", nil)}}),
		)

		client, _ := fake.client()

		deals, err := client.Deals().ListAll(nil).All(context.Background())
		require.NoError(t, err)
		assert.Len(t, deals, 1)
		assert.Len(t, fake.callsTo(http.MethodPost, "/crm/v3/objects/deals/search"), 2)
		assert.Len(t, fake.callsTo(http.MethodPost, "/crm/v3/objects/deals/batch/read"), 2)
	})

	t.Run("empty search skips the batch read", func(t *testing.T) {
		t.Parallel()

		fake := newFakeCRM(t)
		fake.respond("POST /crm/v3/objects/deals/search", http.StatusOK, searchPage(""))

		client, _ := fake.client()

		deals, err := client.Deals().ListAll(nil).All(context.Background())
		require.NoError(t, err)
		assert.Empty(t, deals)
		assert.Empty(t, fake.callsTo(http.MethodPost, "/crm/v3/objects/deals/batch/read"))
	})
}

func TestDealsClient_Find(t *testing.T) {
	t.Parallel()

	t.Run("scoped to the configured pipeline", func(t *testing.T) {
		t.Parallel()

		fake := newFakeCRM(t)
		fake.respond("POST /crm/v3/objects/deals/search", http.StatusOK, searchPage("", record("7", nil)))

		client, _ := fake.client()

		deals, err := client.Deals().Find(context.Background(), "dealname", "Renewal")
		require.NoError(t, err)
		require.Len(t, deals, 1)

		calls := fake.callsTo(http.MethodPost, "/crm/v3/objects/deals/search")
		require.Len(t, calls, 1)

		var req hscrm.SearchRequest
		calls[0].decode(t, &req)
		assert.Equal(t, []hscrm.Filter{
			{PropertyName: "dealname", Operator: "EQ", Value: "Renewal"},
			{PropertyName: "pipeline", Operator: "EQ", Value: "default"},
		}, req.FilterGroups[0].Filters)
	})

	t.Run("requires a pipeline", func(t *testing.T) {
		t.Parallel()

		fake := newFakeCRM(t)
		client, _ := fake.client(func(config *hscrm.Config) { config.PipelineID = "" })

		_, err := client.Deals().Find(context.Background(), "dealname", "Renewal")
		require.ErrorIs(t, err, hscrm.ErrPipelineIDRequired)
		assert.Empty(t, fake.allCalls())
	})
}

func TestEmailsClient_CreateDefaultsTimestamp(t *testing.T) {
	t.Parallel()

	fake := newFakeCRM(t)
	fake.respond("POST /crm/v3/objects/emails", http.StatusCreated, record("55", nil))

	client, _ := fake.client()
	client.emails.now = func() time.Time { return time.UnixMilli(1700000000123) }

	_, err := client.Emails().Create(context.Background(), hscrm.Properties{"hs_email_subject": "Hello"})
	require.NoError(t, err)

	_, err = client.Emails().Create(context.Background(), hscrm.Properties{"hs_timestamp": "42"})
	require.NoError(t, err)

	calls := fake.callsTo(http.MethodPost, "/crm/v3/objects/emails")
	require.Len(t, calls, 2)

	var first, second hscrm.RecordInput
	calls[0].decode(t, &first)
	calls[1].decode(t, &second)
	assert.Equal(t, "1700000000123", first.Properties["hs_timestamp"])
	assert.Equal(t, "42", second.Properties["hs_timestamp"])
}

func TestCompaniesClient_ArchiveAndCreate(t *testing.T) {
	t.Parallel()

	fake := newFakeCRM(t)
	fake.respond("DELETE /crm/v3/objects/companies/{id}", http.StatusNoContent, nil)
	fake.respond("POST /crm/v3/objects/companies", http.StatusCreated, record("9", nil))

	client, _ := fake.client()

	require.NoError(t, client.Companies().Archive(context.Background(), "9"))
	assert.Len(t, fake.callsTo(http.MethodDelete, "/crm/v3/objects/companies/9"), 1)

	_, err := client.Companies().Create(context.Background(), &hscrm.CompanyInput{Name: "Acme"})
	require.NoError(t, err)

	var body hscrm.RecordInput
	fake.callsTo(http.MethodPost, "/crm/v3/objects/companies")[0].decode(t, &body)
	assert.Equal(t, hscrm.Properties{"name": "Acme"}, body.Properties)
}
