// Package hscrm provides the types and building blocks of a HubSpot CRM
// client: records, search filters, the cursor paginator, the transient
// retry supervisor and the pipeline-stage cache.
//
// Most users create a client with crmclient.New and work with the
// per-record-type clients it returns:
//
//	client, err := crmclient.New(ctx, &hscrm.Config{
//		AccessToken: os.Getenv("HUBSPOT_ACCESS_TOKEN"),
//		PipelineID:  os.Getenv("HUBSPOT_PIPELINE_ID"),
//	})
//	if err != nil {
//		return err
//	}
//
//	contacts, err := client.Contacts().Find(ctx, "email", "jane@example.com")
//
// # Walking records
//
// ListAll returns a lazy Paginator. Each call to Next fetches one server
// page, so stopping early never requests the remaining pages:
//
//	tickets := client.Tickets().ListAll(&hscrm.WalkOptions{
//		Watermark: hscrm.Watermark{Property: "hs_lastmodifieddate", Value: lastSync},
//	})
//	for batch, err := range tickets.Batches(ctx) {
//		if err != nil {
//			return err
//		}
//		process(batch)
//	}
//
// Walks are sorted ascending by the watermark property, so the last record
// of a batch is a safe watermark to resume from after a restart.
//
// # Retries
//
// Gateway timeouts and request timeouts are retried with a fixed backoff by
// a RetrySupervisor. A walk shares one attempt budget across all its pages
// and a retry only re-requests the page that failed.
//
// # Eventual consistency
//
// The CRM applies some side effects asynchronously, most notably the
// automatic company association of a new contact. Workflows poll for those
// effects within the bounds of ConsistencyConfig instead of sleeping blindly.
package hscrm
