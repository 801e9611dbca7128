// Package crmclient provides the primary entry point for constructing a
// HubSpot CRM client that implements the hscrm.Client interface.
//
// It layers configuration, HTTP transport and authentication on top of the
// resource interfaces and types defined in the hscrm package. Most
// applications import crmclient to build a client, then use the returned
// hscrm.Client to reach the per-record-type clients, for example
// Contacts(), Deals() or Owners().
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//	  "os"
//
//	  "github.com/fivetwenty-io/hscrm/pkg/crmclient"
//	  "github.com/fivetwenty-io/hscrm/pkg/hscrm"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  cli, err := crmclient.New(ctx, &hscrm.Config{
//	    AccessToken: os.Getenv("HUBSPOT_ACCESS_TOKEN"),
//	    PipelineID:  "default",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  deal, err := cli.Deals().Create(ctx, &hscrm.DealInput{Name: "Renewal"})
//	  if err != nil { log.Fatal(err) }
//	  _ = deal
//	}
//
// # Shared stage cache
//
// Deal creation reads the pipeline's stages, which are cached in memory by
// default. Processes that create many deals can share the cache through a
// NATS JetStream key-value bucket:
//
//	cache, err := hscrm.NewCacheFromConfig(ctx, &hscrm.CacheConfig{
//	  Type: hscrm.CacheTypeNATS,
//	  NATS: &hscrm.NATSKVConfig{URL: "nats://127.0.0.1:4222"},
//	})
//
// and passing it as Config.Cache.
//
// # Helpers
//
// NewWithToken and NewWithPipeline wrap New with the matching configuration.
package crmclient
