// Package psclient provides the primary entry point for constructing a
// PageSeeder service API client that implements the pageseeder.Client
// interface.
//
// It layers configuration, the retrying HTTP pipeline and the OAuth2 session
// on top of the resource interfaces and types defined in the pageseeder
// package. Fragment content is exchanged as psml elements.
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/psclient/pkg/pageseeder"
//	  "github.com/fivetwenty-io/psclient/pkg/psclient"
//	  "github.com/fivetwenty-io/psclient/pkg/psml"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  cli, err := psclient.New(ctx, &pageseeder.Config{
//	    BaseURL:      "ps.example.com", // becomes https://ps.example.com
//	    ClientID:     "client-id",
//	    ClientSecret: "client-secret",
//	  })
//	  if err != nil { log.Fatal(err) }
//	  defer cli.Close()
//
//	  frag, err := cli.Fragments().Get(ctx, "jdoe", "acme-docs", "1234", "2", nil)
//	  if err != nil { log.Fatal(err) }
//	  log.Println(psml.TextContent(frag.Fragment))
//
//	  // Walk every search result across pages.
//	  it := cli.Search().Iterator(ctx, "acme-docs",
//	    pageseeder.NewQueryParams().WithFilter("question", "guide"))
//	  for it.HasNext() {
//	    result, err := it.Next()
//	    if err != nil { log.Fatal(err) }
//	    title, _ := result.Field("title")
//	    log.Println(title)
//	  }
//	}
//
// Errors
//
// Use the helpers in pageseeder to classify failures: IsNotFound,
// IsUnauthorized, IsInvalidRequest, IsMalformedResponse, IsTimeout and
// IsTransport. Caller cancellation is returned as context.Canceled.
package psclient
