// Package pageseeder provides types, interfaces, and helpers for working with
// the PageSeeder service API.
//
// # Overview
//
// The package defines the DTOs returned by the services (Group, URI,
// URIHistory, Thread, SearchResultPage, Upload) and the interfaces of the
// resource clients (GroupsClient, FragmentsClient, SearchClient, ...). The
// concrete implementation is built by the psclient package, which wires
// configuration, transport, retries and authentication:
//
//	cli, err := psclient.New(&pageseeder.Config{
//	  BaseURL:      "https://ps.example.com",
//	  ClientID:     "id",
//	  ClientSecret: "secret",
//	})
//	if err != nil { log.Fatal(err) }
//
//	frag, err := cli.Fragments().Get(ctx, "jdoe", "docs", "1234", "2", nil)
//
// Fragment bodies are psml.Element values; see the psml package for the
// markup model and codec.
//
// # Pagination
//
// List operations are exposed as lazy iterators over pages fetched on demand:
//
//	it := cli.Search().Iterator(ctx, "docs", pageseeder.NewQueryParams().WithFilter("question", "install"))
//	for it.HasNext() {
//	  hit, err := it.Next()
//	  if err != nil { break }
//	  _ = hit
//	}
//
// Iterating again re-issues the requests from the first page.
//
// # Errors
//
// Failures are reported as one of APIError, AuthError, InvalidRequestError,
// MalformedResponseError, TimeoutError or TransportError. Helpers such as
// IsNotFound, IsTimeout and IsRetryable branch on them without type
// assertions.
package pageseeder
