// Package rest provides a schema-less fluent client for HTTP APIs.
//
// # Overview
//
// The package is built around two types. Client holds a base URL, an
// authentication strategy, and a dispatch timeout. Path is an immutable
// chain of URL steps grown from a client; every builder call returns a new
// step, so partial chains can be stored and extended in different
// directions without interfering with each other.
//
// Building and dispatching
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/konverso-ai/kbot-installer/pkg/rest"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  client, err := rest.New(&rest.Config{BaseURL: "https://api.example.com"})
//	  if err != nil { log.Fatal(err) }
//
//	  resp, err := client.Path("api", "v1", "users").
//	    Param(123).
//	    Path("posts").
//	    Query("sort", "date").
//	    Query("limit", 10).
//	    Get(ctx)
//	  if err != nil { log.Fatal(err) }
//	  _ = resp
//	}
//
// The chain above resolves to
// https://api.example.com/api/v1/users/123/posts?sort=date&limit=10 and the
// dispatch performs exactly one network call. Resolution never consumes the
// chain; dispatching the same step twice produces the same URL.
//
// # Query parameters
//
// Query parameters serialize in the order they were first attached.
// Reattaching a key replaces its value without moving it, and when partial
// chains merge, values attached closer to the leaf win. QueryMap applies
// its entries in sorted key order so a map literal always serializes the
// same way.
//
// # Authentication
//
// Credentials are applied per dispatch by an Auth strategy: NoAuth,
// BasicAuth, BearerAuth, or APIKeyAuth (header or query placement).
// Strategies are pure; applying one never mutates the client or the chain.
//
// # Errors
//
// Failed dispatches return typed errors. TimeoutError means the request ran
// out of time and carries no response. AuthenticationError covers 401 and
// 403 as well as locally unapplicable credentials. HTTPError is the
// catch-all and keeps the status code and response body. Invalid chains
// (empty segments, a parameter bound twice) carry a PathError from the
// moment they are built and report it on Resolve or dispatch without
// touching the network. Helpers IsTimeout, IsAuthentication, IsNotFound,
// and AsHTTPError make it easy to branch on these cases.
package rest
