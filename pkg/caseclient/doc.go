// Package caseclient is the entry point for building a case-management API
// client that implements the caseapi.Client interface.
//
// It normalises and validates a caseapi.Config, picks the token manager and
// token cache, and wires the HTTP transport behind the resource clients
// defined in the caseapi package.
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/caseapi-client/pkg/caseapi"
//	  "github.com/fivetwenty-io/caseapi-client/pkg/caseclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  // With a token you already have:
//	  cli, err := caseclient.NewWithToken(ctx, "api.example.com/api/rest", "eyJhbGciOi...")
//
//	  // Or exchanging an API key for a token on every request:
//	  cli, err = caseclient.New(ctx, &caseapi.Config{
//	    APIEndpoint: "https://api.example.com/api/rest",
//	    TokenURL:    "https://auth.example.com/token",
//	    APIKey:      "key",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  // Walk every page of an action's open tasks:
//	  tasks, err := cli.Tasks().List(ctx, caseapi.NewQueryParams().
//	    WithFilter(caseapi.And(caseapi.Eq("action", caseapi.ID("123")), caseapi.Eq("status", "Incomplete"))).
//	    All())
//	  if err != nil { log.Fatal(err) }
//	  _ = tasks
//	}
//
// # Token caching
//
// Tokens are fetched per request unless Config.CacheTokens is set. The cache
// backend is chosen by Config.TokenCache; TokenCacheFromURL builds one from
// "memory", "none", "redis://..." or "nats://..." so several processes can
// share a token through Redis or a NATS KV bucket.
package caseclient
