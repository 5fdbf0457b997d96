// Package integrations provides HTTP clients for package registry APIs.
//
// # Overview
//
// This package contains low-level API clients for fetching release metadata
// from package registries. Each registry has its own subpackage:
//
//   - [pypi]: Python Package Index
//   - [npm]: Node Package Manager
//   - [crates]: Rust crates.io
//   - [rubygems]: Ruby gems
//   - [maven]: Java Maven Central
//   - [goproxy]: Go Module Proxy
//   - [github]: GitHub API for repository metadata
//
// # Client Pattern
//
// Registry clients follow a consistent pattern:
//
//	client := pypi.NewClient(c, 24*time.Hour)
//	rel, err := client.FetchRelease(ctx, "fastapi", "0.104.1", false)  // false = use cache
//
// and return an [Release] whatever the registry's response looks like.
//
// # Shared Infrastructure
//
// The [Client] type provides shared HTTP functionality used by all registry
// clients:
//
//   - response caching via [cache.Cache], keyed per registry namespace
//   - retries with backoff for network errors, 5xx and 429 responses
//   - a token-bucket rate limit ([Client.SetRateLimit])
//   - de-duplication of concurrent fetches of the same key
//   - request and cache hooks reported through [observability]
//
// # Adding a New Registry
//
// To add support for a new package registry:
//
//  1. Create a subpackage: pkg/integrations/<registry>/
//  2. Define response structs matching the API schema
//  3. Implement a Client with a FetchRelease method returning a [Release]
//  4. Use [NewClient] for HTTP with caching
//  5. Wire it into [harvest] as a Source
//
// [pypi]: github.com/philips-software/bom-base-sub000/pkg/integrations/pypi
// [npm]: github.com/philips-software/bom-base-sub000/pkg/integrations/npm
// [crates]: github.com/philips-software/bom-base-sub000/pkg/integrations/crates
// [rubygems]: github.com/philips-software/bom-base-sub000/pkg/integrations/rubygems
// [maven]: github.com/philips-software/bom-base-sub000/pkg/integrations/maven
// [goproxy]: github.com/philips-software/bom-base-sub000/pkg/integrations/goproxy
// [github]: github.com/philips-software/bom-base-sub000/pkg/integrations/github
// [cache.Cache]: github.com/philips-software/bom-base-sub000/pkg/cache.Cache
// [observability]: github.com/philips-software/bom-base-sub000/pkg/observability
// [harvest]: github.com/philips-software/bom-base-sub000/pkg/harvest
package integrations
