// Package npm provides an HTTP client for the npm registry API.
//
// # Overview
//
// This package fetches version metadata from the npm registry
// (https://registry.npmjs.org), the package manager for JavaScript.
//
// # Usage
//
//	client := npm.NewClient(c, 24*time.Hour)
//	rel, err := client.FetchRelease(ctx, "express", "4.18.2", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(rel.DownloadURL, rel.SHA512)
//
// # Release
//
// [Client.FetchRelease] maps the version document onto an
// [integrations.Release]: description, license, repository and homepage
// from package.json, the tarball URL and shasum from "dist", and the
// SHA-512 digest decoded from the "integrity" field.
//
// # Caching
//
// Responses are cached to reduce load on the registry. The cache TTL is set
// when creating the client. Pass refresh=true to bypass the cache.
package npm
