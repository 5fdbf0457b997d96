// Package goproxy provides an HTTP client for the Go Module Proxy.
//
// # Overview
//
// This package resolves module versions against the Go Module Proxy
// (https://proxy.golang.org), the default proxy for Go modules.
//
// # Usage
//
//	client := goproxy.NewClient(c, 24*time.Hour)
//	rel, err := client.FetchRelease(ctx, "github.com/spf13/cobra", "v1.8.0", false)
//
// The proxy only knows versions and their content; the release carries the
// module zip as download location and, for GitHub, GitLab and Bitbucket
// paths, the repository URL (see [RepositoryURL]).
//
// # Path Escaping
//
// Module paths with uppercase letters are escaped per the Go module proxy
// protocol (uppercase becomes !lowercase).
package goproxy
