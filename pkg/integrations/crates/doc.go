// Package crates provides an HTTP client for the crates.io API.
//
// # Overview
//
// This package fetches release metadata from crates.io (https://crates.io),
// the Rust community's package registry.
//
// # Usage
//
//	client := crates.NewClient(c, 24*time.Hour)
//	rel, err := client.FetchRelease(ctx, "serde", "1.0.193", false)
//
// Two documents are read per release: the crate (description, repository,
// homepage) and the version (license, SHA-256 checksum, publisher). The
// download location is the registry's download endpoint for the version.
//
// # User-Agent
//
// crates.io rejects requests without a User-Agent; the client always sends one.
package crates
