// Package rubygems provides an HTTP client for the RubyGems.org API.
//
// # Usage
//
//	client := rubygems.NewClient(c, 24*time.Hour)
//	rel, err := client.FetchRelease(ctx, "rails", "7.1.0", false)
//
// The release carries the gem download URI and its SHA-256 digest, the
// gemspec licenses joined with OR, and the comma-separated authors split
// into a list.
package rubygems
