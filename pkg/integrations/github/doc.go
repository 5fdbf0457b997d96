// Package github provides an HTTP client for the GitHub API.
//
// # Overview
//
// This package fetches repository metadata from GitHub (https://api.github.com)
// once a package's source location is known to point at a GitHub
// repository.
//
// # Usage
//
//	client := github.NewClient(c, token, 24*time.Hour)
//	owner, repo, ok := github.ParseRepoURL("git+https://github.com/pallets/flask.git")
//	if ok {
//	    metrics, err := client.Fetch(ctx, owner, repo, false)
//	    ...
//	}
//
// # Authentication
//
// A GitHub personal access token is optional but recommended to avoid rate
// limits. Without a token, the client is limited to 60 requests/hour.
// With a token, the limit is 5000 requests/hour.
//
// # RepoMetrics
//
// [Client.Fetch] returns an [integrations.RepoMetrics] containing:
//
//   - Description, HomePage: project metadata configured on the repository
//   - License: SPDX identifier detected by GitHub ("" when unclassified)
//   - Archived: whether the repository is read-only and unmaintained
//   - Contributors: Top contributors with commit counts, bots excluded
//
// # Validation
//
// Owner and repository names are validated before they are placed in API
// URLs ([ValidateRepoRef]).
package github
