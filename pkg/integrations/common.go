package integrations

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/philips-software/bom-base-sub000/pkg/cache"
)

const httpTimeout = 10 * time.Second

var (
	// ErrNotFound is returned when a package or resource doesn't exist in the registry.
	ErrNotFound = cache.ErrNotFound

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = cache.ErrNetwork

	// ErrRateLimited is returned when the registry answers 429.
	ErrRateLimited = errors.New("rate limited")
)

// Release is the metadata a registry publishes for one version of a package.
// Every registry client maps its own response onto this shape.
type Release struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description,omitempty"`
	HomePage    string   `json:"home_page,omitempty"`
	Repository  string   `json:"repository,omitempty"`   // Source repository (https://...)
	DownloadURL string   `json:"download_url,omitempty"` // Published artifact (tarball, jar, zip)
	License     string   `json:"license,omitempty"`      // Declared license expression
	Authors     []string `json:"authors,omitempty"`
	Publisher   string   `json:"publisher,omitempty"` // Account that published the release
	SHA1        string   `json:"sha1,omitempty"`      // Hex digests of the artifact
	SHA256      string   `json:"sha256,omitempty"`
	SHA512      string   `json:"sha512,omitempty"`
}

// RepoMetrics holds repository-level data fetched from GitHub.
// Used to enrich package metadata from the source location.
type RepoMetrics struct {
	RepoURL      string        `json:"repo_url"`                   // Canonical repository URL (https://...)
	Owner        string        `json:"owner"`                      // Repository owner username
	Description  string        `json:"description,omitempty"`      // Repository description
	HomePage     string        `json:"home_page,omitempty"`        // Project website configured on the repository
	License      string        `json:"license,omitempty"`          // SPDX license identifier
	Contributors []Contributor `json:"top_contributors,omitempty"` // Top contributors by commit count
	Archived     bool          `json:"archived"`                   // Whether the repository is archived
}

// Contributor represents a repository contributor with their contribution count.
type Contributor struct {
	Login         string `json:"login"`         // GitHub username
	Contributions int    `json:"contributions"` // Number of commits
}

// NewHTTPClient creates an HTTP client with a standard timeout for registry requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// NormalizePkgName converts a package name to its canonical form.
// Applies lowercase and replaces underscores with hyphens, following PEP 503
// normalization rules used by PyPI and other registries.
func NormalizePkgName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
}

var repoURLReplacer = strings.NewReplacer(
	"git@github.com:", "https://github.com/",
	"git://github.com/", "https://github.com/",
)

// NormalizeRepoURL converts various repository URL formats to canonical HTTPS form.
// Handles git@, git://, and git+ prefixes, and removes .git suffixes.
// Returns empty string if raw is empty.
func NormalizeRepoURL(raw string) string {
	if raw == "" {
		return ""
	}
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "git+")
	s = repoURLReplacer.Replace(s)
	return strings.TrimSuffix(s, ".git")
}

var repoURLKeys = []string{"Source", "Source Code", "Repository", "Code", "Homepage"}

// ExtractRepoURL finds GitHub owner and repo from package URLs.
// It searches through urls using standard keys (Source, Repository, Code, Homepage)
// and falls back to homepage if no match is found. The re parameter should match
// URLs and capture owner (group 1) and repo name (group 2).
// Returns ok=false if no valid repository URL is found.
func ExtractRepoURL(re *regexp.Regexp, urls map[string]string, homepage string) (owner, repo string, ok bool) {
	match := func(u string) bool {
		if strings.Contains(u, "/sponsors/") {
			return false
		}
		if m := re.FindStringSubmatch(u); len(m) >= 3 {
			owner = m[1]
			repo = strings.TrimSuffix(m[2], ".git")
			ok = true
			return true
		}
		return false
	}

	for _, key := range repoURLKeys {
		if u, exists := urls[key]; exists && match(u) {
			return
		}
	}
	for _, u := range urls {
		if match(u) {
			return
		}
	}
	if homepage != "" {
		match(homepage)
	}
	return
}

// DecodeIntegrity converts a Subresource Integrity string ("sha512-<base64>")
// into the algorithm name and a lowercase hex digest.
func DecodeIntegrity(sri string) (algo, digest string, err error) {
	algo, b64, ok := strings.Cut(strings.TrimSpace(sri), "-")
	if !ok {
		return "", "", fmt.Errorf("malformed integrity %q", sri)
	}
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return "", "", fmt.Errorf("malformed integrity %q: %w", sri, err)
	}
	return strings.ToLower(algo), hex.EncodeToString(raw), nil
}

// URLEncode percent-encodes a string for use in URLs.
// This is a convenience wrapper around [url.QueryEscape].
func URLEncode(s string) string { return url.QueryEscape(s) }
