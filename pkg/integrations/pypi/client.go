package pypi

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/philips-software/bom-base-sub000/pkg/cache"
	"github.com/philips-software/bom-base-sub000/pkg/integrations"
)

var (
	repoRE = regexp.MustCompile(`https?://(?:github\.com|gitlab\.com|bitbucket\.org)/([^/]+)/([^/?#]+)`)
	hostRE = regexp.MustCompile(`https?://(github\.com|gitlab\.com|bitbucket\.org)/[^/]+/[^/?#]+`)
)

// Client provides access to the PyPI package registry API.
// It handles HTTP requests with caching and automatic retries.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a PyPI client with the given cache backend.
//
// Parameters:
//   - backend: Cache backend for HTTP response caching (use cache.NewNullCache() for no caching)
//   - cacheTTL: How long responses are cached (typical: 1-24 hours)
//
// The returned Client is safe for concurrent use.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client:  integrations.NewClient(backend, "pypi:", cacheTTL, nil),
		baseURL: "https://pypi.org/pypi",
	}
}

// FetchRelease retrieves metadata for one version of a Python package.
//
// The pkg parameter is normalized automatically (case-insensitive, underscores→hyphens).
// An empty version selects the latest release.
//
// The download location is the source distribution when one was uploaded,
// otherwise the first wheel; its SHA-256 digest is reported with it.
//
// Returns:
//   - Release populated with metadata on success
//   - [integrations.ErrNotFound] if the package or version doesn't exist
//   - [integrations.ErrNetwork] for HTTP failures (timeout, 5xx, etc.)
func (c *Client) FetchRelease(ctx context.Context, pkg, version string, refresh bool) (*integrations.Release, error) {
	pkg = integrations.NormalizePkgName(pkg)
	key := pkg + "@" + version

	var info integrations.Release
	err := c.Cached(ctx, key, refresh, &info, func() error {
		return c.fetch(ctx, pkg, version, &info)
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) fetch(ctx context.Context, pkg, version string, info *integrations.Release) error {
	u := fmt.Sprintf("%s/%s/json", c.baseURL, pkg)
	if version != "" {
		u = fmt.Sprintf("%s/%s/%s/json", c.baseURL, pkg, version)
	}

	var data apiResponse
	if err := c.Get(ctx, u, &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: pypi package %s %s", err, pkg, version)
		}
		return err
	}

	urls := make(map[string]string, len(data.Info.ProjectURLs))
	for k, v := range data.Info.ProjectURLs {
		if s, ok := v.(string); ok {
			urls[k] = s
		}
	}

	*info = integrations.Release{
		Name:        data.Info.Name,
		Version:     data.Info.Version,
		Description: data.Info.Summary,
		License:     extractLicenseType(data.Info.LicenseExpression, data.Info.License, data.Info.Classifiers),
		HomePage:    firstNonEmpty(data.Info.HomePage, urls["Homepage"]),
	}
	if owner, repo, ok := integrations.ExtractRepoURL(repoRE, urls, data.Info.HomePage); ok {
		info.Repository = repoHost(urls, data.Info.HomePage) + "/" + owner + "/" + repo
	}
	for _, a := range []string{data.Info.Author, data.Info.Maintainer} {
		if a = strings.TrimSpace(a); a != "" {
			info.Authors = append(info.Authors, a)
		}
	}
	if f, ok := pickDistribution(data.URLs); ok {
		info.DownloadURL = f.URL
		info.SHA256 = strings.ToLower(f.Digests.SHA256)
	}
	return nil
}

// repoHost returns the scheme and host of the first repository-looking URL,
// checked in the same order as ExtractRepoURL.
func repoHost(urls map[string]string, homepage string) string {
	candidates := []string{urls["Source"], urls["Source Code"], urls["Repository"], urls["Code"], urls["Homepage"]}
	for _, u := range urls {
		candidates = append(candidates, u)
	}
	candidates = append(candidates, homepage)
	for _, u := range candidates {
		if m := hostRE.FindStringSubmatch(u); m != nil && !strings.Contains(u, "/sponsors/") {
			return "https://" + m[1]
		}
	}
	return "https://github.com"
}

func pickDistribution(files []releaseFile) (releaseFile, bool) {
	for _, f := range files {
		if f.PackageType == "sdist" {
			return f, true
		}
	}
	if len(files) > 0 {
		return files[0], true
	}
	return releaseFile{}, false
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

type apiResponse struct {
	Info apiInfo       `json:"info"`
	URLs []releaseFile `json:"urls"`
}

type apiInfo struct {
	Name              string         `json:"name"`
	Version           string         `json:"version"`
	Summary           string         `json:"summary"`
	License           string         `json:"license"`
	LicenseExpression string         `json:"license_expression"`
	Classifiers       []string       `json:"classifiers"`
	ProjectURLs       map[string]any `json:"project_urls"`
	HomePage          string         `json:"home_page"`
	Author            string         `json:"author"`
	Maintainer        string         `json:"maintainer"`
}

type releaseFile struct {
	PackageType string `json:"packagetype"`
	URL         string `json:"url"`
	Digests     struct {
		SHA256 string `json:"sha256"`
	} `json:"digests"`
}

// extractLicenseType extracts a short license identifier from PyPI data.
// A PEP 639 license expression wins; otherwise the classifier
// (e.g., "License :: OSI Approved :: MIT License" -> "MIT License") and
// finally the license field if it's short enough.
func extractLicenseType(expression, license string, classifiers []string) string {
	if expression = strings.TrimSpace(expression); expression != "" {
		return expression
	}

	for _, c := range classifiers {
		if strings.HasPrefix(c, "License :: ") {
			parts := strings.Split(c, " :: ")
			if len(parts) >= 3 {
				return parts[len(parts)-1]
			}
		}
	}

	if license != "" && len(license) < 100 && !strings.Contains(license, "\n") {
		return strings.TrimSpace(license)
	}

	// Common patterns: "MIT License", "BSD 3-Clause License", "Apache License 2.0"
	if license != "" {
		firstLine := strings.TrimSpace(strings.Split(license, "\n")[0])
		if len(firstLine) < 50 {
			return firstLine
		}
	}

	return ""
}
