package goproxy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/philips-software/bom-base-sub000/pkg/cache"
	"github.com/philips-software/bom-base-sub000/pkg/integrations"
)

// Client provides access to the Go module proxy API.
// It handles HTTP requests with caching and automatic retries.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a Go module proxy client with the given cache backend.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client:  integrations.NewClient(backend, "goproxy:", cacheTTL, nil),
		baseURL: "https://proxy.golang.org",
	}
}

// FetchRelease retrieves metadata for one version of a Go module.
//
// The mod parameter is a full module path (e.g., "github.com/user/repo").
// An empty version is resolved through the @latest endpoint. The proxy
// publishes no descriptive metadata; the release carries the module zip as
// download location and, for modules hosted on a known forge, the
// repository derived from the module path.
//
// Returns:
//   - Release populated with metadata on success
//   - [integrations.ErrNotFound] if the module or version doesn't exist
//   - [integrations.ErrNetwork] for HTTP failures (timeout, 5xx, etc.)
func (c *Client) FetchRelease(ctx context.Context, mod, version string, refresh bool) (*integrations.Release, error) {
	mod = strings.TrimSpace(mod)
	key := mod + "@" + version

	var info integrations.Release
	err := c.Cached(ctx, key, refresh, &info, func() error {
		return c.fetch(ctx, mod, version, &info)
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) fetch(ctx context.Context, mod, version string, info *integrations.Release) error {
	u := fmt.Sprintf("%s/%s/@latest", c.baseURL, escapePath(mod))
	if version != "" {
		u = fmt.Sprintf("%s/%s/@v/%s.info", c.baseURL, escapePath(mod), escapePath(version))
	}

	var data infoResponse
	if err := c.Get(ctx, u, &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: go module %s %s", err, mod, version)
		}
		return err
	}

	*info = integrations.Release{
		Name:        mod,
		Version:     data.Version,
		Repository:  RepositoryURL(mod),
		DownloadURL: fmt.Sprintf("%s/%s/@v/%s.zip", c.baseURL, escapePath(mod), escapePath(data.Version)),
	}
	return nil
}

var forges = []string{"github.com/", "gitlab.com/", "bitbucket.org/"}

// RepositoryURL derives the repository of a module hosted on a well-known
// forge from its path: "github.com/a/b/v2" becomes "https://github.com/a/b".
// Other paths return "".
func RepositoryURL(mod string) string {
	for _, f := range forges {
		rest, ok := strings.CutPrefix(mod, f)
		if !ok {
			continue
		}
		parts := strings.SplitN(rest, "/", 3)
		if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
			return ""
		}
		return "https://" + f + parts[0] + "/" + parts[1]
	}
	return ""
}

// escapePath applies the proxy protocol's case encoding: every uppercase
// letter becomes '!' followed by its lowercase form.
func escapePath(path string) string {
	var b strings.Builder
	for _, r := range path {
		if r >= 'A' && r <= 'Z' {
			b.WriteByte('!')
			b.WriteRune(r + ('a' - 'A'))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

type infoResponse struct {
	Version string `json:"Version"`
	Time    string `json:"Time"`
}
