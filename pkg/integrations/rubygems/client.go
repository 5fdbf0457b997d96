package rubygems

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/philips-software/bom-base-sub000/pkg/cache"
	"github.com/philips-software/bom-base-sub000/pkg/integrations"
)

// Client provides access to the RubyGems package registry API.
// It handles HTTP requests with caching and automatic retries.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a RubyGems client with the given cache backend.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client:  integrations.NewClient(backend, "rubygems:", cacheTTL, nil),
		baseURL: "https://rubygems.org/api",
	}
}

// FetchRelease retrieves metadata for one version of a Ruby gem.
//
// The gem parameter is normalized to lowercase with whitespace trimmed.
// An empty version selects the current version from the v1 gem endpoint;
// otherwise the v2 version endpoint is used.
//
// Returns:
//   - Release populated with metadata on success
//   - [integrations.ErrNotFound] if the gem or version doesn't exist
//   - [integrations.ErrNetwork] for HTTP failures (timeout, 5xx, etc.)
func (c *Client) FetchRelease(ctx context.Context, gem, version string, refresh bool) (*integrations.Release, error) {
	gem = strings.ToLower(strings.TrimSpace(gem))
	key := gem + "@" + version

	var info integrations.Release
	err := c.Cached(ctx, key, refresh, &info, func() error {
		return c.fetch(ctx, gem, version, &info)
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) fetch(ctx context.Context, gem, version string, info *integrations.Release) error {
	u := fmt.Sprintf("%s/v1/gems/%s.json", c.baseURL, gem)
	if version != "" {
		u = fmt.Sprintf("%s/v2/rubygems/%s/versions/%s.json", c.baseURL, gem, version)
	}

	var data gemResponse
	if err := c.Get(ctx, u, &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: gem %s %s", err, gem, version)
		}
		return err
	}

	*info = integrations.Release{
		Name:        data.Name,
		Version:     data.Version,
		Description: data.Info,
		License:     joinLicenses(data.Licenses),
		Repository:  integrations.NormalizeRepoURL(data.SourceCodeURI),
		HomePage:    data.HomepageURI,
		DownloadURL: data.GemURI,
		SHA256:      strings.ToLower(data.SHA),
		Authors:     splitAuthors(data.Authors),
	}
	return nil
}

// joinLicenses turns the gemspec license list into an expression. RubyGems
// does not say whether several licenses are alternatives; OR is the
// convention of the gemspec documentation.
func joinLicenses(licenses []string) string {
	var out []string
	for _, l := range licenses {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, " OR ")
}

func splitAuthors(s string) []string {
	var out []string
	for _, a := range strings.Split(s, ",") {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}

type gemResponse struct {
	Name          string   `json:"name"`
	Version       string   `json:"version"`
	Info          string   `json:"info"`
	Licenses      []string `json:"licenses"`
	SourceCodeURI string   `json:"source_code_uri"`
	HomepageURI   string   `json:"homepage_uri"`
	GemURI        string   `json:"gem_uri"`
	SHA           string   `json:"sha"`
	Authors       string   `json:"authors"`
}
