package npm

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/philips-software/bom-base-sub000/pkg/cache"
	"github.com/philips-software/bom-base-sub000/pkg/integrations"
)

// Client provides access to the npm registry API.
// It handles HTTP requests with caching and automatic retries.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates an npm client with the given cache backend.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client:  integrations.NewClient(backend, "npm:", cacheTTL, nil),
		baseURL: "https://registry.npmjs.org",
	}
}

// FetchRelease retrieves the metadata of one published version.
// pkg may carry a scope ("@types/node"). An empty version selects the
// version tagged "latest".
func (c *Client) FetchRelease(ctx context.Context, pkg, version string, refresh bool) (*integrations.Release, error) {
	pkg = strings.ToLower(strings.TrimSpace(pkg))
	if version == "" {
		version = "latest"
	}
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
	var v versionDetails
	u := fmt.Sprintf("%s/%s/%s", c.baseURL, escapeName(pkg), url.PathEscape(version))
	if err := c.Get(ctx, u, &v); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: npm package %s@%s", err, pkg, version)
		}
		return err
	}

	*info = integrations.Release{
		Name:        v.Name,
		Version:     v.Version,
		Description: v.Description,
		License:     extractField(v.License, "type"),
		Repository:  integrations.NormalizeRepoURL(extractField(v.Repository, "url")),
		HomePage:    v.HomePage,
		DownloadURL: v.Dist.Tarball,
		SHA1:        strings.ToLower(v.Dist.Shasum),
		Publisher:   v.NPMUser.Name,
	}
	if author := extractField(v.Author, "name"); author != "" {
		info.Authors = append(info.Authors, author)
	}
	for _, m := range v.Maintainers {
		if m.Name != "" && m.Name != info.Publisher {
			info.Authors = append(info.Authors, m.Name)
		}
	}
	if v.Dist.Integrity != "" {
		if algo, digest, err := integrations.DecodeIntegrity(v.Dist.Integrity); err == nil {
			switch algo {
			case "sha512":
				info.SHA512 = digest
			case "sha256":
				info.SHA256 = digest
			}
		}
	}
	return nil
}

// escapeName keeps the scope marker readable and escapes the separator, the
// form the registry expects for scoped packages.
func escapeName(pkg string) string {
	return strings.Replace(pkg, "/", "%2F", 1)
}

func extractField(v any, field string) string {
	switch val := v.(type) {
	case string:
		return val
	case map[string]any:
		if s, ok := val[field].(string); ok {
			return s
		}
	}
	return ""
}

type versionDetails struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
	License     any    `json:"license"`
	Author      any    `json:"author"`
	Repository  any    `json:"repository"`
	HomePage    string `json:"homepage"`
	Maintainers []struct {
		Name string `json:"name"`
	} `json:"maintainers"`
	NPMUser struct {
		Name string `json:"name"`
	} `json:"_npmUser"`
	Dist struct {
		Tarball   string `json:"tarball"`
		Shasum    string `json:"shasum"`
		Integrity string `json:"integrity"`
	} `json:"dist"`
}
