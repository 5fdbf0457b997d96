package crates

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/philips-software/bom-base-sub000/pkg/buildinfo"
	"github.com/philips-software/bom-base-sub000/pkg/cache"
	"github.com/philips-software/bom-base-sub000/pkg/integrations"
)

// Client provides access to the crates.io package registry API.
// It handles HTTP requests with caching and automatic retries.
//
// All methods are safe for concurrent use by multiple goroutines.
//
// Note: crates.io requires a User-Agent header; this client sets one automatically.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a crates.io client with the given cache backend.
//
// The client includes a User-Agent header as required by crates.io API policy.
// The returned Client is safe for concurrent use.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	headers := map[string]string{
		"User-Agent": buildinfo.UserAgent(),
	}
	return &Client{
		Client:  integrations.NewClient(backend, "crates:", cacheTTL, headers),
		baseURL: "https://crates.io/api/v1",
	}
}

// FetchRelease retrieves metadata for one version of a Rust crate.
//
// The crate parameter is case-sensitive and must match the published crate name exactly.
// An empty version selects max_version.
//
// Crate-level data (description, repository, homepage) comes from the crate
// document; license, checksum and publisher come from the version document.
//
// Returns:
//   - Release populated with metadata on success
//   - [integrations.ErrNotFound] if the crate or version doesn't exist
//   - [integrations.ErrNetwork] for HTTP failures (timeout, 5xx, etc.)
func (c *Client) FetchRelease(ctx context.Context, crate, version string, refresh bool) (*integrations.Release, error) {
	crate = strings.TrimSpace(crate)
	key := crate + "@" + version

	var info integrations.Release
	err := c.Cached(ctx, key, refresh, &info, func() error {
		return c.fetch(ctx, crate, version, &info)
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) fetch(ctx context.Context, crate, version string, info *integrations.Release) error {
	var data crateResponse
	if err := c.Get(ctx, fmt.Sprintf("%s/crates/%s", c.baseURL, crate), &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: crate %s", err, crate)
		}
		return err
	}
	if version == "" {
		version = data.Crate.MaxVersion
	}

	var ver versionResponse
	if err := c.Get(ctx, fmt.Sprintf("%s/crates/%s/%s", c.baseURL, crate, version), &ver); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: crate %s %s", err, crate, version)
		}
		return err
	}

	*info = integrations.Release{
		Name:        data.Crate.Name,
		Version:     ver.Version.Num,
		Description: data.Crate.Description,
		License:     ver.Version.License,
		Repository:  integrations.NormalizeRepoURL(data.Crate.Repository),
		HomePage:    data.Crate.HomePage,
		DownloadURL: fmt.Sprintf("%s/crates/%s/%s/download", c.baseURL, crate, ver.Version.Num),
		SHA256:      strings.ToLower(ver.Version.Checksum),
		Publisher:   ver.Version.PublishedBy.Login,
	}
	if ver.Version.PublishedBy.Name != "" {
		info.Authors = []string{ver.Version.PublishedBy.Name}
	}
	return nil
}

type crateResponse struct {
	Crate struct {
		Name        string `json:"name"`
		MaxVersion  string `json:"max_version"`
		Description string `json:"description"`
		Repository  string `json:"repository"`
		HomePage    string `json:"homepage"`
	} `json:"crate"`
}

type versionResponse struct {
	Version struct {
		Num         string `json:"num"`
		License     string `json:"license"`
		Checksum    string `json:"checksum"`
		PublishedBy struct {
			Login string `json:"login"`
			Name  string `json:"name"`
		} `json:"published_by"`
	} `json:"version"`
}
