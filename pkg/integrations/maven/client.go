package maven

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/philips-software/bom-base-sub000/pkg/cache"
	"github.com/philips-software/bom-base-sub000/pkg/integrations"
)

// Client provides access to Maven Central.
// It handles HTTP requests with caching and automatic retries.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	searchURL string
	repoURL   string
}

// NewClient creates a Maven Central client with the given cache backend.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client:    integrations.NewClient(backend, "maven:", cacheTTL, nil),
		searchURL: "https://search.maven.org/solrsearch/select",
		repoURL:   "https://repo1.maven.org/maven2",
	}
}

// FetchRelease retrieves metadata for one version of a Maven artifact.
//
// An empty version is resolved through the Maven Central search API.
// Metadata comes from the version's POM; the download location is the
// primary jar and its SHA-1 is read from the ".sha1" file published next
// to it. A missing checksum file is not an error.
//
// Returns:
//   - Release populated with metadata on success
//   - [integrations.ErrNotFound] if the artifact or version doesn't exist
//   - [integrations.ErrNetwork] for HTTP failures (timeout, 5xx, etc.)
func (c *Client) FetchRelease(ctx context.Context, groupID, artifactID, version string, refresh bool) (*integrations.Release, error) {
	if groupID == "" || artifactID == "" {
		return nil, fmt.Errorf("invalid maven coordinate %q:%q (expected groupId and artifactId)", groupID, artifactID)
	}
	key := groupID + ":" + artifactID + "@" + version

	var info integrations.Release
	err := c.Cached(ctx, key, refresh, &info, func() error {
		return c.fetch(ctx, groupID, artifactID, version, &info)
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) fetch(ctx context.Context, groupID, artifactID, version string, info *integrations.Release) error {
	if version == "" {
		v, err := c.latestVersion(ctx, groupID, artifactID)
		if err != nil {
			return err
		}
		version = v
	}

	base := c.artifactBase(groupID, artifactID, version)
	body, err := c.GetText(ctx, base+".pom")
	if err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: maven artifact %s:%s:%s", err, groupID, artifactID, version)
		}
		return err
	}
	var pom pomProject
	if err := xml.Unmarshal([]byte(body), &pom); err != nil {
		return fmt.Errorf("parse pom of %s:%s:%s: %w", groupID, artifactID, version, err)
	}

	*info = integrations.Release{
		Name:        firstNonEmpty(pom.Name, artifactID),
		Version:     version,
		Description: strings.TrimSpace(pom.Description),
		HomePage:    strings.TrimSpace(pom.URL),
		Repository:  scmURL(pom.SCM),
		License:     licenseExpression(pom.Licenses),
		DownloadURL: base + ".jar",
		Publisher:   strings.TrimSpace(pom.Organization.Name),
	}
	for _, d := range pom.Developers {
		if n := strings.TrimSpace(firstNonEmpty(d.Name, d.ID)); n != "" {
			info.Authors = append(info.Authors, n)
		}
	}
	if sum, err := c.GetText(ctx, base+".jar.sha1"); err == nil {
		if fields := strings.Fields(sum); len(fields) > 0 && len(fields[0]) == 40 {
			info.SHA1 = strings.ToLower(fields[0])
		}
	}
	return nil
}

func (c *Client) latestVersion(ctx context.Context, groupID, artifactID string) (string, error) {
	query := fmt.Sprintf("g:%q AND a:%q", groupID, artifactID)
	url := fmt.Sprintf("%s?q=%s&rows=1&wt=json", c.searchURL, integrations.URLEncode(query))

	var searchResp searchResponse
	if err := c.Get(ctx, url, &searchResp); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return "", fmt.Errorf("%w: maven artifact %s:%s", err, groupID, artifactID)
		}
		return "", err
	}
	if searchResp.Response.NumFound == 0 || len(searchResp.Response.Docs) == 0 {
		return "", fmt.Errorf("%w: maven artifact %s:%s", integrations.ErrNotFound, groupID, artifactID)
	}
	doc := searchResp.Response.Docs[0]
	return firstNonEmpty(doc.LatestVersion, doc.Version), nil
}

// artifactBase returns the repository path of the artifact without extension.
func (c *Client) artifactBase(groupID, artifactID, version string) string {
	groupPath := strings.ReplaceAll(groupID, ".", "/")
	return fmt.Sprintf("%s/%s/%s/%s/%s-%s", c.repoURL, groupPath, artifactID, version, artifactID, version)
}

// licenseExpression joins the POM license names. Several <license> entries
// mean the user may pick one, so they are combined with OR.
func licenseExpression(licenses []pomLicense) string {
	var names []string
	for _, l := range licenses {
		if n := strings.TrimSpace(l.Name); n != "" {
			if strings.Contains(n, " ") && len(licenses) > 1 {
				n = "(" + n + ")"
			}
			names = append(names, n)
		}
	}
	return strings.Join(names, " OR ")
}

// scmURL prefers the browsable URL over the connection strings.
func scmURL(scm pomSCM) string {
	if u := strings.TrimSpace(scm.URL); u != "" {
		return integrations.NormalizeRepoURL(u)
	}
	conn := strings.TrimSpace(firstNonEmpty(scm.Connection, scm.DeveloperConnection))
	conn = strings.TrimPrefix(conn, "scm:")
	conn = strings.TrimPrefix(conn, "git:")
	return integrations.NormalizeRepoURL(conn)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

type searchResponse struct {
	Response struct {
		NumFound int         `json:"numFound"`
		Docs     []searchDoc `json:"docs"`
	} `json:"response"`
}

type searchDoc struct {
	GroupID       string `json:"g"`
	ArtifactID    string `json:"a"`
	Version       string `json:"v"`
	LatestVersion string `json:"latestVersion"`
}

type pomProject struct {
	Name         string         `xml:"name"`
	Description  string         `xml:"description"`
	URL          string         `xml:"url"`
	Licenses     []pomLicense   `xml:"licenses>license"`
	Developers   []pomDeveloper `xml:"developers>developer"`
	SCM          pomSCM         `xml:"scm"`
	Organization struct {
		Name string `xml:"name"`
	} `xml:"organization"`
}

type pomLicense struct {
	Name string `xml:"name"`
	URL  string `xml:"url"`
}

type pomDeveloper struct {
	ID   string `xml:"id"`
	Name string `xml:"name"`
}

type pomSCM struct {
	URL                 string `xml:"url"`
	Connection          string `xml:"connection"`
	DeveloperConnection string `xml:"developerConnection"`
}
