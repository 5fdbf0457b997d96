package harvest

import (
	"context"
	"slices"
	"time"

	"github.com/philips-software/bom-base-sub000/pkg/cache"
	"github.com/philips-software/bom-base-sub000/pkg/errors"
	"github.com/philips-software/bom-base-sub000/pkg/integrations"
	"github.com/philips-software/bom-base-sub000/pkg/integrations/crates"
	"github.com/philips-software/bom-base-sub000/pkg/integrations/goproxy"
	"github.com/philips-software/bom-base-sub000/pkg/integrations/maven"
	"github.com/philips-software/bom-base-sub000/pkg/integrations/npm"
	"github.com/philips-software/bom-base-sub000/pkg/integrations/pypi"
	"github.com/philips-software/bom-base-sub000/pkg/integrations/rubygems"
	"github.com/philips-software/bom-base-sub000/pkg/meta"
	"github.com/philips-software/bom-base-sub000/pkg/purl"
)

// Names of the built-in registry sources.
const (
	SourceNPM      = "npm"
	SourcePyPI     = "pypi"
	SourceCrates   = "crates"
	SourceRubyGems = "rubygems"
	SourceMaven    = "maven"
	SourceGolang   = "golang"
)

// RegistrySources lists the names accepted by NewRegistrySource.
var RegistrySources = []string{SourceNPM, SourcePyPI, SourceCrates, SourceRubyGems, SourceMaven, SourceGolang}

// Trust assigned to registry metadata. Artifact facts come straight from
// the registry's own index; descriptive fields are whatever the author typed.
var (
	RegistryTrust = meta.Likely
	ArtifactTrust = meta.Certain
)

var artifactFields = []meta.Field{meta.Title, meta.DownloadLocation, meta.SHA1, meta.SHA256, meta.SHA512}

// ReleaseFunc looks up the release a coordinate names.
type ReleaseFunc func(ctx context.Context, p purl.PURL) (*integrations.Release, error)

// ReleaseSource adapts a registry client to the Source interface.
type ReleaseSource struct {
	name  string
	types []string
	fetch ReleaseFunc
}

// NewReleaseSource returns a source named name that serves the purl types
// listed in types through fetch.
func NewReleaseSource(name string, types []string, fetch ReleaseFunc) *ReleaseSource {
	return &ReleaseSource{name: name, types: types, fetch: fetch}
}

// Name implements Source.
func (s *ReleaseSource) Name() string { return s.name }

// Supports implements Source.
func (s *ReleaseSource) Supports(p purl.PURL) bool { return slices.Contains(s.types, p.Type) }

// Fetch implements Source.
func (s *ReleaseSource) Fetch(ctx context.Context, p purl.PURL) (Metadata, error) {
	rel, err := s.fetch(ctx, p)
	if err != nil {
		return nil, sourceError(s.name, p, err)
	}
	return FromRelease(rel), nil
}

// FromRelease converts registry release metadata into a candidate.
func FromRelease(rel *integrations.Release) *Candidate {
	c := NewCandidate(RegistryTrust)
	for _, f := range artifactFields {
		c.WithTrust(f, ArtifactTrust)
	}
	c.SetString(meta.Title, rel.Name).
		SetString(meta.Description, rel.Description).
		SetURI(meta.HomePage, rel.HomePage).
		SetURI(meta.SourceLocation, rel.Repository).
		SetURI(meta.DownloadLocation, rel.DownloadURL).
		SetString(meta.DeclaredLicense, rel.License).
		SetString(meta.SHA1, rel.SHA1).
		SetString(meta.SHA256, rel.SHA256).
		SetString(meta.SHA512, rel.SHA512).
		SetString(meta.Supplier, rel.Publisher).
		SetList(meta.Attribution, rel.Authors...)
	if len(rel.Authors) > 0 {
		c.SetString(meta.Originator, rel.Authors[0])
	}
	return c
}

// SourceOptions configures the registry sources built by NewRegistrySource.
type SourceOptions struct {
	Cache         cache.Cache
	TTL           time.Duration
	RatePerSecond float64
}

// NewRegistrySource builds the named registry source.
func NewRegistrySource(name string, opts SourceOptions) (Source, error) {
	switch name {
	case SourceNPM:
		c := npm.NewClient(opts.Cache, opts.TTL)
		c.SetRateLimit(opts.RatePerSecond)
		return NPM(c), nil
	case SourcePyPI:
		c := pypi.NewClient(opts.Cache, opts.TTL)
		c.SetRateLimit(opts.RatePerSecond)
		return PyPI(c), nil
	case SourceCrates:
		c := crates.NewClient(opts.Cache, opts.TTL)
		c.SetRateLimit(opts.RatePerSecond)
		return Crates(c), nil
	case SourceRubyGems:
		c := rubygems.NewClient(opts.Cache, opts.TTL)
		c.SetRateLimit(opts.RatePerSecond)
		return RubyGems(c), nil
	case SourceMaven:
		c := maven.NewClient(opts.Cache, opts.TTL)
		c.SetRateLimit(opts.RatePerSecond)
		return Maven(c), nil
	case SourceGolang:
		c := goproxy.NewClient(opts.Cache, opts.TTL)
		c.SetRateLimit(opts.RatePerSecond)
		return Golang(c), nil
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "unknown metadata source %q", name)
}

// NPM serves "npm" coordinates; a namespace is the package scope.
func NPM(c *npm.Client) *ReleaseSource {
	return NewReleaseSource(SourceNPM, []string{"npm"}, func(ctx context.Context, p purl.PURL) (*integrations.Release, error) {
		return c.FetchRelease(ctx, p.FullName("/"), p.Version, false)
	})
}

// PyPI serves "pypi" coordinates.
func PyPI(c *pypi.Client) *ReleaseSource {
	return NewReleaseSource(SourcePyPI, []string{"pypi"}, func(ctx context.Context, p purl.PURL) (*integrations.Release, error) {
		return c.FetchRelease(ctx, p.Name, p.Version, false)
	})
}

// Crates serves "cargo" coordinates.
func Crates(c *crates.Client) *ReleaseSource {
	return NewReleaseSource(SourceCrates, []string{"cargo"}, func(ctx context.Context, p purl.PURL) (*integrations.Release, error) {
		return c.FetchRelease(ctx, p.Name, p.Version, false)
	})
}

// RubyGems serves "gem" coordinates.
func RubyGems(c *rubygems.Client) *ReleaseSource {
	return NewReleaseSource(SourceRubyGems, []string{"gem"}, func(ctx context.Context, p purl.PURL) (*integrations.Release, error) {
		return c.FetchRelease(ctx, p.Name, p.Version, false)
	})
}

// Maven serves "maven" coordinates; the namespace is the group id.
func Maven(c *maven.Client) *ReleaseSource {
	return NewReleaseSource(SourceMaven, []string{"maven"}, func(ctx context.Context, p purl.PURL) (*integrations.Release, error) {
		if p.Namespace == "" {
			return nil, errors.New(errors.ErrCodeInvalidPURL, "maven coordinate %s has no group id", p.Key())
		}
		return c.FetchRelease(ctx, p.Namespace, p.Name, p.Version, false)
	})
}

// Golang serves "golang" coordinates; namespace and name form the module path.
func Golang(c *goproxy.Client) *ReleaseSource {
	return NewReleaseSource(SourceGolang, []string{"golang"}, func(ctx context.Context, p purl.PURL) (*integrations.Release, error) {
		return c.FetchRelease(ctx, p.FullName("/"), p.Version, false)
	})
}
