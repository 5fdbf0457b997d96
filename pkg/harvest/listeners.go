package harvest

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/philips-software/bom-base-sub000/pkg/curation"
	"github.com/philips-software/bom-base-sub000/pkg/integrations"
	"github.com/philips-software/bom-base-sub000/pkg/integrations/github"
	"github.com/philips-software/bom-base-sub000/pkg/license"
	"github.com/philips-software/bom-base-sub000/pkg/meta"
	"github.com/philips-software/bom-base-sub000/pkg/purl"
	"github.com/philips-software/bom-base-sub000/pkg/registry"
	"github.com/philips-software/bom-base-sub000/pkg/scanner"
	"github.com/philips-software/bom-base-sub000/pkg/source"
)

// Trust assigned to repository metadata. A repository license covers the
// whole repository, which may hold more than the package. An archived
// repository is no longer maintained, so everything it states drops to
// ArchivedRepoTrust.
var (
	RepoLicenseTrust  = meta.Probably
	RepoTrust         = meta.Maybe
	ArchivedRepoTrust = meta.Maybe / 2
)

// MaxScanTrust caps scanner results: a scan never establishes truth.
const MaxScanTrust = meta.Truth - 1

func orDefault(logger *log.Logger) *log.Logger {
	if logger == nil {
		return log.Default()
	}
	return logger
}

// MetadataListener bootstraps new packages from src.
type MetadataListener struct {
	src    Source
	logger *log.Logger
}

// NewMetadataListener returns a listener that fetches metadata from src for
// every new package of a type src supports.
func NewMetadataListener(src Source, logger *log.Logger) *MetadataListener {
	return &MetadataListener{src: src, logger: orDefault(logger)}
}

// Name implements registry.Named.
func (l *MetadataListener) Name() string { return "metadata:" + l.src.Name() }

// OnUpdated implements registry.Listener.
func (l *MetadataListener) OnUpdated(ev registry.Event) registry.Task {
	if !ev.IsNew() || !l.src.Supports(ev.PURL) {
		return nil
	}
	p := ev.PURL
	return func(ctx context.Context, ed *meta.Editor) error {
		m, err := l.src.Fetch(ctx, p)
		if err != nil {
			return err
		}
		l.logger.Debug("harvested metadata", "source", l.src.Name(), "purl", p.Key())
		return Apply(ed, m)
	}
}

// RepoFetcher looks up repository metadata.
type RepoFetcher interface {
	Fetch(ctx context.Context, owner, repo string, refresh bool) (*integrations.RepoMetrics, error)
}

// GitHubListener enriches packages whose source location is a GitHub
// repository.
type GitHubListener struct {
	repos  RepoFetcher
	logger *log.Logger
}

// NewGitHubListener returns a listener over repos, usually a *github.Client.
func NewGitHubListener(repos RepoFetcher, logger *log.Logger) *GitHubListener {
	return &GitHubListener{repos: repos, logger: orDefault(logger)}
}

// Name implements registry.Named.
func (l *GitHubListener) Name() string { return "github" }

// OnUpdated implements registry.Listener.
func (l *GitHubListener) OnUpdated(ev registry.Event) registry.Task {
	if !ev.Changed(meta.SourceLocation) {
		return nil
	}
	loc, ok := ev.Value(meta.SourceLocation)
	if !ok {
		return nil
	}
	owner, repo, ok := github.ParseRepoURL(loc.Text())
	if !ok {
		return nil
	}
	p := ev.PURL
	return func(ctx context.Context, ed *meta.Editor) error {
		m, err := l.repos.Fetch(ctx, owner, repo, false)
		if err != nil {
			return sourceError("github", p, err)
		}
		l.logger.Debug("harvested repository", "purl", p.Key(), "repo", owner+"/"+repo)
		return Apply(ed, FromRepoMetrics(m))
	}
}

// FromRepoMetrics converts repository metadata into a candidate.
func FromRepoMetrics(m *integrations.RepoMetrics) *Candidate {
	trust, licenseTrust := RepoTrust, RepoLicenseTrust
	if m.Archived {
		trust, licenseTrust = ArchivedRepoTrust, ArchivedRepoTrust
	}
	return NewCandidate(trust).
		WithTrust(meta.DeclaredLicense, licenseTrust).
		SetString(meta.Description, m.Description).
		SetURI(meta.HomePage, m.HomePage).
		SetString(meta.DeclaredLicense, m.License).
		SetList(meta.Attribution, contributorLogins(m.Contributors)...)
}

func contributorLogins(cs []integrations.Contributor) []string {
	logins := make([]string, 0, len(cs))
	for _, c := range cs {
		logins = append(logins, c.Login)
	}
	return logins
}

// LicenseScanListener scans the source tree of a package whenever its
// source location changes.
type LicenseScanListener struct {
	fetcher source.Fetcher
	scanner scanner.Scanner
	timeout time.Duration
	logger  *log.Logger
}

// NewLicenseScanListener returns a listener that checks out source
// locations with f and scans them with s. A positive timeout bounds each
// checkout and scan.
func NewLicenseScanListener(f source.Fetcher, s scanner.Scanner, timeout time.Duration, logger *log.Logger) *LicenseScanListener {
	return &LicenseScanListener{fetcher: f, scanner: s, timeout: timeout, logger: orDefault(logger)}
}

// Name implements registry.Named.
func (l *LicenseScanListener) Name() string { return "license-scan" }

// OnUpdated implements registry.Listener.
func (l *LicenseScanListener) OnUpdated(ev registry.Event) registry.Task {
	if !ev.Changed(meta.SourceLocation) {
		return nil
	}
	loc, ok := ev.Value(meta.SourceLocation)
	if !ok {
		return nil
	}
	p := ev.PURL
	return func(ctx context.Context, ed *meta.Editor) error {
		if l.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, l.timeout)
			defer cancel()
		}
		return l.scan(ctx, p, loc.Text(), ed)
	}
}

func (l *LicenseScanListener) scan(ctx context.Context, p purl.PURL, location string, ed *meta.Editor) error {
	co, err := l.fetcher.Fetch(ctx, location)
	if err != nil {
		return sourceError("checkout", p, err)
	}
	defer func() {
		if err := co.Close(); err != nil {
			l.logger.Warn("removing checkout", "dir", co.Dir, "err", err)
		}
	}()

	start := time.Now()
	hits, err := l.scanner.Scan(ctx, co.Dir)
	if err != nil {
		return sourceError("scan", p, err)
	}
	set := scanner.Merge(hits)
	l.logger.Debug("scanned source", "purl", p.Key(), "hits", len(hits), "licenses", set.Len(), "took", time.Since(start))
	return ApplyDetections(ed, set)
}

// ApplyDetections records the accepted detections of set: the list of
// expressions and their conjunction, at the aggregated confidence.
func ApplyDetections(ed *meta.Editor, set *license.Set) error {
	licenses := set.Licenses()
	if len(licenses) == 0 {
		return nil
	}
	score := min(set.Confidence(), MaxScanTrust)
	if score <= meta.None {
		return nil
	}
	if err := ed.Update(meta.DetectedLicenses, score, meta.List(licenses...)); err != nil {
		return err
	}
	return ed.Update(meta.DetectedLicense, score, meta.String(set.Expression()))
}

// Curations looks up curated values by coordinate; *curation.Set
// implements it.
type Curations interface {
	Lookup(p purl.PURL) (map[meta.Field]meta.Value, bool)
}

// CurationListener applies curated values to new packages at truth.
type CurationListener struct {
	curations Curations
	logger    *log.Logger
}

// NewCurationListener returns a listener over c.
func NewCurationListener(c Curations, logger *log.Logger) *CurationListener {
	return &CurationListener{curations: c, logger: orDefault(logger)}
}

// Name implements registry.Named.
func (l *CurationListener) Name() string { return "curation" }

// OnUpdated implements registry.Listener.
func (l *CurationListener) OnUpdated(ev registry.Event) registry.Task {
	if !ev.IsNew() {
		return nil
	}
	values, ok := l.curations.Lookup(ev.PURL)
	if !ok {
		return nil
	}
	return func(_ context.Context, ed *meta.Editor) error {
		l.logger.Debug("applying curation", "purl", ed.PURL().Key(), "fields", len(values))
		return curation.Write(ed, values)
	}
}
