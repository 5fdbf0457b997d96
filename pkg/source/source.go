// Package source materializes a package's source location as a local
// directory tree that a scanner can read.
//
// Locations use the SPDX download location syntax: "file://" paths are
// read in place and anything else is cloned with git, optionally pinned
// to a revision ("git+https://host/repo.git@v1.2.0") and narrowed to a
// subdirectory ("...#packages/core").
package source

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/philips-software/bom-base-sub000/pkg/errors"
)

// Checkout is a materialized source tree.
type Checkout struct {
	// Dir is the root to scan.
	Dir     string
	cleanup func() error
}

// Close removes temporary files of the checkout.
func (c *Checkout) Close() error {
	if c == nil || c.cleanup == nil {
		return nil
	}
	return c.cleanup()
}

// Fetcher materializes source locations.
type Fetcher interface {
	Fetch(ctx context.Context, location string) (*Checkout, error)
}

// Location is a parsed source location.
type Location struct {
	Scheme   string // without the "git+" prefix
	VCS      bool   // written with a "git+" prefix
	URL      string // clone URL or local path
	Revision string
	Subpath  string
}

// ParseLocation splits an SPDX-style location into its parts.
func ParseLocation(raw string) (Location, error) {
	if err := errors.ValidateLocation(raw); err != nil {
		return Location{}, err
	}
	u, err := url.Parse(strings.TrimPrefix(raw, "git+"))
	if err != nil {
		return Location{}, errors.Wrap(errors.ErrCodeInvalidValue, err, "malformed location %q", raw)
	}
	loc := Location{
		Scheme:  u.Scheme,
		VCS:     strings.HasPrefix(raw, "git+"),
		Subpath: strings.Trim(u.Fragment, "/"),
	}
	u.Fragment = ""

	if loc.IsLocal() {
		loc.URL = filepath.FromSlash(u.Path)
		return loc, nil
	}
	if i := strings.LastIndex(u.Path, "@"); i > strings.LastIndex(u.Path, "/") {
		loc.Revision = u.Path[i+1:]
		u.Path = u.Path[:i]
	}
	loc.URL = u.String()
	return loc, nil
}

// IsLocal reports whether the location is a plain directory path.
func (l Location) IsLocal() bool { return l.Scheme == "file" && !l.VCS }

// Multi routes plain file locations to the local fetcher and everything
// else to git.
type Multi struct {
	Local Fetcher
	Git   Fetcher
}

// NewFetcher returns the default fetcher, cloning into temporary
// directories below workdir (the system default when empty).
func NewFetcher(workdir string) *Multi {
	return &Multi{Local: Local{}, Git: &Git{Workdir: workdir}}
}

func (m *Multi) Fetch(ctx context.Context, location string) (*Checkout, error) {
	loc, err := ParseLocation(location)
	if err != nil {
		return nil, err
	}
	if loc.IsLocal() {
		return m.Local.Fetch(ctx, location)
	}
	return m.Git.Fetch(ctx, location)
}

// Local serves file:// locations in place.
type Local struct{}

func (Local) Fetch(_ context.Context, location string) (*Checkout, error) {
	loc, err := ParseLocation(location)
	if err != nil {
		return nil, err
	}
	if !loc.IsLocal() {
		return nil, errors.New(errors.ErrCodeUnsupported, "not a file location: %s", location)
	}
	dir := loc.URL
	if loc.Subpath != "" {
		if err := errors.ValidatePath(loc.Subpath); err != nil {
			return nil, err
		}
		dir = filepath.Join(dir, filepath.FromSlash(loc.Subpath))
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSource, err, "read %s", dir)
	}
	if !info.IsDir() {
		return nil, errors.New(errors.ErrCodeSource, "%s is not a directory", dir)
	}
	return &Checkout{Dir: dir}, nil
}
