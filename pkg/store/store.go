// Package store persists packages and their attributes.
//
// The [Store] contract is deliberately small: the registry serializes all
// writes to one coordinate, so backends only need atomic single-document
// reads and writes. Four backends are provided:
//
//   - [Memory]: process-local map, the default and the test fixture
//   - [Redis]: one JSON document per coordinate plus per-type index sets
//   - [Mongo]: one document per coordinate in a collection
//   - [SQLite]: one row per coordinate in an embedded database file
//
// Every backend stores the JSON encoding produced by [meta.Package].
// Packages returned by a store are private copies; changes become visible
// to other readers only after [Store.SavePackage].
package store

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/philips-software/bom-base-sub000/pkg/errors"
	"github.com/philips-software/bom-base-sub000/pkg/meta"
	"github.com/philips-software/bom-base-sub000/pkg/purl"
)

// Store is the persistence contract used by the registry.
type Store interface {
	// CreatePackage creates an empty package. Creating a coordinate that
	// already exists returns the stored package.
	CreatePackage(ctx context.Context, p purl.PURL) (*meta.Package, error)

	// FindPackage looks up a package by coordinate.
	FindPackage(ctx context.Context, p purl.PURL) (*meta.Package, bool, error)

	// FindPackages lists packages matching the filter, ordered by coordinate.
	FindPackages(ctx context.Context, f Filter) ([]*meta.Package, error)

	// SavePackage persists the attributes of a package.
	SavePackage(ctx context.Context, pkg *meta.Package) error

	// Close releases backend resources.
	Close() error
}

// DefaultLimit caps FindPackages when the filter sets no limit.
const DefaultLimit = 100

// Filter selects packages by coordinate parts. Empty parts match anything.
type Filter struct {
	Type      string
	Namespace string
	Name      string
	Version   string
	Limit     int
}

func (f Filter) limit() int {
	if f.Limit <= 0 {
		return DefaultLimit
	}
	return f.Limit
}

// Matches reports whether p satisfies the filter. Name matching is a
// case-insensitive substring match; the other parts must be equal.
func (f Filter) Matches(p purl.PURL) bool {
	if f.Type != "" && !strings.EqualFold(f.Type, p.Type) {
		return false
	}
	if f.Namespace != "" && f.Namespace != p.Namespace {
		return false
	}
	if f.Version != "" && f.Version != p.Version {
		return false
	}
	if f.Name != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Name)) {
		return false
	}
	return true
}

func encode(pkg *meta.Package) ([]byte, error) {
	data, err := json.Marshal(pkg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "encode %s", pkg.PURL())
	}
	return data, nil
}

func decode(data []byte) (*meta.Package, error) {
	var pkg meta.Package
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "decode package")
	}
	return &pkg, nil
}
