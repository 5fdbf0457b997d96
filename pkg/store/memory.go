package store

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/philips-software/bom-base-sub000/pkg/meta"
	"github.com/philips-software/bom-base-sub000/pkg/purl"
)

// Memory is an in-process Store. Packages are copied on the way in and out.
type Memory struct {
	mu   sync.RWMutex
	pkgs map[string]*meta.Package
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{pkgs: make(map[string]*meta.Package)}
}

func (m *Memory) CreatePackage(_ context.Context, p purl.PURL) (*meta.Package, error) {
	key := p.Key()
	m.mu.Lock()
	defer m.mu.Unlock()
	if pkg, ok := m.pkgs[key]; ok {
		return pkg.Clone(), nil
	}
	pkg := meta.NewPackage(p)
	m.pkgs[key] = pkg
	return pkg.Clone(), nil
}

func (m *Memory) FindPackage(_ context.Context, p purl.PURL) (*meta.Package, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	pkg, ok := m.pkgs[p.Key()]
	if !ok {
		return nil, false, nil
	}
	return pkg.Clone(), true, nil
}

func (m *Memory) FindPackages(_ context.Context, f Filter) ([]*meta.Package, error) {
	m.mu.RLock()
	keys := make([]string, 0, len(m.pkgs))
	for k, pkg := range m.pkgs {
		if f.Matches(pkg.PURL()) {
			keys = append(keys, k)
		}
	}
	slices.SortFunc(keys, strings.Compare)
	if len(keys) > f.limit() {
		keys = keys[:f.limit()]
	}
	out := make([]*meta.Package, len(keys))
	for i, k := range keys {
		out[i] = m.pkgs[k].Clone()
	}
	m.mu.RUnlock()
	return out, nil
}

func (m *Memory) SavePackage(_ context.Context, pkg *meta.Package) error {
	m.mu.Lock()
	m.pkgs[pkg.PURL().Key()] = pkg.Clone()
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored packages.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.pkgs)
}

func (m *Memory) Close() error { return nil }

var _ Store = (*Memory)(nil)
