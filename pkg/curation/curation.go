// Package curation holds manually curated package values.
//
// Curations are kept in a YAML file:
//
//	packages:
//	  - purl: pkg:npm/left-pad@1.3.0
//	    values:
//	      declared_license: MIT
//	      source_location: git+https://github.com/stevemao/left-pad.git
//	      attribution: [Azer Koçulu, Steve Mao]
//
// Curated values are written at truth, which freezes them against every
// automatic source. Removing an entry from the file does not thaw values
// that were already applied.
package curation

import (
	"maps"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/philips-software/bom-base-sub000/pkg/errors"
	"github.com/philips-software/bom-base-sub000/pkg/meta"
	"github.com/philips-software/bom-base-sub000/pkg/purl"
)

// Entry is the curated values of one package.
type Entry struct {
	PURL   purl.PURL
	Values map[meta.Field]meta.Value
}

type file struct {
	Packages []struct {
		PURL   string               `yaml:"purl"`
		Values map[string]yaml.Node `yaml:"values"`
	} `yaml:"packages"`
}

// Parse decodes a curation file. Scalars are read as text, so a digest
// that happens to be all digits stays a string.
func Parse(data []byte) ([]Entry, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode curation file")
	}
	entries := make([]Entry, 0, len(f.Packages))
	for i, pkg := range f.Packages {
		p, err := purl.Parse(pkg.PURL)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "curation %d", i+1)
		}
		e := Entry{PURL: p, Values: make(map[meta.Field]meta.Value, len(pkg.Values))}
		for name, node := range pkg.Values {
			field, err := meta.ParseField(name)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "curation of %s", p.Key())
			}
			raw, err := nodeValue(&node)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "curation of %s, field %s", p.Key(), field)
			}
			v, err := meta.ValueFor(field, raw)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "curation of %s", p.Key())
			}
			e.Values[field] = v
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func nodeValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return n.Value, nil
	case yaml.SequenceNode:
		items := make([]string, 0, len(n.Content))
		for _, c := range n.Content {
			if c.Kind != yaml.ScalarNode {
				return nil, errors.New(errors.ErrCodeInvalidValue, "line %d: list items must be scalars", c.Line)
			}
			items = append(items, c.Value)
		}
		return items, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidValue, "line %d: expected a scalar or a list", n.Line)
}

// Load reads and parses the curation file at path.
func Load(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read curation file")
	}
	return Parse(data)
}

// Set is the current curations, keyed by coordinate. It is safe for
// concurrent use.
type Set struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{entries: make(map[string]Entry)}
}

// Lookup returns a copy of the curated values of p.
func (s *Set) Lookup(p purl.PURL) (map[meta.Field]meta.Value, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[p.Key()]
	if !ok {
		return nil, false
	}
	return maps.Clone(e.Values), true
}

// Len returns the number of curated packages.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Replace swaps in entries and returns those that are new or differ from
// the previous content. Later entries for the same coordinate win.
func (s *Set) Replace(entries []Entry) []Entry {
	next := make(map[string]Entry, len(entries))
	for _, e := range entries {
		next[e.PURL.Key()] = e
	}

	s.mu.Lock()
	prev := s.entries
	s.entries = next
	s.mu.Unlock()

	var changed []Entry
	for key, e := range next {
		if old, ok := prev[key]; !ok || !sameValues(old.Values, e.Values) {
			changed = append(changed, e)
		}
	}
	return changed
}

func sameValues(a, b map[meta.Field]meta.Value) bool {
	return maps.EqualFunc(a, b, meta.Value.Equal)
}

// Write applies curated values through ed at truth.
func Write(ed *meta.Editor, values map[meta.Field]meta.Value) error {
	for _, f := range meta.Fields() {
		v, ok := values[f]
		if !ok {
			continue
		}
		if err := ed.Update(f, meta.Truth, v); err != nil {
			return err
		}
	}
	return nil
}
