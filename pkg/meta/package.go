package meta

import (
	"encoding/json"
	"iter"
	"maps"

	"github.com/philips-software/bom-base-sub000/pkg/errors"
	"github.com/philips-software/bom-base-sub000/pkg/purl"
)

// Package is the aggregate of all attributes known for one coordinate.
// Attributes are only ever added; each field has at most one.
type Package struct {
	purl  purl.PURL
	attrs map[Field]*Attribute
}

// NewPackage returns a package without attributes.
func NewPackage(p purl.PURL) *Package {
	return &Package{purl: p, attrs: make(map[Field]*Attribute)}
}

// PURL returns the coordinate of the package.
func (p *Package) PURL() purl.PURL { return p.purl }

// Add attaches an attribute. A second attribute for the same field is an error.
func (p *Package) Add(a *Attribute) error {
	if _, ok := p.attrs[a.field]; ok {
		return errors.New(errors.ErrCodeDuplicateAttribute, "%s already has a %s attribute", p.purl, a.field)
	}
	p.attrs[a.field] = a
	return nil
}

// AttributeFor looks up the attribute of a field.
func (p *Package) AttributeFor(f Field) (*Attribute, bool) {
	a, ok := p.attrs[f]
	return a, ok
}

// Attributes iterates all attributes in field order.
// The sequence can be ranged over any number of times.
func (p *Package) Attributes() iter.Seq[*Attribute] {
	return func(yield func(*Attribute) bool) {
		for _, f := range Fields() {
			if a, ok := p.attrs[f]; ok && !yield(a) {
				return
			}
		}
	}
}

// Values returns the non-empty primary values keyed by field.
func (p *Package) Values() map[Field]Value {
	out := make(map[Field]Value, len(p.attrs))
	for a := range p.Attributes() {
		if v, ok := a.Value(); ok {
			out[a.field] = v
		}
	}
	return out
}

// Clone returns a deep copy, used by stores that hand out packages by value.
func (p *Package) Clone() *Package {
	c := NewPackage(p.purl)
	for f, a := range p.attrs {
		cp := *a
		c.attrs[f] = &cp
	}
	return c
}

type packageState struct {
	PURL       purl.PURL        `json:"purl"`
	Attributes []AttributeState `json:"attributes"`
}

// MarshalJSON encodes the package with all attribute states.
func (p *Package) MarshalJSON() ([]byte, error) {
	st := packageState{PURL: p.purl, Attributes: make([]AttributeState, 0, len(p.attrs))}
	for a := range p.Attributes() {
		st.Attributes = append(st.Attributes, a.State())
	}
	return json.Marshal(st)
}

// UnmarshalJSON restores a package written by MarshalJSON.
func (p *Package) UnmarshalJSON(data []byte) error {
	var st packageState
	if err := json.Unmarshal(data, &st); err != nil {
		return err
	}
	restored := NewPackage(st.PURL)
	for _, as := range st.Attributes {
		a, err := RestoreAttribute(as)
		if err != nil {
			return err
		}
		if err := restored.Add(a); err != nil {
			return err
		}
	}
	*p = *restored
	return nil
}

// copyValues returns an independent copy of a value map.
func copyValues(m map[Field]Value) map[Field]Value {
	out := maps.Clone(m)
	if out == nil {
		out = make(map[Field]Value)
	}
	return out
}
