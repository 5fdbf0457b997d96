package harvest

import (
	"context"
	stderrors "errors"

	"github.com/philips-software/bom-base-sub000/pkg/errors"
	"github.com/philips-software/bom-base-sub000/pkg/integrations"
	"github.com/philips-software/bom-base-sub000/pkg/meta"
	"github.com/philips-software/bom-base-sub000/pkg/purl"
)

// Metadata is what a source knows about a package.
type Metadata interface {
	// Value returns the candidate value of f, if the source has one.
	Value(f meta.Field) (meta.Value, bool)
	// Trust returns how much the source's value of f deserves to be believed.
	Trust(f meta.Field) meta.Trust
}

// Source fetches candidate metadata for packages of the types it supports.
type Source interface {
	Name() string
	Supports(p purl.PURL) bool
	Fetch(ctx context.Context, p purl.PURL) (Metadata, error)
}

// Candidate is a map-backed Metadata. The zero value is not usable; create
// one with NewCandidate.
type Candidate struct {
	values       map[meta.Field]meta.Value
	trust        map[meta.Field]meta.Trust
	defaultTrust meta.Trust
}

// NewCandidate returns an empty candidate whose fields default to trust.
func NewCandidate(trust meta.Trust) *Candidate {
	return &Candidate{
		values:       make(map[meta.Field]meta.Value),
		trust:        make(map[meta.Field]meta.Trust),
		defaultTrust: trust,
	}
}

// Set records a value. Empty values are ignored.
func (c *Candidate) Set(f meta.Field, v meta.Value) *Candidate {
	if !v.IsEmpty() {
		c.values[f] = v
	}
	return c
}

// SetString records a string value.
func (c *Candidate) SetString(f meta.Field, s string) *Candidate {
	return c.Set(f, meta.String(s))
}

// SetURI records a location. Values that are not acceptable locations are
// dropped: registries publish all sorts of strings in URL fields.
func (c *Candidate) SetURI(f meta.Field, raw string) *Candidate {
	if raw == "" {
		return c
	}
	if v, err := meta.URI(raw); err == nil {
		c.Set(f, v)
	}
	return c
}

// SetList records a list value.
func (c *Candidate) SetList(f meta.Field, items ...string) *Candidate {
	return c.Set(f, meta.List(items...))
}

// WithTrust overrides the trust of one field.
func (c *Candidate) WithTrust(f meta.Field, t meta.Trust) *Candidate {
	c.trust[f] = t
	return c
}

// Value implements Metadata.
func (c *Candidate) Value(f meta.Field) (meta.Value, bool) {
	v, ok := c.values[f]
	return v, ok
}

// Trust implements Metadata.
func (c *Candidate) Trust(f meta.Field) meta.Trust {
	if t, ok := c.trust[f]; ok {
		return t
	}
	return c.defaultTrust
}

// Len returns the number of fields with a value.
func (c *Candidate) Len() int { return len(c.values) }

// Apply writes every value of m through ed at the trust m assigns to it.
// A value of the wrong kind for its field aborts with a validation error.
func Apply(ed *meta.Editor, m Metadata) error {
	for _, f := range meta.Fields() {
		v, ok := m.Value(f)
		if !ok {
			continue
		}
		if err := ed.Update(f, m.Trust(f), v); err != nil {
			return err
		}
	}
	return nil
}

// sourceError classifies a failure of source name for p so the runner logs
// it as a source outage rather than an internal error.
func sourceError(name string, p purl.PURL, err error) error {
	code := errors.ErrCodeSource
	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		code = errors.ErrCodeTimeout
	case stderrors.Is(err, integrations.ErrRateLimited):
		code = errors.ErrCodeRateLimited
	case stderrors.Is(err, integrations.ErrNetwork):
		code = errors.ErrCodeNetwork
	case errors.GetCode(err) != "":
		return err
	}
	return errors.Wrap(code, err, "%s lookup of %s", name, p.Key())
}
