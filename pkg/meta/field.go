package meta

import (
	"iter"
	"math/bits"
	"strings"

	"github.com/philips-software/bom-base-sub000/pkg/errors"
)

// Field is one statically-typed metadata slot of a package.
type Field uint8

// Supported fields. The order is stable and used for display and bit sets.
const (
	Title Field = iota
	Description
	HomePage
	Attribution
	SourceLocation
	DownloadLocation
	DeclaredLicense
	DetectedLicense
	DetectedLicenses
	SHA1
	SHA256
	SHA512
	Supplier
	Originator

	fieldCount
)

type fieldInfo struct {
	name string
	kind Kind
}

var fieldInfos = [fieldCount]fieldInfo{
	Title:            {"title", KindString},
	Description:      {"description", KindString},
	HomePage:         {"home_page", KindURI},
	Attribution:      {"attribution", KindList},
	SourceLocation:   {"source_location", KindURI},
	DownloadLocation: {"download_location", KindURI},
	DeclaredLicense:  {"declared_license", KindString},
	DetectedLicense:  {"detected_license", KindString},
	DetectedLicenses: {"detected_licenses", KindList},
	SHA1:             {"sha1", KindString},
	SHA256:           {"sha256", KindString},
	SHA512:           {"sha512", KindString},
	Supplier:         {"supplier", KindString},
	Originator:       {"originator", KindString},
}

// Fields returns every supported field in declaration order.
func Fields() []Field {
	out := make([]Field, fieldCount)
	for i := range out {
		out[i] = Field(i)
	}
	return out
}

// Valid reports whether f is a known field.
func (f Field) Valid() bool { return f < fieldCount }

// Kind returns the value kind the field accepts.
func (f Field) Kind() Kind {
	if !f.Valid() {
		return KindInvalid
	}
	return fieldInfos[f].kind
}

// String returns the wire name of the field (e.g. "source_location").
func (f Field) String() string {
	if !f.Valid() {
		return "unknown"
	}
	return fieldInfos[f].name
}

// MarshalText encodes the field by name.
func (f Field) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidField, "unknown field %d", f)
	}
	return []byte(f.String()), nil
}

// UnmarshalText decodes a field name.
func (f *Field) UnmarshalText(text []byte) error {
	parsed, err := ParseField(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// ParseField resolves a wire name. Dashes and case are ignored so that
// "Source-Location" and "source_location" name the same field.
func ParseField(s string) (Field, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for i, info := range fieldInfos {
		if info.name == norm {
			return Field(i), nil
		}
	}
	return 0, errors.New(errors.ErrCodeInvalidField, "unknown field %q", s)
}

// FieldSet is a set of fields.
type FieldSet uint32

// NewFieldSet returns a set holding fields.
func NewFieldSet(fields ...Field) FieldSet {
	var s FieldSet
	for _, f := range fields {
		s.Add(f)
	}
	return s
}

// Add inserts f into the set.
func (s *FieldSet) Add(f Field) {
	if f.Valid() {
		*s |= 1 << f
	}
}

// Has reports whether f is in the set.
func (s FieldSet) Has(f Field) bool {
	return f.Valid() && s&(1<<f) != 0
}

// HasAny reports whether any of fields is in the set.
func (s FieldSet) HasAny(fields ...Field) bool {
	for _, f := range fields {
		if s.Has(f) {
			return true
		}
	}
	return false
}

// Union returns the fields present in either set.
func (s FieldSet) Union(o FieldSet) FieldSet { return s | o }

// Len returns the number of fields in the set.
func (s FieldSet) Len() int { return bits.OnesCount32(uint32(s)) }

// IsEmpty reports whether the set holds no field.
func (s FieldSet) IsEmpty() bool { return s == 0 }

// All iterates the fields in declaration order.
func (s FieldSet) All() iter.Seq[Field] {
	return func(yield func(Field) bool) {
		for f := Field(0); f < fieldCount; f++ {
			if s.Has(f) && !yield(f) {
				return
			}
		}
	}
}

// Fields returns the members in declaration order.
func (s FieldSet) Fields() []Field {
	out := make([]Field, 0, s.Len())
	for f := range s.All() {
		out = append(out, f)
	}
	return out
}

// String renders the set as "{title,sha1}".
func (s FieldSet) String() string {
	names := make([]string, 0, s.Len())
	for f := range s.All() {
		names = append(names, f.String())
	}
	return "{" + strings.Join(names, ",") + "}"
}
