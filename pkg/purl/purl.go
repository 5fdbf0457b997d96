package purl

import (
	"encoding/json"
	"net/url"
	"sort"
	"strings"

	"github.com/package-url/packageurl-go"

	"github.com/philips-software/bom-base-sub000/pkg/errors"
)

const scheme = "pkg:"

// PURL is a parsed package coordinate.
type PURL struct {
	Type       string
	Namespace  string // may be empty
	Name       string
	Version    string
	Qualifiers map[string]string // may be nil
	Subpath    string
}

// Parse parses a pkg: coordinate.
// Errors carry the [errors.ErrCodeInvalidPURL] code.
func Parse(s string) (PURL, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, scheme) {
		return PURL{}, errors.New(errors.ErrCodeInvalidPURL, "coordinate %q must start with %q", s, scheme)
	}
	if err := checkNameParts(s); err != nil {
		return PURL{}, err
	}

	p, err := packageurl.FromString(s)
	if err != nil {
		return PURL{}, errors.Wrap(errors.ErrCodeInvalidPURL, err, "malformed coordinate %q", s)
	}

	out := PURL{
		Type:      strings.ToLower(p.Type),
		Namespace: p.Namespace,
		Name:      p.Name,
		Version:   p.Version,
		Subpath:   p.Subpath,
	}
	if len(p.Qualifiers) > 0 {
		out.Qualifiers = make(map[string]string, len(p.Qualifiers))
		for _, q := range p.Qualifiers {
			out.Qualifiers[q.Key] = q.Value
		}
	}
	if err := out.validate(); err != nil {
		return PURL{}, err
	}
	return out, nil
}

// MustParse is like Parse but panics on malformed input.
// Intended for tests and constants.
func MustParse(s string) PURL {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

// checkNameParts counts the raw (still encoded) segments after the type.
func checkNameParts(s string) error {
	rest := strings.TrimPrefix(s, scheme)
	rest = strings.TrimLeft(rest, "/")
	if i := strings.IndexAny(rest, "?#"); i >= 0 {
		rest = rest[:i]
	}
	at := strings.LastIndex(rest, "@")
	if at < 0 || at == len(rest)-1 {
		return errors.New(errors.ErrCodeInvalidPURL, "coordinate %q has no version", s)
	}
	path := strings.Trim(rest[:at], "/")
	segments := strings.Split(path, "/")
	// segments[0] is the type
	switch n := len(segments) - 1; {
	case n < 1:
		return errors.New(errors.ErrCodeInvalidPURL, "coordinate %q has no name", s)
	case n > 2:
		return errors.New(errors.ErrCodeInvalidPURL, "coordinate %q has %d name parts (max 2)", s, n)
	}
	return nil
}

func (p PURL) validate() error {
	if p.Type == "" {
		return errors.New(errors.ErrCodeInvalidPURL, "coordinate type is required")
	}
	if p.Version == "" {
		return errors.New(errors.ErrCodeInvalidPURL, "coordinate version is required")
	}
	if err := errors.ValidatePackageName(p.Name); err != nil {
		return err
	}
	if p.Namespace != "" && strings.Contains(p.Namespace, "..") {
		return errors.New(errors.ErrCodeInvalidPURL, "namespace contains invalid characters")
	}
	return nil
}

// Key returns the canonical identity: type, namespace, name and version,
// without qualifiers or subpath.
func (p PURL) Key() string {
	var b strings.Builder
	b.WriteString(scheme)
	b.WriteString(p.Type)
	b.WriteByte('/')
	if p.Namespace != "" {
		b.WriteString(escape(p.Namespace))
		b.WriteByte('/')
	}
	b.WriteString(escape(p.Name))
	b.WriteByte('@')
	b.WriteString(escape(p.Version))
	return b.String()
}

// String returns the full coordinate including qualifiers and subpath.
func (p PURL) String() string {
	s := p.Key()
	if len(p.Qualifiers) > 0 {
		keys := make([]string, 0, len(p.Qualifiers))
		for k := range p.Qualifiers {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + "=" + url.QueryEscape(p.Qualifiers[k])
		}
		s += "?" + strings.Join(parts, "&")
	}
	if p.Subpath != "" {
		s += "#" + p.Subpath
	}
	return s
}

// FullName joins namespace and name with sep, omitting an empty namespace.
// Registry clients use it to build lookup names ("org.group:name", "@scope/name").
func (p PURL) FullName(sep string) string {
	if p.Namespace == "" {
		return p.Name
	}
	return p.Namespace + sep + p.Name
}

// IsZero reports whether p is the zero coordinate.
func (p PURL) IsZero() bool {
	return p.Type == "" && p.Name == ""
}

// MarshalJSON encodes the coordinate as its string form.
func (p PURL) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON decodes a coordinate from its string form.
func (p *PURL) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// escape percent-encodes one path segment; a slash inside a namespace
// becomes %2F so that the segment count survives a round trip.
func escape(s string) string {
	return url.PathEscape(s)
}
