package meta

import (
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/philips-software/bom-base-sub000/pkg/errors"
)

// Kind identifies the variant held by a [Value].
type Kind uint8

// Value kinds.
const (
	KindInvalid Kind = iota
	KindString
	KindURI
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindURI:
		return "uri"
	case KindList:
		return "list"
	default:
		return "invalid"
	}
}

// Value is a tagged union over the value kinds a field can hold.
// The zero Value is empty and has KindInvalid.
type Value struct {
	kind Kind
	str  string   // KindString, KindURI
	list []string // KindList
}

// String wraps a plain string.
func String(s string) Value {
	return Value{kind: KindString, str: strings.TrimSpace(s)}
}

// URI wraps a location URI after validating its scheme.
func URI(raw string) (Value, error) {
	raw = strings.TrimSpace(raw)
	if err := errors.ValidateLocation(raw); err != nil {
		return Value{}, err
	}
	if _, err := url.Parse(strings.TrimPrefix(raw, "git+")); err != nil {
		return Value{}, errors.Wrap(errors.ErrCodeInvalidValue, err, "malformed URI %q", raw)
	}
	return Value{kind: KindURI, str: raw}, nil
}

// MustURI is like URI but panics on invalid input.
func MustURI(raw string) Value {
	v, err := URI(raw)
	if err != nil {
		panic(err)
	}
	return v
}

// List wraps a list of strings. Blank items are dropped.
func List(items ...string) Value {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return Value{kind: KindList, list: out}
}

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// IsEmpty reports whether v carries no content.
func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindString, KindURI:
		return v.str == ""
	case KindList:
		return len(v.list) == 0
	default:
		return true
	}
}

// Text returns the string content of a string or URI value.
func (v Value) Text() string { return v.str }

// URL parses a URI value. The "git+" prefix is stripped.
func (v Value) URL() (*url.URL, error) {
	if v.kind != KindURI {
		return nil, errors.New(errors.ErrCodeInvalidValue, "%s value is not a URI", v.kind)
	}
	return url.Parse(strings.TrimPrefix(v.str, "git+"))
}

// Items returns a copy of the items of a list value.
func (v Value) Items() []string { return slices.Clone(v.list) }

// Equal reports whether two values have the same kind and content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	if v.kind == KindList {
		return slices.Equal(v.list, o.list)
	}
	return v.str == o.str
}

// String renders the value for display.
func (v Value) String() string {
	if v.kind == KindList {
		return strings.Join(v.list, ", ")
	}
	return v.str
}

// MarshalJSON encodes strings and URIs as JSON strings and lists as arrays.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindList:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	case KindString, KindURI:
		return json.Marshal(v.str)
	default:
		return []byte("null"), nil
	}
}

// ValueFor converts loosely-typed input (a decoded JSON or YAML value) into
// the kind field accepts. A string is accepted for list fields as a single
// item; anything else of the wrong shape is a validation error.
func ValueFor(field Field, raw any) (Value, error) {
	switch field.Kind() {
	case KindString:
		s, ok := raw.(string)
		if !ok {
			return Value{}, mismatch(field, raw)
		}
		return String(s), nil
	case KindURI:
		s, ok := raw.(string)
		if !ok {
			return Value{}, mismatch(field, raw)
		}
		return URI(s)
	case KindList:
		switch items := raw.(type) {
		case string:
			return List(items), nil
		case []string:
			return List(items...), nil
		case []any:
			out := make([]string, 0, len(items))
			for _, it := range items {
				s, ok := it.(string)
				if !ok {
					return Value{}, mismatch(field, raw)
				}
				out = append(out, s)
			}
			return List(out...), nil
		}
		return Value{}, mismatch(field, raw)
	}
	return Value{}, errors.New(errors.ErrCodeInvalidField, "unknown field %d", field)
}

// DecodeValue decodes a JSON-encoded value for field.
func DecodeValue(field Field, data []byte) (Value, error) {
	if len(data) == 0 || string(data) == "null" {
		return Value{}, nil
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Value{}, errors.Wrap(errors.ErrCodeInvalidValue, err, "decode %s", field)
	}
	return ValueFor(field, raw)
}

func mismatch(field Field, raw any) error {
	return errors.New(errors.ErrCodeInvalidValue, "field %s expects a %s value, got %T", field, field.Kind(), raw)
}

// checkKind verifies that v may be assigned to field.
func checkKind(field Field, v Value) error {
	if !field.Valid() {
		return errors.New(errors.ErrCodeInvalidField, "unknown field %d", field)
	}
	if v.kind != field.Kind() {
		return errors.New(errors.ErrCodeInvalidValue, "field %s expects a %s value, got %s", field, field.Kind(), v.kind)
	}
	return nil
}

// GoString is used by %#v in test failures.
func (v Value) GoString() string {
	return fmt.Sprintf("meta.Value{%s:%q}", v.kind, v.String())
}
