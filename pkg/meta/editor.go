package meta

import (
	"github.com/philips-software/bom-base-sub000/pkg/errors"
	"github.com/philips-software/bom-base-sub000/pkg/purl"
)

// Editor is a single-use mutation context over one package.
//
// It records which fields actually changed during its lifetime and keeps a
// snapshot of the package values. The snapshot is taken when the editor is
// created and includes every update made through this editor. Only changes
// made by other editors after creation are left out, so the notification
// built from it reflects the moment of this edit.
type Editor struct {
	pkg      *Package
	modified FieldSet
	snapshot map[Field]Value
}

// NewEditor opens an editor on pkg.
func NewEditor(pkg *Package) *Editor {
	return &Editor{
		pkg:      pkg,
		snapshot: pkg.Values(),
	}
}

// PURL returns the coordinate of the edited package.
func (e *Editor) PURL() purl.PURL { return e.pkg.PURL() }

// Get returns the current primary value of a field.
func (e *Editor) Get(f Field) (Value, bool) {
	a, ok := e.pkg.AttributeFor(f)
	if !ok {
		return Value{}, false
	}
	return a.Value()
}

// Update offers a value for a field at a score, creating the attribute when
// needed. The field is recorded as modified when the primary value changed.
func (e *Editor) Update(f Field, score Trust, v Value) error {
	if v.kind == KindInvalid {
		if !f.Valid() {
			return errors.New(errors.ErrCodeInvalidField, "unknown field %d", f)
		}
		return nil
	}
	if err := checkKind(f, v); err != nil {
		return err
	}
	a, ok := e.pkg.AttributeFor(f)
	if !ok {
		a = NewAttribute(f)
		if err := e.pkg.Add(a); err != nil {
			return err
		}
	}
	changed, err := a.SetValue(score, v)
	if err != nil {
		return err
	}
	if changed {
		e.modified.Add(f)
		e.snapshot[f] = a.value
	}
	return nil
}

// Trust returns the nearest named level of the field's current score,
// or [None] when the field holds no value.
func (e *Editor) Trust(f Field) Trust {
	a, ok := e.pkg.AttributeFor(f)
	if !ok {
		return None
	}
	if _, ok := a.Value(); !ok {
		return None
	}
	return a.Score().Level()
}

// Score returns the exact current score of a field.
func (e *Editor) Score(f Field) Trust {
	if a, ok := e.pkg.AttributeFor(f); ok {
		return a.Score()
	}
	return None
}

// ModifiedFields returns the fields changed through this editor.
func (e *Editor) ModifiedFields() FieldSet { return e.modified }

// Snapshot returns an independent copy of the values captured by the editor.
func (e *Editor) Snapshot() map[Field]Value { return copyValues(e.snapshot) }
