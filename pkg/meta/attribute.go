package meta

import "encoding/json"

// Attribute is the trust-scored value cell for one field of one package.
//
// It holds a primary value and score, plus the best value that lost a
// promotion contest. Once the primary score reaches [Truth] the value can
// only be replaced by another truth.
type Attribute struct {
	field    Field
	value    Value
	score    Trust
	altValue Value
	altScore Trust
}

// NewAttribute returns an empty attribute for field.
func NewAttribute(field Field) *Attribute {
	return &Attribute{field: field}
}

// Field returns the field the attribute stores.
func (a *Attribute) Field() Field { return a.field }

// Value returns the primary value; ok is false when nothing is stored.
func (a *Attribute) Value() (v Value, ok bool) {
	return a.value, !a.value.IsEmpty()
}

// Score returns the score of the primary value, 0 when unset.
func (a *Attribute) Score() Trust { return a.score }

// Alt returns the best rejected value and its score.
func (a *Attribute) Alt() (Value, Trust) { return a.altValue, a.altScore }

// IsTruth reports whether the primary value is frozen.
func (a *Attribute) IsTruth() bool { return a.score >= Truth }

// SetValue offers a value at a score and reports whether the primary value
// changed. A value of the wrong kind for the field fails with a validation
// error and leaves the attribute untouched.
//
// Empty values, scores at or below zero, and anything below truth offered
// to a truth attribute are ignored. A higher score for the value already
// held only raises the score and reports no change. Re-asserting the value
// already held at truth reports no change either, so truth is idempotent.
func (a *Attribute) SetValue(score Trust, v Value) (bool, error) {
	if v.kind == KindInvalid {
		return false, nil
	}
	if err := checkKind(a.field, v); err != nil {
		return false, err
	}
	if v.IsEmpty() || !score.Valid() {
		return false, nil
	}
	if a.IsTruth() && score < Truth {
		return false, nil
	}

	switch {
	case score >= Truth:
		changed := !(a.IsTruth() && a.value.Equal(v))
		a.value, a.score = v, Truth
		a.altValue, a.altScore = Value{}, None
		return changed, nil

	case score > a.score:
		if a.value.Equal(v) {
			a.score = score
			return false, nil
		}
		if !a.value.IsEmpty() {
			a.altValue, a.altScore = a.value, a.score
		}
		a.value, a.score = v, score
		return true, nil

	default:
		if score > a.altScore && !a.value.Equal(v) {
			a.altValue, a.altScore = v, score
		}
		return false, nil
	}
}

// AttributeState is the persisted form of an attribute.
type AttributeState struct {
	Field    Field `json:"field"`
	Value    Value `json:"value"`
	Score    Trust `json:"score"`
	AltValue Value `json:"alt_value"`
	AltScore Trust `json:"alt_score,omitempty"`
}

// UnmarshalJSON decodes the values using the kind fixed by the field.
func (s *AttributeState) UnmarshalJSON(data []byte) error {
	var raw struct {
		Field    Field           `json:"field"`
		Value    json.RawMessage `json:"value"`
		Score    Trust           `json:"score"`
		AltValue json.RawMessage `json:"alt_value"`
		AltScore Trust           `json:"alt_score"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	value, err := DecodeValue(raw.Field, raw.Value)
	if err != nil {
		return err
	}
	alt, err := DecodeValue(raw.Field, raw.AltValue)
	if err != nil {
		return err
	}
	*s = AttributeState{
		Field:    raw.Field,
		Value:    value,
		Score:    raw.Score,
		AltValue: alt,
		AltScore: raw.AltScore,
	}
	return nil
}

// State captures the attribute for persistence.
func (a *Attribute) State() AttributeState {
	return AttributeState{
		Field:    a.field,
		Value:    a.value,
		Score:    a.score,
		AltValue: a.altValue,
		AltScore: a.altScore,
	}
}

// RestoreAttribute rebuilds an attribute from its persisted state.
// The state is trusted as written; only the value kinds are checked.
func RestoreAttribute(s AttributeState) (*Attribute, error) {
	for _, v := range []Value{s.Value, s.AltValue} {
		if v.kind != KindInvalid {
			if err := checkKind(s.Field, v); err != nil {
				return nil, err
			}
		}
	}
	return &Attribute{
		field:    s.Field,
		value:    s.Value,
		score:    s.Score,
		altValue: s.AltValue,
		altScore: s.AltScore,
	}, nil
}
