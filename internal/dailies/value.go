package dailies

import (
	"encoding/json"

	"github.com/dailyforge/dailies-api/internal/errors"
)

// Value is the closed set of row value shapes. Select, random, and
// input rows carry a plain string; combo rows carry {selected,
// input}; drop rows carry {uuid, name}.
type Value interface {
	valueType() RowType
	// Blank reports whether the value counts as empty for accept
	// validation.
	Blank() bool
}

// StringValue is the value of a select, random, or input row.
type StringValue string

func (StringValue) valueType() RowType { return RowTypeSelect }

// Blank implements Value.
func (v StringValue) Blank() bool { return v == "" }

// String returns the raw string.
func (v StringValue) String() string { return string(v) }

// ComboValue is the value of a combo row. When Input is set the user
// typed a free-text value instead of selecting one.
type ComboValue struct {
	Selected string `json:"selected"`
	Input    string `json:"input"`
}

func (ComboValue) valueType() RowType { return RowTypeCombo }

// Blank implements Value.
func (v ComboValue) Blank() bool { return v.Selected == "" && v.Input == "" }

// Resolved returns the effective value: the free-text input when
// present, else the selection.
func (v ComboValue) Resolved() string {
	if v.Input != "" {
		return v.Input
	}
	return v.Selected
}

// DropValue is the value of a drop row: the chosen item's catalog
// UUID and cached name.
type DropValue struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
}

func (DropValue) valueType() RowType { return RowTypeDrop }

// Blank implements Value.
func (v DropValue) Blank() bool { return v.UUID == "" }

// SavedValue wraps a Value for JSON persistence. The wire shape is
// the value's natural shape, with the object keys discriminating the
// variant on the way back in.
type SavedValue struct {
	Value Value
}

// MarshalJSON implements json.Marshaler.
func (s SavedValue) MarshalJSON() ([]byte, error) {
	switch v := s.Value.(type) {
	case StringValue:
		return json.Marshal(string(v))
	case ComboValue:
		return json.Marshal(struct {
			Selected string `json:"selected"`
			Input    string `json:"input"`
		}(v))
	case DropValue:
		return json.Marshal(struct {
			UUID string `json:"uuid"`
			Name string `json:"name"`
		}(v))
	case nil:
		return []byte("null"), nil
	default:
		return nil, errors.Internalf("unknown row value type %T", s.Value)
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *SavedValue) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		s.Value = StringValue(str)
		return nil
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return errors.Wrap(err, "failed to decode saved row value")
	}

	if _, ok := probe["uuid"]; ok {
		var v DropValue
		if err := json.Unmarshal(data, &v); err != nil {
			return errors.Wrap(err, "failed to decode drop value")
		}
		s.Value = v
		return nil
	}

	var v ComboValue
	if err := json.Unmarshal(data, &v); err != nil {
		return errors.Wrap(err, "failed to decode combo value")
	}
	s.Value = v
	return nil
}

// Matches reports whether the value's shape fits the given row type.
// Persisted values of a stale shape are discarded on rehydration.
func (s SavedValue) Matches(t RowType) bool {
	if s.Value == nil {
		return false
	}
	switch s.Value.(type) {
	case StringValue:
		return t == RowTypeSelect || t == RowTypeRandom || t == RowTypeInput
	case ComboValue:
		return t == RowTypeCombo
	case DropValue:
		return t == RowTypeDrop
	}
	return false
}
