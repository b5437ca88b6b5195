package dailies

import (
	"encoding/json"

	"github.com/dailyforge/dailies-api/internal/errors"
)

// FlagScope is the namespace this module's flag buckets live under,
// both on the character and on items.
const FlagScope = "dailies"

// Reserved top-level keys of the persisted flag bucket. Every other
// top-level key is a daily's saved row values.
const (
	stateKeyExtra      = "extra"
	stateKeyRested     = "rested"
	stateKeySchema     = "schema"
	stateKeyAddedItems = "addedItems"
)

// State is the per-character persisted flag bucket:
// { [dailyKey]: { [rowSlug]: value }, extra, rested, schema,
// addedItems }.
type State struct {
	// Dailies maps daily key to that daily's saved row values.
	Dailies map[string]map[string]SavedValue

	// Extra is the free-form bucket process callbacks merge into.
	Extra map[string]interface{}

	// Rested is reset to false on every accept.
	Rested bool

	// Schema is the stored schema version string.
	Schema string

	// AddedItems lists the IDs of items created by the last accept.
	AddedItems []string
}

// NewState returns an empty state.
func NewState() *State {
	return &State{
		Dailies: make(map[string]map[string]SavedValue),
		Extra:   make(map[string]interface{}),
	}
}

// Saved returns the saved value of (dailyKey, slug), or nil.
func (s *State) Saved(dailyKey, slug string) Value {
	if rows, ok := s.Dailies[dailyKey]; ok {
		if v, ok := rows[slug]; ok {
			return v.Value
		}
	}
	return nil
}

// SetSaved stores a row value under (dailyKey, slug).
func (s *State) SetSaved(dailyKey, slug string, value Value) {
	if s.Dailies == nil {
		s.Dailies = make(map[string]map[string]SavedValue)
	}
	rows, ok := s.Dailies[dailyKey]
	if !ok {
		rows = make(map[string]SavedValue)
		s.Dailies[dailyKey] = rows
	}
	rows[slug] = SavedValue{Value: value}
}

// MarshalJSON implements json.Marshaler, flattening daily buckets to
// the top level next to the reserved keys.
func (s *State) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(s.Dailies)+4)
	for key, rows := range s.Dailies {
		if len(rows) == 0 {
			continue
		}
		out[key] = rows
	}
	if len(s.Extra) > 0 {
		out[stateKeyExtra] = s.Extra
	}
	out[stateKeyRested] = s.Rested
	if s.Schema != "" {
		out[stateKeySchema] = s.Schema
	}
	if len(s.AddedItems) > 0 {
		out[stateKeyAddedItems] = s.AddedItems
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *State) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "failed to decode persisted state")
	}

	s.Dailies = make(map[string]map[string]SavedValue)
	s.Extra = make(map[string]interface{})
	s.AddedItems = nil
	s.Rested = false
	s.Schema = ""

	for key, value := range raw {
		switch key {
		case stateKeyExtra:
			if err := json.Unmarshal(value, &s.Extra); err != nil {
				return errors.Wrap(err, "failed to decode extra flags")
			}
		case stateKeyRested:
			if err := json.Unmarshal(value, &s.Rested); err != nil {
				return errors.Wrap(err, "failed to decode rested flag")
			}
		case stateKeySchema:
			if err := json.Unmarshal(value, &s.Schema); err != nil {
				return errors.Wrap(err, "failed to decode schema version")
			}
		case stateKeyAddedItems:
			if err := json.Unmarshal(value, &s.AddedItems); err != nil {
				return errors.Wrap(err, "failed to decode added item ids")
			}
		default:
			rows := make(map[string]SavedValue)
			if err := json.Unmarshal(value, &rows); err != nil {
				// Unknown non-object key; tolerate rather than
				// refuse to load the whole bucket.
				continue
			}
			s.Dailies[key] = rows
		}
	}
	return nil
}
