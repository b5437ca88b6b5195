// Package dailies defines the contract between the daily catalog and
// the preparation engine: daily definitions, the row model, row
// values, and the persisted per-character state.
package dailies

import (
	"github.com/dailyforge/dailies-api/internal/entities"
	"github.com/dailyforge/dailies-api/internal/filter"
)

// RowType identifies the kind of a row.
type RowType string

// Row types
const (
	RowTypeSelect RowType = "select"
	RowTypeRandom RowType = "random"
	RowTypeCombo  RowType = "combo"
	RowTypeAlert  RowType = "alert"
	RowTypeInput  RowType = "input"
	RowTypeNotify RowType = "notify"
	RowTypeDrop   RowType = "drop"
)

// DefaultOrder returns the display priority used when a daily
// collapses to a single row and is interleaved with other single-row
// dailies. Higher sorts first.
func (t RowType) DefaultOrder() int {
	switch t {
	case RowTypeSelect:
		return 100
	case RowTypeCombo:
		return 80
	case RowTypeRandom:
		return 60
	case RowTypeAlert:
		return 40
	case RowTypeInput, RowTypeNotify:
		return 20
	case RowTypeDrop:
		return 0
	default:
		return 0
	}
}

// Condition gates whether a row is surfaced. The zero value surfaces
// the row.
type Condition int

// Condition states
const (
	ConditionShown Condition = iota
	ConditionHidden
)

// Option is one selectable option of a select, random, or combo row.
// An Option with Group set and an empty Value is a group boundary
// marker, a pure rendering hint.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Group string `json:"group,omitempty"`
	// Unique overrides Value when checking unique-group collisions.
	Unique string `json:"unique,omitempty"`
	// SkipUnique exempts the option from unique-group collisions.
	SkipUnique bool `json:"skip_unique,omitempty"`
}

// IsGroup reports whether the option is a group boundary marker.
func (o Option) IsGroup() bool {
	return o.Group != "" && o.Value == ""
}

// UniqueValue returns the value used for unique-group collision
// checks: the explicit unique datum when declared, else the raw
// value.
func (o Option) UniqueValue() string {
	if o.Unique != "" {
		return o.Unique
	}
	return o.Value
}

// Row is one selectable unit inside a daily. Data carries the
// type-specific payload; every switch over it must be exhaustive.
type Row struct {
	// Slug is unique within the daily.
	Slug  string
	Label string
	// Order overrides the type-default display priority when set.
	Order *int
	// Save persists the row's value across days.
	Save      bool
	Condition Condition
	Data      RowData
}

// Type returns the row's type, taken from its payload.
func (r Row) Type() RowType {
	return r.Data.rowType()
}

// DisplayOrder returns the explicit order when set, else the type
// default.
func (r Row) DisplayOrder() int {
	if r.Order != nil {
		return *r.Order
	}
	return r.Type().DefaultOrder()
}

// RowData is the closed set of type-specific row payloads.
type RowData interface {
	rowType() RowType
}

// SelectData is the payload of a select row.
type SelectData struct {
	Options []Option
	// Unique binds rows sharing the key into a no-duplicate-selection
	// constraint.
	Unique string
}

func (SelectData) rowType() RowType { return RowTypeSelect }

// RandomData is the payload of a random row. The committed value is
// sampled fresh at accept time.
type RandomData struct {
	Options []Option
	// Unique binds rows sharing the key into a no-duplicate-selection
	// constraint; the accept-time sample skips claimed options.
	Unique string
}

func (RandomData) rowType() RowType { return RowTypeRandom }

// ComboData is the payload of a combo row: a select with an optional
// free-text entry.
type ComboData struct {
	Options []Option
	Unique  string
	// FreeText allows typing a value not present in the options.
	FreeText bool
}

func (ComboData) rowType() RowType { return RowTypeCombo }

// AlertData is the payload of an alert row: a static message that
// must be acknowledged before the form can be accepted.
type AlertData struct {
	Message string
}

func (AlertData) rowType() RowType { return RowTypeAlert }

// InputData is the payload of a free-text input row.
type InputData struct {
	Placeholder string
}

func (InputData) rowType() RowType { return RowTypeInput }

// NotifyData is the payload of a notify row, display-only free text.
type NotifyData struct {
	Message string
}

func (NotifyData) rowType() RowType { return RowTypeNotify }

// OnDropFunc validates or transforms a dropped item after the filter
// checks pass. Returning an error rejects the drop.
type OnDropFunc func(item *entities.Item) error

// DropData is the payload of a drop row.
type DropData struct {
	Filter *filter.Spec
	Note   string
	OnDrop OnDropFunc
}

func (DropData) rowType() RowType { return RowTypeDrop }
