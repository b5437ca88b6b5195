package dailies

import (
	"github.com/dailyforge/dailies-api/internal/filter"
)

// RenderedOption is one entry of a rendered select/random/combo
// option list. Group boundary entries are rendering hints: a
// GroupStart opens a labelled group, a synthetic GroupEnd closes it.
type RenderedOption struct {
	Value      string `json:"value,omitempty"`
	Label      string `json:"label,omitempty"`
	GroupStart bool   `json:"group_start,omitempty"`
	GroupEnd   bool   `json:"group_end,omitempty"`
	Unique     string `json:"unique,omitempty"`
	SkipUnique bool   `json:"skip_unique,omitempty"`
	Disabled   bool   `json:"disabled,omitempty"`
}

// RenderedRow is one row of the built form model.
type RenderedRow struct {
	DailyKey string  `json:"daily_key"`
	Slug     string  `json:"slug"`
	Label    string  `json:"label"`
	Type     RowType `json:"type"`
	Order    int     `json:"order"`
	Save     bool    `json:"save"`

	// Select / random / combo
	Options       []RenderedOption `json:"options,omitempty"`
	UniqueTag     string           `json:"unique_tag,omitempty"`
	FreeText      bool             `json:"free_text,omitempty"`
	SelectedIndex int              `json:"selected_index"`

	// Alert / notify / input
	Message     string `json:"message,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`

	// Drop
	FilterKind filter.Kind  `json:"filter_kind,omitempty"`
	Filter     *filter.Spec `json:"filter,omitempty"`
	Note       string       `json:"note,omitempty"`

	// Value is the rehydrated persisted value, when one of matching
	// shape exists.
	Value Value `json:"value,omitempty"`
}

// RenderedGroup is a daily rendered as a block of rows.
type RenderedGroup struct {
	DailyKey string         `json:"daily_key"`
	Label    string         `json:"label"`
	Rows     []*RenderedRow `json:"rows"`
}

// Template is the uniform row-based form model for one render pass.
type Template struct {
	// Rows holds flattened single-row dailies, priority sorted.
	Rows []*RenderedRow `json:"rows"`
	// Groups holds multi-row dailies, smallest first.
	Groups []*RenderedGroup `json:"groups"`
	// HasAlert is true when any surfaced row is an alert.
	HasAlert bool `json:"has_alert"`
	// CanAccept is true when there is at least one row to show and
	// no alert is pending.
	CanAccept bool `json:"can_accept"`
}

// AllRows returns every surfaced row: flat rows first, then group
// rows, in display order.
func (t *Template) AllRows() []*RenderedRow {
	out := make([]*RenderedRow, 0, len(t.Rows))
	out = append(out, t.Rows...)
	for _, group := range t.Groups {
		out = append(out, group.Rows...)
	}
	return out
}

// Row returns the surfaced row for (dailyKey, slug), or nil.
func (t *Template) Row(dailyKey, slug string) *RenderedRow {
	for _, row := range t.AllRows() {
		if row.DailyKey == dailyKey && row.Slug == slug {
			return row
		}
	}
	return nil
}
