// Package uniqueness resolves no-duplicate-selection constraints
// across select elements sharing a unique tag. It runs once when a
// form activates, to normalize stale persisted conflicts, and again
// on every change to an element carrying the tag.
package uniqueness

// Option is one selectable option of an element.
type Option struct {
	// Value is the option's raw value.
	Value string
	// Unique overrides Value for collision checks when set.
	Unique string
	// Exempt options never conflict and are never disabled.
	Exempt bool
}

// UniqueValue returns the value used for collision checks.
func (o Option) UniqueValue() string {
	if o.Unique != "" {
		return o.Unique
	}
	return o.Value
}

// Element is one select element participating in a unique group.
type Element struct {
	Options []Option
	// Selected is the index of the current selection.
	Selected int
	// Disabled is recomputed by Resolve; Disabled[i] means option i
	// may not be chosen by this element.
	Disabled []bool
}

// SelectedOption returns the currently selected option, or the zero
// Option when the element has none.
func (e *Element) SelectedOption() Option {
	if e.Selected < 0 || e.Selected >= len(e.Options) {
		return Option{}
	}
	return e.Options[e.Selected]
}

// Resolve reassigns conflicting selections across the elements of
// one unique group, in iteration order, then recomputes every
// element's option-disabled flags.
//
// For each element: starting at its current selection, if the
// option's unique value is already claimed and the option is not
// exempt, probe downward toward index 0 while still conflicting,
// then probe upward toward the last index. The first non-conflicting
// index wins. When every option conflicts the selection is left
// conflicting; which element loses in that case is unspecified.
func Resolve(elements []*Element) {
	claimed := make(map[string]struct{})

	for _, el := range elements {
		if len(el.Options) == 0 {
			continue
		}
		idx := el.Selected
		if idx < 0 || idx >= len(el.Options) {
			idx = 0
		}

		if conflicts(el.Options[idx], claimed) {
			idx = probe(el.Options, idx, claimed)
		}

		el.Selected = idx
		opt := el.Options[idx]
		if !opt.Exempt && !conflicts(opt, claimed) {
			claimed[opt.UniqueValue()] = struct{}{}
		}
	}

	for _, el := range elements {
		if len(el.Disabled) != len(el.Options) {
			el.Disabled = make([]bool, len(el.Options))
		}
		for i, opt := range el.Options {
			_, taken := claimed[opt.UniqueValue()]
			el.Disabled[i] = taken && !opt.Exempt && i != el.Selected
		}
	}
}

func conflicts(opt Option, claimed map[string]struct{}) bool {
	if opt.Exempt {
		return false
	}
	_, taken := claimed[opt.UniqueValue()]
	return taken
}

// probe searches downward from start toward 0, then upward toward
// the last index, returning the first non-conflicting index. When
// all options conflict it returns start unchanged.
func probe(options []Option, start int, claimed map[string]struct{}) int {
	for i := start - 1; i >= 0; i-- {
		if !conflicts(options[i], claimed) {
			return i
		}
	}
	for i := start + 1; i < len(options); i++ {
		if !conflicts(options[i], claimed) {
			return i
		}
	}
	return start
}
