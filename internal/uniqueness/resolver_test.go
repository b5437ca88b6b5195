package uniqueness_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dailyforge/dailies-api/internal/uniqueness"
)

func options(values ...string) []uniqueness.Option {
	opts := make([]uniqueness.Option, 0, len(values))
	for _, v := range values {
		opts = append(opts, uniqueness.Option{Value: v})
	}
	return opts
}

func TestResolve_NoConflict(t *testing.T) {
	elements := []*uniqueness.Element{
		{Options: options("a", "b", "c"), Selected: 0},
		{Options: options("a", "b", "c"), Selected: 1},
	}

	uniqueness.Resolve(elements)

	assert.Equal(t, 0, elements[0].Selected)
	assert.Equal(t, 1, elements[1].Selected)
}

func TestResolve_ReassignsDownward(t *testing.T) {
	// Second element collides on "b"; probing down lands on "a".
	elements := []*uniqueness.Element{
		{Options: options("a", "b", "c"), Selected: 1},
		{Options: options("a", "b", "c"), Selected: 1},
	}

	uniqueness.Resolve(elements)

	assert.Equal(t, 1, elements[0].Selected)
	assert.Equal(t, 0, elements[1].Selected)
}

func TestResolve_ProbesUpWhenDownExhausted(t *testing.T) {
	// Both collide at index 0; downward probing has nowhere to go,
	// so the second element moves up.
	elements := []*uniqueness.Element{
		{Options: options("a", "b"), Selected: 0},
		{Options: options("a", "b"), Selected: 0},
	}

	uniqueness.Resolve(elements)

	assert.Equal(t, 0, elements[0].Selected)
	assert.Equal(t, 1, elements[1].Selected)
}

func TestResolve_NeverCollidesWhenEnoughOptions(t *testing.T) {
	// N elements over M >= N distinct values never share a value.
	elements := []*uniqueness.Element{
		{Options: options("a", "b", "c", "d"), Selected: 2},
		{Options: options("a", "b", "c", "d"), Selected: 2},
		{Options: options("a", "b", "c", "d"), Selected: 2},
	}

	uniqueness.Resolve(elements)

	seen := make(map[string]bool)
	for _, el := range elements {
		value := el.Options[el.Selected].Value
		require.False(t, seen[value], "value %q assigned twice", value)
		seen[value] = true
	}
}

func TestResolve_Idempotent(t *testing.T) {
	elements := []*uniqueness.Element{
		{Options: options("a", "b", "c"), Selected: 1},
		{Options: options("a", "b", "c"), Selected: 1},
	}

	uniqueness.Resolve(elements)
	first := []int{elements[0].Selected, elements[1].Selected}

	uniqueness.Resolve(elements)
	assert.Equal(t, first, []int{elements[0].Selected, elements[1].Selected})
}

func TestResolve_ExemptOptionsNeverClaim(t *testing.T) {
	opts := []uniqueness.Option{
		{Value: "none", Exempt: true},
		{Value: "a"},
	}
	elements := []*uniqueness.Element{
		{Options: opts, Selected: 0},
		{Options: opts, Selected: 0},
	}

	uniqueness.Resolve(elements)

	// Both may stay on the exempt option.
	assert.Equal(t, 0, elements[0].Selected)
	assert.Equal(t, 0, elements[1].Selected)
}

func TestResolve_AllCollideLeftConflicting(t *testing.T) {
	// More elements than distinct values: the overflow element is
	// left conflicting, silently.
	elements := []*uniqueness.Element{
		{Options: options("a"), Selected: 0},
		{Options: options("a"), Selected: 0},
	}

	uniqueness.Resolve(elements)

	assert.Equal(t, 0, elements[0].Selected)
	assert.Equal(t, 0, elements[1].Selected)
}

func TestResolve_UniqueDatumOverridesValue(t *testing.T) {
	// Options with distinct raw values but the same unique datum
	// still collide.
	opts := []uniqueness.Option{
		{Value: "athletics-1", Unique: "athletics"},
		{Value: "acrobatics-1", Unique: "acrobatics"},
	}
	other := []uniqueness.Option{
		{Value: "athletics-2", Unique: "athletics"},
		{Value: "acrobatics-2", Unique: "acrobatics"},
	}
	elements := []*uniqueness.Element{
		{Options: opts, Selected: 0},
		{Options: other, Selected: 0},
	}

	uniqueness.Resolve(elements)

	assert.Equal(t, 0, elements[0].Selected)
	assert.Equal(t, 1, elements[1].Selected)
}

func TestResolve_RecomputesDisabledFlags(t *testing.T) {
	elements := []*uniqueness.Element{
		{Options: options("a", "b"), Selected: 0},
		{Options: options("a", "b"), Selected: 1},
	}

	uniqueness.Resolve(elements)

	// "b" is claimed by the second element, so it is disabled on the
	// first; each element's own selection stays enabled.
	assert.Equal(t, []bool{false, true}, elements[0].Disabled)
	assert.Equal(t, []bool{true, false}, elements[1].Disabled)
}
