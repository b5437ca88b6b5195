// Package filter converts a drop row's declarative item-eligibility
// filter into both an imperative check against a dropped item and
// the query shape the catalog browser consumes.
package filter

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/gosimple/slug"

	"github.com/dailyforge/dailies-api/internal/entities"
	"github.com/dailyforge/dailies-api/internal/errors"
)

// Kind is the target item kind of a filter.
type Kind string

// Filter kinds
const (
	KindFeat  Kind = "feat"
	KindSpell Kind = "spell"
)

// Legacy homebrew traits carry this prefix; it is stripped before
// comparing.
const legacyTraitPrefix = "hb_"

// DynamicInt is a numeric filter value that may be a literal or an
// expression evaluated against the current actor. Supported
// expressions: "level", "half-level".
type DynamicInt struct {
	Value int
	Expr  string
}

// Literal returns a literal dynamic value.
func Literal(v int) DynamicInt {
	return DynamicInt{Value: v}
}

// Expression returns an expression-backed dynamic value.
func Expression(expr string) DynamicInt {
	return DynamicInt{Expr: expr}
}

// Resolve evaluates the dynamic value against the actor.
func (d DynamicInt) Resolve(actor *entities.Actor) (int, error) {
	if d.Expr == "" {
		return d.Value, nil
	}
	if actor == nil {
		return 0, errors.InvalidArgumentf("level expression %q requires an actor", d.Expr)
	}
	switch d.Expr {
	case "level":
		return actor.Level, nil
	case "half-level":
		return actor.Level / 2, nil
	default:
		return 0, errors.InvalidArgumentf("unknown level expression %q", d.Expr)
	}
}

// MarshalJSON implements json.Marshaler: a literal marshals as a
// number, an expression as a string.
func (d DynamicInt) MarshalJSON() ([]byte, error) {
	if d.Expr != "" {
		return json.Marshal(d.Expr)
	}
	return json.Marshal(d.Value)
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *DynamicInt) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*d = DynamicInt{Value: n}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.Wrap(err, "failed to decode level value")
	}
	*d = DynamicInt{Expr: s}
	return nil
}

// Range is an inclusive [min, max] level range.
type Range struct {
	Min DynamicInt `json:"min"`
	Max DynamicInt `json:"max"`
}

// Spec is a drop row's declarative eligibility filter. Empty slices
// mean no constraint on that axis.
type Spec struct {
	Kind Kind `json:"kind"`

	// Shared constraints
	Traits   []string          `json:"traits,omitempty"`
	Rarities []entities.Rarity `json:"rarities,omitempty"`
	Sources  []string          `json:"sources,omitempty"`

	// Feat constraints
	Level      *Range   `json:"level,omitempty"`
	Categories []string `json:"categories,omitempty"`
	Skills     []string `json:"skills,omitempty"`

	// Spell constraints. Categories doubles as the exact-set spell
	// category filter.
	Ranks      []string `json:"ranks,omitempty"`
	Traditions []string `json:"traditions,omitempty"`
}

// Validate checks a dropped item against the filter. It returns nil
// when the item is eligible, and a specific InvalidArgument error
// describing the first failed check otherwise.
func Validate(item *entities.Item, spec *Spec, actor *entities.Actor) error {
	if item == nil {
		return errors.InvalidArgument("no item was dropped")
	}
	if spec == nil {
		return errors.Internal("drop row has no filter")
	}

	switch spec.Kind {
	case KindFeat:
		if item.Kind != entities.ItemKindFeat {
			return errors.InvalidArgumentf("%s is not a feat", item.Name)
		}
	case KindSpell:
		if item.Kind != entities.ItemKindSpell {
			return errors.InvalidArgumentf("%s is not a spell", item.Name)
		}
	default:
		return errors.Internalf("unknown filter kind %q", spec.Kind)
	}

	if err := checkTraits(item, spec); err != nil {
		return err
	}
	if err := checkRarity(item, spec); err != nil {
		return err
	}
	if err := checkSource(item, spec); err != nil {
		return err
	}

	if spec.Kind == KindFeat {
		return validateFeat(item, spec, actor)
	}
	return validateSpell(item, spec)
}

// checkTraits requires every filter trait to be present on the item,
// comparing with the legacy prefix stripped.
func checkTraits(item *entities.Item, spec *Spec) error {
	if len(spec.Traits) == 0 {
		return nil
	}
	have := make(map[string]struct{}, len(item.Traits))
	for _, trait := range item.Traits {
		have[strings.TrimPrefix(trait, legacyTraitPrefix)] = struct{}{}
	}
	for _, want := range spec.Traits {
		if _, ok := have[strings.TrimPrefix(want, legacyTraitPrefix)]; !ok {
			return errors.InvalidArgumentf("%s is missing the %s trait", item.Name, want)
		}
	}
	return nil
}

func checkRarity(item *entities.Item, spec *Spec) error {
	if len(spec.Rarities) == 0 {
		return nil
	}
	for _, rarity := range spec.Rarities {
		if item.Rarity == rarity {
			return nil
		}
	}
	return errors.InvalidArgumentf("%s has the wrong rarity (%s)", item.Name, item.Rarity)
}

// checkSource compares publication sources slugified, so punctuation
// and casing differences between catalog entries do not matter.
func checkSource(item *entities.Item, spec *Spec) error {
	if len(spec.Sources) == 0 {
		return nil
	}
	itemSource := slug.Make(item.Source)
	for _, source := range spec.Sources {
		if slug.Make(source) == itemSource {
			return nil
		}
	}
	return errors.InvalidArgumentf("%s comes from a disallowed source (%s)", item.Name, item.Source)
}

func validateFeat(item *entities.Item, spec *Spec, actor *entities.Actor) error {
	if spec.Level != nil {
		minLevel, err := spec.Level.Min.Resolve(actor)
		if err != nil {
			return err
		}
		maxLevel, err := spec.Level.Max.Resolve(actor)
		if err != nil {
			return err
		}
		if item.Level < minLevel || item.Level > maxLevel {
			return errors.InvalidArgumentf(
				"%s is level %d, outside the allowed range %d to %d",
				item.Name, item.Level, minLevel, maxLevel)
		}
	}

	if len(spec.Categories) > 0 {
		found := false
		for _, category := range spec.Categories {
			if item.Category == category {
				found = true
				break
			}
		}
		if !found {
			return errors.InvalidArgumentf("%s has the wrong category (%s)", item.Name, item.Category)
		}
	}

	if len(spec.Skills) > 0 {
		if err := checkSkillPrerequisites(item, spec, actor); err != nil {
			return err
		}
	}
	return nil
}

// checkSkillPrerequisites scans the feat's free-text prerequisite
// strings for each required skill's slug or display name as a
// substring; every required skill must be found.
func checkSkillPrerequisites(item *entities.Item, spec *Spec, actor *entities.Actor) error {
	prereqs := make([]string, 0, len(item.Prerequisites))
	for _, p := range item.Prerequisites {
		prereqs = append(prereqs, strings.ToLower(p))
	}

	for _, skillSlug := range spec.Skills {
		needles := []string{strings.ToLower(skillSlug)}
		if actor != nil {
			if skill := actor.SkillBySlug(skillSlug); skill != nil && skill.Label != "" {
				needles = append(needles, strings.ToLower(skill.Label))
			}
		}

		found := false
	scan:
		for _, prereq := range prereqs {
			for _, needle := range needles {
				if strings.Contains(prereq, needle) {
					found = true
					break scan
				}
			}
		}
		if !found {
			return errors.InvalidArgumentf("%s does not require the %s skill", item.Name, skillSlug)
		}
	}
	return nil
}

func validateSpell(item *entities.Item, spec *Spec) error {
	if len(spec.Ranks) > 0 {
		rank := rankString(item.Rank)
		found := false
		for _, allowed := range spec.Ranks {
			if allowed == rank {
				found = true
				break
			}
		}
		if !found {
			return errors.InvalidArgumentf("%s has the wrong rank (%s)", item.Name, rank)
		}
	}

	if len(spec.Categories) > 0 {
		if !sameStringSet(spec.Categories, SpellCategories(item)) {
			return errors.InvalidArgumentf("%s has the wrong category", item.Name)
		}
	}

	if len(spec.Traditions) > 0 {
		found := false
		for _, tradition := range spec.Traditions {
			for _, have := range item.Traditions {
				if tradition == have {
					found = true
					break
				}
			}
		}
		if !found {
			return errors.InvalidArgumentf("%s belongs to none of the allowed traditions", item.Name)
		}
	}
	return nil
}

// Spell category names, mutually exclusive, derived from item flags.
const (
	SpellCategorySpell   = "spell"
	SpellCategoryCantrip = "cantrip"
	SpellCategoryFocus   = "focus"
	SpellCategoryRitual  = "ritual"
)

// SpellCategories computes the item's spell category set.
func SpellCategories(item *entities.Item) []string {
	switch {
	case item.Ritual:
		return []string{SpellCategoryRitual}
	case item.Focus:
		return []string{SpellCategoryFocus}
	case hasTrait(item, "cantrip"):
		return []string{SpellCategoryCantrip}
	default:
		return []string{SpellCategorySpell}
	}
}

func hasTrait(item *entities.Item, trait string) bool {
	for _, t := range item.Traits {
		if strings.TrimPrefix(t, legacyTraitPrefix) == trait {
			return true
		}
	}
	return false
}

func sameStringSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, s := range a {
		set[s] = struct{}{}
	}
	for _, s := range b {
		if _, ok := set[s]; !ok {
			return false
		}
	}
	return true
}

func rankString(rank int) string {
	return strconv.Itoa(rank)
}
