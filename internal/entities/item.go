// Package entities defines the document model the dailies engine
// operates on: actors, their embedded items, and the rule elements
// attached to items.
package entities

import (
	"strings"
)

// ItemKind identifies what kind of embedded item a document is.
type ItemKind string

// Item kinds
const (
	ItemKindFeat              ItemKind = "feat"
	ItemKindSpell             ItemKind = "spell"
	ItemKindSpellcastingEntry ItemKind = "spellcasting_entry"
	ItemKindEquipment         ItemKind = "equipment"
)

// Rarity is an item rarity tier.
type Rarity string

// Rarities
const (
	RarityCommon   Rarity = "common"
	RarityUncommon Rarity = "uncommon"
	RarityRare     Rarity = "rare"
	RarityUnique   Rarity = "unique"
)

// RuleOriginDailies tags rule elements added by this module so only
// our own prior rules are stripped before re-insertion.
const RuleOriginDailies = "dailies"

// RuleElement is a declarative effect attached to an item,
// re-derived on each processing pass.
type RuleElement struct {
	Type   string                 `json:"type"`
	Data   map[string]interface{} `json:"data,omitempty"`
	Origin string                 `json:"origin,omitempty"`
}

// Statistic is a class or spellcasting statistic on an actor.
type Statistic struct {
	Slug         string `json:"slug"`
	Label        string `json:"label"`
	Mod          int    `json:"mod"`
	DC           int    `json:"dc"`
	Tradition    string `json:"tradition,omitempty"`
	Spellcasting bool   `json:"spellcasting,omitempty"`
}

// Item is one embedded item on an actor. An Item with an empty ID is
// an item source, a payload not yet created in the store.
type Item struct {
	ID   string   `json:"id,omitempty"`
	UUID string   `json:"uuid,omitempty"`
	Name string   `json:"name"`
	Kind ItemKind `json:"kind"`
	Slug string   `json:"slug,omitempty"`

	Level  int      `json:"level,omitempty"`
	Rarity Rarity   `json:"rarity,omitempty"`
	Traits []string `json:"traits,omitempty"`
	Source string   `json:"source,omitempty"`

	// Feat fields
	Category      string   `json:"category,omitempty"`
	Prerequisites []string `json:"prerequisites,omitempty"`

	// Spell fields
	Rank       int      `json:"rank,omitempty"`
	Traditions []string `json:"traditions,omitempty"`
	Ritual     bool     `json:"ritual,omitempty"`
	Focus      bool     `json:"focus,omitempty"`
	// Location is the ID of the spellcasting entry the spell is
	// prepared under. Empty means the spell has no casting source.
	Location string `json:"location,omitempty"`
	// HeightenedRank is the rank the spell is cast at when it
	// differs from its base rank.
	HeightenedRank int `json:"heightened_rank,omitempty"`

	// Spellcasting entry fields
	Statistic *Statistic `json:"statistic,omitempty"`

	// Grants maps grant keys to the IDs of items this item granted.
	Grants map[string]string `json:"grants,omitempty"`

	// Flags is this module's namespaced flag bucket on the item.
	Flags map[string]interface{} `json:"flags,omitempty"`

	Rules []RuleElement `json:"rules,omitempty"`
}

// Flag keys this module sets on items.
const (
	ItemFlagTemporary  = "temporary"
	ItemFlagIdentifier = "identifier"
	ItemFlagOrphan     = "orphan"
	ItemFlagRank       = "rank"
	ItemFlagGrantedBy  = "granted_by"
)

// Clone returns a deep copy of the item.
func (i *Item) Clone() *Item {
	if i == nil {
		return nil
	}
	clone := *i
	clone.Traits = append([]string(nil), i.Traits...)
	clone.Prerequisites = append([]string(nil), i.Prerequisites...)
	clone.Traditions = append([]string(nil), i.Traditions...)
	if i.Statistic != nil {
		stat := *i.Statistic
		clone.Statistic = &stat
	}
	if i.Grants != nil {
		clone.Grants = make(map[string]string, len(i.Grants))
		for k, v := range i.Grants {
			clone.Grants[k] = v
		}
	}
	if i.Flags != nil {
		clone.Flags = make(map[string]interface{}, len(i.Flags))
		for k, v := range i.Flags {
			clone.Flags[k] = v
		}
	}
	clone.Rules = make([]RuleElement, len(i.Rules))
	copy(clone.Rules, i.Rules)
	return &clone
}

// SetFlag sets a namespaced flag on the item.
func (i *Item) SetFlag(key string, value interface{}) {
	if i.Flags == nil {
		i.Flags = make(map[string]interface{})
	}
	i.Flags[key] = value
}

// Flag reads a namespaced flag from the item.
func (i *Item) Flag(key string) (interface{}, bool) {
	v, ok := i.Flags[key]
	return v, ok
}

// FlagString reads a string flag, returning "" when absent.
func (i *Item) FlagString(key string) string {
	if v, ok := i.Flags[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// FlagInt reads an integer flag, tolerating the float64 shape JSON
// decoding produces.
func (i *Item) FlagInt(key string) (int, bool) {
	switch v := i.Flags[key].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	}
	return 0, false
}

// ApplyFragment applies an update fragment of field path to value
// onto the item. Paths are dotted; "flags.x" and "grants.x" address
// entries in the respective maps.
func (i *Item) ApplyFragment(fragment map[string]interface{}) {
	for path, value := range fragment {
		i.applyPath(path, value)
	}
}

func (i *Item) applyPath(path string, value interface{}) {
	head, rest, _ := strings.Cut(path, ".")
	switch head {
	case "name":
		if s, ok := value.(string); ok {
			i.Name = s
		}
	case "location":
		if s, ok := value.(string); ok {
			i.Location = s
		}
	case "heightened_rank":
		if n, ok := asInt(value); ok {
			i.HeightenedRank = n
		}
	case "rules":
		if rules, ok := value.([]RuleElement); ok {
			i.Rules = rules
		}
	case "flags":
		if rest != "" {
			i.SetFlag(rest, value)
		}
	case "grants":
		if rest != "" {
			if s, ok := value.(string); ok {
				if i.Grants == nil {
					i.Grants = make(map[string]string)
				}
				i.Grants[rest] = s
			}
		}
	}
}

func asInt(value interface{}) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	}
	return 0, false
}
