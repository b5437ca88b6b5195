package entities

// Skill is one of the actor's skills with its proficiency rank.
type Skill struct {
	Slug  string `json:"slug"`
	Label string `json:"label"`
	Rank  int    `json:"rank"`
}

// Actor is a character document together with its embedded items.
type Actor struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Level      int          `json:"level"`
	Skills     []Skill      `json:"skills,omitempty"`
	Statistics []Statistic  `json:"statistics,omitempty"`
	Items      []*Item      `json:"items,omitempty"`
}

// ItemByID returns the embedded item with the given ID, or nil.
func (a *Actor) ItemByID(id string) *Item {
	for _, item := range a.Items {
		if item.ID == id {
			return item
		}
	}
	return nil
}

// ItemsOfKind returns all embedded items of the given kind.
func (a *Actor) ItemsOfKind(kind ItemKind) []*Item {
	var out []*Item
	for _, item := range a.Items {
		if item.Kind == kind {
			out = append(out, item)
		}
	}
	return out
}

// ItemBySlug returns the first embedded item of the given kind with
// the given slug, or nil.
func (a *Actor) ItemBySlug(kind ItemKind, slug string) *Item {
	for _, item := range a.Items {
		if item.Kind == kind && item.Slug == slug {
			return item
		}
	}
	return nil
}

// SpellcastingEntries returns the actor's spellcasting entry items.
func (a *Actor) SpellcastingEntries() []*Item {
	return a.ItemsOfKind(ItemKindSpellcastingEntry)
}

// BestSpellcastingStatistic returns the highest-mod statistic among
// the actor's spellcasting entries, or nil when the actor has none.
func (a *Actor) BestSpellcastingStatistic() *Statistic {
	var best *Statistic
	for _, entry := range a.SpellcastingEntries() {
		if entry.Statistic == nil {
			continue
		}
		if best == nil || entry.Statistic.Mod > best.Mod {
			best = entry.Statistic
		}
	}
	return best
}

// BestSyntheticStatistic returns the highest-mod non-spellcasting
// class statistic, or nil when the actor has none.
func (a *Actor) BestSyntheticStatistic() *Statistic {
	var best *Statistic
	for idx := range a.Statistics {
		stat := &a.Statistics[idx]
		if stat.Spellcasting {
			continue
		}
		if best == nil || stat.Mod > best.Mod {
			best = stat
		}
	}
	return best
}

// SkillBySlug returns the actor's skill with the given slug, or nil.
func (a *Actor) SkillBySlug(slug string) *Skill {
	for idx := range a.Skills {
		if a.Skills[idx].Slug == slug {
			return &a.Skills[idx]
		}
	}
	return nil
}
