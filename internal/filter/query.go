package filter

import (
	"github.com/gosimple/slug"

	"github.com/dailyforge/dailies-api/internal/entities"
)

// Query is the eligibility-query shape the catalog browser consumes:
// the filter with every dynamic value resolved and sources slugified.
type Query struct {
	Kind       Kind     `json:"kind"`
	Traits     []string `json:"traits,omitempty"`
	Rarities   []string `json:"rarities,omitempty"`
	Sources    []string `json:"sources,omitempty"`
	LevelMin   *int     `json:"level_min,omitempty"`
	LevelMax   *int     `json:"level_max,omitempty"`
	Categories []string `json:"categories,omitempty"`
	Skills     []string `json:"skills,omitempty"`
	Ranks      []string `json:"ranks,omitempty"`
	Traditions []string `json:"traditions,omitempty"`
}

// Query resolves the spec into its browsable form for the actor.
func (s *Spec) Query(actor *entities.Actor) (*Query, error) {
	q := &Query{
		Kind:       s.Kind,
		Categories: append([]string(nil), s.Categories...),
		Skills:     append([]string(nil), s.Skills...),
		Ranks:      append([]string(nil), s.Ranks...),
		Traditions: append([]string(nil), s.Traditions...),
	}

	for _, trait := range s.Traits {
		q.Traits = append(q.Traits, trimLegacy(trait))
	}
	for _, rarity := range s.Rarities {
		q.Rarities = append(q.Rarities, string(rarity))
	}
	for _, source := range s.Sources {
		q.Sources = append(q.Sources, slug.Make(source))
	}

	if s.Level != nil {
		minLevel, err := s.Level.Min.Resolve(actor)
		if err != nil {
			return nil, err
		}
		maxLevel, err := s.Level.Max.Resolve(actor)
		if err != nil {
			return nil, err
		}
		q.LevelMin = &minLevel
		q.LevelMax = &maxLevel
	}

	return q, nil
}

func trimLegacy(trait string) string {
	if len(trait) > len(legacyTraitPrefix) && trait[:len(legacyTraitPrefix)] == legacyTraitPrefix {
		return trait[len(legacyTraitPrefix):]
	}
	return trait
}
