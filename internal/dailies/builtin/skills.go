package builtin

import (
	"context"
	"fmt"

	"github.com/dailyforge/dailies-api/internal/dailies"
	"github.com/dailyforge/dailies-api/internal/entities"
)

const skillTrainingKey = "skill-training"

// trainableRank is the proficiency granted for the day.
const trainableRank = 1

// SkillTraining lets the character pick an untrained skill to be
// trained in until the next rest. Multiple training rows share a
// uniqueness tag so the same skill cannot be picked twice.
func SkillTraining() *dailies.Daily {
	return &dailies.Daily{
		Key:   skillTrainingKey,
		Label: "Skill Training",
		Prepare: func(_ context.Context, actor *entities.Actor) (dailies.Custom, error) {
			var options []dailies.Option
			for _, skill := range actor.Skills {
				if skill.Rank > 0 {
					continue
				}
				options = append(options, dailies.Option{
					Value:  skill.Slug,
					Label:  skill.Label,
					Unique: skill.Slug,
				})
			}
			custom := dailies.Custom{"options": options}
			if item := grantingItem(actor, skillTrainingKey); item != nil {
				custom["itemID"] = item.ID
			}
			return custom, nil
		},
		Rows: func(_ context.Context, _ *entities.Actor, custom dailies.Custom) ([]dailies.Row, error) {
			options, _ := custom["options"].([]dailies.Option)
			if len(options) == 0 {
				return []dailies.Row{{
					Slug:  "no-skills",
					Label: "Skill Training",
					Data:  dailies.AlertData{Message: "Every skill is already trained."},
				}}, nil
			}
			return []dailies.Row{{
				Slug:  "skill",
				Label: "Train",
				Save:  true,
				Data:  dailies.SelectData{Options: options, Unique: skillTrainingKey},
			}}, nil
		},
		Process: func(_ context.Context, p dailies.Process) error {
			value, ok := p.Value("skill").(dailies.StringValue)
			if !ok || value.Blank() {
				return nil
			}
			slug := string(value)

			label := slug
			if skill := p.Actor().SkillBySlug(slug); skill != nil {
				label = skill.Label
			}

			if itemID, ok := p.Custom()["itemID"].(string); ok {
				p.AddRule(itemID, entities.RuleElement{
					Type: "skill-proficiency",
					Data: map[string]interface{}{"skill": slug, "rank": trainableRank},
				})
			}
			p.Message("skills", fmt.Sprintf("Trained in %s", label))
			return nil
		},
	}
}
