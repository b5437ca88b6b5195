// Package builtin ships the stock daily definitions.
package builtin

import (
	"context"

	"github.com/dailyforge/dailies-api/internal/dailies"
	"github.com/dailyforge/dailies-api/internal/entities"
)

// ItemLookup resolves a catalog UUID to an item, used by dailies
// whose drop rows need the full item back at process time.
type ItemLookup func(ctx context.Context, uuid string) (*entities.Item, error)

// Register registers every stock daily.
func Register(reg *dailies.Registry, lookup ItemLookup) error {
	for _, daily := range []*dailies.Daily{
		SkillTraining(),
		Languages(),
		RandomBoon(),
		TemporaryFeat(lookup),
	} {
		if err := reg.Register(daily); err != nil {
			return err
		}
	}
	return nil
}

// grantingItem finds the actor feat that grants a daily, by the
// convention that its slug matches the daily key.
func grantingItem(actor *entities.Actor, dailyKey string) *entities.Item {
	return actor.ItemBySlug(entities.ItemKindFeat, dailyKey)
}
