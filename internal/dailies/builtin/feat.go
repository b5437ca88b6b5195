package builtin

import (
	"context"
	"fmt"

	"github.com/dailyforge/dailies-api/internal/dailies"
	"github.com/dailyforge/dailies-api/internal/entities"
	"github.com/dailyforge/dailies-api/internal/filter"
)

const temporaryFeatKey = "temporary-feat"

// TemporaryFeat lets the character drop a general feat of at most
// half their level onto the form and gain it until the next rest.
func TemporaryFeat(lookup ItemLookup) *dailies.Daily {
	featFilter := &filter.Spec{
		Kind: filter.KindFeat,
		Level: &filter.Range{
			Min: filter.Literal(1),
			Max: filter.Expression("half-level"),
		},
		Categories: []string{"general"},
	}

	return &dailies.Daily{
		Key:   temporaryFeatKey,
		Label: "Borrowed Technique",
		Rows: func(_ context.Context, _ *entities.Actor, _ dailies.Custom) ([]dailies.Row, error) {
			return []dailies.Row{{
				Slug:  "feat",
				Label: "Feat",
				Save:  true,
				Data: dailies.DropData{
					Filter: featFilter,
					Note:   "Drop a general feat of at most half your level.",
				},
			}}, nil
		},
		Process: func(ctx context.Context, p dailies.Process) error {
			value, ok := p.Value("feat").(dailies.DropValue)
			if !ok || value.Blank() {
				return nil
			}
			if lookup == nil {
				return fmt.Errorf("no item lookup configured for %s", temporaryFeatKey)
			}

			source, err := lookup(ctx, value.UUID)
			if err != nil {
				return fmt.Errorf("resolving dropped feat %s: %w", value.UUID, err)
			}

			p.AddFeat(source, grantingItem(p.Actor(), temporaryFeatKey))
			p.Message("feats", fmt.Sprintf("Borrowed %s", source.Name))
			return nil
		},
	}
}
