package builtin

import (
	"context"
	"fmt"

	"github.com/dailyforge/dailies-api/internal/dailies"
	"github.com/dailyforge/dailies-api/internal/entities"
)

const randomBoonKey = "random-boon"

var boonOptions = []dailies.Option{
	{Value: "fortune", Label: "A stroke of fortune"},
	{Value: "insight", Label: "A flash of insight"},
	{Value: "vigor", Label: "A surge of vigor"},
}

// RandomBoon grants a randomly sampled minor boon each day, with a
// free-text note on how it manifested. The displayed option may
// cycle in the client; the kept boon is sampled fresh on accept.
func RandomBoon() *dailies.Daily {
	return &dailies.Daily{
		Key:   randomBoonKey,
		Label: "Whims of Fate",
		Rows: func(_ context.Context, _ *entities.Actor, _ dailies.Custom) ([]dailies.Row, error) {
			return []dailies.Row{
				{
					Slug:  "boon",
					Label: "Boon",
					Data:  dailies.RandomData{Options: boonOptions},
				},
				{
					Slug:  "omen",
					Label: "Omen",
					Data:  dailies.InputData{Placeholder: "How did fate show itself?"},
				},
			}, nil
		},
		Process: func(_ context.Context, p dailies.Process) error {
			boon, ok := p.Value("boon").(dailies.StringValue)
			if !ok || boon.Blank() {
				return nil
			}

			label := string(boon)
			for _, opt := range boonOptions {
				if opt.Value == string(boon) {
					label = opt.Label
					break
				}
			}

			p.SetExtra("boon", string(boon))
			if omen, ok := p.Value("omen").(dailies.StringValue); ok && !omen.Blank() {
				p.SetExtra("omen", string(omen))
			}
			p.RawMessage(fmt.Sprintf("%s follows you today.", label))
			return nil
		},
	}
}
