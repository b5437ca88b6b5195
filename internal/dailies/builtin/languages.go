package builtin

import (
	"context"
	"fmt"

	"github.com/dailyforge/dailies-api/internal/dailies"
	"github.com/dailyforge/dailies-api/internal/entities"
)

const languagesKey = "languages"

var commonLanguages = []dailies.Option{
	{Value: "draconic", Label: "Draconic"},
	{Value: "dwarven", Label: "Dwarven", Group: "Ancestral"},
	{Value: "elven", Label: "Elven", Group: "Ancestral"},
	{Value: "gnomish", Label: "Gnomish", Group: "Ancestral"},
	{Value: "jotun", Label: "Jotun"},
	{Value: "sylvan", Label: "Sylvan"},
}

// Languages lets the character study one language for the day,
// either from the stock list or typed freely.
func Languages() *dailies.Daily {
	return &dailies.Daily{
		Key:   languagesKey,
		Label: "Borrowed Tongue",
		Rows: func(_ context.Context, _ *entities.Actor, _ dailies.Custom) ([]dailies.Row, error) {
			return []dailies.Row{
				{
					Slug:  "language",
					Label: "Language",
					Save:  true,
					Data: dailies.ComboData{
						Options:  commonLanguages,
						FreeText: true,
					},
				},
				{
					Slug:  "reminder",
					Label: "Borrowed Tongue",
					Data:  dailies.NotifyData{Message: "The borrowed language fades at your next rest."},
				},
			}, nil
		},
		Process: func(_ context.Context, p dailies.Process) error {
			value, ok := p.Value("language").(dailies.ComboValue)
			if !ok {
				return nil
			}
			language := value.Resolved()
			if language == "" {
				return nil
			}

			if item := grantingItem(p.Actor(), languagesKey); item != nil {
				p.AddRule(item.ID, entities.RuleElement{
					Type: "language",
					Data: map[string]interface{}{"language": language},
				})
			}
			p.Message("languages", fmt.Sprintf("Speaks %s", language))
			return nil
		},
	}
}
