package dailies_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dailyforge/dailies-api/internal/dailies"
)

func TestRenderedRow_ZeroSelectionSurvivesJSON(t *testing.T) {
	row := &dailies.RenderedRow{
		DailyKey: "skill-training",
		Slug:     "skill",
		Type:     dailies.RowTypeSelect,
		Options: []dailies.RenderedOption{
			{Value: "athletics", Label: "Athletics"},
			{Value: "arcana", Label: "Arcana"},
		},
	}

	data, err := json.Marshal(row)
	require.NoError(t, err)

	// Index 0 means "first option selected" and must reach the
	// client distinct from an absent field.
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "selected_index")
	assert.Contains(t, decoded, "order")
	assert.EqualValues(t, 0, decoded["selected_index"])
}
