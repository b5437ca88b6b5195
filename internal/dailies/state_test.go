package dailies_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dailyforge/dailies-api/internal/dailies"
)

func TestState_MarshalFlattensDailies(t *testing.T) {
	state := dailies.NewState()
	state.SetSaved("skill-training", "skill", dailies.StringValue("athletics"))
	state.SetSaved("languages", "language", dailies.ComboValue{Input: "Osiriani"})
	state.Schema = "3.0.0"
	state.Extra["boon"] = "fortune"
	state.AddedItems = []string{"item-1"}

	data, err := json.Marshal(state)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"skill-training": {"skill": "athletics"},
		"languages": {"language": {"selected": "", "input": "Osiriani"}},
		"extra": {"boon": "fortune"},
		"rested": false,
		"schema": "3.0.0",
		"addedItems": ["item-1"]
	}`, string(data))
}

func TestState_RoundTrip(t *testing.T) {
	state := dailies.NewState()
	state.SetSaved("temporary-feat", "feat", dailies.DropValue{UUID: "uuid-1", Name: "Quick Jump"})
	state.Rested = true
	state.Schema = "3.0.0"

	data, err := json.Marshal(state)
	require.NoError(t, err)

	var decoded dailies.State
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.True(t, decoded.Rested)
	assert.Equal(t, "3.0.0", decoded.Schema)
	assert.Equal(t, dailies.DropValue{UUID: "uuid-1", Name: "Quick Jump"}, decoded.Saved("temporary-feat", "feat"))
}

func TestState_EmptyBuckets(t *testing.T) {
	var decoded dailies.State
	require.NoError(t, json.Unmarshal([]byte(`{"rested": false}`), &decoded))

	assert.Nil(t, decoded.Saved("skill-training", "skill"))
	assert.Empty(t, decoded.Schema)
}

func TestSavedValue_Discrimination(t *testing.T) {
	cases := []struct {
		name string
		data string
		want dailies.Value
	}{
		{"string", `"athletics"`, dailies.StringValue("athletics")},
		{"drop object", `{"uuid": "u1", "name": "Fireball"}`, dailies.DropValue{UUID: "u1", Name: "Fireball"}},
		{"combo object", `{"selected": "elven", "input": ""}`, dailies.ComboValue{Selected: "elven"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var sv dailies.SavedValue
			require.NoError(t, json.Unmarshal([]byte(tc.data), &sv))
			assert.Equal(t, tc.want, sv.Value)
		})
	}
}

func TestSavedValue_Matches(t *testing.T) {
	str := dailies.SavedValue{Value: dailies.StringValue("x")}
	assert.True(t, str.Matches(dailies.RowTypeSelect))
	assert.True(t, str.Matches(dailies.RowTypeRandom))
	assert.True(t, str.Matches(dailies.RowTypeInput))
	assert.False(t, str.Matches(dailies.RowTypeCombo))

	combo := dailies.SavedValue{Value: dailies.ComboValue{Selected: "x"}}
	assert.True(t, combo.Matches(dailies.RowTypeCombo))
	assert.False(t, combo.Matches(dailies.RowTypeSelect))

	drop := dailies.SavedValue{Value: dailies.DropValue{UUID: "u"}}
	assert.True(t, drop.Matches(dailies.RowTypeDrop))
	assert.False(t, drop.Matches(dailies.RowTypeSelect))
}
