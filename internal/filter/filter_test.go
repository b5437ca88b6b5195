package filter_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dailyforge/dailies-api/internal/entities"
	"github.com/dailyforge/dailies-api/internal/errors"
	"github.com/dailyforge/dailies-api/internal/filter"
)

func testActor() *entities.Actor {
	return &entities.Actor{
		ID:    "actor-1",
		Name:  "Seelah",
		Level: 6,
		Skills: []entities.Skill{
			{Slug: "athletics", Label: "Athletics", Rank: 1},
			{Slug: "arcana", Label: "Arcana", Rank: 0},
		},
	}
}

func testFeat(level int) *entities.Item {
	return &entities.Item{
		UUID:     "uuid-feat",
		Name:     "Quick Jump",
		Kind:     entities.ItemKindFeat,
		Level:    level,
		Rarity:   entities.RarityCommon,
		Category: "skill",
		Source:   "Player Core",
	}
}

func TestValidate_FeatLevelRange(t *testing.T) {
	spec := &filter.Spec{
		Kind:  filter.KindFeat,
		Level: &filter.Range{Min: filter.Literal(1), Max: filter.Literal(4)},
	}

	t.Run("inside range passes", func(t *testing.T) {
		require.NoError(t, filter.Validate(testFeat(3), spec, testActor()))
	})

	t.Run("above range fails with level mismatch", func(t *testing.T) {
		err := filter.Validate(testFeat(5), spec, testActor())
		require.Error(t, err)
		assert.True(t, errors.IsInvalidArgument(err))
		assert.Contains(t, errors.GetMessage(err), "level 5")
	})
}

func TestValidate_DynamicLevel(t *testing.T) {
	// half-level of a level 6 actor is 3.
	spec := &filter.Spec{
		Kind:  filter.KindFeat,
		Level: &filter.Range{Min: filter.Literal(1), Max: filter.Expression("half-level")},
	}

	require.NoError(t, filter.Validate(testFeat(3), spec, testActor()))
	require.Error(t, filter.Validate(testFeat(4), spec, testActor()))
}

func TestValidate_WrongKind(t *testing.T) {
	spec := &filter.Spec{Kind: filter.KindSpell}
	err := filter.Validate(testFeat(1), spec, testActor())
	require.Error(t, err)
	assert.Contains(t, errors.GetMessage(err), "not a spell")
}

func TestValidate_TraitsStripLegacyPrefix(t *testing.T) {
	spec := &filter.Spec{Kind: filter.KindFeat, Traits: []string{"fortune"}}

	item := testFeat(2)
	item.Traits = []string{"hb_fortune"}
	require.NoError(t, filter.Validate(item, spec, testActor()))

	item.Traits = []string{"misfortune"}
	err := filter.Validate(item, spec, testActor())
	require.Error(t, err)
	assert.Contains(t, errors.GetMessage(err), "fortune trait")
}

func TestValidate_Rarity(t *testing.T) {
	spec := &filter.Spec{
		Kind:     filter.KindFeat,
		Rarities: []entities.Rarity{entities.RarityCommon, entities.RarityUncommon},
	}

	item := testFeat(2)
	item.Rarity = entities.RarityRare
	err := filter.Validate(item, spec, testActor())
	require.Error(t, err)
	assert.Contains(t, errors.GetMessage(err), "rarity")
}

func TestValidate_SourceSlugified(t *testing.T) {
	spec := &filter.Spec{Kind: filter.KindFeat, Sources: []string{"player-core"}}

	// The item records the display title; comparison is slugified.
	require.NoError(t, filter.Validate(testFeat(2), spec, testActor()))
}

func TestValidate_SkillPrerequisites(t *testing.T) {
	spec := &filter.Spec{Kind: filter.KindFeat, Skills: []string{"athletics"}}

	item := testFeat(2)
	item.Prerequisites = []string{"trained in Athletics"}
	require.NoError(t, filter.Validate(item, spec, testActor()))

	item.Prerequisites = []string{"trained in Stealth"}
	err := filter.Validate(item, spec, testActor())
	require.Error(t, err)
	assert.Contains(t, errors.GetMessage(err), "athletics")
}

func testSpell() *entities.Item {
	return &entities.Item{
		UUID:       "uuid-spell",
		Name:       "Fireball",
		Kind:       entities.ItemKindSpell,
		Rank:       3,
		Rarity:     entities.RarityCommon,
		Traditions: []string{"arcane", "primal"},
	}
}

func TestValidate_SpellRanks(t *testing.T) {
	spec := &filter.Spec{Kind: filter.KindSpell, Ranks: []string{"1", "2"}}
	err := filter.Validate(testSpell(), spec, testActor())
	require.Error(t, err)
	assert.Contains(t, errors.GetMessage(err), "rank")

	spec.Ranks = []string{"3"}
	require.NoError(t, filter.Validate(testSpell(), spec, testActor()))
}

func TestValidate_SpellCategoriesExactSet(t *testing.T) {
	// A plain rank 3 spell computes to the single category "spell";
	// the filter set must match exactly, intersection is not enough.
	spec := &filter.Spec{Kind: filter.KindSpell, Categories: []string{"spell", "cantrip"}}
	err := filter.Validate(testSpell(), spec, testActor())
	require.Error(t, err)

	spec.Categories = []string{"spell"}
	require.NoError(t, filter.Validate(testSpell(), spec, testActor()))
}

func TestValidate_SpellTraditionIntersection(t *testing.T) {
	spec := &filter.Spec{Kind: filter.KindSpell, Traditions: []string{"divine", "primal"}}
	require.NoError(t, filter.Validate(testSpell(), spec, testActor()))

	spec.Traditions = []string{"divine", "occult"}
	require.Error(t, filter.Validate(testSpell(), spec, testActor()))
}

func TestSpellCategories_MutuallyExclusive(t *testing.T) {
	spell := testSpell()
	assert.Equal(t, []string{"spell"}, filter.SpellCategories(spell))

	spell.Ritual = true
	assert.Equal(t, []string{"ritual"}, filter.SpellCategories(spell))

	spell.Ritual = false
	spell.Focus = true
	assert.Equal(t, []string{"focus"}, filter.SpellCategories(spell))

	spell.Focus = false
	spell.Traits = []string{"hb_cantrip"}
	assert.Equal(t, []string{"cantrip"}, filter.SpellCategories(spell))
}

func TestDynamicInt_JSON(t *testing.T) {
	data, err := json.Marshal(filter.Literal(4))
	require.NoError(t, err)
	assert.JSONEq(t, "4", string(data))

	data, err = json.Marshal(filter.Expression("half-level"))
	require.NoError(t, err)
	assert.JSONEq(t, `"half-level"`, string(data))

	var d filter.DynamicInt
	require.NoError(t, json.Unmarshal([]byte(`"level"`), &d))
	v, err := d.Resolve(testActor())
	require.NoError(t, err)
	assert.Equal(t, 6, v)
}

func TestDynamicInt_ResolveNilActor(t *testing.T) {
	v, err := filter.Literal(3).Resolve(nil)
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	_, err = filter.Expression("half-level").Resolve(nil)
	require.Error(t, err)
}

func TestQuery_ResolvesDynamicValues(t *testing.T) {
	spec := &filter.Spec{
		Kind:    filter.KindFeat,
		Level:   &filter.Range{Min: filter.Literal(1), Max: filter.Expression("half-level")},
		Sources: []string{"Player Core"},
	}

	query, err := spec.Query(testActor())
	require.NoError(t, err)
	require.NotNil(t, query.LevelMin)
	require.NotNil(t, query.LevelMax)
	assert.Equal(t, 1, *query.LevelMin)
	assert.Equal(t, 3, *query.LevelMax)
	assert.Equal(t, []string{"player-core"}, query.Sources)
}
