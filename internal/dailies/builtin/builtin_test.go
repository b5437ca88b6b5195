package builtin_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dailyforge/dailies-api/internal/dailies"
	"github.com/dailyforge/dailies-api/internal/dailies/builtin"
	"github.com/dailyforge/dailies-api/internal/entities"
)

// fakeProcess records every side effect a daily's Process emits.
type fakeProcess struct {
	actor   *entities.Actor
	custom  dailies.Custom
	values  map[string]dailies.Value
	added   []*entities.Item
	feats   []*entities.Item
	parents []*entities.Item
	deleted []string
	rules   map[string][]entities.RuleElement
	msgs    map[string][]string
	raw     []string
	extra   map[string]interface{}
}

func newFakeProcess(actor *entities.Actor, custom dailies.Custom, values map[string]dailies.Value) *fakeProcess {
	return &fakeProcess{
		actor:  actor,
		custom: custom,
		values: values,
		rules:  make(map[string][]entities.RuleElement),
		msgs:   make(map[string][]string),
		extra:  make(map[string]interface{}),
	}
}

func (p *fakeProcess) Actor() *entities.Actor         { return p.actor }
func (p *fakeProcess) Custom() dailies.Custom         { return p.custom }
func (p *fakeProcess) Value(slug string) dailies.Value { return p.values[slug] }
func (p *fakeProcess) AddItem(source *entities.Item)  { p.added = append(p.added, source) }
func (p *fakeProcess) AddFeat(source, parent *entities.Item) {
	p.feats = append(p.feats, source)
	p.parents = append(p.parents, parent)
}
func (p *fakeProcess) DeleteItem(id string) { p.deleted = append(p.deleted, id) }
func (p *fakeProcess) AddRule(itemID string, rule entities.RuleElement) {
	p.rules[itemID] = append(p.rules[itemID], rule)
}
func (p *fakeProcess) RemoveRule(string, string) {}
func (p *fakeProcess) UpdateItem(string, map[string]interface{}) {}
func (p *fakeProcess) Message(group, text string) { p.msgs[group] = append(p.msgs[group], text) }
func (p *fakeProcess) RawMessage(text string)     { p.raw = append(p.raw, text) }
func (p *fakeProcess) SetExtra(key string, value interface{}) { p.extra[key] = value }

var _ dailies.Process = (*fakeProcess)(nil)

func testActor() *entities.Actor {
	return &entities.Actor{
		ID:    "actor-1",
		Name:  "Seelah",
		Level: 6,
		Skills: []entities.Skill{
			{Slug: "athletics", Label: "Athletics", Rank: 2},
			{Slug: "arcana", Label: "Arcana"},
			{Slug: "society", Label: "Society"},
		},
		Items: []*entities.Item{
			{ID: "feat-st", Kind: entities.ItemKindFeat, Slug: "skill-training", Name: "Skill Training"},
		},
	}
}

func TestSkillTraining_OffersOnlyUntrainedSkills(t *testing.T) {
	daily := builtin.SkillTraining()
	ctx := context.Background()
	actor := testActor()

	custom, err := daily.Prepare(ctx, actor)
	require.NoError(t, err)

	rows, err := daily.Rows(ctx, actor, custom)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	data, ok := rows[0].Data.(dailies.SelectData)
	require.True(t, ok)
	values := make([]string, 0, len(data.Options))
	for _, opt := range data.Options {
		values = append(values, opt.Value)
	}
	assert.ElementsMatch(t, []string{"arcana", "society"}, values)
	assert.NotEmpty(t, data.Unique)
}

func TestSkillTraining_AlertWhenNothingToTrain(t *testing.T) {
	daily := builtin.SkillTraining()
	ctx := context.Background()
	actor := testActor()
	for i := range actor.Skills {
		actor.Skills[i].Rank = 1
	}

	custom, err := daily.Prepare(ctx, actor)
	require.NoError(t, err)

	rows, err := daily.Rows(ctx, actor, custom)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	_, ok := rows[0].Data.(dailies.AlertData)
	assert.True(t, ok)
}

func TestSkillTraining_ProcessAddsRuleAndMessage(t *testing.T) {
	daily := builtin.SkillTraining()
	ctx := context.Background()
	actor := testActor()

	custom, err := daily.Prepare(ctx, actor)
	require.NoError(t, err)

	p := newFakeProcess(actor, custom, map[string]dailies.Value{
		"skill": dailies.StringValue("arcana"),
	})
	require.NoError(t, daily.Process(ctx, p))

	require.Len(t, p.rules["feat-st"], 1)
	assert.Equal(t, "skill-proficiency", p.rules["feat-st"][0].Type)
	require.Len(t, p.msgs["skills"], 1)
	assert.Contains(t, p.msgs["skills"][0], "Arcana")
}

func TestLanguages_FreeTextWins(t *testing.T) {
	daily := builtin.Languages()
	ctx := context.Background()
	actor := testActor()

	rows, err := daily.Rows(ctx, actor, nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	p := newFakeProcess(actor, nil, map[string]dailies.Value{
		"language": dailies.ComboValue{Selected: "elven", Input: "Osiriani"},
	})
	require.NoError(t, daily.Process(ctx, p))

	require.Len(t, p.msgs["languages"], 1)
	assert.Contains(t, p.msgs["languages"][0], "Osiriani")
}

func TestRandomBoon_RecordsExtraAndRawMessage(t *testing.T) {
	daily := builtin.RandomBoon()
	ctx := context.Background()
	actor := testActor()

	p := newFakeProcess(actor, nil, map[string]dailies.Value{
		"boon": dailies.StringValue("insight"),
		"omen": dailies.StringValue("a raven circled twice"),
	})
	require.NoError(t, daily.Process(ctx, p))

	assert.Equal(t, "insight", p.extra["boon"])
	assert.Equal(t, "a raven circled twice", p.extra["omen"])
	require.Len(t, p.raw, 1)
	assert.Contains(t, p.raw[0], "insight")
}

func TestTemporaryFeat_AddsResolvedFeat(t *testing.T) {
	lookup := func(_ context.Context, uuid string) (*entities.Item, error) {
		return &entities.Item{UUID: uuid, Name: "Quick Jump", Kind: entities.ItemKindFeat}, nil
	}
	daily := builtin.TemporaryFeat(lookup)
	ctx := context.Background()
	actor := testActor()

	p := newFakeProcess(actor, nil, map[string]dailies.Value{
		"feat": dailies.DropValue{UUID: "uuid-1", Name: "Quick Jump"},
	})
	require.NoError(t, daily.Process(ctx, p))

	require.Len(t, p.feats, 1)
	assert.Equal(t, "Quick Jump", p.feats[0].Name)
	require.Len(t, p.msgs["feats"], 1)
}

func TestRegister_RegistersEveryDaily(t *testing.T) {
	reg := dailies.NewRegistry()
	require.NoError(t, builtin.Register(reg, nil))
	assert.Len(t, reg.All(), 4)
}
