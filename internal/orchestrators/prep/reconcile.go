package prep

import (
	"context"
	"log/slog"

	"github.com/dailyforge/dailies-api/internal/dailies"
	"github.com/dailyforge/dailies-api/internal/entities"
	"github.com/dailyforge/dailies-api/internal/errors"
	"github.com/dailyforge/dailies-api/internal/migrations"
	"github.com/dailyforge/dailies-api/internal/repositories/character"
)

// commit reconciles cross-item relationships collected during
// processing and applies every mutation. The persistence calls are
// sequential and no rollback is attempted if a later one fails;
// earlier effects remain applied.
func (o *Orchestrator) commit(ctx context.Context, actorID string, sess *session, pctx *processingContext, values map[string]map[string]dailies.Value) (string, []string, error) {
	// Every item this cycle adds is marked temporary so the next
	// rest can sweep it.
	for _, create := range pctx.creates {
		create.source.SetFlag(entities.ItemFlagTemporary, true)
	}

	o.tagOrphanSpells(pctx)

	created, err := o.createItems(ctx, actorID, pctx)
	if err != nil {
		return "", nil, err
	}

	o.linkGrants(pctx, created)
	o.relocateOrphanSpells(pctx, created)

	pctx.flushRules()

	if err := o.applyItemChanges(ctx, actorID, pctx); err != nil {
		return "", nil, err
	}

	addedIDs := make([]string, 0, len(created))
	for _, item := range created {
		addedIDs = append(addedIDs, item.ID)
	}

	if err := o.persistState(ctx, actorID, sess, pctx, values, addedIDs); err != nil {
		return "", nil, err
	}

	summary := pctx.messages.render(pctx.changed())
	if err := o.sink.PostMessage(ctx, actorID, summary); err != nil {
		slog.WarnContext(ctx, "failed to post chat summary", "error", err.Error())
	}

	slog.InfoContext(ctx, "accepted daily preparations",
		"actor_id", actorID,
		"created", len(created),
		"updated", len(pctx.updates),
		"deleted", len(pctx.deletes))

	return summary, addedIDs, nil
}

// tagOrphanSpells marks queued spells without a casting location
// with one shared synthetic identifier, and queues exactly one
// innate spellcasting entry carrying it when any exist.
func (o *Orchestrator) tagOrphanSpells(pctx *processingContext) {
	var identifier string
	for _, create := range pctx.creates {
		spell := create.source
		if spell.Kind != entities.ItemKindSpell {
			continue
		}
		if spell.Location != "" || spell.FlagString(entities.ItemFlagIdentifier) != "" {
			continue
		}
		if identifier == "" {
			identifier = o.idGen.Generate()
		}
		spell.SetFlag(entities.ItemFlagIdentifier, identifier)
		spell.SetFlag(entities.ItemFlagOrphan, true)
		if spell.Rank > 0 {
			spell.SetFlag(entities.ItemFlagRank, spell.Rank)
		}
	}
	if identifier == "" {
		return
	}

	entry := &entities.Item{
		Name:      "Innate Spells",
		Kind:      entities.ItemKindSpellcastingEntry,
		Statistic: bestCastingStatistic(pctx.actor),
	}
	entry.SetFlag(entities.ItemFlagTemporary, true)
	entry.SetFlag(entities.ItemFlagIdentifier, identifier)
	pctx.creates = append(pctx.creates, &pendingCreate{source: entry})
}

// bestCastingStatistic picks the higher of the actor's best existing
// spellcasting statistic and its best synthetic statistic.
func bestCastingStatistic(actor *entities.Actor) *entities.Statistic {
	casting := actor.BestSpellcastingStatistic()
	synthetic := actor.BestSyntheticStatistic()
	switch {
	case casting == nil:
		return cloneStatistic(synthetic)
	case synthetic == nil:
		return cloneStatistic(casting)
	case synthetic.Mod > casting.Mod:
		return cloneStatistic(synthetic)
	default:
		return cloneStatistic(casting)
	}
}

func cloneStatistic(s *entities.Statistic) *entities.Statistic {
	if s == nil {
		return nil
	}
	clone := *s
	return &clone
}

// createItems stores every queued item in one batch. The returned
// slice is index-aligned with pctx.creates.
func (o *Orchestrator) createItems(ctx context.Context, actorID string, pctx *processingContext) ([]*entities.Item, error) {
	if len(pctx.creates) == 0 {
		return nil, nil
	}
	sources := make([]*entities.Item, 0, len(pctx.creates))
	for _, create := range pctx.creates {
		sources = append(sources, create.source)
	}
	out, err := o.repo.CreateItems(ctx, character.CreateItemsInput{ActorID: actorID, Sources: sources})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create items")
	}
	if len(out.Items) != len(pctx.creates) {
		return nil, errors.Internalf("item store created %d of %d queued items", len(out.Items), len(pctx.creates))
	}
	return out.Items, nil
}

// linkGrants registers the bidirectional grant link for every
// created feat that declared a grantor: the child keeps a flag
// naming its parent, and the parent's grants map gains the child.
func (o *Orchestrator) linkGrants(pctx *processingContext, created []*entities.Item) {
	for idx, create := range pctx.creates {
		if create.parent == nil || create.parent.ID == "" {
			continue
		}
		child := created[idx]
		pctx.mergeUpdate(child.ID, map[string]interface{}{
			"flags." + entities.ItemFlagGrantedBy: create.parent.ID,
		})

		grantKey := child.Slug
		if grantKey == "" {
			grantKey = child.ID
		}
		pctx.mergeUpdate(create.parent.ID, map[string]interface{}{
			"grants." + grantKey: child.ID,
		})
	}
}

// relocateOrphanSpells routes every spell sharing a created entry's
// synthetic identifier into that entry, heightened to the rank the
// spell recorded for itself.
func (o *Orchestrator) relocateOrphanSpells(pctx *processingContext, created []*entities.Item) {
	for _, entry := range created {
		if entry.Kind != entities.ItemKindSpellcastingEntry {
			continue
		}
		identifier := entry.FlagString(entities.ItemFlagIdentifier)
		if identifier == "" {
			continue
		}
		for _, spell := range created {
			if spell.Kind != entities.ItemKindSpell {
				continue
			}
			if spell.FlagString(entities.ItemFlagIdentifier) != identifier {
				continue
			}
			fragment := map[string]interface{}{"location": entry.ID}
			if rank, ok := spell.FlagInt(entities.ItemFlagRank); ok {
				fragment["heightened_rank"] = rank
			}
			pctx.mergeUpdate(spell.ID, fragment)
		}
	}
}

// applyItemChanges flushes batched updates, then batched deletes.
func (o *Orchestrator) applyItemChanges(ctx context.Context, actorID string, pctx *processingContext) error {
	if len(pctx.updates) > 0 {
		updates := make([]character.ItemUpdate, 0, len(pctx.updates))
		for id, fragment := range pctx.updates {
			updates = append(updates, character.ItemUpdate{ID: id, Fragment: fragment})
		}
		if _, err := o.repo.UpdateItems(ctx, character.UpdateItemsInput{ActorID: actorID, Updates: updates}); err != nil {
			return errors.Wrap(err, "failed to update items")
		}
	}
	if len(pctx.deletes) > 0 {
		if _, err := o.repo.DeleteItems(ctx, character.DeleteItemsInput{ActorID: actorID, IDs: pctx.deletes}); err != nil {
			return errors.Wrap(err, "failed to delete items")
		}
	}
	return nil
}

// persistState writes the whole flag bucket in one call. The write is
// based on the state the session loaded: saved values of rows surfaced
// this pass are overwritten and the extra bucket is merged key by key,
// so values belonging to dailies not surfaced this pass survive.
func (o *Orchestrator) persistState(ctx context.Context, actorID string, sess *session, pctx *processingContext, values map[string]map[string]dailies.Value, addedIDs []string) error {
	state := sess.state
	if state == nil {
		state = dailies.NewState()
	}
	for _, row := range sess.template.AllRows() {
		if !row.Save {
			continue
		}
		switch row.Type {
		case dailies.RowTypeAlert, dailies.RowTypeNotify:
			continue
		}
		if value, ok := values[row.DailyKey][row.Slug]; ok {
			state.SetSaved(row.DailyKey, row.Slug, value)
		}
	}
	if state.Extra == nil {
		state.Extra = make(map[string]interface{}, len(pctx.extra))
	}
	for key, value := range pctx.extra {
		state.Extra[key] = value
	}
	state.Rested = false
	state.Schema = migrations.CurrentSchema
	state.AddedItems = addedIDs

	if _, err := o.repo.SetState(ctx, character.SetStateInput{ActorID: actorID, State: state}); err != nil {
		return errors.Wrap(err, "failed to persist preparation state")
	}
	return nil
}
