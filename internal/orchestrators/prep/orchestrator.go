// Package prep implements the daily preparation orchestrator: the
// two-phase render → accept lifecycle over a character's dailies.
package prep

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dailyforge/dailies-api/internal/chat"
	"github.com/dailyforge/dailies-api/internal/dailies"
	"github.com/dailyforge/dailies-api/internal/entities"
	"github.com/dailyforge/dailies-api/internal/errors"
	"github.com/dailyforge/dailies-api/internal/filter"
	"github.com/dailyforge/dailies-api/internal/migrations"
	"github.com/dailyforge/dailies-api/internal/pkg/idgen"
	"github.com/dailyforge/dailies-api/internal/repositories/character"
	prepservice "github.com/dailyforge/dailies-api/internal/services/prep"
)

// ItemResolver resolves catalog UUIDs to items. It stands in for the
// external catalog the game client drags items out of.
type ItemResolver interface {
	ResolveUUID(ctx context.Context, uuid string) (*entities.Item, error)
}

// StaticResolver is a map-backed ItemResolver.
type StaticResolver map[string]*entities.Item

// ResolveUUID implements ItemResolver.
func (r StaticResolver) ResolveUUID(_ context.Context, uuid string) (*entities.Item, error) {
	if item, ok := r[uuid]; ok {
		return item.Clone(), nil
	}
	return nil, errors.NotFoundf("no item with uuid %s", uuid)
}

// defaultNoticeDelay keeps the migration notice from racing the
// form's own open animation.
const defaultNoticeDelay = 250 * time.Millisecond

// Config holds the dependencies for the prep orchestrator
type Config struct {
	Repository character.Repository
	Registry   *dailies.Registry
	Sink       chat.Sink
	Resolver   ItemResolver
	IDGen      idgen.Generator
	// RandInt samples [0, n); defaults to math/rand/v2.
	RandInt func(n int) int
	// NoticeDelay delays the migration notice dispatch.
	NoticeDelay time.Duration
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Repository == nil {
		vb.RequiredField("Repository")
	}
	if c.Registry == nil {
		vb.RequiredField("Registry")
	}
	if c.Sink == nil {
		vb.RequiredField("Sink")
	}

	return vb.Build()
}

// Orchestrator implements the prep.Service interface
type Orchestrator struct {
	repo        character.Repository
	registry    *dailies.Registry
	sink        chat.Sink
	resolver    ItemResolver
	idGen       idgen.Generator
	randInt     func(n int) int
	noticeDelay time.Duration

	// sessions caches prepared dailies between render and accept,
	// one per character. Single writer per character is assumed.
	mu       sync.Mutex
	sessions map[string]*session
}

// session is one render → accept pass for a character.
type session struct {
	actor    *entities.Actor
	state    *dailies.State
	prepared []*preparedDaily
	template *dailies.Template
}

// New creates a new prep orchestrator
func New(cfg *Config) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	gen := cfg.IDGen
	if gen == nil {
		gen = idgen.NewUUID("item")
	}
	randInt := cfg.RandInt
	if randInt == nil {
		randInt = rand.IntN
	}
	delay := cfg.NoticeDelay
	if delay == 0 {
		delay = defaultNoticeDelay
	}

	return &Orchestrator{
		repo:        cfg.Repository,
		registry:    cfg.Registry,
		sink:        cfg.Sink,
		resolver:    cfg.Resolver,
		idGen:       gen,
		randInt:     randInt,
		noticeDelay: delay,
		sessions:    make(map[string]*session),
	}, nil
}

// Ensure Orchestrator implements the Service interface
var _ prepservice.Service = (*Orchestrator)(nil)

// Render runs the migration gate, then builds the form model.
func (o *Orchestrator) Render(ctx context.Context, input *prepservice.RenderInput) (*prepservice.RenderOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("actorID", input.ActorID, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	sess, notices, err := o.openSession(ctx, input.ActorID, input.Disabled)
	if err != nil {
		return nil, err
	}

	return &prepservice.RenderOutput{
		Template: sess.template,
		Notices:  notices,
	}, nil
}

// openSession loads the actor and persisted state, passes the
// migration gate, prepares every enabled daily, and caches the
// session for the accept phase.
func (o *Orchestrator) openSession(ctx context.Context, actorID string, disabled []string) (*session, []string, error) {
	actorOut, err := o.repo.GetActor(ctx, character.GetActorInput{ID: actorID})
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to get actor").WithMeta("actor_id", actorID)
	}
	stateOut, err := o.repo.GetState(ctx, character.GetStateInput{ActorID: actorID})
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to get persisted state")
	}

	state := stateOut.State
	notices, state, err := o.runMigrationGate(ctx, actorID, state)
	if err != nil {
		return nil, nil, err
	}

	prepared, err := o.prepareDailies(ctx, actorOut.Actor, disabled)
	if err != nil {
		return nil, nil, err
	}

	sess := &session{
		actor:    actorOut.Actor,
		state:    state,
		prepared: prepared,
		template: buildTemplate(prepared, state),
	}

	o.mu.Lock()
	o.sessions[actorID] = sess
	o.mu.Unlock()

	return sess, notices, nil
}

// currentSession returns the cached session for the actor, opening a
// fresh one when none exists.
func (o *Orchestrator) currentSession(ctx context.Context, actorID string, disabled []string) (*session, error) {
	o.mu.Lock()
	sess := o.sessions[actorID]
	o.mu.Unlock()
	if sess != nil {
		return sess, nil
	}
	sess, _, err := o.openSession(ctx, actorID, disabled)
	return sess, err
}

func (o *Orchestrator) closeSession(actorID string) {
	o.mu.Lock()
	delete(o.sessions, actorID)
	o.mu.Unlock()
}

// runMigrationGate applies pending migrations before any further
// interaction. Migration messages are displayed once, after a short
// delay, fire-and-forget; form rendering does not block on them.
func (o *Orchestrator) runMigrationGate(ctx context.Context, actorID string, state *dailies.State) ([]string, *dailies.State, error) {
	// A character with no persisted state at all predates nothing;
	// the schema is stamped on first accept.
	if state.Schema == "" && len(state.Dailies) == 0 && len(state.Extra) == 0 && len(state.AddedItems) == 0 {
		return nil, state, nil
	}

	result := migrations.Run(state.Schema, migrations.Catalog())
	if !result.Acted() {
		return nil, state, nil
	}

	messages := result.Messages
	if result.Reset {
		if _, err := o.repo.ClearState(ctx, character.ClearStateInput{ActorID: actorID}); err != nil {
			return nil, nil, errors.Wrap(err, "failed to clear persisted state")
		}
		state = dailies.NewState()
		messages = append([]string{"Your daily preparation data was reset."}, messages...)
	}
	state.Schema = result.Schema
	if _, err := o.repo.SetState(ctx, character.SetStateInput{ActorID: actorID, State: state}); err != nil {
		return nil, nil, errors.Wrap(err, "failed to stamp schema version")
	}

	if len(messages) > 0 {
		o.dispatchNotices(messages)
	}

	slog.InfoContext(ctx, "applied daily preparation migrations",
		"actor_id", actorID,
		"schema", result.Schema,
		"reset", result.Reset,
		"applied", len(result.Applied))

	return messages, state, nil
}

func (o *Orchestrator) dispatchNotices(messages []string) {
	content := ""
	for i, msg := range messages {
		if i > 0 {
			content += "\n"
		}
		content += msg
	}
	delay := o.noticeDelay
	go func() {
		time.Sleep(delay)
		o.sink.Prompt(context.Background(), "Daily Preparations Update", content)
	}()
}

// Accept validates the submitted row values and applies every
// daily's effects.
func (o *Orchestrator) Accept(ctx context.Context, input *prepservice.AcceptInput) (*prepservice.AcceptOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("actorID", input.ActorID, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	sess, err := o.currentSession(ctx, input.ActorID, input.Disabled)
	if err != nil {
		return nil, err
	}

	if sess.template.HasAlert {
		return nil, errors.FailedPrecondition("an alert must be acknowledged before accepting")
	}
	if !sess.template.CanAccept {
		return nil, errors.FailedPrecondition("there is nothing to prepare")
	}

	values, err := o.resolveValues(sess, input.Values)
	if err != nil {
		o.sink.Warn(ctx, errors.GetMessage(err))
		return nil, err
	}

	pctx := newProcessingContext(sess.actor)
	o.runProcessCallbacks(ctx, sess, pctx, values)

	summary, addedIDs, err := o.commit(ctx, input.ActorID, sess, pctx, values)
	if err != nil {
		return nil, err
	}

	o.closeSession(input.ActorID)

	return &prepservice.AcceptOutput{
		Summary:      summary,
		AddedItemIDs: addedIDs,
	}, nil
}

// resolveValues validates the submitted values against the surfaced
// rows and resolves the final per-daily value sets. A blank value on
// any non-exempt row aborts the accept before any mutation.
func (o *Orchestrator) resolveValues(sess *session, submitted map[string]map[string]dailies.SavedValue) (map[string]map[string]dailies.Value, error) {
	values := make(map[string]map[string]dailies.Value)
	claimed := make(map[string]map[string]struct{})

	store := func(row *dailies.RenderedRow, value dailies.Value) error {
		if value == nil || value.Blank() {
			return errors.InvalidArgumentf("%s must be filled before accepting", row.Label).
				WithMeta("daily_key", row.DailyKey).
				WithMeta("slug", row.Slug)
		}
		if _, ok := values[row.DailyKey]; !ok {
			values[row.DailyKey] = make(map[string]dailies.Value)
		}
		values[row.DailyKey][row.Slug] = value
		claimValue(claimed, row, value)
		return nil
	}

	var randoms []*dailies.RenderedRow
	for _, row := range sess.template.AllRows() {
		switch row.Type {
		case dailies.RowTypeAlert, dailies.RowTypeNotify:
			// Display-only rows carry no value.
			continue
		case dailies.RowTypeRandom:
			// Sampled fresh at accept time, after every picked value
			// is known, so the draw can skip options other rows have
			// claimed under a shared unique tag. Any client-side
			// cycling is purely cosmetic.
			randoms = append(randoms, row)
			continue
		}
		if err := store(row, submittedValue(submitted, row)); err != nil {
			return nil, err
		}
	}

	for _, row := range randoms {
		if err := store(row, o.sampleRandom(row, claimed[row.UniqueTag])); err != nil {
			return nil, err
		}
	}

	return values, nil
}

// claimValue records the unique key occupied by the option the row's
// value picked. Exempt options, free-text combo entries, and values
// absent from the option list claim nothing.
func claimValue(claimed map[string]map[string]struct{}, row *dailies.RenderedRow, value dailies.Value) {
	if row.UniqueTag == "" {
		return
	}
	var picked string
	switch v := value.(type) {
	case dailies.StringValue:
		picked = string(v)
	case dailies.ComboValue:
		if v.Input != "" {
			return
		}
		picked = v.Selected
	default:
		return
	}
	for _, opt := range row.Options {
		if opt.GroupStart || opt.GroupEnd || opt.Value != picked {
			continue
		}
		if opt.SkipUnique {
			return
		}
		key := opt.Unique
		if key == "" {
			key = opt.Value
		}
		if claimed[row.UniqueTag] == nil {
			claimed[row.UniqueTag] = make(map[string]struct{})
		}
		claimed[row.UniqueTag][key] = struct{}{}
		return
	}
}

// submittedValue extracts the submitted value of matching shape for
// a row, or nil.
func submittedValue(submitted map[string]map[string]dailies.SavedValue, row *dailies.RenderedRow) dailies.Value {
	rows, ok := submitted[row.DailyKey]
	if !ok {
		return nil
	}
	sv, ok := rows[row.Slug]
	if !ok || !sv.Matches(row.Type) {
		return nil
	}
	return sv.Value
}

// sampleRandom picks a random real option of a random row, skipping
// non-exempt options whose unique key is already claimed.
func (o *Orchestrator) sampleRandom(row *dailies.RenderedRow, claimed map[string]struct{}) dailies.Value {
	var real []string
	for _, opt := range row.Options {
		if opt.GroupStart || opt.GroupEnd {
			continue
		}
		if !opt.SkipUnique {
			key := opt.Unique
			if key == "" {
				key = opt.Value
			}
			if _, taken := claimed[key]; taken {
				continue
			}
		}
		real = append(real, opt.Value)
	}
	if len(real) == 0 {
		return nil
	}
	return dailies.StringValue(real[o.randInt(len(real))])
}

// runProcessCallbacks invokes every daily's process callback
// concurrently. A failure in one daily is logged and isolated; the
// others and the final commit proceed.
func (o *Orchestrator) runProcessCallbacks(ctx context.Context, sess *session, pctx *processingContext, values map[string]map[string]dailies.Value) {
	var wg sync.WaitGroup
	var failed atomic.Bool

	for _, p := range sess.prepared {
		if p.daily.Process == nil {
			continue
		}
		dailyValues, ok := values[p.daily.Key]
		if !ok {
			continue
		}

		wg.Add(1)
		go func(p *preparedDaily, dailyValues map[string]dailies.Value) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					slog.ErrorContext(ctx, "daily process callback panicked",
						"daily_key", p.daily.Key,
						"panic", r)
					failed.Store(true)
				}
			}()

			view := &dailyProcess{ctx: pctx, prepared: p, values: dailyValues}
			if err := p.daily.Process(ctx, view); err != nil {
				slog.ErrorContext(ctx, "daily process callback failed",
					"daily_key", p.daily.Key,
					"error", err.Error())
				failed.Store(true)
			}
		}(p, dailyValues)
	}
	wg.Wait()

	if failed.Load() {
		o.sink.Error(ctx, "Some daily preparations failed to apply.")
	}
}

// ValidateDrop checks a dropped item against a drop row's filter and
// returns the row value recording the drop.
func (o *Orchestrator) ValidateDrop(ctx context.Context, input *prepservice.ValidateDropInput) (*prepservice.ValidateDropOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("actorID", input.ActorID, vb)
	errors.ValidateRequired("dailyKey", input.DailyKey, vb)
	errors.ValidateRequired("slug", input.Slug, vb)
	errors.ValidateRequired("itemUUID", input.ItemUUID, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}
	if o.resolver == nil {
		return nil, errors.Unavailable("no item resolver configured")
	}

	sess, err := o.currentSession(ctx, input.ActorID, nil)
	if err != nil {
		return nil, err
	}

	drop, err := sess.dropRow(input.DailyKey, input.Slug)
	if err != nil {
		return nil, err
	}

	item, err := o.resolver.ResolveUUID(ctx, input.ItemUUID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve dropped item")
	}

	if err := filter.Validate(item, drop.Filter, sess.actor); err != nil {
		o.sink.Warn(ctx, errors.GetMessage(err))
		return nil, err
	}
	if drop.OnDrop != nil {
		if err := drop.OnDrop(item); err != nil {
			o.sink.Warn(ctx, errors.GetMessage(err))
			return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "drop rejected")
		}
	}

	return &prepservice.ValidateDropOutput{
		Item:  item,
		Value: dailies.DropValue{UUID: item.UUID, Name: item.Name},
	}, nil
}

// BrowseQuery resolves a drop row's filter into its browsable form.
func (o *Orchestrator) BrowseQuery(ctx context.Context, input *prepservice.BrowseQueryInput) (*prepservice.BrowseQueryOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("actorID", input.ActorID, vb)
	errors.ValidateRequired("dailyKey", input.DailyKey, vb)
	errors.ValidateRequired("slug", input.Slug, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	sess, err := o.currentSession(ctx, input.ActorID, nil)
	if err != nil {
		return nil, err
	}

	drop, err := sess.dropRow(input.DailyKey, input.Slug)
	if err != nil {
		return nil, err
	}

	query, err := drop.Filter.Query(sess.actor)
	if err != nil {
		return nil, err
	}

	return &prepservice.BrowseQueryOutput{Query: query}, nil
}

// dropRow finds the drop row definition for (dailyKey, slug) in the
// session's prepared rows.
func (s *session) dropRow(dailyKey, slug string) (*dailies.DropData, error) {
	for _, p := range s.prepared {
		if p.daily.Key != dailyKey {
			continue
		}
		for i := range p.rows {
			row := &p.rows[i]
			if row.Slug != slug {
				continue
			}
			drop, ok := row.Data.(dailies.DropData)
			if !ok {
				return nil, errors.InvalidArgumentf("row %s of daily %s is not a drop row", slug, dailyKey)
			}
			if drop.Filter == nil {
				return nil, errors.Internalf("drop row %s of daily %s has no filter", slug, dailyKey)
			}
			return &drop, nil
		}
	}
	return nil, errors.NotFoundf("no row %s in daily %s", slug, dailyKey)
}
