package character

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/dailyforge/dailies-api/internal/dailies"
	"github.com/dailyforge/dailies-api/internal/entities"
	"github.com/dailyforge/dailies-api/internal/errors"
	"github.com/dailyforge/dailies-api/internal/pkg/idgen"
)

// inMemoryRepository is a map-backed Repository for tests and local
// development.
type inMemoryRepository struct {
	mu     sync.RWMutex
	idGen  idgen.Generator
	actors map[string]*entities.Actor
	states map[string]*dailies.State
}

// NewInMemory creates an in-memory character repository.
func NewInMemory(gen idgen.Generator) Repository {
	if gen == nil {
		gen = idgen.NewSequential("item")
	}
	return &inMemoryRepository{
		idGen:  gen,
		actors: make(map[string]*entities.Actor),
		states: make(map[string]*dailies.State),
	}
}

func cloneActor(actor *entities.Actor) *entities.Actor {
	clone := *actor
	clone.Skills = append([]entities.Skill(nil), actor.Skills...)
	clone.Statistics = append([]entities.Statistic(nil), actor.Statistics...)
	clone.Items = make([]*entities.Item, 0, len(actor.Items))
	for _, item := range actor.Items {
		clone.Items = append(clone.Items, item.Clone())
	}
	return &clone
}

func cloneState(state *dailies.State) *dailies.State {
	data, err := json.Marshal(state)
	if err != nil {
		return dailies.NewState()
	}
	clone := dailies.NewState()
	if err := json.Unmarshal(data, clone); err != nil {
		return dailies.NewState()
	}
	return clone
}

func (r *inMemoryRepository) GetActor(_ context.Context, input GetActorInput) (*GetActorOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errActorIDEmpty)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	actor, ok := r.actors[input.ID]
	if !ok {
		return nil, errors.NotFoundf("actor with ID %s not found", input.ID)
	}
	return &GetActorOutput{Actor: cloneActor(actor)}, nil
}

func (r *inMemoryRepository) PutActor(_ context.Context, input PutActorInput) (*PutActorOutput, error) {
	if input.Actor == nil {
		return nil, errors.InvalidArgument(errActorNil)
	}
	if input.Actor.ID == "" {
		return nil, errors.InvalidArgument(errActorIDEmpty)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	actor := cloneActor(input.Actor)
	for _, item := range actor.Items {
		if item.ID == "" {
			item.ID = r.idGen.Generate()
		}
	}
	r.actors[actor.ID] = actor
	return &PutActorOutput{}, nil
}

func (r *inMemoryRepository) CreateItems(_ context.Context, input CreateItemsInput) (*CreateItemsOutput, error) {
	if input.ActorID == "" {
		return nil, errors.InvalidArgument(errActorIDEmpty)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	actor, ok := r.actors[input.ActorID]
	if !ok {
		return nil, errors.NotFoundf("actor with ID %s not found", input.ActorID)
	}

	created := make([]*entities.Item, 0, len(input.Sources))
	for _, source := range input.Sources {
		item := source.Clone()
		item.ID = r.idGen.Generate()
		actor.Items = append(actor.Items, item)
		created = append(created, item.Clone())
	}
	return &CreateItemsOutput{Items: created}, nil
}

func (r *inMemoryRepository) UpdateItems(_ context.Context, input UpdateItemsInput) (*UpdateItemsOutput, error) {
	if input.ActorID == "" {
		return nil, errors.InvalidArgument(errActorIDEmpty)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	actor, ok := r.actors[input.ActorID]
	if !ok {
		return nil, errors.NotFoundf("actor with ID %s not found", input.ActorID)
	}

	for _, update := range input.Updates {
		if item := actor.ItemByID(update.ID); item != nil {
			item.ApplyFragment(update.Fragment)
		}
	}
	return &UpdateItemsOutput{}, nil
}

func (r *inMemoryRepository) DeleteItems(_ context.Context, input DeleteItemsInput) (*DeleteItemsOutput, error) {
	if input.ActorID == "" {
		return nil, errors.InvalidArgument(errActorIDEmpty)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	actor, ok := r.actors[input.ActorID]
	if !ok {
		return nil, errors.NotFoundf("actor with ID %s not found", input.ActorID)
	}

	drop := make(map[string]struct{}, len(input.IDs))
	for _, id := range input.IDs {
		drop[id] = struct{}{}
	}
	kept := actor.Items[:0]
	for _, item := range actor.Items {
		if _, gone := drop[item.ID]; !gone {
			kept = append(kept, item)
		}
	}
	actor.Items = kept
	return &DeleteItemsOutput{}, nil
}

func (r *inMemoryRepository) GetState(_ context.Context, input GetStateInput) (*GetStateOutput, error) {
	if input.ActorID == "" {
		return nil, errors.InvalidArgument(errActorIDEmpty)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.states[input.ActorID]
	if !ok {
		return &GetStateOutput{State: dailies.NewState()}, nil
	}
	return &GetStateOutput{State: cloneState(state)}, nil
}

func (r *inMemoryRepository) SetState(_ context.Context, input SetStateInput) (*SetStateOutput, error) {
	if input.ActorID == "" {
		return nil, errors.InvalidArgument(errActorIDEmpty)
	}
	if input.State == nil {
		return nil, errors.InvalidArgument("state cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.states[input.ActorID] = cloneState(input.State)
	return &SetStateOutput{}, nil
}

func (r *inMemoryRepository) ClearState(_ context.Context, input ClearStateInput) (*ClearStateOutput, error) {
	if input.ActorID == "" {
		return nil, errors.InvalidArgument(errActorIDEmpty)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.states, input.ActorID)
	return &ClearStateOutput{}, nil
}
