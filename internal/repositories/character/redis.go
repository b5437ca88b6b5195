package character

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"

	redis "github.com/redis/go-redis/v9"

	"github.com/dailyforge/dailies-api/internal/dailies"
	"github.com/dailyforge/dailies-api/internal/entities"
	"github.com/dailyforge/dailies-api/internal/errors"
	"github.com/dailyforge/dailies-api/internal/pkg/idgen"
	redisclient "github.com/dailyforge/dailies-api/internal/redis"
)

const (
	actorKeyPrefix = "actor:"
	itemsKeySuffix = ":items"
	stateKeySuffix = ":flags:" + dailies.FlagScope

	// Error messages
	errActorNil     = "actor cannot be nil"
	errActorIDEmpty = "actor ID cannot be empty"
)

type redisRepository struct {
	client redisclient.Client
	idGen  idgen.Generator
}

// RedisConfig contains configuration for the Redis character repository.
type RedisConfig struct {
	Client redisclient.Client
	IDGen  idgen.Generator
}

// Validate validates the RedisConfig.
func (cfg *RedisConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if cfg.Client == nil {
		return errors.InvalidArgument("client cannot be nil")
	}
	return nil
}

// NewRedis creates a new Redis-backed character repository
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	gen := cfg.IDGen
	if gen == nil {
		gen = idgen.NewUUID("item")
	}

	return &redisRepository{
		client: cfg.Client,
		idGen:  gen,
	}, nil
}

func actorKey(id string) string { return actorKeyPrefix + id }
func itemsKey(id string) string { return actorKeyPrefix + id + itemsKeySuffix }
func stateKey(id string) string { return actorKeyPrefix + id + stateKeySuffix }

func (r *redisRepository) GetActor(ctx context.Context, input GetActorInput) (*GetActorOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errActorIDEmpty)
	}

	result, err := r.client.Get(ctx, actorKey(input.ID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("actor with ID %s not found", input.ID)
		}
		return nil, errors.Wrapf(err, "failed to get actor")
	}

	var actor entities.Actor
	if err := json.Unmarshal([]byte(result), &actor); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal actor")
	}

	items, err := r.loadItems(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	actor.Items = items

	return &GetActorOutput{Actor: &actor}, nil
}

func (r *redisRepository) loadItems(ctx context.Context, actorID string) ([]*entities.Item, error) {
	raw, err := r.client.HGetAll(ctx, itemsKey(actorID)).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get items for actor %s", actorID)
	}

	items := make([]*entities.Item, 0, len(raw))
	for id, data := range raw {
		var item entities.Item
		if err := json.Unmarshal([]byte(data), &item); err != nil {
			slog.WarnContext(ctx, "skipping undecodable item",
				"actor_id", actorID,
				"item_id", id,
				"error", err.Error())
			continue
		}
		items = append(items, &item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (r *redisRepository) PutActor(ctx context.Context, input PutActorInput) (*PutActorOutput, error) {
	if input.Actor == nil {
		return nil, errors.InvalidArgument(errActorNil)
	}
	if input.Actor.ID == "" {
		return nil, errors.InvalidArgument(errActorIDEmpty)
	}

	// Items live in their own hash; the core document is stored
	// without them.
	core := *input.Actor
	items := core.Items
	core.Items = nil

	data, err := json.Marshal(&core)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal actor")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, actorKey(core.ID), data, 0)
	pipe.Del(ctx, itemsKey(core.ID))
	for _, item := range items {
		if item.ID == "" {
			item.ID = r.idGen.Generate()
		}
		itemData, err := json.Marshal(item)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to marshal item %s", item.Name)
		}
		pipe.HSet(ctx, itemsKey(core.ID), item.ID, itemData)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to put actor")
	}

	return &PutActorOutput{}, nil
}

func (r *redisRepository) CreateItems(ctx context.Context, input CreateItemsInput) (*CreateItemsOutput, error) {
	if input.ActorID == "" {
		return nil, errors.InvalidArgument(errActorIDEmpty)
	}
	if len(input.Sources) == 0 {
		return &CreateItemsOutput{}, nil
	}

	created := make([]*entities.Item, 0, len(input.Sources))
	pipe := r.client.TxPipeline()
	for _, source := range input.Sources {
		item := source.Clone()
		item.ID = r.idGen.Generate()
		data, err := json.Marshal(item)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to marshal item source %s", source.Name)
		}
		pipe.HSet(ctx, itemsKey(input.ActorID), item.ID, data)
		created = append(created, item)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to create items")
	}

	return &CreateItemsOutput{Items: created}, nil
}

func (r *redisRepository) UpdateItems(ctx context.Context, input UpdateItemsInput) (*UpdateItemsOutput, error) {
	if input.ActorID == "" {
		return nil, errors.InvalidArgument(errActorIDEmpty)
	}
	if len(input.Updates) == 0 {
		return &UpdateItemsOutput{}, nil
	}

	key := itemsKey(input.ActorID)
	pipe := r.client.TxPipeline()
	for _, update := range input.Updates {
		raw, err := r.client.HGet(ctx, key, update.ID).Result()
		if err != nil {
			if err == redis.Nil {
				slog.WarnContext(ctx, "skipping update for unknown item",
					"actor_id", input.ActorID,
					"item_id", update.ID)
				continue
			}
			return nil, errors.Wrapf(err, "failed to get item %s", update.ID)
		}

		var item entities.Item
		if err := json.Unmarshal([]byte(raw), &item); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal item %s", update.ID)
		}
		item.ApplyFragment(update.Fragment)

		data, err := json.Marshal(&item)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to marshal item %s", update.ID)
		}
		pipe.HSet(ctx, key, update.ID, data)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to update items")
	}

	return &UpdateItemsOutput{}, nil
}

func (r *redisRepository) DeleteItems(ctx context.Context, input DeleteItemsInput) (*DeleteItemsOutput, error) {
	if input.ActorID == "" {
		return nil, errors.InvalidArgument(errActorIDEmpty)
	}
	if len(input.IDs) == 0 {
		return &DeleteItemsOutput{}, nil
	}

	if err := r.client.HDel(ctx, itemsKey(input.ActorID), input.IDs...).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to delete items")
	}

	return &DeleteItemsOutput{}, nil
}

func (r *redisRepository) GetState(ctx context.Context, input GetStateInput) (*GetStateOutput, error) {
	if input.ActorID == "" {
		return nil, errors.InvalidArgument(errActorIDEmpty)
	}

	result, err := r.client.Get(ctx, stateKey(input.ActorID)).Result()
	if err != nil {
		if err == redis.Nil {
			return &GetStateOutput{State: dailies.NewState()}, nil
		}
		return nil, errors.Wrapf(err, "failed to get persisted state")
	}

	state := dailies.NewState()
	if err := json.Unmarshal([]byte(result), state); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal persisted state")
	}

	return &GetStateOutput{State: state}, nil
}

func (r *redisRepository) SetState(ctx context.Context, input SetStateInput) (*SetStateOutput, error) {
	if input.ActorID == "" {
		return nil, errors.InvalidArgument(errActorIDEmpty)
	}
	if input.State == nil {
		return nil, errors.InvalidArgument("state cannot be nil")
	}

	data, err := json.Marshal(input.State)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal persisted state")
	}

	if err := r.client.Set(ctx, stateKey(input.ActorID), data, 0).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to set persisted state")
	}

	return &SetStateOutput{}, nil
}

func (r *redisRepository) ClearState(ctx context.Context, input ClearStateInput) (*ClearStateOutput, error) {
	if input.ActorID == "" {
		return nil, errors.InvalidArgument(errActorIDEmpty)
	}

	if err := r.client.Del(ctx, stateKey(input.ActorID)).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to clear persisted state")
	}

	return &ClearStateOutput{}, nil
}
