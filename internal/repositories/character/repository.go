// Package character provides the object-store contract the dailies
// engine commits through: actor documents, embedded item batches,
// and the per-character persisted flag bucket.
package character

//go:generate mockgen -destination=mock/mock_repository.go -package=charactermock github.com/dailyforge/dailies-api/internal/repositories/character Repository

import (
	"context"

	"github.com/dailyforge/dailies-api/internal/dailies"
	"github.com/dailyforge/dailies-api/internal/entities"
)

// Repository defines the persistence interface for actors and their
// embedded items.
type Repository interface {
	// GetActor retrieves an actor with its embedded items.
	// Returns errors.NotFound if the actor doesn't exist.
	GetActor(ctx context.Context, input GetActorInput) (*GetActorOutput, error)

	// PutActor creates or replaces an actor document.
	PutActor(ctx context.Context, input PutActorInput) (*PutActorOutput, error)

	// CreateItems creates embedded items from sources in one batch,
	// assigning IDs. Returns the created items.
	CreateItems(ctx context.Context, input CreateItemsInput) (*CreateItemsOutput, error)

	// UpdateItems applies update fragments to embedded items in one
	// batch. Unknown item IDs are skipped.
	UpdateItems(ctx context.Context, input UpdateItemsInput) (*UpdateItemsOutput, error)

	// DeleteItems deletes embedded items by ID in one batch.
	DeleteItems(ctx context.Context, input DeleteItemsInput) (*DeleteItemsOutput, error)

	// GetState retrieves the per-character persisted flag bucket.
	// A missing bucket yields an empty state, not an error.
	GetState(ctx context.Context, input GetStateInput) (*GetStateOutput, error)

	// SetState replaces the per-character persisted flag bucket.
	SetState(ctx context.Context, input SetStateInput) (*SetStateOutput, error)

	// ClearState removes the per-character persisted flag bucket.
	ClearState(ctx context.Context, input ClearStateInput) (*ClearStateOutput, error)
}

// GetActorInput identifies the actor to load.
type GetActorInput struct {
	ID string
}

// GetActorOutput carries the loaded actor.
type GetActorOutput struct {
	Actor *entities.Actor
}

// PutActorInput carries the actor document to store.
type PutActorInput struct {
	Actor *entities.Actor
}

// PutActorOutput is the result of storing an actor.
type PutActorOutput struct{}

// CreateItemsInput carries item sources to create.
type CreateItemsInput struct {
	ActorID string
	Sources []*entities.Item
}

// CreateItemsOutput carries the created items with assigned IDs.
type CreateItemsOutput struct {
	Items []*entities.Item
}

// ItemUpdate is one item's merged update fragment.
type ItemUpdate struct {
	ID       string
	Fragment map[string]interface{}
}

// UpdateItemsInput carries the batched item updates.
type UpdateItemsInput struct {
	ActorID string
	Updates []ItemUpdate
}

// UpdateItemsOutput is the result of a batched update.
type UpdateItemsOutput struct{}

// DeleteItemsInput carries the item IDs to delete.
type DeleteItemsInput struct {
	ActorID string
	IDs     []string
}

// DeleteItemsOutput is the result of a batched delete.
type DeleteItemsOutput struct{}

// GetStateInput identifies the actor whose flag bucket to load.
type GetStateInput struct {
	ActorID string
}

// GetStateOutput carries the loaded flag bucket.
type GetStateOutput struct {
	State *dailies.State
}

// SetStateInput carries the flag bucket to store.
type SetStateInput struct {
	ActorID string
	State   *dailies.State
}

// SetStateOutput is the result of storing the flag bucket.
type SetStateOutput struct{}

// ClearStateInput identifies the actor whose flag bucket to remove.
type ClearStateInput struct {
	ActorID string
}

// ClearStateOutput is the result of removing the flag bucket.
type ClearStateOutput struct{}
