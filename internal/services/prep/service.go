// Package prep defines the interface for daily preparation
// operations.
package prep

//go:generate mockgen -destination=mock/mock_service.go -package=prepmock github.com/dailyforge/dailies-api/internal/services/prep Service

import (
	"context"

	"github.com/dailyforge/dailies-api/internal/dailies"
	"github.com/dailyforge/dailies-api/internal/entities"
	"github.com/dailyforge/dailies-api/internal/filter"
)

// Service defines the interface for daily preparation operations
type Service interface {
	// Render runs the migration gate, then builds the row-based
	// form model for the character.
	Render(ctx context.Context, input *RenderInput) (*RenderOutput, error)

	// Accept validates the submitted row values and applies every
	// daily's effects.
	Accept(ctx context.Context, input *AcceptInput) (*AcceptOutput, error)

	// ValidateDrop checks a dropped item against a drop row's
	// filter.
	ValidateDrop(ctx context.Context, input *ValidateDropInput) (*ValidateDropOutput, error)

	// BrowseQuery resolves a drop row's filter into the catalog
	// browser's query shape.
	BrowseQuery(ctx context.Context, input *BrowseQueryInput) (*BrowseQueryOutput, error)
}

// RenderInput defines the request for rendering the form model
type RenderInput struct {
	ActorID string
	// Disabled is the per-character set of disabled daily keys.
	Disabled []string
}

// RenderOutput defines the response for rendering the form model
type RenderOutput struct {
	Template *dailies.Template
	// Notices carries migration messages, already dispatched to the
	// notification sink fire-and-forget.
	Notices []string
}

// AcceptInput defines the request for accepting the form
type AcceptInput struct {
	ActorID string
	// Disabled is the per-character set of disabled daily keys.
	Disabled []string
	// Values maps daily key to row slug to the submitted value.
	Values map[string]map[string]dailies.SavedValue
}

// AcceptOutput defines the response for accepting the form
type AcceptOutput struct {
	// Summary is the posted chat summary.
	Summary string
	// AddedItemIDs lists the IDs of the items created.
	AddedItemIDs []string
}

// ValidateDropInput defines the request for validating a dropped item
type ValidateDropInput struct {
	ActorID  string
	DailyKey string
	Slug     string
	ItemUUID string
}

// ValidateDropOutput defines the response for validating a dropped item
type ValidateDropOutput struct {
	// Item is the resolved catalog item.
	Item *entities.Item
	// Value is the row value recording the accepted drop.
	Value dailies.DropValue
}

// BrowseQueryInput defines the request for a browsable filter query
type BrowseQueryInput struct {
	ActorID  string
	DailyKey string
	Slug     string
}

// BrowseQueryOutput defines the response for a browsable filter query
type BrowseQueryOutput struct {
	Query *filter.Query
}
