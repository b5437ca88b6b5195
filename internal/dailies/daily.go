package dailies

import (
	"context"

	"github.com/dailyforge/dailies-api/internal/entities"
)

// Custom is per-render data a daily's Prepare hook attaches for its
// Rows and Process hooks.
type Custom map[string]interface{}

// Daily is one repeatable, resettable-per-game-day choice bundle.
// Definitions are immutable for the session; prepared data is cached
// per render pass by the engine.
type Daily struct {
	// Key uniquely identifies the daily.
	Key string

	// Label is the daily's display label. LabelFunc, when set, takes
	// precedence and resolves the label per actor.
	Label     string
	LabelFunc func(actor *entities.Actor) string

	// Prepare optionally computes custom context for this render
	// pass.
	Prepare func(ctx context.Context, actor *entities.Actor) (Custom, error)

	// Rows returns this daily's row definitions for this render
	// pass.
	Rows func(ctx context.Context, actor *entities.Actor, custom Custom) ([]Row, error)

	// Process applies the accepted row values through the
	// side-effect surface.
	Process func(ctx context.Context, p Process) error
}

// ResolveLabel resolves the daily's display label for the actor.
func (d *Daily) ResolveLabel(actor *entities.Actor) string {
	if d.LabelFunc != nil {
		return d.LabelFunc(actor)
	}
	if d.Label != "" {
		return d.Label
	}
	return d.Key
}

// Process is the side-effect surface a daily's process callback
// receives. All mutations are collected and committed by the engine
// after every daily has run; nothing a callback does is observable
// by another daily's callback.
type Process interface {
	// Actor returns the actor being prepared.
	Actor() *entities.Actor

	// Custom returns the data this daily's Prepare hook produced.
	Custom() Custom

	// Value returns the accepted value of one of this daily's rows,
	// or nil when the row was not surfaced.
	Value(slug string) Value

	// AddItem queues an item source for creation.
	AddItem(source *entities.Item)

	// AddFeat queues a feat source for creation. When parent is
	// non-nil a grant-by-parent relationship is wired after
	// creation.
	AddFeat(source *entities.Item, parent *entities.Item)

	// DeleteItem queues an existing item for deletion.
	DeleteItem(id string)

	// AddRule appends a rule element to an existing item. The rule
	// is tagged as this module's own; prior rules with that tag are
	// stripped before re-insertion.
	AddRule(itemID string, rule entities.RuleElement)

	// RemoveRule removes this module's own rule elements of the
	// given type from an existing item.
	RemoveRule(itemID string, ruleType string)

	// UpdateItem merges an update fragment (field path to value)
	// for an existing item. Fragments for the same item from
	// different dailies are merged by path.
	UpdateItem(id string, fragment map[string]interface{})

	// Message queues a formatted entry into a named, ordered message
	// group of the chat summary.
	Message(group string, text string)

	// RawMessage queues an ungrouped chat summary line.
	RawMessage(text string)

	// SetExtra merges a value into the persisted extra-flags bucket.
	SetExtra(key string, value interface{})
}
