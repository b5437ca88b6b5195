package prep

import (
	"sync"

	"github.com/dailyforge/dailies-api/internal/dailies"
	"github.com/dailyforge/dailies-api/internal/entities"
)

// pendingCreate is one queued item source, remembering its grantor
// when it was added through AddFeat.
type pendingCreate struct {
	source *entities.Item
	parent *entities.Item
}

// processingContext collects side effects across every daily's
// process callback for one accept cycle. The callbacks run
// concurrently and share only these accumulators; all of them are
// additive behind the mutex. Update fragments for the same item are
// shallow-merged by field path, so a colliding path is last-write-
// wins in callback completion order.
type processingContext struct {
	mu    sync.Mutex
	actor *entities.Actor

	creates []*pendingCreate
	updates map[string]map[string]interface{}
	deletes []string

	// rules holds per-item rule element lists, lazily cloned from
	// the item's source with this module's own prior rules stripped
	// before re-insertion.
	rules map[string][]entities.RuleElement

	messages *messageLog
	extra    map[string]interface{}
}

func newProcessingContext(actor *entities.Actor) *processingContext {
	return &processingContext{
		actor:    actor,
		updates:  make(map[string]map[string]interface{}),
		rules:    make(map[string][]entities.RuleElement),
		messages: newMessageLog(),
		extra:    make(map[string]interface{}),
	}
}

func (c *processingContext) addCreate(source *entities.Item, parent *entities.Item) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.creates = append(c.creates, &pendingCreate{source: source, parent: parent})
}

func (c *processingContext) addDelete(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deletes = append(c.deletes, id)
}

// mergeUpdate merges an update fragment for one item by field path.
func (c *processingContext) mergeUpdate(id string, fragment map[string]interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mergeUpdateLocked(id, fragment)
}

func (c *processingContext) mergeUpdateLocked(id string, fragment map[string]interface{}) {
	existing, ok := c.updates[id]
	if !ok {
		existing = make(map[string]interface{}, len(fragment))
		c.updates[id] = existing
	}
	for path, value := range fragment {
		existing[path] = value
	}
}

// itemRules returns the working rule list for an item, cloning it
// from the item source on first touch with our own prior rules
// stripped.
func (c *processingContext) itemRules(id string) []entities.RuleElement {
	if rules, ok := c.rules[id]; ok {
		return rules
	}
	var rules []entities.RuleElement
	if item := c.actor.ItemByID(id); item != nil {
		for _, rule := range item.Rules {
			if rule.Origin == entities.RuleOriginDailies {
				continue
			}
			rules = append(rules, rule)
		}
	}
	c.rules[id] = rules
	return rules
}

func (c *processingContext) addRule(id string, rule entities.RuleElement) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rules := c.itemRules(id)
	rule.Origin = entities.RuleOriginDailies
	c.rules[id] = append(rules, rule)
}

func (c *processingContext) removeRule(id string, ruleType string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rules := c.itemRules(id)
	kept := rules[:0]
	for _, rule := range rules {
		if rule.Origin == entities.RuleOriginDailies && rule.Type == ruleType {
			continue
		}
		kept = append(kept, rule)
	}
	c.rules[id] = kept
}

func (c *processingContext) setExtra(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.extra[key] = value
}

// flushRules converts accumulated rule edits into per-item update
// fragments.
func (c *processingContext) flushRules() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, rules := range c.rules {
		c.mergeUpdateLocked(id, map[string]interface{}{"rules": rules})
	}
}

// changed reports whether any mutation was collected.
func (c *processingContext) changed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.creates) > 0 || len(c.updates) > 0 || len(c.deletes) > 0
}

// dailyProcess is the per-daily view handed to a process callback.
// It implements dailies.Process, scoping row values to the daily's
// own rows.
type dailyProcess struct {
	ctx      *processingContext
	prepared *preparedDaily
	values   map[string]dailies.Value
}

var _ dailies.Process = (*dailyProcess)(nil)

// Actor implements dailies.Process.
func (p *dailyProcess) Actor() *entities.Actor {
	return p.ctx.actor
}

// Custom implements dailies.Process.
func (p *dailyProcess) Custom() dailies.Custom {
	return p.prepared.custom
}

// Value implements dailies.Process.
func (p *dailyProcess) Value(slug string) dailies.Value {
	return p.values[slug]
}

// AddItem implements dailies.Process.
func (p *dailyProcess) AddItem(source *entities.Item) {
	if source == nil {
		return
	}
	p.ctx.addCreate(source.Clone(), nil)
}

// AddFeat implements dailies.Process.
func (p *dailyProcess) AddFeat(source *entities.Item, parent *entities.Item) {
	if source == nil {
		return
	}
	clone := source.Clone()
	clone.Kind = entities.ItemKindFeat
	p.ctx.addCreate(clone, parent)
}

// DeleteItem implements dailies.Process.
func (p *dailyProcess) DeleteItem(id string) {
	if id == "" {
		return
	}
	p.ctx.addDelete(id)
}

// AddRule implements dailies.Process.
func (p *dailyProcess) AddRule(itemID string, rule entities.RuleElement) {
	p.ctx.addRule(itemID, rule)
}

// RemoveRule implements dailies.Process.
func (p *dailyProcess) RemoveRule(itemID string, ruleType string) {
	p.ctx.removeRule(itemID, ruleType)
}

// UpdateItem implements dailies.Process.
func (p *dailyProcess) UpdateItem(id string, fragment map[string]interface{}) {
	if id == "" || len(fragment) == 0 {
		return
	}
	p.ctx.mergeUpdate(id, fragment)
}

// Message implements dailies.Process.
func (p *dailyProcess) Message(group string, text string) {
	p.ctx.messages.add(group, text)
}

// RawMessage implements dailies.Process.
func (p *dailyProcess) RawMessage(text string) {
	p.ctx.messages.addRaw(text)
}

// SetExtra implements dailies.Process.
func (p *dailyProcess) SetExtra(key string, value interface{}) {
	p.ctx.setExtra(key, value)
}
