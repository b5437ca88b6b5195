package prep

import (
	"sort"
	"strings"
	"sync"
)

// Default chat summary group priorities. Higher posts first.
var groupPriorities = map[string]int{
	"languages":   80,
	"skills":      70,
	"resistances": 60,
	"feats":       50,
	"spells":      40,
	"scrolls":     30,
}

// Group labels for the summary. Groups without a label render their
// key.
var groupLabels = map[string]string{
	"languages":   "Languages",
	"skills":      "Skills",
	"resistances": "Resistances",
	"feats":       "Feats",
	"spells":      "Spells",
	"scrolls":     "Scrolls",
}

const rawMessagePriority = 1

// messageLog collects chat summary entries across concurrently
// running process callbacks.
type messageLog struct {
	mu     sync.Mutex
	groups map[string][]string
	order  []string
	raw    []string
}

func newMessageLog() *messageLog {
	return &messageLog{groups: make(map[string][]string)}
}

// add queues an entry into a named group.
func (l *messageLog) add(group, text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, seen := l.groups[group]; !seen {
		l.order = append(l.order, group)
	}
	l.groups[group] = append(l.groups[group], text)
}

// addRaw queues an ungrouped entry.
func (l *messageLog) addRaw(text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.raw = append(l.raw, text)
}

func (l *messageLog) empty() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.groups) == 0 && len(l.raw) == 0
}

// render composes the single chat summary. Groups are ordered by
// descending priority; raw messages carry the default priority; the
// changes/no-changes preface is always first.
func (l *messageLog) render(changes bool) string {
	l.mu.Lock()
	defer l.mu.Unlock()

	var b strings.Builder
	b.WriteString("Daily Preparations")
	if changes {
		b.WriteString(" — changes applied")
	} else {
		b.WriteString(" — no changes")
	}

	type block struct {
		priority int
		lines    []string
	}
	blocks := make([]block, 0, len(l.order)+1)
	for _, group := range l.order {
		priority, ok := groupPriorities[group]
		if !ok {
			priority = rawMessagePriority
		}
		label, ok := groupLabels[group]
		if !ok {
			label = group
		}
		lines := make([]string, 0, len(l.groups[group])+1)
		lines = append(lines, label+":")
		for _, entry := range l.groups[group] {
			lines = append(lines, "  "+entry)
		}
		blocks = append(blocks, block{priority: priority, lines: lines})
	}
	if len(l.raw) > 0 {
		blocks = append(blocks, block{priority: rawMessagePriority, lines: l.raw})
	}

	sort.SliceStable(blocks, func(i, j int) bool {
		return blocks[i].priority > blocks[j].priority
	})

	for _, blk := range blocks {
		for _, line := range blk.lines {
			b.WriteString("\n")
			b.WriteString(line)
		}
	}
	return b.String()
}
