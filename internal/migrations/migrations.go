// Package migrations implements the versioned, idempotent one-time
// upgrade of persisted per-character state. The gate runs before a
// render pass; nothing else touches the stored schema version.
package migrations

import (
	"sort"

	"golang.org/x/mod/semver"
)

// CurrentSchema is the version stamped on a character once every
// migration has been applied.
const CurrentSchema = "3.0.0"

// Migration is one catalog entry. A character whose stored schema
// orders below Schema has the migration applied.
type Migration struct {
	// Schema is the version this migration upgrades to.
	Schema string
	// Reset demands that all persisted state for this module be
	// cleared.
	Reset bool
	// Message is shown to the user once, after the form opens.
	Message string
}

// Catalog returns the static migration list, ascending by schema.
func Catalog() []Migration {
	return []Migration{
		{
			Schema:  "2.0.0",
			Message: "Saved daily selections now keep their shape across days; stale selections were discarded.",
		},
		{
			Schema:  "3.0.0",
			Reset:   true,
			Message: "Daily preparation state was rebuilt from scratch; re-pick your dailies once.",
		},
	}
}

// Result is the outcome of running the gate.
type Result struct {
	// Applied lists the migrations that matched, ascending.
	Applied []Migration
	// Messages accumulates the applied migrations' messages.
	Messages []string
	// Reset is true when any applied migration demands a state
	// reset.
	Reset bool
	// Schema is the version to stamp.
	Schema string
}

// Acted reports whether the gate did anything.
func (r *Result) Acted() bool {
	return len(r.Applied) > 0
}

// Run compares the stored schema version against the catalog using
// semantic-version ordering and applies every migration with a
// schema greater than it, in ascending order. An empty stored
// version means the character predates versioning and matches
// everything.
func Run(stored string, catalog []Migration) *Result {
	ordered := append([]Migration(nil), catalog...)
	sort.Slice(ordered, func(i, j int) bool {
		return compare(ordered[i].Schema, ordered[j].Schema) < 0
	})

	result := &Result{Schema: CurrentSchema}
	for _, migration := range ordered {
		if stored != "" && compare(migration.Schema, stored) <= 0 {
			continue
		}
		result.Applied = append(result.Applied, migration)
		if migration.Message != "" {
			result.Messages = append(result.Messages, migration.Message)
		}
		if migration.Reset {
			result.Reset = true
		}
	}
	return result
}

// compare orders two version strings semantically. x/mod/semver
// wants the canonical "v" prefix; stored versions carry none.
func compare(a, b string) int {
	return semver.Compare("v"+a, "v"+b)
}
