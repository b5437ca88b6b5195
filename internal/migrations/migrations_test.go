package migrations_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dailyforge/dailies-api/internal/migrations"
)

func testCatalog() []migrations.Migration {
	return []migrations.Migration{
		{Schema: "2.0.0", Message: "selections reshaped"},
		{Schema: "3.0.0", Reset: true, Message: "state rebuilt"},
	}
}

func TestRun_UpgradesFromOlderSchema(t *testing.T) {
	result := migrations.Run("2.0.0", testCatalog())

	require.True(t, result.Acted())
	require.Len(t, result.Applied, 1)
	assert.Equal(t, "3.0.0", result.Applied[0].Schema)
	assert.True(t, result.Reset)
	assert.Equal(t, []string{"state rebuilt"}, result.Messages)
	assert.Equal(t, migrations.CurrentSchema, result.Schema)
}

func TestRun_NoopAtCurrentSchema(t *testing.T) {
	result := migrations.Run("3.0.0", testCatalog())

	assert.False(t, result.Acted())
	assert.False(t, result.Reset)
	assert.Empty(t, result.Messages)
}

func TestRun_EmptyStoredMatchesEverything(t *testing.T) {
	result := migrations.Run("", testCatalog())

	require.Len(t, result.Applied, 2)
	assert.True(t, result.Reset)
	assert.Equal(t, []string{"selections reshaped", "state rebuilt"}, result.Messages)
}

func TestRun_AppliesInAscendingOrder(t *testing.T) {
	// Catalog handed over out of order still applies ascending.
	catalog := []migrations.Migration{
		{Schema: "3.0.0", Message: "third"},
		{Schema: "2.0.0", Message: "second"},
		{Schema: "2.1.0", Message: "between"},
	}

	result := migrations.Run("1.0.0", catalog)

	assert.Equal(t, []string{"second", "between", "third"}, result.Messages)
}

func TestRun_SemverNotLexicographic(t *testing.T) {
	// "10.0.0" orders above "9.0.0" semantically even though it is
	// below it as a string.
	catalog := []migrations.Migration{{Schema: "10.0.0", Message: "ten"}}

	result := migrations.Run("9.0.0", catalog)

	require.True(t, result.Acted())
	assert.Equal(t, []string{"ten"}, result.Messages)
}

func TestRun_Idempotent(t *testing.T) {
	first := migrations.Run("2.0.0", testCatalog())
	second := migrations.Run(first.Schema, testCatalog())

	assert.False(t, second.Acted())
}
