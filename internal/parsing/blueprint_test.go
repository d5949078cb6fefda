package parsing

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calebstern/habitforge/internal/types"
)

func samplePayload() *types.BlueprintPayload {
	return &types.BlueprintPayload{
		Overview: types.Overview{
			Summary:  "Read every day to finish 12 books this year.",
			Mistakes: []string{"reading only when motivated"},
			Guidance: []string{"keep the book on your pillow"},
		},
		DailyHabits: []types.DailyHabit{
			{ID: "habit-1", Title: "Read 10 pages", Description: "Before bed", Timeframe: "daily"},
		},
		Resources: []types.Resource{
			{Title: "Atomic reading list", URL: "https://example.com/list", Type: "article"},
		},
	}
}

func TestParseBlueprintRoundTrip(t *testing.T) {
	want := samplePayload()
	raw, err := json.Marshal(want)
	require.NoError(t, err)

	got, err := ParseBlueprint(string(raw))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestParseBlueprintFencedWithProse(t *testing.T) {
	want := samplePayload()
	raw, err := json.Marshal(want)
	require.NoError(t, err)

	wrapped := "Here is the blueprint you asked for:\n```json\n" + string(raw) + "\n```\nLet me know if you want changes."

	got, err := ParseBlueprint(wrapped)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestParseBlueprintRepairFallback(t *testing.T) {
	valid := `{"overview": {"summary": "Walk daily", "mistakes": [], "guidance": []}}`
	withTrailingComma := `{"overview": {"summary": "Walk daily", "mistakes": [], "guidance": [],}}`

	wantPayload, err := ParseBlueprint(valid)
	require.NoError(t, err)

	got, err := ParseBlueprint(withTrailingComma)
	require.NoError(t, err)
	assert.Equal(t, wantPayload, got)
}

func TestParseBlueprintOverviewRequired(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"No overview", `{"daily_habits": [{"id": "h1", "title": "Walk"}]}`},
		{"Overview without summary", `{"overview": {"mistakes": ["x"]}}`},
		{"Whitespace summary", `{"overview": {"summary": "   "}}`},
		{"Not JSON at all", `I'm sorry, I can't produce a plan for that.`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := ParseBlueprint(tt.raw)
			assert.Nil(t, payload)

			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.NotEmpty(t, pe.Raw)
			assert.LessOrEqual(t, len(pe.Raw), 500)
			assert.LessOrEqual(t, len(pe.Sanitized), 500)
		})
	}
}

func TestParseBlueprintDefaultsOptionalSections(t *testing.T) {
	got, err := ParseBlueprint(`{"overview": {"summary": "Just the summary"}}`)
	require.NoError(t, err)

	assert.Equal(t, "Just the summary", got.Overview.Summary)
	assert.Equal(t, []string{}, got.Overview.Mistakes)
	assert.Equal(t, []string{}, got.Overview.Guidance)
	assert.Nil(t, got.SequentialSteps)
	assert.Nil(t, got.DailyHabits)
	assert.Nil(t, got.TriggerActions)
	assert.Nil(t, got.DecisionChecklist)
	assert.Nil(t, got.Resources)
}

func TestParseBlueprintEmptySectionsDropped(t *testing.T) {
	raw := `{
		"overview": {"summary": "ok"},
		"sequential_steps": [],
		"daily_habits": [],
		"resources": []
	}`

	got, err := ParseBlueprint(raw)
	require.NoError(t, err)
	assert.Nil(t, got.SequentialSteps)
	assert.Nil(t, got.DailyHabits)
	assert.Nil(t, got.Resources)
}

func TestParseBlueprintLegacyHabitsMapping(t *testing.T) {
	raw := `{
		"overview": {"summary": "ok"},
		"habits": [
			{"id": "keep-me", "title": "Meditate", "description": "5 minutes", "timeframe": "morning"},
			{"title": "Journal"},
			{}
		]
	}`

	got, err := ParseBlueprint(raw)
	require.NoError(t, err)
	require.Len(t, got.DailyHabits, 3)

	assert.Equal(t, types.DailyHabit{
		ID: "keep-me", Title: "Meditate", Description: "5 minutes", Timeframe: "morning",
	}, got.DailyHabits[0])
	assert.Equal(t, types.DailyHabit{
		ID: "habit-2", Title: "Journal", Timeframe: "daily",
	}, got.DailyHabits[1])
	assert.Equal(t, types.DailyHabit{
		ID: "habit-3", Title: "Habit 3", Timeframe: "daily",
	}, got.DailyHabits[2])
}

func TestParseBlueprintLegacyHabitsIgnoredWhenDailyHabitsPresent(t *testing.T) {
	raw := `{
		"overview": {"summary": "ok"},
		"daily_habits": [{"id": "h1", "title": "Walk"}],
		"habits": [{"id": "legacy", "title": "Old"}]
	}`

	got, err := ParseBlueprint(raw)
	require.NoError(t, err)
	require.Len(t, got.DailyHabits, 1)
	assert.Equal(t, "h1", got.DailyHabits[0].ID)
}

func TestParseErrorSnippetsTruncated(t *testing.T) {
	long := "not json " + string(make([]byte, 2000))
	_, err := ParseBlueprint(long)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Len(t, pe.Raw, 500)
}
