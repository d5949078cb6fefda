package parsing

import (
	"encoding/json"
	"strings"

	"github.com/calebstern/habitforge/internal/schemas"
	"github.com/calebstern/habitforge/internal/types"
)

// rawPayload mirrors the model's output shape before normalization, including
// the legacy top-level habits array.
type rawPayload struct {
	Overview          *types.Overview        `json:"overview"`
	SequentialSteps   []types.SequentialStep `json:"sequential_steps"`
	DailyHabits       []types.DailyHabit     `json:"daily_habits"`
	TriggerActions    []types.TriggerAction  `json:"trigger_actions"`
	DecisionChecklist []types.ChecklistItem  `json:"decision_checklist"`
	Resources         []types.Resource       `json:"resources"`
	Habits            []types.LegacyHabit    `json:"habits"`
}

// ParseBlueprint extracts a typed blueprint payload from raw model text.
// It sanitizes code-fence wrapping and surrounding prose, attempts a strict
// JSON parse with a lenient repair fallback, validates the required overview
// section, and normalizes the result. Pure function of its input.
func ParseBlueprint(raw string) (*types.BlueprintPayload, error) {
	sanitized := ExtractJSONBlock(raw)

	jsonText := sanitized
	var rp rawPayload
	if err := json.Unmarshal([]byte(jsonText), &rp); err != nil {
		repaired := Repair(sanitized)
		rp = rawPayload{}
		if repairErr := json.Unmarshal([]byte(repaired), &rp); repairErr != nil {
			return nil, newParseError("response is not valid JSON", raw, sanitized, err)
		}
		jsonText = repaired
	}

	if err := schemas.ValidateBlueprintPayload(jsonText); err != nil {
		return nil, newParseError("response is missing required overview section", raw, sanitized, err)
	}
	if rp.Overview == nil || strings.TrimSpace(rp.Overview.Summary) == "" {
		return nil, newParseError("response is missing required overview.summary", raw, sanitized, nil)
	}

	return normalize(&rp), nil
}

// normalize builds the typed payload: overview arrays default to empty,
// optional sections are copied only when non-empty, and legacy habits map
// into daily_habits when that section was not populated.
func normalize(rp *rawPayload) *types.BlueprintPayload {
	payload := &types.BlueprintPayload{Overview: *rp.Overview}

	if payload.Overview.Mistakes == nil {
		payload.Overview.Mistakes = []string{}
	}
	if payload.Overview.Guidance == nil {
		payload.Overview.Guidance = []string{}
	}

	if len(rp.SequentialSteps) > 0 {
		payload.SequentialSteps = rp.SequentialSteps
	}
	if len(rp.DailyHabits) > 0 {
		payload.DailyHabits = rp.DailyHabits
	}
	if len(rp.TriggerActions) > 0 {
		payload.TriggerActions = rp.TriggerActions
	}
	if len(rp.DecisionChecklist) > 0 {
		payload.DecisionChecklist = rp.DecisionChecklist
	}
	if len(rp.Resources) > 0 {
		payload.Resources = rp.Resources
	}

	if len(payload.DailyHabits) == 0 && len(rp.Habits) > 0 {
		habits := make([]types.DailyHabit, len(rp.Habits))
		for i, h := range rp.Habits {
			habits[i] = h.DailyHabit(i)
		}
		payload.DailyHabits = habits
	}

	return payload
}
