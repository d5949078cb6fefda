// Package types defines the shared domain types for habit blueprints.
package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BlueprintStatus is the lifecycle state of a blueprint record.
type BlueprintStatus string

// Blueprint lifecycle states. A record is created pending and transitions to
// completed or failed exactly once, by the retry processor.
const (
	StatusPending   BlueprintStatus = "pending"
	StatusCompleted BlueprintStatus = "completed"
	StatusFailed    BlueprintStatus = "failed"
)

// ContentType identifies where the source material came from.
type ContentType string

// Supported content sources.
const (
	ContentYouTube ContentType = "youtube"
	ContentText    ContentType = "text"
)

// TextSourceMarker is stored as the content source for raw-text submissions,
// where there is no URL to record.
const TextSourceMarker = "text:inline"

// Blueprint is a user-submitted content-to-plan request.
type Blueprint struct {
	ID            uuid.UUID         `json:"id"`
	UserID        uuid.UUID         `json:"user_id"`
	Goal          string            `json:"goal"`
	ContentSource string            `json:"content_source"`
	ContentType   ContentType       `json:"content_type"`
	Status        BlueprintStatus   `json:"status"`
	AIOutput      *BlueprintPayload `json:"ai_output,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

// BlueprintPayload is the parsed structured plan produced by the model.
// Overview is always present; the section slices are set only when the model
// returned them non-empty.
type BlueprintPayload struct {
	Overview          Overview         `json:"overview"`
	SequentialSteps   []SequentialStep `json:"sequential_steps,omitempty"`
	DailyHabits       []DailyHabit     `json:"daily_habits,omitempty"`
	TriggerActions    []TriggerAction  `json:"trigger_actions,omitempty"`
	DecisionChecklist []ChecklistItem  `json:"decision_checklist,omitempty"`
	Resources         []Resource       `json:"resources,omitempty"`
}

// Overview summarizes the plan. Mistakes and Guidance default to empty
// slices rather than nil so the stored JSON always carries both arrays.
type Overview struct {
	Summary  string   `json:"summary"`
	Mistakes []string `json:"mistakes"`
	Guidance []string `json:"guidance"`
}

// SequentialStep is one ordered step of the plan.
type SequentialStep struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Timeframe   string `json:"timeframe,omitempty"`
}

// DailyHabit is a recurring habit to track.
type DailyHabit struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Timeframe   string `json:"timeframe,omitempty"`
}

// TriggerAction is an if-this-then-that style cue/response pair.
type TriggerAction struct {
	ID      string `json:"id,omitempty"`
	Trigger string `json:"trigger"`
	Action  string `json:"action"`
}

// ChecklistItem is one question in the decision checklist.
type ChecklistItem struct {
	ID       string `json:"id,omitempty"`
	Question string `json:"question"`
	Context  string `json:"context,omitempty"`
}

// Resource points to supporting material referenced by the plan.
type Resource struct {
	Title string `json:"title"`
	URL   string `json:"url,omitempty"`
	Type  string `json:"type,omitempty"`
}

// LegacyHabit is the pre-rename habit shape some older model prompts still
// emit under a top-level "habits" key. It is mapped into DailyHabit entries
// during parsing and never stored.
type LegacyHabit struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Timeframe   string `json:"timeframe,omitempty"`
}

// DailyHabit converts a legacy habit entry, defaulting missing fields from
// its position in the legacy array.
func (h LegacyHabit) DailyHabit(index int) DailyHabit {
	out := DailyHabit{
		ID:          h.ID,
		Title:       h.Title,
		Description: h.Description,
		Timeframe:   h.Timeframe,
	}
	if out.ID == "" {
		out.ID = fmt.Sprintf("habit-%d", index+1)
	}
	if out.Title == "" {
		out.Title = fmt.Sprintf("Habit %d", index+1)
	}
	if out.Timeframe == "" {
		out.Timeframe = "daily"
	}
	return out
}

// ValidContentType reports whether s is a recognized content type.
func ValidContentType(s string) bool {
	switch ContentType(s) {
	case ContentYouTube, ContentText:
		return true
	}
	return false
}
