package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLegacyHabitDailyHabit(t *testing.T) {
	tests := []struct {
		name  string
		habit LegacyHabit
		index int
		want  DailyHabit
	}{
		{
			name: "All fields present",
			habit: LegacyHabit{
				ID:          "custom-id",
				Title:       "Morning pages",
				Description: "Write three pages",
				Timeframe:   "morning",
			},
			index: 0,
			want: DailyHabit{
				ID:          "custom-id",
				Title:       "Morning pages",
				Description: "Write three pages",
				Timeframe:   "morning",
			},
		},
		{
			name:  "Empty entry gets positional defaults",
			habit: LegacyHabit{},
			index: 2,
			want: DailyHabit{
				ID:        "habit-3",
				Title:     "Habit 3",
				Timeframe: "daily",
			},
		},
		{
			name:  "Partial entry keeps what it has",
			habit: LegacyHabit{Title: "Stretch"},
			index: 0,
			want: DailyHabit{
				ID:        "habit-1",
				Title:     "Stretch",
				Timeframe: "daily",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.habit.DailyHabit(tt.index))
		})
	}
}

func TestValidContentType(t *testing.T) {
	assert.True(t, ValidContentType("youtube"))
	assert.True(t, ValidContentType("text"))
	assert.False(t, ValidContentType("article"))
	assert.False(t, ValidContentType(""))
}
