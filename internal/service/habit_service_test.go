package service

import (
	"strings"
	"testing"
	"time"

	"life-goals/internal/model"
)

func TestHabitStreak(t *testing.T) {
	tests := []struct {
		name  string
		dates []string
		want  int
	}{
		{"none", nil, 0},
		{"single", []string{"2024-03-01"}, 1},
		{"run", []string{"2024-03-01", "2024-03-02", "2024-03-03"}, 3},
		{"unsorted with duplicates", []string{"2024-03-03", "2024-03-01", "2024-03-02", "2024-03-03"}, 3},
		{"latest run only", []string{"2024-03-01", "2024-03-02", "2024-03-05", "2024-03-06"}, 2},
		{"across month end", []string{"2024-02-28", "2024-02-29", "2024-03-01"}, 3},
		{"malformed ignored", []string{"2024-03-01", "garbage", "2024-03-02"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HabitStreak(tt.dates); got != tt.want {
				t.Errorf("HabitStreak = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTodayProgressAndSplit(t *testing.T) {
	today := time.Date(2024, 3, 5, 0, 15, 0, 0, time.Local)
	habits := []model.Habit{
		{ID: 1, GoalID: 1, CompletedDates: []string{"2024-03-05"}},
		{ID: 2, GoalID: 1, CompletedDates: []string{"2024-03-04"}},
		{ID: 3, GoalID: 2},
	}
	done, percent := TodayProgress(habits, today)
	if done != 1 || percent != 33 {
		t.Errorf("TodayProgress = %d, %d%%", done, percent)
	}
	if _, p := TodayProgress(nil, today); p != 0 {
		t.Errorf("empty percent = %d", p)
	}

	open, closed := SplitByToday(habits, today)
	if len(open) != 2 || len(closed) != 1 || closed[0].ID != 1 {
		t.Errorf("open=%v closed=%v", open, closed)
	}

	if got := FilterHabitsByGoal(habits, 1); len(got) != 2 {
		t.Errorf("FilterHabitsByGoal(1) = %d habits", len(got))
	}
	if got := FilterHabitsByGoal(habits, 0); len(got) != 3 {
		t.Errorf("FilterHabitsByGoal(0) = %d habits", len(got))
	}
}

func TestLastSevenDays(t *testing.T) {
	// Wednesday
	today := time.Date(2024, 3, 6, 12, 0, 0, 0, time.Local)
	marks := LastSevenDays(today)
	if len(marks) != 7 {
		t.Fatalf("len = %d", len(marks))
	}
	if marks[0].Key != "2024-02-29" || marks[0].Label != "T" {
		t.Errorf("first = %+v", marks[0])
	}
	if marks[6].Key != "2024-03-06" || marks[6].Label != "W" {
		t.Errorf("last = %+v", marks[6])
	}
	var labels []string
	for _, m := range marks {
		labels = append(labels, m.Label)
	}
	if got := strings.Join(labels, ""); got != "TFSSMTW" {
		t.Errorf("labels = %s", got)
	}
}

func TestHabitIcon(t *testing.T) {
	tests := map[string]string{
		"Read 20 pages":  "📘",
		"Morning WALK":   "🏃",
		"Meditation":     "🧘",
		"Drink water":    "💧",
		"Write journal":  "✅",
		"Code katas":     "💻",
		"Sleep by 11pm":  "😴",
		"Learn Japanese": "📚",
	}
	for title, want := range tests {
		if got := HabitIcon(title); got != want {
			t.Errorf("HabitIcon(%q) = %s, want %s", title, got, want)
		}
	}
}
