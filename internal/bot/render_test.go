package bot

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"life-goals/internal/api"
	"life-goals/internal/calendar"
	"life-goals/internal/heatmap"
	"life-goals/internal/model"
	"life-goals/internal/service"
	"life-goals/internal/timeline"
)

func TestProgressBar(t *testing.T) {
	tests := []struct {
		percent, width int
		want           string
	}{
		{50, 10, "█████░░░░░"},
		{0, 4, "░░░░"},
		{-5, 4, "░░░░"},
		{150, 4, "████"},
		{33, 10, "███░░░░░░░"},
	}
	for _, tt := range tests {
		if got := ProgressBar(tt.percent, tt.width); got != tt.want {
			t.Errorf("ProgressBar(%d, %d) = %q, want %q", tt.percent, tt.width, got, tt.want)
		}
	}
}

func TestRenderMonth(t *testing.T) {
	habits := []model.Habit{{ID: 1, Title: "Read", CompletedDates: []string{"2024-02-01"}}}
	cells := calendar.BuildMonthGrid(2024, time.February, habits, time.UTC)
	out := RenderMonth(2024, time.February, cells)

	lines := strings.Split(out, "\n")
	if lines[0] != "February 2024" {
		t.Errorf("title = %q", lines[0])
	}
	if lines[2] != "28  29  30  31   1●  2○  3○" {
		t.Errorf("first week = %q", lines[2])
	}
	if !strings.HasSuffix(out, "● all  ◐ some  ○ none") {
		t.Errorf("missing legend:\n%s", out)
	}
}

func TestRenderHeatmapEmptyYear(t *testing.T) {
	out := RenderHeatmap(heatmap.Aggregate(nil, 2024, time.UTC), heatmap.ModeGoals)
	for _, want := range []string{"2024 · goals", "Sun ", "Sat ", "Best day:        -", "Current streak:  0 d"} {
		if !strings.Contains(out, want) {
			t.Errorf("heatmap missing %q:\n%s", want, out)
		}
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "Wed ") && strings.ContainsAny(line, "░▒▓█") {
			t.Errorf("empty year should have no active cells: %q", line)
		}
	}
}

func TestRenderWeekMarksToday(t *testing.T) {
	today := time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)
	goals := []model.Goal{{ID: 1, Title: "Ship", StartDate: "2024-03-05", EndDate: "2024-03-06",
		Tasks: []model.Task{{Completed: true}, {}}}}
	out := RenderWeek(calendar.PlanWeek(goals, today), today)

	if !strings.HasPrefix(out, "Week of 04 Mar 2024") {
		t.Errorf("header:\n%s", out)
	}
	if !strings.Contains(out, "▶ Wed 06 Mar\n   • Ship (50%)") {
		t.Errorf("today not marked:\n%s", out)
	}
	if strings.Count(out, "Ship") != 2 {
		t.Errorf("goal should appear on two days:\n%s", out)
	}
}

func TestRenderTimeline(t *testing.T) {
	goals := []model.Goal{
		{ID: 1, Title: "Run", StartDate: "2024-06-01", EndDate: "2024-06-20",
			Tasks: []model.Task{{Title: "5k", Completed: true}, {Title: "10k"}}},
		{ID: 2, Title: "Read", StartDate: "2024-06-15", Tasks: []model.Task{{Title: "Ch 1", Completed: true}}},
		{ID: 3, Title: "Someday"},
	}
	out := RenderTimeline(timeline.Build(goals, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)))

	for _, want := range []string{
		"30 May 2024 → 24 Jun 2024 (25 d)",
		"  " + strings.Repeat(" ", 12) + "▼ today",
		"Active (2)",
		"Completed (1)",
		"  ··███████████░░░░░░░░░░░····\n",
		"  ░░░░░░░░" + strings.Repeat("·", 20) + "\n",
		"01 Jun → 20 Jun · 50% · 1/2 tasks\n",
		"30 May → 06 Jun · 0% · 0/0 tasks · after Run",
		"15 Jun → 22 Jun · 100% · 1/1 tasks · after Someday",
		"✅⬜",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}

	if empty := RenderTimeline(timeline.Build(nil, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC))); !strings.Contains(empty, "No goals yet.") {
		t.Errorf("empty timeline = %q", empty)
	}
}

func TestRenderProfile(t *testing.T) {
	p := model.Profile{Username: "ann<3", Bio: "runner", Theme: "dark"}
	out := RenderProfile(p, service.Analytics{TotalGoals: 2, CompletedGoals: 1, TotalTasks: 4, CompletedTasks: 3}, 5)
	for _, want := range []string{"<b>ann&lt;3</b>", "<i>runner</i>", "Goals: 2 (1 completed)", "Tasks: 3/4 done", "Habits: 5", "Theme: dark"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(RenderProfile(model.Profile{Username: "ann"}, service.Analytics{}, 0), "<i>") {
		t.Error("empty bio rendered")
	}
}

func TestRenderGoalListEscapes(t *testing.T) {
	today := time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)
	goals := []model.Goal{
		{ID: 3, Title: "Save <more>", Priority: model.PriorityHigh, Category: model.CategoryFinance, EndDate: "2024-03-04",
			Tasks: []model.Task{{}}},
		{ID: 4, Title: "Done", Tasks: []model.Task{{Completed: true}}},
	}
	out := RenderGoalList(goals, service.GoalFilter{Category: model.CategoryFinance}, today)
	for _, want := range []string{"Save &lt;more&gt;", "2 d overdue", "<b>Completed</b>", "🏆 #4 Done", "<i>Finance</i>"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q:\n%s", want, out)
		}
	}
	if got := RenderGoalList(nil, service.GoalFilter{}, today); !strings.Contains(got, "No goals match.") {
		t.Errorf("empty list = %q", got)
	}
}

func TestPlainText(t *testing.T) {
	if got := PlainText("<b>Goals</b> &lt;id&gt; <pre>a &amp; b</pre>"); got != "Goals <id> a & b" {
		t.Errorf("PlainText = %q", got)
	}
}

func TestShortTitle(t *testing.T) {
	if got := shortTitle("Прочитать книгу", 8); got != "Прочита…" {
		t.Errorf("shortTitle = %q", got)
	}
	if got := shortTitle("  Run ", 8); got != "Run" {
		t.Errorf("shortTitle = %q", got)
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("load: %w", service.ErrNotLinked), "/login"},
		{fmt.Errorf("toggle task: %w", &api.Error{Status: 401}), "session has expired"},
		{service.ErrGoalNotFound, "Goal not found"},
		{service.ErrHabitNotFound, "Habit not found"},
	}
	for _, tt := range tests {
		if got := userMessage(tt.err); !strings.Contains(got, tt.want) {
			t.Errorf("userMessage(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
	if got := userMessage(errors.New("connection refused")); got != "" {
		t.Errorf("unexpected message for backend failure: %q", got)
	}
}
