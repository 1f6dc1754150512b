package timeline

import (
	"testing"
	"time"

	"life-goals/internal/dates"
	"life-goals/internal/model"
)

func day(s string) time.Time {
	d, err := dates.ParseKey(s, time.UTC)
	if err != nil {
		panic(err)
	}
	return d
}

func TestBuildEmpty(t *testing.T) {
	today := time.Date(2024, 6, 10, 15, 30, 0, 0, time.UTC)
	tl := Build(nil, today)
	if !tl.Start.Equal(day("2024-06-10")) || !tl.End.Equal(day("2024-07-10")) {
		t.Errorf("range = %s..%s", dates.Key(tl.Start), dates.Key(tl.End))
	}
	if tl.Days != 30 || tl.TodayOffset != 0 {
		t.Errorf("Days = %d, TodayOffset = %d", tl.Days, tl.TodayOffset)
	}
	if len(tl.Active)+len(tl.Completed) != 0 {
		t.Errorf("rows = %+v %+v", tl.Active, tl.Completed)
	}
}

func TestBuild(t *testing.T) {
	goals := []model.Goal{
		{ID: 1, Title: "Run", StartDate: "2024-06-01", EndDate: "2024-06-20",
			Tasks: []model.Task{{Title: "5k", Completed: true}, {Title: "10k"}}},
		{ID: 2, Title: "Read", StartDate: "2024-06-15",
			Tasks: []model.Task{{Title: "Ch 1", Completed: true}}},
		{ID: 3, Title: "Someday"},
	}
	tl := Build(goals, time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC))

	if dates.Key(tl.Start) != "2024-05-30" || dates.Key(tl.End) != "2024-06-24" {
		t.Errorf("range = %s..%s, want 2024-05-30..2024-06-24", dates.Key(tl.Start), dates.Key(tl.End))
	}
	if tl.Days != 25 || tl.TodayOffset != 11 {
		t.Errorf("Days = %d, TodayOffset = %d, want 25, 11", tl.Days, tl.TodayOffset)
	}

	if len(tl.Active) != 2 || len(tl.Completed) != 1 {
		t.Fatalf("active %d, completed %d, want 2, 1", len(tl.Active), len(tl.Completed))
	}

	tests := []struct {
		name      string
		bar       Bar
		id        uint
		offset    int
		length    int
		progress  int
		dependsOn uint
	}{
		{"dated goal", tl.Active[0], 1, 2, 20, 50, 0},
		{"undated goal sits at the axis start", tl.Active[1], 3, 0, 8, 0, 1},
		{"open ended goal runs a week", tl.Completed[0], 2, 16, 8, 100, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := tt.bar
			if b.Goal.ID != tt.id {
				t.Fatalf("goal = %d, want %d", b.Goal.ID, tt.id)
			}
			if b.Offset != tt.offset || b.Length != tt.length {
				t.Errorf("offset/length = %d/%d, want %d/%d", b.Offset, b.Length, tt.offset, tt.length)
			}
			if b.Progress != tt.progress {
				t.Errorf("Progress = %d, want %d", b.Progress, tt.progress)
			}
			var dep uint
			if b.DependsOn != nil {
				dep = b.DependsOn.ID
			}
			if dep != tt.dependsOn {
				t.Errorf("DependsOn = %d, want %d", dep, tt.dependsOn)
			}
		})
	}

	run := tl.Active[0]
	if run.DoneTasks != 1 || run.TotalTasks != 2 || len(run.Milestones) != 2 {
		t.Fatalf("tasks = %d/%d, milestones %+v", run.DoneTasks, run.TotalTasks, run.Milestones)
	}
	if m := run.Milestones[0]; !m.Completed || m.Title != "5k" || m.Position != 1.0/3 {
		t.Errorf("first milestone = %+v", m)
	}
	if m := run.Milestones[1]; m.Completed || m.Position != 2.0/3 {
		t.Errorf("second milestone = %+v", m)
	}
}

func TestBuildEdgeCases(t *testing.T) {
	today := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name        string
		goals       []model.Goal
		days        int
		todayOffset int
		length      int
	}{
		{
			name:        "today outside the range",
			goals:       []model.Goal{{ID: 1, StartDate: "2023-01-01", EndDate: "2023-01-05"}},
			days:        8,
			todayOffset: -1,
			length:      5,
		},
		{
			name:        "malformed dates count as missing",
			goals:       []model.Goal{{ID: 1, StartDate: "soon", EndDate: "later"}},
			days:        11,
			todayOffset: 2,
			length:      8,
		},
		{
			name:        "end before start keeps one day",
			goals:       []model.Goal{{ID: 1, StartDate: "2024-06-10", EndDate: "2024-06-08"}},
			days:        2,
			todayOffset: 2,
			length:      1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tl := Build(tt.goals, today)
			if tl.Days != tt.days || tl.TodayOffset != tt.todayOffset {
				t.Errorf("Days = %d, TodayOffset = %d, want %d, %d", tl.Days, tl.TodayOffset, tt.days, tt.todayOffset)
			}
			if len(tl.Active) != 1 {
				t.Fatalf("active = %+v", tl.Active)
			}
			if tl.Active[0].Length != tt.length {
				t.Errorf("Length = %d, want %d", tl.Active[0].Length, tt.length)
			}
		})
	}
}
