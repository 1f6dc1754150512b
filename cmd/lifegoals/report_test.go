package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"life-goals/internal/api"
	"life-goals/internal/heatmap"
	"life-goals/internal/model"
	"life-goals/internal/store"
)

func newBackend(t *testing.T) *api.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/token/":
			io.WriteString(w, `{"access":"tok","refresh":"ref"}`)
			return
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/api/goals/":
			io.WriteString(w, `[{"id":1,"title":"Learn Go","category":"Education","priority":"High",
				"start_date":"2024-03-01","end_date":"2024-03-07",
				"tasks":[{"id":3,"goal":1,"title":"Tour","completed":true,"completed_at":"2024-03-02T08:00:00Z"}]}]`)
		case "/api/habits/":
			io.WriteString(w, `[{"id":2,"title":"Read","goal":1,"completed_dates":["2024-03-01","2024-03-02"]}]`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return api.New(srv.URL+"/api", 5*time.Second)
}

func TestFetchSnapshot(t *testing.T) {
	client := newBackend(t)
	ctx := context.Background()

	snap, err := fetchSnapshot(ctx, client, "ann", "pw", "")
	if err != nil {
		t.Fatalf("with credentials: %v", err)
	}
	if len(snap.Goals) != 1 || len(snap.Habits) != 1 {
		t.Errorf("snapshot = %+v", snap)
	}

	if _, err := fetchSnapshot(ctx, client, "", "", "tok"); err != nil {
		t.Errorf("with token: %v", err)
	}
	if _, err := fetchSnapshot(ctx, client, "", "", ""); err == nil || !strings.Contains(err.Error(), AccessTokenEnv) {
		t.Errorf("no auth err = %v", err)
	}
	if _, err := fetchSnapshot(ctx, client, "", "", "stale"); err == nil {
		t.Error("stale token should fail")
	}
}

func testEnv() reportEnv {
	today := time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)
	done := time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC)
	return reportEnv{
		snap: store.Snapshot{
			Goals: []model.Goal{{ID: 1, Title: "Learn Go", Category: model.CategoryEducation, Priority: model.PriorityHigh,
				StartDate: "2024-03-01", EndDate: "2024-03-07",
				Tasks: []model.Task{{ID: 3, Title: "Tour", Completed: true, CompletedAt: &done}, {ID: 4, Title: "Book"}}}},
			Habits: []model.Habit{{ID: 2, Title: "Read", GoalID: 1, CompletedDates: []string{"2024-03-01", "2024-03-02"}}},
		},
		loc:   time.UTC,
		today: today,
	}
}

func TestWriteReports(t *testing.T) {
	env := testEnv()
	tests := []struct {
		name  string
		write func(io.Writer) error
		want  []string
	}{
		{
			name:  "calendar",
			write: func(w io.Writer) error { return writeCalendar(w, env, 2024, time.March) },
			want:  []string{"March 2024", " 1●", " 2●", " 3○"},
		},
		{
			name:  "heatmap",
			write: func(w io.Writer) error { return writeHeatmap(w, env, 2024, heatmap.ModeCompletions) },
			want:  []string{"2024 · completions", "Tasks completed: 1", "Best day:        2024-03-02 (1)"},
		},
		{
			name:  "week",
			write: func(w io.Writer) error { return writeWeek(w, env, env.today) },
			want:  []string{"Week of 04 Mar 2024", "▶ Wed 06 Mar", "• Learn Go (50%)"},
		},
		{
			name:  "timeline",
			write: func(w io.Writer) error { return writeTimeline(w, env) },
			want:  []string{"Goal timeline", "28 Feb 2024 → 09 Mar 2024 (10 d)", "Active (1)", "• Learn Go", "01 Mar → 07 Mar · 50% · 1/2 tasks"},
		},
		{
			name:  "notify",
			write: writeNotifyFor(env),
			want:  []string{"Notifications", "Due soon", "Learn Go (Education) 50%"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := tt.write(&buf); err != nil {
				t.Fatalf("write: %v", err)
			}
			out := buf.String()
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("missing %q in:\n%s", want, out)
				}
			}
			if strings.Contains(out, "<b>") {
				t.Errorf("markup left in output:\n%s", out)
			}
		})
	}
}

func writeNotifyFor(env reportEnv) func(io.Writer) error {
	return func(w io.Writer) error { return writeNotify(w, env) }
}
