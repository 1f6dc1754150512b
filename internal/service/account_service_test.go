package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"life-goals/internal/api"
	"life-goals/internal/model"
	"life-goals/internal/repository"
	"life-goals/internal/store"
)

// fakeBackend serves a tiny in-memory goal API. Access tokens issued
// before a call to expire() are rejected with 401.
type fakeBackend struct {
	mu       sync.Mutex
	goals    []model.Goal
	habits   []model.Habit
	profile  model.Profile
	valid    string
	issued   int
	renewals int
}

func (b *fakeBackend) expire() {
	b.mu.Lock()
	b.valid = "rotated"
	b.mu.Unlock()
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/api")
	writeJSON := func(v any) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(v)
	}

	switch path {
	case "/token/":
		b.issued++
		b.valid = "access-1"
		writeJSON(map[string]string{"access": b.valid, "refresh": "refresh-1"})
		return
	case "/token/refresh/":
		b.renewals++
		b.valid = "access-2"
		writeJSON(map[string]string{"access": b.valid})
		return
	}

	if r.Header.Get("Authorization") != "Bearer "+b.valid {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	switch {
	case path == "/goals/" && r.Method == http.MethodGet:
		writeJSON(b.goals)
	case path == "/habits/" && r.Method == http.MethodGet:
		writeJSON(b.habits)
	case path == "/tasks/" && r.Method == http.MethodPost:
		var in struct {
			Goal  uint   `json:"goal"`
			Title string `json:"title"`
		}
		json.NewDecoder(r.Body).Decode(&in)
		for i := range b.goals {
			if b.goals[i].ID == in.Goal {
				task := model.Task{ID: uint(100 + len(b.goals[i].Tasks)), GoalID: in.Goal, Title: in.Title}
				b.goals[i].Tasks = append(b.goals[i].Tasks, task)
				writeJSON(task)
				return
			}
		}
		w.WriteHeader(http.StatusBadRequest)
	case strings.HasPrefix(path, "/tasks/") && r.Method == http.MethodPatch:
		var in struct {
			Completed bool `json:"completed"`
		}
		json.NewDecoder(r.Body).Decode(&in)
		for gi := range b.goals {
			for ti := range b.goals[gi].Tasks {
				task := &b.goals[gi].Tasks[ti]
				if path == "/tasks/"+itoa(task.ID)+"/" {
					task.Completed = in.Completed
					if in.Completed {
						now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
						task.CompletedAt = &now
					} else {
						task.CompletedAt = nil
					}
					writeJSON(task)
					return
				}
			}
		}
		w.WriteHeader(http.StatusNotFound)
	case strings.HasSuffix(path, "/reorder/") && r.Method == http.MethodPatch:
		var in struct {
			Order int `json:"order"`
		}
		json.NewDecoder(r.Body).Decode(&in)
		for i := range b.goals {
			if path == "/goals/"+itoa(b.goals[i].ID)+"/reorder/" {
				b.goals[i].Order = in.Order
				writeJSON(map[string]string{"status": "ok"})
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	case strings.HasPrefix(path, "/goals/") && r.Method == http.MethodPatch:
		var in api.GoalInput
		json.NewDecoder(r.Body).Decode(&in)
		for i := range b.goals {
			g := &b.goals[i]
			if path == "/goals/"+itoa(g.ID)+"/" {
				g.Title, g.Description = in.Title, in.Description
				g.Category, g.Priority = in.Category, in.Priority
				g.StartDate, g.EndDate = in.StartDate, in.EndDate
				writeJSON(g)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	case path == "/profile/" && r.Method == http.MethodGet:
		writeJSON(b.profile)
	case path == "/profile/"+itoa(b.profile.ID)+"/" && r.Method == http.MethodPatch:
		var in struct {
			Bio string `json:"bio"`
		}
		json.NewDecoder(r.Body).Decode(&in)
		b.profile.Bio = in.Bio
		writeJSON(b.profile)
	case strings.HasSuffix(path, "/toggle/"):
		for i := range b.habits {
			if path == "/habits/"+itoa(b.habits[i].ID)+"/toggle/" {
				b.habits[i].CompletedDates = append(b.habits[i].CompletedDates, "2024-06-01")
				writeJSON(map[string]any{"status": "checked", "habit": b.habits[i]})
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func itoa(n uint) string {
	b, _ := json.Marshal(n)
	return string(b)
}

type fixture struct {
	backend  *fakeBackend
	users    *repository.UserRepository
	records  *repository.RecordRepository
	store    *store.Store
	accounts *AccountService
	user     *model.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	backend := &fakeBackend{
		goals: []model.Goal{
			{ID: 1, Title: "Run a 10k", Category: model.CategoryHealth, Priority: model.PriorityHigh,
				Tasks: []model.Task{{ID: 11, GoalID: 1, Title: "5k"}, {ID: 12, GoalID: 1, Title: "8k"}}},
		},
		habits:  []model.Habit{{ID: 5, Title: "Stretch", GoalID: 1}},
		profile: model.Profile{ID: 3, Username: "ann", Theme: "light"},
	}
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	db, err := repository.Open(filepath.Join(t.TempDir(), "bot.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { repository.Close(db) })

	users := repository.NewUserRepository(db)
	st := store.New()
	f := &fixture{
		backend:  backend,
		users:    users,
		records:  repository.NewRecordRepository(db),
		store:    st,
		accounts: NewAccountService(users, api.New(srv.URL+"/api", 5*time.Second), st),
	}
	f.user, err = users.Touch(context.Background(), 1001, "Ann", "", "ann")
	if err != nil {
		t.Fatalf("touch: %v", err)
	}
	return f
}

func (f *fixture) login(t *testing.T) {
	t.Helper()
	if err := f.accounts.Login(context.Background(), f.user, "ann", "pw"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	user, err := f.users.FindByTelegramID(context.Background(), 1001)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	f.user = user
}

func TestNotLinked(t *testing.T) {
	f := newFixture(t)
	if _, err := f.accounts.Snapshot(context.Background(), f.user); !errors.Is(err, ErrNotLinked) {
		t.Errorf("Snapshot err = %v, want ErrNotLinked", err)
	}
	goals := NewGoalService(f.accounts)
	if _, _, err := goals.ToggleTask(context.Background(), f.user, 11); !errors.Is(err, ErrNotLinked) {
		t.Errorf("ToggleTask err = %v, want ErrNotLinked", err)
	}
}

func TestLoginLoadsSnapshot(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	if !f.user.Linked() || f.user.BackendUsername != "ann" {
		t.Fatalf("user = %+v", f.user)
	}
	snap, ok := f.store.Get(f.user.ID)
	if !ok || len(snap.Goals) != 1 || len(snap.Habits) != 1 {
		t.Fatalf("snapshot = %+v, %v", snap, ok)
	}

	if err := f.accounts.Logout(context.Background(), f.user); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, ok := f.store.Get(f.user.ID); ok {
		t.Error("snapshot kept after logout")
	}
}

func TestToggleTaskRefreshesGoal(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	goals := NewGoalService(f.accounts)
	ctx := context.Background()

	task, goal, err := goals.ToggleTask(ctx, f.user, 11)
	if err != nil {
		t.Fatalf("ToggleTask: %v", err)
	}
	if !task.Completed || task.CompletedAt == nil {
		t.Errorf("task = %+v", task)
	}
	if Progress(goal) != 50 {
		t.Errorf("progress = %d, want 50", Progress(goal))
	}

	task, _, err = goals.ToggleTask(ctx, f.user, 11)
	if err != nil || task.Completed {
		t.Errorf("second toggle = %+v, %v", task, err)
	}

	if _, _, err := goals.ToggleTask(ctx, f.user, 999); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("unknown task err = %v", err)
	}
}

func TestAddTaskAndHabitToggle(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	ctx := context.Background()
	goals := NewGoalService(f.accounts)
	habits := NewHabitService(f.accounts)

	if _, err := goals.AddTask(ctx, f.user, 1, "  10k  "); err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	g, err := goals.Goal(ctx, f.user, 1)
	if err != nil || len(g.Tasks) != 3 || g.Tasks[2].Title != "10k" {
		t.Errorf("goal after add = %+v, %v", g, err)
	}
	if _, err := goals.AddTask(ctx, f.user, 42, "x"); !errors.Is(err, ErrGoalNotFound) {
		t.Errorf("AddTask unknown goal err = %v", err)
	}

	habit, checked, err := habits.Toggle(ctx, f.user, 5)
	if err != nil || !checked || !habit.DoneOn("2024-06-01") {
		t.Errorf("Toggle = %+v, %v, %v", habit, checked, err)
	}
	if _, _, err := habits.Toggle(ctx, f.user, 77); !errors.Is(err, ErrHabitNotFound) {
		t.Errorf("Toggle unknown habit err = %v", err)
	}
}

func TestExpiredTokenIsRenewed(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	f.backend.expire()

	if _, err := f.accounts.Refresh(context.Background(), f.user); err != nil {
		t.Fatalf("Refresh with expired token: %v", err)
	}
	if f.backend.renewals != 1 {
		t.Errorf("renewals = %d, want 1", f.backend.renewals)
	}
	stored, _ := f.users.FindByTelegramID(context.Background(), 1001)
	if stored.AccessToken != "access-2" {
		t.Errorf("stored access token = %q", stored.AccessToken)
	}
}

func TestUpdateAndReorderGoal(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	ctx := context.Background()
	goals := NewGoalService(f.accounts)

	current, err := goals.Goal(ctx, f.user, 1)
	if err != nil {
		t.Fatalf("Goal: %v", err)
	}
	in := GoalInputOf(current)
	in.EndDate = "2024-09-01"
	in.StartDate = "2024-10-01"
	if _, err := goals.UpdateGoal(ctx, f.user, 1, in); err == nil {
		t.Fatal("end before start should be rejected")
	}

	in.StartDate = "2024-06-01"
	if _, err := goals.UpdateGoal(ctx, f.user, 1, in); err != nil {
		t.Fatalf("UpdateGoal: %v", err)
	}
	updated, _ := goals.Goal(ctx, f.user, 1)
	if updated.EndDate != "2024-09-01" || updated.Title != "Run a 10k" || updated.Priority != model.PriorityHigh {
		t.Errorf("updated goal = %+v", updated)
	}

	if err := goals.ReorderGoal(ctx, f.user, 1, 3); err != nil {
		t.Fatalf("ReorderGoal: %v", err)
	}
	moved, _ := goals.Goal(ctx, f.user, 1)
	if moved.Order != 3 {
		t.Errorf("Order = %d, want 3", moved.Order)
	}
	if err := goals.ReorderGoal(ctx, f.user, 99, 0); !errors.Is(err, ErrGoalNotFound) {
		t.Errorf("missing goal err = %v", err)
	}
}

func TestProfileAndBio(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.accounts.Profile(ctx, f.user); !errors.Is(err, ErrNotLinked) {
		t.Errorf("Profile before login err = %v, want ErrNotLinked", err)
	}

	f.login(t)
	p, err := f.accounts.Profile(ctx, f.user)
	if err != nil || p.Username != "ann" || p.Bio != "" {
		t.Fatalf("Profile = %+v, %v", p, err)
	}

	p, err = f.accounts.SetBio(ctx, f.user, "  runs every morning ")
	if err != nil {
		t.Fatalf("SetBio: %v", err)
	}
	if p.Bio != "runs every morning" || f.backend.profile.Bio != "runs every morning" {
		t.Errorf("bio = %q, backend %q", p.Bio, f.backend.profile.Bio)
	}
}
