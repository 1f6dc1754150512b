package focus

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestFocusSessionCompletes(t *testing.T) {
	s := NewState(25, 5)
	s, _ = Reduce(s, Start())

	var completed []Effect
	for i := 0; i < 1500; i++ {
		if s.Mode != ModeFocus {
			t.Fatalf("left focus early at tick %d", i)
		}
		var eff Effect
		s, eff = Reduce(s, Tick())
		if eff.SessionCompleted {
			completed = append(completed, eff)
		}
	}
	if s.Mode != ModeBreak {
		t.Fatalf("mode = %s after 1500 ticks, want break", s.Mode)
	}
	if !s.Running {
		t.Error("break should auto-start")
	}
	if s.Remaining != 5*60 {
		t.Errorf("Remaining = %d, want 300", s.Remaining)
	}
	if len(completed) != 1 || completed[0].Minutes != 25 {
		t.Errorf("effects = %+v, want one 25-minute session", completed)
	}
}

func TestBreakCompletesWithoutEffect(t *testing.T) {
	s := State{Mode: ModeBreak, Remaining: 1, Running: true, FocusMinutes: 30, BreakMinutes: 5}
	s, eff := Reduce(s, Tick())
	if eff.SessionCompleted {
		t.Error("break completion must not record a session")
	}
	if s.Mode != ModeFocus || s.Remaining != 30*60 || !s.Running {
		t.Errorf("state = %+v, want running focus at 1800", s)
	}
}

func TestTickWhilePaused(t *testing.T) {
	s := NewState(25, 5)
	s, _ = Reduce(s, Tick())
	if s.Remaining != 1500 {
		t.Errorf("paused tick changed Remaining to %d", s.Remaining)
	}
}

func TestPauseAndReset(t *testing.T) {
	s := NewState(10, 2)
	s, _ = Reduce(s, Start())
	for i := 0; i < 42; i++ {
		s, _ = Reduce(s, Tick())
	}
	s, _ = Reduce(s, Pause())
	if s.Running || s.Remaining != 600-42 {
		t.Fatalf("after pause = %+v", s)
	}
	s, _ = Reduce(s, Tick())
	if s.Remaining != 600-42 {
		t.Errorf("tick after pause decremented")
	}
	s, _ = Reduce(s, Start())
	if s.Remaining != 600-42 {
		t.Errorf("resume reset Remaining to %d", s.Remaining)
	}

	s = State{Mode: ModeBreak, Remaining: 17, Running: true, FocusMinutes: 10, BreakMinutes: 2}
	s, _ = Reduce(s, Reset())
	if s.Mode != ModeBreak || s.Remaining != 120 || s.Running {
		t.Errorf("after reset = %+v, want paused break at 120", s)
	}
}

func TestStartFromZero(t *testing.T) {
	s := State{Mode: ModeFocus, Remaining: 0, FocusMinutes: 3, BreakMinutes: 1}
	s, _ = Reduce(s, Start())
	if s.Remaining != 180 {
		t.Errorf("Remaining = %d, want 180", s.Remaining)
	}
}

func TestDurationEdits(t *testing.T) {
	tests := []struct {
		name      string
		state     State
		event     Event
		remaining int
		focus     int
		brk       int
	}{
		{
			name:      "active idle focus retargets",
			state:     State{Mode: ModeFocus, Remaining: 100, FocusMinutes: 25, BreakMinutes: 5},
			event:     SetFocusMinutes(50),
			remaining: 3000, focus: 50, brk: 5,
		},
		{
			name:      "running focus keeps countdown",
			state:     State{Mode: ModeFocus, Remaining: 100, Running: true, FocusMinutes: 25, BreakMinutes: 5},
			event:     SetFocusMinutes(50),
			remaining: 100, focus: 50, brk: 5,
		},
		{
			name:      "inactive mode edit keeps countdown",
			state:     State{Mode: ModeFocus, Remaining: 100, FocusMinutes: 25, BreakMinutes: 5},
			event:     SetBreakMinutes(15),
			remaining: 100, focus: 25, brk: 15,
		},
		{
			name:      "idle break retargets",
			state:     State{Mode: ModeBreak, Remaining: 30, FocusMinutes: 25, BreakMinutes: 5},
			event:     SetBreakMinutes(10),
			remaining: 600, focus: 25, brk: 10,
		},
		{
			name:      "minimum one minute",
			state:     State{Mode: ModeFocus, Remaining: 30, FocusMinutes: 25, BreakMinutes: 5},
			event:     SetFocusMinutes(0),
			remaining: 60, focus: 1, brk: 5,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := Reduce(tt.state, tt.event)
			if got.Remaining != tt.remaining || got.FocusMinutes != tt.focus || got.BreakMinutes != tt.brk {
				t.Errorf("got %+v", got)
			}
		})
	}
}

func TestFormatAndProgress(t *testing.T) {
	if got := Format(1500); got != "25:00" {
		t.Errorf("Format(1500) = %q", got)
	}
	if got := Format(65); got != "01:05" {
		t.Errorf("Format(65) = %q", got)
	}
	s := State{Mode: ModeFocus, Remaining: 750, FocusMinutes: 25}
	if got := s.Progress(); got != 50 {
		t.Errorf("Progress = %v, want 50", got)
	}
}

func TestResumeStats(t *testing.T) {
	today := time.Date(2024, 6, 15, 9, 0, 0, 0, time.Local)
	tests := []struct {
		name string
		raw  string
		want Stats
	}{
		{
			name: "yesterday extends streak",
			raw:  `{"date":"2024-06-14","sessionsToday":2,"totalMinutesToday":50,"streakDays":4}`,
			want: Stats{Date: "2024-06-15", SessionsToday: 0, TotalMinutesToday: 0, StreakDays: 5},
		},
		{
			name: "today resumes",
			raw:  `{"date":"2024-06-15","sessionsToday":3,"totalMinutesToday":75,"streakDays":2}`,
			want: Stats{Date: "2024-06-15", SessionsToday: 3, TotalMinutesToday: 75, StreakDays: 2},
		},
		{
			name: "gap resets",
			raw:  `{"date":"2024-06-12","sessionsToday":3,"totalMinutesToday":75,"streakDays":9}`,
			want: Stats{Date: "2024-06-15", StreakDays: 1},
		},
		{
			name: "no record",
			raw:  "",
			want: Stats{Date: "2024-06-15", StreakDays: 1},
		},
		{
			name: "corrupt record",
			raw:  `{"date":`,
			want: Stats{Date: "2024-06-15", StreakDays: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResumeStats([]byte(tt.raw), today); got != tt.want {
				t.Errorf("ResumeStats = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestStatsRecordRollsOver(t *testing.T) {
	s := Stats{Date: "2024-06-14", SessionsToday: 4, TotalMinutesToday: 100, StreakDays: 3}
	got := s.Record(25, time.Date(2024, 6, 15, 0, 10, 0, 0, time.Local))
	want := Stats{Date: "2024-06-15", SessionsToday: 1, TotalMinutesToday: 25, StreakDays: 4}
	if got != want {
		t.Errorf("Record = %+v, want %+v", got, want)
	}
}

type memStore struct {
	mu      sync.Mutex
	raw     []byte
	loadErr error
	saves   int
}

func (m *memStore) Load(context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.raw, m.loadErr
}

func (m *memStore) Save(_ context.Context, raw []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.raw = raw
	m.saves++
	return nil
}

func TestTimerPersistsOnlyOnSessionCompletion(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.Local)
	store := &memStore{raw: []byte(`{"date":"2024-06-14","sessionsToday":2,"totalMinutesToday":50,"streakDays":4}`)}

	var transitions []Transition
	timer := NewTimer(context.Background(), store, 1, 1,
		WithClock(func() time.Time { return now }),
		WithTransitionHook(func(tr Transition) { transitions = append(transitions, tr) }),
	)
	ctx := context.Background()
	timer.Dispatch(ctx, Start())
	for i := 0; i < 60; i++ {
		timer.Dispatch(ctx, Tick())
	}

	state, stats := timer.Snapshot()
	if state.Mode != ModeBreak || state.Remaining != 60 {
		t.Fatalf("state = %+v, want break at 60", state)
	}
	if stats.SessionsToday != 1 || stats.TotalMinutesToday != 1 || stats.StreakDays != 5 {
		t.Errorf("stats = %+v", stats)
	}
	if store.saves != 1 {
		t.Errorf("saves = %d, want 1", store.saves)
	}
	var saved Stats
	if err := json.Unmarshal(store.raw, &saved); err != nil {
		t.Fatalf("saved record: %v", err)
	}
	if saved != stats {
		t.Errorf("saved %+v, want %+v", saved, stats)
	}

	for i := 0; i < 60; i++ {
		timer.Dispatch(ctx, Tick())
	}
	if store.saves != 1 {
		t.Errorf("break completion saved stats")
	}
	if len(transitions) != 2 || transitions[0].To.Mode != ModeBreak || transitions[1].To.Mode != ModeFocus {
		t.Errorf("transitions = %+v", transitions)
	}
	if !transitions[0].Effect.SessionCompleted || transitions[1].Effect.SessionCompleted {
		t.Error("only the focus->break transition carries a session")
	}
}

func TestTimerLoadFailureStartsFresh(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.Local)
	store := &memStore{loadErr: errors.New("disk gone")}
	timer := NewTimer(context.Background(), store, 25, 5, WithClock(func() time.Time { return now }))
	_, stats := timer.Snapshot()
	if stats != (Stats{Date: "2024-06-15", StreakDays: 1}) {
		t.Errorf("stats = %+v", stats)
	}
}

func TestTimerStatsFollowTheCalendarDay(t *testing.T) {
	now := time.Date(2024, 3, 1, 23, 0, 0, 0, time.Local)
	timer := NewTimer(context.Background(), nil, 1, 1, WithClock(func() time.Time { return now }))
	ctx := context.Background()
	timer.Dispatch(ctx, Start())
	for i := 0; i < 60; i++ {
		timer.Dispatch(ctx, Tick())
	}
	if _, stats := timer.Snapshot(); stats != (Stats{Date: "2024-03-01", SessionsToday: 1, TotalMinutesToday: 1, StreakDays: 1}) {
		t.Fatalf("stats = %+v", stats)
	}

	tests := []struct {
		name string
		at   time.Time
		want Stats
	}{
		{"next day keeps the streak", time.Date(2024, 3, 2, 9, 0, 0, 0, time.Local), Stats{Date: "2024-03-02", StreakDays: 2}},
		{"same day is unchanged", time.Date(2024, 3, 2, 21, 0, 0, 0, time.Local), Stats{Date: "2024-03-02", StreakDays: 2}},
		{"skipped day resets", time.Date(2024, 3, 4, 9, 0, 0, 0, time.Local), Stats{Date: "2024-03-04", StreakDays: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now = tt.at
			if _, stats := timer.Snapshot(); stats != tt.want {
				t.Errorf("stats = %+v, want %+v", stats, tt.want)
			}
		})
	}
}

func TestTimerSnapshotAfterTwoDays(t *testing.T) {
	now := time.Date(2024, 3, 1, 23, 0, 0, 0, time.Local)
	timer := NewTimer(context.Background(), nil, 1, 1, WithClock(func() time.Time { return now }))
	ctx := context.Background()
	timer.Dispatch(ctx, Start())
	for i := 0; i < 60; i++ {
		timer.Dispatch(ctx, Tick())
	}

	now = time.Date(2024, 3, 3, 9, 0, 0, 0, time.Local)
	if _, stats := timer.Snapshot(); stats != (Stats{Date: "2024-03-03", StreakDays: 1}) {
		t.Errorf("stats = %+v, want fresh record for 2024-03-03", stats)
	}
}

func TestTimerRunStopsOnCancel(t *testing.T) {
	timer := NewTimer(context.Background(), nil, 25, 5)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		timer.Run(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
