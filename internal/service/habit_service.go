package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"life-goals/internal/api"
	"life-goals/internal/dates"
	"life-goals/internal/model"
)

var ErrHabitNotFound = errors.New("habit not found")

// HabitStreak counts consecutive days ending at the latest completed day.
// Malformed keys are ignored.
func HabitStreak(completed []string) int {
	days := make([]time.Time, 0, len(completed))
	seen := make(map[string]bool, len(completed))
	for _, key := range completed {
		if seen[key] {
			continue
		}
		seen[key] = true
		d, err := dates.ParseKey(key, time.UTC)
		if err != nil {
			continue
		}
		days = append(days, d)
	}
	if len(days) == 0 {
		return 0
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })

	streak := 1
	for i := 1; i < len(days); i++ {
		if dates.DaysBetween(days[i], days[i-1]) != 1 {
			break
		}
		streak++
	}
	return streak
}

// TodayProgress reports how many habits are done today and the rounded
// percentage.
func TodayProgress(habits []model.Habit, today time.Time) (done, percent int) {
	key := dates.Key(today)
	for _, h := range habits {
		if h.DoneOn(key) {
			done++
		}
	}
	if len(habits) == 0 {
		return done, 0
	}
	return done, int(math.Round(float64(done) * 100 / float64(len(habits))))
}

// FilterHabitsByGoal keeps habits linked to goalID. Zero keeps everything.
func FilterHabitsByGoal(habits []model.Habit, goalID uint) []model.Habit {
	if goalID == 0 {
		return habits
	}
	var out []model.Habit
	for _, h := range habits {
		if h.GoalID == goalID {
			out = append(out, h)
		}
	}
	return out
}

// SplitByToday separates habits still open today from those already done.
func SplitByToday(habits []model.Habit, today time.Time) (open, done []model.Habit) {
	key := dates.Key(today)
	for _, h := range habits {
		if h.DoneOn(key) {
			done = append(done, h)
		} else {
			open = append(open, h)
		}
	}
	return open, done
}

// DayMark is one column of a habit's recent history.
type DayMark struct {
	Key   string
	Label string
}

var weekdayLetters = [7]string{"S", "M", "T", "W", "T", "F", "S"}

// LastSevenDays returns the six days before today and today, oldest first.
func LastSevenDays(today time.Time) []DayMark {
	marks := make([]DayMark, 0, 7)
	for i := 6; i >= 0; i-- {
		d := dates.AddDays(today, -i)
		marks = append(marks, DayMark{Key: dates.Key(d), Label: weekdayLetters[d.Weekday()]})
	}
	return marks
}

var habitIcons = []struct {
	words []string
	icon  string
}{
	{[]string{"read", "book"}, "📘"},
	{[]string{"run", "walk"}, "🏃"},
	{[]string{"gym", "exercise"}, "🏋️"},
	{[]string{"meditat", "mind"}, "🧘"},
	{[]string{"study", "learn"}, "📚"},
	{[]string{"water"}, "💧"},
	{[]string{"sleep"}, "😴"},
	{[]string{"code"}, "💻"},
}

// HabitIcon picks an emoji from keywords in the title.
func HabitIcon(title string) string {
	t := strings.ToLower(title)
	for _, entry := range habitIcons {
		for _, w := range entry.words {
			if strings.Contains(t, w) {
				return entry.icon
			}
		}
	}
	return "✅"
}

// HabitService performs habit mutations against the backend.
type HabitService struct {
	accounts *AccountService
}

func NewHabitService(accounts *AccountService) *HabitService {
	return &HabitService{accounts: accounts}
}

// Toggle checks or unchecks today's completion. checked reports the new state.
func (s *HabitService) Toggle(ctx context.Context, user *model.User, habitID uint) (habit *model.Habit, checked bool, err error) {
	var status string
	err = s.accounts.Call(ctx, user, func(c *api.Client) error {
		var err error
		status, habit, err = c.ToggleHabit(ctx, habitID)
		return err
	})
	if errors.Is(err, api.ErrNotFound) {
		return nil, false, ErrHabitNotFound
	}
	if err != nil {
		return nil, false, fmt.Errorf("toggle habit: %w", err)
	}
	s.accounts.refreshAfterWrite(ctx, user)
	return habit, status == "checked", nil
}

// Create adds a habit linked to a goal.
func (s *HabitService) Create(ctx context.Context, user *model.User, goalID uint, title string) (*model.Habit, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}
	snap, err := s.accounts.Snapshot(ctx, user)
	if err != nil {
		return nil, err
	}
	if _, ok := snap.Goal(goalID); !ok {
		return nil, ErrGoalNotFound
	}

	var habit *model.Habit
	err = s.accounts.Call(ctx, user, func(c *api.Client) error {
		var err error
		habit, err = c.CreateHabit(ctx, goalID, title)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create habit: %w", err)
	}
	s.accounts.refreshAfterWrite(ctx, user)
	return habit, nil
}

// Rename changes a habit's title and keeps its goal.
func (s *HabitService) Rename(ctx context.Context, user *model.User, habitID uint, title string) (*model.Habit, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}
	snap, err := s.accounts.Snapshot(ctx, user)
	if err != nil {
		return nil, err
	}
	current, ok := snap.Habit(habitID)
	if !ok {
		return nil, ErrHabitNotFound
	}

	var habit *model.Habit
	err = s.accounts.Call(ctx, user, func(c *api.Client) error {
		var err error
		habit, err = c.RenameHabit(ctx, habitID, current.GoalID, title)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("rename habit: %w", err)
	}
	s.accounts.refreshAfterWrite(ctx, user)
	return habit, nil
}

// Delete removes a habit.
func (s *HabitService) Delete(ctx context.Context, user *model.User, habitID uint) error {
	err := s.accounts.Call(ctx, user, func(c *api.Client) error {
		return c.DeleteHabit(ctx, habitID)
	})
	if errors.Is(err, api.ErrNotFound) {
		return ErrHabitNotFound
	}
	if err != nil {
		return fmt.Errorf("delete habit: %w", err)
	}
	s.accounts.refreshAfterWrite(ctx, user)
	return nil
}
