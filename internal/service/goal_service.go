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
	"life-goals/internal/store"
)

var (
	ErrGoalNotFound = errors.New("goal not found")
	ErrTaskNotFound = errors.New("task not found")
)

// SortOption orders a goal list.
type SortOption string

const (
	SortProgressDesc SortOption = "progress-desc"
	SortEndDateAsc   SortOption = "endDate-asc"
	SortPriorityDesc SortOption = "priority-desc"
)

var SortOptions = []SortOption{SortProgressDesc, SortEndDateAsc, SortPriorityDesc}

// ParseSortOption accepts the option name case-insensitively.
func ParseSortOption(raw string) (SortOption, bool) {
	for _, opt := range SortOptions {
		if strings.EqualFold(raw, string(opt)) {
			return opt, true
		}
	}
	return "", false
}

// GoalFilter narrows and orders a goal list. Empty fields match everything.
type GoalFilter struct {
	Category model.Category
	Priority model.Priority
	Sort     SortOption
}

// CalculateProgress is the rounded percentage of completed tasks.
func CalculateProgress(tasks []model.Task) int {
	if len(tasks) == 0 {
		return 0
	}
	done := 0
	for _, t := range tasks {
		if t.Completed {
			done++
		}
	}
	return int(math.Round(float64(done) * 100 / float64(len(tasks))))
}

// Progress derives a goal's progress from its tasks.
func Progress(g model.Goal) int {
	return CalculateProgress(g.Tasks)
}

// FilterGoals returns a filtered and sorted copy of goals.
func FilterGoals(goals []model.Goal, f GoalFilter) []model.Goal {
	out := make([]model.Goal, 0, len(goals))
	for _, g := range goals {
		if f.Category != "" && g.Category != f.Category {
			continue
		}
		if f.Priority != "" && g.Priority != f.Priority {
			continue
		}
		out = append(out, g)
	}

	switch f.Sort {
	case SortProgressDesc:
		sort.SliceStable(out, func(i, j int) bool { return Progress(out[i]) > Progress(out[j]) })
	case SortEndDateAsc:
		// Goals without an end date go last.
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i].EndDate, out[j].EndDate
			switch {
			case a == "":
				return false
			case b == "":
				return true
			default:
				return a < b
			}
		})
	case SortPriorityDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Priority.Rank() > out[j].Priority.Rank() })
	}
	return out
}

// SplitByCompletion separates finished goals from the rest.
func SplitByCompletion(goals []model.Goal) (active, completed []model.Goal) {
	for _, g := range goals {
		if Progress(g) >= 100 {
			completed = append(completed, g)
		} else {
			active = append(active, g)
		}
	}
	return active, completed
}

// DaysLeft is the number of days from today to the goal's end date. ok is
// false when the goal has no valid end date.
func DaysLeft(g model.Goal, today time.Time) (days int, ok bool) {
	if g.EndDate == "" {
		return 0, false
	}
	n, err := dates.KeyDaysBetween(dates.Key(today), g.EndDate)
	if err != nil {
		return 0, false
	}
	return n, true
}

// FindTask locates a task and its goal in a snapshot.
func FindTask(snap store.Snapshot, taskID uint) (model.Task, model.Goal, bool) {
	for _, g := range snap.Goals {
		for _, t := range g.Tasks {
			if t.ID == taskID {
				return t, g, true
			}
		}
	}
	return model.Task{}, model.Goal{}, false
}

// GoalService performs goal and task mutations against the backend.
// Every successful mutation reloads the user's snapshot.
type GoalService struct {
	accounts *AccountService
}

func NewGoalService(accounts *AccountService) *GoalService {
	return &GoalService{accounts: accounts}
}

// Goal returns one goal from the user's snapshot.
func (s *GoalService) Goal(ctx context.Context, user *model.User, goalID uint) (model.Goal, error) {
	snap, err := s.accounts.Snapshot(ctx, user)
	if err != nil {
		return model.Goal{}, err
	}
	g, ok := snap.Goal(goalID)
	if !ok {
		return model.Goal{}, ErrGoalNotFound
	}
	return g, nil
}

// ToggleTask flips a task's completion and returns the refreshed goal.
func (s *GoalService) ToggleTask(ctx context.Context, user *model.User, taskID uint) (model.Task, model.Goal, error) {
	snap, err := s.accounts.Snapshot(ctx, user)
	if err != nil {
		return model.Task{}, model.Goal{}, err
	}
	task, _, ok := FindTask(snap, taskID)
	if !ok {
		return model.Task{}, model.Goal{}, ErrTaskNotFound
	}

	err = s.accounts.Call(ctx, user, func(c *api.Client) error {
		_, err := c.SetTaskCompleted(ctx, taskID, !task.Completed)
		return err
	})
	if err != nil {
		return model.Task{}, model.Goal{}, fmt.Errorf("toggle task: %w", err)
	}

	snap, err = s.accounts.Refresh(ctx, user)
	if err != nil {
		return model.Task{}, model.Goal{}, err
	}
	task, goal, ok := FindTask(snap, taskID)
	if !ok {
		return model.Task{}, model.Goal{}, ErrTaskNotFound
	}
	return task, goal, nil
}

// AddTask creates a task under a goal.
func (s *GoalService) AddTask(ctx context.Context, user *model.User, goalID uint, title string) (*model.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if _, err := s.Goal(ctx, user, goalID); err != nil {
		return nil, err
	}

	var task *model.Task
	err := s.accounts.Call(ctx, user, func(c *api.Client) error {
		var err error
		task, err = c.CreateTask(ctx, goalID, title)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	s.accounts.refreshAfterWrite(ctx, user)
	return task, nil
}

// DeleteTask removes a task.
func (s *GoalService) DeleteTask(ctx context.Context, user *model.User, taskID uint) error {
	err := s.accounts.Call(ctx, user, func(c *api.Client) error {
		return c.DeleteTask(ctx, taskID)
	})
	if errors.Is(err, api.ErrNotFound) {
		return ErrTaskNotFound
	}
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	s.accounts.refreshAfterWrite(ctx, user)
	return nil
}

// CreateGoal creates a goal from validated input.
func (s *GoalService) CreateGoal(ctx context.Context, user *model.User, in api.GoalInput) (*model.Goal, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if in.Category == "" {
		in.Category = model.CategoryOther
	}
	if in.Priority == "" {
		in.Priority = model.PriorityMedium
	}
	if err := validateGoalDates(in); err != nil {
		return nil, err
	}

	var goal *model.Goal
	err := s.accounts.Call(ctx, user, func(c *api.Client) error {
		var err error
		goal, err = c.CreateGoal(ctx, in)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create goal: %w", err)
	}
	s.accounts.refreshAfterWrite(ctx, user)
	return goal, nil
}

// DeleteGoal removes a goal with its tasks.
func (s *GoalService) DeleteGoal(ctx context.Context, user *model.User, goalID uint) error {
	err := s.accounts.Call(ctx, user, func(c *api.Client) error {
		return c.DeleteGoal(ctx, goalID)
	})
	if errors.Is(err, api.ErrNotFound) {
		return ErrGoalNotFound
	}
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	s.accounts.refreshAfterWrite(ctx, user)
	return nil
}

// Suggestions asks the backend for ideas on a goal.
func (s *GoalService) Suggestions(ctx context.Context, user *model.User, goalID uint) ([]string, error) {
	var list []string
	err := s.accounts.Call(ctx, user, func(c *api.Client) error {
		var err error
		list, err = c.Suggestions(ctx, goalID)
		return err
	})
	if errors.Is(err, api.ErrNotFound) {
		return nil, ErrGoalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get suggestions: %w", err)
	}
	return list, nil
}

// GenerateTasks drafts task titles for a goal without saving them.
func (s *GoalService) GenerateTasks(ctx context.Context, user *model.User, goalID uint, count int) ([]string, error) {
	if count <= 0 {
		count = 5
	}
	var titles []string
	err := s.accounts.Call(ctx, user, func(c *api.Client) error {
		var err error
		titles, err = c.GenerateTasks(ctx, goalID, count)
		return err
	})
	if errors.Is(err, api.ErrNotFound) {
		return nil, ErrGoalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("generate tasks: %w", err)
	}
	return titles, nil
}

// AddGeneratedTasks saves drafted task titles under a goal.
func (s *GoalService) AddGeneratedTasks(ctx context.Context, user *model.User, goalID uint, titles []string) error {
	if len(titles) == 0 {
		return nil
	}
	err := s.accounts.Call(ctx, user, func(c *api.Client) error {
		return c.AddTasks(ctx, goalID, titles)
	})
	if err != nil {
		return fmt.Errorf("add tasks: %w", err)
	}
	s.accounts.refreshAfterWrite(ctx, user)
	return nil
}

// RenameTask changes a task's title.
func (s *GoalService) RenameTask(ctx context.Context, user *model.User, taskID uint, title string) (*model.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}
	var task *model.Task
	err := s.accounts.Call(ctx, user, func(c *api.Client) error {
		var err error
		task, err = c.RenameTask(ctx, taskID, title)
		return err
	})
	if errors.Is(err, api.ErrNotFound) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("rename task: %w", err)
	}
	s.accounts.refreshAfterWrite(ctx, user)
	return task, nil
}

// GoalField names an editable goal attribute.
type GoalField string

const (
	FieldTitle       GoalField = "title"
	FieldDescription GoalField = "description"
	FieldCategory    GoalField = "category"
	FieldPriority    GoalField = "priority"
	FieldStartDate   GoalField = "start"
	FieldEndDate     GoalField = "end"
)

// GoalInputOf copies the writable attributes of g.
func GoalInputOf(g model.Goal) api.GoalInput {
	return api.GoalInput{
		Title:       g.Title,
		Description: g.Description,
		Category:    g.Category,
		Priority:    g.Priority,
		StartDate:   g.StartDate,
		EndDate:     g.EndDate,
	}
}

// UpdateGoal writes in over the goal. Dates are validated the same way as
// on creation.
func (s *GoalService) UpdateGoal(ctx context.Context, user *model.User, goalID uint, in api.GoalInput) (*model.Goal, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if err := validateGoalDates(in); err != nil {
		return nil, err
	}
	var goal *model.Goal
	err := s.accounts.Call(ctx, user, func(c *api.Client) error {
		var err error
		goal, err = c.UpdateGoal(ctx, goalID, in)
		return err
	})
	if errors.Is(err, api.ErrNotFound) {
		return nil, ErrGoalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update goal: %w", err)
	}
	s.accounts.refreshAfterWrite(ctx, user)
	return goal, nil
}

// ReorderGoal moves a goal to position in the user's list.
func (s *GoalService) ReorderGoal(ctx context.Context, user *model.User, goalID uint, position int) error {
	if position < 0 {
		return fmt.Errorf("position must not be negative")
	}
	err := s.accounts.Call(ctx, user, func(c *api.Client) error {
		return c.ReorderGoal(ctx, goalID, position)
	})
	if errors.Is(err, api.ErrNotFound) {
		return ErrGoalNotFound
	}
	if err != nil {
		return fmt.Errorf("reorder goal: %w", err)
	}
	s.accounts.refreshAfterWrite(ctx, user)
	return nil
}

func validateGoalDates(in api.GoalInput) error {
	for _, key := range []string{in.StartDate, in.EndDate} {
		if key == "" {
			continue
		}
		if _, err := dates.ParseKey(key, time.UTC); err != nil {
			return err
		}
	}
	if in.StartDate != "" && in.EndDate != "" {
		n, err := dates.KeyDaysBetween(in.StartDate, in.EndDate)
		if err != nil {
			return fmt.Errorf("parse goal dates: %w", err)
		}
		if n < 0 {
			return fmt.Errorf("end date %s is before start date %s", in.EndDate, in.StartDate)
		}
	}
	return nil
}
