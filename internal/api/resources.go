package api

import (
	"context"
	"fmt"
	"net/http"

	"life-goals/internal/model"
)

// Tokens is a JWT pair issued by the backend.
type Tokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// ObtainToken exchanges credentials for a token pair.
func (c *Client) ObtainToken(ctx context.Context, username, password string) (Tokens, error) {
	var tokens Tokens
	in := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/token/", in, &tokens); err != nil {
		return Tokens{}, err
	}
	return tokens, nil
}

// RefreshToken exchanges a refresh token for a new access token.
func (c *Client) RefreshToken(ctx context.Context, refresh string) (string, error) {
	var out struct {
		Access string `json:"access"`
	}
	if err := c.do(ctx, http.MethodPost, "/token/refresh/", map[string]string{"refresh": refresh}, &out); err != nil {
		return "", err
	}
	return out.Access, nil
}

// GoalInput is the writable part of a goal.
type GoalInput struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Category    model.Category `json:"category"`
	Priority    model.Priority `json:"priority"`
	StartDate   string         `json:"start_date"`
	EndDate     string         `json:"end_date"`
}

// Profile returns the signed-in account's profile. The backend creates an
// empty one on first read.
func (c *Client) Profile(ctx context.Context) (*model.Profile, error) {
	var p model.Profile
	if err := c.do(ctx, http.MethodGet, "/profile/", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) UpdateBio(ctx context.Context, profileID uint, bio string) (*model.Profile, error) {
	var p model.Profile
	in := map[string]string{"bio": bio}
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/profile/%d/", profileID), in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) ListGoals(ctx context.Context) ([]model.Goal, error) {
	var goals []model.Goal
	if err := c.do(ctx, http.MethodGet, "/goals/", nil, &goals); err != nil {
		return nil, err
	}
	return goals, nil
}

func (c *Client) GetGoal(ctx context.Context, id uint) (*model.Goal, error) {
	var goal model.Goal
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/goals/%d/", id), nil, &goal); err != nil {
		return nil, err
	}
	return &goal, nil
}

func (c *Client) CreateGoal(ctx context.Context, in GoalInput) (*model.Goal, error) {
	var goal model.Goal
	if err := c.do(ctx, http.MethodPost, "/goals/", in, &goal); err != nil {
		return nil, err
	}
	return &goal, nil
}

func (c *Client) UpdateGoal(ctx context.Context, id uint, in GoalInput) (*model.Goal, error) {
	var goal model.Goal
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/goals/%d/", id), in, &goal); err != nil {
		return nil, err
	}
	return &goal, nil
}

func (c *Client) DeleteGoal(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/goals/%d/", id), nil, nil)
}

// ReorderGoal moves a goal to a new sort position.
func (c *Client) ReorderGoal(ctx context.Context, id uint, order int) error {
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("/goals/%d/reorder/", id), map[string]int{"order": order}, nil)
}

func (c *Client) CreateTask(ctx context.Context, goalID uint, title string) (*model.Task, error) {
	var task model.Task
	in := map[string]any{"goal": goalID, "title": title, "completed": false}
	if err := c.do(ctx, http.MethodPost, "/tasks/", in, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// SetTaskCompleted flips a task; the backend maintains completed_at.
func (c *Client) SetTaskCompleted(ctx context.Context, id uint, completed bool) (*model.Task, error) {
	var task model.Task
	in := map[string]bool{"completed": completed}
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/tasks/%d/", id), in, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) RenameTask(ctx context.Context, id uint, title string) (*model.Task, error) {
	var task model.Task
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/tasks/%d/", id), map[string]string{"title": title}, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) DeleteTask(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/tasks/%d/", id), nil, nil)
}

func (c *Client) ListHabits(ctx context.Context) ([]model.Habit, error) {
	var habits []model.Habit
	if err := c.do(ctx, http.MethodGet, "/habits/", nil, &habits); err != nil {
		return nil, err
	}
	return habits, nil
}

func (c *Client) CreateHabit(ctx context.Context, goalID uint, title string) (*model.Habit, error) {
	var habit model.Habit
	in := map[string]any{"goal": goalID, "title": title}
	if err := c.do(ctx, http.MethodPost, "/habits/", in, &habit); err != nil {
		return nil, err
	}
	return &habit, nil
}

// ToggleHabit checks or unchecks today's completion. Status is "checked"
// or "unchecked".
func (c *Client) ToggleHabit(ctx context.Context, id uint) (string, *model.Habit, error) {
	var out struct {
		Status string      `json:"status"`
		Habit  model.Habit `json:"habit"`
	}
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/habits/%d/toggle/", id), nil, &out); err != nil {
		return "", nil, err
	}
	return out.Status, &out.Habit, nil
}

func (c *Client) RenameHabit(ctx context.Context, id, goalID uint, title string) (*model.Habit, error) {
	var habit model.Habit
	in := map[string]any{"title": title, "goal": goalID}
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/habits/%d/", id), in, &habit); err != nil {
		return nil, err
	}
	return &habit, nil
}

func (c *Client) DeleteHabit(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/habits/%d/", id), nil, nil)
}

// Suggestions asks the backend for improvement ideas for a goal.
func (c *Client) Suggestions(ctx context.Context, goalID uint) ([]string, error) {
	var out struct {
		List []string `json:"list"`
	}
	if err := c.do(ctx, http.MethodPost, "/ai/suggestions/", map[string]uint{"goal_id": goalID}, &out); err != nil {
		return nil, err
	}
	return out.List, nil
}

// GenerateTasks asks the backend to draft count task titles for a goal.
func (c *Client) GenerateTasks(ctx context.Context, goalID uint, count int) ([]string, error) {
	var out struct {
		Tasks []string `json:"tasks"`
	}
	in := map[string]any{"goal_id": goalID, "count": count}
	if err := c.do(ctx, http.MethodPost, "/ai/generate_tasks/", in, &out); err != nil {
		return nil, err
	}
	return out.Tasks, nil
}

// AddTasks stores generated task titles under a goal.
func (c *Client) AddTasks(ctx context.Context, goalID uint, titles []string) error {
	in := map[string]any{"goal_id": goalID, "tasks": titles}
	return c.do(ctx, http.MethodPost, "/ai/add_tasks/", in, nil)
}
