package model

import "time"

// Task is an atomic to-do item that belongs to a goal.
// CompletedAt is maintained by the backend when Completed flips.
type Task struct {
	ID          uint       `json:"id"`
	GoalID      uint       `json:"goal"`
	Title       string     `json:"title"`
	Completed   bool       `json:"completed"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at"`
}
