package model

// Habit is a recurring action linked to a goal. CompletedDates holds
// local "YYYY-MM-DD" day keys.
type Habit struct {
	ID             uint     `json:"id"`
	Title          string   `json:"title"`
	GoalID         uint     `json:"goal"`
	GoalTitle      string   `json:"goal_title,omitempty"`
	CompletedDates []string `json:"completed_dates"`
	Streak         int      `json:"streak"`
}

// DoneOn reports whether the habit was completed on the given day key.
func (h Habit) DoneOn(key string) bool {
	for _, d := range h.CompletedDates {
		if d == key {
			return true
		}
	}
	return false
}
