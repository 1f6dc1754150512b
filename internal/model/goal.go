package model

// Goal mirrors the backend goal resource with its nested tasks.
// StartDate and EndDate are "YYYY-MM-DD" strings; an empty value means unset.
type Goal struct {
	ID          uint     `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
	Priority    Priority `json:"priority"`
	StartDate   string   `json:"start_date"`
	EndDate     string   `json:"end_date"`
	Progress    int      `json:"progress"`
	IsCompleted bool     `json:"is_completed"`
	Order       int      `json:"order"`
	Tasks       []Task   `json:"tasks"`
}

// CompletedTasks counts tasks marked done.
func (g Goal) CompletedTasks() int {
	done := 0
	for _, t := range g.Tasks {
		if t.Completed {
			done++
		}
	}
	return done
}
