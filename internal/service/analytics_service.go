package service

import (
	"math"

	"life-goals/internal/model"
)

// Analytics summarises a goal list.
type Analytics struct {
	TotalGoals     int
	CompletedGoals int
	AvgProgress    int
	TotalTasks     int
	CompletedTasks int
	ByCategory     map[model.Category]int
}

// RemainingTasks counts open tasks.
func (a Analytics) RemainingTasks() int {
	return a.TotalTasks - a.CompletedTasks
}

// Analyze derives the dashboard totals.
func Analyze(goals []model.Goal) Analytics {
	a := Analytics{
		TotalGoals: len(goals),
		ByCategory: make(map[model.Category]int),
	}
	sum := 0
	for _, g := range goals {
		p := Progress(g)
		sum += p
		if p >= 100 {
			a.CompletedGoals++
		}
		a.TotalTasks += len(g.Tasks)
		a.CompletedTasks += g.CompletedTasks()
		cat := g.Category
		if cat == "" {
			cat = model.CategoryOther
		}
		a.ByCategory[cat]++
	}
	if len(goals) > 0 {
		a.AvgProgress = int(math.Round(float64(sum) / float64(len(goals))))
	}
	return a
}
