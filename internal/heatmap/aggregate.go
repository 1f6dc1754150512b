// Package heatmap aggregates a year of goal activity and task completions
// into per-day counts, streak statistics and a week grid.
package heatmap

import (
	"sort"
	"time"

	"life-goals/internal/dates"
	"life-goals/internal/model"
)

// CompletedTask is a task completion annotated with its goal.
type CompletedTask struct {
	Task         model.Task
	GoalTitle    string
	GoalCategory model.Category
}

// Cell is one day of the year grid. Counts are zero outside the year.
type Cell struct {
	Date            time.Time
	Key             string
	InYear          bool
	GoalCount       int
	CompletionCount int
}

// DayCount is a day key with its completion count.
type DayCount struct {
	Key   string
	Count int
}

// Result holds everything derived from one year of data.
type Result struct {
	Year                int
	Weeks               [][]Cell
	MonthLabels         map[int]time.Month
	DayGoalMap          map[string][]model.Goal
	DayTaskMap          map[string][]CompletedTask
	MaxGoalCount        int
	MaxCompletionCount  int
	ActiveDayCount      int
	BestDay             *DayCount
	LongestStreak       int
	CurrentStreak       int
	TotalTasksCompleted int
}

// Aggregate derives the heatmap for year from goals and their tasks.
// Goals missing a start or end date are left out of goal activity.
func Aggregate(goals []model.Goal, year int, loc *time.Location) Result {
	if loc == nil {
		loc = time.Local
	}
	yearStart := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	yearEnd := time.Date(year, time.December, 31, 0, 0, 0, 0, loc)

	goalCounts := make(map[string]int)
	completionCounts := make(map[string]int)
	res := Result{
		Year:        year,
		MonthLabels: make(map[int]time.Month, 12),
		DayGoalMap:  make(map[string][]model.Goal),
		DayTaskMap:  make(map[string][]CompletedTask),
	}

	for _, g := range goals {
		start, err := dates.ParseKey(g.StartDate, loc)
		if err != nil {
			continue
		}
		end, err := dates.ParseKey(g.EndDate, loc)
		if err != nil {
			continue
		}
		if start.Before(yearStart) {
			start = yearStart
		}
		if end.After(yearEnd) {
			end = yearEnd
		}
		for d := start; !d.After(end); d = dates.AddDays(d, 1) {
			key := dates.Key(d)
			goalCounts[key]++
			res.DayGoalMap[key] = append(res.DayGoalMap[key], g)
		}
	}

	for _, g := range goals {
		for _, t := range g.Tasks {
			if !t.Completed || t.CompletedAt == nil {
				continue
			}
			at := t.CompletedAt.In(loc)
			if at.Year() != year {
				continue
			}
			key := dates.Key(at)
			completionCounts[key]++
			res.DayTaskMap[key] = append(res.DayTaskMap[key], CompletedTask{
				Task:         t,
				GoalTitle:    g.Title,
				GoalCategory: g.Category,
			})
			res.TotalTasksCompleted++
		}
	}

	gridStart := dates.SundayOf(yearStart)
	gridEnd := dates.SaturdayOf(yearEnd)
	for d := gridStart; !d.After(gridEnd); {
		week := make([]Cell, 0, 7)
		for i := 0; i < 7; i++ {
			key := dates.Key(d)
			cell := Cell{Date: d, Key: key, InYear: d.Year() == year}
			if cell.InYear {
				cell.GoalCount = goalCounts[key]
				cell.CompletionCount = completionCounts[key]
				if cell.GoalCount > 0 || cell.CompletionCount > 0 {
					res.ActiveDayCount++
				}
				if cell.GoalCount > res.MaxGoalCount {
					res.MaxGoalCount = cell.GoalCount
				}
				if cell.CompletionCount > res.MaxCompletionCount {
					res.MaxCompletionCount = cell.CompletionCount
				}
				if d.Day() == 1 {
					res.MonthLabels[len(res.Weeks)] = d.Month()
				}
			}
			week = append(week, cell)
			d = dates.AddDays(d, 1)
		}
		res.Weeks = append(res.Weeks, week)
	}

	res.BestDay = bestDay(completionCounts)

	active := make([]string, 0, len(goalCounts)+len(completionCounts))
	seen := make(map[string]struct{}, cap(active))
	for _, counts := range []map[string]int{goalCounts, completionCounts} {
		for k := range counts {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			active = append(active, k)
		}
	}
	res.LongestStreak, res.CurrentStreak = Streaks(active)
	return res
}

// bestDay picks the day with the most completions, earliest on ties.
func bestDay(counts map[string]int) *DayCount {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var best *DayCount
	for _, k := range keys {
		if best == nil || counts[k] > best.Count {
			best = &DayCount{Key: k, Count: counts[k]}
		}
	}
	return best
}

// Streaks walks the distinct activity day keys in order and returns the
// longest run of consecutive days and the length of the run ending on the
// latest day. Whether that latest day is recent is left to the caller.
// Malformed keys are skipped.
func Streaks(keys []string) (longest, current int) {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)

	var last time.Time
	for _, k := range sorted {
		d, err := dates.ParseKey(k, time.UTC)
		if err != nil {
			continue
		}
		switch {
		case last.IsZero():
			current = 1
		default:
			gap := dates.DaysBetween(last, d)
			if gap == 0 {
				continue
			}
			if gap == 1 {
				current++
			} else {
				if current > longest {
					longest = current
				}
				current = 1
			}
		}
		last = d
	}
	if current > longest {
		longest = current
	}
	return longest, current
}

// Cells flattens the week grid.
func (r Result) Cells() []Cell {
	out := make([]Cell, 0, len(r.Weeks)*7)
	for _, w := range r.Weeks {
		out = append(out, w...)
	}
	return out
}
